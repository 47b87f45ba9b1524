package testutil

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/aliarmgnuygun/LibraryManagementSystem-sub000/db"
	"github.com/aliarmgnuygun/LibraryManagementSystem-sub000/models"
)

func GivenUser(t testing.TB, repo *db.Repo, email, role string) *models.User {
	t.Helper()
	u := &models.User{ID: uuid.NewString(), Email: email, DisplayName: email, Role: role}
	require.NoError(t, repo.CreateUser(context.Background(), u))
	return u
}

func GivenBook(t testing.TB, repo *db.Repo, title string, copies int) *models.Book {
	t.Helper()
	b := models.NewBook(uuid.NewString(), title, copies)
	require.NoError(t, repo.CreateBook(context.Background(), b))
	return b
}

// ReloadBook reads the current persisted inventory of a book.
func ReloadBook(t testing.TB, repo *db.Repo, id string) *models.Book {
	t.Helper()
	b, err := repo.FindBookByID(context.Background(), id)
	require.NoError(t, err)
	return b
}
