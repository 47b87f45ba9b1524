// app/bootstrap.go
package app

import (
	"context"
	"log/slog"

	"github.com/aliarmgnuygun/LibraryManagementSystem-sub000/db"
	"github.com/aliarmgnuygun/LibraryManagementSystem-sub000/models"
	"github.com/aliarmgnuygun/LibraryManagementSystem-sub000/session"
)

// PromoteLibrarians grants the librarian role to every configured email that
// already has an account. Sessions of promoted users are revoked so the next
// login picks up the new role.
func PromoteLibrarians(ctx context.Context, cfg Config, repo *db.Repo, appSess *session.AppSessionStore, logger *slog.Logger) {
	for _, email := range cfg.LibrarianEmails {
		n, err := repo.SetRoleByEmail(ctx, email, models.RoleLibrarian)
		if err != nil {
			logger.ErrorContext(ctx, "promote librarian", slog.String("email", email), slog.Any("error", err))
			continue
		}
		if n == 0 {
			continue
		}
		logger.InfoContext(ctx, "promoted librarian", slog.String("email", email))
		if appSess == nil {
			continue
		}
		if u, err := repo.FindUserByEmail(ctx, email); err == nil {
			_ = appSess.RevokeAllForUser(ctx, u.ID)
		}
	}

	if n, err := repo.CountLibrarians(ctx); err == nil && n == 0 {
		logger.WarnContext(ctx, "no librarian account; set LIBRARIAN_EMAILS")
	}
}
