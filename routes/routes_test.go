package routes

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aliarmgnuygun/LibraryManagementSystem-sub000/app"
	"github.com/aliarmgnuygun/LibraryManagementSystem-sub000/controllers"
	"github.com/aliarmgnuygun/LibraryManagementSystem-sub000/db"
	"github.com/aliarmgnuygun/LibraryManagementSystem-sub000/lending"
	"github.com/aliarmgnuygun/LibraryManagementSystem-sub000/models"
	"github.com/aliarmgnuygun/LibraryManagementSystem-sub000/session"
	"github.com/aliarmgnuygun/LibraryManagementSystem-sub000/testutil"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func init() { gin.SetMode(gin.TestMode) }

type api struct {
	t      *testing.T
	repo   *db.Repo
	sess   *session.AppSessionStore
	router *gin.Engine
	now    time.Time
}

func newAPI(t *testing.T) *api {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	a := &api{
		t:    t,
		repo: db.NewRepo(testutil.NewDB(t)),
		sess: session.NewAppSessionStore(rdb, time.Hour),
		now:  time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC),
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s := &controllers.Srv{
		Repo:    a.repo,
		Loans:   lending.NewService(a.repo, lending.WithLogger(logger), lending.WithClock(func() time.Time { return a.now })),
		AppSess: a.sess,
		Cfg:     app.Config{SeenThrottle: time.Minute},
		Logger:  logger,
	}
	a.router = gin.New()
	Mount(a.router, s, rdb, app.NewLimiterStore(1000, 1000))
	return a
}

func (a *api) login(email, role string) (*models.User, string) {
	a.t.Helper()
	u := testutil.GivenUser(a.t, a.repo, email, role)
	sid := "sid-" + u.ID
	require.NoError(a.t, a.sess.Create(context.Background(), sid, u.ID))
	return u, sid
}

func (a *api) do(method, path, sid string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(a.t, err)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	if sid != "" {
		req.AddCookie(&http.Cookie{Name: app.AppSessionCookie, Value: sid})
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

type errorBody struct {
	Error string `json:"error"`
}

func Test_Healthz(t *testing.T) {
	a := newAPI(t)
	w := a.do(http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true}`, w.Body.String())
}

func Test_BorrowAndReturnOverHTTP(t *testing.T) {
	a := newAPI(t)
	_, sid := a.login("reader@example.com", models.RoleBorrower)
	dune := testutil.GivenBook(t, a.repo, "Dune", 1)

	// borrow
	w := a.do(http.MethodPost, "/api/loans", sid, map[string]any{"bookIds": []string{dune.ID}})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	rec := decode[models.LoanRecord](t, w)
	require.Len(t, rec.Items, 1)
	assert.Equal(t, "2025-03-24", rec.Items[0].DueDate.Format("2006-01-02"))

	// out of stock now
	w = a.do(http.MethodGet, "/api/books/"+dune.ID+"/availability", sid, nil)
	assert.JSONEq(t, `{"bookId":"`+dune.ID+`","available":false}`, w.Body.String())
	w = a.do(http.MethodPost, "/api/loans", sid, map[string]any{"bookIds": []string{dune.ID}})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "book "+dune.ID+": book is out of stock", decode[errorBody](t, w).Error)

	// my items
	w = a.do(http.MethodGet, "/api/loans/me/items", sid, nil)
	require.Equal(t, http.StatusOK, w.Code)
	mine := decode[struct {
		Items      []models.LoanItem `json:"items"`
		Count      int               `json:"count"`
		HasOverdue bool              `json:"hasOverdue"`
	}](t, w)
	assert.Equal(t, 1, mine.Count)
	assert.False(t, mine.HasOverdue)

	// return twice
	path := "/api/loans/items/" + rec.Items[0].ID + "/return"
	w = a.do(http.MethodPost, path, sid, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.True(t, decode[models.LoanItem](t, w).Returned)
	w = a.do(http.MethodPost, path, sid, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func Test_Borrow_BadRequests(t *testing.T) {
	a := newAPI(t)
	_, sid := a.login("reader@example.com", models.RoleBorrower)

	testCases := []struct {
		name string
		body any
		want int
	}{
		{"no body", nil, http.StatusBadRequest},
		{"empty list", map[string]any{"bookIds": []string{}}, http.StatusBadRequest},
		{"unknown book", map[string]any{"bookIds": []string{"0d1b7c54-0000-4000-8000-000000000000"}}, http.StatusNotFound},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, a.do(http.MethodPost, "/api/loans", sid, tc.body).Code)
		})
	}

	assert.Equal(t, http.StatusUnauthorized, a.do(http.MethodPost, "/api/loans", "", nil).Code)
}

func Test_EligibilityOverHTTP(t *testing.T) {
	a := newAPI(t)
	_, readerSID := a.login("reader@example.com", models.RoleBorrower)
	_, deskSID := a.login("desk@example.com", models.RoleLibrarian)

	w := a.do(http.MethodGet, "/api/loans/eligibility", readerSID, nil)
	assert.JSONEq(t, `{"eligible":true}`, w.Body.String())

	w = a.do(http.MethodGet, "/api/loans/eligibility", deskSID, nil)
	assert.JSONEq(t, `{"eligible":false,"reason":"role is not allowed to borrow"}`, w.Body.String())

	// librarians are rejected by the borrow endpoint too
	book := testutil.GivenBook(t, a.repo, "Emma", 1)
	w = a.do(http.MethodPost, "/api/loans", deskSID, map[string]any{"bookIds": []string{book.ID}})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func Test_LibrarianEndpoints(t *testing.T) {
	a := newAPI(t)
	reader, readerSID := a.login("reader@example.com", models.RoleBorrower)
	_, otherSID := a.login("other@example.com", models.RoleBorrower)
	_, deskSID := a.login("desk@example.com", models.RoleLibrarian)
	book := testutil.GivenBook(t, a.repo, "Middlemarch", 3)

	w := a.do(http.MethodPost, "/api/loans", readerSID, map[string]any{"bookIds": []string{book.ID}})
	require.Equal(t, http.StatusCreated, w.Code)
	rec := decode[models.LoanRecord](t, w)

	a.now = a.now.AddDate(0, 0, 20)

	t.Run("borrowers are forbidden", func(t *testing.T) {
		for _, p := range []string{"/api/loans/overdue", "/api/loans/items", "/api/users/" + reader.ID + "/loans"} {
			assert.Equal(t, http.StatusForbidden, a.do(http.MethodGet, p, readerSID, nil).Code, p)
		}
	})

	t.Run("overdue", func(t *testing.T) {
		w := a.do(http.MethodGet, "/api/loans/overdue?size=5", deskSID, nil)
		require.Equal(t, http.StatusOK, w.Code)
		page := decode[db.Page[models.LoanItem]](t, w)
		assert.EqualValues(t, 1, page.Total)
		assert.Equal(t, 5, page.Size)
		assert.Equal(t, rec.Items[0].ID, page.Items[0].ID)
	})

	t.Run("items between", func(t *testing.T) {
		w := a.do(http.MethodGet, "/api/loans/items?start=2025-03-01&end=2025-03-10", deskSID, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.EqualValues(t, 1, decode[db.Page[models.LoanItem]](t, w).Total)

		w = a.do(http.MethodGet, "/api/loans/items?start=2025-03-11&end=2025-03-10", deskSID, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = a.do(http.MethodGet, "/api/loans/items?start=10/03/2025", deskSID, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("user summary", func(t *testing.T) {
		w := a.do(http.MethodGet, "/api/users/"+reader.ID+"/loans", deskSID, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"hasOverdue":true`)

		assert.Equal(t, http.StatusBadRequest, a.do(http.MethodGet, "/api/users/x/loans", deskSID, nil).Code)
		assert.Equal(t, http.StatusNotFound,
			a.do(http.MethodGet, "/api/users/0d1b7c54-0000-4000-8000-000000000000/loans", deskSID, nil).Code)
	})

	t.Run("records", func(t *testing.T) {
		w := a.do(http.MethodGet, "/api/loans/records?email=READER", deskSID, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.EqualValues(t, 1, decode[db.Page[models.LoanRecord]](t, w).Total)

		w = a.do(http.MethodGet, "/api/loans/records?userId=abc", deskSID, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = a.do(http.MethodGet, "/api/loans/records?userId="+reader.ID, otherSID, nil)
		assert.Equal(t, http.StatusForbidden, w.Code)

		w = a.do(http.MethodGet, "/api/loans/records/"+rec.ID, otherSID, nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
		w = a.do(http.MethodGet, "/api/loans/records/"+rec.ID, readerSID, nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("librarian returns on behalf of the borrower", func(t *testing.T) {
		w := a.do(http.MethodPost, "/api/loans/items/"+rec.Items[0].ID+"/return", otherSID, nil)
		assert.Equal(t, http.StatusForbidden, w.Code)

		w = a.do(http.MethodPost, "/api/loans/items/"+rec.Items[0].ID+"/return", deskSID, nil)
		require.Equal(t, http.StatusOK, w.Code)
		it := decode[models.LoanItem](t, w)
		assert.Equal(t, "2025-03-30", it.ReturnDate.Format("2006-01-02"))
	})
}

func Test_Borrow_RateLimited(t *testing.T) {
	a := newAPI(t)
	_, sid := a.login("reader@example.com", models.RoleBorrower)
	a.router = gin.New()
	s := &controllers.Srv{
		Repo:    a.repo,
		Loans:   lending.NewService(a.repo),
		AppSess: a.sess,
		Cfg:     app.Config{SeenThrottle: time.Minute},
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	Mount(a.router, s, rdb, app.NewLimiterStore(0.001, 1))

	first := a.do(http.MethodPost, "/api/loans", sid, map[string]any{"bookIds": []string{}})
	second := a.do(http.MethodPost, "/api/loans", sid, map[string]any{"bookIds": []string{}})

	assert.Equal(t, http.StatusBadRequest, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)

	// other endpoints are not limited
	assert.Equal(t, http.StatusOK, a.do(http.MethodGet, "/api/loans/eligibility", sid, nil).Code)
}
