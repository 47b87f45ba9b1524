// controllers/srv.go
package controllers

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/aliarmgnuygun/LibraryManagementSystem-sub000/app"
	"github.com/aliarmgnuygun/LibraryManagementSystem-sub000/db"
	"github.com/aliarmgnuygun/LibraryManagementSystem-sub000/lending"
	"github.com/aliarmgnuygun/LibraryManagementSystem-sub000/session"
)

// Srv holds what the handlers share.
type Srv struct {
	Repo    *db.Repo
	Loans   *lending.Service
	AppSess *session.AppSessionStore
	Cfg     app.Config
	Logger  *slog.Logger
}

func GetSrv(a *app.App) *Srv {
	repo := db.NewRepo(a.DB)
	return &Srv{
		Repo:    repo,
		Loans:   lending.NewService(repo, lending.WithLogger(a.Logger)),
		AppSess: a.AppSessions(),
		Cfg:     a.Config,
		Logger:  a.Logger,
	}
}

// --- helpers ---

const dateLayout = "2006-01-02"

// pageFrom reads ?page=&size=&sort=; bad numbers fall back to defaults in db.
func pageFrom(c *gin.Context) db.PageRequest {
	page, _ := strconv.Atoi(c.Query("page"))
	size, _ := strconv.Atoi(c.Query("size"))
	return db.PageRequest{Page: page, Size: size, Sort: c.Query("sort")}
}

// dateQuery parses an optional YYYY-MM-DD query value. ok is false after a
// 400 has been written.
func dateQuery(c *gin.Context, name string) (t *time.Time, ok bool) {
	v := c.Query(name)
	if v == "" {
		return nil, true
	}
	d, err := time.Parse(dateLayout, v)
	if err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "invalid " + name + ", want YYYY-MM-DD"})
		return nil, false
	}
	return &d, true
}
