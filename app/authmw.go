package app

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/aliarmgnuygun/LibraryManagementSystem-sub000/db"
	"github.com/aliarmgnuygun/LibraryManagementSystem-sub000/lending"
	"github.com/aliarmgnuygun/LibraryManagementSystem-sub000/session"
)

const AppSessionCookie = "app_session"

const (
	ctxUserID = "userID"
	ctxRole   = "role"
)

// AuthRequired resolves the session cookie to a live user and stores its id
// and current role in the gin context.
func AuthRequired(appSess *session.AppSessionStore, repo *db.Repo) gin.HandlerFunc {
	return func(c *gin.Context) {
		ck, err := c.Request.Cookie(AppSessionCookie)
		if err != nil || ck.Value == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "unauthorized"})
			return
		}
		as, err := appSess.Get(c.Request.Context(), ck.Value)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "invalid session"})
			return
		}

		// 角色每次从数据库读取
		u, err := repo.FindUserByID(c.Request.Context(), as.UserID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				_ = appSess.Delete(c.Request.Context(), ck.Value)
				c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "unauthorized"})
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, H{"error": "internal error"})
			return
		}
		c.Set(ctxUserID, u.ID)
		c.Set(ctxRole, u.Role)

		c.Next()
	}
}

// LibrarianOnly must run after AuthRequired.
func LibrarianOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := c.Get(ctxUserID); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "unauthorized"})
			return
		}
		if !ActorFrom(c).IsLibrarian() {
			c.AbortWithStatusJSON(http.StatusForbidden, H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}

// ActorFrom builds the lending actor set by AuthRequired. Zero if unauthenticated.
func ActorFrom(c *gin.Context) lending.Actor {
	return lending.Actor{UserID: c.GetString(ctxUserID), Role: c.GetString(ctxRole)}
}
