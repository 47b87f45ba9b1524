// app/seenmw.go
package app

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/aliarmgnuygun/LibraryManagementSystem-sub000/db"
)

// TouchLastSeen writes users.last_seen_at at most once per throttle window.
func TouchLastSeen(repo *db.Repo, rdb *redis.Client, throttle time.Duration, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := c.GetString(ctxUserID)
		if uid == "" {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		key := "lib:user:lastseen:" + uid
		if ok, _ := rdb.SetNX(ctx, key, "1", throttle).Result(); ok {
			if err := repo.TouchUserSeen(ctx, uid); err != nil { // 不阻塞请求
				logger.WarnContext(ctx, "touch last seen", slog.String("user_id", uid), slog.Any("error", err))
			}
		}
		c.Next()
	}
}
