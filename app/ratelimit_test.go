package app

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() { gin.SetMode(gin.TestMode) }

func limitedRouter(store *LimiterStore, userID string) *gin.Engine {
	r := gin.New()
	r.POST("/borrow", func(c *gin.Context) {
		if userID != "" {
			c.Set(ctxUserID, userID)
		}
		c.Next()
	}, RateLimitPerUser(store), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})
	return r
}

func Test_RateLimitPerUser_AllowsBurstThenRejects(t *testing.T) {
	store := NewLimiterStore(0.01, 2)
	r := limitedRouter(store, "user-1")

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/borrow", nil))
		codes = append(codes, w.Code)
		if w.Code == http.StatusTooManyRequests {
			assert.NotEmpty(t, w.Header().Get("Retry-After"))
		}
	}

	assert.Equal(t, []int{http.StatusCreated, http.StatusCreated, http.StatusTooManyRequests}, codes)
}

func Test_RateLimitPerUser_KeysAreIndependent(t *testing.T) {
	store := NewLimiterStore(0.01, 1)

	for _, uid := range []string{"a", "b", "c"} {
		w := httptest.NewRecorder()
		limitedRouter(store, uid).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/borrow", nil))
		assert.Equal(t, http.StatusCreated, w.Code, uid)
	}
	assert.Equal(t, 3, store.Len())
}

func Test_RateLimitPerUser_FallsBackToClientIP(t *testing.T) {
	store := NewLimiterStore(0.01, 1)
	r := limitedRouter(store, "")

	req := httptest.NewRequest(http.MethodPost, "/borrow", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	r.ServeHTTP(httptest.NewRecorder(), req)

	assert.NotNil(t, store.entries["ip:10.0.0.1"])
}

func Test_LimiterStore_CleanupDropsIdleKeys(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	store := NewLimiterStore(1, 1)
	store.now = func() time.Time { return now }

	store.Get("old")
	now = now.Add(10 * time.Minute)
	store.Get("fresh")
	now = now.Add(10 * time.Minute)

	store.Cleanup()

	assert.Equal(t, 1, store.Len())
	assert.Contains(t, store.entries, "fresh")
}
