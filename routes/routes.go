package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/aliarmgnuygun/LibraryManagementSystem-sub000/app"
	"github.com/aliarmgnuygun/LibraryManagementSystem-sub000/controllers"
)

// RegisterRoutes mounts the lending API on the application router. stop ends
// the rate limiter janitor.
func RegisterRoutes(a *app.App, stop <-chan struct{}) *controllers.Srv {
	s := controllers.GetSrv(a)
	limiter := app.NewLimiterStore(a.Config.BorrowRPS, a.Config.BorrowBurst)
	limiter.StartJanitor(2*time.Minute, stop)
	Mount(a.Router, s, a.RDB, limiter)
	return s
}

func Mount(r *gin.Engine, s *controllers.Srv, rdb *redis.Client, limiter *app.LimiterStore) {
	// 控制器与依赖
	loanCtl := controllers.NewLoanController(s)
	userCtl := controllers.NewUserLoansController(loanCtl)

	// 复用的中间件
	authMW := app.AuthRequired(s.AppSess, s.Repo)
	librarianMW := app.LibrarianOnly()
	seenMW := app.TouchLastSeen(s.Repo, rdb, s.Cfg.SeenThrottle, s.Logger)
	borrowMW := app.RateLimitPerUser(limiter)

	// Health
	r.GET("/healthz", func(c *app.Ctx) { c.JSON(http.StatusOK, app.H{"ok": true}) })

	// ------------------------------
	// 借还（登录用户）
	// ------------------------------
	loans := r.Group("/api/loans", authMW, seenMW)
	{
		loans.POST("", borrowMW, loanCtl.Borrow)
		loans.POST("/items/:id/return", loanCtl.Return)
		loans.GET("/eligibility", loanCtl.Eligibility)
		loans.GET("/me/items", loanCtl.MyActiveItems)
		loans.GET("/records", loanCtl.Records) // ?userId=&email=&start=&end=&page=&size=&sort=
		loans.GET("/records/:id", loanCtl.Record)
	}

	books := r.Group("/api/books", authMW, seenMW)
	{
		books.GET("/:id/availability", loanCtl.Availability)
	}

	// ------------------------------
	// 馆员
	// ------------------------------
	desk := r.Group("/api", authMW, librarianMW, seenMW)
	{
		desk.GET("/loans/overdue", loanCtl.Overdue)
		desk.GET("/loans/items", loanCtl.ItemsBetween) // ?start=&end=
		desk.GET("/users/:id/loans", userCtl.Summary)
	}
}
