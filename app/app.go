package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/aliarmgnuygun/LibraryManagementSystem-sub000/db"
	"github.com/aliarmgnuygun/LibraryManagementSystem-sub000/session"
)

// 简化别名，便于 handlers 调用
type Ctx = gin.Context
type H = gin.H

// App 聚合各依赖
type App struct {
	Router *gin.Engine
	DB     *gorm.DB
	RDB    *redis.Client
	Config Config
	Logger *slog.Logger

	appSess *session.AppSessionStore
}

// Config 从环境变量读取
type Config struct {
	DatabaseURL     string
	RedisAddr       string
	RedisPwd        string
	WebOrigin       string
	SessionTTL      time.Duration
	LibrarianEmails []string
	BorrowRPS       float64
	BorrowBurst     int
	SeenThrottle    time.Duration
	LogLevel        slog.Level
	Port            string
}

func (a *App) AppSessions() *session.AppSessionStore { return a.appSess }

// New wires database, Redis and the gin engine. The caller owns Close.
func New(ctx context.Context) (*App, error) {
	cfg := LoadConfig()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))

	// --- DB: Postgres ---
	dbConn, err := db.ConnectDB(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	// --- Redis ---
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPwd, DB: 0})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis: %w", err)
	}

	// --- Gin ---
	r := gin.Default()
	useCORS(r, cfg.WebOrigin)
	return &App{
		Router: r, DB: dbConn, RDB: rdb, Config: cfg, Logger: logger,
		appSess: session.NewAppSessionStore(rdb, cfg.SessionTTL),
	}, nil
}

func (a *App) Close() {
	_ = a.RDB.Close()
	if sqlDB, err := a.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func LoadConfig() Config {
	get := func(k, def string) string {
		v := os.Getenv(k)
		if v == "" {
			return def
		}
		return v
	}
	seconds := func(k string, def time.Duration) time.Duration {
		if n, err := strconv.Atoi(os.Getenv(k)); err == nil && n > 0 {
			return time.Duration(n) * time.Second
		}
		return def
	}

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = db.DSNFromEnv()
	}

	rps, err := strconv.ParseFloat(get("BORROW_RPS", "1"), 64)
	if err != nil || rps <= 0 {
		rps = 1
	}
	burst, err := strconv.Atoi(get("BORROW_BURST", "3"))
	if err != nil || burst <= 0 {
		burst = 3
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(get("LOG_LEVEL", "info"))); err != nil {
		level = slog.LevelInfo
	}

	return Config{
		DatabaseURL:     dsn,
		RedisAddr:       get("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPwd:        os.Getenv("REDIS_PASSWORD"),
		WebOrigin:       get("WEB_ORIGIN", "http://localhost:5173"),
		SessionTTL:      seconds("SESSION_TTL_SECONDS", 24*time.Hour),
		LibrarianEmails: splitEmails(os.Getenv("LIBRARIAN_EMAILS")), // 例如: "desk@lib.org,ops@lib.org"
		BorrowRPS:       rps,
		BorrowBurst:     burst,
		SeenThrottle:    seconds("LAST_SEEN_THROTTLE_SECONDS", 5*time.Minute),
		LogLevel:        level,
		Port:            get("PORT", "3001"),
	}
}

func splitEmails(csv string) []string {
	var out []string
	for _, s := range strings.Split(csv, ",") {
		if t := strings.TrimSpace(s); t != "" {
			out = append(out, strings.ToLower(t))
		}
	}
	return out
}
