package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aliarmgnuygun/LibraryManagementSystem-sub000/app"
	"github.com/aliarmgnuygun/LibraryManagementSystem-sub000/config"
	"github.com/aliarmgnuygun/LibraryManagementSystem-sub000/routes"
)

func main() {
	if err := config.LoadEnv(); err != nil {
		slog.Error("load env", slog.Any("error", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx)
	if err != nil {
		slog.Error("startup", slog.Any("error", err))
		os.Exit(1)
	}
	defer application.Close()
	logger := application.Logger
	slog.SetDefault(logger)

	s := routes.RegisterRoutes(application, ctx.Done())
	app.PromoteLibrarians(ctx, application.Config, s.Repo, s.AppSess, logger)

	srv := &http.Server{
		Addr:              ":" + application.Config.Port,
		Handler:           application.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("serve", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", slog.Any("error", err))
	}
}
