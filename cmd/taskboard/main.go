package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jaekwang-park/taskboard/internal/apiclient"
	"github.com/jaekwang-park/taskboard/internal/cognito"
	"github.com/jaekwang-park/taskboard/internal/config"
	taskhttp "github.com/jaekwang-park/taskboard/internal/http"
	"github.com/jaekwang-park/taskboard/internal/http/handler"
	"github.com/jaekwang-park/taskboard/internal/render"
	"github.com/jaekwang-park/taskboard/internal/repository"
	"github.com/jaekwang-park/taskboard/internal/service"
)

func main() {
	// Initial logger at info level; reconfigured after config load
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := run(context.Background()); err != nil {
		logger.Error("application failed", "error", err)
		os.Exit(1)
	}
}

// openStore returns the configured key/value store and a func that
// releases it. pinger is nil for the in-memory store.
func openStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (repository.KeyValueStore, handler.Pinger, func(), error) {
	switch cfg.Store.Driver {
	case config.StoreSQLite:
		s, err := repository.OpenSQLite(ctx, cfg.Store.SQLitePath)
		if err != nil {
			return nil, nil, nil, err
		}
		logger.Info("sqlite store opened", "path", cfg.Store.SQLitePath)
		return s, s, func() { s.Close() }, nil
	case config.StorePostgres:
		db, err := repository.NewDB(ctx, cfg.DB.DSN())
		if err != nil {
			return nil, nil, nil, err
		}
		s, err := repository.NewPostgresStore(ctx, db)
		if err != nil {
			db.Close()
			return nil, nil, nil, err
		}
		logger.Info("database connected")
		return s, s, func() { db.Close() }, nil
	default:
		logger.Warn("using in-memory store, tasks will not survive a restart")
		return repository.NewMemoryStore(), nil, func() {}, nil
	}
}

func newAPIClient(ctx context.Context, cfg config.Config, kv repository.KeyValueStore, logger *slog.Logger) (*apiclient.Client, error) {
	opts := []apiclient.Option{apiclient.WithLogger(logger)}
	if cfg.API.CacheTTL > 0 {
		opts = append(opts, apiclient.WithCache(apiclient.NewCache(kv, cfg.API.CacheTTL, logger)))
	}

	switch {
	case cfg.API.Token != "":
		opts = append(opts, apiclient.WithToken(cfg.API.Token))
	case cfg.Cognito.Enabled():
		auth, err := cognito.NewAWSClient(ctx, cfg.Cognito.Region, cfg.Cognito.AppClientID, cfg.Cognito.AppClientSecret)
		if err != nil {
			return nil, err
		}
		ts := cognito.NewTokenSource(ctx, auth, cfg.Cognito.Username, cfg.Cognito.Password, cognito.WithLogger(logger))
		opts = append(opts, apiclient.WithTokenSource(ts))
		logger.Info("cognito token source initialized", "region", cfg.Cognito.Region)
	}

	return apiclient.New(cfg.API.BaseURL, opts...), nil
}

func run(ctx context.Context) error {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.ParseLogLevel(),
	}))
	slog.SetDefault(logger)

	logger.Info("config loaded",
		"env", cfg.AppEnv,
		"port", cfg.ServerPort,
		"store", cfg.Store.Driver,
		"api_base_url", cfg.API.BaseURL,
		"log_level", cfg.LogLevel,
	)

	kv, pinger, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer closeStore()

	tasks := service.NewTaskRepository(ctx, kv,
		service.WithStoreKey(cfg.Store.Key),
		service.WithLogger(logger),
	)

	view := render.NewHTMLTree()
	renderer := render.NewRenderer(tasks, view, render.WithActions(handler.Actions))
	tasks.SetOnChange(func(ctx context.Context) {
		if err := renderer.Render(ctx); err != nil {
			logger.ErrorContext(ctx, "render failed", "error", err)
		}
	})
	if err := renderer.Render(ctx); err != nil {
		return err
	}

	api, err := newAPIClient(ctx, cfg, kv, logger)
	if err != nil {
		return fmt.Errorf("failed to create API client: %w", err)
	}

	srv := taskhttp.NewServer(cfg.ServerPort, logger, taskhttp.Deps{
		Tasks: tasks,
		View:  view,
		Store: pinger,
		API:   api,
		Retry: apiclient.RetryPolicy{
			MaxAttempts: cfg.API.MaxAttempts,
			BaseDelay:   cfg.API.BaseDelay,
			Logger:      logger,
		},
		APITimeout: cfg.API.Timeout,
		Logger:     logger,
	})

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	logger.Info("server stopped gracefully")
	return nil
}
