package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"github.com/trainhub/trainhub/internal/app"
	"github.com/trainhub/trainhub/internal/auth"
	"github.com/trainhub/trainhub/internal/contracts"
	"github.com/trainhub/trainhub/internal/observability"
	"github.com/trainhub/trainhub/internal/platform/cache"
	"github.com/trainhub/trainhub/internal/platform/db"
	"github.com/trainhub/trainhub/internal/rbac"
	"github.com/trainhub/trainhub/internal/schedules"
	"github.com/trainhub/trainhub/internal/users"
	"github.com/trainhub/trainhub/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping server startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server stopped", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *app.Config, logger *slog.Logger) error {
	pool, err := db.New(ctx, cfg.PGDSN, cfg.PGMaxConns)
	if err != nil {
		return err
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		return err
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr}
	jobClient := jobs.NewClient(redisOpts)
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()
	inspector := asynq.NewInspector(redisOpts)
	defer inspector.Close()

	userStore := users.NewRepository(pool)
	evaluator := rbac.NewEvaluator(cfg.AccessPolicy(), users.NewDirectory(userStore))
	issuer := auth.NewTokenIssuer([]byte(cfg.JWTSigningKey), cfg.JWTAccessTTL, cfg.JWTRefreshTTL)
	authService := auth.NewService(userStore, evaluator, issuer, auth.NewRedisDenylist(redisClient), cfg.TokenOptions(), jobClient, logger)
	rbacMiddleware := rbac.Middleware{Authenticator: authService, Logger: logger}

	metrics := observability.NewMetrics()

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		AuthHandler:      auth.NewHandler(logger, authService),
		UsersHandler:     users.NewHandler(logger, users.NewService(userStore, evaluator, jobClient, logger), rbacMiddleware),
		ContractsHandler: contracts.NewHandler(logger, contracts.NewService(contracts.NewRepository(pool), evaluator, jobClient, logger), rbacMiddleware),
		SchedulesHandler: schedules.NewHandler(logger, schedules.NewService(schedules.NewRepository(pool), evaluator, jobClient, logger), rbacMiddleware),
		JobHandler:       jobs.NewHandler(inspector, logger),
		Metrics:          metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server starting", slog.String("addr", cfg.AppAddr), slog.Any("policy", cfg.AccessPolicy()))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		logger.Info("shutting down server")
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
