package main

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/tahmid-rahman/counselhub/internal/clock"
	"github.com/tahmid-rahman/counselhub/internal/engine"
	"github.com/tahmid-rahman/counselhub/internal/handlers"
	"github.com/tahmid-rahman/counselhub/internal/seed"
	"github.com/tahmid-rahman/counselhub/internal/state"
	"github.com/tahmid-rahman/counselhub/internal/storage/postgres"
	"github.com/tahmid-rahman/counselhub/internal/sweep"
	"github.com/tahmid-rahman/counselhub/libs/config"
	"github.com/tahmid-rahman/counselhub/libs/db"
	"github.com/tahmid-rahman/counselhub/libs/httpx"
	otelx "github.com/tahmid-rahman/counselhub/libs/otel"
	"github.com/tahmid-rahman/counselhub/libs/runtime"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	service := config.String("SERVICE_NAME", "lifecycled")
	port, err := config.Port("PORT", "8080")
	if err != nil {
		panic(err)
	}
	logger := runtime.NewLogger(service)

	ctx, stop := runtime.SignalContext()
	defer stop()

	otelShutdown, err := otelx.Setup(ctx, otelx.ConfigFromEnv(service))
	if err != nil {
		logger.Error("otel setup failed", "err", err)
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = otelShutdown(shutdownCtx)
		}()
	}

	sysClock := clock.System()

	var initial state.Snapshot
	if config.String("SEED_DEMO_DATA", "true") != "false" {
		initial = seed.Snapshot(sysClock.Now())
	}

	engineOpts := []engine.Option{
		engine.WithClock(sysClock),
		engine.WithLogger(logger),
	}

	var pool *db.Pool
	if dbURL := config.String("DATABASE_URL", ""); dbURL != "" {
		pool, err = db.Open(ctx, dbURL)
		if err != nil {
			logger.Error("db connection failed", "err", err)
			panic(err)
		}
		defer pool.Close()
		if err := postgres.EnsureSchema(ctx, pool); err != nil {
			logger.Error("journal schema setup failed", "err", err)
			panic(err)
		}
		engineOpts = append(engineOpts, engine.WithJournal(postgres.NewJournal(pool)))
		logger.Info("journal enabled")
	}

	eng := engine.New(initial, engineOpts...)
	defer eng.Close()

	sweeper := sweep.New(eng, sysClock, logger, sweep.Config{
		Interval: config.Duration("SWEEP_INTERVAL", 5*time.Second),
	})
	go sweeper.Run(ctx)

	stateHandler := handlers.NewStateHandler(eng, logger)

	var checks []runtime.ReadyCheck
	if pool != nil {
		checks = append(checks, runtime.ReadyCheck{Name: "db", Check: db.ReadyCheck(pool)})
	}
	mux := runtime.NewBaseMuxWithReady(checks...)
	mux.HandleFunc("/v1/state", stateHandler.Overview)
	mux.HandleFunc("/v1/notifications", stateHandler.Notifications)
	mux.HandleFunc("/v1/config", stateHandler.Config)

	limiter := httpx.NewRateLimiter(config.Int("RATE_LIMIT", 100), time.Minute)
	httpHandler := httpx.Chain(mux,
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
		httpx.WithCORS(splitOrigins(config.String("CORS_ALLOWED_ORIGINS", ""))),
		limiter.Middleware(),
		httpx.WithTimeout(10*time.Second),
	)
	httpHandler = otelhttp.NewHandler(httpHandler, "lifecycle")
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           httpHandler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server error", "err", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "err", err)
	}
	logger.Info("http server stopped")
}

func splitOrigins(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	return strings.Split(raw, ",")
}
