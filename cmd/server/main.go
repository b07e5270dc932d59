package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	webAdapter "backoffice/internal/adapters/web"
	"backoffice/internal/ai"
	"backoffice/internal/app"
	"backoffice/internal/config"
	"backoffice/internal/core"
	"backoffice/internal/db"
	"backoffice/internal/logging"
	"backoffice/internal/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		l := logging.New("console", "info")
		l.Fatal().Err(err).Msg("config")
	}
	logger := logging.New(cfg.LogFormat, cfg.LogLevel)
	if err := cfg.RequireJWT(); err != nil {
		logger.Fatal().Err(err).Msg("config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	version, err := db.Migrate(cfg.DatabaseURL, cfg.MigrationsDir)
	if err != nil {
		logger.Fatal().Err(err).Msg("migrate")
	}
	logger.Info().Uint("version", version).Msg("schema up to date")

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("database")
	}
	defer pool.Close()

	rdb, err := db.NewRedis(ctx, cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis")
	}
	if rdb == nil {
		logger.Warn().Msg("REDIS_URL is not set; product lookups are not cached")
	} else {
		defer rdb.Close()
	}

	var extractor ai.LineExtractor
	if cfg.OpenAIAPIKey != "" {
		extractor = ai.NewExtractor(cfg.OpenAIAPIKey)
	} else {
		logger.Warn().Msg("OPENAI_API_KEY is not set; line extraction is disabled")
	}

	svc := app.NewAppService(
		core.NewCompanyService(pool),
		core.NewDocumentService(pool, logger),
		core.NewProductService(pool, core.NewProductCache(rdb, cfg.ProductCacheTTL), logger),
		core.NewVendorService(pool),
		core.NewPurchaseOrderService(pool, logger),
		core.NewUserService(pool),
		extractor,
		metrics.NewDocumentMetrics(prometheus.DefaultRegisterer),
		cfg.CompanyCode,
		logger,
	)

	handler := webAdapter.NewHandler(svc, webAdapter.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		JWTSecret:      cfg.JWTSecret,
		Logger:         logger,
		Metrics:        metrics.NewHTTPMetrics(prometheus.DefaultRegisterer),
		MetricsHandler: promhttp.Handler(),
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("shutdown")
		}
	}()

	logger.Info().Str("addr", srv.Addr).Msg("server starting")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal().Err(err).Msg("server")
	}
	logger.Info().Msg("server stopped")
}
