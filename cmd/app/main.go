package main

import (
	"bufio"
	"context"
	"errors"
	"os"
	"os/signal"

	"backoffice/internal/adapters/cli"
	"backoffice/internal/adapters/repl"
	"backoffice/internal/ai"
	"backoffice/internal/app"
	"backoffice/internal/config"
	"backoffice/internal/core"
	"backoffice/internal/db"
	"backoffice/internal/logging"
	"backoffice/internal/metrics"

	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		l := logging.New("console", "info")
		l.Fatal().Err(err).Msg("config")
	}
	// Terminal sessions log to stderr in console format so output on stdout stays clean.
	logger := logging.NewWithWriter(os.Stderr, "console", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("Unable to connect to database")
	}
	defer pool.Close()

	rdb, err := db.NewRedis(ctx, cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis")
	}
	if rdb != nil {
		defer rdb.Close()
	}

	var extractor ai.LineExtractor
	if cfg.OpenAIAPIKey != "" {
		extractor = ai.NewExtractor(cfg.OpenAIAPIKey)
	}

	svc := app.NewAppService(
		core.NewCompanyService(pool),
		core.NewDocumentService(pool, logger),
		core.NewProductService(pool, core.NewProductCache(rdb, cfg.ProductCacheTTL), logger),
		core.NewVendorService(pool),
		core.NewPurchaseOrderService(pool, logger),
		core.NewUserService(pool),
		extractor,
		metrics.NewDocumentMetrics(prometheus.NewRegistry()),
		cfg.CompanyCode,
		logger,
	)

	if len(os.Args) > 1 {
		if err := cli.Run(ctx, svc, os.Args[1:], os.Stdin, os.Stdout); err != nil {
			if _, ok := core.AsValidationError(err); ok || errors.Is(err, cli.ErrReconcile) {
				os.Exit(1)
			}
			logger.Fatal().Err(err).Msg(os.Args[1])
		}
		return
	}

	if err := repl.Run(ctx, svc, bufio.NewReader(os.Stdin), os.Stdout); err != nil {
		logger.Fatal().Err(err).Msg("repl")
	}
}
