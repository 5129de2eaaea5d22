package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/Lauda128109319/food-alert/internal/config"
	"github.com/Lauda128109319/food-alert/internal/db"
	"github.com/Lauda128109319/food-alert/internal/notify"
	"github.com/Lauda128109319/food-alert/internal/observability"
	"github.com/Lauda128109319/food-alert/internal/repo/postgres"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg := config.Load()

	logger := observability.NewLogger(cfg.Env)

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)

	defer stop()

	pool, err := db.NewPool(cfg.DBURL)

	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}

	defer pool.Close()

	// the checker may come up before the api, so it ensures the schema too
	schemaCtx, cancelSchema := config.WithTimeout(10 * time.Second)

	if err := db.EnsureSchema(schemaCtx, pool); err != nil {
		cancelSchema()
		log.Fatalf("schema setup failed: %v", err)
	}

	cancelSchema()

	promReg := prometheus.NewRegistry()
	prom := observability.NewProm(promReg)

	metricsPort := os.Getenv("CHECKER_METRICS_PORT")

	if metricsPort == "" {
		metricsPort = "9091"
	}

	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(promReg, promhttp.HandlerOpts{}))

		if err := http.ListenAndServe(":"+metricsPort, mux); err != nil {
			logger.Error("metrics listener failed", "err", err)
		}
	}()

	foodsRepo := postgres.NewFoodsRepo(pool, prom)
	deliveriesRepo := postgres.NewDeliveriesRepo(pool, prom)

	dedupTTL := 24 * time.Hour

	if v := os.Getenv("DEDUP_TTL_HOURS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			dedupTTL = time.Duration(n) * time.Hour
		}
	}

	dedup := notify.NewRedisDedup(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, dedupTTL)

	defer func() { _ = dedup.Close() }()

	if err := dedup.Ping(ctx); err != nil {
		log.Fatalf("redis connect failed: %v", err)
	}

	notifier := notify.NewProtectedNotifier(notify.NewLogNotifier(), notify.ProtectedNotifierConfig{
		Timeout:          5 * time.Second,
		FailureThreshold: 5,
		Cooldown:         30 * time.Second,
		HalfOpenMaxCalls: 1,
	})

	checker := notify.NewChecker(notify.CheckerConfig{
		Interval: cfg.CheckInterval,
		Window:   cfg.AlertWindow,
	}, foodsRepo, notifier, dedup, deliveriesRepo, prom, logger)

	log.Println("expiry checker has started")

	if err := checker.Run(ctx); err != nil {
		log.Printf("checker stopped with error: %v", err)
	}

	log.Println("checker shutdown complete")
}
