package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/shareeat/shareeat/internal/api"
	"github.com/shareeat/shareeat/internal/config"
	"github.com/shareeat/shareeat/internal/dispatch"
	"github.com/shareeat/shareeat/internal/matching"
	"github.com/shareeat/shareeat/internal/metrics"
	"github.com/shareeat/shareeat/internal/notify"
	"github.com/shareeat/shareeat/internal/repository/postgres"
	"github.com/shareeat/shareeat/internal/routing"
	"github.com/shareeat/shareeat/internal/service"
	"github.com/shareeat/shareeat/pkg/logger"

	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// .env is optional; environment variables win either way.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	l := logger.New(cfg.LogLevel)
	l.Info("Starting shareeat...")

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		l.Info("Received shutdown signal...")
		cancel()
	}()

	// Database
	db, err := config.NewDatabase(ctx, cfg.DatabaseURL, l)
	if err != nil {
		l.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Run migrations
	if err := db.Migrate("migrations"); err != nil {
		l.Fatalf("Failed to run migrations: %v", err)
	}

	store := postgres.NewStore(db.DB)

	// Routing, with an optional redis distance cache.
	var routeCache *redis.Client
	if cfg.RedisAddr != "" {
		routeCache = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		if err := routeCache.Ping(ctx).Err(); err != nil {
			l.WithError(err).Warn("Redis unreachable, running without route cache")
			routeCache = nil
		}
	}
	router := routing.NewORSRouter(cfg.OpenRouteServiceKey, routeCache, l)

	// Matching and dispatch
	matcher := matching.NewEngine(store.Recipients(), l)
	selector := dispatch.NewSelector(router, l)
	planner := dispatch.NewPlanner(selector, l)

	// Notifications and operator alerts
	notifier := notify.NewPersistedNotifier(store.Notifications())

	var alerts notify.AlertSink = notify.NopSink{}
	switch {
	case cfg.TelegramToken != "" && cfg.TelegramOpsChatID != 0:
		sink, err := notify.NewTelegramSink(cfg.TelegramToken, cfg.TelegramOpsChatID, l)
		if err != nil {
			l.WithError(err).Warn("Telegram sink unavailable, operator alerts disabled")
		} else {
			alerts = sink
		}
	case cfg.SMTPHost != "" && len(cfg.AlertTo) > 0:
		alerts = notify.NewSMTPSink(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.AlertFrom, cfg.AlertTo)
	}

	m := metrics.New(prometheus.DefaultRegisterer)

	svc := service.New(store, matcher, planner, notifier, alerts, store.Users(), m, l)

	// Background sweep for stale unassigned donations
	go svc.StartSweeper(ctx, cfg.SweepInterval)

	// Prometheus endpoint on its own port
	metricsServer := &http.Server{
		Addr:    ":" + cfg.PrometheusPort,
		Handler: promhttp.Handler(),
	}
	go func() {
		l.Infof("Metrics server listening on :%s", cfg.PrometheusPort)
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			l.Errorf("Metrics server error: %v", err)
		}
	}()

	// HTTP API
	apiServer := api.NewServer(svc, l)
	httpServer := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: apiServer.Handler(),
	}

	go func() {
		l.Infof("HTTP server listening on :%s", cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			l.Errorf("HTTP server error: %v", err)
		}
	}()

	l.Info("shareeat started successfully")

	<-ctx.Done()

	l.Info("Shutting down HTTP server...")
	httpServer.Close()
	metricsServer.Close()
	if routeCache != nil {
		routeCache.Close()
	}

	l.Info("shareeat stopped")
}
