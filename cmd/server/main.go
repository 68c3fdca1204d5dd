package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"venuebook/internal/api"
	"venuebook/internal/cache"
	"venuebook/internal/config"
	"venuebook/internal/database"
	"venuebook/internal/events"
	"venuebook/internal/export"
	"venuebook/internal/lifecycle"
	"venuebook/internal/metrics"
	"venuebook/internal/reminders"
	"venuebook/internal/service"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	_ = godotenv.Load()

	output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	logger := zerolog.New(output).With().Timestamp().Logger()

	cfg, err := config.Load(os.Getenv("VENUEBOOK_CONFIG_PATH"))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	loc := cfg.Location()
	machine := lifecycle.NewMachine(loc)

	dbLogger := logger.With().Str("component", "database").Logger()
	db, err := database.NewDB(cfg.Database.Path, machine, loc, &dbLogger)
	if err != nil {
		logger.Fatal().Err(err).Msg("open db error")
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Seed.AdminToken != "" {
		if err := db.EnsureAdmin(ctx, cfg.Seed.AdminName, cfg.Seed.AdminEmail, cfg.Seed.AdminToken); err != nil {
			logger.Fatal().Err(err).Msg("seed admin error")
		}
	}

	var rdb *redis.Client
	var catalogCache *cache.Catalog
	if ttl := cfg.CacheTTL(); ttl > 0 {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		cacheLogger := logger.With().Str("component", "cache").Logger()
		catalogCache = cache.NewCatalog(rdb, ttl, &cacheLogger)
		logger.Info().Str("addr", cfg.Redis.Address).Dur("ttl", ttl).Msg("catalog cache enabled")
	}

	eventLogger := logger.With().Str("component", "events").Logger()
	bus := events.NewBus(&eventLogger)
	for _, eventType := range []string{
		events.BookingCreated,
		events.BookingTransitioned,
		events.BookingDeleted,
		events.BookingReminder,
	} {
		bus.Subscribe(eventType, func(e events.Event) error {
			eventLogger.Info().Str("type", e.Type).RawJSON("payload", e.Payload).Msg("event")
			return nil
		})
	}

	svcLogger := logger.With().Str("component", "service").Logger()
	bookings := service.NewBookingService(db, bus, loc, cfg.Booking.MaxAdvanceDays, &svcLogger)
	var catalog *service.CatalogService
	if catalogCache != nil {
		catalog = service.NewCatalogService(db, catalogCache, &svcLogger)
	} else {
		catalog = service.NewCatalogService(db, nil, &svcLogger)
	}
	messaging := service.NewMessagingService(db, &svcLogger)
	accounts := service.NewAccountService(db, &svcLogger)
	exporter := export.NewBookingExporter(db, nil)

	if cfg.Reminders.Enabled {
		remLogger := logger.With().Str("component", "reminders").Logger()
		scheduler := reminders.NewScheduler(reminders.Config{
			DailyHour:     cfg.Reminders.DailyHour,
			DailyMinute:   cfg.Reminders.DailyMinute,
			CheckInterval: time.Minute,
			RatePerSecond: cfg.Reminders.SendRate,
			Burst:         cfg.Reminders.SendBurst,
		}, db, reminders.NewEventNotifier(bus), loc, &remLogger)
		go scheduler.Start(ctx)
	}

	if cfg.Backup.Enabled {
		backupLogger := logger.With().Str("component", "backup").Logger()
		backup := database.NewBackupService(cfg.Database.Path, cfg.Backup, &backupLogger)
		go backup.Start(ctx)
	}

	apiLogger := logger.With().Str("component", "api").Logger()
	server := api.NewHTTPServer(api.Options{
		Bookings:      bookings,
		Catalog:       catalog,
		Messaging:     messaging,
		Accounts:      accounts,
		Exporter:      exporter,
		Tokens:        db,
		RatePerSecond: cfg.RateLimit.PerSecond,
		Burst:         cfg.RateLimit.Burst,
		Logger:        &apiLogger,
	})

	if cfg.Monitoring.HealthCheckPort == 0 {
		cfg.Monitoring.HealthCheckPort = 8090
	}
	go startHealthServer(ctx, cfg.Monitoring.HealthCheckPort, db, rdb, &logger)

	if cfg.Monitoring.PrometheusEnabled {
		if cfg.Monitoring.PrometheusPort == 0 {
			cfg.Monitoring.PrometheusPort = 9090
		}
		metrics.Register()
		go startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, &logger)
	}

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      server.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()

	logger.Info().Str("addr", cfg.Server.Addr).Msg("venuebook started")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal().Err(err).Msg("server error")
	}
	logger.Info().Msg("venuebook stopped")
}

func startHealthServer(ctx context.Context, port int, db *database.DB, rdb *redis.Client, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		ctxPing, cancel := context.WithTimeout(ctx, time.Second)
		defer cancel()
		if err := db.PingContext(ctxPing); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		if rdb != nil {
			if err := rdb.Ping(ctxPing).Err(); err != nil {
				http.Error(w, "redis not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error().Err(err).Msg("health server error")
	}
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
