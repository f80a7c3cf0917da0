package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"utaroom/internal/cache"
	"utaroom/internal/config"
	"utaroom/internal/engine"
	"utaroom/internal/events"
	"utaroom/internal/httpapi"
	"utaroom/internal/metrics"
	"utaroom/internal/model"
	"utaroom/internal/store"
)

func main() {
	// Initialize logger
	output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	logger := zerolog.New(output).With().Timestamp().Logger()

	_ = godotenv.Load()

	cfg, err := config.Load(os.Getenv("UTAROOM_CONFIG_PATH"))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	db, err := store.NewDB(cfg.Database.Path)
	if err != nil {
		logger.Fatal().Err(err).Msg("open db error")
	}
	defer db.Close()

	var rdb *redis.Client
	if cfg.Redis.Address != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	scheduleCache := cache.NewScheduleCache(rdb, time.Duration(cfg.Redis.CacheTTLSeconds)*time.Second)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bus := events.NewEventBus()
	registerSubscribers(ctx, bus, scheduleCache)

	svc := engine.NewService(db, bus, &logger)
	handler := httpapi.NewHandler(svc, scheduleCache, &logger)

	e := echo.New()
	e.HideBanner = true
	e.Use(httpapi.RequestLogger(&logger))
	e.Use(httpapi.RateLimit(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst))
	httpapi.RegisterRoutes(e, handler, readyz(db, rdb))

	if cfg.Monitoring.PrometheusEnabled {
		if cfg.Monitoring.PrometheusPort == 0 {
			cfg.Monitoring.PrometheusPort = 9090
		}
		metrics.Register()
		go startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, &logger)
	}

	if cfg.Backup.Enabled {
		backup := store.NewBackupService(cfg.Database.Path, store.BackupConfig{
			Enabled:       cfg.Backup.Enabled,
			IntervalHours: cfg.Backup.IntervalHours,
			Path:          cfg.Backup.Path,
			RetentionDays: cfg.Backup.RetentionDays,
		}, &logger)
		go backup.Start(ctx)
	}

	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = e.Shutdown(ctxShutdown)
	}()

	logger.Info().Int("port", cfg.Server.Port).Msg("reservation server started")
	if err := e.Start(fmt.Sprintf(":%d", cfg.Server.Port)); err != nil && err != http.ErrServerClosed {
		logger.Fatal().Err(err).Msg("server error")
	}
}

// registerSubscribers wires domain events to metrics and cache
// invalidation. Handlers run synchronously on the mutation path, so
// they stay cheap.
func registerSubscribers(ctx context.Context, bus *events.EventBus, scheduleCache *cache.ScheduleCache) {
	bus.SubscribeAll(func(ev events.Event) error {
		if ev.Date != "" {
			scheduleCache.Invalidate(ctx, ev.Date)
		}
		return nil
	})

	bus.Subscribe(events.ReservationCreated, func(ev events.Event) error {
		if r, ok := ev.Payload.(*model.Reservation); ok {
			metrics.IncReservationCreated(strconv.FormatInt(r.RoomID, 10))
		}
		return nil
	})
	bus.Subscribe(events.ReservationCancelled, func(events.Event) error {
		metrics.IncReservationCancelled()
		return nil
	})
	bus.Subscribe(events.ReservationParked, func(events.Event) error {
		metrics.IncIdleTransition("park")
		return nil
	})
	bus.Subscribe(events.ReservationUnparked, func(events.Event) error {
		metrics.IncIdleTransition("unpark")
		return nil
	})
}

func readyz(db *store.DB, rdb *redis.Client) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctxPing, cancel := context.WithTimeout(c.Request().Context(), time.Second)
		defer cancel()
		if err := db.PingContext(ctxPing); err != nil {
			return c.String(http.StatusServiceUnavailable, "db not ready")
		}
		if rdb != nil {
			if err := rdb.Ping(ctxPing).Err(); err != nil {
				return c.String(http.StatusServiceUnavailable, "redis not ready")
			}
		}
		return c.String(http.StatusOK, "ready")
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
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
