package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tutomatics/internal/api"
	"tutomatics/internal/config"
	"tutomatics/internal/database"
	"tutomatics/internal/domain"
	"tutomatics/internal/events"
	"tutomatics/internal/google"
	"tutomatics/internal/logging"
	"tutomatics/internal/metrics"
	"tutomatics/internal/repository"
	"tutomatics/internal/service"
	"tutomatics/internal/worker"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func() { _ = closer.Close() })()
	}

	db, err := database.NewDB(cfg.Database.Path, &logger)
	if err != nil {
		logger.Error().Err(err).Msg("database init failed")
		return err
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	redisClient := initRedis(ctx, cfg, &logger)
	if redisClient != nil {
		defer redisClient.Close()
	}

	cache := initAvailabilityCache(cfg, redisClient, &logger)
	eventBus := events.NewEventBus()
	subscribeAuditLog(eventBus, &logger)

	sheetsService := initGoogleSheets(ctx, cfg, &logger)

	var syncWorker domain.SyncWorker
	if sheetsService != nil {
		retryPolicy := worker.RetryPolicy{MaxRetries: 5, InitialDelay: 2 * time.Second, MaxDelay: time.Minute, BackoffFactor: 2}
		sheetsWorker := worker.NewSheetsWorker(db, sheetsService, redisClient, retryPolicy, &logger)
		go sheetsWorker.Start(ctx)
		syncWorker = sheetsWorker
	}

	availabilityService := service.NewAvailabilityService(db, cache, &logger)
	bookingService := service.NewBookingService(db, availabilityService, eventBus, syncWorker, cfg.Booking.EnforceAvailability, &logger)
	userService := service.NewUserService(db, eventBus, &logger)

	startMetrics(ctx, cfg, &logger)

	httpServer := api.NewHTTPServer(cfg.API, bookingService, availabilityService, userService, db, &logger)

	go func() {
		if !cfg.API.HTTP.Enabled {
			return
		}
		if err := httpServer.Start(); err != nil {
			logger.Error().Err(err).Msg("http server stopped")
		}
	}()

	logger.Info().Int("http_port", cfg.API.HTTP.Port).Msg("API server started")

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = httpServer.Shutdown(shutdownCtx)

	logger.Info().Msg("API server stopped")
	return nil
}

func loadConfigAndLogger() (*config.Config, zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Logger{}, nil, err
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, zerolog.Logger{}, nil, err
	}
	logger := baseLogger.With().Str("component", "api-main").Logger()

	return cfg, logger, closer, nil
}

func initRedis(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) *redis.Client {
	if cfg.Redis.Address == "" {
		return nil
	}

	client := repository.NewRedisClient(cfg.Redis)
	if err := repository.Ping(ctx, client); err != nil {
		logger.Warn().Err(err).Msg("Redis unavailable")
	}
	return client
}

func initAvailabilityCache(cfg *config.Config, redisClient *redis.Client, logger *zerolog.Logger) domain.AvailabilityCache {
	ttl := time.Duration(cfg.Booking.AvailabilityCacheTTLSeconds) * time.Second
	memory := repository.NewMemoryAvailabilityCache(ttl)
	if redisClient == nil {
		return memory
	}

	primary := repository.NewRedisAvailabilityCache(redisClient, ttl)
	return repository.NewFailoverAvailabilityCache(primary, memory, logger)
}

func initGoogleSheets(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) *google.SheetsService {
	if cfg.Google.GoogleCredentialsFile == "" || cfg.Google.BookingSpreadSheetID == "" {
		logger.Info().Msg("google sheets not configured, sync disabled")
		return nil
	}

	sheetsService, err := google.NewSheetsService(cfg.Google.GoogleCredentialsFile, cfg.Google.BookingSpreadSheetID)
	if err != nil {
		logger.Warn().Err(err).Msg("google sheets init failed, continuing without sheets")
		return nil
	}

	if err := sheetsService.TestConnection(ctx); err != nil {
		logger.Warn().Err(err).Msg("google sheets connection test failed, continuing without sheets")
		return nil
	}

	logger.Info().Msg("google sheets connected")
	return sheetsService
}

func startMetrics(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}

	metrics.Register()
	port := cfg.Monitoring.PrometheusPort
	if port == 0 {
		port = 9090
	}
	go startMetricsServer(ctx, port, logger)
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

func subscribeAuditLog(bus *events.EventBus, logger *zerolog.Logger) {
	audit := logger.With().Str("component", "audit").Logger()

	bookingHandler := func(ev *events.Event) error {
		var payload events.BookingEventPayload
		if err := json.Unmarshal(ev.Payload, &payload); err != nil {
			audit.Error().Err(err).Str("event", ev.Type).Msg("decode payload")
			return nil
		}
		audit.Info().
			Str("event", ev.Type).
			Int64("booking_id", payload.BookingID).
			Int64("student_id", payload.StudentID).
			Str("status", payload.Status).
			Msg("booking event")
		return nil
	}

	userHandler := func(ev *events.Event) error {
		var payload events.UserEventPayload
		if err := json.Unmarshal(ev.Payload, &payload); err != nil {
			audit.Error().Err(err).Str("event", ev.Type).Msg("decode payload")
			return nil
		}
		audit.Info().
			Str("event", ev.Type).
			Int64("user_id", payload.UserID).
			Str("status", payload.Status).
			Msg("user event")
		return nil
	}

	for _, t := range []string{
		events.EventBookingRequested,
		events.EventBookingAccepted,
		events.EventBookingDenied,
		events.EventBookingCancelled,
	} {
		bus.Subscribe(t, bookingHandler)
	}
	for _, t := range []string{
		events.EventSignupRequested,
		events.EventSignupApproved,
		events.EventSignupDenied,
	} {
		bus.Subscribe(t, userHandler)
	}
}
