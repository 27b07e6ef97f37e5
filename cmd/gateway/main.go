package main

import (
	"context"
	"crypto/tls"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/smartserveai/widget-gateway/internal/api/router"
	"github.com/smartserveai/widget-gateway/internal/booking"
	"github.com/smartserveai/widget-gateway/internal/chat"
	appconfig "github.com/smartserveai/widget-gateway/internal/config"
	"github.com/smartserveai/widget-gateway/internal/http/handlers"
	httpmiddleware "github.com/smartserveai/widget-gateway/internal/http/middleware"
	"github.com/smartserveai/widget-gateway/internal/observability/metrics"
	"github.com/smartserveai/widget-gateway/internal/wizard"
	"github.com/smartserveai/widget-gateway/pkg/logging"
)

func main() {
	// Load .env in development; ignored when the file is absent.
	_ = godotenv.Load()

	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting widget gateway",
		"env", cfg.Env,
		"port", cfg.Port,
		"venue_id", cfg.VenueID,
	)

	if cfg.VenueID == "" || cfg.EmbedKey == "" {
		logger.Error("SS_VENUE_ID and SS_EMBED_KEY must be set")
		os.Exit(1)
	}

	// Redis backs session ids and chat transcripts.
	redisOpts := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOpts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	rdb := redis.NewClient(redisOpts)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		logger.Error("failed to connect to redis", "error", err, "addr", cfg.RedisAddr)
		os.Exit(1)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	widgetMetrics := metrics.NewWidgetMetrics(reg)

	sessions := chat.NewSessionStore(rdb, cfg.SessionTTL, nil)
	transcripts := chat.NewTranscriptStore(rdb, cfg.SessionTTL, nil)

	assistant := chat.NewClient(chat.ClientConfig{
		ChatAPIBase: cfg.ChatAPIBase,
		APIKey:      cfg.ChatAPIKey,
		VenueID:     cfg.VenueID,
	}, logger)

	bookingClient := booking.NewClient(booking.ClientConfig{
		VenueID:           cfg.VenueID,
		EmbedKey:          cfg.EmbedKey,
		BookingAPIBase:    cfg.BookingAPIBase,
		AvailabilityPath:  cfg.AvailabilityPath,
		CreateBookingPath: cfg.CreateBookingPath,
	}, logger)

	manager := wizard.NewManager(bookingClient, func(sessionID string, res *booking.CommitResult) {
		logger.Info("booking confirmed",
			"session_id", sessionID,
			"confirmation_code", res.ConfirmationCode,
			"status", res.Status,
		)
	}, logger)

	chatHandler := handlers.NewChatHandler(assistant, sessions, transcripts, manager, widgetMetrics, logger)
	bookingHandler := handlers.NewBookingHandler(manager, widgetMetrics, logger)
	widgetHandler := handlers.NewWidgetHandler(handlers.WidgetScript(cfg.PublicBaseURL, cfg.VenueID), logger)

	r := router.New(&router.Config{
		Logger:         logger,
		ChatHandler:    chatHandler,
		BookingHandler: bookingHandler,
		WidgetHandler:  widgetHandler,
		MetricsHandler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		EmbedAuth: httpmiddleware.EmbedAuthConfig{
			VenueID:   cfg.VenueID,
			StaticKey: cfg.EmbedKey,
			JWTSecret: cfg.EmbedJWTSecret,
		},
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimitPerSec:    cfg.RateLimitPerSec,
		RateLimitBurst:     cfg.RateLimitBurst,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	if err := rdb.Close(); err != nil {
		logger.Warn("failed to close redis client", "error", err)
	}

	logger.Info("server stopped")
}
