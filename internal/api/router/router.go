// Package router wires the widget gateway's HTTP surface onto a chi router.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/smartserveai/widget-gateway/internal/http/handlers"
	httpmiddleware "github.com/smartserveai/widget-gateway/internal/http/middleware"
	"github.com/smartserveai/widget-gateway/pkg/logging"
)

// Config holds router configuration.
type Config struct {
	Logger         *logging.Logger
	ChatHandler    *handlers.ChatHandler
	BookingHandler *handlers.BookingHandler
	WidgetHandler  *handlers.WidgetHandler
	MetricsHandler http.Handler

	EmbedAuth          httpmiddleware.EmbedAuthConfig
	CORSAllowedOrigins []string
	RateLimitPerSec    float64
	RateLimitBurst     int
}

// New creates a chi router with all routes configured.
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}
	if cfg.RateLimitPerSec > 0 {
		r.Use(httpmiddleware.RateLimit(cfg.RateLimitPerSec, cfg.RateLimitBurst))
	}

	// Public endpoints: the widget asset, health, metrics.
	r.Group(func(public chi.Router) {
		if cfg.WidgetHandler != nil {
			public.Get("/widget.js", cfg.WidgetHandler.HandleWidgetJS)
			public.Get("/health", cfg.WidgetHandler.HandleHealth)
		}
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
	})

	// Embed-authenticated API used by the widget itself.
	r.Route("/api", func(api chi.Router) {
		api.Use(httpmiddleware.EmbedAuth(cfg.EmbedAuth))

		if cfg.ChatHandler != nil {
			api.Post("/chat", cfg.ChatHandler.HandleMessage)
			api.Get("/chat/history", cfg.ChatHandler.HandleHistory)
		}

		if cfg.BookingHandler != nil {
			api.Route("/booking", func(b chi.Router) {
				b.Post("/open", cfg.BookingHandler.HandleOpen)
				b.Post("/times", cfg.BookingHandler.HandleTimes)
				b.Post("/select", cfg.BookingHandler.HandleSelect)
				b.Post("/next", cfg.BookingHandler.HandleNext)
				b.Post("/back", cfg.BookingHandler.HandleBack)
				b.Post("/confirm", cfg.BookingHandler.HandleConfirm)
				b.Post("/close", cfg.BookingHandler.HandleClose)
				b.Get("/state", cfg.BookingHandler.HandleState)
			})
		}
	})

	return r
}
