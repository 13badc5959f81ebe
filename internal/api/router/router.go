package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	httpmiddleware "github.com/planetaskin/lead-intake/internal/api/middleware"
	"github.com/planetaskin/lead-intake/internal/intake"
	"github.com/planetaskin/lead-intake/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger         *logging.Logger
	IntakeHandler  *intake.Handler
	MetricsHandler http.Handler

	// SiteDir serves the static marketing site when non-empty.
	SiteDir string
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	// All methods route to the handler; it redirects anything that is
	// not a POST.
	r.HandleFunc("/send-form", cfg.IntakeHandler.Submit)
	r.HandleFunc("/send-form/", cfg.IntakeHandler.Submit)

	if cfg.SiteDir != "" {
		fileServer := http.FileServer(http.Dir(cfg.SiteDir))
		r.Handle("/*", fileServer)
	}

	return r
}
