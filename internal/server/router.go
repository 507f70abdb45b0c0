package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"github.com/rpattn/liftdesk/internal/auth"
	"github.com/rpattn/liftdesk/internal/config"
	"github.com/rpattn/liftdesk/internal/ingestion"
	"github.com/rpattn/liftdesk/internal/middleware"
)

// NewRouter mounts the import API under /api/tenants/{tenantID}/imports
// next to /healthz and /metrics.
func NewRouter(app *App, cfg config.HTTPConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.LoggingMiddleware(app.Logger))
	r.Use(chimw.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.HandlerFor(app.Registry, promhttp.HandlerOpts{}))

	imports := ingestion.NewHTTPHandler(app.Service, cfg.MaxUploadBytes, app.Logger)
	r.Route("/api/tenants/{tenantID}", func(r chi.Router) {
		r.Use(auth.HeaderMiddleware)
		r.Use(middleware.DataLoaderMiddleware(app.Stores.Lookups))
		r.Mount("/imports", imports.Routes())
	})

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"Content-Disposition"},
	})
	return corsHandler.Handler(r)
}
