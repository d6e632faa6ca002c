package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/api-sage/core-banking-ledger/internal/adapter/http/middleware"
)

type RouteRegistrar interface {
	RegisterRoutes(r chi.Router)
}

// New assembles the HTTP surface. Health and metrics are open; every
// ledger route sits behind channel basic auth.
func New(channelID, channelKey string, registrars ...RouteRegistrar) chi.Router {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Group(func(api chi.Router) {
		api.Use(middleware.BasicAuth(channelID, channelKey))
		for _, registrar := range registrars {
			registrar.RegisterRoutes(api)
		}
	})

	return r
}
