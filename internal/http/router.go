// Package httpapi assembles the service router. Handlers stay thin and
// delegate to domain services; everything behind /api requires an
// organization-scoped bearer token.
package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"convoy/internal/platform/middleware"
	"convoy/pkg/platform/httputil"
	"convoy/pkg/platform/middleware/requestid"
	"convoy/pkg/platform/middleware/requesttime"
)

// Registrar is implemented by every feature handler.
type Registrar interface {
	Register(r chi.Router)
}

// Handlers collects the feature handlers mounted on the authenticated API.
type Handlers struct {
	Scoring      Registrar
	Intervention Registrar
	Coaching     Registrar
	WorkOrder    Registrar
	Compliance   Registrar
}

// New wires the full router: public health and metrics endpoints, then the
// org-scoped API group behind request id, request time, and token middleware.
func New(h Handlers, signingKey string, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(requestid.Middleware)
	r.Use(requesttime.Middleware)

	r.Get("/healthz", handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(api chi.Router) {
		api.Use(middleware.RequireOrgContext(signingKey, logger))
		for _, reg := range []Registrar{
			h.Scoring,
			h.Intervention,
			h.Coaching,
			h.WorkOrder,
			h.Compliance,
		} {
			if reg != nil {
				reg.Register(api)
			}
		}
	})

	return r
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
