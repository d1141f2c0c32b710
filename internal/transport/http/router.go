package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"pbd/internal/platform/health"
	"pbd/pkg/platform/middleware/auth"
	"pbd/pkg/platform/middleware/request"
)

const (
	requestTimeout = 30 * time.Second
	maxBodyBytes   = 16 * 1024
)

// RouterDeps are the pieces NewRouter mounts.
type RouterDeps struct {
	Handler        *Handler
	Health         *health.Handler
	TokenValidator auth.AppTokenValidator
	Metrics        *request.Metrics
	// MetricsHandler serves /metrics when set.
	MetricsHandler http.Handler
	Logger         *slog.Logger
}

// NewRouter wires the public endpoints and their middleware.
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(request.Recovery(deps.Logger))
	r.Use(request.RequestID)
	r.Use(request.RequestTime)
	r.Use(request.ClientIP)
	r.Use(request.Logger(deps.Logger))
	r.Use(request.Latency(deps.Metrics))

	if deps.Health != nil {
		deps.Health.Register(r)
	}
	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	r.Group(func(r chi.Router) {
		r.Use(request.Timeout(requestTimeout))
		r.Use(request.BodyLimit(maxBodyBytes))
		r.Use(request.ContentTypeJSON)

		r.Route("/v1", func(r chi.Router) {
			r.Use(auth.RequireApp(deps.TokenValidator, deps.Logger))
			deps.Handler.Register(r)
		})
		deps.Handler.RegisterPlatform(r)
	})

	return r
}
