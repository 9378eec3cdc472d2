// Package httptransport assembles the HTTP surface from the module handlers.
package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"onboard/internal/platform/metrics"
	ratelimit "onboard/internal/ratelimit/middleware"
	ratelimitmodels "onboard/internal/ratelimit/models"
	"onboard/pkg/platform/middleware/auth"
	"onboard/pkg/platform/middleware/request"
	limits "onboard/pkg/platform/validation"
)

// RouteRegistrar mounts a module's routes on a chi router.
type RouteRegistrar interface {
	Register(r chi.Router)
}

// HRRouteRegistrar mounts routes reserved for HR reviewers.
type HRRouteRegistrar interface {
	RegisterHR(r chi.Router)
}

// Dependencies are the pieces NewRouter wires together. Registry and Health
// are optional.
type Dependencies struct {
	Logger   *slog.Logger
	Registry *prometheus.Registry
	Tokens   auth.JWTValidator
	Health   RouteRegistrar

	// Public routes need no token.
	Public []RouteRegistrar
	// Authenticated routes require any valid token.
	Authenticated []RouteRegistrar
	// HR routes require a token carrying the HR role.
	HR []HRRouteRegistrar

	// RateLimit, when set, limits public routes per network and mutating
	// authenticated routes per user.
	RateLimit *ratelimit.Middleware

	// JSONTimeout bounds the JSON-only public routes. Upload and download
	// routes rely on the server timeouts instead.
	JSONTimeout time.Duration
}

// NewRouter wires all endpoints with the shared middleware stack.
func NewRouter(deps Dependencies) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	r := chi.NewRouter()
	r.Use(request.Recovery(logger))
	r.Use(request.RequestID)
	r.Use(request.RequestTime)
	r.Use(request.ClientMetadata)
	r.Use(request.Logger(logger))
	if deps.Registry != nil {
		r.Use(request.LatencyMiddleware(request.NewMetrics(deps.Registry)))
		r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.Registry))
	}

	if deps.Health != nil {
		deps.Health.Register(r)
	}

	r.Group(func(r chi.Router) {
		r.Use(request.ContentTypeJSON)
		r.Use(request.BodyLimit(limits.MaxBodySize))
		if deps.RateLimit != nil {
			r.Use(deps.RateLimit.RateLimitIP(ratelimitmodels.ClassAuth))
		}
		if deps.JSONTimeout > 0 {
			r.Use(request.Timeout(deps.JSONTimeout))
		}
		for _, reg := range deps.Public {
			reg.Register(r)
		}
	})

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(deps.Tokens, logger))
		if deps.RateLimit != nil {
			r.Use(deps.RateLimit.RateLimitUser(ratelimitmodels.ClassWrite))
		}
		for _, reg := range deps.Authenticated {
			reg.Register(r)
		}
	})

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(deps.Tokens, logger))
		r.Use(auth.RequireHR(logger))
		r.Use(request.ContentTypeJSON)
		r.Use(request.BodyLimit(limits.MaxBodySize))
		for _, reg := range deps.HR {
			reg.RegisterHR(r)
		}
	})

	return r
}
