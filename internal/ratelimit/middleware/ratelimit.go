// Package middleware enforces request rate limits on chi routes.
package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"onboard/internal/platform/privacy"
	"onboard/internal/ratelimit/models"
	"onboard/pkg/platform/httputil"
	"onboard/pkg/requestcontext"
)

// Store admits or refuses one request against a keyed window.
type Store interface {
	Allow(ctx context.Context, key string, limit models.Limit) (*models.Result, error)
}

type Middleware struct {
	store    Store
	limits   map[models.EndpointClass]models.Limit
	logger   *slog.Logger
	rejected *prometheus.CounterVec
}

type Option func(*Middleware)

// WithLimit overrides the default limit for class.
func WithLimit(class models.EndpointClass, limit models.Limit) Option {
	return func(m *Middleware) {
		if limit.Requests > 0 && limit.Window > 0 {
			m.limits[class] = limit
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(m *Middleware) {
		m.logger = logger
	}
}

// WithRegisterer exposes the rejection counter.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(m *Middleware) {
		m.rejected = promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "onboard_rate_limited_requests_total",
			Help: "Requests refused by the rate limiter",
		}, []string{"class"})
	}
}

func New(store Store, opts ...Option) *Middleware {
	m := &Middleware{
		store:  store,
		limits: make(map[models.EndpointClass]models.Limit, len(models.DefaultLimits)),
	}
	for class, limit := range models.DefaultLimits {
		m.limits[class] = limit
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.logger == nil {
		m.logger = slog.New(slog.DiscardHandler)
	}
	return m
}

// RateLimitIP limits every request of class by anonymized client IP.
func (m *Middleware) RateLimitIP(class models.EndpointClass) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			prefix := privacy.AnonymizeIP(requestcontext.ClientIP(ctx))
			if !m.check(ctx, w, class, prefix, "ip_prefix") {
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RateLimitUser limits mutating requests of class by authenticated user.
// Reads pass through uncounted. Must run after authentication.
func (m *Middleware) RateLimitUser(class models.EndpointClass) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			userID := requestcontext.UserID(ctx)
			if r.Method == http.MethodGet || r.Method == http.MethodHead || userID.IsNil() {
				next.ServeHTTP(w, r)
				return
			}
			if !m.check(ctx, w, class, userID.String(), "user_id") {
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// check reports whether the request may proceed. A failing store lets the
// request through.
func (m *Middleware) check(ctx context.Context, w http.ResponseWriter, class models.EndpointClass, identifier, logKey string) bool {
	result, err := m.store.Allow(ctx, models.Key(class, identifier), m.limits[class])
	if err != nil {
		m.logger.ErrorContext(ctx, "failed to check rate limit",
			"error", err,
			"class", class,
			logKey, identifier,
		)
		return true
	}

	addRateLimitHeaders(w, result)
	if result.Allowed {
		return true
	}

	if m.rejected != nil {
		m.rejected.WithLabelValues(string(class)).Inc()
	}
	m.logger.WarnContext(ctx, "rate limit exceeded",
		"class", class,
		logKey, identifier,
		"request_id", requestcontext.RequestID(ctx),
	)
	w.Header().Set("Retry-After", strconv.Itoa(result.RetryAfter))
	httputil.WriteJSON(w, http.StatusTooManyRequests, models.ExceededResponse{
		Error:       "rate_limit_exceeded",
		Description: "too many requests; please try again later",
		RetryAfter:  result.RetryAfter,
	})
	return false
}

func addRateLimitHeaders(w http.ResponseWriter, result *models.Result) {
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
}
