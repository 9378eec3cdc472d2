package service

import (
	"log/slog"

	onboardingmetrics "onboard/internal/onboarding/metrics"
	"onboard/internal/platform/tracer"
)

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *onboardingmetrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithTracer(t tracer.Tracer) Option {
	return func(s *Service) {
		s.tracer = t
	}
}

// WithSubmitGuard replaces the default in-process guard, e.g. with one shared
// across replicas.
func WithSubmitGuard(g SubmitGuard) Option {
	return func(s *Service) {
		s.guard = g
	}
}

func WithEventPublisher(p EventPublisher) Option {
	return func(s *Service) {
		s.events = p
	}
}

func WithAuditTrail(a AuditTrail) Option {
	return func(s *Service) {
		s.audit = a
	}
}
