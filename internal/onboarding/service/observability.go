package service

import (
	"context"
	"time"

	"onboard/internal/audit"
	"onboard/internal/onboarding/models"
	id "onboard/pkg/domain"
)

// emitAudit records an audit event. Failures are logged, never returned:
// the state change they describe has already been saved.
func (s *Service) emitAudit(ctx context.Context, event audit.Event) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Emit(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "failed to emit audit event",
			"action", event.Action,
			"subject", event.Subject,
			"error", err,
		)
	}
}

func (s *Service) publish(ctx context.Context, event models.LifecycleEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to publish lifecycle event",
			"type", event.Type,
			"application_id", event.ApplicationID,
			"error", err,
		)
	}
}

// reportOrphans logs uploaded files that ended up attached to no record.
func (s *Service) reportOrphans(ctx context.Context, owner id.UserID, uploaded []models.Document, cause string) {
	if len(uploaded) == 0 {
		return
	}
	urls := make([]string, 0, len(uploaded))
	for _, doc := range uploaded {
		urls = append(urls, doc.FileURL)
		s.emitAudit(ctx, audit.Event{
			ActorID: owner,
			OwnerID: owner,
			Subject: doc.FileURL,
			Action:  audit.ActionUploadOrphaned,
			Reason:  cause,
		})
	}
	s.logger.WarnContext(ctx, "uploaded documents not attached to any application",
		"user_id", owner,
		"cause", cause,
		"file_urls", urls,
	)
}

func (s *Service) incrementSubmission(resubmission bool) {
	if s.metrics != nil {
		s.metrics.IncrementSubmission(resubmission)
	}
}

func (s *Service) incrementDecision(decision string) {
	if s.metrics != nil {
		s.metrics.IncrementDecision(decision)
	}
}

func (s *Service) incrementUploadFailure() {
	if s.metrics != nil {
		s.metrics.IncrementUploadFailure()
	}
}

func (s *Service) incrementUploaded(t models.DocumentType) {
	if s.metrics != nil {
		s.metrics.IncrementUploaded(string(t))
	}
}

func (s *Service) observeSubmit(start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveSubmit(start)
	}
}
