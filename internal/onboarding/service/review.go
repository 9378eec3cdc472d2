package service

import (
	"context"
	"time"

	"onboard/internal/audit"
	"onboard/internal/onboarding/models"
	"onboard/internal/platform/tracer"
	id "onboard/pkg/domain"
	dErrors "onboard/pkg/domain-errors"
	limits "onboard/pkg/platform/validation"
	"onboard/pkg/requestcontext"
)

const (
	decisionApproved = "approved"
	decisionRejected = "rejected"
)

// Approve moves a pending application to approved. Approving anything else,
// including an already approved record, fails with invalid_state_transition.
// A concurrent decision on the same version fails with conflict.
func (s *Service) Approve(ctx context.Context, actorID id.UserID, appID id.ApplicationID) (app *models.Application, err error) {
	ctx, span := s.startReview(ctx, appID, decisionApproved)
	defer func() { span.End(err) }()

	app, err = s.loadForReview(ctx, actorID, appID)
	if err != nil {
		return nil, err
	}
	now := requestcontext.Now(ctx)
	if err := app.Approve(now); err != nil {
		return nil, transitionErr(err, "only pending applications can be approved")
	}
	if err := s.store.Update(ctx, app); err != nil {
		return nil, wrapSaveErr(err)
	}

	s.recordDecision(ctx, actorID, app, audit.ActionApplicationApproved, models.EventApproved, decisionApproved, now)
	return app, nil
}

// Reject moves a pending application to rejected with non-empty feedback.
func (s *Service) Reject(ctx context.Context, actorID id.UserID, appID id.ApplicationID, feedback string) (app *models.Application, err error) {
	ctx, span := s.startReview(ctx, appID, decisionRejected)
	defer func() { span.End(err) }()

	if err := limits.CheckStringLength("feedback", feedback, limits.MaxFeedbackLength); err != nil {
		return nil, err
	}
	app, err = s.loadForReview(ctx, actorID, appID)
	if err != nil {
		return nil, err
	}
	now := requestcontext.Now(ctx)
	if err := app.Reject(feedback, now); err != nil {
		return nil, transitionErr(err, "only pending applications can be rejected")
	}
	if err := s.store.Update(ctx, app); err != nil {
		return nil, wrapSaveErr(err)
	}

	s.recordDecision(ctx, actorID, app, audit.ActionApplicationRejected, models.EventRejected, decisionRejected, now)
	return app, nil
}

func (s *Service) startReview(ctx context.Context, appID id.ApplicationID, decision string) (context.Context, tracer.Span) {
	return s.tracer.Start(ctx, tracer.SpanReview,
		tracer.String(tracer.AttrApplicationID, appID.String()),
		tracer.String(tracer.AttrDecision, decision),
	)
}

func (s *Service) loadForReview(ctx context.Context, actorID id.UserID, appID id.ApplicationID) (*models.Application, error) {
	if actorID.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "reviewer ID required")
	}
	if appID.IsNil() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "application ID required")
	}
	app, err := s.store.FindByID(ctx, appID)
	if err != nil {
		return nil, wrapLoadErr(err, "failed to load application")
	}
	return app, nil
}

func (s *Service) recordDecision(ctx context.Context, actorID id.UserID, app *models.Application,
	action audit.Action, eventType models.EventType, decision string, now time.Time) {
	s.emitAudit(ctx, audit.Event{
		ActorID:  actorID,
		OwnerID:  app.UserID,
		Subject:  app.ID.String(),
		Action:   action,
		Decision: decision,
		Reason:   app.RejectionFeedback,
	})
	s.publish(ctx, models.NewLifecycleEvent(eventType, app, actorID, now))
	s.incrementDecision(decision)
	s.logger.InfoContext(ctx, "application reviewed",
		"application_id", app.ID,
		"reviewer_id", actorID,
		"decision", decision,
		"version", app.Version,
	)
}
