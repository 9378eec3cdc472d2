// Package service runs the onboarding workflow: submission with document
// uploads, HR review decisions and the read models built on the records.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"onboard/internal/audit"
	"onboard/internal/onboarding/guard"
	onboardingmetrics "onboard/internal/onboarding/metrics"
	"onboard/internal/onboarding/models"
	"onboard/internal/onboarding/validation"
	"onboard/internal/platform/tracer"
	"onboard/internal/sentinel"
	id "onboard/pkg/domain"
	dErrors "onboard/pkg/domain-errors"
	limits "onboard/pkg/platform/validation"
	"onboard/pkg/requestcontext"
)

// Service orchestrates the onboarding application lifecycle.
type Service struct {
	store    Store
	uploader Uploader
	guard    SubmitGuard
	events   EventPublisher
	audit    AuditTrail
	logger   *slog.Logger
	metrics  *onboardingmetrics.Metrics
	tracer   tracer.Tracer
}

func New(store Store, uploader Uploader, opts ...Option) *Service {
	s := &Service{store: store, uploader: uploader}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}
	if s.tracer == nil {
		s.tracer = tracer.NewNoop()
	}
	if s.guard == nil {
		s.guard = guard.NewMemory(guard.DefaultTTL)
	}
	return s
}

// Submit validates form, uploads the staged files in order, merges them with
// the documents already known and saves the record as pending. Form
// validation failures return before any upload or store access. Listed
// documents only count once resolved to the record or the submitter's files.
func (s *Service) Submit(ctx context.Context, userID id.UserID, form *models.ApplicationForm, staged models.StagedDocuments) (app *models.Application, err error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, tracer.SpanSubmit,
		tracer.String(tracer.AttrUserID, userID.String()),
		tracer.Int(tracer.AttrStagedCount, len(staged)),
	)
	defer func() { span.End(err) }()

	if userID.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "user ID required")
	}
	if form == nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "application form required")
	}
	now := requestcontext.Now(ctx)

	form.Normalize()
	draft, err := validation.CheckForm(form, now)
	if err != nil {
		return nil, err
	}
	if err := checkStaged(staged); err != nil {
		return nil, err
	}
	span.AddEvent(tracer.EventValidated)

	token, err := s.guard.Acquire(ctx, guardKey(userID))
	if err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "a submission is already in progress")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "submission guard unavailable")
	}
	defer s.releaseGuard(ctx, userID, token)

	existing, err := s.store.FindByUserID(ctx, userID)
	if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return nil, wrapLoadErr(err, "failed to load application")
	}
	existing = nilIfMissing(existing, err)
	if existing != nil && existing.Status == models.StatusApproved {
		return nil, dErrors.New(dErrors.CodeInvalidTransition, "approved application cannot be resubmitted")
	}

	var persisted []models.Document
	if existing != nil {
		persisted = existing.Documents
	}
	listed, err := s.resolveListed(ctx, userID, persisted, draft.Documents)
	if err != nil {
		return nil, err
	}
	if err := validation.CheckDocuments(draft.Citizenship, persisted, listed, staged); err != nil {
		return nil, err
	}
	known := models.MergeDocuments(persisted, listed)
	if err := limits.CheckSliceCount("documents", len(known)+len(staged), limits.MaxDocuments); err != nil {
		return nil, err
	}

	uploaded, err := s.uploadStaged(ctx, userID, staged)
	if err != nil {
		return nil, err
	}
	docs := models.MergeDocuments(known, uploaded)

	resubmission := existing != nil
	if resubmission {
		app = existing
		if err := app.Resubmit(draft, docs, now); err != nil {
			s.reportOrphans(ctx, userID, uploaded, "invalid_state_transition")
			return nil, transitionErr(err, "application cannot be resubmitted")
		}
		err = s.store.Update(ctx, app)
	} else {
		app, err = models.NewApplication(id.NewApplicationID(), userID, draft, docs, now)
		if err != nil {
			s.reportOrphans(ctx, userID, uploaded, "invalid_application")
			return nil, err
		}
		err = s.store.Create(ctx, app)
	}
	if err != nil {
		s.reportOrphans(ctx, userID, uploaded, string(dErrors.CodePersistFailed))
		return nil, wrapSaveErr(err)
	}
	span.AddEvent(tracer.EventPersisted,
		tracer.String(tracer.AttrApplicationID, app.ID.String()),
		tracer.Int(tracer.AttrDocumentCount, len(app.Documents)),
	)

	action, eventType := audit.ActionApplicationSubmitted, models.EventSubmitted
	if resubmission {
		action, eventType = audit.ActionApplicationResubmitted, models.EventResubmitted
	}
	s.emitAudit(ctx, audit.Event{
		ActorID: userID,
		OwnerID: userID,
		Subject: app.ID.String(),
		Action:  action,
	})
	s.publish(ctx, models.NewLifecycleEvent(eventType, app, id.UserID{}, now))
	s.incrementSubmission(resubmission)
	s.observeSubmit(start)
	s.logger.InfoContext(ctx, "application submitted",
		"application_id", app.ID,
		"user_id", userID,
		"resubmission", resubmission,
		"documents", len(app.Documents),
		"uploaded", len(uploaded),
	)
	return app, nil
}

// resolveListed replaces each listed document with a trusted copy: the entry
// already on the record, or the submitter's own earlier upload with its
// stored URL and date. Any other URL fails validation on "documents".
func (s *Service) resolveListed(ctx context.Context, owner id.UserID, persisted, listed []models.Document) ([]models.Document, error) {
	onRecord := make(map[string]models.Document, len(persisted))
	for _, doc := range persisted {
		onRecord[doc.FileURL] = doc
	}

	resolved := make([]models.Document, 0, len(listed))
	var fields []dErrors.FieldError
	for _, doc := range listed {
		if known, ok := onRecord[doc.FileURL]; ok {
			resolved = append(resolved, known)
			continue
		}
		stored, err := s.uploader.Lookup(ctx, owner, doc.FileURL)
		if errors.Is(err, sentinel.ErrNotFound) {
			fields = append(fields, dErrors.FieldError{
				Field:   "documents",
				Message: fmt.Sprintf("%s is not a file you uploaded", doc.FileName),
			})
			continue
		}
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to verify listed documents")
		}
		stored.Type = doc.Type
		stored.FileName = doc.FileName
		resolved = append(resolved, stored)
	}
	if len(fields) > 0 {
		return nil, dErrors.NewValidation(fields[0].Message, fields...)
	}
	return resolved, nil
}

// uploadStaged uploads one file at a time in staging order. On the first
// failure the files already uploaded are reported as orphans.
func (s *Service) uploadStaged(ctx context.Context, owner id.UserID, staged models.StagedDocuments) ([]models.Document, error) {
	uploaded := make([]models.Document, 0, len(staged))
	for _, doc := range staged {
		uctx, span := s.tracer.Start(ctx, tracer.SpanUpload,
			tracer.String(tracer.AttrDocumentType, string(doc.Type)),
		)
		stored, err := s.uploader.Upload(uctx, owner, doc)
		span.End(err)
		if err != nil {
			s.incrementUploadFailure()
			s.reportOrphans(ctx, owner, uploaded, string(dErrors.CodeUploadFailed))
			if dErrors.HasCode(err, dErrors.CodeValidation) {
				// The file itself was refused; retrying cannot help.
				return nil, err
			}
			return nil, &dErrors.Error{
				Code:    dErrors.CodeUploadFailed,
				Message: fmt.Sprintf("upload of %s failed; please retry", doc.FileName),
				Err:     err,
			}
		}
		stored.Type = doc.Type
		uploaded = append(uploaded, stored)
		s.incrementUploaded(doc.Type)
	}
	return uploaded, nil
}

func (s *Service) releaseGuard(ctx context.Context, userID id.UserID, token string) {
	// The request context may already be cancelled; release regardless.
	if err := s.guard.Release(context.WithoutCancel(ctx), guardKey(userID), token); err != nil {
		s.logger.WarnContext(ctx, "failed to release submission guard", "user_id", userID, "error", err)
	}
}

func checkStaged(staged models.StagedDocuments) error {
	if err := limits.CheckSliceCount("documents", len(staged), limits.MaxStagedDocuments); err != nil {
		return err
	}
	seen := make(map[models.DocumentType]bool, len(staged))
	for _, doc := range staged {
		if !doc.Type.IsValid() {
			return dErrors.NewValidation("unknown document type",
				dErrors.FieldError{Field: "documents", Message: fmt.Sprintf("unknown document type %q", doc.Type)})
		}
		if seen[doc.Type] {
			return dErrors.NewValidation("duplicate staged document",
				dErrors.FieldError{Field: "documents", Message: fmt.Sprintf("only one %s file may be staged", doc.Type)})
		}
		seen[doc.Type] = true
		if doc.Content == nil {
			return dErrors.NewValidation("staged document has no content",
				dErrors.FieldError{Field: "documents", Message: fmt.Sprintf("%s file is empty", doc.Type)})
		}
	}
	return nil
}

func guardKey(userID id.UserID) string {
	return userID.String()
}

func nilIfMissing(app *models.Application, err error) *models.Application {
	if err != nil {
		return nil
	}
	return app
}
