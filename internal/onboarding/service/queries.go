package service

import (
	"cmp"
	"context"
	"slices"
	"strings"

	"onboard/internal/audit"
	"onboard/internal/onboarding/models"
	id "onboard/pkg/domain"
	dErrors "onboard/pkg/domain-errors"
	"onboard/pkg/requestcontext"
)

// Get returns one application by ID.
func (s *Service) Get(ctx context.Context, appID id.ApplicationID) (*models.Application, error) {
	if appID.IsNil() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "application ID required")
	}
	app, err := s.store.FindByID(ctx, appID)
	if err != nil {
		return nil, wrapLoadErr(err, "failed to load application")
	}
	return app, nil
}

// GetForUser returns the caller's own application, or not_found when the
// user has never submitted.
func (s *Service) GetForUser(ctx context.Context, userID id.UserID) (*models.Application, error) {
	if userID.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "user ID required")
	}
	app, err := s.store.FindByUserID(ctx, userID)
	if err != nil {
		return nil, wrapLoadErr(err, "failed to load application")
	}
	return app, nil
}

// ListByStatus returns the applications in exactly one persisted status,
// most recently updated first.
func (s *Service) ListByStatus(ctx context.Context, status models.Status) ([]*models.Application, error) {
	if _, err := models.ParseStatus(string(status)); err != nil {
		return nil, err
	}
	apps, err := s.store.ListByStatus(ctx, status)
	if err != nil {
		return nil, wrapLoadErr(err, "failed to list applications")
	}
	return apps, nil
}

// VisaStatus reports the caller's work authorization as of now.
func (s *Service) VisaStatus(ctx context.Context, userID id.UserID) (models.VisaStatus, error) {
	app, err := s.GetForUser(ctx, userID)
	if err != nil {
		return models.VisaStatus{}, err
	}
	return app.VisaStatus(requestcontext.Now(ctx)), nil
}

// ListVisaHolders returns approved employees on a work authorization, the
// soonest expiration first.
func (s *Service) ListVisaHolders(ctx context.Context) ([]models.VisaStatus, error) {
	apps, err := s.ListByStatus(ctx, models.StatusApproved)
	if err != nil {
		return nil, err
	}
	now := requestcontext.Now(ctx)
	holders := make([]models.VisaStatus, 0, len(apps))
	for _, app := range apps {
		if vs := app.VisaStatus(now); vs.Applicable {
			holders = append(holders, vs)
		}
	}
	slices.SortStableFunc(holders, func(a, b models.VisaStatus) int {
		return a.ExpirationDate.Compare(b.ExpirationDate)
	})
	return holders, nil
}

// ListEmployees returns approved applications ordered by last then first name.
func (s *Service) ListEmployees(ctx context.Context) ([]*models.Application, error) {
	apps, err := s.ListByStatus(ctx, models.StatusApproved)
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(apps, func(a, b *models.Application) int {
		return cmp.Or(
			strings.Compare(strings.ToLower(a.Personal.LastName), strings.ToLower(b.Personal.LastName)),
			strings.Compare(strings.ToLower(a.Personal.FirstName), strings.ToLower(b.Personal.FirstName)),
		)
	})
	return apps, nil
}

// History returns the audit trail of one application, oldest first.
func (s *Service) History(ctx context.Context, appID id.ApplicationID) ([]audit.Event, error) {
	if _, err := s.Get(ctx, appID); err != nil {
		return nil, err
	}
	if s.audit == nil {
		return []audit.Event{}, nil
	}
	events, err := s.audit.ListBySubject(ctx, appID.String())
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load application history")
	}
	return events, nil
}
