package service

import (
	"context"

	"onboard/internal/audit"
	"onboard/internal/onboarding/models"
	id "onboard/pkg/domain"
)

// Store persists application records. It returns sentinel errors:
// ErrNotFound for missing records, ErrAlreadyUsed when a user already has a
// record, ErrConflict when a versioned update lost a race.
type Store interface {
	Create(ctx context.Context, app *models.Application) error
	// Update saves app only if the stored version still equals app.Version,
	// then increments app.Version.
	Update(ctx context.Context, app *models.Application) error
	FindByID(ctx context.Context, appID id.ApplicationID) (*models.Application, error)
	FindByUserID(ctx context.Context, userID id.UserID) (*models.Application, error)
	// ListByStatus returns records in one status, most recently updated first.
	ListByStatus(ctx context.Context, status models.Status) ([]*models.Application, error)
}

// Uploader stores staged files and resolves files uploaded earlier.
type Uploader interface {
	Upload(ctx context.Context, owner id.UserID, doc models.StagedDocument) (models.Document, error)
	// Lookup returns the file behind fileURL when owner uploaded it, with its
	// URL and upload date set. Any other URL returns sentinel.ErrNotFound.
	Lookup(ctx context.Context, owner id.UserID, fileURL string) (models.Document, error)
}

// SubmitGuard keeps a single submission in flight per key. Acquire returns
// sentinel.ErrConflict while another holder has the key.
type SubmitGuard interface {
	Acquire(ctx context.Context, key string) (token string, err error)
	Release(ctx context.Context, key, token string) error
}

// EventPublisher announces lifecycle changes to other systems.
type EventPublisher interface {
	Publish(ctx context.Context, event models.LifecycleEvent) error
}

// AuditTrail records and lists decision history.
type AuditTrail interface {
	Emit(ctx context.Context, event audit.Event) error
	ListBySubject(ctx context.Context, subject string) ([]audit.Event, error)
}
