package store

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"onboard/internal/onboarding/models"
	"onboard/internal/sentinel"
	id "onboard/pkg/domain"
)

// InMemory keeps applications in process memory. Records are cloned on the
// way in and out so callers never share state with the store.
type InMemory struct {
	mu      sync.RWMutex
	apps    map[id.ApplicationID]*models.Application
	userIdx map[id.UserID]id.ApplicationID
}

func NewInMemory() *InMemory {
	return &InMemory{
		apps:    make(map[id.ApplicationID]*models.Application),
		userIdx: make(map[id.UserID]id.ApplicationID),
	}
}

// Create inserts app unless its user already owns a record.
func (s *InMemory) Create(_ context.Context, app *models.Application) error {
	if app == nil {
		return fmt.Errorf("application is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.userIdx[app.UserID]; exists {
		return fmt.Errorf("application for user %s: %w", app.UserID, sentinel.ErrAlreadyUsed)
	}
	if app.Version == 0 {
		app.Version = 1
	}
	s.apps[app.ID] = app.Clone()
	s.userIdx[app.UserID] = app.ID
	return nil
}

// Update replaces the record when the stored version matches app.Version.
func (s *InMemory) Update(_ context.Context, app *models.Application) error {
	if app == nil {
		return fmt.Errorf("application is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.apps[app.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if current.Version != app.Version {
		return fmt.Errorf("application %s at version %d, caller has %d: %w",
			app.ID, current.Version, app.Version, sentinel.ErrConflict)
	}
	app.Version++
	s.apps[app.ID] = app.Clone()
	return nil
}

func (s *InMemory) FindByID(_ context.Context, appID id.ApplicationID) (*models.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if app, ok := s.apps[appID]; ok {
		return app.Clone(), nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) FindByUserID(_ context.Context, userID id.UserID) (*models.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if appID, ok := s.userIdx[userID]; ok {
		return s.apps[appID].Clone(), nil
	}
	return nil, sentinel.ErrNotFound
}

// ListByStatus returns matching records, most recently updated first.
func (s *InMemory) ListByStatus(_ context.Context, status models.Status) ([]*models.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Application, 0)
	for _, app := range s.apps {
		if app.Status == status {
			out = append(out, app.Clone())
		}
	}
	slices.SortFunc(out, func(a, b *models.Application) int {
		if c := b.UpdatedAt.Compare(a.UpdatedAt); c != 0 {
			return c
		}
		return compareIDs(a.ID, b.ID)
	})
	return out, nil
}

func compareIDs(a, b id.ApplicationID) int {
	return strings.Compare(a.String(), b.String())
}
