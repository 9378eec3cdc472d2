// Package store persists user accounts.
package store

import (
	"context"
	"fmt"
	"sync"

	"onboard/internal/identity/models"
	"onboard/internal/sentinel"
	id "onboard/pkg/domain"
)

// InMemory keeps users in maps keyed by ID and normalized email.
type InMemory struct {
	mu      sync.RWMutex
	users   map[id.UserID]*models.User
	byEmail map[string]id.UserID
}

func NewInMemory() *InMemory {
	return &InMemory{
		users:   make(map[id.UserID]*models.User),
		byEmail: make(map[string]id.UserID),
	}
}

func (s *InMemory) Create(_ context.Context, user *models.User) error {
	if user == nil {
		return fmt.Errorf("user is required")
	}
	email := models.NormalizeEmail(user.Email)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byEmail[email]; ok {
		return fmt.Errorf("user %s: %w", email, sentinel.ErrAlreadyUsed)
	}
	if _, ok := s.users[user.ID]; ok {
		return fmt.Errorf("user %s: %w", user.ID, sentinel.ErrAlreadyUsed)
	}
	cp := *user
	s.users[user.ID] = &cp
	s.byEmail[email] = user.ID
	return nil
}

func (s *InMemory) FindByID(_ context.Context, userID id.UserID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[userID]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", userID, sentinel.ErrNotFound)
	}
	cp := *u
	return &cp, nil
}

func (s *InMemory) FindByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	uid, ok := s.byEmail[models.NormalizeEmail(email)]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", email, sentinel.ErrNotFound)
	}
	cp := *s.users[uid]
	return &cp, nil
}
