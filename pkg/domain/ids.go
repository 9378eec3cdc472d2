// Package domain provides type-safe identifiers to prevent mixing up IDs at compile time.
package domain

import (
	"github.com/google/uuid"

	dErrors "onboard/pkg/domain-errors"
)

// Distinct ID types - the compiler refuses an ApplicationID where a UserID is expected.
type (
	UserID        uuid.UUID
	ApplicationID uuid.UUID
)

func NewUserID() UserID               { return UserID(uuid.New()) }
func NewApplicationID() ApplicationID { return ApplicationID(uuid.New()) }

// Parse functions - use at trust boundaries (handlers, token claims, store rows).

func ParseUserID(s string) (UserID, error) {
	id, err := parseUUID(s, "user ID")
	return UserID(id), err
}

func ParseApplicationID(s string) (ApplicationID, error) {
	id, err := parseUUID(s, "application ID")
	return ApplicationID(id), err
}

func (id UserID) String() string        { return uuid.UUID(id).String() }
func (id ApplicationID) String() string { return uuid.UUID(id).String() }

func (id UserID) IsNil() bool        { return uuid.UUID(id) == uuid.Nil }
func (id ApplicationID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

// Text encoding lets IDs travel as plain UUID strings in JSON and message payloads.

func (id UserID) MarshalText() ([]byte, error)        { return uuid.UUID(id).MarshalText() }
func (id ApplicationID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }

func (id *UserID) UnmarshalText(b []byte) error {
	return (*uuid.UUID)(id).UnmarshalText(b)
}

func (id *ApplicationID) UnmarshalText(b []byte) error {
	return (*uuid.UUID)(id).UnmarshalText(b)
}

func parseUUID(s, label string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" cannot be empty")
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+label+" format")
	}
	if id == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" cannot be nil")
	}
	return id, nil
}
