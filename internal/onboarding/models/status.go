package models

import (
	"fmt"

	dErrors "onboard/pkg/domain-errors"
)

// Status is the review state of an application record.
type Status string

const (
	// StatusNeverSubmitted is reported for users without a record. It is
	// never persisted.
	StatusNeverSubmitted Status = "never_submitted"
	StatusPending        Status = "pending"
	StatusApproved       Status = "approved"
	StatusRejected       Status = "rejected"
)

// ParseStatus accepts exactly one persisted status.
func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusPending, StatusApproved, StatusRejected:
		return st, nil
	default:
		return "", dErrors.New(dErrors.CodeBadRequest,
			fmt.Sprintf("status must be one of pending, approved, rejected; got %q", s))
	}
}

func (s Status) String() string { return string(s) }
