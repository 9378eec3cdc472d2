package validation

import (
	"fmt"

	dErrors "onboard/pkg/domain-errors"
)

// HTTP body limits
const (
	// MaxBodySize bounds JSON request bodies (64 KB).
	MaxBodySize = 64 * 1024

	// DefaultMaxUploadSize bounds a single uploaded document (10 MB).
	DefaultMaxUploadSize = 10 << 20
)

// Collection limits on an application record.
const (
	MaxDocuments         = 20
	MaxEmergencyContacts = 10
	MaxStagedDocuments   = 4
)

// String length limits
const (
	MaxFeedbackLength = 2000
	MaxFileNameLength = 255
	MaxEmailLength    = 255
	MaxPasswordLength = 72 // bcrypt ignores bytes beyond 72
)

// CheckSliceCount validates that a slice does not exceed the maximum count.
func CheckSliceCount(fieldName string, count, max int) error {
	if count > max {
		return dErrors.NewValidation(fmt.Sprintf("too many %s: max %d allowed", fieldName, max),
			dErrors.FieldError{Field: fieldName, Message: fmt.Sprintf("must contain at most %d items", max)})
	}
	return nil
}

// CheckStringLength validates that a string does not exceed the maximum length.
func CheckStringLength(fieldName, value string, max int) error {
	if len(value) > max {
		return dErrors.NewValidation(fmt.Sprintf("%s exceeds max length of %d", fieldName, max),
			dErrors.FieldError{Field: fieldName, Message: fmt.Sprintf("must be at most %d characters", max)})
	}
	return nil
}
