package service

import (
	"context"
	"errors"

	"onboard/internal/sentinel"
	dErrors "onboard/pkg/domain-errors"
)

// wrapLoadErr translates store errors on reads.
func wrapLoadErr(err error, msg string) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "application not found")
	case errors.Is(err, sentinel.ErrUnavailable):
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "application store unavailable")
	case errors.Is(err, context.DeadlineExceeded):
		return dErrors.Wrap(err, dErrors.CodeTimeout, msg)
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, msg)
	}
}

// wrapSaveErr translates store errors on writes. Anything that is not a
// recognised conflict becomes persist_failed.
func wrapSaveErr(err error) error {
	switch {
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.New(dErrors.CodeConflict, "application was changed by someone else; reload and retry")
	case errors.Is(err, sentinel.ErrAlreadyUsed):
		return dErrors.New(dErrors.CodeConflict, "an application already exists for this user")
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "application not found")
	case errors.Is(err, sentinel.ErrUnavailable):
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "application store unavailable")
	default:
		return &dErrors.Error{Code: dErrors.CodePersistFailed, Message: "failed to save application", Err: err}
	}
}

// transitionErr maps model invariant violations to invalid_state_transition.
func transitionErr(err error, msg string) error {
	if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
		return &dErrors.Error{Code: dErrors.CodeInvalidTransition, Message: msg, Err: err}
	}
	return err
}
