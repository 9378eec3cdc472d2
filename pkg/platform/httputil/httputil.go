package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	id "onboard/pkg/domain"
	dErrors "onboard/pkg/domain-errors"
	"onboard/pkg/requestcontext"
)

// ErrorResponse is the body written for every failed request.
type ErrorResponse struct {
	Error            string               `json:"error"`
	ErrorDescription string               `json:"error_description,omitempty"`
	Fields           []dErrors.FieldError `json:"fields,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, response any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are already sent; an encoding failure can only truncate the body.
	_ = json.NewEncoder(w).Encode(response)
}

// WriteError translates transport-agnostic domain errors into HTTP responses.
// Descriptions of 5xx errors are withheld so store and network details never
// reach the client.
func WriteError(w http.ResponseWriter, err error) {
	var domainErr *dErrors.Error
	if !errors.As(err, &domainErr) {
		WriteJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error: DomainCodeToHTTPCode(dErrors.CodeInternal),
		})
		return
	}

	status := DomainCodeToHTTPStatus(domainErr.Code)
	resp := ErrorResponse{
		Error:  DomainCodeToHTTPCode(domainErr.Code),
		Fields: domainErr.Fields,
	}
	if status < http.StatusInternalServerError || domainErr.Code == dErrors.CodeUploadFailed || domainErr.Code == dErrors.CodeUnavailable {
		resp.ErrorDescription = domainErr.Message
	}
	WriteJSON(w, status, resp)
}

// DomainCodeToHTTPStatus translates domain error codes to HTTP status codes.
func DomainCodeToHTTPStatus(code dErrors.Code) int {
	switch code {
	case dErrors.CodeNotFound:
		return http.StatusNotFound
	case dErrors.CodeBadRequest, dErrors.CodeValidation, dErrors.CodeInvalidInput, dErrors.CodeInvariantViolation:
		return http.StatusBadRequest
	case dErrors.CodeConflict, dErrors.CodeInvalidTransition:
		return http.StatusConflict
	case dErrors.CodeUnauthorized:
		return http.StatusUnauthorized
	case dErrors.CodeForbidden:
		return http.StatusForbidden
	case dErrors.CodeTimeout:
		return http.StatusGatewayTimeout
	case dErrors.CodeUploadFailed:
		return http.StatusBadGateway
	case dErrors.CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// DomainCodeToHTTPCode translates domain error codes to the "error" field of the response body.
func DomainCodeToHTTPCode(code dErrors.Code) string {
	switch code {
	case dErrors.CodeNotFound:
		return "not_found"
	case dErrors.CodeBadRequest, dErrors.CodeInvalidInput:
		return "bad_request"
	case dErrors.CodeValidation, dErrors.CodeInvariantViolation:
		return "validation_error"
	case dErrors.CodeConflict:
		return "conflict"
	case dErrors.CodeInvalidTransition:
		return "invalid_state_transition"
	case dErrors.CodeUnauthorized:
		return "unauthorized"
	case dErrors.CodeForbidden:
		return "forbidden"
	case dErrors.CodeTimeout:
		return "timeout"
	case dErrors.CodeUploadFailed:
		return "upload_failed"
	case dErrors.CodePersistFailed:
		return "persist_failed"
	case dErrors.CodeUnavailable:
		return "network_failure"
	default:
		return "internal_error"
	}
}

// RequireUserID extracts the authenticated user ID placed by the auth middleware.
func RequireUserID(ctx context.Context, logger *slog.Logger) (id.UserID, error) {
	userID := requestcontext.UserID(ctx)
	if userID.IsNil() {
		if logger != nil {
			logger.ErrorContext(ctx, "userID missing from context despite auth middleware",
				"request_id", requestcontext.RequestID(ctx))
		}
		return id.UserID{}, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	return userID, nil
}
