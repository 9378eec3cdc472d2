package httputil

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "onboard/pkg/domain-errors"
)

func TestWriteError(t *testing.T) {
	cases := []struct {
		name        string
		err         error
		status      int
		code        string
		description string
	}{
		{"validation", dErrors.NewValidation("invalid application"), http.StatusBadRequest, "validation_error", "invalid application"},
		{"transition", dErrors.New(dErrors.CodeInvalidTransition, "application is not pending"), http.StatusConflict, "invalid_state_transition", "application is not pending"},
		{"upload", dErrors.New(dErrors.CodeUploadFailed, "upload of passport.pdf failed"), http.StatusBadGateway, "upload_failed", "upload of passport.pdf failed"},
		{"network", dErrors.New(dErrors.CodeUnavailable, "submission lock unavailable"), http.StatusServiceUnavailable, "network_failure", "submission lock unavailable"},
		{"persist hides detail", dErrors.New(dErrors.CodePersistFailed, "pq: relation missing"), http.StatusInternalServerError, "persist_failed", ""},
		{"plain error", errors.New("boom"), http.StatusInternalServerError, "internal_error", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			WriteError(w, tc.err)

			assert.Equal(t, tc.status, w.Code)
			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tc.code, resp.Error)
			assert.Equal(t, tc.description, resp.ErrorDescription)
		})
	}
}

func TestWriteErrorRendersFieldErrors(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(w, dErrors.NewValidation("invalid application",
		dErrors.FieldError{Field: "documents", Message: "Driver's license is required"},
	))

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Fields, 1)
	assert.Equal(t, "documents", resp.Fields[0].Field)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
}
