package httputil

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "onboard/pkg/domain-errors"
)

type feedbackRequest struct {
	Feedback   string `json:"feedback"`
	normalized bool
}

func (r *feedbackRequest) Normalize() {
	r.Feedback = strings.TrimSpace(r.Feedback)
	r.normalized = true
}

func (r *feedbackRequest) Validate() error {
	if r.Feedback == "" {
		return errors.New("feedback is required")
	}
	return nil
}

type idRequest struct {
	ID string `json:"id"`
}

func (r *idRequest) Validate() error {
	if r.ID == "" {
		return dErrors.New(dErrors.CodeBadRequest, "id is required")
	}
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDecodeJSON(t *testing.T) {
	t.Run("decodes body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"feedback":"Missing signature"}`))
		w := httptest.NewRecorder()

		result, ok := DecodeJSON[feedbackRequest](w, req, discardLogger())

		assert.True(t, ok)
		require.NotNil(t, result)
		assert.Equal(t, "Missing signature", result.Feedback)
	})

	for name, body := range map[string]string{"malformed": `{nope}`, "empty": ""} {
		t.Run(name+" body is a bad request", func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(body))
			w := httptest.NewRecorder()

			result, ok := DecodeJSON[feedbackRequest](w, req, discardLogger())

			assert.False(t, ok)
			assert.Nil(t, result)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, "bad_request", resp.Error)
		})
	}
}

func TestDecodeAndPrepare(t *testing.T) {
	t.Run("normalizes before validating", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"feedback":"  Missing signature \n"}`))
		w := httptest.NewRecorder()

		result, ok := DecodeAndPrepare[feedbackRequest](w, req, discardLogger())

		require.True(t, ok)
		assert.True(t, result.normalized)
		assert.Equal(t, "Missing signature", result.Feedback)
	})

	t.Run("whitespace-only input fails validation", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"feedback":"   "}`))
		w := httptest.NewRecorder()

		_, ok := DecodeAndPrepare[feedbackRequest](w, req, discardLogger())

		assert.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		var resp ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "validation_error", resp.Error)
		assert.Contains(t, resp.ErrorDescription, "feedback is required")
	})

	t.Run("domain error code from Validate is preserved", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"id":""}`))
		w := httptest.NewRecorder()

		_, ok := DecodeAndPrepare[idRequest](w, req, discardLogger())

		assert.False(t, ok)
		var resp ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "bad_request", resp.Error)
	})
}
