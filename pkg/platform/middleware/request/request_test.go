package request

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"onboard/pkg/requestcontext"
)

func TestRequestID(t *testing.T) {
	capture := func(dst *string) http.Handler {
		return RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			*dst = requestcontext.RequestID(r.Context())
		}))
	}

	t.Run("generates an ID when none is provided", func(t *testing.T) {
		var got string
		w := httptest.NewRecorder()
		capture(&got).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Len(t, got, 36)
		assert.Equal(t, got, w.Header().Get("X-Request-ID"))
	})

	t.Run("keeps a well-formed client ID", func(t *testing.T) {
		var got string
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Request-ID", "trace.span_1234")
		capture(&got).ServeHTTP(httptest.NewRecorder(), req)

		assert.Equal(t, "trace.span_1234", got)
	})

	for name, header := range map[string]string{
		"too long":      strings.Repeat("a", MaxRequestIDLength+1),
		"log injection": "abc\ninjected=true",
		"spaces":        "has spaces",
	} {
		t.Run("replaces "+name, func(t *testing.T) {
			var got string
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("X-Request-ID", header)
			capture(&got).ServeHTTP(httptest.NewRecorder(), req)

			assert.NotEqual(t, header, got)
			assert.Len(t, got, 36)
		})
	}
}

func TestRecovery(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := Recovery(logger)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"internal_error"}`, w.Body.String())
}

func TestContentType(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })
	handler := ContentType("application/json", "multipart/form-data")(next)

	cases := map[string]int{
		"application/json; charset=utf-8":   http.StatusNoContent,
		"multipart/form-data; boundary=xyz": http.StatusNoContent,
		"text/plain":                        http.StatusUnsupportedMediaType,
		"application/x-www-form-urlencoded": http.StatusUnsupportedMediaType,
	}
	for ct, want := range cases {
		t.Run(ct, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString("{}"))
			req.Header.Set("Content-Type", ct)
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)
			assert.Equal(t, want, w.Code)
		})
	}

	t.Run("GET is never checked", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Content-Type", "text/plain")
		w := httptest.NewRecorder()
		ContentTypeJSON(next).ServeHTTP(w, req)
		assert.Equal(t, http.StatusNoContent, w.Code)
	})
}

func TestClientMetadataAndRequestTime(t *testing.T) {
	var ip, ua string
	var stamped bool
	handler := RequestTime(ClientMetadata(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		ip = requestcontext.ClientIP(r.Context())
		ua = requestcontext.UserAgent(r.Context())
		stamped = !requestcontext.Now(r.Context()).IsZero()
	})))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.10:52311"
	req.Header.Set("User-Agent", "Mozilla/5.0")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "192.0.2.10", ip)
	assert.Equal(t, "Mozilla/5.0", ua)
	assert.True(t, stamped)
}

func TestLatencyMiddlewareObserves(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	handler := LatencyMiddleware(m)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/hr/applications", nil))

	families, err := reg.Gather()
	require.NoError(t, err)
	require.Len(t, families, 1)
	assert.Equal(t, "onboard_endpoint_latency_seconds", families[0].GetName())
}
