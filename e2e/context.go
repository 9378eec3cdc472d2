//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"strings"
	"time"
)

// TestContext holds state between test steps
type TestContext struct {
	BaseURL          string
	HTTPClient       *http.Client
	LastResponse     *http.Response
	LastResponseBody []byte

	tokens       map[string]string
	applications map[string]string
}

// NewTestContext creates a new test context
func NewTestContext() *TestContext {
	return &TestContext{
		BaseURL: envOr("BASE_URL", "http://localhost:8080"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		tokens:       make(map[string]string),
		applications: make(map[string]string),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// HRCredentials are the bootstrap reviewer credentials the server was started with.
func (tc *TestContext) HRCredentials() (string, string) {
	return envOr("HR_BOOTSTRAP_EMAIL", "hr@example.com"), envOr("HR_BOOTSTRAP_PASSWORD", "hr-password-e2e")
}

// POST sends body as JSON, authenticated as actor when actor is not empty.
func (tc *TestContext) POST(path, actor string, body any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}
	return tc.do(http.MethodPost, path, actor, "application/json", reader)
}

// POSTMultipart sends the application JSON part plus one file part per entry
// of files, keyed by document type.
func (tc *TestContext) POSTMultipart(path, actor string, application any, files map[string][]byte) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormField("application")
	if err != nil {
		return err
	}
	if err := json.NewEncoder(part).Encode(application); err != nil {
		return fmt.Errorf("failed to encode application: %w", err)
	}
	for docType, content := range files {
		fw, err := mw.CreateFormFile(docType, docType+".pdf")
		if err != nil {
			return err
		}
		if _, err := fw.Write(content); err != nil {
			return err
		}
	}
	if err := mw.Close(); err != nil {
		return err
	}
	return tc.do(http.MethodPost, path, actor, mw.FormDataContentType(), &buf)
}

// GET makes a GET request and stores the response
func (tc *TestContext) GET(path, actor string) error {
	return tc.do(http.MethodGet, path, actor, "", nil)
}

func (tc *TestContext) do(method, path, actor, contentType string, body io.Reader) error {
	req, err := http.NewRequestWithContext(context.Background(), method, tc.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token := tc.tokens[actor]; token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := tc.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}

	tc.LastResponse = resp
	tc.LastResponseBody, err = io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	return nil
}

// GetResponseField extracts a field from the JSON response
func (tc *TestContext) GetResponseField(field string) (any, error) {
	var data map[string]any
	if err := json.Unmarshal(tc.LastResponseBody, &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	value, ok := data[field]
	if !ok {
		return nil, fmt.Errorf("field %s not found in response", field)
	}
	return value, nil
}

// ResponseContains checks if the response body contains a field or text
func (tc *TestContext) ResponseContains(text string) bool {
	return strings.Contains(string(tc.LastResponseBody), text)
}

func (tc *TestContext) SetToken(actor, token string) {
	tc.tokens[actor] = token
}

func (tc *TestContext) SetApplicationID(actor, applicationID string) {
	tc.applications[actor] = applicationID
}

func (tc *TestContext) ApplicationID(actor string) string {
	return tc.applications[actor]
}

func (tc *TestContext) GetLastResponseStatus() int {
	if tc.LastResponse == nil {
		return 0
	}
	return tc.LastResponse.StatusCode
}

func (tc *TestContext) GetLastResponseBody() []byte {
	return tc.LastResponseBody
}
