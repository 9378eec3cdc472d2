package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	"onboard/internal/identity/models"
	"onboard/internal/identity/service"
	"onboard/internal/identity/store"
	"onboard/internal/identity/token"
)

type IdentityHandlerSuite struct {
	suite.Suite
	router http.Handler
}

func TestIdentityHandlerSuite(t *testing.T) {
	suite.Run(t, new(IdentityHandlerSuite))
}

func (s *IdentityHandlerSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := service.New(store.NewInMemory(), token.NewJWTService("test-key", time.Hour),
		service.WithBcryptCost(bcrypt.MinCost))
	r := chi.NewRouter()
	New(svc, logger).Register(r)
	s.router = r
}

func (s *IdentityHandlerSuite) post(path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *IdentityHandlerSuite) TestRegisterAndLogin() {
	rec := s.post("/auth/register", `{"email":"Ada@Example.com","password":"correct horse"}`)
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	var user models.UserResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &user))
	s.Equal("ada@example.com", user.Email)
	s.False(user.IsHR)

	rec = s.post("/auth/login", `{"email":"ada@example.com","password":"correct horse"}`)
	s.Require().Equal(http.StatusOK, rec.Code)
	var tok models.TokenResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &tok))
	s.NotEmpty(tok.AccessToken)
	s.Equal(user.ID, tok.UserID)
	s.Equal("no-store", rec.Header().Get("Cache-Control"))
}

func (s *IdentityHandlerSuite) TestRejections() {
	s.Equal(http.StatusCreated, s.post("/auth/register", `{"email":"ada@example.com","password":"correct horse"}`).Code)

	cases := []struct {
		name, path, body string
		status           int
	}{
		{"duplicate email", "/auth/register", `{"email":"ada@example.com","password":"correct horse"}`, http.StatusConflict},
		{"short password", "/auth/register", `{"email":"bob@example.com","password":"short"}`, http.StatusBadRequest},
		{"bad email", "/auth/register", `{"email":"bob","password":"long enough"}`, http.StatusBadRequest},
		{"malformed json", "/auth/register", `{"email":`, http.StatusBadRequest},
		{"wrong password", "/auth/login", `{"email":"ada@example.com","password":"wrong horse"}`, http.StatusUnauthorized},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			s.Equal(tc.status, s.post(tc.path, tc.body).Code)
		})
	}
}
