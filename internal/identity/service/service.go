// Package service registers accounts and exchanges credentials for tokens.
package service

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"onboard/internal/audit"
	"onboard/internal/identity/models"
	"onboard/internal/identity/token"
	"onboard/internal/platform/metrics"
	"onboard/internal/sentinel"
	id "onboard/pkg/domain"
	dErrors "onboard/pkg/domain-errors"
	"onboard/pkg/requestcontext"
)

type Store interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, userID id.UserID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

type TokenIssuer interface {
	Issue(ctx context.Context, user *models.User) (token.Issued, error)
}

type AuditTrail interface {
	Emit(ctx context.Context, event audit.Event) error
}

const (
	loginSuccess = "success"
	loginFailure = "failure"
)

// dummyHash keeps unknown-email logins as slow as wrong-password ones.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("timing-equalizer"), bcrypt.DefaultCost)

type Service struct {
	users   Store
	tokens  TokenIssuer
	audit   AuditTrail
	metrics *metrics.Metrics
	logger  *slog.Logger
	cost    int
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithAuditTrail(a AuditTrail) Option {
	return func(s *Service) { s.audit = a }
}

// WithBcryptCost overrides the hashing cost; tests use bcrypt.MinCost.
func WithBcryptCost(cost int) Option {
	return func(s *Service) { s.cost = cost }
}

func New(users Store, tokens TokenIssuer, opts ...Option) *Service {
	s := &Service{users: users, tokens: tokens, cost: bcrypt.DefaultCost}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}
	return s
}

// Register creates an employee account.
func (s *Service) Register(ctx context.Context, creds *models.Credentials) (*models.User, error) {
	return s.create(ctx, creds.Email, creds.Password, false)
}

// Login verifies credentials and issues an access token. Unknown email and
// wrong password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, creds *models.Credentials) (*models.TokenResponse, error) {
	user, err := s.users.FindByEmail(ctx, creds.Email)
	if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}
	if user == nil {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(creds.Password)) //nolint:errcheck // timing only
		s.incrementLogin(loginFailure)
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid email or password")
	}
	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(creds.Password)); err != nil {
		s.incrementLogin(loginFailure)
		s.logger.WarnContext(ctx, "login failed", "user_id", user.ID, "request_id", requestcontext.RequestID(ctx))
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid email or password")
	}

	issued, err := s.tokens.Issue(ctx, user)
	if err != nil {
		return nil, err
	}
	s.incrementLogin(loginSuccess)
	return &models.TokenResponse{
		AccessToken: issued.Token,
		TokenType:   "Bearer",
		ExpiresIn:   int(issued.ExpiresIn.Seconds()),
		UserID:      user.ID.String(),
		IsHR:        user.IsHR,
	}, nil
}

// EnsureHR creates the bootstrap HR account unless the email is already taken.
func (s *Service) EnsureHR(ctx context.Context, email, password string) error {
	creds := &models.Credentials{Email: email, Password: password}
	creds.Normalize()
	if err := creds.Validate(); err != nil {
		return err
	}
	if _, err := s.create(ctx, creds.Email, creds.Password, true); err != nil {
		if dErrors.HasCode(err, dErrors.CodeConflict) {
			return nil
		}
		return err
	}
	return nil
}

func (s *Service) create(ctx context.Context, email, password string, isHR bool) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeBadRequest, "password cannot be used")
	}
	user := &models.User{
		ID:           id.NewUserID(),
		Email:        models.NormalizeEmail(email),
		PasswordHash: hash,
		IsHR:         isHR,
		CreatedAt:    requestcontext.Now(ctx),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return nil, dErrors.New(dErrors.CodeConflict, "an account with this email already exists")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create user")
	}

	if s.metrics != nil {
		s.metrics.IncrementUsersCreated()
	}
	if s.audit != nil {
		if err := s.audit.Emit(ctx, audit.Event{
			ActorID: user.ID,
			OwnerID: user.ID,
			Subject: user.ID.String(),
			Action:  audit.ActionUserRegistered,
		}); err != nil {
			s.logger.ErrorContext(ctx, "failed to emit audit event", "action", audit.ActionUserRegistered, "error", err)
		}
	}
	s.logger.InfoContext(ctx, "user registered", "user_id", user.ID, "is_hr", isHR)
	return user, nil
}

func (s *Service) incrementLogin(result string) {
	if s.metrics != nil {
		s.metrics.IncrementLogin(result)
	}
}
