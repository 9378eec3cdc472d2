// Package token issues and validates the bearer tokens used by every
// authenticated route.
package token

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"onboard/internal/identity/models"
	dErrors "onboard/pkg/domain-errors"
	"onboard/pkg/platform/middleware/auth"
	"onboard/pkg/requestcontext"
)

const defaultIssuer = "onboard"

// Claims are the JWT claims of an access token.
type Claims struct {
	UserID string `json:"user_id"`
	IsHR   bool   `json:"is_hr"`
	jwt.RegisteredClaims
}

// Issued is a signed token and its lifetime.
type Issued struct {
	Token     string
	ExpiresIn time.Duration
}

// JWTService signs HS256 access tokens and validates them for the auth
// middleware.
type JWTService struct {
	signingKey []byte
	issuer     string
	ttl        time.Duration
}

func NewJWTService(signingKey string, ttl time.Duration) *JWTService {
	return &JWTService{signingKey: []byte(signingKey), issuer: defaultIssuer, ttl: ttl}
}

func (s *JWTService) Issue(ctx context.Context, user *models.User) (Issued, error) {
	now := requestcontext.Now(ctx)
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID: user.ID.String(),
		IsHR:   user.IsHR,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			ID:        uuid.NewString(),
		},
	})
	signed, err := tok.SignedString(s.signingKey)
	if err != nil {
		return Issued{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to sign token")
	}
	return Issued{Token: signed, ExpiresIn: s.ttl}, nil
}

// ValidateToken implements auth.JWTValidator.
func (s *JWTService) ValidateToken(tokenString string) (*auth.JWTClaims, error) {
	claims := new(Claims)
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	}, jwt.WithIssuer(s.issuer), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "token expired")
		}
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}
	if !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}
	return &auth.JWTClaims{UserID: claims.UserID, IsHR: claims.IsHR, JTI: claims.ID}, nil
}
