package token

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"onboard/internal/identity/models"
	id "onboard/pkg/domain"
	dErrors "onboard/pkg/domain-errors"
	"onboard/pkg/requestcontext"
)

func TestIssueAndValidate(t *testing.T) {
	svc := NewJWTService("test-key", time.Hour)
	user := &models.User{ID: id.NewUserID(), IsHR: true}

	issued, err := svc.Issue(context.Background(), user)
	require.NoError(t, err)
	assert.Equal(t, time.Hour, issued.ExpiresIn)

	claims, err := svc.ValidateToken(issued.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), claims.UserID)
	assert.True(t, claims.IsHR)
	assert.NotEmpty(t, claims.JTI)
}

func TestValidateRejects(t *testing.T) {
	svc := NewJWTService("test-key", time.Hour)
	user := &models.User{ID: id.NewUserID()}

	t.Run("expired", func(t *testing.T) {
		ctx := requestcontext.WithTime(context.Background(), time.Now().Add(-2*time.Hour))
		issued, err := svc.Issue(ctx, user)
		require.NoError(t, err)

		_, err = svc.ValidateToken(issued.Token)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
		assert.Contains(t, err.Error(), "expired")
	})

	t.Run("other signing key", func(t *testing.T) {
		issued, err := NewJWTService("other-key", time.Hour).Issue(context.Background(), user)
		require.NoError(t, err)

		_, err = svc.ValidateToken(issued.Token)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	t.Run("unsigned token", func(t *testing.T) {
		raw, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: user.ID.String(), IsHR: true}).
			SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = svc.ValidateToken(raw)
		assert.Error(t, err)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := svc.ValidateToken("not.a.jwt")
		assert.Error(t, err)
	})
}
