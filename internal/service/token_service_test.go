package service

import (
	"testing"
	"time"

	"uny-compass-be/internal/pkg/apperror"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	svc := NewTokenService("secret", time.Hour)

	token, err := svc.Issue(7, "ada")
	require.NoError(t, err)

	claims, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserId)
	assert.Equal(t, "ada", claims.Username)
}

func TestTokenExpired(t *testing.T) {
	svc := NewTokenService("secret", time.Hour).(*tokenService)
	token, err := svc.Issue(7, "ada")
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	_, err = svc.Verify(token)
	appErr, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, apperror.KindTokenExpired, appErr.Kind)
	assert.Equal(t, 401, appErr.Kind.Status())
}

func TestTokenWrongSecret(t *testing.T) {
	token, err := NewTokenService("one", time.Hour).Issue(7, "ada")
	require.NoError(t, err)

	_, err = NewTokenService("two", time.Hour).Verify(token)
	assert.True(t, apperror.Is(err, apperror.KindTokenInvalid))

	_, err = NewTokenService("two", time.Hour).Verify("not-a-jwt")
	assert.True(t, apperror.Is(err, apperror.KindTokenInvalid))
}

func TestTokenNotYetValid(t *testing.T) {
	now := time.Now()
	claims := tokenClaims{
		UserID: 7,
		RegisteredClaims: jwt.RegisteredClaims{
			NotBefore: jwt.NewNumericDate(now.Add(time.Hour)),
			ExpiresAt: jwt.NewNumericDate(now.Add(2 * time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = NewTokenService("secret", time.Hour).Verify(token)
	appErr, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, apperror.KindVerificationFailed, appErr.Kind)
	assert.Equal(t, 403, appErr.Kind.Status())
}

func TestTokenRejectsOtherAlgorithms(t *testing.T) {
	claims := tokenClaims{UserID: 7}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = NewTokenService("secret", time.Hour).Verify(token)
	assert.True(t, apperror.Is(err, apperror.KindTokenInvalid))
}
