package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trackshelf/trackshelf-backend/pkg/config"
	apperrors "github.com/trackshelf/trackshelf-backend/pkg/errors"
)

func sign(t *testing.T, secret string, claims jwt.Claims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func TestVerifier_Verify(t *testing.T) {
	v := NewVerifier(&config.JWTConfig{Secret: "test-secret", Issuer: "trackshelf"})
	now := time.Now()

	valid := Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "owner-1",
		Issuer:    "trackshelf",
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	}}

	t.Run("valid token", func(t *testing.T) {
		claims, err := v.Verify(sign(t, "test-secret", valid))
		require.NoError(t, err)
		assert.Equal(t, "owner-1", claims.Subject)
	})

	t.Run("wrong secret", func(t *testing.T) {
		_, err := v.Verify(sign(t, "other", valid))
		assert.True(t, apperrors.Is(err, apperrors.ErrTokenInvalid))
	})

	t.Run("expired", func(t *testing.T) {
		expired := valid
		expired.ExpiresAt = jwt.NewNumericDate(now.Add(-time.Minute))
		_, err := v.Verify(sign(t, "test-secret", expired))
		assert.True(t, apperrors.Is(err, apperrors.ErrUnauthorized))
	})

	t.Run("foreign issuer", func(t *testing.T) {
		foreign := valid
		foreign.Issuer = "someone-else"
		_, err := v.Verify(sign(t, "test-secret", foreign))
		assert.Error(t, err)
	})

	t.Run("missing subject", func(t *testing.T) {
		anon := valid
		anon.Subject = ""
		_, err := v.Verify(sign(t, "test-secret", anon))
		assert.Error(t, err)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := v.Verify("not.a.token")
		assert.Error(t, err)
	})
}

func TestBearerToken(t *testing.T) {
	tok, ok := BearerToken("Bearer abc.def")
	assert.True(t, ok)
	assert.Equal(t, "abc.def", tok)

	_, ok = BearerToken("Basic dXNlcjpwYXNz")
	assert.False(t, ok)

	_, ok = BearerToken("Bearer ")
	assert.False(t, ok)
}
