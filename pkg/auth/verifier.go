// Package auth verifies bearer tokens issued by the external auth provider.
// Tokens are never minted here.
package auth

import (
	"errors"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/trackshelf/trackshelf-backend/pkg/config"
	apperrors "github.com/trackshelf/trackshelf-backend/pkg/errors"
)

// Claims are the access token claims the shelf service relies on.
// The subject is the owner ID.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
}

// Verifier checks HS256 access tokens
type Verifier struct {
	secret []byte
	issuer string
}

// NewVerifier creates a verifier for the configured secret and issuer
func NewVerifier(cfg *config.JWTConfig) *Verifier {
	return &Verifier{secret: []byte(cfg.Secret), issuer: cfg.Issuer}
}

// Verify parses the token and returns its claims. Expired, malformed, foreign
// issuer and subject-less tokens are rejected with TokenInvalid.
func (v *Verifier) Verify(tokenString string) (*Claims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperrors.Unauthorized("token has expired").WithCause(err)
		}
		return nil, apperrors.TokenInvalid().WithCause(err)
	}
	if claims.Subject == "" {
		return nil, apperrors.TokenInvalid()
	}
	return claims, nil
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header value
func BearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
