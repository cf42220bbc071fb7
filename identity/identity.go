// Package identity resolves the acting user for quota and generation
// operations. The engine never trusts a caller-supplied user id directly;
// every request carries a signed token that this package verifies.
package identity

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Provider resolves a request credential to a user identity.
type Provider interface {
	// UserIDFromToken verifies the credential and returns the user id.
	UserIDFromToken(token string) (string, error)
}

// AuthenticationError reports a credential that failed verification.
type AuthenticationError struct {
	Reason string
	Err    error
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("identity: authentication failed: %s", e.Reason)
}

func (e *AuthenticationError) Unwrap() error {
	return e.Err
}

// Claims carries the registered claims plus the user id.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
}

// JWTProvider verifies HS256-signed tokens.
type JWTProvider struct {
	signingKey []byte
}

// NewJWTProvider creates a provider around the given HMAC signing key.
func NewJWTProvider(signingKey string) (*JWTProvider, error) {
	if signingKey == "" {
		return nil, fmt.Errorf("identity: signing key cannot be empty")
	}
	return &JWTProvider{signingKey: []byte(signingKey)}, nil
}

// GenerateToken issues a signed token for the user. Used by development
// tooling and tests; production tokens come from the account service.
func (p *JWTProvider) GenerateToken(userID string, validity time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validity)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		UserID: userID,
	})

	signed, err := token.SignedString(p.signingKey)
	if err != nil {
		return "", fmt.Errorf("identity: failed to sign token: %w", err)
	}
	return signed, nil
}

// UserIDFromToken verifies the token signature and expiry and extracts the
// user id. Only HS256 is accepted.
func (p *JWTProvider) UserIDFromToken(tokenString string) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return p.signingKey, nil
	})
	if err != nil {
		return "", &AuthenticationError{Reason: "token verification failed", Err: err}
	}
	if !token.Valid {
		return "", &AuthenticationError{Reason: "token is not valid"}
	}
	if claims.UserID == "" {
		return "", &AuthenticationError{Reason: "token carries no user id"}
	}
	return claims.UserID, nil
}

// StaticProvider returns a fixed user id regardless of credential. Used in
// development mode where no account service is running.
type StaticProvider struct {
	UserID string
}

func (p *StaticProvider) UserIDFromToken(string) (string, error) {
	if p.UserID == "" {
		return "", &AuthenticationError{Reason: "static provider has no user id"}
	}
	return p.UserID, nil
}
