// Package identity verifies the bearer token carried on a candidate's
// connection and resolves the user id the rest of the system keys on.
package identity

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/haasonsaas/interviewd/internal/ierrors"
)

var (
	// ErrAuthDisabled is returned when no signing secret is configured.
	ErrAuthDisabled = errors.New("identity: auth disabled")
	// ErrInvalidToken is returned for any malformed, expired, or
	// wrong-signature token.
	ErrInvalidToken = errors.New("identity: invalid token")
)

// Claims is the JWT payload a verified bearer token carries.
type Claims struct {
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// Identity is the resolved caller, keyed on Subject (the user_id the rest
// of the system uses for lookups — e.g. GetCandidateInterviewByMockAndUser).
type Identity struct {
	UserID string
	Email  string
	Name   string
}

// Verifier validates bearer tokens and resolves the caller identity.
type Verifier struct {
	secret []byte
	expiry time.Duration
}

// NewVerifier builds a Verifier from a signing secret and the expiry used
// when issuing tokens (issuance is only exercised by tests; production
// tokens are issued by the catalogue service this system receives them
// from). An empty secret disables verification.
func NewVerifier(secret string, expiry time.Duration) *Verifier {
	return &Verifier{secret: []byte(secret), expiry: expiry}
}

// Issue signs a token for userID, for test fixtures and local development.
func (v *Verifier) Issue(userID, email, name string) (string, error) {
	if len(v.secret) == 0 {
		return "", ErrAuthDisabled
	}
	if strings.TrimSpace(userID) == "" {
		return "", ierrors.Invalid("identity.Issue", errors.New("user id required"))
	}

	claims := Claims{
		Email: strings.TrimSpace(email),
		Name:  strings.TrimSpace(name),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  userID,
			IssuedAt: jwt.NewNumericDate(time.Now()),
		},
	}
	if v.expiry > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(v.expiry))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(v.secret)
}

// Verify parses and validates a bearer token, returning the caller identity.
func (v *Verifier) Verify(bearerToken string) (*Identity, error) {
	if len(v.secret) == 0 {
		return nil, ErrAuthDisabled
	}

	token := strings.TrimPrefix(strings.TrimSpace(bearerToken), "Bearer ")
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return nil, ErrInvalidToken
	}

	return &Identity{
		UserID: claims.Subject,
		Email:  strings.TrimSpace(claims.Email),
		Name:   strings.TrimSpace(claims.Name),
	}, nil
}
