// Package identity turns bearer tokens into the user identity that the
// HTTP and websocket surfaces act on behalf of.
package identity

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	lru "github.com/hashicorp/golang-lru"

	"github.com/nekoden/nekoden/nekoden/config"
)

var (
	ErrMissingToken = errors.New("missing token")
	ErrInvalidToken = errors.New("invalid token")
)

// Identity is a verified caller.
type Identity struct {
	UserID    string
	Name      string
	ExpiresAt time.Time
}

type claims struct {
	jwt.RegisteredClaims
	Name     string `json:"name,omitempty"`
	Username string `json:"username,omitempty"`
}

type Verifier struct {
	secret []byte
	issuer string
	cache  *lru.Cache
	now    func() time.Time
}

// NewVerifier builds an HS256 verifier. An empty issuer skips the iss check.
func NewVerifier(secret, issuer string, now func() time.Time) (*Verifier, error) {
	if secret == "" {
		return nil, fmt.Errorf("jwt secret is required")
	}
	cache, err := lru.New(config.IdentityCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create identity cache: %w", err)
	}
	if now == nil {
		now = time.Now
	}
	return &Verifier{secret: []byte(secret), issuer: issuer, cache: cache, now: now}, nil
}

// Verify checks signature, expiry and issuer. Results are cached per token
// until the token expires.
func (v *Verifier) Verify(token string) (Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Identity{}, ErrMissingToken
	}

	if cached, ok := v.cache.Get(token); ok {
		id := cached.(Identity)
		if v.now().Before(id.ExpiresAt) {
			return id, nil
		}
		v.cache.Remove(token)
		return Identity{}, fmt.Errorf("%w: token is expired", ErrInvalidToken)
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(v.now),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	var parsed claims
	_, err := jwt.ParseWithClaims(token, &parsed, func(*jwt.Token) (any, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	userID := strings.TrimSpace(parsed.Subject)
	if userID == "" {
		return Identity{}, fmt.Errorf("%w: sub is required", ErrInvalidToken)
	}
	id := Identity{
		UserID:    userID,
		Name:      displayName(parsed, userID),
		ExpiresAt: parsed.ExpiresAt.Time,
	}
	v.cache.Add(token, id)
	return id, nil
}

// Issue signs a token for userID. Used by the token command and tests.
func (v *Verifier) Issue(userID, name string, ttl time.Duration) (string, error) {
	now := v.now()
	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    v.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Name: name,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(v.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) string {
	header = strings.TrimSpace(header)
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}

func displayName(c claims, fallback string) string {
	for _, n := range []string{c.Name, c.Username} {
		if n = strings.TrimSpace(n); n != "" {
			return n
		}
	}
	return fallback
}
