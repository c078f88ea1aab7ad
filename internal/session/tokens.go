// Package session issues and verifies resume tokens that bind a player identity
// independently of the transport connection it was issued on.
package session

import (
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid session token")

// Claims represents JWT claims for a player session.
type Claims struct {
	PlayerID string `json:"pid"`
	jwt.RegisteredClaims
}

// Config holds token signing configuration.
type Config struct {
	Secret []byte
	Issuer string
	TTL    time.Duration
}

// Tokens signs and validates session tokens.
type Tokens struct {
	cfg Config
}

// NewTokens creates a token service. An empty secret is replaced with random bytes,
// which makes tokens valid only for the lifetime of the process.
func NewTokens(cfg Config) (*Tokens, error) {
	if len(cfg.Secret) == 0 {
		secret, err := RandomSecret()
		if err != nil {
			return nil, err
		}
		cfg.Secret = secret
	}
	if cfg.TTL <= 0 {
		cfg.TTL = time.Hour
	}
	return &Tokens{cfg: cfg}, nil
}

// RandomSecret returns 32 random bytes suitable for HMAC signing.
func RandomSecret() ([]byte, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("generate secret: %w", err)
	}
	return b, nil
}

// Issue creates a signed token for the given player identity.
func (t *Tokens) Issue(playerID string) (string, error) {
	now := time.Now()
	claims := Claims{
		PlayerID: playerID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    t.cfg.Issuer,
			Subject:   playerID,
			ExpiresAt: jwt.NewNumericDate(now.Add(t.cfg.TTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.cfg.Secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Validate parses a token and returns the player identity it was issued for.
func (t *Tokens) Validate(tokenString string) (string, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if t.cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(t.cfg.Issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(*jwt.Token) (interface{}, error) {
		return t.cfg.Secret, nil
	}, opts...)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.PlayerID == "" {
		return "", ErrInvalidToken
	}
	return claims.PlayerID, nil
}
