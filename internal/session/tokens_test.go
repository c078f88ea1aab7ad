package session

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTokens(t *testing.T, secret string, ttl time.Duration) *Tokens {
	t.Helper()

	tokens, err := NewTokens(Config{Secret: []byte(secret), Issuer: "test", TTL: ttl})
	require.NoError(t, err)
	return tokens
}

func TestIssueAndValidate(t *testing.T) {
	tokens := newTestTokens(t, "test-secret", time.Hour)

	token, err := tokens.Issue("player-1")
	require.NoError(t, err)

	id, err := tokens.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "player-1", id)
}

func TestValidateRejectsForeignSecret(t *testing.T) {
	issuer := newTestTokens(t, "secret-a", time.Hour)
	verifier := newTestTokens(t, "secret-b", time.Hour)

	token, err := issuer.Issue("player-1")
	require.NoError(t, err)

	_, err = verifier.Validate(token)
	assert.True(t, errors.Is(err, ErrInvalidToken), "got %v", err)
}

func TestValidateRejectsExpired(t *testing.T) {
	tokens := newTestTokens(t, "test-secret", time.Hour)
	tokens.cfg.TTL = -time.Minute

	token, err := tokens.Issue("player-1")
	require.NoError(t, err)

	_, err = tokens.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateRejectsGarbage(t *testing.T) {
	tokens := newTestTokens(t, "test-secret", time.Hour)

	_, err := tokens.Validate("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewTokensGeneratesSecret(t *testing.T) {
	a, err := NewTokens(Config{})
	require.NoError(t, err)
	b, err := NewTokens(Config{})
	require.NoError(t, err)

	token, err := a.Issue("p")
	require.NoError(t, err)

	_, err = b.Validate(token)
	assert.Error(t, err, "tokens from separate random secrets must not validate")
}
