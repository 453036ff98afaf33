package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenIssuer_RoundTripAndExpiry(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	iss, err := NewTokenIssuer("k", time.Hour)
	require.NoError(t, err)
	iss.now = func() time.Time { return now }

	tok, err := iss.Issue(Claims{PersonID: "7", Email: "a@b.c", Role: "applicant"})
	require.NoError(t, err)

	c, err := iss.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, "7", c.Subject)

	now = now.Add(time.Hour + time.Second)
	_, err = iss.Parse(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenIssuer_RejectsForeignTokens(t *testing.T) {
	a, err := NewTokenIssuer("", 0)
	require.NoError(t, err)
	b, err := NewTokenIssuer("", 0)
	require.NoError(t, err)

	tok, err := a.Issue(Claims{PersonID: "1"})
	require.NoError(t, err)
	_, err = b.Parse(tok)
	assert.ErrorIs(t, err, ErrInvalidToken, "random keys must differ")

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{PersonID: "1"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = a.Parse(unsigned)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
