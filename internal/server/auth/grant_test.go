package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/pinkeeper/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGrantIssuer_RoundTrip(t *testing.T) {
	g := NewGrantIssuer([]byte("k"), 5*time.Minute)

	a, err := g.Issue("u1")
	require.NoError(t, err)
	b, err := g.Issue("u1")
	require.NoError(t, err)
	assert.NotEqual(t, a, b, "every grant carries a fresh id")

	id, err := g.Validate(a)
	require.NoError(t, err)
	assert.Equal(t, "u1", id)
}

func TestGrantIssuer_Expiry(t *testing.T) {
	now := time.Now()
	g := NewGrantIssuer([]byte("k"), 5*time.Minute)
	g.now = func() time.Time { return now }

	grant, err := g.Issue("u1")
	require.NoError(t, err)

	now = now.Add(5*time.Minute + time.Second)
	_, err = g.Validate(grant)
	assert.ErrorIs(t, err, common.ErrTokenExpired)
}

func TestGrantIssuer_RejectsForeignTokens(t *testing.T) {
	secret := []byte("k")
	g := NewGrantIssuer(secret, time.Minute)

	access, err := GenerateToken("u1", secret, time.Hour)
	require.NoError(t, err)

	other, err := NewGrantIssuer([]byte("other"), time.Minute).Issue("u1")
	require.NoError(t, err)

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:  "u1",
		Audience: jwt.ClaimStrings{GrantAudience},
	}).SignedString(secret)
	require.NoError(t, err)

	for name, tok := range map[string]string{
		"access token": access,
		"wrong key":    other,
		"no expiry":    noExp,
		"garbage":      "x.y.z",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := g.Validate(tok)
			require.Error(t, err)
			assert.True(t, errors.Is(err, common.ErrInvalidToken), "got %v", err)
		})
	}
}
