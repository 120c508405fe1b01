package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/pinkeeper/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// GrantAudience marks a token as a step-up grant so an access token signed
// with the same key is never accepted in its place.
const GrantAudience = "pinkeeper-step-up"

// GrantIssuer mints and checks step-up grants: HS256 JWTs whose subject is
// the verified principal, each with a unique ID.
type GrantIssuer struct {
	secret   []byte
	validity time.Duration
	now      func() time.Time
}

func NewGrantIssuer(secret []byte, validity time.Duration) *GrantIssuer {
	return &GrantIssuer{secret: secret, validity: validity, now: time.Now}
}

// Issue returns a grant for principalID valid for the configured duration.
func (g *GrantIssuer) Issue(principalID string) (string, error) {
	now := g.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   principalID,
		Audience:  jwt.ClaimStrings{GrantAudience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(g.validity)),
	})

	s, err := token.SignedString(g.secret)
	if err != nil {
		return "", fmt.Errorf("sign grant: %w", err)
	}
	return s, nil
}

// Validate returns the principal a grant was issued to.
func (g *GrantIssuer) Validate(grant string) (string, error) {
	claims := &jwt.RegisteredClaims{}

	_, err := jwt.ParseWithClaims(grant, claims, func(t *jwt.Token) (interface{}, error) {
		return g.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(GrantAudience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(g.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", common.ErrTokenExpired
		}
		return "", fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return "", common.ErrInvalidToken
	}
	return claims.Subject, nil
}
