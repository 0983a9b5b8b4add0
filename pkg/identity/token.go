package identity

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ActorClaims extends standard JWT claims with the fields needed to
// recover the caller's kernel ActorId and delegation chain.
type ActorClaims struct {
	jwt.RegisteredClaims
	Type        PrincipalType `json:"type"`
	DelegatorID string        `json:"delegator_id,omitempty"`
	Scopes      []string      `json:"scopes,omitempty"`
}

// TokenManager issues and validates bearer tokens for kernel callers.
type TokenManager struct {
	keySet KeySet
}

func NewTokenManager(ks KeySet) *TokenManager {
	return &TokenManager{keySet: ks}
}

// GenerateToken creates a signed JWT identifying p for duration.
func (tm *TokenManager) GenerateToken(p Principal, duration time.Duration) (string, error) {
	now := time.Now().UTC()
	actorID := string(p.ActorID())

	claims := ActorClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        actorID,
			Subject:   actorID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(duration)),
			Issuer:    "taugate/identity",
			Audience:  jwt.ClaimStrings{"taugate.internal"},
		},
		Type: p.Type(),
	}

	if agent, ok := p.(*AgentPrincipal); ok {
		claims.DelegatorID = agent.DelegatorID
		claims.Scopes = agent.Scopes
	}

	return tm.keySet.Sign(context.Background(), claims)
}

// ValidateToken parses and validates a bearer token, returning its claims.
func (tm *TokenManager) ValidateToken(tokenString string) (*ActorClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &ActorClaims{}, tm.keySet.KeyFunc())
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(*ActorClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, jwt.ErrTokenSignatureInvalid
}
