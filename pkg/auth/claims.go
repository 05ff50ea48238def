package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessTokenPayload captures the data available when minting a JWT. Tokens
// are minted by the team-management auth service; the mint helper here exists
// for tests and local tooling.
type AccessTokenPayload struct {
	UserID uuid.UUID
	TeamID *uuid.UUID
	Name   string
	JTI    string
}

// AccessTokenClaims represents the typed JWT presented by clients.
type AccessTokenClaims struct {
	UserID uuid.UUID  `json:"user_id"`
	TeamID *uuid.UUID `json:"team_id,omitempty"`
	Name   string     `json:"name,omitempty"`
	jwt.RegisteredClaims
}
