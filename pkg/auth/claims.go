package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/phantomos-app/phantomos-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID      uuid.UUID
	PublisherID uuid.UUID
	Role        enums.MemberRole
	JTI         string
}

// AccessTokenClaims represents the typed JWT issued to clients. Every token
// is scoped to a single publisher; there is no publisher-less session.
type AccessTokenClaims struct {
	UserID      uuid.UUID        `json:"user_id"`
	PublisherID uuid.UUID        `json:"publisher_id"`
	Role        enums.MemberRole `json:"role"`
	jwt.RegisteredClaims
}
