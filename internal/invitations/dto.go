package invitations

import (
	"time"

	"github.com/google/uuid"
	"github.com/phantomos-app/phantomos-backend/pkg/enums"
)

// CreateInput invites one email address into the caller's publisher.
type CreateInput struct {
	Email string           `json:"email" validate:"required,email"`
	Role  enums.MemberRole `json:"role" validate:"required"`
}

// CreateResult carries the one-time plaintext token. Only the hash is stored;
// the token cannot be recovered later.
type CreateResult struct {
	InvitationID uuid.UUID        `json:"invitationId"`
	Email        string           `json:"email"`
	Role         enums.MemberRole `json:"role"`
	Token        string           `json:"token"`
	ExpiresAt    time.Time        `json:"expiresAt"`
}

// RedeemInput accepts an invitation and names the new member.
type RedeemInput struct {
	InvitationID uuid.UUID `json:"invitationId" validate:"required"`
	Token        string    `json:"token" validate:"required"`
	Name         string    `json:"name" validate:"required"`
}

// RedeemResult is the freshly created membership plus a signed session token.
type RedeemResult struct {
	UserID      uuid.UUID        `json:"userId"`
	PublisherID uuid.UUID        `json:"publisherId"`
	Role        enums.MemberRole `json:"role"`
	AccessToken string           `json:"accessToken"`
}
