package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/phantomos-app/phantomos-backend/pkg/enums"
)

// Invitation grants one email address membership in a publisher. The token is
// stored as an Argon2id hash; the plaintext is only returned once at creation.
type Invitation struct {
	ID          uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	PublisherID uuid.UUID        `gorm:"column:publisher_id;type:uuid;not null"`
	Email       string           `gorm:"column:email;not null"`
	Role        enums.MemberRole `gorm:"column:role;not null;default:viewer"`
	TokenHash   string           `gorm:"column:token_hash;not null"`
	InvitedBy   uuid.UUID        `gorm:"column:invited_by;type:uuid;not null"`
	ExpiresAt   time.Time        `gorm:"column:expires_at;not null"`
	RedeemedAt  *time.Time       `gorm:"column:redeemed_at"`
	CreatedAt   time.Time        `gorm:"column:created_at;autoCreateTime"`
}
