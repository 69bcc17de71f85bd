package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/phantomos-app/phantomos-backend/pkg/enums"
)

// User is a member of exactly one publisher organization.
type User struct {
	ID          uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	PublisherID uuid.UUID        `gorm:"column:publisher_id;type:uuid;not null"`
	Email       string           `gorm:"column:email;not null;uniqueIndex"`
	Name        string           `gorm:"column:name;not null"`
	Role        enums.MemberRole `gorm:"column:role;not null;default:viewer"`
	CreatedAt   time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
