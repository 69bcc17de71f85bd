package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/phantomos-app/phantomos-backend/pkg/enums"
)

// Publisher is the tenant root; every other row is reachable only through a
// publisher-scoped path.
type Publisher struct {
	ID               uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name             string                 `gorm:"column:name;not null"`
	Slug             string                 `gorm:"column:slug;not null;uniqueIndex"`
	SubscriptionTier enums.SubscriptionTier `gorm:"column:subscription_tier;not null;default:free"`
	GameIPs          []GameIP               `gorm:"foreignKey:PublisherID;constraint:OnDelete:CASCADE"`
	CreatedAt        time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}
