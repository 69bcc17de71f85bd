package models

import (
	"time"

	"github.com/google/uuid"
)

// GameIP is a game franchise owned by a publisher, grouping IP assets.
type GameIP struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	PublisherID uuid.UUID `gorm:"column:publisher_id;type:uuid;not null;index"`
	Name        string    `gorm:"column:name;not null"`
	Slug        string    `gorm:"column:slug;not null"`
	Assets      []IPAsset `gorm:"foreignKey:GameIPID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
