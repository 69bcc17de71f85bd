package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/phantomos-app/phantomos-backend/pkg/enums"
)

// IPAsset is a taggable entity (character, logo, theme, ...) within a game IP.
// Its tenant is transitively its GameIP's publisher; every query must join
// through game_ips to enforce isolation.
type IPAsset struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	GameIPID    uuid.UUID       `gorm:"column:game_ip_id;type:uuid;not null;index"`
	Name        string          `gorm:"column:name;not null"`
	AssetType   enums.AssetType `gorm:"column:asset_type;not null;default:other"`
	Description *string         `gorm:"column:description"`
	ImageURL    *string         `gorm:"column:image_url"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
