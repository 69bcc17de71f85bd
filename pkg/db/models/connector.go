package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/phantomos-app/phantomos-backend/pkg/enums"
	"github.com/phantomos-app/phantomos-backend/pkg/types"
)

// Connector is an installed external commerce integration for a publisher.
type Connector struct {
	ID          uuid.UUID               `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	PublisherID uuid.UUID               `gorm:"column:publisher_id;type:uuid;not null;index"`
	Provider    enums.ConnectorProvider `gorm:"column:provider;not null"`
	ShopDomain  string                  `gorm:"column:shop_domain;not null"`
	AccessToken string                  `gorm:"column:access_token;not null"`
	Status      enums.ConnectorStatus   `gorm:"column:status;not null;default:pending"`
	Config      types.JSONMap           `gorm:"column:config;type:jsonb"`
	LastSyncAt  *time.Time              `gorm:"column:last_sync_at"`
	CreatedAt   time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}
