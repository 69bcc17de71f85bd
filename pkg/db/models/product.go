package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/phantomos-app/phantomos-backend/pkg/enums"
	"github.com/phantomos-app/phantomos-backend/pkg/types"
)

// Product is a merchandise SKU ingested from a connector or CSV import.
// Connector products carry (connector_id, external_id), unique together;
// CSV products have neither.
type Product struct {
	ID          uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	PublisherID uuid.UUID  `gorm:"column:publisher_id;type:uuid;not null;index"`
	ConnectorID *uuid.UUID `gorm:"column:connector_id;type:uuid;index:idx_products_connector_external,unique,where:connector_id IS NOT NULL"`
	ExternalID  *string    `gorm:"column:external_id;index:idx_products_connector_external,unique,where:connector_id IS NOT NULL"`

	Name        string                `gorm:"column:name;not null"`
	Description *string               `gorm:"column:description"`
	Category    enums.ProductCategory `gorm:"column:category;not null;default:other"`
	Price       decimal.Decimal       `gorm:"column:price;type:numeric(12,2);not null;default:0"`
	SKU         *string               `gorm:"column:sku"`
	Vendor      *string               `gorm:"column:vendor"`
	Tags        pq.StringArray        `gorm:"column:tags;type:text[];not null;default:'{}'"`

	MappingStatus     enums.MappingStatus  `gorm:"column:mapping_status;not null;default:unmapped"`
	AISuggestedAssets types.SuggestionList `gorm:"column:ai_suggested_assets;type:jsonb"`
	MappedBy          *uuid.UUID           `gorm:"column:mapped_by;type:uuid"`
	MappedAt          *time.Time           `gorm:"column:mapped_at"`

	Links     []ProductAsset `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
