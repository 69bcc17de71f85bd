package models

import (
	"time"

	"github.com/google/uuid"
)

// ProductAsset links a product to one IP asset. At most one link per product
// carries is_primary, enforced by a partial unique index in the schema.
type ProductAsset struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID uuid.UUID `gorm:"column:product_id;type:uuid;not null;uniqueIndex:idx_product_assets_pair"`
	IPAssetID uuid.UUID `gorm:"column:ip_asset_id;type:uuid;not null;uniqueIndex:idx_product_assets_pair"`
	IsPrimary bool      `gorm:"column:is_primary;not null;default:false"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`

	Asset *IPAsset `gorm:"foreignKey:IPAssetID"`
}
