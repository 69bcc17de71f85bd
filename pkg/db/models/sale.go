package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Sale is one line of sold merchandise pulled in during order sync.
type Sale struct {
	ID          uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	PublisherID uuid.UUID  `gorm:"column:publisher_id;type:uuid;not null;index"`
	ProductID   uuid.UUID  `gorm:"column:product_id;type:uuid;not null;index"`
	ConnectorID *uuid.UUID `gorm:"column:connector_id;type:uuid"`
	ExternalID  *string    `gorm:"column:external_id"`

	Quantity  int             `gorm:"column:quantity;not null"`
	Revenue   decimal.Decimal `gorm:"column:revenue;type:numeric(14,2);not null"`
	SoldAt    time.Time       `gorm:"column:sold_at;not null;index"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
}
