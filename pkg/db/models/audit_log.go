package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/phantomos-app/phantomos-backend/pkg/enums"
	"github.com/phantomos-app/phantomos-backend/pkg/types"
)

// AuditLog is an append-only compliance record. Rows are never updated or
// deleted and nothing in the write path reads them back.
type AuditLog struct {
	ID           uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	PublisherID  uuid.UUID         `gorm:"column:publisher_id;type:uuid;not null;index"`
	ActorID      *uuid.UUID        `gorm:"column:actor_id;type:uuid"`
	Action       enums.AuditAction `gorm:"column:action;not null"`
	ResourceType string            `gorm:"column:resource_type;not null"`
	ResourceID   *uuid.UUID        `gorm:"column:resource_id;type:uuid"`
	ResourceName *string           `gorm:"column:resource_name"`
	Metadata     types.JSONMap     `gorm:"column:metadata;type:jsonb"`
	Status       enums.AuditStatus `gorm:"column:status;not null;default:success"`
	CreatedAt    time.Time         `gorm:"column:created_at;autoCreateTime;index"`
}
