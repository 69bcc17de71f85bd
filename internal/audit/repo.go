package audit

import (
	"context"

	"github.com/google/uuid"
	"github.com/phantomos-app/phantomos-backend/pkg/db/models"
	"github.com/phantomos-app/phantomos-backend/pkg/enums"
	"github.com/phantomos-app/phantomos-backend/pkg/pagination"
	"gorm.io/gorm"
)

// ListFilter narrows the audit log listing.
type ListFilter struct {
	Action       *enums.AuditAction
	ResourceType *string
	ActorID      *uuid.UUID
}

// Repository manages persistence for audit entries.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, entry *models.AuditLog) error
	List(ctx context.Context, publisherID uuid.UUID, filter ListFilter, params pagination.Params) ([]models.AuditLog, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an audit repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, entry *models.AuditLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) List(ctx context.Context, publisherID uuid.UUID, filter ListFilter, params pagination.Params) ([]models.AuditLog, error) {
	query := r.db.WithContext(ctx).
		Where("publisher_id = ?", publisherID).
		Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit))

	if filter.Action != nil {
		query = query.Where("action = ?", *filter.Action)
	}
	if filter.ResourceType != nil {
		query = query.Where("resource_type = ?", *filter.ResourceType)
	}
	if filter.ActorID != nil {
		query = query.Where("actor_id = ?", *filter.ActorID)
	}

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}
	if cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var entries []models.AuditLog
	if err := query.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
