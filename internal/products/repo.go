package products

import (
	"context"

	"github.com/google/uuid"
	"github.com/phantomos-app/phantomos-backend/pkg/db/models"
	"github.com/phantomos-app/phantomos-backend/pkg/enums"
	"github.com/phantomos-app/phantomos-backend/pkg/pagination"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository manages persistence for catalog products.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	Create(ctx context.Context, product *models.Product) error
	FindByID(ctx context.Context, publisherID, id uuid.UUID) (*models.Product, error)
	FindByIDWithLinks(ctx context.Context, publisherID, id uuid.UUID) (*models.Product, error)
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, publisherID uuid.UUID, input ListProductsInput) ([]models.Product, error)
	CountByStatus(ctx context.Context, publisherID uuid.UUID) (map[enums.MappingStatus]int64, error)
	UpsertExternal(ctx context.Context, product *models.Product) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a product repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *repository) FindByID(ctx context.Context, publisherID, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).
		First(&product, "id = ? AND publisher_id = ?", id, publisherID).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repository) FindByIDWithLinks(ctx context.Context, publisherID, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).
		Preload("Links").
		Preload("Links.Asset").
		First(&product, "id = ? AND publisher_id = ?", id, publisherID).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repository) Update(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Omit("Links").Save(product).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Product{}, "id = ?", id).Error
}

func (r *repository) List(ctx context.Context, publisherID uuid.UUID, input ListProductsInput) ([]models.Product, error) {
	query := r.db.WithContext(ctx).
		Preload("Links").
		Preload("Links.Asset").
		Where("publisher_id = ?", publisherID).
		Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(input.Limit))

	if input.MappingStatus != nil {
		query = query.Where("mapping_status = ?", *input.MappingStatus)
	}
	if input.Category != nil {
		query = query.Where("category = ?", *input.Category)
	}
	if input.ConnectorID != nil {
		query = query.Where("connector_id = ?", *input.ConnectorID)
	}
	if input.Search != "" {
		pattern := "%" + input.Search + "%"
		query = query.Where("name ILIKE ? OR sku ILIKE ? OR vendor ILIKE ?", pattern, pattern, pattern)
	}

	cursor, err := pagination.ParseCursor(input.Cursor)
	if err != nil {
		return nil, err
	}
	if cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var list []models.Product
	if err := query.Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *repository) CountByStatus(ctx context.Context, publisherID uuid.UUID) (map[enums.MappingStatus]int64, error) {
	var rows []struct {
		MappingStatus enums.MappingStatus
		Total         int64
	}
	if err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Select("mapping_status", "COUNT(*) AS total").
		Where("publisher_id = ?", publisherID).
		Group("mapping_status").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	counts := map[enums.MappingStatus]int64{}
	for _, row := range rows {
		counts[row.MappingStatus] = row.Total
	}
	return counts, nil
}

// UpsertExternal inserts or refreshes a connector-owned product row keyed on
// (connector_id, external_id). Mapping state is never touched by a re-sync.
func (r *repository) UpsertExternal(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "connector_id"}, {Name: "external_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"name", "description", "category", "price", "sku", "vendor", "tags", "updated_at",
			}),
		}).
		Create(product).Error
}
