package mapping

import (
	"context"

	"github.com/google/uuid"
	"github.com/phantomos-app/phantomos-backend/pkg/db/models"
	"github.com/phantomos-app/phantomos-backend/pkg/enums"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository manages persistence for mapping state and product-asset links.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	FindProductForUpdate(ctx context.Context, publisherID, productID uuid.UUID) (*models.Product, error)
	SaveProduct(ctx context.Context, product *models.Product) error

	ReplaceLinks(ctx context.Context, productID uuid.UUID, links []models.ProductAsset) error
	InsertLinks(ctx context.Context, links []models.ProductAsset) error
	ListLinks(ctx context.Context, productID uuid.UUID) ([]models.ProductAsset, error)
	DeleteLink(ctx context.Context, productID, assetID uuid.UUID) (bool, error)
	SetPrimaryLink(ctx context.Context, linkID uuid.UUID) error

	BulkSkip(ctx context.Context, publisherID uuid.UUID, productIDs []uuid.UUID, actorID *uuid.UUID) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a mapping repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// FindProductForUpdate loads the tenant's product row locked FOR UPDATE, so
// concurrent confirms serialize on the row and apply last-write-wins.
func (r *repository) FindProductForUpdate(ctx context.Context, publisherID, productID uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&product, "id = ? AND publisher_id = ?", productID, publisherID).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repository) SaveProduct(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Omit("Links").Save(product).Error
}

// ReplaceLinks swaps the full link set in place, delete then insert.
func (r *repository) ReplaceLinks(ctx context.Context, productID uuid.UUID, links []models.ProductAsset) error {
	tx := r.db.WithContext(ctx)
	if err := tx.Where("product_id = ?", productID).Delete(&models.ProductAsset{}).Error; err != nil {
		return err
	}
	if len(links) == 0 {
		return nil
	}
	return tx.Create(&links).Error
}

func (r *repository) InsertLinks(ctx context.Context, links []models.ProductAsset) error {
	if len(links) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&links).Error
}

func (r *repository) ListLinks(ctx context.Context, productID uuid.UUID) ([]models.ProductAsset, error) {
	var links []models.ProductAsset
	if err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("created_at ASC, id ASC").
		Find(&links).Error; err != nil {
		return nil, err
	}
	return links, nil
}

func (r *repository) DeleteLink(ctx context.Context, productID, assetID uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("product_id = ? AND ip_asset_id = ?", productID, assetID).
		Delete(&models.ProductAsset{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) SetPrimaryLink(ctx context.Context, linkID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.ProductAsset{}).
		Where("id = ?", linkID).
		Update("is_primary", true).Error
}

// BulkSkip flips every matching tenant product to skipped in one statement.
func (r *repository) BulkSkip(ctx context.Context, publisherID uuid.UUID, productIDs []uuid.UUID, actorID *uuid.UUID) (int64, error) {
	if len(productIDs) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("publisher_id = ? AND id IN ?", publisherID, productIDs).
		Updates(map[string]any{
			"mapping_status": enums.MappingStatusSkipped,
			"mapped_by":      actorID,
			"mapped_at":      gorm.Expr("CURRENT_TIMESTAMP"),
		})
	return result.RowsAffected, result.Error
}
