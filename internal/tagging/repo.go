package tagging

import (
	"context"

	"github.com/google/uuid"
	"github.com/phantomos-app/phantomos-backend/pkg/db/models"
	"github.com/phantomos-app/phantomos-backend/pkg/enums"
	"gorm.io/gorm"
)

// Repository reads prompt material and persists auto-tag outcomes.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CandidateAssets(ctx context.Context, publisherID uuid.UUID) ([]Candidate, error)
	CandidatesByIDs(ctx context.Context, publisherID uuid.UUID, ids []uuid.UUID) ([]Candidate, error)
	ConfirmedExamples(ctx context.Context, publisherID uuid.UUID, category enums.ProductCategory, limit int, shared bool) ([]Example, error)

	FindProduct(ctx context.Context, publisherID, productID uuid.UUID) (*models.Product, error)
	UnmappedProducts(ctx context.Context, publisherID uuid.UUID, ids []uuid.UUID, limit int) ([]models.Product, error)

	ListLinks(ctx context.Context, productID uuid.UUID) ([]models.ProductAsset, error)
	InsertLinks(ctx context.Context, links []models.ProductAsset) error
	SaveProduct(ctx context.Context, product *models.Product) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a tagging repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CandidateAssets(ctx context.Context, publisherID uuid.UUID) ([]Candidate, error) {
	return r.candidates(ctx, publisherID, nil)
}

func (r *repository) CandidatesByIDs(ctx context.Context, publisherID uuid.UUID, ids []uuid.UUID) ([]Candidate, error) {
	if len(ids) == 0 {
		return []Candidate{}, nil
	}
	return r.candidates(ctx, publisherID, ids)
}

func (r *repository) candidates(ctx context.Context, publisherID uuid.UUID, ids []uuid.UUID) ([]Candidate, error) {
	query := r.db.WithContext(ctx).
		Table("ip_assets").
		Select("ip_assets.id", "ip_assets.name", "ip_assets.asset_type", "ip_assets.description", "game_ips.name AS game_ip_name").
		Joins("JOIN game_ips ON game_ips.id = ip_assets.game_ip_id").
		Where("game_ips.publisher_id = ?", publisherID).
		Order("game_ips.name ASC, ip_assets.name ASC")
	if ids != nil {
		query = query.Where("ip_assets.id IN ?", ids)
	}

	var rows []struct {
		ID          uuid.UUID
		Name        string
		AssetType   enums.AssetType
		Description *string
		GameIPName  string
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]Candidate, 0, len(rows))
	for _, row := range rows {
		out = append(out, Candidate{
			ID:          row.ID,
			Name:        row.Name,
			AssetType:   row.AssetType,
			GameIPName:  row.GameIPName,
			Description: row.Description,
		})
	}
	return out, nil
}

// ConfirmedExamples mines confirmed primary links as few-shot material,
// preferring examples in the target product's category. shared widens the
// pool across all publishers; otherwise the tenant only learns from itself.
func (r *repository) ConfirmedExamples(ctx context.Context, publisherID uuid.UUID, category enums.ProductCategory, limit int, shared bool) ([]Example, error) {
	query := r.db.WithContext(ctx).
		Table("products").
		Select("products.name AS product_name", "products.category", "ip_assets.name AS asset_name").
		Joins("JOIN product_assets ON product_assets.product_id = products.id AND product_assets.is_primary").
		Joins("JOIN ip_assets ON ip_assets.id = product_assets.ip_asset_id").
		Where("products.mapping_status = ?", enums.MappingStatusConfirmed).
		Limit(limit)
	if category.IsValid() {
		// category is a closed enum, safe to inline
		query = query.Order("CASE WHEN products.category = '" + string(category) + "' THEN 0 ELSE 1 END, products.mapped_at DESC")
	} else {
		query = query.Order("products.mapped_at DESC")
	}
	if !shared {
		query = query.Where("products.publisher_id = ?", publisherID)
	}

	var rows []struct {
		ProductName string
		Category    enums.ProductCategory
		AssetName   string
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]Example, 0, len(rows))
	for _, row := range rows {
		out = append(out, Example{ProductName: row.ProductName, Category: row.Category, AssetName: row.AssetName})
	}
	return out, nil
}

func (r *repository) FindProduct(ctx context.Context, publisherID, productID uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).
		First(&product, "id = ? AND publisher_id = ?", productID, publisherID).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// UnmappedProducts lists unmapped products oldest first, optionally narrowed
// to an explicit id subset.
func (r *repository) UnmappedProducts(ctx context.Context, publisherID uuid.UUID, ids []uuid.UUID, limit int) ([]models.Product, error) {
	query := r.db.WithContext(ctx).
		Where("publisher_id = ? AND mapping_status = ?", publisherID, enums.MappingStatusUnmapped).
		Order("created_at ASC, id ASC").
		Limit(limit)
	if len(ids) > 0 {
		query = query.Where("id IN ?", ids)
	}

	var list []models.Product
	if err := query.Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
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

func (r *repository) InsertLinks(ctx context.Context, links []models.ProductAsset) error {
	if len(links) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&links).Error
}

func (r *repository) SaveProduct(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Omit("Links").Save(product).Error
}
