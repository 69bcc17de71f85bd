package assets

import (
	"context"

	"github.com/google/uuid"
	"github.com/phantomos-app/phantomos-backend/pkg/db/models"
	"github.com/phantomos-app/phantomos-backend/pkg/enums"
	"github.com/phantomos-app/phantomos-backend/pkg/pagination"
	"gorm.io/gorm"
)

// Repository manages persistence for game IPs and their assets.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateGameIP(ctx context.Context, ip *models.GameIP) error
	FindGameIPByID(ctx context.Context, publisherID, id uuid.UUID) (*models.GameIP, error)
	FindGameIPBySlug(ctx context.Context, publisherID uuid.UUID, slug string) (*models.GameIP, error)
	ListGameIPs(ctx context.Context, publisherID uuid.UUID) ([]models.GameIP, error)
	GameIPNamesByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error)

	CreateAsset(ctx context.Context, asset *models.IPAsset) error
	FindAssetByID(ctx context.Context, publisherID, id uuid.UUID) (*models.IPAsset, error)
	UpdateAsset(ctx context.Context, asset *models.IPAsset) error
	DeleteAsset(ctx context.Context, id uuid.UUID) error
	ListAssets(ctx context.Context, publisherID uuid.UUID, input ListAssetsInput) ([]models.IPAsset, error)
	AssetIDsForPublisher(ctx context.Context, publisherID uuid.UUID, ids []uuid.UUID) ([]uuid.UUID, error)

	ProductIDsLinkedToAsset(ctx context.Context, assetID uuid.UUID) ([]uuid.UUID, error)
	ResetUnlinkedProducts(ctx context.Context, productIDs []uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an asset repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateGameIP(ctx context.Context, ip *models.GameIP) error {
	return r.db.WithContext(ctx).Create(ip).Error
}

func (r *repository) FindGameIPByID(ctx context.Context, publisherID, id uuid.UUID) (*models.GameIP, error) {
	var ip models.GameIP
	if err := r.db.WithContext(ctx).
		First(&ip, "id = ? AND publisher_id = ?", id, publisherID).Error; err != nil {
		return nil, err
	}
	return &ip, nil
}

func (r *repository) FindGameIPBySlug(ctx context.Context, publisherID uuid.UUID, slug string) (*models.GameIP, error) {
	var ip models.GameIP
	if err := r.db.WithContext(ctx).
		First(&ip, "publisher_id = ? AND slug = ?", publisherID, slug).Error; err != nil {
		return nil, err
	}
	return &ip, nil
}

func (r *repository) ListGameIPs(ctx context.Context, publisherID uuid.UUID) ([]models.GameIP, error) {
	var ips []models.GameIP
	if err := r.db.WithContext(ctx).
		Preload("Assets").
		Where("publisher_id = ?", publisherID).
		Order("name ASC").
		Find(&ips).Error; err != nil {
		return nil, err
	}
	return ips, nil
}

func (r *repository) GameIPNamesByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	names := map[uuid.UUID]string{}
	if len(ids) == 0 {
		return names, nil
	}
	var rows []struct {
		ID   uuid.UUID
		Name string
	}
	if err := r.db.WithContext(ctx).
		Model(&models.GameIP{}).
		Select("id", "name").
		Where("id IN ?", ids).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		names[row.ID] = row.Name
	}
	return names, nil
}

func (r *repository) CreateAsset(ctx context.Context, asset *models.IPAsset) error {
	return r.db.WithContext(ctx).Create(asset).Error
}

func (r *repository) FindAssetByID(ctx context.Context, publisherID, id uuid.UUID) (*models.IPAsset, error) {
	var asset models.IPAsset
	if err := r.db.WithContext(ctx).
		Joins("JOIN game_ips ON game_ips.id = ip_assets.game_ip_id").
		Where("ip_assets.id = ? AND game_ips.publisher_id = ?", id, publisherID).
		First(&asset).Error; err != nil {
		return nil, err
	}
	return &asset, nil
}

func (r *repository) UpdateAsset(ctx context.Context, asset *models.IPAsset) error {
	return r.db.WithContext(ctx).Save(asset).Error
}

func (r *repository) DeleteAsset(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.IPAsset{}, "id = ?", id).Error
}

func (r *repository) ListAssets(ctx context.Context, publisherID uuid.UUID, input ListAssetsInput) ([]models.IPAsset, error) {
	query := r.db.WithContext(ctx).
		Joins("JOIN game_ips ON game_ips.id = ip_assets.game_ip_id").
		Where("game_ips.publisher_id = ?", publisherID).
		Order("ip_assets.created_at DESC, ip_assets.id DESC").
		Limit(pagination.LimitWithBuffer(input.Limit))

	if input.GameIPID != nil {
		query = query.Where("ip_assets.game_ip_id = ?", *input.GameIPID)
	}
	if input.AssetType != nil {
		query = query.Where("ip_assets.asset_type = ?", *input.AssetType)
	}
	if input.Search != "" {
		query = query.Where("ip_assets.name ILIKE ?", "%"+input.Search+"%")
	}

	cursor, err := pagination.ParseCursor(input.Cursor)
	if err != nil {
		return nil, err
	}
	if cursor != nil {
		query = query.Where("(ip_assets.created_at, ip_assets.id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var list []models.IPAsset
	if err := query.Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// AssetIDsForPublisher filters the candidate ids down to assets the publisher owns.
func (r *repository) AssetIDsForPublisher(ctx context.Context, publisherID uuid.UUID, ids []uuid.UUID) ([]uuid.UUID, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var owned []uuid.UUID
	if err := r.db.WithContext(ctx).
		Model(&models.IPAsset{}).
		Joins("JOIN game_ips ON game_ips.id = ip_assets.game_ip_id").
		Where("ip_assets.id IN ? AND game_ips.publisher_id = ?", ids, publisherID).
		Pluck("ip_assets.id", &owned).Error; err != nil {
		return nil, err
	}
	return owned, nil
}

func (r *repository) ProductIDsLinkedToAsset(ctx context.Context, assetID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := r.db.WithContext(ctx).
		Model(&models.ProductAsset{}).
		Where("ip_asset_id = ?", assetID).
		Pluck("product_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// ResetUnlinkedProducts moves confirmed products with no remaining links back
// to unmapped and clears their mapping attribution.
func (r *repository) ResetUnlinkedProducts(ctx context.Context, productIDs []uuid.UUID) error {
	if len(productIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id IN ?", productIDs).
		Where("mapping_status = ?", enums.MappingStatusConfirmed).
		Where("NOT EXISTS (SELECT 1 FROM product_assets WHERE product_assets.product_id = products.id)").
		Updates(map[string]any{
			"mapping_status": enums.MappingStatusUnmapped,
			"mapped_by":      nil,
			"mapped_at":      nil,
		}).Error
}
