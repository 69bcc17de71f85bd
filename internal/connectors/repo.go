package connectors

import (
	"context"

	"github.com/google/uuid"
	"github.com/phantomos-app/phantomos-backend/pkg/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository manages connector rows and the sync-side writes they own.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	Create(ctx context.Context, connector *models.Connector) error
	FindByID(ctx context.Context, publisherID, id uuid.UUID) (*models.Connector, error)
	FindPending(ctx context.Context, id uuid.UUID, shopDomain string) (*models.Connector, error)
	List(ctx context.Context, publisherID uuid.UUID) ([]models.Connector, error)
	Save(ctx context.Context, connector *models.Connector) error
	Delete(ctx context.Context, id uuid.UUID) error

	DeleteProductsForConnector(ctx context.Context, connectorID uuid.UUID) (int64, error)
	ProductIDsByExternal(ctx context.Context, connectorID uuid.UUID, externalIDs []string) (map[string]uuid.UUID, error)
	UpsertSales(ctx context.Context, sales []models.Sale) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a connector repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, connector *models.Connector) error {
	return r.db.WithContext(ctx).Create(connector).Error
}

func (r *repository) FindByID(ctx context.Context, publisherID, id uuid.UUID) (*models.Connector, error) {
	var connector models.Connector
	if err := r.db.WithContext(ctx).
		First(&connector, "id = ? AND publisher_id = ?", id, publisherID).Error; err != nil {
		return nil, err
	}
	return &connector, nil
}

// FindPending resolves an OAuth callback's state to its pending install.
// The callback carries no session, so the connector row is the trust anchor.
func (r *repository) FindPending(ctx context.Context, id uuid.UUID, shopDomain string) (*models.Connector, error) {
	var connector models.Connector
	if err := r.db.WithContext(ctx).
		First(&connector, "id = ? AND shop_domain = ?", id, shopDomain).Error; err != nil {
		return nil, err
	}
	return &connector, nil
}

func (r *repository) List(ctx context.Context, publisherID uuid.UUID) ([]models.Connector, error) {
	var list []models.Connector
	if err := r.db.WithContext(ctx).
		Where("publisher_id = ?", publisherID).
		Order("created_at DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *repository) Save(ctx context.Context, connector *models.Connector) error {
	return r.db.WithContext(ctx).Save(connector).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Connector{}, "id = ?", id).Error
}

// DeleteProductsForConnector removes every product the connector ingested.
// The FK is SET NULL, so the cleanup must be explicit.
func (r *repository) DeleteProductsForConnector(ctx context.Context, connectorID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).Delete(&models.Product{}, "connector_id = ?", connectorID)
	return result.RowsAffected, result.Error
}

func (r *repository) ProductIDsByExternal(ctx context.Context, connectorID uuid.UUID, externalIDs []string) (map[string]uuid.UUID, error) {
	if len(externalIDs) == 0 {
		return map[string]uuid.UUID{}, nil
	}

	var rows []struct {
		ID         uuid.UUID
		ExternalID string
	}
	if err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Select("id", "external_id").
		Where("connector_id = ? AND external_id IN ?", connectorID, externalIDs).
		Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make(map[string]uuid.UUID, len(rows))
	for _, row := range rows {
		out[row.ExternalID] = row.ID
	}
	return out, nil
}

// UpsertSales inserts sales idempotently on (connector_id, external_id);
// re-syncing an already ingested order is a no-op.
func (r *repository) UpsertSales(ctx context.Context, sales []models.Sale) (int64, error) {
	if len(sales) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "connector_id"}, {Name: "external_id"}},
			DoNothing: true,
		}).
		Create(&sales)
	return result.RowsAffected, result.Error
}
