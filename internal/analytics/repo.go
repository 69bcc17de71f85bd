package analytics

import (
	"context"

	"github.com/google/uuid"
	"github.com/phantomos-app/phantomos-backend/pkg/enums"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Repository runs the read-side rollup queries. Everything is filtered by
// publisher id and only confirmed mappings contribute to asset rollups.
type Repository interface {
	AssetTotals(ctx context.Context, publisherID uuid.UUID) ([]AssetTotalsRow, error)
	CategoryTotals(ctx context.Context, publisherID uuid.UUID) ([]CategoryPerformance, error)
	RevenueSeries(ctx context.Context, publisherID uuid.UUID, input TimeseriesInput) ([]TimeBucket, error)
}

// AssetTotalsRow is the raw aggregate before scoring.
type AssetTotalsRow struct {
	AssetID      uuid.UUID
	AssetName    string
	GameIPName   string
	Revenue      decimal.Decimal
	Units        int64
	ProductCount int64
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an analytics repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) AssetTotals(ctx context.Context, publisherID uuid.UUID) ([]AssetTotalsRow, error) {
	var rows []AssetTotalsRow
	err := r.db.WithContext(ctx).
		Table("sales").
		Select(
			"ip_assets.id AS asset_id",
			"ip_assets.name AS asset_name",
			"game_ips.name AS game_ip_name",
			"COALESCE(SUM(sales.revenue), 0) AS revenue",
			"COALESCE(SUM(sales.quantity), 0) AS units",
			"COUNT(DISTINCT products.id) AS product_count",
		).
		Joins("JOIN products ON products.id = sales.product_id").
		Joins("JOIN product_assets ON product_assets.product_id = products.id").
		Joins("JOIN ip_assets ON ip_assets.id = product_assets.ip_asset_id").
		Joins("JOIN game_ips ON game_ips.id = ip_assets.game_ip_id").
		Where("sales.publisher_id = ?", publisherID).
		Where("products.mapping_status = ?", enums.MappingStatusConfirmed).
		Group("ip_assets.id, ip_assets.name, game_ips.name").
		Order("revenue DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) CategoryTotals(ctx context.Context, publisherID uuid.UUID) ([]CategoryPerformance, error) {
	var rows []CategoryPerformance
	err := r.db.WithContext(ctx).
		Table("sales").
		Select(
			"products.category",
			"COALESCE(SUM(sales.revenue), 0) AS revenue",
			"COALESCE(SUM(sales.quantity), 0) AS units",
			"COUNT(DISTINCT products.id) AS product_count",
		).
		Joins("JOIN products ON products.id = sales.product_id").
		Where("sales.publisher_id = ?", publisherID).
		Group("products.category").
		Order("revenue DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// RevenueSeries buckets sales by day, week, or month. The interval is a
// closed vocabulary validated upstream, safe to inline into date_trunc.
func (r *repository) RevenueSeries(ctx context.Context, publisherID uuid.UUID, input TimeseriesInput) ([]TimeBucket, error) {
	var rows []TimeBucket
	err := r.db.WithContext(ctx).
		Table("sales").
		Select(
			"date_trunc('"+string(input.Interval)+"', sales.sold_at) AS bucket",
			"COALESCE(SUM(sales.revenue), 0) AS revenue",
			"COALESCE(SUM(sales.quantity), 0) AS units",
		).
		Where("sales.publisher_id = ?", publisherID).
		Where("sales.sold_at >= ? AND sales.sold_at < ?", input.From, input.To).
		Group("bucket").
		Order("bucket ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
