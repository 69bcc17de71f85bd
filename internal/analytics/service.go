// Package analytics serves read-side revenue rollups over confirmed mappings.
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/phantomos-app/phantomos-backend/internal/tenant"
	pkgerrors "github.com/phantomos-app/phantomos-backend/pkg/errors"
)

// score weights: revenue 50%, units 30%, distinct product count 20%, each
// normalized against the tenant max.
const (
	weightRevenue  = 0.5
	weightUnits    = 0.3
	weightProducts = 0.2
)

const defaultSeriesWindow = 90 * 24 * time.Hour

// Service is the analytics query surface.
type Service interface {
	AssetPerformance(ctx context.Context, identity tenant.Identity) ([]AssetPerformance, error)
	CategoryPerformance(ctx context.Context, identity tenant.Identity) ([]CategoryPerformance, error)
	RevenueTimeseries(ctx context.Context, identity tenant.Identity, input TimeseriesInput) ([]TimeBucket, error)
}

type service struct {
	repo Repository
}

// NewService constructs the analytics service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("analytics repository required")
	}
	return &service{repo: repo}, nil
}

// AssetPerformance ranks the tenant's assets by weighted score.
func (s *service) AssetPerformance(ctx context.Context, identity tenant.Identity) ([]AssetPerformance, error) {
	rows, err := s.repo.AssetTotals(ctx, identity.PublisherID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "asset totals")
	}
	return scoreAssets(rows), nil
}

func (s *service) CategoryPerformance(ctx context.Context, identity tenant.Identity) ([]CategoryPerformance, error) {
	rows, err := s.repo.CategoryTotals(ctx, identity.PublisherID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "category totals")
	}
	if rows == nil {
		rows = []CategoryPerformance{}
	}
	return rows, nil
}

func (s *service) RevenueTimeseries(ctx context.Context, identity tenant.Identity, input TimeseriesInput) ([]TimeBucket, error) {
	if input.Interval == "" {
		input.Interval = IntervalDay
	}
	if _, err := ParseInterval(string(input.Interval)); err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "interval must be day, week, or month")
	}
	if input.To.IsZero() {
		input.To = time.Now().UTC()
	}
	if input.From.IsZero() {
		input.From = input.To.Add(-defaultSeriesWindow)
	}
	if !input.From.Before(input.To) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "from must precede to")
	}

	rows, err := s.repo.RevenueSeries(ctx, identity.PublisherID, input)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "revenue series")
	}
	if rows == nil {
		rows = []TimeBucket{}
	}
	return rows, nil
}

// scoreAssets turns raw totals into scored, ranked rows. Normalization uses
// the tenant max per component so a lone asset scores 1.0.
func scoreAssets(rows []AssetTotalsRow) []AssetPerformance {
	var maxRevenue float64
	var maxUnits, maxProducts int64
	for _, row := range rows {
		if revenue := row.Revenue.InexactFloat64(); revenue > maxRevenue {
			maxRevenue = revenue
		}
		if row.Units > maxUnits {
			maxUnits = row.Units
		}
		if row.ProductCount > maxProducts {
			maxProducts = row.ProductCount
		}
	}

	out := make([]AssetPerformance, 0, len(rows))
	for _, row := range rows {
		score := weightRevenue*normalize(row.Revenue.InexactFloat64(), maxRevenue) +
			weightUnits*normalize(float64(row.Units), float64(maxUnits)) +
			weightProducts*normalize(float64(row.ProductCount), float64(maxProducts))
		out = append(out, AssetPerformance{
			AssetID:      row.AssetID,
			AssetName:    row.AssetName,
			GameIPName:   row.GameIPName,
			Revenue:      row.Revenue,
			Units:        row.Units,
			ProductCount: row.ProductCount,
			Score:        score,
		})
	}
	return out
}

func normalize(value, max float64) float64 {
	if max <= 0 {
		return 0
	}
	return value / max
}
