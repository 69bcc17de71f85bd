package analytics

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phantomos-app/phantomos-backend/internal/tenant"
	"github.com/phantomos-app/phantomos-backend/pkg/enums"
	pkgerrors "github.com/phantomos-app/phantomos-backend/pkg/errors"
	"github.com/shopspring/decimal"
)

type stubRepository struct {
	assetTotals    func(ctx context.Context, publisherID uuid.UUID) ([]AssetTotalsRow, error)
	categoryTotals func(ctx context.Context, publisherID uuid.UUID) ([]CategoryPerformance, error)
	revenueSeries  func(ctx context.Context, publisherID uuid.UUID, input TimeseriesInput) ([]TimeBucket, error)
}

func (s *stubRepository) AssetTotals(ctx context.Context, publisherID uuid.UUID) ([]AssetTotalsRow, error) {
	return s.assetTotals(ctx, publisherID)
}

func (s *stubRepository) CategoryTotals(ctx context.Context, publisherID uuid.UUID) ([]CategoryPerformance, error) {
	return s.categoryTotals(ctx, publisherID)
}

func (s *stubRepository) RevenueSeries(ctx context.Context, publisherID uuid.UUID, input TimeseriesInput) ([]TimeBucket, error) {
	return s.revenueSeries(ctx, publisherID, input)
}

func identity() tenant.Identity {
	return tenant.User(uuid.New(), uuid.New(), enums.MemberRoleViewer)
}

func TestAssetPerformanceScoring(t *testing.T) {
	top := uuid.New()
	mid := uuid.New()
	repo := &stubRepository{
		assetTotals: func(ctx context.Context, _ uuid.UUID) ([]AssetTotalsRow, error) {
			return []AssetTotalsRow{
				{AssetID: top, AssetName: "Kael", Revenue: decimal.NewFromInt(1000), Units: 100, ProductCount: 10},
				{AssetID: mid, AssetName: "Emblem", Revenue: decimal.NewFromInt(500), Units: 50, ProductCount: 5},
			}, nil
		},
	}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	rows, err := svc.AssetPerformance(context.Background(), identity())
	if err != nil {
		t.Fatalf("AssetPerformance error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	// the max asset scores 1.0; the half-of-everything asset scores 0.5
	if math.Abs(rows[0].Score-1.0) > 1e-9 {
		t.Fatalf("expected top score 1.0, got %f", rows[0].Score)
	}
	if math.Abs(rows[1].Score-0.5) > 1e-9 {
		t.Fatalf("expected mid score 0.5, got %f", rows[1].Score)
	}
}

func TestAssetPerformanceZeroSales(t *testing.T) {
	repo := &stubRepository{
		assetTotals: func(ctx context.Context, _ uuid.UUID) ([]AssetTotalsRow, error) {
			return []AssetTotalsRow{{AssetID: uuid.New(), AssetName: "Kael"}}, nil
		},
	}
	svc, _ := NewService(repo)

	rows, err := svc.AssetPerformance(context.Background(), identity())
	if err != nil {
		t.Fatalf("AssetPerformance error: %v", err)
	}
	if rows[0].Score != 0 {
		t.Fatalf("zero maxes must not divide, got score %f", rows[0].Score)
	}
}

func TestRevenueTimeseriesDefaultsAndValidation(t *testing.T) {
	var got TimeseriesInput
	repo := &stubRepository{
		revenueSeries: func(ctx context.Context, _ uuid.UUID, input TimeseriesInput) ([]TimeBucket, error) {
			got = input
			return nil, nil
		},
	}
	svc, _ := NewService(repo)

	rows, err := svc.RevenueTimeseries(context.Background(), identity(), TimeseriesInput{})
	if err != nil {
		t.Fatalf("RevenueTimeseries error: %v", err)
	}
	if rows == nil {
		t.Fatal("expected empty non-nil series")
	}
	if got.Interval != IntervalDay {
		t.Fatalf("expected day default, got %s", got.Interval)
	}
	if window := got.To.Sub(got.From); window != 90*24*time.Hour {
		t.Fatalf("expected 90 day default window, got %s", window)
	}

	_, err = svc.RevenueTimeseries(context.Background(), identity(), TimeseriesInput{Interval: "hour"})
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for bad interval, got %v", err)
	}

	now := time.Now()
	_, err = svc.RevenueTimeseries(context.Background(), identity(), TimeseriesInput{Interval: IntervalWeek, From: now, To: now.Add(-time.Hour)})
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for inverted range, got %v", err)
	}
}

func TestParseInterval(t *testing.T) {
	cases := []struct {
		in      string
		want    Interval
		wantErr bool
	}{
		{"", IntervalDay, false},
		{"day", IntervalDay, false},
		{"week", IntervalWeek, false},
		{"month", IntervalMonth, false},
		{"year", "", true},
		{"DAY", "", true},
	}
	for _, tc := range cases {
		got, err := ParseInterval(tc.in)
		if tc.wantErr != (err != nil) {
			t.Fatalf("%q: unexpected err %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("%q: got %q, want %q", tc.in, got, tc.want)
		}
	}
}
