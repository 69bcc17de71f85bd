package analytics

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/phantomos-app/phantomos-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

// Interval is the bucket width of a revenue series.
type Interval string

const (
	IntervalDay   Interval = "day"
	IntervalWeek  Interval = "week"
	IntervalMonth Interval = "month"
)

// ParseInterval validates a query-string interval, defaulting to day.
func ParseInterval(value string) (Interval, error) {
	switch value {
	case "":
		return IntervalDay, nil
	case string(IntervalDay), string(IntervalWeek), string(IntervalMonth):
		return Interval(value), nil
	default:
		return "", fmt.Errorf("invalid interval %q", value)
	}
}

// AssetPerformance is one ranked row of the per-asset rollup. Score is a
// derived presentation value, never persisted.
type AssetPerformance struct {
	AssetID      uuid.UUID       `json:"assetId"`
	AssetName    string          `json:"assetName"`
	GameIPName   string          `json:"gameIpName"`
	Revenue      decimal.Decimal `json:"revenue"`
	Units        int64           `json:"units"`
	ProductCount int64           `json:"productCount"`
	Score        float64         `json:"score"`
}

// CategoryPerformance is one row of the per-category rollup.
type CategoryPerformance struct {
	Category     enums.ProductCategory `json:"category"`
	Revenue      decimal.Decimal       `json:"revenue"`
	Units        int64                 `json:"units"`
	ProductCount int64                 `json:"productCount"`
}

// TimeBucket is one point of a revenue series.
type TimeBucket struct {
	Bucket  time.Time       `json:"bucket"`
	Revenue decimal.Decimal `json:"revenue"`
	Units   int64           `json:"units"`
}

// TimeseriesInput scopes a revenue series request.
type TimeseriesInput struct {
	Interval Interval
	From     time.Time
	To       time.Time
}
