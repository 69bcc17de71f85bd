package mapping

import (
	"time"

	"github.com/google/uuid"
)

// ConfirmInput is one confirm request: the full set of links the product
// should end up with. The first asset id becomes the primary link.
type ConfirmInput struct {
	ProductID uuid.UUID
	AssetIDs  []uuid.UUID
}

// ConfirmResult echoes the confirmed link set and the confirmation time.
type ConfirmResult struct {
	ProductID uuid.UUID   `json:"productId"`
	AssetIDs  []uuid.UUID `json:"assetIds"`
	MappedAt  time.Time   `json:"mappedAt"`
}

// SkipResult reports when the skip was recorded.
type SkipResult struct {
	ProductID uuid.UUID `json:"productId"`
	SkippedAt time.Time `json:"skippedAt"`
}

// BulkItemError reports why one item of a bulk request failed.
type BulkItemError struct {
	ProductID uuid.UUID `json:"productId"`
	Error     string    `json:"error"`
}

// BulkResult aggregates a bulk mutation. Failures never abort the run.
type BulkResult struct {
	Successful int             `json:"successful"`
	Failed     int             `json:"failed"`
	Errors     []BulkItemError `json:"errors"`
}
