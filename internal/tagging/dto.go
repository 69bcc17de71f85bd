package tagging

import (
	"github.com/google/uuid"
	"github.com/phantomos-app/phantomos-backend/pkg/enums"
	"github.com/phantomos-app/phantomos-backend/pkg/types"
)

// Candidate is one asset the model may suggest, carried with enough context
// to describe it in the prompt. Suggestions outside the candidate set are
// discarded no matter how confident the model sounds.
type Candidate struct {
	ID          uuid.UUID
	Name        string
	AssetType   enums.AssetType
	GameIPName  string
	Description *string
}

// Example is a confirmed product-to-asset pairing mined as few-shot material.
type Example struct {
	ProductName string
	Category    enums.ProductCategory
	AssetName   string
}

// SuggestInput asks for suggestions on one product. An empty AssetIDs list
// means "consider the publisher's whole catalog".
type SuggestInput struct {
	ProductID uuid.UUID   `json:"productId" validate:"required"`
	AssetIDs  []uuid.UUID `json:"assetIds"`
}

// SuggestResult pairs a product with its validated suggestions.
type SuggestResult struct {
	ProductID   uuid.UUID             `json:"productId"`
	Suggestions []types.TagSuggestion `json:"suggestions"`
}

// AutoTagInput scopes an auto-tag run. Empty ProductIDs means every unmapped
// product, up to Limit.
type AutoTagInput struct {
	ProductIDs []uuid.UUID `json:"productIds"`
	Limit      int         `json:"limit"`
}

// AutoTagItem reports the outcome for one product in an auto-tag run.
type AutoTagItem struct {
	ProductID   uuid.UUID             `json:"productId"`
	Suggestions []types.TagSuggestion `json:"suggestions"`
	Linked      int                   `json:"linked"`
}

// AutoTagResult summarizes an auto-tag run.
type AutoTagResult struct {
	Tagged  int           `json:"tagged"`
	Total   int           `json:"total"`
	Results []AutoTagItem `json:"results"`
}
