package products

import (
	"time"

	"github.com/google/uuid"
	"github.com/phantomos-app/phantomos-backend/pkg/db/models"
	"github.com/phantomos-app/phantomos-backend/pkg/enums"
	"github.com/phantomos-app/phantomos-backend/pkg/types"
	"github.com/shopspring/decimal"
)

// LinkDTO is one confirmed product-to-asset link.
type LinkDTO struct {
	AssetID   uuid.UUID       `json:"assetId"`
	AssetName string          `json:"assetName,omitempty"`
	AssetType enums.AssetType `json:"assetType,omitempty"`
	IsPrimary bool            `json:"isPrimary"`
}

// ProductDTO is the wire shape for a catalog product.
type ProductDTO struct {
	ID                uuid.UUID             `json:"id"`
	ConnectorID       *uuid.UUID            `json:"connectorId,omitempty"`
	ExternalID        *string               `json:"externalId,omitempty"`
	Name              string                `json:"name"`
	Description       *string               `json:"description,omitempty"`
	Category          enums.ProductCategory `json:"category"`
	Price             decimal.Decimal       `json:"price"`
	SKU               *string               `json:"sku,omitempty"`
	Vendor            *string               `json:"vendor,omitempty"`
	Tags              []string              `json:"tags"`
	MappingStatus     enums.MappingStatus   `json:"mappingStatus"`
	AISuggestedAssets types.SuggestionList  `json:"aiSuggestedAssets,omitempty"`
	MappedBy          *uuid.UUID            `json:"mappedBy,omitempty"`
	MappedAt          *time.Time            `json:"mappedAt,omitempty"`
	Links             []LinkDTO             `json:"links"`
	CreatedAt         time.Time             `json:"createdAt"`
	UpdatedAt         time.Time             `json:"updatedAt"`
}

// CreateProductInput holds the validated payload to create a product by hand.
type CreateProductInput struct {
	Name        string
	Description *string
	Category    enums.ProductCategory
	Price       decimal.Decimal
	SKU         *string
	Vendor      *string
	Tags        []string
}

// UpdateProductInput holds optional mutation values for a product.
type UpdateProductInput struct {
	Name        *string
	Description *string
	Category    *enums.ProductCategory
	Price       *decimal.Decimal
	SKU         *string
	Vendor      *string
	Tags        *[]string
}

// ListProductsInput narrows and pages the product listing.
type ListProductsInput struct {
	MappingStatus *enums.MappingStatus
	Category      *enums.ProductCategory
	ConnectorID   *uuid.UUID
	Search        string
	Limit         int
	Cursor        string
}

// ProductListResult is one page of products.
type ProductListResult struct {
	Products   []ProductDTO
	NextCursor string
}

// ExternalProduct is a normalized product row arriving from a connector or
// CSV import. Rows carrying an external id upsert on (connector, external id).
type ExternalProduct struct {
	ConnectorID *uuid.UUID
	ExternalID  *string
	Name        string
	Description *string
	Category    enums.ProductCategory
	Price       decimal.Decimal
	SKU         *string
	Vendor      *string
	Tags        []string
}

func toProductDTO(p models.Product) ProductDTO {
	links := make([]LinkDTO, 0, len(p.Links))
	for _, link := range p.Links {
		dto := LinkDTO{AssetID: link.IPAssetID, IsPrimary: link.IsPrimary}
		if link.Asset != nil {
			dto.AssetName = link.Asset.Name
			dto.AssetType = link.Asset.AssetType
		}
		links = append(links, dto)
	}
	return ProductDTO{
		ID:                p.ID,
		ConnectorID:       p.ConnectorID,
		ExternalID:        p.ExternalID,
		Name:              p.Name,
		Description:       p.Description,
		Category:          p.Category,
		Price:             p.Price,
		SKU:               p.SKU,
		Vendor:            p.Vendor,
		Tags:              p.Tags,
		MappingStatus:     p.MappingStatus,
		AISuggestedAssets: p.AISuggestedAssets,
		MappedBy:          p.MappedBy,
		MappedAt:          p.MappedAt,
		Links:             links,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
}
