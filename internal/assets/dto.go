package assets

import (
	"time"

	"github.com/google/uuid"
	"github.com/phantomos-app/phantomos-backend/pkg/db/models"
	"github.com/phantomos-app/phantomos-backend/pkg/enums"
)

// GameIPDTO is the wire shape for a game IP and its assets.
type GameIPDTO struct {
	ID         uuid.UUID  `json:"id"`
	Name       string     `json:"name"`
	Slug       string     `json:"slug"`
	AssetCount int        `json:"assetCount"`
	Assets     []AssetDTO `json:"assets"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// AssetDTO is the wire shape for an IP asset.
type AssetDTO struct {
	ID          uuid.UUID       `json:"id"`
	GameIPID    uuid.UUID       `json:"gameIpId"`
	GameIPName  string          `json:"gameIpName,omitempty"`
	Name        string          `json:"name"`
	AssetType   enums.AssetType `json:"assetType"`
	Description *string         `json:"description,omitempty"`
	ImageURL    *string         `json:"imageUrl,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// CreateAssetInput holds the validated payload to create an asset. Exactly one
// of GameIPID or GameIPName must be set; a name creates the IP on demand.
type CreateAssetInput struct {
	GameIPID    *uuid.UUID
	GameIPName  *string
	Name        string
	AssetType   enums.AssetType
	Description *string
	ImageURL    *string
}

// UpdateAssetInput holds optional mutation values for an asset.
type UpdateAssetInput struct {
	Name        *string
	AssetType   *enums.AssetType
	Description *string
	ImageURL    *string
}

// ListAssetsInput narrows and pages the asset listing.
type ListAssetsInput struct {
	GameIPID  *uuid.UUID
	AssetType *enums.AssetType
	Search    string
	Limit     int
	Cursor    string
}

// AssetListResult is one page of assets.
type AssetListResult struct {
	Assets     []AssetDTO
	NextCursor string
}

func toGameIPDTO(ip models.GameIP) GameIPDTO {
	dtos := make([]AssetDTO, 0, len(ip.Assets))
	for _, asset := range ip.Assets {
		dtos = append(dtos, toAssetDTO(asset, ip.Name))
	}
	return GameIPDTO{
		ID:         ip.ID,
		Name:       ip.Name,
		Slug:       ip.Slug,
		AssetCount: len(ip.Assets),
		Assets:     dtos,
		CreatedAt:  ip.CreatedAt,
	}
}

func toAssetDTO(asset models.IPAsset, gameIPName string) AssetDTO {
	return AssetDTO{
		ID:          asset.ID,
		GameIPID:    asset.GameIPID,
		GameIPName:  gameIPName,
		Name:        asset.Name,
		AssetType:   asset.AssetType,
		Description: asset.Description,
		ImageURL:    asset.ImageURL,
		CreatedAt:   asset.CreatedAt,
		UpdatedAt:   asset.UpdatedAt,
	}
}
