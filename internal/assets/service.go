// Package assets manages the game IP catalog: the IPs a publisher owns and
// the nameable assets inside them that products get mapped to.
package assets

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/phantomos-app/phantomos-backend/internal/audit"
	"github.com/phantomos-app/phantomos-backend/internal/tenant"
	"github.com/phantomos-app/phantomos-backend/pkg/db"
	"github.com/phantomos-app/phantomos-backend/pkg/db/models"
	"github.com/phantomos-app/phantomos-backend/pkg/enums"
	pkgerrors "github.com/phantomos-app/phantomos-backend/pkg/errors"
	"github.com/phantomos-app/phantomos-backend/pkg/pagination"
	"github.com/phantomos-app/phantomos-backend/pkg/types"
	"gorm.io/gorm"
)

// Service exposes catalog management operations.
type Service interface {
	ListGameIPs(ctx context.Context, identity tenant.Identity) ([]GameIPDTO, error)
	CreateAsset(ctx context.Context, identity tenant.Identity, input CreateAssetInput) (*AssetDTO, error)
	GetAsset(ctx context.Context, identity tenant.Identity, assetID uuid.UUID) (*AssetDTO, error)
	UpdateAsset(ctx context.Context, identity tenant.Identity, assetID uuid.UUID, input UpdateAssetInput) (*AssetDTO, error)
	DeleteAsset(ctx context.Context, identity tenant.Identity, assetID uuid.UUID) error
	ListAssets(ctx context.Context, identity tenant.Identity, input ListAssetsInput) (*AssetListResult, error)
}

type service struct {
	repo     Repository
	dbClient *db.Client
	auditor  audit.Service
}

// NewService constructs an asset catalog service.
func NewService(repo Repository, dbClient *db.Client, auditor audit.Service) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("asset repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if auditor == nil {
		return nil, fmt.Errorf("audit service required")
	}
	return &service{repo: repo, dbClient: dbClient, auditor: auditor}, nil
}

func (s *service) ListGameIPs(ctx context.Context, identity tenant.Identity) ([]GameIPDTO, error) {
	ips, err := s.repo.ListGameIPs(ctx, identity.PublisherID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list game ips")
	}
	out := make([]GameIPDTO, 0, len(ips))
	for _, ip := range ips {
		out = append(out, toGameIPDTO(ip))
	}
	return out, nil
}

func (s *service) CreateAsset(ctx context.Context, identity tenant.Identity, input CreateAssetInput) (*AssetDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "asset name is required")
	}
	if !input.AssetType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid asset type %q", input.AssetType))
	}
	if (input.GameIPID == nil) == (input.GameIPName == nil) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "exactly one of gameIpId or gameIpName is required")
	}

	var created *models.IPAsset
	var gameIPName string
	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		ip, err := s.resolveGameIP(ctx, repo, identity.PublisherID, input)
		if err != nil {
			return err
		}
		gameIPName = ip.Name

		asset := &models.IPAsset{
			GameIPID:    ip.ID,
			Name:        name,
			AssetType:   input.AssetType,
			Description: input.Description,
			ImageURL:    input.ImageURL,
		}
		if err := repo.CreateAsset(ctx, asset); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create asset")
		}
		created = asset
		return nil
	})
	if err != nil {
		return nil, err
	}

	_ = s.auditor.Record(ctx, identity, audit.RecordInput{
		Action:       enums.AuditActionAssetCreate,
		ResourceType: "ip_asset",
		ResourceID:   &created.ID,
		ResourceName: &created.Name,
	})

	dto := toAssetDTO(*created, gameIPName)
	return &dto, nil
}

func (s *service) resolveGameIP(ctx context.Context, repo Repository, publisherID uuid.UUID, input CreateAssetInput) (*models.GameIP, error) {
	if input.GameIPID != nil {
		ip, err := repo.FindGameIPByID(ctx, publisherID, *input.GameIPID)
		if err != nil {
			if db.IsNotFound(err) {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "game ip not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load game ip")
		}
		return ip, nil
	}

	ipName := strings.TrimSpace(*input.GameIPName)
	if ipName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "game ip name cannot be empty")
	}

	slug := Slugify(ipName)
	if existing, err := repo.FindGameIPBySlug(ctx, publisherID, slug); err == nil {
		return existing, nil
	} else if !db.IsNotFound(err) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load game ip by slug")
	}

	ip := &models.GameIP{PublisherID: publisherID, Name: ipName, Slug: slug}
	if err := repo.CreateGameIP(ctx, ip); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create game ip")
	}
	return ip, nil
}

func (s *service) GetAsset(ctx context.Context, identity tenant.Identity, assetID uuid.UUID) (*AssetDTO, error) {
	asset, err := s.loadOwnedAsset(ctx, identity.PublisherID, assetID)
	if err != nil {
		return nil, err
	}
	names, err := s.repo.GameIPNamesByIDs(ctx, []uuid.UUID{asset.GameIPID})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load game ip name")
	}
	dto := toAssetDTO(*asset, names[asset.GameIPID])
	return &dto, nil
}

func (s *service) UpdateAsset(ctx context.Context, identity tenant.Identity, assetID uuid.UUID, input UpdateAssetInput) (*AssetDTO, error) {
	asset, err := s.loadOwnedAsset(ctx, identity.PublisherID, assetID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		trimmed := strings.TrimSpace(*input.Name)
		if trimmed == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "asset name cannot be empty")
		}
		asset.Name = trimmed
	}
	if input.AssetType != nil {
		if !input.AssetType.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid asset type %q", *input.AssetType))
		}
		asset.AssetType = *input.AssetType
	}
	if input.Description != nil {
		asset.Description = input.Description
	}
	if input.ImageURL != nil {
		asset.ImageURL = input.ImageURL
	}

	if err := s.repo.UpdateAsset(ctx, asset); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update asset")
	}

	_ = s.auditor.Record(ctx, identity, audit.RecordInput{
		Action:       enums.AuditActionAssetUpdate,
		ResourceType: "ip_asset",
		ResourceID:   &asset.ID,
		ResourceName: &asset.Name,
	})

	names, err := s.repo.GameIPNamesByIDs(ctx, []uuid.UUID{asset.GameIPID})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load game ip name")
	}
	dto := toAssetDTO(*asset, names[asset.GameIPID])
	return &dto, nil
}

// DeleteAsset removes the asset and its product links. Confirmed products
// that lose their last link fall back to unmapped.
func (s *service) DeleteAsset(ctx context.Context, identity tenant.Identity, assetID uuid.UUID) error {
	asset, err := s.loadOwnedAsset(ctx, identity.PublisherID, assetID)
	if err != nil {
		return err
	}

	err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		linked, err := repo.ProductIDsLinkedToAsset(ctx, assetID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list linked products")
		}
		if err := repo.DeleteAsset(ctx, assetID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete asset")
		}
		if err := repo.ResetUnlinkedProducts(ctx, linked); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reset unlinked products")
		}
		return nil
	})
	if err != nil {
		return err
	}

	_ = s.auditor.Record(ctx, identity, audit.RecordInput{
		Action:       enums.AuditActionAssetDelete,
		ResourceType: "ip_asset",
		ResourceID:   &assetID,
		ResourceName: &asset.Name,
		Metadata:     types.JSONMap{"gameIpId": asset.GameIPID.String()},
	})
	return nil
}

func (s *service) ListAssets(ctx context.Context, identity tenant.Identity, input ListAssetsInput) (*AssetListResult, error) {
	if input.AssetType != nil && !input.AssetType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid asset type %q", *input.AssetType))
	}

	list, err := s.repo.ListAssets(ctx, identity.PublisherID, input)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list assets")
	}

	limit := pagination.NormalizeLimit(input.Limit)
	nextCursor := ""
	if len(list) > limit {
		list = list[:limit]
		last := list[len(list)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}

	ipIDs := make([]uuid.UUID, 0, len(list))
	seen := map[uuid.UUID]bool{}
	for _, asset := range list {
		if !seen[asset.GameIPID] {
			seen[asset.GameIPID] = true
			ipIDs = append(ipIDs, asset.GameIPID)
		}
	}
	names, err := s.repo.GameIPNamesByIDs(ctx, ipIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load game ip names")
	}

	out := make([]AssetDTO, 0, len(list))
	for _, asset := range list {
		out = append(out, toAssetDTO(asset, names[asset.GameIPID]))
	}
	return &AssetListResult{Assets: out, NextCursor: nextCursor}, nil
}

func (s *service) loadOwnedAsset(ctx context.Context, publisherID, assetID uuid.UUID) (*models.IPAsset, error) {
	asset, err := s.repo.FindAssetByID(ctx, publisherID, assetID)
	if err != nil {
		// Cross-tenant reads surface as not-found, never forbidden.
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "asset not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load asset")
	}
	return asset, nil
}

var slugStripRe = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases the name and collapses runs of non-alphanumerics to hyphens.
func Slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = slugStripRe.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}
