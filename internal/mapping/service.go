// Package mapping implements the product-to-asset mapping state machine.
package mapping

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/phantomos-app/phantomos-backend/internal/audit"
	"github.com/phantomos-app/phantomos-backend/internal/tenant"
	"github.com/phantomos-app/phantomos-backend/pkg/db"
	"github.com/phantomos-app/phantomos-backend/pkg/db/models"
	"github.com/phantomos-app/phantomos-backend/pkg/enums"
	pkgerrors "github.com/phantomos-app/phantomos-backend/pkg/errors"
	"github.com/phantomos-app/phantomos-backend/pkg/types"
	"gorm.io/gorm"
)

// assetChecker narrows a candidate id set to assets the publisher owns.
type assetChecker interface {
	AssetIDsForPublisher(ctx context.Context, publisherID uuid.UUID, ids []uuid.UUID) ([]uuid.UUID, error)
}

// Service exposes the mapping state transitions.
type Service interface {
	Confirm(ctx context.Context, identity tenant.Identity, input ConfirmInput) (*ConfirmResult, error)
	Skip(ctx context.Context, identity tenant.Identity, productID uuid.UUID) (*SkipResult, error)
	Unlink(ctx context.Context, identity tenant.Identity, productID, assetID uuid.UUID) error
	AddLinks(ctx context.Context, identity tenant.Identity, productID uuid.UUID, assetIDs []uuid.UUID) (int, error)
	BulkConfirm(ctx context.Context, identity tenant.Identity, items []ConfirmInput) (*BulkResult, error)
	BulkSkip(ctx context.Context, identity tenant.Identity, productIDs []uuid.UUID) (int64, error)
}

type service struct {
	repo     Repository
	assets   assetChecker
	dbClient *db.Client
	auditor  audit.Service
}

// NewService constructs the mapping service.
func NewService(repo Repository, assets assetChecker, dbClient *db.Client, auditor audit.Service) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("mapping repository required")
	}
	if assets == nil {
		return nil, fmt.Errorf("asset checker required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if auditor == nil {
		return nil, fmt.Errorf("audit service required")
	}
	return &service{repo: repo, assets: assets, dbClient: dbClient, auditor: auditor}, nil
}

// Confirm replaces the product's link set with the given assets and marks it
// confirmed. A confirmed product always has at least one link, so an empty
// asset list is rejected instead of producing a link-less confirm.
func (s *service) Confirm(ctx context.Context, identity tenant.Identity, input ConfirmInput) (*ConfirmResult, error) {
	assetIDs := dedupe(input.AssetIDs)
	if len(assetIDs) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one asset id is required")
	}
	if err := s.requireOwnedAssets(ctx, identity.PublisherID, assetIDs); err != nil {
		return nil, err
	}

	var mappedAt time.Time
	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		product, err := repo.FindProductForUpdate(ctx, identity.PublisherID, input.ProductID)
		if err != nil {
			if db.IsNotFound(err) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
		}

		links := make([]models.ProductAsset, 0, len(assetIDs))
		for i, assetID := range assetIDs {
			links = append(links, models.ProductAsset{
				ProductID: product.ID,
				IPAssetID: assetID,
				IsPrimary: i == 0,
			})
		}
		if err := repo.ReplaceLinks(ctx, product.ID, links); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "replace links")
		}

		now := time.Now().UTC()
		product.MappingStatus = enums.MappingStatusConfirmed
		product.MappedBy = identity.ActorID()
		product.MappedAt = &now
		if err := repo.SaveProduct(ctx, product); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save product")
		}
		mappedAt = now
		return nil
	})
	if err != nil {
		return nil, err
	}

	_ = s.auditor.Record(ctx, identity, audit.RecordInput{
		Action:       enums.AuditActionMappingConfirm,
		ResourceType: "product",
		ResourceID:   &input.ProductID,
		Metadata:     types.JSONMap{"assetIds": uuidStrings(assetIDs)},
	})
	return &ConfirmResult{ProductID: input.ProductID, AssetIDs: assetIDs, MappedAt: mappedAt}, nil
}

// Skip marks the product skipped. Links are left untouched; skipping is a
// triage decision, not an unmapping. Re-skipping is a no-op transition.
func (s *service) Skip(ctx context.Context, identity tenant.Identity, productID uuid.UUID) (*SkipResult, error) {
	var skippedAt time.Time
	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		product, err := repo.FindProductForUpdate(ctx, identity.PublisherID, productID)
		if err != nil {
			if db.IsNotFound(err) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
		}

		now := time.Now().UTC()
		product.MappingStatus = enums.MappingStatusSkipped
		product.MappedBy = identity.ActorID()
		product.MappedAt = &now
		if err := repo.SaveProduct(ctx, product); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save product")
		}
		skippedAt = now
		return nil
	})
	if err != nil {
		return nil, err
	}

	_ = s.auditor.Record(ctx, identity, audit.RecordInput{
		Action:       enums.AuditActionMappingSkip,
		ResourceType: "product",
		ResourceID:   &productID,
	})
	return &SkipResult{ProductID: productID, SkippedAt: skippedAt}, nil
}

// Unlink removes one link. Losing the last link drops the product back to
// unmapped; losing the primary promotes the oldest remaining link.
func (s *service) Unlink(ctx context.Context, identity tenant.Identity, productID, assetID uuid.UUID) error {
	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		product, err := repo.FindProductForUpdate(ctx, identity.PublisherID, productID)
		if err != nil {
			if db.IsNotFound(err) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
		}

		removed, err := repo.DeleteLink(ctx, product.ID, assetID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete link")
		}
		if !removed {
			return pkgerrors.New(pkgerrors.CodeNotFound, "link not found")
		}

		remaining, err := repo.ListLinks(ctx, product.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list links")
		}

		if len(remaining) == 0 {
			product.MappingStatus = enums.MappingStatusUnmapped
			product.MappedBy = nil
			product.MappedAt = nil
			if err := repo.SaveProduct(ctx, product); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save product")
			}
			return nil
		}

		hasPrimary := false
		for _, link := range remaining {
			if link.IsPrimary {
				hasPrimary = true
				break
			}
		}
		if !hasPrimary {
			if err := repo.SetPrimaryLink(ctx, remaining[0].ID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "promote primary link")
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	_ = s.auditor.Record(ctx, identity, audit.RecordInput{
		Action:       enums.AuditActionMappingUnlink,
		ResourceType: "product",
		ResourceID:   &productID,
		Metadata:     types.JSONMap{"assetId": assetID.String()},
	})
	return nil
}

// AddLinks appends links without replacing the existing set. The first link a
// product ever gets becomes its primary; an unmapped product becomes confirmed.
func (s *service) AddLinks(ctx context.Context, identity tenant.Identity, productID uuid.UUID, assetIDs []uuid.UUID) (int, error) {
	assetIDs = dedupe(assetIDs)
	if len(assetIDs) == 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "at least one asset id is required")
	}
	if err := s.requireOwnedAssets(ctx, identity.PublisherID, assetIDs); err != nil {
		return 0, err
	}

	added := 0
	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		product, err := repo.FindProductForUpdate(ctx, identity.PublisherID, productID)
		if err != nil {
			if db.IsNotFound(err) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
		}

		existing, err := repo.ListLinks(ctx, product.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list links")
		}
		linked := map[uuid.UUID]bool{}
		for _, link := range existing {
			linked[link.IPAssetID] = true
		}

		links := make([]models.ProductAsset, 0, len(assetIDs))
		for _, assetID := range assetIDs {
			if linked[assetID] {
				continue
			}
			links = append(links, models.ProductAsset{
				ProductID: product.ID,
				IPAssetID: assetID,
				IsPrimary: len(existing) == 0 && len(links) == 0,
			})
		}
		if err := repo.InsertLinks(ctx, links); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "insert links")
		}
		added = len(links)

		if product.MappingStatus == enums.MappingStatusUnmapped {
			now := time.Now().UTC()
			product.MappingStatus = enums.MappingStatusConfirmed
			product.MappedBy = identity.ActorID()
			product.MappedAt = &now
			if err := repo.SaveProduct(ctx, product); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save product")
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	_ = s.auditor.Record(ctx, identity, audit.RecordInput{
		Action:       enums.AuditActionMappingAddLinks,
		ResourceType: "product",
		ResourceID:   &productID,
		Metadata:     types.JSONMap{"assetIds": uuidStrings(assetIDs), "added": added},
	})
	return added, nil
}

// BulkConfirm applies confirms item by item. One bad item never aborts the
// rest; failures come back in the result.
func (s *service) BulkConfirm(ctx context.Context, identity tenant.Identity, items []ConfirmInput) (*BulkResult, error) {
	if len(items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one item is required")
	}

	result := &BulkResult{Errors: []BulkItemError{}}
	for _, item := range items {
		if _, err := s.Confirm(ctx, identity, item); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, BulkItemError{
				ProductID: item.ProductID,
				Error:     publicMessage(err),
			})
			continue
		}
		result.Successful++
	}

	_ = s.auditor.Record(ctx, identity, audit.RecordInput{
		Action:       enums.AuditActionMappingBulk,
		ResourceType: "product",
		Metadata: types.JSONMap{
			"successful": result.Successful,
			"failed":     result.Failed,
		},
		Status: bulkStatus(result),
	})
	return result, nil
}

func (s *service) BulkSkip(ctx context.Context, identity tenant.Identity, productIDs []uuid.UUID) (int64, error) {
	productIDs = dedupe(productIDs)
	if len(productIDs) == 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "at least one product id is required")
	}

	affected, err := s.repo.BulkSkip(ctx, identity.PublisherID, productIDs, identity.ActorID())
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "bulk skip")
	}

	_ = s.auditor.Record(ctx, identity, audit.RecordInput{
		Action:       enums.AuditActionMappingBulkSkip,
		ResourceType: "product",
		Metadata:     types.JSONMap{"requested": len(productIDs), "affected": affected},
	})
	return affected, nil
}

// requireOwnedAssets rejects any asset id outside the caller's catalog.
// Unknown and cross-tenant ids are indistinguishable on purpose.
func (s *service) requireOwnedAssets(ctx context.Context, publisherID uuid.UUID, assetIDs []uuid.UUID) error {
	owned, err := s.assets.AssetIDsForPublisher(ctx, publisherID, assetIDs)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify asset ownership")
	}
	if len(owned) == len(assetIDs) {
		return nil
	}

	ownedSet := map[uuid.UUID]bool{}
	for _, id := range owned {
		ownedSet[id] = true
	}
	unknown := []string{}
	for _, id := range assetIDs {
		if !ownedSet[id] {
			unknown = append(unknown, id.String())
		}
	}
	return pkgerrors.New(pkgerrors.CodeValidation, "unknown asset ids").WithDetails(map[string]any{"assetIds": unknown})
}

func bulkStatus(result *BulkResult) enums.AuditStatus {
	switch {
	case result.Failed == 0:
		return enums.AuditStatusSuccess
	case result.Successful == 0:
		return enums.AuditStatusFailure
	default:
		return enums.AuditStatusPartial
	}
}

func publicMessage(err error) string {
	if appErr := pkgerrors.As(err); appErr != nil {
		return appErr.Message()
	}
	return "internal error"
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(ids))
	seen := map[uuid.UUID]bool{}
	for _, id := range ids {
		if id == uuid.Nil || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.String())
	}
	return out
}
