// Package products manages the merchandise catalog a publisher maps onto
// its game IP.
package products

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/phantomos-app/phantomos-backend/internal/tenant"
	"github.com/phantomos-app/phantomos-backend/pkg/db"
	"github.com/phantomos-app/phantomos-backend/pkg/db/models"
	"github.com/phantomos-app/phantomos-backend/pkg/enums"
	pkgerrors "github.com/phantomos-app/phantomos-backend/pkg/errors"
	"github.com/phantomos-app/phantomos-backend/pkg/pagination"
	"github.com/shopspring/decimal"
)

// Service exposes catalog product operations.
type Service interface {
	CreateProduct(ctx context.Context, identity tenant.Identity, input CreateProductInput) (*ProductDTO, error)
	GetProduct(ctx context.Context, identity tenant.Identity, productID uuid.UUID) (*ProductDTO, error)
	UpdateProduct(ctx context.Context, identity tenant.Identity, productID uuid.UUID, input UpdateProductInput) (*ProductDTO, error)
	DeleteProduct(ctx context.Context, identity tenant.Identity, productID uuid.UUID) error
	ListProducts(ctx context.Context, identity tenant.Identity, input ListProductsInput) (*ProductListResult, error)
	CountByStatus(ctx context.Context, identity tenant.Identity) (map[enums.MappingStatus]int64, error)

	// IngestExternal is the shared sink for connector syncs and CSV imports.
	IngestExternal(ctx context.Context, publisherID uuid.UUID, rows []ExternalProduct) (int, error)
}

type service struct {
	repo Repository
}

// NewService constructs a product catalog service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) CreateProduct(ctx context.Context, identity tenant.Identity, input CreateProductInput) (*ProductDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name is required")
	}
	category := input.Category
	if category == "" {
		category = enums.ProductCategoryOther
	}
	if !category.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid category %q", category))
	}
	if input.Price.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
	}

	product := &models.Product{
		PublisherID:   identity.PublisherID,
		Name:          name,
		Description:   input.Description,
		Category:      category,
		Price:         input.Price,
		SKU:           input.SKU,
		Vendor:        input.Vendor,
		Tags:          normalizeTags(input.Tags),
		MappingStatus: enums.MappingStatusUnmapped,
	}
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create product")
	}
	dto := toProductDTO(*product)
	return &dto, nil
}

func (s *service) GetProduct(ctx context.Context, identity tenant.Identity, productID uuid.UUID) (*ProductDTO, error) {
	product, err := s.repo.FindByIDWithLinks(ctx, identity.PublisherID, productID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}
	dto := toProductDTO(*product)
	return &dto, nil
}

func (s *service) UpdateProduct(ctx context.Context, identity tenant.Identity, productID uuid.UUID, input UpdateProductInput) (*ProductDTO, error) {
	product, err := s.repo.FindByID(ctx, identity.PublisherID, productID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}

	if input.Name != nil {
		trimmed := strings.TrimSpace(*input.Name)
		if trimmed == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name cannot be empty")
		}
		product.Name = trimmed
	}
	if input.Category != nil {
		if !input.Category.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid category %q", *input.Category))
		}
		product.Category = *input.Category
	}
	if input.Price != nil {
		if input.Price.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
		}
		product.Price = *input.Price
	}
	if input.Description != nil {
		product.Description = input.Description
	}
	if input.SKU != nil {
		product.SKU = input.SKU
	}
	if input.Vendor != nil {
		product.Vendor = input.Vendor
	}
	if input.Tags != nil {
		product.Tags = normalizeTags(*input.Tags)
	}

	if err := s.repo.Update(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update product")
	}
	dto := toProductDTO(*product)
	return &dto, nil
}

func (s *service) DeleteProduct(ctx context.Context, identity tenant.Identity, productID uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, identity.PublisherID, productID); err != nil {
		if db.IsNotFound(err) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}
	if err := s.repo.Delete(ctx, productID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete product")
	}
	return nil
}

func (s *service) ListProducts(ctx context.Context, identity tenant.Identity, input ListProductsInput) (*ProductListResult, error) {
	if input.MappingStatus != nil && !input.MappingStatus.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid mapping status %q", *input.MappingStatus))
	}
	if input.Category != nil && !input.Category.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid category %q", *input.Category))
	}

	list, err := s.repo.List(ctx, identity.PublisherID, input)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list products")
	}

	limit := pagination.NormalizeLimit(input.Limit)
	nextCursor := ""
	if len(list) > limit {
		list = list[:limit]
		last := list[len(list)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}

	out := make([]ProductDTO, 0, len(list))
	for _, product := range list {
		out = append(out, toProductDTO(product))
	}
	return &ProductListResult{Products: out, NextCursor: nextCursor}, nil
}

func (s *service) CountByStatus(ctx context.Context, identity tenant.Identity) (map[enums.MappingStatus]int64, error) {
	counts, err := s.repo.CountByStatus(ctx, identity.PublisherID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count products")
	}
	return counts, nil
}

func (s *service) IngestExternal(ctx context.Context, publisherID uuid.UUID, rows []ExternalProduct) (int, error) {
	if publisherID == uuid.Nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "publisher id is required")
	}

	ingested := 0
	for _, row := range rows {
		name := strings.TrimSpace(row.Name)
		if name == "" {
			continue
		}
		category := row.Category
		if !category.IsValid() {
			category = enums.ProductCategoryOther
		}
		price := row.Price
		if price.IsNegative() {
			price = decimal.Zero
		}

		product := &models.Product{
			PublisherID:   publisherID,
			ConnectorID:   row.ConnectorID,
			ExternalID:    row.ExternalID,
			Name:          name,
			Description:   row.Description,
			Category:      category,
			Price:         price,
			SKU:           row.SKU,
			Vendor:        row.Vendor,
			Tags:          normalizeTags(row.Tags),
			MappingStatus: enums.MappingStatusUnmapped,
		}

		var err error
		if row.ConnectorID != nil && row.ExternalID != nil {
			err = s.repo.UpsertExternal(ctx, product)
		} else {
			err = s.repo.Create(ctx, product)
		}
		if err != nil {
			return ingested, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "ingest product")
		}
		ingested++
	}
	return ingested, nil
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := map[string]bool{}
	for _, tag := range tags {
		trimmed := strings.TrimSpace(tag)
		if trimmed == "" || seen[strings.ToLower(trimmed)] {
			continue
		}
		seen[strings.ToLower(trimmed)] = true
		out = append(out, trimmed)
	}
	return out
}
