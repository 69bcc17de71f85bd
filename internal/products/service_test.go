package products

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/phantomos-app/phantomos-backend/internal/tenant"
	"github.com/phantomos-app/phantomos-backend/pkg/db/models"
	"github.com/phantomos-app/phantomos-backend/pkg/enums"
	pkgerrors "github.com/phantomos-app/phantomos-backend/pkg/errors"
	"github.com/phantomos-app/phantomos-backend/pkg/pagination"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type stubRepository struct {
	createFn       func(ctx context.Context, product *models.Product) error
	findByID       func(ctx context.Context, publisherID, id uuid.UUID) (*models.Product, error)
	findWithLinks  func(ctx context.Context, publisherID, id uuid.UUID) (*models.Product, error)
	updateFn       func(ctx context.Context, product *models.Product) error
	deleteFn       func(ctx context.Context, id uuid.UUID) error
	listFn         func(ctx context.Context, publisherID uuid.UUID, input ListProductsInput) ([]models.Product, error)
	countFn        func(ctx context.Context, publisherID uuid.UUID) (map[enums.MappingStatus]int64, error)
	upsertExternal func(ctx context.Context, product *models.Product) error
}

func (s *stubRepository) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubRepository) Create(ctx context.Context, product *models.Product) error {
	return s.createFn(ctx, product)
}

func (s *stubRepository) FindByID(ctx context.Context, publisherID, id uuid.UUID) (*models.Product, error) {
	return s.findByID(ctx, publisherID, id)
}

func (s *stubRepository) FindByIDWithLinks(ctx context.Context, publisherID, id uuid.UUID) (*models.Product, error) {
	return s.findWithLinks(ctx, publisherID, id)
}

func (s *stubRepository) Update(ctx context.Context, product *models.Product) error {
	return s.updateFn(ctx, product)
}

func (s *stubRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return s.deleteFn(ctx, id)
}

func (s *stubRepository) List(ctx context.Context, publisherID uuid.UUID, input ListProductsInput) ([]models.Product, error) {
	return s.listFn(ctx, publisherID, input)
}

func (s *stubRepository) CountByStatus(ctx context.Context, publisherID uuid.UUID) (map[enums.MappingStatus]int64, error) {
	return s.countFn(ctx, publisherID)
}

func (s *stubRepository) UpsertExternal(ctx context.Context, product *models.Product) error {
	return s.upsertExternal(ctx, product)
}

func TestCreateProductDefaultsAndValidation(t *testing.T) {
	publisherID := uuid.New()
	identity := tenant.User(uuid.New(), publisherID, enums.MemberRoleAdmin)

	var created *models.Product
	repo := &stubRepository{
		createFn: func(ctx context.Context, product *models.Product) error {
			product.ID = uuid.New()
			created = product
			return nil
		},
	}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	dto, err := svc.CreateProduct(context.Background(), identity, CreateProductInput{
		Name:  "Captain Vale Tee",
		Price: decimal.RequireFromString("24.99"),
		Tags:  []string{"apparel", " apparel ", "tee", ""},
	})
	if err != nil {
		t.Fatalf("CreateProduct error: %v", err)
	}

	if created.PublisherID != publisherID {
		t.Fatalf("publisher mismatch: %s", created.PublisherID)
	}
	if created.Category != enums.ProductCategoryOther {
		t.Fatalf("expected default category, got %s", created.Category)
	}
	if created.MappingStatus != enums.MappingStatusUnmapped {
		t.Fatalf("expected unmapped, got %s", created.MappingStatus)
	}
	if len(dto.Tags) != 2 {
		t.Fatalf("expected deduped tags, got %v", dto.Tags)
	}

	if _, err := svc.CreateProduct(context.Background(), identity, CreateProductInput{Name: "  "}); err == nil {
		t.Fatal("expected validation error for empty name")
	}
	if _, err := svc.CreateProduct(context.Background(), identity, CreateProductInput{
		Name:  "x",
		Price: decimal.RequireFromString("-1"),
	}); err == nil {
		t.Fatal("expected validation error for negative price")
	}
}

func TestGetProductCrossTenantIsNotFound(t *testing.T) {
	repo := &stubRepository{
		findWithLinks: func(ctx context.Context, publisherID, id uuid.UUID) (*models.Product, error) {
			return nil, gorm.ErrRecordNotFound
		},
	}
	svc, _ := NewService(repo)

	_, err := svc.GetProduct(context.Background(), tenant.User(uuid.New(), uuid.New(), enums.MemberRoleViewer), uuid.New())
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestUpdateProductPartialPatch(t *testing.T) {
	publisherID := uuid.New()
	existing := &models.Product{
		ID:            uuid.New(),
		PublisherID:   publisherID,
		Name:          "Old Name",
		Category:      enums.ProductCategoryApparel,
		Price:         decimal.RequireFromString("10.00"),
		MappingStatus: enums.MappingStatusConfirmed,
	}

	repo := &stubRepository{
		findByID: func(ctx context.Context, _, _ uuid.UUID) (*models.Product, error) {
			clone := *existing
			return &clone, nil
		},
		updateFn: func(ctx context.Context, product *models.Product) error {
			existing = product
			return nil
		},
	}
	svc, _ := NewService(repo)

	newName := "New Name"
	dto, err := svc.UpdateProduct(context.Background(), tenant.User(uuid.New(), publisherID, enums.MemberRoleAdmin), existing.ID, UpdateProductInput{Name: &newName})
	if err != nil {
		t.Fatalf("UpdateProduct error: %v", err)
	}
	if dto.Name != "New Name" {
		t.Fatalf("name not updated: %q", dto.Name)
	}
	if dto.Category != enums.ProductCategoryApparel {
		t.Fatal("untouched field changed")
	}
	if dto.MappingStatus != enums.MappingStatusConfirmed {
		t.Fatal("mapping status must not change on catalog edits")
	}
}

func TestListProductsPaginates(t *testing.T) {
	publisherID := uuid.New()
	rows := make([]models.Product, 0, pagination.DefaultLimit+1)
	for i := 0; i < pagination.DefaultLimit+1; i++ {
		rows = append(rows, models.Product{ID: uuid.New(), PublisherID: publisherID, Name: "p"})
	}

	repo := &stubRepository{
		listFn: func(ctx context.Context, gotPublisher uuid.UUID, input ListProductsInput) ([]models.Product, error) {
			if gotPublisher != publisherID {
				t.Fatalf("publisher mismatch: %s", gotPublisher)
			}
			return rows, nil
		},
	}
	svc, _ := NewService(repo)

	result, err := svc.ListProducts(context.Background(), tenant.User(uuid.New(), publisherID, enums.MemberRoleViewer), ListProductsInput{})
	if err != nil {
		t.Fatalf("ListProducts error: %v", err)
	}
	if len(result.Products) != pagination.DefaultLimit {
		t.Fatalf("expected %d products, got %d", pagination.DefaultLimit, len(result.Products))
	}
	if result.NextCursor == "" {
		t.Fatal("expected next cursor")
	}
}

func TestListProductsRejectsBadFilters(t *testing.T) {
	svc, _ := NewService(&stubRepository{})
	identity := tenant.User(uuid.New(), uuid.New(), enums.MemberRoleViewer)

	bad := enums.MappingStatus("bogus")
	_, err := svc.ListProducts(context.Background(), identity, ListProductsInput{MappingStatus: &bad})
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestIngestExternalRoutesUpsertsAndInserts(t *testing.T) {
	publisherID := uuid.New()
	connectorID := uuid.New()
	externalID := "shopify-42"

	var upserted, inserted int
	repo := &stubRepository{
		upsertExternal: func(ctx context.Context, product *models.Product) error {
			upserted++
			if product.MappingStatus != enums.MappingStatusUnmapped {
				t.Fatalf("new rows must start unmapped, got %s", product.MappingStatus)
			}
			return nil
		},
		createFn: func(ctx context.Context, product *models.Product) error {
			inserted++
			return nil
		},
	}
	svc, _ := NewService(repo)

	rows := []ExternalProduct{
		{ConnectorID: &connectorID, ExternalID: &externalID, Name: "Synced Tee", Category: enums.ProductCategoryApparel},
		{Name: "CSV Mug", Category: "unknown-category", Price: decimal.RequireFromString("-5")},
		{Name: "   "}, // skipped
	}
	count, err := svc.IngestExternal(context.Background(), publisherID, rows)
	if err != nil {
		t.Fatalf("IngestExternal error: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 ingested, got %d", count)
	}
	if upserted != 1 || inserted != 1 {
		t.Fatalf("expected 1 upsert + 1 insert, got %d/%d", upserted, inserted)
	}
}
