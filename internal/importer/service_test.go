package importer

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/phantomos-app/phantomos-backend/internal/audit"
	"github.com/phantomos-app/phantomos-backend/internal/products"
	"github.com/phantomos-app/phantomos-backend/internal/tenant"
	"github.com/phantomos-app/phantomos-backend/pkg/db/models"
	"github.com/phantomos-app/phantomos-backend/pkg/enums"
	pkgerrors "github.com/phantomos-app/phantomos-backend/pkg/errors"
	"github.com/phantomos-app/phantomos-backend/pkg/pagination"
)

type stubIngestor struct {
	rows []products.ExternalProduct
}

func (s *stubIngestor) IngestExternal(ctx context.Context, publisherID uuid.UUID, rows []products.ExternalProduct) (int, error) {
	s.rows = rows
	return len(rows), nil
}

type stubAuditor struct {
	recorded []audit.RecordInput
}

func (s *stubAuditor) Record(ctx context.Context, identity tenant.Identity, input audit.RecordInput) error {
	s.recorded = append(s.recorded, input)
	return nil
}

func (s *stubAuditor) List(ctx context.Context, publisherID uuid.UUID, filter audit.ListFilter, params pagination.Params) ([]models.AuditLog, string, error) {
	return nil, "", nil
}

func TestImportCSVPerRowErrors(t *testing.T) {
	csvData := strings.Join([]string{
		"Name,Category,Price,SKU,Tags",
		"Kael Plush,toy,24.99,SKU-1,plush;kael",
		",toy,10.00,SKU-2,",
		"Guild Mug,home_goods,not-a-price,SKU-3,",
		"Banner Print,print,15.00,SKU-4,wall art",
	}, "\n")

	ing := &stubIngestor{}
	auditor := &stubAuditor{}
	svc, err := NewService(ing, auditor)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	identity := tenant.User(uuid.New(), uuid.New(), enums.MemberRoleAdmin)
	result, err := svc.ImportCSV(context.Background(), identity, strings.NewReader(csvData))
	if err != nil {
		t.Fatalf("ImportCSV error: %v", err)
	}

	if result.Imported != 2 || result.Failed != 2 {
		t.Fatalf("expected 2 imported / 2 failed, got %d/%d", result.Imported, result.Failed)
	}
	if len(result.Errors) != 2 {
		t.Fatalf("expected 2 row errors, got %+v", result.Errors)
	}
	if result.Errors[0].Row != 3 || result.Errors[1].Row != 4 {
		t.Fatalf("unexpected row numbers %+v", result.Errors)
	}

	if len(ing.rows) != 2 {
		t.Fatalf("expected 2 rows handed to ingestion, got %d", len(ing.rows))
	}
	first := ing.rows[0]
	if first.Name != "Kael Plush" || first.Category != enums.ProductCategoryToy {
		t.Fatalf("unexpected first row %+v", first)
	}
	if len(first.Tags) != 2 || first.Tags[0] != "plush" {
		t.Fatalf("tags not split: %+v", first.Tags)
	}
	if first.ConnectorID != nil {
		t.Fatal("csv imports must carry no connector attribution")
	}

	if len(auditor.recorded) != 1 {
		t.Fatal("expected one audit entry")
	}
	entry := auditor.recorded[0]
	if entry.Action != enums.AuditActionImportCSV || entry.Status != enums.AuditStatusPartial {
		t.Fatalf("unexpected audit entry %+v", entry)
	}
}

func TestImportCSVHeaderSynonyms(t *testing.T) {
	csvData := "Title,Product Type,Brand\nKael Tee,apparel,PhantomWear\n"

	ing := &stubIngestor{}
	svc, _ := NewService(ing, &stubAuditor{})

	result, err := svc.ImportCSV(context.Background(), tenant.User(uuid.New(), uuid.New(), enums.MemberRoleAdmin), strings.NewReader(csvData))
	if err != nil {
		t.Fatalf("ImportCSV error: %v", err)
	}
	if result.Imported != 1 || result.Failed != 0 {
		t.Fatalf("unexpected result %+v", result)
	}
	row := ing.rows[0]
	if row.Name != "Kael Tee" || row.Category != enums.ProductCategoryApparel || row.Vendor == nil || *row.Vendor != "PhantomWear" {
		t.Fatalf("unexpected row %+v", row)
	}
}

func TestImportCSVRejectsMissingNameColumn(t *testing.T) {
	svc, _ := NewService(&stubIngestor{}, &stubAuditor{})

	_, err := svc.ImportCSV(context.Background(), tenant.User(uuid.New(), uuid.New(), enums.MemberRoleAdmin), strings.NewReader("price,sku\n1.00,A\n"))
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestImportCSVEmptyFile(t *testing.T) {
	svc, _ := NewService(&stubIngestor{}, &stubAuditor{})

	_, err := svc.ImportCSV(context.Background(), tenant.User(uuid.New(), uuid.New(), enums.MemberRoleAdmin), strings.NewReader(""))
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}
