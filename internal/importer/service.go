// Package importer ingests merchant CSV catalogs into the product store.
package importer

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/phantomos-app/phantomos-backend/internal/audit"
	"github.com/phantomos-app/phantomos-backend/internal/products"
	"github.com/phantomos-app/phantomos-backend/internal/tenant"
	"github.com/phantomos-app/phantomos-backend/pkg/enums"
	pkgerrors "github.com/phantomos-app/phantomos-backend/pkg/errors"
	"github.com/phantomos-app/phantomos-backend/pkg/types"
	"github.com/shopspring/decimal"
)

// maxRows bounds one upload; bigger catalogs go through a connector.
const maxRows = 5000

// RowError reports one rejected CSV line. Row numbers are 1-based and count
// the header.
type RowError struct {
	Row   int    `json:"row"`
	Error string `json:"error"`
}

// Result summarizes an import run.
type Result struct {
	Imported int        `json:"imported"`
	Failed   int        `json:"failed"`
	Errors   []RowError `json:"errors"`
}

// ingestor is the slice of the product service imports go through.
type ingestor interface {
	IngestExternal(ctx context.Context, publisherID uuid.UUID, rows []products.ExternalProduct) (int, error)
}

// Service imports CSV catalogs.
type Service interface {
	ImportCSV(ctx context.Context, identity tenant.Identity, r io.Reader) (*Result, error)
}

type service struct {
	products ingestor
	auditor  audit.Service
}

// NewService constructs the import service.
func NewService(productIngestor ingestor, auditor audit.Service) (Service, error) {
	if productIngestor == nil {
		return nil, fmt.Errorf("product ingestor required")
	}
	if auditor == nil {
		return nil, fmt.Errorf("audit service required")
	}
	return &service{products: productIngestor, auditor: auditor}, nil
}

// ImportCSV parses the upload row by row. Bad rows are reported individually
// and never abort the file; imported products carry no connector attribution.
func (s *service) ImportCSV(ctx context.Context, identity tenant.Identity, r io.Reader) (*Result, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "csv file is empty or unreadable")
	}
	columns, err := mapColumns(header)
	if err != nil {
		return nil, err
	}

	result := &Result{Errors: []RowError{}}
	rows := []products.ExternalProduct{}
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, RowError{Row: line, Error: "malformed csv row"})
			continue
		}
		if line > maxRows {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("file exceeds %d rows", maxRows))
		}

		row, err := parseRow(columns, record)
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, RowError{Row: line, Error: err.Error()})
			continue
		}
		rows = append(rows, row)
	}

	imported, err := s.products.IngestExternal(ctx, identity.PublisherID, rows)
	if err != nil {
		return nil, err
	}
	result.Imported = imported

	_ = s.auditor.Record(ctx, identity, audit.RecordInput{
		Action:       enums.AuditActionImportCSV,
		ResourceType: "product",
		Metadata:     types.JSONMap{"imported": result.Imported, "failed": result.Failed},
		Status:       importStatus(result),
	})
	return result, nil
}

// columnMap holds header positions; -1 means the column is absent.
type columnMap struct {
	name        int
	description int
	category    int
	price       int
	sku         int
	vendor      int
	tags        int
}

func mapColumns(header []string) (columnMap, error) {
	columns := columnMap{name: -1, description: -1, category: -1, price: -1, sku: -1, vendor: -1, tags: -1}
	for i, raw := range header {
		switch strings.ToLower(strings.TrimSpace(raw)) {
		case "name", "title", "product name":
			columns.name = i
		case "description":
			columns.description = i
		case "category", "type", "product type":
			columns.category = i
		case "price":
			columns.price = i
		case "sku":
			columns.sku = i
		case "vendor", "brand":
			columns.vendor = i
		case "tags":
			columns.tags = i
		}
	}
	if columns.name < 0 {
		return columns, pkgerrors.New(pkgerrors.CodeValidation, "csv must have a name column")
	}
	return columns, nil
}

func parseRow(columns columnMap, record []string) (products.ExternalProduct, error) {
	name := strings.TrimSpace(field(record, columns.name))
	if name == "" {
		return products.ExternalProduct{}, fmt.Errorf("name is required")
	}

	row := products.ExternalProduct{
		Name:     name,
		Category: enums.ProductCategoryOther,
		Price:    decimal.Zero,
	}

	if value := strings.TrimSpace(field(record, columns.category)); value != "" {
		parsed, err := enums.ParseProductCategory(strings.ToLower(value))
		if err != nil {
			return row, fmt.Errorf("unknown category %q", value)
		}
		row.Category = parsed
	}
	if value := strings.TrimSpace(field(record, columns.price)); value != "" {
		price, err := decimal.NewFromString(value)
		if err != nil || price.IsNegative() {
			return row, fmt.Errorf("invalid price %q", value)
		}
		row.Price = price
	}
	if value := strings.TrimSpace(field(record, columns.description)); value != "" {
		row.Description = &value
	}
	if value := strings.TrimSpace(field(record, columns.sku)); value != "" {
		row.SKU = &value
	}
	if value := strings.TrimSpace(field(record, columns.vendor)); value != "" {
		row.Vendor = &value
	}
	if value := strings.TrimSpace(field(record, columns.tags)); value != "" {
		for _, tag := range strings.Split(value, ";") {
			if trimmed := strings.TrimSpace(tag); trimmed != "" {
				row.Tags = append(row.Tags, trimmed)
			}
		}
	}
	return row, nil
}

func field(record []string, index int) string {
	if index < 0 || index >= len(record) {
		return ""
	}
	return record[index]
}

func importStatus(result *Result) enums.AuditStatus {
	switch {
	case result.Failed == 0:
		return enums.AuditStatusSuccess
	case result.Imported == 0:
		return enums.AuditStatusFailure
	default:
		return enums.AuditStatusPartial
	}
}
