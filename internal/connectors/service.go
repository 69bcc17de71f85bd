// Package connectors manages commerce integrations and their sync pipeline.
package connectors

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phantomos-app/phantomos-backend/internal/audit"
	"github.com/phantomos-app/phantomos-backend/internal/products"
	"github.com/phantomos-app/phantomos-backend/internal/tenant"
	"github.com/phantomos-app/phantomos-backend/pkg/db"
	"github.com/phantomos-app/phantomos-backend/pkg/db/models"
	"github.com/phantomos-app/phantomos-backend/pkg/enums"
	pkgerrors "github.com/phantomos-app/phantomos-backend/pkg/errors"
	"github.com/phantomos-app/phantomos-backend/pkg/logger"
	"github.com/phantomos-app/phantomos-backend/pkg/shopify"
	"github.com/phantomos-app/phantomos-backend/pkg/types"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// shopClient is the Shopify surface the service depends on.
type shopClient interface {
	AuthorizeURL(shopDomain, state string) (string, error)
	VerifyCallbackHMAC(query url.Values) bool
	ExchangeCode(ctx context.Context, shopDomain, code string) (string, error)
	FetchProducts(ctx context.Context, shopDomain, accessToken, pageInfo string) (*shopify.Page[shopify.Product], error)
	FetchOrders(ctx context.Context, shopDomain, accessToken string, createdAtMin time.Time, pageInfo string) (*shopify.Page[shopify.Order], error)
}

// ingestor is the slice of the product service the sync pipeline needs.
type ingestor interface {
	IngestExternal(ctx context.Context, publisherID uuid.UUID, rows []products.ExternalProduct) (int, error)
}

// initialOrderWindow bounds the first order backfill of a fresh connector.
const initialOrderWindow = 365 * 24 * time.Hour

// Service is the connector lifecycle surface.
type Service interface {
	List(ctx context.Context, identity tenant.Identity) ([]ConnectorDTO, error)
	Connect(ctx context.Context, identity tenant.Identity, input ConnectInput) (*ConnectResult, error)
	CompleteCallback(ctx context.Context, query url.Values) error
	Sync(ctx context.Context, identity tenant.Identity, connectorID uuid.UUID) (*SyncResult, error)
	Disconnect(ctx context.Context, identity tenant.Identity, connectorID uuid.UUID) error
}

type service struct {
	repo     Repository
	shop     shopClient
	products ingestor
	dbClient *db.Client
	auditor  audit.Service
	logger   *logger.Logger
}

// NewService constructs the connector service.
func NewService(repo Repository, shop shopClient, productIngestor ingestor, dbClient *db.Client, auditor audit.Service, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("connector repository required")
	}
	if shop == nil {
		return nil, fmt.Errorf("shop client required")
	}
	if productIngestor == nil {
		return nil, fmt.Errorf("product ingestor required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if auditor == nil {
		return nil, fmt.Errorf("audit service required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:     repo,
		shop:     shop,
		products: productIngestor,
		dbClient: dbClient,
		auditor:  auditor,
		logger:   logg,
	}, nil
}

func (s *service) List(ctx context.Context, identity tenant.Identity) ([]ConnectorDTO, error) {
	list, err := s.repo.List(ctx, identity.PublisherID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list connectors")
	}
	out := make([]ConnectorDTO, 0, len(list))
	for _, connector := range list {
		out = append(out, toConnectorDTO(connector))
	}
	return out, nil
}

// Connect records a pending install and hands back the OAuth grant URL. The
// pending row's id doubles as the OAuth state parameter.
func (s *service) Connect(ctx context.Context, identity tenant.Identity, input ConnectInput) (*ConnectResult, error) {
	domain := normalizeShopDomain(input.ShopDomain)
	if domain == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shop domain is required")
	}

	connector := &models.Connector{
		PublisherID: identity.PublisherID,
		Provider:    enums.ConnectorProviderShopify,
		ShopDomain:  domain,
		Status:      enums.ConnectorStatusPending,
	}
	if err := s.repo.Create(ctx, connector); err != nil {
		if db.IsUniqueViolation(err, "idx_connectors_publisher_domain") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "connector already exists for this shop")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create connector")
	}

	authorizeURL, err := s.shop.AuthorizeURL(domain, connector.ID.String())
	if err != nil {
		return nil, err
	}

	_ = s.auditor.Record(ctx, identity, audit.RecordInput{
		Action:       enums.AuditActionConnectorConnect,
		ResourceType: "connector",
		ResourceID:   &connector.ID,
		ResourceName: &domain,
	})
	return &ConnectResult{ConnectorID: connector.ID, AuthorizeURL: authorizeURL}, nil
}

// CompleteCallback finishes the OAuth install. The endpoint is public, so it
// trusts nothing but the HMAC and the pending row created by Connect.
func (s *service) CompleteCallback(ctx context.Context, query url.Values) error {
	if !s.shop.VerifyCallbackHMAC(query) {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid callback signature")
	}

	domain := normalizeShopDomain(query.Get("shop"))
	code := query.Get("code")
	state := query.Get("state")
	if domain == "" || code == "" || state == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "shop, code, and state are required")
	}
	connectorID, err := uuid.Parse(state)
	if err != nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid state")
	}

	connector, err := s.repo.FindPending(ctx, connectorID, domain)
	if err != nil {
		if db.IsNotFound(err) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "pending install not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load pending install")
	}

	token, err := s.shop.ExchangeCode(ctx, domain, code)
	if err != nil {
		return err
	}

	connector.AccessToken = token
	connector.Status = enums.ConnectorStatusActive
	if err := s.repo.Save(ctx, connector); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "activate connector")
	}
	return nil
}

// Sync pulls the product catalog and recent orders from the shop. Products
// upsert on external id without touching mapping state; sales ingest
// idempotently.
func (s *service) Sync(ctx context.Context, identity tenant.Identity, connectorID uuid.UUID) (*SyncResult, error) {
	connector, err := s.loadOwned(ctx, identity, connectorID)
	if err != nil {
		return nil, err
	}
	if connector.Status != enums.ConnectorStatusActive && connector.Status != enums.ConnectorStatusError {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "connector is not ready to sync")
	}

	connector.Status = enums.ConnectorStatusSyncing
	if err := s.repo.Save(ctx, connector); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mark syncing")
	}

	result, err := s.runSync(ctx, identity, connector)
	if err != nil {
		connector.Status = enums.ConnectorStatusError
		if saveErr := s.repo.Save(ctx, connector); saveErr != nil {
			s.logger.Error(ctx, "mark connector errored", saveErr)
		}
		return nil, err
	}

	now := time.Now().UTC()
	connector.Status = enums.ConnectorStatusActive
	connector.LastSyncAt = &now
	if err := s.repo.Save(ctx, connector); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "finish sync")
	}

	_ = s.auditor.Record(ctx, identity, audit.RecordInput{
		Action:       enums.AuditActionConnectorSync,
		ResourceType: "connector",
		ResourceID:   &connector.ID,
		ResourceName: &connector.ShopDomain,
		Metadata:     types.JSONMap{"products": result.Products, "sales": result.Sales},
	})
	return result, nil
}

func (s *service) runSync(ctx context.Context, identity tenant.Identity, connector *models.Connector) (*SyncResult, error) {
	result := &SyncResult{}

	pageInfo := ""
	for {
		page, err := s.shop.FetchProducts(ctx, connector.ShopDomain, connector.AccessToken, pageInfo)
		if err != nil {
			return nil, err
		}
		rows := make([]products.ExternalProduct, 0, len(page.Items))
		for _, item := range page.Items {
			rows = append(rows, toExternalProduct(connector.ID, item))
		}
		ingested, err := s.products.IngestExternal(ctx, identity.PublisherID, rows)
		if err != nil {
			return nil, err
		}
		result.Products += ingested

		if page.NextPage == "" {
			break
		}
		pageInfo = page.NextPage
	}

	since := time.Now().UTC().Add(-initialOrderWindow)
	if connector.LastSyncAt != nil {
		since = *connector.LastSyncAt
	}

	pageInfo = ""
	for {
		page, err := s.shop.FetchOrders(ctx, connector.ShopDomain, connector.AccessToken, since, pageInfo)
		if err != nil {
			return nil, err
		}
		ingested, err := s.ingestOrders(ctx, identity.PublisherID, connector.ID, page.Items)
		if err != nil {
			return nil, err
		}
		result.Sales += ingested

		if page.NextPage == "" {
			break
		}
		pageInfo = page.NextPage
	}

	return result, nil
}

// ingestOrders flattens orders into sale lines. Lines whose product was never
// ingested (deleted, out of scope) are skipped, not errors.
func (s *service) ingestOrders(ctx context.Context, publisherID, connectorID uuid.UUID, orders []shopify.Order) (int, error) {
	externalIDs := []string{}
	seen := map[string]bool{}
	for _, order := range orders {
		for _, line := range order.LineItems {
			if line.ProductExternalID == "" || seen[line.ProductExternalID] {
				continue
			}
			seen[line.ProductExternalID] = true
			externalIDs = append(externalIDs, line.ProductExternalID)
		}
	}

	productIDs, err := s.repo.ProductIDsByExternal(ctx, connectorID, externalIDs)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolve sale products")
	}

	sales := []models.Sale{}
	for _, order := range orders {
		for i, line := range order.LineItems {
			productID, ok := productIDs[line.ProductExternalID]
			if !ok {
				continue
			}
			price, err := decimal.NewFromString(line.Price)
			if err != nil {
				price = decimal.Zero
			}
			quantity := line.Quantity
			if quantity <= 0 {
				quantity = 1
			}
			externalID := fmt.Sprintf("%s:%d", order.ExternalID, i)
			sales = append(sales, models.Sale{
				PublisherID: publisherID,
				ProductID:   productID,
				ConnectorID: &connectorID,
				ExternalID:  &externalID,
				Quantity:    quantity,
				Revenue:     price.Mul(decimal.NewFromInt(int64(quantity))),
				SoldAt:      order.CreatedAt,
			})
		}
	}

	inserted, err := s.repo.UpsertSales(ctx, sales)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "insert sales")
	}
	return int(inserted), nil
}

// Disconnect removes the connector and every product it ingested, in one
// transaction. Sales keep their rows for analytics; their connector_id nulls
// out via FK.
func (s *service) Disconnect(ctx context.Context, identity tenant.Identity, connectorID uuid.UUID) error {
	connector, err := s.loadOwned(ctx, identity, connectorID)
	if err != nil {
		return err
	}

	var removed int64
	err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		removed, err = repo.DeleteProductsForConnector(ctx, connector.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete connector products")
		}
		if err := repo.Delete(ctx, connector.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete connector")
		}
		return nil
	})
	if err != nil {
		return err
	}

	_ = s.auditor.Record(ctx, identity, audit.RecordInput{
		Action:       enums.AuditActionConnectorRemove,
		ResourceType: "connector",
		ResourceID:   &connectorID,
		ResourceName: &connector.ShopDomain,
		Metadata:     types.JSONMap{"productsRemoved": removed},
	})
	return nil
}

func (s *service) loadOwned(ctx context.Context, identity tenant.Identity, connectorID uuid.UUID) (*models.Connector, error) {
	connector, err := s.repo.FindByID(ctx, identity.PublisherID, connectorID)
	if err != nil {
		if db.IsNotFound(err) {
			// Cross-tenant reads surface as not-found, never forbidden.
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "connector not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load connector")
	}
	return connector, nil
}

func toExternalProduct(connectorID uuid.UUID, item shopify.Product) products.ExternalProduct {
	price, err := decimal.NewFromString(item.Price)
	if err != nil {
		price = decimal.Zero
	}

	row := products.ExternalProduct{
		ConnectorID: &connectorID,
		Name:        item.Title,
		Category:    guessCategory(item.ProductType),
		Price:       price,
		Tags:        item.Tags,
	}
	if item.ExternalID != "" {
		externalID := item.ExternalID
		row.ExternalID = &externalID
	}
	if item.BodyHTML != "" {
		description := item.BodyHTML
		row.Description = &description
	}
	if item.SKU != "" {
		sku := item.SKU
		row.SKU = &sku
	}
	if item.Vendor != "" {
		vendor := item.Vendor
		row.Vendor = &vendor
	}
	return row
}

// guessCategory maps Shopify's free-form product type onto the fixed
// category vocabulary.
func guessCategory(productType string) enums.ProductCategory {
	normalized := strings.ToLower(strings.TrimSpace(productType))
	if parsed, err := enums.ParseProductCategory(normalized); err == nil {
		return parsed
	}
	switch {
	case containsAny(normalized, "shirt", "hoodie", "tee", "apparel", "clothing", "jacket"):
		return enums.ProductCategoryApparel
	case containsAny(normalized, "figure", "plush", "toy"):
		return enums.ProductCategoryToy
	case containsAny(normalized, "pin", "keychain", "bag", "accessor"):
		return enums.ProductCategoryAccessory
	case containsAny(normalized, "statue", "collect", "limited"):
		return enums.ProductCategoryCollectible
	case containsAny(normalized, "mug", "poster", "home", "decor"):
		return enums.ProductCategoryHomeGoods
	case containsAny(normalized, "print", "art"):
		return enums.ProductCategoryPrint
	case containsAny(normalized, "digital", "download", "dlc"):
		return enums.ProductCategoryDigital
	default:
		return enums.ProductCategoryOther
	}
}

func containsAny(s string, needles ...string) bool {
	for _, needle := range needles {
		if strings.Contains(s, needle) {
			return true
		}
	}
	return false
}

func normalizeShopDomain(raw string) string {
	domain := strings.ToLower(strings.TrimSpace(raw))
	domain = strings.TrimPrefix(domain, "https://")
	domain = strings.TrimPrefix(domain, "http://")
	return strings.TrimSuffix(domain, "/")
}
