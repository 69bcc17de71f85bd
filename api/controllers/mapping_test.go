package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/phantomos-app/phantomos-backend/internal/mapping"
	"github.com/phantomos-app/phantomos-backend/internal/tenant"
	"github.com/phantomos-app/phantomos-backend/pkg/enums"
	"github.com/phantomos-app/phantomos-backend/pkg/logger"
)

type stubMappingService struct {
	confirmFn func(ctx context.Context, identity tenant.Identity, input mapping.ConfirmInput) (*mapping.ConfirmResult, error)
	unlinkFn  func(ctx context.Context, identity tenant.Identity, productID, assetID uuid.UUID) error
}

func (s *stubMappingService) Confirm(ctx context.Context, identity tenant.Identity, input mapping.ConfirmInput) (*mapping.ConfirmResult, error) {
	if s.confirmFn != nil {
		return s.confirmFn(ctx, identity, input)
	}
	return &mapping.ConfirmResult{ProductID: input.ProductID, AssetIDs: input.AssetIDs, MappedAt: time.Now().UTC()}, nil
}

func (s *stubMappingService) Skip(ctx context.Context, identity tenant.Identity, productID uuid.UUID) (*mapping.SkipResult, error) {
	return &mapping.SkipResult{ProductID: productID, SkippedAt: time.Now().UTC()}, nil
}

func (s *stubMappingService) Unlink(ctx context.Context, identity tenant.Identity, productID, assetID uuid.UUID) error {
	if s.unlinkFn != nil {
		return s.unlinkFn(ctx, identity, productID, assetID)
	}
	return nil
}

func (s *stubMappingService) AddLinks(ctx context.Context, identity tenant.Identity, productID uuid.UUID, assetIDs []uuid.UUID) (int, error) {
	return len(assetIDs), nil
}

func (s *stubMappingService) BulkConfirm(context.Context, tenant.Identity, []mapping.ConfirmInput) (*mapping.BulkResult, error) {
	return &mapping.BulkResult{}, nil
}

func (s *stubMappingService) BulkSkip(context.Context, tenant.Identity, []uuid.UUID) (int64, error) {
	return 0, nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("error"), Output: io.Discard})
}

func authedContext(ctx context.Context) context.Context {
	identity := tenant.User(uuid.New(), uuid.New(), enums.MemberRoleAdmin)
	return tenant.WithIdentity(ctx, identity)
}

func TestConfirmMappingHandler(t *testing.T) {
	productID := uuid.New()
	assetID := uuid.New()

	mappedAt := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	var got mapping.ConfirmInput
	svc := &stubMappingService{
		confirmFn: func(_ context.Context, _ tenant.Identity, input mapping.ConfirmInput) (*mapping.ConfirmResult, error) {
			got = input
			return &mapping.ConfirmResult{ProductID: input.ProductID, AssetIDs: input.AssetIDs, MappedAt: mappedAt}, nil
		},
	}

	body := `{"productId": "` + productID.String() + `", "assetIds": ["` + assetID.String() + `"]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/products/mapping", strings.NewReader(body))
	req = req.WithContext(authedContext(req.Context()))
	rec := httptest.NewRecorder()

	ConfirmMapping(svc, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	if got.ProductID != productID || len(got.AssetIDs) != 1 || got.AssetIDs[0] != assetID {
		t.Fatalf("unexpected input %+v", got)
	}

	var envelope struct {
		Data struct {
			ProductID uuid.UUID   `json:"productId"`
			AssetIDs  []uuid.UUID `json:"assetIds"`
			MappedAt  time.Time   `json:"mappedAt"`
		} `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.ProductID != productID || len(envelope.Data.AssetIDs) != 1 {
		t.Fatalf("unexpected body %+v", envelope.Data)
	}
	if !envelope.Data.MappedAt.Equal(mappedAt) {
		t.Fatalf("expected mappedAt %s, got %s", mappedAt, envelope.Data.MappedAt)
	}
}

func TestSkipMappingReturnsProductAndTime(t *testing.T) {
	productID := uuid.New()
	body := `{"productId": "` + productID.String() + `"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/products/mapping", strings.NewReader(body))
	req = req.WithContext(authedContext(req.Context()))
	rec := httptest.NewRecorder()

	SkipMapping(&stubMappingService{}, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	var envelope struct {
		Data struct {
			ProductID uuid.UUID `json:"productId"`
			SkippedAt time.Time `json:"skippedAt"`
		} `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.ProductID != productID {
		t.Fatalf("expected product id in body, got %+v", envelope.Data)
	}
	if envelope.Data.SkippedAt.IsZero() {
		t.Fatal("expected skippedAt in body")
	}
}

func TestAddProductLinksReturnsAddedCount(t *testing.T) {
	productID := uuid.New()
	body := `{"assetIds": ["` + uuid.NewString() + `", "` + uuid.NewString() + `"]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/products/"+productID.String()+"/assets", strings.NewReader(body))
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("productId", productID.String())
	ctx := context.WithValue(authedContext(req.Context()), chi.RouteCtxKey, routeCtx)
	req = req.WithContext(ctx)
	rec := httptest.NewRecorder()

	AddProductLinks(&stubMappingService{}, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	var envelope struct {
		Data struct {
			Added int `json:"added"`
		} `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Added != 2 {
		t.Fatalf("expected 2 links added, got %d", envelope.Data.Added)
	}
}

func TestConfirmMappingRejectsEmptyAssetIDs(t *testing.T) {
	body := `{"productId": "` + uuid.NewString() + `", "assetIds": []}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/products/mapping", strings.NewReader(body))
	req = req.WithContext(authedContext(req.Context()))
	rec := httptest.NewRecorder()

	ConfirmMapping(&stubMappingService{}, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestConfirmMappingRequiresIdentity(t *testing.T) {
	body := `{"productId": "` + uuid.NewString() + `", "assetIds": ["` + uuid.NewString() + `"]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/products/mapping", strings.NewReader(body))
	rec := httptest.NewRecorder()

	ConfirmMapping(&stubMappingService{}, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
}

func TestUnlinkProductAssetReadsQueryParam(t *testing.T) {
	productID := uuid.New()
	assetID := uuid.New()

	var gotProduct, gotAsset uuid.UUID
	svc := &stubMappingService{
		unlinkFn: func(_ context.Context, _ tenant.Identity, productID, assetID uuid.UUID) error {
			gotProduct = productID
			gotAsset = assetID
			return nil
		},
	}

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/products/"+productID.String()+"/assets?assetId="+assetID.String(), nil)
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("productId", productID.String())
	ctx := context.WithValue(authedContext(req.Context()), chi.RouteCtxKey, routeCtx)
	req = req.WithContext(ctx)
	rec := httptest.NewRecorder()

	UnlinkProductAsset(svc, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	if gotProduct != productID || gotAsset != assetID {
		t.Fatalf("unexpected ids %s %s", gotProduct, gotAsset)
	}
}

func TestUnlinkProductAssetRequiresAssetID(t *testing.T) {
	productID := uuid.New()

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/products/"+productID.String()+"/assets", nil)
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("productId", productID.String())
	ctx := context.WithValue(authedContext(req.Context()), chi.RouteCtxKey, routeCtx)
	req = req.WithContext(ctx)
	rec := httptest.NewRecorder()

	UnlinkProductAsset(&stubMappingService{}, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}
