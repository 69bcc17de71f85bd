package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/phantomos-app/phantomos-backend/internal/tenant"
	pkgAuth "github.com/phantomos-app/phantomos-backend/pkg/auth"
	"github.com/phantomos-app/phantomos-backend/pkg/config"
	"github.com/phantomos-app/phantomos-backend/pkg/enums"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{Secret: "secret", Issuer: "issuer", ExpirationMinutes: 60}
}

func mintTestToken(t *testing.T, cfg config.JWTConfig, userID, publisherID uuid.UUID, role enums.MemberRole) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(cfg, time.Now(), pkgAuth.AccessTokenPayload{
		UserID:      userID,
		PublisherID: publisherID,
		Role:        role,
		JTI:         uuid.NewString(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestAuthRejectsMissingToken(t *testing.T) {
	handler := Auth(testJWTConfig(), config.DemoConfig{}, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestAuthRejectsInvalidToken(t *testing.T) {
	handler := Auth(testJWTConfig(), config.DemoConfig{}, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer invalid")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestAuthAllowsValidToken(t *testing.T) {
	cfg := testJWTConfig()
	userID := uuid.New()
	publisherID := uuid.New()
	token := mintTestToken(t, cfg, userID, publisherID, enums.MemberRoleAdmin)

	var captured tenant.Identity
	handler := Auth(cfg, config.DemoConfig{}, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured, _ = tenant.FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if captured.Kind != tenant.KindUser {
		t.Fatalf("expected user identity, got %s", captured.Kind)
	}
	if captured.UserID != userID || captured.PublisherID != publisherID {
		t.Fatalf("unexpected identity %+v", captured)
	}
	if captured.Role != enums.MemberRoleAdmin {
		t.Fatalf("expected admin role got %s", captured.Role)
	}
}

func TestAuthFallsBackToDemoWithoutCredentials(t *testing.T) {
	demoPublisher := uuid.New()
	demoCfg := config.DemoConfig{Enabled: true, PublisherID: demoPublisher.String()}

	var captured tenant.Identity
	handler := Auth(testJWTConfig(), demoCfg, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured, _ = tenant.FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if !captured.IsDemo() {
		t.Fatalf("expected demo identity, got %+v", captured)
	}
	if captured.PublisherID != demoPublisher {
		t.Fatalf("expected demo publisher %s got %s", demoPublisher, captured.PublisherID)
	}
}

func TestAuthDemoNeverShadowsPresentedCredentials(t *testing.T) {
	demoCfg := config.DemoConfig{Enabled: true, PublisherID: uuid.NewString()}
	handler := Auth(testJWTConfig(), demoCfg, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("bad token must 401 even in demo mode, got %d", resp.Code)
	}
}

func TestRequireWriteAccessBlocksViewers(t *testing.T) {
	handler := RequireWriteAccess(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	viewer := tenant.User(uuid.New(), uuid.New(), enums.MemberRoleViewer)
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req = req.WithContext(tenant.WithIdentity(req.Context(), viewer))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", resp.Code)
	}

	demo := tenant.Demo(uuid.New())
	req = httptest.NewRequest(http.MethodPost, "/", nil)
	req = req.WithContext(tenant.WithIdentity(req.Context(), demo))
	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("demo writes to its sandbox, expected 200 got %d", resp.Code)
	}
}
