package shopify

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"net/url"
	"testing"

	"github.com/phantomos-app/phantomos-backend/pkg/config"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	client, err := NewClient(config.ShopifyConfig{
		ClientID:     "client-id",
		ClientSecret: "shh-secret",
	})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func TestVerifyWebhookHMAC(t *testing.T) {
	client := newTestClient(t)
	body := []byte(`{"id":123}`)

	mac := hmac.New(sha256.New, []byte("shh-secret"))
	mac.Write(body)
	signature := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	if !client.VerifyWebhookHMAC(body, signature) {
		t.Fatal("expected valid signature to verify")
	}
	if client.VerifyWebhookHMAC(body, "bogus") {
		t.Fatal("expected invalid signature to fail")
	}
	if client.VerifyWebhookHMAC([]byte(`{"id":124}`), signature) {
		t.Fatal("expected signature over different body to fail")
	}
}

func TestNextPageInfo(t *testing.T) {
	header := `<https://shop.myshopify.com/admin/api/2024-10/products.json?limit=250&page_info=abc123>; rel="next", <https://shop.myshopify.com/admin/api/2024-10/products.json?limit=250&page_info=zzz>; rel="previous"`
	if got := nextPageInfo(header); got != "abc123" {
		t.Fatalf("expected cursor abc123, got %q", got)
	}
	if got := nextPageInfo(`<https://x>; rel="previous"`); got != "" {
		t.Fatalf("expected empty cursor, got %q", got)
	}
	if got := nextPageInfo(""); got != "" {
		t.Fatalf("expected empty cursor for empty header, got %q", got)
	}
}

func TestSplitTags(t *testing.T) {
	tags := splitTags("anime, mecha ,  limited edition,")
	if len(tags) != 3 {
		t.Fatalf("expected 3 tags, got %d (%v)", len(tags), tags)
	}
	if tags[2] != "limited edition" {
		t.Fatalf("unexpected tag %q", tags[2])
	}
	if splitTags("  ") != nil {
		t.Fatal("expected nil for blank input")
	}
}

func TestNewClientRequiresSecret(t *testing.T) {
	if _, err := NewClient(config.ShopifyConfig{}); err == nil {
		t.Fatal("expected error for missing secret")
	}
}

func TestVerifyCallbackHMAC(t *testing.T) {
	client := newTestClient(t)

	query := url.Values{}
	query.Set("shop", "demo.myshopify.com")
	query.Set("code", "abc123")
	query.Set("timestamp", "1700000000")

	mac := hmac.New(sha256.New, []byte("shh-secret"))
	mac.Write([]byte("code=abc123&shop=demo.myshopify.com&timestamp=1700000000"))
	query.Set("hmac", hex.EncodeToString(mac.Sum(nil)))

	if !client.VerifyCallbackHMAC(query) {
		t.Fatal("expected valid callback signature to verify")
	}

	query.Set("code", "tampered")
	if client.VerifyCallbackHMAC(query) {
		t.Fatal("expected tampered query to fail")
	}

	if client.VerifyCallbackHMAC(url.Values{"shop": {"demo.myshopify.com"}}) {
		t.Fatal("expected missing hmac to fail")
	}
}

func TestAuthorizeURL(t *testing.T) {
	client, err := NewClient(config.ShopifyConfig{
		ClientID:     "client-id",
		ClientSecret: "shh-secret",
		RedirectURL:  "https://app.example.com/callback",
	})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	got, err := client.AuthorizeURL("demo.myshopify.com", "state-token")
	if err != nil {
		t.Fatalf("AuthorizeURL error: %v", err)
	}
	parsed, err := url.Parse(got)
	if err != nil {
		t.Fatalf("parse url: %v", err)
	}
	if parsed.Host != "demo.myshopify.com" || parsed.Path != "/admin/oauth/authorize" {
		t.Fatalf("unexpected url %s", got)
	}
	params := parsed.Query()
	if params.Get("client_id") != "client-id" || params.Get("state") != "state-token" {
		t.Fatalf("unexpected params %v", params)
	}
	if params.Get("redirect_uri") != "https://app.example.com/callback" {
		t.Fatalf("unexpected redirect %v", params)
	}

	if _, err := client.AuthorizeURL("", "state"); err == nil {
		t.Fatal("expected error for empty shop domain")
	}
}
