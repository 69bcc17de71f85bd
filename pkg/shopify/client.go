// Package shopify wraps the Shopify Admin REST API surface used for catalog sync.
package shopify

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/phantomos-app/phantomos-backend/pkg/config"
	pkgerrors "github.com/phantomos-app/phantomos-backend/pkg/errors"
)

const (
	defaultAPIVersion          = "2024-10"
	defaultPageLimit           = 250
	requestBodyReadLimit int64 = 1024
)

var (
	errClientSecretRequired = errors.New("shopify client secret is required")
)

// Client wraps the Shopify Admin REST endpoints used for product and order sync.
type Client struct {
	httpClient   *http.Client
	clientID     string
	clientSecret string
	redirectURL  string
	apiVersion   string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithAPIVersion overrides the Admin API version.
func WithAPIVersion(version string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(version)
		if trimmed != "" {
			c.apiVersion = trimmed
		}
	}
}

// NewClient builds the Shopify client from app credentials.
func NewClient(cfg config.ShopifyConfig, opts ...Option) (*Client, error) {
	if strings.TrimSpace(cfg.ClientSecret) == "" {
		return nil, errClientSecretRequired
	}

	client := &Client{
		httpClient:   &http.Client{Timeout: 15 * time.Second},
		clientID:     strings.TrimSpace(cfg.ClientID),
		clientSecret: strings.TrimSpace(cfg.ClientSecret),
		redirectURL:  strings.TrimSpace(cfg.RedirectURL),
		apiVersion:   defaultAPIVersion,
	}
	if cfg.APIVersion != "" {
		client.apiVersion = cfg.APIVersion
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: 15 * time.Second}
	}

	return client, nil
}

// Product mirrors the subset of Shopify's product payload we ingest.
type Product struct {
	ExternalID  string
	Title       string
	BodyHTML    string
	Vendor      string
	ProductType string
	Tags        []string
	SKU         string
	Price       string
}

// Order mirrors the subset of Shopify's order payload we ingest.
type Order struct {
	ExternalID string
	CreatedAt  time.Time
	LineItems  []OrderLineItem
}

// OrderLineItem is one product line inside an order.
type OrderLineItem struct {
	ProductExternalID string
	Quantity          int
	Price             string
}

// Page holds one page of results plus the cursor for the next page.
type Page[T any] struct {
	Items    []T
	NextPage string
}

// ExchangeCode swaps an OAuth authorization code for a permanent access token.
func (c *Client) ExchangeCode(ctx context.Context, shopDomain, code string) (string, error) {
	if c == nil {
		return "", pkgerrors.New(pkgerrors.CodeDependency, "shopify client not configured")
	}
	if strings.TrimSpace(shopDomain) == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "shop domain is required")
	}
	if strings.TrimSpace(code) == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "authorization code is required")
	}

	payload, err := json.Marshal(map[string]string{
		"client_id":     c.clientID,
		"client_secret": c.clientSecret,
		"code":          code,
	})
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "marshal token exchange request")
	}

	endpoint := fmt.Sprintf("https://%s/admin/oauth/access_token", shopDomain)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build token exchange request")
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute token exchange request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, requestBodyReadLimit))
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))), "token exchange failed")
	}

	var apiResp struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode token exchange response")
	}
	if apiResp.AccessToken == "" {
		return "", pkgerrors.New(pkgerrors.CodeDependency, "empty access token in response")
	}

	return apiResp.AccessToken, nil
}

// FetchProducts returns one page of products. Pass the NextPage cursor from the
// previous call to continue; an empty cursor starts from the beginning.
func (c *Client) FetchProducts(ctx context.Context, shopDomain, accessToken, pageInfo string) (*Page[Product], error) {
	query := url.Values{}
	query.Set("limit", fmt.Sprintf("%d", defaultPageLimit))
	if pageInfo != "" {
		query.Set("page_info", pageInfo)
	}

	body, next, err := c.get(ctx, shopDomain, accessToken, "products.json", query)
	if err != nil {
		return nil, err
	}

	var apiResp struct {
		Products []struct {
			ID          int64  `json:"id"`
			Title       string `json:"title"`
			BodyHTML    string `json:"body_html"`
			Vendor      string `json:"vendor"`
			ProductType string `json:"product_type"`
			Tags        string `json:"tags"`
			Variants    []struct {
				SKU   string `json:"sku"`
				Price string `json:"price"`
			} `json:"variants"`
		} `json:"products"`
	}
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode products response")
	}

	products := make([]Product, 0, len(apiResp.Products))
	for _, p := range apiResp.Products {
		prod := Product{
			ExternalID:  fmt.Sprintf("%d", p.ID),
			Title:       p.Title,
			BodyHTML:    p.BodyHTML,
			Vendor:      p.Vendor,
			ProductType: p.ProductType,
			Tags:        splitTags(p.Tags),
		}
		if len(p.Variants) > 0 {
			prod.SKU = p.Variants[0].SKU
			prod.Price = p.Variants[0].Price
		}
		products = append(products, prod)
	}

	return &Page[Product]{Items: products, NextPage: next}, nil
}

// FetchOrders returns one page of orders created at or after the supplied time.
func (c *Client) FetchOrders(ctx context.Context, shopDomain, accessToken string, createdAtMin time.Time, pageInfo string) (*Page[Order], error) {
	query := url.Values{}
	query.Set("limit", fmt.Sprintf("%d", defaultPageLimit))
	if pageInfo != "" {
		// Shopify rejects filter params alongside a page cursor.
		query.Set("page_info", pageInfo)
	} else {
		query.Set("status", "any")
		if !createdAtMin.IsZero() {
			query.Set("created_at_min", createdAtMin.UTC().Format(time.RFC3339))
		}
	}

	body, next, err := c.get(ctx, shopDomain, accessToken, "orders.json", query)
	if err != nil {
		return nil, err
	}

	var apiResp struct {
		Orders []struct {
			ID        int64     `json:"id"`
			CreatedAt time.Time `json:"created_at"`
			LineItems []struct {
				ProductID *int64 `json:"product_id"`
				Quantity  int    `json:"quantity"`
				Price     string `json:"price"`
			} `json:"line_items"`
		} `json:"orders"`
	}
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode orders response")
	}

	orders := make([]Order, 0, len(apiResp.Orders))
	for _, o := range apiResp.Orders {
		order := Order{
			ExternalID: fmt.Sprintf("%d", o.ID),
			CreatedAt:  o.CreatedAt,
		}
		for _, li := range o.LineItems {
			if li.ProductID == nil {
				continue
			}
			order.LineItems = append(order.LineItems, OrderLineItem{
				ProductExternalID: fmt.Sprintf("%d", *li.ProductID),
				Quantity:          li.Quantity,
				Price:             li.Price,
			})
		}
		orders = append(orders, order)
	}

	return &Page[Order]{Items: orders, NextPage: next}, nil
}

// oauthScopes is the fixed permission set the app requests on install.
const oauthScopes = "read_products,read_orders"

// AuthorizeURL builds the merchant-facing OAuth grant URL for a shop.
func (c *Client) AuthorizeURL(shopDomain, state string) (string, error) {
	if c == nil || c.clientID == "" {
		return "", pkgerrors.New(pkgerrors.CodeDependency, "shopify client id not configured")
	}
	if strings.TrimSpace(shopDomain) == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "shop domain is required")
	}

	query := url.Values{}
	query.Set("client_id", c.clientID)
	query.Set("scope", oauthScopes)
	query.Set("redirect_uri", c.redirectURL)
	query.Set("state", state)
	return fmt.Sprintf("https://%s/admin/oauth/authorize?%s", shopDomain, query.Encode()), nil
}

// VerifyCallbackHMAC checks the hex hmac parameter Shopify appends to OAuth
// callback query strings. The signature covers every parameter except hmac
// itself, sorted and ampersand-joined.
func (c *Client) VerifyCallbackHMAC(query url.Values) bool {
	if c == nil || c.clientSecret == "" {
		return false
	}
	provided := query.Get("hmac")
	if provided == "" {
		return false
	}

	keys := make([]string, 0, len(query))
	for key := range query {
		if key == "hmac" {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, key := range keys {
		pairs = append(pairs, key+"="+strings.Join(query[key], ","))
	}

	mac := hmac.New(sha256.New, []byte(c.clientSecret))
	mac.Write([]byte(strings.Join(pairs, "&")))
	expected := hex.EncodeToString(mac.Sum(nil))
	return subtle.ConstantTimeCompare([]byte(expected), []byte(provided)) == 1
}

// VerifyWebhookHMAC checks the X-Shopify-Hmac-Sha256 signature over the raw body.
func (c *Client) VerifyWebhookHMAC(body []byte, headerValue string) bool {
	if c == nil || c.clientSecret == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(c.clientSecret))
	mac.Write(body)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	return subtle.ConstantTimeCompare([]byte(expected), []byte(strings.TrimSpace(headerValue))) == 1
}

func (c *Client) get(ctx context.Context, shopDomain, accessToken, resource string, query url.Values) ([]byte, string, error) {
	if c == nil {
		return nil, "", pkgerrors.New(pkgerrors.CodeDependency, "shopify client not configured")
	}
	if strings.TrimSpace(shopDomain) == "" {
		return nil, "", pkgerrors.New(pkgerrors.CodeValidation, "shop domain is required")
	}
	if strings.TrimSpace(accessToken) == "" {
		return nil, "", pkgerrors.New(pkgerrors.CodeValidation, "access token is required")
	}

	endpoint := fmt.Sprintf("https://%s/admin/api/%s/%s?%s", shopDomain, c.apiVersion, resource, query.Encode())
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build admin api request")
	}
	httpReq.Header.Set("X-Shopify-Access-Token", accessToken)
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute admin api request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, requestBodyReadLimit))
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))), "admin api request failed")
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read admin api response")
	}

	return body, nextPageInfo(resp.Header.Get("Link")), nil
}

// nextPageInfo extracts the page_info cursor from Shopify's Link header.
func nextPageInfo(linkHeader string) string {
	for _, part := range strings.Split(linkHeader, ",") {
		if !strings.Contains(part, `rel="next"`) {
			continue
		}
		start := strings.Index(part, "<")
		end := strings.Index(part, ">")
		if start < 0 || end < 0 || end <= start {
			continue
		}
		parsed, err := url.Parse(part[start+1 : end])
		if err != nil {
			continue
		}
		return parsed.Query().Get("page_info")
	}
	return ""
}

func splitTags(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			tags = append(tags, trimmed)
		}
	}
	return tags
}
