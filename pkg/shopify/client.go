// Package shopify is a minimal HTTP client for the Shopify Admin REST API.
package shopify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/barterly/pos-sync/pkg/posapi"
)

const (
	// APIVersion is the pinned Admin API version.
	APIVersion = "2024-01"

	defaultPageSize = 250
)

// Config configures a Shopify client for one shop.
type Config struct {
	// ShopDomain is the myshopify.com shop handle, with or without domain
	// suffix ("my-store" or "my-store.myshopify.com").
	ShopDomain  string
	AccessToken string
	// BaseURL overrides the shop-derived host, mainly for tests.
	BaseURL string
}

// Client talks to one shop's Admin API.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	accessToken string
}

// NewClient constructs a Shopify client with sane defaults.
func NewClient(cfg Config) *Client {
	base := cfg.BaseURL
	if base == "" {
		domain := cfg.ShopDomain
		if !strings.Contains(domain, ".") {
			domain += ".myshopify.com"
		}
		base = "https://" + domain
	}
	return &Client{
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		baseURL:     strings.TrimSuffix(base, "/"),
		accessToken: cfg.AccessToken,
	}
}

// ListProducts fetches the shop's full product list, following the Link
// header rel="next" cursor until Shopify stops returning one. Page count is
// never assumed; Shopify decides when pagination ends.
func (c *Client) ListProducts(ctx context.Context) ([]Product, error) {
	var products []Product
	endpoint := fmt.Sprintf("/admin/api/%s/products.json?limit=%d", APIVersion, defaultPageSize)
	for endpoint != "" {
		page, next, err := c.listProductsPage(ctx, endpoint)
		if err != nil {
			return nil, err
		}
		products = append(products, page...)
		endpoint = next
	}
	return products, nil
}

func (c *Client) listProductsPage(ctx context.Context, endpoint string) ([]Product, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint, nil)
	if err != nil {
		return nil, "", fmt.Errorf("shopify: failed to create request: %w", err)
	}
	req.Header.Set("X-Shopify-Access-Token", c.accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("shopify: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("shopify: failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, "", &posapi.APIError{
			Provider:   "shopify",
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Body:       string(body),
		}
	}

	var parsed listProductsResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, "", fmt.Errorf("shopify: failed to decode response: %w", err)
	}

	next := nextPagePath(resp.Header.Get("Link"), c.baseURL)
	return parsed.Products, next, nil
}

// nextPagePath extracts the rel="next" URL from a Link header and returns it
// as a path relative to baseURL, or "" when there is no next page.
func nextPagePath(linkHeader, baseURL string) string {
	if linkHeader == "" {
		return ""
	}
	for _, part := range strings.Split(linkHeader, ",") {
		segs := strings.Split(part, ";")
		if len(segs) < 2 {
			continue
		}
		if !strings.Contains(segs[1], `rel="next"`) {
			continue
		}
		raw := strings.Trim(strings.TrimSpace(segs[0]), "<>")
		return strings.TrimPrefix(raw, baseURL)
	}
	return ""
}
