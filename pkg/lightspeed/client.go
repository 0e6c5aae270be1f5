// Package lightspeed is a minimal HTTP client for the Lightspeed retail API.
package lightspeed

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
	// DefaultPageSize is the page size requested from the catalog endpoint.
	DefaultPageSize = 100
)

// Config configures a Lightspeed client for one retailer account.
type Config struct {
	// AccountDomain is the retailer's account prefix ("my-store" resolves to
	// my-store.retail.lightspeed.app).
	AccountDomain string
	AccessToken   string
	// BaseURL overrides the account-derived host, mainly for tests.
	BaseURL string
}

// Client talks to one retailer's Lightspeed API.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	accessToken string
}

// NewClient constructs a Lightspeed client with sane defaults.
func NewClient(cfg Config) *Client {
	base := cfg.BaseURL
	if base == "" {
		base = fmt.Sprintf("https://%s.retail.lightspeed.app/api/2.0", cfg.AccountDomain)
	}
	return &Client{
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		baseURL:     strings.TrimSuffix(base, "/"),
		accessToken: cfg.AccessToken,
	}
}

// ListProducts fetches the full catalog page by page, stopping when the API
// returns a short or empty page. Page count is never assumed up front.
func (c *Client) ListProducts(ctx context.Context) ([]Product, error) {
	var products []Product
	for page := 1; ; page++ {
		batch, err := c.listProductsPage(ctx, page, DefaultPageSize)
		if err != nil {
			return nil, err
		}
		products = append(products, batch...)
		if len(batch) < DefaultPageSize {
			return products, nil
		}
	}
}

func (c *Client) listProductsPage(ctx context.Context, page, pageSize int) ([]Product, error) {
	endpoint := fmt.Sprintf("/products?page=%d&page_size=%d", page, pageSize)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("lightspeed: failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("lightspeed: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("lightspeed: failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &posapi.APIError{
			Provider:   "lightspeed",
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Body:       string(body),
		}
	}

	var parsed listProductsResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("lightspeed: failed to decode response: %w", err)
	}
	return parsed.Data, nil
}
