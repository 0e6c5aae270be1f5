// Package clover is a minimal HTTP client for the Clover REST API.
package clover

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/barterly/pos-sync/pkg/posapi"
)

const (
	// ProductionBaseURL is the Clover production API host.
	ProductionBaseURL = "https://api.clover.com"
	// SandboxBaseURL is the Clover sandbox API host.
	SandboxBaseURL = "https://apisandbox.dev.clover.com"

	bulkListLimit = 1000
)

// Config configures a Clover client.
type Config struct {
	AccessToken string
	Sandbox     bool
	// BaseURL overrides the environment-derived host, mainly for tests.
	BaseURL string
}

// Client talks to the Clover REST API on behalf of one merchant.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	accessToken string
}

// NewClient constructs a Clover client with sane defaults.
func NewClient(cfg Config) *Client {
	base := cfg.BaseURL
	if base == "" {
		if cfg.Sandbox {
			base = SandboxBaseURL
		} else {
			base = ProductionBaseURL
		}
	}
	return &Client{
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		baseURL:     base,
		accessToken: cfg.AccessToken,
	}
}

// GetMerchant resolves the merchant that owns the access token.
func (c *Client) GetMerchant(ctx context.Context) (*Merchant, error) {
	var m Merchant
	if err := c.get(ctx, "/v3/merchants/me", &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// ListItems fetches the merchant's inventory items as one bulk list with
// categories and stock expanded.
func (c *Client) ListItems(ctx context.Context, merchantID string) ([]Item, error) {
	endpoint := fmt.Sprintf("/v3/merchants/%s/items?expand=categories,itemStock&limit=%d", merchantID, bulkListLimit)
	var resp listItemsResponse
	if err := c.get(ctx, endpoint, &resp); err != nil {
		return nil, err
	}
	return resp.Elements, nil
}

func (c *Client) get(ctx context.Context, endpoint string, result any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint, nil)
	if err != nil {
		return fmt.Errorf("clover: failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("clover: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("clover: failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &posapi.APIError{
			Provider:   "clover",
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Body:       string(body),
		}
	}

	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("clover: failed to decode response: %w", err)
	}
	return nil
}
