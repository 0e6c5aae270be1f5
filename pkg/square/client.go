// Package square is a minimal HTTP client for the Square Catalog API.
package square

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/barterly/pos-sync/pkg/posapi"
)

const (
	// ProductionBaseURL is the Square production API host.
	ProductionBaseURL = "https://connect.squareup.com"
	// SandboxBaseURL is the Square sandbox API host.
	SandboxBaseURL = "https://connect.squareupsandbox.com"

	apiVersion = "2024-01-18"
)

// Config configures a Square client.
type Config struct {
	AccessToken string
	Sandbox     bool
	// BaseURL overrides the environment-derived host, mainly for tests.
	BaseURL string
}

// Client talks to the Square REST API on behalf of one merchant.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	accessToken string
}

// NewClient constructs a Square client with sane defaults.
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

// ListCatalogItems fetches the merchant's full catalog of ITEM objects,
// draining the list cursor until Square signals no further pages.
func (c *Client) ListCatalogItems(ctx context.Context) ([]CatalogObject, error) {
	var items []CatalogObject
	cursor := ""
	for {
		page, next, err := c.listCatalogPage(ctx, cursor)
		if err != nil {
			return nil, err
		}
		for _, obj := range page {
			if obj.Type == "ITEM" && !obj.IsDeleted {
				items = append(items, obj)
			}
		}
		if next == "" {
			return items, nil
		}
		cursor = next
	}
}

func (c *Client) listCatalogPage(ctx context.Context, cursor string) ([]CatalogObject, string, error) {
	q := url.Values{}
	q.Set("types", "ITEM")
	if cursor != "" {
		q.Set("cursor", cursor)
	}
	endpoint := "/v2/catalog/list?" + q.Encode()

	var resp listCatalogResponse
	if err := c.get(ctx, endpoint, &resp); err != nil {
		return nil, "", err
	}
	return resp.Objects, resp.Cursor, nil
}

func (c *Client) get(ctx context.Context, endpoint string, result any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint, nil)
	if err != nil {
		return fmt.Errorf("square: failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Square-Version", apiVersion)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("square: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("square: failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &posapi.APIError{
			Provider:   "square",
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Body:       string(body),
		}
	}

	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("square: failed to decode response: %w", err)
	}
	return nil
}
