package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/barterly/pos-sync/internal/models"
)

func newShopifyFixture(t *testing.T, handler http.HandlerFunc) (*ShopifyAdapter, *fakeProductStore) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	products := newFakeProductStore()
	adapter := NewShopifyAdapter(products, NewCategoryMapper(newFakeCategoryStore()), NewProgressReporter(newFakeProgressStore(), nil))
	adapter.BaseURL = server.URL
	return adapter, products
}

func TestShopifySyncVariantsBecomeSeparateProducts(t *testing.T) {
	adapter, products := newShopifyFixture(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "shp-token", r.Header.Get("X-Shopify-Access-Token"))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"products": []map[string]any{
				{
					"id": 101, "title": "Hoodie", "body_html": "warm hoodie",
					"product_type": "Apparel", "vendor": "Acme", "status": "active",
					"variants": []map[string]any{
						{"id": 1001, "title": "Small", "price": "39.99", "sku": "HD-S", "inventory_quantity": 4},
						{"id": 1002, "title": "Large", "price": "44.99", "sku": "HD-L", "inventory_quantity": 2},
					},
				},
			},
		})
	})

	integ := testIntegration(models.ProviderShopify)
	outcome, err := adapter.Sync(context.Background(), Credentials{AccessToken: "shp-token", StoreIdentifier: "acme"}, integ, "prog-1")
	require.NoError(t, err)
	assert.Equal(t, 2, outcome.Synced)

	small := products.byName("Hoodie - Small")
	require.NotNil(t, small)
	assert.Equal(t, "39.99", small.Price.StringFixed(2))
	assert.Equal(t, "101", small.ExternalProductID)
	require.NotNil(t, small.ExternalVariantID)
	assert.Equal(t, "1001", *small.ExternalVariantID)
	assert.Equal(t, 4, small.StockQuantity)
	assert.True(t, small.IsActive)
}

func TestShopifySyncDefaultTitleKeepsProductName(t *testing.T) {
	adapter, products := newShopifyFixture(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"products": []map[string]any{
				{
					"id": 102, "title": "Tote Bag", "status": "active",
					"variants": []map[string]any{
						{"id": 2001, "title": "Default Title", "price": "12.00", "inventory_quantity": 10},
					},
				},
			},
		})
	})

	integ := testIntegration(models.ProviderShopify)
	_, err := adapter.Sync(context.Background(), Credentials{AccessToken: "shp-token", StoreIdentifier: "acme"}, integ, "prog-1")
	require.NoError(t, err)

	p := products.byName("Tote Bag")
	require.NotNil(t, p)
	assert.Equal(t, "12.00", p.Price.StringFixed(2))
}

func TestShopifySyncFollowsLinkHeader(t *testing.T) {
	var serverURL string
	call := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		call++
		if call == 1 {
			w.Header().Set("Link", fmt.Sprintf(`<%s/admin/api/2024-01/products.json?limit=250&page_info=abc>; rel="next"`, serverURL))
			_ = json.NewEncoder(w).Encode(map[string]any{
				"products": []map[string]any{
					{"id": 1, "title": "First", "status": "active", "variants": []map[string]any{
						{"id": 11, "title": "Default Title", "price": "1.00"},
					}},
				},
			})
			return
		}
		assert.Equal(t, "abc", r.URL.Query().Get("page_info"))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"products": []map[string]any{
				{"id": 2, "title": "Second", "status": "active", "variants": []map[string]any{
					{"id": 22, "title": "Default Title", "price": "2.00"},
				}},
			},
		})
	}))
	t.Cleanup(server.Close)
	serverURL = server.URL

	products := newFakeProductStore()
	adapter := NewShopifyAdapter(products, NewCategoryMapper(newFakeCategoryStore()), NewProgressReporter(newFakeProgressStore(), nil))
	adapter.BaseURL = server.URL

	integ := testIntegration(models.ProviderShopify)
	outcome, err := adapter.Sync(context.Background(), Credentials{AccessToken: "shp-token", StoreIdentifier: "acme"}, integ, "prog-1")
	require.NoError(t, err)

	assert.Equal(t, 2, call)
	assert.Equal(t, 2, outcome.Synced)
	assert.NotNil(t, products.byName("First"))
	assert.NotNil(t, products.byName("Second"))
}

func TestShopifySyncNegativeInventoryClampsToZero(t *testing.T) {
	adapter, products := newShopifyFixture(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"products": []map[string]any{
				{
					"id": 103, "title": "Oversold", "status": "active",
					"variants": []map[string]any{
						{"id": 3001, "title": "Default Title", "price": "5.00", "inventory_quantity": -3},
					},
				},
			},
		})
	})

	integ := testIntegration(models.ProviderShopify)
	_, err := adapter.Sync(context.Background(), Credentials{AccessToken: "shp-token", StoreIdentifier: "acme"}, integ, "prog-1")
	require.NoError(t, err)

	p := products.byName("Oversold")
	require.NotNil(t, p)
	assert.Zero(t, p.StockQuantity)
}

func TestShopifySyncDraftProductInactive(t *testing.T) {
	adapter, products := newShopifyFixture(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"products": []map[string]any{
				{
					"id": 104, "title": "Unreleased", "status": "draft",
					"variants": []map[string]any{
						{"id": 4001, "title": "Default Title", "price": "9.99"},
					},
				},
			},
		})
	})

	integ := testIntegration(models.ProviderShopify)
	_, err := adapter.Sync(context.Background(), Credentials{AccessToken: "shp-token", StoreIdentifier: "acme"}, integ, "prog-1")
	require.NoError(t, err)

	p := products.byName("Unreleased")
	require.NotNil(t, p)
	assert.False(t, p.IsActive)
}

func TestShopifySyncBadPriceIsPerItemError(t *testing.T) {
	adapter, _ := newShopifyFixture(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"products": []map[string]any{
				{
					"id": 105, "title": "Corrupt", "status": "active",
					"variants": []map[string]any{
						{"id": 5001, "title": "Default Title", "price": "not-a-number"},
					},
				},
				{
					"id": 106, "title": "Healthy", "status": "active",
					"variants": []map[string]any{
						{"id": 6001, "title": "Default Title", "price": "3.50"},
					},
				},
			},
		})
	})

	integ := testIntegration(models.ProviderShopify)
	outcome, err := adapter.Sync(context.Background(), Credentials{AccessToken: "shp-token", StoreIdentifier: "acme"}, integ, "prog-1")
	require.NoError(t, err)

	assert.Equal(t, 1, outcome.Synced)
	assert.Equal(t, 1, outcome.Skipped)
	require.Len(t, outcome.Errors, 1)
	assert.Contains(t, outcome.Errors[0], "Corrupt")
}

func TestShopifySyncMissingStoreIdentifier(t *testing.T) {
	products := newFakeProductStore()
	adapter := NewShopifyAdapter(products, NewCategoryMapper(newFakeCategoryStore()), NewProgressReporter(newFakeProgressStore(), nil))

	integ := testIntegration(models.ProviderShopify)
	_, err := adapter.Sync(context.Background(), Credentials{AccessToken: "shp-token"}, integ, "prog-1")
	require.ErrorIs(t, err, ErrMissingConfig)
}
