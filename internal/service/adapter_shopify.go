package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/barterly/pos-sync/internal/models"
	"github.com/barterly/pos-sync/pkg/shopify"
)

// shopifyDefaultVariant is Shopify's title for the implicit variant of a
// product with no real options; it is never appended to the display name.
const shopifyDefaultVariant = "Default Title"

// ShopifyAdapter syncs Shopify catalogs. Shopify paginates with Link-header
// cursors, models variants explicitly, and returns prices as decimal strings.
type ShopifyAdapter struct {
	products ProductStore
	mapper   *CategoryMapper
	reporter *ProgressReporter

	// BaseURL overrides the shop-derived host, for tests.
	BaseURL string
}

// NewShopifyAdapter creates a ShopifyAdapter.
func NewShopifyAdapter(products ProductStore, mapper *CategoryMapper, reporter *ProgressReporter) *ShopifyAdapter {
	return &ShopifyAdapter{products: products, mapper: mapper, reporter: reporter}
}

// Provider implements POSAdapter.
func (a *ShopifyAdapter) Provider() models.Provider {
	return models.ProviderShopify
}

// Sync implements POSAdapter.
func (a *ShopifyAdapter) Sync(ctx context.Context, creds Credentials, integ *models.POSIntegration, progressID string) (*SyncOutcome, error) {
	if creds.StoreIdentifier == "" && a.BaseURL == "" {
		return nil, fmt.Errorf("%w: shopify integration has no store identifier", ErrMissingConfig)
	}

	client := shopify.NewClient(shopify.Config{
		ShopDomain:  creds.StoreIdentifier,
		AccessToken: creds.AccessToken,
		BaseURL:     a.BaseURL,
	})

	tracker := newSyncTracker(ctx, a.reporter, progressID, integ.ID)
	tracker.step(ctx, "fetching products")

	prods, err := client.ListProducts(ctx)
	if err != nil {
		return nil, err
	}

	total := 0
	for _, p := range prods {
		if len(p.Variants) == 0 {
			total++
			continue
		}
		total += len(p.Variants)
	}
	tracker.begin(ctx, total, "processing products")

	for _, p := range prods {
		if len(p.Variants) == 0 {
			tracker.itemSkipped(ctx, p.Title, errors.New("product has no variants"))
			continue
		}
		for i := range p.Variants {
			product, err := a.buildProduct(integ, p, p.Variants[i])
			if err != nil {
				tracker.itemSkipped(ctx, p.Title, err)
				continue
			}
			if err := a.products.Upsert(product); err != nil {
				tracker.itemSkipped(ctx, product.Name, err)
				continue
			}
			tracker.itemSynced(ctx, product.Name)
		}
	}

	return tracker.result(), nil
}

func (a *ShopifyAdapter) buildProduct(integ *models.POSIntegration, p shopify.Product, v shopify.Variant) (*models.Product, error) {
	if p.Title == "" {
		return nil, errors.New("product has no title")
	}

	name := p.Title
	if v.Title != "" && v.Title != shopifyDefaultVariant {
		name = name + " - " + v.Title
	}

	price, err := decimal.NewFromString(v.Price)
	if err != nil {
		return nil, fmt.Errorf("unparseable price %q: %w", v.Price, err)
	}
	if price.IsNegative() {
		return nil, errors.New("variant has a negative price")
	}

	match, err := a.mapper.Map(p.ProductType, p.Title, p.BodyHTML)
	if err != nil {
		return nil, err
	}

	externalID := fmt.Sprintf("%d", p.ID)
	variantID := fmt.Sprintf("%d", v.ID)

	var sku, barcode *string
	if v.SKU != "" {
		sku = &v.SKU
	}
	if v.Barcode != "" {
		barcode = &v.Barcode
	}

	var imageURL *string
	if p.Image != nil && p.Image.Src != "" {
		imageURL = &p.Image.Src
	}

	stock := v.InventoryQuantity
	if stock < 0 {
		stock = 0
	}

	now := time.Now().UTC()
	return &models.Product{
		MerchantID:        integ.MerchantID,
		IntegrationID:     integ.ID,
		ExternalProductID: externalID,
		ExternalVariantID: &variantID,
		Name:              name,
		Description:       p.BodyHTML,
		CategoryID:        match.CategoryID,
		Price:             price,
		Currency:          "USD",
		StockQuantity:     stock,
		SKU:               sku,
		Barcode:           barcode,
		BarterEnabled:     !match.IsRestricted,
		ImageURL:          imageURL,
		IsActive:          p.Status == "active",
		SyncStatus:        models.ProductSynced,
		LastSyncedAt:      &now,
		Metadata: models.Metadata{
			"vendor":        p.Vendor,
			"product_type":  p.ProductType,
			"handle":        p.Handle,
			"tags":          p.Tags,
			"matched_label": match.MatchedLabel,
		},
	}, nil
}
