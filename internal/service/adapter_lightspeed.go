package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/barterly/pos-sync/internal/models"
	"github.com/barterly/pos-sync/pkg/lightspeed"
)

// LightspeedAdapter syncs Lightspeed retail catalogs. Lightspeed paginates
// with page + page_size and returns prices as decimal strings.
type LightspeedAdapter struct {
	products ProductStore
	mapper   *CategoryMapper
	reporter *ProgressReporter

	// BaseURL overrides the account-derived host, for tests.
	BaseURL string
}

// NewLightspeedAdapter creates a LightspeedAdapter.
func NewLightspeedAdapter(products ProductStore, mapper *CategoryMapper, reporter *ProgressReporter) *LightspeedAdapter {
	return &LightspeedAdapter{products: products, mapper: mapper, reporter: reporter}
}

// Provider implements POSAdapter.
func (a *LightspeedAdapter) Provider() models.Provider {
	return models.ProviderLightspeed
}

// Sync implements POSAdapter.
func (a *LightspeedAdapter) Sync(ctx context.Context, creds Credentials, integ *models.POSIntegration, progressID string) (*SyncOutcome, error) {
	if creds.StoreIdentifier == "" && a.BaseURL == "" {
		return nil, fmt.Errorf("%w: lightspeed integration has no account domain", ErrMissingConfig)
	}

	client := lightspeed.NewClient(lightspeed.Config{
		AccountDomain: creds.StoreIdentifier,
		AccessToken:   creds.AccessToken,
		BaseURL:       a.BaseURL,
	})

	tracker := newSyncTracker(ctx, a.reporter, progressID, integ.ID)
	tracker.step(ctx, "fetching catalog")

	prods, err := client.ListProducts(ctx)
	if err != nil {
		return nil, err
	}

	tracker.begin(ctx, len(prods), "processing products")

	for _, p := range prods {
		product, err := a.buildProduct(integ, p)
		if err != nil {
			tracker.itemSkipped(ctx, p.Name, err)
			continue
		}
		if err := a.products.Upsert(product); err != nil {
			tracker.itemSkipped(ctx, product.Name, err)
			continue
		}
		tracker.itemSynced(ctx, product.Name)
	}

	return tracker.result(), nil
}

func (a *LightspeedAdapter) buildProduct(integ *models.POSIntegration, p lightspeed.Product) (*models.Product, error) {
	if p.Name == "" {
		return nil, errors.New("product has no name")
	}

	price, err := decimal.NewFromString(p.Price)
	if err != nil {
		return nil, fmt.Errorf("unparseable price %q: %w", p.Price, err)
	}
	if price.IsNegative() {
		return nil, errors.New("product has a negative price")
	}

	match, err := a.mapper.Map(p.Category, p.Name, p.Description)
	if err != nil {
		return nil, err
	}

	currency := p.Currency
	if currency == "" {
		currency = "USD"
	}

	var sku, barcode, imageURL *string
	if p.SKU != "" {
		sku = &p.SKU
	}
	if p.Barcode != "" {
		barcode = &p.Barcode
	}
	if p.ImageURL != "" {
		imageURL = &p.ImageURL
	}

	now := time.Now().UTC()
	return &models.Product{
		MerchantID:        integ.MerchantID,
		IntegrationID:     integ.ID,
		ExternalProductID: p.ID,
		ExternalVariantID: nil,
		Name:              p.Name,
		Description:       p.Description,
		CategoryID:        match.CategoryID,
		Price:             price,
		Currency:          currency,
		StockQuantity:     p.Stock,
		SKU:               sku,
		Barcode:           barcode,
		BarterEnabled:     !match.IsRestricted,
		ImageURL:          imageURL,
		IsActive:          p.Active,
		SyncStatus:        models.ProductSynced,
		LastSyncedAt:      &now,
		Metadata: models.Metadata{
			"brand":         p.Brand,
			"supplier":      p.Supplier,
			"matched_label": match.MatchedLabel,
		},
	}, nil
}
