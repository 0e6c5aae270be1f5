package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/barterly/pos-sync/internal/models"
	"github.com/barterly/pos-sync/pkg/clover"
)

// CloverAdapter syncs Clover inventories. Clover models items flat with
// integer-cent prices. The merchant id is resolved via /v3/merchants/me on
// first run and persisted onto the integration for future runs.
type CloverAdapter struct {
	products     ProductStore
	integrations IntegrationStore
	mapper       *CategoryMapper
	reporter     *ProgressReporter

	// BaseURL overrides the Clover host, for tests.
	BaseURL string
}

// NewCloverAdapter creates a CloverAdapter.
func NewCloverAdapter(products ProductStore, integrations IntegrationStore, mapper *CategoryMapper, reporter *ProgressReporter) *CloverAdapter {
	return &CloverAdapter{products: products, integrations: integrations, mapper: mapper, reporter: reporter}
}

// Provider implements POSAdapter.
func (a *CloverAdapter) Provider() models.Provider {
	return models.ProviderClover
}

// Sync implements POSAdapter.
func (a *CloverAdapter) Sync(ctx context.Context, creds Credentials, integ *models.POSIntegration, progressID string) (*SyncOutcome, error) {
	client := clover.NewClient(clover.Config{
		AccessToken: creds.AccessToken,
		Sandbox:     creds.Sandbox(),
		BaseURL:     a.BaseURL,
	})

	tracker := newSyncTracker(ctx, a.reporter, progressID, integ.ID)

	merchantID := creds.MerchantIdentifier
	if merchantID == "" {
		tracker.step(ctx, "resolving merchant")
		m, err := client.GetMerchant(ctx)
		if err != nil {
			return nil, err
		}
		merchantID = m.ID
		// Persisting the discovered id saves the lookup on future runs;
		// failure to persist does not block this one.
		if err := a.integrations.UpdateMerchantIdentifier(integ.ID, merchantID); err != nil {
			log.Warn().
				Err(err).
				Str("integration_id", integ.ID).
				Msg("Failed to persist Clover merchant id")
		}
	}

	tracker.step(ctx, "fetching inventory")
	items, err := client.ListItems(ctx, merchantID)
	if err != nil {
		return nil, err
	}

	tracker.begin(ctx, len(items), "processing items")

	for _, item := range items {
		product, err := a.buildProduct(integ, item)
		if err != nil {
			tracker.itemSkipped(ctx, item.Name, err)
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

func (a *CloverAdapter) buildProduct(integ *models.POSIntegration, item clover.Item) (*models.Product, error) {
	if item.Name == "" {
		return nil, errors.New("item has no name")
	}
	if item.Price < 0 {
		return nil, errors.New("item has a negative price")
	}

	categoryLabel := ""
	if names := item.CategoryNames(); len(names) > 0 {
		categoryLabel = names[0]
	}

	match, err := a.mapper.Map(categoryLabel, item.Name, item.AlternateName)
	if err != nil {
		return nil, err
	}

	var sku, barcode *string
	if item.SKU != "" {
		sku = &item.SKU
	}
	if item.Code != "" {
		barcode = &item.Code
	}

	stock := 0
	if item.ItemStock != nil {
		stock = int(item.ItemStock.Quantity)
	}

	now := time.Now().UTC()
	return &models.Product{
		MerchantID:        integ.MerchantID,
		IntegrationID:     integ.ID,
		ExternalProductID: item.ID,
		ExternalVariantID: nil,
		Name:              item.Name,
		Description:       item.AlternateName,
		CategoryID:        match.CategoryID,
		// Clover prices are integer cents.
		Price:         decimal.New(item.Price, -2),
		Currency:      "USD",
		StockQuantity: stock,
		SKU:           sku,
		Barcode:       barcode,
		BarterEnabled: !match.IsRestricted,
		IsActive:      !item.Hidden && item.Available,
		SyncStatus:    models.ProductSynced,
		LastSyncedAt:  &now,
		Metadata: models.Metadata{
			"price_type":    item.PriceType,
			"categories":    strings.Join(item.CategoryNames(), ", "),
			"matched_label": match.MatchedLabel,
		},
	}, nil
}
