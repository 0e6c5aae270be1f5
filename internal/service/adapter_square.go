package service

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/barterly/pos-sync/internal/models"
	"github.com/barterly/pos-sync/pkg/square"
)

// squareDefaultVariation is Square's name for the implicit variation of an
// item with no real variants; it is never appended to the display name.
const squareDefaultVariation = "Regular"

// SquareAdapter syncs Square catalogs. Square returns the catalog as one
// bulk list (internally cursor-drained) with integer-cent prices and no
// inventory counts on the catalog endpoint, so stock is always zero.
type SquareAdapter struct {
	products ProductStore
	mapper   *CategoryMapper
	reporter *ProgressReporter

	// BaseURL overrides the Square host, for tests.
	BaseURL string
}

// NewSquareAdapter creates a SquareAdapter.
func NewSquareAdapter(products ProductStore, mapper *CategoryMapper, reporter *ProgressReporter) *SquareAdapter {
	return &SquareAdapter{products: products, mapper: mapper, reporter: reporter}
}

// Provider implements POSAdapter.
func (a *SquareAdapter) Provider() models.Provider {
	return models.ProviderSquare
}

// Sync implements POSAdapter.
func (a *SquareAdapter) Sync(ctx context.Context, creds Credentials, integ *models.POSIntegration, progressID string) (*SyncOutcome, error) {
	client := square.NewClient(square.Config{
		AccessToken: creds.AccessToken,
		Sandbox:     creds.Sandbox(),
		BaseURL:     a.BaseURL,
	})

	tracker := newSyncTracker(ctx, a.reporter, progressID, integ.ID)
	tracker.step(ctx, "fetching catalog")

	items, err := client.ListCatalogItems(ctx)
	if err != nil {
		return nil, err
	}

	total := 0
	for _, item := range items {
		if item.ItemData == nil || len(item.ItemData.Variations) == 0 {
			total++
			continue
		}
		total += len(item.ItemData.Variations)
	}
	tracker.begin(ctx, total, "processing items")

	for _, item := range items {
		if item.ItemData == nil {
			tracker.itemSkipped(ctx, item.ID, errors.New("catalog object has no item data"))
			continue
		}

		if len(item.ItemData.Variations) == 0 {
			a.processRow(ctx, tracker, integ, item, nil)
			continue
		}
		for i := range item.ItemData.Variations {
			a.processRow(ctx, tracker, integ, item, &item.ItemData.Variations[i])
		}
	}

	return tracker.result(), nil
}

func (a *SquareAdapter) processRow(ctx context.Context, tracker *syncTracker, integ *models.POSIntegration, item square.CatalogObject, variation *square.CatalogVariation) {
	name := item.ItemData.Name
	product, err := a.buildProduct(integ, item, variation)
	if err != nil {
		tracker.itemSkipped(ctx, name, err)
		return
	}
	if err := a.products.Upsert(product); err != nil {
		tracker.itemSkipped(ctx, product.Name, err)
		return
	}
	tracker.itemSynced(ctx, product.Name)
}

func (a *SquareAdapter) buildProduct(integ *models.POSIntegration, item square.CatalogObject, variation *square.CatalogVariation) (*models.Product, error) {
	data := item.ItemData
	if data.Name == "" {
		return nil, errors.New("item has no name")
	}

	name := data.Name
	var variantID *string
	var sku, barcode *string
	priceMoney := data.PriceMoney

	if variation != nil {
		vid := variation.ID
		variantID = &vid
		vd := variation.ItemVariationData
		if vd != nil {
			if vd.Name != "" && vd.Name != squareDefaultVariation {
				name = name + " - " + vd.Name
			}
			if vd.SKU != "" {
				sku = &vd.SKU
			}
			if vd.UPC != "" {
				barcode = &vd.UPC
			}
			if vd.PriceMoney != nil {
				priceMoney = vd.PriceMoney
			}
		}
	}

	price := decimal.Zero
	currency := "USD"
	if priceMoney != nil {
		if priceMoney.Amount < 0 {
			return nil, errors.New("item has a negative price")
		}
		// Square prices are integer cents.
		price = decimal.New(priceMoney.Amount, -2)
		if priceMoney.Currency != "" {
			currency = priceMoney.Currency
		}
	}

	match, err := a.mapper.Map("", data.Name, data.Description)
	if err != nil {
		return nil, err
	}

	var imageURL *string
	if data.ImageURL != "" {
		imageURL = &data.ImageURL
	}

	now := time.Now().UTC()
	return &models.Product{
		MerchantID:        integ.MerchantID,
		IntegrationID:     integ.ID,
		ExternalProductID: item.ID,
		ExternalVariantID: variantID,
		Name:              name,
		Description:       data.Description,
		CategoryID:        match.CategoryID,
		Price:             price,
		Currency:          currency,
		// The catalog endpoint does not expose inventory counts.
		StockQuantity: 0,
		SKU:           sku,
		Barcode:       barcode,
		BarterEnabled: !match.IsRestricted,
		ImageURL:      imageURL,
		IsActive:      !item.IsDeleted,
		SyncStatus:    models.ProductSynced,
		LastSyncedAt:  &now,
		Metadata: models.Metadata{
			"square_category_id": data.CategoryID,
			"matched_label":      match.MatchedLabel,
		},
	}, nil
}
