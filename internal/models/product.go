package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductSyncStatus records the outcome of the last sync touch on a product.
type ProductSyncStatus string

const (
	ProductSynced    ProductSyncStatus = "synced"
	ProductSyncError ProductSyncStatus = "error"
)

// Product is the canonical representation of one POS catalog item (or item
// variant), independent of the source provider.
//
// (IntegrationID, ExternalProductID, ExternalVariantID) is the idempotency
// key: repeated syncs update the same row rather than appending. Products are
// never deleted by sync, only deactivated.
type Product struct {
	ID                int64             `db:"id" json:"id"`
	MerchantID        string            `db:"merchant_id" json:"merchantId"`
	IntegrationID     string            `db:"integration_id" json:"integrationId"`
	ExternalProductID string            `db:"external_product_id" json:"externalProductId"`
	ExternalVariantID *string           `db:"external_variant_id" json:"externalVariantId,omitempty"`
	Name              string            `db:"name" json:"name"`
	Description       string            `db:"description" json:"description"`
	CategoryID        int               `db:"category_id" json:"categoryId"`
	Price             decimal.Decimal   `db:"price" json:"price"`
	Currency          string            `db:"currency" json:"currency"`
	StockQuantity     int               `db:"stock_quantity" json:"stockQuantity"`
	SKU               *string           `db:"sku" json:"sku,omitempty"`
	Barcode           *string           `db:"barcode" json:"barcode,omitempty"`
	BarterEnabled     bool              `db:"barter_enabled" json:"barterEnabled"`
	ImageURL          *string           `db:"image_url" json:"imageUrl,omitempty"`
	IsActive          bool              `db:"is_active" json:"isActive"`
	SyncStatus        ProductSyncStatus `db:"sync_status" json:"syncStatus"`
	LastSyncedAt      *time.Time        `db:"last_synced_at" json:"lastSyncedAt,omitempty"`
	Metadata          Metadata          `db:"metadata" json:"metadata,omitempty"`
	CreatedAt         time.Time         `db:"created_at" json:"-"`
	UpdatedAt         time.Time         `db:"updated_at" json:"updatedAt"`
}
