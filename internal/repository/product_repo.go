package repository

import (
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/barterly/pos-sync/internal/models"
)

// ProductRepository handles data access for canonical products.
type ProductRepository struct {
	db *sqlx.DB
}

// NewProductRepository creates a new ProductRepository.
func NewProductRepository(db *sqlx.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// Upsert inserts a canonical product or updates the existing row with the
// same (integration_id, external_product_id, external_variant_id) key.
// Repeated syncs of an unchanged catalog therefore converge on identical
// rows instead of appending.
func (r *ProductRepository) Upsert(p *models.Product) error {
	const q = `
        INSERT INTO products (
            merchant_id, integration_id, external_product_id, external_variant_id,
            name, description, category_id, price, currency, stock_quantity,
            sku, barcode, barter_enabled, image_url, is_active, sync_status,
            last_synced_at, metadata
        )
        VALUES (
            :merchant_id, :integration_id, :external_product_id, :external_variant_id,
            :name, :description, :category_id, :price, :currency, :stock_quantity,
            :sku, :barcode, :barter_enabled, :image_url, :is_active, :sync_status,
            :last_synced_at, :metadata
        )
        ON CONFLICT (integration_id, external_product_id, (COALESCE(external_variant_id, ''))) DO UPDATE SET
            name = EXCLUDED.name,
            description = EXCLUDED.description,
            category_id = EXCLUDED.category_id,
            price = EXCLUDED.price,
            currency = EXCLUDED.currency,
            stock_quantity = EXCLUDED.stock_quantity,
            sku = EXCLUDED.sku,
            barcode = EXCLUDED.barcode,
            barter_enabled = EXCLUDED.barter_enabled,
            image_url = EXCLUDED.image_url,
            is_active = EXCLUDED.is_active,
            sync_status = EXCLUDED.sync_status,
            last_synced_at = EXCLUDED.last_synced_at,
            metadata = EXCLUDED.metadata,
            updated_at = NOW()`

	_, err := r.db.NamedExec(q, p)
	return err
}

// CountByIntegration returns how many canonical rows an integration owns.
func (r *ProductRepository) CountByIntegration(integrationID string) (int, error) {
	const q = `SELECT COUNT(1) FROM products WHERE integration_id = $1`

	var n int
	if err := r.db.Get(&n, q, integrationID); err != nil {
		return 0, err
	}
	return n, nil
}

// DeactivateMissing flags products of an integration that were not touched
// by the given sync run. Sync never deletes rows, only deactivates them.
func (r *ProductRepository) DeactivateMissing(integrationID string, syncedBefore sql.NullTime) error {
	const q = `
        UPDATE products
        SET is_active = false, updated_at = NOW()
        WHERE integration_id = $1
          AND (last_synced_at IS NULL OR last_synced_at < $2)`
	_, err := r.db.Exec(q, integrationID, syncedBefore)
	return err
}
