package repository

import (
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/barterly/pos-sync/internal/models"
)

// IntegrationRepository handles data access for POS integrations.
type IntegrationRepository struct {
	db *sqlx.DB
}

// NewIntegrationRepository creates a new IntegrationRepository.
func NewIntegrationRepository(db *sqlx.DB) *IntegrationRepository {
	return &IntegrationRepository{db: db}
}

// GetByIDForMerchant returns the integration only when it belongs to the
// given merchant. sql.ErrNoRows doubles as the not-found signal so callers
// cannot distinguish "someone else's integration" from "no integration".
func (r *IntegrationRepository) GetByIDForMerchant(id, merchantID string) (*models.POSIntegration, error) {
	const q = `SELECT * FROM pos_integrations WHERE id = $1 AND merchant_id = $2 LIMIT 1`

	var integ models.POSIntegration
	if err := r.db.Get(&integ, q, id, merchantID); err != nil {
		if err == sql.ErrNoRows {
			return nil, sql.ErrNoRows
		}
		return nil, err
	}
	return &integ, nil
}

// ListByMerchant returns all integrations owned by a merchant.
func (r *IntegrationRepository) ListByMerchant(merchantID string) ([]models.POSIntegration, error) {
	const q = `SELECT * FROM pos_integrations WHERE merchant_id = $1 ORDER BY created_at`

	var integs []models.POSIntegration
	if err := r.db.Select(&integs, q, merchantID); err != nil {
		return nil, err
	}
	return integs, nil
}

// ListActive returns every active integration across merchants. Used by the
// background catalog sync worker.
func (r *IntegrationRepository) ListActive() ([]models.POSIntegration, error) {
	const q = `SELECT * FROM pos_integrations WHERE status = 'active' ORDER BY created_at`

	var integs []models.POSIntegration
	if err := r.db.Select(&integs, q); err != nil {
		return nil, err
	}
	return integs, nil
}

// UpdateMerchantIdentifier persists a provider-side merchant id discovered
// during sync (e.g. Clover's /v3/merchants/me lookup) so future runs skip
// the lookup.
func (r *IntegrationRepository) UpdateMerchantIdentifier(id, merchantIdentifier string) error {
	const q = `UPDATE pos_integrations SET merchant_identifier = $2, updated_at = NOW() WHERE id = $1`
	_, err := r.db.Exec(q, id, merchantIdentifier)
	return err
}

// UpdateLastSyncAt records a successful sync completion time.
func (r *IntegrationRepository) UpdateLastSyncAt(id string, t time.Time) error {
	const q = `UPDATE pos_integrations SET last_sync_at = $2, updated_at = NOW() WHERE id = $1`
	_, err := r.db.Exec(q, id, t)
	return err
}

// UpdateTokens stores rotated, already-encrypted tokens. The single UPDATE
// is atomic: either every token field changes or none does, so a failed
// persist never leaves a half-rotated credential set.
func (r *IntegrationRepository) UpdateTokens(id string, encAccessToken string, encRefreshToken *string, expiresAt *time.Time) error {
	const q = `
        UPDATE pos_integrations
        SET access_token = $2,
            refresh_token = COALESCE($3, refresh_token),
            token_expires_at = $4,
            updated_at = NOW()
        WHERE id = $1`
	_, err := r.db.Exec(q, id, encAccessToken, encRefreshToken, expiresAt)
	return err
}
