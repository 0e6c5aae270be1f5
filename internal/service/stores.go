package service

import (
	"database/sql"
	"time"

	"github.com/barterly/pos-sync/internal/models"
)

// The repository types in internal/repository satisfy these interfaces;
// services depend on the interfaces so they can be exercised with in-memory
// fakes.

// IntegrationStore is the persistence surface for POS integrations.
type IntegrationStore interface {
	GetByIDForMerchant(id, merchantID string) (*models.POSIntegration, error)
	UpdateMerchantIdentifier(id, merchantIdentifier string) error
	UpdateLastSyncAt(id string, t time.Time) error
	UpdateTokens(id string, encAccessToken string, encRefreshToken *string, expiresAt *time.Time) error
}

// ProductStore is the keyed upsert surface adapters write through.
type ProductStore interface {
	Upsert(p *models.Product) error
}

// ProductMaintainer is the post-sync maintenance surface: deactivating rows
// a full sync no longer saw, and sizing the catalog for the completion log.
type ProductMaintainer interface {
	CountByIntegration(integrationID string) (int, error)
	DeactivateMissing(integrationID string, syncedBefore sql.NullTime) error
}

// CategoryStore is the read-only category reference table.
type CategoryStore interface {
	GetByNameOrSlug(label string) (*models.Category, error)
	GetBySlug(slug string) (*models.Category, error)
}

// ProgressStore is the persistence surface for sync progress records.
type ProgressStore interface {
	Create(p *models.SyncProgress) error
	Update(p *models.SyncProgress) error
	GetByID(id string) (*models.SyncProgress, error)
}

// TokenCipher encrypts and decrypts stored POS credentials.
type TokenCipher interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}
