package models

import "time"

// Provider identifies the point-of-sale provider an integration belongs to.
type Provider string

const (
	ProviderSquare     Provider = "square"
	ProviderShopify    Provider = "shopify"
	ProviderClover     Provider = "clover"
	ProviderLightspeed Provider = "lightspeed"
	ProviderToast      Provider = "toast"
)

// IntegrationStatus enumerates the lifecycle states of a POS integration.
type IntegrationStatus string

const (
	IntegrationActive       IntegrationStatus = "active"
	IntegrationDisconnected IntegrationStatus = "disconnected"
	IntegrationError        IntegrationStatus = "error"
)

// Environment selects the provider environment an integration talks to.
const (
	EnvProduction = "production"
	EnvSandbox    = "sandbox"
)

// POSIntegration represents a merchant's connection to one POS provider.
// Access and refresh tokens are stored encrypted; this service only ever
// reads and updates integrations, creation and deletion happen at
// OAuth-connect / disconnect time outside this service.
type POSIntegration struct {
	ID                 string            `db:"id" json:"id"`
	MerchantID         string            `db:"merchant_id" json:"merchantId"`
	Provider           Provider          `db:"provider" json:"provider"`
	AccessToken        string            `db:"access_token" json:"-"`
	RefreshToken       *string           `db:"refresh_token" json:"-"`
	TokenExpiresAt     *time.Time        `db:"token_expires_at" json:"tokenExpiresAt,omitempty"`
	StoreIdentifier    *string           `db:"store_identifier" json:"storeIdentifier,omitempty"`
	MerchantIdentifier *string           `db:"merchant_identifier" json:"merchantIdentifier,omitempty"`
	Environment        string            `db:"environment" json:"environment"`
	Status             IntegrationStatus `db:"status" json:"status"`
	LastSyncAt         *time.Time        `db:"last_sync_at" json:"lastSyncAt,omitempty"`
	CreatedAt          time.Time         `db:"created_at" json:"-"`
	UpdatedAt          time.Time         `db:"updated_at" json:"updatedAt"`
}

// IsSandbox reports whether the integration points at the provider's
// sandbox environment.
func (i *POSIntegration) IsSandbox() bool {
	return i.Environment == EnvSandbox
}

// HasRefreshToken reports whether a non-empty refresh token is stored.
func (i *POSIntegration) HasRefreshToken() bool {
	return i.RefreshToken != nil && *i.RefreshToken != ""
}
