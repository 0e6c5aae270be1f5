package service

import (
	"context"

	"github.com/barterly/pos-sync/internal/models"
)

// Credentials is the decrypted credential set passed to an adapter for one
// sync call. It is an immutable value: a refreshed token produces a new
// Credentials via WithAccessToken rather than mutating shared state, so
// concurrent syncs of the same integration never observe each other's
// in-flight tokens.
type Credentials struct {
	AccessToken        string
	RefreshToken       string
	StoreIdentifier    string
	MerchantIdentifier string
	Environment        string
}

// Sandbox reports whether the credentials target the provider sandbox.
func (c Credentials) Sandbox() bool {
	return c.Environment == models.EnvSandbox
}

// WithAccessToken returns a copy carrying a different access token.
func (c Credentials) WithAccessToken(token string) Credentials {
	c.AccessToken = token
	return c
}

// SyncOutcome is what an adapter reports back after walking a catalog.
// Per-item failures land in Errors and Skipped; they never abort the batch.
type SyncOutcome struct {
	Synced  int
	Skipped int
	Errors  []string
}

// POSAdapter is the common sync contract every provider implements:
// fetch, paginate, normalize, upsert.
type POSAdapter interface {
	// Provider returns the provider this adapter serves.
	Provider() models.Provider

	// Sync pulls the provider's full catalog, normalizes each item (and
	// variant) into a canonical product, and upserts it. Progress is
	// reported incrementally under progressID. A returned error means the
	// whole invocation failed; per-item failures are folded into the
	// outcome instead.
	Sync(ctx context.Context, creds Credentials, integ *models.POSIntegration, progressID string) (*SyncOutcome, error)
}

// AdapterRegistry resolves adapters by provider name. Adding a provider
// means registering an implementation, not editing the orchestrator.
type AdapterRegistry struct {
	adapters map[models.Provider]POSAdapter
}

// NewAdapterRegistry creates an empty registry.
func NewAdapterRegistry() *AdapterRegistry {
	return &AdapterRegistry{adapters: make(map[models.Provider]POSAdapter)}
}

// Register adds an adapter, replacing any previous one for the provider.
func (r *AdapterRegistry) Register(a POSAdapter) {
	r.adapters[a.Provider()] = a
}

// Get returns the adapter for a provider, or nil when none is registered.
func (r *AdapterRegistry) Get(p models.Provider) POSAdapter {
	return r.adapters[p]
}

// Providers lists the registered provider names.
func (r *AdapterRegistry) Providers() []models.Provider {
	out := make([]models.Provider, 0, len(r.adapters))
	for p := range r.adapters {
		out = append(out, p)
	}
	return out
}
