package service

import (
	"context"
	"fmt"

	"github.com/barterly/pos-sync/internal/models"
)

// ToastAdapter is a deliberate stub. Toast's partner API is not integrated
// yet; the adapter makes no network call and fails deterministically so a
// Toast sync is a visible error rather than a silent no-op.
type ToastAdapter struct{}

// NewToastAdapter creates the stub adapter.
func NewToastAdapter() *ToastAdapter {
	return &ToastAdapter{}
}

// Provider implements POSAdapter.
func (a *ToastAdapter) Provider() models.Provider {
	return models.ProviderToast
}

// Sync implements POSAdapter.
func (a *ToastAdapter) Sync(ctx context.Context, creds Credentials, integ *models.POSIntegration, progressID string) (*SyncOutcome, error) {
	return nil, fmt.Errorf("%w: toast catalog sync is not implemented", ErrProviderUnsupported)
}
