package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/barterly/pos-sync/internal/models"
	"github.com/barterly/pos-sync/pkg/posapi"
)

func newSyncFixture(t *testing.T, integ *models.POSIntegration, adapter POSAdapter, refresher TokenRefresher) (*SyncService, *fakeIntegrationStore, *fakeProgressStore) {
	t.Helper()

	integs := newFakeIntegrationStore(integ)
	progresses := newFakeProgressStore()
	reporter := NewProgressReporter(progresses, nil)

	registry := NewAdapterRegistry()
	if adapter != nil {
		registry.Register(adapter)
	}

	svc := NewSyncService(integs, newFakeProductStore(), registry, reporter, plainCipher{}, refresher)
	return svc, integs, progresses
}

func TestSyncProductsUnknownIntegration(t *testing.T) {
	integ := testIntegration(models.ProviderSquare)
	svc, _, progresses := newSyncFixture(t, integ, &stubAdapter{provider: models.ProviderSquare}, &stubRefresher{})

	_, err := svc.SyncProducts(context.Background(), integ.MerchantID, "no-such-id")
	require.ErrorIs(t, err, ErrIntegrationNotFound)
	assert.Empty(t, progresses.records)
}

func TestSyncProductsOtherMerchantsIntegrationReadsAsNotFound(t *testing.T) {
	integ := testIntegration(models.ProviderSquare)
	svc, _, _ := newSyncFixture(t, integ, &stubAdapter{provider: models.ProviderSquare}, &stubRefresher{})

	_, err := svc.SyncProducts(context.Background(), "someone-else", integ.ID)
	require.ErrorIs(t, err, ErrIntegrationNotFound)
}

func TestSyncProductsInactiveIntegration(t *testing.T) {
	integ := testIntegration(models.ProviderSquare)
	integ.Status = models.IntegrationDisconnected
	svc, _, progresses := newSyncFixture(t, integ, &stubAdapter{provider: models.ProviderSquare}, &stubRefresher{})

	_, err := svc.SyncProducts(context.Background(), integ.MerchantID, integ.ID)
	require.ErrorIs(t, err, ErrIntegrationInactive)
	assert.Empty(t, progresses.records)
}

func TestSyncProductsCredentialDecryptFailureCreatesNoProgress(t *testing.T) {
	integ := testIntegration(models.ProviderSquare)
	integ.AccessToken = "garbage-not-encrypted"
	svc, _, progresses := newSyncFixture(t, integ, &stubAdapter{provider: models.ProviderSquare}, &stubRefresher{})

	_, err := svc.SyncProducts(context.Background(), integ.MerchantID, integ.ID)
	require.ErrorIs(t, err, ErrCredential)
	assert.Empty(t, progresses.records)
}

func TestSyncProductsToastFailsAsUnsupported(t *testing.T) {
	integ := testIntegration(models.ProviderToast)
	svc, _, progresses := newSyncFixture(t, integ, NewToastAdapter(), &stubRefresher{})

	_, err := svc.SyncProducts(context.Background(), integ.MerchantID, integ.ID)
	require.ErrorIs(t, err, ErrProviderUnsupported)

	// The run started, so its failure is recorded.
	require.Len(t, progresses.records, 1)
	for _, p := range progresses.records {
		assert.Equal(t, models.SyncFailed, p.Status)
		require.NotNil(t, p.Error)
		assert.NotNil(t, p.CompletedAt)
	}
}

func TestSyncProductsSuccess(t *testing.T) {
	integ := testIntegration(models.ProviderSquare)
	adapter := &stubAdapter{
		provider: models.ProviderSquare,
		results:  []stubResult{{outcome: &SyncOutcome{Synced: 3}}},
	}
	refresher := &stubRefresher{}
	svc, integs, progresses := newSyncFixture(t, integ, adapter, refresher)

	result, err := svc.SyncProducts(context.Background(), integ.MerchantID, integ.ID)
	require.NoError(t, err)

	assert.Equal(t, 3, result.Synced)
	assert.Zero(t, result.Skipped)
	assert.Empty(t, result.Errors)
	assert.Equal(t, 0, refresher.calls)

	// Adapter saw the decrypted token.
	require.Len(t, adapter.tokens, 1)
	assert.Equal(t, "access-token", adapter.tokens[0])

	p, err := progresses.GetByID(result.ProgressID)
	require.NoError(t, err)
	assert.Equal(t, models.SyncCompleted, p.Status)
	assert.Equal(t, 3, p.SyncedItems)
	assert.Equal(t, 3, p.ProcessedItems)
	assert.GreaterOrEqual(t, p.TotalItems, p.ProcessedItems)
	assert.NotNil(t, p.CompletedAt)

	stored, _ := integs.GetByIDForMerchant(integ.ID, integ.MerchantID)
	assert.NotNil(t, stored.LastSyncAt)
}

func TestSyncProductsPartialFailureStillSucceeds(t *testing.T) {
	integ := testIntegration(models.ProviderSquare)
	adapter := &stubAdapter{
		provider: models.ProviderSquare,
		results: []stubResult{{outcome: &SyncOutcome{
			Synced:  9,
			Skipped: 1,
			Errors:  []string{"Bad Widget: price is negative"},
		}}},
	}
	svc, _, progresses := newSyncFixture(t, integ, adapter, &stubRefresher{})

	result, err := svc.SyncProducts(context.Background(), integ.MerchantID, integ.ID)
	require.NoError(t, err)

	assert.Equal(t, 9, result.Synced)
	assert.Equal(t, 1, result.Skipped)
	require.Len(t, result.Errors, 1)

	p, err := progresses.GetByID(result.ProgressID)
	require.NoError(t, err)
	assert.Equal(t, models.SyncCompleted, p.Status)
	assert.Equal(t, 10, p.ProcessedItems)
	assert.Equal(t, 1, p.ErrorItems)
}

func newSyncFixtureWithProducts(t *testing.T, integ *models.POSIntegration, adapter POSAdapter) (*SyncService, *fakeProductStore) {
	t.Helper()

	products := newFakeProductStore()
	registry := NewAdapterRegistry()
	registry.Register(adapter)

	svc := NewSyncService(newFakeIntegrationStore(integ), products, registry,
		NewProgressReporter(newFakeProgressStore(), nil), plainCipher{}, &stubRefresher{})
	return svc, products
}

func staleProduct(integrationID, name string) *models.Product {
	stale := time.Now().UTC().Add(-48 * time.Hour)
	return &models.Product{
		IntegrationID:     integrationID,
		ExternalProductID: "OLD-" + name,
		Name:              name,
		IsActive:          true,
		LastSyncedAt:      &stale,
	}
}

func TestSyncProductsCleanRunDeactivatesMissing(t *testing.T) {
	integ := testIntegration(models.ProviderSquare)
	adapter := &stubAdapter{
		provider: models.ProviderSquare,
		results:  []stubResult{{outcome: &SyncOutcome{Synced: 1}}},
	}
	svc, products := newSyncFixtureWithProducts(t, integ, adapter)

	gone := staleProduct(integ.ID, "Gone Item")
	products.products[productKey(gone.IntegrationID, gone.ExternalProductID, nil)] = gone

	_, err := svc.SyncProducts(context.Background(), integ.MerchantID, integ.ID)
	require.NoError(t, err)

	assert.False(t, products.byName("Gone Item").IsActive)
	assert.Equal(t, 1, products.deactivated)
}

func TestSyncProductsItemErrorsSkipDeactivation(t *testing.T) {
	integ := testIntegration(models.ProviderSquare)
	adapter := &stubAdapter{
		provider: models.ProviderSquare,
		results: []stubResult{{outcome: &SyncOutcome{
			Synced: 1,
			Errors: []string{"Gone Item: provider returned garbage"},
		}}},
	}
	svc, products := newSyncFixtureWithProducts(t, integ, adapter)

	gone := staleProduct(integ.ID, "Gone Item")
	products.products[productKey(gone.IntegrationID, gone.ExternalProductID, nil)] = gone

	_, err := svc.SyncProducts(context.Background(), integ.MerchantID, integ.ID)
	require.NoError(t, err)

	// An errored item may simply have failed to map; it is not missing.
	assert.True(t, products.byName("Gone Item").IsActive)
	assert.Zero(t, products.deactivated)
}

func TestSyncProductsCatalogCountFailureDoesNotFailRun(t *testing.T) {
	integ := testIntegration(models.ProviderSquare)
	adapter := &stubAdapter{
		provider: models.ProviderSquare,
		results:  []stubResult{{outcome: &SyncOutcome{Synced: 2}}},
	}
	svc, products := newSyncFixtureWithProducts(t, integ, adapter)
	products.countErr = errors.New("connection reset")

	result, err := svc.SyncProducts(context.Background(), integ.MerchantID, integ.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Synced)
}

func TestSyncProductsRefreshRetrySucceeds(t *testing.T) {
	integ := testIntegration(models.ProviderSquare)
	authErr := &posapi.APIError{Provider: "square", StatusCode: 401, Body: "unauthorized"}
	adapter := &stubAdapter{
		provider: models.ProviderSquare,
		results: []stubResult{
			{err: authErr},
			{outcome: &SyncOutcome{Synced: 5}},
		},
	}
	refresher := &stubRefresher{token: "fresh-token"}
	svc, _, _ := newSyncFixture(t, integ, adapter, refresher)

	result, err := svc.SyncProducts(context.Background(), integ.MerchantID, integ.ID)
	require.NoError(t, err)

	assert.Equal(t, 5, result.Synced)
	assert.Equal(t, 1, refresher.calls)
	require.Len(t, adapter.tokens, 2)
	assert.Equal(t, "access-token", adapter.tokens[0])
	assert.Equal(t, "fresh-token", adapter.tokens[1])
}

func TestSyncProductsRefreshesExactlyOnce(t *testing.T) {
	integ := testIntegration(models.ProviderSquare)
	authErr := &posapi.APIError{Provider: "square", StatusCode: 401, Body: "unauthorized"}
	adapter := &stubAdapter{
		provider: models.ProviderSquare,
		results:  []stubResult{{err: authErr}}, // fails on every call
	}
	refresher := &stubRefresher{token: "fresh-token"}
	svc, _, progresses := newSyncFixture(t, integ, adapter, refresher)

	_, err := svc.SyncProducts(context.Background(), integ.MerchantID, integ.ID)
	require.ErrorIs(t, err, ErrAuthExpired)

	assert.Equal(t, 1, refresher.calls)
	assert.Equal(t, 2, adapter.calls)

	require.Len(t, progresses.records, 1)
	for _, p := range progresses.records {
		assert.Equal(t, models.SyncFailed, p.Status)
	}
}

func TestSyncProductsNoRefreshWithoutRefreshToken(t *testing.T) {
	integ := testIntegration(models.ProviderSquare)
	integ.RefreshToken = nil
	authErr := &posapi.APIError{Provider: "square", StatusCode: 401, Body: "unauthorized"}
	adapter := &stubAdapter{
		provider: models.ProviderSquare,
		results:  []stubResult{{err: authErr}},
	}
	refresher := &stubRefresher{token: "fresh-token"}
	svc, _, _ := newSyncFixture(t, integ, adapter, refresher)

	_, err := svc.SyncProducts(context.Background(), integ.MerchantID, integ.ID)
	require.Error(t, err)
	assert.Equal(t, 0, refresher.calls)
	assert.Equal(t, 1, adapter.calls)
}

func TestSyncProductsRefreshFailureIsAuthExpired(t *testing.T) {
	integ := testIntegration(models.ProviderSquare)
	authErr := &posapi.APIError{Provider: "square", StatusCode: 401, Body: "unauthorized"}
	adapter := &stubAdapter{
		provider: models.ProviderSquare,
		results:  []stubResult{{err: authErr}},
	}
	refresher := &stubRefresher{err: errors.New("refresh endpoint said no")}
	svc, _, _ := newSyncFixture(t, integ, adapter, refresher)

	_, err := svc.SyncProducts(context.Background(), integ.MerchantID, integ.ID)
	require.ErrorIs(t, err, ErrAuthExpired)
	assert.Equal(t, 1, adapter.calls)
}

func TestSyncProductsNonAuthErrorSkipsRefresh(t *testing.T) {
	integ := testIntegration(models.ProviderSquare)
	adapter := &stubAdapter{
		provider: models.ProviderSquare,
		results:  []stubResult{{err: errors.New("square: connection refused")}},
	}
	refresher := &stubRefresher{token: "fresh-token"}
	svc, _, _ := newSyncFixture(t, integ, adapter, refresher)

	_, err := svc.SyncProducts(context.Background(), integ.MerchantID, integ.ID)
	require.Error(t, err)
	assert.Equal(t, 0, refresher.calls)
	assert.Equal(t, 1, adapter.calls)
}

func TestIsAuthExpiredHeuristics(t *testing.T) {
	assert.True(t, IsAuthExpired(&posapi.APIError{StatusCode: 401}))
	assert.True(t, IsAuthExpired(errors.New("provider says: Token Expired")))
	assert.True(t, IsAuthExpired(errors.New("UNAUTHORIZED request")))
	assert.False(t, IsAuthExpired(&posapi.APIError{StatusCode: 500, Body: "boom"}))
	assert.False(t, IsAuthExpired(errors.New("connection reset by peer")))
	assert.False(t, IsAuthExpired(nil))
}
