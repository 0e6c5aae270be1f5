package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/barterly/pos-sync/internal/models"
)

// TokenRefresher performs one refresh-token exchange for an integration.
type TokenRefresher interface {
	Refresh(ctx context.Context, integ *models.POSIntegration, refreshToken string) (*RefreshedTokens, error)
}

// SyncResult is the terminal summary returned to the caller of one sync.
type SyncResult struct {
	ProgressID string   `json:"progressId"`
	Synced     int      `json:"synced"`
	Skipped    int      `json:"skipped"`
	Errors     []string `json:"errors,omitempty"`
}

// SyncService orchestrates one catalog sync: resolve the integration,
// decrypt credentials, dispatch to the provider adapter, and retry exactly
// once through a token refresh when the provider rejects the credential.
type SyncService struct {
	integrations IntegrationStore
	products     ProductMaintainer
	registry     *AdapterRegistry
	reporter     *ProgressReporter
	cipher       TokenCipher
	refresher    TokenRefresher
}

// NewSyncService creates a SyncService.
func NewSyncService(integrations IntegrationStore, products ProductMaintainer, registry *AdapterRegistry, reporter *ProgressReporter, cipher TokenCipher, refresher TokenRefresher) *SyncService {
	return &SyncService{
		integrations: integrations,
		products:     products,
		registry:     registry,
		reporter:     reporter,
		cipher:       cipher,
		refresher:    refresher,
	}
}

// SyncProducts runs one full catalog sync for the merchant's integration.
// Per-item failures are folded into the result; only invocation-level
// failures (bad integration, credential loss, provider outage) return an
// error, with the progress record marked failed.
func (s *SyncService) SyncProducts(ctx context.Context, merchantID, integrationID string) (*SyncResult, error) {
	integ, err := s.integrations.GetByIDForMerchant(integrationID, merchantID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: integration %s", ErrIntegrationNotFound, integrationID)
		}
		return nil, err
	}
	if integ.Status != models.IntegrationActive {
		return nil, fmt.Errorf("%w: integration %s is %s", ErrIntegrationInactive, integ.ID, integ.Status)
	}

	creds, err := s.decryptCredentials(integ)
	if err != nil {
		// No progress row yet: nothing was started.
		return nil, err
	}

	progress := &models.SyncProgress{
		ID:            uuid.New().String(),
		IntegrationID: integ.ID,
		Status:        models.SyncInProgress,
		CurrentStep:   "starting",
		StartedAt:     time.Now().UTC(),
	}
	if err := s.reporter.Create(ctx, progress); err != nil {
		log.Warn().
			Err(err).
			Str("integration_id", integ.ID).
			Msg("Failed to create sync progress record, continuing")
	}

	log.Info().
		Str("progress_id", progress.ID).
		Str("integration_id", integ.ID).
		Str("provider", string(integ.Provider)).
		Msg("Starting product sync")

	adapter := s.registry.Get(integ.Provider)
	if adapter == nil {
		err := fmt.Errorf("%w: no adapter registered for %s", ErrProviderUnsupported, integ.Provider)
		s.failProgress(ctx, progress, err)
		return nil, err
	}

	outcome, err := adapter.Sync(ctx, creds, integ, progress.ID)
	if err != nil && IsAuthExpired(err) && integ.HasRefreshToken() {
		outcome, err = s.retryWithRefresh(ctx, integ, creds, progress.ID, err)
	}
	if err != nil {
		s.failProgress(ctx, progress, err)
		return nil, err
	}

	s.completeProgress(ctx, progress.ID, integ.ID, outcome)

	// A clean full sync saw the whole catalog, so anything it did not touch
	// is gone at the provider. Runs with item errors skip this: an errored
	// item is not evidence of removal.
	if len(outcome.Errors) == 0 {
		missing := sql.NullTime{Time: progress.StartedAt, Valid: true}
		if err := s.products.DeactivateMissing(integ.ID, missing); err != nil {
			log.Warn().
				Err(err).
				Str("integration_id", integ.ID).
				Msg("Failed to deactivate missing products")
		}
	}

	if err := s.integrations.UpdateLastSyncAt(integ.ID, time.Now().UTC()); err != nil {
		log.Warn().
			Err(err).
			Str("integration_id", integ.ID).
			Msg("Failed to update integration last_sync_at")
	}

	catalogSize, err := s.products.CountByIntegration(integ.ID)
	if err != nil {
		log.Debug().
			Err(err).
			Str("integration_id", integ.ID).
			Msg("Failed to count catalog size")
	}
	log.Info().
		Str("progress_id", progress.ID).
		Str("integration_id", integ.ID).
		Int("synced", outcome.Synced).
		Int("skipped", outcome.Skipped).
		Int("catalog_size", catalogSize).
		Msg("Product sync finished")

	return &SyncResult{
		ProgressID: progress.ID,
		Synced:     outcome.Synced,
		Skipped:    outcome.Skipped,
		Errors:     outcome.Errors,
	}, nil
}

// retryWithRefresh performs the single permitted token refresh and re-runs
// the adapter. A second auth failure is terminal.
func (s *SyncService) retryWithRefresh(ctx context.Context, integ *models.POSIntegration, creds Credentials, progressID string, cause error) (*SyncOutcome, error) {
	log.Info().
		Str("integration_id", integ.ID).
		Str("provider", string(integ.Provider)).
		AnErr("cause", cause).
		Msg("Provider rejected credentials, attempting token refresh")

	rotated, err := s.refresher.Refresh(ctx, integ, creds.RefreshToken)
	if err != nil {
		return nil, fmt.Errorf("%w: token refresh failed after auth error: %v", ErrAuthExpired, err)
	}

	outcome, err := s.registry.Get(integ.Provider).Sync(ctx, creds.WithAccessToken(rotated.AccessToken), integ, progressID)
	if err != nil && IsAuthExpired(err) {
		return nil, fmt.Errorf("%w: provider rejected refreshed credentials: %v", ErrAuthExpired, err)
	}
	return outcome, err
}

// decryptCredentials decrypts the stored tokens. Any decrypt failure means
// the credential material is unusable and the sync cannot start.
func (s *SyncService) decryptCredentials(integ *models.POSIntegration) (Credentials, error) {
	access, err := s.cipher.Decrypt(integ.AccessToken)
	if err != nil {
		return Credentials{}, fmt.Errorf("%w: failed to decrypt access token: %v", ErrCredential, err)
	}

	var refresh string
	if integ.HasRefreshToken() {
		refresh, err = s.cipher.Decrypt(*integ.RefreshToken)
		if err != nil {
			return Credentials{}, fmt.Errorf("%w: failed to decrypt refresh token: %v", ErrCredential, err)
		}
	}

	creds := Credentials{
		AccessToken:  access,
		RefreshToken: refresh,
		Environment:  integ.Environment,
	}
	if integ.StoreIdentifier != nil {
		creds.StoreIdentifier = *integ.StoreIdentifier
	}
	if integ.MerchantIdentifier != nil {
		creds.MerchantIdentifier = *integ.MerchantIdentifier
	}
	return creds, nil
}

// completeProgress reloads the incrementally updated record and writes the
// terminal completed state with counts reconciled from the outcome.
func (s *SyncService) completeProgress(ctx context.Context, progressID, integrationID string, outcome *SyncOutcome) {
	p := s.reporter.Load(ctx, progressID, integrationID)
	now := time.Now().UTC()

	p.Status = models.SyncCompleted
	p.SyncedItems = outcome.Synced
	p.SkippedItems = outcome.Skipped
	p.ErrorItems = len(outcome.Errors)
	p.ProcessedItems = outcome.Synced + outcome.Skipped
	if p.TotalItems < p.ProcessedItems {
		p.TotalItems = p.ProcessedItems
	}
	p.CurrentStep = "done"
	p.CurrentItemName = ""
	p.CompletedAt = &now

	s.reporter.Report(ctx, p)
}

// failProgress writes the terminal failed state. Best-effort, like every
// other progress write.
func (s *SyncService) failProgress(ctx context.Context, progress *models.SyncProgress, cause error) {
	p := s.reporter.Load(ctx, progress.ID, progress.IntegrationID)
	now := time.Now().UTC()
	msg := cause.Error()

	p.Status = models.SyncFailed
	p.Error = &msg
	p.CompletedAt = &now

	s.reporter.Report(ctx, p)
}
