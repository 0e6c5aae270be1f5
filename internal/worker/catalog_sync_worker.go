package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/barterly/pos-sync/internal/service"
)

// CatalogSyncWorker periodically re-syncs catalogs for every active POS
// integration, keeping canonical products fresh between manual syncs.
type CatalogSyncWorker struct {
	integrations service.IntegrationLister
	syncService  *service.SyncService
	interval     time.Duration
}

// NewCatalogSyncWorker constructs a CatalogSyncWorker.
func NewCatalogSyncWorker(integrations service.IntegrationLister, syncService *service.SyncService, interval time.Duration) *CatalogSyncWorker {
	return &CatalogSyncWorker{
		integrations: integrations,
		syncService:  syncService,
		interval:     interval,
	}
}

// Start begins the periodic sync loop and listens for context cancellation.
func (w *CatalogSyncWorker) Start(ctx context.Context) {
	log.Info().Dur("interval", w.interval).Msg("Starting catalog sync worker")

	// Run immediately on start
	w.run(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.run(ctx)
		case <-ctx.Done():
			log.Info().Msg("Catalog sync worker stopped")
			return
		}
	}
}

func (w *CatalogSyncWorker) run(ctx context.Context) {
	log.Info().Msg("Starting scheduled catalog sync")
	start := time.Now()

	integs, err := w.integrations.ListActive()
	if err != nil {
		log.Error().Err(err).Msg("Failed to list active integrations")
		return
	}

	succeeded := 0
	failed := 0
	for _, integ := range integs {
		if ctx.Err() != nil {
			return
		}

		result, err := w.syncService.SyncProducts(ctx, integ.MerchantID, integ.ID)
		if err != nil {
			failed++
			log.Error().
				Err(err).
				Str("integration_id", integ.ID).
				Str("provider", string(integ.Provider)).
				Msg("Scheduled sync failed")
			continue
		}

		succeeded++
		log.Info().
			Str("integration_id", integ.ID).
			Str("provider", string(integ.Provider)).
			Str("progress_id", result.ProgressID).
			Int("synced", result.Synced).
			Int("skipped", result.Skipped).
			Msg("Scheduled sync completed")
	}

	log.Info().
		Int("integrations", len(integs)).
		Int("succeeded", succeeded).
		Int("failed", failed).
		Dur("duration", time.Since(start)).
		Msg("Scheduled catalog sync finished")
}
