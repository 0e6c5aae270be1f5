package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/barterly/pos-sync/internal/cache"
	"github.com/barterly/pos-sync/internal/models"
)

// ProgressReporter persists sync progress as a detached side effect. Updates
// are best-effort by design: a failed progress write is logged and swallowed,
// it must never abort or block the sync itself.
type ProgressReporter struct {
	store ProgressStore
	cache *cache.ProgressCache // optional
}

// NewProgressReporter creates a ProgressReporter. cache may be nil.
func NewProgressReporter(store ProgressStore, progressCache *cache.ProgressCache) *ProgressReporter {
	return &ProgressReporter{store: store, cache: progressCache}
}

// Create inserts the initial record and mirrors it to the cache.
// The returned error lets callers log context; syncs proceed regardless.
func (r *ProgressReporter) Create(ctx context.Context, p *models.SyncProgress) error {
	if err := r.store.Create(p); err != nil {
		return err
	}
	r.snapshot(ctx, p)
	return nil
}

// Report writes the current state of a run. Fire-and-forget.
func (r *ProgressReporter) Report(ctx context.Context, p *models.SyncProgress) {
	if err := r.store.Update(p); err != nil {
		log.Warn().
			Err(err).
			Str("progress_id", p.ID).
			Msg("Failed to persist sync progress")
	}
	r.snapshot(ctx, p)
}

// Load returns the stored record for a run, falling back to a minimal
// in-memory record when the read fails so adapters can keep counting.
func (r *ProgressReporter) Load(ctx context.Context, progressID, integrationID string) *models.SyncProgress {
	p, err := r.store.GetByID(progressID)
	if err != nil {
		log.Warn().
			Err(err).
			Str("progress_id", progressID).
			Msg("Failed to load sync progress, tracking in memory only")
		return &models.SyncProgress{
			ID:            progressID,
			IntegrationID: integrationID,
			Status:        models.SyncInProgress,
			StartedAt:     time.Now().UTC(),
		}
	}
	return p
}

func (r *ProgressReporter) snapshot(ctx context.Context, p *models.SyncProgress) {
	if r.cache == nil {
		return
	}
	if err := r.cache.Put(ctx, p); err != nil {
		log.Debug().
			Err(err).
			Str("progress_id", p.ID).
			Msg("Failed to cache progress snapshot")
	}
}

// syncTracker maintains the counters for one adapter run and reports them
// through the ProgressReporter after every item. Counts only ever increase.
type syncTracker struct {
	reporter *ProgressReporter
	progress *models.SyncProgress
	outcome  SyncOutcome
}

func newSyncTracker(ctx context.Context, reporter *ProgressReporter, progressID, integrationID string) *syncTracker {
	return &syncTracker{
		reporter: reporter,
		progress: reporter.Load(ctx, progressID, integrationID),
	}
}

// begin records the discovered catalog size and the step now running.
func (t *syncTracker) begin(ctx context.Context, total int, step string) {
	t.progress.TotalItems = total
	t.progress.CurrentStep = step
	t.reporter.Report(ctx, t.progress)
}

// step updates only the current step label.
func (t *syncTracker) step(ctx context.Context, step string) {
	t.progress.CurrentStep = step
	t.reporter.Report(ctx, t.progress)
}

// itemSynced counts one successfully upserted canonical product.
func (t *syncTracker) itemSynced(ctx context.Context, name string) {
	t.outcome.Synced++
	t.progress.SyncedItems++
	t.progress.ProcessedItems++
	t.progress.CurrentItemName = name
	t.reporter.Report(ctx, t.progress)
}

// itemSkipped counts one item that failed to normalize or persist. The
// failure is recorded and the batch continues.
func (t *syncTracker) itemSkipped(ctx context.Context, name string, err error) {
	t.outcome.Skipped++
	t.outcome.Errors = append(t.outcome.Errors, fmt.Sprintf("%s: %v", name, err))
	t.progress.SkippedItems++
	t.progress.ErrorItems++
	t.progress.ProcessedItems++
	t.progress.CurrentItemName = name
	t.reporter.Report(ctx, t.progress)

	log.Warn().
		Err(err).
		Str("progress_id", t.progress.ID).
		Str("item", name).
		Msg("Skipping catalog item")
}

// result returns the accumulated outcome.
func (t *syncTracker) result() *SyncOutcome {
	out := t.outcome
	return &out
}
