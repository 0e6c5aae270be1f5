package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/barterly/pos-sync/internal/cache"
	"github.com/barterly/pos-sync/internal/models"
)

// ProgressService serves poll reads of sync progress. Reads go to the Redis
// snapshot first and fall back to PostgreSQL; either way the record is only
// returned when the run's integration belongs to the requesting merchant.
type ProgressService struct {
	store        ProgressStore
	integrations IntegrationStore
	cache        *cache.ProgressCache // optional
}

// NewProgressService creates a ProgressService. progressCache may be nil.
func NewProgressService(store ProgressStore, integrations IntegrationStore, progressCache *cache.ProgressCache) *ProgressService {
	return &ProgressService{store: store, integrations: integrations, cache: progressCache}
}

// Get returns the progress of one sync run for the merchant that owns it.
// An existing run owned by another merchant reads as not found.
func (s *ProgressService) Get(ctx context.Context, merchantID, progressID string) (*models.SyncProgress, error) {
	p := s.fromCache(ctx, progressID)
	if p == nil {
		var err error
		p, err = s.store.GetByID(progressID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, fmt.Errorf("%w: %s", ErrProgressNotFound, progressID)
			}
			return nil, err
		}
	}

	if _, err := s.integrations.GetByIDForMerchant(p.IntegrationID, merchantID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrProgressNotFound, progressID)
		}
		return nil, err
	}
	return p, nil
}

func (s *ProgressService) fromCache(ctx context.Context, progressID string) *models.SyncProgress {
	if s.cache == nil {
		return nil
	}
	p, err := s.cache.Get(ctx, progressID)
	if err != nil {
		log.Debug().
			Err(err).
			Str("progress_id", progressID).
			Msg("Progress snapshot not in cache, reading database")
		return nil
	}
	return p
}
