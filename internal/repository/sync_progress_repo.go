package repository

import (
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/barterly/pos-sync/internal/models"
)

// SyncProgressRepository handles data access for sync progress records.
type SyncProgressRepository struct {
	db *sqlx.DB
}

// NewSyncProgressRepository creates a new SyncProgressRepository.
func NewSyncProgressRepository(db *sqlx.DB) *SyncProgressRepository {
	return &SyncProgressRepository{db: db}
}

// Create inserts a new progress record.
func (r *SyncProgressRepository) Create(p *models.SyncProgress) error {
	const q = `
        INSERT INTO sync_progress (
            id, integration_id, status, total_items, processed_items,
            synced_items, skipped_items, error_items, current_item_name,
            current_step, error, started_at, completed_at
        )
        VALUES (
            :id, :integration_id, :status, :total_items, :processed_items,
            :synced_items, :skipped_items, :error_items, :current_item_name,
            :current_step, :error, :started_at, :completed_at
        )`
	_, err := r.db.NamedExec(q, p)
	return err
}

// Update overwrites the mutable fields of a progress record.
func (r *SyncProgressRepository) Update(p *models.SyncProgress) error {
	const q = `
        UPDATE sync_progress
        SET status = :status,
            total_items = :total_items,
            processed_items = :processed_items,
            synced_items = :synced_items,
            skipped_items = :skipped_items,
            error_items = :error_items,
            current_item_name = :current_item_name,
            current_step = :current_step,
            error = :error,
            completed_at = :completed_at
        WHERE id = :id`
	_, err := r.db.NamedExec(q, p)
	return err
}

// GetByID returns one progress record, or sql.ErrNoRows.
func (r *SyncProgressRepository) GetByID(id string) (*models.SyncProgress, error) {
	const q = `SELECT * FROM sync_progress WHERE id = $1 LIMIT 1`

	var p models.SyncProgress
	if err := r.db.Get(&p, q, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, sql.ErrNoRows
		}
		return nil, err
	}
	return &p, nil
}
