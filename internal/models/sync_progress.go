package models

import "time"

// SyncStatus enumerates the states of a sync run. A progress record is
// terminal once its status leaves in_progress.
type SyncStatus string

const (
	SyncInProgress SyncStatus = "in_progress"
	SyncCompleted  SyncStatus = "completed"
	SyncFailed     SyncStatus = "failed"
)

// SyncProgress is the persisted, incrementally updated status of one sync
// run, letting external observers poll long-running syncs.
//
// Counts are non-decreasing while a run is in progress and satisfy
// synced + skipped == processed <= total at completion.
type SyncProgress struct {
	ID              string     `db:"id" json:"id"`
	IntegrationID   string     `db:"integration_id" json:"integrationId"`
	Status          SyncStatus `db:"status" json:"status"`
	TotalItems      int        `db:"total_items" json:"totalItems"`
	ProcessedItems  int        `db:"processed_items" json:"processedItems"`
	SyncedItems     int        `db:"synced_items" json:"syncedItems"`
	SkippedItems    int        `db:"skipped_items" json:"skippedItems"`
	ErrorItems      int        `db:"error_items" json:"errorItems"`
	CurrentItemName string     `db:"current_item_name" json:"currentItemName,omitempty"`
	CurrentStep     string     `db:"current_step" json:"currentStep,omitempty"`
	Error           *string    `db:"error" json:"error,omitempty"`
	StartedAt       time.Time  `db:"started_at" json:"startedAt"`
	CompletedAt     *time.Time `db:"completed_at" json:"completedAt,omitempty"`
}
