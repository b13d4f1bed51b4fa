package repository

import "time"

// SyncMetadataRepository persists the singleton last-sync timestamp
type SyncMetadataRepository interface {
	// UpdateSyncTimestamp overwrites the singleton row
	UpdateSyncTimestamp(ts time.Time) error

	// GetLastSyncTimestamp returns the stored timestamp, or the zero time
	// when no scan has completed yet
	GetLastSyncTimestamp() (time.Time, error)
}
