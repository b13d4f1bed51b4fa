package domain

import "time"

// SyncMetadata is the singleton row recording the last successful scan time
type SyncMetadata struct {
	ID                int       `json:"-" gorm:"primaryKey"`
	LastSyncTimestamp time.Time `json:"lastSyncTimestamp"`
	UpdatedAt         time.Time `json:"-"`
}

// SyncResult is the outcome of one scan cycle. Success reflects only the
// authentication and listing steps; per-attachment extraction failures are
// absorbed inside the cycle.
type SyncResult struct {
	Success       bool      `json:"success"`
	NewEmails     int       `json:"newEmails"`
	NewInvoices   int       `json:"newInvoices"`
	TotalEmails   int       `json:"totalEmails"`
	TotalInvoices int       `json:"totalInvoices"`
	Timestamp     time.Time `json:"timestamp"`
	ErrorMessage  string    `json:"error,omitempty"`
}
