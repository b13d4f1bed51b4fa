package repository

import invoicedomain "faktury-backend/internal/invoice/domain"

// InvoiceRepository is the durable extraction cache keyed by
// (messageID, attachmentID)
type InvoiceRepository interface {
	// Get returns the cached record, or (nil, nil) when none exists
	Get(messageID, attachmentID string) (*invoicedomain.InvoiceRecord, error)

	// Save upserts the record for (messageID, attachmentID) wholesale
	Save(messageID, attachmentID string, fields invoicedomain.InvoiceFields) (*invoicedomain.InvoiceRecord, error)

	// Delete removes a cached record
	Delete(messageID, attachmentID string) error

	// HasForMessage reports whether any attachment of the message was extracted
	HasForMessage(messageID string) (bool, error)

	// Count returns the total number of cached invoices
	Count() (int64, error)
}
