package dto

import (
	emaildomain "faktury-backend/internal/email/domain"
)

type FoldersResponse struct {
	Folders []emaildomain.Folder `json:"folders"`
}

type EmailsResponse struct {
	Emails []emaildomain.Message `json:"emails"`
	Total  int                   `json:"total"`
}

type BatchAttachmentsRequest struct {
	MessageIDs []string `json:"messageIds" binding:"required"`
}

// BatchAttachmentsResponse maps each requested message id to its PDF
// attachments. Messages whose lookup failed map to an empty slice.
type BatchAttachmentsResponse map[string][]emaildomain.Attachment

type SyncStatusResponse struct {
	LastSyncTimestamp *string `json:"lastSyncTimestamp"`
	TotalInvoices     int64   `json:"totalInvoices"`
}
