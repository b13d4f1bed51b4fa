package domain

import (
	"context"
	"time"
)

// Folder is a mail folder (Graph mailFolder, Gmail label)
type Folder struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	TotalCount  int    `json:"totalItemCount,omitempty"`
}

// Message is a mail message listed from the target folder
type Message struct {
	ID             string    `json:"id"`
	Subject        string    `json:"subject"`
	From           string    `json:"from"`
	ReceivedAt     time.Time `json:"receivedDateTime"`
	HasAttachments bool      `json:"hasAttachments"`
}

// Attachment is PDF attachment metadata on a message
type Attachment struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
}

// MailProvider is the thin call wrapper around the external mail API.
// Implementations hold no token state; callers pass a valid access token on
// every call.
type MailProvider interface {
	// ListFolders lists all mail folders
	ListFolders(ctx context.Context, accessToken string) ([]Folder, error)

	// ListMessages lists messages in the named folder, newest first.
	// The folder is matched case-insensitively by display name; a missing
	// folder is an error naming the available folders.
	ListMessages(ctx context.Context, accessToken, folderName string) ([]Message, error)

	// ListAttachments lists the PDF attachments of a message
	ListAttachments(ctx context.Context, accessToken, messageID string) ([]Attachment, error)

	// GetAttachmentContent fetches the raw attachment bytes
	GetAttachmentContent(ctx context.Context, accessToken, messageID, attachmentID string) ([]byte, error)
}
