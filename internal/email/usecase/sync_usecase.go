package usecase

import (
	"context"
	"log"
	"sync"
	"time"

	emaildomain "faktury-backend/internal/email/domain"
	"faktury-backend/internal/email/repository"
	invoiceusecase "faktury-backend/internal/invoice/usecase"
)

// SyncUsecase runs scan cycles over the target folder: list mail, diff
// against the known-message set, extract new PDF invoices.
type SyncUsecase interface {
	// SyncEmails runs one scan cycle. The returned error is non-nil only for
	// authentication and listing failures; per-attachment extraction errors
	// are absorbed and logged.
	SyncEmails(ctx context.Context, autoExtract bool) (*emaildomain.SyncResult, error)

	// LastSyncTimestamp returns the persisted last successful scan time
	LastSyncTimestamp() (time.Time, error)
}

// syncUsecase implements SyncUsecase interface
type syncUsecase struct {
	mailProvider emaildomain.MailProvider
	tokens       invoiceusecase.TokenSource
	invoices     invoiceusecase.InvoiceUsecase
	syncRepo     repository.SyncMetadataRepository
	targetFolder string

	// knownEmailIDs is the message set of the most recent scan. It lives only
	// for the process lifetime; the first cycle after a restart reports zero
	// new emails regardless of the listing.
	knownEmailIDs map[string]struct{}
	initialized   bool
	mu            sync.Mutex
}

// NewSyncUsecase creates a new instance of syncUsecase
func NewSyncUsecase(
	mailProvider emaildomain.MailProvider,
	tokens invoiceusecase.TokenSource,
	invoices invoiceusecase.InvoiceUsecase,
	syncRepo repository.SyncMetadataRepository,
	targetFolder string,
) SyncUsecase {
	return &syncUsecase{
		mailProvider:  mailProvider,
		tokens:        tokens,
		invoices:      invoices,
		syncRepo:      syncRepo,
		targetFolder:  targetFolder,
		knownEmailIDs: make(map[string]struct{}),
	}
}

func (u *syncUsecase) SyncEmails(ctx context.Context, autoExtract bool) (*emaildomain.SyncResult, error) {
	startTime := time.Now()

	accessToken, err := u.tokens.GetValidAccessToken(ctx)
	if err != nil {
		return failedResult(startTime, err), err
	}

	messages, err := u.mailProvider.ListMessages(ctx, accessToken, u.targetFolder)
	if err != nil {
		return failedResult(startTime, err), err
	}

	newMessages := u.diffKnownMessages(messages)

	newInvoices := 0
	if autoExtract {
		for _, msg := range newMessages {
			newInvoices += u.extractMessageInvoices(ctx, accessToken, msg)
		}
	}

	// The timestamp records that a full listing pass happened, even when
	// individual attachments failed above
	if err := u.syncRepo.UpdateSyncTimestamp(startTime); err != nil {
		log.Printf("[Sync] Failed to persist sync timestamp: %v", err)
	}

	totalInvoices, err := u.invoices.TotalCount()
	if err != nil {
		log.Printf("[Sync] Failed to count cached invoices: %v", err)
	}

	return &emaildomain.SyncResult{
		Success:       true,
		NewEmails:     len(newMessages),
		NewInvoices:   newInvoices,
		TotalEmails:   len(messages),
		TotalInvoices: int(totalInvoices),
		Timestamp:     startTime,
	}, nil
}

// diffKnownMessages computes the new messages and replaces the known set with
// the current listing. The first call after process start reports nothing as
// new to avoid a spurious mass-extraction on cold start.
func (u *syncUsecase) diffKnownMessages(messages []emaildomain.Message) []emaildomain.Message {
	u.mu.Lock()
	defer u.mu.Unlock()

	var newMessages []emaildomain.Message
	if u.initialized {
		for _, msg := range messages {
			if _, known := u.knownEmailIDs[msg.ID]; !known {
				newMessages = append(newMessages, msg)
			}
		}
	}

	current := make(map[string]struct{}, len(messages))
	for _, msg := range messages {
		current[msg.ID] = struct{}{}
	}
	u.knownEmailIDs = current
	u.initialized = true

	return newMessages
}

// extractMessageInvoices extracts all uncached PDF attachments of one message.
// Failures are absorbed per attachment so one bad document never aborts the
// rest of the cycle.
func (u *syncUsecase) extractMessageInvoices(ctx context.Context, accessToken string, msg emaildomain.Message) int {
	if !msg.HasAttachments {
		return 0
	}

	attachments, err := u.mailProvider.ListAttachments(ctx, accessToken, msg.ID)
	if err != nil {
		log.Printf("[Sync] Failed to list attachments for message %s: %v", msg.ID, err)
		return 0
	}

	extracted := 0
	for _, att := range attachments {
		cached, err := u.invoices.IsCached(msg.ID, att.ID)
		if err != nil {
			log.Printf("[Sync] Cache lookup failed for %s/%s: %v", msg.ID, att.ID, err)
			continue
		}
		if cached {
			continue
		}

		if _, err := u.invoices.Extract(ctx, msg.ID, att.ID, false); err != nil {
			log.Printf("[Sync] Extraction failed for %s/%s: %v", msg.ID, att.ID, err)
			continue
		}
		extracted++
	}
	return extracted
}

func (u *syncUsecase) LastSyncTimestamp() (time.Time, error) {
	return u.syncRepo.GetLastSyncTimestamp()
}

func failedResult(startTime time.Time, err error) *emaildomain.SyncResult {
	return &emaildomain.SyncResult{
		Success:      false,
		Timestamp:    startTime,
		ErrorMessage: err.Error(),
	}
}
