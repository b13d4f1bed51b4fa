package usecase

import (
	"bytes"
	"context"
	"fmt"
	"log"

	emaildomain "faktury-backend/internal/email/domain"
	invoicedomain "faktury-backend/internal/invoice/domain"
	"faktury-backend/internal/invoice/repository"

	"github.com/ledongthuc/pdf"
)

// TokenSource hands out a currently-valid provider access token
type TokenSource interface {
	GetValidAccessToken(ctx context.Context) (string, error)
}

// Notifier announces freshly extracted invoices
type Notifier interface {
	NotifyNewInvoice(fields invoicedomain.InvoiceFields)
}

// InvoiceUsecase caches extractions per (message, attachment) and drives the
// generative-AI extraction call for misses.
type InvoiceUsecase interface {
	// Extract returns the invoice data for an attachment. Without regenerate
	// the cached record wins; with regenerate the cache read is bypassed and
	// the fresh result written through.
	Extract(ctx context.Context, messageID, attachmentID string, regenerate bool) (*invoicedomain.InvoiceRecord, error)

	// IsCached reports whether an extraction exists for the attachment
	IsCached(messageID, attachmentID string) (bool, error)

	// TotalCount returns the number of cached invoices
	TotalCount() (int64, error)
}

// invoiceUsecase implements InvoiceUsecase interface
type invoiceUsecase struct {
	invoiceRepo  repository.InvoiceRepository
	mailProvider emaildomain.MailProvider
	tokens       TokenSource
	extractor    invoicedomain.Extractor
	notifier     Notifier
}

// NewInvoiceUsecase creates a new instance of invoiceUsecase
func NewInvoiceUsecase(
	invoiceRepo repository.InvoiceRepository,
	mailProvider emaildomain.MailProvider,
	tokens TokenSource,
	extractor invoicedomain.Extractor,
	notifier Notifier,
) InvoiceUsecase {
	return &invoiceUsecase{
		invoiceRepo:  invoiceRepo,
		mailProvider: mailProvider,
		tokens:       tokens,
		extractor:    extractor,
		notifier:     notifier,
	}
}

func (u *invoiceUsecase) Extract(ctx context.Context, messageID, attachmentID string, regenerate bool) (*invoicedomain.InvoiceRecord, error) {
	if !regenerate {
		cached, err := u.invoiceRepo.Get(messageID, attachmentID)
		if err != nil {
			return nil, err
		}
		if cached != nil {
			return cached, nil
		}
	}

	accessToken, err := u.tokens.GetValidAccessToken(ctx)
	if err != nil {
		return nil, err
	}

	pdfBytes, err := u.mailProvider.GetAttachmentContent(ctx, accessToken, messageID, attachmentID)
	if err != nil {
		return nil, err
	}

	if err := validatePDF(pdfBytes); err != nil {
		return nil, err
	}

	fields, err := u.extractor.ExtractInvoiceData(ctx, pdfBytes)
	if err != nil {
		return nil, err
	}

	record, err := u.invoiceRepo.Save(messageID, attachmentID, *fields)
	if err != nil {
		return nil, err
	}

	log.Printf("[Invoice] Extracted invoice %s for message %s", orEmpty(fields.InvoiceNumber), messageID)

	if u.notifier != nil && !regenerate {
		u.notifier.NotifyNewInvoice(*fields)
	}

	return record, nil
}

func (u *invoiceUsecase) IsCached(messageID, attachmentID string) (bool, error) {
	record, err := u.invoiceRepo.Get(messageID, attachmentID)
	if err != nil {
		return false, err
	}
	return record != nil, nil
}

func (u *invoiceUsecase) TotalCount() (int64, error) {
	return u.invoiceRepo.Count()
}

// validatePDF checks the bytes parse as a PDF before spending an extraction
// call on them
func validatePDF(data []byte) error {
	if _, err := pdf.NewReader(bytes.NewReader(data), int64(len(data))); err != nil {
		return fmt.Errorf("attachment is not a readable PDF: %v", err)
	}
	return nil
}

func orEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
