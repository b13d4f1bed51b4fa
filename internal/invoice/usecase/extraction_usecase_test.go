package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	emaildomain "faktury-backend/internal/email/domain"
	invoicedomain "faktury-backend/internal/invoice/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeInvoiceRepo struct {
	records map[string]*invoicedomain.InvoiceRecord

	saveCalls int
}

func key(messageID, attachmentID string) string { return messageID + "/" + attachmentID }

func (r *fakeInvoiceRepo) Get(messageID, attachmentID string) (*invoicedomain.InvoiceRecord, error) {
	return r.records[key(messageID, attachmentID)], nil
}

func (r *fakeInvoiceRepo) Save(messageID, attachmentID string, fields invoicedomain.InvoiceFields) (*invoicedomain.InvoiceRecord, error) {
	r.saveCalls++
	if r.records == nil {
		r.records = make(map[string]*invoicedomain.InvoiceRecord)
	}
	record := &invoicedomain.InvoiceRecord{
		MessageID:     messageID,
		AttachmentID:  attachmentID,
		InvoiceNumber: fields.InvoiceNumber,
		SupplierName:  fields.SupplierName,
		TotalAmount:   fields.TotalAmount,
	}
	r.records[key(messageID, attachmentID)] = record
	return record, nil
}

func (r *fakeInvoiceRepo) Delete(messageID, attachmentID string) error {
	delete(r.records, key(messageID, attachmentID))
	return nil
}

func (r *fakeInvoiceRepo) HasForMessage(messageID string) (bool, error) { return false, nil }

func (r *fakeInvoiceRepo) Count() (int64, error) { return int64(len(r.records)), nil }

type fakeAttachmentProvider struct {
	content []byte
	err     error

	fetchCalls int
}

func (f *fakeAttachmentProvider) ListFolders(ctx context.Context, accessToken string) ([]emaildomain.Folder, error) {
	return nil, nil
}

func (f *fakeAttachmentProvider) ListMessages(ctx context.Context, accessToken, folderName string) ([]emaildomain.Message, error) {
	return nil, nil
}

func (f *fakeAttachmentProvider) ListAttachments(ctx context.Context, accessToken, messageID string) ([]emaildomain.Attachment, error) {
	return nil, nil
}

func (f *fakeAttachmentProvider) GetAttachmentContent(ctx context.Context, accessToken, messageID, attachmentID string) ([]byte, error) {
	f.fetchCalls++
	if f.err != nil {
		return nil, f.err
	}
	return f.content, nil
}

type staticTokenSource struct{}

func (staticTokenSource) GetValidAccessToken(ctx context.Context) (string, error) {
	return "T", nil
}

type fakeExtractor struct {
	fields *invoicedomain.InvoiceFields
	err    error

	calls int
}

func (f *fakeExtractor) ExtractInvoiceData(ctx context.Context, pdfData []byte) (*invoicedomain.InvoiceFields, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.fields, nil
}

type recordingNotifier struct {
	notified []invoicedomain.InvoiceFields
}

func (n *recordingNotifier) NotifyNewInvoice(fields invoicedomain.InvoiceFields) {
	n.notified = append(n.notified, fields)
}

// minimalPDF builds the smallest document the PDF reader accepts, with xref
// offsets computed from the actual byte positions.
func minimalPDF() []byte {
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")

	offsets := make([]int, 4)
	writeObj := func(num int, body string) {
		offsets[num] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", num, body)
	}
	writeObj(1, "<< /Type /Catalog /Pages 2 0 R >>")
	writeObj(2, "<< /Type /Pages /Kids [3 0 R] /Count 1 >>")
	writeObj(3, "<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] >>")

	xrefOffset := buf.Len()
	buf.WriteString("xref\n0 4\n")
	buf.WriteString("0000000000 65535 f \n")
	for i := 1; i <= 3; i++ {
		fmt.Fprintf(&buf, "%010d 00000 n \n", offsets[i])
	}
	buf.WriteString("trailer\n<< /Size 4 /Root 1 0 R >>\nstartxref\n")
	fmt.Fprintf(&buf, "%d\n%%%%EOF\n", xrefOffset)
	return buf.Bytes()
}

func str(s string) *string { return &s }

func TestExtract_CacheMissExtractsAndSaves(t *testing.T) {
	repo := &fakeInvoiceRepo{}
	provider := &fakeAttachmentProvider{content: minimalPDF()}
	extractor := &fakeExtractor{fields: &invoicedomain.InvoiceFields{
		InvoiceNumber: str("2026-001"),
		SupplierName:  str("ACME s.r.o."),
	}}
	notifier := &recordingNotifier{}
	uc := NewInvoiceUsecase(repo, provider, staticTokenSource{}, extractor, notifier)

	record, err := uc.Extract(context.Background(), "m1", "a1", false)

	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, "2026-001", *record.InvoiceNumber)
	assert.Equal(t, 1, extractor.calls)
	assert.Equal(t, 1, repo.saveCalls)
	require.Len(t, notifier.notified, 1)
	assert.Equal(t, "ACME s.r.o.", *notifier.notified[0].SupplierName)
}

func TestExtract_CacheHitIsIdempotent(t *testing.T) {
	repo := &fakeInvoiceRepo{}
	provider := &fakeAttachmentProvider{content: minimalPDF()}
	extractor := &fakeExtractor{fields: &invoicedomain.InvoiceFields{InvoiceNumber: str("2026-001")}}
	uc := NewInvoiceUsecase(repo, provider, staticTokenSource{}, extractor, nil)

	first, err := uc.Extract(context.Background(), "m1", "a1", false)
	require.NoError(t, err)

	second, err := uc.Extract(context.Background(), "m1", "a1", false)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, extractor.calls, "a cached attachment must not be re-extracted")
	assert.Equal(t, 1, provider.fetchCalls, "cache hits make no provider calls")
}

func TestExtract_RegenerateBypassesCache(t *testing.T) {
	repo := &fakeInvoiceRepo{}
	provider := &fakeAttachmentProvider{content: minimalPDF()}
	extractor := &fakeExtractor{fields: &invoicedomain.InvoiceFields{InvoiceNumber: str("v1")}}
	notifier := &recordingNotifier{}
	uc := NewInvoiceUsecase(repo, provider, staticTokenSource{}, extractor, notifier)

	_, err := uc.Extract(context.Background(), "m1", "a1", false)
	require.NoError(t, err)

	extractor.fields = &invoicedomain.InvoiceFields{InvoiceNumber: str("v2")}
	record, err := uc.Extract(context.Background(), "m1", "a1", true)

	require.NoError(t, err)
	assert.Equal(t, "v2", *record.InvoiceNumber)
	assert.Equal(t, 2, extractor.calls)
	assert.Equal(t, 2, repo.saveCalls, "regenerate overwrites the cached record")
	assert.Len(t, notifier.notified, 1, "regeneration is not a new invoice")

	cached, err := uc.Extract(context.Background(), "m1", "a1", false)
	require.NoError(t, err)
	assert.Equal(t, "v2", *cached.InvoiceNumber)
}

func TestExtract_RejectsNonPDF(t *testing.T) {
	repo := &fakeInvoiceRepo{}
	provider := &fakeAttachmentProvider{content: []byte("this is not a pdf")}
	extractor := &fakeExtractor{}
	uc := NewInvoiceUsecase(repo, provider, staticTokenSource{}, extractor, nil)

	_, err := uc.Extract(context.Background(), "m1", "a1", false)

	require.Error(t, err)
	assert.Equal(t, 0, extractor.calls, "garbage bytes must not reach the extraction call")
	assert.Equal(t, 0, repo.saveCalls)
}

func TestExtract_ExtractorFailureNotCached(t *testing.T) {
	repo := &fakeInvoiceRepo{}
	provider := &fakeAttachmentProvider{content: minimalPDF()}
	extractor := &fakeExtractor{err: errors.New("malformed extraction output")}
	uc := NewInvoiceUsecase(repo, provider, staticTokenSource{}, extractor, nil)

	_, err := uc.Extract(context.Background(), "m1", "a1", false)
	require.Error(t, err)
	assert.Equal(t, 0, repo.saveCalls)

	cached, err := uc.IsCached("m1", "a1")
	require.NoError(t, err)
	assert.False(t, cached)
}
