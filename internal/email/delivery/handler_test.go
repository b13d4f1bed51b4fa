package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	authdomain "faktury-backend/internal/auth/domain"
	emaildomain "faktury-backend/internal/email/domain"
	invoicedomain "faktury-backend/internal/invoice/domain"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingProvider struct {
	attachments map[string][]emaildomain.Attachment
	content     []byte

	listFolderCalls      int
	listAttachmentsCalls int
	contentCalls         int
}

func (p *countingProvider) ListFolders(ctx context.Context, accessToken string) ([]emaildomain.Folder, error) {
	p.listFolderCalls++
	return []emaildomain.Folder{{ID: "f1", DisplayName: "faktury", TotalCount: 2}}, nil
}

func (p *countingProvider) ListMessages(ctx context.Context, accessToken, folderName string) ([]emaildomain.Message, error) {
	return []emaildomain.Message{{ID: "m1", Subject: "Faktura 2026-001", HasAttachments: true}}, nil
}

func (p *countingProvider) ListAttachments(ctx context.Context, accessToken, messageID string) ([]emaildomain.Attachment, error) {
	p.listAttachmentsCalls++
	if atts, ok := p.attachments[messageID]; ok {
		return atts, nil
	}
	return nil, fmt.Errorf("message %s not found", messageID)
}

func (p *countingProvider) GetAttachmentContent(ctx context.Context, accessToken, messageID, attachmentID string) ([]byte, error) {
	p.contentCalls++
	return p.content, nil
}

type stubTokenSource struct {
	err error
}

func (s *stubTokenSource) GetValidAccessToken(ctx context.Context) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return "T", nil
}

type stubSyncUsecase struct {
	result   *emaildomain.SyncResult
	err      error
	lastSync time.Time
}

func (s *stubSyncUsecase) SyncEmails(ctx context.Context, autoExtract bool) (*emaildomain.SyncResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func (s *stubSyncUsecase) LastSyncTimestamp() (time.Time, error) {
	return s.lastSync, nil
}

type stubInvoices struct {
	record *invoicedomain.InvoiceRecord
	err    error
	total  int64
}

func (s *stubInvoices) Extract(ctx context.Context, messageID, attachmentID string, regenerate bool) (*invoicedomain.InvoiceRecord, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.record, nil
}

func (s *stubInvoices) IsCached(messageID, attachmentID string) (bool, error) { return false, nil }

func (s *stubInvoices) TotalCount() (int64, error) { return s.total, nil }

func newTestRouter(h *EmailHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/emails/folders", h.GetFolders)
	r.GET("/emails/faktury", h.GetFakturyEmails)
	r.POST("/emails/attachments/batch", h.GetAttachmentsBatch)
	r.GET("/emails/:messageId/attachments", h.GetAttachments)
	r.GET("/emails/:messageId/attachments/:attachmentId", h.GetAttachmentContent)
	r.GET("/emails/sync/status", h.GetSyncStatus)
	return r
}

func batchRequest(t *testing.T, ids []string) *http.Request {
	t.Helper()
	body, err := json.Marshal(map[string][]string{"messageIds": ids})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/emails/attachments/batch", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestGetAttachmentsBatch_TooManyIDsRejected(t *testing.T) {
	provider := &countingProvider{}
	h := NewEmailHandler(provider, &stubTokenSource{}, &stubSyncUsecase{}, &stubInvoices{}, "faktury")
	router := newTestRouter(h)

	ids := make([]string, 51)
	for i := range ids {
		ids[i] = fmt.Sprintf("m%d", i)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, batchRequest(t, ids))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 0, provider.listAttachmentsCalls, "rejected batch must make no provider calls")
}

func TestGetAttachmentsBatch_EmptyRejected(t *testing.T) {
	provider := &countingProvider{}
	h := NewEmailHandler(provider, &stubTokenSource{}, &stubSyncUsecase{}, &stubInvoices{}, "faktury")
	router := newTestRouter(h)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, batchRequest(t, []string{}))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 0, provider.listAttachmentsCalls)
}

func TestGetAttachmentsBatch_PartialFailureYieldsEmptySlice(t *testing.T) {
	provider := &countingProvider{attachments: map[string][]emaildomain.Attachment{
		"m1": {{ID: "a1", Name: "invoice.pdf", ContentType: "application/pdf"}},
	}}
	h := NewEmailHandler(provider, &stubTokenSource{}, &stubSyncUsecase{}, &stubInvoices{}, "faktury")
	router := newTestRouter(h)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, batchRequest(t, []string{"m1", "missing"}))

	require.Equal(t, http.StatusOK, w.Code)
	var result map[string][]emaildomain.Attachment
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	require.Len(t, result, 2)
	assert.Len(t, result["m1"], 1)
	assert.Empty(t, result["missing"])
	assert.Equal(t, 2, provider.listAttachmentsCalls)
}

func TestGetAttachmentsBatch_MaxSizeAccepted(t *testing.T) {
	provider := &countingProvider{attachments: map[string][]emaildomain.Attachment{}}
	h := NewEmailHandler(provider, &stubTokenSource{}, &stubSyncUsecase{}, &stubInvoices{}, "faktury")
	router := newTestRouter(h)

	ids := make([]string, 50)
	for i := range ids {
		ids[i] = fmt.Sprintf("m%d", i)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, batchRequest(t, ids))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 50, provider.listAttachmentsCalls)
}

func TestGetFolders_NotAuthenticated(t *testing.T) {
	provider := &countingProvider{}
	h := NewEmailHandler(provider, &stubTokenSource{err: authdomain.ErrNotAuthenticated}, &stubSyncUsecase{}, &stubInvoices{}, "faktury")
	router := newTestRouter(h)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/emails/folders", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Not authenticated")
	assert.Equal(t, 0, provider.listFolderCalls)
}

func TestGetAttachmentContent_ServesInlinePDF(t *testing.T) {
	pdfBytes := []byte("%PDF-1.4 fake content")
	provider := &countingProvider{content: pdfBytes}
	h := NewEmailHandler(provider, &stubTokenSource{}, &stubSyncUsecase{}, &stubInvoices{}, "faktury")
	router := newTestRouter(h)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/emails/m1/attachments/a1", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Equal(t, "inline", w.Header().Get("Content-Disposition"))
	assert.Equal(t, pdfBytes, w.Body.Bytes())
}

func TestGetSyncStatus(t *testing.T) {
	lastSync := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	h := NewEmailHandler(&countingProvider{}, &stubTokenSource{}, &stubSyncUsecase{lastSync: lastSync}, &stubInvoices{total: 7}, "faktury")
	router := newTestRouter(h)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/emails/sync/status", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		LastSyncTimestamp *string `json:"lastSyncTimestamp"`
		TotalInvoices     int64   `json:"totalInvoices"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.LastSyncTimestamp)
	assert.Equal(t, "2026-08-30T12:00:00Z", *resp.LastSyncTimestamp)
	assert.Equal(t, int64(7), resp.TotalInvoices)
}

func TestGetSyncStatus_NeverSynced(t *testing.T) {
	h := NewEmailHandler(&countingProvider{}, &stubTokenSource{}, &stubSyncUsecase{}, &stubInvoices{}, "faktury")
	router := newTestRouter(h)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/emails/sync/status", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		LastSyncTimestamp *string `json:"lastSyncTimestamp"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Nil(t, resp.LastSyncTimestamp)
}
