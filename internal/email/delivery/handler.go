package delivery

import (
	"errors"
	"log"
	"net/http"
	"time"

	authdomain "faktury-backend/internal/auth/domain"
	emaildomain "faktury-backend/internal/email/domain"
	emaildto "faktury-backend/internal/email/dto"
	emailusecase "faktury-backend/internal/email/usecase"
	invoiceusecase "faktury-backend/internal/invoice/usecase"

	"github.com/gin-gonic/gin"
)

// maxBatchSize bounds the batch attachment lookup per request
const maxBatchSize = 50

type EmailHandler struct {
	mailProvider emaildomain.MailProvider
	tokens       invoiceusecase.TokenSource
	syncUsecase  emailusecase.SyncUsecase
	invoices     invoiceusecase.InvoiceUsecase
	targetFolder string
}

func NewEmailHandler(
	mailProvider emaildomain.MailProvider,
	tokens invoiceusecase.TokenSource,
	syncUsecase emailusecase.SyncUsecase,
	invoices invoiceusecase.InvoiceUsecase,
	targetFolder string,
) *EmailHandler {
	return &EmailHandler{
		mailProvider: mailProvider,
		tokens:       tokens,
		syncUsecase:  syncUsecase,
		invoices:     invoices,
		targetFolder: targetFolder,
	}
}

func (h *EmailHandler) GetFolders(c *gin.Context) {
	accessToken, ok := h.accessToken(c)
	if !ok {
		return
	}

	folders, err := h.mailProvider.ListFolders(c.Request.Context(), accessToken)
	if err != nil {
		log.Printf("[Email] Error listing folders: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list folders"})
		return
	}

	c.JSON(http.StatusOK, emaildto.FoldersResponse{Folders: folders})
}

// GetFakturyEmails lists the messages of the invoice folder, newest first
func (h *EmailHandler) GetFakturyEmails(c *gin.Context) {
	accessToken, ok := h.accessToken(c)
	if !ok {
		return
	}

	messages, err := h.mailProvider.ListMessages(c.Request.Context(), accessToken, h.targetFolder)
	if err != nil {
		log.Printf("[Email] Error fetching %s emails: %v", h.targetFolder, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch emails"})
		return
	}

	c.JSON(http.StatusOK, emaildto.EmailsResponse{Emails: messages, Total: len(messages)})
}

func (h *EmailHandler) GetAttachments(c *gin.Context) {
	messageID := c.Param("messageId")

	accessToken, ok := h.accessToken(c)
	if !ok {
		return
	}

	attachments, err := h.mailProvider.ListAttachments(c.Request.Context(), accessToken, messageID)
	if err != nil {
		log.Printf("[Email] Error fetching attachments for %s: %v", messageID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch attachments"})
		return
	}

	c.JSON(http.StatusOK, attachments)
}

// GetAttachmentsBatch resolves attachments for up to 50 messages in one call.
// A failed lookup yields an empty slice for that message instead of failing
// the whole batch.
func (h *EmailHandler) GetAttachmentsBatch(c *gin.Context) {
	var req emaildto.BatchAttachmentsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "messageIds is required"})
		return
	}

	if len(req.MessageIDs) == 0 || len(req.MessageIDs) > maxBatchSize {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "messageIds must contain between 1 and 50 ids",
		})
		return
	}

	accessToken, ok := h.accessToken(c)
	if !ok {
		return
	}

	result := make(emaildto.BatchAttachmentsResponse, len(req.MessageIDs))
	for _, messageID := range req.MessageIDs {
		attachments, err := h.mailProvider.ListAttachments(c.Request.Context(), accessToken, messageID)
		if err != nil {
			log.Printf("[Email] Batch attachment lookup failed for %s: %v", messageID, err)
			result[messageID] = []emaildomain.Attachment{}
			continue
		}
		if attachments == nil {
			attachments = []emaildomain.Attachment{}
		}
		result[messageID] = attachments
	}

	c.JSON(http.StatusOK, result)
}

// GetAttachmentContent streams the raw PDF bytes inline
func (h *EmailHandler) GetAttachmentContent(c *gin.Context) {
	messageID := c.Param("messageId")
	attachmentID := c.Param("attachmentId")

	accessToken, ok := h.accessToken(c)
	if !ok {
		return
	}

	content, err := h.mailProvider.GetAttachmentContent(c.Request.Context(), accessToken, messageID, attachmentID)
	if err != nil {
		log.Printf("[Email] Error fetching attachment content: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch attachment content"})
		return
	}

	c.Header("Content-Disposition", "inline")
	c.Data(http.StatusOK, "application/pdf", content)
}

// ExtractInvoice runs (or replays) the invoice extraction for one attachment
func (h *EmailHandler) ExtractInvoice(c *gin.Context) {
	messageID := c.Param("messageId")
	attachmentID := c.Param("attachmentId")
	regenerate := c.Query("regenerate") == "true"

	record, err := h.invoices.Extract(c.Request.Context(), messageID, attachmentID, regenerate)
	if err != nil {
		if errors.Is(err, authdomain.ErrNotAuthenticated) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
			return
		}
		log.Printf("[Email] Error extracting invoice data: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to extract invoice data"})
		return
	}

	c.JSON(http.StatusOK, record.Fields())
}

func (h *EmailHandler) GetSyncStatus(c *gin.Context) {
	lastSync, err := h.syncUsecase.LastSyncTimestamp()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read sync status"})
		return
	}

	total, err := h.invoices.TotalCount()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read sync status"})
		return
	}

	resp := emaildto.SyncStatusResponse{TotalInvoices: total}
	if !lastSync.IsZero() {
		formatted := lastSync.UTC().Format(time.RFC3339)
		resp.LastSyncTimestamp = &formatted
	}

	c.JSON(http.StatusOK, resp)
}

// Sync runs one scan cycle on demand
func (h *EmailHandler) Sync(c *gin.Context) {
	result, err := h.syncUsecase.SyncEmails(c.Request.Context(), true)
	if err != nil {
		if errors.Is(err, authdomain.ErrNotAuthenticated) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
			return
		}
		log.Printf("[Email] Sync failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Sync failed"})
		return
	}

	c.JSON(http.StatusOK, result)
}

// accessToken resolves a valid provider token or writes the 401 itself
func (h *EmailHandler) accessToken(c *gin.Context) (string, bool) {
	accessToken, err := h.tokens.GetValidAccessToken(c.Request.Context())
	if err != nil {
		if errors.Is(err, authdomain.ErrNotAuthenticated) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
			return "", false
		}
		log.Printf("[Email] Token resolution failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return "", false
	}
	return accessToken, true
}
