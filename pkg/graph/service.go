package graph

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	emaildomain "faktury-backend/internal/email/domain"
)

const defaultBaseURL = "https://graph.microsoft.com/v1.0"

// Service is a thin Microsoft Graph mail client. It holds no token state;
// every call takes the access token to use.
type Service struct {
	BaseURL string
	client  *http.Client
}

func NewService() *Service {
	return &Service{
		BaseURL: defaultBaseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

type graphFolder struct {
	ID             string `json:"id"`
	DisplayName    string `json:"displayName"`
	TotalItemCount int    `json:"totalItemCount"`
}

type graphMessage struct {
	ID      string `json:"id"`
	Subject string `json:"subject"`
	From    struct {
		EmailAddress struct {
			Address string `json:"address"`
		} `json:"emailAddress"`
	} `json:"from"`
	ReceivedDateTime time.Time `json:"receivedDateTime"`
	HasAttachments   bool      `json:"hasAttachments"`
}

type graphAttachment struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	ContentType  string `json:"contentType"`
	Size         int64  `json:"size"`
	ContentBytes string `json:"contentBytes"`
}

func (s *Service) ListFolders(ctx context.Context, accessToken string) ([]emaildomain.Folder, error) {
	var page struct {
		Value []graphFolder `json:"value"`
	}
	if err := s.get(ctx, accessToken, "/me/mailFolders", &page); err != nil {
		return nil, err
	}

	folders := make([]emaildomain.Folder, 0, len(page.Value))
	for _, f := range page.Value {
		folders = append(folders, emaildomain.Folder{
			ID:          f.ID,
			DisplayName: f.DisplayName,
			TotalCount:  f.TotalItemCount,
		})
	}
	return folders, nil
}

func (s *Service) ListMessages(ctx context.Context, accessToken, folderName string) ([]emaildomain.Message, error) {
	folderID, err := s.findFolderID(ctx, accessToken, folderName)
	if err != nil {
		return nil, err
	}

	path := fmt.Sprintf("/me/mailFolders/%s/messages?%s", url.PathEscape(folderID), url.Values{
		"$select":  {"id,subject,from,receivedDateTime,hasAttachments"},
		"$orderby": {"receivedDateTime DESC"},
		"$top":     {"50"},
	}.Encode())

	var page struct {
		Value []graphMessage `json:"value"`
	}
	if err := s.get(ctx, accessToken, path, &page); err != nil {
		return nil, err
	}

	messages := make([]emaildomain.Message, 0, len(page.Value))
	for _, m := range page.Value {
		from := m.From.EmailAddress.Address
		if from == "" {
			from = "Unknown"
		}
		messages = append(messages, emaildomain.Message{
			ID:             m.ID,
			Subject:        m.Subject,
			From:           from,
			ReceivedAt:     m.ReceivedDateTime,
			HasAttachments: m.HasAttachments,
		})
	}
	return messages, nil
}

func (s *Service) ListAttachments(ctx context.Context, accessToken, messageID string) ([]emaildomain.Attachment, error) {
	path := fmt.Sprintf("/me/messages/%s/attachments?%s", url.PathEscape(messageID), url.Values{
		"$select": {"id,name,contentType,size"},
	}.Encode())

	var page struct {
		Value []graphAttachment `json:"value"`
	}
	if err := s.get(ctx, accessToken, path, &page); err != nil {
		return nil, err
	}

	attachments := make([]emaildomain.Attachment, 0)
	for _, a := range page.Value {
		if a.ContentType != "application/pdf" {
			continue
		}
		attachments = append(attachments, emaildomain.Attachment{
			ID:          a.ID,
			Name:        a.Name,
			ContentType: a.ContentType,
			Size:        a.Size,
		})
	}
	return attachments, nil
}

func (s *Service) GetAttachmentContent(ctx context.Context, accessToken, messageID, attachmentID string) ([]byte, error) {
	path := fmt.Sprintf("/me/messages/%s/attachments/%s", url.PathEscape(messageID), url.PathEscape(attachmentID))

	var attachment graphAttachment
	if err := s.get(ctx, accessToken, path, &attachment); err != nil {
		return nil, err
	}

	data, err := base64.StdEncoding.DecodeString(attachment.ContentBytes)
	if err != nil {
		return nil, fmt.Errorf("unable to decode attachment content: %v", err)
	}
	return data, nil
}

// findFolderID resolves a folder by case-insensitive display name
func (s *Service) findFolderID(ctx context.Context, accessToken, folderName string) (string, error) {
	folders, err := s.ListFolders(ctx, accessToken)
	if err != nil {
		return "", err
	}

	names := make([]string, 0, len(folders))
	for _, f := range folders {
		if strings.EqualFold(f.DisplayName, folderName) {
			return f.ID, nil
		}
		names = append(names, f.DisplayName)
	}
	return "", fmt.Errorf("folder %q not found, available folders: %s", folderName, strings.Join(names, ", "))
}

func (s *Service) get(ctx context.Context, accessToken, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, "GET", s.BaseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("Graph API error %d: %s", resp.StatusCode, string(body))
	}

	return json.Unmarshal(body, out)
}
