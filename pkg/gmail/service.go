package gmail

import (
	"context"
	"encoding/base64"
	"fmt"
	"sort"
	"strings"
	"time"

	emaildomain "faktury-backend/internal/email/domain"

	"golang.org/x/oauth2"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// Service is a thin Gmail mail client. Labels stand in for folders. It holds
// no token state; every call takes the access token to use.
type Service struct{}

func NewService() *Service {
	return &Service{}
}

const user = "me"

func (s *Service) gmailService(ctx context.Context, accessToken string) (*gmail.Service, error) {
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"})
	srv, err := gmail.NewService(ctx, option.WithTokenSource(src))
	if err != nil {
		return nil, fmt.Errorf("unable to create Gmail service: %v", err)
	}
	return srv, nil
}

func (s *Service) ListFolders(ctx context.Context, accessToken string) ([]emaildomain.Folder, error) {
	srv, err := s.gmailService(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	labelsResp, err := srv.Users.Labels.List(user).Do()
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve labels: %v", err)
	}

	folders := make([]emaildomain.Folder, 0, len(labelsResp.Labels))
	for _, label := range labelsResp.Labels {
		folders = append(folders, emaildomain.Folder{
			ID:          label.Id,
			DisplayName: label.Name,
			TotalCount:  int(label.MessagesTotal),
		})
	}
	return folders, nil
}

func (s *Service) ListMessages(ctx context.Context, accessToken, folderName string) ([]emaildomain.Message, error) {
	srv, err := s.gmailService(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	labelID, err := findLabelID(srv, folderName)
	if err != nil {
		return nil, err
	}

	listResp, err := srv.Users.Messages.List(user).LabelIds(labelID).MaxResults(50).Do()
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve messages: %v", err)
	}

	messages := make([]emaildomain.Message, 0, len(listResp.Messages))
	for _, msg := range listResp.Messages {
		detail, err := srv.Users.Messages.Get(user, msg.Id).
			Format("metadata").MetadataHeaders("Subject", "From").Do()
		if err != nil {
			// Skip messages we cannot fetch rather than failing the listing
			continue
		}

		from := getHeader(detail.Payload.Headers, "From")
		if from == "" {
			from = "Unknown"
		}

		messages = append(messages, emaildomain.Message{
			ID:             msg.Id,
			Subject:        getHeader(detail.Payload.Headers, "Subject"),
			From:           from,
			ReceivedAt:     time.Unix(detail.InternalDate/1000, 0),
			HasAttachments: hasAttachments(detail.Payload),
		})
	}

	sort.Slice(messages, func(i, j int) bool {
		return messages[i].ReceivedAt.After(messages[j].ReceivedAt)
	})
	return messages, nil
}

func (s *Service) ListAttachments(ctx context.Context, accessToken, messageID string) ([]emaildomain.Attachment, error) {
	srv, err := s.gmailService(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	msg, err := srv.Users.Messages.Get(user, messageID).Format("full").Do()
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve message: %v", err)
	}

	attachments := make([]emaildomain.Attachment, 0)

	var walk func(parts []*gmail.MessagePart)
	walk = func(parts []*gmail.MessagePart) {
		for _, part := range parts {
			if part.Filename != "" && part.Body != nil && part.Body.AttachmentId != "" && part.MimeType == "application/pdf" {
				attachments = append(attachments, emaildomain.Attachment{
					ID:          part.Body.AttachmentId,
					Name:        part.Filename,
					ContentType: part.MimeType,
					Size:        part.Body.Size,
				})
			}
			if len(part.Parts) > 0 {
				walk(part.Parts)
			}
		}
	}
	if msg.Payload != nil {
		walk(msg.Payload.Parts)
	}

	return attachments, nil
}

func (s *Service) GetAttachmentContent(ctx context.Context, accessToken, messageID, attachmentID string) ([]byte, error) {
	srv, err := s.gmailService(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	part, err := srv.Users.Messages.Attachments.Get(user, messageID, attachmentID).Do()
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve attachment: %v", err)
	}

	data, err := base64.URLEncoding.DecodeString(part.Data)
	if err != nil {
		return nil, fmt.Errorf("unable to decode attachment data: %v", err)
	}
	return data, nil
}

// findLabelID resolves a label by case-insensitive name
func findLabelID(srv *gmail.Service, folderName string) (string, error) {
	labelsResp, err := srv.Users.Labels.List(user).Do()
	if err != nil {
		return "", fmt.Errorf("unable to retrieve labels: %v", err)
	}

	names := make([]string, 0, len(labelsResp.Labels))
	for _, label := range labelsResp.Labels {
		if strings.EqualFold(label.Name, folderName) {
			return label.Id, nil
		}
		names = append(names, label.Name)
	}
	return "", fmt.Errorf("label %q not found, available labels: %s", folderName, strings.Join(names, ", "))
}

func getHeader(headers []*gmail.MessagePartHeader, name string) string {
	for _, header := range headers {
		if header.Name == name {
			return header.Value
		}
	}
	return ""
}

func hasAttachments(payload *gmail.MessagePart) bool {
	if payload == nil {
		return false
	}
	for _, part := range payload.Parts {
		if part.Filename != "" && part.Body != nil && part.Body.AttachmentId != "" {
			return true
		}
		if hasAttachments(part) {
			return true
		}
	}
	return false
}
