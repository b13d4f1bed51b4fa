package notification

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	invoicedomain "faktury-backend/internal/invoice/domain"
)

// DiscordEmbed is a rich embed in a webhook payload
type DiscordEmbed struct {
	Title       string              `json:"title"`
	Description string              `json:"description,omitempty"`
	Color       int                 `json:"color"`
	Fields      []DiscordEmbedField `json:"fields"`
	Footer      *DiscordFooter      `json:"footer,omitempty"`
	Timestamp   string              `json:"timestamp,omitempty"`
}

type DiscordEmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

type DiscordFooter struct {
	Text string `json:"text"`
}

// DiscordWebhookPayload is the body posted to the webhook URL
type DiscordWebhookPayload struct {
	Content string         `json:"content,omitempty"`
	Embeds  []DiscordEmbed `json:"embeds"`
}

const (
	colorGreen = 0x00ff00
	colorRed   = 0xff0000
)

// NewInvoicePayload builds the webhook payload announcing a freshly
// extracted invoice
func NewInvoicePayload(fields invoicedomain.InvoiceFields, frontendURL string) DiscordWebhookPayload {
	embed := DiscordEmbed{
		Title: "🧾 Nová faktura: " + orNA(fields.InvoiceNumber),
		Color: colorGreen,
		Fields: []DiscordEmbedField{
			{Name: "💰 Částka", Value: amountValue(fields), Inline: true},
			{Name: "📅 Datum vystavení", Value: orNA(fields.IssueDate), Inline: true},
			{Name: "📅 Datum splatnosti", Value: orNA(fields.DueDate), Inline: true},
		},
		Footer:    &DiscordFooter{Text: "📧 Invoice App"},
		Timestamp: time.Now().Format(time.RFC3339),
	}

	if fields.PaymentReference != nil {
		embed.Fields = append(embed.Fields, DiscordEmbedField{
			Name: "🔢 Variabilní symbol", Value: *fields.PaymentReference, Inline: true,
		})
	}
	embed.Fields = append(embed.Fields,
		DiscordEmbedField{Name: "🏢 Dodavatel", Value: orNA(fields.SupplierName)},
		DiscordEmbedField{Name: "🔗 Odkaz", Value: fmt.Sprintf("[Otevřít v aplikaci](%s)", frontendURL)},
	)

	return DiscordWebhookPayload{
		Content: "✨ Byla nalezena nová faktura!",
		Embeds:  []DiscordEmbed{embed},
	}
}

// ErrorPayload builds the webhook payload for an operator-facing error
func ErrorPayload(message, details string) DiscordWebhookPayload {
	embed := DiscordEmbed{
		Title:       "❌ Chyba v Invoice App",
		Description: message,
		Color:       colorRed,
		Fields:      []DiscordEmbedField{},
		Footer:      &DiscordFooter{Text: "📧 Invoice App"},
		Timestamp:   time.Now().Format(time.RFC3339),
	}
	if details != "" {
		if len(details) > 1024 {
			// Discord field value limit
			details = details[:1024]
		}
		embed.Fields = append(embed.Fields, DiscordEmbedField{Name: "Detaily", Value: details})
	}
	return DiscordWebhookPayload{Embeds: []DiscordEmbed{embed}}
}

func sendWebhook(client *http.Client, webhookURL string, payload DiscordWebhookPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	resp, err := client.Post(webhookURL, "application/json", bytes.NewBuffer(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("Discord webhook failed: %s", resp.Status)
	}
	return nil
}

func orNA(s *string) string {
	if s == nil || *s == "" {
		return "N/A"
	}
	return *s
}

func amountValue(fields invoicedomain.InvoiceFields) string {
	if fields.TotalAmount == nil {
		return "N/A"
	}
	currency := "CZK"
	if fields.Currency != nil && *fields.Currency != "" {
		currency = *fields.Currency
	}
	return fmt.Sprintf("%.2f %s", *fields.TotalAmount, currency)
}
