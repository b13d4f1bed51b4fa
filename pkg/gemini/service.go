package gemini

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	invoicedomain "faktury-backend/internal/invoice/domain"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// extractionPrompt asks for the invoice fields as a bare JSON object.
// Missing fields come back as null.
const extractionPrompt = `Analyzuj tento dokument faktury a extrahuj následující údaje ve formátu JSON.

Pokud nějaký údaj není na faktuře, vrať null pro daný field.

Vrať JSON objekt s těmito fieldy:
{
  "invoiceNumber": "číslo faktury",
  "issueDate": "datum vystavení ve formátu YYYY-MM-DD",
  "dueDate": "datum splatnosti ve formátu YYYY-MM-DD",
  "supplierName": "název dodavatele",
  "supplierICO": "IČO dodavatele (jen čísla)",
  "supplierDIC": "DIČ dodavatele",
  "totalAmount": celková částka včetně DPH jako číslo,
  "amountWithoutVAT": částka bez DPH jako číslo,
  "vatAmount": DPH částka jako číslo,
  "variableSymbol": "variabilní symbol",
  "currency": "měna (CZK, EUR, atd.)",
  "bankAccount": "číslo bankovního účtu dodavatele"
}

DŮLEŽITÉ: Vrať POUZE validní JSON objekt, bez jakéhokoliv dalšího textu před nebo za JSON.`

type GeminiService struct {
	ApiKey  string
	BaseURL string
	Model   string
	client  *http.Client
}

func NewGeminiService(apiKey string) *GeminiService {
	return &GeminiService{
		ApiKey:  apiKey,
		BaseURL: defaultBaseURL,
		Model:   "gemini-2.5-flash",
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

// ExtractInvoiceData sends the PDF inline to the generateContent endpoint and
// parses the returned JSON object
func (g *GeminiService) ExtractInvoiceData(ctx context.Context, pdfBytes []byte) (*invoicedomain.InvoiceFields, error) {
	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", g.BaseURL, g.Model, g.ApiKey)

	payload := map[string]interface{}{
		"contents": []map[string]interface{}{
			{
				"parts": []map[string]interface{}{
					{
						"inline_data": map[string]string{
							"mime_type": "application/pdf",
							"data":      base64.StdEncoding.EncodeToString(pdfBytes),
						},
					},
					{"text": extractionPrompt},
				},
			},
		},
	}

	body, _ := json.Marshal(payload)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Gemini API error: %s", string(respBody))
	}

	text, err := candidateText(respBody)
	if err != nil {
		return nil, err
	}

	var fields invoicedomain.InvoiceFields
	if err := json.Unmarshal([]byte(stripMarkdownFences(text)), &fields); err != nil {
		return nil, fmt.Errorf("malformed extraction output: %w", err)
	}

	return &fields, nil
}

// candidateText pulls the first candidate's text out of a generateContent
// response
func candidateText(respBody []byte) (string, error) {
	var result struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", err
	}

	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no extraction returned")
	}
	return result.Candidates[0].Content.Parts[0].Text, nil
}

// stripMarkdownFences removes ```json fences the model sometimes wraps the
// object in despite the prompt
func stripMarkdownFences(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}
