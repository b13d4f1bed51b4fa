package domain

import "context"

// Extractor turns PDF bytes into structured invoice fields via an external
// generative-AI call. Malformed model output is an error.
type Extractor interface {
	ExtractInvoiceData(ctx context.Context, pdfBytes []byte) (*InvoiceFields, error)
}
