package domain

import "time"

// InvoiceFields is the structured data extracted from one PDF invoice.
// Fields the model could not find on the document are nil.
type InvoiceFields struct {
	InvoiceNumber    *string  `json:"invoiceNumber"`
	IssueDate        *string  `json:"issueDate"` // YYYY-MM-DD
	DueDate          *string  `json:"dueDate"`   // YYYY-MM-DD
	SupplierName     *string  `json:"supplierName"`
	SupplierTaxID    *string  `json:"supplierICO"`
	SupplierVatID    *string  `json:"supplierDIC"`
	TotalAmount      *float64 `json:"totalAmount"`
	AmountWithoutTax *float64 `json:"amountWithoutVAT"`
	TaxAmount        *float64 `json:"vatAmount"`
	PaymentReference *string  `json:"variableSymbol"`
	Currency         *string  `json:"currency"`
	BankAccount      *string  `json:"bankAccount"`
}

// InvoiceRecord is a cached extraction keyed by (message, attachment).
// At most one row exists per attachment; regeneration overwrites it wholesale.
type InvoiceRecord struct {
	ID           uint   `json:"-" gorm:"primaryKey;autoIncrement"`
	MessageID    string `json:"messageId" gorm:"uniqueIndex:idx_message_attachment;not null"`
	AttachmentID string `json:"attachmentId" gorm:"uniqueIndex:idx_message_attachment;not null"`

	InvoiceNumber    *string  `json:"invoiceNumber"`
	IssueDate        *string  `json:"issueDate"`
	DueDate          *string  `json:"dueDate"`
	SupplierName     *string  `json:"supplierName"`
	SupplierTaxID    *string  `json:"supplierICO"`
	SupplierVatID    *string  `json:"supplierDIC"`
	TotalAmount      *float64 `json:"totalAmount"`
	AmountWithoutTax *float64 `json:"amountWithoutVAT"`
	TaxAmount        *float64 `json:"vatAmount"`
	PaymentReference *string  `json:"variableSymbol"`
	Currency         *string  `json:"currency"`
	BankAccount      *string  `json:"bankAccount"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Fields returns the extraction payload of a cached record
func (r *InvoiceRecord) Fields() InvoiceFields {
	return InvoiceFields{
		InvoiceNumber:    r.InvoiceNumber,
		IssueDate:        r.IssueDate,
		DueDate:          r.DueDate,
		SupplierName:     r.SupplierName,
		SupplierTaxID:    r.SupplierTaxID,
		SupplierVatID:    r.SupplierVatID,
		TotalAmount:      r.TotalAmount,
		AmountWithoutTax: r.AmountWithoutTax,
		TaxAmount:        r.TaxAmount,
		PaymentReference: r.PaymentReference,
		Currency:         r.Currency,
		BankAccount:      r.BankAccount,
	}
}
