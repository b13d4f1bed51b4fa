package repository

import (
	"errors"
	"time"

	invoicedomain "faktury-backend/internal/invoice/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// invoiceRepository implements InvoiceRepository using GORM
type invoiceRepository struct {
	db *gorm.DB
}

// NewInvoiceRepository creates a new instance of invoiceRepository
func NewInvoiceRepository(db *gorm.DB) InvoiceRepository {
	return &invoiceRepository{
		db: db,
	}
}

func (r *invoiceRepository) Get(messageID, attachmentID string) (*invoicedomain.InvoiceRecord, error) {
	var record invoicedomain.InvoiceRecord
	err := r.db.Where("message_id = ? AND attachment_id = ?", messageID, attachmentID).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

func (r *invoiceRepository) Save(messageID, attachmentID string, fields invoicedomain.InvoiceFields) (*invoicedomain.InvoiceRecord, error) {
	record := invoicedomain.InvoiceRecord{
		MessageID:        messageID,
		AttachmentID:     attachmentID,
		InvoiceNumber:    fields.InvoiceNumber,
		IssueDate:        fields.IssueDate,
		DueDate:          fields.DueDate,
		SupplierName:     fields.SupplierName,
		SupplierTaxID:    fields.SupplierTaxID,
		SupplierVatID:    fields.SupplierVatID,
		TotalAmount:      fields.TotalAmount,
		AmountWithoutTax: fields.AmountWithoutTax,
		TaxAmount:        fields.TaxAmount,
		PaymentReference: fields.PaymentReference,
		Currency:         fields.Currency,
		BankAccount:      fields.BankAccount,
		UpdatedAt:        time.Now(),
	}

	// Wholesale overwrite on conflict keeps (message_id, attachment_id) unique
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "message_id"}, {Name: "attachment_id"}},
		UpdateAll: true,
	}).Create(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *invoiceRepository) Delete(messageID, attachmentID string) error {
	return r.db.Where("message_id = ? AND attachment_id = ?", messageID, attachmentID).
		Delete(&invoicedomain.InvoiceRecord{}).Error
}

func (r *invoiceRepository) HasForMessage(messageID string) (bool, error) {
	var count int64
	err := r.db.Model(&invoicedomain.InvoiceRecord{}).Where("message_id = ?", messageID).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *invoiceRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&invoicedomain.InvoiceRecord{}).Count(&count).Error
	return count, err
}
