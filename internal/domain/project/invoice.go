package project

import (
	"strings"
	"time"

	"github.com/clientportal/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// InvoiceStatus represents the lifecycle state of an invoice
type InvoiceStatus string

const (
	InvoiceStatusDraft   InvoiceStatus = "draft"
	InvoiceStatusSent    InvoiceStatus = "sent"
	InvoiceStatusPaid    InvoiceStatus = "paid"
	InvoiceStatusOverdue InvoiceStatus = "overdue"
)

// Invoice mirrors a billing-provider invoice for a project. The provider is
// the source of truth; local rows exist so customers can list invoices
// without a provider round trip.
type Invoice struct {
	shared.BaseEntity
	ProjectID    uint            `gorm:"index;not null"`
	RemoteNumber string          `gorm:"type:varchar(100);not null;uniqueIndex"`
	Amount       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Currency     string          `gorm:"type:varchar(3);not null;default:'USD'"`
	Status       InvoiceStatus   `gorm:"type:varchar(20);not null;default:'draft'"`
	IssuedAt     *time.Time
	PaidAt       *time.Time
}

// TableName returns the table name for GORM
func (Invoice) TableName() string {
	return "project_invoices"
}

// NewInvoice creates a local mirror of a provider invoice
func NewInvoice(projectID uint, remoteNumber string, amount decimal.Decimal, currency string) (*Invoice, error) {
	if projectID == 0 {
		return nil, shared.NewDomainError("INVALID_PROJECT", "Invoice must belong to a project")
	}
	if strings.TrimSpace(remoteNumber) == "" {
		return nil, shared.NewDomainError("INVALID_INVOICE_NUMBER", "Invoice number cannot be empty")
	}
	if amount.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Invoice amount cannot be negative")
	}
	if currency == "" {
		currency = "USD"
	}
	now := time.Now()
	return &Invoice{
		BaseEntity:   shared.BaseEntity{CreatedAt: now, UpdatedAt: now},
		ProjectID:    projectID,
		RemoteNumber: remoteNumber,
		Amount:       amount,
		Currency:     strings.ToUpper(currency),
		Status:       InvoiceStatusDraft,
	}, nil
}

// ApplyRemote refreshes the mirror from freshly fetched provider data
func (i *Invoice) ApplyRemote(amount decimal.Decimal, status InvoiceStatus, issuedAt, paidAt *time.Time) error {
	if amount.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Invoice amount cannot be negative")
	}
	if err := validateInvoiceStatus(status); err != nil {
		return err
	}
	i.Amount = amount
	i.Status = status
	if issuedAt != nil {
		i.IssuedAt = issuedAt
	}
	if paidAt != nil {
		i.PaidAt = paidAt
	}
	i.UpdatedAt = time.Now()
	return nil
}

// IsPaid reports whether the invoice has been settled
func (i *Invoice) IsPaid() bool {
	return i.Status == InvoiceStatusPaid
}

func validateInvoiceStatus(s InvoiceStatus) error {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusSent, InvoiceStatusPaid, InvoiceStatusOverdue:
		return nil
	default:
		return shared.NewDomainError("INVALID_STATUS", "Invalid invoice status")
	}
}
