package persistence

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/clientportal/backend/internal/domain/project"
	"github.com/clientportal/backend/internal/domain/shared"
)

// GormInvoiceRepository implements InvoiceRepository using GORM
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// FindByID finds an invoice by its ID
func (r *GormInvoiceRepository) FindByID(ctx context.Context, id uint) (*project.Invoice, error) {
	var inv project.Invoice
	if err := r.db.WithContext(ctx).First(&inv, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &inv, nil
}

// FindByRemoteNumber finds an invoice by its provider invoice number
func (r *GormInvoiceRepository) FindByRemoteNumber(ctx context.Context, number string) (*project.Invoice, error) {
	if number == "" {
		return nil, shared.NewDomainError("INVALID_INVOICE_NUMBER", "Invoice number cannot be empty")
	}
	var inv project.Invoice
	if err := r.db.WithContext(ctx).
		Where("remote_number = ?", number).
		First(&inv).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &inv, nil
}

// FindByProject returns invoices for a project, newest issue date first,
// with a total count
func (r *GormInvoiceRepository) FindByProject(ctx context.Context, projectID uint, filter shared.Filter) ([]project.Invoice, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&project.Invoice{}).
		Where("project_id = ?", projectID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var invoices []project.Invoice
	if err := query.
		Order("issued_at DESC").
		Offset(filter.Offset()).
		Limit(filter.Limit()).
		Find(&invoices).Error; err != nil {
		return nil, 0, err
	}
	return invoices, total, nil
}

// Save creates or updates an invoice
func (r *GormInvoiceRepository) Save(ctx context.Context, inv *project.Invoice) error {
	if err := r.db.WithContext(ctx).Save(inv).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}
