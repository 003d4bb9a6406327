package project

import (
	"context"

	"github.com/clientportal/backend/internal/domain/shared"
)

// ProjectRepository defines persistence operations for projects
type ProjectRepository interface {
	FindByID(ctx context.Context, id uint) (*Project, error)
	FindByRemoteID(ctx context.Context, remoteID string) (*Project, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Project, int64, error)
	FindAllForClient(ctx context.Context, clientID uint, filter shared.Filter) ([]Project, int64, error)
	Save(ctx context.Context, p *Project) error
}

// NoteRepository defines persistence operations for project notes
type NoteRepository interface {
	FindByID(ctx context.Context, id uint) (*Note, error)
	FindByProject(ctx context.Context, projectID uint, filter shared.Filter) ([]Note, int64, error)
	Save(ctx context.Context, n *Note) error
	Delete(ctx context.Context, id uint) error
}

// DocumentRepository defines persistence operations for project documents
type DocumentRepository interface {
	FindByID(ctx context.Context, id uint) (*Document, error)
	FindByProject(ctx context.Context, projectID uint, filter shared.Filter) ([]Document, int64, error)
	Save(ctx context.Context, d *Document) error
	Delete(ctx context.Context, id uint) error
}

// InvoiceRepository defines persistence operations for project invoices
type InvoiceRepository interface {
	FindByID(ctx context.Context, id uint) (*Invoice, error)
	FindByRemoteNumber(ctx context.Context, remoteNumber string) (*Invoice, error)
	FindByProject(ctx context.Context, projectID uint, filter shared.Filter) ([]Invoice, int64, error)
	Save(ctx context.Context, i *Invoice) error
}
