package project

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/clientportal/backend/internal/domain/project"
	"github.com/clientportal/backend/internal/infrastructure/cache"
)

// Sync states reported on project reads and writes. pending_sync means the
// local write succeeded but the provider push has not; the provider will be
// brought up to date by a later write or an explicit refresh.
const (
	SyncStatusSynced    = "synced"
	SyncStatusPending   = "pending_sync"
	SyncStatusLocalOnly = "local_only"
)

// ProjectDTO is the API representation of a project
type ProjectDTO struct {
	ID               uint       `json:"id"`
	RemoteID         *string    `json:"remote_id,omitempty"`
	Title            string     `json:"title"`
	Description      string     `json:"description,omitempty"`
	Status           string     `json:"status"`
	Progress         int        `json:"progress"`
	Stage            string     `json:"stage"`
	DueDate          *time.Time `json:"due_date,omitempty"`
	Budget           *int64     `json:"budget,omitempty"`
	FixedPrice       bool       `json:"fixed_price"`
	FixedPriceAmount *int64     `json:"fixed_price_amount,omitempty"`
	Visible          bool       `json:"visible"`
	ClientID         uint       `json:"client_id"`
	SyncStatus       string     `json:"sync_status"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// CreateProjectInput holds the fields for creating a project
type CreateProjectInput struct {
	Title        string `json:"title" binding:"required,max=200"`
	Description  string `json:"description,omitempty"`
	ClientID     uint   `json:"client_id" binding:"required"`
	CreateRemote bool   `json:"create_remote,omitempty"`
}

// UpdateProjectInput holds the fields for a partial project update.
// Nil fields are left untouched. Stage is an alternative to Progress; at
// most one of the two may be set.
type UpdateProjectInput struct {
	Title            *string    `json:"title,omitempty"`
	Description      *string    `json:"description,omitempty"`
	Status           *string    `json:"status,omitempty"`
	Progress         *int       `json:"progress,omitempty"`
	Stage            *string    `json:"stage,omitempty" binding:"omitempty,project_stage"`
	DueDate          *time.Time `json:"due_date,omitempty"`
	Budget           *int64     `json:"budget,omitempty"`
	FixedPrice       *bool      `json:"fixed_price,omitempty"`
	FixedPriceAmount *int64     `json:"fixed_price_amount,omitempty"`
	Visible          *bool      `json:"visible,omitempty"`
}

// NoteDTO is the API representation of a project note
type NoteDTO struct {
	ID        uint       `json:"id"`
	ProjectID uint       `json:"project_id"`
	AuthorID  uint       `json:"author_id"`
	Content   string     `json:"content"`
	EditedAt  *time.Time `json:"edited_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// DocumentDTO is the API representation of a project document
type DocumentDTO struct {
	ID          uint      `json:"id"`
	ProjectID   uint      `json:"project_id"`
	FileName    string    `json:"file_name"`
	ContentType string    `json:"content_type,omitempty"`
	SizeBytes   int64     `json:"size_bytes"`
	UploadedBy  uint      `json:"uploaded_by"`
	CreatedAt   time.Time `json:"created_at"`
}

// UploadTicketDTO is returned when an upload slot is reserved
type UploadTicketDTO struct {
	Document  DocumentDTO `json:"document"`
	UploadURL string      `json:"upload_url"`
	ExpiresAt time.Time   `json:"expires_at"`
}

// DownloadTicketDTO carries a presigned download URL
type DownloadTicketDTO struct {
	DownloadURL string    `json:"download_url"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// InvoiceDTO is the API representation of a project invoice
type InvoiceDTO struct {
	ID           uint            `json:"id"`
	ProjectID    uint            `json:"project_id"`
	RemoteNumber string          `json:"number"`
	Amount       decimal.Decimal `json:"amount"`
	Currency     string          `json:"currency"`
	Status       string          `json:"status"`
	IssuedAt     *time.Time      `json:"issued_at,omitempty"`
	PaidAt       *time.Time      `json:"paid_at,omitempty"`
}

// StageDTO describes one entry of the stage ladder
type StageDTO struct {
	Name      string `json:"name"`
	Threshold int    `json:"threshold"`
}

// toProjectDTO builds the API shape, overlaying any cached view fields
func toProjectDTO(p *project.Project, view *cache.ProjectView, syncStatus string) *ProjectDTO {
	dto := &ProjectDTO{
		ID:               p.ID,
		RemoteID:         p.RemoteID,
		Title:            p.Title,
		Description:      p.Description,
		Status:           p.Status,
		Progress:         p.Progress,
		DueDate:          p.DueDate,
		Budget:           p.Budget,
		FixedPrice:       p.FixedPrice,
		FixedPriceAmount: p.FixedPriceAmount,
		Visible:          p.Visible,
		ClientID:         p.ClientID,
		SyncStatus:       syncStatus,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}

	if view != nil {
		if view.Progress != nil {
			dto.Progress = *view.Progress
		}
		if view.DueDate != nil {
			dto.DueDate = view.DueDate
		}
		if view.Budget != nil {
			dto.Budget = view.Budget
		}
		if view.FixedPrice != nil {
			dto.FixedPrice = *view.FixedPrice
		}
		if view.Visible != nil {
			dto.Visible = *view.Visible
		}
	}

	dto.Stage = project.StageForProgress(dto.Progress)
	return dto
}

func toNoteDTO(n *project.Note) *NoteDTO {
	return &NoteDTO{
		ID:        n.ID,
		ProjectID: n.ProjectID,
		AuthorID:  n.AuthorID,
		Content:   n.Content,
		EditedAt:  n.EditedAt,
		CreatedAt: n.CreatedAt,
	}
}

func toDocumentDTO(d *project.Document) *DocumentDTO {
	return &DocumentDTO{
		ID:          d.ID,
		ProjectID:   d.ProjectID,
		FileName:    d.FileName,
		ContentType: d.ContentType,
		SizeBytes:   d.SizeBytes,
		UploadedBy:  d.UploadedBy,
		CreatedAt:   d.CreatedAt,
	}
}

func toInvoiceDTO(i *project.Invoice) *InvoiceDTO {
	return &InvoiceDTO{
		ID:           i.ID,
		ProjectID:    i.ProjectID,
		RemoteNumber: i.RemoteNumber,
		Amount:       i.Amount,
		Currency:     i.Currency,
		Status:       string(i.Status),
		IssuedAt:     i.IssuedAt,
		PaidAt:       i.PaidAt,
	}
}
