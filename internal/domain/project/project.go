package project

import (
	"strings"
	"time"

	"github.com/clientportal/backend/internal/domain/shared"
)

// Project statuses derived from the billing provider's completed flag.
// Status is stored as free text so provider-supplied values survive a sync.
const (
	StatusInProgress = "In Progress"
	StatusCompleted  = "Completed"
)

// Project is the local mirror of a billing-provider project.
// The numeric ID is the local primary key; RemoteID, when present, is the
// unique join key back to the billing provider. The provider owns the
// business fields; the mirror is a cache, except for progress, notes, and
// documents, which only exist locally.
type Project struct {
	shared.BaseEntity
	RemoteID         *string `gorm:"type:varchar(100);uniqueIndex"`
	Title            string  `gorm:"type:varchar(200);not null"`
	Description      string  `gorm:"type:text"`
	Status           string  `gorm:"type:varchar(100);not null;default:'In Progress'"`
	Progress         int     `gorm:"not null;default:0"`
	DueDate          *time.Time
	Budget           *int64 // minor currency units
	FixedPrice       bool   `gorm:"not null;default:false"`
	FixedPriceAmount *int64 // minor currency units, set when FixedPrice
	Visible          bool   `gorm:"not null;default:true"`
	ClientID         uint   `gorm:"index;not null"`
}

// TableName returns the table name for GORM
func (Project) TableName() string {
	return "projects"
}

// NewProject creates a new locally-owned project
func NewProject(clientID uint, title, description string) (*Project, error) {
	if err := validateTitle(title); err != nil {
		return nil, err
	}
	if clientID == 0 {
		return nil, shared.NewDomainError("INVALID_CLIENT", "Project must belong to a client")
	}
	now := time.Now()
	return &Project{
		BaseEntity:  shared.BaseEntity{CreatedAt: now, UpdatedAt: now},
		Title:       title,
		Description: description,
		Status:      StatusInProgress,
		Visible:     true,
		ClientID:    clientID,
	}, nil
}

// NewMirror creates a local mirror record for a project that already exists
// at the billing provider. Status, title, and description come from the
// remote record; the remote ID becomes the join key.
func NewMirror(clientID uint, remoteID, title, description string, completed bool) (*Project, error) {
	if strings.TrimSpace(remoteID) == "" {
		return nil, shared.NewDomainError("INVALID_REMOTE_ID", "Remote ID cannot be empty")
	}
	p, err := NewProject(clientID, title, description)
	if err != nil {
		return nil, err
	}
	rid := remoteID
	p.RemoteID = &rid
	p.Status = DeriveStatus(completed)
	return p, nil
}

// DeriveStatus maps the provider's boolean completed flag to a status string
func DeriveStatus(completed bool) string {
	if completed {
		return StatusCompleted
	}
	return StatusInProgress
}

// HasRemoteID reports whether this project is linked to a provider record
func (p *Project) HasRemoteID() bool {
	return p.RemoteID != nil && *p.RemoteID != ""
}

// LinkRemote attaches the billing-provider ID to an unlinked project
func (p *Project) LinkRemote(remoteID string) error {
	if strings.TrimSpace(remoteID) == "" {
		return shared.NewDomainError("INVALID_REMOTE_ID", "Remote ID cannot be empty")
	}
	if p.HasRemoteID() && *p.RemoteID != remoteID {
		return shared.NewDomainError("ALREADY_LINKED", "Project is already linked to a different remote record")
	}
	rid := remoteID
	p.RemoteID = &rid
	p.UpdatedAt = time.Now()
	return nil
}

// Rename updates the project title and description
func (p *Project) Rename(title, description string) error {
	if err := validateTitle(title); err != nil {
		return err
	}
	p.Title = title
	p.Description = description
	p.UpdatedAt = time.Now()
	return nil
}

// SetStatus sets a free-text status
func (p *Project) SetStatus(status string) error {
	if status == "" {
		return shared.NewDomainError("INVALID_STATUS", "Status cannot be empty")
	}
	if len(status) > 100 {
		return shared.NewDomainError("INVALID_STATUS", "Status cannot exceed 100 characters")
	}
	p.Status = status
	p.UpdatedAt = time.Now()
	return nil
}

// SetProgress sets the progress percentage. Progress is locally owned and is
// not overwritten by provider data on sync.
func (p *Project) SetProgress(progress int) error {
	if progress < 0 || progress > 100 {
		return shared.NewDomainError("INVALID_PROGRESS", "Progress must be between 0 and 100")
	}
	p.Progress = progress
	if progress == 100 {
		p.Status = StatusCompleted
	}
	p.UpdatedAt = time.Now()
	return nil
}

// SetDueDate sets or clears the due date
func (p *Project) SetDueDate(due *time.Time) {
	p.DueDate = due
	p.UpdatedAt = time.Now()
}

// SetBudget sets the budget in minor currency units
func (p *Project) SetBudget(budget *int64) error {
	if budget != nil && *budget < 0 {
		return shared.NewDomainError("INVALID_BUDGET", "Budget cannot be negative")
	}
	p.Budget = budget
	p.UpdatedAt = time.Now()
	return nil
}

// SetFixedPrice marks the project as fixed price with an optional amount
func (p *Project) SetFixedPrice(fixed bool, amount *int64) error {
	if amount != nil && *amount < 0 {
		return shared.NewDomainError("INVALID_AMOUNT", "Fixed price amount cannot be negative")
	}
	p.FixedPrice = fixed
	if fixed {
		p.FixedPriceAmount = amount
	} else {
		p.FixedPriceAmount = nil
	}
	p.UpdatedAt = time.Now()
	return nil
}

// SetVisible toggles customer visibility
func (p *Project) SetVisible(visible bool) {
	p.Visible = visible
	p.UpdatedAt = time.Now()
}

// ApplyRemote copies the provider-owned business fields from a freshly
// fetched remote record. Progress is deliberately untouched: the provider
// does not mirror it faithfully, so the local value stays authoritative.
func (p *Project) ApplyRemote(title, description string, completed bool, dueDate *time.Time, budget *int64) {
	if title != "" {
		p.Title = title
	}
	if description != "" {
		p.Description = description
	}
	p.Status = DeriveStatus(completed)
	if dueDate != nil {
		p.DueDate = dueDate
	}
	if budget != nil {
		p.Budget = budget
	}
	p.UpdatedAt = time.Now()
}

// IsCompleted reports whether the project is in the completed status
func (p *Project) IsCompleted() bool {
	return p.Status == StatusCompleted
}

// Stage returns the named stage for the current progress
func (p *Project) Stage() string {
	return StageForProgress(p.Progress)
}

// OwnedBy reports whether the project belongs to the given client user
func (p *Project) OwnedBy(clientID uint) bool {
	return p.ClientID == clientID
}

func validateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return shared.NewDomainError("INVALID_TITLE", "Project title cannot be empty")
	}
	if len(title) > 200 {
		return shared.NewDomainError("INVALID_TITLE", "Project title cannot exceed 200 characters")
	}
	return nil
}
