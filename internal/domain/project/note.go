package project

import (
	"strings"
	"time"

	"github.com/clientportal/backend/internal/domain/shared"
)

// Note is a free-text note attached to a project. Notes exist only locally;
// the billing provider does not model them.
type Note struct {
	shared.BaseEntity
	ProjectID uint   `gorm:"index;not null"`
	AuthorID  uint   `gorm:"index;not null"`
	Content   string `gorm:"type:text;not null"`
	EditedAt  *time.Time
}

// TableName returns the table name for GORM
func (Note) TableName() string {
	return "project_notes"
}

// NewNote creates a note on a project
func NewNote(projectID, authorID uint, content string) (*Note, error) {
	if err := validateNoteContent(content); err != nil {
		return nil, err
	}
	if projectID == 0 {
		return nil, shared.NewDomainError("INVALID_PROJECT", "Note must belong to a project")
	}
	if authorID == 0 {
		return nil, shared.NewDomainError("INVALID_AUTHOR", "Note must have an author")
	}
	now := time.Now()
	return &Note{
		BaseEntity: shared.BaseEntity{CreatedAt: now, UpdatedAt: now},
		ProjectID:  projectID,
		AuthorID:   authorID,
		Content:    content,
	}, nil
}

// Edit replaces the note content and records the edit time
func (n *Note) Edit(content string) error {
	if err := validateNoteContent(content); err != nil {
		return err
	}
	now := time.Now()
	n.Content = content
	n.EditedAt = &now
	n.UpdatedAt = now
	return nil
}

// CanModify reports whether the actor may edit or delete this note.
// Only the creator or an admin may do so.
func (n *Note) CanModify(actorID uint, isAdmin bool) bool {
	return isAdmin || n.AuthorID == actorID
}

func validateNoteContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return shared.NewDomainError("INVALID_CONTENT", "Note content cannot be empty")
	}
	if len(content) > 10000 {
		return shared.NewDomainError("INVALID_CONTENT", "Note content cannot exceed 10000 characters")
	}
	return nil
}
