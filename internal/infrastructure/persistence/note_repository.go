package persistence

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/clientportal/backend/internal/domain/project"
	"github.com/clientportal/backend/internal/domain/shared"
)

// GormNoteRepository implements NoteRepository using GORM
type GormNoteRepository struct {
	db *gorm.DB
}

// NewGormNoteRepository creates a new GormNoteRepository
func NewGormNoteRepository(db *gorm.DB) *GormNoteRepository {
	return &GormNoteRepository{db: db}
}

// FindByID finds a note by its ID
func (r *GormNoteRepository) FindByID(ctx context.Context, id uint) (*project.Note, error) {
	var note project.Note
	if err := r.db.WithContext(ctx).First(&note, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &note, nil
}

// FindByProject returns notes for a project, newest first, with a total count
func (r *GormNoteRepository) FindByProject(ctx context.Context, projectID uint, filter shared.Filter) ([]project.Note, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&project.Note{}).
		Where("project_id = ?", projectID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var notes []project.Note
	if err := query.
		Order("created_at DESC").
		Offset(filter.Offset()).
		Limit(filter.Limit()).
		Find(&notes).Error; err != nil {
		return nil, 0, err
	}
	return notes, total, nil
}

// Save creates or updates a note
func (r *GormNoteRepository) Save(ctx context.Context, note *project.Note) error {
	return r.db.WithContext(ctx).Save(note).Error
}

// Delete removes a note
func (r *GormNoteRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&project.Note{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}
