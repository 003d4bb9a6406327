package persistence

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/clientportal/backend/internal/domain/project"
	"github.com/clientportal/backend/internal/domain/shared"
)

// GormDocumentRepository implements DocumentRepository using GORM
type GormDocumentRepository struct {
	db *gorm.DB
}

// NewGormDocumentRepository creates a new GormDocumentRepository
func NewGormDocumentRepository(db *gorm.DB) *GormDocumentRepository {
	return &GormDocumentRepository{db: db}
}

// FindByID finds a document by its ID
func (r *GormDocumentRepository) FindByID(ctx context.Context, id uint) (*project.Document, error) {
	var doc project.Document
	if err := r.db.WithContext(ctx).First(&doc, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &doc, nil
}

// FindByProject returns documents for a project, newest first, with a total count
func (r *GormDocumentRepository) FindByProject(ctx context.Context, projectID uint, filter shared.Filter) ([]project.Document, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&project.Document{}).
		Where("project_id = ?", projectID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var docs []project.Document
	if err := query.
		Order("created_at DESC").
		Offset(filter.Offset()).
		Limit(filter.Limit()).
		Find(&docs).Error; err != nil {
		return nil, 0, err
	}
	return docs, total, nil
}

// Save creates or updates a document record
func (r *GormDocumentRepository) Save(ctx context.Context, doc *project.Document) error {
	if err := r.db.WithContext(ctx).Save(doc).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// Delete removes a document record
func (r *GormDocumentRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&project.Document{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}
