package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/clientportal/backend/internal/domain/project"
	"github.com/clientportal/backend/internal/domain/shared"
)

// GormProjectRepository implements ProjectRepository using GORM
type GormProjectRepository struct {
	db *gorm.DB
}

// NewGormProjectRepository creates a new GormProjectRepository
func NewGormProjectRepository(db *gorm.DB) *GormProjectRepository {
	return &GormProjectRepository{db: db}
}

// FindByID finds a project by its local numeric ID
func (r *GormProjectRepository) FindByID(ctx context.Context, id uint) (*project.Project, error) {
	var p project.Project
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// FindByRemoteID finds a project by its billing-provider ID
func (r *GormProjectRepository) FindByRemoteID(ctx context.Context, remoteID string) (*project.Project, error) {
	if remoteID == "" {
		return nil, shared.NewDomainError("INVALID_REMOTE_ID", "Remote ID cannot be empty")
	}
	var p project.Project
	if err := r.db.WithContext(ctx).
		Where("remote_id = ?", remoteID).
		First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// FindAll returns projects matching the filter with a total count
func (r *GormProjectRepository) FindAll(ctx context.Context, filter shared.Filter) ([]project.Project, int64, error) {
	query := r.db.WithContext(ctx).Model(&project.Project{})

	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var projects []project.Project
	if err := query.
		Order(orderClause(filter)).
		Offset(filter.Offset()).
		Limit(filter.Limit()).
		Find(&projects).Error; err != nil {
		return nil, 0, err
	}
	return projects, total, nil
}

// FindAllForClient returns the projects owned by one portal client
func (r *GormProjectRepository) FindAllForClient(ctx context.Context, clientID uint, filter shared.Filter) ([]project.Project, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&project.Project{}).
		Where("client_id = ? AND visible = ?", clientID, true)

	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(title) LIKE ?", pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var projects []project.Project
	if err := query.
		Order(orderClause(filter)).
		Offset(filter.Offset()).
		Limit(filter.Limit()).
		Find(&projects).Error; err != nil {
		return nil, 0, err
	}
	return projects, total, nil
}

// Save creates or updates a project
func (r *GormProjectRepository) Save(ctx context.Context, p *project.Project) error {
	if err := r.db.WithContext(ctx).Save(p).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// orderClause builds a safe ORDER BY from the filter, whitelisting columns
func orderClause(filter shared.Filter) string {
	column := "created_at"
	switch filter.OrderBy {
	case "title", "status", "progress", "due_date", "updated_at", "created_at":
		column = filter.OrderBy
	}
	dir := "DESC"
	if strings.EqualFold(filter.OrderDir, "asc") {
		dir = "ASC"
	}
	return fmt.Sprintf("%s %s", column, dir)
}
