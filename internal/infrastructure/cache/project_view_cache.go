package cache

import (
	"context"
	"time"
)

// ProjectView holds the client-editable presentation fields of a project.
// Nil means "no cached value for this field"; fields are cached and merged
// independently, so a write to one field never clobbers another.
type ProjectView struct {
	Progress   *int
	DueDate    *time.Time
	Budget     *int64
	FixedPrice *bool
	Visible    *bool
}

// IsEmpty reports whether the view carries no cached fields
func (v *ProjectView) IsEmpty() bool {
	return v.Progress == nil && v.DueDate == nil && v.Budget == nil &&
		v.FixedPrice == nil && v.Visible == nil
}

// MergeOver returns base with every field the view carries applied on top.
// The cache holds the client's latest writes, so a cached field always wins
// over the base value; absent fields fall through to base.
func (v *ProjectView) MergeOver(base ProjectView) ProjectView {
	merged := base
	if v.Progress != nil {
		merged.Progress = v.Progress
	}
	if v.DueDate != nil {
		merged.DueDate = v.DueDate
	}
	if v.Budget != nil {
		merged.Budget = v.Budget
	}
	if v.FixedPrice != nil {
		merged.FixedPrice = v.FixedPrice
	}
	if v.Visible != nil {
		merged.Visible = v.Visible
	}
	return merged
}

// ProjectViewCache is the optimistic per-project field cache. It is strictly
// best-effort: a lost or unreachable cache degrades reads to the durable
// store's values, never to an error. Write persists only the fields the view
// carries.
type ProjectViewCache interface {
	Read(ctx context.Context, projectID uint) (*ProjectView, error)
	Write(ctx context.Context, projectID uint, view *ProjectView) error
	Invalidate(ctx context.Context, projectID uint) error
}
