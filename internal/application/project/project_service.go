package project

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/clientportal/backend/internal/domain/identity"
	"github.com/clientportal/backend/internal/domain/project"
	"github.com/clientportal/backend/internal/domain/shared"
	"github.com/clientportal/backend/internal/infrastructure/billing"
	"github.com/clientportal/backend/internal/infrastructure/cache"
)

// Actor identifies the user performing an operation
type Actor struct {
	UserID uint
	Admin  bool
}

// Service implements the project use cases: reads served from the local
// mirror plus the view cache, writes applied locally first and pushed to the
// billing provider when the project is linked.
type Service struct {
	resolver *Resolver
	projects project.ProjectRepository
	users    identity.UserRepository
	remote   RemoteGateway
	views    cache.ProjectViewCache
	logger   *zap.Logger
}

// NewService creates a project service
func NewService(
	resolver *Resolver,
	projects project.ProjectRepository,
	users identity.UserRepository,
	remote RemoteGateway,
	views cache.ProjectViewCache,
	logger *zap.Logger,
) *Service {
	return &Service{
		resolver: resolver,
		projects: projects,
		users:    users,
		remote:   remote,
		views:    views,
		logger:   logger.Named("project_service"),
	}
}

// Get resolves a project reference and returns its current view
func (s *Service) Get(ctx context.Context, ref string, actor Actor) (*ProjectDTO, error) {
	p, err := s.resolver.Resolve(ctx, ref, actor.UserID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(p, actor); err != nil {
		return nil, err
	}

	view, _ := s.views.Read(ctx, p.ID)
	return toProjectDTO(p, view, s.syncStatus(p)), nil
}

// List returns all projects for admins
func (s *Service) List(ctx context.Context, filter shared.Filter, actor Actor) ([]ProjectDTO, int64, error) {
	if !actor.Admin {
		return nil, 0, shared.ErrForbidden
	}
	projects, total, err := s.projects.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return s.toDTOs(ctx, projects), total, nil
}

// ListForClient returns the visible projects of one portal user
func (s *Service) ListForClient(ctx context.Context, clientID uint, filter shared.Filter, actor Actor) ([]ProjectDTO, int64, error) {
	if !actor.Admin && actor.UserID != clientID {
		return nil, 0, shared.ErrForbidden
	}
	projects, total, err := s.projects.FindAllForClient(ctx, clientID, filter)
	if err != nil {
		return nil, 0, err
	}
	return s.toDTOs(ctx, projects), total, nil
}

// Create creates a project, optionally also at the billing provider.
// A failed provider create does not fail the operation; the project is
// saved unlinked and reported pending.
func (s *Service) Create(ctx context.Context, in CreateProjectInput, actor Actor) (*ProjectDTO, error) {
	if !actor.Admin {
		return nil, shared.ErrForbidden
	}

	owner, err := s.users.FindByID(ctx, in.ClientID)
	if err != nil {
		return nil, err
	}

	p, err := project.NewProject(owner.ID, in.Title, in.Description)
	if err != nil {
		return nil, err
	}

	syncStatus := SyncStatusLocalOnly
	if in.CreateRemote {
		remote, err := s.remote.CreateProject(ctx, billing.CreateProjectInput{
			Title:       in.Title,
			Description: in.Description,
			ClientID:    owner.RemoteClientID,
		})
		switch {
		case err == nil:
			if err := p.LinkRemote(remote.ID); err != nil {
				return nil, err
			}
			syncStatus = SyncStatusSynced
		case errors.Is(err, billing.ErrNoToken), errors.Is(err, shared.ErrRemoteUnavailable):
			s.logger.Warn("provider create deferred", zap.String("title", in.Title), zap.Error(err))
			syncStatus = SyncStatusPending
		default:
			return nil, err
		}
	}

	if err := s.projects.Save(ctx, p); err != nil {
		return nil, err
	}
	return toProjectDTO(p, nil, syncStatus), nil
}

// Update applies a partial update. The local row and the view cache are
// written first so the change is immediately visible; provider-owned fields
// are then pushed when the project is linked. A provider failure leaves the
// local write intact and reports pending_sync.
func (s *Service) Update(ctx context.Context, ref string, in UpdateProjectInput, actor Actor) (*ProjectDTO, error) {
	if in.Progress != nil && in.Stage != nil {
		return nil, shared.NewDomainError("INVALID_UPDATE", "Provide progress or stage, not both")
	}

	p, err := s.resolver.Resolve(ctx, ref, actor.UserID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeWrite(p, actor, in); err != nil {
		return nil, err
	}

	if in.Stage != nil {
		progress, err := project.ProgressForStage(*in.Stage)
		if err != nil {
			return nil, err
		}
		in.Progress = &progress
	}

	if err := s.apply(p, in); err != nil {
		return nil, err
	}
	if err := s.projects.Save(ctx, p); err != nil {
		return nil, err
	}

	view := viewFromUpdate(in)
	if err := s.views.Write(ctx, p.ID, view); err != nil {
		s.logger.Warn("view cache write failed", zap.Uint("project_id", p.ID), zap.Error(err))
	}

	syncStatus := s.syncStatus(p)
	if p.HasRemoteID() {
		if pushed := s.pushRemote(ctx, p, in); !pushed {
			syncStatus = SyncStatusPending
		}
	}

	return toProjectDTO(p, view, syncStatus), nil
}

// Refresh re-fetches the provider record and overwrites the provider-owned
// fields of the mirror. Progress is never touched.
func (s *Service) Refresh(ctx context.Context, ref string, actor Actor) (*ProjectDTO, error) {
	p, err := s.resolver.Resolve(ctx, ref, actor.UserID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(p, actor); err != nil {
		return nil, err
	}
	if !p.HasRemoteID() {
		return toProjectDTO(p, nil, SyncStatusLocalOnly), nil
	}

	remote, err := s.remote.GetProject(ctx, *p.RemoteID)
	if err != nil {
		return nil, err
	}
	p.ApplyRemote(remote.Title, remote.Description, remote.Completed, remote.DueDate, remote.Budget)
	if err := p.SetFixedPrice(remote.FixedPrice, remote.FixedPriceAmount); err != nil {
		return nil, err
	}
	if err := s.projects.Save(ctx, p); err != nil {
		return nil, err
	}

	view := s.reconcileView(ctx, p.ID)
	return toProjectDTO(p, view, SyncStatusSynced), nil
}

// reconcileView drops cached overlay fields after a provider refresh so the
// freshly fetched values are not shadowed by stale client writes. Progress is
// client-authoritative and is the only field retained.
func (s *Service) reconcileView(ctx context.Context, projectID uint) *cache.ProjectView {
	view, _ := s.views.Read(ctx, projectID)
	retained := &cache.ProjectView{}
	if view != nil {
		retained.Progress = view.Progress
	}
	if err := s.views.Invalidate(ctx, projectID); err != nil {
		s.logger.Warn("view cache invalidation failed", zap.Uint("project_id", projectID), zap.Error(err))
	}
	if retained.Progress != nil {
		if err := s.views.Write(ctx, projectID, retained); err != nil {
			s.logger.Warn("view cache write failed", zap.Uint("project_id", projectID), zap.Error(err))
		}
	}
	return retained
}

// SyncFromRemote pulls the provider's project list and materializes or
// refreshes local mirrors. Returns the number of projects touched.
func (s *Service) SyncFromRemote(ctx context.Context, actor Actor) (int, error) {
	if !actor.Admin {
		return 0, shared.ErrForbidden
	}

	remotes, err := s.remote.ListProjects(ctx, "")
	if err != nil {
		return 0, err
	}

	synced := 0
	for i := range remotes {
		remote := &remotes[i]
		p, err := s.projects.FindByRemoteID(ctx, remote.ID)
		switch {
		case err == nil:
			p.ApplyRemote(remote.Title, remote.Description, remote.Completed, remote.DueDate, remote.Budget)
			if err := s.projects.Save(ctx, p); err != nil {
				s.logger.Warn("sync save failed", zap.String("remote_id", remote.ID), zap.Error(err))
				continue
			}
			s.reconcileView(ctx, p.ID)
			synced++
		case errors.Is(err, shared.ErrNotFound):
			if _, err := s.resolver.Resolve(ctx, remote.ID, actor.UserID); err != nil {
				s.logger.Warn("sync materialization failed", zap.String("remote_id", remote.ID), zap.Error(err))
				continue
			}
			synced++
		default:
			return synced, err
		}
	}

	s.logger.Info("remote sync complete", zap.Int("synced", synced), zap.Int("remote_total", len(remotes)))
	return synced, nil
}

// Stages returns the stage ladder
func (s *Service) Stages() []StageDTO {
	stages := project.Stages()
	dtos := make([]StageDTO, len(stages))
	for i, st := range stages {
		dtos[i] = StageDTO{Name: st.Name, Threshold: st.Threshold}
	}
	return dtos
}

func (s *Service) toDTOs(ctx context.Context, projects []project.Project) []ProjectDTO {
	dtos := make([]ProjectDTO, len(projects))
	for i := range projects {
		p := &projects[i]
		view, _ := s.views.Read(ctx, p.ID)
		dtos[i] = *toProjectDTO(p, view, s.syncStatus(p))
	}
	return dtos
}

// authorize checks read access: admins see everything, customers see their
// own visible projects.
func (s *Service) authorize(p *project.Project, actor Actor) error {
	if actor.Admin {
		return nil
	}
	if !p.OwnedBy(actor.UserID) || !p.Visible {
		return shared.ErrForbidden
	}
	return nil
}

// authorizeWrite checks write access. Customers may only report progress on
// their own projects; everything else is admin-only.
func (s *Service) authorizeWrite(p *project.Project, actor Actor, in UpdateProjectInput) error {
	if actor.Admin {
		return nil
	}
	if !p.OwnedBy(actor.UserID) || !p.Visible {
		return shared.ErrForbidden
	}
	adminOnly := in.Title != nil || in.Description != nil || in.Status != nil ||
		in.DueDate != nil || in.Budget != nil || in.FixedPrice != nil ||
		in.FixedPriceAmount != nil || in.Visible != nil
	if adminOnly {
		return shared.ErrForbidden
	}
	return nil
}

func (s *Service) apply(p *project.Project, in UpdateProjectInput) error {
	if in.Title != nil {
		description := p.Description
		if in.Description != nil {
			description = *in.Description
		}
		if err := p.Rename(*in.Title, description); err != nil {
			return err
		}
	} else if in.Description != nil {
		if err := p.Rename(p.Title, *in.Description); err != nil {
			return err
		}
	}
	if in.Status != nil {
		if err := p.SetStatus(*in.Status); err != nil {
			return err
		}
	}
	if in.Progress != nil {
		if err := p.SetProgress(*in.Progress); err != nil {
			return err
		}
	}
	if in.DueDate != nil {
		p.SetDueDate(in.DueDate)
	}
	if in.Budget != nil {
		if err := p.SetBudget(in.Budget); err != nil {
			return err
		}
	}
	if in.FixedPrice != nil {
		if err := p.SetFixedPrice(*in.FixedPrice, in.FixedPriceAmount); err != nil {
			return err
		}
	}
	if in.Visible != nil {
		p.SetVisible(*in.Visible)
	}
	return nil
}

// pushRemote forwards provider-owned field changes. Returns false when the
// push failed and the provider is now behind the local row.
func (s *Service) pushRemote(ctx context.Context, p *project.Project, in UpdateProjectInput) bool {
	update := billing.UpdateProjectInput{
		Title:       in.Title,
		Description: in.Description,
		DueDate:     in.DueDate,
		Budget:      in.Budget,
		FixedPrice:  in.FixedPrice,
	}
	if in.Progress != nil && *in.Progress == 100 {
		completed := true
		update.Completed = &completed
	}
	if update == (billing.UpdateProjectInput{}) {
		return true
	}

	if _, err := s.remote.UpdateProject(ctx, *p.RemoteID, update); err != nil {
		s.logger.Warn("provider push failed, local row is ahead",
			zap.Uint("project_id", p.ID),
			zap.String("remote_id", *p.RemoteID),
			zap.Error(err))
		return false
	}
	return true
}

func (s *Service) syncStatus(p *project.Project) string {
	if !p.HasRemoteID() {
		return SyncStatusLocalOnly
	}
	return SyncStatusSynced
}

// viewFromUpdate extracts the cacheable fields of an update
func viewFromUpdate(in UpdateProjectInput) *cache.ProjectView {
	return &cache.ProjectView{
		Progress:   in.Progress,
		DueDate:    in.DueDate,
		Budget:     in.Budget,
		FixedPrice: in.FixedPrice,
		Visible:    in.Visible,
	}
}
