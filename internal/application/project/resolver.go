package project

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/clientportal/backend/internal/domain/identity"
	"github.com/clientportal/backend/internal/domain/project"
	"github.com/clientportal/backend/internal/domain/shared"
	"github.com/clientportal/backend/internal/infrastructure/billing"
)

// Resolver turns a project reference into a local project row.
//
// A reference is either a local numeric ID or a billing-provider string ID.
// Local references never touch the network. Remote references hit the
// provider at most once: the first resolution materializes a local mirror
// keyed by the remote ID, and every later resolution finds that row.
type Resolver struct {
	projects project.ProjectRepository
	users    identity.UserRepository
	remote   RemoteGateway
	logger   *zap.Logger
}

// NewResolver creates a project resolver
func NewResolver(projects project.ProjectRepository, users identity.UserRepository, remote RemoteGateway, logger *zap.Logger) *Resolver {
	return &Resolver{
		projects: projects,
		users:    users,
		remote:   remote,
		logger:   logger.Named("resolver"),
	}
}

// Resolve finds or materializes the project for a reference. fallbackOwner
// is the user the mirror is attached to when the provider's client record
// has no linked portal user; it is normally the requesting user.
func (r *Resolver) Resolve(ctx context.Context, ref string, fallbackOwner uint) (*project.Project, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, shared.NewDomainError("INVALID_REFERENCE", "Project reference cannot be empty")
	}

	// Numeric references are local primary keys first. A miss falls through
	// to the remote path because provider IDs may also be numeric.
	if id, err := strconv.ParseUint(ref, 10, 32); err == nil {
		p, err := r.projects.FindByID(ctx, uint(id))
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
	}

	p, err := r.projects.FindByRemoteID(ctx, ref)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	return r.materialize(ctx, ref, fallbackOwner)
}

// materialize fetches a remote project and creates its local mirror.
// A provider 404, or a missing credential, is a plain not-found: nothing is
// inserted. Concurrent materializations of the same remote ID converge on
// the same row via the unique remote_id index.
func (r *Resolver) materialize(ctx context.Context, remoteID string, fallbackOwner uint) (*project.Project, error) {
	remote, err := r.remote.GetProject(ctx, remoteID)
	if err != nil {
		if errors.Is(err, billing.ErrNoToken) {
			r.logger.Debug("no billing credential, skipping remote lookup",
				zap.String("remote_id", remoteID))
			return nil, shared.ErrNotFound
		}
		return nil, err
	}

	owner := r.resolveOwner(ctx, remote.ClientID, fallbackOwner)
	if owner == 0 {
		return nil, shared.NewDomainError("NO_OWNER", "Remote project has no portal user to attach to")
	}

	p, err := project.NewMirror(owner, remote.ID, remote.Title, remote.Description, remote.Completed)
	if err != nil {
		return nil, err
	}
	p.SetDueDate(remote.DueDate)
	if err := p.SetBudget(remote.Budget); err != nil {
		return nil, err
	}
	if err := p.SetFixedPrice(remote.FixedPrice, remote.FixedPriceAmount); err != nil {
		return nil, err
	}
	// Seed progress from the provider only at creation; after that the
	// local value is authoritative.
	if remote.Progress != nil {
		if err := p.SetProgress(*remote.Progress); err != nil {
			return nil, err
		}
	}

	if err := r.projects.Save(ctx, p); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			return r.projects.FindByRemoteID(ctx, remote.ID)
		}
		return nil, err
	}

	r.logger.Info("materialized remote project",
		zap.String("remote_id", remote.ID),
		zap.Uint("project_id", p.ID),
		zap.Uint("owner", owner))
	return p, nil
}

// resolveOwner maps a provider client ID to the linked portal user, falling
// back to the requesting user when no link exists.
func (r *Resolver) resolveOwner(ctx context.Context, remoteClientID string, fallback uint) uint {
	if remoteClientID == "" {
		return fallback
	}
	user, err := r.users.FindByRemoteClientID(ctx, remoteClientID)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			r.logger.Warn("owner lookup failed",
				zap.String("remote_client_id", remoteClientID), zap.Error(err))
		}
		return fallback
	}
	return user.ID
}
