package project

import (
	"context"
	"strings"
	"sync"

	"github.com/clientportal/backend/internal/domain/identity"
	"github.com/clientportal/backend/internal/domain/project"
	"github.com/clientportal/backend/internal/domain/shared"
	"github.com/clientportal/backend/internal/infrastructure/billing"
)

// fakeProjectRepo is an in-memory ProjectRepository
type fakeProjectRepo struct {
	mu     sync.Mutex
	nextID uint
	rows   map[uint]project.Project

	// beforeSave, when set, runs once at the start of the next Save.
	// Used to interleave a competing write.
	beforeSave func()
}

func newFakeProjectRepo() *fakeProjectRepo {
	return &fakeProjectRepo{nextID: 1, rows: make(map[uint]project.Project)}
}

func (r *fakeProjectRepo) FindByID(ctx context.Context, id uint) (*project.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.rows[id]; ok {
		return &p, nil
	}
	return nil, shared.ErrNotFound
}

func (r *fakeProjectRepo) FindByRemoteID(ctx context.Context, remoteID string) (*project.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.rows {
		if p.RemoteID != nil && *p.RemoteID == remoteID {
			row := p
			return &row, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeProjectRepo) FindAll(ctx context.Context, filter shared.Filter) ([]project.Project, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []project.Project
	for _, p := range r.rows {
		out = append(out, p)
	}
	return out, int64(len(out)), nil
}

func (r *fakeProjectRepo) FindAllForClient(ctx context.Context, clientID uint, filter shared.Filter) ([]project.Project, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []project.Project
	for _, p := range r.rows {
		if p.ClientID == clientID && p.Visible {
			out = append(out, p)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeProjectRepo) Save(ctx context.Context, p *project.Project) error {
	if r.beforeSave != nil {
		hook := r.beforeSave
		r.beforeSave = nil
		hook()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.ID == 0 {
		if p.RemoteID != nil {
			for _, existing := range r.rows {
				if existing.RemoteID != nil && *existing.RemoteID == *p.RemoteID {
					return shared.ErrAlreadyExists
				}
			}
		}
		p.ID = r.nextID
		r.nextID++
	}
	r.rows[p.ID] = *p
	return nil
}

// fakeUserRepo is an in-memory UserRepository
type fakeUserRepo struct {
	mu     sync.Mutex
	nextID uint
	rows   map[uint]identity.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{nextID: 1, rows: make(map[uint]identity.User)}
}

func (r *fakeUserRepo) add(u *identity.User) *identity.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u.ID == 0 {
		u.ID = r.nextID
		r.nextID++
	}
	r.rows[u.ID] = *u
	return u
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id uint) (*identity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.rows[id]; ok {
		return &u, nil
	}
	return nil, shared.ErrNotFound
}

func (r *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.rows {
		if u.Email == strings.ToLower(email) {
			row := u
			return &row, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeUserRepo) FindByRemoteClientID(ctx context.Context, remoteClientID string) (*identity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.rows {
		if u.RemoteClientID == remoteClientID && remoteClientID != "" {
			row := u
			return &row, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeUserRepo) FindAll(ctx context.Context, filter shared.Filter) ([]identity.User, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []identity.User
	for _, u := range r.rows {
		out = append(out, u)
	}
	return out, int64(len(out)), nil
}

func (r *fakeUserRepo) Save(ctx context.Context, u *identity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u.ID == 0 {
		u.ID = r.nextID
		r.nextID++
	}
	r.rows[u.ID] = *u
	return nil
}

// fakeGateway is a scriptable RemoteGateway with call counters
type fakeGateway struct {
	mu sync.Mutex

	projects map[string]billing.RemoteProject
	invoices map[string][]billing.RemoteInvoice

	getErr    error
	listErr   error
	updateErr error
	createErr error

	getCalls    int
	listCalls   int
	updateCalls int
	createCalls int

	lastUpdate billing.UpdateProjectInput
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		projects: make(map[string]billing.RemoteProject),
		invoices: make(map[string][]billing.RemoteInvoice),
	}
}

func (g *fakeGateway) GetProject(ctx context.Context, remoteID string) (*billing.RemoteProject, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.getCalls++
	if g.getErr != nil {
		return nil, g.getErr
	}
	if p, ok := g.projects[remoteID]; ok {
		return &p, nil
	}
	return nil, shared.ErrNotFound
}

func (g *fakeGateway) ListProjects(ctx context.Context, clientID string) ([]billing.RemoteProject, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.listCalls++
	if g.listErr != nil {
		return nil, g.listErr
	}
	var out []billing.RemoteProject
	for _, p := range g.projects {
		if clientID == "" || p.ClientID == clientID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (g *fakeGateway) CreateProject(ctx context.Context, in billing.CreateProjectInput) (*billing.RemoteProject, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.createCalls++
	if g.createErr != nil {
		return nil, g.createErr
	}
	p := billing.RemoteProject{
		ID:          "prj_created",
		Title:       in.Title,
		Description: in.Description,
		ClientID:    in.ClientID,
	}
	g.projects[p.ID] = p
	return &p, nil
}

func (g *fakeGateway) UpdateProject(ctx context.Context, remoteID string, in billing.UpdateProjectInput) (*billing.RemoteProject, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.updateCalls++
	g.lastUpdate = in
	if g.updateErr != nil {
		return nil, g.updateErr
	}
	p, ok := g.projects[remoteID]
	if !ok {
		return nil, shared.ErrNotFound
	}
	if in.Title != nil {
		p.Title = *in.Title
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Completed != nil {
		p.Completed = *in.Completed
	}
	g.projects[remoteID] = p
	return &p, nil
}

func (g *fakeGateway) ListInvoices(ctx context.Context, remoteProjectID string) ([]billing.RemoteInvoice, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.listErr != nil {
		return nil, g.listErr
	}
	return g.invoices[remoteProjectID], nil
}
