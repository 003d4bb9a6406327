package project

import (
	"context"

	"github.com/clientportal/backend/internal/infrastructure/billing"
)

// RemoteGateway is the application's port to the billing provider.
// *billing.Client satisfies it; tests substitute a fake.
type RemoteGateway interface {
	GetProject(ctx context.Context, remoteID string) (*billing.RemoteProject, error)
	ListProjects(ctx context.Context, clientID string) ([]billing.RemoteProject, error)
	CreateProject(ctx context.Context, in billing.CreateProjectInput) (*billing.RemoteProject, error)
	UpdateProject(ctx context.Context, remoteID string, in billing.UpdateProjectInput) (*billing.RemoteProject, error)
	ListInvoices(ctx context.Context, remoteProjectID string) ([]billing.RemoteInvoice, error)
}
