package project

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/clientportal/backend/internal/domain/project"
	"github.com/clientportal/backend/internal/domain/shared"
	"github.com/clientportal/backend/internal/infrastructure/billing"
)

// InvoiceService serves project invoices. The billing provider owns
// invoices; local rows are a mirror refreshed on listing. When the provider
// is down the stale mirror is served rather than an error.
type InvoiceService struct {
	resolver *Resolver
	invoices project.InvoiceRepository
	remote   RemoteGateway
	logger   *zap.Logger
}

// NewInvoiceService creates an invoice service
func NewInvoiceService(resolver *Resolver, invoices project.InvoiceRepository, remote RemoteGateway, logger *zap.Logger) *InvoiceService {
	return &InvoiceService{
		resolver: resolver,
		invoices: invoices,
		remote:   remote,
		logger:   logger.Named("invoice_service"),
	}
}

// List returns the invoices of a project, refreshing the mirror from the
// provider when possible.
func (s *InvoiceService) List(ctx context.Context, ref string, filter shared.Filter, actor Actor) ([]InvoiceDTO, int64, error) {
	p, err := s.resolver.Resolve(ctx, ref, actor.UserID)
	if err != nil {
		return nil, 0, err
	}
	if !actor.Admin && (!p.OwnedBy(actor.UserID) || !p.Visible) {
		return nil, 0, shared.ErrForbidden
	}

	if p.HasRemoteID() {
		s.refreshMirror(ctx, p)
	}

	invoices, total, err := s.invoices.FindByProject(ctx, p.ID, filter)
	if err != nil {
		return nil, 0, err
	}

	dtos := make([]InvoiceDTO, len(invoices))
	for i := range invoices {
		dtos[i] = *toInvoiceDTO(&invoices[i])
	}
	return dtos, total, nil
}

// refreshMirror upserts local invoice rows from the provider. Provider
// failures only log; the caller falls back to the existing mirror.
func (s *InvoiceService) refreshMirror(ctx context.Context, p *project.Project) {
	remotes, err := s.remote.ListInvoices(ctx, *p.RemoteID)
	if err != nil {
		if !errors.Is(err, billing.ErrNoToken) {
			s.logger.Warn("invoice refresh failed, serving mirror",
				zap.Uint("project_id", p.ID), zap.Error(err))
		}
		return
	}

	for i := range remotes {
		remote := &remotes[i]
		status := mapInvoiceStatus(remote.Status)

		inv, err := s.invoices.FindByRemoteNumber(ctx, remote.Number)
		switch {
		case err == nil:
			if err := inv.ApplyRemote(remote.Amount, status, remote.IssuedAt, remote.PaidAt); err != nil {
				s.logger.Warn("skipping invalid remote invoice",
					zap.String("number", remote.Number), zap.Error(err))
				continue
			}
		case errors.Is(err, shared.ErrNotFound):
			inv, err = project.NewInvoice(p.ID, remote.Number, remote.Amount, remote.Currency)
			if err != nil {
				s.logger.Warn("skipping invalid remote invoice",
					zap.String("number", remote.Number), zap.Error(err))
				continue
			}
			if err := inv.ApplyRemote(remote.Amount, status, remote.IssuedAt, remote.PaidAt); err != nil {
				continue
			}
		default:
			s.logger.Warn("invoice lookup failed", zap.String("number", remote.Number), zap.Error(err))
			continue
		}

		if err := s.invoices.Save(ctx, inv); err != nil {
			s.logger.Warn("invoice save failed", zap.String("number", remote.Number), zap.Error(err))
		}
	}
}

// mapInvoiceStatus coerces provider status strings onto the local enum,
// defaulting unknown values to draft.
func mapInvoiceStatus(status string) project.InvoiceStatus {
	switch project.InvoiceStatus(status) {
	case project.InvoiceStatusDraft, project.InvoiceStatusSent, project.InvoiceStatusPaid, project.InvoiceStatusOverdue:
		return project.InvoiceStatus(status)
	default:
		return project.InvoiceStatusDraft
	}
}
