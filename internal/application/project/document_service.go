package project

import (
	"context"
	"fmt"
	"path"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/clientportal/backend/internal/domain/project"
	"github.com/clientportal/backend/internal/domain/shared"
	"github.com/clientportal/backend/internal/infrastructure/storage"
)

const ticketExpiration = 15 * time.Minute

// DocumentService implements the project document use cases. File bytes
// move directly between the client and object storage via presigned URLs;
// only metadata passes through here.
type DocumentService struct {
	resolver  *Resolver
	documents project.DocumentRepository
	store     storage.ObjectStorage
	logger    *zap.Logger
}

// NewDocumentService creates a document service
func NewDocumentService(resolver *Resolver, documents project.DocumentRepository, store storage.ObjectStorage, logger *zap.Logger) *DocumentService {
	return &DocumentService{
		resolver:  resolver,
		documents: documents,
		store:     store,
		logger:    logger.Named("document_service"),
	}
}

// List returns the documents of a project
func (s *DocumentService) List(ctx context.Context, ref string, filter shared.Filter, actor Actor) ([]DocumentDTO, int64, error) {
	p, err := s.resolveForActor(ctx, ref, actor)
	if err != nil {
		return nil, 0, err
	}

	docs, total, err := s.documents.FindByProject(ctx, p.ID, filter)
	if err != nil {
		return nil, 0, err
	}

	dtos := make([]DocumentDTO, len(docs))
	for i := range docs {
		dtos[i] = *toDocumentDTO(&docs[i])
	}
	return dtos, total, nil
}

// RequestUpload reserves a document slot and returns a presigned upload URL
func (s *DocumentService) RequestUpload(ctx context.Context, ref, fileName, contentType string, sizeBytes int64, actor Actor) (*UploadTicketDTO, error) {
	p, err := s.resolveForActor(ctx, ref, actor)
	if err != nil {
		return nil, err
	}

	objectKey := fmt.Sprintf("projects/%d/%s%s", p.ID, uuid.NewString(), path.Ext(fileName))
	doc, err := project.NewDocument(p.ID, actor.UserID, fileName, objectKey, contentType, sizeBytes)
	if err != nil {
		return nil, err
	}

	uploadURL, expiresAt, err := s.store.GenerateUploadURL(ctx, objectKey, contentType, ticketExpiration)
	if err != nil {
		return nil, err
	}
	if err := s.documents.Save(ctx, doc); err != nil {
		return nil, err
	}

	return &UploadTicketDTO{
		Document:  *toDocumentDTO(doc),
		UploadURL: uploadURL,
		ExpiresAt: expiresAt,
	}, nil
}

// DownloadURL returns a presigned download URL for a document
func (s *DocumentService) DownloadURL(ctx context.Context, documentID uint, actor Actor) (*DownloadTicketDTO, error) {
	doc, err := s.documents.FindByID(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if _, err := s.resolveForActor(ctx, fmt.Sprintf("%d", doc.ProjectID), actor); err != nil {
		return nil, err
	}

	url, expiresAt, err := s.store.GenerateDownloadURL(ctx, doc.ObjectKey, ticketExpiration)
	if err != nil {
		return nil, err
	}
	return &DownloadTicketDTO{DownloadURL: url, ExpiresAt: expiresAt}, nil
}

// Delete removes a document's metadata and its stored object. Only the
// uploader or an admin may delete.
func (s *DocumentService) Delete(ctx context.Context, documentID uint, actor Actor) error {
	doc, err := s.documents.FindByID(ctx, documentID)
	if err != nil {
		return err
	}
	if !actor.Admin && doc.UploadedBy != actor.UserID {
		return shared.ErrForbidden
	}

	if err := s.documents.Delete(ctx, documentID); err != nil {
		return err
	}
	if err := s.store.DeleteObject(ctx, doc.ObjectKey); err != nil {
		// Metadata is gone; an orphaned object is tolerable and logged
		s.logger.Warn("failed to delete stored object",
			zap.String("object_key", doc.ObjectKey), zap.Error(err))
	}
	return nil
}

func (s *DocumentService) resolveForActor(ctx context.Context, ref string, actor Actor) (*project.Project, error) {
	p, err := s.resolver.Resolve(ctx, ref, actor.UserID)
	if err != nil {
		return nil, err
	}
	if !actor.Admin && (!p.OwnedBy(actor.UserID) || !p.Visible) {
		return nil, shared.ErrForbidden
	}
	return p, nil
}
