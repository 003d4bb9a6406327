package project

import (
	"context"

	"go.uber.org/zap"

	"github.com/clientportal/backend/internal/domain/project"
	"github.com/clientportal/backend/internal/domain/shared"
)

// NoteService implements the project note use cases. Notes are local-only:
// no operation here ever reaches the billing provider.
type NoteService struct {
	resolver *Resolver
	notes    project.NoteRepository
	logger   *zap.Logger
}

// NewNoteService creates a note service
func NewNoteService(resolver *Resolver, notes project.NoteRepository, logger *zap.Logger) *NoteService {
	return &NoteService{
		resolver: resolver,
		notes:    notes,
		logger:   logger.Named("note_service"),
	}
}

// List returns the notes of a project
func (s *NoteService) List(ctx context.Context, ref string, filter shared.Filter, actor Actor) ([]NoteDTO, int64, error) {
	p, err := s.resolveForActor(ctx, ref, actor)
	if err != nil {
		return nil, 0, err
	}

	notes, total, err := s.notes.FindByProject(ctx, p.ID, filter)
	if err != nil {
		return nil, 0, err
	}

	dtos := make([]NoteDTO, len(notes))
	for i := range notes {
		dtos[i] = *toNoteDTO(&notes[i])
	}
	return dtos, total, nil
}

// Add creates a note on a project
func (s *NoteService) Add(ctx context.Context, ref, content string, actor Actor) (*NoteDTO, error) {
	p, err := s.resolveForActor(ctx, ref, actor)
	if err != nil {
		return nil, err
	}

	note, err := project.NewNote(p.ID, actor.UserID, content)
	if err != nil {
		return nil, err
	}
	if err := s.notes.Save(ctx, note); err != nil {
		return nil, err
	}
	return toNoteDTO(note), nil
}

// Edit replaces a note's content. Only the author or an admin may edit.
func (s *NoteService) Edit(ctx context.Context, noteID uint, content string, actor Actor) (*NoteDTO, error) {
	note, err := s.notes.FindByID(ctx, noteID)
	if err != nil {
		return nil, err
	}
	if !note.CanModify(actor.UserID, actor.Admin) {
		return nil, shared.ErrForbidden
	}
	if err := note.Edit(content); err != nil {
		return nil, err
	}
	if err := s.notes.Save(ctx, note); err != nil {
		return nil, err
	}
	return toNoteDTO(note), nil
}

// Delete removes a note. Only the author or an admin may delete.
func (s *NoteService) Delete(ctx context.Context, noteID uint, actor Actor) error {
	note, err := s.notes.FindByID(ctx, noteID)
	if err != nil {
		return err
	}
	if !note.CanModify(actor.UserID, actor.Admin) {
		return shared.ErrForbidden
	}
	return s.notes.Delete(ctx, noteID)
}

func (s *NoteService) resolveForActor(ctx context.Context, ref string, actor Actor) (*project.Project, error) {
	p, err := s.resolver.Resolve(ctx, ref, actor.UserID)
	if err != nil {
		return nil, err
	}
	if !actor.Admin && (!p.OwnedBy(actor.UserID) || !p.Visible) {
		return nil, shared.ErrForbidden
	}
	return p, nil
}
