package persistence

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clientportal/backend/internal/domain/project"
	"github.com/clientportal/backend/internal/domain/shared"
)

func TestGormProjectRepository_FindByID(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormProjectRepository(db)
	ctx := context.Background()

	t.Run("finds existing project", func(t *testing.T) {
		p, err := project.NewProject(1, "Website Redesign", "Full rebuild")
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, p))

		found, err := repo.FindByID(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, "Website Redesign", found.Title)
		assert.Equal(t, uint(1), found.ClientID)
	})

	t.Run("returns not found for missing project", func(t *testing.T) {
		_, err := repo.FindByID(ctx, 9999)
		assert.True(t, errors.Is(err, shared.ErrNotFound))
	})
}

func TestGormProjectRepository_FindByRemoteID(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormProjectRepository(db)
	ctx := context.Background()

	t.Run("finds project by remote ID", func(t *testing.T) {
		p, err := project.NewMirror(1, "prj_remote_1", "Mirrored", "", false)
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, p))

		found, err := repo.FindByRemoteID(ctx, "prj_remote_1")
		require.NoError(t, err)
		assert.Equal(t, p.ID, found.ID)
		require.NotNil(t, found.RemoteID)
		assert.Equal(t, "prj_remote_1", *found.RemoteID)
	})

	t.Run("returns not found for unknown remote ID", func(t *testing.T) {
		_, err := repo.FindByRemoteID(ctx, "prj_nope")
		assert.True(t, errors.Is(err, shared.ErrNotFound))
	})

	t.Run("rejects empty remote ID", func(t *testing.T) {
		_, err := repo.FindByRemoteID(ctx, "")
		assert.Error(t, err)
		assert.False(t, errors.Is(err, shared.ErrNotFound))
	})

	t.Run("projects without remote IDs do not collide", func(t *testing.T) {
		p1, err := project.NewProject(1, "Local Only A", "")
		require.NoError(t, err)
		p2, err := project.NewProject(1, "Local Only B", "")
		require.NoError(t, err)

		require.NoError(t, repo.Save(ctx, p1))
		require.NoError(t, repo.Save(ctx, p2))
	})
}

func TestGormProjectRepository_FindAllForClient(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormProjectRepository(db)
	ctx := context.Background()

	mustSave := func(p *project.Project) {
		t.Helper()
		require.NoError(t, repo.Save(ctx, p))
	}

	a, err := project.NewProject(1, "Client One Visible", "")
	require.NoError(t, err)
	mustSave(a)

	hidden, err := project.NewProject(1, "Client One Hidden", "")
	require.NoError(t, err)
	hidden.SetVisible(false)
	mustSave(hidden)

	other, err := project.NewProject(2, "Client Two", "")
	require.NoError(t, err)
	mustSave(other)

	t.Run("returns only visible projects of the client", func(t *testing.T) {
		projects, total, err := repo.FindAllForClient(ctx, 1, shared.DefaultFilter())
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, projects, 1)
		assert.Equal(t, "Client One Visible", projects[0].Title)
	})

	t.Run("search narrows results", func(t *testing.T) {
		filter := shared.DefaultFilter()
		filter.Search = "nothing matches this"
		projects, total, err := repo.FindAllForClient(ctx, 1, filter)
		require.NoError(t, err)
		assert.Equal(t, int64(0), total)
		assert.Empty(t, projects)
	})
}

func TestGormProjectRepository_Save(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormProjectRepository(db)
	ctx := context.Background()

	t.Run("update persists field changes", func(t *testing.T) {
		p, err := project.NewProject(1, "Before", "")
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, p))

		require.NoError(t, p.Rename("After", "updated description"))
		require.NoError(t, p.SetProgress(60))
		require.NoError(t, repo.Save(ctx, p))

		found, err := repo.FindByID(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, "After", found.Title)
		assert.Equal(t, 60, found.Progress)
	})

	t.Run("duplicate remote ID maps to already exists", func(t *testing.T) {
		first, err := project.NewMirror(1, "prj_dup", "Winner", "", false)
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, first))

		second, err := project.NewMirror(1, "prj_dup", "Loser", "", false)
		require.NoError(t, err)
		err = repo.Save(ctx, second)
		require.Error(t, err)
		assert.True(t, errors.Is(err, shared.ErrAlreadyExists),
			"unique index conflicts must surface as ErrAlreadyExists, got %v", err)
	})

	t.Run("linking a remote ID persists", func(t *testing.T) {
		p, err := project.NewProject(1, "To Link", "")
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, p))

		require.NoError(t, p.LinkRemote("prj_linked"))
		require.NoError(t, repo.Save(ctx, p))

		found, err := repo.FindByRemoteID(ctx, "prj_linked")
		require.NoError(t, err)
		assert.Equal(t, p.ID, found.ID)
	})
}
