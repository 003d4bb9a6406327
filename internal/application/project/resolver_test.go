package project

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/clientportal/backend/internal/domain/identity"
	"github.com/clientportal/backend/internal/domain/project"
	"github.com/clientportal/backend/internal/domain/shared"
	"github.com/clientportal/backend/internal/infrastructure/billing"
)

func newTestResolver() (*Resolver, *fakeProjectRepo, *fakeUserRepo, *fakeGateway) {
	projects := newFakeProjectRepo()
	users := newFakeUserRepo()
	gateway := newFakeGateway()
	return NewResolver(projects, users, gateway, zap.NewNop()), projects, users, gateway
}

func TestResolver_LocalNumericReference(t *testing.T) {
	resolver, projects, _, gateway := newTestResolver()
	ctx := context.Background()

	p, err := project.NewProject(1, "Local Project", "")
	require.NoError(t, err)
	require.NoError(t, projects.Save(ctx, p))

	t.Run("resolves without any remote call", func(t *testing.T) {
		found, err := resolver.Resolve(ctx, "1", 1)
		require.NoError(t, err)
		assert.Equal(t, p.ID, found.ID)
		assert.Equal(t, 0, gateway.getCalls)
	})

	t.Run("empty reference is rejected", func(t *testing.T) {
		_, err := resolver.Resolve(ctx, "  ", 1)
		assert.Error(t, err)
		assert.Equal(t, 0, gateway.getCalls)
	})
}

func TestResolver_RemoteReference(t *testing.T) {
	ctx := context.Background()

	t.Run("first resolution fetches once and materializes, second is local", func(t *testing.T) {
		resolver, projects, _, gateway := newTestResolver()
		due := timeMustParse(t, "2026-10-01T00:00:00Z")
		progress := 40
		budget := int64(500000)
		gateway.projects["prj_abc"] = billing.RemoteProject{
			ID:          "prj_abc",
			Title:       "Remote Project",
			Description: "From provider",
			Progress:    &progress,
			DueDate:     &due,
			Budget:      &budget,
		}

		first, err := resolver.Resolve(ctx, "prj_abc", 9)
		require.NoError(t, err)
		assert.Equal(t, 1, gateway.getCalls)
		assert.Equal(t, "Remote Project", first.Title)
		assert.Equal(t, 40, first.Progress)
		require.NotNil(t, first.Budget)
		assert.Equal(t, budget, *first.Budget)
		assert.Equal(t, uint(9), first.ClientID)

		second, err := resolver.Resolve(ctx, "prj_abc", 9)
		require.NoError(t, err)
		assert.Equal(t, 1, gateway.getCalls, "second resolution must not hit the provider")
		assert.Equal(t, first.ID, second.ID)

		_, total, err := projects.FindAll(ctx, shared.DefaultFilter())
		require.NoError(t, err)
		assert.Equal(t, int64(1), total, "materialization must create exactly one row")
	})

	t.Run("owner is the portal user linked to the provider client", func(t *testing.T) {
		resolver, _, users, gateway := newTestResolver()
		owner, err := identity.NewCustomer("owner@acme.test", "s3cretpass", "cli_7")
		require.NoError(t, err)
		users.add(owner)

		gateway.projects["prj_owned"] = billing.RemoteProject{
			ID:       "prj_owned",
			Title:    "Owned",
			ClientID: "cli_7",
		}

		p, err := resolver.Resolve(ctx, "prj_owned", 99)
		require.NoError(t, err)
		assert.Equal(t, owner.ID, p.ClientID)
	})

	t.Run("provider 404 is not-found and inserts nothing", func(t *testing.T) {
		resolver, projects, _, gateway := newTestResolver()

		_, err := resolver.Resolve(ctx, "prj_missing", 1)
		assert.True(t, errors.Is(err, shared.ErrNotFound))
		assert.Equal(t, 1, gateway.getCalls)

		_, total, err := projects.FindAll(ctx, shared.DefaultFilter())
		require.NoError(t, err)
		assert.Equal(t, int64(0), total)
	})

	t.Run("provider outage propagates and inserts nothing", func(t *testing.T) {
		resolver, projects, _, gateway := newTestResolver()
		gateway.getErr = shared.ErrRemoteUnavailable

		_, err := resolver.Resolve(ctx, "prj_down", 1)
		assert.True(t, errors.Is(err, shared.ErrRemoteUnavailable))

		_, total, err := projects.FindAll(ctx, shared.DefaultFilter())
		require.NoError(t, err)
		assert.Equal(t, int64(0), total)
	})

	t.Run("missing credential degrades to not-found", func(t *testing.T) {
		resolver, _, _, gateway := newTestResolver()
		gateway.getErr = billing.ErrNoToken

		_, err := resolver.Resolve(ctx, "prj_abc", 1)
		assert.True(t, errors.Is(err, shared.ErrNotFound))
	})

	t.Run("numeric remote IDs fall through to the remote path", func(t *testing.T) {
		resolver, _, _, gateway := newTestResolver()
		gateway.projects["12345"] = billing.RemoteProject{ID: "12345", Title: "Numeric Remote"}

		p, err := resolver.Resolve(ctx, "12345", 1)
		require.NoError(t, err)
		assert.Equal(t, "Numeric Remote", p.Title)
		require.NotNil(t, p.RemoteID)
		assert.Equal(t, "12345", *p.RemoteID)
	})

	t.Run("materialization race converges on the existing row", func(t *testing.T) {
		resolver, projects, _, gateway := newTestResolver()
		gateway.projects["prj_race"] = billing.RemoteProject{ID: "prj_race", Title: "Raced"}

		// A competing materialization lands between the local miss and the
		// save. The unique remote ID rejects the second insert and the
		// resolver converges on the winner's row.
		var winner *project.Project
		projects.beforeSave = func() {
			w, err := project.NewMirror(5, "prj_race", "Raced", "", false)
			require.NoError(t, err)
			require.NoError(t, projects.Save(ctx, w))
			winner = w
		}

		p, err := resolver.Resolve(ctx, "prj_race", 1)
		require.NoError(t, err)
		require.NotNil(t, winner)
		assert.Equal(t, winner.ID, p.ID)

		_, total, err := projects.FindAll(ctx, shared.DefaultFilter())
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
	})
}

func timeMustParse(t *testing.T, s string) time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, s)
	require.NoError(t, err)
	return parsed
}
