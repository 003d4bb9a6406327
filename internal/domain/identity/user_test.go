package identity

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	t.Run("normalizes the email", func(t *testing.T) {
		u, err := NewUser("  Client@Acme.TEST ", "s3cretpass", RoleCustomer)
		require.NoError(t, err)
		assert.Equal(t, "client@acme.test", u.Email)
		assert.True(t, u.IsActive())
		assert.False(t, u.IsAdmin())
	})

	t.Run("stores a hash, not the password", func(t *testing.T) {
		u, err := NewUser("client@acme.test", "s3cretpass", RoleCustomer)
		require.NoError(t, err)
		assert.NotContains(t, u.PasswordHash, "s3cretpass")
		assert.True(t, u.CheckPassword("s3cretpass"))
		assert.False(t, u.CheckPassword("wrong"))
	})

	t.Run("rejects bad input", func(t *testing.T) {
		_, err := NewUser("not-an-email", "s3cretpass", RoleCustomer)
		assert.Error(t, err)
		_, err = NewUser("client@acme.test", "short", RoleCustomer)
		assert.Error(t, err)
		_, err = NewUser("client@acme.test", strings.Repeat("x", 73), RoleCustomer)
		assert.Error(t, err)
		_, err = NewUser("client@acme.test", "s3cretpass", Role("root"))
		assert.Error(t, err)
	})
}

func TestNewCustomer(t *testing.T) {
	u, err := NewCustomer("client@acme.test", "s3cretpass", "cli_42")
	require.NoError(t, err)
	assert.Equal(t, RoleCustomer, u.Role)
	assert.Equal(t, "cli_42", u.RemoteClientID)
}

func TestChangePassword(t *testing.T) {
	u, err := NewUser("client@acme.test", "originalpass", RoleCustomer)
	require.NoError(t, err)

	require.NoError(t, u.ChangePassword("replacement1"))
	assert.False(t, u.CheckPassword("originalpass"))
	assert.True(t, u.CheckPassword("replacement1"))

	assert.Error(t, u.ChangePassword("short"))
}

func TestDeactivate(t *testing.T) {
	u, err := NewUser("client@acme.test", "s3cretpass", RoleCustomer)
	require.NoError(t, err)

	require.NoError(t, u.Deactivate())
	assert.False(t, u.IsActive())

	assert.Error(t, u.Deactivate(), "double deactivation fails")
}

func TestLinkRemoteClient(t *testing.T) {
	u, err := NewUser("client@acme.test", "s3cretpass", RoleCustomer)
	require.NoError(t, err)

	assert.Error(t, u.LinkRemoteClient("  "))
	require.NoError(t, u.LinkRemoteClient("cli_7"))
	assert.Equal(t, "cli_7", u.RemoteClientID)
}

func TestRecordLogin(t *testing.T) {
	u, err := NewUser("client@acme.test", "s3cretpass", RoleCustomer)
	require.NoError(t, err)

	at := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	u.RecordLogin(at)
	require.NotNil(t, u.LastLoginAt)
	assert.Equal(t, at, *u.LastLoginAt)
}
