package session

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrenko/passlock/internal/common"
	"github.com/dmitrenko/passlock/internal/vault"
)

func newTestVault(t *testing.T, name string, password []byte) *vault.Store {
	t.Helper()
	store, err := vault.NewStore(t.TempDir())
	require.NoError(t, err)

	v, err := store.Initialize(name)
	require.NoError(t, err)
	require.NoError(t, v.AddEntry(&vault.Entry{Name: "Email", Username: "a@b.com", Password: "x"}))
	require.NoError(t, store.Close(v, password))
	return store
}

func TestStartSession(t *testing.T) {
	password := []byte("password123")
	store := newTestVault(t, "demo", password)

	s := New(store, "demo", 0)
	assert.False(t, s.Active())
	assert.Equal(t, DefaultTimeout, s.WishedTimeout)

	require.NoError(t, s.StartSession(password))
	assert.True(t, s.Active())
	require.NotNil(t, s.Vault())
	assert.True(t, s.Vault().NameExists("Email"))
}

func TestStartSession_WrongPassword(t *testing.T) {
	store := newTestVault(t, "demo", []byte("right"))

	s := New(store, "demo", time.Minute)
	err := s.StartSession([]byte("wrong"))
	require.ErrorIs(t, err, common.ErrInvalidKey)
	assert.False(t, s.Active(), "failed start must leave the session inactive")
}

func TestStartSession_AlreadyActive(t *testing.T) {
	password := []byte("pw")
	store := newTestVault(t, "demo", password)

	s := New(store, "demo", time.Minute)
	require.NoError(t, s.StartSession(password))
	s.Vault().GetEntry("Email").Notes = "marker"

	err := s.StartSession(password)
	require.ErrorIs(t, err, common.ErrSessionActive)

	// the open vault must be untouched by the rejected re-open
	assert.Equal(t, "marker", s.Vault().GetEntry("Email").Notes)
}

func TestVerifyMasterPassword(t *testing.T) {
	password := []byte("pw")
	store := newTestVault(t, "demo", password)

	s := New(store, "demo", time.Minute)
	require.ErrorIs(t, s.VerifyMasterPassword(password), common.ErrSessionInactive)

	require.NoError(t, s.StartSession(password))
	require.NoError(t, s.VerifyMasterPassword([]byte("pw")))
	require.ErrorIs(t, s.VerifyMasterPassword([]byte("nope")), common.ErrInvalidKey)
}

func TestSaveAndReopen(t *testing.T) {
	password := []byte("pw")
	store := newTestVault(t, "demo", password)

	s := New(store, "demo", time.Minute)
	require.NoError(t, s.StartSession(password))
	require.NoError(t, s.Vault().AddEntry(&vault.Entry{Name: "Bank", Password: "y"}))
	require.NoError(t, s.Save())
	assert.True(t, s.Active(), "save must not clear the session")
	require.NoError(t, s.EndSession())

	s2 := New(store, "demo", time.Minute)
	require.NoError(t, s2.StartSession(password))
	assert.True(t, s2.Vault().NameExists("Bank"))
}

func TestEndSession_Idempotent(t *testing.T) {
	password := []byte("pw")
	store := newTestVault(t, "demo", password)

	s := New(store, "demo", time.Minute)
	require.NoError(t, s.StartSession(password))
	require.NoError(t, s.EndSession())
	assert.False(t, s.Active())
	assert.Nil(t, s.Vault())

	before, err := os.ReadFile(store.Path("demo"))
	require.NoError(t, err)

	require.ErrorIs(t, s.EndSession(), common.ErrSessionInactive)

	after, err := os.ReadFile(store.Path("demo"))
	require.NoError(t, err)
	assert.Equal(t, before, after, "second end must not rewrite the file")
}

func TestChangeMasterPassword(t *testing.T) {
	oldPW := []byte("old-password")
	newPW := []byte("new-password")
	store := newTestVault(t, "demo", oldPW)

	s := New(store, "demo", time.Minute)
	require.ErrorIs(t, s.ChangeMasterPassword(newPW), common.ErrSessionInactive)

	require.NoError(t, s.StartSession(oldPW))
	require.NoError(t, s.ChangeMasterPassword(newPW))
	require.NoError(t, s.EndSession())

	// the vault is now encrypted under the new password only
	s2 := New(store, "demo", time.Minute)
	require.ErrorIs(t, s2.StartSession(oldPW), common.ErrInvalidKey)
	require.NoError(t, s2.StartSession(newPW))
}

func TestCheckTimeout_Deterministic(t *testing.T) {
	store := newTestVault(t, "demo", []byte("pw"))
	s := New(store, "demo", time.Minute)

	const threshold = 10 * time.Second

	s.lastActivity = time.Now().Add(-threshold + 2*time.Second)
	assert.False(t, s.CheckTimeout(threshold))

	s.lastActivity = time.Now().Add(-threshold - 2*time.Second)
	assert.True(t, s.CheckTimeout(threshold))
}

func TestUpdateActivity(t *testing.T) {
	store := newTestVault(t, "demo", []byte("pw"))
	s := New(store, "demo", time.Minute)

	s.lastActivity = time.Now().Add(-time.Hour)
	require.True(t, s.CheckTimeout(time.Minute))

	s.UpdateActivity()
	assert.False(t, s.CheckTimeout(time.Minute))
}
