package credentials_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/modubooking/go-booking-client/credentials"
)

func TestFileStore_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	store := credentials.NewFileStore(dir, credentials.PrincipalUser)

	require.False(t, store.IsAuthenticated())
	require.Empty(t, store.Access())
	require.Empty(t, store.Refresh())

	require.NoError(t, store.SetAccess("access-1"))
	require.NoError(t, store.SetRefresh("refresh-1"))

	require.True(t, store.IsAuthenticated())
	require.Equal(t, "access-1", store.Access())
	require.Equal(t, "refresh-1", store.Refresh())

	// A second store over the same directory sees the persisted record.
	reopened := credentials.NewFileStore(dir, credentials.PrincipalUser)
	require.Equal(t, "access-1", reopened.Access())
	require.Equal(t, "refresh-1", reopened.Refresh())
}

func TestFileStore_RecordIsEncryptedAtRest(t *testing.T) {
	dir := t.TempDir()
	store := credentials.NewFileStore(dir, credentials.PrincipalUser)
	require.NoError(t, store.SetAccess("very-secret-access-token"))

	raw, err := os.ReadFile(filepath.Join(dir, "user.cred"))
	require.NoError(t, err)
	require.NotContains(t, string(raw), "very-secret-access-token")
}

func TestFileStore_PrincipalsAreDisjoint(t *testing.T) {
	dir := t.TempDir()
	userStore := credentials.NewFileStore(dir, credentials.PrincipalUser)
	adminStore := credentials.NewFileStore(dir, credentials.PrincipalAdmin)

	require.NoError(t, userStore.SetAccess("user-access"))
	require.NoError(t, userStore.SetRefresh("user-refresh"))
	require.NoError(t, adminStore.SetAccess("admin-access"))

	// Clearing one principal never affects the other.
	require.NoError(t, userStore.Clear())
	require.False(t, userStore.IsAuthenticated())
	require.Empty(t, userStore.Refresh())
	require.Equal(t, "admin-access", adminStore.Access())

	require.NoError(t, adminStore.Clear())
	require.False(t, adminStore.IsAuthenticated())
}

func TestFileStore_ClearRemovesBothTokens(t *testing.T) {
	store := credentials.NewFileStore(t.TempDir(), credentials.PrincipalUser)
	require.NoError(t, store.SetAccess("a"))
	require.NoError(t, store.SetRefresh("r"))

	require.NoError(t, store.Clear())
	require.Empty(t, store.Access())
	require.Empty(t, store.Refresh())

	// Clearing an already-empty store is fine.
	require.NoError(t, store.Clear())
}

func TestFileStore_UnavailableStorageIsNoOp(t *testing.T) {
	store := credentials.NewFileStore("", credentials.PrincipalUser)

	require.NoError(t, store.SetAccess("a"))
	require.NoError(t, store.SetRefresh("r"))
	require.Empty(t, store.Access())
	require.Empty(t, store.Refresh())
	require.False(t, store.IsAuthenticated())
	require.NoError(t, store.Clear())
}

func TestTokenSource(t *testing.T) {
	store := credentials.NewMemoryStore()
	ts := credentials.TokenSource(store)

	t.Run("empty store", func(t *testing.T) {
		_, err := ts.Token()
		require.ErrorIs(t, err, credentials.ErrNoCredential)
	})

	t.Run("reflects the store at call time", func(t *testing.T) {
		require.NoError(t, store.SetAccess("access-2"))
		tok, err := ts.Token()
		require.NoError(t, err)
		require.Equal(t, "access-2", tok.AccessToken)
		require.Equal(t, "Bearer", tok.TokenType)

		require.NoError(t, store.Clear())
		_, err = ts.Token()
		require.ErrorIs(t, err, credentials.ErrNoCredential)
	})
}
