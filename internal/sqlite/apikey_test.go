package sqlite

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/harmonie-studio/tunesync/internal/repository"
)

func TestAPIKeyRepository_ResolveIdentity(t *testing.T) {
	db := testDB(t)
	keys := NewAPIKeyRepository(db)
	ctx := t.Context()

	require.NoError(t, keys.CreateKey(ctx, "teacher-token", "u1", false, true, "test key"))

	identity, err := keys.ResolveIdentity(ctx, "teacher-token")
	require.NoError(t, err)
	require.Equal(t, "u1", identity.UserID)
	require.False(t, identity.Admin)
	require.True(t, identity.Teacher)
	require.True(t, identity.Operator())

	// The raw token never hits the table.
	var count int
	require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM api_keys WHERE key_hash = 'teacher-token'`).Scan(&count))
	require.Zero(t, count)

	_, err = keys.ResolveIdentity(ctx, "wrong-token")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestAPIKeyRepository_AdminKey(t *testing.T) {
	db := testDB(t)
	keys := NewAPIKeyRepository(db)
	ctx := t.Context()

	require.NoError(t, keys.CreateKey(ctx, "admin-token", "root", true, false, ""))

	identity, err := keys.ResolveIdentity(ctx, "admin-token")
	require.NoError(t, err)
	require.True(t, identity.Admin)
	require.True(t, identity.Operator())
}

func TestHashToken_Stable(t *testing.T) {
	require.Equal(t, HashToken("abc"), HashToken("abc"))
	require.NotEqual(t, HashToken("abc"), HashToken("abd"))
	require.Len(t, HashToken("abc"), 64)
}
