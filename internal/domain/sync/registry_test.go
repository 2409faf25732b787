package sync_test

import (
	"fmt"
	gosync "sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harmonie-studio/tunesync/internal/domain/sync"
)

func TestRegistry_RegisterAndCancel(t *testing.T) {
	registry := sync.NewRegistry()

	token, err := registry.Register("user1-1")
	require.NoError(t, err)
	require.False(t, token.Cancelled())

	require.True(t, registry.Cancel("user1-1"))
	require.True(t, token.Cancelled())

	select {
	case <-token.Done():
	default:
		t.Fatal("token channel should be closed after cancel")
	}
}

func TestRegistry_DuplicateSession(t *testing.T) {
	registry := sync.NewRegistry()

	_, err := registry.Register("user1-1")
	require.NoError(t, err)

	_, err = registry.Register("user1-1")
	require.ErrorIs(t, err, sync.ErrDuplicateSession)
}

func TestRegistry_CancelIsIdempotent(t *testing.T) {
	registry := sync.NewRegistry()

	token, err := registry.Register("user1-1")
	require.NoError(t, err)

	require.True(t, registry.Cancel("user1-1"))
	require.True(t, registry.Cancel("user1-1"))
	require.True(t, token.Cancelled())
}

func TestRegistry_CancelUnknownSession(t *testing.T) {
	registry := sync.NewRegistry()
	require.False(t, registry.Cancel("missing"))
}

func TestRegistry_ReleaseRemovesSession(t *testing.T) {
	registry := sync.NewRegistry()

	_, err := registry.Register("user1-1")
	require.NoError(t, err)

	registry.Release("user1-1")
	require.False(t, registry.Cancel("user1-1"))
	require.Zero(t, registry.Len())

	// Releasing again is harmless.
	registry.Release("user1-1")

	// The ID can be reused once released.
	_, err = registry.Register("user1-1")
	require.NoError(t, err)
}

func TestRegistry_ConcurrentSessions(t *testing.T) {
	registry := sync.NewRegistry()

	var wg gosync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("user%d-%d", i, i)
			_, err := registry.Register(id)
			assert.NoError(t, err)
			assert.True(t, registry.Cancel(id))
			registry.Release(id)
		}(i)
	}
	wg.Wait()

	require.Zero(t, registry.Len())
}
