package credential

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/care-client/internal/storage"
)

func TestStoreSaveCurrentClear(t *testing.T) {
	store := NewStore(storage.NewMemoryStore())

	_, ok := store.Current()
	require.False(t, ok)

	require.NoError(t, store.Save("token-one"))
	cred, ok := store.Current()
	require.True(t, ok)
	require.Equal(t, "token-one", cred)

	// Saving replaces wholesale; the old credential is gone.
	require.NoError(t, store.Save("token-two"))
	cred, _ = store.Current()
	require.Equal(t, "token-two", cred)

	require.NoError(t, store.Clear())
	_, ok = store.Current()
	require.False(t, ok)
}

func TestStoreRestoresFromDurableStorage(t *testing.T) {
	kv := storage.NewMemoryStore()

	first := NewStore(kv)
	require.NoError(t, first.Save("persisted-token"))

	// A fresh store over the same storage sees the credential, as after a
	// process restart.
	second := NewStore(kv)
	cred, ok := second.Current()
	require.True(t, ok)
	require.Equal(t, "persisted-token", cred)
}

func TestStoreConcurrentAccess(t *testing.T) {
	store := NewStore(storage.NewMemoryStore())

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = store.Save(fmt.Sprintf("token-%d", i))
			_, _ = store.Current()
		}(i)
	}
	wg.Wait()

	// Whatever won, the value is a whole token, never a torn write.
	cred, ok := store.Current()
	require.True(t, ok)
	require.Regexp(t, `^token-\d+$`, cred)
}
