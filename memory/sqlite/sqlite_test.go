package sqlite

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harshapalnati/agno/core"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "memory.db")
	store, err := New(path)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store, path
}

func TestStore_AppendReadOrder(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, "s1", core.NewUserMessage("hi")))
	require.NoError(t, store.Append(ctx, "s1", core.NewToolMessage("uppercase", "hi", "HI")))
	require.NoError(t, store.Append(ctx, "s1", core.NewAgentMessage("HI")))

	msgs, err := store.Read(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	assert.Equal(t, core.RoleUser, msgs[0].Role)
	assert.Equal(t, core.RoleTool, msgs[1].Role)
	assert.Equal(t, "uppercase", msgs[1].ToolName)
	assert.Equal(t, "hi", msgs[1].ToolArgs)
	assert.Equal(t, core.RoleAgent, msgs[2].Role)
}

func TestStore_DurableAcrossReopen(t *testing.T) {
	store, path := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, "s1", core.NewUserMessage("persisted")))
	require.NoError(t, store.Close())

	reopened, err := New(path)
	require.NoError(t, err)
	defer reopened.Close()

	msgs, err := reopened.Read(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "persisted", msgs[0].Content)
}

func TestStore_ConcurrentAppends(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	const writers = 4
	const perWriter = 25

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				msg := core.NewAgentMessage(fmt.Sprintf("w%d-%d", w, i))
				assert.NoError(t, store.Append(ctx, "shared", msg))
			}
		}(w)
	}
	wg.Wait()

	msgs, err := store.Read(ctx, "shared")
	require.NoError(t, err)
	assert.Len(t, msgs, writers*perWriter)
}

func TestStore_SessionIsolationAndClear(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, "a", core.NewUserMessage("for-a")))
	require.NoError(t, store.Append(ctx, "b", core.NewUserMessage("for-b")))
	require.NoError(t, store.Clear(ctx, "a"))

	a, err := store.Read(ctx, "a")
	require.NoError(t, err)
	assert.Empty(t, a)

	b, err := store.Read(ctx, "b")
	require.NoError(t, err)
	require.Len(t, b, 1)
	assert.Equal(t, "for-b", b[0].Content)
}
