package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harshapalnati/agno/core"
)

func TestInMemoryStore_AppendOrder(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		msg := core.NewUserMessage(fmt.Sprintf("msg-%d", i))
		require.NoError(t, store.Append(ctx, "s1", msg))
	}

	msgs, err := store.Read(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, msgs, 10)
	for i, m := range msgs {
		assert.Equal(t, fmt.Sprintf("msg-%d", i), m.Content)
	}
}

func TestInMemoryStore_ConcurrentAppendsSingleSession(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	const writers = 8
	const perWriter = 50

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
	// No lost or partially interleaved writes: every append shows up whole.
	require.Len(t, msgs, writers*perWriter)

	// Each writer's own messages keep their relative order.
	lastSeen := make(map[int]int)
	for _, m := range msgs {
		var w, i int
		_, err := fmt.Sscanf(m.Content, "w%d-%d", &w, &i)
		require.NoError(t, err)
		if prev, ok := lastSeen[w]; ok {
			assert.Greater(t, i, prev, "writer %d messages out of order", w)
		}
		lastSeen[w] = i
	}
}

func TestInMemoryStore_SessionIsolation(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, "a", core.NewUserMessage("for-a")))
	require.NoError(t, store.Append(ctx, "b", core.NewUserMessage("for-b")))

	a, err := store.Read(ctx, "a")
	require.NoError(t, err)
	b, err := store.Read(ctx, "b")
	require.NoError(t, err)

	require.Len(t, a, 1)
	require.Len(t, b, 1)
	assert.Equal(t, "for-a", a[0].Content)
	assert.Equal(t, "for-b", b[0].Content)
}

func TestInMemoryStore_Clear(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, "s", core.NewUserMessage("hello")))
	require.NoError(t, store.Clear(ctx, "s"))

	msgs, err := store.Read(ctx, "s")
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestInMemoryStore_ReadReturnsCopy(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, "s", core.NewUserMessage("original")))

	msgs, err := store.Read(ctx, "s")
	require.NoError(t, err)
	msgs[0].Content = "mutated"

	again, err := store.Read(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, "original", again[0].Content)
}
