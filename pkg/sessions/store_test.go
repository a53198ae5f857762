package sessions

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
)

func TestMemoryStore(t *testing.T) {
	t.Parallel()
	store := NewMemoryStore()
	ctx := context.Background()
	key := Key{Node: "agent", SessionID: "thread-1"}

	// Load unknown session
	_, err := store.Load(ctx, key)
	require.ErrorIs(t, err, ErrSessionNotFound)
	require.Contains(t, err.Error(), "thread-1")

	// Save and load
	err = store.Save(ctx, Session{Key: key, Messages: []llms.ChatMessage{llms.HumanChatMessage{Content: "hi"}}})
	require.NoError(t, err)
	s, err := store.Load(ctx, key)
	require.NoError(t, err)
	require.Len(t, s.Messages, 1)
	require.False(t, s.UpdatedAt.IsZero())

	// Overwrite
	err = store.Save(ctx, Session{Key: key, Messages: []llms.ChatMessage{
		llms.HumanChatMessage{Content: "a"},
		llms.AIChatMessage{Content: "b"},
	}})
	require.NoError(t, err)
	s, err = store.Load(ctx, key)
	require.NoError(t, err)
	require.Len(t, s.Messages, 2)

	// Loaded sessions are copies
	s.Messages[0] = llms.HumanChatMessage{Content: "changed"}
	again, err := store.Load(ctx, key)
	require.NoError(t, err)
	require.Equal(t, "a", again.Messages[0].GetContent())

	// Delete
	require.NoError(t, store.Delete(ctx, key))
	_, err = store.Load(ctx, key)
	require.ErrorIs(t, err, ErrSessionNotFound)
}

func TestMemoryStoreConcurrentAppend(t *testing.T) {
	t.Parallel()
	store := NewMemoryStore()
	ctx := context.Background()
	key := Key{Node: "agent", SessionID: "shared"}

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = store.Append(ctx, key, llms.HumanChatMessage{Content: fmt.Sprint(i)})
		}()
	}
	wg.Wait()

	s, err := store.Load(ctx, key)
	require.NoError(t, err)
	require.Len(t, s.Messages, 50)
}
