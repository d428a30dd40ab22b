package publisher

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	audit "signup/pkg/platform/audit"
	"signup/pkg/platform/audit/store/memory"
)

func TestPublisher_SyncMode(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)
	defer pub.Close()

	err := pub.Emit(context.Background(), audit.Event{
		Action:    audit.ActionRegistrationSucceeded,
		SessionID: "sess-1",
		Username:  "jdoe",
	})
	require.NoError(t, err)

	events, err := store.ListBySession(context.Background(), "sess-1")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, audit.ActionRegistrationSucceeded, events[0].Action)
	assert.NotEmpty(t, events[0].ID)
	assert.False(t, events[0].Timestamp.IsZero())
}

func TestPublisher_AsyncDrainsOnClose(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store, WithAsyncBuffer(100))

	for range 10 {
		err := pub.Emit(context.Background(), audit.Event{
			Action:    audit.ActionRegistrationFailed,
			SessionID: "sess-2",
		})
		require.NoError(t, err)
	}

	pub.Close()

	events, err := store.ListBySession(context.Background(), "sess-2")
	require.NoError(t, err)
	assert.Len(t, events, 10, "all events should be drained on close")
}

func TestPublisher_KeepsCallerTimestamp(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)
	defer pub.Close()

	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, pub.Emit(context.Background(), audit.Event{
		Action:    audit.ActionRegistrationRejected,
		Timestamp: at,
	}))

	events, err := store.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, at, events[0].Timestamp)
}

type failingStore struct{}

func (failingStore) Append(context.Context, audit.Event) error {
	return errors.New("disk full")
}

func TestPublisher_SyncReturnsStoreError(t *testing.T) {
	pub := NewPublisher(failingStore{})
	defer pub.Close()

	err := pub.Emit(context.Background(), audit.Event{Action: audit.ActionRegistrationSucceeded})
	assert.EqualError(t, err, "disk full")
}

func TestPublisher_BufferFullDropsWithoutBlocking(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store, WithAsyncBuffer(1))

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = pub.Emit(context.Background(), audit.Event{Action: audit.ActionRegistrationFailed})
		}()
	}
	wg.Wait()
	pub.Close()

	events, err := store.ListAll(context.Background())
	require.NoError(t, err)
	assert.LessOrEqual(t, len(events), 20)
	assert.NotEmpty(t, events)
}

func TestActionCategory(t *testing.T) {
	assert.Equal(t, audit.CategoryCompliance, audit.ActionRegistrationSucceeded.Category())
	assert.Equal(t, audit.CategorySecurity, audit.ActionRegistrationFailed.Category())
	assert.Equal(t, audit.CategoryOperations, audit.ActionRegistrationRejected.Category())
	assert.Equal(t, audit.CategoryOperations, audit.Action("unknown").Category())
}
