package progress_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/mohammadpnp/household-import/internal/domain/household"
	"github.com/mohammadpnp/household-import/internal/infrastructure/progress"
)

type broadcast struct {
	userID string
	event  string
	runID  string
}

type fakeBroadcaster struct {
	mu    sync.Mutex
	calls []broadcast
}

func (f *fakeBroadcaster) Broadcast(userID, event string, p domain.ImportProgress) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, broadcast{userID: userID, event: event, runID: p.RunID})
}

type failingStore struct {
	progress.MemoryStore
}

func (*failingStore) Put(context.Context, string, domain.ImportProgress) error {
	return errors.New("store down")
}

func TestChannelPublishStoresThenBroadcasts(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	b := &fakeBroadcaster{}
	ch := progress.NewChannel(progress.NewMemoryStore(), b)

	require.NoError(t, ch.Publish(ctx, "u1", domain.EventImportProgress, domain.ImportProgress{RunID: "r1"}))
	require.NoError(t, ch.Publish(ctx, "u1", domain.EventImportComplete, domain.ImportProgress{RunID: "r1", Status: domain.ProgressCompleted}))

	current, err := ch.Current(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, domain.ProgressCompleted, current.Status)

	require.Len(t, b.calls, 2)
	assert.Equal(t, broadcast{userID: "u1", event: domain.EventImportProgress, runID: "r1"}, b.calls[0])
	assert.Equal(t, domain.EventImportComplete, b.calls[1].event)

	require.NoError(t, ch.Clear(ctx, "u1"))
	_, err = ch.Current(ctx, "u1")
	require.ErrorIs(t, err, domain.ErrProgressNotFound)
}

func TestChannelSkipsBroadcastWhenStoreFails(t *testing.T) {
	t.Parallel()

	b := &fakeBroadcaster{}
	ch := progress.NewChannel(&failingStore{}, b)

	err := ch.Publish(context.Background(), "u1", domain.EventImportProgress, domain.ImportProgress{})
	require.Error(t, err)
	assert.Empty(t, b.calls)
}

func TestChannelWithoutBroadcaster(t *testing.T) {
	t.Parallel()

	ch := progress.NewChannel(progress.NewMemoryStore(), nil)
	require.NoError(t, ch.Publish(context.Background(), "u1", domain.EventImportProgress, domain.ImportProgress{RunID: "r1"}))
}
