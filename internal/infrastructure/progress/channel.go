package progress

import (
	"context"

	domain "github.com/mohammadpnp/household-import/internal/domain/household"
)

// Broadcaster pushes an event to the live subscribers of one user.
type Broadcaster interface {
	Broadcast(userID, event string, p domain.ImportProgress)
}

// Channel stores the latest snapshot per user and fans each event out to the
// user's subscribers. broadcaster may be nil when delivery happens elsewhere.
type Channel struct {
	store       domain.ProgressStore
	broadcaster Broadcaster
}

func NewChannel(store domain.ProgressStore, broadcaster Broadcaster) *Channel {
	return &Channel{store: store, broadcaster: broadcaster}
}

func (c *Channel) Publish(ctx context.Context, userID, event string, p domain.ImportProgress) error {
	if err := c.store.Put(ctx, userID, p); err != nil {
		return err
	}
	if c.broadcaster != nil {
		c.broadcaster.Broadcast(userID, event, p)
	}
	return nil
}

func (c *Channel) Current(ctx context.Context, userID string) (*domain.ImportProgress, error) {
	return c.store.Get(ctx, userID)
}

func (c *Channel) Clear(ctx context.Context, userID string) error {
	return c.store.Delete(ctx, userID)
}
