package progress

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	domain "github.com/mohammadpnp/household-import/internal/domain/household"
)

// DefaultNotifyChannel is the Postgres channel progress events travel on.
const DefaultNotifyChannel = "household_import_progress"

// notification stays small: Postgres caps NOTIFY payloads at 8000 bytes, so
// listeners read the snapshot itself from the shared store.
type notification struct {
	UserID string `json:"user_id"`
	Event  string `json:"event"`
}

// PgNotifier decorates a progress channel and announces every published event
// with pg_notify so other API instances can reach their own subscribers.
type PgNotifier struct {
	next    domain.ProgressChannel
	pool    *pgxpool.Pool
	channel string
}

func NewPgNotifier(next domain.ProgressChannel, pool *pgxpool.Pool, channel string) *PgNotifier {
	if channel == "" {
		channel = DefaultNotifyChannel
	}
	return &PgNotifier{next: next, pool: pool, channel: channel}
}

func (n *PgNotifier) Publish(ctx context.Context, userID, event string, p domain.ImportProgress) error {
	if err := n.next.Publish(ctx, userID, event, p); err != nil {
		return err
	}

	payload, err := json.Marshal(notification{UserID: userID, Event: event})
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}
	if _, err := n.pool.Exec(ctx, "SELECT pg_notify($1, $2)", n.channel, string(payload)); err != nil {
		return fmt.Errorf("pg_notify: %w", err)
	}
	return nil
}

func (n *PgNotifier) Current(ctx context.Context, userID string) (*domain.ImportProgress, error) {
	return n.next.Current(ctx, userID)
}

func (n *PgNotifier) Clear(ctx context.Context, userID string) error {
	return n.next.Clear(ctx, userID)
}

// PgListener receives notifications from every instance and hands the current
// snapshot to the local broadcaster.
type PgListener struct {
	pool        *pgxpool.Pool
	channel     string
	store       domain.ProgressStore
	broadcaster Broadcaster
	logger      *logrus.Logger
}

func NewPgListener(pool *pgxpool.Pool, channel string, store domain.ProgressStore, broadcaster Broadcaster, logger *logrus.Logger) *PgListener {
	if channel == "" {
		channel = DefaultNotifyChannel
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &PgListener{
		pool:        pool,
		channel:     channel,
		store:       store,
		broadcaster: broadcaster,
		logger:      logger,
	}
}

// Run holds one pooled connection in LISTEN mode until ctx ends.
func (l *PgListener) Run(ctx context.Context) error {
	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire listen connection: %w", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{l.channel}.Sanitize()); err != nil {
		return fmt.Errorf("listen %s: %w", l.channel, err)
	}
	l.logger.WithField("channel", l.channel).Info("listening for import progress notifications")

	for {
		msg, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("wait for notification: %w", err)
		}
		l.handle(ctx, msg.Payload)
	}
}

func (l *PgListener) handle(ctx context.Context, payload string) {
	var n notification
	if err := json.Unmarshal([]byte(payload), &n); err != nil {
		l.logger.WithError(err).Warn("discarding malformed progress notification")
		return
	}

	p, err := l.store.Get(ctx, n.UserID)
	if err != nil {
		l.logger.WithError(err).WithField("user_id", n.UserID).Warn("load progress for notification failed")
		return
	}
	l.broadcaster.Broadcast(n.UserID, n.Event, *p)
}
