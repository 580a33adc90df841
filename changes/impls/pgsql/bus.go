// Package pgsql publishes change events through PostgreSQL NOTIFY and observes them with LISTEN.
package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/zeptools/gw-dataops/changes"
	"github.com/zeptools/gw-dataops/db/sqldb"
)

const DefaultChannel = "dataops_changes"

type Bus struct {
	handle  sqldb.Handle
	channel string
}

// Ensure Bus implements changes.Bus
var _ changes.Bus = (*Bus)(nil)

// NewBus returns a Bus on the given notification channel, or DefaultChannel if empty.
func NewBus(handle sqldb.Handle, channel string) (*Bus, error) {
	if handle == nil {
		return nil, errors.New("pgsql bus: nil handle")
	}
	if channel == "" {
		channel = DefaultChannel
	}
	return &Bus{handle: handle, channel: channel}, nil
}

func (b *Bus) Channel() string { return b.channel }

func (b *Bus) Notify(ctx context.Context, c changes.Changes) error {
	payload, err := changes.Encode(c)
	if err != nil {
		return err
	}
	if _, err = b.handle.Exec(ctx, "SELECT pg_notify($1, $2)", b.channel, payload); err != nil {
		return fmt.Errorf("pg_notify on %s: %w", b.channel, err)
	}
	return nil
}

func (b *Bus) Observe(ctx context.Context, f changes.Filter) (<-chan changes.Changes, error) {
	notifications, err := b.handle.Listen(ctx, b.channel)
	if err != nil {
		return nil, err
	}
	return changes.Relay(ctx, notifications, func(n sqldb.Notification) string { return n.Payload }, f), nil
}
