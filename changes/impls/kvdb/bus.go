// Package kvdb carries change events over a key-value backend's publish/subscribe channels.
package kvdb

import (
	"context"
	"errors"
	"fmt"

	"github.com/zeptools/gw-dataops/changes"
	"github.com/zeptools/gw-dataops/db/kvdb"
)

const DefaultChannel = "dataops:changes"

type Bus struct {
	client  kvdb.Client
	channel string
}

// Ensure Bus implements changes.Bus
var _ changes.Bus = (*Bus)(nil)

func NewBus(client kvdb.Client, channel string) (*Bus, error) {
	if client == nil {
		return nil, errors.New("kvdb bus: nil client")
	}
	if channel == "" {
		channel = DefaultChannel
	}
	return &Bus{client: client, channel: channel}, nil
}

func (b *Bus) Channel() string { return b.channel }

func (b *Bus) Notify(ctx context.Context, c changes.Changes) error {
	payload, err := changes.Encode(c)
	if err != nil {
		return err
	}
	if err = b.client.Publish(ctx, b.channel, payload); err != nil {
		return fmt.Errorf("publish on %s: %w", b.channel, err)
	}
	return nil
}

func (b *Bus) Observe(ctx context.Context, f changes.Filter) (<-chan changes.Changes, error) {
	messages, err := b.client.Subscribe(ctx, b.channel)
	if err != nil {
		return nil, err
	}
	return changes.Relay(ctx, messages, func(m string) string { return m }, f), nil
}
