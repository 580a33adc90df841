package kvdb

import "context"

// Client is the key-value backend contract as used by the change bus: publish/subscribe on named channels.
type Client interface {
	Init() error
	Close() error
	GetConf() *Conf

	// Publish sends message to every current subscriber of channel.
	Publish(ctx context.Context, channel string, message string) error
	// Subscribe delivers messages published on channel until ctx is done.
	// The returned channel is closed when the subscription ends.
	Subscribe(ctx context.Context, channel string) (<-chan string, error)
}
