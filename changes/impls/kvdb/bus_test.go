package kvdb

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeptools/gw-dataops/changes"
	"github.com/zeptools/gw-dataops/db/kvdb"
)

// memClient is a kvdb.Client fanning published messages out to subscribers in memory.
type memClient struct {
	mu   sync.Mutex
	subs map[string][]chan string
}

var _ kvdb.Client = (*memClient)(nil)

func newMemClient() *memClient { return &memClient{subs: make(map[string][]chan string)} }

func (c *memClient) Init() error { return nil }
func (c *memClient) Close() error { return nil }
func (c *memClient) GetConf() *kvdb.Conf { return &kvdb.Conf{Type: "mem"} }

func (c *memClient) Publish(_ context.Context, channel string, message string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, ch := range c.subs[channel] {
		ch <- message
	}
	return nil
}

func (c *memClient) Subscribe(_ context.Context, channel string) (<-chan string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ch := make(chan string, 8)
	c.subs[channel] = append(c.subs[channel], ch)
	return ch, nil
}

func TestPublishSubscribeRoundTrip(t *testing.T) {
	client := newMemClient()
	bus, err := NewBus(client, "")
	require.NoError(t, err)
	assert.Equal(t, DefaultChannel, bus.Channel())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	out, err := bus.Observe(ctx, changes.Filter{Tables: []string{"users"}})
	require.NoError(t, err)

	require.NoError(t, bus.Notify(ctx, changes.ForTables("orders")))
	require.NoError(t, bus.Notify(ctx, changes.ForTables("users", "orders")))

	select {
	case c := <-out:
		assert.Equal(t, []string{"orders", "users"}, c.Tables())
	case <-time.After(time.Second):
		t.Fatal("no change event")
	}
}

func TestNewBusRejectsNilClient(t *testing.T) {
	_, err := NewBus(nil, "")
	assert.Error(t, err)
}
