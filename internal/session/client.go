package session

import (
	"sync"

	"github.com/DoyleJ11/battleship-backend/internal/engine"
)

// Client is the handle a session holds for one live connection. Events are
// queued on a bounded FIFO outbox; the transport drains it. The outbox is
// never closed, Dropped reports when the session gave up on the client.
type Client struct {
	ID string

	out     chan engine.Event
	dropped chan struct{}
	once    sync.Once
}

func NewClient(id string, outboxSize int) *Client {
	if outboxSize < 1 {
		outboxSize = 1
	}
	return &Client{
		ID:      id,
		out:     make(chan engine.Event, outboxSize),
		dropped: make(chan struct{}),
	}
}

func (c *Client) Outbox() <-chan engine.Event { return c.out }

func (c *Client) Dropped() <-chan struct{} { return c.dropped }

// Deliver queues ev without blocking. It reports false when the outbox is
// full or the client was already dropped.
func (c *Client) Deliver(ev engine.Event) bool {
	select {
	case <-c.dropped:
		return false
	default:
	}
	select {
	case c.out <- ev:
		return true
	default:
		return false
	}
}

func (c *Client) Drop() {
	c.once.Do(func() { close(c.dropped) })
}
