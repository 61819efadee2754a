package core

import (
	"context"
	"sync"
)

// DefaultOutboundBuffer is the number of deliveries a client may have pending.
const DefaultOutboundBuffer = 64

// delivery is a slot in a client's outbound queue. Its event may still be
// under translation; ready is closed once event is final.
type delivery struct {
	ready chan struct{}
	event *Event
}

func newDelivery() *delivery {
	return &delivery{ready: make(chan struct{})}
}

func readyDelivery(ev *Event) *delivery {
	d := newDelivery()
	d.resolve(ev)
	return d
}

func (d *delivery) resolve(ev *Event) {
	d.event = ev
	close(d.ready)
}

// Client is one live connection as seen by the relay. Events come out of Next
// in the order they were enqueued, regardless of when translation finished.
type Client struct {
	ID string

	queue     chan *delivery
	head      *delivery // owned by the Next caller
	done      chan struct{}
	closeOnce sync.Once
}

// NewClient constructs a client with a bounded outbound queue.
func NewClient(id string, buffer int) *Client {
	if buffer <= 0 {
		buffer = DefaultOutboundBuffer
	}
	return &Client{
		ID:    id,
		queue: make(chan *delivery, buffer),
		done:  make(chan struct{}),
	}
}

// enqueue reserves the next outbound slot. It never blocks: a full queue or a
// closed client rejects the delivery, and the relay then evicts the client.
func (c *Client) enqueue(d *delivery) bool {
	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.queue <- d:
		return true
	default:
		return false
	}
}

// Next blocks until the next event is ready, ctx is done, or the client is closed.
// It must be called from a single goroutine. A slot interrupted by ctx is kept
// for the following call.
func (c *Client) Next(ctx context.Context) (*Event, error) {
	if c.head == nil {
		select {
		case d := <-c.queue:
			c.head = d
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-c.done:
			return nil, ErrClientClosed
		}
	}

	select {
	case <-c.head.ready:
		ev := c.head.event
		c.head = nil
		return ev, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-c.done:
		return nil, ErrClientClosed
	}
}

// Close stops delivery. It is safe to call more than once.
func (c *Client) Close() {
	c.closeOnce.Do(func() { close(c.done) })
}

// Done is closed when the client is closed.
func (c *Client) Done() <-chan struct{} {
	return c.done
}
