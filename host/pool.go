package host

import (
	"context"
	"fmt"
	"time"
)

// Pool is a FIFO pool of Clients sharing one search throttle, so concurrent
// fetch workers never exceed the host's search rate limit between them.
// Grounded on the teacher's worker.Pool acquisition discipline, adapted from
// a job queue to a resource pool.
type Pool struct {
	clients chan *Client
}

// NewPool builds a pool of size clients, all pointed at the same host and
// sharing one searchThrottle.
func NewPool(cfg Config, size int) *Pool {
	if size <= 0 {
		size = 1
	}
	throttle := newSearchThrottle()
	p := &Pool{clients: make(chan *Client, size)}
	for i := 0; i < size; i++ {
		c := NewClient(cfg)
		p.clients <- withThrottle(c, throttle)
	}
	return p
}

// Acquire waits up to timeout for a free client, returning an error if none
// becomes available in time.
func (p *Pool) Acquire(ctx context.Context, timeout time.Duration) (*Client, error) {
	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case c := <-p.clients:
		return c, nil
	case <-t.C:
		return nil, fmt.Errorf("host client pool: timed out after %s waiting for a free client", timeout)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Release returns a client to the pool.
func (p *Pool) Release(c *Client) {
	p.clients <- c
}
