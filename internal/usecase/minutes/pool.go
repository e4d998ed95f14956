package minutes

import "context"

// Pool bounds the number of CPU/network-bound stage calls running at once so
// one slow request cannot stall dispatch of the others.
type Pool struct {
	sem chan struct{}
}

// NewPool creates a pool with the given number of slots
func NewPool(size int) *Pool {
	if size < 1 {
		size = 1
	}
	return &Pool{sem: make(chan struct{}, size)}
}

// Do runs fn once a slot is available. It returns the context error when the
// caller gives up before a slot frees.
func (p *Pool) Do(ctx context.Context, fn func()) error {
	select {
	case p.sem <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-p.sem }()
	fn()
	return nil
}
