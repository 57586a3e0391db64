package concurrency

import (
	"context"
)

// DefaultMax default max
const DefaultMax = 256

// GoLimit bounds the number of goroutines holding a slot
type GoLimit struct {
	ch chan struct{}
}

// NewGoLimit new go limit, max <= 0 means DefaultMax
func NewGoLimit(max int) *GoLimit {
	if max <= 0 {
		max = DefaultMax
	}

	return &GoLimit{
		ch: make(chan struct{}, max),
	}
}

// Acquire wait for a free slot or ctx done
func (g *GoLimit) Acquire(ctx context.Context) error {
	select {
	case g.ch <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release free a slot taken by Acquire
func (g *GoLimit) Release() {
	<-g.ch
}

// Running goroutines currently holding a slot
func (g *GoLimit) Running() int {
	return len(g.ch)
}
