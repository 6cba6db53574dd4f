package repository

import (
	"context"
	"sync"
)

// flight is one in-progress fetch shared by every caller asking for the
// same key. The first caller runs the work and closes done; followers
// block on done and read the shared result.
type flight struct {
	done chan struct{}
	val  any
	err  error
}

// flightGroup coalesces identical concurrent requests. Entries live only
// while the work runs; the result is not cached beyond completion.
type flightGroup struct {
	mu      sync.Mutex
	flights map[string]*flight
}

func (g *flightGroup) do(ctx context.Context, key string, fn func() (any, error)) (any, error) {
	g.mu.Lock()
	if g.flights == nil {
		g.flights = make(map[string]*flight)
	}
	if f, ok := g.flights[key]; ok {
		g.mu.Unlock()
		select {
		case <-f.done:
			return f.val, f.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f := &flight{done: make(chan struct{})}
	g.flights[key] = f
	g.mu.Unlock()

	f.val, f.err = fn()

	g.mu.Lock()
	delete(g.flights, key)
	g.mu.Unlock()
	close(f.done)

	return f.val, f.err
}

// inFlight is the typed front of flightGroup.do.
func inFlight[T any](ctx context.Context, g *flightGroup, key string, fn func() (T, error)) (T, error) {
	v, err := g.do(ctx, key, func() (any, error) { return fn() })
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}
