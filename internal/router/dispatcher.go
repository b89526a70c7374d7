package router

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// Dispatcher runs Router.Handle on its own goroutine per message, with at
// most maxConcurrent handlers in flight.
type Dispatcher struct {
	router *Router
	sem    *semaphore.Weighted
	wg     sync.WaitGroup
}

// NewDispatcher bounds r to maxConcurrent concurrent handlers. Values below
// one are treated as one.
func NewDispatcher(r *Router, maxConcurrent int) *Dispatcher {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &Dispatcher{router: r, sem: semaphore.NewWeighted(int64(maxConcurrent))}
}

// Dispatch blocks until a slot is free, then handles msg asynchronously. It
// returns ctx.Err() when ctx ends before a slot frees up. Once started, a
// handler runs to completion even if ctx is cancelled afterwards.
func (d *Dispatcher) Dispatch(ctx context.Context, msg Message) error {
	if err := d.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	d.wg.Add(1)
	handlerCtx := context.WithoutCancel(ctx)
	go func() {
		defer d.wg.Done()
		defer d.sem.Release(1)
		d.router.Handle(handlerCtx, msg)
	}()
	return nil
}

// Wait blocks until every dispatched handler has returned.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
