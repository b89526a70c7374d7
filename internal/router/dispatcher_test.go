package router_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"

	"samplebot/internal/router"
	"samplebot/internal/services"
	"samplebot/internal/testsupport"
)

func TestDispatcherSlowHandlerDoesNotBlockOthers(t *testing.T) {
	defer goleak.VerifyNone(t)

	release := make(chan struct{})
	slowStarted := make(chan struct{})
	reg := router.NewRegistry()
	reg.MustRegister("samples.add", router.HandlerFunc(func(context.Context, *router.Invocation) (router.Response, error) {
		close(slowStarted)
		<-release
		return router.Reply("done"), nil
	}))
	reg.MustRegister("challenge.submit", router.HandlerFunc(func(context.Context, *router.Invocation) (router.Response, error) {
		return router.React(router.ReactAccepted), nil
	}))
	d := router.NewDispatcher(router.New(reg, nil, nil, router.Options{}), 4)

	ctx := context.Background()
	slow := testsupport.NewMessage("A", "samples add url")
	if err := d.Dispatch(ctx, slow); err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	<-slowStarted

	fast := testsupport.NewMessage("B", "challenge submit track")
	if err := d.Dispatch(ctx, fast); err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	deadline := time.After(5 * time.Second)
	for len(fast.Reactions()) == 0 {
		select {
		case <-deadline:
			t.Fatal("fast command blocked behind slow command")
		case <-time.After(5 * time.Millisecond):
		}
	}
	if len(slow.Replies()) != 0 {
		t.Fatal("slow command finished early")
	}

	close(release)
	d.Wait()
	if slow.LastReply() != "done" {
		t.Fatalf("expected slow reply after release, got %v", slow.Replies())
	}
}

func TestDispatcherBoundsConcurrency(t *testing.T) {
	defer goleak.VerifyNone(t)

	var (
		inFlight atomic.Int32
		peak     atomic.Int32
		mu       sync.Mutex
		ids      = map[string]struct{}{}
	)
	reg := router.NewRegistry()
	reg.MustRegister("work", router.HandlerFunc(func(ctx context.Context, _ *router.Invocation) (router.Response, error) {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		inFlight.Add(-1)
		id, _ := services.RequestIDFromContext(ctx)
		mu.Lock()
		ids[id] = struct{}{}
		mu.Unlock()
		return router.Response{}, nil
	}))
	d := router.NewDispatcher(router.New(reg, nil, nil, router.Options{}), 2)

	const messages = 10
	for i := 0; i < messages; i++ {
		if err := d.Dispatch(context.Background(), testsupport.NewMessage("A", "work")); err != nil {
			t.Fatalf("Dispatch failed: %v", err)
		}
	}
	d.Wait()

	if got := peak.Load(); got > 2 {
		t.Fatalf("expected at most 2 concurrent handlers, saw %d", got)
	}
	if len(ids) != messages {
		t.Fatalf("expected a distinct correlation id per message, got %d", len(ids))
	}
}

func TestDispatcherStopsAcceptingWhenContextEnds(t *testing.T) {
	defer goleak.VerifyNone(t)

	release := make(chan struct{})
	reg := router.NewRegistry()
	reg.MustRegister("block", router.HandlerFunc(func(context.Context, *router.Invocation) (router.Response, error) {
		<-release
		return router.Response{}, nil
	}))
	d := router.NewDispatcher(router.New(reg, nil, nil, router.Options{}), 0)

	ctx, cancel := context.WithCancel(context.Background())
	if err := d.Dispatch(ctx, testsupport.NewMessage("A", "block")); err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	cancel()
	if err := d.Dispatch(ctx, testsupport.NewMessage("B", "block")); err == nil {
		t.Fatal("expected Dispatch to fail once the context is cancelled")
	}
	close(release)
	d.Wait()
}
