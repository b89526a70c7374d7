package lifecycle_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"samplebot/internal/challenge"
	"samplebot/internal/lifecycle"
	"samplebot/internal/logging"
	"samplebot/internal/notifications"
	"samplebot/internal/testsupport"
)

type recordingNotifier struct {
	mu     sync.Mutex
	events []notifications.Event
	err    error
}

func (r *recordingNotifier) Publish(_ context.Context, event notifications.Event, _ notifications.Payload) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return r.err
}

func newService(t *testing.T) (*lifecycle.Service, *challenge.Store, *recordingNotifier) {
	t.Helper()
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	notifier := &recordingNotifier{}
	return lifecycle.New(store, notifier, logging.NewNop()), store, notifier
}

func TestScenarioStartSubmitEnd(t *testing.T) {
	svc, store, notifier := newService(t)
	ctx := context.Background()

	started, err := svc.Start(ctx, "A", "https://db.tt/sample")
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if started.Outcome != lifecycle.OK || started.Challenge == nil || started.Challenge.OwnerID != "A" || !started.Challenge.Active {
		t.Fatalf("unexpected start result %+v", started)
	}

	if res, err := svc.Submit(ctx, "B", "trackY"); err != nil || res.Outcome != lifecycle.OK {
		t.Fatalf("Submit trackY: %+v err=%v", res, err)
	}
	if res, err := svc.Submit(ctx, "B", "trackZ"); err != nil || res.Outcome != lifecycle.OK {
		t.Fatalf("Submit trackZ: %+v err=%v", res, err)
	}
	subs, err := store.ListSubmissions(ctx, started.Challenge.ID)
	if err != nil {
		t.Fatalf("ListSubmissions failed: %v", err)
	}
	if len(subs) != 1 || subs[0].TrackURL != "trackZ" {
		t.Fatalf("expected a single updated row, got %#v", subs)
	}

	denied, err := svc.End(ctx, "C")
	if err != nil {
		t.Fatalf("End by C failed: %v", err)
	}
	if denied.Outcome != lifecycle.NotOwner || denied.Owner != "A" {
		t.Fatalf("expected ownership denial naming A, got %+v", denied)
	}
	if active, _ := store.GetActiveChallenge(ctx); active == nil || active.ID != started.Challenge.ID {
		t.Fatalf("expected challenge to remain active after denied end, got %#v", active)
	}

	ended, err := svc.End(ctx, "A")
	if err != nil {
		t.Fatalf("End by A failed: %v", err)
	}
	if ended.Outcome != lifecycle.OK || ended.Challenge.Active {
		t.Fatalf("unexpected end result %+v", ended)
	}
	if diff := cmp.Diff([]string{"B: trackZ"}, ended.Report(nil)); diff != "" {
		t.Fatalf("unexpected report (-want +got):\n%s", diff)
	}
	if active, _ := store.GetActiveChallenge(ctx); active != nil {
		t.Fatalf("expected idle slot after end, got %#v", active)
	}

	again, err := svc.Start(ctx, "C", "https://db.tt/next")
	if err != nil || again.Outcome != lifecycle.OK {
		t.Fatalf("expected slot to be reusable, got %+v err=%v", again, err)
	}

	want := []notifications.Event{
		notifications.EventChallengeStarted,
		notifications.EventChallengeEnded,
		notifications.EventChallengeStarted,
	}
	if diff := cmp.Diff(want, notifier.events); diff != "" {
		t.Fatalf("unexpected notifications (-want +got):\n%s", diff)
	}
}

func TestStartWhileRunningReportsOwner(t *testing.T) {
	svc, store, _ := newService(t)
	ctx := context.Background()
	first, err := svc.Start(ctx, "A", "https://db.tt/one")
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	res, err := svc.Start(ctx, "B", "https://db.tt/two")
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if res.Outcome != lifecycle.AlreadyActive || res.Owner != "A" {
		t.Fatalf("expected AlreadyActive owned by A, got %+v", res)
	}
	active, err := store.GetActiveChallenge(ctx)
	if err != nil {
		t.Fatalf("GetActiveChallenge failed: %v", err)
	}
	if diff := cmp.Diff(first.Challenge, active); diff != "" {
		t.Fatalf("active challenge changed (-want +got):\n%s", diff)
	}
}

func TestConcurrentStartsYieldOneWinner(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	const workers = 8
	outcomes := make(chan lifecycle.Outcome, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := svc.Start(ctx, "owner", "https://db.tt/sample")
			if err != nil {
				t.Errorf("Start failed: %v", err)
				return
			}
			outcomes <- res.Outcome
		}()
	}
	wg.Wait()
	close(outcomes)

	counts := map[lifecycle.Outcome]int{}
	for outcome := range outcomes {
		counts[outcome]++
	}
	if counts[lifecycle.OK] != 1 || counts[lifecycle.AlreadyActive] != workers-1 {
		t.Fatalf("unexpected outcomes %v", counts)
	}
}

func TestIdleSlotOperations(t *testing.T) {
	svc, store, _ := newService(t)
	ctx := context.Background()

	for name, op := range map[string]func() (lifecycle.Result, error){
		"submit":      func() (lifecycle.Result, error) { return svc.Submit(ctx, "B", "trackY") },
		"end":         func() (lifecycle.Result, error) { return svc.End(ctx, "A") },
		"status":      func() (lifecycle.Result, error) { return svc.Status(ctx) },
		"submissions": func() (lifecycle.Result, error) { return svc.Submissions(ctx) },
	} {
		res, err := op()
		if err != nil {
			t.Fatalf("%s failed: %v", name, err)
		}
		if res.Outcome != lifecycle.NoChallenge {
			t.Fatalf("%s: expected NoChallenge, got %s", name, res.Outcome)
		}
	}
	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats != (challenge.Stats{}) {
		t.Fatalf("expected idle operations not to write, got %+v", stats)
	}
}

func TestInvalidArguments(t *testing.T) {
	svc, store, _ := newService(t)
	ctx := context.Background()

	if res, err := svc.Start(ctx, "A", "  "); err != nil || res.Outcome != lifecycle.Invalid {
		t.Fatalf("expected Invalid for empty sample, got %+v err=%v", res, err)
	}
	if _, err := svc.Start(ctx, "A", "https://db.tt/one"); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if res, err := svc.Submit(ctx, "B", ""); err != nil || res.Outcome != lifecycle.Invalid {
		t.Fatalf("expected Invalid for empty track, got %+v err=%v", res, err)
	}
	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.Submissions != 0 {
		t.Fatalf("expected no submissions, got %+v", stats)
	}
}

func TestStatusAndSubmissions(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()
	if _, err := svc.Start(ctx, "A", "https://db.tt/one"); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	status, err := svc.Status(ctx)
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	if status.Outcome != lifecycle.OK || status.Owner != "A" || status.Challenge.SampleURL != "https://db.tt/one" {
		t.Fatalf("unexpected status %+v", status)
	}

	empty, err := svc.Submissions(ctx)
	if err != nil {
		t.Fatalf("Submissions failed: %v", err)
	}
	if empty.Outcome != lifecycle.OK || len(empty.Submissions) != 0 {
		t.Fatalf("expected no submissions yet, got %+v", empty)
	}

	for _, entry := range []struct{ owner, track string }{{"C", "c1"}, {"B", "b1"}, {"C", "c2"}} {
		if _, err := svc.Submit(ctx, entry.owner, entry.track); err != nil {
			t.Fatalf("Submit failed: %v", err)
		}
	}
	listed, err := svc.Submissions(ctx)
	if err != nil {
		t.Fatalf("Submissions failed: %v", err)
	}
	mention := func(id string) string { return "<@" + id + ">" }
	if diff := cmp.Diff([]string{"<@C>: c2", "<@B>: b1"}, listed.Report(mention)); diff != "" {
		t.Fatalf("unexpected report (-want +got):\n%s", diff)
	}
}

func TestNotificationFailureDoesNotAlterOutcome(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	notifier := &recordingNotifier{err: errors.New("ntfy down")}
	svc := lifecycle.New(store, notifier, logging.NewNop())

	res, err := svc.Start(context.Background(), "A", "https://db.tt/one")
	if err != nil || res.Outcome != lifecycle.OK {
		t.Fatalf("expected start to succeed despite notifier failure, got %+v err=%v", res, err)
	}
}

type failingStore struct {
	lifecycle.Store
	err error
}

func (f failingStore) GetActiveChallenge(context.Context) (*challenge.Challenge, error) {
	return nil, f.err
}

func (f failingStore) CreateChallenge(context.Context, string, string) (challenge.CreateResult, error) {
	return challenge.CreateResult{}, f.err
}

func TestStorageFailuresPropagate(t *testing.T) {
	cause := errors.New("disk gone")
	svc := lifecycle.New(failingStore{err: cause}, nil, nil)
	ctx := context.Background()

	if _, err := svc.Start(ctx, "A", "https://db.tt/one"); !errors.Is(err, cause) {
		t.Fatalf("Start: expected storage error, got %v", err)
	}
	for name, op := range map[string]func() (lifecycle.Result, error){
		"submit":      func() (lifecycle.Result, error) { return svc.Submit(ctx, "B", "trackY") },
		"end":         func() (lifecycle.Result, error) { return svc.End(ctx, "A") },
		"status":      func() (lifecycle.Result, error) { return svc.Status(ctx) },
		"submissions": func() (lifecycle.Result, error) { return svc.Submissions(ctx) },
	} {
		if _, err := op(); !errors.Is(err, cause) {
			t.Fatalf("%s: expected storage error, got %v", name, err)
		}
	}
}

func TestOutcomeString(t *testing.T) {
	if lifecycle.NotOwner.String() != "not_owner" || lifecycle.Outcome(42).String() != "outcome(42)" {
		t.Fatal("unexpected outcome strings")
	}
}
