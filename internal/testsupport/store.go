package testsupport

import (
	"context"
	"testing"

	"samplebot/internal/challenge"
	"samplebot/internal/config"
)

// MustOpenStore opens a challenge.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *challenge.Store {
	t.Helper()

	store, err := challenge.Open(cfg)
	if err != nil {
		t.Fatalf("challenge.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// MustStartChallenge creates an active challenge owned by ownerID.
func MustStartChallenge(t testing.TB, store *challenge.Store, ownerID, sampleURL string) *challenge.Challenge {
	t.Helper()

	res, err := store.CreateChallenge(context.Background(), ownerID, sampleURL)
	if err != nil {
		t.Fatalf("store.CreateChallenge: %v", err)
	}
	if res.Rejected {
		t.Fatalf("store.CreateChallenge rejected: active challenge %+v", res.Active)
	}
	return res.Challenge
}
