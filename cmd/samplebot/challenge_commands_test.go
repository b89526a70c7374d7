package main

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"samplebot/internal/testsupport"
)

func TestChallengeStatusWithoutChallenges(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"challenge", "status"}, env.configPath)
	if err != nil {
		t.Fatalf("challenge status: %v", err)
	}
	requireContains(t, out, "Active challenge: none")
	requireContains(t, out, "Challenges: 0")

	out, _, err = runCLI(t, []string{"challenge", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("challenge list: %v", err)
	}
	requireContains(t, out, "No challenges yet")
}

func TestChallengeCommandsReportStoredState(t *testing.T) {
	env := setupCLITestEnv(t)
	ctx := context.Background()

	store := testsupport.MustOpenStore(t, env.cfg)
	first := testsupport.MustStartChallenge(t, store, "alice", "https://share.test/samples/one.wav")
	if err := store.EndChallenge(ctx, first.ID); err != nil {
		t.Fatalf("end challenge: %v", err)
	}
	active := testsupport.MustStartChallenge(t, store, "bob", "https://share.test/samples/two.wav")
	if _, err := store.UpsertSubmission(ctx, active.ID, "carol", "https://tracks.test/carol"); err != nil {
		t.Fatalf("submit: %v", err)
	}
	store.Close()

	out, _, err := runCLI(t, []string{"challenge", "status"}, env.configPath)
	if err != nil {
		t.Fatalf("challenge status: %v", err)
	}
	requireContains(t, out, "by bob")
	requireContains(t, out, "two.wav")
	requireContains(t, out, "Submissions: 1")
	requireContains(t, out, "Challenges: 2")

	out, _, err = runCLI(t, []string{"challenge", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("challenge list: %v", err)
	}
	requireContains(t, out, "alice")
	requireContains(t, out, "bob")
	if strings.Index(out, "bob") > strings.Index(out, "alice") {
		t.Fatalf("expected newest challenge first:\n%s", out)
	}

	out, _, err = runCLI(t, []string{"challenge", "list", "--json", "--limit", "1"}, env.configPath)
	if err != nil {
		t.Fatalf("challenge list --json: %v", err)
	}
	var views []challengeView
	if err := json.Unmarshal([]byte(out), &views); err != nil {
		t.Fatalf("decode json: %v\n%s", err, out)
	}
	if len(views) != 1 || views[0].OwnerID != "bob" || !views[0].Active {
		t.Fatalf("unexpected json views: %+v", views)
	}

	out, _, err = runCLI(t, []string{"challenge", "submissions"}, env.configPath)
	if err != nil {
		t.Fatalf("challenge submissions: %v", err)
	}
	requireContains(t, out, "carol")
	requireContains(t, out, "https://tracks.test/carol")

	out, _, err = runCLI(t, []string{"challenge", "submissions", "#1"}, env.configPath)
	if err != nil {
		t.Fatalf("challenge submissions 1: %v", err)
	}
	requireContains(t, out, "ended")
	requireContains(t, out, "No submissions")
}

func TestChallengeSubmissionsRejectsUnknownIDs(t *testing.T) {
	env := setupCLITestEnv(t)

	if _, _, err := runCLI(t, []string{"challenge", "submissions"}, env.configPath); err == nil {
		t.Fatal("expected error without an active challenge")
	}
	_, _, err := runCLI(t, []string{"challenge", "submissions", "99"}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("expected not found error, got %v", err)
	}
	_, _, err = runCLI(t, []string{"challenge", "submissions", "abc"}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "invalid challenge id") {
		t.Fatalf("expected invalid id error, got %v", err)
	}
}
