package commands_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"samplebot/internal/challenge"
	"samplebot/internal/commands"
	"samplebot/internal/lifecycle"
	"samplebot/internal/router"
	"samplebot/internal/sample"
	"samplebot/internal/testsupport"
)

type harness struct {
	t      *testing.T
	router *router.Router
	store  *challenge.Store
	audio  *testsupport.FakeAudioSource
	bucket *testsupport.FakeObjectStore
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	audio := &testsupport.FakeAudioSource{Audio: sample.Audio{Title: "Loop", Data: []byte("RIFF")}}
	bucket := testsupport.NewObjectStore()

	reg := router.NewRegistry()
	err := commands.Register(reg, commands.Deps{
		Lifecycle: lifecycle.New(store, nil, nil),
		Samples:   sample.NewService(cfg, audio, bucket, nil),
		Prefix:    cfg.Discord.Prefix,
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	r := router.New(reg, router.NewPrefixAddressing(cfg.Discord.Prefix, nil), nil, router.Options{})
	return &harness{t: t, router: r, store: store, audio: audio, bucket: bucket}
}

func (h *harness) send(author, text string) *testsupport.FakeMessage {
	h.t.Helper()
	msg := testsupport.NewMessage(author, text)
	if !h.router.Handle(context.Background(), msg) {
		h.t.Fatalf("message %q was not handled", text)
	}
	return msg
}

func (h *harness) active() *challenge.Challenge {
	h.t.Helper()
	active, err := h.store.GetActiveChallenge(context.Background())
	if err != nil {
		h.t.Fatalf("GetActiveChallenge: %v", err)
	}
	return active
}

func expectReplies(t *testing.T, msg *testsupport.FakeMessage, want ...string) {
	t.Helper()
	if want == nil {
		want = []string{}
	}
	got := msg.Replies()
	if got == nil {
		got = []string{}
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected replies (-want +got):\n%s", diff)
	}
}

func expectReactions(t *testing.T, msg *testsupport.FakeMessage, want ...string) {
	t.Helper()
	if want == nil {
		want = []string{}
	}
	got := msg.Reactions()
	if got == nil {
		got = []string{}
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected reactions (-want +got):\n%s", diff)
	}
}

func TestChallengeScenario(t *testing.T) {
	h := newHarness(t)
	const link = "https://share.test/samples/Loop.wav"

	start := h.send("A", "sb!challenge start https://youtube.com/watch?v=X")
	expectReactions(t, start, router.ReactAccepted)
	expectReplies(t, start, "challenge started! sample: "+link)
	first := h.active()
	if first == nil || first.OwnerID != "A" || first.SampleURL != link {
		t.Fatalf("unexpected active challenge %+v", first)
	}

	expectReactions(t, h.send("B", "sb!challenge submit trackY"), router.ReactAccepted)
	expectReactions(t, h.send("B", "sb!challenge submit trackZ"), router.ReactAccepted)
	subs, err := h.store.ListSubmissions(context.Background(), first.ID)
	if err != nil {
		t.Fatalf("ListSubmissions: %v", err)
	}
	if len(subs) != 1 || subs[0].OwnerID != "B" || subs[0].TrackURL != "trackZ" {
		t.Fatalf("expected one submission for B with trackZ, got %+v", subs)
	}

	expectReplies(t, h.send("C", "sb!challenge end"), "only <@A> can end the challenge")
	if still := h.active(); still == nil || still.ID != first.ID {
		t.Fatalf("expected challenge to remain active, got %+v", still)
	}

	expectReplies(t, h.send("A", "sb!challenge end"), "challenge ended. submissions:\n<@B>: trackZ")
	if h.active() != nil {
		t.Fatal("expected slot to be idle after end")
	}

	again := h.send("C", "sb!challenge start https://youtu.be/Y")
	expectReplies(t, again, "challenge started! sample: https://share.test/samples/Loop (1).wav")
	if next := h.active(); next == nil || next.OwnerID != "C" || next.ID == first.ID {
		t.Fatalf("expected a new challenge owned by C, got %+v", next)
	}
}

func TestChallengeStatusAndSubmissions(t *testing.T) {
	h := newHarness(t)

	expectReplies(t, h.send("A", "sb!challenge"), "no current challenge. start one with `challenge.start <sample>`")
	expectReplies(t, h.send("A", "sb!challenge submissions"), "no current challenge. start one with `challenge.start <sample>`")
	expectReplies(t, h.send("A", "sb!challenge submit x"), "no current challenge. start one with `challenge.start <sample>`")
	expectReplies(t, h.send("A", "sb!challenge end"), "no current challenge")

	testsupport.MustStartChallenge(t, h.store, "A", "https://share.test/s")
	expectReplies(t, h.send("B", "sb!challenge"), "<@A> is running a challenge. sample: https://share.test/s")
	expectReplies(t, h.send("B", "sb!challenge.submissions"), "no submissions yet")

	h.send("B", "sb!challenge submit https://t/b")
	h.send("C", "sb!challenge submit https://t/c")
	expectReplies(t, h.send("A", "sb!challenge submissions"), "<@B>: https://t/b\n<@C>: https://t/c")
}

func TestChallengeEndWithoutSubmissions(t *testing.T) {
	h := newHarness(t)
	testsupport.MustStartChallenge(t, h.store, "A", "https://share.test/s")
	expectReplies(t, h.send("A", "sb!challenge end"), "challenge ended. no submissions yet")
}

func TestChallengeStartRejections(t *testing.T) {
	h := newHarness(t)

	noArgs := h.send("A", "sb!challenge start")
	expectReactions(t, noArgs, router.ReactConfused)
	expectReplies(t, noArgs)

	badFormat := h.send("A", "sb!challenge start https://youtu.be/X --format ogg")
	expectReplies(t, badFormat, "invalid format, sorry")
	expectReactions(t, badFormat, router.ReactConfused)

	badHost := h.send("A", "sb!challenge start https://vimeo.com/1")
	expectReactions(t, badHost, router.ReactConfused)
	expectReplies(t, badHost)
	if len(h.audio.Requests()) != 0 || h.active() != nil {
		t.Fatal("expected rejected starts to leave no side effects")
	}

	h.audio.Err = errors.New("yt-dlp exploded")
	failed := h.send("A", "sb!challenge start https://youtu.be/X")
	expectReactions(t, failed, router.ReactAccepted, router.ReactConfused)
	if h.active() != nil {
		t.Fatal("expected no challenge after acquisition failure")
	}

	h.audio.Err = nil
	testsupport.MustStartChallenge(t, h.store, "B", "https://share.test/b")
	busy := h.send("A", "sb!challenge start https://youtu.be/X")
	expectReplies(t, busy, "<@B> is already running a challenge. find out more with `challenge`")
	expectReactions(t, busy)
}

func TestChallengeSubmitRequiresTrack(t *testing.T) {
	h := newHarness(t)
	testsupport.MustStartChallenge(t, h.store, "A", "https://share.test/s")
	msg := h.send("B", "sb!challenge submit")
	expectReactions(t, msg, router.ReactConfused)
	expectReplies(t, msg)
}

func TestSamplesCommands(t *testing.T) {
	h := newHarness(t)

	added := h.send("A", "sb!samples add https://music.youtube.com/watch?v=1 --format=mp3")
	expectReactions(t, added, router.ReactAccepted)
	expectReplies(t, added, "done. https://share.test/samples/Loop.mp3")
	if diff := cmp.Diff([]string{"https://music.youtube.com/watch?v=1 mp3"}, h.audio.Requests()); diff != "" {
		t.Fatalf("unexpected fetches (-want +got):\n%s", diff)
	}

	expectReactions(t, h.send("A", "sb!samples add"), router.ReactConfused)
	badFormat := h.send("A", "sb!samples.add https://youtu.be/X --format flac")
	expectReplies(t, badFormat, "invalid format, sorry")

	random := h.send("A", "sb!samples random")
	expectReactions(t, random, router.ReactAccepted)
	expectReplies(t, random, "done. https://share.test/samples/Loop.mp3")

	expectReplies(t, h.send("A", "sb!samples"), "https://share.test/samples")
	expectReplies(t, h.send("A", "sb!challenges"), "https://share.test/challenges")
}

func TestSamplesRandomEmptyFolder(t *testing.T) {
	h := newHarness(t)
	msg := h.send("A", "sb!samples random")
	expectReactions(t, msg, router.ReactAccepted, router.ReactConfused)
	expectReplies(t, msg)
}

func TestFolderLinkFailureUsesGenericReply(t *testing.T) {
	h := newHarness(t)
	h.bucket.LinkErr = errors.New("too_many_requests")
	expectReplies(t, h.send("A", "sb!samples"), router.FailureReply)
}

func TestHelpListsCommands(t *testing.T) {
	h := newHarness(t)
	reply := h.send("A", "sb!help").LastReply()
	if !strings.HasPrefix(reply, "available commands: ") {
		t.Fatalf("unexpected help reply %q", reply)
	}
	for _, name := range []string{
		commands.Help, commands.Challenge, commands.ChallengeStart, commands.ChallengeSubmit,
		commands.ChallengeSubmissions, commands.ChallengeEnd, commands.Challenges,
		commands.Samples, commands.SamplesAdd, commands.SamplesRandom,
	} {
		if !strings.Contains(reply, "`sb!"+name+"`") {
			t.Fatalf("help reply missing %s: %q", name, reply)
		}
	}
}

func TestStorageFailureUsesGenericReply(t *testing.T) {
	h := newHarness(t)
	if err := h.store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	expectReplies(t, h.send("A", "sb!challenge"), router.FailureReply)
}

func TestRegisterRequiresServices(t *testing.T) {
	if err := commands.Register(router.NewRegistry(), commands.Deps{}); err == nil {
		t.Fatal("expected Register to reject missing services")
	}
}
