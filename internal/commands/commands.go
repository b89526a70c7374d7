package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"samplebot/internal/discord"
	"samplebot/internal/lifecycle"
	"samplebot/internal/logging"
	"samplebot/internal/router"
	"samplebot/internal/sample"
)

// Command paths.
const (
	Help                 = "help"
	Challenge            = "challenge"
	ChallengeStart       = "challenge.start"
	ChallengeSubmit      = "challenge.submit"
	ChallengeSubmissions = "challenge.submissions"
	ChallengeEnd         = "challenge.end"
	Challenges           = "challenges"
	Samples              = "samples"
	SamplesAdd           = "samples.add"
	SamplesRandom        = "samples.random"
)

// Reply texts.
const (
	noChallengeReply   = "no current challenge. start one with `challenge.start <sample>`"
	noChallengeEnd     = "no current challenge"
	noSubmissionsReply = "no submissions yet"
	invalidFormatReply = "invalid format, sorry"
)

// Deps are the collaborators command handlers use.
type Deps struct {
	Lifecycle *lifecycle.Service
	Samples   *sample.Service
	// Prefix is shown in help output.
	Prefix string
	// Mention renders a user id for replies. Defaults to discord.Mention.
	Mention func(string) string
	Logger  *slog.Logger
}

type handlers struct {
	deps     Deps
	registry *router.Registry
	logger   *slog.Logger
}

// Register installs every command on reg.
func Register(reg *router.Registry, deps Deps) error {
	if deps.Lifecycle == nil || deps.Samples == nil {
		return errors.New("commands: lifecycle and samples are required")
	}
	if deps.Mention == nil {
		deps.Mention = discord.Mention
	}
	h := &handlers{deps: deps, registry: reg, logger: logging.NewComponentLogger(deps.Logger, "commands")}
	table := []struct {
		name string
		fn   router.HandlerFunc
	}{
		{Help, h.help},
		{Challenge, h.challengeStatus},
		{ChallengeStart, h.challengeStart},
		{ChallengeSubmit, h.challengeSubmit},
		{ChallengeSubmissions, h.challengeSubmissions},
		{ChallengeEnd, h.challengeEnd},
		{Challenges, h.challengesFolder},
		{Samples, h.samplesFolder},
		{SamplesAdd, h.samplesAdd},
		{SamplesRandom, h.samplesRandom},
	}
	for _, entry := range table {
		if err := reg.Register(entry.name, entry.fn); err != nil {
			return fmt.Errorf("register %s: %w", entry.name, err)
		}
	}
	return nil
}

func (h *handlers) help(context.Context, *router.Invocation) (router.Response, error) {
	names := h.registry.Names()
	quoted := make([]string, 0, len(names))
	for _, name := range names {
		quoted = append(quoted, "`"+h.deps.Prefix+name+"`")
	}
	return router.Reply("available commands: " + strings.Join(quoted, ", ")), nil
}

// acknowledge reacts to the triggering message before a slow operation.
func (h *handlers) acknowledge(ctx context.Context, msg router.Message) {
	if err := msg.React(ctx, router.ReactAccepted); err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, h.logger), "acknowledgement failed", "ack_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "user saw no acknowledgement; the command continues"),
		)
	}
}

// rejection turns a rejected sample outcome into a response.
func rejection(out sample.Outcome) router.Response {
	if errors.Is(out.Cause, sample.ErrUnsupportedFormat) {
		return router.Response{Reply: invalidFormatReply, React: router.ReactConfused}
	}
	return router.React(router.ReactConfused)
}

func (h *handlers) report(res lifecycle.Result) string {
	return strings.Join(res.Report(h.deps.Mention), "\n")
}
