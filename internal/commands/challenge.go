package commands

import (
	"context"
	"fmt"

	"samplebot/internal/lifecycle"
	"samplebot/internal/router"
)

func (h *handlers) challengeStatus(ctx context.Context, _ *router.Invocation) (router.Response, error) {
	res, err := h.deps.Lifecycle.Status(ctx)
	if err != nil {
		return router.Response{}, err
	}
	if res.Outcome == lifecycle.NoChallenge {
		return router.Reply(noChallengeReply), nil
	}
	return router.Reply(fmt.Sprintf("%s is running a challenge. sample: %s", h.deps.Mention(res.Owner), res.Challenge.SampleURL)), nil
}

func (h *handlers) alreadyRunning(owner string) router.Response {
	return router.Reply(fmt.Sprintf("%s is already running a challenge. find out more with `challenge`", h.deps.Mention(owner)))
}

// challengeStart publishes the sample and opens the challenge with its shared
// link. The slot is checked before acquisition; a start that loses the race
// after acquisition is answered as already running.
func (h *handlers) challengeStart(ctx context.Context, inv *router.Invocation) (router.Response, error) {
	status, err := h.deps.Lifecycle.Status(ctx)
	if err != nil {
		return router.Response{}, err
	}
	if status.Outcome == lifecycle.OK {
		return h.alreadyRunning(status.Owner), nil
	}
	sourceURL := inv.Args.First()
	if sourceURL == "" {
		return router.React(router.ReactConfused), nil
	}

	out := h.deps.Samples.AddSample(ctx, sourceURL, inv.Args.FlagOr("format", ""), func(ctx context.Context) {
		h.acknowledge(ctx, inv.Message)
	})
	if out.Rejected {
		return rejection(out), nil
	}

	res, err := h.deps.Lifecycle.Start(ctx, inv.Message.AuthorID(), out.Link)
	if err != nil {
		return router.Response{}, err
	}
	switch res.Outcome {
	case lifecycle.OK:
		return router.Reply("challenge started! sample: " + res.Challenge.SampleURL), nil
	case lifecycle.AlreadyActive:
		return h.alreadyRunning(res.Owner), nil
	default:
		return router.React(router.ReactConfused), nil
	}
}

func (h *handlers) challengeSubmit(ctx context.Context, inv *router.Invocation) (router.Response, error) {
	trackURL := inv.Args.First()
	res, err := h.deps.Lifecycle.Submit(ctx, inv.Message.AuthorID(), trackURL)
	if err != nil {
		return router.Response{}, err
	}
	switch res.Outcome {
	case lifecycle.NoChallenge:
		return router.Reply(noChallengeReply), nil
	case lifecycle.Invalid:
		return router.React(router.ReactConfused), nil
	default:
		return router.React(router.ReactAccepted), nil
	}
}

func (h *handlers) challengeSubmissions(ctx context.Context, _ *router.Invocation) (router.Response, error) {
	res, err := h.deps.Lifecycle.Submissions(ctx)
	if err != nil {
		return router.Response{}, err
	}
	if res.Outcome == lifecycle.NoChallenge {
		return router.Reply(noChallengeReply), nil
	}
	if len(res.Submissions) == 0 {
		return router.Reply(noSubmissionsReply), nil
	}
	return router.Reply(h.report(res)), nil
}

func (h *handlers) challengeEnd(ctx context.Context, inv *router.Invocation) (router.Response, error) {
	res, err := h.deps.Lifecycle.End(ctx, inv.Message.AuthorID())
	if err != nil {
		return router.Response{}, err
	}
	switch res.Outcome {
	case lifecycle.NoChallenge:
		return router.Reply(noChallengeEnd), nil
	case lifecycle.NotOwner:
		return router.Reply(fmt.Sprintf("only %s can end the challenge", h.deps.Mention(res.Owner))), nil
	}
	if len(res.Submissions) == 0 {
		return router.Reply("challenge ended. " + noSubmissionsReply), nil
	}
	return router.Reply("challenge ended. submissions:\n" + h.report(res)), nil
}

func (h *handlers) challengesFolder(ctx context.Context, _ *router.Invocation) (router.Response, error) {
	link, err := h.deps.Samples.ChallengesLink(ctx)
	if err != nil {
		return router.Response{}, err
	}
	return router.Reply(link), nil
}
