package commands

import (
	"context"

	"samplebot/internal/router"
)

func (h *handlers) samplesFolder(ctx context.Context, _ *router.Invocation) (router.Response, error) {
	link, err := h.deps.Samples.SamplesLink(ctx)
	if err != nil {
		return router.Response{}, err
	}
	return router.Reply(link), nil
}

func (h *handlers) samplesAdd(ctx context.Context, inv *router.Invocation) (router.Response, error) {
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
	return router.Reply("done. " + out.Link), nil
}

func (h *handlers) samplesRandom(ctx context.Context, inv *router.Invocation) (router.Response, error) {
	h.acknowledge(ctx, inv.Message)
	out := h.deps.Samples.PickRandom(ctx)
	if out.Rejected {
		return router.React(router.ReactConfused), nil
	}
	return router.Reply("done. " + out.Link), nil
}
