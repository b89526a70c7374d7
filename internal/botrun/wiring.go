package botrun

import (
	"context"
	"log/slog"

	"samplebot/internal/commands"
	"samplebot/internal/config"
	"samplebot/internal/lifecycle"
	"samplebot/internal/logging"
	"samplebot/internal/notifications"
	"samplebot/internal/router"
	"samplebot/internal/sample"
)

// newDispatcher registers the command surface and wraps the router in a
// bounded dispatcher.
func newDispatcher(
	cfg *config.Config,
	logger *slog.Logger,
	lc *lifecycle.Service,
	samples *sample.Service,
	notifier notifications.Service,
	mentions func() []string,
) (*router.Dispatcher, error) {
	reg := router.NewRegistry()
	if err := commands.Register(reg, commands.Deps{
		Lifecycle: lc,
		Samples:   samples,
		Prefix:    cfg.Discord.Prefix,
		Logger:    logger,
	}); err != nil {
		return nil, err
	}

	addressing := router.NewPrefixAddressing(cfg.Discord.Prefix, mentions)
	addressing.FoldPrefix = cfg.Discord.CaseInsensitive
	r := router.New(reg, addressing, logger, router.Options{
		CaseInsensitive:  cfg.Discord.CaseInsensitive,
		StripPunctuation: cfg.Discord.StripPunctuation,
		FailureHook:      failureNotifier(notifier, logger),
	})
	return router.NewDispatcher(r, cfg.Dispatch.MaxConcurrent), nil
}

func failureNotifier(notifier notifications.Service, logger *slog.Logger) router.FailureHook {
	logger = logging.NewComponentLogger(logger, "botrun")
	return func(ctx context.Context, command string, err error) {
		if notifier == nil {
			return
		}
		if pubErr := notifier.Publish(ctx, notifications.EventCommandFailed, notifications.Payload{
			"command": command,
			"error":   err,
		}); pubErr != nil {
			logging.WarnWithContext(logging.WithContext(ctx, logger), "failure notification failed", "notification_failed",
				logging.Error(pubErr),
				logging.String(logging.FieldImpact, "operator was not notified of the command failure"),
			)
		}
	}
}
