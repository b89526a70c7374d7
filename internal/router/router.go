package router

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"
	"unicode"

	"github.com/google/uuid"

	"samplebot/internal/logging"
	"samplebot/internal/services"
)

// FailureHook observes handler failures after they have been logged.
type FailureHook func(ctx context.Context, command string, err error)

// Options controls how tokens are compared with registered paths. Both
// settings affect matching only; handlers always see arguments as typed.
type Options struct {
	CaseInsensitive  bool
	StripPunctuation bool
	FailureHook      FailureHook
}

// Resolution is a matched command.
type Resolution struct {
	Command string
	Handler Handler
	Args    Args
}

// Router resolves messages against a Registry and invokes handlers.
type Router struct {
	registry   *Registry
	addressing Addressing
	opts       Options
	logger     *slog.Logger
}

// New builds a router. A nil addressing accepts every message as addressed.
func New(registry *Registry, addressing Addressing, logger *slog.Logger, opts Options) *Router {
	if addressing == nil {
		addressing = AddressingFunc(func(content string) (string, bool) { return content, true })
	}
	return &Router{
		registry:   registry,
		addressing: addressing,
		opts:       opts,
		logger:     logging.NewComponentLogger(logger, "router"),
	}
}

// Resolve finds the longest registered path that prefixes the positional
// tokens of text. text must already have its addressing token removed.
func (r *Router) Resolve(text string) (Resolution, bool) {
	args := ParseArgs(Tokenize(text))
	if len(args.Positional) == 0 {
		return Resolution{}, false
	}
	if r.opts.CaseInsensitive {
		folded := make(map[string]string, len(args.Flags))
		for name, value := range args.Flags {
			folded[fold(name)] = value
		}
		args.Flags = folded
	}

	keys := make([]string, len(args.Positional))
	for i, token := range args.Positional {
		keys[i] = r.matchKey(token)
	}
	for i := len(keys); i >= 0; i-- {
		path := strings.Join(keys[:i], ".")
		name, handler, ok := r.lookup(path)
		if !ok {
			continue
		}
		rest := append([]string{}, args.Positional[i:]...)
		return Resolution{
			Command: name,
			Handler: handler,
			Args:    Args{Positional: rest, Flags: args.Flags},
		}, true
	}
	return Resolution{}, false
}

func (r *Router) matchKey(token string) string {
	if r.opts.StripPunctuation {
		token = strings.TrimFunc(token, unicode.IsPunct)
	}
	return token
}

func (r *Router) lookup(path string) (string, Handler, bool) {
	if r.opts.CaseInsensitive {
		return r.registry.LookupFold(path)
	}
	handler, ok := r.registry.Lookup(path)
	return path, handler, ok
}

// Handle runs the full pipeline for one message and reports whether a
// handler was invoked. It never returns handler failures.
func (r *Router) Handle(ctx context.Context, msg Message) bool {
	if msg == nil || msg.FromBot() {
		return false
	}
	text, ok := r.addressing.Strip(msg.Content())
	if !ok {
		return false
	}
	res, ok := r.Resolve(text)
	if !ok {
		return false
	}

	if _, ok := services.RequestIDFromContext(ctx); !ok {
		ctx = services.WithRequestID(ctx, uuid.NewString())
	}
	ctx = services.WithCommand(ctx, res.Command)
	ctx = services.WithAuthorID(ctx, msg.AuthorID())
	ctx = services.WithMessageID(ctx, msg.ID())
	logger := logging.WithContext(ctx, r.logger)
	logger.Debug("command resolved",
		logging.String(logging.FieldEventType, "command_resolved"),
		logging.Int("positional_count", len(res.Args.Positional)),
	)

	resp, err := r.invoke(ctx, res, msg)
	if err != nil {
		r.fail(ctx, logger, msg, res.Command, err)
		return true
	}
	r.deliver(ctx, logger, msg, resp)
	return true
}

func (r *Router) invoke(ctx context.Context, res Resolution, msg Message) (resp Response, err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("handler panic: %v\n%s", recovered, debug.Stack())
		}
	}()
	return res.Handler.Execute(ctx, &Invocation{Message: msg, Command: res.Command, Args: res.Args})
}

func (r *Router) fail(ctx context.Context, logger *slog.Logger, msg Message, command string, err error) {
	if services.IsRejection(err) {
		logger.Debug("command rejected",
			logging.String(logging.FieldEventType, "command_rejected"),
			logging.Error(err),
		)
		r.deliver(ctx, logger, msg, React(ReactConfused))
		return
	}
	logging.ErrorWithContext(logger, "command failed", "command_failed",
		logging.Error(err),
		logging.String(logging.FieldErrorHint, services.Hint(err)),
		logging.String(logging.FieldImpact, "user received a generic failure reply"),
	)
	r.deliver(ctx, logger, msg, Reply(FailureReply))
	if r.opts.FailureHook != nil {
		r.opts.FailureHook(ctx, command, err)
	}
}

func (r *Router) deliver(ctx context.Context, logger *slog.Logger, msg Message, resp Response) {
	if resp.React != "" {
		if err := msg.React(ctx, resp.React); err != nil {
			logging.WarnWithContext(logger, "reaction failed", "reaction_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check bot permissions in the channel"),
				logging.String(logging.FieldImpact, "user did not see the acknowledgement"),
			)
		}
	}
	if resp.Reply != "" {
		if err := msg.Reply(ctx, resp.Reply); err != nil {
			logging.WarnWithContext(logger, "reply failed", "reply_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check bot permissions in the channel"),
				logging.String(logging.FieldImpact, "user did not see the command response"),
			)
		}
	}
}
