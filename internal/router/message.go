package router

import "context"

// Reactions the router and handlers use to acknowledge messages.
const (
	ReactAccepted = "👍"
	ReactConfused = "❓"
)

// FailureReply is sent when a handler fails.
const FailureReply = "that didn't work"

// Message is one inbound chat message as seen by the router.
type Message interface {
	ID() string
	AuthorID() string
	Content() string
	// FromBot reports whether the sender is an automated account.
	FromBot() bool
	Reply(ctx context.Context, text string) error
	React(ctx context.Context, emoji string) error
}

// Response is delivered by the router after a handler returns. Empty fields
// are skipped.
type Response struct {
	Reply string
	React string
}

// Reply builds a text response.
func Reply(text string) Response { return Response{Reply: text} }

// React builds a reaction-only response.
func React(emoji string) Response { return Response{React: emoji} }
