package services

import "context"

type contextKey string

const (
	challengeIDKey contextKey = "challenge_id"
	commandKey     contextKey = "command"
	authorKey      contextKey = "author_id"
	messageKey     contextKey = "message_id"
	requestIDKey   contextKey = "request_id"
)

// WithChallengeID annotates context with the challenge identifier.
func WithChallengeID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, challengeIDKey, id)
}

// ChallengeIDFromContext extracts the challenge identifier if present.
func ChallengeIDFromContext(ctx context.Context) (int64, bool) {
	v := ctx.Value(challengeIDKey)
	if v == nil {
		return 0, false
	}
	switch val := v.(type) {
	case int64:
		return val, true
	case int:
		return int64(val), true
	default:
		return 0, false
	}
}

// WithCommand annotates context with the resolved dot-path command.
func WithCommand(ctx context.Context, command string) context.Context {
	if command == "" {
		return ctx
	}
	return context.WithValue(ctx, commandKey, command)
}

// CommandFromContext returns the command path if present.
func CommandFromContext(ctx context.Context) (string, bool) {
	return stringValue(ctx, commandKey)
}

// WithAuthorID annotates context with the chat user that sent the message.
func WithAuthorID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, authorKey, id)
}

// AuthorIDFromContext returns the author identifier if present.
func AuthorIDFromContext(ctx context.Context) (string, bool) {
	return stringValue(ctx, authorKey)
}

// WithMessageID annotates context with the transport message identifier.
func WithMessageID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, messageKey, id)
}

// MessageIDFromContext returns the message identifier if present.
func MessageIDFromContext(ctx context.Context) (string, bool) {
	return stringValue(ctx, messageKey)
}

// WithRequestID annotates context with a correlation identifier.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext extracts the correlation identifier if present.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	return stringValue(ctx, requestIDKey)
}

func stringValue(ctx context.Context, key contextKey) (string, bool) {
	if ctx == nil {
		return "", false
	}
	if v, ok := ctx.Value(key).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
