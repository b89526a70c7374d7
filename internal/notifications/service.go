package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"samplebot/internal/config"
)

const userAgent = "samplebot/0.1.0"

// Event identifies an operator notification.
type Event string

const (
	EventChallengeStarted Event = "challenge_started"
	EventChallengeEnded   Event = "challenge_ended"
	EventCommandFailed    Event = "command_failed"
	EventTest             Event = "test"
)

// Payload carries event-specific values keyed by name.
type Payload map[string]any

// Service publishes operator notifications.
type Service interface {
	Publish(ctx context.Context, event Event, payload Payload) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	if cfg == nil {
		return noopService{}
	}
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
		enabled: map[Event]bool{
			EventChallengeStarted: cfg.Notifications.ChallengeStarted,
			EventChallengeEnded:   cfg.Notifications.ChallengeEnded,
			EventCommandFailed:    cfg.Notifications.Errors,
			EventTest:             true,
		},
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
	enabled  map[Event]bool
}

func (n *ntfyService) Publish(ctx context.Context, event Event, data Payload) error {
	if n == nil || !n.enabled[event] {
		return nil
	}
	msg, ok := format(event, data)
	if !ok {
		return nil
	}
	return n.send(ctx, msg)
}

func format(event Event, data Payload) (payload, bool) {
	switch event {
	case EventChallengeStarted:
		return payload{
			title:   "Samplebot - Challenge Started",
			message: fmt.Sprintf("🎛️ Challenge #%s started by %s: %s", data.text("challengeID"), data.text("ownerID"), data.text("sampleURL")),
			tags:    []string{"samplebot", "challenge", "started"},
		}, true
	case EventChallengeEnded:
		return payload{
			title:   "Samplebot - Challenge Ended",
			message: fmt.Sprintf("🏁 Challenge #%s ended with %s submission(s)", data.text("challengeID"), data.text("submissions")),
			tags:    []string{"samplebot", "challenge", "ended"},
		}, true
	case EventCommandFailed:
		return payload{
			title:    "Samplebot - Error",
			message:  fmt.Sprintf("❌ Command %s failed: %s", data.text("command"), data.text("error")),
			tags:     []string{"samplebot", "error", "alert"},
			priority: "high",
		}, true
	case EventTest:
		return payload{
			title:   "Samplebot - Test",
			message: "🔔 Notifications are working",
			tags:    []string{"samplebot", "test"},
		}, true
	default:
		return payload{}, false
	}
}

func (p Payload) text(key string) string {
	value, ok := p[key]
	if !ok || value == nil {
		return "?"
	}
	switch v := value.(type) {
	case string:
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
		return "?"
	case error:
		return v.Error()
	default:
		return fmt.Sprint(v)
	}
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) Publish(context.Context, Event, Payload) error { return nil }
