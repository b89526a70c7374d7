package discord

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/bwmarrin/discordgo"

	"samplebot/internal/config"
	"samplebot/internal/logging"
	"samplebot/internal/router"
	"samplebot/internal/services"
)

// Intents the bot needs to read commands in guild channels and DMs.
const Intents = discordgo.IntentGuildMessages | discordgo.IntentDirectMessages | discordgo.IntentMessageContent

// DispatchFunc receives every inbound message.
type DispatchFunc func(ctx context.Context, msg router.Message) error

// Transport owns the gateway session.
type Transport struct {
	session *discordgo.Session
	logger  *slog.Logger

	mu     sync.RWMutex
	selfID string
}

// New creates a session for the configured bot token without connecting.
func New(cfg *config.Config, logger *slog.Logger) (*Transport, error) {
	if cfg == nil || strings.TrimSpace(cfg.Discord.Token) == "" {
		return nil, services.Wrap(services.ErrConfiguration, "discord", "init", "discord.token is required", nil)
	}
	token := strings.TrimSpace(cfg.Discord.Token)
	if !strings.HasPrefix(token, "Bot ") {
		token = "Bot " + token
	}
	session, err := discordgo.New(token)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "discord", "init", "create session", err)
	}
	session.Identify.Intents = Intents
	return &Transport{session: session, logger: logging.NewComponentLogger(logger, "discord")}, nil
}

// Mentions returns the tokens that address the bot once connected.
func (t *Transport) Mentions() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return mentionTokens(t.selfID)
}

func (t *Transport) setSelf(id string) {
	t.mu.Lock()
	t.selfID = id
	t.mu.Unlock()
}

// Run connects, forwards messages to dispatch until ctx ends, then closes the
// session. It returns nil on a clean shutdown.
func (t *Transport) Run(ctx context.Context, dispatch DispatchFunc) error {
	if dispatch == nil {
		return errors.New("discord: dispatch function is required")
	}
	removeReady := t.session.AddHandler(func(_ *discordgo.Session, ready *discordgo.Ready) {
		if ready.User != nil {
			t.setSelf(ready.User.ID)
			t.logger.Info("discord session ready",
				logging.String(logging.FieldEventType, "discord_ready"),
				logging.String("user", ready.User.Username),
				logging.Int("guilds", len(ready.Guilds)),
			)
		}
	})
	defer removeReady()
	removeMessage := t.session.AddHandler(func(s *discordgo.Session, event *discordgo.MessageCreate) {
		t.handle(ctx, s, dispatch, event)
	})
	defer removeMessage()

	if err := t.session.Open(); err != nil {
		return services.Wrap(services.ErrTransient, "discord", "open", "connect gateway", err)
	}
	if t.session.State != nil && t.session.State.User != nil {
		t.setSelf(t.session.State.User.ID)
	}

	<-ctx.Done()
	if err := t.session.Close(); err != nil {
		return fmt.Errorf("discord: close session: %w", err)
	}
	return nil
}

func (t *Transport) handle(ctx context.Context, client sender, dispatch DispatchFunc, event *discordgo.MessageCreate) {
	if event == nil || event.Message == nil {
		return
	}
	msg := newMessage(client, event.Message)
	if msg.FromBot() {
		return
	}
	if err := dispatch(ctx, msg); err != nil && ctx.Err() == nil {
		logging.WarnWithContext(t.logger, "message dropped", "message_dropped",
			logging.String(logging.FieldMessageID, msg.ID()),
			logging.Error(err),
			logging.String(logging.FieldImpact, "command was not handled"),
		)
	}
}
