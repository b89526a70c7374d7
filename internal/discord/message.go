package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"

	"samplebot/internal/router"
)

// sender is the part of *discordgo.Session messages use to respond.
type sender interface {
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
	MessageReactionAdd(channelID, messageID, emojiID string, options ...discordgo.RequestOption) error
}

type message struct {
	client sender
	msg    *discordgo.Message
}

var _ router.Message = (*message)(nil)

func newMessage(client sender, msg *discordgo.Message) *message {
	return &message{client: client, msg: msg}
}

func (m *message) ID() string { return m.msg.ID }

func (m *message) AuthorID() string {
	if m.msg.Author == nil {
		return ""
	}
	return m.msg.Author.ID
}

func (m *message) Content() string { return m.msg.Content }

func (m *message) FromBot() bool {
	return m.msg.Author == nil || m.msg.Author.Bot
}

func (m *message) Reply(ctx context.Context, text string) error {
	_, err := m.client.ChannelMessageSendComplex(m.msg.ChannelID, &discordgo.MessageSend{
		Content:   text,
		Reference: m.msg.Reference(),
		AllowedMentions: &discordgo.MessageAllowedMentions{
			Parse: []discordgo.AllowedMentionType{discordgo.AllowedMentionTypeUsers},
		},
	}, discordgo.WithContext(ctx))
	return err
}

func (m *message) React(ctx context.Context, emoji string) error {
	return m.client.MessageReactionAdd(m.msg.ChannelID, m.msg.ID, emoji, discordgo.WithContext(ctx))
}

// Mention renders a user id as a Discord mention.
func Mention(userID string) string {
	if userID == "" {
		return ""
	}
	return "<@" + userID + ">"
}

func mentionTokens(userID string) []string {
	if userID == "" {
		return nil
	}
	return []string{"<@" + userID + ">", "<@!" + userID + ">"}
}
