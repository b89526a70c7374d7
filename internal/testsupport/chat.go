package testsupport

import (
	"context"
	"sync"

	"samplebot/internal/router"
)

// FakeMessage is an in-memory router.Message that records replies and reactions.
type FakeMessage struct {
	MessageID string
	Author    string
	Text      string
	Bot       bool
	// ReplyErr and ReactErr, when set, are returned by Reply and React.
	ReplyErr error
	ReactErr error

	mu        sync.Mutex
	replies   []string
	reactions []string
}

var _ router.Message = (*FakeMessage)(nil)

// NewMessage returns a FakeMessage from author with the given content.
func NewMessage(author, text string) *FakeMessage {
	return &FakeMessage{MessageID: "msg-" + author, Author: author, Text: text}
}

func (m *FakeMessage) ID() string       { return m.MessageID }
func (m *FakeMessage) AuthorID() string { return m.Author }
func (m *FakeMessage) Content() string  { return m.Text }
func (m *FakeMessage) FromBot() bool    { return m.Bot }

func (m *FakeMessage) Reply(_ context.Context, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replies = append(m.replies, text)
	return m.ReplyErr
}

func (m *FakeMessage) React(_ context.Context, emoji string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reactions = append(m.reactions, emoji)
	return m.ReactErr
}

// Replies returns a copy of the replies sent so far.
func (m *FakeMessage) Replies() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.replies...)
}

// Reactions returns a copy of the reactions added so far.
func (m *FakeMessage) Reactions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.reactions...)
}

// LastReply returns the most recent reply, or "" when there is none.
func (m *FakeMessage) LastReply() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.replies) == 0 {
		return ""
	}
	return m.replies[len(m.replies)-1]
}
