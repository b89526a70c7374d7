package router

import (
	"strings"
)

// Addressing decides whether a message is addressed to the bot and returns
// the content that follows the addressing token.
type Addressing interface {
	Strip(content string) (string, bool)
}

// AddressingFunc adapts a function to Addressing.
type AddressingFunc func(content string) (string, bool)

// Strip calls f.
func (f AddressingFunc) Strip(content string) (string, bool) { return f(content) }

// PrefixAddressing accepts messages that start with Prefix or with one of the
// tokens returned by Mentions.
type PrefixAddressing struct {
	Prefix string
	// Mentions returns the tokens that address the bot, e.g. "<@123>" and
	// "<@!123>". Nil disables mention addressing.
	Mentions func() []string
	// FoldPrefix matches Prefix ignoring case.
	FoldPrefix bool
}

// NewPrefixAddressing returns a PrefixAddressing for prefix and mentions.
func NewPrefixAddressing(prefix string, mentions func() []string) *PrefixAddressing {
	return &PrefixAddressing{Prefix: strings.TrimSpace(prefix), Mentions: mentions}
}

// Strip implements Addressing.
func (p *PrefixAddressing) Strip(content string) (string, bool) {
	trimmed := strings.TrimLeftFunc(content, isSpace)
	if p.Prefix != "" && len(trimmed) >= len(p.Prefix) {
		head := trimmed[:len(p.Prefix)]
		if head == p.Prefix || (p.FoldPrefix && strings.EqualFold(head, p.Prefix)) {
			return trimmed[len(p.Prefix):], true
		}
	}
	if p.Mentions != nil {
		for _, mention := range p.Mentions() {
			if mention != "" && strings.HasPrefix(trimmed, mention) {
				return trimmed[len(mention):], true
			}
		}
	}
	return "", false
}
