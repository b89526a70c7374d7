// Package discord connects the command router to a Discord bot account.
//
// Transport opens a gateway session with the guild message, direct message,
// and message content intents, wraps every MessageCreate event as a
// router.Message, and hands it to a dispatch function. Replies are sent as
// message replies that may mention users; reactions are added to the
// triggering message.
package discord
