// Package notifications delivers operator events via ntfy.
//
// The service publishes to the topic configured in config.toml and degrades
// to a no-op when no topic is set. Each event has a toggle so operators can
// keep only error alerts, for example.
package notifications
