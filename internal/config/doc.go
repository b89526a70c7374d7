// Package config loads, normalizes, and validates samplebot configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// DISCORD_TOKEN and DROPBOX_ACCESS_TOKEN. The Config type centralizes every
// knob the bot runtime and CLI need so the chat transport, object storage,
// audio acquisition, and command router are configured in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
