// Package services defines shared utilities consumed by command handlers and
// external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp challenge IDs, command paths, authors, and
//     correlation identifiers for logging.
//   - Structured error markers plus the Wrap helper so callers can tell user
//     rejections apart from collaborator failures.
//
// Integrations with outside systems (Dropbox) live in subpackages.
package services
