// Package logging assembles structured slog loggers and formatting helpers used
// across samplebot.
//
// It owns the console/JSON handlers, centralizes level and output plumbing,
// and exposes context-aware helpers so command handlers automatically tag log
// lines with correlation IDs, command paths, and authors. A no-op logger is
// provided for tests and wiring code that cannot fail.
package logging
