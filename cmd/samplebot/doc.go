// Package main hosts the samplebot CLI entrypoint and command graph.
//
// The Cobra command tree starts the Discord bot, inspects the challenge
// database directly, prints shared sample links, checks external tool
// availability, and scaffolds configuration. Commands that only read local
// state work without Discord or Dropbox credentials.
package main
