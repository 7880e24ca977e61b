// Package main hosts the sleeve CLI entrypoint and command graph.
//
// The Cobra-based command tree translates terminal invocations into
// cover art searches, vibe board builds, detail fetches, MCP serving,
// and configuration scaffolding. It centralizes configuration
// resolution and pipeline assembly so subcommands can focus on user
// experience instead of wiring.
//
// Keep this package lean: add new functionality by extending the
// internal packages first, then surface it through dedicated commands
// or flags here.
package main
