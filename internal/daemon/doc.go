// Package daemon coordinates the long-running sleeved process.
//
// It wires the assembled pipeline service into an HTTP server exposing
// the health probe, the REST search endpoint, and the JSON-RPC tool
// endpoint, with flock-based locking to prevent multiple instances.
//
// Keep transport concerns here: routing decisions, cover resolution,
// and board building live in their respective packages while the
// daemon focuses on startup, shutdown, and request plumbing.
package daemon
