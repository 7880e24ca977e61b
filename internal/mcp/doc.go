// Package mcp exposes the cover art pipeline as MCP tools over stdio.
//
// The server registers the same five tools the daemon serves over
// JSON-RPC, with typed inputs and outputs so clients get generated
// schemas. Run owns stdout for the protocol; callers must log to
// stderr or a file.
package mcp
