// Package logging assembles the structured slog loggers used across
// sleeve's pipeline and transports.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so request code can
// automatically tag log lines with correlation IDs and tool names. The
// package also provides a no-op logger for tests and wiring code that
// cannot fail.
//
// Prefer these constructors over hand-rolled slog setup so every
// component emits data with the same shape.
package logging
