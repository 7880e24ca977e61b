// Package services defines shared utilities consumed by the search
// pipeline and the transport adapters.
//
// Key responsibilities:
//   - Context helpers that stamp correlation identifiers and tool names
//     for logging and tracing.
//   - Structured error markers plus the Wrap helper that classify
//     failures (transport, decode, validation, configuration) so
//     callers branch with errors.Is instead of matching strings.
//
// Use these helpers when wiring new pipeline logic so operational
// behaviour (fail-soft degradation, observability) stays uniform.
package services
