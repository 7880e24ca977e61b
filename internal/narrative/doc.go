// Package narrative generates the prose paragraph for a vibe board.
// Two interchangeable chat backends are supported: the OpenAI API and
// a local Ollama instance. Backend selection happens once at
// construction; an unconfigured summarizer reports a configuration
// error instead of guessing.
package narrative
