// Package config loads, normalizes, and validates sleeve configuration
// data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such
// as OPENAI_API_KEY and OLLAMA_HOST. The Config type centralizes every
// knob the daemon, CLI, and tool servers need.
//
// Always obtain settings through this package so downstream code
// receives sanitized paths, canonical log formats, and clear validation
// errors.
package config
