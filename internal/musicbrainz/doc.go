// Package musicbrainz wraps the MusicBrainz web service: artist search
// by name or tag, release-group browsing, and release enumeration.
// Errors carry services markers so callers can decide which failures
// degrade to "no data".
package musicbrainz
