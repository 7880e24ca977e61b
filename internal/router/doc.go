// Package router classifies free-text queries into MusicBrainz search
// strategies before any network traffic happens.
package router
