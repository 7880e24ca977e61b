// Package search orchestrates the cover-art pipeline: route the query,
// pick exactly one artist, enumerate that artist's release groups, and
// resolve a cover per group. Single-artist selection is the load-bearing
// policy; it keeps same-named or unrelated artists from bleeding into
// one response.
package search
