// Package vibe clusters resolved cover art into two mood groups. Each
// candidate release group is resolved, fetched, and reduced to color
// features under a fixed concurrency cap; the surviving HSV
// fingerprints are then partitioned with a seeded k-means so identical
// inputs always produce the same board.
package vibe
