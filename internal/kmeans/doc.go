// Package kmeans implements seeded Lloyd's clustering for small,
// low-dimensional point sets (pixel colors, HSV fingerprints).
package kmeans
