// Package palette turns cover images into compact color features: a
// clustered 4-color palette, the mean HSV fingerprint, and a three-word
// caption.
package palette
