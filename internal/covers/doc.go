// Package covers resolves album cover URLs through an ordered source
// chain: the Cover Art Archive's release-group image list, size probes
// against the archive's release-group and release endpoints, then the
// iTunes Search API. Every transport failure counts as a miss and
// advances the chain.
package covers
