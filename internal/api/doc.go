// Package api exposes the cover-art pipeline as transport-neutral
// operations. The HTTP daemon, the stdio tool server, and the CLI all
// delegate here, so limit clamping and tool composition happen exactly
// once; adapters translate wire formats only.
package api
