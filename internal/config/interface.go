package config

import "context"

// Loader is the interface for a format-specific document frontend. A Loader
// reads a manifest from a path, resolves its external references, and
// produces the format-agnostic model together with the ordered lifecycle
// operations ready for the execution engine.
type Loader interface {
	Load(ctx context.Context, path string) (*Model, []Operation, error)
}
