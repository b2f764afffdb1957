// internal/storage/archive/archive.go
package archive

import "context"

// Storage defines the interface for run-archive backends. Archives are
// append-only: a run document is written once when the run completes
// and read back for inspection, never mutated.
type Storage interface {
	// Write stores data at the given path
	Write(ctx context.Context, path string, data []byte) error

	// Read retrieves data from the given path
	Read(ctx context.Context, path string) ([]byte, error)

	// List returns all paths matching the prefix
	List(ctx context.Context, prefix string) ([]string, error)

	// Exists checks if data exists at the given path
	Exists(ctx context.Context, path string) (bool, error)
}
