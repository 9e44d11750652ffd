// Package storage defines the interfaces for an artifact blob store. The
// abstraction keeps the sink independent of where artifacts land: the local
// cache directory, Google Cloud Storage, or nowhere at all.
package storage

import "context"

// Provider defines the common interface for an artifact store.
type Provider interface {
	// Save writes data under the given object name and returns the
	// artifact's URI.
	Save(ctx context.Context, name string, data []byte) (string, error)
}

// NoOpProvider discards every artifact. Useful for dry runs where members
// are fetched and counted but not persisted.
type NoOpProvider struct{}

// Save for NoOpProvider discards the data.
func (NoOpProvider) Save(_ context.Context, name string, _ []byte) (string, error) {
	return "noop://" + name, nil
}
