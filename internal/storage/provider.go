// Package storage persists readings to a CSV file or a relational database.
package storage

import (
	"context"

	"github.com/starford/bptracker/internal/reading"
)

// Provider is the interface for reading persistence. Implementations must be
// safe for concurrent use.
type Provider interface {
	// List returns every stored reading.
	List(ctx context.Context) ([]reading.Reading, error)
	// Get returns the reading with the given id or apperr.ErrNotFound.
	Get(ctx context.Context, id int64) (reading.Reading, error)
	// Create stores r and returns it with its assigned id.
	Create(ctx context.Context, r reading.Reading) (reading.Reading, error)
	// Delete removes the reading with the given id and returns it as it was
	// stored, or apperr.ErrNotFound. Lookup and removal are one atomic step.
	Delete(ctx context.Context, id int64) (reading.Reading, error)
	// Close releases underlying resources.
	Close() error
}
