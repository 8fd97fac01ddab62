package factory

import (
	"context"

	"github.com/mmrzaf/fixturegen/internal/domain"
)

// Gateway persists batches of records into named collections of a backing
// store and removes them by identifier.
type Gateway interface {
	// Insert stores records in collection in one round trip and returns the
	// assigned identifiers in insertion order, with the persisted
	// representation of each record.
	Insert(ctx context.Context, collection string, records []domain.Record) (*domain.InsertResult, error)
	// Remove deletes the records with the given identifiers and returns how
	// many were removed. Unknown identifiers are not an error.
	Remove(ctx context.Context, collection string, ids []string) (int64, error)
	Close() error
}

// Connector opens a gateway session.
type Connector func(ctx context.Context) (Gateway, error)
