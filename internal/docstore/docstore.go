// Package docstore abstracts the remote document store behind the minimal
// surface the data layer consumes: a continuous snapshot subscription plus
// one-shot CRUD and query operations. Implementations live in subpackages
// (httpstore for the service transport, memstore for tests and local dev).
package docstore

import (
	"context"
	"encoding/json"
	"errors"
)

// ErrNotFound is returned when a referenced document does not exist.
var ErrNotFound = errors.New("document not found")

// Document is a raw record as the remote store holds it.
type Document struct {
	ID   string
	Data json.RawMessage
}

// Snapshot is one emission of a subscription: either the full current
// contents of the collection, or a connectivity error. A Snapshot with a
// non-nil Err carries no documents; subscribers keep their previous state.
type Snapshot struct {
	Docs []Document
	Err  error
}

// Order describes the subscription ordering.
type Order struct {
	Field      string
	Descending bool
}

// Predicate is a field equality constraint for one-shot queries.
type Predicate struct {
	Field string
	Value any
}

// Store is the document-store interface consumed by the data layer.
//
// Subscribe returns a channel that delivers an unbounded sequence of
// snapshots until ctx is cancelled, at which point the channel is closed.
// Every emission is a full snapshot, never a delta.
type Store interface {
	Subscribe(ctx context.Context, collection string, order Order) (<-chan Snapshot, error)
	GetOne(ctx context.Context, collection, id string) (*Document, error)
	Insert(ctx context.Context, collection string, data json.RawMessage) (string, error)
	Patch(ctx context.Context, collection, id string, partial json.RawMessage) error
	Remove(ctx context.Context, collection, id string) error
	QueryOnce(ctx context.Context, collection string, preds []Predicate) ([]Document, error)
}
