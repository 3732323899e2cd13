// Package memstore is an in-memory docstore.Store with live subscriptions.
// It backs unit tests and local development; ordering and patch semantics
// match what the data layer expects from the real transport.
package memstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/felipe-ssantos/prodigyfix/internal/docstore"
)

type collection struct {
	docs  map[string]json.RawMessage
	order []string // insertion order, ties broken by it
}

type subscriber struct {
	ctx        context.Context
	collection string
	order      docstore.Order
	ch         chan docstore.Snapshot
}

// Store is an in-memory document store. The zero value is not usable; call
// New.
type Store struct {
	mu          sync.Mutex
	collections map[string]*collection
	subs        []*subscriber
}

// New returns an empty in-memory store.
func New() *Store {
	return &Store{collections: make(map[string]*collection)}
}

func (s *Store) coll(name string) *collection {
	c, ok := s.collections[name]
	if !ok {
		c = &collection{docs: make(map[string]json.RawMessage)}
		s.collections[name] = c
	}
	return c
}

// Subscribe registers a live snapshot stream for the collection. The current
// snapshot is delivered immediately; every subsequent mutation re-emits.
func (s *Store) Subscribe(ctx context.Context, name string, order docstore.Order) (<-chan docstore.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub := &subscriber{ctx: ctx, collection: name, order: order, ch: make(chan docstore.Snapshot, 16)}
	s.subs = append(s.subs, sub)
	sub.ch <- s.snapshotLocked(name, order)

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		for i, candidate := range s.subs {
			if candidate == sub {
				s.subs = append(s.subs[:i], s.subs[i+1:]...)
				break
			}
		}
		s.mu.Unlock()
		close(sub.ch)
	}()
	return sub.ch, nil
}

// GetOne returns a single document or docstore.ErrNotFound.
func (s *Store) GetOne(_ context.Context, name, id string) (*docstore.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.coll(name)
	data, ok := c.docs[id]
	if !ok {
		return nil, docstore.ErrNotFound
	}
	return &docstore.Document{ID: id, Data: data}, nil
}

// Insert stores a new document under a generated id and notifies
// subscribers.
func (s *Store) Insert(_ context.Context, name string, data json.RawMessage) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.NewString()
	c := s.coll(name)
	c.docs[id] = append(json.RawMessage(nil), data...)
	c.order = append(c.order, id)
	s.notifyLocked(name)
	return id, nil
}

// Put stores a document under an explicit id, used to seed fixtures.
func (s *Store) Put(name, id string, data json.RawMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.coll(name)
	if _, exists := c.docs[id]; !exists {
		c.order = append(c.order, id)
	}
	c.docs[id] = append(json.RawMessage(nil), data...)
	s.notifyLocked(name)
}

// Patch merges the top-level keys of partial into the stored document.
func (s *Store) Patch(_ context.Context, name, id string, partial json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.coll(name)
	existing, ok := c.docs[id]
	if !ok {
		return docstore.ErrNotFound
	}
	var base, delta map[string]json.RawMessage
	if err := json.Unmarshal(existing, &base); err != nil {
		return fmt.Errorf("patch %s/%s: %w", name, id, err)
	}
	if err := json.Unmarshal(partial, &delta); err != nil {
		return fmt.Errorf("patch %s/%s: %w", name, id, err)
	}
	for k, v := range delta {
		base[k] = v
	}
	merged, err := json.Marshal(base)
	if err != nil {
		return err
	}
	c.docs[id] = merged
	s.notifyLocked(name)
	return nil
}

// Remove deletes a document and notifies subscribers.
func (s *Store) Remove(_ context.Context, name, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.coll(name)
	if _, ok := c.docs[id]; !ok {
		return docstore.ErrNotFound
	}
	delete(c.docs, id)
	for i, existing := range c.order {
		if existing == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	s.notifyLocked(name)
	return nil
}

// QueryOnce returns documents matching all predicates (field equality on
// top-level keys).
func (s *Store) QueryOnce(_ context.Context, name string, preds []docstore.Predicate) ([]docstore.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.coll(name)
	var out []docstore.Document
	for _, id := range c.order {
		data := c.docs[id]
		if matches(data, preds) {
			out = append(out, docstore.Document{ID: id, Data: data})
		}
	}
	return out, nil
}

// EmitError pushes an error snapshot to every subscriber of the collection.
// Test hook for exercising the fail-soft subscription path.
func (s *Store) EmitError(name string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sub := range s.subs {
		if sub.collection != name {
			continue
		}
		select {
		case sub.ch <- docstore.Snapshot{Err: err}:
		default:
		}
	}
}

func (s *Store) notifyLocked(name string) {
	for _, sub := range s.subs {
		if sub.collection != name {
			continue
		}
		snap := s.snapshotLocked(name, sub.order)
		select {
		case sub.ch <- snap:
		default:
			// Slow subscriber: drop this emission. The next mutation
			// re-emits a full snapshot, so no state is lost.
		}
	}
}

func (s *Store) snapshotLocked(name string, order docstore.Order) docstore.Snapshot {
	c := s.coll(name)
	docs := make([]docstore.Document, 0, len(c.order))
	for _, id := range c.order {
		docs = append(docs, docstore.Document{ID: id, Data: c.docs[id]})
	}
	if order.Field != "" {
		sort.SliceStable(docs, func(i, j int) bool {
			less := fieldLess(docs[i].Data, docs[j].Data, order.Field)
			if order.Descending {
				return fieldLess(docs[j].Data, docs[i].Data, order.Field)
			}
			return less
		})
	}
	return docstore.Snapshot{Docs: docs}
}

func matches(data json.RawMessage, preds []docstore.Predicate) bool {
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return false
	}
	for _, p := range preds {
		if fmt.Sprint(fields[p.Field]) != fmt.Sprint(p.Value) {
			return false
		}
	}
	return true
}

// fieldLess compares a top-level field of two raw documents. RFC 3339
// timestamps compare correctly as strings; numbers compare as float64.
func fieldLess(a, b json.RawMessage, field string) bool {
	av, aok := topLevel(a, field)
	bv, bok := topLevel(b, field)
	if !aok || !bok {
		return bok && !aok
	}
	switch x := av.(type) {
	case string:
		if y, ok := bv.(string); ok {
			return x < y
		}
	case float64:
		if y, ok := bv.(float64); ok {
			return x < y
		}
	}
	return false
}

func topLevel(data json.RawMessage, field string) (any, bool) {
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, false
	}
	v, ok := fields[field]
	return v, ok
}
