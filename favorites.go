package prodigyfix

import (
	"encoding/json"
	"sort"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/felipe-ssantos/prodigyfix/internal/kv"
)

// FavoritesStore owns the locally persisted set of favorited tutorial ids.
// Every mutation synchronously persists the full set as a JSON array under a
// single key. A corrupt or unreadable persisted value loads as an empty set.
type FavoritesStore struct {
	mu  sync.Mutex
	kv  kv.Store
	key string
	ids map[string]struct{}
}

// NewFavorites loads the persisted set from store under key.
func NewFavorites(store kv.Store, key string) (*FavoritesStore, error) {
	f := &FavoritesStore{kv: store, key: key, ids: make(map[string]struct{})}

	raw, found, err := store.Get(key)
	if err != nil {
		return nil, err
	}
	if found {
		var ids []string
		if err := json.Unmarshal([]byte(raw), &ids); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("favorites: corrupt persisted value, starting empty")
		} else {
			for _, id := range ids {
				f.ids[id] = struct{}{}
			}
		}
	}
	return f, nil
}

// Add marks id as favorited. Idempotent: adding an existing id is a no-op
// and does not rewrite storage.
func (f *FavoritesStore) Add(id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.ids[id]; ok {
		return nil
	}
	f.ids[id] = struct{}{}
	return f.persistLocked()
}

// Remove unmarks id. Idempotent.
func (f *FavoritesStore) Remove(id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.ids[id]; !ok {
		return nil
	}
	delete(f.ids, id)
	return f.persistLocked()
}

// IsFavorite reports whether id is in the set.
func (f *FavoritesStore) IsFavorite(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.ids[id]
	return ok
}

// IDs returns the favorited ids in sorted order.
func (f *FavoritesStore) IDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sortedLocked()
}

// Len returns the set size.
func (f *FavoritesStore) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.ids)
}

func (f *FavoritesStore) persistLocked() error {
	data, err := json.Marshal(f.sortedLocked())
	if err != nil {
		return err
	}
	return f.kv.Set(f.key, string(data))
}

func (f *FavoritesStore) sortedLocked() []string {
	ids := make([]string, 0, len(f.ids))
	for id := range f.ids {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
