package prodigyfix

// This file defines functional options that configure the Store during
// construction. Keeping them in a standalone file makes it easy to discover
// all available knobs at a glance.

import (
	"fmt"
	"time"
)

// Option configures a Store during construction in New.
// Options must be deterministic and side-effect free.
type Option func(*Store) error

// WithCollections overrides the remote collection names.
func WithCollections(tutorials, categories string) Option {
	return func(s *Store) error {
		if tutorials == "" || categories == "" {
			return fmt.Errorf("collection names must be non-empty")
		}
		s.tutorialsColl = tutorials
		s.categoriesColl = categories
		return nil
	}
}

// WithFavorites attaches a favorites store so Delete can evict the deleted
// tutorial's id from it.
func WithFavorites(f *FavoritesStore) Option {
	return func(s *Store) error {
		s.favorites = f
		return nil
	}
}

// WithQueue tunes the executor used for best-effort remote writes.
func WithQueue(shards, queueSize int) Option {
	return func(s *Store) error {
		if shards <= 0 || queueSize <= 0 {
			return fmt.Errorf("queue shards and size must be > 0")
		}
		s.queueShards = shards
		s.queueSize = queueSize
		return nil
	}
}

// WithClock injects the time source used for timestamp fallbacks and
// createdAt stamping. Tests use this to make normalization deterministic.
func WithClock(now func() time.Time) Option {
	return func(s *Store) error {
		if now == nil {
			return fmt.Errorf("clock must be non-nil")
		}
		s.now = now
		return nil
	}
}
