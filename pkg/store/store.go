// Package store provides clause store collaborators: an in-memory
// store, SQLite and Postgres stores, a Redis read-through cache, and
// a YAML library loader with schema validation. All lookups thread an
// explicit company scope; there is no ambient tenant state.
package store

import (
	"context"
	"sync"

	"github.com/lexweave/lexweave/pkg/clause"
)

// ClauseStore supplies clause records by slug within a company scope.
// Stores are read-only during assembly.
type ClauseStore interface {
	GetClauseBySlug(ctx context.Context, scope, slug string) (*clause.Clause, error)
}

// Memoized wraps a store with a call-scoped cache so one assembly pass
// hits the backing store at most once per slug. It is not meant to
// outlive a single assembly call; cross-request caching belongs to
// CachedStore.
type Memoized struct {
	next ClauseStore

	mu   sync.Mutex
	hits map[string]memoEntry
}

type memoEntry struct {
	c   *clause.Clause
	err error
}

// Memoize returns a call-scoped memoizing wrapper around next.
func Memoize(next ClauseStore) *Memoized {
	return &Memoized{next: next, hits: make(map[string]memoEntry)}
}

// GetClauseBySlug returns the memoized result for (scope, slug),
// consulting the backing store on first use. Errors are memoized too:
// a missing slug stays missing for the duration of the pass.
func (m *Memoized) GetClauseBySlug(ctx context.Context, scope, slug string) (*clause.Clause, error) {
	key := scope + "\x00" + slug
	m.mu.Lock()
	e, ok := m.hits[key]
	m.mu.Unlock()
	if ok {
		return e.c, e.err
	}

	c, err := m.next.GetClauseBySlug(ctx, scope, slug)
	m.mu.Lock()
	m.hits[key] = memoEntry{c: c, err: err}
	m.mu.Unlock()
	return c, err
}
