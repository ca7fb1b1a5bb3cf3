package store

import (
	"context"
	"sync"

	"github.com/Masterminds/semver/v3"

	"github.com/lexweave/lexweave/pkg/clause"
)

// MemoryStore is an in-memory ClauseStore keyed by (scope, slug).
// When several versions of a slug are added, lookup returns the
// highest semantic version.
type MemoryStore struct {
	mu      sync.RWMutex
	clauses map[string][]clause.Clause // scope\x00slug -> versions
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{clauses: make(map[string][]clause.Clause)}
}

// Put adds a clause to the store under the given scope.
func (s *MemoryStore) Put(scope string, c clause.Clause) {
	key := scope + "\x00" + c.Slug
	s.mu.Lock()
	s.clauses[key] = append(s.clauses[key], c)
	s.mu.Unlock()
}

// GetClauseBySlug returns the highest-versioned clause for the slug in
// scope, or clause.ErrNotFound.
func (s *MemoryStore) GetClauseBySlug(_ context.Context, scope, slug string) (*clause.Clause, error) {
	s.mu.RLock()
	versions := s.clauses[scope+"\x00"+slug]
	s.mu.RUnlock()
	if len(versions) == 0 {
		return nil, clause.ErrNotFound
	}

	best := versions[0]
	bestVer := parseVersion(best.Version)
	for _, c := range versions[1:] {
		v := parseVersion(c.Version)
		if bestVer == nil || (v != nil && v.GreaterThan(bestVer)) {
			best, bestVer = c, v
		}
	}
	out := best
	return &out, nil
}

// parseVersion tolerates unversioned clauses: they sort below any
// parseable version.
func parseVersion(s string) *semver.Version {
	if s == "" {
		return nil
	}
	v, err := semver.NewVersion(s)
	if err != nil {
		return nil
	}
	return v
}
