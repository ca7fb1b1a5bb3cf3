// Package resolve implements the clause resolution stages: transitive
// dependency closure, duplicate collapse by specificity, and conflict
// arbitration by priority. Every stage is a pure function returning a
// new slice; stored clauses are never mutated.
package resolve

import (
	"context"
	"errors"
	"fmt"

	"github.com/lexweave/lexweave/pkg/clause"
)

// Lookup fetches a clause by slug within a company scope. It is the
// only external dependency of resolution; stores satisfy it.
type Lookup interface {
	GetClauseBySlug(ctx context.Context, scope, slug string) (*clause.Clause, error)
}

// LookupError reports a dependency slug that resolved to nothing,
// with the clause that required it. It is fatal for that dependency
// chain.
type LookupError struct {
	Slug       string
	RequiredBy string
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("dependency %q required by clause %q not found", e.Slug, e.RequiredBy)
}

// CloseDependencies computes the transitive dependency closure of the
// included set. Missing dependencies are pulled first from the
// template's candidate pool, then from the store. Iteration is a
// fixed point: slugs are only ever added, and the pool plus store hits
// bound the passes, so no cycle detection is needed.
//
// Dynamic-definition slugs are satisfied by the definitions generator,
// not by stored clauses, and are skipped.
func CloseDependencies(ctx context.Context, included []clause.Clause, pool []clause.Clause, lookup Lookup, scope string) ([]clause.Clause, error) {
	// The working set is keyed by slug: a duplicate in the included
	// input collapses to its first occurrence.
	out := make([]clause.Clause, 0, len(included))
	present := make(map[string]bool, len(included))
	for _, c := range included {
		if present[c.Slug] {
			continue
		}
		present[c.Slug] = true
		out = append(out, c)
	}
	poolBySlug := make(map[string]clause.Clause, len(pool))
	for _, c := range pool {
		poolBySlug[c.Slug] = c
	}

	for {
		added := false
		// Index ranges over a snapshot of the current length so each
		// pass is complete before additions are scanned.
		n := len(out)
		for i := 0; i < n; i++ {
			for _, dep := range out[i].Dependencies {
				if present[dep] || clause.IsDynamicDefinition(dep) {
					continue
				}
				found, ok := poolBySlug[dep]
				if !ok {
					fetched, err := fetch(ctx, lookup, scope, dep)
					if err != nil {
						if errors.Is(err, clause.ErrNotFound) {
							return nil, &LookupError{Slug: dep, RequiredBy: out[i].Slug}
						}
						return nil, fmt.Errorf("resolve dependency %q of %q: %w", dep, out[i].Slug, err)
					}
					found = *fetched
				}
				out = append(out, found)
				present[dep] = true
				added = true
			}
		}
		if !added {
			return out, nil
		}
	}
}

func fetch(ctx context.Context, lookup Lookup, scope, slug string) (*clause.Clause, error) {
	if lookup == nil {
		return nil, clause.ErrNotFound
	}
	return lookup.GetClauseBySlug(ctx, scope, slug)
}
