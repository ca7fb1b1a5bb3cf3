package store

import (
	"context"
	"errors"

	"github.com/lexweave/lexweave/pkg/clause"
)

// TieredStore consults a sequence of stores in order and returns the
// first hit. A slug missing from every tier reports clause.ErrNotFound;
// any other error stops the scan, since an unreachable tier could be
// hiding the authoritative version.
type TieredStore struct {
	tiers []ClauseStore
}

// Tiered layers stores, first tier wins.
func Tiered(tiers ...ClauseStore) *TieredStore {
	return &TieredStore{tiers: tiers}
}

// GetClauseBySlug returns the clause from the first tier that has it.
func (s *TieredStore) GetClauseBySlug(ctx context.Context, scope, slug string) (*clause.Clause, error) {
	for _, tier := range s.tiers {
		c, err := tier.GetClauseBySlug(ctx, scope, slug)
		if err == nil {
			return c, nil
		}
		if !errors.Is(err, clause.ErrNotFound) {
			return nil, err
		}
	}
	return nil, clause.ErrNotFound
}
