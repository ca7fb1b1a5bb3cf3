package store

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"

	"github.com/lexweave/lexweave/pkg/clause"
	"github.com/lexweave/lexweave/pkg/observability"
)

// InstrumentedStore wraps a ClauseStore so every lookup is traced and
// counted. A not-found result is a normal outcome, not an error, so it
// does not hit the error counter.
type InstrumentedStore struct {
	next ClauseStore
	obs  *observability.Provider
}

// Instrument wraps next with the provider's operation tracking.
func Instrument(next ClauseStore, obs *observability.Provider) *InstrumentedStore {
	return &InstrumentedStore{next: next, obs: obs}
}

// GetClauseBySlug delegates to the wrapped store under a tracked span.
func (s *InstrumentedStore) GetClauseBySlug(ctx context.Context, scope, slug string) (*clause.Clause, error) {
	ctx, done := s.obs.TrackOperation(ctx, "store.get_clause",
		attribute.String("company.id", scope),
		attribute.String("clause.slug", slug),
	)
	c, err := s.next.GetClauseBySlug(ctx, scope, slug)
	if errors.Is(err, clause.ErrNotFound) {
		done(nil)
	} else {
		done(err)
	}
	return c, err
}
