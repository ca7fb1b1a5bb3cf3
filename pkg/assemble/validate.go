package assemble

import (
	"context"
	"errors"
	"fmt"

	"github.com/lexweave/lexweave/pkg/clause"
	"github.com/lexweave/lexweave/pkg/condition"
	"github.com/lexweave/lexweave/pkg/resolve"
)

// knownOperators is the set the condition evaluator recognizes.
// Anything else falls through to the permissive default and is worth a
// warning, since it is almost always an authoring typo.
var knownOperators = map[string]bool{
	condition.OpEquals:     true,
	condition.OpNotEquals:  true,
	condition.OpExists:     true,
	condition.OpNotExists:  true,
	condition.OpTruthy:     true,
	condition.OpFalsy:      true,
	condition.OpContains:   true,
	condition.OpInArray:    true,
	condition.OpExpression: true,
}

// Validate checks a template for structural problems before assembly:
// dependencies referenced but absent from the template's clause set,
// and conflicting clause pairs both present. Dynamic-definition
// identifiers are exempt from missing-dependency checks. A dependency
// that is absent from the template but resolvable from the store is a
// warning (resolution will pull it in); one the store cannot supply is
// an error, as is a mutual conflict between two required clauses.
func (e *Engine) Validate(ctx context.Context, tmpl clause.Template) (*Report, error) {
	pool, err := e.loadPool(ctx, tmpl)
	if err != nil {
		return nil, err
	}
	return e.validatePool(ctx, tmpl, pool), nil
}

func (e *Engine) validatePool(ctx context.Context, tmpl clause.Template, pool []clause.Clause) *Report {
	report := &Report{TemplateID: tmpl.ID}

	inTemplate := make(map[string]bool, len(pool))
	for _, c := range pool {
		inTemplate[c.Slug] = true
	}

	for _, c := range pool {
		for _, dep := range c.Dependencies {
			if inTemplate[dep] || clause.IsDynamicDefinition(dep) {
				continue
			}
			_, err := e.store.GetClauseBySlug(ctx, tmpl.CompanyID, dep)
			switch {
			case err == nil:
				report.addWarningf("clause %q depends on %q, which is not in the template and will be pulled in from the store", c.Name, dep)
			case errors.Is(err, clause.ErrNotFound):
				report.addErrorf("clause %q depends on %q, which is in neither the template nor the clause store", c.Name, dep)
			default:
				report.addErrorf("clause %q: dependency %q lookup failed: %v", c.Name, dep, err)
			}
		}

		for _, cond := range c.Conditions {
			if !knownOperators[cond.Type] {
				report.addWarningf("clause %q uses unknown condition operator %q on variable %q; it will evaluate as true", c.Name, cond.Type, cond.Variable)
			}
		}
	}

	for _, pair := range resolve.ConflictPairs(pool) {
		a, b := pair[0], pair[1]
		if a.IsRequired && b.IsRequired {
			report.addErrorf("required clauses %q and %q conflict with each other and cannot both be included", a.Name, b.Name)
		} else {
			report.addWarningf("clauses %q and %q conflict; the higher-priority clause will be kept", a.Name, b.Name)
		}
	}

	return report
}

// loadPool fetches every clause the template references, in template
// order, with pivot overrides applied. The order is SortOrder when
// set, otherwise declaration order; the sort is stable so equal keys
// keep their declared positions. The pool is a set keyed by slug: a
// template referencing the same slug twice contributes one entry, the
// first reference in order.
func (e *Engine) loadPool(ctx context.Context, tmpl clause.Template) ([]clause.Clause, error) {
	refs := orderedRefs(tmpl)
	pool := make([]clause.Clause, 0, len(refs))
	seen := make(map[string]bool, len(refs))
	for _, tc := range refs {
		if seen[tc.Slug] {
			continue
		}
		seen[tc.Slug] = true
		c, err := e.store.GetClauseBySlug(ctx, tmpl.CompanyID, tc.Slug)
		if err != nil {
			if errors.Is(err, clause.ErrNotFound) {
				return nil, &resolve.LookupError{Slug: tc.Slug, RequiredBy: tmpl.ID}
			}
			return nil, fmt.Errorf("load clause %q for template %q: %w", tc.Slug, tmpl.ID, err)
		}
		pool = append(pool, clause.ApplyPivot(*c, tc))
	}
	return pool, nil
}
