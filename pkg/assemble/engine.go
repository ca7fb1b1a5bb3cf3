// Package assemble runs the full contract assembly pipeline: condition
// evaluation, dependency closure, duplicate and conflict resolution,
// section numbering, cross-reference generation, rendering, and
// document concatenation. Given an immutable template snapshot and
// variable map the pipeline is a pure function, so two runs over the
// same inputs produce byte-identical output.
package assemble

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/lexweave/lexweave/pkg/clause"
	"github.com/lexweave/lexweave/pkg/condition"
	"github.com/lexweave/lexweave/pkg/observability"
	"github.com/lexweave/lexweave/pkg/render"
	"github.com/lexweave/lexweave/pkg/resolve"
	"github.com/lexweave/lexweave/pkg/section"
	"github.com/lexweave/lexweave/pkg/store"
)

// Engine assembles contracts. It is stateless between invocations and
// safe for concurrent use: each call builds its own working sets.
type Engine struct {
	store     store.ClauseStore
	evaluator *condition.Evaluator
	renderer  *render.Renderer
	obs       *observability.Provider
	clock     func() time.Time
	logger    *slog.Logger
}

// Options configures an Engine. Store is required; everything else has
// a working default.
type Options struct {
	// Store supplies clauses for dependency resolution and template
	// loading. It is wrapped in a call-scoped memo per assembly, so a
	// slow store is hit at most once per slug per call.
	Store store.ClauseStore

	// Definitions generates dynamic definition blocks. May be nil.
	Definitions render.DefinitionsGenerator

	// Observability instruments assembly runs. May be nil.
	Observability *observability.Provider
}

// New creates an Engine.
func New(opts Options) (*Engine, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("assemble: a clause store is required")
	}
	eval, err := condition.NewEvaluator()
	if err != nil {
		return nil, err
	}
	return &Engine{
		store:     opts.Store,
		evaluator: eval,
		renderer:  render.New(opts.Definitions),
		obs:       opts.Observability,
		clock:     time.Now,
		logger:    slog.Default().With("component", "assemble"),
	}, nil
}

// WithClock overrides the clock for deterministic testing.
func (e *Engine) WithClock(clock func() time.Time) *Engine {
	e.clock = clock
	return e
}

// Result is the output of one assembly run.
type Result struct {
	// Document is the final assembled text.
	Document string

	// Sections are the numbered sections with rendered clause bodies,
	// for callers that post-process structure rather than text.
	Sections []RenderedSection

	// Receipt is the determinism audit record for this run.
	Receipt Receipt

	// Warnings are non-fatal degradations observed during the run:
	// permissive condition fallbacks and leftover placeholder scans.
	Warnings []string
}

// RenderedClause pairs a numbered clause with its rendered body.
type RenderedClause struct {
	section.NumberedClause
	Body string
}

// RenderedSection is a section whose clause bodies have been rendered.
type RenderedSection struct {
	section.Section
	Rendered []RenderedClause
}

// Assemble runs the full pipeline for a template and a deal's variable
// map. Validation errors abort before any rendering; rendering-stage
// gaps degrade into Result.Warnings instead of failing, because a
// legal document should not vanish on a minor data gap.
func (e *Engine) Assemble(ctx context.Context, tmpl clause.Template, vars map[string]any) (result *Result, err error) {
	if e.obs != nil {
		var done func(error)
		ctx, done = e.obs.TrackOperation(ctx, "assemble",
			attribute.String("template.id", tmpl.ID),
			attribute.String("company.id", tmpl.CompanyID),
		)
		defer func() { done(err) }()
	}

	// One memo per call: repeated dependency lookups hit the backing
	// store at most once per slug.
	memo := store.Memoize(e.store)
	run := &Engine{
		store:     memo,
		evaluator: e.evaluator,
		renderer:  e.renderer,
		clock:     e.clock,
		logger:    e.logger,
	}
	return run.assemble(ctx, tmpl, vars)
}

func (e *Engine) assemble(ctx context.Context, tmpl clause.Template, vars map[string]any) (*Result, error) {
	pool, err := e.loadPool(ctx, tmpl)
	if err != nil {
		return nil, err
	}

	// Fail fast on structural problems; assembly is all-or-nothing at
	// the validation stage.
	report := e.validatePool(ctx, tmpl, pool)
	if !report.OK() {
		return nil, &TemplateValidationError{TemplateID: tmpl.ID, Issues: report.Errors}
	}

	// Validation advisories ride along so callers see them without a
	// separate Validate call.
	warnings := append([]string(nil), report.Warnings...)

	// Conditional inclusion.
	included := make([]clause.Clause, 0, len(pool))
	for _, c := range pool {
		if c.Type == clause.TypeConditional {
			ok, condWarnings := e.evaluator.EvaluateWithWarnings(c.Conditions, vars)
			warnings = append(warnings, condWarnings...)
			if !ok {
				continue
			}
		}
		included = append(included, c)
	}

	// Dependency closure, then duplicate and conflict resolution.
	resolved, err := resolve.CloseDependencies(ctx, included, pool, e.store, tmpl.CompanyID)
	if err != nil {
		return nil, err
	}
	resolved = resolve.CollapseDuplicates(resolved)
	resolved = resolve.ResolveConflicts(resolved)

	// Sections and cross-references. The augmented variable map is
	// immutable from here on: references are computed from categories,
	// never from clause content, so there is no circularity.
	sections := section.Build(resolved)
	augmented := make(map[string]any, len(vars))
	for k, v := range vars {
		augmented[k] = v
	}
	for k, v := range section.CrossReferences(sections) {
		augmented[k] = v
	}

	// Render each clause with its pivot variable overrides layered on
	// top of the augmented map.
	overrides := pivotOverrides(tmpl)
	rendered := make([]RenderedSection, 0, len(sections))
	for _, s := range sections {
		rs := RenderedSection{Section: s}
		for _, nc := range s.Clauses {
			clauseVars := augmented
			if ov := overrides[nc.Slug]; len(ov) > 0 {
				clauseVars = make(map[string]any, len(augmented)+len(ov))
				for k, v := range augmented {
					clauseVars[k] = v
				}
				for k, v := range ov {
					clauseVars[k] = v
				}
			}
			body := e.renderer.RenderClause(ctx, nc.Content, clauseVars, dynamicDeps(nc.Clause))
			rs.Rendered = append(rs.Rendered, RenderedClause{NumberedClause: nc, Body: body})
		}
		rendered = append(rendered, rs)
	}

	doc := BuildDocument(rendered)

	// Post-render strictness scan. The renderer strips unresolved
	// placeholders, so a leftover marker means malformed source text.
	if strings.Contains(doc, "{{") {
		warnings = append(warnings, "assembled document contains a literal '{{' marker")
	}

	receipt, err := e.newReceipt(tmpl, vars, resolved, doc)
	if err != nil {
		return nil, err
	}

	e.logger.InfoContext(ctx, "assembled contract",
		"template", tmpl.ID,
		"company", tmpl.CompanyID,
		"clauses", len(resolved),
		"sections", len(sections),
		"warnings", len(warnings),
	)

	return &Result{
		Document: doc,
		Sections: rendered,
		Receipt:  receipt,
		Warnings: warnings,
	}, nil
}

// orderedRefs returns the template's clause references sorted stably
// by SortOrder, so untouched references keep declaration order.
func orderedRefs(tmpl clause.Template) []clause.TemplateClause {
	refs := make([]clause.TemplateClause, len(tmpl.Clauses))
	copy(refs, tmpl.Clauses)
	sort.SliceStable(refs, func(i, j int) bool {
		return refs[i].SortOrder < refs[j].SortOrder
	})
	return refs
}

func pivotOverrides(tmpl clause.Template) map[string]map[string]any {
	out := make(map[string]map[string]any, len(tmpl.Clauses))
	for _, tc := range tmpl.Clauses {
		if len(tc.VariableOverrides) > 0 {
			out[tc.Slug] = tc.VariableOverrides
		}
	}
	return out
}

// dynamicDeps lists the clause's dependencies that are satisfied by
// the definitions generator.
func dynamicDeps(c clause.Clause) []string {
	var out []string
	for _, dep := range c.Dependencies {
		if clause.IsDynamicDefinition(dep) {
			out = append(out, dep)
		}
	}
	return out
}
