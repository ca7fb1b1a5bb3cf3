package assemble

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexweave/lexweave/pkg/clause"
	"github.com/lexweave/lexweave/pkg/store"
)

const testScope = "acme"

func fixedClock() time.Time {
	return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
}

// buildEngine seeds a memory store with the given clauses and returns
// an engine plus a template referencing every clause in order.
func buildEngine(t *testing.T, clauses ...clause.Clause) (*Engine, clause.Template) {
	t.Helper()
	s := store.NewMemoryStore()
	tmpl := clause.Template{ID: "tmpl-1", Name: "Test Template", CompanyID: testScope}
	for i, c := range clauses {
		s.Put(testScope, c)
		tmpl.Clauses = append(tmpl.Clauses, clause.TemplateClause{Slug: c.Slug, SortOrder: i})
	}
	e, err := New(Options{Store: s})
	require.NoError(t, err)
	return e.WithClock(fixedClock), tmpl
}

func TestAssembleConditionalAndSpecificity(t *testing.T) {
	// Two clauses land in the services category: a generic required
	// one and a VoIP one gated on has_voip. Services is not
	// multi-allowed, so the duplicate resolver keeps exactly one, and
	// the VoIP name is the more specific.
	definitions := clause.Clause{
		Slug: "definitions", Name: "Definitions", Category: clause.CategoryDefinitions,
		Type: clause.TypeRequired, IsRequired: true,
		Content: "Defined terms apply.",
	}
	voipServices := clause.Clause{
		Slug: "services", Name: "VoIP Services", Category: clause.CategoryServices,
		Type:       clause.TypeConditional,
		Conditions: []clause.Condition{{Type: "equals", Variable: "has_voip", Value: true}},
		Content:    "VoIP service terms.",
	}
	genericServices := clause.Clause{
		Slug: "services-generic", Name: "General Services", Category: clause.CategoryServices,
		Type: clause.TypeRequired, IsRequired: true,
		Content: "Generic service terms.",
	}

	e, tmpl := buildEngine(t, definitions, voipServices, genericServices)
	result, err := e.Assemble(context.Background(), tmpl, map[string]any{"has_voip": true})
	require.NoError(t, err)

	assert.Contains(t, result.Document, "VoIP service terms.")
	assert.NotContains(t, result.Document, "Generic service terms.")
	assert.Contains(t, result.Receipt.ClauseSlugs, "services")
	assert.NotContains(t, result.Receipt.ClauseSlugs, "services-generic")
}

func TestAssembleConditionalExcluded(t *testing.T) {
	voip := clause.Clause{
		Slug: "voip-terms", Name: "VoIP Terms", Category: clause.CategoryServices,
		Type:       clause.TypeConditional,
		Conditions: []clause.Condition{{Type: "truthy", Variable: "has_voip"}},
		Content:    "VoIP terms.",
	}
	base := clause.Clause{
		Slug: "defs", Name: "Definitions", Category: clause.CategoryDefinitions,
		Type: clause.TypeRequired, IsRequired: true, Content: "Definitions.",
	}

	e, tmpl := buildEngine(t, base, voip)
	result, err := e.Assemble(context.Background(), tmpl, map[string]any{"has_voip": false})
	require.NoError(t, err)

	assert.NotContains(t, result.Document, "VoIP terms.")
	assert.Equal(t, []string{"defs"}, result.Receipt.ClauseSlugs)
}

func TestAssembleDependencyClosure(t *testing.T) {
	// sla is only reachable through services' dependency declaration.
	services := clause.Clause{
		Slug: "services", Name: "Services", Category: clause.CategoryServices,
		Type: clause.TypeRequired, IsRequired: true,
		Dependencies: []string{"sla"},
		Content:      "Service terms per {{services_section_ref}}.",
	}
	sla := clause.Clause{
		Slug: "sla", Name: "Service Levels", Category: clause.CategoryCompliance,
		Type: clause.TypeOptional, Content: "Service level commitments.",
	}

	s := store.NewMemoryStore()
	s.Put(testScope, services)
	s.Put(testScope, sla)
	tmpl := clause.Template{ID: "tmpl-1", CompanyID: testScope,
		Clauses: []clause.TemplateClause{{Slug: "services"}, {Slug: "sla"}}}

	e, err := New(Options{Store: s})
	require.NoError(t, err)

	result, err := e.Assemble(context.Background(), tmpl, nil)
	require.NoError(t, err)
	assert.Contains(t, result.Document, "Service level commitments.")

	// Dependency closure: every included clause has its dependencies included.
	present := map[string]bool{}
	for _, slug := range result.Receipt.ClauseSlugs {
		present[slug] = true
	}
	assert.True(t, present["sla"])
}

func TestAssembleRequiredConflictAborts(t *testing.T) {
	a := clause.Clause{
		Slug: "arbitration", Name: "Mandatory Arbitration", Category: clause.CategoryDispute,
		Type: clause.TypeRequired, IsRequired: true, Conflicts: []string{"litigation"},
		Content: "Arbitration.",
	}
	b := clause.Clause{
		Slug: "litigation", Name: "Court Litigation", Category: clause.CategoryLegal,
		Type: clause.TypeRequired, IsRequired: true,
		Content: "Litigation.",
	}

	e, tmpl := buildEngine(t, a, b)
	_, err := e.Assemble(context.Background(), tmpl, nil)

	var verr *TemplateValidationError
	require.ErrorAs(t, err, &verr)
	require.NotEmpty(t, verr.Issues)
	assert.Contains(t, verr.Issues[0], "Mandatory Arbitration")
	assert.Contains(t, verr.Issues[0], "Court Litigation")
}

func TestAssembleAbsentCategoryReference(t *testing.T) {
	services := clause.Clause{
		Slug: "services", Name: "Services", Category: clause.CategoryServices,
		Type: clause.TypeRequired, IsRequired: true,
		Content: "See {{definitions_section_ref}}.",
	}

	e, tmpl := buildEngine(t, services)
	result, err := e.Assemble(context.Background(), tmpl, nil)
	require.NoError(t, err)

	assert.Contains(t, result.Document, "See DEFINITIONS SECTION NOT PRESENT.")
}

func TestAssembleCrossReferencesSeeFinalNumbering(t *testing.T) {
	defs := clause.Clause{
		Slug: "defs", Name: "Definitions", Category: clause.CategoryDefinitions,
		Type: clause.TypeRequired, IsRequired: true, Content: "Terms.",
	}
	fees := clause.Clause{
		Slug: "fees", Name: "Fees", Category: clause.CategoryFinancial,
		Type: clause.TypeRequired, IsRequired: true,
		Content: "Fees are due per {{financial_section_ref}}.",
	}

	e, tmpl := buildEngine(t, defs, fees)
	result, err := e.Assemble(context.Background(), tmpl, nil)
	require.NoError(t, err)

	assert.Contains(t, result.Document, "Fees are due per Section 2 (FEES AND PAYMENT TERMS).")
}

func TestAssembleDeterministic(t *testing.T) {
	clauses := []clause.Clause{
		{Slug: "defs", Name: "Definitions", Category: clause.CategoryDefinitions,
			Type: clause.TypeRequired, IsRequired: true, Content: "Terms: {{client_name}}."},
		{Slug: "services", Name: "VoIP Services", Category: clause.CategoryServices,
			Type:       clause.TypeConditional,
			Conditions: []clause.Condition{{Type: "truthy", Variable: "has_voip"}},
			Content:    "VoIP per {{definitions_section_ref}}."},
		{Slug: "legal-1", Name: "Governing Law", Category: clause.CategoryLegal,
			Type: clause.TypeOptional, Content: "Law of {{state}}."},
		{Slug: "legal-2", Name: "Severability", Category: clause.CategoryLegal,
			Type: clause.TypeOptional, Content: "Severability."},
	}
	vars := map[string]any{"client_name": "Acme", "has_voip": true, "state": "New York"}

	e, tmpl := buildEngine(t, clauses...)
	first, err := e.Assemble(context.Background(), tmpl, vars)
	require.NoError(t, err)
	second, err := e.Assemble(context.Background(), tmpl, vars)
	require.NoError(t, err)

	assert.Equal(t, first.Document, second.Document, "identical inputs produce byte-identical output")
	assert.Equal(t, first.Receipt.InputHash, second.Receipt.InputHash)
	assert.Equal(t, first.Receipt.OutputHash, second.Receipt.OutputHash)
	assert.NotEqual(t, first.Receipt.RunID, second.Receipt.RunID)
}

func TestAssemblePivotVariableOverrides(t *testing.T) {
	c := clause.Clause{
		Slug: "fees", Name: "Fees", Category: clause.CategoryFinancial,
		Type: clause.TypeRequired, IsRequired: true,
		Content: "Rate: {{hourly_rate}}.",
	}

	s := store.NewMemoryStore()
	s.Put(testScope, c)
	tmpl := clause.Template{ID: "tmpl-1", CompanyID: testScope,
		Clauses: []clause.TemplateClause{{
			Slug:              "fees",
			VariableOverrides: map[string]any{"hourly_rate": 250},
		}}}

	e, err := New(Options{Store: s})
	require.NoError(t, err)

	result, err := e.Assemble(context.Background(), tmpl, map[string]any{"hourly_rate": 100})
	require.NoError(t, err)
	assert.Contains(t, result.Document, "Rate: 250.", "pivot overrides win over caller vars")
}

func TestAssemblePivotRequiredPromotion(t *testing.T) {
	c := clause.Clause{
		Slug: "audit-rights", Name: "Audit Rights", Category: clause.CategoryCompliance,
		Type:       clause.TypeConditional,
		Conditions: []clause.Condition{{Type: "truthy", Variable: "wants_audit"}},
		Content:    "Audit rights.",
	}

	s := store.NewMemoryStore()
	s.Put(testScope, c)
	required := true
	tmpl := clause.Template{ID: "tmpl-1", CompanyID: testScope,
		Clauses: []clause.TemplateClause{{Slug: "audit-rights", Required: &required}}}

	e, err := New(Options{Store: s})
	require.NoError(t, err)

	// No wants_audit variable, but the pivot forces inclusion.
	result, err := e.Assemble(context.Background(), tmpl, nil)
	require.NoError(t, err)
	assert.Contains(t, result.Document, "Audit rights.")
}

func TestAssembleSortOrderRespected(t *testing.T) {
	w1 := clause.Clause{Slug: "w-first", Name: "Warranty One", Category: clause.CategoryWarranties,
		Type: clause.TypeRequired, IsRequired: true, Content: "First warranty."}
	w2 := clause.Clause{Slug: "w-second", Name: "Warranty Two", Category: clause.CategoryWarranties,
		Type: clause.TypeRequired, IsRequired: true, Content: "Second warranty."}

	s := store.NewMemoryStore()
	s.Put(testScope, w1)
	s.Put(testScope, w2)
	// Declared one way, sorted the other.
	tmpl := clause.Template{ID: "tmpl-1", CompanyID: testScope,
		Clauses: []clause.TemplateClause{
			{Slug: "w-first", SortOrder: 2},
			{Slug: "w-second", SortOrder: 1},
		}}

	e, err := New(Options{Store: s})
	require.NoError(t, err)

	result, err := e.Assemble(context.Background(), tmpl, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"w-second", "w-first"}, result.Receipt.ClauseSlugs)
}

func TestAssembleUnknownOperatorWarning(t *testing.T) {
	c := clause.Clause{
		Slug: "odd", Name: "Odd Clause", Category: clause.CategoryLegal,
		Type:       clause.TypeConditional,
		Conditions: []clause.Condition{{Type: "starts_with", Variable: "tier", Value: "g"}},
		Content:    "Odd.",
	}

	e, tmpl := buildEngine(t, c)
	result, err := e.Assemble(context.Background(), tmpl, map[string]any{"tier": "gold"})
	require.NoError(t, err)

	assert.Contains(t, result.Document, "Odd.", "permissive fallback includes the clause")
	require.NotEmpty(t, result.Warnings)
	assert.Contains(t, result.Warnings[0], "starts_with")
}

func TestAssembleDuplicateTemplateReference(t *testing.T) {
	// Referencing the same slug twice must not duplicate the clause:
	// the working set is keyed by slug at every stage, so the body
	// renders once and the receipt lists the slug once.
	law := clause.Clause{
		Slug: "governing-law", Name: "Governing Law", Category: clause.CategoryLegal,
		Type: clause.TypeRequired, IsRequired: true,
		Content: "New York law governs.",
	}

	s := store.NewMemoryStore()
	s.Put(testScope, law)
	tmpl := clause.Template{ID: "tmpl-1", CompanyID: testScope,
		Clauses: []clause.TemplateClause{
			{Slug: "governing-law", SortOrder: 0},
			{Slug: "governing-law", SortOrder: 1},
		}}

	e, err := New(Options{Store: s})
	require.NoError(t, err)

	result, err := e.Assemble(context.Background(), tmpl, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"governing-law"}, result.Receipt.ClauseSlugs)
	assert.Equal(t, 1, strings.Count(result.Document, "New York law governs."))
	assert.NotContains(t, result.Document, "1.1", "a single surviving clause carries no subsection prefix")
}

func TestAssembleMissingTemplateClause(t *testing.T) {
	s := store.NewMemoryStore()
	tmpl := clause.Template{ID: "tmpl-1", CompanyID: testScope,
		Clauses: []clause.TemplateClause{{Slug: "ghost"}}}

	e, err := New(Options{Store: s})
	require.NoError(t, err)

	_, aerr := e.Assemble(context.Background(), tmpl, nil)
	require.Error(t, aerr)
	assert.Contains(t, aerr.Error(), "ghost")
}
