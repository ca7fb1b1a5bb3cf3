package section

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexweave/lexweave/pkg/clause"
)

func TestCrossReferencesPresentCategories(t *testing.T) {
	sections := Build([]clause.Clause{
		{Slug: "defs", Category: clause.CategoryDefinitions},
		{Slug: "scope", Category: clause.CategoryServices},
		{Slug: "fees", Category: clause.CategoryFinancial},
	})

	refs := CrossReferences(sections)
	assert.Equal(t, "Section 1 (DEFINITIONS)", refs["definitions_section_ref"])
	assert.Equal(t, "Section 2 (SCOPE OF SERVICES)", refs["services_section_ref"])
	assert.Equal(t, "Section 3 (FEES AND PAYMENT TERMS)", refs["financial_section_ref"])
}

func TestCrossReferencesAbsentCategoryPlaceholder(t *testing.T) {
	refs := CrossReferences(Build([]clause.Clause{
		{Slug: "scope", Category: clause.CategoryServices},
	}))

	require.Contains(t, refs, "definitions_section_ref",
		"well-known categories always get a variable")
	assert.Equal(t, "DEFINITIONS SECTION NOT PRESENT", refs["definitions_section_ref"])
}

func TestCrossReferencesAliases(t *testing.T) {
	refs := CrossReferences(Build([]clause.Clause{
		{Slug: "fees", Category: clause.CategoryFinancial},
	}))

	assert.Equal(t, refs["financial_section_ref"], refs["fees_section_ref"])
	assert.Equal(t, refs["financial_section_ref"], refs["payment_terms_section_ref"])

	// Alias for an absent category resolves to the placeholder.
	assert.Equal(t, "SCOPE OF SERVICES SECTION NOT PRESENT", refs["scope_section_ref"])
}

func TestCrossReferencesSkipUnnumbered(t *testing.T) {
	refs := CrossReferences(Build([]clause.Clause{
		{Slug: "cover", Category: clause.CategoryHeader},
		{Slug: "sign", Category: clause.CategorySignature},
	}))

	assert.NotContains(t, refs, "header_section_ref")
	assert.NotContains(t, refs, "signature_section_ref")
}
