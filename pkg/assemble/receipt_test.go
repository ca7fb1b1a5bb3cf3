package assemble

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexweave/lexweave/pkg/clause"
)

func TestCanonicalHashStable(t *testing.T) {
	// Maps serialize in canonical key order, so logically equal inputs
	// hash equal even when built in different insertion orders.
	a := map[string]any{"client_name": "Acme", "state": "NY", "has_voip": true}
	b := map[string]any{"has_voip": true, "state": "NY", "client_name": "Acme"}

	ha, err := canonicalHash(a)
	require.NoError(t, err)
	hb, err := canonicalHash(b)
	require.NoError(t, err)
	assert.Equal(t, ha, hb)
}

func TestCanonicalHashDistinguishesValues(t *testing.T) {
	ha, err := canonicalHash(map[string]any{"n": 1})
	require.NoError(t, err)
	hb, err := canonicalHash(map[string]any{"n": 2})
	require.NoError(t, err)
	assert.NotEqual(t, ha, hb)
}

func TestReceiptFields(t *testing.T) {
	c := clause.Clause{Slug: "defs", Name: "Definitions", Category: clause.CategoryDefinitions,
		Type: clause.TypeRequired, IsRequired: true, Content: "Terms."}

	e, tmpl := buildEngine(t, c)
	result, err := e.Assemble(context.Background(), tmpl, map[string]any{"client_name": "Acme"})
	require.NoError(t, err)

	r := result.Receipt
	assert.NotEmpty(t, r.RunID)
	assert.Equal(t, tmpl.ID, r.TemplateID)
	assert.Equal(t, testScope, r.CompanyID)
	assert.Equal(t, fixedClock().UTC(), r.GeneratedAt)
	assert.Equal(t, []string{"defs"}, r.ClauseSlugs)
	assert.Len(t, r.InputHash, 64)
	assert.Len(t, r.OutputHash, 64)
}
