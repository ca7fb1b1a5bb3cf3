package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validLibraryYAML = `
company_id: acme
clauses:
  - slug: definitions
    name: Definitions
    category: definitions
    clause_type: required
    is_required: true
    content: "Defined terms apply throughout this Agreement."
  - slug: voip-services
    name: VoIP Services
    category: services
    clause_type: conditional
    conditions:
      - type: truthy
        variable: has_voip
    content: "VoIP service terms per {{definitions_section_ref}}."
templates:
  - id: msa-standard
    name: Standard MSA
    clauses:
      - slug: definitions
        sort_order: 0
      - slug: voip-services
        sort_order: 1
        variable_overrides:
          support_tier: gold
`

func TestParseLibrary(t *testing.T) {
	lib, err := ParseLibrary([]byte(validLibraryYAML))
	require.NoError(t, err)

	assert.Equal(t, "acme", lib.CompanyID)
	require.Len(t, lib.Clauses, 2)
	assert.Equal(t, "definitions", lib.Clauses[0].Slug)
	require.Len(t, lib.Templates, 1)
	assert.Equal(t, "acme", lib.Templates[0].CompanyID, "templates inherit the library's company scope")
	assert.Equal(t, "gold", lib.Templates[0].Clauses[1].VariableOverrides["support_tier"])
}

func TestParseLibrarySchemaRejectsMissingCompany(t *testing.T) {
	_, err := ParseLibrary([]byte(`
clauses:
  - slug: defs
    name: Definitions
    category: definitions
    clause_type: required
    content: "Terms."
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schema validation failed")
}

func TestParseLibrarySchemaRejectsBadClauseType(t *testing.T) {
	_, err := ParseLibrary([]byte(`
company_id: acme
clauses:
  - slug: defs
    name: Definitions
    category: definitions
    clause_type: mandatory
    content: "Terms."
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schema validation failed")
}

func TestParseLibrarySchemaRejectsBadSlug(t *testing.T) {
	_, err := ParseLibrary([]byte(`
company_id: acme
clauses:
  - slug: "Bad Slug!"
    name: Definitions
    category: definitions
    clause_type: required
    content: "Terms."
`))
	require.Error(t, err)
}

func TestParseLibraryRejectsMalformedYAML(t *testing.T) {
	_, err := ParseLibrary([]byte("company_id: [unclosed"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse library yaml")
}

func TestLoadLibraryFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "library.yaml")
	require.NoError(t, os.WriteFile(path, []byte(validLibraryYAML), 0o600))

	lib, err := LoadLibrary(path)
	require.NoError(t, err)
	assert.Equal(t, "acme", lib.CompanyID)
}

func TestLoadLibraryMissingFile(t *testing.T) {
	_, err := LoadLibrary(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLibraryStoreAndTemplate(t *testing.T) {
	lib, err := ParseLibrary([]byte(validLibraryYAML))
	require.NoError(t, err)

	s := lib.Store()
	c, err := s.GetClauseBySlug(context.Background(), "acme", "voip-services")
	require.NoError(t, err)
	assert.Equal(t, "VoIP Services", c.Name)

	tmpl := lib.Template("msa-standard")
	require.NotNil(t, tmpl)
	assert.Equal(t, "Standard MSA", tmpl.Name)
	assert.Nil(t, lib.Template("nope"))
}
