package store

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/lexweave/lexweave/pkg/clause"
)

//go:embed schemas/library.schema.json
var librarySchemaJSON string

const librarySchemaURL = "https://lexweave.schemas.local/library.schema.json"

var librarySchema = mustCompileLibrarySchema()

func mustCompileLibrarySchema() *jsonschema.Schema {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	if err := c.AddResource(librarySchemaURL, bytes.NewReader([]byte(librarySchemaJSON))); err != nil {
		panic(fmt.Sprintf("library schema load failed: %v", err))
	}
	return c.MustCompile(librarySchemaURL)
}

// Library is a company-scoped clause library with its templates, as
// authored in YAML.
type Library struct {
	CompanyID string            `yaml:"company_id"`
	Clauses   []clause.Clause   `yaml:"clauses"`
	Templates []clause.Template `yaml:"templates"`
}

// LoadLibrary reads a YAML library file, validates it against the
// embedded JSON Schema, and decodes it. Schema validation runs before
// decoding so authoring mistakes surface as schema errors, not as
// half-decoded structs.
func LoadLibrary(path string) (*Library, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read library file: %w", err)
	}
	return ParseLibrary(data)
}

// ParseLibrary validates and decodes library YAML.
func ParseLibrary(data []byte) (*Library, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse library yaml: %w", err)
	}
	if err := librarySchema.Validate(raw); err != nil {
		return nil, fmt.Errorf("library schema validation failed: %w", err)
	}

	var lib Library
	if err := yaml.Unmarshal(data, &lib); err != nil {
		return nil, fmt.Errorf("decode library: %w", err)
	}
	for i := range lib.Templates {
		if lib.Templates[i].CompanyID == "" {
			lib.Templates[i].CompanyID = lib.CompanyID
		}
	}
	return &lib, nil
}

// Store builds an in-memory clause store from the library contents.
func (l *Library) Store() *MemoryStore {
	s := NewMemoryStore()
	for _, c := range l.Clauses {
		s.Put(l.CompanyID, c)
	}
	return s
}

// Template returns the named template, or nil.
func (l *Library) Template(id string) *clause.Template {
	for i := range l.Templates {
		if l.Templates[i].ID == id {
			return &l.Templates[i]
		}
	}
	return nil
}
