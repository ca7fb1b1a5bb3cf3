// Package clause defines the data model for the clause assembly engine:
// clauses, templates with per-template pivot overrides, condition
// predicates, and the loosely-typed Value union used when evaluating
// deal variables.
package clause

// ClauseType controls when a clause participates in assembly.
type ClauseType string

const (
	// TypeRequired clauses are always included.
	TypeRequired ClauseType = "required"
	// TypeOptional clauses are included when listed, subject to conflicts.
	TypeOptional ClauseType = "optional"
	// TypeConditional clauses are included only when their conditions hold.
	TypeConditional ClauseType = "conditional"
)

// Condition is a single predicate over the variable map. All conditions
// on a clause are conjoined; authors express OR by adding alternate
// clauses with different condition lists.
type Condition struct {
	// Type is the operator: equals, not_equals, exists, not_exists,
	// truthy, falsy, contains, in_array, or expression (CEL).
	Type string `json:"type" yaml:"type"`

	// Variable is the variable-map key the operator inspects. For
	// expression conditions it is unused.
	Variable string `json:"variable,omitempty" yaml:"variable,omitempty"`

	// Value is the operand compared against the variable. For
	// expression conditions it holds the CEL source.
	Value any `json:"value,omitempty" yaml:"value,omitempty"`
}

// Clause is a reusable block of contract text with composition
// metadata. Clauses are immutable during assembly; resolution stages
// build new working sets rather than mutating stored clauses.
type Clause struct {
	// ID is an opaque identifier, unique within a company scope.
	ID string `json:"id" yaml:"id"`

	// Slug is the human-readable key used for dependency and conflict
	// references.
	Slug string `json:"slug" yaml:"slug"`

	Name     string     `json:"name" yaml:"name"`
	Category Category   `json:"category" yaml:"category"`
	Type     ClauseType `json:"clause_type" yaml:"clause_type"`

	// Version is a semantic version string. Stores that hold multiple
	// versions of a slug return the highest one.
	Version string `json:"version,omitempty" yaml:"version,omitempty"`

	// Content is a text template with {{variable}} placeholders and
	// optional {{#if var}}...{{/if}} blocks.
	Content string `json:"content" yaml:"content"`

	IsRequired bool `json:"is_required" yaml:"is_required"`
	IsSystem   bool `json:"is_system" yaml:"is_system"`

	// Dependencies lists slugs that must be present whenever this
	// clause is present.
	Dependencies []string `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`

	// Conflicts lists slugs that must never co-occur with this clause.
	Conflicts []string `json:"conflicts,omitempty" yaml:"conflicts,omitempty"`

	// Conditions gates inclusion when Type is conditional.
	Conditions []Condition `json:"conditions,omitempty" yaml:"conditions,omitempty"`
}

// TemplateClause is one clause reference inside a template, carrying
// the pivot data owned by the (template, clause) pair.
type TemplateClause struct {
	Slug      string `json:"slug" yaml:"slug"`
	SortOrder int    `json:"sort_order" yaml:"sort_order"`

	// Required, when set, overrides the clause's IsRequired flag for
	// this template only.
	Required *bool `json:"is_required,omitempty" yaml:"is_required,omitempty"`

	// Conditions, when non-nil, replaces the clause's own condition
	// list for this template only.
	Conditions []Condition `json:"conditions,omitempty" yaml:"conditions,omitempty"`

	// VariableOverrides are merged over the caller's variable map when
	// rendering this clause.
	VariableOverrides map[string]any `json:"variable_overrides,omitempty" yaml:"variable_overrides,omitempty"`

	Metadata map[string]any `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// Template is an ordered, company-scoped selection of clauses defining
// one contract shape.
type Template struct {
	ID        string           `json:"id" yaml:"id"`
	Name      string           `json:"name" yaml:"name"`
	CompanyID string           `json:"company_id" yaml:"company_id"`
	Clauses   []TemplateClause `json:"clauses" yaml:"clauses"`
}

// ApplyPivot returns a new Clause with the template's pivot overrides
// applied. The stored clause is never mutated; the returned value keeps
// the same slug so pivot lookups remain addressable.
func ApplyPivot(c Clause, tc TemplateClause) Clause {
	out := c
	if tc.Required != nil {
		out.IsRequired = *tc.Required
		if *tc.Required {
			out.Type = TypeRequired
		}
	}
	if tc.Conditions != nil {
		out.Conditions = tc.Conditions
		if len(tc.Conditions) > 0 && !out.IsRequired {
			out.Type = TypeConditional
		}
	}
	return out
}

// PriorityScore ranks a clause for conflict arbitration. IsRequired
// carries the largest weight, IsSystem a mid weight, and the clause
// type a smaller weight (required > conditional > optional).
func (c Clause) PriorityScore() int {
	score := 0
	if c.IsRequired {
		score += 100
	}
	if c.IsSystem {
		score += 50
	}
	switch c.Type {
	case TypeRequired:
		score += 30
	case TypeConditional:
		score += 20
	case TypeOptional:
		score += 10
	}
	return score
}
