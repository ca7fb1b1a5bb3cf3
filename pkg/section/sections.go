// Package section groups resolved clauses into ordered, numbered
// sections and derives the cross-reference variables clause content
// substitutes.
package section

import (
	"sort"

	"github.com/lexweave/lexweave/pkg/clause"
)

// NumberedClause is a resolved clause with its subsection number
// within its section (1..M, in category-group order).
type NumberedClause struct {
	clause.Clause
	Subsection int
}

// Section is a category with an assigned number and its ordered
// clauses. Unnumbered categories (header, signature) carry Number 0.
type Section struct {
	Category clause.Category
	Number   int
	Title    string
	Clauses  []NumberedClause
}

// Numbered reports whether the section renders with a section number.
func (s Section) Numbered() bool { return s.Number > 0 }

// Build groups clauses by category in the fixed precedence order and
// assigns section numbers 1..N, skipping header and signature. Within
// a section, clauses keep their resolution order and are numbered
// 1..M. The grouping is stable so identical inputs always produce
// identical sections.
func Build(clauses []clause.Clause) []Section {
	groups := make(map[clause.Category][]clause.Clause)
	var order []clause.Category
	for _, c := range clauses {
		if _, seen := groups[c.Category]; !seen {
			order = append(order, c.Category)
		}
		groups[c.Category] = append(groups[c.Category], c)
	}

	sort.SliceStable(order, func(i, j int) bool {
		return order[i].Precedence() < order[j].Precedence()
	})

	sections := make([]Section, 0, len(order))
	number := 0
	for _, cat := range order {
		s := Section{Category: cat, Title: cat.Title()}
		if !cat.Unnumbered() {
			number++
			s.Number = number
		}
		for i, c := range groups[cat] {
			s.Clauses = append(s.Clauses, NumberedClause{Clause: c, Subsection: i + 1})
		}
		sections = append(sections, s)
	}
	return sections
}
