package section

import (
	"fmt"

	"github.com/lexweave/lexweave/pkg/clause"
)

// wellKnownCategories always receive a "{category}_section_ref"
// variable, present in the document or not, so clause authors can use
// stable names. Absent categories resolve to a literal placeholder
// rather than an error or empty string.
var wellKnownCategories = []clause.Category{
	clause.CategoryDefinitions,
	clause.CategoryServices,
	clause.CategoryFinancial,
	clause.CategoryTerm,
	clause.CategoryTermination,
	clause.CategoryWarranties,
	clause.CategoryLiability,
	clause.CategoryConfidentiality,
}

// refAliases maps extra variable names onto categories, for clause
// bodies written against older naming.
var refAliases = map[string]clause.Category{
	"fees_section_ref":          clause.CategoryFinancial,
	"payment_terms_section_ref": clause.CategoryFinancial,
	"scope_section_ref":         clause.CategoryServices,
	"limitation_section_ref":    clause.CategoryLiability,
}

// Ref formats the human-readable pointer for a numbered section.
func Ref(s Section) string {
	return fmt.Sprintf("Section %d (%s)", s.Number, s.Title)
}

// CrossReferences builds the symbol table mapping reference variable
// names to section pointers for every numbered section present, plus
// placeholders for well-known categories that did not make it into the
// document. References are computed from categories after numbering,
// never from clause content, so no circularity with rendering exists.
func CrossReferences(sections []Section) map[string]any {
	byCategory := make(map[clause.Category]string, len(sections))
	for _, s := range sections {
		if s.Numbered() {
			byCategory[s.Category] = Ref(s)
		}
	}

	refs := make(map[string]any)
	for cat, ref := range byCategory {
		refs[refVar(cat)] = ref
	}
	for _, cat := range wellKnownCategories {
		if _, ok := byCategory[cat]; !ok {
			refs[refVar(cat)] = missingRef(cat)
		}
	}
	for alias, cat := range refAliases {
		if ref, ok := byCategory[cat]; ok {
			refs[alias] = ref
		} else {
			refs[alias] = missingRef(cat)
		}
	}
	return refs
}

func refVar(cat clause.Category) string {
	return string(cat) + "_section_ref"
}

func missingRef(cat clause.Category) string {
	return cat.Title() + " SECTION NOT PRESENT"
}
