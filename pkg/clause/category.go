package clause

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Category is the coarse grouping used for section ordering and
// numbering.
type Category string

const (
	CategoryHeader          Category = "header"
	CategoryDefinitions     Category = "definitions"
	CategoryServices        Category = "services"
	CategoryFinancial       Category = "financial"
	CategoryTerm            Category = "term"
	CategoryTermination     Category = "termination"
	CategoryWarranties      Category = "warranties"
	CategoryLiability       Category = "liability"
	CategoryIndemnification Category = "indemnification"
	CategoryConfidentiality Category = "confidentiality"
	CategoryIntellectualIP  Category = "intellectual_property"
	CategoryDataProtection  Category = "data_protection"
	CategoryCompliance      Category = "compliance"
	CategoryDispute         Category = "dispute_resolution"
	CategoryLegal           Category = "legal"
	CategorySignature       Category = "signature"
)

// categoryPrecedence fixes document order. Unknown categories sort
// after every known one.
var categoryPrecedence = map[Category]int{
	CategoryHeader:          0,
	CategoryDefinitions:     1,
	CategoryServices:        2,
	CategoryFinancial:       3,
	CategoryTerm:            4,
	CategoryTermination:     5,
	CategoryWarranties:      6,
	CategoryLiability:       7,
	CategoryIndemnification: 8,
	CategoryConfidentiality: 9,
	CategoryIntellectualIP:  10,
	CategoryDataProtection:  11,
	CategoryCompliance:      12,
	CategoryDispute:         13,
	CategoryLegal:           14,
	CategorySignature:       15,
}

const unknownCategoryPrecedence = 100

// Precedence returns the category's position in the fixed ordering
// table.
func (c Category) Precedence() int {
	if p, ok := categoryPrecedence[c]; ok {
		return p
	}
	return unknownCategoryPrecedence
}

// Unnumbered reports whether the category renders without a section
// number.
func (c Category) Unnumbered() bool {
	return c == CategoryHeader || c == CategorySignature
}

// categoryTitles is the fixed section title table.
var categoryTitles = map[Category]string{
	CategoryDefinitions:     "DEFINITIONS",
	CategoryServices:        "SCOPE OF SERVICES",
	CategoryFinancial:       "FEES AND PAYMENT TERMS",
	CategoryTerm:            "TERM",
	CategoryTermination:     "TERMINATION",
	CategoryWarranties:      "WARRANTIES",
	CategoryLiability:       "LIMITATION OF LIABILITY",
	CategoryIndemnification: "INDEMNIFICATION",
	CategoryConfidentiality: "CONFIDENTIALITY",
	CategoryIntellectualIP:  "INTELLECTUAL PROPERTY",
	CategoryDataProtection:  "DATA PROTECTION",
	CategoryCompliance:      "COMPLIANCE",
	CategoryDispute:         "DISPUTE RESOLUTION",
	CategoryLegal:           "GENERAL PROVISIONS",
	CategorySignature:       "SIGNATURES",
}

var upperCaser = cases.Upper(language.English)

// Title returns the display title for a category, falling back to an
// upper-cased, underscore-to-space transform of the category name.
func (c Category) Title() string {
	if t, ok := categoryTitles[c]; ok {
		return t
	}
	return upperCaser.String(strings.ReplaceAll(string(c), "_", " "))
}

// multiAllowed lists categories where several clauses legitimately
// coexist and the duplicate resolver must not collapse them.
var multiAllowed = map[Category]bool{
	CategoryHeader:     true,
	CategoryLegal:      true,
	CategoryWarranties: true,
	CategoryFinancial:  true,
}

// MultiAllowed reports whether the category admits multiple clauses.
func (c Category) MultiAllowed() bool {
	return multiAllowed[c]
}

// specificityPrefixes ranks known domain markers found in clause
// display names, most specific first. The first substring match wins;
// no match scores as generic.
var specificityPrefixes = []string{
	"voip",
	"msp",
	"var",
	"cloud",
	"managed services",
	"telecom",
	"hardware",
}

// SpecificityScore scans the clause's display name (case-insensitive)
// for a known domain prefix and returns a score where higher means
// more specific. Names with no recognized marker score zero.
func SpecificityScore(name string) int {
	lower := strings.ToLower(name)
	for i, prefix := range specificityPrefixes {
		if strings.Contains(lower, prefix) {
			return len(specificityPrefixes) - i
		}
	}
	return 0
}

// DynamicDefinitionPrefixes are dependency-slug prefixes satisfied by
// the dynamic definitions generator rather than by stored clauses.
// Validation exempts them from missing-dependency checks.
var DynamicDefinitionPrefixes = []string{
	"msp-definitions",
	"voip-definitions",
	"var-definitions",
	"dynamic-definitions",
}

// IsDynamicDefinition reports whether a slug is satisfied by the
// dynamic definitions generator.
func IsDynamicDefinition(slug string) bool {
	for _, p := range DynamicDefinitionPrefixes {
		if strings.HasPrefix(slug, p) {
			return true
		}
	}
	return false
}
