package assemble

import (
	"fmt"
	"strings"

	"github.com/lexweave/lexweave/pkg/clause"
)

// PageBreak is the marker inserted between rendered sections. The
// downstream PDF/HTML renderer translates it into a real page break.
const PageBreak = `<div class="page-break"></div>`

// assemblyState tracks the single-pass document assembler. The
// machine moves strictly forward; there is no backtracking.
type assemblyState int

const (
	stateBeforeFirstBody assemblyState = iota
	stateInHeaderSection
	stateInNumberedSection
	stateDone
)

// BuildDocument concatenates rendered sections into the final
// document. Header-category bodies are emitted first with no section
// header and no page break. Every later section with nonempty content
// gets a page break (once any output precedes it), a section header
// line, and its clauses' non-empty bodies with subsection numbers.
// Empty bodies are skipped entirely so no stray blank sections appear.
func BuildDocument(sections []RenderedSection) string {
	var b strings.Builder
	state := stateBeforeFirstBody

	for _, s := range sections {
		if s.Category == clause.CategoryHeader {
			for _, rc := range s.Rendered {
				if rc.Body == "" {
					continue
				}
				if state != stateBeforeFirstBody {
					b.WriteString("\n\n")
				}
				b.WriteString(rc.Body)
				state = stateInHeaderSection
			}
			continue
		}

		// Subsection prefixes appear only when more than one body is
		// actually visible, so an empty sibling never strands a lone
		// "N.1" prefix.
		visible := visibleBodies(s)
		if visible == 0 {
			continue
		}

		if state != stateBeforeFirstBody {
			b.WriteString("\n\n")
			b.WriteString(PageBreak)
			b.WriteString("\n\n")
		}
		b.WriteString(sectionHeader(s))
		state = stateInNumberedSection

		for _, rc := range s.Rendered {
			if rc.Body == "" {
				continue
			}
			b.WriteString("\n\n")
			if s.Numbered() && visible > 1 {
				b.WriteString(fmt.Sprintf("%d.%d ", s.Number, rc.Subsection))
			}
			b.WriteString(rc.Body)
		}
	}

	return b.String()
}

func sectionHeader(s RenderedSection) string {
	if !s.Numbered() {
		return s.Title
	}
	return fmt.Sprintf("%d. %s", s.Number, s.Title)
}

func visibleBodies(s RenderedSection) int {
	n := 0
	for _, rc := range s.Rendered {
		if rc.Body != "" {
			n++
		}
	}
	return n
}
