package assemble

import (
	"fmt"
	"strings"
)

// TemplateValidationError aborts assembly before any output is
// produced: the template itself is structurally broken in a way
// resolution cannot arbitrate.
type TemplateValidationError struct {
	TemplateID string
	Issues     []string
}

func (e *TemplateValidationError) Error() string {
	return fmt.Sprintf("template %q failed validation: %s",
		e.TemplateID, strings.Join(e.Issues, "; "))
}

// Report is the pre-assembly validation result for a template. Errors
// are fatal and block assembly; Warnings are advisories (auto-
// resolvable dependencies, unknown condition operators) that do not.
type Report struct {
	TemplateID string   `json:"template_id"`
	Errors     []string `json:"errors,omitempty"`
	Warnings   []string `json:"warnings,omitempty"`
}

// OK reports whether the template may be assembled.
func (r *Report) OK() bool { return len(r.Errors) == 0 }

func (r *Report) addErrorf(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *Report) addWarningf(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}
