// Package render performs placeholder substitution and conditional
// block evaluation inside clause content templates.
package render

import (
	"context"
	"log/slog"
	"regexp"
	"strings"

	"github.com/lexweave/lexweave/pkg/clause"
)

var (
	placeholderRe = regexp.MustCompile(`\{\{\s*([a-zA-Z_][a-zA-Z0-9_]*)\s*\}\}`)
	leftoverRe    = regexp.MustCompile(`\{\{[^{}]*\}\}`)
)

// DefinitionsGenerator produces the dynamic definitions text block for
// a clause, keyed by the definition identifiers the clause requires.
// It is an external collaborator; the renderer only substitutes its
// output into the reserved placeholder tokens.
type DefinitionsGenerator interface {
	Generate(ctx context.Context, required []string, vars map[string]any) (string, error)
}

// definitionTokens are the reserved placeholders replaced by the
// definitions generator rather than by plain variable lookup.
var definitionTokens = []string{
	"msp_definitions",
	"voip_definitions",
	"var_definitions",
	"dynamic_definitions",
}

// Renderer substitutes variables into clause content. A nil
// Definitions generator leaves the reserved tokens to the final strip
// pass.
type Renderer struct {
	Definitions DefinitionsGenerator

	logger *slog.Logger
}

// New returns a renderer with the given definitions generator, which
// may be nil.
func New(defs DefinitionsGenerator) *Renderer {
	return &Renderer{
		Definitions: defs,
		logger:      slog.Default().With("component", "render"),
	}
}

// Render substitutes {{variable}} placeholders and evaluates
// {{#if var}}...{{/if}} blocks against vars. Array values are
// serialized. Any placeholder left unresolved is stripped so no
// literal {{...}} survives into output; this is a deliberate lossy
// fallback, never a failure, because a legal document should not
// vanish on a minor data gap.
func (r *Renderer) Render(tmpl string, vars map[string]any) string {
	return r.RenderClause(context.Background(), tmpl, vars, nil)
}

// RenderClause renders one clause's content. requiredDefs lists the
// dynamic-definition identifiers the clause depends on; when the
// content carries a reserved definitions token and a generator is
// configured, the generated block replaces the token before any other
// substitution.
func (r *Renderer) RenderClause(ctx context.Context, tmpl string, vars map[string]any, requiredDefs []string) string {
	out := r.substituteDefinitions(ctx, tmpl, vars, requiredDefs)
	out = evaluateConditionals(out, vars)
	out = substituteVariables(out, vars)
	return strip(out)
}

func (r *Renderer) substituteDefinitions(ctx context.Context, tmpl string, vars map[string]any, requiredDefs []string) string {
	if r.Definitions == nil {
		return tmpl
	}
	for _, token := range definitionTokens {
		needle := "{{" + token + "}}"
		if !strings.Contains(tmpl, needle) {
			continue
		}
		block, err := r.Definitions.Generate(ctx, requiredDefs, vars)
		if err != nil {
			// Degrade: the token falls through to the strip pass.
			r.logger.Warn("definitions generation failed", "token", token, "error", err)
			continue
		}
		tmpl = strings.ReplaceAll(tmpl, needle, block)
	}
	return tmpl
}

// evaluateConditionals resolves {{#if var}}...{{/if}} blocks innermost
// first: a truthy variable keeps the block body, anything else drops
// it.
func evaluateConditionals(tmpl string, vars map[string]any) string {
	const (
		openPrefix = "{{#if "
		openSuffix = "}}"
		closeTag   = "{{/if}}"
	)
	for {
		end := strings.Index(tmpl, closeTag)
		if end < 0 {
			return tmpl
		}
		start := strings.LastIndex(tmpl[:end], openPrefix)
		if start < 0 {
			// Dangling close tag; drop it and continue.
			tmpl = tmpl[:end] + tmpl[end+len(closeTag):]
			continue
		}
		nameEnd := strings.Index(tmpl[start:end], openSuffix)
		if nameEnd < 0 {
			tmpl = tmpl[:end] + tmpl[end+len(closeTag):]
			continue
		}
		name := strings.TrimSpace(tmpl[start+len(openPrefix) : start+nameEnd])
		body := tmpl[start+nameEnd+len(openSuffix) : end]

		replacement := ""
		if clause.FromAny(vars[name]).Truthy() {
			replacement = body
		}
		tmpl = tmpl[:start] + replacement + tmpl[end+len(closeTag):]
	}
}

func substituteVariables(tmpl string, vars map[string]any) string {
	return placeholderRe.ReplaceAllStringFunc(tmpl, func(m string) string {
		name := strings.TrimSpace(m[2 : len(m)-2])
		v, ok := vars[name]
		if !ok {
			return m // left for the strip pass
		}
		return clause.FromAny(v).String()
	})
}

// strip removes any placeholder that survived substitution.
func strip(s string) string {
	return leftoverRe.ReplaceAllString(s, "")
}
