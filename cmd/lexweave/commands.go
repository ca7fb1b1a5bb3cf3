package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/lexweave/lexweave/pkg/assemble"
	"github.com/lexweave/lexweave/pkg/clause"
	"github.com/lexweave/lexweave/pkg/condition"
	"github.com/lexweave/lexweave/pkg/config"
	"github.com/lexweave/lexweave/pkg/observability"
	"github.com/lexweave/lexweave/pkg/store"
)

// buildClauseStore assembles the lookup chain the engine resolves
// against: the library is authoritative, and slugs it lacks fall
// through to the configured backing database (Postgres when
// DatabaseURL is set, otherwise SQLite when SQLitePath is), with the
// Redis read-through cache in front of the backing tier when
// configured. With telemetry on, every lookup is traced.
func buildClauseStore(cfg *config.Config, obs *observability.Provider, lib *store.Library, stderr io.Writer) (store.ClauseStore, int) {
	s := store.ClauseStore(lib.Store())

	var backing store.ClauseStore
	switch {
	case cfg.DatabaseURL != "":
		pg, err := store.OpenPostgresStore(cfg.DatabaseURL)
		if err != nil {
			fmt.Fprintf(stderr, "open postgres store: %v\n", err)
			return nil, 1
		}
		backing = pg
	case cfg.SQLitePath != "":
		sq, err := store.OpenSQLiteStore(cfg.SQLitePath)
		if err != nil {
			fmt.Fprintf(stderr, "open sqlite store: %v\n", err)
			return nil, 1
		}
		backing = sq
	}
	if backing != nil {
		if cfg.RedisAddr != "" {
			client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
			backing = store.NewCachedStore(backing, client, cfg.CacheTTL)
		}
		s = store.Tiered(s, backing)
	}
	if obs != nil {
		s = store.Instrument(s, obs)
	}
	return s, 0
}

func runAssemble(cfg *config.Config, obs *observability.Provider, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("assemble", flag.ContinueOnError)
	fs.SetOutput(stderr)
	libPath := fs.String("library", "", "clause library YAML file")
	templateID := fs.String("template", "", "template id within the library")
	varsPath := fs.String("vars", "", "deal variables JSON file")
	outPath := fs.String("out", "", "write the document here instead of stdout")
	receiptPath := fs.String("receipt", "", "write the assembly receipt JSON here")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	lib, tmpl, code := loadTemplate(*libPath, *templateID, stderr)
	if code != 0 {
		return code
	}

	vars := map[string]any{}
	if *varsPath != "" {
		raw, err := os.ReadFile(*varsPath)
		if err != nil {
			fmt.Fprintf(stderr, "read vars: %v\n", err)
			return 1
		}
		if err := json.Unmarshal(raw, &vars); err != nil {
			fmt.Fprintf(stderr, "parse vars: %v\n", err)
			return 1
		}
	}

	clauses, code := buildClauseStore(cfg, obs, lib, stderr)
	if code != 0 {
		return code
	}
	engine, err := assemble.New(assemble.Options{Store: clauses, Observability: obs})
	if err != nil {
		fmt.Fprintf(stderr, "init engine: %v\n", err)
		return 1
	}

	result, err := engine.Assemble(context.Background(), *tmpl, vars)
	if err != nil {
		var verr *assemble.TemplateValidationError
		if errors.As(err, &verr) {
			fmt.Fprintf(stderr, "template %q is not assemblable:\n", verr.TemplateID)
			for _, issue := range verr.Issues {
				fmt.Fprintf(stderr, "  - %s\n", issue)
			}
			return 1
		}
		fmt.Fprintf(stderr, "assemble: %v\n", err)
		return 1
	}

	for _, w := range result.Warnings {
		fmt.Fprintf(stderr, "warning: %s\n", w)
	}

	if *outPath != "" {
		if err := os.WriteFile(*outPath, []byte(result.Document), 0600); err != nil {
			fmt.Fprintf(stderr, "write document: %v\n", err)
			return 1
		}
	} else {
		fmt.Fprintln(stdout, result.Document)
	}

	if *receiptPath != "" {
		raw, err := json.MarshalIndent(result.Receipt, "", "  ")
		if err != nil {
			fmt.Fprintf(stderr, "encode receipt: %v\n", err)
			return 1
		}
		if err := os.WriteFile(*receiptPath, raw, 0600); err != nil {
			fmt.Fprintf(stderr, "write receipt: %v\n", err)
			return 1
		}
	}
	return 0
}

func runValidate(cfg *config.Config, obs *observability.Provider, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("validate", flag.ContinueOnError)
	fs.SetOutput(stderr)
	libPath := fs.String("library", "", "clause library YAML file")
	templateID := fs.String("template", "", "template id within the library")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	lib, tmpl, code := loadTemplate(*libPath, *templateID, stderr)
	if code != 0 {
		return code
	}

	clauses, code := buildClauseStore(cfg, obs, lib, stderr)
	if code != 0 {
		return code
	}
	engine, err := assemble.New(assemble.Options{Store: clauses, Observability: obs})
	if err != nil {
		fmt.Fprintf(stderr, "init engine: %v\n", err)
		return 1
	}

	report, err := engine.Validate(context.Background(), *tmpl)
	if err != nil {
		fmt.Fprintf(stderr, "validate: %v\n", err)
		return 1
	}

	for _, msg := range report.Errors {
		fmt.Fprintf(stdout, "error: %s\n", msg)
	}
	for _, msg := range report.Warnings {
		fmt.Fprintf(stdout, "warning: %s\n", msg)
	}
	if !report.OK() {
		return 1
	}
	fmt.Fprintf(stdout, "template %q is assemblable\n", tmpl.ID)
	return 0
}

func runLint(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("lint", flag.ContinueOnError)
	fs.SetOutput(stderr)
	libPath := fs.String("library", "", "clause library YAML file")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *libPath == "" {
		fmt.Fprintln(stderr, "lint: -library is required")
		return 2
	}

	lib, err := store.LoadLibrary(*libPath)
	if err != nil {
		fmt.Fprintf(stderr, "load library: %v\n", err)
		return 1
	}

	issues := lintLibrary(lib)
	for _, msg := range issues {
		fmt.Fprintf(stdout, "%s\n", msg)
	}
	if len(issues) > 0 {
		return 1
	}
	fmt.Fprintf(stdout, "library %q is clean (%d clauses)\n", lib.CompanyID, len(lib.Clauses))
	return 0
}

// lintLibrary reports authoring mistakes the engine would otherwise
// paper over at assembly time.
func lintLibrary(lib *store.Library) []string {
	known := map[string]bool{
		condition.OpEquals: true, condition.OpNotEquals: true,
		condition.OpExists: true, condition.OpNotExists: true,
		condition.OpTruthy: true, condition.OpFalsy: true,
		condition.OpContains: true, condition.OpInArray: true,
		condition.OpExpression: true,
	}
	slugs := make(map[string]bool, len(lib.Clauses))
	for _, c := range lib.Clauses {
		slugs[c.Slug] = true
	}

	var issues []string
	for _, c := range lib.Clauses {
		for _, cond := range c.Conditions {
			if !known[cond.Type] {
				issues = append(issues, fmt.Sprintf("clause %q: unknown condition operator %q", c.Slug, cond.Type))
			}
		}
		for _, dep := range c.Dependencies {
			if !slugs[dep] && !clause.IsDynamicDefinition(dep) {
				issues = append(issues, fmt.Sprintf("clause %q: dependency %q not in library", c.Slug, dep))
			}
		}
		if unbalancedConditionals(c.Content) {
			issues = append(issues, fmt.Sprintf("clause %q: unbalanced {{#if}}/{{/if}} tags", c.Slug))
		}
	}
	return issues
}

func unbalancedConditionals(content string) bool {
	return strings.Count(content, "{{#if ") != strings.Count(content, "{{/if}}")
}

func loadTemplate(libPath, templateID string, stderr io.Writer) (*store.Library, *clause.Template, int) {
	if libPath == "" || templateID == "" {
		fmt.Fprintln(stderr, "-library and -template are required")
		return nil, nil, 2
	}
	lib, err := store.LoadLibrary(libPath)
	if err != nil {
		fmt.Fprintf(stderr, "load library: %v\n", err)
		return nil, nil, 1
	}
	tmpl := lib.Template(templateID)
	if tmpl == nil {
		fmt.Fprintf(stderr, "template %q not found in library\n", templateID)
		return nil, nil, 1
	}
	return lib, tmpl, 0
}
