package condition

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"
)

// celEvaluator compiles and runs expression conditions with a program
// cache keyed by source, so repeated assemblies of the same template
// do not recompile.
type celEvaluator struct {
	env   *cel.Env
	mu    sync.RWMutex
	cache map[string]cel.Program
}

func newCELEvaluator() (*celEvaluator, error) {
	env, err := cel.NewEnv(
		cel.Variable("vars", cel.MapType(cel.StringType, cel.DynType)),
	)
	if err != nil {
		return nil, fmt.Errorf("create CEL environment: %w", err)
	}
	return &celEvaluator{
		env:   env,
		cache: make(map[string]cel.Program),
	}, nil
}

func (c *celEvaluator) program(src string) (cel.Program, error) {
	c.mu.RLock()
	prg, ok := c.cache[src]
	c.mu.RUnlock()
	if ok {
		return prg, nil
	}

	ast, issues := c.env.Compile(src)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile: %w", issues.Err())
	}
	prg, err := c.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program: %w", err)
	}

	c.mu.Lock()
	c.cache[src] = prg
	c.mu.Unlock()
	return prg, nil
}

// eval runs the expression with the variable map bound as "vars" and
// requires a boolean result.
func (c *celEvaluator) eval(src string, vars map[string]any) (bool, error) {
	prg, err := c.program(src)
	if err != nil {
		return false, err
	}
	if vars == nil {
		vars = map[string]any{}
	}
	out, _, err := prg.Eval(map[string]any{"vars": vars})
	if err != nil {
		return false, fmt.Errorf("eval: %w", err)
	}
	b, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("expression result is %T, want bool", out.Value())
	}
	return b, nil
}
