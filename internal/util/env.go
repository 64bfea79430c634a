package util

import (
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/loog-project/docdiff/pkg/diffmap"
)

// InstructionEnv is the environment of a filter expression. The expression
// is evaluated once per instruction of an update.
type InstructionEnv struct {
	// Op is "$set" or "$unset".
	Op string
	// Path is the dot-notation path of the instruction.
	Path string
	// Value is the assigned value, nil for $unset.
	Value any
}

func (e InstructionEnv) All() bool {
	return true
}

func (e InstructionEnv) None() bool {
	return false
}

func (e InstructionEnv) IsSet() bool {
	return e.Op == diffmap.OpSet
}

func (e InstructionEnv) IsUnset() bool {
	return e.Op == diffmap.OpUnset
}

// Under reports whether the path is one of prefixes or below one of them.
func (e InstructionEnv) Under(prefixes ...string) bool {
	if len(prefixes) == 0 {
		return true
	}
	for _, prefix := range prefixes {
		if e.Path == prefix || strings.HasPrefix(e.Path, prefix+".") {
			return true
		}
	}
	return false
}

// Depth returns the number of path segments, 1 for top-level fields.
func (e InstructionEnv) Depth() int {
	if e.Path == "" {
		return 0
	}
	return strings.Count(e.Path, ".") + 1
}

// Kind returns the kind of the assigned value, e.g. "object" or "number".
func (e InstructionEnv) Kind() string {
	return diffmap.KindOf(e.Value).String()
}

// CompileFilter compiles a boolean expression over [InstructionEnv].
func CompileFilter(expression string) (*vm.Program, error) {
	return expr.Compile(expression, expr.Env(InstructionEnv{}), expr.AsBool())
}

// FilterByExpr keeps the instructions of u for which program returns true.
func FilterByExpr(u *diffmap.Update, program *vm.Program) (*diffmap.Update, error) {
	filter := diffmap.Filter{}
	var runErr error
	check := func(env InstructionEnv) bool {
		pass, err := expr.Run(program, env)
		if err != nil {
			runErr = fmt.Errorf("filter expression failed on %s %q: %w", env.Op, env.Path, err)
			return false
		}
		if pass.(bool) {
			filter[env.Path] = true
		}
		return true
	}

	u.Unset.Range(func(path string, _ any) bool {
		return check(InstructionEnv{Op: diffmap.OpUnset, Path: path})
	})
	if runErr == nil {
		u.Set.Range(func(path string, value any) bool {
			return check(InstructionEnv{Op: diffmap.OpSet, Path: path, Value: value})
		})
	}
	if runErr != nil {
		return nil, runErr
	}

	if len(filter) == 0 {
		return &diffmap.Update{}, nil
	}
	return diffmap.Minify(u, filter), nil
}
