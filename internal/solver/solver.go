package solver

import (
	"context"
	"fmt"

	"github.com/alberdingk-thijm/Timepiece/internal/symbolic"
)

// Model maps variable names to the concrete values a satisfying assignment
// gave them.
type Model map[string]symbolic.Value

// Env converts the model into an evaluation environment for replaying
// formulas over it.
func (m Model) Env() symbolic.Env {
	env := make(symbolic.Env, len(m))
	for name, v := range m {
		env[name] = v
	}
	return env
}

// Result is the sealed verdict of a satisfiability query. Only Unsat and
// Sat implement it.
type Result interface {
	isResult() // sealed
}

// Unsat reports that the queried formula has no satisfying assignment.
type Unsat struct{}

// Sat reports satisfiability together with a model covering every variable
// passed to Solve.
type Sat struct {
	Model Model
}

func (Unsat) isResult() {}
func (Sat) isResult()   {}

// Oracle is the external decision procedure. Solve determines whether
// formula is satisfiable and, if so, returns a model assigning each of the
// given variables. Every free variable of the formula must appear in vars;
// variables absent from the formula still get assignments via model
// completion.
//
// Solve calls are synchronous and blocking. Implementations must be safe
// for concurrent use and must not retain references to the arguments.
type Oracle interface {
	Solve(ctx context.Context, formula symbolic.Term, vars []symbolic.Var) (Result, error)
}

// OracleError wraps a failure of the underlying decision procedure:
// unknown results, timeouts, resource exhaustion, or translation failures.
// It is distinct from both verdicts by construction.
type OracleError struct {
	Op  string
	Err error
}

func (e *OracleError) Error() string {
	return fmt.Sprintf("solver: %s: %v", e.Op, e.Err)
}

func (e *OracleError) Unwrap() error {
	return e.Err
}
