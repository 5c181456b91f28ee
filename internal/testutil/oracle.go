// Package testutil provides deterministic test collaborators.
package testutil

import (
	"context"
	"sync"

	"github.com/alberdingk-thijm/Timepiece/internal/solver"
	"github.com/alberdingk-thijm/Timepiece/internal/symbolic"
)

// Call records one Solve invocation observed by a FakeOracle.
type Call struct {
	Formula symbolic.Term
	Vars    []symbolic.Var
}

// FakeOracle is a scripted solver.Oracle. Every Solve call is recorded and
// answered by Script; with a nil Script every query is answered Unsat. It is
// safe for concurrent use.
type FakeOracle struct {
	// Script decides the verdict of each query. It runs under the oracle's
	// lock, so scripts may read previously recorded calls.
	Script func(formula symbolic.Term, vars []symbolic.Var) (solver.Result, error)

	mu    sync.Mutex
	calls []Call
}

var _ solver.Oracle = (*FakeOracle)(nil)

// Solve records the query and delegates to Script.
func (f *FakeOracle) Solve(_ context.Context, formula symbolic.Term, vars []symbolic.Var) (solver.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, Call{Formula: formula, Vars: append([]symbolic.Var(nil), vars...)})
	if f.Script == nil {
		return solver.Unsat{}, nil
	}
	return f.Script(formula, vars)
}

// Calls returns a copy of the recorded queries in arrival order.
func (f *FakeOracle) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// CallCount returns the number of recorded queries.
func (f *FakeOracle) CallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// ZeroValue returns the zero inhabitant of a sort: false, 0, the empty
// string, the empty option, or the pair of zero components.
func ZeroValue(of symbolic.Sort) symbolic.Value {
	switch s := of.(type) {
	case symbolic.BoolSort:
		return symbolic.VBool(false)
	case symbolic.IntSort:
		return symbolic.VInt(0)
	case symbolic.StringSort:
		return symbolic.VString("")
	case symbolic.OptionSort:
		return symbolic.VNone{Elem: s.Elem}
	case symbolic.PairSort:
		return symbolic.VPair{Fst: ZeroValue(s.Fst), Snd: ZeroValue(s.Snd)}
	default:
		panic("testutil: unhandled sort")
	}
}

// ZeroModel builds a model assigning every variable the zero inhabitant of
// its sort. Scripts use it to fabricate satisfying assignments.
func ZeroModel(vars []symbolic.Var) solver.Model {
	m := make(solver.Model, len(vars))
	for _, v := range vars {
		m[v.Name] = ZeroValue(v.Of)
	}
	return m
}

// HasVar reports whether the variable set of a recorded call contains a
// variable with the given name.
func HasVar(vars []symbolic.Var, name string) bool {
	for _, v := range vars {
		if v.Name == name {
			return true
		}
	}
	return false
}
