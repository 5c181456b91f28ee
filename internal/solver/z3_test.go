//go:build cgo
// +build cgo

package solver

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alberdingk-thijm/Timepiece/internal/symbolic"
)

func solve(t *testing.T, formula symbolic.Term, vars ...symbolic.Var) Result {
	t.Helper()
	res, err := NewZ3().Solve(context.Background(), formula, vars)
	require.NoError(t, err)
	return res
}

func TestZ3_UnsatContradiction(t *testing.T) {
	x := symbolic.Var{Name: "x", Of: symbolic.IntSort{}}
	formula := symbolic.And{Xs: []symbolic.Term{
		symbolic.Lt{A: x, B: symbolic.IntLit{V: 0}},
		symbolic.Gt{A: x, B: symbolic.IntLit{V: 0}},
	}}
	res := solve(t, formula, x)
	assert.Equal(t, Unsat{}, res)
}

func TestZ3_SatModelCoversVars(t *testing.T) {
	x := symbolic.Var{Name: "x", Of: symbolic.IntSort{}}
	unused := symbolic.Var{Name: "unused", Of: symbolic.BoolSort{}}
	formula := symbolic.Eq{A: x, B: symbolic.IntLit{V: 42}}

	res := solve(t, formula, x, unused)
	sat, ok := res.(Sat)
	require.True(t, ok, "expected sat")
	assert.Equal(t, symbolic.VInt(42), sat.Model["x"])
	// Model completion assigns even variables absent from the formula.
	assert.Contains(t, sat.Model, "unused")
}

func TestZ3_OptionSort(t *testing.T) {
	r := symbolic.Var{Name: "r", Of: symbolic.OptionSort{Elem: symbolic.IntSort{}}}
	formula := symbolic.And{Xs: []symbolic.Term{
		symbolic.IsSome{X: r},
		symbolic.Eq{A: symbolic.Unwrap{X: r}, B: symbolic.IntLit{V: 5}},
	}}

	res := solve(t, formula, r)
	sat, ok := res.(Sat)
	require.True(t, ok)
	assert.True(t, symbolic.SameValue(symbolic.VSome{X: symbolic.VInt(5)}, sat.Model["r"]))
}

func TestZ3_OptionNoneModel(t *testing.T) {
	r := symbolic.Var{Name: "r", Of: symbolic.OptionSort{Elem: symbolic.IntSort{}}}
	res := solve(t, symbolic.IsNone{X: r}, r)
	sat, ok := res.(Sat)
	require.True(t, ok)
	assert.True(t, symbolic.SameValue(symbolic.VNone{Elem: symbolic.IntSort{}}, sat.Model["r"]))
}

func TestZ3_PairSort(t *testing.T) {
	p := symbolic.Var{Name: "p", Of: symbolic.PairSort{Fst: symbolic.IntSort{}, Snd: symbolic.BoolSort{}}}
	formula := symbolic.And{Xs: []symbolic.Term{
		symbolic.Eq{A: symbolic.First{X: p}, B: symbolic.IntLit{V: 7}},
		symbolic.Second{X: p},
	}}

	res := solve(t, formula, p)
	sat, ok := res.(Sat)
	require.True(t, ok)
	assert.True(t, symbolic.SameValue(
		symbolic.VPair{Fst: symbolic.VInt(7), Snd: symbolic.VBool(true)},
		sat.Model["p"],
	))
}

func TestZ3_StringSort(t *testing.T) {
	dest := symbolic.Var{Name: "dest", Of: symbolic.StringSort{}}
	formula := symbolic.Or{Xs: []symbolic.Term{
		symbolic.Eq{A: dest, B: symbolic.StringLit{V: "A"}},
		symbolic.Eq{A: dest, B: symbolic.StringLit{V: "B"}},
	}}

	res := solve(t, formula, dest)
	sat, ok := res.(Sat)
	require.True(t, ok)
	got, isString := sat.Model["dest"].(symbolic.VString)
	require.True(t, isString)
	assert.Contains(t, []symbolic.VString{"A", "B"}, got)
}

func TestZ3_ValidityViaNegation(t *testing.T) {
	// x >= 0 implies x+1 > 0 is valid, so its negation is unsat. This is the
	// engine's query shape.
	x := symbolic.Var{Name: "x", Of: symbolic.IntSort{}}
	implication := symbolic.Implies{
		If:   symbolic.Ge{A: x, B: symbolic.IntLit{V: 0}},
		Then: symbolic.Gt{A: symbolic.Add{Xs: []symbolic.Term{x, symbolic.IntLit{V: 1}}}, B: symbolic.IntLit{V: 0}},
	}
	res := solve(t, symbolic.Not{X: implication}, x)
	assert.Equal(t, Unsat{}, res)
}

func TestZ3_RejectsUndeclaredFormulaVariable(t *testing.T) {
	x := symbolic.Var{Name: "x", Of: symbolic.IntSort{}}
	_, err := NewZ3().Solve(context.Background(), symbolic.Eq{A: x, B: symbolic.IntLit{V: 1}}, nil)
	var oe *OracleError
	require.ErrorAs(t, err, &oe)
	assert.Contains(t, err.Error(), `"x"`)
}

func TestZ3_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewZ3().Solve(ctx, symbolic.BoolLit{V: true}, nil)
	var oe *OracleError
	assert.ErrorAs(t, err, &oe)
}
