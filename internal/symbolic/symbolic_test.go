package symbolic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTermSealed(t *testing.T) {
	var _ Term = Var{Name: "x", Of: IntSort{}}
	var _ Term = BoolLit{V: true}
	var _ Term = IntLit{V: 7}
	var _ Term = StringLit{V: "A"}
	var _ Term = None{Elem: IntSort{}}
	var _ Term = Some{X: IntLit{V: 1}}
	var _ Term = Pair{Fst: IntLit{V: 1}, Snd: BoolLit{V: false}}
}

func TestSameSort(t *testing.T) {
	assert.True(t, SameSort(IntSort{}, IntSort{}))
	assert.False(t, SameSort(IntSort{}, BoolSort{}))
	assert.True(t, SameSort(OptionSort{Elem: IntSort{}}, OptionSort{Elem: IntSort{}}))
	assert.False(t, SameSort(OptionSort{Elem: IntSort{}}, OptionSort{Elem: BoolSort{}}))
	assert.True(t, SameSort(
		PairSort{Fst: IntSort{}, Snd: StringSort{}},
		PairSort{Fst: IntSort{}, Snd: StringSort{}},
	))
}

func TestSortOf(t *testing.T) {
	s, err := SortOf(Some{X: IntLit{V: 3}})
	require.NoError(t, err)
	assert.Equal(t, OptionSort{Elem: IntSort{}}, s)

	s, err = SortOf(Unwrap{X: Some{X: IntLit{V: 3}}})
	require.NoError(t, err)
	assert.Equal(t, IntSort{}, s)

	s, err = SortOf(First{X: Pair{Fst: StringLit{V: "A"}, Snd: IntLit{V: 1}}})
	require.NoError(t, err)
	assert.Equal(t, StringSort{}, s)
}

func TestSortOf_IllSorted(t *testing.T) {
	_, err := SortOf(Unwrap{X: IntLit{V: 3}})
	assert.Error(t, err)

	_, err = SortOf(Ite{Cond: BoolLit{V: true}, Then: IntLit{V: 1}, Else: BoolLit{V: false}})
	assert.Error(t, err)

	_, err = SortOf(Var{Name: "x"})
	assert.Error(t, err)
}

func TestConjDisj(t *testing.T) {
	assert.Equal(t, BoolLit{V: true}, Conj())
	assert.Equal(t, BoolLit{V: false}, Disj())

	single := IsSome{X: Var{Name: "r", Of: OptionSort{Elem: IntSort{}}}}
	assert.Equal(t, Term(single), Conj(single))
	assert.Equal(t, Term(single), Disj(single))

	both := Conj(BoolLit{V: true}, BoolLit{V: false})
	assert.IsType(t, And{}, both)
}

func TestEval_Arithmetic(t *testing.T) {
	x := Var{Name: "x", Of: IntSort{}}
	env := Env{"x": VInt(4)}

	v, err := Eval(Add{Xs: []Term{x, IntLit{V: 3}}}, env)
	require.NoError(t, err)
	assert.Equal(t, VInt(7), v)

	v, err = Eval(Sub{A: x, B: IntLit{V: 10}}, env)
	require.NoError(t, err)
	assert.Equal(t, VInt(-6), v)

	b, err := EvalBool(Lt{A: x, B: IntLit{V: 5}}, env)
	require.NoError(t, err)
	assert.True(t, b)

	b, err = EvalBool(Ge{A: x, B: IntLit{V: 5}}, env)
	require.NoError(t, err)
	assert.False(t, b)
}

func TestEval_Options(t *testing.T) {
	r := Var{Name: "r", Of: OptionSort{Elem: IntSort{}}}

	b, err := EvalBool(IsNone{X: r}, Env{"r": VNone{Elem: IntSort{}}})
	require.NoError(t, err)
	assert.True(t, b)

	b, err = EvalBool(IsSome{X: r}, Env{"r": VSome{X: VInt(2)}})
	require.NoError(t, err)
	assert.True(t, b)

	v, err := Eval(Unwrap{X: r}, Env{"r": VSome{X: VInt(2)}})
	require.NoError(t, err)
	assert.Equal(t, VInt(2), v)

	_, err = Eval(Unwrap{X: r}, Env{"r": VNone{Elem: IntSort{}}})
	assert.Error(t, err, "unwrap of none is an evaluation error")
}

func TestEval_BooleanConnectives(t *testing.T) {
	p := Var{Name: "p", Of: BoolSort{}}
	env := Env{"p": VBool(true)}

	b, err := EvalBool(Implies{If: p, Then: BoolLit{V: false}}, env)
	require.NoError(t, err)
	assert.False(t, b)

	b, err = EvalBool(Implies{If: Not{X: p}, Then: BoolLit{V: false}}, env)
	require.NoError(t, err)
	assert.True(t, b, "false antecedent makes the implication true")

	v, err := Eval(Ite{Cond: p, Then: IntLit{V: 1}, Else: IntLit{V: 2}}, env)
	require.NoError(t, err)
	assert.Equal(t, VInt(1), v)
}

func TestEval_EqualityIsStructural(t *testing.T) {
	a := Some{X: Pair{Fst: IntLit{V: 1}, Snd: StringLit{V: "A"}}}
	b := Some{X: Pair{Fst: IntLit{V: 1}, Snd: StringLit{V: "A"}}}
	ok, err := EvalBool(Eq{A: a, B: b}, nil)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = EvalBool(Eq{A: a, B: None{Elem: PairSort{Fst: IntSort{}, Snd: StringSort{}}}}, nil)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEval_UnboundVariable(t *testing.T) {
	_, err := Eval(Var{Name: "ghost", Of: IntSort{}}, Env{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unbound variable "ghost"`)
}

func TestEval_SortMismatch(t *testing.T) {
	_, err := Eval(Var{Name: "x", Of: IntSort{}}, Env{"x": VBool(true)})
	assert.Error(t, err)
}

func TestLiftRoundTrip(t *testing.T) {
	vals := []Value{
		VBool(true),
		VInt(-3),
		VString("edge"),
		VNone{Elem: IntSort{}},
		VSome{X: VInt(9)},
		VPair{Fst: VInt(1), Snd: VString("B")},
	}
	for _, v := range vals {
		got, err := Eval(Lift(v), nil)
		require.NoError(t, err)
		assert.True(t, SameValue(v, got), "lift/eval round trip for %s", v)
	}
}

func TestVars(t *testing.T) {
	x := Var{Name: "x", Of: IntSort{}}
	y := Var{Name: "y", Of: BoolSort{}}
	f := And{Xs: []Term{
		Lt{A: x, B: IntLit{V: 5}},
		Or{Xs: []Term{y, Eq{A: x, B: x}}},
	}}
	assert.Equal(t, []Var{x, y}, Vars(f))
}

func TestAllConstraints(t *testing.T) {
	assert.Equal(t, Term(BoolLit{V: true}), AllConstraints(nil))

	unconstrained := Declare("dest", StringSort{})
	assert.Equal(t, Term(BoolLit{V: true}), AllConstraints([]SymbolicValue{unconstrained}))

	bounded := DeclareWith("t0", IntSort{}, func(v Term) Term {
		return Ge{A: v, B: IntLit{V: 0}}
	})
	got := AllConstraints([]SymbolicValue{unconstrained, bounded})
	ok, err := EvalBool(got, Env{"t0": VInt(3)})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = EvalBool(got, Env{"t0": VInt(-1)})
	require.NoError(t, err)
	assert.False(t, ok)
}
