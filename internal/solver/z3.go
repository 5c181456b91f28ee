//go:build cgo
// +build cgo

package solver

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/vhavlena/z3-go/z3"

	"github.com/alberdingk-thijm/Timepiece/internal/symbolic"
)

// Z3 is the Z3-backed Oracle. Every Solve call creates a fresh Z3 context
// and solver, translates the term language into Z3 ASTs, and reads the
// model back out. The zero value is usable; options tune timeouts and
// debugging.
type Z3 struct {
	timeout time.Duration
	debug   io.Writer
}

// Z3Option configures a Z3 oracle.
type Z3Option func(*Z3)

// WithTimeout bounds each satisfiability check. A timed-out check surfaces
// as an OracleError, never as a verdict.
func WithTimeout(d time.Duration) Z3Option {
	return func(o *Z3) { o.timeout = d }
}

// WithDebugWriter dumps each queried formula to w before solving. This is
// per-oracle configuration, not process state.
func WithDebugWriter(w io.Writer) Z3Option {
	return func(o *Z3) { o.debug = w }
}

// NewZ3 creates a Z3 oracle.
func NewZ3(opts ...Z3Option) *Z3 {
	o := &Z3{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Solve implements Oracle.
func (o *Z3) Solve(ctx context.Context, formula symbolic.Term, vars []symbolic.Var) (Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, &OracleError{Op: "solve", Err: err}
	}
	if o.debug != nil {
		fmt.Fprintf(o.debug, "solve: %s\n", formula)
	}

	// Reject formulas mentioning variables outside the queried set: their
	// assignments would be silently missing from the model.
	declared := make(map[string]bool, len(vars))
	for _, v := range vars {
		declared[v.Name] = true
	}
	for _, v := range symbolic.Vars(formula) {
		if !declared[v.Name] {
			return nil, &OracleError{Op: "solve", Err: fmt.Errorf("formula mentions undeclared variable %q", v.Name)}
		}
	}

	cfg := z3.NewConfig()
	defer cfg.Close()
	if o.timeout > 0 {
		cfg.SetParam("timeout", fmt.Sprintf("%d", o.timeout.Milliseconds()))
	}
	zctx := z3.NewContext(cfg)
	defer zctx.Close()

	tr := newTranslator(zctx)

	// Declare every queried variable up front so the model covers variables
	// the formula happens not to mention.
	for _, v := range vars {
		if _, err := tr.constant(v); err != nil {
			return nil, &OracleError{Op: "declare " + v.Name, Err: err}
		}
	}

	ast, err := tr.term(formula)
	if err != nil {
		return nil, &OracleError{Op: "translate", Err: err}
	}

	s := zctx.NewSolver()
	defer s.Close()
	s.Assert(ast)

	verdict, err := s.Check()
	switch verdict {
	case z3.Unsat:
		return Unsat{}, nil
	case z3.Sat:
		m := s.Model()
		if m == nil {
			return nil, &OracleError{Op: "model", Err: fmt.Errorf("sat result without model")}
		}
		defer m.Close()
		model := make(Model, len(vars))
		for _, v := range vars {
			val, err := tr.decode(m, v)
			if err != nil {
				return nil, &OracleError{Op: "decode " + v.Name, Err: err}
			}
			model[v.Name] = val
		}
		return Sat{Model: model}, nil
	default:
		if err == nil {
			err = fmt.Errorf("solver returned unknown")
		}
		return nil, &OracleError{Op: "check", Err: err}
	}
}

// optionDecls holds the constructor, recognizer, and accessor declarations
// of one option datatype instance.
type optionDecls struct {
	sort     z3.Sort
	noneName string
	someName string
	mkNone   z3.FuncDecl
	mkSome   z3.FuncDecl
	value    z3.FuncDecl
	isNone   z3.FuncDecl
	isSome   z3.FuncDecl
}

// pairDecls holds the declarations of one pair datatype instance.
type pairDecls struct {
	sort   z3.Sort
	ctor   string
	mkPair z3.FuncDecl
	fst    z3.FuncDecl
	snd    z3.FuncDecl
}

// translator lowers symbolic terms into one Z3 context. Datatype sorts are
// instantiated once per structural sort and cached by key.
type translator struct {
	ctx     *z3.Context
	consts  map[string]z3.AST
	sorts   map[string]symbolic.Sort
	options map[string]optionDecls
	pairs   map[string]pairDecls
}

func newTranslator(ctx *z3.Context) *translator {
	return &translator{
		ctx:     ctx,
		consts:  make(map[string]z3.AST),
		sorts:   make(map[string]symbolic.Sort),
		options: make(map[string]optionDecls),
		pairs:   make(map[string]pairDecls),
	}
}

// sortKey names a sort for datatype instantiation and caching.
func sortKey(s symbolic.Sort) string {
	switch x := s.(type) {
	case symbolic.BoolSort:
		return "bool"
	case symbolic.IntSort:
		return "int"
	case symbolic.StringSort:
		return "str"
	case symbolic.OptionSort:
		return "opt_" + sortKey(x.Elem)
	case symbolic.PairSort:
		return "pair_" + sortKey(x.Fst) + "__" + sortKey(x.Snd)
	default:
		return fmt.Sprintf("unknown_%T", s)
	}
}

func (tr *translator) sort(s symbolic.Sort) (z3.Sort, error) {
	switch x := s.(type) {
	case symbolic.BoolSort:
		return tr.ctx.BoolSort(), nil
	case symbolic.IntSort:
		return tr.ctx.IntSort(), nil
	case symbolic.StringSort:
		return tr.ctx.StringSort(), nil
	case symbolic.OptionSort:
		d, err := tr.option(x)
		if err != nil {
			return z3.Sort{}, err
		}
		return d.sort, nil
	case symbolic.PairSort:
		d, err := tr.pair(x)
		if err != nil {
			return z3.Sort{}, err
		}
		return d.sort, nil
	default:
		return z3.Sort{}, fmt.Errorf("unknown sort variant %T", s)
	}
}

func (tr *translator) option(s symbolic.OptionSort) (optionDecls, error) {
	key := sortKey(s)
	if d, ok := tr.options[key]; ok {
		return d, nil
	}
	elem, err := tr.sort(s.Elem)
	if err != nil {
		return optionDecls{}, err
	}
	noneName := "none_" + key
	someName := "some_" + key
	none := tr.ctx.MkConstructor(noneName, "is_"+noneName, nil)
	some := tr.ctx.MkConstructor(someName, "is_"+someName, []z3.ADTField{
		{Name: "val_" + key, Sort: elem},
	})
	sort, decls := tr.ctx.MkDatatype(key, []*z3.Constructor{none, some})
	d := optionDecls{
		sort:     sort,
		noneName: noneName,
		someName: someName,
		mkNone:   decls[0].Constructor,
		isNone:   decls[0].Recognizer,
		mkSome:   decls[1].Constructor,
		isSome:   decls[1].Recognizer,
		value:    decls[1].Accessors[0],
	}
	tr.options[key] = d
	return d, nil
}

func (tr *translator) pair(s symbolic.PairSort) (pairDecls, error) {
	key := sortKey(s)
	if d, ok := tr.pairs[key]; ok {
		return d, nil
	}
	fst, err := tr.sort(s.Fst)
	if err != nil {
		return pairDecls{}, err
	}
	snd, err := tr.sort(s.Snd)
	if err != nil {
		return pairDecls{}, err
	}
	ctorName := "mk_" + key
	ctor := tr.ctx.MkConstructor(ctorName, "is_"+ctorName, []z3.ADTField{
		{Name: "fst_" + key, Sort: fst},
		{Name: "snd_" + key, Sort: snd},
	})
	sort, decls := tr.ctx.MkDatatype(key, []*z3.Constructor{ctor})
	d := pairDecls{
		sort:   sort,
		ctor:   ctorName,
		mkPair: decls[0].Constructor,
		fst:    decls[0].Accessors[0],
		snd:    decls[0].Accessors[1],
	}
	tr.pairs[key] = d
	return d, nil
}

func (tr *translator) constant(v symbolic.Var) (z3.AST, error) {
	if a, ok := tr.consts[v.Name]; ok {
		if declared, exists := tr.sorts[v.Name]; exists && !symbolic.SameSort(declared, v.Of) {
			return z3.AST{}, fmt.Errorf("variable %q declared with sorts %s and %s", v.Name, declared, v.Of)
		}
		return a, nil
	}
	s, err := tr.sort(v.Of)
	if err != nil {
		return z3.AST{}, err
	}
	a := tr.ctx.Const(v.Name, s)
	tr.consts[v.Name] = a
	tr.sorts[v.Name] = v.Of
	return a, nil
}

func (tr *translator) term(t symbolic.Term) (z3.AST, error) {
	switch x := t.(type) {
	case symbolic.Var:
		return tr.constant(x)
	case symbolic.BoolLit:
		return tr.ctx.BoolVal(x.V), nil
	case symbolic.IntLit:
		return tr.ctx.IntVal(x.V), nil
	case symbolic.StringLit:
		return tr.ctx.StringVal(x.V), nil
	case symbolic.Not:
		a, err := tr.term(x.X)
		if err != nil {
			return z3.AST{}, err
		}
		return a.Not(), nil
	case symbolic.And:
		if len(x.Xs) == 0 {
			return tr.ctx.BoolVal(true), nil
		}
		args, err := tr.terms(x.Xs)
		if err != nil {
			return z3.AST{}, err
		}
		return z3.And(args...), nil
	case symbolic.Or:
		if len(x.Xs) == 0 {
			return tr.ctx.BoolVal(false), nil
		}
		args, err := tr.terms(x.Xs)
		if err != nil {
			return z3.AST{}, err
		}
		return z3.Or(args...), nil
	case symbolic.Implies:
		a, b, err := tr.two(x.If, x.Then)
		if err != nil {
			return z3.AST{}, err
		}
		return z3.Implies(a, b), nil
	case symbolic.Ite:
		c, err := tr.term(x.Cond)
		if err != nil {
			return z3.AST{}, err
		}
		a, b, err := tr.two(x.Then, x.Else)
		if err != nil {
			return z3.AST{}, err
		}
		return z3.Ite(c, a, b), nil
	case symbolic.Eq:
		a, b, err := tr.two(x.A, x.B)
		if err != nil {
			return z3.AST{}, err
		}
		return z3.Eq(a, b), nil
	case symbolic.Lt:
		a, b, err := tr.two(x.A, x.B)
		if err != nil {
			return z3.AST{}, err
		}
		return z3.Lt(a, b), nil
	case symbolic.Le:
		a, b, err := tr.two(x.A, x.B)
		if err != nil {
			return z3.AST{}, err
		}
		return z3.Le(a, b), nil
	case symbolic.Gt:
		a, b, err := tr.two(x.A, x.B)
		if err != nil {
			return z3.AST{}, err
		}
		return z3.Gt(a, b), nil
	case symbolic.Ge:
		a, b, err := tr.two(x.A, x.B)
		if err != nil {
			return z3.AST{}, err
		}
		return z3.Ge(a, b), nil
	case symbolic.Add:
		if len(x.Xs) == 0 {
			return tr.ctx.IntVal(0), nil
		}
		args, err := tr.terms(x.Xs)
		if err != nil {
			return z3.AST{}, err
		}
		return z3.Add(args...), nil
	case symbolic.Sub:
		a, b, err := tr.two(x.A, x.B)
		if err != nil {
			return z3.AST{}, err
		}
		return z3.Sub(a, b), nil
	case symbolic.None:
		d, err := tr.option(symbolic.OptionSort{Elem: x.Elem})
		if err != nil {
			return z3.AST{}, err
		}
		return tr.ctx.App(d.mkNone), nil
	case symbolic.Some:
		inner, err := tr.term(x.X)
		if err != nil {
			return z3.AST{}, err
		}
		elem, err := symbolic.SortOf(x.X)
		if err != nil {
			return z3.AST{}, err
		}
		d, err := tr.option(symbolic.OptionSort{Elem: elem})
		if err != nil {
			return z3.AST{}, err
		}
		return tr.ctx.App(d.mkSome, inner), nil
	case symbolic.IsSome:
		return tr.optionTest(x.X, true)
	case symbolic.IsNone:
		return tr.optionTest(x.X, false)
	case symbolic.Unwrap:
		inner, err := tr.term(x.X)
		if err != nil {
			return z3.AST{}, err
		}
		d, err := tr.optionDeclsFor(x.X)
		if err != nil {
			return z3.AST{}, err
		}
		return tr.ctx.App(d.value, inner), nil
	case symbolic.Pair:
		fst, err := tr.term(x.Fst)
		if err != nil {
			return z3.AST{}, err
		}
		snd, err := tr.term(x.Snd)
		if err != nil {
			return z3.AST{}, err
		}
		sort, err := symbolic.SortOf(x)
		if err != nil {
			return z3.AST{}, err
		}
		d, err := tr.pair(sort.(symbolic.PairSort))
		if err != nil {
			return z3.AST{}, err
		}
		return tr.ctx.App(d.mkPair, fst, snd), nil
	case symbolic.First:
		inner, err := tr.term(x.X)
		if err != nil {
			return z3.AST{}, err
		}
		d, err := tr.pairDeclsFor(x.X)
		if err != nil {
			return z3.AST{}, err
		}
		return tr.ctx.App(d.fst, inner), nil
	case symbolic.Second:
		inner, err := tr.term(x.X)
		if err != nil {
			return z3.AST{}, err
		}
		d, err := tr.pairDeclsFor(x.X)
		if err != nil {
			return z3.AST{}, err
		}
		return tr.ctx.App(d.snd, inner), nil
	default:
		return z3.AST{}, fmt.Errorf("unknown term variant %T", t)
	}
}

func (tr *translator) optionTest(operand symbolic.Term, wantSome bool) (z3.AST, error) {
	inner, err := tr.term(operand)
	if err != nil {
		return z3.AST{}, err
	}
	d, err := tr.optionDeclsFor(operand)
	if err != nil {
		return z3.AST{}, err
	}
	if wantSome {
		return tr.ctx.App(d.isSome, inner), nil
	}
	return tr.ctx.App(d.isNone, inner), nil
}

func (tr *translator) optionDeclsFor(operand symbolic.Term) (optionDecls, error) {
	s, err := symbolic.SortOf(operand)
	if err != nil {
		return optionDecls{}, err
	}
	opt, ok := s.(symbolic.OptionSort)
	if !ok {
		return optionDecls{}, fmt.Errorf("option operation on sort %s", s)
	}
	return tr.option(opt)
}

func (tr *translator) pairDeclsFor(operand symbolic.Term) (pairDecls, error) {
	s, err := symbolic.SortOf(operand)
	if err != nil {
		return pairDecls{}, err
	}
	pair, ok := s.(symbolic.PairSort)
	if !ok {
		return pairDecls{}, fmt.Errorf("pair projection on sort %s", s)
	}
	return tr.pair(pair)
}

func (tr *translator) terms(ts []symbolic.Term) ([]z3.AST, error) {
	out := make([]z3.AST, 0, len(ts))
	for _, t := range ts {
		a, err := tr.term(t)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

func (tr *translator) two(a, b symbolic.Term) (z3.AST, z3.AST, error) {
	x, err := tr.term(a)
	if err != nil {
		return z3.AST{}, z3.AST{}, err
	}
	y, err := tr.term(b)
	if err != nil {
		return z3.AST{}, z3.AST{}, err
	}
	return x, y, nil
}

// decode reads one declared variable back out of a Z3 model, with model
// completion so unconstrained variables still get a value.
func (tr *translator) decode(m *z3.Model, v symbolic.Var) (symbolic.Value, error) {
	a, ok := tr.consts[v.Name]
	if !ok {
		return nil, fmt.Errorf("variable %q was never declared", v.Name)
	}
	return tr.decodeAST(m.Eval(a, true), v.Of)
}

func (tr *translator) decodeAST(a z3.AST, s symbolic.Sort) (symbolic.Value, error) {
	switch x := s.(type) {
	case symbolic.BoolSort:
		b, ok := a.BoolValue()
		if !ok {
			return nil, fmt.Errorf("model value %s is not a boolean literal", a)
		}
		return symbolic.VBool(b), nil
	case symbolic.IntSort:
		i, ok := a.AsInt64()
		if !ok {
			return nil, fmt.Errorf("model value %s is not an integer literal", a)
		}
		return symbolic.VInt(i), nil
	case symbolic.StringSort:
		str, ok := a.AsStringLiteral()
		if !ok {
			return nil, fmt.Errorf("model value %s is not a string literal", a)
		}
		return symbolic.VString(str), nil
	case symbolic.OptionSort:
		d, err := tr.option(x)
		if err != nil {
			return nil, err
		}
		if !a.IsApp() {
			return nil, fmt.Errorf("model value %s is not an option constructor", a)
		}
		switch a.Decl().Name() {
		case d.noneName:
			return symbolic.VNone{Elem: x.Elem}, nil
		case d.someName:
			inner, err := tr.decodeAST(a.Child(0), x.Elem)
			if err != nil {
				return nil, err
			}
			return symbolic.VSome{X: inner}, nil
		default:
			return nil, fmt.Errorf("model value %s is not an option constructor", a)
		}
	case symbolic.PairSort:
		d, err := tr.pair(x)
		if err != nil {
			return nil, err
		}
		if !a.IsApp() || a.Decl().Name() != d.ctor {
			return nil, fmt.Errorf("model value %s is not a pair constructor", a)
		}
		fst, err := tr.decodeAST(a.Child(0), x.Fst)
		if err != nil {
			return nil, err
		}
		snd, err := tr.decodeAST(a.Child(1), x.Snd)
		if err != nil {
			return nil, err
		}
		return symbolic.VPair{Fst: fst, Snd: snd}, nil
	default:
		return nil, fmt.Errorf("unknown sort variant %T", s)
	}
}
