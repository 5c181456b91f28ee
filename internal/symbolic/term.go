package symbolic

import (
	"fmt"
	"sort"
	"strings"
)

// Term is the sealed expression type. Only the variant structs in this file
// implement it. Consumers dispatch with exhaustive type switches; an
// unknown variant is a programming error, not a recoverable condition.
type Term interface {
	isTerm() // sealed
	String() string
}

// Var is a free variable with an explicit sort.
type Var struct {
	Name string
	Of   Sort
}

// BoolLit is a boolean literal.
type BoolLit struct{ V bool }

// IntLit is an integer literal.
type IntLit struct{ V int64 }

// StringLit is a string literal.
type StringLit struct{ V string }

// Not is logical negation.
type Not struct{ X Term }

// And is n-ary conjunction. An empty conjunction is true.
type And struct{ Xs []Term }

// Or is n-ary disjunction. An empty disjunction is false.
type Or struct{ Xs []Term }

// Implies is logical implication.
type Implies struct{ If, Then Term }

// Ite is if-then-else; Then and Else must share a sort.
type Ite struct{ Cond, Then, Else Term }

// Eq is equality between two terms of the same sort.
type Eq struct{ A, B Term }

// Lt, Le, Gt, Ge compare integer terms.
type Lt struct{ A, B Term }
type Le struct{ A, B Term }
type Gt struct{ A, B Term }
type Ge struct{ A, B Term }

// Add is n-ary integer addition.
type Add struct{ Xs []Term }

// Sub subtracts B from A.
type Sub struct{ A, B Term }

// None is the absent option value of sort option[Elem].
type None struct{ Elem Sort }

// Some wraps X in an option.
type Some struct{ X Term }

// IsSome tests whether an option term holds a value.
type IsSome struct{ X Term }

// IsNone tests whether an option term is absent.
type IsNone struct{ X Term }

// Unwrap projects the value out of an option term. Unwrapping None is an
// evaluation error; in formulas the engine guards every Unwrap with IsSome.
type Unwrap struct{ X Term }

// Pair builds a product value.
type Pair struct{ Fst, Snd Term }

// First and Second project a pair.
type First struct{ X Term }
type Second struct{ X Term }

func (Var) isTerm()       {}
func (BoolLit) isTerm()   {}
func (IntLit) isTerm()    {}
func (StringLit) isTerm() {}
func (Not) isTerm()       {}
func (And) isTerm()       {}
func (Or) isTerm()        {}
func (Implies) isTerm()   {}
func (Ite) isTerm()       {}
func (Eq) isTerm()        {}
func (Lt) isTerm()        {}
func (Le) isTerm()        {}
func (Gt) isTerm()        {}
func (Ge) isTerm()        {}
func (Add) isTerm()       {}
func (Sub) isTerm()       {}
func (None) isTerm()      {}
func (Some) isTerm()      {}
func (IsSome) isTerm()    {}
func (IsNone) isTerm()    {}
func (Unwrap) isTerm()    {}
func (Pair) isTerm()      {}
func (First) isTerm()     {}
func (Second) isTerm()    {}

func (t Var) String() string     { return t.Name }
func (t BoolLit) String() string { return fmt.Sprintf("%t", t.V) }
func (t IntLit) String() string  { return fmt.Sprintf("%d", t.V) }
func (t StringLit) String() string {
	return fmt.Sprintf("%q", t.V)
}
func (t Not) String() string { return fmt.Sprintf("(not %s)", t.X) }
func (t And) String() string { return nary("and", t.Xs) }
func (t Or) String() string  { return nary("or", t.Xs) }
func (t Implies) String() string {
	return fmt.Sprintf("(=> %s %s)", t.If, t.Then)
}
func (t Ite) String() string {
	return fmt.Sprintf("(ite %s %s %s)", t.Cond, t.Then, t.Else)
}
func (t Eq) String() string     { return fmt.Sprintf("(= %s %s)", t.A, t.B) }
func (t Lt) String() string     { return fmt.Sprintf("(< %s %s)", t.A, t.B) }
func (t Le) String() string     { return fmt.Sprintf("(<= %s %s)", t.A, t.B) }
func (t Gt) String() string     { return fmt.Sprintf("(> %s %s)", t.A, t.B) }
func (t Ge) String() string     { return fmt.Sprintf("(>= %s %s)", t.A, t.B) }
func (t Add) String() string    { return nary("+", t.Xs) }
func (t Sub) String() string    { return fmt.Sprintf("(- %s %s)", t.A, t.B) }
func (t None) String() string   { return fmt.Sprintf("(none %s)", t.Elem) }
func (t Some) String() string   { return fmt.Sprintf("(some %s)", t.X) }
func (t IsSome) String() string { return fmt.Sprintf("(is-some %s)", t.X) }
func (t IsNone) String() string { return fmt.Sprintf("(is-none %s)", t.X) }
func (t Unwrap) String() string { return fmt.Sprintf("(unwrap %s)", t.X) }
func (t Pair) String() string   { return fmt.Sprintf("(pair %s %s)", t.Fst, t.Snd) }
func (t First) String() string  { return fmt.Sprintf("(first %s)", t.X) }
func (t Second) String() string { return fmt.Sprintf("(second %s)", t.X) }

func nary(op string, xs []Term) string {
	parts := make([]string, 0, len(xs)+1)
	parts = append(parts, op)
	for _, x := range xs {
		parts = append(parts, x.String())
	}
	return "(" + strings.Join(parts, " ") + ")"
}

// Conj builds a conjunction, flattening the trivial cases: no arguments
// yield true and a single argument is returned unwrapped.
func Conj(xs ...Term) Term {
	switch len(xs) {
	case 0:
		return BoolLit{V: true}
	case 1:
		return xs[0]
	default:
		return And{Xs: xs}
	}
}

// Disj builds a disjunction, flattening the trivial cases: no arguments
// yield false and a single argument is returned unwrapped.
func Disj(xs ...Term) Term {
	switch len(xs) {
	case 0:
		return BoolLit{V: false}
	case 1:
		return xs[0]
	default:
		return Or{Xs: xs}
	}
}

// SortOf derives the sort of a term structurally. It fails on ill-sorted
// terms such as Unwrap of a non-option or an Ite whose branches disagree.
func SortOf(t Term) (Sort, error) {
	switch x := t.(type) {
	case Var:
		if x.Of == nil {
			return nil, fmt.Errorf("symbolic: variable %q has no sort", x.Name)
		}
		return x.Of, nil
	case BoolLit, Not, And, Or, Implies, Eq, Lt, Le, Gt, Ge, IsSome, IsNone:
		return BoolSort{}, nil
	case IntLit, Add, Sub:
		return IntSort{}, nil
	case StringLit:
		return StringSort{}, nil
	case Ite:
		thenSort, err := SortOf(x.Then)
		if err != nil {
			return nil, err
		}
		elseSort, err := SortOf(x.Else)
		if err != nil {
			return nil, err
		}
		if !SameSort(thenSort, elseSort) {
			return nil, fmt.Errorf("symbolic: ite branches have sorts %s and %s", thenSort, elseSort)
		}
		return thenSort, nil
	case None:
		return OptionSort{Elem: x.Elem}, nil
	case Some:
		elem, err := SortOf(x.X)
		if err != nil {
			return nil, err
		}
		return OptionSort{Elem: elem}, nil
	case Unwrap:
		inner, err := SortOf(x.X)
		if err != nil {
			return nil, err
		}
		opt, ok := inner.(OptionSort)
		if !ok {
			return nil, fmt.Errorf("symbolic: unwrap of non-option sort %s", inner)
		}
		return opt.Elem, nil
	case Pair:
		fst, err := SortOf(x.Fst)
		if err != nil {
			return nil, err
		}
		snd, err := SortOf(x.Snd)
		if err != nil {
			return nil, err
		}
		return PairSort{Fst: fst, Snd: snd}, nil
	case First:
		inner, err := SortOf(x.X)
		if err != nil {
			return nil, err
		}
		pair, ok := inner.(PairSort)
		if !ok {
			return nil, fmt.Errorf("symbolic: first of non-pair sort %s", inner)
		}
		return pair.Fst, nil
	case Second:
		inner, err := SortOf(x.X)
		if err != nil {
			return nil, err
		}
		pair, ok := inner.(PairSort)
		if !ok {
			return nil, fmt.Errorf("symbolic: second of non-pair sort %s", inner)
		}
		return pair.Snd, nil
	default:
		return nil, fmt.Errorf("symbolic: unknown term variant %T", t)
	}
}

// Vars collects the free variables of a term, deduplicated and sorted by
// name.
func Vars(t Term) []Var {
	seen := make(map[string]Var)
	collectVars(t, seen)
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]Var, 0, len(names))
	for _, name := range names {
		out = append(out, seen[name])
	}
	return out
}

func collectVars(t Term, seen map[string]Var) {
	switch x := t.(type) {
	case Var:
		seen[x.Name] = x
	case BoolLit, IntLit, StringLit, None:
	case Not:
		collectVars(x.X, seen)
	case And:
		for _, y := range x.Xs {
			collectVars(y, seen)
		}
	case Or:
		for _, y := range x.Xs {
			collectVars(y, seen)
		}
	case Implies:
		collectVars(x.If, seen)
		collectVars(x.Then, seen)
	case Ite:
		collectVars(x.Cond, seen)
		collectVars(x.Then, seen)
		collectVars(x.Else, seen)
	case Eq:
		collectVars(x.A, seen)
		collectVars(x.B, seen)
	case Lt:
		collectVars(x.A, seen)
		collectVars(x.B, seen)
	case Le:
		collectVars(x.A, seen)
		collectVars(x.B, seen)
	case Gt:
		collectVars(x.A, seen)
		collectVars(x.B, seen)
	case Ge:
		collectVars(x.A, seen)
		collectVars(x.B, seen)
	case Add:
		for _, y := range x.Xs {
			collectVars(y, seen)
		}
	case Sub:
		collectVars(x.A, seen)
		collectVars(x.B, seen)
	case Some:
		collectVars(x.X, seen)
	case IsSome:
		collectVars(x.X, seen)
	case IsNone:
		collectVars(x.X, seen)
	case Unwrap:
		collectVars(x.X, seen)
	case Pair:
		collectVars(x.Fst, seen)
		collectVars(x.Snd, seen)
	case First:
		collectVars(x.X, seen)
	case Second:
		collectVars(x.X, seen)
	}
}
