package symbolic

import "fmt"

// Value is the sealed concrete counterpart of Term. Only VBool, VInt,
// VString, VNone, VSome, and VPair implement it. Values come out of ground
// evaluation and solver models.
type Value interface {
	isValue() // sealed
	String() string
}

// VBool is a concrete boolean.
type VBool bool

// VInt is a concrete integer.
type VInt int64

// VString is a concrete string.
type VString string

// VNone is the absent option value; Elem records the element sort so the
// value remains liftable back into a term.
type VNone struct{ Elem Sort }

// VSome is a present option value.
type VSome struct{ X Value }

// VPair is a concrete product.
type VPair struct{ Fst, Snd Value }

func (VBool) isValue()   {}
func (VInt) isValue()    {}
func (VString) isValue() {}
func (VNone) isValue()   {}
func (VSome) isValue()   {}
func (VPair) isValue()   {}

func (v VBool) String() string   { return fmt.Sprintf("%t", bool(v)) }
func (v VInt) String() string    { return fmt.Sprintf("%d", int64(v)) }
func (v VString) String() string { return fmt.Sprintf("%q", string(v)) }
func (v VNone) String() string   { return "none" }
func (v VSome) String() string   { return fmt.Sprintf("some(%s)", v.X) }
func (v VPair) String() string   { return fmt.Sprintf("(%s, %s)", v.Fst, v.Snd) }

// SameValue reports structural equality of two values. None compares equal
// to None regardless of the recorded element sort: the sort is bookkeeping
// for Lift, not part of the value.
func SameValue(a, b Value) bool {
	switch x := a.(type) {
	case VBool:
		y, ok := b.(VBool)
		return ok && x == y
	case VInt:
		y, ok := b.(VInt)
		return ok && x == y
	case VString:
		y, ok := b.(VString)
		return ok && x == y
	case VNone:
		_, ok := b.(VNone)
		return ok
	case VSome:
		y, ok := b.(VSome)
		return ok && SameValue(x.X, y.X)
	case VPair:
		y, ok := b.(VPair)
		return ok && SameValue(x.Fst, y.Fst) && SameValue(x.Snd, y.Snd)
	default:
		return false
	}
}

// SortOfValue derives the sort of a concrete value.
func SortOfValue(v Value) Sort {
	switch x := v.(type) {
	case VBool:
		return BoolSort{}
	case VInt:
		return IntSort{}
	case VString:
		return StringSort{}
	case VNone:
		return OptionSort{Elem: x.Elem}
	case VSome:
		return OptionSort{Elem: SortOfValue(x.X)}
	case VPair:
		return PairSort{Fst: SortOfValue(x.Fst), Snd: SortOfValue(x.Snd)}
	default:
		panic(fmt.Sprintf("symbolic: unknown value variant %T", v))
	}
}

// Lift converts a concrete value back into a literal term, so simulation
// can feed evaluated routes through term-level transfer and merge
// functions.
func Lift(v Value) Term {
	switch x := v.(type) {
	case VBool:
		return BoolLit{V: bool(x)}
	case VInt:
		return IntLit{V: int64(x)}
	case VString:
		return StringLit{V: string(x)}
	case VNone:
		return None{Elem: x.Elem}
	case VSome:
		return Some{X: Lift(x.X)}
	case VPair:
		return Pair{Fst: Lift(x.Fst), Snd: Lift(x.Snd)}
	default:
		panic(fmt.Sprintf("symbolic: unknown value variant %T", v))
	}
}
