package symbolic

import "fmt"

// Sort is the sealed type universe for terms and values. Only BoolSort,
// IntSort, StringSort, OptionSort, and PairSort implement it.
type Sort interface {
	isSort() // sealed
	String() string
}

// BoolSort is the sort of booleans.
type BoolSort struct{}

// IntSort is the sort of unbounded mathematical integers.
type IntSort struct{}

// StringSort is the sort of strings, used for node-valued symbolics such as
// an unknown destination.
type StringSort struct{}

// OptionSort is the sort of optional values over Elem. Routes that start
// absent (no path known yet) live here.
type OptionSort struct {
	Elem Sort
}

// PairSort is the product of two sorts.
type PairSort struct {
	Fst Sort
	Snd Sort
}

func (BoolSort) isSort()   {}
func (IntSort) isSort()    {}
func (StringSort) isSort() {}
func (OptionSort) isSort() {}
func (PairSort) isSort()   {}

func (BoolSort) String() string   { return "bool" }
func (IntSort) String() string    { return "int" }
func (StringSort) String() string { return "string" }

func (s OptionSort) String() string { return fmt.Sprintf("option[%s]", s.Elem) }
func (s PairSort) String() string   { return fmt.Sprintf("pair[%s, %s]", s.Fst, s.Snd) }

// SameSort reports structural equality of two sorts.
func SameSort(a, b Sort) bool {
	switch x := a.(type) {
	case BoolSort:
		_, ok := b.(BoolSort)
		return ok
	case IntSort:
		_, ok := b.(IntSort)
		return ok
	case StringSort:
		_, ok := b.(StringSort)
		return ok
	case OptionSort:
		y, ok := b.(OptionSort)
		return ok && SameSort(x.Elem, y.Elem)
	case PairSort:
		y, ok := b.(PairSort)
		return ok && SameSort(x.Fst, y.Fst) && SameSort(x.Snd, y.Snd)
	default:
		return false
	}
}
