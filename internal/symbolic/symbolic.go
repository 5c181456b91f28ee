package symbolic

// SymbolicValue declares one named free variable together with an optional
// domain predicate constraining its legal assignments. Declared symbolics
// scope every query the engine issues: their constraints are conjoined into
// the global constraint, so counterexample models always respect them.
type SymbolicValue struct {
	Var Var
	// Constraint is a boolean term restricting legal assignments, or nil
	// for an unconstrained symbolic. It usually mentions only Var, but may
	// relate several declared symbolics (a shared cardinality bound, say);
	// all constraints are conjoined, so where one rides is immaterial.
	Constraint Term
}

// Declare introduces an unconstrained symbolic value.
func Declare(name string, of Sort) SymbolicValue {
	return SymbolicValue{Var: Var{Name: name, Of: of}}
}

// DeclareWith introduces a symbolic value whose legal assignments satisfy
// the predicate built by pred from the fresh variable.
func DeclareWith(name string, of Sort, pred func(Term) Term) SymbolicValue {
	v := Var{Name: name, Of: of}
	return SymbolicValue{Var: v, Constraint: pred(v)}
}

// AllConstraints conjoins the domain predicates of every declared symbolic
// value. With no declared symbolics (or none constrained) it is true.
func AllConstraints(symbolics []SymbolicValue) Term {
	var cs []Term
	for _, s := range symbolics {
		if s.Constraint != nil {
			cs = append(cs, s.Constraint)
		}
	}
	return Conj(cs...)
}
