// Package symbolic defines the term language the verification engine builds
// SMT queries from.
//
// The package has three layers:
//
//   - Sort: the multi-sorted type universe (booleans, integers, strings,
//     options, pairs).
//   - Term: a sealed, tagged-variant expression type. Every consumer
//     dispatches with one exhaustive type switch; there is no reflection and
//     no runtime type registry.
//   - Value: concrete counterparts of the sorts, produced by ground
//     evaluation and by solver models.
//
// Terms are plain immutable struct values and may be shared freely across
// goroutines. Ill-sorted terms are representable (construction stays cheap)
// and are rejected when a sort is demanded: SortOf, Eval, and the solver
// translation all fail loudly rather than defaulting.
//
// SymbolicValue declares a named free variable with an optional domain
// predicate; AllConstraints conjoins every declared predicate into the
// global constraint that scopes each engine query.
package symbolic
