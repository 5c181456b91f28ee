// Package network implements the annotated-network verification engine.
//
// A Network packages a topology with the route-computation functions of a
// distributed protocol model: one transfer function per directed edge, a
// merge function joining advertised routes, one initial route per node, and
// the declared symbolic values scoping every query. An AnnotatedNetwork
// adds per-node temporal annotations (the inductive invariants) and the
// properties to prove through them.
//
// Verification reduces each proof obligation to a satisfiability query
//
//	globalConstraint AND assumptions AND NOT(obligation)
//
// discharged by an external solver.Oracle: UNSAT proves the obligation, SAT
// yields a counterexample carrying the falsifying model. CheckAnnotations
// runs the modular proof (base case, then inductive step, then assertions,
// fail-fast); CheckMonolithic independently asks whether the time-erased
// fixed point satisfies the monolithic properties.
//
// The engine is stateless: every check builds fresh formulas over fresh
// variables and shares only the read-only definition, so per-node checks of
// one phase run concurrently without locking. Counterexamples are ordinary
// results, not errors; oracle failures are errors and abort the enclosing
// whole-network check.
//
// The merge function is assumed to be associative, commutative, and
// idempotent with respect to the route-quality order, which is sufficient
// for a unique least fixed point. The engine never verifies this precondition;
// CheckMergeAlgebra offers a sample-based spot check for debugging.
package network
