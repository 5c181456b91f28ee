// Package solver defines the SMT oracle boundary of the verification
// engine.
//
// The engine reduces every proof obligation to one boolean formula and asks
// an Oracle whether it is satisfiable. UNSAT means the obligation is proved;
// SAT comes back with a model assigning every queried variable, which the
// engine turns into a counterexample. Anything else (unknown results,
// resource exhaustion, a crashed backend) is an infrastructure error,
// reported as an error value and never coerced into either verdict.
//
// The production oracle is Z3, reached through the github.com/vhavlena/z3-go
// binding. Each Solve call builds a fresh Z3 context and solver, so calls
// share no state and may run concurrently. The Z3 backend requires cgo; a
// build without cgo gets a stub whose Solve always fails, mirroring the
// binding's own build-tag split.
package solver
