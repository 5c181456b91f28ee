package network

import (
	"fmt"
	"sort"
	"strings"

	"github.com/alberdingk-thijm/Timepiece/internal/solver"
	"github.com/alberdingk-thijm/Timepiece/internal/symbolic"
	"github.com/alberdingk-thijm/Timepiece/internal/topology"
)

// CheckKind names the proof obligation a counterexample falsifies.
type CheckKind int

const (
	// KindBase is the base case: the initial route satisfies the annotation
	// at time 0.
	KindBase CheckKind = iota
	// KindInductive is the inductive step: annotated neighbor routes at t-1
	// imply the annotated merged route at t.
	KindInductive
	// KindSafety is the assertion check: the annotation implies the modular
	// property.
	KindSafety
	// KindMonolithic is the fixed-point check: a solution of the update
	// equations satisfies the monolithic properties.
	KindMonolithic
)

func (k CheckKind) String() string {
	switch k {
	case KindBase:
		return "base"
	case KindInductive:
		return "inductive"
	case KindSafety:
		return "safety"
	case KindMonolithic:
		return "monolithic"
	default:
		return fmt.Sprintf("CheckKind(%d)", int(k))
	}
}

// Counterexample is a sealed tagged union over the falsifying models of the
// four check kinds. Each variant carries exactly the fields relevant to its
// kind, plus the concrete assignment of every declared symbolic value.
//
// A counterexample is a successfully computed negative verdict, not an
// error.
type Counterexample interface {
	isCounterexample() // sealed

	// Kind names the failed check.
	Kind() CheckKind

	// Summary is a one-line description for logs.
	Summary() string
}

// BaseCounterexample falsifies a node's base case.
type BaseCounterexample struct {
	// Node is the failing node.
	Node topology.Node
	// Route is the node's initial route in the falsifying model.
	Route symbolic.Value
	// Assignment gives every declared symbolic value's concrete assignment.
	Assignment solver.Model
}

// InductiveCounterexample falsifies a node's inductive step.
type InductiveCounterexample struct {
	// Node is the failing node.
	Node topology.Node
	// Route is the merged route the node computes at the witness time.
	Route symbolic.Value
	// NeighborRoutes gives each predecessor's annotated route at the
	// preceding time.
	NeighborRoutes map[topology.Node]symbolic.Value
	// Time is the witness time at which the annotation breaks.
	Time symbolic.Value
	// Assignment gives every declared symbolic value's concrete assignment.
	Assignment solver.Model
}

// SafetyCounterexample falsifies the implication from a node's annotation
// to its modular property.
type SafetyCounterexample struct {
	// Node is the failing node.
	Node topology.Node
	// Route is an annotated route that violates the property.
	Route symbolic.Value
	// Time is the witness time.
	Time symbolic.Value
	// Assignment gives every declared symbolic value's concrete assignment.
	Assignment solver.Model
}

// MonolithicCounterexample falsifies the time-erased fixed-point check.
type MonolithicCounterexample struct {
	// Routes is the fixed-point route of every node in the falsifying
	// model.
	Routes map[topology.Node]symbolic.Value
	// FailingNodes lists the nodes whose monolithic property the fixed
	// point violates, in node order.
	FailingNodes []topology.Node
	// Assignment gives every declared symbolic value's concrete assignment.
	Assignment solver.Model
}

func (BaseCounterexample) isCounterexample()       {}
func (InductiveCounterexample) isCounterexample()  {}
func (SafetyCounterexample) isCounterexample()     {}
func (MonolithicCounterexample) isCounterexample() {}

func (BaseCounterexample) Kind() CheckKind       { return KindBase }
func (InductiveCounterexample) Kind() CheckKind  { return KindInductive }
func (SafetyCounterexample) Kind() CheckKind     { return KindSafety }
func (MonolithicCounterexample) Kind() CheckKind { return KindMonolithic }

func (c BaseCounterexample) Summary() string {
	return fmt.Sprintf("base case fails at node %s: initial route %s violates its annotation at time 0", c.Node, c.Route)
}

func (c InductiveCounterexample) Summary() string {
	return fmt.Sprintf("inductive step fails at node %s: merged route %s violates its annotation at time %s", c.Node, c.Route, c.Time)
}

func (c SafetyCounterexample) Summary() string {
	return fmt.Sprintf("safety fails at node %s: annotated route %s violates the property at time %s", c.Node, c.Route, c.Time)
}

func (c MonolithicCounterexample) Summary() string {
	names := make([]string, 0, len(c.FailingNodes))
	for _, n := range c.FailingNodes {
		names = append(names, string(n))
	}
	return fmt.Sprintf("monolithic check fails: fixed point violates properties at %s", strings.Join(names, ", "))
}

// symbolicAssignment restricts a model to the declared symbolic values, in
// stable order when rendered.
func symbolicAssignment(symbolics []symbolic.SymbolicValue, m solver.Model) solver.Model {
	out := make(solver.Model, len(symbolics))
	for _, s := range symbolics {
		if v, ok := m[s.Var.Name]; ok {
			out[s.Var.Name] = v
		}
	}
	return out
}

// SortedAssignment renders a model's entries in name order, for
// deterministic reports.
func SortedAssignment(m solver.Model) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]string, 0, len(names))
	for _, name := range names {
		out = append(out, fmt.Sprintf("%s = %s", name, m[name]))
	}
	return out
}
