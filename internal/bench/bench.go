// Package bench builds the stock verification benchmarks: annotated
// shortest-path networks of varying shape, with both sound annotation sets
// (the modular proof goes through) and deliberately broken ones (the proof
// fails with a counterexample), so the engine can be exercised end to end.
package bench

import (
	"fmt"
	"sort"

	"github.com/alberdingk-thijm/Timepiece/internal/network"
	"github.com/alberdingk-thijm/Timepiece/internal/symbolic"
	"github.com/alberdingk-thijm/Timepiece/internal/temporal"
	"github.com/alberdingk-thijm/Timepiece/internal/topology"
)

// OptionInt is the route sort shared by every benchmark: an optional hop
// count, absent until a path to the origin is known.
var OptionInt = symbolic.OptionSort{Elem: symbolic.IntSort{}}

// SomeInt builds a known hop-count route term.
func SomeInt(v int64) symbolic.Term {
	return symbolic.Some{X: symbolic.IntLit{V: v}}
}

// NoneInt is the absent route term.
func NoneInt() symbolic.Term {
	return symbolic.None{Elem: symbolic.IntSort{}}
}

// MinMerge prefers the shorter of two optional hop counts, treating absent
// as worst.
func MinMerge(a, b symbolic.Term) symbolic.Term {
	return symbolic.Ite{
		Cond: symbolic.IsNone{X: a},
		Then: b,
		Else: symbolic.Ite{
			Cond: symbolic.IsNone{X: b},
			Then: a,
			Else: symbolic.Ite{
				Cond: symbolic.Le{A: symbolic.Unwrap{X: a}, B: symbolic.Unwrap{X: b}},
				Then: a,
				Else: b,
			},
		},
	}
}

// HopTransfer lengthens a known route by one hop and propagates absence.
func HopTransfer(r symbolic.Term) symbolic.Term {
	return symbolic.Ite{
		Cond: symbolic.IsNone{X: r},
		Then: NoneInt(),
		Else: symbolic.Some{X: symbolic.Add{Xs: []symbolic.Term{
			symbolic.Unwrap{X: r},
			symbolic.IntLit{V: 1},
		}}},
	}
}

func isSome(r symbolic.Term) symbolic.Term {
	return symbolic.IsSome{X: r}
}

func pathNode(i int) topology.Node {
	return topology.Node(fmt.Sprintf("n%d", i))
}

// pathNetwork is the chain n0 -> n1 -> ... with the origin route at n0.
func pathNetwork(n int) (*network.Network, error) {
	if n < 2 {
		return nil, fmt.Errorf("bench: path needs at least 2 nodes, got %d", n)
	}
	preds := make(map[topology.Node][]topology.Node, n)
	transfer := make(map[topology.Edge]network.Transfer, n-1)
	initial := make(map[topology.Node]symbolic.Term, n)

	preds[pathNode(0)] = nil
	initial[pathNode(0)] = SomeInt(0)
	for i := 1; i < n; i++ {
		prev, cur := pathNode(i-1), pathNode(i)
		preds[cur] = []topology.Node{prev}
		transfer[topology.Edge{Src: prev, Dst: cur}] = HopTransfer
		initial[cur] = NoneInt()
	}

	top, err := topology.New(preds)
	if err != nil {
		return nil, err
	}
	return network.New(network.Definition{
		Topology:  top,
		RouteSort: OptionInt,
		Transfer:  transfer,
		Merge:     MinMerge,
		Initial:   initial,
	})
}

// Path builds the n-node chain with sound annotations: node i is unreached
// until time i and then holds exactly the i-hop route. The proved property
// is stabilization to the shortest paths by time n-1.
func Path(n int) (*network.AnnotatedNetwork, error) {
	net, err := pathNetwork(n)
	if err != nil {
		return nil, err
	}

	annotations := make(map[topology.Node]temporal.Annotation, n)
	stable := make(map[topology.Node]temporal.Predicate, n)
	safety := make(map[topology.Node]temporal.Predicate, n)

	annotations[pathNode(0)] = temporal.Equals(SomeInt(0))
	for i := 1; i < n; i++ {
		hops := SomeInt(int64(i))
		annotations[pathNode(i)] = temporal.Until(
			symbolic.IntLit{V: int64(i)},
			func(r symbolic.Term) symbolic.Term { return symbolic.IsNone{X: r} },
			func(r symbolic.Term) symbolic.Term { return symbolic.Eq{A: r, B: hops} },
		)
	}
	for i := 0; i < n; i++ {
		hops := SomeInt(int64(i))
		stable[pathNode(i)] = func(r symbolic.Term) symbolic.Term { return symbolic.Eq{A: r, B: hops} }
		safety[pathNode(i)] = func(symbolic.Term) symbolic.Term { return symbolic.BoolLit{V: true} }
	}

	return network.NewAnnotatedConvergence(net, annotations, stable, safety,
		symbolic.IntLit{V: int64(n - 1)})
}

// PathUnsound is the chain with annotations claiming no route ever arrives
// downstream of the origin. The base case holds, so the failure surfaces in
// the inductive step.
func PathUnsound(n int) (*network.AnnotatedNetwork, error) {
	net, err := pathNetwork(n)
	if err != nil {
		return nil, err
	}

	annotations := make(map[topology.Node]temporal.Annotation, n)
	stable := make(map[topology.Node]temporal.Predicate, n)
	safety := make(map[topology.Node]temporal.Predicate, n)

	annotations[pathNode(0)] = temporal.Equals(SomeInt(0))
	for i := 1; i < n; i++ {
		annotations[pathNode(i)] = temporal.Never(isSome)
	}
	for i := 0; i < n; i++ {
		stable[pathNode(i)] = isSome
		safety[pathNode(i)] = func(symbolic.Term) symbolic.Term { return symbolic.BoolLit{V: true} }
	}

	return network.NewAnnotatedConvergence(net, annotations, stable, safety,
		symbolic.IntLit{V: int64(n - 1)})
}

// BoundedFailures declares one boolean symbolic per edge marking it failed,
// with a shared cardinality bound on how many may fail at once. The returned
// map gives each edge's failure variable for use inside transfer functions.
func BoundedFailures(edges []topology.Edge, bound int64) ([]symbolic.SymbolicValue, map[topology.Edge]symbolic.Term) {
	sorted := append([]topology.Edge(nil), edges...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].String() < sorted[j].String() })

	symbolics := make([]symbolic.SymbolicValue, 0, len(sorted))
	failed := make(map[topology.Edge]symbolic.Term, len(sorted))
	counts := make([]symbolic.Term, 0, len(sorted))
	for _, e := range sorted {
		v := symbolic.Var{
			Name: fmt.Sprintf("failed_%s_%s", e.Src, e.Dst),
			Of:   symbolic.BoolSort{},
		}
		failed[e] = v
		symbolics = append(symbolics, symbolic.SymbolicValue{Var: v})
		counts = append(counts, symbolic.Ite{
			Cond: v,
			Then: symbolic.IntLit{V: 1},
			Else: symbolic.IntLit{V: 0},
		})
	}
	if len(symbolics) > 0 {
		symbolics[len(symbolics)-1].Constraint = symbolic.Le{
			A: symbolic.Add{Xs: counts},
			B: symbolic.IntLit{V: bound},
		}
	}
	return symbolics, failed
}

// faultNetwork is the fully connected triangle A, B, C with the origin at A,
// every edge failable, and at most one failure. The origin re-merges its
// initial route every round so a failed inbound edge cannot wipe it out.
func faultNetwork() (*network.Network, map[topology.Edge]symbolic.Term, error) {
	top, err := topology.New(map[topology.Node][]topology.Node{
		"A": {"B", "C"},
		"B": {"A", "C"},
		"C": {"A", "B"},
	})
	if err != nil {
		return nil, nil, err
	}

	symbolics, failed := BoundedFailures(top.Edges(), 1)

	transfer := make(map[topology.Edge]network.Transfer, top.EdgeCount())
	for _, e := range top.Edges() {
		down := failed[e]
		transfer[e] = func(r symbolic.Term) symbolic.Term {
			return symbolic.Ite{Cond: down, Then: NoneInt(), Else: HopTransfer(r)}
		}
	}

	net, err := network.New(network.Definition{
		Topology:  top,
		RouteSort: OptionInt,
		Transfer:  transfer,
		Merge:     MinMerge,
		Initial: map[topology.Node]symbolic.Term{
			"A": SomeInt(0),
			"B": NoneInt(),
			"C": NoneInt(),
		},
		Symbolics: symbolics,
	}, network.WithPersistentOrigin())
	if err != nil {
		return nil, nil, err
	}
	return net, failed, nil
}

// FaultTolerant builds the failable triangle with annotations conditioned on
// the failure state: a node reached directly settles on the one-hop route at
// time 1; with its direct edge failed it settles on the two-hop detour at
// time 2. The proved property is that every node has some route by time 2
// under any single edge failure.
func FaultTolerant() (*network.AnnotatedNetwork, error) {
	net, failed, err := faultNetwork()
	if err != nil {
		return nil, err
	}

	// Settled hop count and settling time coincide: 1 direct, 2 via detour.
	conditioned := func(direct topology.Edge) temporal.Annotation {
		deadline := symbolic.Ite{
			Cond: failed[direct],
			Then: symbolic.IntLit{V: 2},
			Else: symbolic.IntLit{V: 1},
		}
		return temporal.Until(deadline,
			func(r symbolic.Term) symbolic.Term { return symbolic.IsNone{X: r} },
			func(r symbolic.Term) symbolic.Term {
				return symbolic.Eq{A: r, B: symbolic.Some{X: deadline}}
			},
		)
	}

	annotations := map[topology.Node]temporal.Annotation{
		"A": temporal.Equals(SomeInt(0)),
		"B": conditioned(topology.Edge{Src: "A", Dst: "B"}),
		"C": conditioned(topology.Edge{Src: "A", Dst: "C"}),
	}
	return network.NewAnnotatedConvergence(net, annotations,
		reachedEverywhere(net), trueEverywhere(net), symbolic.IntLit{V: 2})
}

// FaultTolerantNaive uses a fixed settling bound that ignores the failure
// state. When the direct edge is failed the two-hop detour cannot arrive in
// time, so the inductive step fails.
func FaultTolerantNaive() (*network.AnnotatedNetwork, error) {
	net, _, err := faultNetwork()
	if err != nil {
		return nil, err
	}

	annotations := map[topology.Node]temporal.Annotation{
		"A": temporal.Equals(SomeInt(0)),
		"B": temporal.Finally(symbolic.IntLit{V: 2}, isSome),
		"C": temporal.Finally(symbolic.IntLit{V: 2}, isSome),
	}
	return network.NewAnnotatedConvergence(net, annotations,
		reachedEverywhere(net), trueEverywhere(net), symbolic.IntLit{V: 2})
}

func reachedEverywhere(net *network.Network) map[topology.Node]temporal.Predicate {
	out := make(map[topology.Node]temporal.Predicate, net.Topology().NodeCount())
	for _, n := range net.Topology().Nodes() {
		out[n] = isSome
	}
	return out
}

func trueEverywhere(net *network.Network) map[topology.Node]temporal.Predicate {
	out := make(map[topology.Node]temporal.Predicate, net.Topology().NodeCount())
	for _, n := range net.Topology().Nodes() {
		out[n] = func(symbolic.Term) symbolic.Term { return symbolic.BoolLit{V: true} }
	}
	return out
}

// Builder constructs one named benchmark at a given size. Benchmarks with a
// fixed shape ignore the size.
type Builder func(size int) (*network.AnnotatedNetwork, error)

var builders = map[string]Builder{
	"path":                 func(size int) (*network.AnnotatedNetwork, error) { return Path(size) },
	"path-unsound":         func(size int) (*network.AnnotatedNetwork, error) { return PathUnsound(size) },
	"fault-tolerant":       func(int) (*network.AnnotatedNetwork, error) { return FaultTolerant() },
	"fault-tolerant-naive": func(int) (*network.AnnotatedNetwork, error) { return FaultTolerantNaive() },
}

// Names lists the available benchmarks in sorted order.
func Names() []string {
	out := make([]string, 0, len(builders))
	for name := range builders {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Build constructs a benchmark by name.
func Build(name string, size int) (*network.AnnotatedNetwork, error) {
	b, ok := builders[name]
	if !ok {
		return nil, fmt.Errorf("bench: unknown benchmark %q", name)
	}
	return b(size)
}
