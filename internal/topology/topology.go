package topology

import (
	"fmt"
	"sort"
)

// Node identifies a vertex in a topology. Node names are opaque to the
// engine; they only need to be unique within one topology.
type Node string

// Edge is a directed edge from Src to Dst, meaning Dst merges routes
// transferred from Src.
type Edge struct {
	Src Node
	Dst Node
}

func (e Edge) String() string {
	return fmt.Sprintf("%s->%s", e.Src, e.Dst)
}

// Topology is an immutable directed graph described by predecessor
// adjacency: preds[n] lists the nodes whose routes n merges.
type Topology struct {
	nodes []Node // sorted for deterministic iteration
	preds map[Node][]Node
	edges int
}

// New builds a topology from a predecessor adjacency map. Every key is a
// declared node; every predecessor must itself be a declared node.
//
// The adjacency map is copied, so later mutation of the argument does not
// affect the topology.
func New(preds map[Node][]Node) (*Topology, error) {
	nodes := make([]Node, 0, len(preds))
	for n := range preds {
		nodes = append(nodes, n)
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i] < nodes[j] })

	copied := make(map[Node][]Node, len(preds))
	edges := 0
	for _, n := range nodes {
		ps := preds[n]
		for _, p := range ps {
			if _, ok := preds[p]; !ok {
				return nil, fmt.Errorf("topology: node %q lists undeclared predecessor %q", n, p)
			}
		}
		copied[n] = append([]Node(nil), ps...)
		edges += len(ps)
	}
	return &Topology{nodes: nodes, preds: copied, edges: edges}, nil
}

// MustNew is New that panics on error. Intended for hand-written fixtures
// whose adjacency is known to be well formed.
func MustNew(preds map[Node][]Node) *Topology {
	t, err := New(preds)
	if err != nil {
		panic(err)
	}
	return t
}

// Nodes returns the declared nodes in lexicographic order. The returned
// slice must not be modified.
func (t *Topology) Nodes() []Node {
	return t.nodes
}

// HasNode reports whether n is declared in the topology.
func (t *Topology) HasNode(n Node) bool {
	_, ok := t.preds[n]
	return ok
}

// Neighbors returns the predecessors of n in declaration order. The
// returned slice must not be modified. Unknown nodes have no predecessors.
func (t *Topology) Neighbors(n Node) []Node {
	return t.preds[n]
}

// NodeCount returns the number of declared nodes.
func (t *Topology) NodeCount() int {
	return len(t.nodes)
}

// EdgeCount returns the total number of directed edges, i.e. the sum of all
// predecessor list lengths.
func (t *Topology) EdgeCount() int {
	return t.edges
}

// Edges returns all directed (predecessor, node) pairs, ordered by
// destination node and then by predecessor declaration order.
func (t *Topology) Edges() []Edge {
	out := make([]Edge, 0, t.edges)
	for _, n := range t.nodes {
		for _, p := range t.preds[n] {
			out = append(out, Edge{Src: p, Dst: n})
		}
	}
	return out
}

// MapNodes applies f to every node and collects the results in node order.
func MapNodes[T any](t *Topology, f func(Node) T) []T {
	out := make([]T, 0, len(t.nodes))
	for _, n := range t.nodes {
		out = append(out, f(n))
	}
	return out
}

// FoldNodes folds f over every node in node order, starting from init.
func FoldNodes[T any](t *Topology, init T, f func(T, Node) T) T {
	acc := init
	for _, n := range t.nodes {
		acc = f(acc, n)
	}
	return acc
}

// MapEdges applies f to every directed edge and collects the results in
// edge order.
func MapEdges[T any](t *Topology, f func(Edge) T) []T {
	out := make([]T, 0, t.edges)
	for _, e := range t.Edges() {
		out = append(out, f(e))
	}
	return out
}

// FoldEdges folds f over every directed edge in edge order, starting from
// init.
func FoldEdges[T any](t *Topology, init T, f func(T, Edge) T) T {
	acc := init
	for _, e := range t.Edges() {
		acc = f(acc, e)
	}
	return acc
}

// FilterEdges returns the directed edges satisfying keep, in edge order.
func (t *Topology) FilterEdges(keep func(Edge) bool) []Edge {
	var out []Edge
	for _, e := range t.Edges() {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out
}
