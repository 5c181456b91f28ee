package network

import (
	"fmt"
	"strings"

	"github.com/alberdingk-thijm/Timepiece/internal/symbolic"
	"github.com/alberdingk-thijm/Timepiece/internal/topology"
)

// Transfer models how a route changes while propagating along one directed
// edge.
type Transfer func(route symbolic.Term) symbolic.Term

// Merge joins two candidate routes into one.
//
// Precondition (unchecked): Merge is associative, commutative, and
// idempotent with respect to the intended route-quality order.
type Merge func(a, b symbolic.Term) symbolic.Term

// Definition is the fully resolved input of the engine, produced by some
// front end outside this package.
type Definition struct {
	// Topology is the predecessor-adjacency digraph.
	Topology *topology.Topology

	// RouteSort is the sort of every route term; fresh route variables are
	// declared with it.
	RouteSort symbolic.Sort

	// Transfer holds exactly one function per directed edge of Topology.
	Transfer map[topology.Edge]Transfer

	// Merge joins routes advertised by multiple predecessors.
	Merge Merge

	// Initial holds the route of every node at logical time 0.
	Initial map[topology.Node]symbolic.Term

	// Symbolics declares the free variables scoping every query.
	Symbolics []symbolic.SymbolicValue
}

// Network is an immutable, validated network definition.
type Network struct {
	top              *topology.Topology
	routeSort        symbolic.Sort
	transfer         map[topology.Edge]Transfer
	merge            Merge
	initial          map[topology.Node]symbolic.Term
	symbolics        []symbolic.SymbolicValue
	persistentOrigin bool
}

// Option configures a Network at construction.
type Option func(*Network)

// WithPersistentOrigin makes every update round re-merge the node's own
// initial route alongside its neighbors' transferred routes. The default
// only seeds the initial route at time 0. Which reading models a protocol
// correctly depends on how its transfer and initial functions were built
// upstream, so the policy is explicit and per network.
func WithPersistentOrigin() Option {
	return func(n *Network) { n.persistentOrigin = true }
}

// reservedMarker separates engine-generated variable names from
// user-declared symbolic names.
const reservedMarker = "!"

// New validates a definition and freezes it into a Network. All maps are
// copied; later mutation of the definition does not affect the network.
func New(def Definition, opts ...Option) (*Network, error) {
	if def.Topology == nil {
		return nil, defErr(ErrCodeIncomplete, "definition has no topology")
	}
	if def.RouteSort == nil {
		return nil, defErr(ErrCodeIncomplete, "definition has no route sort")
	}
	if def.Merge == nil {
		return nil, defErr(ErrCodeIncomplete, "definition has no merge function")
	}

	top := def.Topology

	transfer := make(map[topology.Edge]Transfer, top.EdgeCount())
	for _, e := range top.Edges() {
		fn, ok := def.Transfer[e]
		if !ok || fn == nil {
			return nil, edgeErr(ErrCodeMissingTransfer, e, "no transfer function for declared edge")
		}
		transfer[e] = fn
	}
	for e := range def.Transfer {
		if _, ok := transfer[e]; !ok {
			return nil, edgeErr(ErrCodeUnknownEdge, e, "transfer function for undeclared edge")
		}
	}

	initial := make(map[topology.Node]symbolic.Term, top.NodeCount())
	for _, n := range top.Nodes() {
		t, ok := def.Initial[n]
		if !ok || t == nil {
			return nil, nodeErr(ErrCodeMissingInitial, n, "no initial route for declared node")
		}
		initial[n] = t
	}
	for n := range def.Initial {
		if !top.HasNode(n) {
			return nil, nodeErr(ErrCodeUnknownNode, n, "initial route for undeclared node")
		}
	}

	seen := make(map[string]struct{}, len(def.Symbolics))
	for _, s := range def.Symbolics {
		name := s.Var.Name
		if name == "" {
			return nil, defErr(ErrCodeBadSymbolic, "symbolic value with empty name")
		}
		if strings.Contains(name, reservedMarker) {
			return nil, defErr(ErrCodeBadSymbolic, "symbolic name %q uses reserved marker %q", name, reservedMarker)
		}
		if _, dup := seen[name]; dup {
			return nil, defErr(ErrCodeBadSymbolic, "symbolic name %q declared twice", name)
		}
		seen[name] = struct{}{}
	}

	net := &Network{
		top:       top,
		routeSort: def.RouteSort,
		transfer:  transfer,
		merge:     def.Merge,
		initial:   initial,
		symbolics: append([]symbolic.SymbolicValue(nil), def.Symbolics...),
	}
	for _, opt := range opts {
		opt(net)
	}
	return net, nil
}

// Topology returns the network's topology.
func (n *Network) Topology() *topology.Topology {
	return n.top
}

// RouteSort returns the sort of route terms.
func (n *Network) RouteSort() symbolic.Sort {
	return n.routeSort
}

// Initial returns the initial route term of a node.
func (n *Network) Initial(node topology.Node) symbolic.Term {
	return n.initial[node]
}

// Symbolics returns the declared symbolic values. The returned slice must
// not be modified.
func (n *Network) Symbolics() []symbolic.SymbolicValue {
	return n.symbolics
}

// GlobalConstraint is the conjunction of every declared symbolic's domain
// predicate; it scopes every query the engine issues.
func (n *Network) GlobalConstraint() symbolic.Term {
	return symbolic.AllConstraints(n.symbolics)
}

// Update builds the term for one synchronous update of node: the merge of
// every predecessor's transferred route. A node with no predecessors keeps
// its initial route. With persistent origin enabled, the node's initial
// route joins the merge at every round.
func (n *Network) Update(node topology.Node, routes map[topology.Node]symbolic.Term) symbolic.Term {
	preds := n.top.Neighbors(node)
	if len(preds) == 0 {
		return n.initial[node]
	}
	var acc symbolic.Term
	for _, p := range preds {
		transferred := n.transfer[topology.Edge{Src: p, Dst: node}](routes[p])
		if acc == nil {
			acc = transferred
		} else {
			acc = n.merge(acc, transferred)
		}
	}
	if n.persistentOrigin {
		acc = n.merge(acc, n.initial[node])
	}
	return acc
}

// Simulate runs bounded forward evaluation of the update rounds from the
// initial routes under a concrete assignment of every declared symbolic.
// The result has rounds+1 entries: states[t][node] is the route after t
// synchronous rounds, with states[0] the initial routes.
//
// Simulation is a diagnostic and testing aid; the verification checks
// quantify over unbounded time and never depend on it.
func (n *Network) Simulate(env symbolic.Env, rounds int) ([]map[topology.Node]symbolic.Value, error) {
	if rounds < 0 {
		return nil, fmt.Errorf("network: negative round count %d", rounds)
	}
	states := make([]map[topology.Node]symbolic.Value, 0, rounds+1)

	current := make(map[topology.Node]symbolic.Value, n.top.NodeCount())
	for _, node := range n.top.Nodes() {
		v, err := symbolic.Eval(n.initial[node], env)
		if err != nil {
			return nil, fmt.Errorf("network: evaluating initial route of %s: %w", node, err)
		}
		current[node] = v
	}
	states = append(states, current)

	for t := 1; t <= rounds; t++ {
		lifted := make(map[topology.Node]symbolic.Term, len(current))
		for node, v := range current {
			lifted[node] = symbolic.Lift(v)
		}
		next := make(map[topology.Node]symbolic.Value, len(current))
		for _, node := range n.top.Nodes() {
			v, err := symbolic.Eval(n.Update(node, lifted), env)
			if err != nil {
				return nil, fmt.Errorf("network: evaluating update of %s at round %d: %w", node, t, err)
			}
			next[node] = v
		}
		states = append(states, next)
		current = next
	}
	return states, nil
}

// CheckMergeAlgebra spot-checks the merge precondition (commutativity,
// associativity, idempotence) over the given sample routes under a concrete
// symbolic assignment. It returns the first violation found, or nil. This
// is a debugging aid; the engine never calls it.
func (n *Network) CheckMergeAlgebra(env symbolic.Env, samples []symbolic.Value) error {
	eval := func(t symbolic.Term) (symbolic.Value, error) {
		return symbolic.Eval(t, env)
	}
	lift := symbolic.Lift

	for _, a := range samples {
		got, err := eval(n.merge(lift(a), lift(a)))
		if err != nil {
			return err
		}
		if !symbolic.SameValue(got, a) {
			return fmt.Errorf("network: merge not idempotent: merge(%s, %s) = %s", a, a, got)
		}
	}
	for _, a := range samples {
		for _, b := range samples {
			ab, err := eval(n.merge(lift(a), lift(b)))
			if err != nil {
				return err
			}
			ba, err := eval(n.merge(lift(b), lift(a)))
			if err != nil {
				return err
			}
			if !symbolic.SameValue(ab, ba) {
				return fmt.Errorf("network: merge not commutative on %s, %s: %s vs %s", a, b, ab, ba)
			}
			for _, c := range samples {
				left, err := eval(n.merge(lift(ab), lift(c)))
				if err != nil {
					return err
				}
				bc, err := eval(n.merge(lift(b), lift(c)))
				if err != nil {
					return err
				}
				right, err := eval(n.merge(lift(a), lift(bc)))
				if err != nil {
					return err
				}
				if !symbolic.SameValue(left, right) {
					return fmt.Errorf("network: merge not associative on %s, %s, %s", a, b, c)
				}
			}
		}
	}
	return nil
}
