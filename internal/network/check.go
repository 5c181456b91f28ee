package network

import (
	"context"
	"errors"
	"fmt"

	"github.com/alberdingk-thijm/Timepiece/internal/solver"
	"github.com/alberdingk-thijm/Timepiece/internal/symbolic"
	"github.com/alberdingk-thijm/Timepiece/internal/topology"
)

// Engine-generated variable names carry the reserved marker so they can
// never collide with declared symbolics.
func routeVarName(n topology.Node) string {
	return "route" + reservedMarker + string(n)
}

const timeVarName = "time" + reservedMarker

func (n *Network) routeVar(node topology.Node) symbolic.Var {
	return symbolic.Var{Name: routeVarName(node), Of: n.routeSort}
}

func timeVar() symbolic.Var {
	return symbolic.Var{Name: timeVarName, Of: symbolic.IntSort{}}
}

// queryVars appends the declared symbolics' variables to the check-specific
// ones, forming the variable set a model must cover.
func (n *Network) queryVars(own ...symbolic.Var) []symbolic.Var {
	out := append([]symbolic.Var(nil), own...)
	for _, s := range n.symbolics {
		out = append(out, s.Var)
	}
	return out
}

// query builds the engine's standard satisfiability query: the global
// constraint, the check's assumptions, and the negated obligation.
func (n *Network) query(assumptions []symbolic.Term, obligation symbolic.Term) symbolic.Term {
	parts := []symbolic.Term{n.GlobalConstraint()}
	parts = append(parts, assumptions...)
	parts = append(parts, symbolic.Not{X: obligation})
	return symbolic.Conj(parts...)
}

// CheckBaseNode discharges the base case of one node: assuming the route
// equals the initial route, the annotation must hold at time 0. A nil
// counterexample means proved.
func (a *AnnotatedNetwork) CheckBaseNode(ctx context.Context, o solver.Oracle, node topology.Node) (Counterexample, error) {
	r := a.routeVar(node)
	formula := a.query(
		[]symbolic.Term{symbolic.Eq{A: r, B: a.initial[node]}},
		a.annotations[node](r, symbolic.IntLit{V: 0}),
	)

	res, err := o.Solve(ctx, formula, a.queryVars(r))
	if err != nil {
		return nil, fmt.Errorf("base check of %s: %w", node, err)
	}
	sat, found := res.(solver.Sat)
	if !found {
		return nil, nil
	}
	return BaseCounterexample{
		Node:       node,
		Route:      sat.Model[r.Name],
		Assignment: symbolicAssignment(a.symbolics, sat.Model),
	}, nil
}

// CheckInductiveNode discharges the inductive step of one node: for any
// time t > 0, if every predecessor's route satisfied its annotation at t-1,
// the merged update must satisfy this node's annotation at t. A nil
// counterexample means proved.
func (a *AnnotatedNetwork) CheckInductiveNode(ctx context.Context, o solver.Oracle, node topology.Node) (Counterexample, error) {
	t := timeVar()
	preds := a.top.Neighbors(node)

	routes := make(map[topology.Node]symbolic.Term, len(preds))
	checkVars := []symbolic.Var{t}
	assumptions := []symbolic.Term{symbolic.Gt{A: t, B: symbolic.IntLit{V: 0}}}
	previous := symbolic.Sub{A: t, B: symbolic.IntLit{V: 1}}
	for _, p := range preds {
		rv := a.routeVar(p)
		routes[p] = rv
		checkVars = append(checkVars, rv)
		assumptions = append(assumptions, a.annotations[p](rv, previous))
	}

	merged := a.Update(node, routes)
	formula := a.query(assumptions, a.annotations[node](merged, t))

	res, err := o.Solve(ctx, formula, a.queryVars(checkVars...))
	if err != nil {
		return nil, fmt.Errorf("inductive check of %s: %w", node, err)
	}
	sat, found := res.(solver.Sat)
	if !found {
		return nil, nil
	}

	env := sat.Model.Env()
	mergedVal, err := symbolic.Eval(merged, env)
	if err != nil {
		return nil, fmt.Errorf("inductive check of %s: replaying merged route: %w", node, err)
	}
	neighborRoutes := make(map[topology.Node]symbolic.Value, len(preds))
	for _, p := range preds {
		neighborRoutes[p] = sat.Model[routeVarName(p)]
	}
	return InductiveCounterexample{
		Node:           node,
		Route:          mergedVal,
		NeighborRoutes: neighborRoutes,
		Time:           sat.Model[t.Name],
		Assignment:     symbolicAssignment(a.symbolics, sat.Model),
	}, nil
}

// CheckSafetyNode discharges the assertion of one node: any route the
// annotation admits at any time t >= 0 must satisfy the modular property.
// A nil counterexample means proved.
func (a *AnnotatedNetwork) CheckSafetyNode(ctx context.Context, o solver.Oracle, node topology.Node) (Counterexample, error) {
	r := a.routeVar(node)
	t := timeVar()
	formula := a.query(
		[]symbolic.Term{
			symbolic.Ge{A: t, B: symbolic.IntLit{V: 0}},
			a.annotations[node](r, t),
		},
		a.modular[node](r, t),
	)

	res, err := o.Solve(ctx, formula, a.queryVars(r, t))
	if err != nil {
		return nil, fmt.Errorf("safety check of %s: %w", node, err)
	}
	sat, found := res.(solver.Sat)
	if !found {
		return nil, nil
	}
	return SafetyCounterexample{
		Node:       node,
		Route:      sat.Model[r.Name],
		Time:       sat.Model[t.Name],
		Assignment: symbolicAssignment(a.symbolics, sat.Model),
	}, nil
}

// CheckBaseCase runs the base case of every node concurrently and returns
// the first counterexample found, if any.
func (a *AnnotatedNetwork) CheckBaseCase(ctx context.Context, o solver.Oracle) (Counterexample, error) {
	return a.runAll(ctx, o, (*AnnotatedNetwork).CheckBaseNode)
}

// CheckInductive runs the inductive step of every node concurrently and
// returns the first counterexample found, if any.
func (a *AnnotatedNetwork) CheckInductive(ctx context.Context, o solver.Oracle) (Counterexample, error) {
	return a.runAll(ctx, o, (*AnnotatedNetwork).CheckInductiveNode)
}

// CheckAssertions runs the safety assertion of every node concurrently and
// returns the first counterexample found, if any.
func (a *AnnotatedNetwork) CheckAssertions(ctx context.Context, o solver.Oracle) (Counterexample, error) {
	return a.runAll(ctx, o, (*AnnotatedNetwork).CheckSafetyNode)
}

// CheckAnnotations runs the full modular proof: base case, then inductive
// step, then assertions. Later phases are not attempted once an earlier
// phase produces a counterexample for any node. A nil counterexample with a
// nil error means every obligation was proved.
func (a *AnnotatedNetwork) CheckAnnotations(ctx context.Context, o solver.Oracle) (Counterexample, error) {
	cex, err := a.CheckBaseCase(ctx, o)
	if err != nil || cex != nil {
		return cex, err
	}
	cex, err = a.CheckInductive(ctx, o)
	if err != nil || cex != nil {
		return cex, err
	}
	return a.CheckAssertions(ctx, o)
}

// CheckMonolithic asks, in one query over the joint state of every node,
// whether any solution of the update equations violates some node's
// monolithic property. It ignores the annotations entirely and serves as an
// independent, typically far more expensive, cross-check of the modular
// proof.
func (a *AnnotatedNetwork) CheckMonolithic(ctx context.Context, o solver.Oracle) (Counterexample, error) {
	nodes := a.top.Nodes()

	routes := make(map[topology.Node]symbolic.Term, len(nodes))
	checkVars := make([]symbolic.Var, 0, len(nodes))
	for _, n := range nodes {
		rv := a.routeVar(n)
		routes[n] = rv
		checkVars = append(checkVars, rv)
	}

	assumptions := make([]symbolic.Term, 0, len(nodes))
	obligations := make([]symbolic.Term, 0, len(nodes))
	for _, n := range nodes {
		assumptions = append(assumptions, symbolic.Eq{A: routes[n], B: a.Update(n, routes)})
		obligations = append(obligations, a.monolithic[n](routes[n]))
	}
	formula := a.query(assumptions, symbolic.Conj(obligations...))

	res, err := o.Solve(ctx, formula, a.queryVars(checkVars...))
	if err != nil {
		return nil, fmt.Errorf("monolithic check: %w", err)
	}
	sat, found := res.(solver.Sat)
	if !found {
		return nil, nil
	}

	env := sat.Model.Env()
	routeVals := make(map[topology.Node]symbolic.Value, len(nodes))
	var failing []topology.Node
	for _, n := range nodes {
		routeVals[n] = sat.Model[routeVarName(n)]
		ok, evalErr := symbolic.EvalBool(a.monolithic[n](routes[n]), env)
		if evalErr != nil {
			return nil, fmt.Errorf("monolithic check: replaying property of %s: %w", n, evalErr)
		}
		if !ok {
			failing = append(failing, n)
		}
	}
	return MonolithicCounterexample{
		Routes:       routeVals,
		FailingNodes: failing,
		Assignment:   symbolicAssignment(a.symbolics, sat.Model),
	}, nil
}

// nodeCheck is one per-node proof obligation.
type nodeCheck func(*AnnotatedNetwork, context.Context, solver.Oracle, topology.Node) (Counterexample, error)

// runAll fans a per-node check out over every node and reduces to the
// first counterexample. Which counterexample wins when several nodes fail
// simultaneously is unspecified. Once dispatched, every node check runs to
// completion; there is no cancellation. An error from any node aborts the
// whole-network verdict and propagates.
func (a *AnnotatedNetwork) runAll(ctx context.Context, o solver.Oracle, check nodeCheck) (Counterexample, error) {
	nodes := a.top.Nodes()

	type outcome struct {
		cex Counterexample
		err error
	}
	results := make(chan outcome, len(nodes))
	for _, n := range nodes {
		go func(n topology.Node) {
			cex, err := check(a, ctx, o, n)
			results <- outcome{cex: cex, err: err}
		}(n)
	}

	var (
		firstCex Counterexample
		errs     []error
	)
	for range nodes {
		out := <-results
		if out.err != nil {
			errs = append(errs, out.err)
		} else if out.cex != nil && firstCex == nil {
			firstCex = out.cex
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return firstCex, nil
}
