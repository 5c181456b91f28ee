package network

import (
	"github.com/alberdingk-thijm/Timepiece/internal/symbolic"
	"github.com/alberdingk-thijm/Timepiece/internal/temporal"
	"github.com/alberdingk-thijm/Timepiece/internal/topology"
)

// AnnotatedNetwork couples a network with the per-node annotations and the
// properties to prove. Like Network it is immutable after construction.
type AnnotatedNetwork struct {
	*Network
	annotations map[topology.Node]temporal.Annotation
	modular     map[topology.Node]temporal.Annotation
	monolithic  map[topology.Node]temporal.Predicate
}

// NewAnnotated validates that every declared node has an annotation, a
// modular property, and a monolithic property, and freezes the result.
func NewAnnotated(
	net *Network,
	annotations map[topology.Node]temporal.Annotation,
	modular map[topology.Node]temporal.Annotation,
	monolithic map[topology.Node]temporal.Predicate,
) (*AnnotatedNetwork, error) {
	if net == nil {
		return nil, defErr(ErrCodeIncomplete, "annotated network has no underlying network")
	}
	top := net.Topology()

	anns := make(map[topology.Node]temporal.Annotation, top.NodeCount())
	mods := make(map[topology.Node]temporal.Annotation, top.NodeCount())
	monos := make(map[topology.Node]temporal.Predicate, top.NodeCount())
	for _, n := range top.Nodes() {
		ann, ok := annotations[n]
		if !ok || ann == nil {
			return nil, nodeErr(ErrCodeMissingAnnotation, n, "no annotation for declared node")
		}
		mod, ok := modular[n]
		if !ok || mod == nil {
			return nil, nodeErr(ErrCodeMissingAnnotation, n, "no modular property for declared node")
		}
		mono, ok := monolithic[n]
		if !ok || mono == nil {
			return nil, nodeErr(ErrCodeMissingAnnotation, n, "no monolithic property for declared node")
		}
		anns[n] = ann
		mods[n] = mod
		monos[n] = mono
	}
	for n := range annotations {
		if !top.HasNode(n) {
			return nil, nodeErr(ErrCodeUnknownNode, n, "annotation for undeclared node")
		}
	}
	for n := range modular {
		if !top.HasNode(n) {
			return nil, nodeErr(ErrCodeUnknownNode, n, "modular property for undeclared node")
		}
	}
	for n := range monolithic {
		if !top.HasNode(n) {
			return nil, nodeErr(ErrCodeUnknownNode, n, "monolithic property for undeclared node")
		}
	}

	return &AnnotatedNetwork{
		Network:     net,
		annotations: anns,
		modular:     mods,
		monolithic:  monos,
	}, nil
}

// NewAnnotatedConvergence is the convenience constructor for the common
// stable/safety query shape. For each node it derives
//
//	modular    = Intersect(Finally(convergeTime, stable), Globally(safety))
//	monolithic = stable AND safety
//
// so the modular proof shows the network stabilizes into stable by
// convergeTime while always staying within safety, and the monolithic
// cross-check asks the same of the fixed point.
func NewAnnotatedConvergence(
	net *Network,
	annotations map[topology.Node]temporal.Annotation,
	stable map[topology.Node]temporal.Predicate,
	safety map[topology.Node]temporal.Predicate,
	convergeTime symbolic.Term,
) (*AnnotatedNetwork, error) {
	if net == nil {
		return nil, defErr(ErrCodeIncomplete, "annotated network has no underlying network")
	}
	top := net.Topology()

	modular := make(map[topology.Node]temporal.Annotation, top.NodeCount())
	monolithic := make(map[topology.Node]temporal.Predicate, top.NodeCount())
	for _, n := range top.Nodes() {
		st, ok := stable[n]
		if !ok || st == nil {
			return nil, nodeErr(ErrCodeMissingAnnotation, n, "no stable property for declared node")
		}
		sf, ok := safety[n]
		if !ok || sf == nil {
			return nil, nodeErr(ErrCodeMissingAnnotation, n, "no safety property for declared node")
		}
		modular[n] = temporal.Intersect(
			temporal.Finally(convergeTime, st),
			temporal.Globally(sf),
		)
		monolithic[n] = func(route symbolic.Term) symbolic.Term {
			return symbolic.Conj(st(route), sf(route))
		}
	}
	return NewAnnotated(net, annotations, modular, monolithic)
}

// Annotation returns the annotation of a node.
func (a *AnnotatedNetwork) Annotation(n topology.Node) temporal.Annotation {
	return a.annotations[n]
}

// ModularProperty returns the modular property of a node.
func (a *AnnotatedNetwork) ModularProperty(n topology.Node) temporal.Annotation {
	return a.modular[n]
}

// MonolithicProperty returns the monolithic property of a node.
func (a *AnnotatedNetwork) MonolithicProperty(n topology.Node) temporal.Predicate {
	return a.monolithic[n]
}
