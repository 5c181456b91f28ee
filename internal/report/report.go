// Package report renders verification outcomes for people and machines:
// a plain-text summary for terminals and a canonical JSON document whose
// bytes are deterministic for a given outcome.
package report

import (
	"fmt"
	"io"

	"github.com/alberdingk-thijm/Timepiece/internal/network"
	"github.com/alberdingk-thijm/Timepiece/internal/solver"
)

// Verdict is the outcome of one check.
type Verdict string

const (
	// VerdictProved means the check's query was unsatisfiable: the
	// obligation holds for every reachable state and time.
	VerdictProved Verdict = "proved"

	// VerdictCounterexample means the check produced a falsifying model.
	VerdictCounterexample Verdict = "counterexample"
)

// Outcome is the result of one check together with its counterexample, if
// any.
type Outcome struct {
	Counterexample network.Counterexample
}

// Verdict classifies the outcome.
func (o Outcome) Verdict() Verdict {
	if o.Counterexample == nil {
		return VerdictProved
	}
	return VerdictCounterexample
}

// Report collects the outcomes of a verification run over one network.
// Either check may be absent when the run did not request it.
type Report struct {
	// Network names the verified network.
	Network string

	// Modular is the outcome of the inductive proof, when run.
	Modular *Outcome

	// Monolithic is the outcome of the fixed-point cross-check, when run.
	Monolithic *Outcome
}

// New starts an empty report for the named network.
func New(name string) *Report {
	return &Report{Network: name}
}

// SetModular records the modular proof's outcome.
func (r *Report) SetModular(cex network.Counterexample) {
	r.Modular = &Outcome{Counterexample: cex}
}

// SetMonolithic records the monolithic check's outcome.
func (r *Report) SetMonolithic(cex network.Counterexample) {
	r.Monolithic = &Outcome{Counterexample: cex}
}

// Proved reports whether every recorded check succeeded. An empty report is
// trivially proved.
func (r *Report) Proved() bool {
	if r.Modular != nil && r.Modular.Counterexample != nil {
		return false
	}
	if r.Monolithic != nil && r.Monolithic.Counterexample != nil {
		return false
	}
	return true
}

// WriteText renders the report for a terminal.
func (r *Report) WriteText(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "network: %s\n", r.Network); err != nil {
		return err
	}
	if err := writeOutcomeText(w, "modular", r.Modular); err != nil {
		return err
	}
	return writeOutcomeText(w, "monolithic", r.Monolithic)
}

func writeOutcomeText(w io.Writer, label string, o *Outcome) error {
	if o == nil {
		return nil
	}
	if _, err := fmt.Fprintf(w, "%s: %s\n", label, o.Verdict()); err != nil {
		return err
	}
	cex := o.Counterexample
	if cex == nil {
		return nil
	}
	if _, err := fmt.Fprintf(w, "  %s\n", cex.Summary()); err != nil {
		return err
	}
	assignment := assignmentOf(cex)
	if len(assignment) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(w, "  under symbolic assignment:"); err != nil {
		return err
	}
	for _, line := range network.SortedAssignment(assignment) {
		if _, err := fmt.Fprintf(w, "    %s\n", line); err != nil {
			return err
		}
	}
	return nil
}

// MarshalCanonical renders the report as canonical JSON.
func (r *Report) MarshalCanonical() ([]byte, error) {
	doc := map[string]any{"network": r.Network}
	if r.Modular != nil {
		doc["modular"] = outcomeDoc(r.Modular)
	}
	if r.Monolithic != nil {
		doc["monolithic"] = outcomeDoc(r.Monolithic)
	}
	return marshalCanonical(doc)
}

func outcomeDoc(o *Outcome) map[string]any {
	doc := map[string]any{"verdict": string(o.Verdict())}
	cex := o.Counterexample
	if cex == nil {
		return doc
	}
	doc["kind"] = cex.Kind().String()

	switch c := cex.(type) {
	case network.BaseCounterexample:
		doc["node"] = string(c.Node)
		doc["route"] = c.Route.String()
	case network.InductiveCounterexample:
		doc["node"] = string(c.Node)
		doc["route"] = c.Route.String()
		doc["time"] = c.Time.String()
		neighbors := make(map[string]any, len(c.NeighborRoutes))
		for n, v := range c.NeighborRoutes {
			neighbors[string(n)] = v.String()
		}
		doc["neighbors"] = neighbors
	case network.SafetyCounterexample:
		doc["node"] = string(c.Node)
		doc["route"] = c.Route.String()
		doc["time"] = c.Time.String()
	case network.MonolithicCounterexample:
		routes := make(map[string]any, len(c.Routes))
		for n, v := range c.Routes {
			routes[string(n)] = v.String()
		}
		doc["routes"] = routes
		failing := make([]any, 0, len(c.FailingNodes))
		for _, n := range c.FailingNodes {
			failing = append(failing, string(n))
		}
		doc["failing_nodes"] = failing
	}

	assignment := assignmentOf(cex)
	if len(assignment) > 0 {
		values := make(map[string]any, len(assignment))
		for name, v := range assignment {
			values[name] = v.String()
		}
		doc["assignment"] = values
	}
	return doc
}

func assignmentOf(cex network.Counterexample) solver.Model {
	switch c := cex.(type) {
	case network.BaseCounterexample:
		return c.Assignment
	case network.InductiveCounterexample:
		return c.Assignment
	case network.SafetyCounterexample:
		return c.Assignment
	case network.MonolithicCounterexample:
		return c.Assignment
	default:
		return nil
	}
}
