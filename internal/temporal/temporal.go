// Package temporal provides the combinators that lift time-independent
// route predicates into time-indexed annotations.
//
// An Annotation is a predicate over (route, time); annotations are what the
// engine proves inductively over an unbounded logical clock. Thresholds are
// terms rather than constants, so a stabilization time may itself be a
// declared symbolic integer (per-destination or per-failure-scenario
// converge times).
package temporal

import "github.com/alberdingk-thijm/Timepiece/internal/symbolic"

// Predicate is a time-independent route predicate: it maps a route term to
// a boolean term.
type Predicate func(route symbolic.Term) symbolic.Term

// Annotation is a time-indexed route predicate: it maps a route term and an
// integer time term to a boolean term.
type Annotation func(route, time symbolic.Term) symbolic.Term

// Globally asserts p at every time.
func Globally(p Predicate) Annotation {
	return func(route, _ symbolic.Term) symbolic.Term {
		return p(route)
	}
}

// Finally asserts p from witnessTime onward; before witnessTime anything is
// allowed. This is the stabilization guarantee.
func Finally(witnessTime symbolic.Term, p Predicate) Annotation {
	return func(route, time symbolic.Term) symbolic.Term {
		return symbolic.Disj(
			symbolic.Lt{A: time, B: witnessTime},
			p(route),
		)
	}
}

// Until asserts before up to (but excluding) witnessTime and after from
// witnessTime onward: the unsettled-but-safe/settled split, generalizing
// Finally to constrain the transient phase too.
func Until(witnessTime symbolic.Term, before, after Predicate) Annotation {
	return func(route, time symbolic.Term) symbolic.Term {
		return symbolic.Disj(
			symbolic.Conj(symbolic.Lt{A: time, B: witnessTime}, before(route)),
			symbolic.Conj(symbolic.Ge{A: time, B: witnessTime}, after(route)),
		)
	}
}

// Intersect asserts both annotations.
func Intersect(f, g Annotation) Annotation {
	return func(route, time symbolic.Term) symbolic.Term {
		return symbolic.Conj(f(route, time), g(route, time))
	}
}

// Never asserts that p never holds; it is Globally of the negation.
func Never(p Predicate) Annotation {
	return Globally(func(route symbolic.Term) symbolic.Term {
		return symbolic.Not{X: p(route)}
	})
}

// Equals asserts that the route equals v at every time.
func Equals(v symbolic.Term) Annotation {
	return Globally(func(route symbolic.Term) symbolic.Term {
		return symbolic.Eq{A: route, B: v}
	})
}
