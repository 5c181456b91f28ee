package network

import (
	"errors"
	"fmt"

	"github.com/alberdingk-thijm/Timepiece/internal/topology"
)

// DefinitionError reports a malformed network definition detected at
// construction time. Definitions fail fast: a missing transfer function or
// annotation is never silently defaulted.
type DefinitionError struct {
	// Code identifies the defect category.
	Code DefinitionErrorCode

	// Message is a human-readable description.
	Message string

	// Node names the offending node, when one is involved.
	Node topology.Node

	// Edge names the offending edge, when one is involved.
	Edge *topology.Edge
}

// DefinitionErrorCode categorizes definition defects.
type DefinitionErrorCode string

const (
	// ErrCodeMissingTransfer indicates a declared edge without a transfer
	// function.
	ErrCodeMissingTransfer DefinitionErrorCode = "MISSING_TRANSFER"

	// ErrCodeUnknownEdge indicates a transfer function keyed by an edge the
	// topology does not declare.
	ErrCodeUnknownEdge DefinitionErrorCode = "UNKNOWN_EDGE"

	// ErrCodeMissingInitial indicates a declared node without an initial
	// route.
	ErrCodeMissingInitial DefinitionErrorCode = "MISSING_INITIAL"

	// ErrCodeUnknownNode indicates a per-node entry keyed by an undeclared
	// node.
	ErrCodeUnknownNode DefinitionErrorCode = "UNKNOWN_NODE"

	// ErrCodeBadSymbolic indicates an ill-formed symbolic declaration, such
	// as a duplicated or reserved name.
	ErrCodeBadSymbolic DefinitionErrorCode = "BAD_SYMBOLIC"

	// ErrCodeMissingAnnotation indicates a declared node without an
	// annotation or required property.
	ErrCodeMissingAnnotation DefinitionErrorCode = "MISSING_ANNOTATION"

	// ErrCodeIncomplete indicates a definition missing a required component
	// (topology, merge, route sort).
	ErrCodeIncomplete DefinitionErrorCode = "INCOMPLETE_DEFINITION"
)

// Error implements the error interface.
func (e *DefinitionError) Error() string {
	switch {
	case e.Edge != nil:
		return fmt.Sprintf("%s: %s (edge=%s)", e.Code, e.Message, e.Edge)
	case e.Node != "":
		return fmt.Sprintf("%s: %s (node=%s)", e.Code, e.Message, e.Node)
	default:
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
}

// IsDefinitionError reports whether err is a DefinitionError with the given
// code. Wrapped errors are unwrapped.
func IsDefinitionError(err error, code DefinitionErrorCode) bool {
	var de *DefinitionError
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

func defErr(code DefinitionErrorCode, format string, args ...any) *DefinitionError {
	return &DefinitionError{Code: code, Message: fmt.Sprintf(format, args...)}
}

func nodeErr(code DefinitionErrorCode, node topology.Node, format string, args ...any) *DefinitionError {
	return &DefinitionError{Code: code, Message: fmt.Sprintf(format, args...), Node: node}
}

func edgeErr(code DefinitionErrorCode, edge topology.Edge, format string, args ...any) *DefinitionError {
	return &DefinitionError{Code: code, Message: fmt.Sprintf(format, args...), Edge: &edge}
}
