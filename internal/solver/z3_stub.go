//go:build !cgo
// +build !cgo

package solver

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/alberdingk-thijm/Timepiece/internal/symbolic"
)

// Z3 is a placeholder for builds without cgo. Install Z3 and enable cgo to
// use the real oracle; every Solve call on this stub fails.
type Z3 struct{}

// Z3Option configures a Z3 oracle.
type Z3Option func(*Z3)

// WithTimeout is accepted and ignored on non-cgo builds.
func WithTimeout(time.Duration) Z3Option { return func(*Z3) {} }

// WithDebugWriter is accepted and ignored on non-cgo builds.
func WithDebugWriter(io.Writer) Z3Option { return func(*Z3) {} }

// NewZ3 creates the stub oracle.
func NewZ3(opts ...Z3Option) *Z3 { return &Z3{} }

// Solve always fails: the binary was built without cgo, so no Z3 backend is
// available.
func (o *Z3) Solve(context.Context, symbolic.Term, []symbolic.Var) (Result, error) {
	return nil, &OracleError{Op: "solve", Err: errors.New("built without cgo; Z3 backend unavailable")}
}
