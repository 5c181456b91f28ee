//go:build cgo
// +build cgo

package bench

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alberdingk-thijm/Timepiece/internal/network"
	"github.com/alberdingk-thijm/Timepiece/internal/solver"
	"github.com/alberdingk-thijm/Timepiece/internal/symbolic"
	"github.com/alberdingk-thijm/Timepiece/internal/topology"
)

func oracle() *solver.Z3 {
	return solver.NewZ3()
}

func TestPath_ModularProofSucceeds(t *testing.T) {
	a, err := Path(3)
	require.NoError(t, err)

	cex, err := a.CheckAnnotations(context.Background(), oracle())
	require.NoError(t, err)
	assert.Nil(t, cex, "expected a proof, got: %v", summaryOf(cex))
}

func TestPath_MonolithicProofSucceeds(t *testing.T) {
	a, err := Path(3)
	require.NoError(t, err)

	cex, err := a.CheckMonolithic(context.Background(), oracle())
	require.NoError(t, err)
	assert.Nil(t, cex, "expected a proof, got: %v", summaryOf(cex))
}

func TestPathUnsound_FailsInductiveStep(t *testing.T) {
	a, err := PathUnsound(3)
	require.NoError(t, err)

	cex, err := a.CheckAnnotations(context.Background(), oracle())
	require.NoError(t, err)
	require.NotNil(t, cex)

	// The base case holds (no route has arrived at time 0); the claim that
	// none ever arrives breaks one hop from the origin.
	ind, ok := cex.(network.InductiveCounterexample)
	require.True(t, ok, "got %T: %s", cex, cex.Summary())
	assert.Equal(t, topology.Node("n1"), ind.Node)
	assert.True(t, symbolic.SameValue(ind.Route, symbolic.VSome{X: symbolic.VInt(1)}),
		"merged route %s", ind.Route)
}

func TestFaultTolerant_ModularProofSucceeds(t *testing.T) {
	a, err := FaultTolerant()
	require.NoError(t, err)

	cex, err := a.CheckAnnotations(context.Background(), oracle())
	require.NoError(t, err)
	assert.Nil(t, cex, "expected a proof, got: %v", summaryOf(cex))
}

func TestFaultTolerant_MonolithicProofSucceeds(t *testing.T) {
	a, err := FaultTolerant()
	require.NoError(t, err)

	cex, err := a.CheckMonolithic(context.Background(), oracle())
	require.NoError(t, err)
	assert.Nil(t, cex, "expected a proof, got: %v", summaryOf(cex))
}

func TestFaultTolerantNaive_FailsInductiveStep(t *testing.T) {
	a, err := FaultTolerantNaive()
	require.NoError(t, err)

	cex, err := a.CheckAnnotations(context.Background(), oracle())
	require.NoError(t, err)
	require.NotNil(t, cex)
	assert.Equal(t, network.KindInductive, cex.Kind())

	// The counterexample fixes every failure variable.
	switch c := cex.(type) {
	case network.InductiveCounterexample:
		assert.Len(t, c.Assignment, 6)
	default:
		t.Fatalf("got %T: %s", cex, cex.Summary())
	}
}

func TestChecks_RerunsReproduceVerdicts(t *testing.T) {
	// Every query declares fresh variables and a fresh solver context, so
	// rerunning a check on the same network must reproduce its verdict.
	a, err := Path(3)
	require.NoError(t, err)
	o := oracle()
	for run := 0; run < 2; run++ {
		cex, err := a.CheckAnnotations(context.Background(), o)
		require.NoError(t, err)
		assert.Nil(t, cex, "run %d: %v", run, summaryOf(cex))

		mono, err := a.CheckMonolithic(context.Background(), o)
		require.NoError(t, err)
		assert.Nil(t, mono, "run %d: %v", run, summaryOf(mono))
	}

	u, err := PathUnsound(3)
	require.NoError(t, err)
	var found []network.InductiveCounterexample
	for run := 0; run < 2; run++ {
		cex, err := u.CheckAnnotations(context.Background(), o)
		require.NoError(t, err)
		require.NotNil(t, cex, "run %d", run)
		ind, ok := cex.(network.InductiveCounterexample)
		require.True(t, ok, "run %d: got %T: %s", run, cex, cex.Summary())
		found = append(found, ind)
	}
	assert.Equal(t, found[0].Node, found[1].Node)
	assert.Equal(t, found[0].Kind(), found[1].Kind())
}

func summaryOf(cex network.Counterexample) string {
	if cex == nil {
		return "<nil>"
	}
	return cex.Summary()
}
