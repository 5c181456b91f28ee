package runlog

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alberdingk-thijm/Timepiece/internal/network"
	"github.com/alberdingk-thijm/Timepiece/internal/report"
	"github.com/alberdingk-thijm/Timepiece/internal/symbolic"
)

func openStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "runs.db"), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Close())
}

func TestRunRoundTrip(t *testing.T) {
	started := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	clock := started
	s := openStore(t, WithClock(func() time.Time { return clock }))
	ctx := context.Background()

	id, err := s.Begin(ctx, "path")
	require.NoError(t, err)
	require.NotEmpty(t, id)

	run, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "path", run.Network)
	assert.True(t, run.StartedAt.Equal(started))
	assert.True(t, run.FinishedAt.IsZero())
	assert.Empty(t, run.Verdict)
	assert.Nil(t, run.Report)

	rep := report.New("path")
	rep.SetModular(nil)
	rep.SetMonolithic(nil)

	clock = started.Add(3 * time.Second)
	require.NoError(t, s.Finish(ctx, id, rep))

	run, err = s.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, report.VerdictProved, run.Verdict)
	assert.True(t, run.FinishedAt.Equal(clock))
	assert.JSONEq(t,
		`{"modular":{"verdict":"proved"},"monolithic":{"verdict":"proved"},"network":"path"}`,
		string(run.Report))
}

func TestFinish_RecordsCounterexampleVerdict(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	id, err := s.Begin(ctx, "path-unsound")
	require.NoError(t, err)

	rep := report.New("path-unsound")
	rep.SetModular(network.BaseCounterexample{
		Node:  "n1",
		Route: symbolic.VNone{Elem: symbolic.IntSort{}},
	})
	require.NoError(t, s.Finish(ctx, id, rep))

	run, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, report.VerdictCounterexample, run.Verdict)
	assert.Contains(t, string(run.Report), `"kind":"base"`)
}

func TestGetAndFinish_UnknownRun(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	_, err := s.Get(ctx, "no-such-run")
	assert.ErrorIs(t, err, ErrNotFound)

	err = s.Finish(ctx, "no-such-run", report.New("x"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestObligations_SequenceOrder(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	id, err := s.Begin(ctx, "path")
	require.NoError(t, err)

	require.NoError(t, s.Append(ctx, id, Obligation{Kind: "base", Node: "n0", Verdict: report.VerdictProved}))
	require.NoError(t, s.Append(ctx, id, Obligation{Kind: "base", Node: "n1", Verdict: report.VerdictProved}))
	require.NoError(t, s.Append(ctx, id, Obligation{
		Kind:    "inductive",
		Node:    "n1",
		Verdict: report.VerdictCounterexample,
		Detail:  "merged route some(1) violates its annotation",
	}))

	obs, err := s.Obligations(ctx, id)
	require.NoError(t, err)
	require.Len(t, obs, 3)
	for i, o := range obs {
		assert.Equal(t, i, o.Seq)
	}
	assert.Equal(t, "inductive", obs[2].Kind)
	assert.Equal(t, report.VerdictCounterexample, obs[2].Verdict)
}

func TestList_NewestFirstAndFiltered(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	first, err := s.Begin(ctx, "path")
	require.NoError(t, err)
	second, err := s.Begin(ctx, "fault-tolerant")
	require.NoError(t, err)
	third, err := s.Begin(ctx, "path")
	require.NoError(t, err)

	all, err := s.List(ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, third, all[0].ID)
	assert.Equal(t, second, all[1].ID)
	assert.Equal(t, first, all[2].ID)

	paths, err := s.List(ctx, "path", 0)
	require.NoError(t, err)
	require.Len(t, paths, 2)
	assert.Equal(t, third, paths[0].ID)
	assert.Equal(t, first, paths[1].ID)

	limited, err := s.List(ctx, "", 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, third, limited[0].ID)
}
