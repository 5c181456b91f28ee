package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alberdingk-thijm/Timepiece/internal/report"
	"github.com/alberdingk-thijm/Timepiece/internal/runlog"
	"github.com/alberdingk-thijm/Timepiece/internal/solver"
	"github.com/alberdingk-thijm/Timepiece/internal/symbolic"
	"github.com/alberdingk-thijm/Timepiece/internal/testutil"
)

func satOracle() *testutil.FakeOracle {
	fo := &testutil.FakeOracle{}
	fo.Script = func(_ symbolic.Term, vars []symbolic.Var) (solver.Result, error) {
		return solver.Sat{Model: testutil.ZeroModel(vars)}, nil
	}
	return fo
}

func TestExecuteCheck_Proved(t *testing.T) {
	fo := &testutil.FakeOracle{}
	rep, err := executeCheck(context.Background(), checkRequest{
		Network: "path",
		Size:    3,
		Oracle:  fo,
	}, nil)
	require.NoError(t, err)

	assert.True(t, rep.Proved())
	require.NotNil(t, rep.Modular)
	assert.Nil(t, rep.Monolithic, "monolithic not requested")
	assert.Equal(t, 9, fo.CallCount())
}

func TestExecuteCheck_MonolithicAddsOneQuery(t *testing.T) {
	fo := &testutil.FakeOracle{}
	rep, err := executeCheck(context.Background(), checkRequest{
		Network:    "path",
		Size:       3,
		Monolithic: true,
		Oracle:     fo,
	}, nil)
	require.NoError(t, err)

	assert.True(t, rep.Proved())
	require.NotNil(t, rep.Monolithic)
	assert.Equal(t, 10, fo.CallCount())
}

func TestExecuteCheck_UnknownNetwork(t *testing.T) {
	_, err := executeCheck(context.Background(), checkRequest{
		Network: "no-such-network",
		Oracle:  &testutil.FakeOracle{},
	}, nil)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestExecuteCheck_RecordsRun(t *testing.T) {
	store, err := runlog.Open(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	defer store.Close()
	ctx := context.Background()

	// A proved run records every modular phase plus the monolithic check.
	rep, err := executeCheck(ctx, checkRequest{
		Network:    "path",
		Size:       3,
		Monolithic: true,
		Oracle:     &testutil.FakeOracle{},
	}, store)
	require.NoError(t, err)
	require.True(t, rep.Proved())

	runs, err := store.List(ctx, "path", 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, report.VerdictProved, runs[0].Verdict)
	assert.False(t, runs[0].FinishedAt.IsZero())

	obs, err := store.Obligations(ctx, runs[0].ID)
	require.NoError(t, err)
	require.Len(t, obs, 4)
	assert.Equal(t, "base", obs[0].Kind)
	assert.Equal(t, "inductive", obs[1].Kind)
	assert.Equal(t, "safety", obs[2].Kind)
	assert.Equal(t, "monolithic", obs[3].Kind)
	for _, o := range obs {
		assert.Equal(t, report.VerdictProved, o.Verdict)
	}
}

func TestExecuteCheck_RecordsCounterexample(t *testing.T) {
	store, err := runlog.Open(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	defer store.Close()
	ctx := context.Background()

	rep, err := executeCheck(ctx, checkRequest{
		Network: "path",
		Size:    3,
		Oracle:  satOracle(),
	}, store)
	require.NoError(t, err)
	require.False(t, rep.Proved())

	runs, err := store.List(ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, report.VerdictCounterexample, runs[0].Verdict)

	// The base phase fails, so it is the only recorded obligation.
	obs, err := store.Obligations(ctx, runs[0].ID)
	require.NoError(t, err)
	require.Len(t, obs, 1)
	assert.Equal(t, "base", obs[0].Kind)
	assert.Equal(t, report.VerdictCounterexample, obs[0].Verdict)
	assert.NotEmpty(t, obs[0].Node)
	assert.Contains(t, obs[0].Detail, "base case fails")
}

func newOutputCommand(buf *bytes.Buffer) *cobra.Command {
	cmd := &cobra.Command{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	return cmd
}

func TestRunBatch_TextOutputAndExitCode(t *testing.T) {
	cfgPath := writeConfig(t, `
checks:
  - network: path
  - network: fault-tolerant
`)

	var buf bytes.Buffer
	opts := &RunOptions{
		RootOptions: &RootOptions{Format: "text"},
		Oracle:      &testutil.FakeOracle{},
	}
	err := runBatch(newOutputCommand(&buf), opts, cfgPath)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "network: path")
	assert.Contains(t, out, "network: fault-tolerant")
	assert.Contains(t, out, "modular: proved")
}

func TestRunBatch_CounterexampleExitsWithFailure(t *testing.T) {
	cfgPath := writeConfig(t, `
checks:
  - network: path
`)

	var buf bytes.Buffer
	opts := &RunOptions{
		RootOptions: &RootOptions{Format: "text"},
		Oracle:      satOracle(),
	}
	err := runBatch(newOutputCommand(&buf), opts, cfgPath)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, buf.String(), "modular: counterexample")
}

func TestRunCheck_RendersCommandErrors(t *testing.T) {
	var buf bytes.Buffer
	opts := &CheckOptions{
		RootOptions: &RootOptions{Format: "json"},
		Size:        3,
		Oracle:      &testutil.FakeOracle{},
	}
	err := runCheck(newOutputCommand(&buf), opts, "no-such-network")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	var resp Response
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "failed to build network", resp.Error.Message)
}

func TestRunBatch_RendersCommandErrors(t *testing.T) {
	var buf bytes.Buffer
	opts := &RunOptions{
		RootOptions: &RootOptions{Format: "text"},
		Oracle:      &testutil.FakeOracle{},
	}
	err := runBatch(newOutputCommand(&buf), opts, filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, buf.String(), "error: failed to load run config")
}

func TestRunBatch_VerboseAnnouncesChecks(t *testing.T) {
	cfgPath := writeConfig(t, `
checks:
  - network: path
`)

	var out, diag bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)
	cmd.SetErr(&diag)
	opts := &RunOptions{
		RootOptions: &RootOptions{Format: "text", Verbose: true},
		Oracle:      &testutil.FakeOracle{},
	}
	require.NoError(t, runBatch(cmd, opts, cfgPath))

	assert.Contains(t, diag.String(), "check 1 of 1: path")
	// Diagnostics stay out of the report stream.
	assert.NotContains(t, out.String(), "check 1 of 1")
}

func TestReportCommand_ListsAndShowsRuns(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "runs.db")
	store, err := runlog.Open(dbPath)
	require.NoError(t, err)

	ctx := context.Background()
	id, err := store.Begin(ctx, "path")
	require.NoError(t, err)
	rep := report.New("path")
	rep.SetModular(nil)
	require.NoError(t, store.Finish(ctx, id, rep))
	require.NoError(t, store.Close())

	var buf bytes.Buffer
	cmd := NewReportCommand(&RootOptions{Format: "text"})
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs([]string{"--db", dbPath})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), id)
	assert.Contains(t, buf.String(), "proved")

	buf.Reset()
	cmd = NewReportCommand(&RootOptions{Format: "text"})
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs([]string{"--db", dbPath, id})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "network: path")
	assert.Contains(t, buf.String(), "verdict: proved")
}
