package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"credmerge/internal/types"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_Report(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credmerge.prom")
	r := NewRecorder(path)

	rep := &types.RunReport{
		FinishedAt:        time.Unix(1700000000, 0),
		TotalScanned:      3,
		UniqueNew:         2,
		MachineAccountNew: 1,
		OutputRecords:     2,
		Archived:          2,
		Outcome:           types.OutcomeCommitted,
	}
	require.NoError(t, r.Report(rep))
	require.NoError(t, r.Report(rep))

	assert.Equal(t, 6.0, testutil.ToFloat64(r.Scanned))
	assert.Equal(t, 4.0, testutil.ToFloat64(r.UniqueNew))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.MachineNew))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.OutputRecords))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.Runs.WithLabelValues("committed")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "credmerge_unique_new_total 4")
	assert.Contains(t, string(data), `credmerge_runs_total{outcome="committed"} 2`)
}

func TestRecorder_FailedRunOnlyCountsOutcome(t *testing.T) {
	r := NewRecorder("")

	require.NoError(t, r.Report(&types.RunReport{TotalScanned: 5, Outcome: types.OutcomeFailed}))

	assert.Equal(t, 0.0, testutil.ToFloat64(r.Scanned))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.Runs.WithLabelValues("failed")))
}

func TestRecorder_LastRunGaugesSurviveRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credmerge.prom")
	rep := &types.RunReport{
		FinishedAt:        time.Unix(1700000000, 0),
		TotalScanned:      3,
		UniqueNew:         2,
		MachineAccountNew: 1,
		Archived:          2,
		Outcome:           types.OutcomeCommitted,
	}

	// two one-shot invocations, each with a fresh recorder
	require.NoError(t, NewRecorder(path).Report(rep))
	second := NewRecorder(path)
	require.NoError(t, second.Report(rep))

	assert.Equal(t, 2.0, testutil.ToFloat64(second.LastUniqueNew))
	assert.Equal(t, 3.0, testutil.ToFloat64(second.LastScanned))
	assert.Equal(t, 1.0, testutil.ToFloat64(second.LastSuccess))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "credmerge_last_run_unique_new 2")
	assert.Contains(t, string(data), "credmerge_last_run_machine_accounts_new 1")
	assert.Contains(t, string(data), "credmerge_last_run_success 1")
}

func TestRecorder_FailedRunResetsLastRunGauges(t *testing.T) {
	r := NewRecorder("")
	require.NoError(t, r.Report(&types.RunReport{TotalScanned: 3, UniqueNew: 2, Outcome: types.OutcomeCommitted}))
	require.NoError(t, r.Report(&types.RunReport{Outcome: types.OutcomeNoInput}))

	assert.Equal(t, 0.0, testutil.ToFloat64(r.LastUniqueNew))
	assert.Equal(t, 0.0, testutil.ToFloat64(r.LastSuccess))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.UniqueNew))
}
