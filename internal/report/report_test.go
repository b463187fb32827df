package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"credmerge/internal/redaction"
	"credmerge/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReport() *types.RunReport {
	return &types.RunReport{
		RunID:             "run-1",
		LogsDir:           "/logs",
		OutputPath:        "/out/consolidated_hashes.txt",
		ArchiveDir:        "/logs/2026-10-18",
		SourceFiles:       2,
		TotalScanned:      3,
		UniqueNew:         2,
		NewEntries:        2,
		MachineAccountNew: 1,
		OutputRecords:     2,
		Archived:          2,
		Outcome:           types.OutcomeCommitted,
		NewRecords: []string{
			"[SMB-NTLMv2-SSP] Alice::CORP:1122:aabb:0101",
			"[HTTP-NTLMv1] Bob$::CORP:3344:ccdd:0202",
		},
	}
}

func TestConsoleReporter_Summary(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewConsoleReporter(&buf, false, nil).Report(sampleReport()))

	out := buf.String()
	assert.Contains(t, out, "Capture merge complete")
	assert.Contains(t, out, "Total scanned:")
	assert.Contains(t, out, "New entries:")
	assert.Contains(t, out, "/logs/2026-10-18")
	assert.NotContains(t, out, "Alice")
}

func TestConsoleReporter_ShowNewMasked(t *testing.T) {
	var buf bytes.Buffer
	r := NewConsoleReporter(&buf, true, redaction.NewRedactor([]redaction.Rule{redaction.PayloadRule}))
	require.NoError(t, r.Report(sampleReport()))

	out := buf.String()
	assert.Contains(t, out, "[SMB-NTLMv2-SSP] Alice::********")
	assert.Contains(t, out, "[HTTP-NTLMv1] Bob$::********")
	assert.NotContains(t, out, "1122")
}

func TestConsoleReporter_ShowNewMasksCleartext(t *testing.T) {
	rep := sampleReport()
	rep.NewRecords = append(rep.NewRecords, "[MSSQL-Cleartext] sa:Sup3rSecret!")

	var buf bytes.Buffer
	r := NewConsoleReporter(&buf, true, redaction.NewRedactor([]redaction.Rule{redaction.PayloadRule}))
	require.NoError(t, r.Report(rep))

	out := buf.String()
	assert.Contains(t, out, "[MSSQL-Cleartext] sa:********")
	assert.NotContains(t, out, "Sup3rSecret")
	assert.Contains(t, out, "[SMB-NTLMv2-SSP] Alice::********")
}

func TestConsoleReporter_NoInput(t *testing.T) {
	var buf bytes.Buffer
	rep := &types.RunReport{LogsDir: "/logs", Outcome: types.OutcomeNoInput}
	require.NoError(t, NewConsoleReporter(&buf, false, nil).Report(rep))
	assert.Contains(t, buf.String(), "No capture files found in /logs")
}

func TestJSONReporter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewJSONReporter(&buf).Report(sampleReport()))

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, float64(3), got["total_scanned"])
	assert.Equal(t, float64(2), got["new_entries"])
	assert.Equal(t, float64(1), got["machine_account_new"])
	assert.NotContains(t, got, "NewRecords")
}

type failing struct{ calls int }

func (f *failing) Report(*types.RunReport) error {
	f.calls++
	return errors.New("sink down")
}

func TestMulti_CallsEverySink(t *testing.T) {
	a, b := &failing{}, &failing{}
	err := Multi{a, nil, b}.Report(sampleReport())

	require.Error(t, err)
	assert.Equal(t, 1, a.calls)
	assert.Equal(t, 1, b.calls)
}
