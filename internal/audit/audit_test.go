package audit

import (
	"bufio"
	"credmerge/internal/types"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestLogger_LogRun_Appends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.log")
	l := NewLogger(path)

	for i, id := range []string{"run-1", "run-2"} {
		rep := &types.RunReport{RunID: id, UniqueNew: i + 1, Outcome: types.OutcomeCommitted}
		if err := l.Report(rep); err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("Failed to open audit log: %v", err)
	}
	defer f.Close()

	var got []types.RunReport
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var rep types.RunReport
		if err := json.Unmarshal(scanner.Bytes(), &rep); err != nil {
			t.Fatalf("Invalid JSON line %q: %v", scanner.Text(), err)
		}
		got = append(got, rep)
	}

	if len(got) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(got))
	}
	if got[1].RunID != "run-2" || got[1].UniqueNew != 2 {
		t.Errorf("Unexpected second entry: %+v", got[1])
	}
	if got[0].Outcome != types.OutcomeCommitted {
		t.Errorf("Expected outcome 'committed', got '%s'", got[0].Outcome)
	}
}

func TestLogger_BadPath(t *testing.T) {
	l := NewLogger(filepath.Join(t.TempDir(), "missing", "audit.log"))
	if err := l.LogRun(types.RunReport{RunID: "x"}); err == nil {
		t.Error("Expected error for unwritable audit path")
	}
}
