package audit

import (
	"credmerge/internal/types"
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// Logger appends one JSON object per run to the audit log
type Logger struct {
	mu       sync.Mutex
	filePath string
}

// NewLogger creates a new audit logger
func NewLogger(filePath string) *Logger {
	return &Logger{
		filePath: filePath,
	}
}

// LogRun writes a run report to the audit log
func (l *Logger) LogRun(rep types.RunReport) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(l.filePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("failed to open audit log: %w", err)
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	if err := encoder.Encode(rep); err != nil {
		return fmt.Errorf("failed to encode run report: %w", err)
	}

	return nil
}

// Report implements report.Reporter
func (l *Logger) Report(rep *types.RunReport) error {
	return l.LogRun(*rep)
}
