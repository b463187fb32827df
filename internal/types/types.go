package types

import (
	"time"

	"credmerge/internal/redaction"
)

// Outcome describes how a run ended
type Outcome string

const (
	OutcomeCommitted Outcome = "committed"
	OutcomeDryRun    Outcome = "dry_run"
	OutcomeNoInput   Outcome = "no_input"
	OutcomeFailed    Outcome = "failed"
)

// ArchiveFailure is a source file that could not be relocated after commit
type ArchiveFailure struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

// RunReport carries the counters and outcome of one merge run
type RunReport struct {
	RunID      string    `json:"run_id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	LogsDir    string    `json:"logs_dir"`
	OutputPath string    `json:"output_path"`
	ArchiveDir string    `json:"archive_dir,omitempty"`

	SourceFiles       int `json:"source_files"`
	TotalScanned      int `json:"total_scanned"`
	UniqueNew         int `json:"unique_new"`
	NewEntries        int `json:"new_entries"` // alias of UniqueNew
	MachineAccountNew int `json:"machine_account_new"`
	ExistingRecords   int `json:"existing_records"`
	DegradedExisting  int `json:"degraded_existing,omitempty"`
	OutputRecords     int `json:"output_records"`

	Archived        int              `json:"archived"`
	ArchiveFailures []ArchiveFailure `json:"archive_failures,omitempty"`

	DryRun  bool    `json:"dry_run,omitempty"`
	Outcome Outcome `json:"outcome"`
	Error   string  `json:"error,omitempty"`

	// NewRecords holds the formatted output lines accepted in this run
	NewRecords []string `json:"-"`
}

// Config represents the application configuration
type Config struct {
	Input struct {
		LogsDir   string `yaml:"logs_dir"`
		Extension string `yaml:"extension"`
		SortFiles bool   `yaml:"sort_files"`
	} `yaml:"input"`

	Output struct {
		Path            string `yaml:"path"`
		Format          string `yaml:"format"` // text, json
		AuditLogPath    string `yaml:"audit_log_path"`
		HistoryDBPath   string `yaml:"history_db_path"`
		MetricsTextfile string `yaml:"metrics_textfile"` // node_exporter textfile collector
	} `yaml:"output"`

	Archive struct {
		Enabled    bool   `yaml:"enabled"`
		DateLayout string `yaml:"date_layout"`
	} `yaml:"archive"`

	Redaction struct {
		Rules []redaction.Rule `yaml:"rules"`
	} `yaml:"redaction"`

	Watch struct {
		Debounce string `yaml:"debounce"`
	} `yaml:"watch"`

	Notify struct {
		WebhookURL string `yaml:"webhook_url"` // Discord-compatible
	} `yaml:"notify"`
}
