package state

import (
	"credmerge/internal/types"
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Run is one row of the run history
type Run struct {
	ID                string    `json:"run_id"`
	StartedAt         time.Time `json:"started_at"`
	FinishedAt        time.Time `json:"finished_at"`
	LogsDir           string    `json:"logs_dir"`
	OutputPath        string    `json:"output_path"`
	SourceFiles       int       `json:"source_files"`
	TotalScanned      int       `json:"total_scanned"`
	UniqueNew         int       `json:"unique_new"`
	MachineAccountNew int       `json:"machine_account_new"`
	OutputRecords     int       `json:"output_records"`
	Archived          int       `json:"archived"`
	ArchiveFailures   int       `json:"archive_failures"`
	Outcome           string    `json:"outcome"`
	Error             string    `json:"error,omitempty"`
}

// Store keeps the run history in sqlite
type Store struct {
	db *sql.DB
}

func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	query := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		started_at DATETIME,
		finished_at DATETIME,
		logs_dir TEXT,
		output_path TEXT,
		source_files INTEGER,
		total_scanned INTEGER,
		unique_new INTEGER,
		machine_account_new INTEGER,
		output_records INTEGER,
		archived INTEGER,
		archive_failures INTEGER,
		outcome TEXT,
		error TEXT
	);`
	_, err = db.Exec(query)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// SaveRun records a finished run
func (s *Store) SaveRun(rep *types.RunReport) error {
	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO runs
		(id, started_at, finished_at, logs_dir, output_path, source_files, total_scanned,
		 unique_new, machine_account_new, output_records, archived, archive_failures, outcome, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		rep.RunID,
		rep.StartedAt.UTC(),
		rep.FinishedAt.UTC(),
		rep.LogsDir,
		rep.OutputPath,
		rep.SourceFiles,
		rep.TotalScanned,
		rep.UniqueNew,
		rep.MachineAccountNew,
		rep.OutputRecords,
		rep.Archived,
		len(rep.ArchiveFailures),
		string(rep.Outcome),
		rep.Error,
	)
	return err
}

// Report implements report.Reporter
func (s *Store) Report(rep *types.RunReport) error {
	return s.SaveRun(rep)
}

// ListRuns returns the most recent runs first
func (s *Store) ListRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(`
		SELECT id, started_at, finished_at, logs_dir, output_path, source_files, total_scanned,
		       unique_new, machine_account_new, output_records, archived, archive_failures, outcome, error
		FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		err = rows.Scan(
			&r.ID,
			&r.StartedAt,
			&r.FinishedAt,
			&r.LogsDir,
			&r.OutputPath,
			&r.SourceFiles,
			&r.TotalScanned,
			&r.UniqueNew,
			&r.MachineAccountNew,
			&r.OutputRecords,
			&r.Archived,
			&r.ArchiveFailures,
			&r.Outcome,
			&r.Error,
		)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}

	return runs, rows.Err()
}

func (s *Store) Close() error {
	return s.db.Close()
}
