// Package pipeline runs one consolidation pass: discover capture files,
// merge them into the consolidated output and archive what was consumed.
package pipeline

import (
	"errors"
	"fmt"
	"time"

	"credmerge/internal/archive"
	"credmerge/internal/ingest"
	"credmerge/internal/merge"
	"credmerge/internal/output"
	"credmerge/internal/parser"
	"credmerge/internal/report"
	"credmerge/internal/types"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Options controls a single run
type Options struct {
	LogsDir    string
	OutputPath string
	DateLayout string
	DryRun     bool
	NoArchive  bool
}

// WriteFunc commits the merged lines to the output path.
type WriteFunc func(path string, lines []string) error

// Runner wires the stages of a run. Reporter, Clock and Write are optional;
// Write defaults to output.WriteAtomic.
type Runner struct {
	Discoverer ingest.Discoverer
	Archiver   archive.Archiver
	Reporter   report.Reporter
	Clock      archive.Clock
	Write      WriteFunc
	Logger     *zap.Logger
}

// NewRunner creates a Runner reading from a logs directory. The output path
// is excluded from discovery in case it lives next to the captures.
func NewRunner(opts Options, extension string, sortFiles bool, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		Discoverer: ingest.NewDirDiscoverer(opts.LogsDir, extension, sortFiles, opts.OutputPath),
		Archiver:   archive.NewMover(logger),
		Clock:      time.Now,
		Write:      output.WriteAtomic,
		Logger:     logger,
	}
}

// Run executes one pass. The returned report is never nil; the error is
// non-nil for configuration, no-input, read and write failures. Archive
// failures are recorded in the report only.
func (r *Runner) Run(opts Options) (*types.RunReport, error) {
	logger := r.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := r.Clock
	if now == nil {
		now = time.Now
	}

	rep := &types.RunReport{
		RunID:      uuid.NewString(),
		StartedAt:  now(),
		LogsDir:    opts.LogsDir,
		OutputPath: opts.OutputPath,
		DryRun:     opts.DryRun,
	}
	logger = logger.With(zap.String("run_id", rep.RunID))

	err := r.run(opts, rep, logger, now)
	rep.FinishedAt = now()
	switch {
	case err == nil && opts.DryRun:
		rep.Outcome = types.OutcomeDryRun
	case err == nil:
		rep.Outcome = types.OutcomeCommitted
	case errors.Is(err, ingest.ErrNoInput):
		rep.Outcome = types.OutcomeNoInput
		rep.Error = err.Error()
	default:
		rep.Outcome = types.OutcomeFailed
		rep.Error = err.Error()
	}

	if r.Reporter != nil {
		if rerr := r.Reporter.Report(rep); rerr != nil {
			logger.Warn("failed to report run", zap.Error(rerr))
		}
	}
	return rep, err
}

func (r *Runner) run(opts Options, rep *types.RunReport, logger *zap.Logger, now archive.Clock) error {
	sources, err := r.Discoverer.Discover()
	if err != nil {
		return err
	}
	rep.SourceFiles = len(sources)
	logger.Info("discovered capture files", zap.Int("count", len(sources)), zap.String("dir", opts.LogsDir))

	existing, err := output.ReadLines(opts.OutputPath)
	if err != nil {
		return err
	}
	seen, stats := merge.LoadSeen(existing)
	rep.ExistingRecords = stats.Records
	rep.DegradedExisting = stats.Degraded
	if stats.Degraded > 0 {
		logger.Warn("existing output has lines without a type prefix",
			zap.Int("degraded", stats.Degraded), zap.String("file", opts.OutputPath))
	}

	engine := merge.NewEngine(seen)
	var consumed []string
	for _, src := range sources {
		lines, err := ingest.ReadLines(src.Path)
		if err != nil {
			// left in place for the next run
			logger.Warn("skipping unreadable capture file", zap.String("file", src.Path), zap.Error(err))
			continue
		}
		accepted := engine.ProcessLines(parser.NewCaptureParserForType(src.HashType), lines)
		logger.Debug("processed capture file",
			zap.String("file", src.Path),
			zap.String("hash_type", src.HashType),
			zap.Int("lines", len(lines)),
			zap.Int("accepted", accepted),
		)
		consumed = append(consumed, src.Path)
	}

	counters := engine.Counters()
	rep.TotalScanned = counters.TotalScanned
	rep.UniqueNew = counters.UniqueNew
	rep.NewEntries = counters.NewEntries()
	rep.MachineAccountNew = counters.MachineAccountNew
	for _, rec := range engine.Accepted() {
		rep.NewRecords = append(rep.NewRecords, rec.String())
	}

	merged := output.Merge(existing, engine.Accepted())
	rep.OutputRecords = len(merged)

	if opts.DryRun {
		logger.Info("dry run, output and captures left untouched", zap.Int("unique_new", rep.UniqueNew))
		return nil
	}

	write := r.Write
	if write == nil {
		write = output.WriteAtomic
	}
	if err := write(opts.OutputPath, merged); err != nil {
		return err
	}
	logger.Info("consolidated output written",
		zap.String("file", opts.OutputPath),
		zap.Int("records", rep.OutputRecords),
		zap.Int("unique_new", rep.UniqueNew),
	)

	if opts.NoArchive || r.Archiver == nil {
		return nil
	}

	dir := archive.DirFor(opts.LogsDir, now(), opts.DateLayout)
	res := r.Archiver.Archive(dir, consumed)
	rep.ArchiveDir = res.Dir
	rep.Archived = res.Moved
	for _, f := range res.Failures {
		rep.ArchiveFailures = append(rep.ArchiveFailures, types.ArchiveFailure{Path: f.Path, Error: f.Err.Error()})
	}
	if len(res.Failures) > 0 {
		logger.Warn(fmt.Sprintf("%d capture files could not be archived", len(res.Failures)), zap.String("dir", dir))
	}
	return nil
}
