// Package archive relocates consumed capture files into a dated directory
// once the consolidated output has been committed.
package archive

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DefaultDateLayout names archive directories YYYY-MM-DD.
const DefaultDateLayout = "2006-01-02"

// Clock supplies the current time; injected so that archive naming is testable.
type Clock func() time.Time

// MoveFailure records a source file that could not be relocated.
type MoveFailure struct {
	Path string
	Err  error
}

func (f MoveFailure) Error() string {
	return fmt.Sprintf("archive %s: %v", f.Path, f.Err)
}

func (f MoveFailure) Unwrap() error {
	return f.Err
}

// Result is the outcome of one archive pass. Moved counts successes only.
type Result struct {
	Dir      string
	Moved    int
	Failures []MoveFailure
}

// Archiver relocates source files into destDir.
type Archiver interface {
	Archive(destDir string, paths []string) Result
}

// DirFor returns <logsDir>/<now formatted with layout>.
func DirFor(logsDir string, now time.Time, layout string) string {
	if layout == "" {
		layout = DefaultDateLayout
	}
	return filepath.Join(logsDir, now.Format(layout))
}

// Mover archives files with os.Rename. A failed move is recorded and the
// remaining files are still attempted.
type Mover struct {
	logger *zap.Logger
	rename func(oldpath, newpath string) error
}

// NewMover creates a Mover.
func NewMover(logger *zap.Logger) *Mover {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Mover{logger: logger, rename: os.Rename}
}

// Archive implements Archiver.
func (m *Mover) Archive(destDir string, paths []string) Result {
	res := Result{Dir: destDir}
	if len(paths) == 0 {
		return res
	}

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		for _, p := range paths {
			res.Failures = append(res.Failures, MoveFailure{Path: p, Err: err})
		}
		m.logger.Error("failed to create archive directory", zap.String("dir", destDir), zap.Error(err))
		return res
	}

	for _, p := range paths {
		dest, err := freeName(filepath.Join(destDir, filepath.Base(p)))
		if err == nil {
			err = m.rename(p, dest)
		}
		if err != nil {
			m.logger.Warn("failed to archive capture file", zap.String("file", p), zap.Error(err))
			res.Failures = append(res.Failures, MoveFailure{Path: p, Err: err})
			continue
		}
		m.logger.Debug("archived capture file", zap.String("file", p), zap.String("dest", dest))
		res.Moved++
	}
	return res
}

// freeName returns path, or path with a numeric suffix when a file of the
// same name was already archived that day.
func freeName(path string) (string, error) {
	if _, err := os.Lstat(path); errors.Is(err, os.ErrNotExist) {
		return path, nil
	} else if err != nil {
		return "", err
	}

	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(path, ext)
	for i := 1; i < 10000; i++ {
		candidate := fmt.Sprintf("%s.%d%s", stem, i, ext)
		if _, err := os.Lstat(candidate); errors.Is(err, os.ErrNotExist) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("no free archive name for %s", path)
}
