// Package output reads, orders and atomically replaces the consolidated
// hash file.
package output

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"credmerge/internal/parser"

	"github.com/google/uuid"
)

var (
	// ErrRead is returned when an existing output file cannot be read.
	ErrRead = errors.New("output read failed")
	// ErrWrite is returned when the temp write or the rename fails. The
	// previous file is left untouched.
	ErrWrite = errors.New("output write failed")
)

// ReadLines returns the non-blank lines of the file at path. A missing file
// yields no lines and no error.
func ReadLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %w", ErrRead, err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 10*1024*1024)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrRead, path, err)
	}
	return lines, nil
}

// Merge appends the accepted records to the existing lines and orders the
// result by identity. Equal identities keep their input order.
func Merge(existing []string, accepted []parser.OutputRecord) []string {
	merged := make([]string, 0, len(existing)+len(accepted))
	merged = append(merged, existing...)
	for _, rec := range accepted {
		merged = append(merged, rec.String())
	}

	slices.SortStableFunc(merged, func(a, b string) int {
		return strings.Compare(parser.SortKey(a), parser.SortKey(b))
	})
	return merged
}

// WriteAtomic writes lines to a temporary file next to path and renames it
// over path. Readers see either the old file or the complete new one. A
// replaced file keeps its permission bits; a new file is created 0600.
func WriteAtomic(path string, lines []string) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: create output dir: %w", ErrWrite, err)
	}

	tmpPath := filepath.Join(dir, fmt.Sprintf(".%s.%s.tmp", filepath.Base(path), uuid.NewString()))
	f, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return fmt.Errorf("%w: create temp file: %w", ErrWrite, err)
	}
	defer func() {
		if err != nil {
			f.Close()
			os.Remove(tmpPath)
		}
	}()

	w := bufio.NewWriter(f)
	for _, line := range lines {
		if _, err = w.WriteString(line + "\n"); err != nil {
			return fmt.Errorf("%w: write temp file: %w", ErrWrite, err)
		}
	}
	if err = w.Flush(); err != nil {
		return fmt.Errorf("%w: flush temp file: %w", ErrWrite, err)
	}
	if info, statErr := os.Stat(path); statErr == nil {
		if err = f.Chmod(info.Mode().Perm()); err != nil {
			return fmt.Errorf("%w: chmod temp file: %w", ErrWrite, err)
		}
	}
	if err = f.Sync(); err != nil {
		return fmt.Errorf("%w: sync temp file: %w", ErrWrite, err)
	}
	if err = f.Close(); err != nil {
		return fmt.Errorf("%w: close temp file: %w", ErrWrite, err)
	}
	if err = os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("%w: rename into place: %w", ErrWrite, err)
	}
	syncDir(dir)
	return nil
}

// syncDir flushes the directory entry of a completed rename. Some
// filesystems refuse to fsync a directory, so failures are ignored.
func syncDir(dir string) {
	d, err := os.Open(dir)
	if err != nil {
		return
	}
	defer d.Close()
	_ = d.Sync()
}
