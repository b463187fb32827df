package ingest

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"credmerge/internal/parser"
)

var (
	// ErrConfiguration means the logs directory is missing or unreadable.
	ErrConfiguration = errors.New("logs directory unavailable")
	// ErrNoInput means the logs directory holds no capture files.
	ErrNoInput = errors.New("no capture files found")
)

// SourceFile is one discovered capture file
type SourceFile struct {
	Path     string
	HashType string
}

// Discoverer supplies the capture files for a run
type Discoverer interface {
	Discover() ([]SourceFile, error)
}

// DirDiscoverer lists capture files directly inside a logs directory
type DirDiscoverer struct {
	Dir       string
	Extension string
	Sort      bool
	exclude   map[string]bool
}

// NewDirDiscoverer creates a discoverer for dir. Files listed in exclude
// (typically the consolidated output) are never returned.
func NewDirDiscoverer(dir, extension string, sorted bool, exclude ...string) *DirDiscoverer {
	d := &DirDiscoverer{
		Dir:       dir,
		Extension: extension,
		Sort:      sorted,
		exclude:   make(map[string]bool),
	}
	for _, p := range exclude {
		if abs, err := filepath.Abs(p); err == nil {
			d.exclude[abs] = true
		}
	}
	return d
}

// Discover implements Discoverer. Only regular files at depth 1 whose name
// ends with the configured extension are returned.
func (d *DirDiscoverer) Discover() ([]SourceFile, error) {
	info, err := os.Stat(d.Dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrConfiguration, d.Dir)
	}

	entries, err := os.ReadDir(d.Dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}

	var files []SourceFile
	for _, e := range entries {
		if !e.Type().IsRegular() || !d.Matches(e.Name()) {
			continue
		}
		path := filepath.Join(d.Dir, e.Name())
		if abs, err := filepath.Abs(path); err == nil && d.exclude[abs] {
			continue
		}
		files = append(files, SourceFile{
			Path:     path,
			HashType: parser.HashTypeFromFilename(path),
		})
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("%w in %s (*%s)", ErrNoInput, d.Dir, d.Extension)
	}

	if d.Sort {
		sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	}
	return files, nil
}

// Matches reports whether name carries the capture extension.
func (d *DirDiscoverer) Matches(name string) bool {
	if strings.HasPrefix(name, ".") {
		return false
	}
	return strings.HasSuffix(name, d.Extension)
}

// ReadLines returns every line of a capture file, in file order.
func ReadLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open capture file: %w", err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	// NTLMv2 blobs can be long
	scanner.Buffer(make([]byte, 0, 64*1024), 10*1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read capture file %s: %w", path, err)
	}
	return lines, nil
}
