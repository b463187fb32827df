// Package report delivers run reports to the console and to the
// machine-readable sinks (audit log, run history, metrics).
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"credmerge/internal/redaction"
	"credmerge/internal/types"

	"github.com/charmbracelet/lipgloss"
)

// Reporter receives the report of every run, whatever its outcome.
type Reporter interface {
	Report(rep *types.RunReport) error
}

// Multi fans a report out to several sinks. Every sink is called; errors are
// joined.
type Multi []Reporter

func (m Multi) Report(rep *types.RunReport) error {
	var errs []error
	for _, r := range m {
		if r == nil {
			continue
		}
		if err := r.Report(rep); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// JSONReporter prints the report as a single JSON document.
type JSONReporter struct {
	w io.Writer
}

func NewJSONReporter(w io.Writer) *JSONReporter {
	return &JSONReporter{w: w}
}

func (j *JSONReporter) Report(rep *types.RunReport) error {
	enc := json.NewEncoder(j.w)
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}

// ConsoleReporter prints a human summary.
type ConsoleReporter struct {
	w        io.Writer
	showNew  bool
	redactor *redaction.Redactor

	title lipgloss.Style
	label lipgloss.Style
	good  lipgloss.Style
	warn  lipgloss.Style
	bad   lipgloss.Style
}

// NewConsoleReporter creates a console reporter. When showNew is set the
// accepted records are listed, masked by redactor.
func NewConsoleReporter(w io.Writer, showNew bool, redactor *redaction.Redactor) *ConsoleReporter {
	r := lipgloss.NewRenderer(w)
	return &ConsoleReporter{
		w:        w,
		showNew:  showNew,
		redactor: redactor,
		title:    r.NewStyle().Bold(true),
		label:    r.NewStyle().Width(22),
		good:     r.NewStyle().Foreground(lipgloss.Color("10")),
		warn:     r.NewStyle().Foreground(lipgloss.Color("11")),
		bad:      r.NewStyle().Foreground(lipgloss.Color("9")),
	}
}

func (c *ConsoleReporter) Report(rep *types.RunReport) error {
	var err error
	p := func(format string, args ...any) {
		if err == nil {
			_, err = fmt.Fprintf(c.w, format, args...)
		}
	}
	row := func(label string, value any) {
		p("%s %v\n", c.label.Render(label+":"), value)
	}

	switch rep.Outcome {
	case types.OutcomeNoInput:
		p("%s\n", c.warn.Render("No capture files found in "+rep.LogsDir))
		return err
	case types.OutcomeFailed:
		p("%s\n", c.bad.Render("Run failed: "+rep.Error))
		return err
	}

	heading := "Capture merge complete"
	if rep.DryRun {
		heading = "Capture merge (dry run, nothing written)"
	}
	p("%s\n", c.title.Render(heading))
	row("Source files", rep.SourceFiles)
	row("Total scanned", rep.TotalScanned)
	row("New entries", c.good.Render(fmt.Sprint(rep.NewEntries)))
	row("Machine accounts new", rep.MachineAccountNew)
	row("Existing records", rep.ExistingRecords)
	if rep.DegradedExisting > 0 {
		row("Unbracketed existing", c.warn.Render(fmt.Sprint(rep.DegradedExisting)))
	}
	row("Output records", rep.OutputRecords)
	row("Output file", rep.OutputPath)
	if !rep.DryRun && rep.ArchiveDir != "" {
		row("Archived", fmt.Sprintf("%d -> %s", rep.Archived, rep.ArchiveDir))
	}
	for _, f := range rep.ArchiveFailures {
		p("%s\n", c.bad.Render(fmt.Sprintf("  archive failed: %s: %s", f.Path, f.Error)))
	}

	if c.showNew && len(rep.NewRecords) > 0 {
		p("\n%s\n", c.title.Render("New records"))
		for _, line := range rep.NewRecords {
			masked, _ := c.redactor.Redact(line)
			p("  %s\n", masked)
		}
	}
	return err
}
