package merge

import "credmerge/internal/parser"

// Counters are the per-run totals kept by the Engine.
type Counters struct {
	TotalScanned      int
	UniqueNew         int
	MachineAccountNew int
}

// NewEntries is the number of records this run adds to the output.
func (c Counters) NewEntries() int {
	return c.UniqueNew
}

// Engine filters parsed credentials against the seen set. The first record
// seen for a key wins; later ones are dropped.
type Engine struct {
	seen     *SeenSet
	accepted []parser.OutputRecord
	counters Counters
}

// NewEngine creates an engine pre-seeded with seen. A nil set starts empty.
func NewEngine(seen *SeenSet) *Engine {
	if seen == nil {
		seen = NewSeenSet()
	}
	return &Engine{seen: seen}
}

// Process applies one credential and reports whether it was accepted.
func (e *Engine) Process(c parser.CapturedCredential) bool {
	e.counters.TotalScanned++

	if !e.seen.Add(KeyFor(c)) {
		return false
	}

	e.accepted = append(e.accepted, parser.OutputRecord{
		HashType: c.HashType,
		RawLine:  c.RawLine,
	})
	e.counters.UniqueNew++
	// counted only, never filtered
	if c.IsMachineAccount() {
		e.counters.MachineAccountNew++
	}
	return true
}

// ProcessLines parses and applies the lines of one source file in order.
// It returns the number of accepted records.
func (e *Engine) ProcessLines(p parser.Parser, lines []string) int {
	accepted := 0
	for _, line := range lines {
		c, ok := p.Parse(line)
		if !ok {
			continue
		}
		if e.Process(c) {
			accepted++
		}
	}
	return accepted
}

// Accepted returns the newly accepted records in processing order.
func (e *Engine) Accepted() []parser.OutputRecord {
	return e.accepted
}

// Counters returns a snapshot of the run counters.
func (e *Engine) Counters() Counters {
	return e.counters
}

// Seen exposes the seen set.
func (e *Engine) Seen() *SeenSet {
	return e.seen
}
