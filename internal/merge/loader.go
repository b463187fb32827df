package merge

import "credmerge/internal/parser"

// LoadStats describes what LoadSeen found in an existing output file.
type LoadStats struct {
	Records  int // non-blank, non-comment lines
	Degraded int // lines without a "[hash_type]" prefix
	Keys     int // distinct keys
}

// LoadSeen rebuilds the seen set from the lines of a previously written
// consolidated file. It never fails: lines without a bracket prefix are keyed
// with an empty hash type.
func LoadSeen(lines []string) (*SeenSet, LoadStats) {
	seen := NewSeenSet()
	var stats LoadStats

	for _, line := range lines {
		rec, ok := parser.ParseOutputLine(line)
		if !ok {
			continue
		}
		stats.Records++
		if rec.Degraded {
			stats.Degraded++
		}
		seen.Add(KeyOf(rec.Identity, rec.HashType))
	}

	stats.Keys = seen.Len()
	return seen, stats
}
