package parser

import "strings"

// ExistingRecord is a line of a previously written consolidated file.
// Degraded records had no "[hash_type]" prefix; they are still keyed, with an
// empty hash type, so that a damaged history never blocks a merge.
type ExistingRecord struct {
	HashType string
	RawLine  string
	Identity string
	Degraded bool
}

// ParseOutputLine parses one consolidated file line. The second result is
// false for blank and comment lines.
func ParseOutputLine(line string) (ExistingRecord, bool) {
	line = strings.TrimRight(line, "\r\n")
	if IsSkippable(line) {
		return ExistingRecord{}, false
	}

	if strings.HasPrefix(line, "[") {
		if end := strings.IndexByte(line, ']'); end > 0 {
			raw := strings.TrimPrefix(line[end+1:], " ")
			return ExistingRecord{
				HashType: line[1:end],
				RawLine:  raw,
				Identity: IdentityOf(raw),
			}, true
		}
	}

	return ExistingRecord{
		RawLine:  line,
		Identity: IdentityOf(line),
		Degraded: true,
	}, true
}

// SortKey returns the identity used to order consolidated file lines.
func SortKey(line string) string {
	rec, ok := ParseOutputLine(line)
	if !ok {
		return ""
	}
	return rec.Identity
}
