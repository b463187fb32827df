package parser

import (
	"path/filepath"
	"regexp"
	"strings"
)

var (
	// SMB-NTLMv2-SSP-10.0.0.1, SMB-NTLMv2-SSP-::ffff:10.0.0.1
	reIPv4Suffix = regexp.MustCompile(`-(?:[0-9A-Fa-f]*:[0-9A-Fa-f:]*:)?\d{1,3}(?:\.\d{1,3}){3}.*$`)
	// HTTP-NTLMv1-fe80::1, HTTP-NTLMv1-fe80::1%eth0
	reIPv6Suffix = regexp.MustCompile(`-[0-9A-Fa-f]*:[0-9A-Fa-f:]*(?:%\w+)?$`)
)

// HashTypeFromFilename derives the hash type label from a capture file name.
// The client address suffix is stripped; the remainder is returned verbatim.
func HashTypeFromFilename(path string) string {
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))

	if loc := reIPv4Suffix.FindStringIndex(stem); loc != nil {
		return stem[:loc[0]]
	}
	if loc := reIPv6Suffix.FindStringIndex(stem); loc != nil {
		return stem[:loc[0]]
	}
	return stem
}

// IdentityOf returns the text before the first ':' of a capture line, or the
// whole line when it has no colon.
func IdentityOf(rawLine string) string {
	if i := strings.IndexByte(rawLine, ':'); i >= 0 {
		return rawLine[:i]
	}
	return rawLine
}

// IsSkippable reports whether a line carries no record: blank, or starting
// with '#'. Only a '#' in the first column marks a comment.
func IsSkippable(line string) bool {
	return strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#")
}

// CaptureParser parses the lines of one capture file. The hash type is
// derived once per file.
type CaptureParser struct {
	hashType string
}

// NewCaptureParser creates a parser for lines read from path.
func NewCaptureParser(path string) *CaptureParser {
	return &CaptureParser{hashType: HashTypeFromFilename(path)}
}

// NewCaptureParserForType creates a parser with an already derived hash type.
func NewCaptureParserForType(hashType string) *CaptureParser {
	return &CaptureParser{hashType: hashType}
}

// HashType returns the label attached to every credential from this file.
func (p *CaptureParser) HashType() string {
	return p.hashType
}

// Parse implements the Parser interface. The second result is false for
// lines that must be skipped.
func (p *CaptureParser) Parse(line string) (CapturedCredential, bool) {
	line = strings.TrimRight(line, "\r\n")
	if IsSkippable(line) {
		return CapturedCredential{}, false
	}

	identity := IdentityOf(line)
	if identity == "" && p.hashType == "" {
		return CapturedCredential{}, false
	}

	return CapturedCredential{
		HashType: p.hashType,
		Identity: identity,
		RawLine:  line,
	}, true
}
