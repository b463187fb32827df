package parser

import "strings"

// CapturedCredential is one capture line attributed to the hash type of the
// file it came from.
type CapturedCredential struct {
	HashType string
	Identity string // first colon-delimited field, "$" suffix kept
	RawLine  string
}

// IsMachineAccount reports whether the identity names a machine account.
func (c CapturedCredential) IsMachineAccount() bool {
	return IsMachineAccount(c.Identity)
}

// IsMachineAccount reports whether identity ends with "$".
func IsMachineAccount(identity string) bool {
	return strings.HasSuffix(identity, "$")
}

// OutputRecord is one line of the consolidated file: "[<hash_type>] <raw_line>".
type OutputRecord struct {
	HashType string
	RawLine  string
}

// String formats the record as a consolidated file line.
func (r OutputRecord) String() string {
	return "[" + r.HashType + "] " + r.RawLine
}

// Parser defines the interface for capture line parsers
type Parser interface {
	Parse(line string) (CapturedCredential, bool)
}
