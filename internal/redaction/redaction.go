// Package redaction masks captured payloads before they are echoed to a
// terminal. The consolidated output file itself is never redacted.
package redaction

import (
	"regexp"
)

// Rule defines a redaction pattern with its replacement string.
type Rule struct {
	Name        string `json:"name" yaml:"name"`
	Pattern     string `json:"pattern" yaml:"pattern"`
	Replacement string `json:"replacement" yaml:"replacement"`
}

// PayloadRule keeps the optional "[type] " prefix and the identity of a
// capture line and masks everything after it. NTLM lines keep their empty
// second field ("user::"), cleartext "user:password" lines lose the password.
var PayloadRule = Rule{
	Name:        "payload",
	Pattern:     `^((?:\[[^\]]*\] )?[^:]*::?)[^:].*$`,
	Replacement: "${1}********",
}

type compiledRule struct {
	pattern     *regexp.Regexp
	replacement string
}

// Redactor applies redaction rules to capture lines.
type Redactor struct {
	rules []compiledRule
}

// NewRedactor creates a new Redactor with the given rules.
// Invalid regex patterns are silently skipped.
func NewRedactor(rules []Rule) *Redactor {
	r := &Redactor{
		rules: make([]compiledRule, 0, len(rules)),
	}

	for _, rule := range rules {
		pattern, err := regexp.Compile("(?i)" + rule.Pattern)
		if err != nil {
			continue
		}
		r.rules = append(r.rules, compiledRule{
			pattern:     pattern,
			replacement: rule.Replacement,
		})
	}

	return r
}

// Redact applies all rules to line and reports whether any of them matched.
func (r *Redactor) Redact(line string) (string, bool) {
	if r == nil || len(r.rules) == 0 {
		return line, false
	}

	result := line
	wasRedacted := false

	for _, rule := range r.rules {
		if rule.pattern.MatchString(result) {
			wasRedacted = true
			result = rule.pattern.ReplaceAllString(result, rule.replacement)
		}
	}

	return result, wasRedacted
}
