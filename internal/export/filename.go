package export

import "strings"

// NamingRules describes a storage backend's file-naming restrictions:
// which characters are allowed as-is and what to substitute for the rest.
// Characters that are neither allowed nor mapped are dropped.
type NamingRules struct {
	Allowed      func(r rune) bool
	Replacements map[rune]string
}

// WindowsNaming covers the characters NTFS and FAT reject in file names.
// The replacement tokens keep sanitized names readable and reversible
// enough for humans.
var WindowsNaming = NamingRules{
	Allowed: func(r rune) bool {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return true
		case r == '_', r == '-', r == '.':
			return true
		}
		return false
	},
	Replacements: map[rune]string{
		'<':  "LESS_THAN",
		'>':  "GREATER_THAN",
		':':  "COLON",
		'"':  "D_QUOTE",
		'/':  "F_SLASH",
		'\\': "B_SLASH",
		'|':  "OR",
		'?':  "CONDITION",
		'*':  "ALL",
		' ':  "_",
	},
}

// Sanitize rewrites name so it is legal under the rules.
func (n NamingRules) Sanitize(name string) string {
	var b strings.Builder
	for _, r := range name {
		if n.Allowed(r) {
			b.WriteRune(r)
			continue
		}
		if repl, ok := n.Replacements[r]; ok {
			b.WriteString(repl)
		}
	}
	return b.String()
}
