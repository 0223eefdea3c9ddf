package launch

import (
	"strings"
	"unicode"
)

// ParseArguments splits an argument string. Whitespace separates arguments and
// double quotes group text containing whitespace. Quotes are removed; there is
// no escape character, so a quote can never appear inside an argument.
func ParseArguments(s string) []string {
	var (
		out     []string
		cur     strings.Builder
		inQuote bool
		started bool
	)
	for _, r := range s {
		switch {
		case r == '"':
			inQuote = !inQuote
			started = true
		case unicode.IsSpace(r) && !inQuote:
			if started {
				out = append(out, cur.String())
				cur.Reset()
				started = false
			}
		default:
			cur.WriteRune(r)
			started = true
		}
	}
	if started {
		out = append(out, cur.String())
	}
	return out
}

// ConfiguredScope returns the entries a coverage run should analyze: the
// coverage scope attribute when present, otherwise the classpath.
func ConfiguredScope(cfg Configuration) []string {
	if cfg.HasAttribute(AttrCoverageScope) {
		return cfg.ListAttribute(AttrCoverageScope)
	}
	return cfg.ListAttribute(AttrClasspath)
}
