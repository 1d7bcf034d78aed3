// Package pattern compiles override patterns (glob or regex) into reusable
// matchers, factored out of the Importance Engine the way iris factors its
// ring buffer out into internal/zephyroslite.
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0
package pattern

import (
	"regexp"
	"strings"
)

// Matcher is a compiled pattern ready for repeated matching.
type Matcher struct {
	re *regexp.Regexp
}

// Compile translates a pattern into a reusable Matcher. If useRegex, the
// pattern is compiled as-is (anchored to match the whole input, per
// spec.md §4.4). Otherwise it is treated as a glob: '*' matches any run of
// characters, '?' matches a single character, everything else is escaped.
// Returns an error for a malformed pattern; callers must reject insertion
// on error rather than partially installing an override.
func Compile(pat string, useRegex bool) (*Matcher, error) {
	var expr string
	if useRegex {
		expr = anchor(pat)
	} else {
		expr = anchor(globToRegex(pat))
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, err
	}
	return &Matcher{re: re}, nil
}

func anchor(expr string) string {
	return "^(?:" + strings.TrimPrefix(strings.TrimSuffix(expr, "$"), "^") + ")$"
}

func globToRegex(glob string) string {
	var b strings.Builder
	for _, r := range glob {
		switch r {
		case '*':
			b.WriteString(".*")
		case '?':
			b.WriteString(".")
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	return b.String()
}

// MatchString reports whether s matches the compiled pattern in full.
func (m *Matcher) MatchString(s string) bool {
	if m == nil {
		return false
	}
	return m.re.MatchString(s)
}
