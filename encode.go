// encode.go: Record serialization formats
//
// Grounded on iris's encoder-json.go / encoder-text.go split (one encoder
// type per output format) and its console encoder's TTY-aware ANSI colour
// handling, generalized from iris's structured Field encoding to asfmlog's
// fixed Record shape. Serialization is lossy by design (spec.md §4.1);
// JSON is the richest format.
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package asfmlog

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// FormatHuman renders a single-line human-readable representation.
func FormatHuman(r Record) string {
	return fmt.Sprintf("%s [%s] %s::%s %s",
		r.timestamp.ToISO8601(), strings.ToUpper(r.typ.String()), r.component, r.function, r.message)
}

// FormatJSON renders the record as a JSON object with the keys mandated by
// spec.md §4.1: id, timestamp_iso8601, type, importance, component,
// function, file, line, message.
func FormatJSON(r Record) string {
	imp := ""
	if v, ok := r.Importance(); ok {
		imp = v.String()
	}
	var b strings.Builder
	b.WriteByte('{')
	fmt.Fprintf(&b, "\"id\":%d,", r.id)
	fmt.Fprintf(&b, "\"timestamp_iso8601\":%s,", jsonString(r.timestamp.ToISO8601()))
	fmt.Fprintf(&b, "\"type\":%s,", jsonString(r.typ.String()))
	fmt.Fprintf(&b, "\"importance\":%s,", jsonString(imp))
	fmt.Fprintf(&b, "\"component\":%s,", jsonString(r.component))
	fmt.Fprintf(&b, "\"function\":%s,", jsonString(r.function))
	fmt.Fprintf(&b, "\"file\":%s,", jsonString(r.file))
	fmt.Fprintf(&b, "\"line\":%d,", r.line)
	fmt.Fprintf(&b, "\"message\":%s", jsonString(r.message))
	b.WriteByte('}')
	return b.String()
}

func jsonString(s string) string {
	b, _ := stringMarshal(s)
	return string(b)
}

// stringMarshal escapes s as a JSON string literal without pulling in
// encoding/json for a single scalar value.
func stringMarshal(s string) ([]byte, error) {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			if r < 0x20 {
				fmt.Fprintf(&b, `\u%04x`, r)
			} else {
				b.WriteRune(r)
			}
		}
	}
	b.WriteByte('"')
	return []byte(b.String()), nil
}

// CSVHeader is the fixed column order used by FormatCSV, per spec.md §4.1.
var CSVHeader = []string{"id", "timestamp", "type", "component", "function", "file", "line", "message"}

// FormatCSV renders the record as a single RFC-4180-quoted CSV row (no
// trailing newline; callers append their own line terminator).
func FormatCSV(r Record) string {
	var b strings.Builder
	w := csv.NewWriter(&b)
	_ = w.Write([]string{
		strconv.FormatUint(uint64(r.id), 10),
		r.timestamp.ToISO8601(),
		r.typ.String(),
		r.component,
		r.function,
		r.file,
		strconv.FormatUint(uint64(r.line), 10),
		r.message,
	})
	w.Flush()
	return strings.TrimRight(b.String(), "\r\n")
}

// ansiColorFor returns the ANSI colour escape for a severity type.
func ansiColorFor(t Type) string {
	switch t {
	case Trace:
		return "\x1b[90m" // bright black
	case Debug:
		return "\x1b[36m" // cyan
	case Info:
		return "\x1b[32m" // green
	case Warn:
		return "\x1b[33m" // yellow
	case Error:
		return "\x1b[31m" // red
	case Critical:
		return "\x1b[1;31m" // bold red
	default:
		return ""
	}
}

const ansiReset = "\x1b[0m"

// FormatConsole renders a human-formatted line, coloured by severity type
// when isTTY is true and the NO_COLOR environment variable is unset
// (spec.md §4.1, §6). Non-TTY output falls back to uncoloured text.
func FormatConsole(r Record, isTTY bool) string {
	line := FormatHuman(r)
	if !isTTY || noColorSet() {
		return line
	}
	color := ansiColorFor(r.typ)
	if color == "" {
		return line
	}
	return color + line + ansiReset
}

func noColorSet() bool {
	_, ok := os.LookupEnv("NO_COLOR")
	return ok
}
