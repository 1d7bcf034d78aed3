// timestamp.go: wall-clock + monotonic timestamp handling for asfmlog
//
// Grounded on iris's use of github.com/agilira/go-timecache for a cached,
// low-overhead "now" source on the hot record-creation path, and on the
// original ASFMLogger TimestampToolbox (seconds + microseconds pair, custom
// strftime-compatible formatting).
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package asfmlog

import (
	"fmt"
	"time"

	"github.com/agilira/go-timecache"
)

// Timestamp is a wall-clock (seconds, microseconds) pair plus a nanosecond
// reading taken at the same instant. That reading is Unix nanoseconds, not
// a monotonic clock value, and comparisons and arithmetic use only the
// seconds/microseconds pair.
type Timestamp struct {
	Seconds      int64
	Microseconds int32
	monotonic    int64 // Unix nanoseconds; Now reads it uncached, FromUnix/FromTime derive it
}

// Now returns the current Timestamp using the cached time source for the
// wall-clock component and an uncached time.Now read for the nanosecond
// field.
func Now() Timestamp {
	t := timecache.CachedTime()
	mono := time.Now()
	return Timestamp{
		Seconds:      t.Unix(),
		Microseconds: int32(t.Nanosecond() / 1000),
		monotonic:    mono.UnixNano(),
	}
}

// FromUnix builds a Timestamp from Unix seconds and a microseconds component.
func FromUnix(seconds int64, microseconds int32) Timestamp {
	return Timestamp{Seconds: seconds, Microseconds: microseconds, monotonic: seconds*1e9 + int64(microseconds)*1000}
}

// FromTime builds a Timestamp from a standard library time.Time.
func FromTime(t time.Time) Timestamp {
	return Timestamp{
		Seconds:      t.Unix(),
		Microseconds: int32(t.Nanosecond() / 1000),
		monotonic:    t.UnixNano(),
	}
}

// ToUnix returns the Unix seconds and microseconds components.
func (ts Timestamp) ToUnix() (seconds int64, microseconds int32) {
	return ts.Seconds, ts.Microseconds
}

// ToTime converts to a standard library time.Time (UTC).
func (ts Timestamp) ToTime() time.Time {
	return time.Unix(ts.Seconds, int64(ts.Microseconds)*1000).UTC()
}

// ToMicroseconds returns microseconds since the Unix epoch.
func (ts Timestamp) ToMicroseconds() int64 {
	return ts.Seconds*1_000_000 + int64(ts.Microseconds)
}

// FromMicroseconds builds a Timestamp from microseconds since the Unix epoch.
func FromMicroseconds(us int64) Timestamp {
	return FromUnix(us/1_000_000, int32(us%1_000_000))
}

// ToISO8601 formats as YYYY-MM-DDTHH:MM:SS.ffffffZ.
func (ts Timestamp) ToISO8601() string {
	return ts.ToTime().Format("2006-01-02T15:04:05.000000Z")
}

// Format renders the timestamp using a strftime-compatible layout, per the
// original ASFMLogger TimestampToolbox. Only the directives the logging line
// format (spec.md §6) and common callers need are supported.
func (ts Timestamp) Format(layout string) string {
	t := ts.ToTime()
	out := make([]byte, 0, len(layout)+16)
	for i := 0; i < len(layout); i++ {
		if layout[i] != '%' || i == len(layout)-1 {
			out = append(out, layout[i])
			continue
		}
		i++
		switch layout[i] {
		case 'Y':
			out = append(out, fmt.Sprintf("%04d", t.Year())...)
		case 'm':
			out = append(out, fmt.Sprintf("%02d", int(t.Month()))...)
		case 'd':
			out = append(out, fmt.Sprintf("%02d", t.Day())...)
		case 'H':
			out = append(out, fmt.Sprintf("%02d", t.Hour())...)
		case 'M':
			out = append(out, fmt.Sprintf("%02d", t.Minute())...)
		case 'S':
			out = append(out, fmt.Sprintf("%02d", t.Second())...)
		case 'f':
			out = append(out, fmt.Sprintf("%06d", ts.Microseconds)...)
		case '%':
			out = append(out, '%')
		default:
			out = append(out, '%', layout[i])
		}
	}
	return string(out)
}

// AddMicroseconds returns ts shifted by the given number of microseconds
// (negative to subtract).
func (ts Timestamp) AddMicroseconds(us int64) Timestamp {
	return FromMicroseconds(ts.ToMicroseconds() + us)
}

// AddMilliseconds returns ts shifted by the given number of milliseconds.
func (ts Timestamp) AddMilliseconds(ms int64) Timestamp {
	return ts.AddMicroseconds(ms * 1000)
}

// AddSeconds returns ts shifted by the given number of seconds.
func (ts Timestamp) AddSeconds(s int64) Timestamp {
	return ts.AddMicroseconds(s * 1_000_000)
}

// DifferenceMicroseconds returns the signed microsecond delta (b - a).
func DifferenceMicroseconds(a, b Timestamp) int64 {
	return b.ToMicroseconds() - a.ToMicroseconds()
}

// Before reports whether ts is strictly earlier than other.
func (ts Timestamp) Before(other Timestamp) bool {
	return ts.ToMicroseconds() < other.ToMicroseconds()
}

// After reports whether ts is strictly later than other.
func (ts Timestamp) After(other Timestamp) bool {
	return ts.ToMicroseconds() > other.ToMicroseconds()
}

// Equal reports whether ts and other represent the same instant.
func (ts Timestamp) Equal(other Timestamp) bool {
	return ts.ToMicroseconds() == other.ToMicroseconds()
}

// IsWithinRange reports whether ts falls within [start, end] inclusive.
func (ts Timestamp) IsWithinRange(start, end Timestamp) bool {
	us := ts.ToMicroseconds()
	return us >= start.ToMicroseconds() && us <= end.ToMicroseconds()
}

// IsPast reports whether ts is strictly before the current time.
func (ts Timestamp) IsPast() bool {
	return ts.Before(Now())
}

// IsFuture reports whether ts is strictly after the current time.
func (ts Timestamp) IsFuture() bool {
	return ts.After(Now())
}
