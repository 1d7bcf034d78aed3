// record_query.go: filters, aggregates, sorting and dedup over Record slices
//
// Grounded on the original ASFMLogger LogMessageToolbox.hpp, which exposes
// these as static free functions over a vector of messages rather than
// methods on a collection type; asfmlog keeps that shape as package-level
// functions operating on []Record.
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package asfmlog

import (
	"sort"
	"strings"
)

// FilterByType returns the subset of records with the given severity type.
func FilterByType(records []Record, typ Type) []Record {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if r.typ == typ {
			out = append(out, r)
		}
	}
	return out
}

// FilterByComponent returns the subset of records with the given component.
func FilterByComponent(records []Record, component string) []Record {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if r.component == component {
			out = append(out, r)
		}
	}
	return out
}

// FilterByComponentAndFunction returns the subset of records matching both
// component and function (supplemented from the original source's joint
// component/function index, §SPEC_FULL.md).
func FilterByComponentAndFunction(records []Record, component, function string) []Record {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if r.component == component && r.function == function {
			out = append(out, r)
		}
	}
	return out
}

// FilterByImportance returns records whose resolved importance is at or
// above threshold. Records with no resolved importance are excluded.
func FilterByImportance(records []Record, threshold Importance) []Record {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if r.importSet && r.importance >= threshold {
			out = append(out, r)
		}
	}
	return out
}

// SearchByContent returns records whose message contains substr, using a
// case-sensitive substring match.
func SearchByContent(records []Record, substr string) []Record {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if strings.Contains(r.message, substr) {
			out = append(out, r)
		}
	}
	return out
}

// CountByType returns a histogram of records by severity type.
func CountByType(records []Record) map[Type]int {
	counts := make(map[Type]int)
	for _, r := range records {
		counts[r.typ]++
	}
	return counts
}

// CountByComponent returns a histogram of records by component.
func CountByComponent(records []Record) map[string]int {
	counts := make(map[string]int)
	for _, r := range records {
		counts[r.component]++
	}
	return counts
}

// UniqueComponents returns the distinct component names present, sorted.
func UniqueComponents(records []Record) []string {
	seen := make(map[string]struct{})
	for _, r := range records {
		seen[r.component] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// SortByTimestamp stably sorts records ascending by timestamp.
func SortByTimestamp(records []Record) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].timestamp.ToMicroseconds() < records[j].timestamp.ToMicroseconds()
	})
}

// SortByType stably sorts records ascending by severity type.
func SortByType(records []Record) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].typ < records[j].typ
	})
}

// RemoveDuplicates removes records with a duplicate content hash (type,
// message, component, function), keeping the first occurrence. Returns the
// filtered slice and the number of records removed. Idempotent: a second
// call on the result returns 0 removed (spec.md §8).
func RemoveDuplicates(records []Record) ([]Record, int) {
	seen := make(map[uint32][]Record, len(records))
	out := make([]Record, 0, len(records))
	removed := 0

	for _, r := range records {
		h := HashContent(r)
		duplicate := false
		for _, prior := range seen[h] {
			if prior.typ == r.typ && prior.message == r.message &&
				prior.component == r.component && prior.function == r.function {
				duplicate = true
				break
			}
		}
		if duplicate {
			removed++
			continue
		}
		seen[h] = append(seen[h], r)
		out = append(out, r)
	}
	return out, removed
}

// CalculateMessageRate returns count / (max_ts - min_ts) in messages per
// second, or 0 if there are fewer than two records.
func CalculateMessageRate(records []Record) float64 {
	if len(records) <= 1 {
		return 0
	}
	minTS, maxTS := records[0].timestamp.ToMicroseconds(), records[0].timestamp.ToMicroseconds()
	for _, r := range records[1:] {
		us := r.timestamp.ToMicroseconds()
		if us < minTS {
			minTS = us
		}
		if us > maxTS {
			maxTS = us
		}
	}
	spanSeconds := float64(maxTS-minTS) / 1_000_000
	if spanSeconds <= 0 {
		return 0
	}
	return float64(len(records)) / spanSeconds
}

// ImportanceHistogram is one bucket of an importance distribution.
type ImportanceHistogram struct {
	Importance Importance
	Count      int
	Percentage float64
}

// ImportanceDistribution is the result of AnalyzeImportanceDistribution.
type ImportanceDistribution struct {
	Buckets       []ImportanceHistogram
	Median        Importance
	TopComponents []string
}

// AnalyzeImportanceDistribution summarizes the resolved importances across
// records: a histogram with percentages, the median importance, and the
// top-3 components by record count (spec.md §4.6). Records without a
// resolved importance are excluded from the histogram and median.
func AnalyzeImportanceDistribution(records []Record) ImportanceDistribution {
	counts := make(map[Importance]int)
	var resolved []Importance
	for _, r := range records {
		if !r.importSet {
			continue
		}
		counts[r.importance]++
		resolved = append(resolved, r.importance)
	}

	total := len(resolved)
	buckets := make([]ImportanceHistogram, 0, 4)
	for imp := Low; imp <= ImportanceCritical; imp++ {
		count := counts[imp]
		pct := 0.0
		if total > 0 {
			pct = float64(count) / float64(total) * 100
		}
		buckets = append(buckets, ImportanceHistogram{Importance: imp, Count: count, Percentage: pct})
	}

	var median Importance
	if total > 0 {
		sorted := append([]Importance(nil), resolved...)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
		median = sorted[total/2]
	}

	componentCounts := CountByComponent(records)
	type kv struct {
		name  string
		count int
	}
	kvs := make([]kv, 0, len(componentCounts))
	for name, count := range componentCounts {
		kvs = append(kvs, kv{name, count})
	}
	sort.Slice(kvs, func(i, j int) bool {
		if kvs[i].count != kvs[j].count {
			return kvs[i].count > kvs[j].count
		}
		return kvs[i].name < kvs[j].name
	})
	top := make([]string, 0, 3)
	for i := 0; i < len(kvs) && i < 3; i++ {
		top = append(top, kvs[i].name)
	}

	return ImportanceDistribution{Buckets: buckets, Median: median, TopComponents: top}
}
