// override.go: component/function importance overrides with pattern matching
//
// Grounded on the original ASFMLogger ImportanceToolbox.hpp (component and
// function override tables, each keyed by an override id, matched by glob
// or regex pattern) and on iris's table-plus-index locking discipline
// (a vector in insertion order for first-match semantics alongside a map
// by id for O(1) update/remove, per spec.md §9 design notes).
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package asfmlog

import (
	"sync"
	"sync/atomic"

	"github.com/agilira/asfmlog/internal/pattern"
)

// Override is a single importance rule matched against a component or
// function name (spec.md §3). Ids start at 1, so 0 is the sentinel
// "no override" id; a lookup that finds nothing returns the zero value
// together with false.
type Override struct {
	id         uint32
	pattern    string
	useRegex   bool
	importance Importance
	reason     string
	createdAt  Timestamp
	useCount   uint64 // accessed only via atomic ops
	matcher    *pattern.Matcher
}

// ID returns the override's unique id within its kind (component/function).
func (o *Override) ID() uint32 { return o.id }

// Pattern returns the override's source pattern string.
func (o *Override) Pattern() string { return o.pattern }

// UseRegex reports whether Pattern is a regular expression.
func (o *Override) UseRegex() bool { return o.useRegex }

// Importance returns the override's assigned importance.
func (o *Override) Importance() Importance { return o.importance }

// Reason returns the free-text justification for the override.
func (o *Override) Reason() string { return o.reason }

// CreatedAt returns the override's creation timestamp.
func (o *Override) CreatedAt() Timestamp { return o.createdAt }

// UseCount returns how many times this override has matched a resolution.
func (o *Override) UseCount() uint64 { return atomic.LoadUint64(&o.useCount) }

func (o *Override) recordUse() { atomic.AddUint64(&o.useCount, 1) }

// overrideTable is the shared storage shape for component and function
// override tables: an insertion-ordered list (first-match semantics) plus
// a map by id (O(1) update/remove), behind a single reader-writer lock.
// The read path (resolution) only ever acquires RLock.
type overrideTable struct {
	mu      sync.RWMutex
	order   []*Override
	byID    map[uint32]*Override
	nextID  uint32
	kind    string // "component" or "function"
}

func newOverrideTable(kind string) *overrideTable {
	return &overrideTable{byID: make(map[uint32]*Override), kind: kind}
}

// add compiles pat and inserts a new override. Returns 0 on a malformed
// pattern (spec.md §4.4: "rejected at insertion time; no partial insertion").
func (t *overrideTable) add(pat string, imp Importance, useRegex bool, reason string) uint32 {
	matcher, err := pattern.Compile(pat, useRegex)
	if err != nil {
		return 0
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.nextID++
	ov := &Override{
		id:         t.nextID,
		pattern:    pat,
		useRegex:   useRegex,
		importance: imp,
		reason:     reason,
		createdAt:  Now(),
		matcher:    matcher,
	}
	t.order = append(t.order, ov)
	t.byID[ov.id] = ov
	return ov.id
}

// update changes importance and/or reason for an existing override.
// Passing an empty reason leaves the existing reason untouched.
func (t *overrideTable) update(id uint32, imp Importance, reason string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	ov, ok := t.byID[id]
	if !ok {
		return false
	}
	ov.importance = imp
	if reason != "" {
		ov.reason = reason
	}
	return true
}

// remove deletes an override from both the index map and the insertion
// order slice.
func (t *overrideTable) remove(id uint32) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.byID[id]; !ok {
		return false
	}
	delete(t.byID, id)
	for i, ov := range t.order {
		if ov.id == id {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
	return true
}

// find returns a copy of the override with the given id.
func (t *overrideTable) find(id uint32) (Override, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	ov, ok := t.byID[id]
	if !ok {
		return Override{}, false
	}
	return *ov, true
}

// all returns copies of every override, in insertion order.
func (t *overrideTable) all() []Override {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]Override, 0, len(t.order))
	for _, ov := range t.order {
		out = append(out, *ov)
	}
	return out
}

// matchFirst returns the first override (in insertion order) whose pattern
// matches name, incrementing its use count. Returns nil if none match.
func (t *overrideTable) matchFirst(name string) *Override {
	t.mu.RLock()
	defer t.mu.RUnlock()

	for _, ov := range t.order {
		if ov.matcher.MatchString(name) {
			ov.recordUse()
			return ov
		}
	}
	return nil
}

// topByUseCount returns the n most-used overrides, most-used first.
func (t *overrideTable) topByUseCount(n int) []Override {
	all := t.all()
	// simple insertion sort: override tables are small relative to record
	// volume, so an O(k^2) sort over them is not a hot path.
	for i := 1; i < len(all); i++ {
		for j := i; j > 0 && all[j].UseCount() > all[j-1].UseCount(); j-- {
			all[j], all[j-1] = all[j-1], all[j]
		}
	}
	if n > len(all) {
		n = len(all)
	}
	return all[:n]
}

func (t *overrideTable) count() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.order)
}
