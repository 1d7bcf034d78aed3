// registry.go: process-wide logger instance registry
//
// Grounded on the original ASFMLogger LoggerInstanceManager.hpp (primary map
// by id plus a secondary per-application index, bulk unregister, idle
// sweeping) and on iris's "single coarse lock on maps, atomic counters
// inside each tracked value" locking discipline (spec.md §4.3, §9).
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package asfmlog

import (
	"sync"
	"sync/atomic"
)

// Registry is a thread-safe, process-wide tracker of LoggerInstances.
type Registry struct {
	mu sync.Mutex

	byID   map[uint32]*LoggerInstance
	byApp  map[string]map[uint32]*LoggerInstance
	byProc map[string]map[uint32]*LoggerInstance
	nextID uint32

	maxIdle         int64
	cleanupInterval int64
	lastCleanup     int64 // unix seconds, atomic
}

// NewRegistry creates an empty Registry with default liveness parameters.
func NewRegistry() *Registry {
	return &Registry{
		byID:            make(map[uint32]*LoggerInstance),
		byApp:           make(map[string]map[uint32]*LoggerInstance),
		byProc:          make(map[string]map[uint32]*LoggerInstance),
		maxIdle:         DefaultMaxIdle,
		cleanupInterval: 60,
	}
}

// SetMaxIdle overrides the liveness window used by IsActive/CleanupInactive.
func (r *Registry) SetMaxIdle(seconds int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.maxIdle = seconds
}

// SetCleanupInterval overrides the minimum spacing between automatic
// cleanup sweeps.
func (r *Registry) SetCleanupInterval(seconds int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cleanupInterval = seconds
}

// RegisterInstance assigns a fresh instance id and installs a new
// LoggerInstance in the primary map and the per-application/per-process
// secondary indexes (spec.md §4.3).
func (r *Registry) RegisterInstance(application, process, name string) *LoggerInstance {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	inst := newLoggerInstance(r.nextID, application, process, name)
	r.byID[inst.instanceID] = inst

	if r.byApp[application] == nil {
		r.byApp[application] = make(map[uint32]*LoggerInstance)
	}
	r.byApp[application][inst.instanceID] = inst

	if process != "" {
		if r.byProc[process] == nil {
			r.byProc[process] = make(map[uint32]*LoggerInstance)
		}
		r.byProc[process][inst.instanceID] = inst
	}

	return inst
}

// FindByID returns a snapshot of the instance with the given id.
func (r *Registry) FindByID(id uint32) (InstanceSnapshot, bool) {
	r.mu.Lock()
	inst, ok := r.byID[id]
	r.mu.Unlock()
	if !ok {
		return InstanceSnapshot{}, false
	}
	return inst.snapshot(Now().Seconds, r.getMaxIdle()), true
}

// FindByApplication returns snapshots of every instance registered under
// the given application name.
func (r *Registry) FindByApplication(application string) []InstanceSnapshot {
	r.mu.Lock()
	insts := r.byApp[application]
	out := make([]*LoggerInstance, 0, len(insts))
	for _, inst := range insts {
		out = append(out, inst)
	}
	r.mu.Unlock()

	now, maxIdle := Now().Seconds, r.getMaxIdle()
	result := make([]InstanceSnapshot, len(out))
	for i, inst := range out {
		result[i] = inst.snapshot(now, maxIdle)
	}
	return result
}

// FindByProcess returns snapshots of every instance registered under the
// given process name.
func (r *Registry) FindByProcess(process string) []InstanceSnapshot {
	r.mu.Lock()
	insts := r.byProc[process]
	out := make([]*LoggerInstance, 0, len(insts))
	for _, inst := range insts {
		out = append(out, inst)
	}
	r.mu.Unlock()

	now, maxIdle := Now().Seconds, r.getMaxIdle()
	result := make([]InstanceSnapshot, len(out))
	for i, inst := range out {
		result[i] = inst.snapshot(now, maxIdle)
	}
	return result
}

func (r *Registry) getMaxIdle() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.maxIdle
}

func (r *Registry) lookup(id uint32) (*LoggerInstance, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inst, ok := r.byID[id]
	return inst, ok
}

// UpdateActivity refreshes the last-activity timestamp for id. Returns
// false if id is unknown.
func (r *Registry) UpdateActivity(id uint32) bool {
	inst, ok := r.lookup(id)
	if !ok {
		return false
	}
	inst.touch()
	return true
}

// IncrementMessages increments the message counter for id and refreshes
// its last-activity timestamp. Returns false if id is unknown.
func (r *Registry) IncrementMessages(id uint32) bool {
	inst, ok := r.lookup(id)
	if !ok {
		return false
	}
	inst.incrementMessages()
	return true
}

// IncrementErrors increments the error counter for id and refreshes its
// last-activity timestamp. Returns false if id is unknown.
func (r *Registry) IncrementErrors(id uint32) bool {
	inst, ok := r.lookup(id)
	if !ok {
		return false
	}
	inst.incrementErrors()
	return true
}

// UpdateStatistics adds messages/errors to id's counters (one atomic add
// per counter, not a single combined step) and refreshes its last-activity
// timestamp. Returns false if id is unknown.
func (r *Registry) UpdateStatistics(id uint32, messages, errors uint64) bool {
	inst, ok := r.lookup(id)
	if !ok {
		return false
	}
	inst.updateStatistics(messages, errors)
	return true
}

// Unregister removes id from all indexes. Returns false if id is unknown.
func (r *Registry) Unregister(id uint32) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	inst, ok := r.byID[id]
	if !ok {
		return false
	}
	delete(r.byID, id)
	if m := r.byApp[inst.application]; m != nil {
		delete(m, id)
		if len(m) == 0 {
			delete(r.byApp, inst.application)
		}
	}
	if inst.process != "" {
		if m := r.byProc[inst.process]; m != nil {
			delete(m, id)
			if len(m) == 0 {
				delete(r.byProc, inst.process)
			}
		}
	}
	return true
}

// UnregisterApplication removes every instance registered under
// application, returning the count removed.
func (r *Registry) UnregisterApplication(application string) int {
	r.mu.Lock()
	insts := r.byApp[application]
	ids := make([]uint32, 0, len(insts))
	for id := range insts {
		ids = append(ids, id)
	}
	r.mu.Unlock()

	removed := 0
	for _, id := range ids {
		if r.Unregister(id) {
			removed++
		}
	}
	return removed
}

// CleanupInactive removes every instance whose last activity is older than
// maxIdle, but only if at least cleanupInterval seconds have passed since
// the previous sweep. Returns the number removed (0 if the sweep was
// skipped). Use ForceCleanup to bypass the interval gate.
func (r *Registry) CleanupInactive() int {
	now := Now().Seconds
	last := atomic.LoadInt64(&r.lastCleanup)
	interval := r.getCleanupInterval()
	if last != 0 && now-last < interval {
		return 0
	}
	return r.sweep(now)
}

// ForceCleanup runs an inactive sweep unconditionally and resets the
// cleanup-interval timer, per spec.md §9's resolution of the open question
// on force_cleanup/cleanup_interval interaction.
func (r *Registry) ForceCleanup() int {
	return r.sweep(Now().Seconds)
}

func (r *Registry) getCleanupInterval() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cleanupInterval
}

func (r *Registry) sweep(now int64) int {
	r.mu.Lock()
	maxIdle := r.maxIdle
	stale := make([]uint32, 0)
	for id, inst := range r.byID {
		if !inst.IsActive(now, maxIdle) {
			stale = append(stale, id)
		}
	}
	r.mu.Unlock()

	removed := 0
	for _, id := range stale {
		if r.Unregister(id) {
			removed++
		}
	}
	atomic.StoreInt64(&r.lastCleanup, now)
	return removed
}

// Count returns the total number of registered instances.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID)
}

// ActiveCount returns the number of instances active within maxIdle.
func (r *Registry) ActiveCount() int {
	now := Now().Seconds
	r.mu.Lock()
	maxIdle := r.maxIdle
	insts := make([]*LoggerInstance, 0, len(r.byID))
	for _, inst := range r.byID {
		insts = append(insts, inst)
	}
	r.mu.Unlock()

	count := 0
	for _, inst := range insts {
		if inst.IsActive(now, maxIdle) {
			count++
		}
	}
	return count
}

// UniqueApplications returns the distinct application names with at least
// one registered instance.
func (r *Registry) UniqueApplications() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.byApp))
	for app := range r.byApp {
		out = append(out, app)
	}
	return out
}

// CountByApplication returns the number of registered instances per
// application.
func (r *Registry) CountByApplication() map[string]int {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]int, len(r.byApp))
	for app, insts := range r.byApp {
		out[app] = len(insts)
	}
	return out
}

// TotalMessages returns the sum of MessageCount across all instances.
func (r *Registry) TotalMessages() uint64 {
	var total uint64
	for _, snap := range r.Snapshot() {
		total += snap.MessageCount
	}
	return total
}

// TotalErrors returns the sum of ErrorCount across all instances.
func (r *Registry) TotalErrors() uint64 {
	var total uint64
	for _, snap := range r.Snapshot() {
		total += snap.ErrorCount
	}
	return total
}

// OverallMessageRate returns the total message count divided by the span,
// in seconds, since the oldest instance was created (0 if no instances).
func (r *Registry) OverallMessageRate() float64 {
	return r.overallRate(r.TotalMessages())
}

// OverallErrorRate returns the total error count divided by the span, in
// seconds, since the oldest instance was created (0 if no instances).
func (r *Registry) OverallErrorRate() float64 {
	return r.overallRate(r.TotalErrors())
}

func (r *Registry) overallRate(total uint64) float64 {
	snaps := r.Snapshot()
	if len(snaps) == 0 {
		return 0
	}
	oldest := snaps[0].CreatedAt
	for _, s := range snaps[1:] {
		if s.CreatedAt < oldest {
			oldest = s.CreatedAt
		}
	}
	span := Now().Seconds - oldest
	if span <= 0 {
		return 0
	}
	return float64(total) / float64(span)
}

// Snapshot returns a point-in-time copy of every registered instance,
// supplementing the original LoggerInstanceManager's bulk statistics
// getters (SPEC_FULL.md).
func (r *Registry) Snapshot() []InstanceSnapshot {
	now := Now().Seconds
	r.mu.Lock()
	maxIdle := r.maxIdle
	insts := make([]*LoggerInstance, 0, len(r.byID))
	for _, inst := range r.byID {
		insts = append(insts, inst)
	}
	r.mu.Unlock()

	out := make([]InstanceSnapshot, len(insts))
	for i, inst := range insts {
		out[i] = inst.snapshot(now, maxIdle)
	}
	return out
}
