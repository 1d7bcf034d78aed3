// importance.go: the four-level importance resolution engine
//
// Grounded on the original ASFMLogger ImportanceMapper.hpp / ImportanceToolbox.hpp
// (function override > component override > type default > context
// adjustment hierarchy) and on iris's reader-writer-lock-guarded table
// access pattern (resolution takes the read lock only; mutation takes the
// write lock, per spec.md §4.4, §9).
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package asfmlog

import (
	"fmt"
	"sync"
)

// systemLoadDemoteThreshold is the system_load at or above which Trace and
// Debug resolutions are demoted by one level (spec.md §4.4).
const systemLoadDemoteThreshold = 90

// ApplicationImportanceConfig holds per-application resolution settings:
// its own type-default map and, optionally, its own override tables that
// are consulted before the engine's global tables (more specific wins,
// consistent with spec.md §9's "per-application overrides the global
// default" decision, extended here to overrides as well as type defaults).
type ApplicationImportanceConfig struct {
	Name                 string
	TypeDefaults         map[Type]Importance
	MinPersistImportance Importance
	ErrorRateThreshold   float64

	componentOverrides *overrideTable
	functionOverrides  *overrideTable
}

func newApplicationImportanceConfig(name string) *ApplicationImportanceConfig {
	return &ApplicationImportanceConfig{
		Name:               name,
		TypeDefaults:       make(map[Type]Importance),
		ErrorRateThreshold: 5.0,
		componentOverrides: newOverrideTable("component"),
		functionOverrides:  newOverrideTable("function"),
	}
}

// LogRecordContext is the transient dynamic environment consulted during
// resolution (spec.md §3). Never stored.
type LogRecordContext struct {
	Application   string
	SystemLoad    int // 0-100
	ErrorRate     float64
	EmergencyMode bool
	Now           Timestamp
}

// ResolutionResult carries the full outcome of a resolution, for analytics
// and tests (spec.md §4.4).
type ResolutionResult struct {
	FinalImportance      Importance
	DecidingLevel        ResolutionLevel
	MatchedOverrideID    uint32
	PreContextImportance Importance
	Reason               string
}

// Engine resolves a Record's final importance by walking the four-level
// hierarchy. The zero value is not usable; use NewEngine.
type Engine struct {
	mu                 sync.RWMutex
	globalTypeDefaults map[Type]Importance
	appConfigs         map[string]*ApplicationImportanceConfig

	componentOverrides *overrideTable // global, process-wide
	functionOverrides  *overrideTable // global, process-wide
}

// NewEngine creates an Engine pre-populated with a conservative set of
// global type defaults.
func NewEngine() *Engine {
	e := &Engine{
		globalTypeDefaults: defaultTypeMapping(),
		appConfigs:         make(map[string]*ApplicationImportanceConfig),
		componentOverrides: newOverrideTable("component"),
		functionOverrides:  newOverrideTable("function"),
	}
	return e
}

func defaultTypeMapping() map[Type]Importance {
	return map[Type]Importance{
		Trace:    Low,
		Debug:    Low,
		Info:     Medium,
		Warn:     High,
		Error:    High,
		Critical: ImportanceCritical,
	}
}

// ResetToDefaults clears all overrides and per-application configs and
// restores the default global type mapping. This is the only way the
// engine's state is reset, per spec.md §3.
func (e *Engine) ResetToDefaults() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.globalTypeDefaults = defaultTypeMapping()
	e.appConfigs = make(map[string]*ApplicationImportanceConfig)
	e.componentOverrides = newOverrideTable("component")
	e.functionOverrides = newOverrideTable("function")
}

// SetDefaultImportance sets the global default importance for a type.
func (e *Engine) SetDefaultImportance(typ Type, imp Importance) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.globalTypeDefaults[typ] = imp
}

// GetDefaultImportance returns the global default importance for a type.
func (e *Engine) GetDefaultImportance(typ Type) Importance {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.globalTypeDefaults[typ]
}

// AllTypeDefaults returns a snapshot of the global type-default map
// (supplemented from ImportanceToolbox::GetAllDefaultMappings).
func (e *Engine) AllTypeDefaults() map[Type]Importance {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make(map[Type]Importance, len(e.globalTypeDefaults))
	for k, v := range e.globalTypeDefaults {
		out[k] = v
	}
	return out
}

// ConfigureApplication installs or replaces the per-application config for
// name, returning it for further configuration (type defaults, thresholds).
func (e *Engine) ConfigureApplication(name string) *ApplicationImportanceConfig {
	e.mu.Lock()
	defer e.mu.Unlock()
	cfg := newApplicationImportanceConfig(name)
	e.appConfigs[name] = cfg
	return cfg
}

func (e *Engine) applicationConfig(name string) *ApplicationImportanceConfig {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.appConfigs[name]
}

// AddComponentOverride installs a global component-pattern override.
// Returns 0 on a malformed pattern.
func (e *Engine) AddComponentOverride(pat string, imp Importance, useRegex bool, reason string) uint32 {
	return e.componentOverrides.add(pat, imp, useRegex, reason)
}

// UpdateComponentOverride updates an existing global component override.
func (e *Engine) UpdateComponentOverride(id uint32, imp Importance, reason string) bool {
	return e.componentOverrides.update(id, imp, reason)
}

// RemoveComponentOverride deletes a global component override.
func (e *Engine) RemoveComponentOverride(id uint32) bool {
	return e.componentOverrides.remove(id)
}

// FindComponentOverride returns a copy of the global component override
// with the given id.
func (e *Engine) FindComponentOverride(id uint32) (Override, bool) {
	return e.componentOverrides.find(id)
}

// GetAllComponentOverrides returns all global component overrides, in
// insertion order.
func (e *Engine) GetAllComponentOverrides() []Override {
	return e.componentOverrides.all()
}

// AddFunctionOverride installs a global function-pattern override.
// Returns 0 on a malformed pattern.
func (e *Engine) AddFunctionOverride(pat string, imp Importance, useRegex bool, reason string) uint32 {
	return e.functionOverrides.add(pat, imp, useRegex, reason)
}

// UpdateFunctionOverride updates an existing global function override.
func (e *Engine) UpdateFunctionOverride(id uint32, imp Importance, reason string) bool {
	return e.functionOverrides.update(id, imp, reason)
}

// RemoveFunctionOverride deletes a global function override.
func (e *Engine) RemoveFunctionOverride(id uint32) bool {
	return e.functionOverrides.remove(id)
}

// FindFunctionOverride returns a copy of the global function override with
// the given id.
func (e *Engine) FindFunctionOverride(id uint32) (Override, bool) {
	return e.functionOverrides.find(id)
}

// GetAllFunctionOverrides returns all global function overrides, in
// insertion order.
func (e *Engine) GetAllFunctionOverrides() []Override {
	return e.functionOverrides.all()
}

// ResolveMessageImportance walks the four-level hierarchy for a single
// record and returns the full ResolutionResult (spec.md §4.4). Resolution
// is deterministic for a fixed set of tables and type defaults (spec.md §8).
func (e *Engine) ResolveMessageImportance(r Record, ctx LogRecordContext) ResolutionResult {
	appCfg := e.applicationConfig(ctx.Application)

	// Level 1: function override (app-scoped first, then global).
	if appCfg != nil {
		if ov := appCfg.functionOverrides.matchFirst(r.function); ov != nil {
			return e.finish(r.typ, ov.importance, LevelFunction, ov.id, ctx, fmt.Sprintf("function override #%d matched %q", ov.id, ov.pattern))
		}
	}
	if ov := e.functionOverrides.matchFirst(r.function); ov != nil {
		return e.finish(r.typ, ov.importance, LevelFunction, ov.id, ctx, fmt.Sprintf("function override #%d matched %q", ov.id, ov.pattern))
	}

	// Level 2: component override (app-scoped first, then global).
	if appCfg != nil {
		if ov := appCfg.componentOverrides.matchFirst(r.component); ov != nil {
			return e.finish(r.typ, ov.importance, LevelComponent, ov.id, ctx, fmt.Sprintf("component override #%d matched %q", ov.id, ov.pattern))
		}
	}
	if ov := e.componentOverrides.matchFirst(r.component); ov != nil {
		return e.finish(r.typ, ov.importance, LevelComponent, ov.id, ctx, fmt.Sprintf("component override #%d matched %q", ov.id, ov.pattern))
	}

	// Level 3: type default. Per-application map wins over the global map
	// when the application has a config and a mapping for this type
	// (spec.md §9 open question, resolved).
	if appCfg != nil {
		if imp, ok := appCfg.TypeDefaults[r.typ]; ok {
			return e.finish(r.typ, imp, LevelType, 0, ctx, fmt.Sprintf("application %q type default for %s", appCfg.Name, r.typ))
		}
	}
	imp := e.GetDefaultImportance(r.typ)
	return e.finish(r.typ, imp, LevelType, 0, ctx, fmt.Sprintf("global type default for %s", r.typ))
}

// finish applies the level-4 context adjustment and assembles the result.
// If the context adjustment changes the importance, the deciding level is
// reported as Context even though an override or type default supplied the
// pre-context value, per spec.md §8 scenario 4.
func (e *Engine) finish(typ Type, base Importance, level ResolutionLevel, overrideID uint32, ctx LogRecordContext, reason string) ResolutionResult {
	threshold := 5.0
	if appCfg := e.applicationConfig(ctx.Application); appCfg != nil && appCfg.ErrorRateThreshold > 0 {
		threshold = appCfg.ErrorRateThreshold
	}
	final, adjusted := applyContext(base, typ, ctx, threshold)
	resultLevel := level
	if adjusted {
		resultLevel = LevelContext
		reason = fmt.Sprintf("%s, then context-adjusted to %s", reason, final)
	}

	return ResolutionResult{
		FinalImportance:      final,
		DecidingLevel:        resultLevel,
		MatchedOverrideID:    overrideID,
		PreContextImportance: base,
		Reason:               reason,
	}
}

// applyContext applies the three context-level adjustments in the order
// specified by spec.md §4.4: emergency mode, system load, error rate.
func applyContext(base Importance, typ Type, ctx LogRecordContext, errorRateThreshold float64) (final Importance, adjusted bool) {
	final = base

	if ctx.EmergencyMode {
		switch typ {
		case Error, Critical:
			if final < ImportanceCritical {
				final = ImportanceCritical
				adjusted = true
			}
		case Warn:
			if final < High {
				final = High
				adjusted = true
			}
		}
	}

	if ctx.SystemLoad >= systemLoadDemoteThreshold && (typ == Trace || typ == Debug) {
		demoted := final.demote()
		if demoted != final {
			final = demoted
			adjusted = true
		}
	}

	if ctx.ErrorRate >= errorRateThreshold && (typ == Warn || typ == Error) {
		bumped := final.bump()
		if bumped != final {
			final = bumped
			adjusted = true
		}
	}

	return final, adjusted
}

// ShouldPersist is true iff r's resolved importance under ctx is at or
// above minImportance (spec.md §4.4).
func (e *Engine) ShouldPersist(r Record, ctx LogRecordContext, minImportance Importance) bool {
	result := e.ResolveMessageImportance(r, ctx)
	return result.FinalImportance >= minImportance
}

// ShouldPersistByComponent consults the component override tables alone
// (no function override, no type default) plus a load-adaptive demotion,
// and reports whether the resulting importance meets the persistence bar
// (Medium or above). With no matching override it reports false. It is a
// lighter-weight check than ShouldPersist for callers that only have a
// component name and type in hand.
func (e *Engine) ShouldPersistByComponent(component string, typ Type, systemLoad int) bool {
	ov := e.componentOverrides.matchFirst(component)
	if ov == nil {
		return false
	}
	imp := ov.importance
	if systemLoad >= systemLoadDemoteThreshold && (typ == Trace || typ == Debug) {
		imp = imp.demote()
	}
	return imp >= Medium
}

// ShouldPersistBySystemConditions applies only the context-level
// adjustment to the type default (no overrides consulted), and reports
// whether the adjusted importance meets the persistence bar (Medium or
// above).
func (e *Engine) ShouldPersistBySystemConditions(typ Type, systemLoad int, errorRate float64, emergencyMode bool) bool {
	base := e.GetDefaultImportance(typ)
	ctx := LogRecordContext{SystemLoad: systemLoad, ErrorRate: errorRate, EmergencyMode: emergencyMode}
	final, _ := applyContext(base, typ, ctx, 5.0)
	return final >= Medium
}

// ResolveBatch resolves every record in records against ctx, in order,
// returning results in the same order (spec.md §4.4: O(n) after patterns
// are compiled).
func (e *Engine) ResolveBatch(records []Record, ctx LogRecordContext) []ResolutionResult {
	out := make([]ResolutionResult, len(records))
	for i, r := range records {
		out[i] = e.ResolveMessageImportance(r, ctx)
	}
	return out
}

// MappingStatistics summarizes the engine's table sizes for analytics
// (spec.md §4.6).
type MappingStatistics struct {
	TypeDefaultCount      int
	ComponentOverrideCount int
	FunctionOverrideCount int
}

// Statistics returns a snapshot of the engine's mapping sizes.
func (e *Engine) Statistics() MappingStatistics {
	e.mu.RLock()
	typeCount := len(e.globalTypeDefaults)
	e.mu.RUnlock()
	return MappingStatistics{
		TypeDefaultCount:       typeCount,
		ComponentOverrideCount: e.componentOverrides.count(),
		FunctionOverrideCount:  e.functionOverrides.count(),
	}
}

// TopComponentOverrides returns the n most-used component overrides,
// most-used first.
func (e *Engine) TopComponentOverrides(n int) []Override {
	return e.componentOverrides.topByUseCount(n)
}

// TopFunctionOverrides returns the n most-used function overrides,
// most-used first.
func (e *Engine) TopFunctionOverrides(n int) []Override {
	return e.functionOverrides.topByUseCount(n)
}
