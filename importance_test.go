// importance_test.go: four-level importance resolution scenarios from
// spec.md §8
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package asfmlog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveMessageImportanceGlobalTypeDefault(t *testing.T) {
	e := NewEngine()
	r := NewRecord(Warn, "m", "c", "f", "", 0)
	result := e.ResolveMessageImportance(r, LogRecordContext{})

	assert.Equal(t, High, result.FinalImportance)
	assert.Equal(t, LevelType, result.DecidingLevel)
	assert.EqualValues(t, 0, result.MatchedOverrideID)
}

// TestComponentOverrideBeatsTypeDefault is spec.md §8 scenario 2.
func TestComponentOverrideBeatsTypeDefault(t *testing.T) {
	e := NewEngine()
	e.AddComponentOverride("Database*", ImportanceCritical, false, "db is critical")

	r := NewRecord(Info, "m", "Database.Conn", "", "", 0)
	result := e.ResolveMessageImportance(r, LogRecordContext{})

	assert.Equal(t, ImportanceCritical, result.FinalImportance)
	assert.Equal(t, LevelComponent, result.DecidingLevel)
	assert.Equal(t, ImportanceCritical, result.PreContextImportance)
}

// TestFunctionOverrideBeatsComponentOverride is spec.md §8 scenario 3.
func TestFunctionOverrideBeatsComponentOverride(t *testing.T) {
	e := NewEngine()
	e.AddComponentOverride("Database*", ImportanceCritical, false, "db is critical")
	e.AddFunctionOverride("HealthCheck", Low, false, "health checks are noise")

	r := NewRecord(Info, "m", "Database.Conn", "HealthCheck", "", 0)
	result := e.ResolveMessageImportance(r, LogRecordContext{})

	assert.Equal(t, Low, result.FinalImportance)
	assert.Equal(t, LevelFunction, result.DecidingLevel)
}

// TestContextLiftUnderEmergency is spec.md §8 scenario 4.
func TestContextLiftUnderEmergency(t *testing.T) {
	e := NewEngine()
	r := NewRecord(Error, "m", "c", "f", "", 0)
	ctx := LogRecordContext{EmergencyMode: true}
	result := e.ResolveMessageImportance(r, ctx)

	assert.Equal(t, ImportanceCritical, result.FinalImportance)
	assert.Equal(t, LevelContext, result.DecidingLevel)
}

func TestContextDemoteUnderHighSystemLoad(t *testing.T) {
	e := NewEngine()
	r := NewRecord(Debug, "m", "c", "f", "", 0)
	ctx := LogRecordContext{SystemLoad: 95}
	result := e.ResolveMessageImportance(r, ctx)

	assert.Equal(t, Low, result.FinalImportance, "Debug default is already Low, demotion clamps at Low")
	assert.Equal(t, LevelType, result.DecidingLevel, "demotion that does not change value is not reported as context-decided")
}

func TestContextLiftUnderHighErrorRate(t *testing.T) {
	e := NewEngine()
	r := NewRecord(Warn, "m", "c", "f", "", 0)
	ctx := LogRecordContext{ErrorRate: 10}
	result := e.ResolveMessageImportance(r, ctx)

	assert.Equal(t, ImportanceCritical, result.FinalImportance)
	assert.Equal(t, LevelContext, result.DecidingLevel)
}

func TestPerApplicationTypeDefaultOverridesGlobal(t *testing.T) {
	e := NewEngine()
	appCfg := e.ConfigureApplication("billing")
	appCfg.TypeDefaults[Info] = ImportanceCritical

	r := NewRecord(Info, "m", "c", "f", "", 0)
	result := e.ResolveMessageImportance(r, LogRecordContext{Application: "billing"})
	assert.Equal(t, ImportanceCritical, result.FinalImportance)

	resultOther := e.ResolveMessageImportance(r, LogRecordContext{Application: "other-app"})
	assert.Equal(t, Medium, resultOther.FinalImportance, "unconfigured application falls back to the global default")
}

func TestShouldPersist(t *testing.T) {
	e := NewEngine()
	r := NewRecord(Info, "m", "c", "f", "", 0)
	assert.True(t, e.ShouldPersist(r, LogRecordContext{}, Low))
	assert.False(t, e.ShouldPersist(r, LogRecordContext{}, High))
}

func TestShouldPersistByComponent(t *testing.T) {
	e := NewEngine()
	assert.False(t, e.ShouldPersistByComponent("anything", Trace, 0))

	e.AddComponentOverride("Special", High, false, "")
	assert.True(t, e.ShouldPersistByComponent("Special", Trace, 0))
	assert.True(t, e.ShouldPersistByComponent("Special", Trace, 95), "high load demotes Trace from High to Medium, which still meets the Medium bar")
}

func TestShouldPersistBySystemConditions(t *testing.T) {
	e := NewEngine()
	assert.True(t, e.ShouldPersistBySystemConditions(Error, 0, 0, false))
	assert.False(t, e.ShouldPersistBySystemConditions(Debug, 95, 0, false))
	assert.True(t, e.ShouldPersistBySystemConditions(Warn, 0, 0, true))
}

func TestResolveBatchPreservesOrder(t *testing.T) {
	e := NewEngine()
	records := []Record{
		NewRecord(Trace, "a", "c", "f", "", 0),
		NewRecord(Critical, "b", "c", "f", "", 0),
		NewRecord(Info, "c", "c", "f", "", 0),
	}
	results := e.ResolveBatch(records, LogRecordContext{})
	require.Len(t, results, 3)
	assert.Equal(t, Low, results[0].FinalImportance)
	assert.Equal(t, ImportanceCritical, results[1].FinalImportance)
	assert.Equal(t, Medium, results[2].FinalImportance)
}

func TestResolutionIsDeterministicUntilTablesChange(t *testing.T) {
	e := NewEngine()
	r := NewRecord(Warn, "m", "c", "f", "", 0)
	ctx := LogRecordContext{}

	first := e.ResolveMessageImportance(r, ctx)
	second := e.ResolveMessageImportance(r, ctx)
	assert.Equal(t, first, second)

	e.AddComponentOverride("c", ImportanceCritical, false, "")
	third := e.ResolveMessageImportance(r, ctx)
	assert.NotEqual(t, first, third)
}

func TestResetToDefaultsClearsState(t *testing.T) {
	e := NewEngine()
	e.AddComponentOverride("x", Low, false, "")
	e.ConfigureApplication("app")
	e.SetDefaultImportance(Info, ImportanceCritical)

	e.ResetToDefaults()

	assert.Equal(t, Medium, e.GetDefaultImportance(Info))
	assert.Empty(t, e.GetAllComponentOverrides())
}

func TestEngineStatisticsAndTopOverrides(t *testing.T) {
	e := NewEngine()
	e.AddComponentOverride("A", Low, false, "")
	e.AddComponentOverride("B", Low, false, "")
	e.ResolveMessageImportance(NewRecord(Info, "m", "A", "", "", 0), LogRecordContext{})

	stats := e.Statistics()
	assert.Equal(t, 2, stats.ComponentOverrideCount)
	assert.Equal(t, 6, stats.TypeDefaultCount)

	top := e.TopComponentOverrides(1)
	require.Len(t, top, 1)
	assert.Equal(t, "A", top[0].Pattern())
}
