// metrics_test.go: Prometheus collector wiring tests
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package asfmlog

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryCollectorReportsCounts(t *testing.T) {
	reg := NewRegistry()
	inst := reg.RegisterInstance("app", "", "")
	reg.IncrementMessages(inst.InstanceID())
	reg.IncrementErrors(inst.InstanceID())

	collector := NewRegistryCollector(reg)
	assert.Equal(t, 4, testutil.CollectAndCount(collector))
}

func TestCoreCollectorReportsMemoryOccupancy(t *testing.T) {
	c := NewCore()
	cfg := DefaultLoggingConfiguration()
	cfg.Sinks = SinkMemory
	cfg.MinLevel = Trace
	require.NoError(t, c.Initialize(cfg))
	c.Info("m", "c", "f", "", 0)

	collector := NewCoreCollector(c)
	assert.Equal(t, 2, testutil.CollectAndCount(collector))
}

func TestEngineCollectorReportsMappingSizes(t *testing.T) {
	e := NewEngine()
	e.AddComponentOverride("X", Low, false, "")

	collector := NewEngineCollector(e)
	assert.Equal(t, 3, testutil.CollectAndCount(collector))
}

func TestMustRegisterMetricsIgnoresDuplicateRegistration(t *testing.T) {
	e := NewEngine()
	assert.NotPanics(t, func() {
		MustRegisterMetrics(nil, nil, e)
		MustRegisterMetrics(nil, nil, e)
	})
}
