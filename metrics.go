// metrics.go: Prometheus collectors over the Core, Registry, and Engine
//
// Grounded on mdzesseis-log_capturer_go's internal/metrics package: package-
// level prometheus.Collector values registered through a safeRegister
// helper so repeated registration in tests never panics, exposing
// the in-process counters spec.md §4.6 already defines as queryable
// snapshots as scrapeable Prometheus series too (SPEC_FULL.md domain-stack
// wiring).
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package asfmlog

import (
	"github.com/prometheus/client_golang/prometheus"
)

// CoreCollector is a prometheus.Collector exposing the Core's sink-fanout
// state: memory-buffer occupancy and lifecycle state.
type CoreCollector struct {
	core *Core

	memoryBuffered *prometheus.Desc
	state          *prometheus.Desc
}

// NewCoreCollector wraps core for Prometheus registration.
func NewCoreCollector(core *Core) *CoreCollector {
	return &CoreCollector{
		core:           core,
		memoryBuffered: prometheus.NewDesc("asfmlog_memory_buffer_records", "Records currently held in the memory sink ring.", nil, nil),
		state:          prometheus.NewDesc("asfmlog_core_state", "Logging core lifecycle state (0=uninitialized, 1=initialized, 2=closed).", nil, nil),
	}
}

// Describe implements prometheus.Collector.
func (c *CoreCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.memoryBuffered
	ch <- c.state
}

// Collect implements prometheus.Collector.
func (c *CoreCollector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(c.memoryBuffered, prometheus.GaugeValue, float64(len(c.core.GetMemoryBuffer(0))))
	ch <- prometheus.MustNewConstMetric(c.state, prometheus.GaugeValue, float64(c.core.State()))
}

// RegistryCollector is a prometheus.Collector exposing Registry aggregates:
// total/active instance counts and process-wide message/error totals.
type RegistryCollector struct {
	registry *Registry

	instances       *prometheus.Desc
	activeInstances *prometheus.Desc
	messagesTotal   *prometheus.Desc
	errorsTotal     *prometheus.Desc
}

// NewRegistryCollector wraps registry for Prometheus registration.
func NewRegistryCollector(registry *Registry) *RegistryCollector {
	return &RegistryCollector{
		registry:        registry,
		instances:       prometheus.NewDesc("asfmlog_instances", "Registered logger instances.", nil, nil),
		activeInstances: prometheus.NewDesc("asfmlog_active_instances", "Logger instances active within the idle window.", nil, nil),
		messagesTotal:   prometheus.NewDesc("asfmlog_messages_total", "Total messages recorded across all instances.", nil, nil),
		errorsTotal:     prometheus.NewDesc("asfmlog_errors_total", "Total errors recorded across all instances.", nil, nil),
	}
}

// Describe implements prometheus.Collector.
func (c *RegistryCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.instances
	ch <- c.activeInstances
	ch <- c.messagesTotal
	ch <- c.errorsTotal
}

// Collect implements prometheus.Collector.
func (c *RegistryCollector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(c.instances, prometheus.GaugeValue, float64(c.registry.Count()))
	ch <- prometheus.MustNewConstMetric(c.activeInstances, prometheus.GaugeValue, float64(c.registry.ActiveCount()))
	ch <- prometheus.MustNewConstMetric(c.messagesTotal, prometheus.CounterValue, float64(c.registry.TotalMessages()))
	ch <- prometheus.MustNewConstMetric(c.errorsTotal, prometheus.CounterValue, float64(c.registry.TotalErrors()))
}

// EngineCollector is a prometheus.Collector exposing Importance Engine
// mapping sizes, so override-table growth is observable without an
// in-process call to Statistics().
type EngineCollector struct {
	engine *Engine

	componentOverrides *prometheus.Desc
	functionOverrides  *prometheus.Desc
	typeDefaults       *prometheus.Desc
}

// NewEngineCollector wraps engine for Prometheus registration.
func NewEngineCollector(engine *Engine) *EngineCollector {
	return &EngineCollector{
		engine:             engine,
		componentOverrides: prometheus.NewDesc("asfmlog_component_overrides", "Installed component importance overrides.", nil, nil),
		functionOverrides:  prometheus.NewDesc("asfmlog_function_overrides", "Installed function importance overrides.", nil, nil),
		typeDefaults:       prometheus.NewDesc("asfmlog_type_defaults", "Entries in the global type-default importance map.", nil, nil),
	}
}

// Describe implements prometheus.Collector.
func (c *EngineCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.componentOverrides
	ch <- c.functionOverrides
	ch <- c.typeDefaults
}

// Collect implements prometheus.Collector.
func (c *EngineCollector) Collect(ch chan<- prometheus.Metric) {
	stats := c.engine.Statistics()
	ch <- prometheus.MustNewConstMetric(c.componentOverrides, prometheus.GaugeValue, float64(stats.ComponentOverrideCount))
	ch <- prometheus.MustNewConstMetric(c.functionOverrides, prometheus.GaugeValue, float64(stats.FunctionOverrideCount))
	ch <- prometheus.MustNewConstMetric(c.typeDefaults, prometheus.GaugeValue, float64(stats.TypeDefaultCount))
}

// safeRegister registers collector, silently ignoring an
// AlreadyRegisteredError so repeated calls (e.g. across tests sharing the
// default registry) never panic, mirroring
// mdzesseis-log_capturer_go's internal/metrics.safeRegister.
func safeRegister(collector prometheus.Collector) {
	if err := prometheus.Register(collector); err != nil {
		if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
			handleError(wrapError(err, ErrCodeConfigInvalid, "failed to register asfmlog collector"))
		}
	}
}

// MustRegisterMetrics registers Prometheus collectors for core, registry,
// and engine against the default registry. Any of the three may be nil to
// skip that collector. Safe to call more than once per target: a second
// registration of the same live Core/Registry/Engine is silently ignored.
func MustRegisterMetrics(core *Core, registry *Registry, engine *Engine) {
	if core != nil {
		safeRegister(NewCoreCollector(core))
	}
	if registry != nil {
		safeRegister(NewRegistryCollector(registry))
	}
	if engine != nil {
		safeRegister(NewEngineCollector(engine))
	}
}
