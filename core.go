// core.go: the logging core -- level gate, sink fan-out, state machine
//
// Grounded on spec.md §4.5/§5: a single mutex serializes sink fan-out in a
// fixed order (Console, File, Memory); emission is synchronous from the
// caller's perspective, matching iris's single-Logger-mutex model for
// non-ring-buffer paths (config.go's atomicLevel plus iris's general rule
// that the hot path never blocks on anything but the mutex/syscall).
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package asfmlog

import (
	"sync"

	"github.com/agilira/asfmlog/internal/diag"
)

// CoreState names the Logging Core's lifecycle state (spec.md §4.5).
type CoreState int32

const (
	Uninitialized CoreState = iota
	Initialized
	Closed
)

func (s CoreState) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Initialized:
		return "initialized"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}

// Core is the thread-safe logging engine: it gates records by level, fans
// them out to the enabled sinks, and tracks its own lifecycle state.
type Core struct {
	mu     sync.Mutex
	state  CoreState
	config LoggingConfiguration

	console *consoleSink
	file    *fileSink
	memory  *memorySink

	// Optional collaborators; both may be nil. Engine is held for callers
	// that resolve importance themselves: emit does not consult it, so the
	// level gate alone governs emission. Registry, when set, receives the
	// per-instance message/error counts of records with a non-zero
	// instance id.
	Engine   *Engine
	Registry *Registry
}

// NewCore creates an uninitialized Core. Call Initialize before logging.
func NewCore() *Core {
	return &Core{state: Uninitialized, memory: newMemorySink(DefaultLoggingConfiguration().MemoryCapacity)}
}

// Initialize installs config and opens the file sink if enabled. Calling
// Initialize more than once is equivalent to UpdateConfiguration, except
// that it also (re)opens the memory ring at the configured capacity.
func (c *Core) Initialize(config LoggingConfiguration) error {
	config = config.withDefaults()
	if err := config.Validate(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if config.Sinks.Has(SinkConsole) {
		c.console = newConsoleSink()
	} else {
		c.console = nil
	}
	if c.file != nil {
		_ = c.file.close()
		c.file = nil
	}
	if config.Sinks.Has(SinkFile) {
		if err := ensureDir(config.FilePath); err != nil {
			return wrapError(err, ErrCodeFileOpen, "failed to prepare log directory")
		}
		fs, err := newFileSink(config)
		if err != nil {
			return err
		}
		c.file = fs
	}
	c.memory = newMemorySink(config.MemoryCapacity)

	c.config = config
	c.state = Initialized
	return nil
}

// UpdateConfiguration atomically swaps the active configuration. Emissions
// already in flight complete under the old configuration; new emissions
// observe the new one (spec.md §4.5). Switching the file sink on/off
// opens/closes the underlying file as needed.
func (c *Core) UpdateConfiguration(config LoggingConfiguration) error {
	config = config.withDefaults()
	if err := config.Validate(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if config.Sinks.Has(SinkConsole) && c.console == nil {
		c.console = newConsoleSink()
	} else if !config.Sinks.Has(SinkConsole) {
		c.console = nil
	}

	if config.Sinks.Has(SinkFile) {
		if c.file == nil || c.file.path != config.FilePath {
			if c.file != nil {
				_ = c.file.close()
			}
			if err := ensureDir(config.FilePath); err != nil {
				return wrapError(err, ErrCodeFileOpen, "failed to prepare log directory")
			}
			fs, err := newFileSink(config)
			if err != nil {
				return err
			}
			c.file = fs
		} else {
			c.file.maxBytes = config.MaxFileBytes
			c.file.maxFiles = config.MaxFiles
		}
	} else if c.file != nil {
		_ = c.file.close()
		c.file = nil
	}

	c.config = config
	return nil
}

// CloseLogFile closes the file sink. Subsequent Log calls still succeed
// for the remaining enabled sinks (spec.md §4.5 state machine).
func (c *Core) CloseLogFile() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.file == nil {
		return nil
	}
	err := c.file.close()
	c.file = nil
	c.state = Closed
	return err
}

// State returns the Core's current lifecycle state.
func (c *Core) State() CoreState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Config returns a copy of the currently active configuration.
func (c *Core) Config() LoggingConfiguration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.config
}

// Log implements the emission protocol of spec.md §4.5:
//  1. reject (return true, no work) if level < config.min_level
//  2. construct a Record
//  3. dispatch to each enabled sink in fixed order: Console, File, Memory
//  4. return true iff at least one sink succeeded, or the level was
//     filtered out
func (c *Core) Log(level Type, message, component, function, file string, line uint32) bool {
	r := NewRecord(level, message, component, function, file, line)
	return c.emit(r)
}

// LogRecord emits an already-constructed Record through the same protocol
// as Log, for callers that built the Record themselves (e.g. after
// resolving importance).
func (c *Core) LogRecord(r Record) bool {
	return c.emit(r)
}

func (c *Core) emit(r Record) bool {
	c.mu.Lock()
	cfg := c.config
	console, file, memory := c.console, c.file, c.memory
	registry := c.Registry
	c.mu.Unlock()

	if r.typ < cfg.MinLevel {
		return true
	}

	c.mu.Lock()
	anySucceeded := false
	var line string
	if console != nil || file != nil {
		line = formatLine(r, cfg)
	}

	if console != nil {
		if console.write(r) {
			anySucceeded = true
		} else {
			c.reportSinkFailure("console", r)
		}
	}
	if file != nil {
		if file.write(line) {
			anySucceeded = true
		} else {
			c.reportSinkFailure("file", r)
		}
	}
	if memory != nil && cfg.Sinks.Has(SinkMemory) {
		if memory.write(r) {
			anySucceeded = true
		}
	}
	c.mu.Unlock()

	if registry != nil && r.instanceID != 0 {
		if r.typ >= Error {
			registry.IncrementErrors(r.instanceID)
		} else {
			registry.IncrementMessages(r.instanceID)
		}
	}

	return anySucceeded
}

// formatLine renders the fixed log-file line format of spec.md §6:
// "YYYY-MM-DD HH:MM:SS.ffffff  [LEVEL]  [pid:tid]  component::function  message"
// honouring the configuration's inclusion flags.
func formatLine(r Record, cfg LoggingConfiguration) string {
	var b []byte
	if cfg.IncludeTimestamp {
		b = append(b, r.timestamp.Format("%Y-%m-%d %H:%M:%S.%f")...)
		b = append(b, ' ', ' ')
	}
	b = append(b, '[')
	b = append(b, upperType(r.typ)...)
	b = append(b, ']', ' ', ' ', '[')
	b = append(b, itoa(r.processID)...)
	b = append(b, ':')
	b = append(b, itoa64(r.threadID)...)
	b = append(b, ']', ' ', ' ')
	if cfg.IncludeComponent || cfg.IncludeFunction {
		if cfg.IncludeComponent {
			b = append(b, r.component...)
		}
		if cfg.IncludeComponent && cfg.IncludeFunction {
			b = append(b, ':', ':')
		}
		if cfg.IncludeFunction {
			b = append(b, r.function...)
		}
		b = append(b, ' ', ' ')
	}
	b = append(b, r.message...)
	return string(b)
}

// reportSinkFailure records an internal sink failure into the memory sink
// with a synthetic component, bypassing the level gate, so post-mortem
// inspection is possible even when the file sink is broken (spec.md §7).
// Caller already holds c.mu.
func (c *Core) reportSinkFailure(sinkName string, r Record) {
	diag.Warnf("asfmlog: %s sink failed for record #%d", sinkName, r.id)

	if c.memory == nil {
		return
	}
	diagRecord := NewRecord(Error, "sink failure: "+sinkName, "asfmlogger", "emit", "", 0)
	c.memory.write(diagRecord)
}

// LogBatch submits multiple pre-built records. Each record goes through
// emit on its own, so the core mutex is taken per record; the lock cost is
// not amortized across the batch. Best-effort per record: a failed
// record does not abort the remaining batch (spec.md §9, open question
// resolved). Returns per-record success in input order.
func (c *Core) LogBatch(records []Record) []bool {
	results := make([]bool, len(records))
	for i, r := range records {
		results[i] = c.emit(r)
	}
	return results
}

// LogMessages is the convenience batch form: level, messages, and a shared
// component, per spec.md §4.5.
func (c *Core) LogMessages(level Type, messages []string, component string) []bool {
	records := make([]Record, len(messages))
	for i, msg := range messages {
		records[i] = NewRecord(level, msg, component, "", "", 0)
	}
	return c.LogBatch(records)
}

// GetMemoryBuffer returns the last count records held by the memory sink,
// oldest-first. A count <= 0 returns everything held.
func (c *Core) GetMemoryBuffer(count int) []Record {
	c.mu.Lock()
	memory := c.memory
	c.mu.Unlock()
	if memory == nil {
		return nil
	}
	return memory.snapshot(count)
}

// ClearMemoryBuffer empties the memory sink and returns the number removed.
func (c *Core) ClearMemoryBuffer() int {
	c.mu.Lock()
	memory := c.memory
	c.mu.Unlock()
	if memory == nil {
		return 0
	}
	return memory.clear()
}

// Convenience entry points, thin wrappers over Log (spec.md §4.5).
func (c *Core) Trace(message, component, function, file string, line uint32) bool {
	return c.Log(Trace, message, component, function, file, line)
}
func (c *Core) Debug(message, component, function, file string, line uint32) bool {
	return c.Log(Debug, message, component, function, file, line)
}
func (c *Core) Info(message, component, function, file string, line uint32) bool {
	return c.Log(Info, message, component, function, file, line)
}
func (c *Core) Warn(message, component, function, file string, line uint32) bool {
	return c.Log(Warn, message, component, function, file, line)
}
func (c *Core) Error(message, component, function, file string, line uint32) bool {
	return c.Log(Error, message, component, function, file, line)
}
func (c *Core) Critical(message, component, function, file string, line uint32) bool {
	return c.Log(Critical, message, component, function, file, line)
}

func upperType(t Type) string {
	switch t {
	case Trace:
		return "TRACE"
	case Debug:
		return "DEBUG"
	case Info:
		return "INFO"
	case Warn:
		return "WARN"
	case Error:
		return "ERROR"
	case Critical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

func itoa(i int) string  { return itoa64(int64(i)) }
func itoa64(i int64) string {
	if i == 0 {
		return "0"
	}
	neg := i < 0
	if neg {
		i = -i
	}
	var buf [20]byte
	pos := len(buf)
	for i > 0 {
		pos--
		buf[pos] = byte('0' + i%10)
		i /= 10
	}
	if neg {
		pos--
		buf[pos] = '-'
	}
	return string(buf[pos:])
}
