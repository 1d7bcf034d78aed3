// config.go: logging configuration, JSON/YAML document loading
//
// Grounded on iris's config.go (Config.withDefaults/Validate/Clone) and
// config_loader.go (two-struct wire-shape-then-validated-shape pattern for
// LoadConfigFromJSON), generalized to the document shape in spec.md §6:
// defaults / component_overrides / function_overrides / applications /
// logging. YAML loading is an additional source wired from the rest of the
// examples pack (gopkg.in/yaml.v3), per SPEC_FULL.md.
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package asfmlog

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/agilira/asfmlog/internal/pattern"
	"gopkg.in/yaml.v3"
)

// SinkFlags is a bitmask of enabled sinks (spec.md §4.5).
type SinkFlags uint8

const (
	SinkConsole SinkFlags = 1 << iota
	SinkFile
	SinkMemory
)

// Has reports whether flag is set in f.
func (f SinkFlags) Has(flag SinkFlags) bool { return f&flag != 0 }

// LoggingConfiguration is the global configuration for a Core (spec.md §4.5).
type LoggingConfiguration struct {
	MinLevel Type
	Sinks    SinkFlags

	FilePath     string
	MaxFileBytes int64
	MaxFiles     int

	ThreadSafe bool // documentation-only: Core is always safe for concurrent use

	IncludeTimestamp bool
	IncludeComponent bool
	IncludeFunction  bool

	MemoryCapacity int
}

// DefaultLoggingConfiguration returns a configuration matching spec.md §6's
// line format with all inclusion flags on, console output only.
func DefaultLoggingConfiguration() LoggingConfiguration {
	return LoggingConfiguration{
		MinLevel:         Info,
		Sinks:            SinkConsole,
		MaxFileBytes:     10 * 1024 * 1024,
		MaxFiles:         5,
		ThreadSafe:       true,
		IncludeTimestamp: true,
		IncludeComponent: true,
		IncludeFunction:  true,
		MemoryCapacity:   1000,
	}
}

// withDefaults fills in zero-valued fields with sensible defaults, mirroring
// iris's Config.withDefaults copy-on-write pattern.
func (c LoggingConfiguration) withDefaults() LoggingConfiguration {
	out := c
	if out.MaxFileBytes <= 0 {
		out.MaxFileBytes = 10 * 1024 * 1024
	}
	if out.MaxFiles <= 0 {
		out.MaxFiles = 5
	}
	if out.MemoryCapacity <= 0 {
		out.MemoryCapacity = 1000
	}
	if out.Sinks == 0 {
		out.Sinks = SinkConsole
	}
	return out
}

// Validate checks the configuration for internal consistency.
func (c LoggingConfiguration) Validate() error {
	if !c.MinLevel.IsValid() {
		return newFieldError(ErrCodeInvalidLevel, "invalid minimum level", "min_level", c.MinLevel.String())
	}
	if c.Sinks.Has(SinkFile) && c.FilePath == "" {
		return newError(ErrCodeConfigInvalid, "file sink enabled but file_path is empty")
	}
	if c.MaxFileBytes < 0 {
		return newError(ErrCodeConfigInvalid, "max_file_bytes cannot be negative")
	}
	if c.MaxFiles < 0 {
		return newError(ErrCodeConfigInvalid, "max_files cannot be negative")
	}
	return nil
}

// Clone returns a copy of c.
func (c LoggingConfiguration) Clone() LoggingConfiguration { return c }

// overrideSpec is the wire shape of a single override entry in the JSON/YAML
// config document (spec.md §6).
type overrideSpec struct {
	Pattern    string `json:"pattern" yaml:"pattern"`
	Importance string `json:"importance" yaml:"importance"`
	UseRegex   bool   `json:"use_regex" yaml:"use_regex"`
	Reason     string `json:"reason" yaml:"reason"`
}

type applicationSpec struct {
	Defaults             map[string]string `json:"defaults" yaml:"defaults"`
	ComponentOverrides   []overrideSpec    `json:"component_overrides" yaml:"component_overrides"`
	FunctionOverrides    []overrideSpec    `json:"function_overrides" yaml:"function_overrides"`
	MinPersistImportance string            `json:"min_persist_importance" yaml:"min_persist_importance"`
	ErrorRateThreshold   float64           `json:"error_rate_threshold" yaml:"error_rate_threshold"`
}

type loggingSpec struct {
	MinLevel     string `json:"min_level" yaml:"min_level"`
	Outputs      []string `json:"outputs" yaml:"outputs"`
	LogFile      string `json:"log_file" yaml:"log_file"`
	MaxFileSize  int64  `json:"max_file_size" yaml:"max_file_size"`
	MaxFiles     int    `json:"max_files" yaml:"max_files"`
}

// DocumentConfig is the parsed, wire-shaped configuration document: the
// top-level sections from spec.md §6 (defaults, component_overrides,
// function_overrides, applications, logging). Unknown JSON/YAML keys are
// ignored by the underlying decoders; a malformed value fails the whole
// load atomically (see LoadConfigFromJSON/LoadConfigFromYAML).
type DocumentConfig struct {
	Defaults           map[string]string          `json:"defaults" yaml:"defaults"`
	ComponentOverrides []overrideSpec             `json:"component_overrides" yaml:"component_overrides"`
	FunctionOverrides  []overrideSpec             `json:"function_overrides" yaml:"function_overrides"`
	Applications       map[string]applicationSpec `json:"applications" yaml:"applications"`
	Logging            loggingSpec                `json:"logging" yaml:"logging"`
}

// LoadConfigFromJSON reads and parses a JSON configuration document. On any
// parse or semantic error, it returns that error and leaves no partial
// state for the caller to apply (spec.md §6, §7 ConfigLoadFailure).
func LoadConfigFromJSON(path string) (*DocumentConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, wrapError(err, ErrCodeConfigNotFound, "failed to read config file")
	}
	var doc DocumentConfig
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, wrapError(err, ErrCodeConfigParse, "failed to parse JSON config")
	}
	if err := doc.validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// LoadConfigFromYAML reads and parses a YAML configuration document with
// the same section shape as LoadConfigFromJSON (SPEC_FULL.md domain-stack
// wiring: gopkg.in/yaml.v3).
func LoadConfigFromYAML(path string) (*DocumentConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, wrapError(err, ErrCodeConfigNotFound, "failed to read config file")
	}
	var doc DocumentConfig
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, wrapError(err, ErrCodeConfigParse, "failed to parse YAML config")
	}
	if err := doc.validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (doc *DocumentConfig) validate() error {
	for typ, imp := range doc.Defaults {
		if _, err := ParseType(typ); err != nil {
			return wrapError(err, ErrCodeConfigInvalid, fmt.Sprintf("unknown type %q in defaults", typ))
		}
		if _, err := ParseImportance(imp); err != nil {
			return wrapError(err, ErrCodeConfigInvalid, fmt.Sprintf("unknown importance %q in defaults", imp))
		}
	}
	for _, ov := range doc.ComponentOverrides {
		if _, err := compileSpecPattern(ov); err != nil {
			return err
		}
	}
	for _, ov := range doc.FunctionOverrides {
		if _, err := compileSpecPattern(ov); err != nil {
			return err
		}
	}
	for name, app := range doc.Applications {
		for typ, imp := range app.Defaults {
			if _, err := ParseType(typ); err != nil {
				return wrapError(err, ErrCodeConfigInvalid, fmt.Sprintf("unknown type %q in applications.%s.defaults", typ, name))
			}
			if _, err := ParseImportance(imp); err != nil {
				return wrapError(err, ErrCodeConfigInvalid, fmt.Sprintf("unknown importance %q in applications.%s.defaults", imp, name))
			}
		}
		for _, ov := range append(append([]overrideSpec(nil), app.ComponentOverrides...), app.FunctionOverrides...) {
			if _, err := compileSpecPattern(ov); err != nil {
				return err
			}
		}
		if _, err := ParseImportance(app.MinPersistImportance); err != nil {
			return wrapError(err, ErrCodeConfigInvalid, fmt.Sprintf("unknown min_persist_importance in applications.%s", name))
		}
	}
	if doc.Logging.MinLevel != "" {
		if _, err := ParseType(doc.Logging.MinLevel); err != nil {
			return wrapError(err, ErrCodeConfigInvalid, "unknown logging.min_level")
		}
	}
	return nil
}

func compileSpecPattern(ov overrideSpec) (Importance, error) {
	imp, err := ParseImportance(ov.Importance)
	if err != nil {
		return 0, wrapError(err, ErrCodeConfigInvalid, fmt.Sprintf("unknown importance %q", ov.Importance))
	}
	if _, err := pattern.Compile(ov.Pattern, ov.UseRegex); err != nil {
		return 0, wrapError(err, ErrCodeInvalidPattern, fmt.Sprintf("malformed pattern %q", ov.Pattern))
	}
	return imp, nil
}

// ApplyToEngine installs the document's global defaults, global overrides,
// and per-application configs into engine. Called only after validate()
// has already confirmed the whole document is well-formed, so installation
// itself cannot fail partway through.
func (doc *DocumentConfig) ApplyToEngine(engine *Engine) {
	for typ, impName := range doc.Defaults {
		t, _ := ParseType(typ)
		imp, _ := ParseImportance(impName)
		engine.SetDefaultImportance(t, imp)
	}
	for _, ov := range doc.ComponentOverrides {
		imp, _ := ParseImportance(ov.Importance)
		engine.AddComponentOverride(ov.Pattern, imp, ov.UseRegex, ov.Reason)
	}
	for _, ov := range doc.FunctionOverrides {
		imp, _ := ParseImportance(ov.Importance)
		engine.AddFunctionOverride(ov.Pattern, imp, ov.UseRegex, ov.Reason)
	}
	for name, app := range doc.Applications {
		cfg := engine.ConfigureApplication(name)
		for typ, impName := range app.Defaults {
			t, _ := ParseType(typ)
			imp, _ := ParseImportance(impName)
			cfg.TypeDefaults[t] = imp
		}
		if app.MinPersistImportance != "" {
			imp, _ := ParseImportance(app.MinPersistImportance)
			cfg.MinPersistImportance = imp
		}
		if app.ErrorRateThreshold > 0 {
			cfg.ErrorRateThreshold = app.ErrorRateThreshold
		}
		for _, ov := range app.ComponentOverrides {
			imp, _ := ParseImportance(ov.Importance)
			cfg.componentOverrides.add(ov.Pattern, imp, ov.UseRegex, ov.Reason)
		}
		for _, ov := range app.FunctionOverrides {
			imp, _ := ParseImportance(ov.Importance)
			cfg.functionOverrides.add(ov.Pattern, imp, ov.UseRegex, ov.Reason)
		}
	}
}

// LoggingConfiguration converts the document's logging section into a
// LoggingConfiguration, applying defaults for anything unset.
func (doc *DocumentConfig) LoggingConfiguration() (LoggingConfiguration, error) {
	cfg := DefaultLoggingConfiguration()
	if doc.Logging.MinLevel != "" {
		t, err := ParseType(doc.Logging.MinLevel)
		if err != nil {
			return cfg, wrapError(err, ErrCodeConfigInvalid, "unknown logging.min_level")
		}
		cfg.MinLevel = t
	}
	if len(doc.Logging.Outputs) > 0 {
		cfg.Sinks = 0
		for _, out := range doc.Logging.Outputs {
			switch out {
			case "console", "Console":
				cfg.Sinks |= SinkConsole
			case "file", "File":
				cfg.Sinks |= SinkFile
			case "memory", "Memory":
				cfg.Sinks |= SinkMemory
			}
		}
	}
	if doc.Logging.LogFile != "" {
		cfg.FilePath = doc.Logging.LogFile
	}
	if doc.Logging.MaxFileSize > 0 {
		cfg.MaxFileBytes = doc.Logging.MaxFileSize
	}
	if doc.Logging.MaxFiles > 0 {
		cfg.MaxFiles = doc.Logging.MaxFiles
	}
	return cfg.withDefaults(), cfg.Validate()
}
