// Package diag carries asfmlog's own operational diagnostics -- messages
// about what the package itself is doing (a sink write failing, skipping
// a malformed config reload) -- kept separate from the
// Memory-sink fallback that the Logging Core uses for emission failures
// (spec.md §7). Grounded on the separation mdzesseis-log_capturer_go keeps
// between its data-plane sinks and its own logrus-based operational log.
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0
package diag

import "github.com/sirupsen/logrus"

var log = logrus.New()

func init() {
	log.SetLevel(logrus.WarnLevel)
}

// SetLevel adjusts the verbosity of the package's internal diagnostics.
func SetLevel(level logrus.Level) { log.SetLevel(level) }

// Warnf logs a formatted warning about the package's own operation.
func Warnf(format string, args ...interface{}) { log.Warnf(format, args...) }

// Errorf logs a formatted error about the package's own operation.
func Errorf(format string, args ...interface{}) { log.Errorf(format, args...) }
