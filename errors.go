// errors.go: error taxonomy and handling for asfmlog
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package asfmlog

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/agilira/go-errors"
)

// Error codes for asfmlog. These map onto the error taxonomy in spec.md §7:
// InvalidArgument, NotFound, SinkFailure, ConfigLoadFailure.
const (
	// InvalidArgument kind
	ErrCodeInvalidArgument errors.ErrorCode = "ASFMLOG_INVALID_ARGUMENT"
	ErrCodeInvalidPattern  errors.ErrorCode = "ASFMLOG_INVALID_PATTERN"
	ErrCodeInvalidLevel    errors.ErrorCode = "ASFMLOG_INVALID_LEVEL"

	// NotFound kind
	ErrCodeInstanceNotFound errors.ErrorCode = "ASFMLOG_INSTANCE_NOT_FOUND"
	ErrCodeOverrideNotFound errors.ErrorCode = "ASFMLOG_OVERRIDE_NOT_FOUND"

	// SinkFailure kind
	ErrCodeFileOpen     errors.ErrorCode = "ASFMLOG_FILE_OPEN"
	ErrCodeFileWrite    errors.ErrorCode = "ASFMLOG_FILE_WRITE"
	ErrCodeFileRotation errors.ErrorCode = "ASFMLOG_FILE_ROTATION"
	ErrCodeConsoleWrite errors.ErrorCode = "ASFMLOG_CONSOLE_WRITE"

	// ConfigLoadFailure kind
	ErrCodeConfigParse    errors.ErrorCode = "ASFMLOG_CONFIG_PARSE"
	ErrCodeConfigInvalid  errors.ErrorCode = "ASFMLOG_CONFIG_INVALID"
	ErrCodeConfigNotFound errors.ErrorCode = "ASFMLOG_CONFIG_NOT_FOUND"
)

// ErrorHandler processes an internally-surfaced error.
type ErrorHandler func(err *errors.Error)

// defaultErrorHandler prints to stderr. Never routed back through the Core's
// own sinks to avoid recursion during a sink failure.
var defaultErrorHandler ErrorHandler = func(err *errors.Error) {
	fmt.Fprintf(os.Stderr, "[asfmlog] %s: %s\n", err.Code, err.Message)
	if err.Cause != nil {
		fmt.Fprintf(os.Stderr, "[asfmlog] caused by: %v\n", err.Cause)
	}
}

var currentErrorHandler = defaultErrorHandler

// SetErrorHandler installs a custom handler for internally-surfaced errors.
// Passing nil restores the default stderr handler.
func SetErrorHandler(h ErrorHandler) {
	if h == nil {
		currentErrorHandler = defaultErrorHandler
		return
	}
	currentErrorHandler = h
}

// GetErrorHandler returns the currently installed error handler.
func GetErrorHandler() ErrorHandler {
	return currentErrorHandler
}

func handleError(err *errors.Error) {
	if err == nil {
		return
	}
	if err.Context == nil {
		err.Context = make(map[string]interface{})
	}
	err.Context["go_version"] = runtime.Version()
	currentErrorHandler(err)
}

// newError creates a package error with standard context and caller info.
func newError(code errors.ErrorCode, message string) *errors.Error {
	err := errors.New(code, message).
		WithSeverity("error").
		WithContext("component", "asfmlog").
		WithContext("timestamp", time.Now().UTC())

	if pc, file, line, ok := runtime.Caller(2); ok {
		if fn := runtime.FuncForPC(pc); fn != nil {
			_ = err.WithContext("caller_func", fn.Name())
		}
		_ = err.WithContext("caller_file", file)
		_ = err.WithContext("caller_line", line)
	}
	return err
}

// newFieldError creates a package error referencing a specific field/value.
func newFieldError(code errors.ErrorCode, message, field, value string) *errors.Error {
	return errors.NewWithField(code, message, field, value).
		WithSeverity("error").
		WithContext("component", "asfmlog").
		WithContext("timestamp", time.Now().UTC())
}

// wrapError wraps a lower-level error with a package error code.
func wrapError(cause error, code errors.ErrorCode, message string) *errors.Error {
	err := errors.Wrap(cause, code, message).
		WithSeverity("error").
		WithContext("component", "asfmlog").
		WithContext("timestamp", time.Now().UTC())
	return err
}

// IsErrorCode reports whether err carries the given asfmlog error code.
func IsErrorCode(err error, code errors.ErrorCode) bool {
	return errors.HasCode(err, code)
}

// ErrorCode extracts the asfmlog error code from err, or "" if not one of ours.
func ErrorCode(err error) errors.ErrorCode {
	if e, ok := err.(*errors.Error); ok {
		return e.ErrorCode()
	}
	return ""
}
