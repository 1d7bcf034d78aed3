// watcher_test.go: config hot-reload watcher construction tests
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package asfmlog

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigWatcherRejectsMissingFile(t *testing.T) {
	_, err := NewConfigWatcher(filepath.Join(t.TempDir(), "does-not-exist.json"), nil, nil)
	assert.Error(t, err)
}

func TestNewConfigWatcherStartsUninitialized(t *testing.T) {
	path := writeTemp(t, "config.json", sampleJSONConfig)
	w, err := NewConfigWatcher(path, nil, NewEngine())
	require.NoError(t, err)
	assert.False(t, w.IsRunning())
}

func TestConfigWatcherStopBeforeStartErrors(t *testing.T) {
	path := writeTemp(t, "config.json", sampleJSONConfig)
	w, err := NewConfigWatcher(path, nil, NewEngine())
	require.NoError(t, err)
	assert.Error(t, w.Stop())
}
