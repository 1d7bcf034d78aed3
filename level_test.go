// level_test.go: severity and importance enumeration tests
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

func TestTypeString(t *testing.T) {
	cases := []struct {
		typ      Type
		expected string
	}{
		{Trace, "trace"},
		{Debug, "debug"},
		{Info, "info"},
		{Warn, "warn"},
		{Error, "error"},
		{Critical, "critical"},
		{Type(99), "unknown"},
	}
	for _, tc := range cases {
		t.Run(tc.expected, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.typ.String())
		})
	}
}

func TestTypeOrdering(t *testing.T) {
	assert.Less(t, int32(Trace), int32(Debug))
	assert.Less(t, int32(Debug), int32(Info))
	assert.Less(t, int32(Info), int32(Warn))
	assert.Less(t, int32(Warn), int32(Error))
	assert.Less(t, int32(Error), int32(Critical))
}

func TestParseType(t *testing.T) {
	typ, err := ParseType("WARN")
	require.NoError(t, err)
	assert.Equal(t, Warn, typ)

	typ, err = ParseType("warning")
	require.NoError(t, err)
	assert.Equal(t, Warn, typ)

	_, err = ParseType("bogus")
	assert.Error(t, err)
}

func TestTypeIsValid(t *testing.T) {
	assert.True(t, Trace.IsValid())
	assert.True(t, Critical.IsValid())
	assert.False(t, Type(-1).IsValid())
	assert.False(t, Type(6).IsValid())
}

func TestTypeMarshalUnmarshalText(t *testing.T) {
	b, err := Error.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "error", string(b))

	var typ Type
	require.NoError(t, typ.UnmarshalText([]byte("critical")))
	assert.Equal(t, Critical, typ)

	_, err = Type(42).MarshalText()
	assert.Error(t, err)
}

func TestImportanceBumpDemote(t *testing.T) {
	assert.Equal(t, ImportanceCritical, ImportanceCritical.bump())
	assert.Equal(t, High, Medium.bump())
	assert.Equal(t, Low, Low.demote())
	assert.Equal(t, Medium, High.demote())
}

func TestParseImportance(t *testing.T) {
	imp, err := ParseImportance("High")
	require.NoError(t, err)
	assert.Equal(t, High, imp)

	_, err = ParseImportance("nope")
	assert.Error(t, err)
}

func TestResolutionLevelString(t *testing.T) {
	assert.Equal(t, "function", LevelFunction.String())
	assert.Equal(t, "context", LevelContext.String())
	assert.Equal(t, "unknown", ResolutionLevel(99).String())
}
