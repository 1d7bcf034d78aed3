// record_test.go: Record factory, mutators, and content hashing tests
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package asfmlog

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRecordPopulatesFields(t *testing.T) {
	r := NewRecord(Info, "hello", "Database.Conn", "Query", "db.go", 42)

	assert.Equal(t, Info, r.Type())
	assert.Equal(t, "hello", r.Message())
	assert.Equal(t, "Database.Conn", r.Component())
	assert.Equal(t, "Query", r.Function())
	assert.Equal(t, "db.go", r.File())
	assert.EqualValues(t, 42, r.Line())
	assert.NotZero(t, r.ID())
	assert.Greater(t, r.ProcessID(), 0)
}

func TestRecordIDsStrictlyIncreaseWithinThread(t *testing.T) {
	var last uint32
	var lastTS int64
	for i := 0; i < 50; i++ {
		r := NewRecord(Info, "m", "c", "f", "", 0)
		if i > 0 {
			assert.Greater(t, r.ID(), last)
			assert.GreaterOrEqual(t, r.Timestamp().ToMicroseconds(), lastTS)
		}
		last = r.ID()
		lastTS = r.Timestamp().ToMicroseconds()
	}
}

func TestRecordTruncatesOverLengthFields(t *testing.T) {
	long := strings.Repeat("x", MaxFieldLength+100)
	r := NewRecord(Info, long, "c", "f", "", 0)
	assert.Len(t, r.Message(), MaxFieldLength)
}

func TestRecordSetMessageAcceptsEmpty(t *testing.T) {
	r := NewRecord(Info, "original", "c", "f", "", 0)
	assert.True(t, r.SetMessage(""))
	assert.Equal(t, "", r.Message())
}

func TestRecordSetMessageStrictRejectsOverLength(t *testing.T) {
	r := NewRecord(Info, "original", "c", "f", "", 0)
	long := strings.Repeat("y", MaxFieldLength+1)
	ok := r.SetMessageStrict(long)
	assert.False(t, ok)
	assert.Equal(t, "original", r.Message(), "rejected mutation must not modify the record")
}

func TestRecordSetSourceLocation(t *testing.T) {
	r := NewRecord(Info, "m", "c", "f", "old.go", 1)
	require.True(t, r.SetSourceLocation("new.go", 99))
	assert.Equal(t, "new.go", r.File())
	assert.EqualValues(t, 99, r.Line())
}

func TestRecordSetTypeRejectsInvalid(t *testing.T) {
	r := NewRecord(Info, "m", "c", "f", "", 0)
	assert.False(t, r.SetType(Type(123)))
	assert.Equal(t, Info, r.Type())

	assert.True(t, r.SetType(Critical))
	assert.Equal(t, Critical, r.Type())
}

func TestHashContentStableForIdenticalContent(t *testing.T) {
	a := NewRecord(Warn, "disk full", "Storage", "Flush", "", 0)
	b := NewRecord(Warn, "disk full", "Storage", "Flush", "", 0)
	assert.Equal(t, HashContent(a), HashContent(b))
}

func TestHashContentDiffersForDifferentContent(t *testing.T) {
	a := NewRecord(Warn, "disk full", "Storage", "Flush", "", 0)
	b := NewRecord(Warn, "disk ok", "Storage", "Flush", "", 0)
	assert.NotEqual(t, HashContent(a), HashContent(b))
}

func TestRecordImportanceUnsetByDefault(t *testing.T) {
	r := NewRecord(Info, "m", "c", "f", "", 0)
	_, ok := r.Importance()
	assert.False(t, ok)
}
