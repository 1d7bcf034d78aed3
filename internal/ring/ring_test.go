// ring_test.go: bounded FIFO history buffer tests
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package ring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBufferBasicPushSnapshot(t *testing.T) {
	b := New[int](3)
	b.Push(1)
	b.Push(2)
	assert.Equal(t, []int{1, 2}, b.Snapshot(0))
	assert.Equal(t, 2, b.Len())
}

func TestBufferOverflowEvictsOldest(t *testing.T) {
	b := New[int](3)
	for i := 1; i <= 5; i++ {
		b.Push(i)
	}
	assert.Equal(t, []int{3, 4, 5}, b.Snapshot(0))
	assert.Equal(t, 3, b.Len())
}

func TestBufferSnapshotCountLimitsToMostRecent(t *testing.T) {
	b := New[int](5)
	for i := 1; i <= 5; i++ {
		b.Push(i)
	}
	assert.Equal(t, []int{3, 4, 5}, b.Snapshot(3))
	assert.Equal(t, []int{1, 2, 3, 4, 5}, b.Snapshot(100), "count greater than size returns everything held")
}

func TestBufferClearReturnsRemovedCount(t *testing.T) {
	b := New[int](3)
	b.Push(1)
	b.Push(2)
	removed := b.Clear()
	assert.Equal(t, 2, removed)
	assert.Equal(t, 0, b.Len())
	assert.Empty(t, b.Snapshot(0))
}

func TestBufferZeroCapacityClampedToOne(t *testing.T) {
	b := New[int](0)
	b.Push(1)
	b.Push(2)
	require.Equal(t, 1, b.Len())
	assert.Equal(t, []int{2}, b.Snapshot(0))
}
