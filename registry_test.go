// registry_test.go: Instance Registry lifecycle, lookup, and concurrency tests
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package asfmlog

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterInstanceAssignsFreshIDs(t *testing.T) {
	r := NewRegistry()
	a := r.RegisterInstance("app1", "proc1", "inst1")
	b := r.RegisterInstance("app1", "proc1", "inst2")

	assert.NotEqual(t, a.InstanceID(), b.InstanceID())
	assert.Greater(t, b.InstanceID(), a.InstanceID())
	assert.Equal(t, 2, r.Count())
}

func TestFindByIDApplicationProcess(t *testing.T) {
	r := NewRegistry()
	inst := r.RegisterInstance("app1", "proc1", "inst1")

	found, ok := r.FindByID(inst.InstanceID())
	require.True(t, ok)
	assert.Equal(t, "app1", found.Application)

	byApp := r.FindByApplication("app1")
	assert.Len(t, byApp, 1)

	byProc := r.FindByProcess("proc1")
	assert.Len(t, byProc, 1)

	_, ok = r.FindByID(999999)
	assert.False(t, ok)
}

func TestUpdateActivityIncrementCounters(t *testing.T) {
	r := NewRegistry()
	inst := r.RegisterInstance("app1", "", "")

	assert.True(t, r.IncrementMessages(inst.InstanceID()))
	assert.True(t, r.IncrementErrors(inst.InstanceID()))
	assert.True(t, r.UpdateActivity(inst.InstanceID()))
	assert.True(t, r.UpdateStatistics(inst.InstanceID(), 5, 2))

	snap, ok := r.FindByID(inst.InstanceID())
	require.True(t, ok)
	assert.EqualValues(t, 6, snap.MessageCount)
	assert.EqualValues(t, 3, snap.ErrorCount)

	assert.False(t, r.IncrementMessages(999999))
	assert.False(t, r.IncrementErrors(999999))
	assert.False(t, r.UpdateActivity(999999))
	assert.False(t, r.UpdateStatistics(999999, 1, 1))
}

func TestUnregisterRemovesFromAllIndexes(t *testing.T) {
	r := NewRegistry()
	inst := r.RegisterInstance("app1", "proc1", "inst1")

	assert.True(t, r.Unregister(inst.InstanceID()))
	assert.False(t, r.Unregister(inst.InstanceID()), "second unregister of the same id is a no-op false")

	_, ok := r.FindByID(inst.InstanceID())
	assert.False(t, ok)
	assert.Empty(t, r.FindByApplication("app1"))
	assert.Empty(t, r.FindByProcess("proc1"))
}

func TestUnregisterApplicationBulk(t *testing.T) {
	r := NewRegistry()
	r.RegisterInstance("app1", "", "a")
	r.RegisterInstance("app1", "", "b")
	r.RegisterInstance("app2", "", "c")

	removed := r.UnregisterApplication("app1")
	assert.Equal(t, 2, removed)
	assert.Equal(t, 1, r.Count())
}

func TestCleanupInactiveRespectsInterval(t *testing.T) {
	r := NewRegistry()
	r.SetMaxIdle(-1) // every instance is immediately stale
	r.SetCleanupInterval(3600)
	r.RegisterInstance("app1", "", "")

	removed := r.CleanupInactive()
	assert.Equal(t, 1, removed, "first sweep always runs")

	r.RegisterInstance("app1", "", "")
	removed = r.CleanupInactive()
	assert.Equal(t, 0, removed, "second sweep is gated by cleanup_interval")
}

func TestForceCleanupBypassesIntervalAndResetsTimer(t *testing.T) {
	r := NewRegistry()
	r.SetMaxIdle(-1)
	r.SetCleanupInterval(3600)
	r.RegisterInstance("app1", "", "")
	r.RegisterInstance("app1", "", "")

	removed := r.ForceCleanup()
	assert.Equal(t, 2, removed)

	removed = r.CleanupInactive()
	assert.Equal(t, 0, removed, "interval timer was reset by ForceCleanup")
}

func TestRegistryAggregates(t *testing.T) {
	r := NewRegistry()
	a := r.RegisterInstance("app1", "", "")
	b := r.RegisterInstance("app2", "", "")
	r.IncrementMessages(a.InstanceID())
	r.IncrementMessages(a.InstanceID())
	r.IncrementMessages(b.InstanceID())
	r.IncrementErrors(b.InstanceID())

	assert.Equal(t, 2, r.Count())
	assert.Equal(t, 2, r.ActiveCount())
	assert.ElementsMatch(t, []string{"app1", "app2"}, r.UniqueApplications())
	assert.Equal(t, map[string]int{"app1": 1, "app2": 1}, r.CountByApplication())
	assert.EqualValues(t, 3, r.TotalMessages())
	assert.EqualValues(t, 1, r.TotalErrors())
}

func TestRegistrySnapshot(t *testing.T) {
	r := NewRegistry()
	r.RegisterInstance("app1", "", "")
	r.RegisterInstance("app2", "", "")

	snaps := r.Snapshot()
	assert.Len(t, snaps, 2)
}

// TestRegistryConcurrentAccess exercises the registry's locking discipline
// under concurrent registration, counter updates, and lookups, grounded on
// iris's multiwriter_race_test.go intensive-concurrency shape.
func TestRegistryConcurrentAccess(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping intensive concurrency test in short mode")
	}

	r := NewRegistry()
	const workers = 32
	const opsPerWorker = 200

	var wg sync.WaitGroup
	ids := make(chan uint32, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			inst := r.RegisterInstance("app", "proc", "")
			ids <- inst.InstanceID()
			for j := 0; j < opsPerWorker; j++ {
				r.IncrementMessages(inst.InstanceID())
				r.UpdateActivity(inst.InstanceID())
				_, _ = r.FindByID(inst.InstanceID())
			}
		}(i)
	}
	wg.Wait()
	close(ids)

	seen := make(map[uint32]struct{})
	for id := range ids {
		seen[id] = struct{}{}
	}
	assert.Len(t, seen, workers, "every worker must have been assigned a unique instance id")
	assert.Equal(t, workers, r.Count())
	assert.EqualValues(t, workers*opsPerWorker, r.TotalMessages())
}
