package stream

import (
	"testing"
	"time"

	"worldgenerator/core"
	"worldgenerator/mesher"
)

func testManager(t *testing.T) *Manager {
	t.Helper()
	cfg := core.DefaultPlanetConfig()
	m := NewManager(cfg, mesher.DefaultOptions(), nil, Config{
		Workers:       2,
		StreamConeDeg: 180, // disable cone culling for deterministic tests
		ForceLoad:     true,
	})
	t.Cleanup(m.Shutdown)
	return m
}

func waitForStatus(t *testing.T, m *Manager, want int) StreamStatus {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		s := m.Status()
		if s.LastGeneratedChunks >= want && !s.LoaderBusy {
			return s
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out waiting for status (got %+v)", m.Status())
	return StreamStatus{}
}

func TestRingRequestGeneratesAndMeshesChunks(t *testing.T) {
	m := testManager(t)
	m.SubmitRequest(LoadRequest{
		Face: 0, RingRadius: 1, CI: 0, CJ: 0, CK: 20,
		KDown: 0, KUp: 0, FwdS: 0, FwdT: 1,
	})

	waitForStatus(t, m, 9) // (2*1+1)^2 tiles in one shell

	results := m.DrainResults(100)
	if len(results) == 0 {
		t.Fatal("expected at least one mesh result")
	}
}

func TestCoalescingSupersedesOlderGeneration(t *testing.T) {
	m := testManager(t)
	gen1 := m.SubmitRequest(LoadRequest{Face: 0, RingRadius: 3, CI: 0, CJ: 0, CK: 20, FwdS: 0, FwdT: 1})
	gen2 := m.SubmitRequest(LoadRequest{Face: 0, RingRadius: 0, CI: 5, CJ: 5, CK: 20, FwdS: 0, FwdT: 1})

	if gen2 <= gen1 {
		t.Fatalf("expected gen2 (%d) > gen1 (%d)", gen2, gen1)
	}

	waitForStatus(t, m, 1)
}

func TestApplyVoxelOverrideRequiresCachedChunk(t *testing.T) {
	m := testManager(t)
	key := core.NewFaceChunkKey(0, 0, 0, 20)
	if m.ApplyVoxelOverride(key, 0, core.ROCK, core.DIRT) {
		t.Fatal("expected ApplyVoxelOverride to fail for an uncached chunk")
	}

	m.SubmitRequest(LoadRequest{Face: 0, RingRadius: 0, CI: 0, CJ: 0, CK: 20, FwdS: 0, FwdT: 1})
	waitForStatus(t, m, 1)

	if !m.ApplyVoxelOverride(key, 0, core.ROCK, core.DIRT) {
		t.Fatal("expected ApplyVoxelOverride to succeed once chunk is cached")
	}
	c, ok := m.GetChunk(key)
	if !ok {
		t.Fatal("expected chunk to be cached")
	}
	if m := c.GetMaterial(0, 0, 0); m != core.DIRT {
		t.Fatalf("material at (0,0,0) = %v, want DIRT", m)
	}
}

func TestQueueAndProcessRemeshBatch(t *testing.T) {
	m := testManager(t)
	key := core.NewFaceChunkKey(0, 0, 0, 20)
	m.SubmitRequest(LoadRequest{Face: 0, RingRadius: 0, CI: 0, CJ: 0, CK: 20, FwdS: 0, FwdT: 1})
	waitForStatus(t, m, 1)
	m.DrainResults(100)

	m.QueueRemesh(key)
	if n := m.ProcessRemeshBatch(10); n != 1 {
		t.Fatalf("ProcessRemeshBatch processed %d, want 1", n)
	}
	results := m.DrainResults(10)
	if len(results) != 1 || results[0].Key != key {
		t.Fatalf("unexpected remesh results: %+v", results)
	}
}
