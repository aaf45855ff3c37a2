package runtime

import (
	"testing"
	"time"

	"worldgenerator/core"
	"worldgenerator/stream"
	"worldgenerator/voxel"
)

func testWorldConfig() Config {
	cfg := DefaultConfig()
	cfg.RingRadius = 1
	cfg.KDown, cfg.KUp = 0, 0
	cfg.KPruneMargin = 0
	cfg.PruneMargin = 1
	cfg.LoaderThreads = 2
	cfg.StreamConeDeg = 180
	cfg.SaveChunksEnabled = false
	cfg.PoolVtxMB = 16
	cfg.PoolIdxMB = 16
	cfg.UploadsPerFrameLimit = 64
	cfg.RemeshPerFrameLimit = 64
	return cfg
}

func testWorld(t *testing.T) *World {
	t.Helper()
	planet := core.DefaultPlanetConfig()
	startPos := core.Vec3{0, 0, float32(planet.RadiusM) + 5}
	w := Initialize(planet, testWorldConfig(), startPos, "")
	t.Cleanup(w.Shutdown)
	return w
}

// pumpUntilIdle repeatedly updates the world with a zero-motion input
// until the streaming manager drains its backlog, or fails the test.
func pumpUntilIdle(t *testing.T, w *World) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		w.Update(WorldUpdateInput{DT: 1.0 / 60})
		status := w.SnapshotStreamStatus()
		if !status.LoaderBusy && status.Queued == 0 {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out waiting for world streaming to settle (status=%+v)", w.SnapshotStreamStatus())
}

func TestWorldUpdateSubmitsStreamingOnFirstFrame(t *testing.T) {
	w := testWorld(t)

	result := w.Update(WorldUpdateInput{DT: 1.0 / 60})
	if !result.StreamingDirty {
		t.Fatalf("expected the first frame to mark streaming dirty")
	}

	pumpUntilIdle(t, w)

	if len(w.PendingMeshUploads()) == 0 {
		t.Fatalf("expected at least one pending mesh upload after streaming settles")
	}
}

func TestWorldUpdateDoesNotResubmitForStationaryCamera(t *testing.T) {
	w := testWorld(t)
	w.Update(WorldUpdateInput{DT: 1.0 / 60})
	pumpUntilIdle(t, w)

	result := w.Update(WorldUpdateInput{DT: 1.0 / 60})
	if result.StreamingDirty {
		t.Fatalf("expected no new streaming submission for a stationary camera on the same tile")
	}
}

func TestConsumeMeshTransferQueuesPopsExactCount(t *testing.T) {
	w := testWorld(t)
	w.Update(WorldUpdateInput{DT: 1.0 / 60})
	pumpUntilIdle(t, w)

	before := len(w.PendingMeshUploads())
	if before == 0 {
		t.Fatalf("expected pending uploads to consume")
	}

	w.ConsumeMeshTransferQueues(1, 0)
	after := len(w.PendingMeshUploads())
	if after != before-1 {
		t.Fatalf("pending uploads = %d, want %d after consuming one", after, before-1)
	}
}

func TestApplyVoxelEditAppliesOverrideAndQueuesNeighborRemesh(t *testing.T) {
	w := testWorld(t)
	w.Update(WorldUpdateInput{DT: 1.0 / 60})
	pumpUntilIdle(t, w)

	face := w.faceTracker.CurrentFace()
	key := core.NewFaceChunkKey(face, w.lastCI, w.lastCJ, w.lastCK)
	if _, ok := w.manager.GetChunk(key); !ok {
		t.Fatalf("expected target chunk %+v to be cached after streaming settles", key)
	}

	hit := PickHit{
		Found:      true,
		SolidKey:   key,
		SolidLocal: [3]int{0, voxel.N / 2, voxel.N / 2},
		SolidWorld: [3]int64{key.I * int64(voxel.N), key.J*int64(voxel.N) + int64(voxel.N/2), key.K*int64(voxel.N) + int64(voxel.N/2)},
	}

	if !w.ApplyVoxelEdit(hit, core.DIRT, 1) {
		t.Fatalf("expected ApplyVoxelEdit to succeed against a cached chunk")
	}

	c, ok := w.manager.GetChunk(key)
	if !ok {
		t.Fatalf("expected chunk to remain cached")
	}
	if m := c.GetMaterial(0, voxel.N/2, voxel.N/2); m != core.DIRT {
		t.Fatalf("material at edit site = %v, want DIRT", m)
	}

	neighbor := key.Neighbor(0, -1)
	if n := w.manager.ProcessRemeshBatch(10); n != 2 {
		t.Fatalf("remeshed %d chunks, want 2 (the target and its cached -X neighbor %+v)", n, neighbor)
	}
}

// waitForChunk submits a direct load request for key and polls until the
// manager has it cached, or fails the test.
func waitForChunk(t *testing.T, w *World, key core.FaceChunkKey) {
	t.Helper()
	w.manager.SubmitRequest(stream.LoadRequest{
		Face: key.Face, CI: key.I, CJ: key.J, CK: key.K,
		RingRadius: 0, KDown: 0, KUp: 0, FwdS: 0, FwdT: 1,
	})
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if _, ok := w.manager.GetChunk(key); ok {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out waiting for chunk %+v to be cached", key)
}

// TestApplyVoxelEditQueuesExactRemeshKeysForBoundaryBrush exercises the
// literal scenario of spec.md §8 Scenario E: a 3x3x3 brush centered at
// local (0,32,32) on key (face=2,i=0,j=0,k=7) straddles the chunk's
// negative-X face, so the edit must queue remesh for exactly
// (2,-1,0,7) and (2,0,0,7), and no other key.
func TestApplyVoxelEditQueuesExactRemeshKeysForBoundaryBrush(t *testing.T) {
	w := testWorld(t)

	key := core.NewFaceChunkKey(2, 0, 0, 7)
	waitForChunk(t, w, key)

	hit := PickHit{
		Found:      true,
		SolidKey:   key,
		SolidLocal: [3]int{0, 32, 32},
		SolidWorld: [3]int64{key.I * int64(voxel.N), key.J*int64(voxel.N) + 32, key.K*int64(voxel.N) + 32},
	}

	if !w.ApplyVoxelEdit(hit, core.DIRT, 3) {
		t.Fatalf("expected ApplyVoxelEdit to succeed against a cached chunk")
	}

	got := w.manager.TakeRemeshBatch(10)
	want := map[core.FaceChunkKey]bool{
		core.NewFaceChunkKey(2, -1, 0, 7): true,
		core.NewFaceChunkKey(2, 0, 0, 7):  true,
	}
	if len(got) != len(want) {
		t.Fatalf("remesh batch = %+v, want exactly %+v", got, want)
	}
	for _, k := range got {
		if !want[k] {
			t.Fatalf("unexpected remesh key %+v queued, want only %+v", k, want)
		}
	}
}

func TestApplyVoxelEditFailsWithoutCachedChunk(t *testing.T) {
	w := testWorld(t)
	hit := PickHit{Found: true, SolidKey: core.NewFaceChunkKey(0, 99, 99, 99)}
	if w.ApplyVoxelEdit(hit, core.DIRT, 1) {
		t.Fatalf("expected ApplyVoxelEdit to fail for an uncached chunk")
	}
}

func TestApplyVoxelEditFailsWhenNoHit(t *testing.T) {
	w := testWorld(t)
	if w.ApplyVoxelEdit(PickHit{Found: false}, core.DIRT, 1) {
		t.Fatalf("expected ApplyVoxelEdit to fail when no voxel was hit")
	}
}
