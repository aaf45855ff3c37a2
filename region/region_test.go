package region

import (
	"testing"

	"worldgenerator/core"
	"worldgenerator/voxel"
)

// TestChunkRoundTrip mirrors spec.md §8 Scenario C.
func TestChunkRoundTrip(t *testing.T) {
	c := voxel.NewChunk()
	for z := 0; z < voxel.N; z++ {
		for y := 0; y < voxel.N; y++ {
			for x := 0; x < voxel.N; x++ {
				if y < 32 {
					c.SetVoxel(x, y, z, core.ROCK)
				} else {
					c.SetVoxel(x, y, z, core.AIR)
				}
			}
		}
	}
	for y := 0; y < 40; y++ {
		c.SetVoxel(20, y, 20, core.DIRT)
	}

	root := t.TempDir()
	store := NewStore(root)
	key := core.NewFaceChunkKey(0, 3, -5, 11)

	if !store.SaveChunk(key, c) {
		t.Fatal("SaveChunk failed")
	}

	loaded, ok := store.LoadChunk(key)
	if !ok {
		t.Fatal("LoadChunk failed")
	}

	mismatches := 0
	for z := 0; z < voxel.N; z++ {
		for y := 0; y < voxel.N; y++ {
			for x := 0; x < voxel.N; x++ {
				if c.GetMaterial(x, y, z) != loaded.GetMaterial(x, y, z) {
					mismatches++
				}
			}
		}
	}
	if mismatches != 0 {
		t.Fatalf("round trip produced %d voxel mismatches", mismatches)
	}
}

func TestChunkDeltaRoundTrip(t *testing.T) {
	d := voxel.NewChunkDelta()
	edits := map[uint32]core.Material{
		10: core.DIRT,
		20: core.LAVA,
		30: core.WATER,
	}
	for idx, mat := range edits {
		d.ApplyEdit(idx, core.ROCK, mat)
	}

	root := t.TempDir()
	store := NewStore(root)
	key := core.NewFaceChunkKey(2, 0, 0, 7)

	if !store.SaveChunkDelta(key, d) {
		t.Fatal("SaveChunkDelta failed")
	}
	loaded, ok := store.LoadChunkDelta(key)
	if !ok {
		t.Fatal("LoadChunkDelta failed")
	}
	if loaded.OverrideCount() != len(edits) {
		t.Fatalf("loaded override count = %d, want %d", loaded.OverrideCount(), len(edits))
	}
	for idx, want := range edits {
		got, ok := loaded.Effective(idx)
		if !ok || got != want {
			t.Fatalf("index %d: got (%v,%v), want (%v,true)", idx, got, ok, want)
		}
	}
}

func TestEmptyDeltaClearsTOCEntry(t *testing.T) {
	root := t.TempDir()
	store := NewStore(root)
	key := core.NewFaceChunkKey(1, 0, 0, 0)

	d := voxel.NewChunkDelta()
	d.ApplyEdit(5, core.ROCK, core.DIRT)
	if !store.SaveChunkDelta(key, d) {
		t.Fatal("SaveChunkDelta failed")
	}

	d.ApplyEdit(5, core.ROCK, core.ROCK) // revert -> empty
	if !store.SaveChunkDelta(key, d) {
		t.Fatal("SaveChunkDelta (empty) failed")
	}

	_, ok := store.LoadChunkDelta(key)
	if ok {
		t.Fatal("expected LoadChunkDelta to report no delta after clearing")
	}
}

func TestLoadMissingChunkReturnsFalse(t *testing.T) {
	root := t.TempDir()
	store := NewStore(root)
	key := core.NewFaceChunkKey(4, 100, 100, 2)
	if _, ok := store.LoadChunk(key); ok {
		t.Fatal("expected LoadChunk on empty store to fail")
	}
}

func TestChunkAndDeltaCoexistInSameFile(t *testing.T) {
	root := t.TempDir()
	store := NewStore(root)
	key := core.NewFaceChunkKey(0, 1, 1, 0)

	c := voxel.NewChunk()
	c.SetVoxel(0, 0, 0, core.ROCK)
	if !store.SaveChunk(key, c) {
		t.Fatal("SaveChunk failed")
	}

	d := voxel.NewChunkDelta()
	d.ApplyEdit(1, core.ROCK, core.DIRT)
	if !store.SaveChunkDelta(key, d) {
		t.Fatal("SaveChunkDelta failed")
	}

	if _, ok := store.LoadChunk(key); !ok {
		t.Fatal("chunk slot clobbered by delta save")
	}
	if _, ok := store.LoadChunkDelta(key); !ok {
		t.Fatal("delta slot not found after chunk+delta save")
	}
}
