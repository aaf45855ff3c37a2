package mesher

import (
	"testing"

	"worldgenerator/core"
	"worldgenerator/voxel"
)

func testConfig() core.PlanetConfig {
	return core.DefaultPlanetConfig()
}

// TestSingleInteriorVoxelProducesSixQuads mirrors the boundary behavior
// named in spec.md §8: a single solid voxel with no neighbors present
// produces exactly 6 quads (12 triangles, 24 vertices, 36 indices).
func TestSingleInteriorVoxelProducesSixQuads(t *testing.T) {
	c := voxel.NewChunk()
	c.SetVoxel(32, 32, 32, core.ROCK)

	key := core.NewFaceChunkKey(0, 0, 0, 20)
	res := MeshChunkGreedy(c, key, testConfig(), DefaultOptions())

	if len(res.Vertices) != 24 {
		t.Fatalf("vertices = %d, want 24", len(res.Vertices))
	}
	if len(res.Indices) != 36 {
		t.Fatalf("indices = %d, want 36", len(res.Indices))
	}
}

// TestAllSolidChunkWithAllSolidNeighborsIsEmpty mirrors the boundary
// behavior named in spec.md §8: a fully solid chunk surrounded by fully
// solid neighbors on all six sides produces an empty mesh.
func TestAllSolidChunkWithAllSolidNeighborsIsEmpty(t *testing.T) {
	fill := func() *voxel.Chunk {
		c := voxel.NewChunk()
		for z := 0; z < voxel.N; z++ {
			for y := 0; y < voxel.N; y++ {
				for x := 0; x < voxel.N; x++ {
					c.SetVoxel(x, y, z, core.ROCK)
				}
			}
		}
		return c
	}

	center := fill()
	neighbors := Neighbors{
		NegX: fill(), PosX: fill(),
		NegY: fill(), PosY: fill(),
		NegZ: fill(), PosZ: fill(),
	}

	key := core.NewFaceChunkKey(0, 0, 0, 20)
	res := MeshChunkGreedyNeighbors(center, neighbors, key, testConfig(), DefaultOptions())

	if len(res.Vertices) != 0 {
		t.Fatalf("vertices = %d, want 0", len(res.Vertices))
	}
	if len(res.Indices) != 0 {
		t.Fatalf("indices = %d, want 0", len(res.Indices))
	}
}

// TestMissingNeighborSuppressesBoundaryFace checks that an absent neighbor
// is treated as same-material, per spec.md §4.5.2: a chunk fully solid at
// its +X boundary plane produces no face there when the +X neighbor is nil,
// but does produce one when an all-air +X neighbor is supplied. In both
// cases the plane's -X face (looking at air inside the chunk) is emitted as
// one merged quad.
func TestMissingNeighborSuppressesBoundaryFace(t *testing.T) {
	c := voxel.NewChunk()
	for z := 0; z < voxel.N; z++ {
		for y := 0; y < voxel.N; y++ {
			c.SetVoxel(voxel.N-1, y, z, core.ROCK)
		}
	}
	key := core.NewFaceChunkKey(0, 0, 0, 20)

	withoutNeighbor := MeshChunkGreedyNeighbors(c, Neighbors{}, key, testConfig(), DefaultOptions())
	if len(withoutNeighbor.Vertices) != 4 {
		t.Fatalf("expected 4 vertices (only the interior -X quad) with missing +X neighbor, got %d", len(withoutNeighbor.Vertices))
	}

	air := voxel.NewChunk()
	withAirNeighbor := MeshChunkGreedyNeighbors(c, Neighbors{PosX: air}, key, testConfig(), DefaultOptions())
	if len(withAirNeighbor.Vertices) != 8 {
		t.Fatalf("expected 8 vertices (-X quad plus +X boundary quad) with all-air +X neighbor, got %d", len(withAirNeighbor.Vertices))
	}
}

// TestGreedyMergeProducesSingleQuadForUniformFace checks that a uniformly
// solid chunk surrounded by all-air neighbors merges each of its six faces
// into exactly one quad instead of per-voxel quads.
func TestGreedyMergeProducesSingleQuadForUniformFace(t *testing.T) {
	center := voxel.NewChunk()
	for z := 0; z < voxel.N; z++ {
		for y := 0; y < voxel.N; y++ {
			for x := 0; x < voxel.N; x++ {
				center.SetVoxel(x, y, z, core.ROCK)
			}
		}
	}
	air := voxel.NewChunk()
	neighbors := Neighbors{
		NegX: air, PosX: air,
		NegY: air, PosY: air,
		NegZ: air, PosZ: air,
	}
	key := core.NewFaceChunkKey(0, 0, 0, 20)
	res := MeshChunkGreedyNeighbors(center, neighbors, key, testConfig(), DefaultOptions())

	if len(res.Vertices) != 6*4 {
		t.Fatalf("vertices = %d, want %d (one quad per face)", len(res.Vertices), 6*4)
	}
	if len(res.Indices) != 6*6 {
		t.Fatalf("indices = %d, want %d", len(res.Indices), 6*6)
	}
}
