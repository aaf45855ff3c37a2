package voxel

import (
	"testing"

	"worldgenerator/core"
)

// TestPaletteGrowth mirrors spec.md §8 Scenario A.
func TestPaletteGrowth(t *testing.T) {
	c := NewChunk()
	c.SetVoxel(0, 0, 0, core.ROCK)
	if got := c.Palette(); len(got) != 1 || got[0] != core.ROCK {
		t.Fatalf("palette after first write = %v, want [ROCK]", got)
	}
	if !c.IsSolid(0, 0, 0) {
		t.Fatal("expected (0,0,0) solid after ROCK write")
	}

	c.SetVoxel(0, 0, 0, core.DIRT)
	got := c.Palette()
	if len(got) != 2 || got[0] != core.ROCK || got[1] != core.DIRT {
		t.Fatalf("palette after second write = %v, want [ROCK DIRT]", got)
	}
	if !c.IsSolid(0, 0, 0) {
		t.Fatal("expected (0,0,0) still solid after DIRT overwrite")
	}
	if m := c.GetMaterial(0, 0, 0); m != core.DIRT {
		t.Fatalf("GetMaterial = %v, want DIRT", m)
	}
}

// TestOccupancyInvariant checks invariant I1 over every voxel of a small
// fill pattern.
func TestOccupancyInvariant(t *testing.T) {
	c := NewChunk()
	for x := 0; x < N; x += 7 {
		for y := 0; y < N; y += 11 {
			for z := 0; z < N; z += 13 {
				mat := core.AIR
				if (x+y+z)%2 == 0 {
					mat = core.ROCK
				}
				c.SetVoxel(x, y, z, mat)
			}
		}
	}
	for x := 0; x < N; x += 7 {
		for y := 0; y < N; y += 11 {
			for z := 0; z < N; z += 13 {
				i := Lindex(x, y, z)
				wantOcc := c.GetMaterial(x, y, z) != core.AIR
				gotOcc := c.IsSolid(x, y, z)
				if gotOcc != wantOcc {
					t.Fatalf("occ invariant broken at (%d,%d,%d): occ=%v, material!=AIR=%v (index %d)", x, y, z, gotOcc, wantOcc, i)
				}
			}
		}
	}
}

// TestAllAirThenAllSolid mirrors spec.md §8 boundary behavior.
func TestAllAirThenAllSolid(t *testing.T) {
	c := NewChunk()
	for z := 0; z < N; z++ {
		for y := 0; y < N; y++ {
			for x := 0; x < N; x++ {
				c.SetVoxel(x, y, z, core.AIR)
			}
		}
	}
	if !c.IsAllAir() {
		t.Fatal("expected IsAllAir after filling with AIR")
	}

	for z := 0; z < N; z++ {
		for y := 0; y < N; y++ {
			for x := 0; x < N; x++ {
				c.SetVoxel(x, y, z, core.ROCK)
			}
		}
	}
	if !c.IsAllSolid() {
		t.Fatal("expected IsAllSolid after filling with ROCK")
	}
	pal := c.Palette()
	hasAir, hasRock := false, false
	for _, m := range pal {
		if m == core.AIR {
			hasAir = true
		}
		if m == core.ROCK {
			hasRock = true
		}
	}
	if !hasAir || !hasRock {
		t.Fatalf("expected palette to contain both AIR and ROCK, got %v", pal)
	}
}

func TestGetMaterialClampsCorruptIndex(t *testing.T) {
	c := NewChunk()
	c.SetVoxel(1, 1, 1, core.ROCK)
	// Simulate a corrupt delta-applied chunk by forcing an out-of-range
	// packed index directly.
	c.indices.Set(Lindex(2, 2, 2), 99)
	if m := c.GetMaterial(2, 2, 2); m != core.ROCK {
		t.Fatalf("expected clamped GetMaterial to return last palette entry (ROCK), got %v", m)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	c := NewChunk()
	c.SetVoxel(3, 3, 3, core.ROCK)
	clone := c.Clone()
	clone.SetVoxel(3, 3, 3, core.DIRT)
	if got := c.GetMaterial(3, 3, 3); got != core.ROCK {
		t.Fatalf("original mutated by clone edit: got %v", got)
	}
	if got := clone.GetMaterial(3, 3, 3); got != core.DIRT {
		t.Fatalf("clone not updated: got %v", got)
	}
}
