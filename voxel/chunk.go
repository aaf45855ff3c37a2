// Package voxel implements the paletted voxel chunk (spec.md §3, §4.2) and
// its sparse/dense edit delta overlay (spec.md §3, §4.3).
package voxel

import (
	"math/bits"

	"worldgenerator/bitpack"
	"worldgenerator/core"
)

// N is the chunk side length; N3 is the total voxel count.
const (
	N  = 64
	N3 = N * N * N
)

const initialBpp = 8

// Chunk is a fixed 64^3 voxel grid addressed by a growable palette, a
// bit-packed index array, and a parallel occupancy bitset (spec.md §3).
type Chunk struct {
	palette    []core.Material
	paletteLUT map[core.Material]int
	indices    *bitpack.Array
	occ        []uint64
	dirtyMesh  bool
}

// NewChunk returns an empty chunk: no palette entries yet, every index 0
// (meaning "whatever gets written to palette slot 0 first" per spec.md §3 —
// callers must not assume slot 0 is AIR).
func NewChunk() *Chunk {
	return &Chunk{
		palette:    nil,
		paletteLUT: make(map[core.Material]int),
		indices:    bitpack.New(N3, initialBpp),
		occ:        make([]uint64, (N3+63)/64),
		dirtyMesh:  false,
	}
}

// Lindex computes the linear index for tile-local coordinates in [0,N).
func Lindex(x, y, z int) int {
	if x < 0 || x >= N || y < 0 || y >= N || z < 0 || z >= N {
		panic("voxel: coordinate out of range")
	}
	return (z*N+y)*N + x
}

// IsDirtyMesh reports whether the chunk has been written to since the last
// mesh was produced.
func (c *Chunk) IsDirtyMesh() bool { return c.dirtyMesh }

// ClearDirtyMesh marks the chunk as freshly meshed.
func (c *Chunk) ClearDirtyMesh() { c.dirtyMesh = false }

// Palette returns the chunk's current palette, in insertion order. Callers
// must not mutate the returned slice.
func (c *Chunk) Palette() []core.Material { return c.palette }

// ensurePaletteWidth grows the packed index array's bit width (and
// therefore re-encodes every entry) once the palette outgrows the current
// width. This never shrinks, satisfying invariant I2 (palette never
// shrinks) transitively: once a width is adopted it is never narrowed
// either.
func (c *Chunk) ensurePaletteWidth(paletteLen int) {
	need := bits.Len(uint(paletteLen - 1))
	if need < 1 {
		need = 1
	}
	if uint(need) <= c.indices.Bpp() {
		return
	}
	grown := bitpack.New(N3, uint(need))
	for i := 0; i < N3; i++ {
		grown.Set(i, c.indices.Get(i))
	}
	c.indices = grown
}

// EnsurePalette returns the palette index for mat, appending it if it is
// not already present. Amortized O(1) via the reverse lookup map.
func (c *Chunk) EnsurePalette(mat core.Material) int {
	if idx, ok := c.paletteLUT[mat]; ok {
		return idx
	}
	idx := len(c.palette)
	c.palette = append(c.palette, mat)
	c.paletteLUT[mat] = idx
	c.ensurePaletteWidth(len(c.palette))
	return idx
}

func (c *Chunk) setOcc(i int, solid bool) {
	word := i / 64
	bit := uint(i % 64)
	if solid {
		c.occ[word] |= 1 << bit
	} else {
		c.occ[word] &^= 1 << bit
	}
}

// SetVoxel writes the material at (x,y,z), updates occupancy, and marks the
// chunk dirty for remeshing.
func (c *Chunk) SetVoxel(x, y, z int, mat core.Material) {
	i := Lindex(x, y, z)
	idx := c.EnsurePalette(mat)
	c.indices.Set(i, uint32(idx))
	c.setOcc(i, mat != core.AIR)
	c.dirtyMesh = true
}

// clampPaletteIndex saturates an oversized palette index to the highest
// valid slot, tolerating corrupt delta-applied chunks (spec.md §4.2,
// §9 "Open questions").
func (c *Chunk) clampPaletteIndex(idx uint32) int {
	if len(c.palette) == 0 {
		return -1
	}
	max := len(c.palette) - 1
	if int(idx) > max {
		return max
	}
	return int(idx)
}

// GetMaterial returns AIR when the palette is empty, otherwise the material
// at the (possibly clamped) palette index for (x,y,z).
func (c *Chunk) GetMaterial(x, y, z int) core.Material {
	i := Lindex(x, y, z)
	idx := c.clampPaletteIndex(c.indices.Get(i))
	if idx < 0 {
		return core.AIR
	}
	return c.palette[idx]
}

// GetMaterialAt is the linear-index form of GetMaterial, used by the
// greedy mesher which already works in linear space.
func (c *Chunk) GetMaterialAt(i int) core.Material {
	idx := c.clampPaletteIndex(c.indices.Get(i))
	if idx < 0 {
		return core.AIR
	}
	return c.palette[idx]
}

// RawIndexAt returns the raw packed palette index stored at (x,y,z),
// unclamped. Used by region serialization, which persists indices
// byte-for-byte rather than re-deriving them from materials.
func (c *Chunk) RawIndexAt(x, y, z int) uint32 {
	return c.indices.Get(Lindex(x, y, z))
}

// IsSolid consults the occupancy bitset only (spec.md §4.2).
func (c *Chunk) IsSolid(x, y, z int) bool {
	i := Lindex(x, y, z)
	word := i / 64
	bit := uint(i % 64)
	return c.occ[word]&(1<<bit) != 0
}

// tailMask returns the bits of the last occupancy word that correspond to
// real voxels (all of them, since N3 is a multiple of 64, but computed
// generically to honor invariant I3 for non-multiple sizes too).
func tailMask() uint64 {
	rem := N3 % 64
	if rem == 0 {
		return ^uint64(0)
	}
	return (uint64(1) << uint(rem)) - 1
}

// IsAllAir reports whether every voxel in the chunk is AIR.
func (c *Chunk) IsAllAir() bool {
	last := len(c.occ) - 1
	for i := 0; i < last; i++ {
		if c.occ[i] != 0 {
			return false
		}
	}
	return c.occ[last]&tailMask() == 0
}

// IsAllSolid reports whether every voxel in the chunk is non-AIR.
func (c *Chunk) IsAllSolid() bool {
	last := len(c.occ) - 1
	for i := 0; i < last; i++ {
		if c.occ[i] != ^uint64(0) {
			return false
		}
	}
	return c.occ[last]&tailMask() == tailMask()
}

// Clone makes a deep, independent copy of the chunk for snapshotting into a
// mesh worker (spec.md §3 "Ownership summary").
func (c *Chunk) Clone() *Chunk {
	out := &Chunk{
		palette:    append([]core.Material(nil), c.palette...),
		paletteLUT: make(map[core.Material]int, len(c.paletteLUT)),
		occ:        append([]uint64(nil), c.occ...),
		dirtyMesh:  c.dirtyMesh,
	}
	for k, v := range c.paletteLUT {
		out.paletteLUT[k] = v
	}
	grown := bitpack.New(N3, c.indices.Bpp())
	for i := 0; i < N3; i++ {
		grown.Set(i, c.indices.Get(i))
	}
	out.indices = grown
	return out
}
