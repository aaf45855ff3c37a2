package voxel

import "worldgenerator/core"

// DeltaMode selects the ChunkDelta's storage representation.
type DeltaMode int

const (
	Sparse DeltaMode = iota
	Dense
)

// noOverride is the dense-mode sentinel meaning "untouched voxel"
// (spec.md §3: "a sentinel 0xFFFF").
const noOverride uint16 = 0xFFFF

const (
	promoteDensity = 0.18
	demoteDensity  = 0.08
)

// ChunkDelta is a lazy overlay of per-voxel material overrides relative to
// the pure base sample (spec.md §3, §4.3).
type ChunkDelta struct {
	mode          DeltaMode
	sparse        map[uint32]uint16 // linear index -> material
	dense         []uint16          // N3 entries, noOverride = untouched
	dirtyMask     map[uint32]struct{}
	overrideCount int
}

// NewChunkDelta returns an empty, sparse delta.
func NewChunkDelta() *ChunkDelta {
	return &ChunkDelta{
		mode:      Sparse,
		sparse:    make(map[uint32]uint16),
		dirtyMask: make(map[uint32]struct{}),
	}
}

// Mode reports the current representation.
func (d *ChunkDelta) Mode() DeltaMode { return d.mode }

// OverrideCount returns the exact number of overridden voxels.
func (d *ChunkDelta) OverrideCount() int { return d.overrideCount }

// Empty reports whether the delta currently has zero overrides.
func (d *ChunkDelta) Empty() bool { return d.overrideCount == 0 }

// EditDensity returns override_count / N3.
func (d *ChunkDelta) EditDensity() float64 {
	return float64(d.overrideCount) / float64(N3)
}

// effective returns the override at index and whether one exists.
func (d *ChunkDelta) effective(index uint32) (core.Material, bool) {
	switch d.mode {
	case Sparse:
		v, ok := d.sparse[index]
		if !ok {
			return 0, false
		}
		return core.Material(v), true
	default:
		if int(index) >= len(d.dense) {
			return 0, false
		}
		v := d.dense[index]
		if v == noOverride {
			return 0, false
		}
		return core.Material(v), true
	}
}

// Effective is the exported form of effective, used by overlay application
// and region persistence.
func (d *ChunkDelta) Effective(index uint32) (core.Material, bool) {
	return d.effective(index)
}

func (d *ChunkDelta) markDirty(index uint32) { d.dirtyMask[index] = struct{}{} }

// ClearDirty clears the dirty bitset after a successful flush.
func (d *ChunkDelta) ClearDirty() { d.dirtyMask = make(map[uint32]struct{}) }

// DirtyIndices returns the set of indices touched since the last flush.
func (d *ChunkDelta) DirtyIndices() []uint32 {
	out := make([]uint32, 0, len(d.dirtyMask))
	for idx := range d.dirtyMask {
		out = append(out, idx)
	}
	return out
}

// IsDirty reports whether index was touched since the last flush.
func (d *ChunkDelta) IsDirty(index uint32) bool {
	_, ok := d.dirtyMask[index]
	return ok
}

// AllOverrideIndices returns every currently-overridden index, regardless
// of dirty state. Used by region serialization to persist the full delta.
func (d *ChunkDelta) AllOverrideIndices() []uint32 {
	out := make([]uint32, 0, d.overrideCount)
	switch d.mode {
	case Sparse:
		for idx := range d.sparse {
			out = append(out, idx)
		}
	default:
		for idx, mat := range d.dense {
			if mat != noOverride {
				out = append(out, uint32(idx))
			}
		}
	}
	return out
}

// LoadOverride installs an override directly, bypassing the base/new
// material comparison in ApplyEdit. It is used only when reconstructing a
// delta from persisted storage, where every stored entry is by definition
// an existing override.
func (d *ChunkDelta) LoadOverride(index uint32, mat core.Material) {
	d.setOverride(index, mat)
}

// ApplyEdit is the delta's only mutator (spec.md §4.3). Applying an edit
// whose new_material equals base_material removes any existing override
// (the base sample already gives that answer). The dirty bit for index is
// set iff the effective override actually changed.
func (d *ChunkDelta) ApplyEdit(index uint32, baseMaterial, newMaterial core.Material) {
	before, hadOverride := d.effective(index)

	if newMaterial == baseMaterial {
		if hadOverride {
			d.removeOverride(index)
			d.markDirty(index)
		}
		return
	}

	changed := !hadOverride || before != newMaterial
	d.setOverride(index, newMaterial)
	if changed {
		d.markDirty(index)
	}
}

func (d *ChunkDelta) setOverride(index uint32, mat core.Material) {
	switch d.mode {
	case Sparse:
		if _, existed := d.sparse[index]; !existed {
			d.overrideCount++
		}
		d.sparse[index] = uint16(mat)
	default:
		d.ensureDenseCapacity()
		if d.dense[index] == noOverride {
			d.overrideCount++
		}
		d.dense[index] = uint16(mat)
	}
}

func (d *ChunkDelta) removeOverride(index uint32) {
	switch d.mode {
	case Sparse:
		if _, existed := d.sparse[index]; existed {
			delete(d.sparse, index)
			d.overrideCount--
		}
	default:
		if int(index) < len(d.dense) && d.dense[index] != noOverride {
			d.dense[index] = noOverride
			d.overrideCount--
		}
	}
}

func (d *ChunkDelta) ensureDenseCapacity() {
	if d.dense == nil {
		d.dense = make([]uint16, N3)
		for i := range d.dense {
			d.dense[i] = noOverride
		}
	}
}

// Normalize applies the sparse<->dense hysteresis rule of spec.md §3 and is
// idempotent.
func (d *ChunkDelta) Normalize() {
	density := d.EditDensity()
	switch d.mode {
	case Sparse:
		if density >= promoteDensity {
			d.toDense()
		}
	case Dense:
		if density <= demoteDensity {
			d.toSparse()
		}
	}
}

func (d *ChunkDelta) toDense() {
	dense := make([]uint16, N3)
	for i := range dense {
		dense[i] = noOverride
	}
	for idx, mat := range d.sparse {
		dense[idx] = mat
	}
	d.dense = dense
	d.sparse = make(map[uint32]uint16)
	d.mode = Dense
}

func (d *ChunkDelta) toSparse() {
	sparse := make(map[uint32]uint16, d.overrideCount)
	for idx, mat := range d.dense {
		if mat != noOverride {
			sparse[uint32(idx)] = mat
		}
	}
	d.sparse = sparse
	d.dense = nil
	d.mode = Sparse
}

// ApplyChunkDelta writes every override in d onto chunk via SetVoxel
// (spec.md §3: "applying apply_chunk_delta(delta, chunk) writes every
// override via chunk.set_voxel").
func ApplyChunkDelta(d *ChunkDelta, c *Chunk) {
	switch d.mode {
	case Sparse:
		for idx, mat := range d.sparse {
			x, y, z := unlindex(int(idx))
			c.SetVoxel(x, y, z, core.Material(mat))
		}
	default:
		for idx, mat := range d.dense {
			if mat == noOverride {
				continue
			}
			x, y, z := unlindex(idx)
			c.SetVoxel(x, y, z, core.Material(mat))
		}
	}
}

func unlindex(i int) (x, y, z int) {
	return Unlindex(i)
}

// Unlindex is the inverse of Lindex, used by callers (e.g. the streaming
// manager) that need to turn a delta's linear index back into local
// voxel coordinates.
func Unlindex(i int) (x, y, z int) {
	x = i % N
	y = (i / N) % N
	z = i / (N * N)
	return
}
