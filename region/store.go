package region

import (
	"worldgenerator/core"
	"worldgenerator/voxel"
)

// SaveChunk persists a chunk blob to the region file owning key, appending
// the blob at EOF and rewriting only the owning TOC slot (spec.md §4.4
// "Write policy"). Returns false on any IO failure.
func (s *Store) SaveChunk(key core.FaceChunkKey, c *voxel.Chunk) bool {
	path := s.pathFor(key.Face, key.I, key.J, key.K)
	i0, j0 := tileOrigin(key.I), tileOrigin(key.J)
	f, h, err := openOrCreate(path, key.Face, i0, j0, key.K)
	if err != nil {
		return false
	}
	defer f.Close()

	blob := encodeChunk(c)
	off, err := appendBlob(f, blob)
	if err != nil {
		return false
	}
	entry := tocEntry{
		Offset:   off,
		Size:     uint32(len(blob)),
		USize:    uint32(len(blob)),
		Flags:    0,
		Checksum: fnv1a(blob),
	}
	slot := localSlot(key, i0, j0, 0)
	return writeTOC(f, h, slot, entry) == nil
}

// LoadChunk reads the chunk blob for key. On any IO failure, checksum
// mismatch, or missing slot, it returns (nil, false) — the caller falls
// back to procedural generation (spec.md §7, error kind 1 & 2).
func (s *Store) LoadChunk(key core.FaceChunkKey) (*voxel.Chunk, bool) {
	path := s.pathFor(key.Face, key.I, key.J, key.K)
	i0, j0 := tileOrigin(key.I), tileOrigin(key.J)
	f, h, err := openOrCreate(path, key.Face, i0, j0, key.K)
	if err != nil {
		return nil, false
	}
	defer f.Close()

	slot := localSlot(key, i0, j0, 0)
	entry, err := readTOC(f, h, slot)
	if err != nil || entry.Size == 0 {
		return nil, false
	}
	data, err := readExact(f, int64(entry.Offset), int(entry.Size))
	if err != nil {
		return nil, false
	}
	if fnv1a(data) != entry.Checksum {
		return nil, false
	}
	c, err := decodeChunk(data)
	if err != nil {
		return nil, false
	}
	return c, true
}

// SaveChunkDelta persists a delta blob. Writing an empty delta clears the
// TOC entry to zero instead of appending a blob (spec.md §4.4 "Delta
// slot").
func (s *Store) SaveChunkDelta(key core.FaceChunkKey, d *voxel.ChunkDelta) bool {
	path := s.pathFor(key.Face, key.I, key.J, key.K)
	i0, j0 := tileOrigin(key.I), tileOrigin(key.J)
	f, h, err := openOrCreate(path, key.Face, i0, j0, key.K)
	if err != nil {
		return false
	}
	defer f.Close()

	slot := localSlot(key, i0, j0, 1)

	if d.Empty() {
		return writeTOC(f, h, slot, tocEntry{}) == nil
	}

	blob := encodeDelta(d)
	off, err := appendBlob(f, blob)
	if err != nil {
		return false
	}
	entry := tocEntry{
		Offset:   off,
		Size:     uint32(len(blob)),
		USize:    uint32(len(blob)),
		Flags:    flagDelta,
		Checksum: fnv1a(blob),
	}
	return writeTOC(f, h, slot, entry) == nil
}

// LoadChunkDelta reads the delta blob for key, resetting out to a valid
// empty delta on any failure (spec.md §4.4 "Failure semantics").
func (s *Store) LoadChunkDelta(key core.FaceChunkKey) (*voxel.ChunkDelta, bool) {
	path := s.pathFor(key.Face, key.I, key.J, key.K)
	i0, j0 := tileOrigin(key.I), tileOrigin(key.J)
	f, h, err := openOrCreate(path, key.Face, i0, j0, key.K)
	if err != nil {
		return voxel.NewChunkDelta(), false
	}
	defer f.Close()

	slot := localSlot(key, i0, j0, 1)
	entry, err := readTOC(f, h, slot)
	if err != nil || entry.Size == 0 {
		return voxel.NewChunkDelta(), false
	}
	data, err := readExact(f, int64(entry.Offset), int(entry.Size))
	if err != nil {
		return voxel.NewChunkDelta(), false
	}
	if fnv1a(data) != entry.Checksum {
		return voxel.NewChunkDelta(), false
	}
	d, err := decodeDelta(data)
	if err != nil {
		return voxel.NewChunkDelta(), false
	}
	return d, true
}
