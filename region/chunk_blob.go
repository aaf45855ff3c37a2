package region

import (
	"encoding/binary"
	"fmt"

	"worldgenerator/core"
	"worldgenerator/voxel"
)

// encodeChunk serializes a chunk blob: magic, palette u16 array (length
// prefixed), N3 u8 indices, ceil(N3/64) u64 occupancy words
// (spec.md §3 "Chunk blob").
func encodeChunk(c *voxel.Chunk) []byte {
	palette := c.Palette()
	buf := make([]byte, 0, len(magicChunk)+4+len(palette)*2+voxel.N3+((voxel.N3+63)/64)*8)

	buf = append(buf, []byte(magicChunk)...)
	lenBuf := make([]byte, 4)
	binary.LittleEndian.PutUint32(lenBuf, uint32(len(palette)))
	buf = append(buf, lenBuf...)

	matBuf := make([]byte, 2)
	for _, m := range palette {
		binary.LittleEndian.PutUint16(matBuf, uint16(m))
		buf = append(buf, matBuf...)
	}

	for z := 0; z < voxel.N; z++ {
		for y := 0; y < voxel.N; y++ {
			for x := 0; x < voxel.N; x++ {
				idx := c.RawIndexAt(x, y, z)
				if idx > 255 {
					idx = 255 // V1 format caps the persisted index width at 8bpp
				}
				buf = append(buf, uint8(idx))
			}
		}
	}

	occWords := occupancyWords(c)
	occBuf := make([]byte, 8)
	for _, w := range occWords {
		binary.LittleEndian.PutUint64(occBuf, w)
		buf = append(buf, occBuf...)
	}

	return buf
}

func occupancyWords(c *voxel.Chunk) []uint64 {
	words := make([]uint64, (voxel.N3+63)/64)
	for x := 0; x < voxel.N; x++ {
		for y := 0; y < voxel.N; y++ {
			for z := 0; z < voxel.N; z++ {
				if !c.IsSolid(x, y, z) {
					continue
				}
				i := voxel.Lindex(x, y, z)
				words[i/64] |= 1 << uint(i%64)
			}
		}
	}
	return words
}

// decodeChunk reconstructs a chunk from an encoded blob. Occupancy is
// trusted from the stored material (AIR vs not) rather than the persisted
// bitset, which is kept purely as an on-disk integrity/format artifact —
// SetVoxel recomputes occupancy itself.
func decodeChunk(data []byte) (*voxel.Chunk, error) {
	if len(data) < len(magicChunk)+4 {
		return nil, fmt.Errorf("region: chunk blob too short")
	}
	if string(data[:len(magicChunk)]) != magicChunk {
		return nil, fmt.Errorf("region: bad chunk magic")
	}
	off := len(magicChunk)
	paletteLen := int(binary.LittleEndian.Uint32(data[off : off+4]))
	off += 4

	palette := make([]core.Material, paletteLen)
	for i := 0; i < paletteLen; i++ {
		palette[i] = core.Material(binary.LittleEndian.Uint16(data[off : off+2]))
		off += 2
	}

	indicesOff := off
	off += voxel.N3

	// occupancy words follow but are not the source of truth on decode.
	_ = off

	c := voxel.NewChunk()
	for i := 0; i < voxel.N3; i++ {
		pidx := data[indicesOff+i]
		var mat core.Material
		if int(pidx) < len(palette) {
			mat = palette[pidx]
		} else if len(palette) > 0 {
			mat = palette[len(palette)-1]
		} else {
			mat = core.AIR
		}
		x, y, z := unlindexXYZ(i)
		c.SetVoxel(x, y, z, mat)
	}
	c.ClearDirtyMesh()
	return c, nil
}

func unlindexXYZ(i int) (x, y, z int) {
	x = i % voxel.N
	y = (i / voxel.N) % voxel.N
	z = i / (voxel.N * voxel.N)
	return
}
