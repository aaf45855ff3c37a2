package region

import (
	"encoding/binary"
	"fmt"

	"worldgenerator/core"
	"worldgenerator/voxel"
)

// encodeDelta serializes a delta blob (spec.md §3 "Delta blob").
func encodeDelta(d *voxel.ChunkDelta) []byte {
	buf := make([]byte, 0, 32)
	buf = append(buf, []byte(magicDelta)...)

	var entryCount uint32
	var mode uint8
	var payload []byte

	if d.Mode() == voxel.Dense {
		mode = 1
		entryCount = voxel.N3
		payload = make([]byte, 0, voxel.N3*2)
		b := make([]byte, 2)
		for i := 0; i < voxel.N3; i++ {
			mat, ok := d.Effective(uint32(i))
			v := uint16(0xFFFF)
			if ok {
				v = uint16(mat)
			}
			binary.LittleEndian.PutUint16(b, v)
			payload = append(payload, b...)
		}
	} else {
		mode = 0
		indices := d.AllOverrideIndices()
		entryCount = uint32(len(indices))
		payload = make([]byte, 0, len(indices)*8)
		b := make([]byte, 8)
		for _, idx := range indices {
			mat, _ := d.Effective(idx)
			binary.LittleEndian.PutUint32(b[0:4], idx)
			binary.LittleEndian.PutUint16(b[4:6], uint16(mat))
			binary.LittleEndian.PutUint16(b[6:8], 0)
			payload = append(payload, b...)
		}
	}

	countBuf := make([]byte, 4)
	binary.LittleEndian.PutUint32(countBuf, entryCount)
	buf = append(buf, countBuf...)
	buf = append(buf, mode)
	buf = append(buf, payload...)
	return buf
}

// decodeDelta reconstructs overrides from a blob and lets Normalize settle
// on the mode the current density calls for; spec.md §8 only requires
// equivalent effective overrides on round trip, not an identical mode.
func decodeDelta(data []byte) (*voxel.ChunkDelta, error) {
	if len(data) < len(magicDelta)+5 {
		return nil, fmt.Errorf("region: delta blob too short")
	}
	if string(data[:len(magicDelta)]) != magicDelta {
		return nil, fmt.Errorf("region: bad delta magic")
	}
	off := len(magicDelta)
	entryCount := binary.LittleEndian.Uint32(data[off : off+4])
	off += 4
	mode := data[off]
	off++

	d := voxel.NewChunkDelta()
	if mode == 1 {
		for i := uint32(0); i < entryCount; i++ {
			v := binary.LittleEndian.Uint16(data[off : off+2])
			off += 2
			if v == 0xFFFF {
				continue
			}
			d.LoadOverride(i, core.Material(v))
		}
	} else {
		for i := uint32(0); i < entryCount; i++ {
			idx := binary.LittleEndian.Uint32(data[off : off+4])
			mat := binary.LittleEndian.Uint16(data[off+4 : off+6])
			off += 8
			d.LoadOverride(idx, core.Material(mat))
		}
	}
	d.ClearDirty()
	d.Normalize()
	return d, nil
}
