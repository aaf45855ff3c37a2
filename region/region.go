// Package region implements the versioned region-file container described
// in spec.md §3 ("Region file") and §4.4 ("Region IO"): a 32x32 tile of
// chunk and/or delta blobs with a table of contents and an FNV-1a checksum
// per blob.
package region

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"os"
	"path/filepath"

	"worldgenerator/core"
	"worldgenerator/voxel"
)

const (
	magicRegion = "WFREGN1\x00"
	magicChunk  = "WFCHK1\x00"
	magicDelta  = "WFDEL1\x00"

	formatVersion = 1
	tile          = 32
	chunkVox      = voxel.N

	flagDelta = uint32(1) // TOC entry flag bit 0: set = delta blob, clear = chunk blob

	headerSize   = 72
	tocEntrySize = 24 // offset(8) + size(4) + usize(4) + flags(4) + checksum(4)
)

// header mirrors spec.md §3's region file header, field for field.
type header struct {
	Magic      [8]byte
	Version    uint32
	Face       int32
	I0         int64
	J0         int64
	K          int64
	Tile       int32
	ChunkVox   int32
	Flags      uint32
	TOCEntries int32
	TOCOffset  uint64
	DataOffset uint64
}

// tocEntry is one table-of-contents slot.
type tocEntry struct {
	Offset   uint64
	Size     uint32
	USize    uint32
	Flags    uint32
	Checksum uint32
}

// Two logical TOC planes share one file: chunk blobs occupy slots
// [0, tile*tile) and delta blobs occupy slots [tile*tile, 2*tile*tile).
// spec.md's header sketch gives "toc_entries = tile*tile" as the size of
// each plane; resolved here as a documented Open Question (see DESIGN.md)
// so that a chunk and its delta can coexist in the same region file
// without colliding on one TOC slot.
const slotsPerPlane = tile * tile
const totalTOCEntries = slotsPerPlane * 2

// Store manages region files rooted at a directory, matching the path
// scheme {root}/face{f}/k{k}/r_{i0}_{j0}.wfr (spec.md §4.4).
type Store struct {
	root string
}

// NewStore creates a region Store rooted at root. The directory tree is
// created lazily on first write.
func NewStore(root string) *Store {
	return &Store{root: root}
}

func tileOrigin(v int64) int64 {
	if v >= 0 {
		return (v / tile) * tile
	}
	return -(((-v) + tile - 1) / tile) * tile
}

// pathFor returns the on-disk path for the region file owning (face,i,j,k).
func (s *Store) pathFor(face int, i, j, k int64) string {
	i0 := tileOrigin(i)
	j0 := tileOrigin(j)
	return filepath.Join(s.root, fmt.Sprintf("face%d", face), fmt.Sprintf("k%d", k),
		fmt.Sprintf("r_%d_%d.wfr", i0, j0))
}

func fnv1a(data []byte) uint32 {
	h := fnv.New32a()
	h.Write(data)
	return h.Sum32()
}

// openOrCreate implements the open policy of spec.md §4.4: open existing,
// or create with a zero-filled TOC and header.
func openOrCreate(path string, face int, i0, j0, k int64) (*os.File, *header, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, err
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, nil, err
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	if fi.Size() == 0 {
		h := &header{
			Version:    formatVersion,
			Face:       int32(face),
			I0:         i0,
			J0:         j0,
			K:          k,
			Tile:       tile,
			ChunkVox:   chunkVox,
			TOCEntries: totalTOCEntries,
			TOCOffset:  headerSize,
			DataOffset: headerSize + totalTOCEntries*tocEntrySize,
		}
		copy(h.Magic[:], magicRegion)
		if err := writeHeader(f, h); err != nil {
			f.Close()
			return nil, nil, err
		}
		zero := make([]byte, totalTOCEntries*tocEntrySize)
		if _, err := f.WriteAt(zero, headerSize); err != nil {
			f.Close()
			return nil, nil, err
		}
		return f, h, nil
	}
	h, err := readHeader(f)
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	return f, h, nil
}

func writeHeader(f *os.File, h *header) error {
	buf := make([]byte, headerSize)
	copy(buf[0:8], h.Magic[:])
	binary.LittleEndian.PutUint32(buf[8:12], h.Version)
	binary.LittleEndian.PutUint32(buf[12:16], uint32(h.Face))
	binary.LittleEndian.PutUint64(buf[16:24], uint64(h.I0))
	binary.LittleEndian.PutUint64(buf[24:32], uint64(h.J0))
	binary.LittleEndian.PutUint64(buf[32:40], uint64(h.K))
	binary.LittleEndian.PutUint32(buf[40:44], uint32(h.Tile))
	binary.LittleEndian.PutUint32(buf[44:48], uint32(h.ChunkVox))
	binary.LittleEndian.PutUint32(buf[48:52], h.Flags)
	binary.LittleEndian.PutUint32(buf[52:56], uint32(h.TOCEntries))
	binary.LittleEndian.PutUint64(buf[56:64], h.TOCOffset)
	binary.LittleEndian.PutUint64(buf[64:72], h.DataOffset)
	_, err := f.WriteAt(buf, 0)
	return err
}

func readHeader(f *os.File) (*header, error) {
	buf := make([]byte, headerSize)
	if _, err := f.ReadAt(buf, 0); err != nil {
		return nil, err
	}
	h := &header{}
	copy(h.Magic[:], buf[0:8])
	if string(h.Magic[:]) != magicRegion {
		return nil, fmt.Errorf("region: bad magic")
	}
	h.Version = binary.LittleEndian.Uint32(buf[8:12])
	h.Face = int32(binary.LittleEndian.Uint32(buf[12:16]))
	h.I0 = int64(binary.LittleEndian.Uint64(buf[16:24]))
	h.J0 = int64(binary.LittleEndian.Uint64(buf[24:32]))
	h.K = int64(binary.LittleEndian.Uint64(buf[32:40]))
	h.Tile = int32(binary.LittleEndian.Uint32(buf[40:44]))
	h.ChunkVox = int32(binary.LittleEndian.Uint32(buf[44:48]))
	h.Flags = binary.LittleEndian.Uint32(buf[48:52])
	h.TOCEntries = int32(binary.LittleEndian.Uint32(buf[52:56]))
	h.TOCOffset = binary.LittleEndian.Uint64(buf[56:64])
	h.DataOffset = binary.LittleEndian.Uint64(buf[64:72])
	return h, nil
}

func readTOC(f *os.File, h *header, slot int) (tocEntry, error) {
	buf := make([]byte, tocEntrySize)
	off := int64(h.TOCOffset) + int64(slot)*tocEntrySize
	if _, err := f.ReadAt(buf, off); err != nil {
		return tocEntry{}, err
	}
	return tocEntry{
		Offset:   binary.LittleEndian.Uint64(buf[0:8]),
		Size:     binary.LittleEndian.Uint32(buf[8:12]),
		USize:    binary.LittleEndian.Uint32(buf[12:16]),
		Flags:    binary.LittleEndian.Uint32(buf[16:20]),
		Checksum: binary.LittleEndian.Uint32(buf[20:24]),
	}, nil
}

func writeTOC(f *os.File, h *header, slot int, e tocEntry) error {
	buf := make([]byte, tocEntrySize)
	binary.LittleEndian.PutUint64(buf[0:8], e.Offset)
	binary.LittleEndian.PutUint32(buf[8:12], e.Size)
	binary.LittleEndian.PutUint32(buf[12:16], e.USize)
	binary.LittleEndian.PutUint32(buf[16:20], e.Flags)
	binary.LittleEndian.PutUint32(buf[20:24], e.Checksum)
	off := int64(h.TOCOffset) + int64(slot)*tocEntrySize
	_, err := f.WriteAt(buf, off)
	return err
}

func localSlot(key core.FaceChunkKey, i0, j0 int64, plane int) int {
	li := int(key.I - i0)
	lj := int(key.J - j0)
	return plane*slotsPerPlane + li*tile + lj
}

// appendBlob writes data past EOF and returns its offset.
func appendBlob(f *os.File, data []byte) (uint64, error) {
	fi, err := f.Stat()
	if err != nil {
		return 0, err
	}
	off := fi.Size()
	if _, err := f.WriteAt(data, off); err != nil {
		return 0, err
	}
	return uint64(off), nil
}

func readExact(f *os.File, off int64, n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := f.ReadAt(buf, off); err != nil {
		return nil, err
	}
	return buf, nil
}
