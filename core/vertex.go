package core

// Vertex is the fixed GPU-facing vertex layout consumed by the pool
// allocator (spec.md §4.6: "three floats position, three floats normal,
// one u16 material + 2 bytes pad" = 28 bytes).
type Vertex struct {
	Pos      Vec3
	Normal   Vec3
	Material uint16
	_pad     uint16
}

// BytesPerVertex is the wire size of Vertex once packed for upload.
const BytesPerVertex = 28
