package core

// FaceChunkKey identifies one chunk on the cubed-sphere lattice: which face,
// its tangent-plane tile indices, and its radial shell (spec.md §3).
//
// Keys are immutable value types copied freely across worker goroutines.
type FaceChunkKey struct {
	Face int
	I    int64
	J    int64
	K    int64
}

// NewFaceChunkKey builds a key, matching the constructor style used
// throughout the teacher's core package for its coordinate value types.
func NewFaceChunkKey(face int, i, j, k int64) FaceChunkKey {
	return FaceChunkKey{Face: face, I: i, J: j, K: k}
}

// Neighbor returns the key offset by one tile/shell along a cardinal axis.
// axis: 0=I, 1=J, 2=K. delta is typically ±1.
func (k FaceChunkKey) Neighbor(axis int, delta int64) FaceChunkKey {
	switch axis {
	case 0:
		k.I += delta
	case 1:
		k.J += delta
	case 2:
		k.K += delta
	}
	return k
}
