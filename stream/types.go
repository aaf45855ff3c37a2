// Package stream implements the streaming manager of spec.md §2 and
// §4.5: a chunk+delta cache, a coalesced request/result protocol, a
// worker pool that generates or loads chunks and meshes them with
// neighbor context, and a remesh queue for single-chunk edits.
package stream

import (
	"github.com/google/uuid"

	"worldgenerator/core"
)

// LoadRequest describes one ring-build submission (spec.md §4.5.1).
// Submitting a new request discards all pending, unstarted work for the
// same manager — coalescing is the in-flight cancellation mechanism.
// SessionID is a debug correlation id, not a correctness-bearing field:
// the Generation counter alone decides which work is stale (spec.md §5).
type LoadRequest struct {
	Face       int
	RingRadius int
	CI, CJ, CK int64
	KDown, KUp int
	FwdS, FwdT float32
	Generation uint64
	SessionID  uuid.UUID
}

// MeshResult is a produced mesh plus the generation it was built under
// (spec.md §4.5.1). The runtime accepts and overwrites renderables by
// key using the higher JobGen.
type MeshResult struct {
	Key      core.FaceChunkKey
	Vertices []core.Vertex
	Indices  []uint32
	Center   core.Vec3
	Radius   float32
	JobGen   uint64
}

// StreamStatus is the read-only telemetry snapshot named in spec.md §6.
type StreamStatus struct {
	Queued              int
	LastGenMs           float64
	LastGeneratedChunks int
	LastMeshMs          float64
	LastMeshedChunks    int
	LoaderBusy          bool
	LastSessionID       uuid.UUID
}
