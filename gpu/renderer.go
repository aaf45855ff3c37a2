// Package gpu defines the renderer collaborator interface consumed by
// the runtime (spec.md §6), and a raylib-backed reference
// implementation of it (spec.md's explicit REDESIGN FLAG: express the
// collaborator as an interface the core consumes, not an inherited base
// class — generalizing the teacher's GPUCompute interface in
// gpu_interface.go to the upload/free/record capability set).
package gpu

import (
	"worldgenerator/core"
)

// DrawItem is one indirect draw batch entry: a pool-allocated mesh range
// plus its world transform inputs, handed to Record.
type DrawItem struct {
	FirstIndex  uint32
	IndexCount  uint32
	BaseVertex  int32
	Center      core.Vec3
	Radius      float32
}

// Renderer is the capability set spec.md §6 names: upload_mesh,
// free_mesh, record. The runtime depends only on this interface, never
// on a concrete GPU backend.
type Renderer interface {
	// UploadMesh copies vertices/indices into device-local storage and
	// returns the pool range to draw from. ok is false on allocator
	// exhaustion (spec.md §7 kind 3).
	UploadMesh(vertices []core.Vertex, indices []uint32) (firstIndex uint32, baseVertex int32, ok bool)

	// FreeMesh releases a previously uploaded range.
	FreeMesh(firstIndex, indexCount uint32, baseVertex int32, vertexCount uint32)

	// Record builds and submits an indirect draw batch for one frame
	// given a view-projection matrix and the current draw items.
	Record(mvp [16]float32, items []DrawItem)
}
