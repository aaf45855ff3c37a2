package gpu

import (
	"sync"
	"sync/atomic"

	rl "github.com/gen2brain/raylib-go/raylib"

	"worldgenerator/core"
)

// RaylibRenderer is a reference Renderer backed by github.com/gen2brain/
// raylib-go/raylib, grounded in the krakovia-style ChunkMesh pattern
// retrieved from the pack (one rl.Mesh per chunk, rl.UploadMesh once,
// rl.DrawMesh per frame) — generalized from a per-chunk map keyed by
// chunk coordinate to the spec's upload/free/record capability set.
//
// Unlike gpupool.GLDrawBuilder, which assembles a real indirect draw
// buffer over one shared arena for a raw OpenGL host, raylib has no
// multi-draw-indirect entry point: each chunk keeps its own rl.Mesh and
// Record issues one rl.DrawMesh call per item. FirstIndex doubles as
// the synthetic per-mesh handle instead of an offset into a shared
// buffer.
type RaylibRenderer struct {
	material rl.Material

	mu     sync.Mutex
	meshes map[uint32]rl.Mesh

	nextID atomic.Uint32
}

// NewRaylibRenderer builds a renderer using raylib's default material.
// Must be called after rl.InitWindow, since mesh/material upload needs
// a live GL context.
func NewRaylibRenderer() *RaylibRenderer {
	return &RaylibRenderer{
		material: rl.LoadMaterialDefault(),
		meshes:   make(map[uint32]rl.Mesh),
	}
}

// UploadMesh converts a greedy-mesher result into an rl.Mesh and
// uploads it to the GPU (spec.md §6 Renderer collaborator interface).
func (r *RaylibRenderer) UploadMesh(vertices []core.Vertex, indices []uint32) (firstIndex uint32, baseVertex int32, ok bool) {
	if len(vertices) == 0 || len(indices) == 0 {
		return 0, 0, false
	}
	// raylib meshes index with uint16; spec chunks (64^3, greedy-merged)
	// stay well under 65536 indices in practice, but guard explicitly
	// rather than silently truncating a larger mesh.
	if len(indices) > 1<<16 || len(vertices) > 1<<16 {
		return 0, 0, false
	}

	positions := make([]float32, 0, len(vertices)*3)
	normals := make([]float32, 0, len(vertices)*3)
	for _, v := range vertices {
		positions = append(positions, v.Pos[0], v.Pos[1], v.Pos[2])
		normals = append(normals, v.Normal[0], v.Normal[1], v.Normal[2])
	}
	idx16 := make([]uint16, len(indices))
	for i, ix := range indices {
		idx16[i] = uint16(ix)
	}

	mesh := rl.Mesh{
		VertexCount:   int32(len(vertices)),
		TriangleCount: int32(len(indices) / 3),
		Vertices:      positions,
		Normals:       normals,
		Indices:       idx16,
	}
	rl.UploadMesh(&mesh, false)

	id := r.nextID.Add(1)
	r.mu.Lock()
	r.meshes[id] = mesh
	r.mu.Unlock()
	return id, 0, true
}

// FreeMesh unloads the GPU buffers for a previously uploaded mesh.
// firstIndex is the synthetic handle UploadMesh returned; indexCount,
// baseVertex, and vertexCount are accepted to satisfy the collaborator
// interface but are not needed to locate a per-chunk rl.Mesh.
func (r *RaylibRenderer) FreeMesh(firstIndex, indexCount uint32, baseVertex int32, vertexCount uint32) {
	r.mu.Lock()
	mesh, ok := r.meshes[firstIndex]
	delete(r.meshes, firstIndex)
	r.mu.Unlock()
	if ok {
		rl.UnloadMesh(&mesh)
	}
}

// Record draws every item's mesh at the identity transform — vertices
// are already baked into spherical world space by the mesher (spec.md
// §4.5.2), so no per-chunk model matrix is needed beyond the shared
// view-projection the caller has already applied via rl.BeginMode3D.
func (r *RaylibRenderer) Record(mvp [16]float32, items []DrawItem) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, item := range items {
		mesh, ok := r.meshes[item.FirstIndex]
		if !ok {
			continue
		}
		rl.DrawMesh(mesh, r.material, rl.MatrixIdentity())
	}
}
