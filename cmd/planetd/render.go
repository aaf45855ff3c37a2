package main

import (
	"worldgenerator/gpu"
	"worldgenerator/gpupool"
	"worldgenerator/runtime"
	"worldgenerator/telemetry"
)

// applyMeshTransfers drains the world's pending mesh upload/release
// queues into the renderer collaborator (spec.md §4.7.5), bounded by
// uploadsPerFrameLimit per tick. handles maps a World pool Handle to
// the renderer's own per-mesh id, so drawItems and release lookups
// don't need to reach back into the World's arenas.
func applyMeshTransfers(world *runtime.World, renderer gpu.Renderer, handles map[gpupool.Handle]uint32, uploadsPerFrameLimit int, logger *telemetry.Logger) {
	uploads := world.PendingMeshUploads()
	if uploadsPerFrameLimit > 0 && len(uploads) > uploadsPerFrameLimit {
		uploads = uploads[:uploadsPerFrameLimit]
	}
	for _, u := range uploads {
		vertices, indices, ok := world.MeshData(u.Handle)
		if !ok {
			continue
		}
		firstIndex, _, ok := renderer.UploadMesh(vertices, indices)
		if !ok {
			logger.Pool("renderer upload failed for handle %d (%d verts)", u.Handle, len(vertices))
			continue
		}
		handles[u.Handle] = firstIndex
	}

	releases := world.PendingMeshReleases()
	// Releases are keyed by FaceChunkKey while the handles map is keyed by
	// pool Handle, so renderer-side meshes are freed by sweeping handles
	// for pool allocations the World has already released (pruned chunks,
	// or meshes replaced by a newer one of the same chunk).
	for h, id := range handles {
		if _, _, live := world.MeshData(h); !live {
			renderer.FreeMesh(id, 0, 0, 0)
			delete(handles, h)
		}
	}

	world.ConsumeMeshTransferQueues(len(uploads), len(releases))
}

// drawItems builds the renderer's per-frame draw list from the world's
// current renderable snapshot.
func drawItems(world *runtime.World, handles map[gpupool.Handle]uint32) []gpu.DrawItem {
	snap := world.SnapshotRenderables(1)
	items := make([]gpu.DrawItem, 0, len(snap.Chunks))
	for _, r := range snap.Chunks {
		firstIndex, ok := handles[r.Handle]
		if !ok {
			continue
		}
		items = append(items, gpu.DrawItem{FirstIndex: firstIndex, Center: r.Center, Radius: r.Radius})
	}
	return items
}
