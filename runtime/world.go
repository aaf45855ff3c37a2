package runtime

import (
	"sync"

	"worldgenerator/core"
	"worldgenerator/gpupool"
	"worldgenerator/mesher"
	"worldgenerator/noise"
	"worldgenerator/region"
	"worldgenerator/stream"
	"worldgenerator/voxel"
)

// renderableEntry is the runtime's private bookkeeping for one live
// renderable (spec.md §3: "RenderChunk / ChunkRenderable").
type renderableEntry struct {
	key    core.FaceChunkKey
	handle gpupool.Handle
	center core.Vec3
	radius float32
	jobGen uint64
}

// World is the orchestrator of spec.md §2 and §4.7: it holds camera
// state, resolved config, the renderable table, the pending edit queue,
// and the pending mesh-upload/release queues.
type World struct {
	cfg    core.PlanetConfig
	config Config

	Camera      *Camera
	faceTracker *FaceTracker

	manager *stream.Manager
	pool    *gpupool.Pool

	vertexArena []core.Vertex
	indexArena  []uint32

	renderMu    sync.Mutex
	renderables map[core.FaceChunkKey]renderableEntry

	pendingUploads  []MeshUpload
	pendingReleases []core.FaceChunkKey

	editQueue []EditCommand

	lastFace           int
	lastCI, lastCJ, lastCK int64
	haveLastTile       bool

	opts mesher.Options
}

// Initialize constructs a World ready to Update (spec.md §6:
// `initialize(config, path_override?)`).
func Initialize(cfg core.PlanetConfig, config Config, startPos core.Vec3, pathOverride string) *World {
	root := config.RegionRoot
	if pathOverride != "" {
		root = pathOverride
	}
	var store *region.Store
	if config.SaveChunksEnabled {
		store = region.NewStore(root)
	}

	opts := mesher.DefaultOptions()
	opts.SurfacePushEnabled = config.Camera.SurfacePushEnabled
	opts.SurfacePushM = config.Camera.SurfacePushM

	workers := config.LoaderThreads
	mgr := stream.NewManager(cfg, opts, store, stream.Config{
		Workers:           workers,
		StreamConeDeg:     config.StreamConeDeg,
		SaveChunksEnabled: config.SaveChunksEnabled,
	})

	vtxCap := uint32(config.PoolVtxMB) * 1024 * 1024 / core.BytesPerVertex
	idxCap := uint32(config.PoolIdxMB) * 1024 * 1024 / 4

	cam := NewCamera(startPos, 70, 0.1, 100000)
	cam.Mode = ModeFree
	if config.Camera.WalkMode {
		cam.Mode = ModeWalk
	}

	initialFace := core.FaceFromDirection(core.Normalize(startPos))

	w := &World{
		cfg:         cfg,
		config:      config,
		Camera:      cam,
		faceTracker: NewFaceTracker(initialFace, config.FaceKeepTimeS),
		manager:     mgr,
		pool:        gpupool.NewPool(vtxCap, idxCap),
		vertexArena: make([]core.Vertex, vtxCap),
		indexArena:  make([]uint32, idxCap),
		renderables: make(map[core.FaceChunkKey]renderableEntry),
		opts:        opts,
	}
	return w
}

// Shutdown stops the streaming manager's worker pool.
func (w *World) Shutdown() {
	w.manager.Shutdown()
}

// Update advances camera, streaming ring submission, remesh draining,
// and result-to-renderable promotion for one frame (spec.md §6:
// `update(WorldUpdateInput)`).
func (w *World) Update(in WorldUpdateInput) WorldUpdateResult {
	var result WorldUpdateResult

	if in.ConfigChange != nil {
		w.config = *in.ConfigChange
		result.ConfigChanged = true
	}

	if in.ToggleMode {
		if w.Camera.Mode == ModeFree {
			w.Camera.Mode = ModeWalk
		} else {
			w.Camera.Mode = ModeFree
		}
	}

	before := w.Camera.Position
	beforeFwd := w.Camera.Forward
	w.Camera.Update(in.DT, in.Axes, in.Look, w.config.Camera, w.terrainHeightAt, w.cfg.SeaLevelM, w.cfg.RadiusM)
	if before != w.Camera.Position || beforeFwd != w.Camera.Forward {
		result.CameraChanged = true
	}

	dir := core.Normalize(w.Camera.Position)
	switched := w.faceTracker.Update(in.DT, dir)

	chunkM := float64(voxel.N) * w.cfg.VoxelSizeM
	ci, cj, ck := TileCenter(w.faceTracker.CurrentFace(), w.Camera.Position, chunkM)

	tileChanged := switched || !w.haveLastTile || ci != w.lastCI || cj != w.lastCJ || ck != w.lastCK
	if tileChanged {
		w.lastFace, w.lastCI, w.lastCJ, w.lastCK = w.faceTracker.CurrentFace(), ci, cj, ck
		w.haveLastTile = true

		b := core.FaceBasisFor(w.faceTracker.CurrentFace())
		fwdS := w.Camera.Forward.Dot(b.Right)
		fwdT := w.Camera.Forward.Dot(b.Up)

		w.manager.SubmitRequest(stream.LoadRequest{
			Face:       w.faceTracker.CurrentFace(),
			RingRadius: w.config.RingRadius,
			CI:         ci, CJ: cj, CK: ck,
			KDown: w.config.KDown, KUp: w.config.KUp,
			FwdS: fwdS, FwdT: fwdT,
		})
		result.StreamingDirty = true
	}

	w.drainStreamResults()
	w.manager.ProcessRemeshBatch(w.config.RemeshPerFrameLimit)
	w.pruneRenderables()

	return result
}

// terrainHeightAt samples the same terrain function used to generate
// chunks, for walk-mode ground-follow (spec.md §4.7.1).
func (w *World) terrainHeightAt(dir core.Vec3) float64 {
	return noise.TerrainHeightM(w.cfg, dir)
}

// drainStreamResults pops mesh results from the streaming manager,
// uploads them into the pool, and stages MeshUpload/release records for
// the frame transfer queues (spec.md §4.5.1, §4.7.5).
func (w *World) drainStreamResults() {
	results := w.manager.DrainResults(w.config.UploadsPerFrameLimit)
	if len(results) == 0 {
		return
	}

	w.renderMu.Lock()
	defer w.renderMu.Unlock()

	for _, res := range results {
		if existing, ok := w.renderables[res.Key]; ok {
			if res.JobGen < existing.jobGen {
				continue // an older generation arrived after a newer one
			}
			w.pool.Free(existing.handle)
		}

		if len(res.Vertices) == 0 {
			delete(w.renderables, res.Key)
			continue
		}

		h, err := w.pool.Alloc(w.vertexArena, w.indexArena, res.Vertices, res.Indices)
		if err != nil {
			// Pool exhaustion (spec.md §7 kind 3): drop this frame's mesh,
			// the renderable stays stale until a future remesh succeeds.
			continue
		}

		w.renderables[res.Key] = renderableEntry{
			key: res.Key, handle: h, center: res.Center, radius: res.Radius, jobGen: res.JobGen,
		}
		w.pendingUploads = append(w.pendingUploads, MeshUpload{
			Key: res.Key, Handle: h, Center: res.Center, Radius: res.Radius,
		})
	}
}

// pruneRenderables drops renderables outside every current allow region
// (spec.md §4.7.3), queuing their release.
func (w *World) pruneRenderables() {
	regions := w.AllowRegions()

	w.renderMu.Lock()
	defer w.renderMu.Unlock()

	for key, entry := range w.renderables {
		if InAnyRegion(key, regions) {
			continue
		}
		w.pool.Free(entry.handle)
		delete(w.renderables, key)
		w.pendingReleases = append(w.pendingReleases, key)
	}
}

// AllowRegions builds the current (and, during face-keep, previous)
// allow regions from the runtime's last computed tile center.
func (w *World) AllowRegions() []AllowRegion {
	if !w.haveLastTile {
		return nil
	}
	return BuildAllowRegions(w.faceTracker, w.lastCI, w.lastCJ, w.lastCK, w.config.RingRadius, w.config.KDown, w.config.KUp, w.config.PruneMargin, w.config.KPruneMargin)
}

// SnapshotCamera exposes view/projection and pose (spec.md §6).
func (w *World) SnapshotCamera(aspect float32) CameraSnapshot {
	return w.Camera.Snapshot(aspect)
}

// SnapshotStreamStatus exposes streaming telemetry (spec.md §6).
func (w *World) SnapshotStreamStatus() stream.StreamStatus {
	return w.manager.Status()
}

// SnapshotRenderables exposes the full read-only scene view (spec.md
// §6).
func (w *World) SnapshotRenderables(aspect float32) RenderablesSnapshot {
	w.renderMu.Lock()
	chunks := make([]RenderableSnapshot, 0, len(w.renderables))
	for _, e := range w.renderables {
		chunks = append(chunks, RenderableSnapshot{Key: e.key, Handle: e.handle, Center: e.center, Radius: e.radius})
	}
	w.renderMu.Unlock()

	return RenderablesSnapshot{
		Camera:       w.SnapshotCamera(aspect),
		Chunks:       chunks,
		AllowRegions: w.AllowRegions(),
	}
}

// PendingMeshUploads and PendingMeshReleases expose read-only spans of
// the frame transfer queues (spec.md §4.7.5).
func (w *World) PendingMeshUploads() []MeshUpload         { return w.pendingUploads }
func (w *World) PendingMeshReleases() []core.FaceChunkKey { return w.pendingReleases }

// ConsumeMeshTransferQueues pops exactly what the renderer collaborator
// handled; unconsumed items remain for the next frame (spec.md §4.7.5).
func (w *World) ConsumeMeshTransferQueues(uploadsProcessed, releasesProcessed int) {
	if uploadsProcessed > len(w.pendingUploads) {
		uploadsProcessed = len(w.pendingUploads)
	}
	w.pendingUploads = w.pendingUploads[uploadsProcessed:]

	if releasesProcessed > len(w.pendingReleases) {
		releasesProcessed = len(w.pendingReleases)
	}
	w.pendingReleases = w.pendingReleases[releasesProcessed:]
}

// MeshData slices the World's own CPU-side vertex/index arenas for a
// pool handle, so a renderer collaborator can upload the raw mesh
// without the World exposing its arenas directly (spec.md §4.7.5: the
// frame transfer queue only carries handles and bounds).
func (w *World) MeshData(h gpupool.Handle) ([]core.Vertex, []uint32, bool) {
	vOff, vCount, iOff, iCount, ok := w.pool.Range(h)
	if !ok {
		return nil, nil, false
	}
	return w.vertexArena[vOff : vOff+vCount], w.indexArena[iOff : iOff+iCount], true
}

// QueueEdit stages an edit command for later application.
func (w *World) QueueEdit(cmd EditCommand) {
	w.editQueue = append(w.editQueue, cmd)
}

// DrainEditQueue applies every staged edit command in order, returning
// how many succeeded.
func (w *World) DrainEditQueue() int {
	applied := 0
	for _, cmd := range w.editQueue {
		if w.ApplyVoxelEdit(cmd.Hit, cmd.NewMaterial, cmd.BrushDim) {
			applied++
		}
	}
	w.editQueue = w.editQueue[:0]
	return applied
}

// ApplyVoxelEdit implements the brush edit pipeline of spec.md §4.7.4.
func (w *World) ApplyVoxelEdit(hit PickHit, newMaterial core.Material, brushDim int) bool {
	if !hit.Found {
		return false
	}
	target := hit.SolidKey
	if _, ok := w.manager.GetChunk(target); !ok {
		return false
	}

	start := -brushDim / 2
	end := brushDim/2 - 1
	if brushDim%2 != 0 {
		half := brushDim / 2
		start, end = -half, half
	}

	type staged struct {
		local [3]int
		base  core.Material
	}
	var edits []staged
	neighborFaces := map[int]bool{}

	for dz := start; dz <= end; dz++ {
		lz := hit.SolidLocal[2] + dz
		if lz < 0 || lz >= voxel.N {
			continue
		}
		for dy := start; dy <= end; dy++ {
			ly := hit.SolidLocal[1] + dy
			if ly < 0 || ly >= voxel.N {
				continue
			}
			for dx := start; dx <= end; dx++ {
				lx := hit.SolidLocal[0] + dx
				if lx < 0 || lx >= voxel.N {
					continue
				}
				worldVoxel := [3]int64{
					hit.SolidWorld[0] + int64(dx),
					hit.SolidWorld[1] + int64(dy),
					hit.SolidWorld[2] + int64(dz),
				}
				base := noise.SampleBase(w.cfg, worldVoxel).Material
				edits = append(edits, staged{local: [3]int{lx, ly, lz}, base: base})

				if lx == 0 {
					neighborFaces[negXDir] = true
				}
				if lx == voxel.N-1 {
					neighborFaces[posXDir] = true
				}
				if ly == 0 {
					neighborFaces[negYDir] = true
				}
				if ly == voxel.N-1 {
					neighborFaces[posYDir] = true
				}
				if lz == 0 {
					neighborFaces[negZDir] = true
				}
				if lz == voxel.N-1 {
					neighborFaces[posZDir] = true
				}
			}
		}
	}

	for _, e := range edits {
		idx := uint32(voxel.Lindex(e.local[0], e.local[1], e.local[2]))
		w.manager.ApplyVoxelOverride(target, idx, e.base, newMaterial)
	}

	for dirID := range neighborFaces {
		w.manager.QueueRemesh(neighborKey(target, dirID))
	}
	w.manager.QueueRemesh(target)
	return true
}

const (
	negXDir = 0
	posXDir = 1
	negYDir = 2
	posYDir = 3
	negZDir = 4
	posZDir = 5
)

func neighborKey(key core.FaceChunkKey, dirID int) core.FaceChunkKey {
	switch dirID {
	case negXDir:
		return key.Neighbor(0, -1)
	case posXDir:
		return key.Neighbor(0, 1)
	case negYDir:
		return key.Neighbor(1, -1)
	case posYDir:
		return key.Neighbor(1, 1)
	case negZDir:
		return key.Neighbor(2, -1)
	default:
		return key.Neighbor(2, 1)
	}
}

// PickRay casts a voxel pick from the current camera pose.
func (w *World) PickRay(dMax float64) PickHit {
	return PickVoxel(w.manager, w.cfg, w.Camera.Position, w.Camera.Forward, dMax)
}
