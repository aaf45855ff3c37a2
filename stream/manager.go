package stream

import (
	"math"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"worldgenerator/core"
	"worldgenerator/mesher"
	"worldgenerator/noise"
	"worldgenerator/region"
	"worldgenerator/voxel"
)

// Manager owns the chunk+delta cache, the remesh queue, and the worker
// pool that services ring-build requests (spec.md §4.5). Helpers that
// touch more than one mutex acquire them in the fixed order cache →
// delta → remesh, per spec.md §5, to prevent deadlock.
type Manager struct {
	cfg  core.PlanetConfig
	opts mesher.Options

	cacheMu sync.Mutex
	chunks  map[core.FaceChunkKey]*voxel.Chunk

	deltaMu sync.Mutex
	deltas  map[core.FaceChunkKey]*voxel.ChunkDelta

	remeshMu    sync.Mutex
	remeshQueue []core.FaceChunkKey

	reqMu      sync.Mutex
	reqCond    *sync.Cond
	pendingReq *LoadRequest
	quit       bool

	workers int

	generation atomic.Uint64

	resultMu sync.Mutex
	results  []MeshResult

	store             *region.Store
	saveChunksEnabled bool

	coneDeg   float32
	forceLoad bool

	statusMu sync.Mutex
	status   StreamStatus

	wg sync.WaitGroup
}

// Config bundles the tunables a Manager needs beyond the planet config
// (spec.md §6 Streaming / Persistence sections).
type Config struct {
	Workers           int
	StreamConeDeg     float32
	ForceLoad         bool
	SaveChunksEnabled bool
	FlushInterval     time.Duration
}

// NewManager starts the worker pool and, if store is non-nil and
// FlushInterval is positive, the background delta-flush writer.
func NewManager(cfg core.PlanetConfig, opts mesher.Options, store *region.Store, mgrCfg Config) *Manager {
	m := &Manager{
		cfg:               cfg,
		opts:              opts,
		chunks:            make(map[core.FaceChunkKey]*voxel.Chunk),
		deltas:            make(map[core.FaceChunkKey]*voxel.ChunkDelta),
		store:             store,
		saveChunksEnabled: mgrCfg.SaveChunksEnabled,
		coneDeg:           mgrCfg.StreamConeDeg,
		forceLoad:         mgrCfg.ForceLoad,
	}
	m.reqCond = sync.NewCond(&m.reqMu)

	workers := mgrCfg.Workers
	if workers < 1 {
		workers = runtime.NumCPU()
	}
	m.workers = workers

	m.wg.Add(1)
	go m.dispatchLoop()

	if store != nil && mgrCfg.FlushInterval > 0 {
		m.wg.Add(1)
		go m.flushLoop(mgrCfg.FlushInterval)
	}

	return m
}

// Shutdown wakes all workers; each finishes its current task and exits
// (spec.md §5 Cancellation).
func (m *Manager) Shutdown() {
	m.reqMu.Lock()
	m.quit = true
	m.reqCond.Broadcast()
	m.reqMu.Unlock()
	m.wg.Wait()
}

// SubmitRequest coalesces req behind the manager's single pending-request
// slot: an older, unstarted request for the same manager is discarded
// outright (spec.md §4.5.1).
func (m *Manager) SubmitRequest(req LoadRequest) uint64 {
	gen := m.generation.Add(1)
	req.Generation = gen
	req.SessionID = uuid.New()

	m.reqMu.Lock()
	m.pendingReq = &req
	m.reqCond.Signal()
	m.reqMu.Unlock()

	m.statusMu.Lock()
	m.status.LoaderBusy = true
	m.status.LastSessionID = req.SessionID
	m.statusMu.Unlock()
	return gen
}

// dispatchLoop claims the pending request (if any) and hands its ring to
// processRing, which fans the per-tile work out across the worker pool.
func (m *Manager) dispatchLoop() {
	defer m.wg.Done()
	for {
		m.reqMu.Lock()
		for m.pendingReq == nil && !m.quit {
			m.reqCond.Wait()
		}
		if m.quit && m.pendingReq == nil {
			m.reqMu.Unlock()
			return
		}
		req := m.pendingReq
		m.pendingReq = nil
		m.reqMu.Unlock()

		if req != nil {
			m.processRing(*req)
		}
	}
}

// parallelForEachKey fans fn out across m.workers goroutines draining a
// work channel loaded with keys, mirroring the teacher's
// parallelForEachShell work-channel pattern. Workers skip any key once a
// newer generation has superseded gen, so stale work drains cheaply
// instead of running to completion.
func (m *Manager) parallelForEachKey(keys []core.FaceChunkKey, gen uint64, fn func(key core.FaceChunkKey)) {
	work := make(chan core.FaceChunkKey, len(keys))
	for _, k := range keys {
		work <- k
	}
	close(work)

	var wg sync.WaitGroup
	wg.Add(m.workers)
	for i := 0; i < m.workers; i++ {
		go func() {
			defer wg.Done()
			for key := range work {
				if m.generation.Load() != gen {
					continue
				}
				fn(key)
			}
		}()
	}
	wg.Wait()
}

// processRing runs the generation and meshing phases for one ring
// request (spec.md §4.5.2 steps 3-6), each phase parallel across the
// worker pool (spec.md §4.5.2, §5). Both phases skip tiles as soon as a
// newer generation has been submitted.
func (m *Manager) processRing(req LoadRequest) {
	start := time.Now()
	keys := buildRingKeys(req)

	var generated atomic.Int64
	m.parallelForEachKey(keys, req.Generation, func(key core.FaceChunkKey) {
		if m.ensureChunk(key) {
			generated.Add(1)
		}
	})
	genMs := float64(time.Since(start).Milliseconds())

	if m.generation.Load() != req.Generation {
		return
	}

	meshStart := time.Now()
	var meshed atomic.Int64
	camFwd := tileCenterDirection(core.NewFaceChunkKey(req.Face, req.CI, req.CJ, req.CK), m.cfg)
	m.parallelForEachKey(keys, req.Generation, func(key core.FaceChunkKey) {
		if !insideForwardCone(key, m.cfg, camFwd, m.coneDeg, m.forceLoad) {
			return
		}
		if m.meshAndEmit(key, req.Generation) {
			meshed.Add(1)
		}
	})
	meshMs := float64(time.Since(meshStart).Milliseconds())

	if m.generation.Load() != req.Generation {
		return
	}

	m.statusMu.Lock()
	m.status.LastGenMs = genMs
	m.status.LastGeneratedChunks = int(generated.Load())
	m.status.LastMeshMs = meshMs
	m.status.LastMeshedChunks = int(meshed.Load())
	m.status.LoaderBusy = false
	m.statusMu.Unlock()
}

// ensureChunk loads the chunk from the region store, or generates it
// procedurally on a miss, overlays its delta, and installs it in the
// cache. Returns true if newly generated (as opposed to a cache hit).
func (m *Manager) ensureChunk(key core.FaceChunkKey) bool {
	m.cacheMu.Lock()
	if _, ok := m.chunks[key]; ok {
		m.cacheMu.Unlock()
		return false
	}
	m.cacheMu.Unlock()

	var chunk *voxel.Chunk
	loaded := false
	if m.store != nil {
		if c, ok := m.store.LoadChunk(key); ok {
			chunk = c
			loaded = true
		}
	}
	if chunk == nil {
		chunk = generateChunk(m.cfg, key)
		if m.store != nil && m.saveChunksEnabled {
			m.store.SaveChunk(key, chunk)
		}
	}

	var delta *voxel.ChunkDelta
	if m.store != nil {
		if d, ok := m.store.LoadChunkDelta(key); ok {
			delta = d
		}
	}
	if delta == nil {
		delta = voxel.NewChunkDelta()
	}
	if !delta.Empty() {
		voxel.ApplyChunkDelta(delta, chunk)
	}

	m.cacheMu.Lock()
	m.chunks[key] = chunk
	m.cacheMu.Unlock()

	m.deltaMu.Lock()
	m.deltas[key] = delta
	m.deltaMu.Unlock()

	return !loaded
}

// generateChunk fills a fresh chunk by sampling sample_base at every
// voxel's world position (spec.md §4.5.2 step 3, §4.5.3 coordinate
// recipe).
func generateChunk(cfg core.PlanetConfig, key core.FaceChunkKey) *voxel.Chunk {
	c := voxel.NewChunk()
	voxelM := cfg.VoxelSizeM
	n := float64(voxel.N)

	for z := 0; z < voxel.N; z++ {
		r := float64(key.K)*n*voxelM + (float64(z)+0.5)*voxelM
		if r == 0 {
			r = 1e-9
		}
		for y := 0; y < voxel.N; y++ {
			t := float64(key.J)*n*voxelM + (float64(y)+0.5)*voxelM
			for x := 0; x < voxel.N; x++ {
				s := float64(key.I)*n*voxelM + (float64(x)+0.5)*voxelM
				mat := sampleBaseDirect(cfg, key.Face, s, t, r)
				c.SetVoxel(x, y, z, mat)
			}
		}
	}
	return c
}

// sampleBaseDirect mirrors the coordinate recipe of spec.md §4.5.3: it
// derives (u, v, w) from face-local (s, t, r), projects to a world
// direction, and rounds back to an integer voxel index for sample_base.
func sampleBaseDirect(cfg core.PlanetConfig, face int, s, t, r float64) core.Material {
	u := s / r
	v := t / r
	w := math.Sqrt(math.Max(0, 1-u*u-v*v))
	b := core.FaceBasisFor(face)
	dir := core.Normalize(b.Right.Mul(float32(u)).Add(b.Up.Mul(float32(v))).Add(b.Forward.Mul(float32(w))))

	voxelM := cfg.VoxelSizeM
	worldR := r
	wx := int64(math.Round(float64(dir[0]) * worldR / voxelM))
	wy := int64(math.Round(float64(dir[1]) * worldR / voxelM))
	wz := int64(math.Round(float64(dir[2]) * worldR / voxelM))

	sample := noise.SampleBase(cfg, [3]int64{wx, wy, wz})
	return sample.Material
}

// meshAndEmit meshes key with six-neighbor context from the cache and
// pushes the result onto the FIFO result queue, tagged with the
// generation it was built under.
func (m *Manager) meshAndEmit(key core.FaceChunkKey, gen uint64) bool {
	m.cacheMu.Lock()
	center, ok := m.chunks[key]
	if !ok {
		m.cacheMu.Unlock()
		return false
	}
	neighbors := mesher.Neighbors{
		NegX: m.chunks[key.Neighbor(0, -1)],
		PosX: m.chunks[key.Neighbor(0, 1)],
		NegY: m.chunks[key.Neighbor(1, -1)],
		PosY: m.chunks[key.Neighbor(1, 1)],
		NegZ: m.chunks[key.Neighbor(2, -1)],
		PosZ: m.chunks[key.Neighbor(2, 1)],
	}
	m.cacheMu.Unlock()

	res := mesher.MeshChunkGreedyNeighbors(center, neighbors, key, m.cfg, m.opts)

	m.resultMu.Lock()
	m.results = append(m.results, MeshResult{
		Key:      key,
		Vertices: res.Vertices,
		Indices:  res.Indices,
		Center:   res.Center,
		Radius:   res.Radius,
		JobGen:   gen,
	})
	m.resultMu.Unlock()
	return true
}

// DrainResults pops up to n results from the FIFO result queue (spec.md
// §4.5.1: drainage is bounded, default uploads_per_frame_limit=16).
func (m *Manager) DrainResults(n int) []MeshResult {
	m.resultMu.Lock()
	defer m.resultMu.Unlock()
	if n > len(m.results) {
		n = len(m.results)
	}
	out := m.results[:n]
	m.results = m.results[n:]

	m.statusMu.Lock()
	m.status.Queued = len(m.results)
	m.statusMu.Unlock()
	return out
}

// Status returns a copy of the current telemetry snapshot.
func (m *Manager) Status() StreamStatus {
	m.statusMu.Lock()
	defer m.statusMu.Unlock()
	return m.status
}

// GetChunk returns the cached chunk for key, if present, for read-only
// access (e.g. voxel picking).
func (m *Manager) GetChunk(key core.FaceChunkKey) (*voxel.Chunk, bool) {
	m.cacheMu.Lock()
	defer m.cacheMu.Unlock()
	c, ok := m.chunks[key]
	return c, ok
}

// PlanetConfig returns the manager's immutable planet configuration.
func (m *Manager) PlanetConfig() core.PlanetConfig { return m.cfg }
