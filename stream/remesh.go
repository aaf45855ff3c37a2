package stream

import (
	"time"

	"worldgenerator/core"
	"worldgenerator/mesher"
	"worldgenerator/voxel"
)

// QueueRemesh appends key to the remesh queue (spec.md §4.5.4).
func (m *Manager) QueueRemesh(key core.FaceChunkKey) {
	m.remeshMu.Lock()
	m.remeshQueue = append(m.remeshQueue, key)
	m.remeshMu.Unlock()
}

// TakeRemeshBatch pops up to n keys from the remesh queue.
func (m *Manager) TakeRemeshBatch(n int) []core.FaceChunkKey {
	m.remeshMu.Lock()
	defer m.remeshMu.Unlock()
	if n > len(m.remeshQueue) {
		n = len(m.remeshQueue)
	}
	out := append([]core.FaceChunkKey(nil), m.remeshQueue[:n]...)
	m.remeshQueue = m.remeshQueue[n:]
	return out
}

// ProcessRemeshBatch clones each cached chunk, overlays its delta, runs
// single-chunk greedy meshing without neighbor context, and pushes a
// MeshResult onto the shared result queue (spec.md §4.5.4). Keys with no
// cached chunk are silently skipped.
func (m *Manager) ProcessRemeshBatch(n int) int {
	keys := m.TakeRemeshBatch(n)
	processed := 0
	for _, key := range keys {
		m.cacheMu.Lock()
		chunk, ok := m.chunks[key]
		if ok {
			chunk = chunk.Clone()
		}
		m.cacheMu.Unlock()
		if !ok {
			continue
		}

		m.deltaMu.Lock()
		delta, hasDelta := m.deltas[key]
		m.deltaMu.Unlock()
		if hasDelta && !delta.Empty() {
			voxel.ApplyChunkDelta(delta, chunk)
		}

		res := mesher.MeshChunkGreedy(chunk, key, m.cfg, m.opts)
		gen := m.generation.Load()

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
		processed++
	}
	return processed
}

// ApplyVoxelOverride applies one staged edit to both the cached chunk and
// its delta, acquiring cache then delta in that fixed order (spec.md
// §5). Returns true iff the override's effective value actually changed.
func (m *Manager) ApplyVoxelOverride(key core.FaceChunkKey, localIndex uint32, baseMaterial, newMaterial core.Material) bool {
	m.cacheMu.Lock()
	chunk, ok := m.chunks[key]
	if !ok {
		m.cacheMu.Unlock()
		return false
	}
	x, y, z := voxel.Unlindex(int(localIndex))
	changed := chunk.GetMaterial(x, y, z) != newMaterial
	chunk.SetVoxel(x, y, z, newMaterial)
	m.cacheMu.Unlock()

	if !changed {
		return false
	}

	m.deltaMu.Lock()
	delta, ok := m.deltas[key]
	if !ok {
		delta = voxel.NewChunkDelta()
		m.deltas[key] = delta
	}
	delta.ApplyEdit(localIndex, baseMaterial, newMaterial)
	delta.Normalize()
	m.deltaMu.Unlock()

	return true
}

// flushLoop periodically persists dirty deltas to the region store
// (spec.md §5: "a distinct writer performs delta flushes").
func (m *Manager) flushLoop(interval time.Duration) {
	defer m.wg.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	quit := m.quitSignal()
	for {
		select {
		case <-ticker.C:
			m.flushDirtyDeltas()
		case <-quit:
			m.flushDirtyDeltas()
			return
		}
	}
}

// quitSignal returns a channel that closes once Shutdown has been
// called, for flushLoop's select.
func (m *Manager) quitSignal() <-chan struct{} {
	ch := make(chan struct{})
	go func() {
		m.reqMu.Lock()
		for !m.quit {
			m.reqCond.Wait()
		}
		m.reqMu.Unlock()
		close(ch)
	}()
	return ch
}

// flushDirtyDeltas writes every delta with unpersisted changes to the
// region store and clears its dirty mask on success.
func (m *Manager) flushDirtyDeltas() {
	if m.store == nil {
		return
	}
	m.deltaMu.Lock()
	type pending struct {
		key   core.FaceChunkKey
		delta *voxel.ChunkDelta
	}
	var dirty []pending
	for key, delta := range m.deltas {
		if len(delta.DirtyIndices()) > 0 {
			dirty = append(dirty, pending{key: key, delta: delta})
		}
	}
	m.deltaMu.Unlock()

	for _, p := range dirty {
		if m.store.SaveChunkDelta(p.key, p.delta) {
			p.delta.ClearDirty()
		}
	}
}
