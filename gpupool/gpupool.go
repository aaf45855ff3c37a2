// Package gpupool implements the fixed-capacity vertex/index pool
// allocator of spec.md §2 ("Pool Allocator") and §4.6: first-fit
// allocation with free-list coalescing over two backing arenas sized at
// startup, plus indirect draw-command assembly for the renderer
// collaborator.
package gpupool

import (
	"fmt"
	"sort"

	"worldgenerator/core"
)

// Handle identifies a mesh's live allocation inside the pool. The zero
// value is never valid.
type Handle uint32

type freeBlock struct {
	offset uint32
	length uint32
}

type liveAlloc struct {
	vertexOffset uint32
	vertexCount  uint32
	indexOffset  uint32
	indexCount   uint32
}

// Pool owns two flat arenas — one for core.Vertex, one for uint32 indices
// — and hands out first-fit allocations from each, coalescing adjacent
// free blocks on release (spec.md §4.6: "first-fit with coalescing free
// lists").
type Pool struct {
	vertexCap uint32
	indexCap  uint32

	vertexFree []freeBlock
	indexFree  []freeBlock

	live    map[Handle]liveAlloc
	nextID  uint32
	inUseV  uint32
	inUseI  uint32
}

// NewPool allocates a pool sized for vertexCap vertices and indexCap
// indices.
func NewPool(vertexCap, indexCap uint32) *Pool {
	return &Pool{
		vertexCap:  vertexCap,
		indexCap:   indexCap,
		vertexFree: []freeBlock{{offset: 0, length: vertexCap}},
		indexFree:  []freeBlock{{offset: 0, length: indexCap}},
		live:       make(map[Handle]liveAlloc),
		nextID:     1,
	}
}

// VertexCapacity and IndexCapacity report the arena sizes in elements.
func (p *Pool) VertexCapacity() uint32 { return p.vertexCap }
func (p *Pool) IndexCapacity() uint32  { return p.indexCap }

// VertexInUse and IndexInUse report how many elements are currently
// allocated, for telemetry (spec.md §4.6 fragmentation reporting).
func (p *Pool) VertexInUse() uint32 { return p.inUseV }
func (p *Pool) IndexInUse() uint32  { return p.inUseI }

// Range reports the arena offsets/counts backing h, so a renderer
// collaborator can slice the caller-owned vertex/index arenas directly
// for upload without the pool needing to know about any particular GPU
// API.
func (p *Pool) Range(h Handle) (vertexOffset, vertexCount, indexOffset, indexCount uint32, ok bool) {
	a, found := p.live[h]
	if !found {
		return 0, 0, 0, 0, false
	}
	return a.vertexOffset, a.vertexCount, a.indexOffset, a.indexCount, true
}

// ErrPoolExhausted is returned when no first-fit block is large enough.
type ErrPoolExhausted struct {
	Requested uint32
	Largest   uint32
	Arena     string
}

func (e *ErrPoolExhausted) Error() string {
	return fmt.Sprintf("gpupool: %s pool exhausted: requested %d, largest free block %d", e.Arena, e.Requested, e.Largest)
}

// Alloc reserves space for a mesh's vertex and index buffers, copying the
// supplied data into the backing arenas. vertexArena and indexArena are the
// caller-owned storage (sized to VertexCapacity/IndexCapacity) that the
// renderer collaborator uploads to the GPU.
func (p *Pool) Alloc(vertexArena []core.Vertex, indexArena []uint32, vertices []core.Vertex, indices []uint32) (Handle, error) {
	vOff, err := firstFit(&p.vertexFree, uint32(len(vertices)))
	if err != nil {
		return 0, &ErrPoolExhausted{Requested: uint32(len(vertices)), Largest: largestBlock(p.vertexFree), Arena: "vertex"}
	}
	iOff, err := firstFit(&p.indexFree, uint32(len(indices)))
	if err != nil {
		// Roll back the vertex reservation; nothing was written yet.
		releaseBlock(&p.vertexFree, vOff, uint32(len(vertices)))
		return 0, &ErrPoolExhausted{Requested: uint32(len(indices)), Largest: largestBlock(p.indexFree), Arena: "index"}
	}

	copy(vertexArena[vOff:vOff+uint32(len(vertices))], vertices)
	copy(indexArena[iOff:iOff+uint32(len(indices))], indices)

	h := Handle(p.nextID)
	p.nextID++
	p.live[h] = liveAlloc{
		vertexOffset: vOff,
		vertexCount:  uint32(len(vertices)),
		indexOffset:  iOff,
		indexCount:   uint32(len(indices)),
	}
	p.inUseV += uint32(len(vertices))
	p.inUseI += uint32(len(indices))
	return h, nil
}

// Free releases a handle's reservation back to both free lists,
// coalescing with adjacent blocks.
func (p *Pool) Free(h Handle) bool {
	a, ok := p.live[h]
	if !ok {
		return false
	}
	releaseBlock(&p.vertexFree, a.vertexOffset, a.vertexCount)
	releaseBlock(&p.indexFree, a.indexOffset, a.indexCount)
	p.inUseV -= a.vertexCount
	p.inUseI -= a.indexCount
	delete(p.live, h)
	return true
}

// DrawCommand is an indirect draw command referencing one live
// allocation's slice of the shared index arena (spec.md §4.6: "indirect
// draw command assembly").
type DrawCommand struct {
	IndexCount    uint32
	FirstIndex    uint32
	BaseVertex    int32
	InstanceCount uint32
}

// BuildDrawCommands assembles one indirect draw command per handle, in
// the order given, for a single multi-draw-indirect submission.
func (p *Pool) BuildDrawCommands(handles []Handle) ([]DrawCommand, error) {
	cmds := make([]DrawCommand, 0, len(handles))
	for _, h := range handles {
		a, ok := p.live[h]
		if !ok {
			return nil, fmt.Errorf("gpupool: unknown handle %d", h)
		}
		cmds = append(cmds, DrawCommand{
			IndexCount:    a.indexCount,
			FirstIndex:    a.indexOffset,
			BaseVertex:    int32(a.vertexOffset),
			InstanceCount: 1,
		})
	}
	return cmds, nil
}

// firstFit scans free for the first block at least as large as n,
// consuming it (or the leading portion of it) and returns its offset.
func firstFit(free *[]freeBlock, n uint32) (uint32, error) {
	if n == 0 {
		return 0, nil
	}
	for i, b := range *free {
		if b.length >= n {
			offset := b.offset
			if b.length == n {
				*free = append((*free)[:i], (*free)[i+1:]...)
			} else {
				(*free)[i] = freeBlock{offset: b.offset + n, length: b.length - n}
			}
			return offset, nil
		}
	}
	return 0, &ErrPoolExhausted{Requested: n, Largest: largestBlock(*free)}
}

// releaseBlock inserts a freed [offset, offset+length) range back into
// free, merging with any directly-adjacent neighbors so fragmentation
// cannot grow unbounded across alloc/free churn.
func releaseBlock(free *[]freeBlock, offset, length uint32) {
	if length == 0 {
		return
	}
	merged := freeBlock{offset: offset, length: length}
	out := make([]freeBlock, 0, len(*free)+1)
	inserted := false
	for _, b := range *free {
		if !inserted && b.offset > merged.offset {
			out = append(out, merged)
			inserted = true
		}
		out = append(out, b)
	}
	if !inserted {
		out = append(out, merged)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].offset < out[j].offset })

	coalesced := out[:0]
	for _, b := range out {
		if len(coalesced) > 0 {
			last := &coalesced[len(coalesced)-1]
			if last.offset+last.length == b.offset {
				last.length += b.length
				continue
			}
		}
		coalesced = append(coalesced, b)
	}
	*free = coalesced
}

func largestBlock(free []freeBlock) uint32 {
	var max uint32
	for _, b := range free {
		if b.length > max {
			max = b.length
		}
	}
	return max
}
