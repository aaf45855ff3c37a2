package gpupool

import (
	"testing"

	"worldgenerator/core"
)

func sampleMesh(n int) ([]core.Vertex, []uint32) {
	verts := make([]core.Vertex, n)
	idx := make([]uint32, n)
	for i := 0; i < n; i++ {
		verts[i] = core.Vertex{Material: uint16(i)}
		idx[i] = uint32(i)
	}
	return verts, idx
}

func TestAllocWritesIntoArenas(t *testing.T) {
	p := NewPool(100, 100)
	vArena := make([]core.Vertex, 100)
	iArena := make([]uint32, 100)

	verts, idx := sampleMesh(10)
	h, err := p.Alloc(vArena, iArena, verts, idx)
	if err != nil {
		t.Fatalf("Alloc failed: %v", err)
	}
	if h == 0 {
		t.Fatal("expected non-zero handle")
	}
	if p.VertexInUse() != 10 || p.IndexInUse() != 10 {
		t.Fatalf("in-use counts = (%d,%d), want (10,10)", p.VertexInUse(), p.IndexInUse())
	}
	for i := 0; i < 10; i++ {
		if vArena[i].Material != uint16(i) {
			t.Fatalf("vertex %d not written into arena", i)
		}
	}
}

func TestFreeCoalescesAdjacentBlocks(t *testing.T) {
	p := NewPool(30, 30)
	vArena := make([]core.Vertex, 30)
	iArena := make([]uint32, 30)

	v1, i1 := sampleMesh(10)
	v2, i2 := sampleMesh(10)
	v3, i3 := sampleMesh(10)

	h1, _ := p.Alloc(vArena, iArena, v1, i1)
	h2, _ := p.Alloc(vArena, iArena, v2, i2)
	_, _ = p.Alloc(vArena, iArena, v3, i3)

	if !p.Free(h1) {
		t.Fatal("Free(h1) failed")
	}
	if !p.Free(h2) {
		t.Fatal("Free(h2) failed")
	}

	if len(p.vertexFree) != 1 || p.vertexFree[0].length != 20 {
		t.Fatalf("expected coalesced 20-length free block, got %v", p.vertexFree)
	}
}

func TestAllocFailsWhenExhausted(t *testing.T) {
	p := NewPool(5, 5)
	vArena := make([]core.Vertex, 5)
	iArena := make([]uint32, 5)

	verts, idx := sampleMesh(10)
	_, err := p.Alloc(vArena, iArena, verts, idx)
	if err == nil {
		t.Fatal("expected pool exhaustion error")
	}
	var exhausted *ErrPoolExhausted
	if !asExhausted(err, &exhausted) {
		t.Fatalf("expected *ErrPoolExhausted, got %T: %v", err, err)
	}
}

func asExhausted(err error, target **ErrPoolExhausted) bool {
	e, ok := err.(*ErrPoolExhausted)
	if ok {
		*target = e
	}
	return ok
}

func TestBuildDrawCommandsReflectsAllocations(t *testing.T) {
	p := NewPool(100, 100)
	vArena := make([]core.Vertex, 100)
	iArena := make([]uint32, 100)

	v1, i1 := sampleMesh(4)
	v2, i2 := sampleMesh(6)
	h1, _ := p.Alloc(vArena, iArena, v1, i1)
	h2, _ := p.Alloc(vArena, iArena, v2, i2)

	cmds, err := p.BuildDrawCommands([]Handle{h1, h2})
	if err != nil {
		t.Fatalf("BuildDrawCommands failed: %v", err)
	}
	if len(cmds) != 2 {
		t.Fatalf("got %d commands, want 2", len(cmds))
	}
	if cmds[0].IndexCount != 4 || cmds[0].FirstIndex != 0 {
		t.Fatalf("cmd0 = %+v", cmds[0])
	}
	if cmds[1].IndexCount != 6 || cmds[1].FirstIndex != 4 {
		t.Fatalf("cmd1 = %+v", cmds[1])
	}
}

func TestFreeUnknownHandleReturnsFalse(t *testing.T) {
	p := NewPool(10, 10)
	if p.Free(Handle(999)) {
		t.Fatal("expected Free on unknown handle to return false")
	}
}
