// Package mesher implements the greedy per-face axis-sweep mesher of
// spec.md §2 ("Mesher") and §4.5.2 steps 4-6: neighbor-aware face culling,
// greedy rectangle merging, vertex projection from face-local (s,t,r) to
// spherical world coordinates, and flat per-triangle normals with an
// optional radial surface push.
package mesher

import (
	"math"

	"worldgenerator/core"
	"worldgenerator/voxel"
)

// Options gates the visual "surface push" hack behind a config flag, kept
// off by default and in tests per spec.md §9.
type Options struct {
	SurfacePushEnabled bool
	SurfacePushM       float32
	RadialThreshold    float32 // default 0.8
}

// DefaultOptions returns the spec's defaults with the surface push
// disabled.
func DefaultOptions() Options {
	return Options{SurfacePushEnabled: false, SurfacePushM: 0, RadialThreshold: 0.8}
}

// Result is a produced mesh plus its world-space bounding sphere.
type Result struct {
	Vertices []core.Vertex
	Indices  []uint32
	Center   core.Vec3
	Radius   float32
}

// Neighbors holds the six face-adjacent chunks around a center chunk; any
// entry may be nil at a window boundary (spec.md §4.5.2 step 4).
type Neighbors struct {
	NegX, PosX, NegY, PosY, NegZ, PosZ *voxel.Chunk
}

func (n Neighbors) get(direction int) *voxel.Chunk {
	switch direction {
	case 0:
		return n.NegX
	case 1:
		return n.PosX
	case 2:
		return n.NegY
	case 3:
		return n.PosY
	case 4:
		return n.NegZ
	default:
		return n.PosZ
	}
}

// direction axis (0=x,1=y,2=z) and outward offset per direction id.
var dirAxis = [6]int{0, 0, 1, 1, 2, 2}
var dirOffset = [6]int{-1, 1, -1, 1, -1, 1}
var dirNormal = [6]core.Vec3{
	{-1, 0, 0}, {1, 0, 0},
	{0, -1, 0}, {0, 1, 0},
	{0, 0, -1}, {0, 0, 1},
}

// MeshChunkGreedy meshes a single chunk with no neighbor context, used by
// the remesh queue (spec.md §4.5.4: "without neighbor context").
func MeshChunkGreedy(center *voxel.Chunk, key core.FaceChunkKey, cfg core.PlanetConfig, opts Options) Result {
	return MeshChunkGreedyNeighbors(center, Neighbors{}, key, cfg, opts)
}

// MeshChunkGreedyNeighbors meshes center with six-neighbor boundary context
// (spec.md §4.5.2 step 4). Missing neighbors are treated as same-material,
// suppressing the boundary face there.
func MeshChunkGreedyNeighbors(center *voxel.Chunk, neighbors Neighbors, key core.FaceChunkKey, cfg core.PlanetConfig, opts Options) Result {
	var vertices []core.Vertex
	var indices []uint32

	for d := 0; d < 6; d++ {
		vs, idx := meshDirection(center, neighbors, d, key, cfg, opts)
		base := uint32(len(vertices))
		for _, ix := range idx {
			indices = append(indices, ix+base)
		}
		vertices = append(vertices, vs...)
	}

	center3, radius := boundingSphere(key, cfg)
	return Result{Vertices: vertices, Indices: indices, Center: center3, Radius: radius}
}

type maskCell struct {
	visible bool
	mat     core.Material
}

// meshDirection greedily meshes all faces visible in one of the six
// cardinal directions.
func meshDirection(center *voxel.Chunk, neighbors Neighbors, d int, key core.FaceChunkKey, cfg core.PlanetConfig, opts Options) ([]core.Vertex, []uint32) {
	axis := dirAxis[d]
	offset := dirOffset[d]
	uAxis, vAxis := otherAxes(axis)

	var outVerts []core.Vertex
	var outIdx []uint32

	mask := make([]maskCell, voxel.N*voxel.N)

	for slice := 0; slice < voxel.N; slice++ {
		for u := 0; u < voxel.N; u++ {
			for v := 0; v < voxel.N; v++ {
				coord := coord3(axis, slice, uAxis, u, vAxis, v)
				x, y, z := coord[0], coord[1], coord[2]
				centerSolid := center.IsSolid(x, y, z)
				mat := center.GetMaterial(x, y, z)

				neighborCoord := coord
				neighborCoord[axis] += offset
				visible := false
				if centerSolid {
					if neighborCoord[axis] >= 0 && neighborCoord[axis] < voxel.N {
						nSolid := center.IsSolid(neighborCoord[0], neighborCoord[1], neighborCoord[2])
						visible = !nSolid
					} else {
						nc := neighbors.get(d)
						if nc == nil {
							visible = false // treated as same material: suppressed
						} else {
							wrapped := wrapCoord(neighborCoord, axis)
							visible = !nc.IsSolid(wrapped[0], wrapped[1], wrapped[2])
						}
					}
				}
				mask[u*voxel.N+v] = maskCell{visible: visible, mat: mat}
			}
		}

		quads := greedyMerge(mask)
		for _, q := range quads {
			vs, idx := emitQuad(q, slice, axis, uAxis, vAxis, offset, d, key, cfg, opts)
			base := uint32(len(outVerts))
			for _, ix := range idx {
				outIdx = append(outIdx, ix+base)
			}
			outVerts = append(outVerts, vs...)
		}
	}

	return outVerts, outIdx
}

func otherAxes(axis int) (int, int) {
	switch axis {
	case 0:
		return 1, 2
	case 1:
		return 0, 2
	default:
		return 0, 1
	}
}

func coord3(sweepAxis, sweepVal, uAxis, uVal, vAxis, vVal int) [3]int {
	var c [3]int
	c[sweepAxis] = sweepVal
	c[uAxis] = uVal
	c[vAxis] = vVal
	return c
}

// wrapCoord maps an out-of-range coordinate on axis to the opposite edge of
// the neighbor chunk (e.g. -1 -> N-1, N -> 0).
func wrapCoord(c [3]int, axis int) [3]int {
	out := c
	if out[axis] < 0 {
		out[axis] = voxel.N - 1
	} else if out[axis] >= voxel.N {
		out[axis] = 0
	}
	return out
}

type quad struct {
	u0, v0, u1, v1 int // inclusive cell range along u/v
	mat            core.Material
}

// greedyMerge scans the NxN mask and merges visible same-material cells
// into maximal rectangles, consuming each cell at most once.
func greedyMerge(mask []maskCell) []quad {
	consumed := make([]bool, len(mask))
	var quads []quad

	at := func(u, v int) maskCell { return mask[u*voxel.N+v] }
	consumedAt := func(u, v int) bool { return consumed[u*voxel.N+v] }
	markConsumed := func(u0, v0, u1, v1 int) {
		for u := u0; u <= u1; u++ {
			for v := v0; v <= v1; v++ {
				consumed[u*voxel.N+v] = true
			}
		}
	}

	for u := 0; u < voxel.N; u++ {
		for v := 0; v < voxel.N; v++ {
			if consumedAt(u, v) {
				continue
			}
			cell := at(u, v)
			if !cell.visible {
				consumed[u*voxel.N+v] = true
				continue
			}

			// Grow width along v.
			v1 := v
			for v1+1 < voxel.N {
				next := at(u, v1+1)
				if consumedAt(u, v1+1) || !next.visible || next.mat != cell.mat {
					break
				}
				v1++
			}

			// Grow height along u while the whole [v,v1] row matches.
			u1 := u
			for u1+1 < voxel.N {
				rowOK := true
				for vv := v; vv <= v1; vv++ {
					c := at(u1+1, vv)
					if consumedAt(u1+1, vv) || !c.visible || c.mat != cell.mat {
						rowOK = false
						break
					}
				}
				if !rowOK {
					break
				}
				u1++
			}

			markConsumed(u, v, u1, v1)
			quads = append(quads, quad{u0: u, v0: v, u1: u1, v1: v1, mat: cell.mat})
		}
	}
	return quads
}

// emitQuad builds the 4 projected vertices and 6 indices (2 triangles) for
// one merged rectangle.
func emitQuad(q quad, slice, axis, uAxis, vAxis, offset, d int, key core.FaceChunkKey, cfg core.PlanetConfig, opts Options) ([]core.Vertex, []uint32) {
	plane := slice
	if offset > 0 {
		plane = slice + 1
	}

	corner := func(u, v int) core.Vec3 {
		c3 := coord3f(axis, float32(plane), uAxis, float32(u), vAxis, float32(v))
		return projectVertex(key, cfg, c3[0], c3[1], c3[2])
	}

	p00 := corner(q.u0, q.v0)
	p10 := corner(q.u1+1, q.v0)
	p01 := corner(q.u0, q.v1+1)
	p11 := corner(q.u1+1, q.v1+1)

	// Winding so the flat normal points outward along dirNormal[d].
	var a, b, c, e core.Vec3
	if offset < 0 {
		a, b, c, e = p00, p01, p11, p10
	} else {
		a, b, c, e = p00, p10, p11, p01
	}

	n1 := flatNormal(a, b, c)
	n2 := flatNormal(a, c, e)

	push := func(v core.Vec3, n core.Vec3) core.Vec3 {
		if !opts.SurfacePushEnabled {
			return v
		}
		dir := core.Normalize(v)
		if n.Dot(dir) > opts.RadialThreshold {
			return v.Add(dir.Mul(opts.SurfacePushM))
		}
		return v
	}

	mat := uint16(q.mat)
	va := core.Vertex{Pos: push(a, n1), Normal: n1, Material: mat}
	vb := core.Vertex{Pos: push(b, n1), Normal: n1, Material: mat}
	vc := core.Vertex{Pos: push(c, n2), Normal: n2, Material: mat}
	ve := core.Vertex{Pos: push(e, n2), Normal: n2, Material: mat}

	verts := []core.Vertex{va, vb, vc, ve}
	idx := []uint32{0, 1, 2, 0, 2, 3}
	return verts, idx
}

func flatNormal(a, b, c core.Vec3) core.Vec3 {
	e1 := b.Sub(a)
	e2 := c.Sub(a)
	n := e1.Cross(e2)
	return core.Normalize(n)
}

func coord3f(sweepAxis int, sweepVal float32, uAxis int, uVal float32, vAxis int, vVal float32) [3]float32 {
	var c [3]float32
	c[sweepAxis] = sweepVal
	c[uAxis] = uVal
	c[vAxis] = vVal
	return c
}

// projectVertex converts a face-local vertex (in voxel-index units, not
// necessarily integral) to a spherical world position per the coordinate
// recipe in spec.md §4.5.3.
func projectVertex(key core.FaceChunkKey, cfg core.PlanetConfig, lx, ly, lz float32) core.Vec3 {
	voxelM := float32(cfg.VoxelSizeM)
	n := float32(voxel.N)

	s := float32(key.I)*n*voxelM + lx*voxelM
	t := float32(key.J)*n*voxelM + ly*voxelM
	r := float32(key.K)*n*voxelM + lz*voxelM
	if r == 0 {
		r = 1e-6
	}

	u := s / r
	v := t / r
	w := float32(math.Sqrt(math.Max(0, float64(1-u*u-v*v))))

	b := core.FaceBasisFor(key.Face)
	dir := core.Normalize(b.Right.Mul(u).Add(b.Up.Mul(v)).Add(b.Forward.Mul(w)))
	return dir.Mul(r)
}

// boundingSphere computes the world-space bounding sphere for a tile per
// spec.md §4.5.2 step 6.
func boundingSphere(key core.FaceChunkKey, cfg core.PlanetConfig) (core.Vec3, float32) {
	voxelM := float32(cfg.VoxelSizeM)
	n := float32(voxel.N)
	half := n / 2

	rCenter := float32(key.K)*n*voxelM + half*voxelM
	if rCenter == 0 {
		rCenter = 1e-6
	}
	s := float32(key.I)*n*voxelM + half*voxelM
	t := float32(key.J)*n*voxelM + half*voxelM

	u := s / rCenter
	v := t / rCenter
	w := float32(math.Sqrt(math.Max(0, float64(1-u*u-v*v))))
	b := core.FaceBasisFor(key.Face)
	dir := core.Normalize(b.Right.Mul(u).Add(b.Up.Mul(v)).Add(b.Forward.Mul(w)))

	center := dir.Mul(rCenter)
	radius := (n * voxelM * float32(math.Sqrt(3))) / 2
	return center, radius
}
