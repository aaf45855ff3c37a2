package runtime

import (
	"math"

	"worldgenerator/core"
	"worldgenerator/stream"
	"worldgenerator/voxel"
)

// PickHit is the result of a voxel pick: the first solid voxel along the
// ray, plus the last empty voxel immediately before it (used for
// placement), per spec.md §4.7.6.
type PickHit struct {
	Found       bool
	SolidKey    core.FaceChunkKey
	SolidLocal  [3]int
	SolidWorld  [3]int64
	EmptyKey    core.FaceChunkKey
	EmptyLocal  [3]int
	EmptyWorld  [3]int64
}

// PickVoxel walks a ray from eye in direction dir (unit length) up to
// dMax meters, using a 3D-DDA over the integer voxel grid, and reports
// the first solid hit and the empty voxel immediately preceding it
// (spec.md §4.7.6).
func PickVoxel(mgr *stream.Manager, cfg core.PlanetConfig, eye, dir core.Vec3, dMax float64) PickHit {
	voxelM := cfg.VoxelSizeM

	wx := float64(eye[0]) / voxelM
	wy := float64(eye[1]) / voxelM
	wz := float64(eye[2]) / voxelM

	ix := int64(math.Floor(wx))
	iy := int64(math.Floor(wy))
	iz := int64(math.Floor(wz))

	stepX := sign(float64(dir[0]))
	stepY := sign(float64(dir[1]))
	stepZ := sign(float64(dir[2]))

	tDeltaX := safeDiv(voxelM, math.Abs(float64(dir[0])))
	tDeltaY := safeDiv(voxelM, math.Abs(float64(dir[1])))
	tDeltaZ := safeDiv(voxelM, math.Abs(float64(dir[2])))

	tMaxX := nextBoundary(wx, stepX, voxelM, float64(dir[0]))
	tMaxY := nextBoundary(wy, stepY, voxelM, float64(dir[1]))
	tMaxZ := nextBoundary(wz, stepZ, voxelM, float64(dir[2]))

	var prev = [3]int64{ix, iy, iz}
	traveled := 0.0

	maxSteps := int(dMax/voxelM) + 2
	for step := 0; step < maxSteps && traveled <= dMax; step++ {
		world := [3]int64{ix, iy, iz}
		key, local := worldVoxelToFace(cfg, world)
		if chunk, ok := mgr.GetChunk(key); ok && chunk.IsSolid(local[0], local[1], local[2]) {
			pKey, pLocal := worldVoxelToFace(cfg, prev)
			return PickHit{
				Found:      true,
				SolidKey:   key,
				SolidLocal: local,
				SolidWorld: world,
				EmptyKey:   pKey,
				EmptyLocal: pLocal,
				EmptyWorld: prev,
			}
		}
		prev = world

		if tMaxX < tMaxY && tMaxX < tMaxZ {
			ix += stepX
			traveled = tMaxX
			tMaxX += tDeltaX
		} else if tMaxY < tMaxZ {
			iy += stepY
			traveled = tMaxY
			tMaxY += tDeltaY
		} else {
			iz += stepZ
			traveled = tMaxZ
			tMaxZ += tDeltaZ
		}
	}
	return PickHit{Found: false}
}

// worldVoxelToFace classifies an integer world-voxel coordinate into its
// owning FaceChunkKey and local (x,y,z) within that chunk, via cubed-
// sphere projection (spec.md §4.7.6).
func worldVoxelToFace(cfg core.PlanetConfig, world [3]int64) (core.FaceChunkKey, [3]int) {
	voxelM := cfg.VoxelSizeM
	wx := float32(world[0]) * float32(voxelM)
	wy := float32(world[1]) * float32(voxelM)
	wz := float32(world[2]) * float32(voxelM)
	dir := core.Vec3{wx, wy, wz}

	face := core.FaceFromDirection(core.Normalize(dir))
	b := core.FaceBasisFor(face)
	r := math.Sqrt(float64(wx*wx + wy*wy + wz*wz))
	if r < 1e-9 {
		r = 1e-9
	}
	s := float64(dir.Dot(b.Right))
	t := float64(dir.Dot(b.Up))

	n := float64(voxel.N)
	chunkM := n * voxelM

	ci := int64(math.Floor(s / chunkM))
	cj := int64(math.Floor(t / chunkM))
	ck := int64(math.Floor(r / chunkM))

	localX := int(math.Floor(s/voxelM)) - int(ci)*voxel.N
	localY := int(math.Floor(t/voxelM)) - int(cj)*voxel.N
	localZ := int(math.Floor(r/voxelM)) - int(ck)*voxel.N

	return core.NewFaceChunkKey(face, ci, cj, ck), [3]int{wrapLocal(localX), wrapLocal(localY), wrapLocal(localZ)}
}

func wrapLocal(v int) int {
	if v < 0 {
		return 0
	}
	if v >= voxel.N {
		return voxel.N - 1
	}
	return v
}

func sign(v float64) int64 {
	if v > 0 {
		return 1
	}
	if v < 0 {
		return -1
	}
	return 0
}

func safeDiv(a, b float64) float64 {
	if b < 1e-12 {
		return math.Inf(1)
	}
	return a / b
}

// nextBoundary computes the ray distance to the next voxel boundary
// along one axis, in the same units as dMax (meters).
func nextBoundary(w float64, step int64, voxelM float64, d float64) float64 {
	if d == 0 {
		return math.Inf(1)
	}
	if step > 0 {
		return (math.Ceil(w) - w) * voxelM / math.Abs(d)
	}
	return (w - math.Floor(w)) * voxelM / math.Abs(d)
}
