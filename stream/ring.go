package stream

import (
	"math"
	"sort"

	"worldgenerator/core"
	"worldgenerator/voxel"
)

// tileOffset is one (di, dj) tangent-plane offset from a ring request's
// center tile, annotated with the ordering keys of spec.md §4.5.2 step 2.
type tileOffset struct {
	di, dj int64
}

// orderedOffsets enumerates every (di, dj) within ringRadius and sorts by
// (a) squared tangent distance ascending, (b) forward-alignment
// descending, (c) stable key order.
func orderedOffsets(ringRadius int, fwdS, fwdT float32) []tileOffset {
	n := (2*ringRadius + 1) * (2*ringRadius + 1)
	offs := make([]tileOffset, 0, n)
	for di := -ringRadius; di <= ringRadius; di++ {
		for dj := -ringRadius; dj <= ringRadius; dj++ {
			offs = append(offs, tileOffset{di: int64(di), dj: int64(dj)})
		}
	}

	sqDist := func(o tileOffset) int64 { return o.di*o.di + o.dj*o.dj }
	alignment := func(o tileOffset) float32 {
		return float32(o.di)*fwdS + float32(o.dj)*fwdT
	}

	sort.SliceStable(offs, func(i, j int) bool {
		di, dj := sqDist(offs[i]), sqDist(offs[j])
		if di != dj {
			return di < dj
		}
		ai, aj := alignment(offs[i]), alignment(offs[j])
		if ai != aj {
			return ai > aj
		}
		if offs[i].di != offs[j].di {
			return offs[i].di < offs[j].di
		}
		return offs[i].dj < offs[j].dj
	})
	return offs
}

// shellOffsets enumerates the radial shells for one tangent offset, from
// -kDown to +kUp inclusive, varied "inside" each (di, dj) per spec.md
// §4.5.2 step 2.
func shellOffsets(kDown, kUp int) []int64 {
	out := make([]int64, 0, kDown+kUp+1)
	for dk := -kDown; dk <= kUp; dk++ {
		out = append(out, int64(dk))
	}
	return out
}

// buildRingKeys expands a LoadRequest into the full ordered list of tile
// keys to generate and mesh (spec.md §4.5.2 steps 1-2).
func buildRingKeys(req LoadRequest) []core.FaceChunkKey {
	offs := orderedOffsets(req.RingRadius, req.FwdS, req.FwdT)
	shells := shellOffsets(req.KDown, req.KUp)

	keys := make([]core.FaceChunkKey, 0, len(offs)*len(shells))
	for _, o := range offs {
		for _, dk := range shells {
			keys = append(keys, core.NewFaceChunkKey(req.Face, req.CI+o.di, req.CJ+o.dj, req.CK+dk))
		}
	}
	return keys
}

// insideForwardCone reports whether a tile's chunk-center direction lies
// within a forward cone of half-angle coneDeg from camFwd (spec.md
// §4.5.2 step 4). forceLoad bypasses the check for debugging.
func insideForwardCone(key core.FaceChunkKey, cfg core.PlanetConfig, camFwd core.Vec3, coneDeg float32, forceLoad bool) bool {
	if forceLoad {
		return true
	}
	dir := tileCenterDirection(key, cfg)
	cosHalf := float32(math.Cos(float64(coneDeg) * math.Pi / 180))
	return dir.Dot(camFwd) >= cosHalf
}

func tileCenterDirection(key core.FaceChunkKey, cfg core.PlanetConfig) core.Vec3 {
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
	return core.Normalize(b.Right.Mul(u).Add(b.Up.Mul(v)).Add(b.Forward.Mul(w)))
}
