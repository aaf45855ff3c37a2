package runtime

import (
	"worldgenerator/core"
)

const faceSwitchHysteresis = 0.05
const defaultFaceKeepTimeS = 0.75

// FaceTracker implements the face-switch hysteresis and allow-region
// bookkeeping of spec.md §4.7.2-4.7.3.
type FaceTracker struct {
	currentFace int
	prevFace    int
	hasPrev     bool
	keepTimer   float32
	faceKeepS   float32

	streamFaceReady bool
}

// NewFaceTracker starts tracking from an initial face with no previous
// face retained.
func NewFaceTracker(initialFace int, faceKeepTimeS float32) *FaceTracker {
	if faceKeepTimeS <= 0 {
		faceKeepTimeS = defaultFaceKeepTimeS
	}
	return &FaceTracker{currentFace: initialFace, faceKeepS: faceKeepTimeS, streamFaceReady: true}
}

// CurrentFace and PreviousFace report the tracker's state.
func (f *FaceTracker) CurrentFace() int { return f.currentFace }
func (f *FaceTracker) HasPreviousFace() bool { return f.hasPrev }
func (f *FaceTracker) PreviousFace() int { return f.prevFace }
func (f *FaceTracker) StreamFaceReady() bool { return f.streamFaceReady }

// SetStreamFaceReady lets the streaming manager signal that the new
// face's data has arrived, ending the allow-region grace period early.
func (f *FaceTracker) SetStreamFaceReady(ready bool) { f.streamFaceReady = ready }

// Update advances the face-keep timer and decides whether to switch
// faces this frame, based on forward-alignment hysteresis (spec.md
// §4.7.2). Returns true if the current face changed.
func (f *FaceTracker) Update(dt float32, dir core.Vec3) bool {
	if f.hasPrev {
		f.keepTimer -= dt
		if f.keepTimer <= 0 && f.streamFaceReady {
			f.hasPrev = false
		}
	}

	candidate := core.FaceFromDirection(dir)
	if candidate == f.currentFace {
		return false
	}

	currentAlign := core.ForwardAlignment(f.currentFace, dir)
	candidateAlign := core.ForwardAlignment(candidate, dir)
	if candidateAlign <= currentAlign+faceSwitchHysteresis {
		return false
	}

	f.prevFace = f.currentFace
	f.hasPrev = true
	f.keepTimer = f.faceKeepS
	f.streamFaceReady = false
	f.currentFace = candidate
	return true
}

// TileCenter computes (ci, cj, ck) for an eye position on a given face,
// per spec.md §4.7.2: floors of (eye·right/chunk_m, eye·up/chunk_m,
// |eye|/chunk_m).
func TileCenter(face int, eye core.Vec3, chunkM float64) (ci, cj, ck int64) {
	b := core.FaceBasisFor(face)
	s := float64(eye.Dot(b.Right))
	t := float64(eye.Dot(b.Up))
	r := float64(eye.Len())
	return floorDivF(s, chunkM), floorDivF(t, chunkM), floorDivF(r, chunkM)
}

func floorDivF(v, step float64) int64 {
	q := v / step
	f := int64(q)
	if q < 0 && float64(f) != q {
		f--
	}
	return f
}

// AllowRegion bounds a retained face's renderables: a ring radius around
// a tile center, expanded by a pruning margin, plus a shell band
// expanded by its own margin (spec.md §4.7.3).
type AllowRegion struct {
	Face           int
	CI, CJ, CK     int64
	RingRadius     int64
	KDown, KUp     int64
}

// Contains reports whether key falls inside the allow region.
func (r AllowRegion) Contains(key core.FaceChunkKey) bool {
	if key.Face != r.Face {
		return false
	}
	di := key.I - r.CI
	dj := key.J - r.CJ
	if di < -r.RingRadius || di > r.RingRadius || dj < -r.RingRadius || dj > r.RingRadius {
		return false
	}
	dk := key.K - r.CK
	return dk >= -r.KDown && dk <= r.KUp
}

// BuildAllowRegions constructs at most two AllowRegion records (current
// and, during the face-keep grace period, previous), each expanded by
// pruneMargin/kPruneMargin — grown by one more while the new face's
// stream data isn't ready yet (spec.md §4.7.3).
func BuildAllowRegions(tracker *FaceTracker, ci, cj, ck int64, ringRadius, kDown, kUp int, pruneMargin, kPruneMargin int) []AllowRegion {
	margin := int64(pruneMargin)
	kMargin := int64(kPruneMargin)
	if !tracker.StreamFaceReady() {
		margin++
		kMargin++
	}

	regions := []AllowRegion{{
		Face: tracker.CurrentFace(), CI: ci, CJ: cj, CK: ck,
		RingRadius: int64(ringRadius) + margin,
		KDown:      int64(kDown) + kMargin,
		KUp:        int64(kUp) + kMargin,
	}}

	if tracker.HasPreviousFace() {
		regions = append(regions, AllowRegion{
			Face: tracker.PreviousFace(), CI: ci, CJ: cj, CK: ck,
			RingRadius: int64(ringRadius) + margin,
			KDown:      int64(kDown) + kMargin,
			KUp:        int64(kUp) + kMargin,
		})
	}
	return regions
}

// InAnyRegion reports whether key is retained by any of regions.
func InAnyRegion(key core.FaceChunkKey, regions []AllowRegion) bool {
	for _, r := range regions {
		if r.Contains(key) {
			return true
		}
	}
	return false
}
