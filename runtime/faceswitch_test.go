package runtime

import (
	"testing"

	"worldgenerator/core"
)

func TestFaceTrackerHoldsUnderHysteresis(t *testing.T) {
	f := NewFaceTracker(0, 0.75)

	// face 2's forward (0,1,0) edges out face 0's forward (1,0,0) by
	// about 0.014 in alignment — a real candidate switch, but short of
	// the 0.05 hysteresis margin, so the tracker must hold on face 0.
	dir := core.Normalize(core.Vec3{1, 1.02, 0})
	changed := f.Update(1.0/60, dir)
	if changed {
		t.Fatalf("unexpected switch within the hysteresis margin")
	}
	if f.CurrentFace() != 0 {
		t.Fatalf("current face = %d, want 0 (held)", f.CurrentFace())
	}
}

func TestFaceTrackerSwitchesAcrossClearBoundary(t *testing.T) {
	f := NewFaceTracker(0, 0.75)

	changed := f.Update(1.0/60, core.Vec3{0, 0, 1})
	if !changed {
		t.Fatalf("expected a face switch for a direction clearly owned by another face")
	}
	if !f.HasPreviousFace() {
		t.Fatalf("expected previous face to be retained after switch")
	}
	if f.PreviousFace() != 0 {
		t.Fatalf("previous face = %d, want 0", f.PreviousFace())
	}
}

func TestFaceTrackerGraceExpiresAfterKeepTime(t *testing.T) {
	f := NewFaceTracker(0, 0.1)
	f.Update(1.0/60, core.Vec3{0, 0, 1})
	if !f.HasPreviousFace() {
		t.Fatalf("expected previous face right after switch")
	}

	f.SetStreamFaceReady(true)
	for i := 0; i < 30; i++ {
		f.Update(1.0/60, f.lastDirHint())
	}
	if f.HasPreviousFace() {
		t.Fatalf("expected previous face to expire after keep time elapses")
	}
}

// lastDirHint keeps the tracker pinned to its current face across the
// grace-expiry loop above, since Update needs a direction argument.
func (f *FaceTracker) lastDirHint() core.Vec3 {
	return core.FaceBasisFor(f.currentFace).Forward
}

func TestAllowRegionContainsRespectsFaceAndBounds(t *testing.T) {
	r := AllowRegion{Face: 2, CI: 10, CJ: 10, CK: 5, RingRadius: 3, KDown: 1, KUp: 1}

	inside := core.NewFaceChunkKey(2, 12, 8, 6)
	if !r.Contains(inside) {
		t.Fatalf("expected key within ring/shell bounds to be contained")
	}

	wrongFace := core.NewFaceChunkKey(1, 10, 10, 5)
	if r.Contains(wrongFace) {
		t.Fatalf("expected a key on a different face to be excluded")
	}

	outsideRing := core.NewFaceChunkKey(2, 20, 10, 5)
	if r.Contains(outsideRing) {
		t.Fatalf("expected a key outside the ring radius to be excluded")
	}

	outsideShell := core.NewFaceChunkKey(2, 10, 10, 10)
	if r.Contains(outsideShell) {
		t.Fatalf("expected a key outside the shell band to be excluded")
	}
}

func TestBuildAllowRegionsGrowsMarginByOneWhenFaceNotReady(t *testing.T) {
	f := NewFaceTracker(0, 0.75)
	f.SetStreamFaceReady(false)

	regions := BuildAllowRegions(f, 0, 0, 0, 5, 2, 2, 3, 1)
	if len(regions) != 1 {
		t.Fatalf("expected one region with no previous face, got %d", len(regions))
	}
	if regions[0].RingRadius != 5+4 {
		t.Fatalf("ring radius = %d, want margin+1 = %d", regions[0].RingRadius, 5+4)
	}
	if regions[0].KDown != 2+2 {
		t.Fatalf("k-down = %d, want margin+1 = %d", regions[0].KDown, 2+2)
	}
}

func TestBuildAllowRegionsIncludesPreviousFaceDuringGrace(t *testing.T) {
	f := NewFaceTracker(0, 0.75)
	f.Update(1.0/60, core.Vec3{0, 0, 1})

	regions := BuildAllowRegions(f, 0, 0, 0, 5, 2, 2, 3, 1)
	if len(regions) != 2 {
		t.Fatalf("expected current + previous regions during grace period, got %d", len(regions))
	}
}

func TestInAnyRegionMatchesAcrossMultipleRegions(t *testing.T) {
	regions := []AllowRegion{
		{Face: 0, RingRadius: 2, KDown: 1, KUp: 1},
		{Face: 1, CI: 5, RingRadius: 2, KDown: 1, KUp: 1},
	}
	key := core.NewFaceChunkKey(1, 5, 0, 0)
	if !InAnyRegion(key, regions) {
		t.Fatalf("expected key to match second region")
	}
	miss := core.NewFaceChunkKey(2, 0, 0, 0)
	if InAnyRegion(miss, regions) {
		t.Fatalf("expected key on unrepresented face to miss")
	}
}
