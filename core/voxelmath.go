package core

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Vec3 is a fixed-layout 3-vector built on mgl32 so that it can be passed
// straight to rendering collaborators without conversion.
type Vec3 = mgl32.Vec3

// Vec4 is a fixed-layout 4-vector.
type Vec4 = mgl32.Vec4

// Mat4 is a column-major 4x4 matrix.
type Mat4 = mgl32.Mat4

// Normalize returns v scaled to unit length, or the zero vector if v is
// (numerically) zero-length.
func Normalize(v Vec3) Vec3 {
	l := v.Len()
	if l < 1e-12 {
		return Vec3{}
	}
	return v.Mul(1.0 / l)
}

// PerspectiveMat builds a right-handed perspective projection matrix.
func PerspectiveMat(fovyRadians, aspect, near, far float32) Mat4 {
	return mgl32.Perspective(fovyRadians, aspect, near, far)
}

// LookAtMat builds a right-handed view matrix.
func LookAtMat(eye, center, up Vec3) Mat4 {
	return mgl32.LookAtV(eye, center, up)
}

// FaceBasis is the fixed (right, up, forward) orthonormal basis for one
// cubed-sphere face.
type FaceBasis struct {
	Right   Vec3
	Up      Vec3
	Forward Vec3
}

// faceBases defines the six cube faces in a winding consistent with
// spec.md §3: face 0..5 each own a right/up/forward triple such that
// Forward points away from the cube center through the face.
var faceBases = [6]FaceBasis{
	{Right: Vec3{0, 0, -1}, Up: Vec3{0, 1, 0}, Forward: Vec3{1, 0, 0}},  // +X
	{Right: Vec3{0, 0, 1}, Up: Vec3{0, 1, 0}, Forward: Vec3{-1, 0, 0}},  // -X
	{Right: Vec3{1, 0, 0}, Up: Vec3{0, 0, -1}, Forward: Vec3{0, 1, 0}},  // +Y
	{Right: Vec3{1, 0, 0}, Up: Vec3{0, 0, 1}, Forward: Vec3{0, -1, 0}},  // -Y
	{Right: Vec3{1, 0, 0}, Up: Vec3{0, 1, 0}, Forward: Vec3{0, 0, 1}},   // +Z
	{Right: Vec3{-1, 0, 0}, Up: Vec3{0, 1, 0}, Forward: Vec3{0, 0, -1}}, // -Z
}

// FaceBasisFor returns the basis for a given face id (0..5).
func FaceBasisFor(face int) FaceBasis {
	return faceBases[face&7%6]
}

// FaceFromDirection classifies a unit direction vector into the cube face
// whose forward axis has the largest dot product with it.
func FaceFromDirection(dir Vec3) int {
	best := -1
	bestDot := float32(math.Inf(-1))
	for f, b := range faceBases {
		d := dir.Dot(b.Forward)
		if d > bestDot {
			bestDot = d
			best = f
		}
	}
	return best
}

// DirectionFromFaceUV reconstructs the unit direction for face-local
// tangent coordinates (u,v) in (-1,1), inverse of the (s,t,r) -> dir
// projection used by the streaming manager (spec.md §4.5.3).
func DirectionFromFaceUV(face int, u, v float32) Vec3 {
	b := FaceBasisFor(face)
	w := float32(math.Sqrt(math.Max(0, float64(1-u*u-v*v))))
	dir := b.Right.Mul(u).Add(b.Up.Mul(v)).Add(b.Forward.Mul(w))
	return Normalize(dir)
}

// ForwardAlignment returns the dot product of a direction with a face's
// forward axis, used for face-switch hysteresis (spec.md §4.7.2).
func ForwardAlignment(face int, dir Vec3) float32 {
	return dir.Dot(FaceBasisFor(face).Forward)
}
