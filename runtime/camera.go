// Package runtime implements the World Runtime orchestrator of spec.md
// §2 and §4.7: camera update, face/ring scheduling with hysteresis,
// allow-region pruning, the edit application pipeline, frame transfer
// queues, and voxel picking.
package runtime

import (
	"math"

	"worldgenerator/core"
)

// CameraMode selects between the free-fly and walk camera models
// (spec.md §4.7.1).
type CameraMode int

const (
	ModeFree CameraMode = iota
	ModeWalk
)

// MovementAxes is the analog input for translation, in camera-local
// axes: Forward (+/- along look direction), Right, Up.
type MovementAxes struct {
	Forward, Right, Up float32
	Sprint             bool
}

// LookInput is the analog mouse/stick delta for orientation; Update
// scales it by CameraConfig.Sensitivity to get radians.
type LookInput struct {
	DX, DY float32
}

// Camera holds orientation and position state shared by both modes.
type Camera struct {
	Mode CameraMode

	Position core.Vec3
	Forward  core.Vec3
	Up       core.Vec3

	Yaw, Pitch float32 // free mode only

	FovDeg, NearM, FarM float32
}

// NewCamera builds a camera positioned at pos, looking along -Position
// (toward the planet center) as a sane default.
func NewCamera(pos core.Vec3, fovDeg, nearM, farM float32) *Camera {
	c := &Camera{
		Position: pos,
		Up:       core.Vec3{0, 1, 0},
		FovDeg:   fovDeg,
		NearM:    nearM,
		FarM:     farM,
	}
	c.Forward = core.Normalize(pos.Mul(-1))
	return c
}

// CameraSnapshot is the read-only view of camera state exposed to the
// host app (spec.md §6).
type CameraSnapshot struct {
	View, Projection core.Mat4
	Position         core.Vec3
	Forward          core.Vec3
	Up               core.Vec3
	FovDeg           float32
	Near, Far        float32
}

// Snapshot builds the renderer-facing view/projection matrices for the
// current camera state.
func (c *Camera) Snapshot(aspect float32) CameraSnapshot {
	view := core.LookAtMat(c.Position, c.Position.Add(c.Forward), c.Up)
	proj := core.PerspectiveMat(c.FovDeg*float32(math.Pi)/180, aspect, c.NearM, c.FarM)
	return CameraSnapshot{
		View: view, Projection: proj,
		Position: c.Position, Forward: c.Forward, Up: c.Up,
		FovDeg: c.FovDeg, Near: c.NearM, Far: c.FarM,
	}
}

// CameraConfig mirrors spec.md §6's Camera and Walk configuration
// sections.
type CameraConfig struct {
	InvertX, InvertY bool
	Sensitivity      float32
	Speed            float32

	WalkMode         bool
	EyeHeightM       float32
	WalkSpeed        float32
	WalkPitchMaxDeg  float32
	WalkSurfaceBiasM float32

	SurfacePushEnabled bool
	SurfacePushM       float32
}

const minMotionRad = 1e-5
const pitchClampMargin = 1 * math.Pi / 180 // 1 degree

// Update advances the camera per spec.md §4.7.1, dispatching to the
// free or walk model.
func (c *Camera) Update(dt float32, axes MovementAxes, look LookInput, cfg CameraConfig, terrainHeight func(dir core.Vec3) float64, seaLevelM float64, radiusM float64) {
	dx, dy := look.DX, look.DY
	if cfg.InvertX {
		dx = -dx
	}
	if cfg.InvertY {
		dy = -dy
	}
	dx *= cfg.Sensitivity
	dy *= cfg.Sensitivity
	if absf32(dx) < minMotionRad {
		dx = 0
	}
	if absf32(dy) < minMotionRad {
		dy = 0
	}

	if c.Mode == ModeWalk {
		c.updateWalk(dt, axes, dx, dy, cfg, terrainHeight, seaLevelM, radiusM)
	} else {
		c.updateFree(dt, axes, dx, dy, cfg)
	}
}

func (c *Camera) updateFree(dt float32, axes MovementAxes, dx, dy float32, cfg CameraConfig) {
	c.Yaw += dx
	c.Pitch += dy

	maxPitch := float32(math.Pi/2) - float32(pitchClampMargin)
	if c.Pitch > maxPitch {
		c.Pitch = maxPitch
	}
	if c.Pitch < -maxPitch {
		c.Pitch = -maxPitch
	}

	if dx != 0 || dy != 0 {
		cy, sy := float32(math.Cos(float64(c.Yaw))), float32(math.Sin(float64(c.Yaw)))
		cp, sp := float32(math.Cos(float64(c.Pitch))), float32(math.Sin(float64(c.Pitch)))
		c.Forward = core.Normalize(core.Vec3{cy * cp, sp, sy * cp})
	}
	c.Up = core.Vec3{0, 1, 0}

	right := core.Normalize(c.Forward.Cross(c.Up))
	up := core.Normalize(right.Cross(c.Forward))

	speed := cfg.Speed * dt
	if axes.Sprint {
		speed *= 2
	}
	c.Position = c.Position.
		Add(c.Forward.Mul(axes.Forward * speed)).
		Add(right.Mul(axes.Right * speed)).
		Add(up.Mul(axes.Up * speed))
}

func (c *Camera) updateWalk(dt float32, axes MovementAxes, dx, dy float32, cfg CameraConfig, terrainHeight func(dir core.Vec3) float64, seaLevelM float64, radiusM float64) {
	radius := c.Position.Len()
	if radius < 1e-6 {
		radius = 1e-6
	}
	up := core.Normalize(c.Position)
	c.Up = up

	// Project current forward onto the tangent plane to keep it orthogonal.
	fwd := c.Forward.Sub(up.Mul(c.Forward.Dot(up)))
	fwd = core.Normalize(fwd)
	right := core.Normalize(fwd.Cross(up))

	if dx != 0 {
		fwd = rotateAroundAxis(fwd, up, dx)
		right = core.Normalize(fwd.Cross(up))
	}
	if dy != 0 {
		candidate := rotateAroundAxis(fwd, right, dy)
		maxPitch := float32(cfg.WalkPitchMaxDeg) * float32(math.Pi) / 180
		sinPitch := candidate.Dot(up)
		if absf32(sinPitch) <= float32(math.Sin(float64(maxPitch))) {
			fwd = candidate
		}
	}
	c.Forward = core.Normalize(fwd)

	speed := cfg.WalkSpeed * dt
	if axes.Sprint {
		speed *= 2
	}
	step := right.Mul(axes.Right * speed).Add(fwd.Mul(axes.Forward * speed))
	stepLen := step.Len()
	if stepLen > 1e-9 {
		axisDir := core.Normalize(step.Cross(up))
		angle := stepLen / radius
		newUp := rotateAroundAxis(up, axisDir, -angle)
		c.Forward = rotateAroundAxis(c.Forward, axisDir, -angle)
		up = newUp
	}

	newRadius := radius
	if terrainHeight != nil {
		h := terrainHeight(up)
		base := radiusM + h
		if base < seaLevelM {
			base = seaLevelM
		}
		newRadius = float32(base) + cfg.EyeHeightM + cfg.WalkSurfaceBiasM
	}
	c.Position = up.Mul(newRadius)
}

// rotateAroundAxis rotates v by angle radians around unit axis (Rodrigues'
// rotation formula).
func rotateAroundAxis(v, axis core.Vec3, angle float32) core.Vec3 {
	cosA := float32(math.Cos(float64(angle)))
	sinA := float32(math.Sin(float64(angle)))
	term1 := v.Mul(cosA)
	term2 := axis.Cross(v).Mul(sinA)
	term3 := axis.Mul(axis.Dot(v) * (1 - cosA))
	return term1.Add(term2).Add(term3)
}

func absf32(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
