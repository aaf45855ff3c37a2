package main

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"worldgenerator/core"
	"worldgenerator/runtime"
)

// startPosition places the camera just above the configured sea level,
// looking down the +Z face — an arbitrary but deterministic starting
// point (spec.md doesn't mandate one).
func startPosition(cfg core.PlanetConfig) core.Vec3 {
	r := float32(cfg.SeaLevelM) + 10
	return core.Vec3{0, 0, r}
}

// pollInput reads raylib's keyboard/mouse state into one frame's
// WorldUpdateInput, mirroring the teacher's main.go fly-camera control
// scheme (WASD + space/ctrl + mouse look) but handed to
// runtime.World.Update instead of an ad hoc camera struct.
func pollInput(dt float32, world *runtime.World) runtime.WorldUpdateInput {
	var axes runtime.MovementAxes
	if rl.IsKeyDown(rl.KeyW) {
		axes.Forward += 1
	}
	if rl.IsKeyDown(rl.KeyS) {
		axes.Forward -= 1
	}
	if rl.IsKeyDown(rl.KeyD) {
		axes.Right += 1
	}
	if rl.IsKeyDown(rl.KeyA) {
		axes.Right -= 1
	}
	if rl.IsKeyDown(rl.KeySpace) {
		axes.Up += 1
	}
	if rl.IsKeyDown(rl.KeyLeftControl) {
		axes.Up -= 1
	}
	axes.Sprint = rl.IsKeyDown(rl.KeyLeftShift)

	delta := rl.GetMouseDelta()

	var toggle bool
	if rl.IsKeyPressed(rl.KeyTab) {
		toggle = true
	}

	return runtime.WorldUpdateInput{
		DT:         dt,
		Axes:       axes,
		Look:       runtime.LookInput{DX: delta.X, DY: delta.Y},
		ToggleMode: toggle,
	}
}

// handlePick casts a voxel pick from the camera and, on a hit, applies
// a single-voxel brush edit: left click digs (air), right click places
// (rock) — spec.md §4.7.4/§4.7.6.
func handlePick(world *runtime.World, place bool) {
	hit := world.PickRay(50)
	if !hit.Found {
		return
	}
	if place {
		placeHit := hit
		placeHit.SolidKey, placeHit.SolidLocal, placeHit.SolidWorld = hit.EmptyKey, hit.EmptyLocal, hit.EmptyWorld
		world.ApplyVoxelEdit(placeHit, core.ROCK, 1)
		return
	}
	world.ApplyVoxelEdit(hit, core.AIR, 1)
}
