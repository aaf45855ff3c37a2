package runtime

import (
	"worldgenerator/core"
	"worldgenerator/gpupool"
)

// WorldUpdateInput bundles one frame's input for World.Update (spec.md
// §6: Runtime public operations).
type WorldUpdateInput struct {
	DT           float32
	Axes         MovementAxes
	Look         LookInput
	ToggleMode   bool
	ConfigChange *Config
}

// WorldUpdateResult reports what changed this frame.
type WorldUpdateResult struct {
	CameraChanged  bool
	ConfigChanged  bool
	StreamingDirty bool
}

// RenderableSnapshot is one entry of snapshot_renderables (spec.md §6).
type RenderableSnapshot struct {
	Key    core.FaceChunkKey
	Handle gpupool.Handle
	Center core.Vec3
	Radius float32
}

// RenderablesSnapshot is the full read-only scene view.
type RenderablesSnapshot struct {
	Camera      CameraSnapshot
	Chunks      []RenderableSnapshot
	AllowRegions []AllowRegion
}

// EditCommand is a staged brush edit awaiting application (spec.md
// §4.7.4).
type EditCommand struct {
	Hit         PickHit
	NewMaterial core.Material
	BrushDim    int
}

// MeshUpload is one pending GPU upload produced by the streaming
// manager and exposed via the frame transfer queue (spec.md §4.7.5).
type MeshUpload struct {
	Key    core.FaceChunkKey
	Handle gpupool.Handle
	Center core.Vec3
	Radius float32
}

// Config bundles the full external configuration surface of spec.md §6.
type Config struct {
	Camera CameraConfig

	RingRadius            int
	PruneMargin           int
	KDown, KUp            int
	KPruneMargin          int
	FaceKeepTimeS         float32
	UploadsPerFrameLimit  int
	RemeshPerFrameLimit   int
	LoaderThreads         int
	StreamConeDeg         float32

	PoolVtxMB int
	PoolIdxMB int

	SaveChunksEnabled bool
	RegionRoot        string
}

// DefaultConfig mirrors spec.md §6's documented defaults.
func DefaultConfig() Config {
	return Config{
		Camera: CameraConfig{
			Sensitivity: 0.0025,
			Speed:       8,
			WalkSpeed:   3,
			WalkPitchMaxDeg: 80,
			EyeHeightM:  1.7,
		},
		RingRadius:           14,
		PruneMargin:          3,
		KDown:                3,
		KUp:                  3,
		KPruneMargin:         1,
		FaceKeepTimeS:        0.75,
		UploadsPerFrameLimit: 16,
		RemeshPerFrameLimit:  4,
		LoaderThreads:        0,
		StreamConeDeg:        75,
		PoolVtxMB:            256,
		PoolIdxMB:            128,
		SaveChunksEnabled:    true,
		RegionRoot:           "regions",
	}
}
