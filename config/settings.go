// Package config loads the typed configuration surface of spec.md §6,
// generalizing the teacher's config/settings.go: the same open-or-
// defaults policy, the same json struct tags, the same "no file means
// defaults, log and continue" behavior — now covering camera/walk,
// streaming, pool, persistence, telemetry, and planet knobs instead of
// a single icosphere-level simulation toggle.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"worldgenerator/core"
	"worldgenerator/runtime"
)

// Settings is the full on-disk configuration document.
type Settings struct {
	Planet    PlanetSettings    `json:"planet"`
	Camera    CameraSettings    `json:"camera"`
	Walk      WalkSettings      `json:"walk"`
	Streaming StreamingSettings `json:"streaming"`
	Pools     PoolSettings      `json:"pools"`
	Persist   PersistSettings   `json:"persistence"`
	Telemetry TelemetrySettings `json:"telemetry"`
	Server    ServerSettings    `json:"server"`
}

type PlanetSettings struct {
	RadiusM    float64 `json:"radiusM"`
	VoxelSizeM float64 `json:"voxelSizeM"`
	SeaLevelM  float64 `json:"seaLevelM"`
	Seed       uint32  `json:"seed"`
	Amplitude  float64 `json:"fbmAmplitude"`
	Octaves    int     `json:"fbmOctaves"`
	Lacunarity float64 `json:"fbmLacunarity"`
	Gain       float64 `json:"fbmGain"`
}

type CameraSettings struct {
	InvertMouseX bool    `json:"invertMouseX"`
	InvertMouseY bool    `json:"invertMouseY"`
	Sensitivity  float32 `json:"camSensitivity"`
	Speed        float32 `json:"camSpeed"`
	FovDeg       float32 `json:"fovDeg"`
	NearM        float32 `json:"nearM"`
	FarM         float32 `json:"farM"`
}

type WalkSettings struct {
	WalkMode         bool    `json:"walkMode"`
	EyeHeightM       float32 `json:"eyeHeightM"`
	WalkSpeed        float32 `json:"walkSpeed"`
	WalkPitchMaxDeg  float32 `json:"walkPitchMaxDeg"`
	WalkSurfaceBiasM float32 `json:"walkSurfaceBiasM"`
	SurfacePushM     float32 `json:"surfacePushM"`
	SurfacePushOn    bool    `json:"surfacePushEnabled"`
}

type StreamingSettings struct {
	RingRadius           int     `json:"ringRadius"`
	PruneMargin          int     `json:"pruneMargin"`
	KDown                int     `json:"kDown"`
	KUp                  int     `json:"kUp"`
	KPruneMargin         int     `json:"kPruneMargin"`
	FaceKeepTimeS        float32 `json:"faceKeepTimeS"`
	UploadsPerFrameLimit int     `json:"uploadsPerFrameLimit"`
	RemeshPerFrameLimit  int     `json:"remeshPerFrameLimit"`
	LoaderThreads        int     `json:"loaderThreads"`
	StreamConeDeg        float32 `json:"streamConeDeg"`
}

type PoolSettings struct {
	DeviceLocalEnabled bool `json:"deviceLocalEnabled"`
	PoolVtxMB          int  `json:"poolVtxMb"`
	PoolIdxMB          int  `json:"poolIdxMb"`
	// PreferGLDrawIndirect is decoded from the settings file but is not
	// projected into the runtime config and nothing in this module reads
	// it; cmd/planetd always draws through gpu.RaylibRenderer and never
	// constructs a gpupool.GLDrawBuilder.
	PreferGLDrawIndirect bool `json:"preferGlDrawIndirect"`
}

type PersistSettings struct {
	SaveChunksEnabled bool   `json:"saveChunksEnabled"`
	RegionRoot        string `json:"regionRoot"`
}

type TelemetrySettings struct {
	LogStream         bool   `json:"logStream"`
	LogPool           bool   `json:"logPool"`
	ProfileCSVEnabled bool   `json:"profileCsvEnabled"`
	ProfileCSVPath    string `json:"profileCsvPath"`
}

type ServerSettings struct {
	StatusEnabled bool `json:"statusEnabled"`
	Port          int  `json:"port"`
}

// Default returns spec.md §6's documented defaults.
func Default() Settings {
	return Settings{
		Planet: PlanetSettings{
			RadiusM: 1150, VoxelSizeM: 0.10, SeaLevelM: 1135, Seed: 1,
			Amplitude: 1, Octaves: 5, Lacunarity: 2.0, Gain: 0.5,
		},
		Camera: CameraSettings{Sensitivity: 0.0025, Speed: 8, FovDeg: 70, NearM: 0.1, FarM: 100000},
		Walk: WalkSettings{
			EyeHeightM: 1.7, WalkSpeed: 3, WalkPitchMaxDeg: 80,
		},
		Streaming: StreamingSettings{
			RingRadius: 14, PruneMargin: 3, KDown: 3, KUp: 3, KPruneMargin: 1,
			FaceKeepTimeS: 0.75, UploadsPerFrameLimit: 16, RemeshPerFrameLimit: 4,
			LoaderThreads: 0, StreamConeDeg: 75,
		},
		Pools:   PoolSettings{PoolVtxMB: 256, PoolIdxMB: 128},
		Persist: PersistSettings{SaveChunksEnabled: true, RegionRoot: "regions"},
		Server:  ServerSettings{Port: 8080},
	}
}

// Load reads path, falling back to Default() if the file does not
// exist — the teacher's loadSettings "no settings.json found, using
// defaults" behavior, generalized to the full surface above.
func Load(path string) (Settings, error) {
	s := Default()

	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Printf("config: no %s found, using defaults\n", path)
			return s, nil
		}
		return s, err
	}
	defer file.Close()

	if err := json.NewDecoder(file).Decode(&s); err != nil {
		return s, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	fmt.Printf("config: loaded %s (planet radius %.0fm, voxel %.2fm)\n", path, s.Planet.RadiusM, s.Planet.VoxelSizeM)
	return s, nil
}

// PlanetConfig projects the planet section into core.PlanetConfig.
func (s Settings) PlanetConfig() core.PlanetConfig {
	return core.PlanetConfig{
		RadiusM:    s.Planet.RadiusM,
		VoxelSizeM: s.Planet.VoxelSizeM,
		SeaLevelM:  s.Planet.SeaLevelM,
		Seed:       s.Planet.Seed,
		FBM: core.FBMParams{
			Amplitude:  s.Planet.Amplitude,
			Octaves:    s.Planet.Octaves,
			Lacunarity: s.Planet.Lacunarity,
			Gain:       s.Planet.Gain,
		},
	}
}

// RuntimeConfig projects the camera/walk/streaming/pool/persistence
// sections into runtime.Config, ready for runtime.Initialize.
func (s Settings) RuntimeConfig() runtime.Config {
	return runtime.Config{
		Camera: runtime.CameraConfig{
			InvertX: s.Camera.InvertMouseX, InvertY: s.Camera.InvertMouseY,
			Sensitivity: s.Camera.Sensitivity, Speed: s.Camera.Speed,
			WalkMode: s.Walk.WalkMode, EyeHeightM: s.Walk.EyeHeightM,
			WalkSpeed: s.Walk.WalkSpeed, WalkPitchMaxDeg: s.Walk.WalkPitchMaxDeg,
			WalkSurfaceBiasM: s.Walk.WalkSurfaceBiasM,
			SurfacePushEnabled: s.Walk.SurfacePushOn, SurfacePushM: s.Walk.SurfacePushM,
		},
		RingRadius: s.Streaming.RingRadius, PruneMargin: s.Streaming.PruneMargin,
		KDown: s.Streaming.KDown, KUp: s.Streaming.KUp, KPruneMargin: s.Streaming.KPruneMargin,
		FaceKeepTimeS:        s.Streaming.FaceKeepTimeS,
		UploadsPerFrameLimit: s.Streaming.UploadsPerFrameLimit,
		RemeshPerFrameLimit:  s.Streaming.RemeshPerFrameLimit,
		LoaderThreads:        s.Streaming.LoaderThreads,
		StreamConeDeg:        s.Streaming.StreamConeDeg,
		PoolVtxMB:            s.Pools.PoolVtxMB, PoolIdxMB: s.Pools.PoolIdxMB,
		SaveChunksEnabled: s.Persist.SaveChunksEnabled, RegionRoot: s.Persist.RegionRoot,
	}
}
