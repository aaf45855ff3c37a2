package core

// Material is the closed set of voxel materials sampled by the base
// generator (spec.md §3). AIR is the sentinel non-solid value.
type Material uint16

const (
	AIR Material = iota
	ROCK
	DIRT
	WATER
	LAVA
)

// BaseSample is the pure result of sampling the procedural base field at a
// single voxel: (material, density). Density is only meaningful to the
// noise layer; the voxel layer only consumes Material.
type BaseSample struct {
	Material Material
	Density  float32
}

// FBMParams controls the fractal-brownian-motion terrain noise.
type FBMParams struct {
	Amplitude  float64
	Octaves    int
	Lacunarity float64
	Gain       float64
}

// PlanetConfig is immutable for the lifetime of a session. All sampling
// functions are pure in (PlanetConfig, voxel).
type PlanetConfig struct {
	RadiusM    float64
	VoxelSizeM float64
	SeaLevelM  float64
	Seed       uint32
	FBM        FBMParams
}

// DefaultPlanetConfig mirrors spec.md §6's default planet values.
func DefaultPlanetConfig() PlanetConfig {
	return PlanetConfig{
		RadiusM:    1150,
		VoxelSizeM: 0.10,
		SeaLevelM:  1135,
		Seed:       1,
		FBM: FBMParams{
			Amplitude:  1,
			Octaves:    5,
			Lacunarity: 2.0,
			Gain:       0.5,
		},
	}
}
