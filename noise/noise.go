// Package noise implements the deterministic hash-based value noise and FBM
// terrain sampler described in spec.md §2 ("Noise & Sampler"). Every
// function here is pure in (core.PlanetConfig, voxel/direction) so that
// generation workers can call it concurrently without coordination.
package noise

import (
	"math"

	"worldgenerator/core"
)

// hash32 is a deterministic integer hash (splitmix-style finalizer),
// grounded in the hash-mixing idiom used for bedrock placement in the
// pack's Minecraft-1.8.9-port chunk provider (xor-shift + large odd
// multiplier constants).
func hash32(x, y, z int64, seed uint32) uint32 {
	h := uint64(seed) + 0x9E3779B97F4A7C15
	h ^= uint64(x) * 0xBF58476D1CE4E5B9
	h ^= uint64(y) * 0x94D049BB133111EB
	h ^= uint64(z) * 0xD6E8FEB86659FD93
	h = (h ^ (h >> 31)) * 0xBF58476D1CE4E5B9
	h = (h ^ (h >> 27)) * 0x94D049BB133111EB
	h ^= h >> 31
	return uint32(h)
}

// hashFloat maps the hash of a lattice point to [0,1].
func hashFloat(x, y, z int64, seed uint32) float64 {
	return float64(hash32(x, y, z, seed)) / float64(math.MaxUint32)
}

func lerp(a, b, t float64) float64 { return a + (b-a)*t }

func smooth(t float64) float64 { return t * t * (3 - 2*t) }

// valueNoise3D samples smoothed-lattice value noise at a continuous 3D
// point, seeded per-session.
func valueNoise3D(x, y, z float64, seed uint32) float64 {
	x0, y0, z0 := math.Floor(x), math.Floor(y), math.Floor(z)
	ix, iy, iz := int64(x0), int64(y0), int64(z0)
	fx, fy, fz := smooth(x-x0), smooth(y-y0), smooth(z-z0)

	c000 := hashFloat(ix, iy, iz, seed)
	c100 := hashFloat(ix+1, iy, iz, seed)
	c010 := hashFloat(ix, iy+1, iz, seed)
	c110 := hashFloat(ix+1, iy+1, iz, seed)
	c001 := hashFloat(ix, iy, iz+1, seed)
	c101 := hashFloat(ix+1, iy, iz+1, seed)
	c011 := hashFloat(ix, iy+1, iz+1, seed)
	c111 := hashFloat(ix+1, iy+1, iz+1, seed)

	x00 := lerp(c000, c100, fx)
	x10 := lerp(c010, c110, fx)
	x01 := lerp(c001, c101, fx)
	x11 := lerp(c011, c111, fx)

	y0v := lerp(x00, x10, fy)
	y1v := lerp(x01, x11, fy)

	return lerp(y0v, y1v, fz)*2 - 1 // remap to [-1,1]
}

// FBM3D accumulates octaves of valueNoise3D per the config's FBM parameters.
func FBM3D(x, y, z float64, seed uint32, p core.FBMParams) float64 {
	sum := 0.0
	amp := p.Amplitude
	freq := 1.0
	norm := 0.0
	octaves := p.Octaves
	if octaves <= 0 {
		octaves = 1
	}
	lac := p.Lacunarity
	if lac == 0 {
		lac = 2.0
	}
	gain := p.Gain
	if gain == 0 {
		gain = 0.5
	}
	for o := 0; o < octaves; o++ {
		sum += amp * valueNoise3D(x*freq, y*freq, z*freq, seed+uint32(o)*101)
		norm += amp
		amp *= gain
		freq *= lac
	}
	if norm == 0 {
		return 0
	}
	return sum / norm
}

// TerrainHeightM returns the terrain height in meters above sea level for a
// unit direction on the planet, per spec.md §2.
func TerrainHeightM(cfg core.PlanetConfig, dir core.Vec3) float64 {
	n := FBM3D(float64(dir[0])*4, float64(dir[1])*4, float64(dir[2])*4, cfg.Seed, cfg.FBM)
	return n * 40.0 * cfg.FBM.Amplitude // meters of relief; tunable via FBM.Amplitude
}

// SampleBase is the pure (config, voxel) -> (material, density) function
// used by the streaming manager's generation phase (spec.md §4.5.2 step 3).
// voxel is an integer world-space voxel index; world radius is implied by
// |voxel| * VoxelSizeM.
func SampleBase(cfg core.PlanetConfig, voxel [3]int64) core.BaseSample {
	wx := float64(voxel[0]) * cfg.VoxelSizeM
	wy := float64(voxel[1]) * cfg.VoxelSizeM
	wz := float64(voxel[2]) * cfg.VoxelSizeM
	r := math.Sqrt(wx*wx + wy*wy + wz*wz)
	if r < 1e-9 {
		return core.BaseSample{Material: core.ROCK, Density: 1}
	}
	dir := core.Vec3{float32(wx / r), float32(wy / r), float32(wz / r)}

	surfaceR := cfg.RadiusM + TerrainHeightM(cfg, dir)
	density := float32(surfaceR - r)

	switch {
	case density > 0:
		return core.BaseSample{Material: core.ROCK, Density: density}
	case r <= cfg.SeaLevelM:
		return core.BaseSample{Material: core.WATER, Density: density}
	default:
		return core.BaseSample{Material: core.AIR, Density: density}
	}
}
