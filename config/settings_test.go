package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFallsBackToDefaultsWhenFileMissing(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Planet.RadiusM != 1150 {
		t.Fatalf("RadiusM = %f, want default 1150", s.Planet.RadiusM)
	}
	if s.Streaming.RingRadius != 14 {
		t.Fatalf("RingRadius = %d, want default 14", s.Streaming.RingRadius)
	}
}

func TestLoadParsesOverridesFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	body := `{"planet":{"radiusM":2000},"streaming":{"ringRadius":5}}`
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Planet.RadiusM != 2000 {
		t.Fatalf("RadiusM = %f, want 2000", s.Planet.RadiusM)
	}
	if s.Streaming.RingRadius != 5 {
		t.Fatalf("RingRadius = %d, want 5", s.Streaming.RingRadius)
	}
	// Fields absent from the override JSON keep their defaults.
	if s.Planet.VoxelSizeM != 0.10 {
		t.Fatalf("VoxelSizeM = %f, want default 0.10", s.Planet.VoxelSizeM)
	}
}

func TestPlanetConfigProjection(t *testing.T) {
	s := Default()
	pc := s.PlanetConfig()
	if pc.RadiusM != s.Planet.RadiusM || pc.VoxelSizeM != s.Planet.VoxelSizeM {
		t.Fatalf("PlanetConfig projection mismatch: %+v vs %+v", pc, s.Planet)
	}
}

func TestRuntimeConfigProjection(t *testing.T) {
	s := Default()
	rc := s.RuntimeConfig()
	if rc.RingRadius != s.Streaming.RingRadius {
		t.Fatalf("RingRadius projection mismatch")
	}
	if rc.Camera.Speed != s.Camera.Speed {
		t.Fatalf("Camera.Speed projection mismatch")
	}
}
