package telemetry

import (
	"os"
	"path/filepath"
	"testing"
)

func TestOpenProfileCSVWritesHeaderAndRows(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "profile.csv")

	p, err := OpenProfileCSV(path)
	if err != nil {
		t.Fatalf("OpenProfileCSV: %v", err)
	}
	if err := p.Write(ProfileRow{FrameIndex: 0, FrameMs: 16.6, GenMs: 1, MeshMs: 2, GeneratedN: 3, MeshedN: 2, QueuedResult: 1, UploadsN: 2}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(data) == 0 {
		t.Fatalf("expected non-empty csv file")
	}
}
