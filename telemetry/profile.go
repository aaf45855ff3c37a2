package telemetry

import (
	"encoding/csv"
	"fmt"
	"os"
	"sync"
)

// ProfileCSV writes one row per frame of streaming/render timing,
// generalizing the teacher's ad hoc "SLOW FRAME: Total=%v (Sim=%v,
// Broadcast=%v)" printf diagnostics in server.go's simulationLoop into
// an actual per-frame CSV sink (spec.md §6: profile_csv_enabled,
// profile_csv_path).
type ProfileCSV struct {
	mu     sync.Mutex
	file   *os.File
	writer *csv.Writer
}

// ProfileRow is one frame's timing sample.
type ProfileRow struct {
	FrameIndex   int
	FrameMs      float64
	GenMs        float64
	MeshMs       float64
	GeneratedN   int
	MeshedN      int
	QueuedResult int
	UploadsN     int
}

var csvHeader = []string{"frame", "frame_ms", "gen_ms", "mesh_ms", "generated", "meshed", "queued_results", "uploads"}

// OpenProfileCSV creates (or truncates) path and writes the header row.
func OpenProfileCSV(path string) (*ProfileCSV, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("telemetry: open profile csv: %w", err)
	}
	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		f.Close()
		return nil, fmt.Errorf("telemetry: write profile csv header: %w", err)
	}
	w.Flush()
	return &ProfileCSV{file: f, writer: w}, nil
}

// Write appends one row and flushes, so a crash mid-run still leaves a
// readable file.
func (p *ProfileCSV) Write(row ProfileRow) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	record := []string{
		fmt.Sprintf("%d", row.FrameIndex),
		fmt.Sprintf("%.3f", row.FrameMs),
		fmt.Sprintf("%.3f", row.GenMs),
		fmt.Sprintf("%.3f", row.MeshMs),
		fmt.Sprintf("%d", row.GeneratedN),
		fmt.Sprintf("%d", row.MeshedN),
		fmt.Sprintf("%d", row.QueuedResult),
		fmt.Sprintf("%d", row.UploadsN),
	}
	if err := p.writer.Write(record); err != nil {
		return err
	}
	p.writer.Flush()
	return p.writer.Error()
}

// Close flushes and closes the underlying file.
func (p *ProfileCSV) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.writer.Flush()
	return p.file.Close()
}
