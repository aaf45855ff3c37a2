// Command planetd is the demonstration binary for the planetary voxel
// streaming core: it opens a raylib window, wires config → runtime →
// stream → gpu.RaylibRenderer, and runs the frame loop, mirroring the
// teacher's main.go top-level wiring (load settings, build world, run
// frame loop, clean shutdown) and server.go's optional websocket
// telemetry endpoint.
package main

import (
	"flag"
	"fmt"
	"log"

	rl "github.com/gen2brain/raylib-go/raylib"

	"worldgenerator/config"
	"worldgenerator/gpu"
	"worldgenerator/gpupool"
	"worldgenerator/runtime"
	"worldgenerator/telemetry"
)

func main() {
	settingsPath := flag.String("config", "settings.json", "path to the settings JSON file")
	width := flag.Int("width", 1280, "window width")
	height := flag.Int("height", 720, "window height")
	statusAddr := flag.String("status-addr", "", "address to serve the websocket telemetry status feed on (empty disables it)")
	flag.Parse()

	settings, err := config.Load(*settingsPath)
	if err != nil {
		log.Fatalf("planetd: loading config: %v", err)
	}

	logger := telemetry.NewLogger(settings.Telemetry.LogStream, settings.Telemetry.LogPool)

	var profile *telemetry.ProfileCSV
	if settings.Telemetry.ProfileCSVEnabled {
		profile, err = telemetry.OpenProfileCSV(settings.Telemetry.ProfileCSVPath)
		if err != nil {
			logger.Errorf("opening profile csv: %v", err)
		} else {
			defer profile.Close()
		}
	}

	var status *telemetry.StatusServer
	if *statusAddr != "" {
		status = telemetry.NewStatusServer(logger)
		mux := newStatusMux(status)
		go func() {
			logger.Errorf("telemetry status server listening on %s", *statusAddr)
			if err := serveStatus(*statusAddr, mux); err != nil {
				logger.Errorf("status server: %v", err)
			}
		}()
	}

	planetCfg := settings.PlanetConfig()
	runtimeCfg := settings.RuntimeConfig()

	startPos := startPosition(planetCfg)

	fmt.Printf("=== Planetary Voxel Streaming Core ===\n")
	fmt.Printf("Planet radius: %.0f m, voxel size: %.2f m, sea level: %.0f m\n",
		planetCfg.RadiusM, planetCfg.VoxelSizeM, planetCfg.SeaLevelM)

	rl.InitWindow(int32(*width), int32(*height), "planetd")
	defer rl.CloseWindow()
	rl.SetTargetFPS(60)

	world := runtime.Initialize(planetCfg, runtimeCfg, startPos, "")
	defer world.Shutdown()

	renderer := gpu.NewRaylibRenderer()
	rendererHandles := make(map[gpupool.Handle]uint32) // pool Handle -> renderer firstIndex

	frameIndex := 0
	for !rl.WindowShouldClose() {
		dt := rl.GetFrameTime()

		input := pollInput(dt, world)
		world.Update(input)

		applyMeshTransfers(world, renderer, rendererHandles, runtimeCfg.UploadsPerFrameLimit, logger)

		if rl.IsMouseButtonPressed(rl.MouseButtonLeft) || rl.IsMouseButtonPressed(rl.MouseButtonRight) {
			handlePick(world, rl.IsMouseButtonPressed(rl.MouseButtonRight))
		}

		snap := world.SnapshotCamera(float32(*width) / float32(*height))
		rl.BeginDrawing()
		rl.ClearBackground(rl.Black)
		mvp := [16]float32(snap.Projection.Mul4(snap.View))
		rl.BeginMode3D(rl.Camera3D{
			Position:   rl.NewVector3(snap.Position[0], snap.Position[1], snap.Position[2]),
			Target:     rl.NewVector3(snap.Position[0]+snap.Forward[0], snap.Position[1]+snap.Forward[1], snap.Position[2]+snap.Forward[2]),
			Up:         rl.NewVector3(snap.Up[0], snap.Up[1], snap.Up[2]),
			Fovy:       snap.FovDeg,
			Projection: rl.CameraPerspective,
		})
		renderer.Record(mvp, drawItems(world, rendererHandles))
		rl.EndMode3D()
		rl.EndDrawing()

		if status != nil {
			status.Broadcast(telemetry.StatusFrame{
				Type:   "status",
				Stream: world.SnapshotStreamStatus(),
				Camera: snap,
			})
		}
		if profile != nil {
			st := world.SnapshotStreamStatus()
			profile.Write(telemetry.ProfileRow{
				FrameIndex: frameIndex, FrameMs: float64(dt) * 1000,
				GenMs: st.LastGenMs, MeshMs: st.LastMeshMs,
				GeneratedN: st.LastGeneratedChunks, MeshedN: st.LastMeshedChunks,
				QueuedResult: st.Queued, UploadsN: len(world.PendingMeshUploads()),
			})
		}
		frameIndex++
	}
}
