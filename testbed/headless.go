package testbed

import (
	"time"

	"github.com/tectonic3d/tectonic/engine/core"
	"github.com/tectonic3d/tectonic/engine/renderer/memory"
	"github.com/tectonic3d/tectonic/engine/upload"
)

// Emulated per-upload transfer cost for the recording device, so the
// headless comparison between sync and async modes is not a no-op.
const headlessUploadDelay = 500 * time.Microsecond

// Emulated frame present interval.
const headlessFrameInterval = 4 * time.Millisecond

// runHeadless benchmarks the upload path against the recording device.
// In async mode the frame loop keeps "presenting" while the worker
// uploads; the number of frames produced before the queue drains is the
// quantity the harness exists to measure. In sync mode all uploads block
// the frame loop up front.
func (a *App) runHeadless() error {
	device := memory.New()
	device.UploadDelay = headlessUploadDelay

	patches := a.generator.Patches()
	uploadClock := core.NewClock()
	uploadClock.Start()
	framesDuringUpload := 0

	if a.config.Mode == "async" {
		a.pipeline = upload.NewPipeline(device)
		if err := a.pipeline.Startup(); err != nil {
			return err
		}
		defer a.pipeline.Shutdown()

		for _, patch := range patches {
			if err := a.pipeline.SubmitUpload(patch.ID, patch.VertexBytes(), patch.IndexBytes()); err != nil {
				return err
			}
		}

		// Keep presenting frames while the worker drains the queue.
		for a.pipeline.Pending() > 0 {
			a.simulateFrame()
			framesDuringUpload++
		}
		if err := a.pipeline.Flush(flushTimeout); err != nil {
			return err
		}
		a.collectResults()
	} else {
		for _, patch := range patches {
			res, err := device.CreateMesh(patch.ID, patch.VertexBytes(), patch.IndexBytes())
			if err != nil {
				core.LogError("sync upload of patch %d failed: %s", patch.ID, err)
				continue
			}
			patch.Uploaded = true
			a.resources[patch.ID] = res
		}
	}

	uploadClock.Update()
	uploadSeconds := uploadClock.ElapsedSeconds()

	// Steady-state frames for the rest of the configured duration.
	deadline := time.Now().Add(time.Duration(a.config.DurationSeconds * float64(time.Second)))
	for time.Now().Before(deadline) {
		a.simulateFrame()
	}

	core.LogInfo("upload phase: %.3fs, frames presented during upload: %d (%d uploads recorded)",
		uploadSeconds, framesDuringUpload, device.UploadCount())
	a.report()
	return nil
}

// simulateFrame stands in for one presented frame: camera motion, draw
// accounting for every resident patch, and a fixed present interval.
func (a *App) simulateFrame() {
	a.monitor.BeginFrame()

	dt := float32(headlessFrameInterval.Seconds())
	a.camera.MoveForward(dt)

	for _, patch := range a.generator.Patches() {
		if _, ok := a.resources[patch.ID]; !ok {
			continue
		}
		a.monitor.AddDrawCalls(1)
		a.monitor.AddTriangles(patch.TriangleCount())
		a.monitor.AddVertices(len(patch.Vertices))
	}

	time.Sleep(headlessFrameInterval)
	a.monitor.EndFrame()
}
