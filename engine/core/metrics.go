package core

import (
	"fmt"
	"sync"
	"time"

	"github.com/tectonic3d/tectonic/engine/containers"
)

// Number of frames in the rolling average window.
const frameHistorySize = 60

// FrameStats is a point-in-time copy of a monitor's counters.
type FrameStats struct {
	FPS          float64
	FrameTimeMS  float64
	MinFrameMS   float64
	MaxFrameMS   float64
	DrawCalls    int
	Triangles    int
	Vertices     int
	VBOBytes     uint64
	TotalRuntime time.Duration
}

// FrameMonitor accumulates frame timing and rendering statistics. Safe for
// concurrent use; the producer and worker threads keep separate monitors.
type FrameMonitor struct {
	mu sync.Mutex

	history    *containers.RingQueue[float64]
	frameStart time.Time
	startTime  time.Time

	fps         float64
	frameTimeMS float64
	minFrameMS  float64
	maxFrameMS  float64

	drawCalls int
	triangles int
	vertices  int
	vboBytes  uint64
}

func NewFrameMonitor() *FrameMonitor {
	return &FrameMonitor{
		history:    containers.NewRingQueue[float64](frameHistorySize),
		startTime:  time.Now(),
		minFrameMS: 1000.0,
	}
}

func (fm *FrameMonitor) BeginFrame() {
	fm.mu.Lock()
	fm.frameStart = time.Now()
	fm.mu.Unlock()
}

func (fm *FrameMonitor) EndFrame() {
	fm.mu.Lock()
	defer fm.mu.Unlock()

	frameMS := float64(time.Since(fm.frameStart).Microseconds()) / 1000.0

	if fm.history.IsFull() {
		fm.history.Dequeue()
	}
	fm.history.Enqueue(frameMS)

	if frameMS < fm.minFrameMS {
		fm.minFrameMS = frameMS
	}
	if frameMS > fm.maxFrameMS {
		fm.maxFrameMS = frameMS
	}

	// Average over the window, then convert to frames per second.
	total := 0.0
	fm.history.Each(func(ms float64) {
		total += ms
	})
	fm.frameTimeMS = total / float64(fm.history.Len())
	if fm.frameTimeMS > 0 {
		fm.fps = 1000.0 / fm.frameTimeMS
	}
}

func (fm *FrameMonitor) AddDrawCalls(count int) {
	fm.mu.Lock()
	fm.drawCalls += count
	fm.mu.Unlock()
}

func (fm *FrameMonitor) AddTriangles(count int) {
	fm.mu.Lock()
	fm.triangles += count
	fm.mu.Unlock()
}

func (fm *FrameMonitor) AddVertices(count int) {
	fm.mu.Lock()
	fm.vertices += count
	fm.mu.Unlock()
}

func (fm *FrameMonitor) AddVBOBytes(bytes uint64) {
	fm.mu.Lock()
	fm.vboBytes += bytes
	fm.mu.Unlock()
}

func (fm *FrameMonitor) Reset() {
	fm.mu.Lock()
	defer fm.mu.Unlock()
	fm.history = containers.NewRingQueue[float64](frameHistorySize)
	fm.startTime = time.Now()
	fm.fps = 0
	fm.frameTimeMS = 0
	fm.minFrameMS = 1000.0
	fm.maxFrameMS = 0
	fm.drawCalls = 0
	fm.triangles = 0
	fm.vertices = 0
	fm.vboBytes = 0
}

func (fm *FrameMonitor) Stats() FrameStats {
	fm.mu.Lock()
	defer fm.mu.Unlock()
	return FrameStats{
		FPS:          fm.fps,
		FrameTimeMS:  fm.frameTimeMS,
		MinFrameMS:   fm.minFrameMS,
		MaxFrameMS:   fm.maxFrameMS,
		DrawCalls:    fm.drawCalls,
		Triangles:    fm.triangles,
		Vertices:     fm.vertices,
		VBOBytes:     fm.vboBytes,
		TotalRuntime: time.Since(fm.startTime),
	}
}

// Report logs a summary of the collected statistics.
func (fm *FrameMonitor) Report(label string) {
	s := fm.Stats()
	LogInfo("=== %s performance report ===", label)
	LogInfo("total runtime: %.1fs", s.TotalRuntime.Seconds())
	LogInfo("average FPS: %.2f", s.FPS)
	LogInfo("frame time avg/min/max: %.2f / %.2f / %.2f ms", s.FrameTimeMS, s.MinFrameMS, s.MaxFrameMS)
	LogInfo("draw calls: %d, triangles: %d, vertices: %d", s.DrawCalls, s.Triangles, s.Vertices)
	LogInfo("VBO memory: %s", FormatBytes(s.VBOBytes))

	if secs := s.TotalRuntime.Seconds(); secs > 1 {
		LogInfo("throughput: %.1f draw calls/s, %.0f triangles/s",
			float64(s.DrawCalls)/secs, float64(s.Triangles)/secs)
	}
}

// FormatBytes renders a byte count with a binary-unit suffix.
func FormatBytes(bytes uint64) string {
	suffixes := []string{"B", "KB", "MB", "GB", "TB"}
	size := float64(bytes)
	idx := 0
	for size >= 1024.0 && idx < len(suffixes)-1 {
		size /= 1024.0
		idx++
	}
	return fmt.Sprintf("%.2f %s", size, suffixes[idx])
}
