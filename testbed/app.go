package testbed

import (
	"fmt"
	"time"

	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/tectonic3d/tectonic/engine/assets"
	"github.com/tectonic3d/tectonic/engine/core"
	"github.com/tectonic3d/tectonic/engine/math"
	"github.com/tectonic3d/tectonic/engine/platform"
	"github.com/tectonic3d/tectonic/engine/renderer"
	"github.com/tectonic3d/tectonic/engine/renderer/components"
	"github.com/tectonic3d/tectonic/engine/renderer/gl"
	"github.com/tectonic3d/tectonic/engine/terrain"
	"github.com/tectonic3d/tectonic/engine/upload"
)

const flushTimeout = 30 * time.Second

// App is the benchmark harness. It generates terrain, pushes it to the
// graphics device either synchronously (on the render thread) or through
// the async upload pipeline, and reports frame statistics for comparison.
type App struct {
	config Config
	runID  string

	platform  *platform.Platform
	camera    *components.Camera
	generator *terrain.Generator
	monitor   *core.FrameMonitor

	device        *gl.Device
	pipeline      *upload.Pipeline
	shaders       *assets.ShaderStore
	terrainShader *gl.Shader

	// Device resources keyed by patch id, populated from pipeline results
	// (async) or inline uploads (sync).
	resources map[uint32]*renderer.MeshResource
	flushed   bool

	width, height          int
	lastMouseX, lastMouseY float64
	firstMouse             bool
	lastFrame              float64
	globalScale            float32
	useLighting            bool
}

func New(config Config) *App {
	core.SetLogLevel(config.logLevel())
	return &App{
		config:      config,
		runID:       core.NewRunID(),
		camera:      components.NewCamera(),
		monitor:     core.NewFrameMonitor(),
		resources:   make(map[uint32]*renderer.MeshResource),
		width:       int(config.Window.Width),
		height:      int(config.Window.Height),
		firstMouse:  true,
		globalScale: 1.0,
		useLighting: true,
	}
}

func (a *App) Run() error {
	core.LogInfo("benchmark run %s (mode=%s, headless=%v)", a.runID, a.config.Mode, a.config.Headless)

	a.generator = terrain.NewGenerator(a.config.terrainConfig())
	a.generator.Generate()

	if a.config.Headless {
		return a.runHeadless()
	}
	return a.runWindowed()
}

func (a *App) runWindowed() error {
	a.platform = platform.New()
	if err := a.platform.Startup(a.config.Window.Title, a.config.Window.Width, a.config.Window.Height); err != nil {
		return err
	}
	defer a.platform.Shutdown()
	a.platform.SetInputHandler(a)

	device, err := gl.NewDevice(a.platform.Window)
	if err != nil {
		return err
	}
	a.device = device

	if err := a.initializeShaders(); err != nil {
		return err
	}
	defer a.shaders.Shutdown()
	defer a.terrainShader.Destroy()

	async := a.config.Mode == "async"
	if async {
		a.pipeline = upload.NewPipeline(a.device)
		if err := a.pipeline.Startup(); err != nil {
			return err
		}
		defer a.pipeline.Shutdown()

		for _, patch := range a.generator.Patches() {
			if err := a.pipeline.SubmitUpload(patch.ID, patch.VertexBytes(), patch.IndexBytes()); err != nil {
				return err
			}
		}
	}

	a.lastFrame = a.platform.Time()

	for !a.platform.ShouldClose() {
		now := a.platform.Time()
		dt := float32(now - a.lastFrame)
		a.lastFrame = now

		a.monitor.BeginFrame()

		a.handleMovement(dt)
		a.recompileIfDirty()

		if async {
			// Draw calls against worker-created resources are only safe
			// once completion has been observed.
			if !a.flushed {
				if err := a.pipeline.Flush(flushTimeout); err != nil {
					return fmt.Errorf("initial upload flush: %w", err)
				}
				a.collectResults()
				a.flushed = true
			}
		} else {
			a.uploadPendingSync()
		}

		a.render()

		a.monitor.EndFrame()
		a.platform.SwapBuffers()
		a.platform.PollEvents()
	}

	a.report()
	return nil
}

func (a *App) initializeShaders() error {
	shaders, err := assets.NewShaderStore()
	if err != nil {
		return err
	}
	if err := shaders.Initialize(a.config.ShaderDir); err != nil {
		return err
	}
	a.shaders = shaders

	return a.compileTerrainShader()
}

func (a *App) compileTerrainShader() error {
	vertexSrc, ok := a.shaders.Source("basic.vert")
	if !ok {
		return fmt.Errorf("shader source 'basic.vert' not found in %s", a.config.ShaderDir)
	}
	fragmentSrc, ok := a.shaders.Source("terrain.frag")
	if !ok {
		return fmt.Errorf("shader source 'terrain.frag' not found in %s", a.config.ShaderDir)
	}

	shader, err := gl.NewShader(vertexSrc, fragmentSrc)
	if err != nil {
		return err
	}
	if a.terrainShader != nil {
		a.terrainShader.Destroy()
	}
	a.terrainShader = shader
	return nil
}

func (a *App) recompileIfDirty() {
	if a.shaders.ConsumeDirty("basic.vert") || a.shaders.ConsumeDirty("terrain.frag") {
		if err := a.compileTerrainShader(); err != nil {
			core.LogWarn("shader recompile failed, keeping previous program: %s", err)
		}
	}
}

// collectResults moves pipeline outcomes into the drawable resource set.
func (a *App) collectResults() {
	failed := 0
	for _, result := range a.pipeline.DrainResults() {
		if !result.Succeeded() {
			failed++
			continue
		}
		if result.Resource != nil {
			a.resources[result.ResourceID] = result.Resource
		}
	}
	if failed > 0 {
		core.LogWarn("%d patch uploads failed and will not be rendered", failed)
	}
}

// uploadPendingSync is the single-threaded fallback: patches are uploaded
// on the render thread the first frame they are needed.
func (a *App) uploadPendingSync() {
	for _, patch := range a.generator.Patches() {
		if patch.Uploaded {
			continue
		}
		res, err := a.device.CreateMesh(patch.ID, patch.VertexBytes(), patch.IndexBytes())
		if err != nil {
			core.LogError("sync upload of patch %d failed: %s", patch.ID, err)
			continue
		}
		patch.Uploaded = true
		a.resources[patch.ID] = res
		a.monitor.AddVBOBytes(uint64(res.VertexBytes + res.IndexBytes))
	}
}

func (a *App) render() {
	a.device.BeginFrame(a.width, a.height)

	aspect := float32(a.width) / float32(a.height)
	a.terrainShader.Use()
	a.terrainShader.SetMat4("view", a.camera.View())
	a.terrainShader.SetMat4("projection", math.NewMat4Perspective(math.DegToRad(45), aspect, 0.1, 1000.0))
	a.terrainShader.SetMat4("model", math.NewMat4Scale(a.globalScale))
	a.terrainShader.SetVec3("lightPos", math.NewVec3(50, 50, 50))
	a.terrainShader.SetVec3("lightColor", math.NewVec3(1, 1, 1))
	a.terrainShader.SetVec3("viewPos", a.camera.Position)
	if a.useLighting {
		a.terrainShader.SetInt("useLighting", 1)
	} else {
		a.terrainShader.SetInt("useLighting", 0)
	}

	for _, patch := range a.generator.Patches() {
		res, ok := a.resources[patch.ID]
		if !ok {
			continue
		}
		a.device.Draw(res)
		a.monitor.AddDrawCalls(1)
		a.monitor.AddTriangles(patch.TriangleCount())
		a.monitor.AddVertices(len(patch.Vertices))
	}
}

func (a *App) handleMovement(dt float32) {
	if a.platform.KeyPressed(glfw.KeyW) {
		a.camera.MoveForward(dt)
	}
	if a.platform.KeyPressed(glfw.KeyS) {
		a.camera.MoveForward(-dt)
	}
	if a.platform.KeyPressed(glfw.KeyA) {
		a.camera.Strafe(-dt)
	}
	if a.platform.KeyPressed(glfw.KeyD) {
		a.camera.Strafe(dt)
	}
}

func (a *App) report() {
	a.monitor.Report(fmt.Sprintf("run %s (%s)", a.runID, a.config.Mode))
	if a.pipeline != nil {
		core.LogInfo("pipeline processed %d tasks, queue depth at exit %d",
			a.pipeline.ProcessedCount(), a.pipeline.QueueDepth())
	}
}

// platform.InputHandler implementation.

func (a *App) OnKey(key glfw.Key, action glfw.Action) {
	if action != glfw.Press {
		return
	}
	switch key {
	case glfw.KeyEscape:
		a.platform.RequestClose()
	case glfw.KeyL:
		a.useLighting = !a.useLighting
	case glfw.KeyEqual:
		a.globalScale += 0.1
	case glfw.KeyMinus:
		a.globalScale -= 0.1
	case glfw.KeyP:
		a.monitor.Report("interim")
	}
}

func (a *App) OnMouseMove(x, y float64) {
	if a.firstMouse {
		a.lastMouseX, a.lastMouseY = x, y
		a.firstMouse = false
		return
	}
	dx := float32(x - a.lastMouseX)
	dy := float32(a.lastMouseY - y)
	a.lastMouseX, a.lastMouseY = x, y
	a.camera.Look(dx, dy)
}

func (a *App) OnScroll(_, yoff float64) {
	a.camera.Speed = math.Clamp(a.camera.Speed+float32(yoff), 0.5, 50.0)
}

func (a *App) OnResize(width, height int) {
	if width > 0 && height > 0 {
		a.width, a.height = width, height
	}
}
