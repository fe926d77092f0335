// Package gl implements the OpenGL graphics device. Contexts are GLFW
// windows; the worker context is an invisible 1x1 window created with the
// primary window as share, so both contexts see the same object namespace.
package gl

import (
	"fmt"
	"sync"
	"unsafe"

	gogl "github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/tectonic3d/tectonic/engine/core"
	"github.com/tectonic3d/tectonic/engine/renderer"
	"github.com/tectonic3d/tectonic/engine/terrain"
)

var vertexAttribOffsets = [4]struct {
	components int32
	offset     int
}{
	{3, int(unsafe.Offsetof(terrain.Vertex{}.Position))},
	{3, int(unsafe.Offsetof(terrain.Vertex{}.Normal))},
	{2, int(unsafe.Offsetof(terrain.Vertex{}.TexCoord))},
	{3, int(unsafe.Offsetof(terrain.Vertex{}.Color))},
}

type Device struct {
	primary  *glfw.Window
	initOnce sync.Once
	initErr  error
}

// NewDevice wraps an existing primary window whose context the shared
// worker context will be created against. The primary context must be
// current on the calling thread so the function pointers can be loaded.
func NewDevice(primary *glfw.Window) (*Device, error) {
	d := &Device{primary: primary}
	d.ensureInit()
	return d, d.initErr
}

// BeginFrame clears the framebuffer and sets up per-frame state on the
// primary context.
func (d *Device) BeginFrame(width, height int) {
	gogl.Viewport(0, 0, int32(width), int32(height))
	gogl.ClearColor(0.1, 0.1, 0.2, 1.0)
	gogl.Clear(gogl.COLOR_BUFFER_BIT | gogl.DEPTH_BUFFER_BIT)
	gogl.Enable(gogl.DEPTH_TEST)
}

type sharedContext struct {
	device *Device
	window *glfw.Window
}

func (c *sharedContext) MakeCurrent() {
	c.window.MakeContextCurrent()
	c.device.ensureInit()
}

func (c *sharedContext) DetachCurrent() {
	glfw.DetachCurrentContext()
}

func (c *sharedContext) Destroy() {
	c.window.Destroy()
}

// CreateSharedContext creates the invisible worker window. GLFW requires
// window creation on the main thread, so this runs producer-side; only
// MakeCurrent happens on the worker thread.
func (d *Device) CreateSharedContext() (renderer.Context, error) {
	glfw.WindowHint(glfw.Visible, glfw.False)
	window, err := glfw.CreateWindow(1, 1, "tectonic worker", nil, d.primary)
	if err != nil {
		return nil, fmt.Errorf("failed to create shared worker context: %w", err)
	}
	return &sharedContext{device: d, window: window}, nil
}

// ensureInit loads the OpenGL function pointers once a context is current.
func (d *Device) ensureInit() {
	d.initOnce.Do(func() {
		if err := gogl.Init(); err != nil {
			d.initErr = err
			core.LogError("failed to load OpenGL functions: %s", err)
		}
	})
}

func (d *Device) CreateMesh(id uint32, vertices, indices []byte) (*renderer.MeshResource, error) {
	if d.initErr != nil {
		return nil, d.initErr
	}

	var vao, vbo, ebo uint32
	gogl.GenVertexArrays(1, &vao)
	gogl.GenBuffers(1, &vbo)
	gogl.GenBuffers(1, &ebo)

	gogl.BindVertexArray(vao)

	gogl.BindBuffer(gogl.ARRAY_BUFFER, vbo)
	gogl.BufferData(gogl.ARRAY_BUFFER, len(vertices), ptrOrNil(vertices), gogl.STATIC_DRAW)

	gogl.BindBuffer(gogl.ELEMENT_ARRAY_BUFFER, ebo)
	gogl.BufferData(gogl.ELEMENT_ARRAY_BUFFER, len(indices), ptrOrNil(indices), gogl.STATIC_DRAW)

	for i, attrib := range vertexAttribOffsets {
		gogl.VertexAttribPointerWithOffset(uint32(i), attrib.components, gogl.FLOAT, false,
			int32(terrain.VertexSize), uintptr(attrib.offset))
		gogl.EnableVertexAttribArray(uint32(i))
	}

	gogl.BindVertexArray(0)

	if glErr := gogl.GetError(); glErr != gogl.NO_ERROR {
		gogl.DeleteVertexArrays(1, &vao)
		gogl.DeleteBuffers(1, &vbo)
		gogl.DeleteBuffers(1, &ebo)
		return nil, fmt.Errorf("mesh %d: device rejected upload (gl error 0x%x)", id, glErr)
	}

	return &renderer.MeshResource{
		ID:          id,
		VAO:         vao,
		VBO:         vbo,
		EBO:         ebo,
		VertexBytes: len(vertices),
		IndexBytes:  len(indices),
		Ready:       true,
	}, nil
}

func (d *Device) DestroyMesh(res *renderer.MeshResource) {
	gogl.DeleteVertexArrays(1, &res.VAO)
	gogl.DeleteBuffers(1, &res.VBO)
	gogl.DeleteBuffers(1, &res.EBO)
	res.Ready = false
}

// Draw issues the indexed draw call for an uploaded mesh. Producer-side
// only, after completion has been observed.
func (d *Device) Draw(res *renderer.MeshResource) {
	if !res.Ready {
		return
	}
	gogl.BindVertexArray(res.VAO)
	gogl.DrawElements(gogl.TRIANGLES, int32(res.IndexCount()), gogl.UNSIGNED_INT, nil)
	gogl.BindVertexArray(0)
}

func ptrOrNil(data []byte) unsafe.Pointer {
	if len(data) == 0 {
		return nil
	}
	return gogl.Ptr(data)
}
