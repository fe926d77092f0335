package platform

import (
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/tectonic3d/tectonic/engine/core"
)

func init() {
	// GLFW event handling must run on the main OS thread
	runtime.LockOSThread()
}

// InputHandler receives window input events. Callbacks dispatch through
// the handler registered on the Platform instance; there is no
// package-level application pointer.
type InputHandler interface {
	OnKey(key glfw.Key, action glfw.Action)
	OnMouseMove(x, y float64)
	OnScroll(xoff, yoff float64)
	OnResize(width, height int)
}

type Platform struct {
	Window  *glfw.Window
	handler InputHandler
}

func New() *Platform {
	return &Platform{}
}

// Startup initializes GLFW and creates the primary window with its OpenGL
// context current on the calling thread.
func (p *Platform) Startup(applicationName string, width, height uint32) error {
	if err := glfw.Init(); err != nil {
		core.LogError("failed to initialize glfw: %s", err)
		return err
	}

	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)

	window, err := glfw.CreateWindow(int(width), int(height), applicationName, nil, nil)
	if err != nil {
		core.LogError("failed to create window: %s", err)
		return err
	}
	window.MakeContextCurrent()
	p.Window = window

	window.SetKeyCallback(func(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		if p.handler != nil {
			p.handler.OnKey(key, action)
		}
	})
	window.SetCursorPosCallback(func(w *glfw.Window, xpos, ypos float64) {
		if p.handler != nil {
			p.handler.OnMouseMove(xpos, ypos)
		}
	})
	window.SetScrollCallback(func(w *glfw.Window, xoff, yoff float64) {
		if p.handler != nil {
			p.handler.OnScroll(xoff, yoff)
		}
	})
	window.SetFramebufferSizeCallback(func(w *glfw.Window, width, height int) {
		if p.handler != nil {
			p.handler.OnResize(width, height)
		}
	})

	return nil
}

// SetInputHandler registers the handler window callbacks dispatch to.
func (p *Platform) SetInputHandler(handler InputHandler) {
	p.handler = handler
}

func (p *Platform) ShouldClose() bool {
	return p.Window.ShouldClose()
}

func (p *Platform) RequestClose() {
	p.Window.SetShouldClose(true)
}

func (p *Platform) SwapBuffers() {
	p.Window.SwapBuffers()
}

func (p *Platform) PollEvents() {
	glfw.PollEvents()
}

// Time returns the seconds elapsed since GLFW was initialized.
func (p *Platform) Time() float64 {
	return glfw.GetTime()
}

func (p *Platform) KeyPressed(key glfw.Key) bool {
	return p.Window.GetKey(key) == glfw.Press
}

func (p *Platform) Shutdown() error {
	glfw.Terminate()
	return nil
}
