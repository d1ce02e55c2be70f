package window

import (
	"runtime"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"
)

type glfwWindow struct {
	title               string
	width, height       int
	minWidth, minHeight int
	maxWidth, maxHeight int

	win    *glfw.Window
	closed bool

	onUpdate  func()
	onResize  func(width, height int)
	onScroll  func(delta float32)
	onKeyDown func(keyCode uint32)
}

var _ Window = &glfwWindow{}

// open initializes glfw and creates a window without a GL context; the GPU device draws to it
// through a WebGPU surface.
func (w *glfwWindow) open() error {
	runtime.LockOSThread()

	if err := glfw.Init(); err != nil {
		return err
	}
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)

	win, err := glfw.CreateWindow(w.width, w.height, w.title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return err
	}
	win.SetSizeLimits(w.minWidth, w.minHeight, w.maxWidth, w.maxHeight)
	w.win = win

	win.SetKeyCallback(w.handleKey)
	win.SetScrollCallback(func(_ *glfw.Window, _, yoff float64) {
		if w.onScroll != nil {
			w.onScroll(float32(yoff))
		}
	})
	// The surface is sized in framebuffer pixels, which differ from window units on high-DPI
	// displays.
	win.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		w.width, w.height = width, height
		if w.onResize != nil {
			w.onResize(width, height)
		}
	})
	w.width, w.height = win.GetFramebufferSize()
	return nil
}

func (w *glfwWindow) handleKey(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
	if action != glfw.Press && action != glfw.Repeat {
		return
	}
	if w.onKeyDown == nil {
		if key == glfw.KeyEscape {
			w.win.SetShouldClose(true)
		}
		return
	}
	w.onKeyDown(uint32(key))
}

func (w *glfwWindow) SetUpdateCallback(callback func()) {
	w.onUpdate = callback
}

func (w *glfwWindow) SetResizeCallback(callback func(width, height int)) {
	w.onResize = callback
}

func (w *glfwWindow) SetScrollCallback(callback func(delta float32)) {
	w.onScroll = callback
}

func (w *glfwWindow) SetKeyDownCallback(callback func(keyCode uint32)) {
	w.onKeyDown = callback
}

func (w *glfwWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	if w.closed {
		return nil
	}
	return wgpuglfw.GetSurfaceDescriptor(w.win)
}

func (w *glfwWindow) IsRunning() bool {
	return !w.closed && !w.win.ShouldClose()
}

func (w *glfwWindow) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	w.win.Destroy()
	glfw.Terminate()
	return nil
}

func (w *glfwWindow) ProcessMessages() {
	for w.IsRunning() {
		glfw.PollEvents()
		if w.onUpdate != nil {
			w.onUpdate()
		}
		runtime.Gosched()
	}
}

func (w *glfwWindow) Width() int {
	return w.width
}

func (w *glfwWindow) Height() int {
	return w.height
}
