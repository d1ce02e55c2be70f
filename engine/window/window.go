package window

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// Window is the viewer's on-screen target. It owns the surface the GPU device presents to and
// pumps the OS event queue on the goroutine that created it, forwarding the few events the
// viewer binds: resizes, scroll steps and key presses.
type Window interface {
	// SetUpdateCallback installs a function run once per pass of ProcessMessages, after events
	// are dispatched. The engine uses it to close the window when playback stops.
	//
	// Parameters:
	//   - callback: the per-pass function, or nil
	SetUpdateCallback(callback func())

	// SetResizeCallback installs the function told about framebuffer size changes, in pixels.
	// The viewer reconfigures the surface and the camera aspect from it.
	//
	// Parameters:
	//   - callback: receives the new framebuffer width and height
	SetResizeCallback(callback func(width, height int))

	// SetScrollCallback installs the function told about vertical scroll steps.
	//
	// Parameters:
	//   - callback: receives the step, positive when scrolling up
	SetScrollCallback(callback func(delta float32))

	// SetKeyDownCallback installs the function told about key presses and repeats. Codes match
	// the constants in package common. Without a callback, Esc closes the window.
	//
	// Parameters:
	//   - callback: receives the key code
	SetKeyDownCallback(callback func(keyCode uint32))

	// SurfaceDescriptor describes the native surface for wgpu_device.WithSurface.
	//
	// Returns:
	//   - *wgpu.SurfaceDescriptor: the descriptor, or nil once the window is closed
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// IsRunning reports whether the window is open and has not been asked to close.
	IsRunning() bool

	// Close destroys the window. Later calls do nothing.
	//
	// Returns:
	//   - error: always nil for an open or closed window
	Close() error

	// ProcessMessages dispatches events until the window closes.
	ProcessMessages()

	// Width is the framebuffer width in pixels.
	Width() int

	// Height is the framebuffer height in pixels.
	Height() int
}

// NewWindow opens a window on the calling goroutine, which must be the main one: the OS thread
// stays locked to it and every later call except Width and Height has to come from it.
//
// Parameters:
//   - options: a variadic list of WindowBuilderOption functions
//
// Returns:
//   - Window: the open window
//   - error: if the platform window could not be created
func NewWindow(options ...WindowBuilderOption) (Window, error) {
	w := &glfwWindow{
		title:     "oxy-scene",
		width:     1280,
		height:    720,
		minWidth:  600,
		minHeight: 200,
		maxWidth:  3840,
		maxHeight: 2160,
	}
	for _, opt := range options {
		opt(w)
	}
	// The requested size always fits the limits.
	w.minWidth, w.minHeight = min(w.minWidth, w.width), min(w.minHeight, w.height)
	w.maxWidth, w.maxHeight = max(w.maxWidth, w.width), max(w.maxHeight, w.height)

	if err := w.open(); err != nil {
		return nil, fmt.Errorf("open window %q: %w", w.title, err)
	}
	return w, nil
}
