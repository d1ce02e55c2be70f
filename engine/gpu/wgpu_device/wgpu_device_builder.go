package wgpu_device

import "github.com/cogentcore/webgpu/wgpu"

// WGPUDeviceBuilderOption is a functional option for configuring a WGPUDevice via NewWGPUDevice.
type WGPUDeviceBuilderOption func(*WGPUDevice)

// WithSurface attaches a presentation surface created from the descriptor.
//
// Parameters:
//   - desc: the platform surface descriptor, typically from window.Window.SurfaceDescriptor
//
// Returns:
//   - WGPUDeviceBuilderOption: a function that applies the surface option to a device
func WithSurface(desc *wgpu.SurfaceDescriptor) WGPUDeviceBuilderOption {
	return func(d *WGPUDevice) {
		d.surfaceDescriptor = desc
	}
}

// WithForceFallbackAdapter requests the software fallback adapter.
//
// Parameters:
//   - force: true to force the fallback adapter
//
// Returns:
//   - WGPUDeviceBuilderOption: a function that applies the adapter option to a device
func WithForceFallbackAdapter(force bool) WGPUDeviceBuilderOption {
	return func(d *WGPUDevice) {
		d.forceFallbackAdapter = force
	}
}

// WithLabel sets the label prefix used for the device.
func WithLabel(label string) WGPUDeviceBuilderOption {
	return func(d *WGPUDevice) {
		d.label = label
	}
}

// WithClearColor sets the color ClearFrame clears to.
func WithClearColor(r, g, b, a float64) WGPUDeviceBuilderOption {
	return func(d *WGPUDevice) {
		d.clearColor = wgpu.Color{R: r, G: g, B: b, A: a}
	}
}
