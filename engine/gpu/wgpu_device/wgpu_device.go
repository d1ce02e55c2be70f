// Package wgpu_device implements gpu.Device on top of WebGPU.
package wgpu_device

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/document"
	"github.com/Carmen-Shannon/oxy-scene/engine/gpu"

	"github.com/cogentcore/webgpu/wgpu"
)

// copyAlignment is the byte alignment wgpu requires for buffer writes.
const copyAlignment = 4

// textureEntry groups the objects created for one texture handle.
type textureEntry struct {
	texture *wgpu.Texture
	view    *wgpu.TextureView
	sampler *wgpu.Sampler
}

// vertexLayout is the pipeline-facing description of a primitive's bindings.
type vertexLayout struct {
	topology    wgpu.PrimitiveTopology
	buffers     []wgpu.VertexBufferLayout
	bindings    []gpu.Handle
	offsets     []uint64
	index       gpu.Handle
	indexFormat wgpu.IndexFormat
	indexOffset uint64
}

// WGPUDevice is a gpu.Device backed by a WebGPU adapter and device.
// It optionally owns a presentation surface so a viewer can clear and present frames.
type WGPUDevice struct {
	mu *sync.Mutex

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue
	surface  *wgpu.Surface

	surfaceDescriptor    *wgpu.SurfaceDescriptor
	forceFallbackAdapter bool
	label                string
	clearColor           wgpu.Color

	next     gpu.Handle
	buffers  map[gpu.Handle]*wgpu.Buffer
	textures map[gpu.Handle]*textureEntry
	layouts  map[gpu.Handle]*vertexLayout

	frameSurface *wgpu.SurfaceTexture
	frameView    *wgpu.TextureView
	closed       bool
}

var _ gpu.Device = &WGPUDevice{}

// NewWGPUDevice creates a WebGPU instance, requests an adapter and opens a device.
// Without WithSurface the device is headless.
//
// Parameters:
//   - options: a variadic list of WGPUDeviceBuilderOption functions
//
// Returns:
//   - *WGPUDevice: the opened device
//   - error: error if no adapter or device is available
func NewWGPUDevice(options ...WGPUDeviceBuilderOption) (*WGPUDevice, error) {
	runtime.LockOSThread()
	d := &WGPUDevice{
		mu:         &sync.Mutex{},
		label:      "oxy-scene",
		clearColor: wgpu.Color{R: 0.1, G: 0.1, B: 0.1, A: 1.0},
		buffers:    make(map[gpu.Handle]*wgpu.Buffer),
		textures:   make(map[gpu.Handle]*textureEntry),
		layouts:    make(map[gpu.Handle]*vertexLayout),
	}
	for _, option := range options {
		option(d)
	}

	d.instance = wgpu.CreateInstance(nil)
	if d.surfaceDescriptor != nil {
		d.surface = d.instance.CreateSurface(d.surfaceDescriptor)
	}

	a, err := d.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: d.forceFallbackAdapter,
		CompatibleSurface:    d.surface,
	})
	if err != nil {
		d.instance.Release()
		return nil, fmt.Errorf("request adapter: %w", err)
	}
	d.adapter = a

	dev, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: d.label + " Device",
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: wgpu.DefaultLimits(),
		},
	})
	if err != nil {
		a.Release()
		d.instance.Release()
		return nil, fmt.Errorf("request device: %w", err)
	}
	d.device = dev
	d.queue = dev.GetQueue()

	return d, nil
}

func (d *WGPUDevice) CreateBuffer(desc gpu.BufferDescriptor) (gpu.Handle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return 0, gpu.ErrDeviceClosed
	}

	var usage wgpu.BufferUsage
	switch desc.Usage {
	case gpu.UsageVertex:
		usage = wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst
	case gpu.UsageIndex:
		usage = wgpu.BufferUsageIndex | wgpu.BufferUsageCopyDst
	default:
		return 0, fmt.Errorf("%w: buffer %q has usage %s", gpu.ErrInvalidDescriptor, desc.Label, desc.Usage)
	}

	data := desc.Data
	if pad := len(data) % copyAlignment; pad != 0 || len(data) == 0 {
		data = make([]byte, len(desc.Data)+copyAlignment-pad)
		copy(data, desc.Data)
	}

	buf, err := d.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label:            desc.Label,
		Size:             uint64(len(data)),
		Usage:            usage,
		MappedAtCreation: false,
	})
	if err != nil {
		return 0, err
	}
	d.queue.WriteBuffer(buf, 0, data)

	h := d.allocate()
	d.buffers[h] = buf
	return h, nil
}

func (d *WGPUDevice) CreateTexture(desc gpu.TextureDescriptor) (gpu.Handle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return 0, gpu.ErrDeviceClosed
	}
	if desc.Width <= 0 || desc.Height <= 0 || len(desc.Pixels) != desc.Width*desc.Height*4 {
		return 0, fmt.Errorf("%w: texture %q is %dx%d with %d bytes", gpu.ErrInvalidDescriptor, desc.Label, desc.Width, desc.Height, len(desc.Pixels))
	}

	width, height := uint32(desc.Width), uint32(desc.Height)
	tex, err := d.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:     desc.Label,
		Usage:     wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
		Dimension: wgpu.TextureDimension2D,
		Size: wgpu.Extent3D{
			Width:              width,
			Height:             height,
			DepthOrArrayLayers: 1,
		},
		Format:        wgpu.TextureFormatRGBA8UnormSrgb,
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		return 0, err
	}

	d.queue.WriteTexture(
		&wgpu.ImageCopyTexture{
			Texture:  tex,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{},
			Aspect:   wgpu.TextureAspectAll,
		},
		desc.Pixels,
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  width * 4,
			RowsPerImage: height,
		},
		&wgpu.Extent3D{
			Width:              width,
			Height:             height,
			DepthOrArrayLayers: 1,
		},
	)

	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return 0, err
	}

	staging := samplerStagingData(desc.Sampler)
	samp, err := d.device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         desc.Label + " Sampler",
		AddressModeU:  staging.AddressModeU,
		AddressModeV:  staging.AddressModeV,
		AddressModeW:  staging.AddressModeW,
		MagFilter:     staging.MagFilter,
		MinFilter:     staging.MinFilter,
		MipmapFilter:  staging.MipmapFilter,
		LodMinClamp:   staging.LodMinClamp,
		LodMaxClamp:   common.Coalesce(staging.LodMaxClamp, 32.0),
		MaxAnisotropy: common.Coalesce(staging.MaxAnisotropy, 1),
	})
	if err != nil {
		view.Release()
		tex.Release()
		return 0, err
	}

	h := d.allocate()
	d.textures[h] = &textureEntry{texture: tex, view: view, sampler: samp}
	return h, nil
}

func (d *WGPUDevice) CreateVertexLayout(desc gpu.VertexLayoutDescriptor) (gpu.Handle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return 0, gpu.ErrDeviceClosed
	}

	topology, ok := primitiveTopology(desc.Mode)
	if !ok {
		return 0, fmt.Errorf("%w: layout %q uses %s topology", gpu.ErrInvalidDescriptor, desc.Label, desc.Mode)
	}

	layout := &vertexLayout{topology: topology}
	for _, attr := range desc.Attributes {
		if _, ok := d.buffers[attr.Buffer]; !ok {
			return 0, fmt.Errorf("layout %q slot %d: %w: %s", desc.Label, attr.Slot, gpu.ErrUnknownHandle, attr.Buffer)
		}
		format, ok := vertexFormat(attr)
		if !ok {
			return 0, fmt.Errorf("%w: layout %q slot %d has no vertex format for %d x %s", gpu.ErrInvalidDescriptor, desc.Label, attr.Slot, attr.Components, attr.ComponentType)
		}
		layout.buffers = append(layout.buffers, wgpu.VertexBufferLayout{
			ArrayStride: uint64(attr.Stride),
			StepMode:    wgpu.VertexStepModeVertex,
			Attributes: []wgpu.VertexAttribute{{
				Format:         format,
				Offset:         0,
				ShaderLocation: attr.Slot,
			}},
		})
		layout.bindings = append(layout.bindings, attr.Buffer)
		layout.offsets = append(layout.offsets, uint64(attr.Offset))
	}

	if desc.IndexBuffer.Valid() {
		if _, ok := d.buffers[desc.IndexBuffer]; !ok {
			return 0, fmt.Errorf("layout %q indices: %w: %s", desc.Label, gpu.ErrUnknownHandle, desc.IndexBuffer)
		}
		format, ok := indexFormat(desc.IndexType)
		if !ok {
			return 0, fmt.Errorf("%w: layout %q has %s indices", gpu.ErrInvalidDescriptor, desc.Label, desc.IndexType)
		}
		layout.index = desc.IndexBuffer
		layout.indexFormat = format
		layout.indexOffset = uint64(desc.IndexOffset)
	}

	h := d.allocate()
	d.layouts[h] = layout
	return h, nil
}

func (d *WGPUDevice) Release(h gpu.Handle) error {
	if !h.Valid() {
		return nil
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return gpu.ErrDeviceClosed
	}
	if buf, ok := d.buffers[h]; ok {
		buf.Release()
		delete(d.buffers, h)
		return nil
	}
	if entry, ok := d.textures[h]; ok {
		entry.release()
		delete(d.textures, h)
		return nil
	}
	if _, ok := d.layouts[h]; ok {
		delete(d.layouts, h)
		return nil
	}
	return fmt.Errorf("%w: %s", gpu.ErrUnknownHandle, h)
}

func (d *WGPUDevice) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return
	}
	for h, buf := range d.buffers {
		buf.Release()
		delete(d.buffers, h)
	}
	for h, entry := range d.textures {
		entry.release()
		delete(d.textures, h)
	}
	clear(d.layouts)

	if d.frameView != nil {
		d.frameView.Release()
		d.frameView = nil
	}
	if d.surface != nil {
		d.surface.Release()
	}
	d.queue.Release()
	d.device.Release()
	d.adapter.Release()
	d.instance.Release()
	d.closed = true
}

// ConfigureSurface sizes the presentation surface. It is a no-op for headless devices.
//
// Parameters:
//   - width: the surface width in pixels
//   - height: the surface height in pixels
func (d *WGPUDevice) ConfigureSurface(width, height int) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.surface == nil || width <= 0 || height <= 0 {
		return
	}
	capabilities := d.surface.GetCapabilities(d.adapter)
	d.surface.Configure(d.adapter, d.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      capabilities.Formats[0],
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: wgpu.PresentModeFifo,
		AlphaMode:   capabilities.AlphaModes[0],
	})
}

// ClearFrame acquires the next surface image, clears it and submits the pass.
// Call Present afterwards to show it.
//
// Returns:
//   - error: error if no surface is configured or the image cannot be acquired
func (d *WGPUDevice) ClearFrame() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.surface == nil {
		return fmt.Errorf("device has no surface")
	}
	if d.frameSurface != nil {
		return fmt.Errorf("previous frame surface not yet presented")
	}

	surfaceTexture, err := d.surface.GetCurrentTexture()
	if err != nil {
		return err
	}
	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		surfaceTexture.Release()
		return err
	}
	encoder, err := d.device.CreateCommandEncoder(nil)
	if err != nil {
		view.Release()
		surfaceTexture.Release()
		return err
	}
	defer encoder.Release()

	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:       view,
			LoadOp:     wgpu.LoadOpClear,
			StoreOp:    wgpu.StoreOpStore,
			ClearValue: d.clearColor,
		}},
	})
	pass.End()

	commandBuffer, err := encoder.Finish(nil)
	if err != nil {
		view.Release()
		surfaceTexture.Release()
		return err
	}
	d.queue.Submit(commandBuffer)
	commandBuffer.Release()

	d.frameSurface = surfaceTexture
	d.frameView = view
	return nil
}

// Present shows the frame acquired by ClearFrame.
func (d *WGPUDevice) Present() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.frameSurface == nil {
		return
	}
	d.surface.Present()

	if d.frameView != nil {
		d.frameView.Release()
		d.frameView = nil
	}
	d.frameSurface.Release()
	d.frameSurface = nil
}

func (d *WGPUDevice) allocate() gpu.Handle {
	d.next++
	return d.next
}

func (e *textureEntry) release() {
	e.sampler.Release()
	e.view.Release()
	e.texture.Release()
}

func primitiveTopology(mode document.PrimitiveMode) (wgpu.PrimitiveTopology, bool) {
	switch mode {
	case document.ModePoints:
		return wgpu.PrimitiveTopologyPointList, true
	case document.ModeLines:
		return wgpu.PrimitiveTopologyLineList, true
	case document.ModeLineStrip:
		return wgpu.PrimitiveTopologyLineStrip, true
	case document.ModeTriangles:
		return wgpu.PrimitiveTopologyTriangleList, true
	case document.ModeTriangleStrip:
		return wgpu.PrimitiveTopologyTriangleStrip, true
	default:
		return 0, false
	}
}
