// Package gpu defines the device boundary used to materialize asset data.
// A Device turns CPU-side bytes into opaque handles and releases them again; it never sees
// asset types. Two devices are provided: MemoryDevice (headless bookkeeping) and WGPUDevice.
package gpu

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-scene/engine/document"
)

// Handle is an opaque device resource identifier. The zero Handle means "no resource".
type Handle uint64

// Valid reports whether h refers to a resource.
func (h Handle) Valid() bool {
	return h != 0
}

func (h Handle) String() string {
	if h == 0 {
		return "gpu.Handle(none)"
	}
	return fmt.Sprintf("gpu.Handle(%d)", uint64(h))
}

// BufferUsage is the role a buffer is created for.
type BufferUsage int

const (
	// UsageVertex marks a vertex attribute buffer.
	UsageVertex BufferUsage = iota + 1
	// UsageIndex marks an index buffer.
	UsageIndex
)

func (u BufferUsage) String() string {
	switch u {
	case UsageVertex:
		return "vertex"
	case UsageIndex:
		return "index"
	default:
		return fmt.Sprintf("BufferUsage(%d)", int(u))
	}
}

var (
	// ErrUnknownHandle is returned when a handle does not name a live resource.
	ErrUnknownHandle = errors.New("unknown device handle")

	// ErrInvalidDescriptor is returned when a descriptor cannot describe a resource.
	ErrInvalidDescriptor = errors.New("invalid resource descriptor")

	// ErrOutOfMemory is returned when a device runs out of its allocation budget.
	ErrOutOfMemory = errors.New("device out of memory")

	// ErrDeviceClosed is returned by every call after Close.
	ErrDeviceClosed = errors.New("device closed")
)

// BufferDescriptor describes a buffer and its initial contents.
type BufferDescriptor struct {
	Label string
	Usage BufferUsage
	Data  []byte
}

// SamplerDescriptor carries glTF sampler enum values; zero means the glTF default.
type SamplerDescriptor struct {
	MagFilter int
	MinFilter int
	WrapS     int
	WrapT     int
}

// TextureDescriptor describes an RGBA8 2D texture and its sampler.
type TextureDescriptor struct {
	Label   string
	Width   int
	Height  int
	Pixels  []byte
	Sampler SamplerDescriptor
}

// VertexAttribute binds one accessor view of a vertex buffer to a shader slot.
type VertexAttribute struct {
	Slot          uint32
	Buffer        Handle
	Offset        int
	Stride        int
	ComponentType document.ComponentType
	Components    int
	Normalized    bool
}

// VertexLayoutDescriptor is the per-primitive binding state: attribute buffers and an optional
// index buffer. It is the explicit replacement for an ambient vertex-array binding.
type VertexLayoutDescriptor struct {
	Label       string
	Mode        document.PrimitiveMode
	Attributes  []VertexAttribute
	IndexBuffer Handle
	IndexType   document.ComponentType
	IndexOffset int
}

// Device creates and releases GPU resources.
// Implementations must never reuse a handle value while the device is open.
type Device interface {
	// CreateBuffer allocates a buffer and uploads desc.Data into it.
	//
	// Parameters:
	//   - desc: the buffer descriptor
	//
	// Returns:
	//   - Handle: the new buffer handle
	//   - error: error if allocation or upload fails
	CreateBuffer(desc BufferDescriptor) (Handle, error)

	// CreateTexture allocates a texture with its sampler and uploads the pixels.
	//
	// Parameters:
	//   - desc: the texture descriptor
	//
	// Returns:
	//   - Handle: the new texture handle
	//   - error: error if allocation or upload fails
	CreateTexture(desc TextureDescriptor) (Handle, error)

	// CreateVertexLayout records the attribute and index bindings of a primitive.
	// Every buffer handle in desc must be live.
	//
	// Parameters:
	//   - desc: the layout descriptor
	//
	// Returns:
	//   - Handle: the new layout handle
	//   - error: error if a referenced buffer is unknown or a format is unsupported
	CreateVertexLayout(desc VertexLayoutDescriptor) (Handle, error)

	// Release destroys a resource. Releasing the zero handle is a no-op.
	//
	// Parameters:
	//   - h: the handle to release
	//
	// Returns:
	//   - error: ErrUnknownHandle if h is not live
	Release(h Handle) error

	// Close releases every remaining resource and the device itself.
	Close()
}
