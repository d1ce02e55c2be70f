package gpu

import (
	"fmt"
	"sort"
	"sync"
)

// ResourceKind identifies what a handle refers to.
type ResourceKind int

const (
	KindBuffer ResourceKind = iota + 1
	KindTexture
	KindVertexLayout
)

func (k ResourceKind) String() string {
	switch k {
	case KindBuffer:
		return "buffer"
	case KindTexture:
		return "texture"
	case KindVertexLayout:
		return "vertex layout"
	default:
		return fmt.Sprintf("ResourceKind(%d)", int(k))
	}
}

// Resource is the bookkeeping record a MemoryDevice keeps per live handle.
type Resource struct {
	Kind   ResourceKind
	Label  string
	Usage  BufferUsage
	Size   int
	Width  int
	Height int
	Layout *VertexLayoutDescriptor
}

// MemoryDevice is a Device that keeps resources as host-side records.
// It validates descriptors the way a real device would and can be made to fail, which makes
// materialization testable without a GPU.
type MemoryDevice struct {
	mu sync.Mutex

	// next is the last handle value handed out.
	next Handle

	// resources holds every live resource keyed by handle.
	resources map[Handle]Resource

	// budget is the maximum number of bytes live at once; 0 means unlimited.
	budget int

	// used is the number of bytes currently allocated.
	used int

	// failures holds injected errors, consumed by the next create of that kind.
	failures map[ResourceKind]error

	closed bool
}

var _ Device = &MemoryDevice{}

// NewMemoryDevice creates a MemoryDevice with the given options applied.
//
// Parameters:
//   - options: a variadic list of MemoryDeviceBuilderOption functions
//
// Returns:
//   - *MemoryDevice: the new device
func NewMemoryDevice(options ...MemoryDeviceBuilderOption) *MemoryDevice {
	d := &MemoryDevice{
		resources: make(map[Handle]Resource),
		failures:  make(map[ResourceKind]error),
	}
	for _, option := range options {
		option(d)
	}
	return d
}

// FailNext makes the next create call of the given kind return err.
func (d *MemoryDevice) FailNext(kind ResourceKind, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.failures[kind] = err
}

func (d *MemoryDevice) CreateBuffer(desc BufferDescriptor) (Handle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.precheck(KindBuffer); err != nil {
		return 0, err
	}
	if desc.Usage != UsageVertex && desc.Usage != UsageIndex {
		return 0, fmt.Errorf("%w: buffer %q has usage %s", ErrInvalidDescriptor, desc.Label, desc.Usage)
	}
	if err := d.reserve(len(desc.Data)); err != nil {
		return 0, err
	}
	return d.insert(Resource{Kind: KindBuffer, Label: desc.Label, Usage: desc.Usage, Size: len(desc.Data)}), nil
}

func (d *MemoryDevice) CreateTexture(desc TextureDescriptor) (Handle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.precheck(KindTexture); err != nil {
		return 0, err
	}
	if desc.Width <= 0 || desc.Height <= 0 {
		return 0, fmt.Errorf("%w: texture %q is %dx%d", ErrInvalidDescriptor, desc.Label, desc.Width, desc.Height)
	}
	if len(desc.Pixels) != desc.Width*desc.Height*4 {
		return 0, fmt.Errorf("%w: texture %q has %d bytes, want %d", ErrInvalidDescriptor, desc.Label, len(desc.Pixels), desc.Width*desc.Height*4)
	}
	if err := d.reserve(len(desc.Pixels)); err != nil {
		return 0, err
	}
	return d.insert(Resource{
		Kind:   KindTexture,
		Label:  desc.Label,
		Size:   len(desc.Pixels),
		Width:  desc.Width,
		Height: desc.Height,
	}), nil
}

func (d *MemoryDevice) CreateVertexLayout(desc VertexLayoutDescriptor) (Handle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.precheck(KindVertexLayout); err != nil {
		return 0, err
	}
	for _, attr := range desc.Attributes {
		if err := d.expect(attr.Buffer, UsageVertex); err != nil {
			return 0, fmt.Errorf("layout %q slot %d: %w", desc.Label, attr.Slot, err)
		}
	}
	if desc.IndexBuffer.Valid() {
		if err := d.expect(desc.IndexBuffer, UsageIndex); err != nil {
			return 0, fmt.Errorf("layout %q indices: %w", desc.Label, err)
		}
	}

	layout := desc
	layout.Attributes = append([]VertexAttribute(nil), desc.Attributes...)
	return d.insert(Resource{Kind: KindVertexLayout, Label: desc.Label, Layout: &layout}), nil
}

func (d *MemoryDevice) Release(h Handle) error {
	if !h.Valid() {
		return nil
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return ErrDeviceClosed
	}
	r, ok := d.resources[h]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownHandle, h)
	}
	d.used -= r.Size
	delete(d.resources, h)
	return nil
}

func (d *MemoryDevice) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.resources = make(map[Handle]Resource)
	d.used = 0
	d.closed = true
}

// Resource returns the record for a live handle.
func (d *MemoryDevice) Resource(h Handle) (Resource, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	r, ok := d.resources[h]
	return r, ok
}

// Live returns the live handles in allocation order.
func (d *MemoryDevice) Live() []Handle {
	d.mu.Lock()
	defer d.mu.Unlock()
	handles := make([]Handle, 0, len(d.resources))
	for h := range d.resources {
		handles = append(handles, h)
	}
	sort.Slice(handles, func(i, j int) bool { return handles[i] < handles[j] })
	return handles
}

// Used returns the number of bytes held by live resources.
func (d *MemoryDevice) Used() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.used
}

func (d *MemoryDevice) precheck(kind ResourceKind) error {
	if d.closed {
		return ErrDeviceClosed
	}
	if err, ok := d.failures[kind]; ok {
		delete(d.failures, kind)
		return err
	}
	return nil
}

func (d *MemoryDevice) reserve(size int) error {
	if d.budget > 0 && d.used+size > d.budget {
		return fmt.Errorf("%w: %d bytes requested, %d of %d in use", ErrOutOfMemory, size, d.used, d.budget)
	}
	d.used += size
	return nil
}

func (d *MemoryDevice) expect(h Handle, usage BufferUsage) error {
	r, ok := d.resources[h]
	if !ok || r.Kind != KindBuffer {
		return fmt.Errorf("%w: %s is not a buffer", ErrUnknownHandle, h)
	}
	if r.Usage != usage {
		return fmt.Errorf("%w: %s is a %s buffer, want %s", ErrInvalidDescriptor, h, r.Usage, usage)
	}
	return nil
}

func (d *MemoryDevice) insert(r Resource) Handle {
	d.next++
	d.resources[d.next] = r
	return d.next
}
