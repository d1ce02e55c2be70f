package asset

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-scene/engine/gpu"

	"go.uber.org/zap"
)

// Materializer creates device resources for graph entities and records the handles on them.
// Every upload is idempotent: an entity that already has a handle is left alone unless reload
// is set, in which case its resource is released and recreated from the CPU-side data.
// A Materializer must be used from the goroutine that owns its device.
type Materializer interface {
	// UploadRegion uploads a buffer region for the given usage.
	//
	// Parameters:
	//   - r: the region to upload
	//   - usage: the device role of the buffer
	//   - reload: true to release and recreate an existing buffer
	//
	// Returns:
	//   - error: ErrGpuResource if the device fails or the region is already bound to another usage
	UploadRegion(r *BufferRegion, usage gpu.BufferUsage, reload bool) error

	// UploadTexture uploads a texture and its sampler.
	//
	// Parameters:
	//   - t: the texture to upload
	//   - reload: true to release and recreate an existing texture
	//
	// Returns:
	//   - error: ErrGpuResource if the device fails
	UploadTexture(t *Texture, reload bool) error

	// UploadMaterial uploads every texture of a material, fallbacks included.
	//
	// Parameters:
	//   - m: the material to upload
	//   - reload: true to recreate the material's textures
	//
	// Returns:
	//   - error: ErrGpuResource if the device fails
	UploadMaterial(m *Material, reload bool) error

	// UploadPrimitive uploads the regions behind every bound attribute and the index region,
	// then records the primitive's vertex layout. Attributes missing from bindings are skipped.
	// Reload recreates the vertex layout and the index region. Attribute regions that are already
	// loaded may be shared with other primitives and are kept.
	//
	// Parameters:
	//   - p: the primitive to upload
	//   - bindings: the attribute to slot map
	//   - reload: true to release and recreate an existing layout
	//
	// Returns:
	//   - error: ErrGpuResource if the device fails
	UploadPrimitive(p *GeometryPrimitive, bindings AttributeBindingMap, reload bool) error

	// UploadGraph uploads every primitive and material of a graph.
	// With reload the whole graph is released first.
	//
	// Parameters:
	//   - g: the graph to upload
	//   - bindings: the attribute to slot map
	//   - reload: true to release and recreate everything
	//
	// Returns:
	//   - error: ErrGpuResource on the first device failure
	UploadGraph(g *AssetGraph, bindings AttributeBindingMap, reload bool) error

	// ReleaseGraph releases every device resource held by a graph and clears its handles.
	// Releasing continues past failures; all failures are returned joined.
	//
	// Parameters:
	//   - g: the graph to release
	//
	// Returns:
	//   - error: ErrGpuResource if any release failed
	ReleaseGraph(g *AssetGraph) error

	// ReleasePrimitive releases a primitive's vertex layout and the regions behind its
	// attributes and indices. It is meant for primitives built with NewPositionPrimitive,
	// whose regions no other primitive shares; graph primitives are released with ReleaseGraph.
	//
	// Parameters:
	//   - p: the primitive to release
	//
	// Returns:
	//   - error: ErrGpuResource if any release failed
	ReleasePrimitive(p *GeometryPrimitive) error

	// Device returns the device resources are created on.
	Device() gpu.Device
}

type materializer struct {
	device gpu.Device
	log    *zap.Logger
}

var _ Materializer = &materializer{}

// NewMaterializer creates a Materializer for the given device.
//
// Parameters:
//   - device: the device to create resources on
//   - options: a variadic list of MaterializerBuilderOption functions
//
// Returns:
//   - Materializer: the new materializer
func NewMaterializer(device gpu.Device, options ...MaterializerBuilderOption) Materializer {
	m := &materializer{
		device: device,
		log:    zap.NewNop(),
	}
	for _, option := range options {
		option(m)
	}
	return m
}

func (m *materializer) Device() gpu.Device {
	return m.device
}

func (m *materializer) UploadRegion(r *BufferRegion, usage gpu.BufferUsage, reload bool) error {
	if r.IsLoaded() {
		if r.usage != usage {
			return gpuError(fmt.Sprintf("upload buffer view %d", r.Index),
				fmt.Errorf("already bound as %s buffer, requested %s", r.usage, usage))
		}
		if !reload {
			return nil
		}
		if err := m.release(&r.handle); err != nil {
			return gpuError(fmt.Sprintf("release buffer view %d", r.Index), err)
		}
	}

	h, err := m.device.CreateBuffer(gpu.BufferDescriptor{
		Label: label("buffer view", r.Index, r.Name),
		Usage: usage,
		Data:  r.Bytes(),
	})
	if err != nil {
		return gpuError(fmt.Sprintf("upload buffer view %d", r.Index), err)
	}
	r.handle = h
	r.usage = usage
	m.log.Debug("uploaded buffer",
		zap.Int("view", r.Index),
		zap.Stringer("usage", usage),
		zap.Int("bytes", r.ByteLength),
		zap.Stringer("handle", h),
	)
	return nil
}

func (m *materializer) UploadTexture(t *Texture, reload bool) error {
	if t.IsLoaded() {
		if !reload {
			return nil
		}
		if err := m.release(&t.handle); err != nil {
			return gpuError(fmt.Sprintf("release texture %q", t.Name), err)
		}
	}

	h, err := m.device.CreateTexture(gpu.TextureDescriptor{
		Label:  label("texture", t.Index, t.Name),
		Width:  t.Width,
		Height: t.Height,
		Pixels: t.Pixels,
		Sampler: gpu.SamplerDescriptor{
			MagFilter: t.Sampler.MagFilter,
			MinFilter: t.Sampler.MinFilter,
			WrapS:     t.Sampler.WrapS,
			WrapT:     t.Sampler.WrapT,
		},
	})
	if err != nil {
		return gpuError(fmt.Sprintf("upload texture %q", t.Name), err)
	}
	t.handle = h
	m.log.Debug("uploaded texture",
		zap.String("texture", t.Name),
		zap.Int("width", t.Width),
		zap.Int("height", t.Height),
		zap.Stringer("handle", h),
	)
	return nil
}

func (m *materializer) UploadMaterial(mat *Material, reload bool) error {
	for _, t := range mat.Textures() {
		if t == nil {
			continue
		}
		if err := m.UploadTexture(t, reload); err != nil {
			return fmt.Errorf("material %q: %w", mat.Name, err)
		}
	}
	return nil
}

func (m *materializer) UploadPrimitive(p *GeometryPrimitive, bindings AttributeBindingMap, reload bool) error {
	if p.IsLoaded() && !reload {
		return nil
	}

	desc := gpu.VertexLayoutDescriptor{Mode: p.Mode}
	for _, name := range p.AttributeNames() {
		slot, ok := bindings[name]
		if !ok {
			continue
		}
		a := p.Attributes[name]
		if err := m.UploadRegion(a.Region, gpu.UsageVertex, false); err != nil {
			return fmt.Errorf("attribute %s: %w", name, err)
		}
		desc.Attributes = append(desc.Attributes, gpu.VertexAttribute{
			Slot:          slot,
			Buffer:        a.Region.Handle(),
			Offset:        a.ByteOffset,
			Stride:        a.Stride(),
			ComponentType: a.ComponentType,
			Components:    a.Type.Arity(),
			Normalized:    a.Normalized,
		})
	}

	if p.Indices != nil {
		if err := m.UploadRegion(p.Indices.Region, gpu.UsageIndex, reload); err != nil {
			return fmt.Errorf("indices: %w", err)
		}
		desc.IndexBuffer = p.Indices.Region.Handle()
		desc.IndexType = p.Indices.ComponentType
		desc.IndexOffset = p.Indices.ByteOffset
	}

	if err := m.release(&p.handle); err != nil {
		return gpuError("release vertex layout", err)
	}
	h, err := m.device.CreateVertexLayout(desc)
	if err != nil {
		return gpuError("create vertex layout", err)
	}
	p.handle = h
	return nil
}

func (m *materializer) UploadGraph(g *AssetGraph, bindings AttributeBindingMap, reload bool) error {
	if reload {
		if err := m.ReleaseGraph(g); err != nil {
			return err
		}
	}

	usesDefault := false
	err := g.Primitives(func(mesh, primitive int, p *GeometryPrimitive) error {
		if p.Material == nil {
			usesDefault = true
		}
		if err := m.UploadPrimitive(p, bindings, false); err != nil {
			return fmt.Errorf("mesh %d primitive %d: %w", mesh, primitive, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	for i := range g.Materials {
		if err := m.UploadMaterial(&g.Materials[i], false); err != nil {
			return err
		}
	}
	if usesDefault {
		if err := m.UploadMaterial(g.DefaultMaterial, false); err != nil {
			return err
		}
	}
	return nil
}

func (m *materializer) ReleaseGraph(g *AssetGraph) error {
	var errs []error
	collect := func(h *gpu.Handle) {
		if err := m.release(h); err != nil {
			errs = append(errs, err)
		}
	}

	// Layouts reference buffers, so they go first.
	_ = g.Primitives(func(_, _ int, p *GeometryPrimitive) error {
		collect(&p.handle)
		return nil
	})
	for i := range g.Regions {
		collect(&g.Regions[i].handle)
		g.Regions[i].usage = 0
	}
	for i := range g.Textures {
		collect(&g.Textures[i].handle)
	}
	for i := range g.fallbackTextures {
		collect(&g.fallbackTextures[i].handle)
	}

	if len(errs) > 0 {
		return gpuError("release graph", errors.Join(errs...))
	}
	return nil
}

func (m *materializer) ReleasePrimitive(p *GeometryPrimitive) error {
	var errs []error
	if err := m.release(&p.handle); err != nil {
		errs = append(errs, err)
	}
	regions := make([]*BufferRegion, 0, len(p.Attributes)+1)
	for _, name := range p.AttributeNames() {
		regions = append(regions, p.Attributes[name].Region)
	}
	if p.Indices != nil {
		regions = append(regions, p.Indices.Region)
	}
	for _, r := range regions {
		if err := m.release(&r.handle); err != nil {
			errs = append(errs, err)
		}
		r.usage = 0
	}

	if len(errs) > 0 {
		return gpuError("release primitive", errors.Join(errs...))
	}
	return nil
}

// release frees *h if it is set and clears it. The handle is cleared even on failure so a
// later upload never reuses a resource the device may already consider gone.
func (m *materializer) release(h *gpu.Handle) error {
	if !h.Valid() {
		return nil
	}
	err := m.device.Release(*h)
	*h = 0
	return err
}

func label(kind string, index int, name string) string {
	if name == "" {
		return fmt.Sprintf("%s %d", kind, index)
	}
	return fmt.Sprintf("%s %d (%s)", kind, index, name)
}
