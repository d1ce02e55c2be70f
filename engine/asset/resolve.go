// resolve.go builds an AssetGraph from a decoded document.
// Entities are resolved in dependency order: buffers, regions, accessors, textures,
// materials, meshes, nodes, scenes, skins, animations. Every collection is sized from the
// document before the first cross reference into it is taken.
package asset

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-scene/engine/document"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// Resolve validates doc and builds its AssetGraph.
// No partially resolved graph is ever returned: on failure the graph is discarded.
//
// Parameters:
//   - doc: the decoded document
//   - opts: resolution options
//
// Returns:
//   - *AssetGraph: the resolved graph
//   - error: ErrResourceResolution for out of range indices or broken invariants,
//     ErrUnsupportedFeature for sparse accessors, morph targets and extensions
func Resolve(doc *document.Document, opts ...ResolveOption) (*AssetGraph, error) {
	o := defaultResolveOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if doc == nil {
		return nil, resolutionError("nil document")
	}
	if len(doc.ExtensionsRequired) > 0 {
		return nil, unsupportedError("required extensions %v", doc.ExtensionsRequired)
	}

	g := newAssetGraph()
	steps := []struct {
		name string
		fn   func(*AssetGraph, *document.Document, resolveOptions) error
	}{
		{"buffers", resolveBuffers},
		{"buffer views", resolveRegions},
		{"accessors", resolveAccessors},
		{"textures", resolveTextures},
		{"materials", resolveMaterials},
		{"meshes", resolveMeshes},
		{"nodes", resolveNodes},
		{"scenes", resolveScenes},
		{"skins", resolveSkins},
		{"animations", resolveAnimations},
	}
	for _, step := range steps {
		if err := step.fn(g, doc, o); err != nil {
			o.log.Debug("resolve failed", zap.String("stage", step.name), zap.Error(err))
			return nil, err
		}
	}

	o.log.Debug("resolved document",
		zap.Int("buffers", len(g.Buffers)),
		zap.Int("accessors", len(g.Accessors)),
		zap.Int("meshes", len(g.Meshes)),
		zap.Int("materials", len(g.Materials)),
		zap.Int("textures", len(g.Textures)),
		zap.Int("nodes", len(g.Nodes)),
		zap.Int("animations", len(g.Animations)),
	)
	return g, nil
}

func resolveBuffers(g *AssetGraph, doc *document.Document, _ resolveOptions) error {
	g.Buffers = make([]TypedBuffer, len(doc.Buffers))
	for i, b := range doc.Buffers {
		g.Buffers[i] = TypedBuffer{Name: b.Name, Bytes: b.Data}
	}
	return nil
}

func resolveRegions(g *AssetGraph, doc *document.Document, _ resolveOptions) error {
	g.Regions = make([]BufferRegion, len(doc.BufferViews))
	for i, v := range doc.BufferViews {
		if !inRange(v.Buffer, len(g.Buffers)) {
			return resolutionError("buffer view %d references buffer %d of %d", i, v.Buffer, len(g.Buffers))
		}
		buf := &g.Buffers[v.Buffer]
		if v.ByteOffset < 0 || v.ByteLength < 0 || v.ByteStride < 0 {
			return resolutionError("buffer view %d has a negative offset, length or stride", i)
		}
		if v.ByteOffset+v.ByteLength > len(buf.Bytes) {
			return resolutionError("buffer view %d range [%d, %d) exceeds buffer %d of %d bytes",
				i, v.ByteOffset, v.ByteOffset+v.ByteLength, v.Buffer, len(buf.Bytes))
		}
		g.Regions[i] = BufferRegion{
			Index:      i,
			Name:       v.Name,
			Buffer:     buf,
			ByteOffset: v.ByteOffset,
			ByteLength: v.ByteLength,
			ByteStride: v.ByteStride,
		}
	}
	return nil
}

func resolveAccessors(g *AssetGraph, doc *document.Document, _ resolveOptions) error {
	g.Accessors = make([]TypedAccessor, len(doc.Accessors))
	for i, src := range doc.Accessors {
		if src.Sparse {
			return unsupportedError("accessor %d is sparse", i)
		}
		if len(src.Extensions) > 0 {
			return unsupportedError("accessor %d uses extensions %v", i, src.Extensions)
		}
		if src.BufferView == document.Absent {
			return unsupportedError("accessor %d has no buffer view", i)
		}
		if !inRange(src.BufferView, len(g.Regions)) {
			return resolutionError("accessor %d references buffer view %d of %d", i, src.BufferView, len(g.Regions))
		}
		if src.ComponentType.Size() == 0 {
			return resolutionError("accessor %d has unknown component type %d", i, int(src.ComponentType))
		}
		if src.Type.Arity() == 0 {
			return resolutionError("accessor %d has unknown structural type %d", i, int(src.Type))
		}
		if src.Normalized && !src.ComponentType.IsInteger() {
			return resolutionError("accessor %d is normalized but its components are %s", i, src.ComponentType)
		}
		if src.Count < 0 || src.ByteOffset < 0 {
			return resolutionError("accessor %d has a negative count or offset", i)
		}

		region := &g.Regions[src.BufferView]
		a := newTypedAccessor(i, src, region)
		if a.Stride() < a.ElementSize() {
			return resolutionError("accessor %d stride %d is smaller than its %d byte element", i, a.Stride(), a.ElementSize())
		}
		start, end := a.ByteRange()
		if end-region.ByteOffset > region.ByteLength || start-region.ByteOffset > region.ByteLength {
			return resolutionError("accessor %d range [%d, %d) exceeds buffer view %d", i, start, end, src.BufferView)
		}
		g.Accessors[i] = a
	}
	return nil
}

func resolveTextures(g *AssetGraph, doc *document.Document, o resolveOptions) error {
	for i, img := range doc.Images {
		if !optionalInRange(img.BufferView, len(g.Regions)) {
			return resolutionError("image %d references buffer view %d of %d", i, img.BufferView, len(g.Regions))
		}
	}
	for i, t := range doc.Textures {
		if !inRange(t.Source, len(doc.Images)) {
			return resolutionError("texture %d references image %d of %d", i, t.Source, len(doc.Images))
		}
		if !optionalInRange(t.Sampler, len(doc.Samplers)) {
			return resolutionError("texture %d references sampler %d of %d", i, t.Sampler, len(doc.Samplers))
		}
	}
	if !o.loadTextures {
		return nil
	}

	g.Textures = make([]Texture, len(doc.Textures))
	for i, t := range doc.Textures {
		tex := Texture{Index: i, Name: t.Name}
		if img := &doc.Images[t.Source]; img.Decoded() {
			tex.Pixels = img.Pixels
			tex.Width = img.Width
			tex.Height = img.Height
		}
		if t.Sampler != document.Absent {
			s := doc.Samplers[t.Sampler]
			tex.Sampler = SamplerConfig{MagFilter: s.MagFilter, MinFilter: s.MinFilter, WrapS: s.WrapS, WrapT: s.WrapT}
		}
		g.Textures[i] = tex
	}
	return nil
}

// textureOrFallback returns the resolved texture at index, or fallback when the index is
// absent, textures were not loaded or the image was never decoded.
func (g *AssetGraph) textureOrFallback(index int, fallback *Texture) *Texture {
	if index == document.Absent || !inRange(index, len(g.Textures)) {
		return fallback
	}
	if t := &g.Textures[index]; len(t.Pixels) > 0 {
		return t
	}
	return fallback
}

func resolveMaterials(g *AssetGraph, doc *document.Document, _ resolveOptions) error {
	g.Materials = make([]Material, len(doc.Materials))
	for i, m := range doc.Materials {
		if len(m.Extensions) > 0 {
			return unsupportedError("material %d uses extensions %v", i, m.Extensions)
		}
		if !optionalInRange(m.BaseColorTexture, len(doc.Textures)) {
			return resolutionError("material %d references base color texture %d of %d", i, m.BaseColorTexture, len(doc.Textures))
		}
		if !optionalInRange(m.NormalTexture, len(doc.Textures)) {
			return resolutionError("material %d references normal texture %d of %d", i, m.NormalTexture, len(doc.Textures))
		}
		g.Materials[i] = Material{
			Index:            i,
			Name:             m.Name,
			BaseColorFactor:  m.BaseColorFactor,
			BaseColorTexture: g.textureOrFallback(m.BaseColorTexture, g.WhiteTexture),
			NormalMap:        g.textureOrFallback(m.NormalTexture, g.FlatNormalTexture),
		}
	}
	return nil
}

func resolveMeshes(g *AssetGraph, doc *document.Document, _ resolveOptions) error {
	g.Meshes = make([]Mesh, len(doc.Meshes))
	for i, m := range doc.Meshes {
		mesh := Mesh{
			Index:      i,
			Name:       m.Name,
			Primitives: make([]GeometryPrimitive, len(m.Primitives)),
			Weights:    m.Weights,
		}
		for j, p := range m.Primitives {
			prim, err := g.resolvePrimitive(p)
			if err != nil {
				return fmt.Errorf("mesh %d primitive %d: %w", i, j, err)
			}
			mesh.Primitives[j] = prim
		}
		g.Meshes[i] = mesh
	}
	return nil
}

func (g *AssetGraph) resolvePrimitive(p document.Primitive) (GeometryPrimitive, error) {
	if p.Targets > 0 {
		return GeometryPrimitive{}, unsupportedError("%d morph targets", p.Targets)
	}
	if !p.Mode.Valid() {
		return GeometryPrimitive{}, resolutionError("invalid mode %s", p.Mode)
	}

	prim := GeometryPrimitive{
		Mode:       p.Mode,
		Attributes: make(map[string]*TypedAccessor, len(p.Attributes)),
	}
	for name, idx := range p.Attributes {
		if !inRange(idx, len(g.Accessors)) {
			return GeometryPrimitive{}, resolutionError("attribute %s references accessor %d of %d", name, idx, len(g.Accessors))
		}
		prim.Attributes[name] = &g.Accessors[idx]
	}

	if p.Indices != document.Absent {
		if !inRange(p.Indices, len(g.Accessors)) {
			return GeometryPrimitive{}, resolutionError("indices reference accessor %d of %d", p.Indices, len(g.Accessors))
		}
		idx := &g.Accessors[p.Indices]
		if !isIndexAccessor(idx) {
			return GeometryPrimitive{}, resolutionError("index accessor %d is %s %s, want unsigned SCALAR", p.Indices, idx.ComponentType, idx.Type)
		}
		prim.Indices = idx
	}

	if p.Material != document.Absent {
		if !inRange(p.Material, len(g.Materials)) {
			return GeometryPrimitive{}, resolutionError("material %d of %d", p.Material, len(g.Materials))
		}
		prim.Material = &g.Materials[p.Material]
	}
	return prim, nil
}

func resolveNodes(g *AssetGraph, doc *document.Document, _ resolveOptions) error {
	g.Nodes = make([]SceneNode, len(doc.Nodes))
	for i, n := range doc.Nodes {
		if !optionalInRange(n.Mesh, len(g.Meshes)) {
			return resolutionError("node %d references mesh %d of %d", i, n.Mesh, len(g.Meshes))
		}
		if !optionalInRange(n.Skin, len(doc.Skins)) {
			return resolutionError("node %d references skin %d of %d", i, n.Skin, len(doc.Skins))
		}
		node := SceneNode{
			Index:       i,
			Name:        n.Name,
			Translation: mgl32.Vec3(n.Translation),
			Rotation:    quatFromXYZW(n.Rotation),
			Scale:       mgl32.Vec3(n.Scale),
			Children:    append([]int(nil), n.Children...),
			Parent:      -1,
			Mesh:        n.Mesh,
			Skin:        n.Skin,
		}
		if n.Matrix != nil {
			m := mgl32.Mat4(*n.Matrix)
			node.Matrix = &m
		}
		g.Nodes[i] = node
	}

	for i := range g.Nodes {
		for _, c := range g.Nodes[i].Children {
			if !inRange(c, len(g.Nodes)) {
				return resolutionError("node %d has child %d of %d", i, c, len(g.Nodes))
			}
			if c == i {
				return resolutionError("node %d is its own child", i)
			}
			child := &g.Nodes[c]
			if child.Parent != -1 {
				return resolutionError("node %d has two parents: %d and %d", c, child.Parent, i)
			}
			child.Parent = i
		}
	}
	return nil
}

func resolveScenes(g *AssetGraph, doc *document.Document, _ resolveOptions) error {
	g.Scenes = make([]Scene, len(doc.Scenes))
	for i, s := range doc.Scenes {
		for _, n := range s.Nodes {
			if !inRange(n, len(g.Nodes)) {
				return resolutionError("scene %d references node %d of %d", i, n, len(g.Nodes))
			}
		}
		g.Scenes[i] = Scene{Index: i, Name: s.Name, Nodes: append([]int(nil), s.Nodes...)}
	}

	switch {
	case doc.Scene != document.Absent && !inRange(doc.Scene, len(g.Scenes)):
		return resolutionError("default scene %d of %d", doc.Scene, len(g.Scenes))
	case doc.Scene != document.Absent:
		g.DefaultScene = doc.Scene
	case len(g.Scenes) > 0:
		g.DefaultScene = 0
	}
	return nil
}

func resolveSkins(g *AssetGraph, doc *document.Document, _ resolveOptions) error {
	g.Skins = make([]Skin, len(doc.Skins))
	for i, s := range doc.Skins {
		if len(s.Joints) == 0 {
			return resolutionError("skin %d has no joints", i)
		}
		for _, j := range s.Joints {
			if !inRange(j, len(g.Nodes)) {
				return resolutionError("skin %d references joint node %d of %d", i, j, len(g.Nodes))
			}
		}
		if !optionalInRange(s.Skeleton, len(g.Nodes)) {
			return resolutionError("skin %d references skeleton node %d of %d", i, s.Skeleton, len(g.Nodes))
		}

		skin := Skin{
			Index:               i,
			Name:                s.Name,
			Joints:              append([]int(nil), s.Joints...),
			Skeleton:            s.Skeleton,
			InverseBindMatrices: make([]mgl32.Mat4, len(s.Joints)),
		}
		if s.InverseBindMatrices == document.Absent {
			for j := range skin.InverseBindMatrices {
				skin.InverseBindMatrices[j] = mgl32.Ident4()
			}
		} else {
			if !inRange(s.InverseBindMatrices, len(g.Accessors)) {
				return resolutionError("skin %d references inverse bind accessor %d of %d", i, s.InverseBindMatrices, len(g.Accessors))
			}
			acc := &g.Accessors[s.InverseBindMatrices]
			if acc.Type != document.TypeMat4 || acc.ComponentType != document.ComponentFloat32 || acc.Count < len(s.Joints) {
				return resolutionError("skin %d inverse bind accessor %d is %d %s %s, want %d float MAT4",
					i, acc.Index, acc.Count, acc.ComponentType, acc.Type, len(s.Joints))
			}
			mats, err := acc.Mat4s()
			if err != nil {
				return err
			}
			copy(skin.InverseBindMatrices, mats)
		}
		g.Skins[i] = skin
	}
	return nil
}

func resolveAnimations(g *AssetGraph, doc *document.Document, _ resolveOptions) error {
	g.Animations = make([]AnimationClip, len(doc.Animations))
	for i, a := range doc.Animations {
		clip := AnimationClip{
			Index:    i,
			Name:     a.Name,
			Samplers: make([]AnimationSampler, len(a.Samplers)),
			Channels: make([]AnimationChannel, len(a.Channels)),
		}
		for j, s := range a.Samplers {
			sampler, err := g.resolveSampler(s)
			if err != nil {
				return fmt.Errorf("animation %d sampler %d: %w", i, j, err)
			}
			if n := len(sampler.times); n > 0 {
				clip.Duration = max(clip.Duration, sampler.times[n-1])
			}
			clip.Samplers[j] = sampler
		}
		for j, c := range a.Channels {
			if !inRange(c.Sampler, len(clip.Samplers)) {
				return resolutionError("animation %d channel %d references sampler %d of %d", i, j, c.Sampler, len(clip.Samplers))
			}
			if c.Node == document.Absent {
				return unsupportedError("animation %d channel %d has no target node", i, j)
			}
			if !inRange(c.Node, len(g.Nodes)) {
				return resolutionError("animation %d channel %d targets node %d of %d", i, j, c.Node, len(g.Nodes))
			}
			if c.Path == document.PathWeights {
				return unsupportedError("animation %d channel %d animates morph weights", i, j)
			}
			sampler := &clip.Samplers[c.Sampler]
			if want := c.Path.Arity(); want == 0 || sampler.Values.Type.Arity() != want {
				return resolutionError("animation %d channel %d animates %s with %s values", i, j, c.Path, sampler.Values.Type)
			}
			clip.Channels[j] = AnimationChannel{TargetNode: c.Node, Property: c.Path, Sampler: sampler}
		}
		g.Animations[i] = clip
	}
	return nil
}

func (g *AssetGraph) resolveSampler(s document.AnimationSampler) (AnimationSampler, error) {
	if s.Interpolation == document.InterpolationCubicSpline {
		return AnimationSampler{}, unsupportedError("%s interpolation", s.Interpolation)
	}
	if s.Interpolation != document.InterpolationLinear && s.Interpolation != document.InterpolationStep {
		return AnimationSampler{}, resolutionError("unknown interpolation %s", s.Interpolation)
	}
	if !inRange(s.Input, len(g.Accessors)) {
		return AnimationSampler{}, resolutionError("input accessor %d of %d", s.Input, len(g.Accessors))
	}
	if !inRange(s.Output, len(g.Accessors)) {
		return AnimationSampler{}, resolutionError("output accessor %d of %d", s.Output, len(g.Accessors))
	}

	times, values := &g.Accessors[s.Input], &g.Accessors[s.Output]
	if times.Type != document.TypeScalar || times.ComponentType != document.ComponentFloat32 {
		return AnimationSampler{}, resolutionError("input accessor %d is %s %s, want float SCALAR", s.Input, times.ComponentType, times.Type)
	}
	if times.Count != values.Count {
		return AnimationSampler{}, resolutionError("%d keyframe times but %d values", times.Count, values.Count)
	}

	decoded, err := times.Floats()
	if err != nil {
		return AnimationSampler{}, err
	}
	for k := 1; k < len(decoded); k++ {
		if decoded[k] < decoded[k-1] {
			return AnimationSampler{}, resolutionError("keyframe time %d (%g) precedes keyframe %d (%g)", k, decoded[k], k-1, decoded[k-1])
		}
	}

	return AnimationSampler{
		Times:         times,
		Values:        values,
		Interpolation: s.Interpolation,
		times:         decoded,
	}, nil
}
