package document

import (
	"encoding/binary"
	"math"
)

// Builder assembles a Document in memory. All accessor data lands in a single buffer
// (index 0), one buffer view per accessor, aligned to 4 bytes.
// It backs fixtures in tests and the demo asset written by the CLI.
type Builder struct {
	doc  Document
	data []byte
}

// NewBuilder creates an empty Builder with no default scene.
//
// Returns:
//   - *Builder: the new builder
func NewBuilder() *Builder {
	return &Builder{doc: Document{Scene: Absent}}
}

// NewNode returns a node with an identity transform and no mesh or skin.
func NewNode(name string) Node {
	return Node{
		Name:     name,
		Mesh:     Absent,
		Skin:     Absent,
		Rotation: [4]float32{0, 0, 0, 1},
		Scale:    [3]float32{1, 1, 1},
	}
}

// NewPrimitive returns a non-indexed triangle primitive with no material.
func NewPrimitive(attributes map[string]int) Primitive {
	return Primitive{
		Attributes: attributes,
		Indices:    Absent,
		Material:   Absent,
		Mode:       ModeTriangles,
	}
}

// NewMaterial returns an opaque white material without textures.
func NewMaterial(name string) Material {
	return Material{
		Name:             name,
		BaseColorFactor:  [4]float32{1, 1, 1, 1},
		BaseColorTexture: Absent,
		NormalTexture:    Absent,
	}
}

// AddRaw appends data as a new buffer view and creates an accessor over it.
// The accessor's BufferView is filled in; every other field comes from a.
//
// Parameters:
//   - a: the accessor description
//   - data: the bytes backing the accessor
//   - stride: the buffer view byte stride (0 for tightly packed)
//
// Returns:
//   - int: the accessor index
func (b *Builder) AddRaw(a Accessor, data []byte, stride int) int {
	for len(b.data)%4 != 0 {
		b.data = append(b.data, 0)
	}
	b.doc.BufferViews = append(b.doc.BufferViews, BufferView{
		Buffer:     0,
		ByteOffset: len(b.data),
		ByteLength: len(data),
		ByteStride: stride,
	})
	b.data = append(b.data, data...)
	a.BufferView = len(b.doc.BufferViews) - 1
	b.doc.Accessors = append(b.doc.Accessors, a)
	return len(b.doc.Accessors) - 1
}

// AddFloats appends a tightly packed Float32 accessor. Count is derived from the arity of t.
//
// Parameters:
//   - t: the structural type
//   - values: the component values, element after element
//
// Returns:
//   - int: the accessor index
func (b *Builder) AddFloats(t StructuralType, values ...float32) int {
	data := make([]byte, 0, len(values)*4)
	for _, v := range values {
		data = binary.LittleEndian.AppendUint32(data, math.Float32bits(v))
	}
	return b.AddRaw(Accessor{
		ComponentType: ComponentFloat32,
		Type:          t,
		Count:         len(values) / t.Arity(),
	}, data, 0)
}

// AddIndices appends an UInt16 scalar index accessor.
//
// Parameters:
//   - indices: the index values
//
// Returns:
//   - int: the accessor index
func (b *Builder) AddIndices(indices ...uint16) int {
	data := make([]byte, 0, len(indices)*2)
	for _, i := range indices {
		data = binary.LittleEndian.AppendUint16(data, i)
	}
	return b.AddRaw(Accessor{
		ComponentType: ComponentUint16,
		Type:          TypeScalar,
		Count:         len(indices),
	}, data, 0)
}

// AddMesh appends a mesh and returns its index.
func (b *Builder) AddMesh(name string, primitives ...Primitive) int {
	b.doc.Meshes = append(b.doc.Meshes, Mesh{Name: name, Primitives: primitives})
	return len(b.doc.Meshes) - 1
}

// AddMaterial appends a material and returns its index.
func (b *Builder) AddMaterial(m Material) int {
	b.doc.Materials = append(b.doc.Materials, m)
	return len(b.doc.Materials) - 1
}

// AddTexture appends a decoded RGBA8 image, a sampler and a texture referencing both.
//
// Parameters:
//   - name: the texture name
//   - pixels: RGBA8 rows, width*height*4 bytes
//   - width: width in pixels
//   - height: height in pixels
//   - sampler: the sampler parameters
//
// Returns:
//   - int: the texture index
func (b *Builder) AddTexture(name string, pixels []byte, width, height int, sampler Sampler) int {
	b.doc.Images = append(b.doc.Images, Image{
		Name:       name,
		MimeType:   "image/png",
		BufferView: Absent,
		Pixels:     pixels,
		Width:      width,
		Height:     height,
	})
	b.doc.Samplers = append(b.doc.Samplers, sampler)
	b.doc.Textures = append(b.doc.Textures, Texture{
		Name:    name,
		Source:  len(b.doc.Images) - 1,
		Sampler: len(b.doc.Samplers) - 1,
	})
	return len(b.doc.Textures) - 1
}

// AddNode appends a node and returns its index.
func (b *Builder) AddNode(n Node) int {
	b.doc.Nodes = append(b.doc.Nodes, n)
	return len(b.doc.Nodes) - 1
}

// AddChild appends child to the children of parent.
func (b *Builder) AddChild(parent, child int) {
	b.doc.Nodes[parent].Children = append(b.doc.Nodes[parent].Children, child)
}

// AddScene appends a scene. The first scene added becomes the default scene.
func (b *Builder) AddScene(name string, roots ...int) int {
	b.doc.Scenes = append(b.doc.Scenes, Scene{Name: name, Nodes: roots})
	if b.doc.Scene == Absent {
		b.doc.Scene = 0
	}
	return len(b.doc.Scenes) - 1
}

// AddSkin appends a skin and returns its index.
func (b *Builder) AddSkin(s Skin) int {
	b.doc.Skins = append(b.doc.Skins, s)
	return len(b.doc.Skins) - 1
}

// AddAnimation appends an animation and returns its index.
func (b *Builder) AddAnimation(a Animation) int {
	b.doc.Animations = append(b.doc.Animations, a)
	return len(b.doc.Animations) - 1
}

// AddChannel appends a linear sampler over (times, values) and a channel targeting node.
//
// Parameters:
//   - animation: the animation index
//   - node: the target node
//   - path: the animated property
//   - times: the keyframe times
//   - values: the keyframe values, path.Arity() components per keyframe
func (b *Builder) AddChannel(animation, node int, path AnimationPath, times []float32, values []float32) {
	valueType := TypeVec3
	if path == PathRotation {
		valueType = TypeVec4
	}
	input := b.AddFloats(TypeScalar, times...)
	output := b.AddFloats(valueType, values...)

	a := &b.doc.Animations[animation]
	a.Samplers = append(a.Samplers, AnimationSampler{Input: input, Output: output})
	a.Channels = append(a.Channels, Channel{Sampler: len(a.Samplers) - 1, Node: node, Path: path})
}

// Document finalizes the buffer and returns the document. The builder may keep being used;
// later calls do not affect documents already returned.
//
// Returns:
//   - *Document: the assembled document
func (b *Builder) Document() *Document {
	doc := b.doc
	doc.Buffers = []Buffer{{Name: "builder", Data: append([]byte(nil), b.data...)}}
	doc.BufferViews = append([]BufferView(nil), b.doc.BufferViews...)
	doc.Accessors = append([]Accessor(nil), b.doc.Accessors...)
	doc.Meshes = append([]Mesh(nil), b.doc.Meshes...)
	doc.Materials = append([]Material(nil), b.doc.Materials...)
	doc.Textures = append([]Texture(nil), b.doc.Textures...)
	doc.Images = append([]Image(nil), b.doc.Images...)
	doc.Samplers = append([]Sampler(nil), b.doc.Samplers...)
	doc.Nodes = append([]Node(nil), b.doc.Nodes...)
	doc.Scenes = append([]Scene(nil), b.doc.Scenes...)
	doc.Skins = append([]Skin(nil), b.doc.Skins...)
	doc.Animations = append([]Animation(nil), b.doc.Animations...)
	return &doc
}
