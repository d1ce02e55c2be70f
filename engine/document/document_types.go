// document_types.go contains the flat, index-based scene document produced by a decoder.
// Cross references between entries are plain integer indices into the sibling slices, with
// Absent (-1) marking an optional reference that is not set.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html
package document

// Absent marks an optional index reference that is not set.
const Absent = -1

// --- Root Structure ---

// Document is the decoded form of a glTF asset with every reference left as an index.
// It is the contract between a decoder and the asset resolver: the resolver never looks at
// file formats, and the decoder never builds pointers.
type Document struct {
	// Buffers are raw binary data containers with their bytes already loaded.
	Buffers []Buffer

	// BufferViews define byte ranges of buffers.
	BufferViews []BufferView

	// Accessors define how to interpret buffer view data.
	Accessors []Accessor

	// Meshes is an array of meshes.
	Meshes []Mesh

	// Materials is an array of materials.
	Materials []Material

	// Textures pair an image with a sampler.
	Textures []Texture

	// Images hold encoded or decoded pixel sources.
	Images []Image

	// Samplers define texture sampling parameters.
	Samplers []Sampler

	// Nodes is the node hierarchy.
	Nodes []Node

	// Scenes lists the root nodes of each scene.
	Scenes []Scene

	// Scene is the index of the default scene, or Absent.
	Scene int

	// Skins bind joints to meshes.
	Skins []Skin

	// Animations is an array of keyframe animations.
	Animations []Animation

	// ExtensionsRequired lists extensions a consumer must understand to load this asset.
	ExtensionsRequired []string
}

// --- Buffers ---

// Buffer is a block of raw bytes.
type Buffer struct {
	Name string
	Data []byte
}

// BufferView is a byte range inside a buffer.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#reference-bufferview
type BufferView struct {
	Name string

	// Buffer is the index of the backing buffer.
	Buffer int

	// ByteOffset is the offset into the buffer in bytes.
	ByteOffset int

	// ByteLength is the length of the view in bytes.
	ByteLength int

	// ByteStride is the distance between vertex elements. Zero means tightly packed.
	ByteStride int
}

// Accessor is a typed view into a buffer view.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#reference-accessor
type Accessor struct {
	Name string

	// BufferView is the index of the buffer view, or Absent.
	BufferView int

	// ByteOffset is the offset relative to the start of the buffer view.
	ByteOffset int

	// ComponentType is the datatype of the components.
	ComponentType ComponentType

	// Normalized maps integer values to [0, 1] or [-1, 1].
	Normalized bool

	// Count is the number of elements.
	Count int

	// Type is the structural type (SCALAR, VEC3, ...).
	Type StructuralType

	// Min and Max are the optional per-component bounds.
	Min, Max []float32

	// Sparse is set when the source accessor carries sparse storage.
	Sparse bool

	// Extensions lists the accessor's extension names, sorted.
	Extensions []string
}

// --- Meshes ---

// Mesh is a set of primitives drawn together.
type Mesh struct {
	Name       string
	Primitives []Primitive

	// Weights are the default morph target weights.
	Weights []float32
}

// Primitive is the unit of drawing: attributes, optional indices and a material.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#reference-mesh-primitive
type Primitive struct {
	// Attributes maps semantic names (POSITION, NORMAL, ...) to accessor indices.
	Attributes map[string]int

	// Indices is the index accessor, or Absent for a non-indexed draw.
	Indices int

	// Material is the material index, or Absent.
	Material int

	// Mode is the topology.
	Mode PrimitiveMode

	// Targets is the number of morph targets declared on the primitive.
	Targets int
}

// --- Materials and Textures ---

// Material is the subset of the metallic-roughness material model the resolver supports.
type Material struct {
	Name string

	// BaseColorFactor is the linear RGBA multiplier. Defaults to opaque white.
	BaseColorFactor [4]float32

	// BaseColorTexture is the texture index, or Absent.
	BaseColorTexture int

	// NormalTexture is the texture index, or Absent.
	NormalTexture int

	// Extensions lists the extension names present on the material.
	Extensions []string
}

// Texture pairs an image source with an optional sampler.
type Texture struct {
	Name string

	// Source is the image index.
	Source int

	// Sampler is the sampler index, or Absent for glTF defaults.
	Sampler int
}

// Image is an image source. Pixels is populated once the image has been decoded to RGBA8.
type Image struct {
	Name     string
	URI      string
	MimeType string

	// BufferView is the buffer view holding the encoded image, or Absent.
	BufferView int

	// Pixels are RGBA8 rows, Width*Height*4 bytes, or nil if the image was not decoded.
	Pixels []byte
	Width  int
	Height int
}

// Decoded reports whether RGBA pixels are available.
func (i *Image) Decoded() bool {
	return len(i.Pixels) > 0 && len(i.Pixels) == i.Width*i.Height*4
}

// Sampler holds glTF sampler enum values. Zero filters mean "unset".
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#reference-sampler
type Sampler struct {
	MagFilter int
	MinFilter int
	WrapS     int
	WrapT     int
}

// --- Scene Graph ---

// Node is a node in the hierarchy.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#reference-node
type Node struct {
	Name string

	// Children are indices of child nodes in declared order.
	Children []int

	// Mesh is the mesh index, or Absent.
	Mesh int

	// Skin is the skin index, or Absent.
	Skin int

	// Translation is the node's translation (x, y, z).
	Translation [3]float32

	// Rotation is the node's rotation as a quaternion (x, y, z, w).
	Rotation [4]float32

	// Scale is the node's scale (x, y, z).
	Scale [3]float32

	// Matrix is the explicit column-major local matrix, or nil.
	Matrix *[16]float32
}

// Scene is a set of root nodes.
type Scene struct {
	Name  string
	Nodes []int
}

// Skin binds a joint hierarchy to a mesh.
type Skin struct {
	Name string

	// Joints are node indices in joint order.
	Joints []int

	// Skeleton is the skeleton root node, or Absent.
	Skeleton int

	// InverseBindMatrices is the MAT4 accessor index, or Absent (identity matrices).
	InverseBindMatrices int
}

// --- Animation ---

// Animation is a named set of channels and their samplers.
type Animation struct {
	Name     string
	Channels []Channel
	Samplers []AnimationSampler
}

// Channel targets a node property with a sampler.
type Channel struct {
	// Sampler is the index into the owning animation's Samplers.
	Sampler int

	// Node is the target node, or Absent.
	Node int

	// Path is the animated property.
	Path AnimationPath
}

// AnimationSampler pairs keyframe times with output values.
type AnimationSampler struct {
	// Input is the accessor index of the keyframe times.
	Input int

	// Output is the accessor index of the keyframe values.
	Output int

	// Interpolation is the interpolation algorithm.
	Interpolation Interpolation
}
