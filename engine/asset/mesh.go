package asset

import (
	"encoding/binary"
	"fmt"
	"math"
	"sort"

	"github.com/Carmen-Shannon/oxy-scene/engine/document"
	"github.com/Carmen-Shannon/oxy-scene/engine/gpu"

	"github.com/go-gl/mathgl/mgl32"
)

// AttributePosition is the semantic name of the vertex position attribute.
const AttributePosition = "POSITION"

// AttributeBindingMap maps semantic attribute names to device vertex slots.
// Attributes a primitive has but the map lacks are not uploaded.
type AttributeBindingMap map[string]uint32

// GeometryPrimitive is the unit of drawing: a topology, named attribute accessors and an
// optional index accessor.
type GeometryPrimitive struct {
	Mode document.PrimitiveMode

	// Attributes maps semantic names to accessors owned by the graph.
	Attributes map[string]*TypedAccessor

	// Indices is the index accessor, or nil for a non-indexed draw.
	Indices *TypedAccessor

	// Material is the resolved material, or nil if the source declared none.
	Material *Material

	// handle is the device vertex layout, owned by the Materializer.
	handle gpu.Handle
}

// AttributeNames returns the primitive's attribute names in sorted order.
func (p *GeometryPrimitive) AttributeNames() []string {
	names := make([]string, 0, len(p.Attributes))
	for name := range p.Attributes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Position returns the POSITION accessor.
func (p *GeometryPrimitive) Position() (*TypedAccessor, bool) {
	a, ok := p.Attributes[AttributePosition]
	return a, ok
}

// DrawCount returns the number of vertices a draw call consumes: the index count for indexed
// primitives, the POSITION count otherwise.
//
// Returns:
//   - int: the vertex count
//   - error: ErrMissingAttribute if the primitive is non-indexed and has no POSITION
func (p *GeometryPrimitive) DrawCount() (int, error) {
	if p.Indices != nil {
		return p.Indices.Count, nil
	}
	pos, ok := p.Position()
	if !ok {
		return 0, fmt.Errorf("%w: non-indexed primitive has no %s", ErrMissingAttribute, AttributePosition)
	}
	return pos.Count, nil
}

// Handle returns the device vertex layout handle, or the zero handle.
func (p *GeometryPrimitive) Handle() gpu.Handle {
	return p.handle
}

// IsLoaded reports whether the primitive currently has a device vertex layout.
func (p *GeometryPrimitive) IsLoaded() bool {
	return p.handle.Valid()
}

// Mesh is a named list of primitives.
type Mesh struct {
	Index      int
	Name       string
	Primitives []GeometryPrimitive
	Weights    []float32
}

// standaloneGeometry keeps the storage of a generated primitive together so the primitive's
// pointers into it stay valid.
type standaloneGeometry struct {
	buffer    TypedBuffer
	region    BufferRegion
	accessor  TypedAccessor
	primitive GeometryPrimitive
}

// NewPositionPrimitive builds a primitive outside any graph from a list of positions, with a
// single Float32 VEC3 POSITION attribute and no indices or material. It backs generated
// geometry such as skeleton lines and can be uploaded like any resolved primitive.
//
// Parameters:
//   - name: the name given to the buffer, region and accessor
//   - mode: the topology
//   - positions: the vertex positions
//
// Returns:
//   - *GeometryPrimitive: the primitive
func NewPositionPrimitive(name string, mode document.PrimitiveMode, positions []mgl32.Vec3) *GeometryPrimitive {
	data := make([]byte, 0, len(positions)*12)
	for _, p := range positions {
		for _, c := range p {
			data = binary.LittleEndian.AppendUint32(data, math.Float32bits(c))
		}
	}

	g := &standaloneGeometry{}
	g.buffer = TypedBuffer{Name: name, Bytes: data}
	g.region = BufferRegion{Index: -1, Name: name, Buffer: &g.buffer, ByteLength: len(data)}
	g.accessor = newTypedAccessor(-1, document.Accessor{
		Name:          name,
		BufferView:    -1,
		ComponentType: document.ComponentFloat32,
		Type:          document.TypeVec3,
		Count:         len(positions),
	}, &g.region)
	g.primitive = GeometryPrimitive{
		Mode:       mode,
		Attributes: map[string]*TypedAccessor{AttributePosition: &g.accessor},
	}
	return &g.primitive
}
