package asset

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/Carmen-Shannon/oxy-scene/engine/document"

	"github.com/go-gl/mathgl/mgl32"
)

// TypedAccessor is a strided, typed view into one BufferRegion.
// Every element in [0, Count) addresses bytes fully inside the region.
type TypedAccessor struct {
	// Index is the accessor's position in the source document.
	Index int

	Name string

	// Region is the backing buffer region. The graph owns it.
	Region *BufferRegion

	// ByteOffset is relative to the start of the region.
	ByteOffset int

	Count         int
	Type          document.StructuralType
	ComponentType document.ComponentType

	// Normalized maps integer components to [0, 1] (unsigned) or [-1, 1] (signed).
	Normalized bool

	Min, Max []float32

	// stride is the resolved element stride; a zero region stride becomes the element size.
	stride int
}

// newTypedAccessor builds an accessor and caches its stride.
func newTypedAccessor(index int, src document.Accessor, region *BufferRegion) TypedAccessor {
	a := TypedAccessor{
		Index:         index,
		Name:          src.Name,
		Region:        region,
		ByteOffset:    src.ByteOffset,
		Count:         src.Count,
		Type:          src.Type,
		ComponentType: src.ComponentType,
		Normalized:    src.Normalized && src.ComponentType.IsInteger(),
		Min:           src.Min,
		Max:           src.Max,
	}
	a.stride = a.ElementSize()
	if region != nil && region.ByteStride != 0 {
		a.stride = region.ByteStride
	}
	return a
}

// ElementSize returns the packed size of one element in bytes.
func (a *TypedAccessor) ElementSize() int {
	return a.Type.Arity() * a.ComponentType.Size()
}

// Stride returns the distance in bytes between consecutive elements.
func (a *TypedAccessor) Stride() int {
	return a.stride
}

// ByteRange returns the absolute [start, end) byte range of the accessor's elements within
// its buffer. An empty accessor has start == end.
func (a *TypedAccessor) ByteRange() (start, end int) {
	start = a.Region.ByteOffset + a.ByteOffset
	if a.Count == 0 {
		return start, start
	}
	return start, start + (a.Count-1)*a.stride + a.ElementSize()
}

// Component decodes one component of one element.
// Integer components are normalized when the accessor is normalized: signed values divide by
// the type's maximum and clamp at -1, unsigned values divide by the type's maximum.
//
// Parameters:
//   - element: the element index, in [0, Count)
//   - component: the component index, in [0, arity)
//
// Returns:
//   - float32: the decoded value
//   - error: ErrOutOfRange if either index is out of bounds
func (a *TypedAccessor) Component(element, component int) (float32, error) {
	if component < 0 || component >= a.Type.Arity() {
		return 0, fmt.Errorf("%w: component %d of %s accessor %d", ErrOutOfRange, component, a.Type, a.Index)
	}
	if element < 0 || element >= a.Count {
		return 0, fmt.Errorf("%w: element %d of %d in accessor %d", ErrOutOfRange, element, a.Count, a.Index)
	}

	size := a.ComponentType.Size()
	offset := a.Region.ByteOffset + a.ByteOffset + element*a.stride + component*size
	b := a.Region.Buffer.Bytes[offset : offset+size]

	switch a.ComponentType {
	case document.ComponentInt8:
		v := float32(int8(b[0]))
		if a.Normalized {
			return max(v/127, -1), nil
		}
		return v, nil
	case document.ComponentUint8:
		v := float32(b[0])
		if a.Normalized {
			return v / 255, nil
		}
		return v, nil
	case document.ComponentInt16:
		v := float32(int16(binary.LittleEndian.Uint16(b)))
		if a.Normalized {
			return max(v/32767, -1), nil
		}
		return v, nil
	case document.ComponentUint16:
		v := float32(binary.LittleEndian.Uint16(b))
		if a.Normalized {
			return v / 65535, nil
		}
		return v, nil
	case document.ComponentUint32:
		u := binary.LittleEndian.Uint32(b)
		if a.Normalized {
			return float32(float64(u) / 4294967295), nil
		}
		return float32(u), nil
	default:
		return math.Float32frombits(binary.LittleEndian.Uint32(b)), nil
	}
}

// Element decodes every component of one element into dst, which must hold at least arity values.
//
// Parameters:
//   - element: the element index
//   - dst: the destination slice
//
// Returns:
//   - error: ErrOutOfRange if element is out of bounds or dst is too short
func (a *TypedAccessor) Element(element int, dst []float32) error {
	arity := a.Type.Arity()
	if len(dst) < arity {
		return fmt.Errorf("%w: destination holds %d of %d components", ErrOutOfRange, len(dst), arity)
	}
	for c := 0; c < arity; c++ {
		v, err := a.Component(element, c)
		if err != nil {
			return err
		}
		dst[c] = v
	}
	return nil
}

// Floats decodes the whole accessor, element after element.
func (a *TypedAccessor) Floats() ([]float32, error) {
	arity := a.Type.Arity()
	out := make([]float32, a.Count*arity)
	for i := 0; i < a.Count; i++ {
		if err := a.Element(i, out[i*arity:]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Vec3s decodes a VEC3 accessor.
func (a *TypedAccessor) Vec3s() ([]mgl32.Vec3, error) {
	if a.Type != document.TypeVec3 {
		return nil, fmt.Errorf("%w: accessor %d is %s, not VEC3", ErrOutOfRange, a.Index, a.Type)
	}
	out := make([]mgl32.Vec3, a.Count)
	for i := range out {
		if err := a.Element(i, out[i][:]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Mat4s decodes a MAT4 accessor into column-major matrices.
func (a *TypedAccessor) Mat4s() ([]mgl32.Mat4, error) {
	if a.Type != document.TypeMat4 {
		return nil, fmt.Errorf("%w: accessor %d is %s, not MAT4", ErrOutOfRange, a.Index, a.Type)
	}
	out := make([]mgl32.Mat4, a.Count)
	for i := range out {
		if err := a.Element(i, out[i][:]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Indices decodes a scalar unsigned integer accessor as vertex indices.
// Values are read as raw integers; normalization does not apply.
func (a *TypedAccessor) Indices() ([]uint32, error) {
	if !isIndexAccessor(a) {
		return nil, fmt.Errorf("%w: accessor %d is %s %s, not an index accessor", ErrOutOfRange, a.Index, a.ComponentType, a.Type)
	}
	out := make([]uint32, a.Count)
	base := a.Region.ByteOffset + a.ByteOffset
	b := a.Region.Buffer.Bytes
	for i := range out {
		offset := base + i*a.stride
		switch a.ComponentType {
		case document.ComponentUint8:
			out[i] = uint32(b[offset])
		case document.ComponentUint16:
			out[i] = uint32(binary.LittleEndian.Uint16(b[offset:]))
		default:
			out[i] = binary.LittleEndian.Uint32(b[offset:])
		}
	}
	return out, nil
}

func isIndexAccessor(a *TypedAccessor) bool {
	if a.Type != document.TypeScalar {
		return false
	}
	switch a.ComponentType {
	case document.ComponentUint8, document.ComponentUint16, document.ComponentUint32:
		return true
	default:
		return false
	}
}
