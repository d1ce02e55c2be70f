package document

import "fmt"

// ComponentType is the datatype of an accessor component, using glTF enum values.
type ComponentType int

const (
	ComponentInt8    ComponentType = 5120
	ComponentUint8   ComponentType = 5121
	ComponentInt16   ComponentType = 5122
	ComponentUint16  ComponentType = 5123
	ComponentUint32  ComponentType = 5125
	ComponentFloat32 ComponentType = 5126
)

// Size returns the byte size of one component, or 0 for an unknown type.
func (c ComponentType) Size() int {
	switch c {
	case ComponentInt8, ComponentUint8:
		return 1
	case ComponentInt16, ComponentUint16:
		return 2
	case ComponentUint32, ComponentFloat32:
		return 4
	default:
		return 0
	}
}

// IsInteger reports whether the component type is one of the integer types.
func (c ComponentType) IsInteger() bool {
	return c.Size() != 0 && c != ComponentFloat32
}

func (c ComponentType) String() string {
	switch c {
	case ComponentInt8:
		return "Int8"
	case ComponentUint8:
		return "UInt8"
	case ComponentInt16:
		return "Int16"
	case ComponentUint16:
		return "UInt16"
	case ComponentUint32:
		return "UInt32"
	case ComponentFloat32:
		return "Float32"
	default:
		return fmt.Sprintf("ComponentType(%d)", int(c))
	}
}

// StructuralType is the element shape of an accessor.
type StructuralType int

const (
	TypeScalar StructuralType = iota
	TypeVec2
	TypeVec3
	TypeVec4
	TypeMat2
	TypeMat3
	TypeMat4
)

// Arity returns the number of components per element.
func (t StructuralType) Arity() int {
	switch t {
	case TypeScalar:
		return 1
	case TypeVec2:
		return 2
	case TypeVec3:
		return 3
	case TypeVec4, TypeMat2:
		return 4
	case TypeMat3:
		return 9
	case TypeMat4:
		return 16
	default:
		return 0
	}
}

func (t StructuralType) String() string {
	switch t {
	case TypeScalar:
		return "SCALAR"
	case TypeVec2:
		return "VEC2"
	case TypeVec3:
		return "VEC3"
	case TypeVec4:
		return "VEC4"
	case TypeMat2:
		return "MAT2"
	case TypeMat3:
		return "MAT3"
	case TypeMat4:
		return "MAT4"
	default:
		return fmt.Sprintf("StructuralType(%d)", int(t))
	}
}

// PrimitiveMode is the topology of a primitive, using glTF enum values.
type PrimitiveMode int

const (
	ModePoints PrimitiveMode = iota
	ModeLines
	ModeLineLoop
	ModeLineStrip
	ModeTriangles
	ModeTriangleStrip
	ModeTriangleFan
)

// Valid reports whether the mode is one of the seven glTF topologies.
func (m PrimitiveMode) Valid() bool {
	return m >= ModePoints && m <= ModeTriangleFan
}

func (m PrimitiveMode) String() string {
	switch m {
	case ModePoints:
		return "Points"
	case ModeLines:
		return "Lines"
	case ModeLineLoop:
		return "LineLoop"
	case ModeLineStrip:
		return "LineStrip"
	case ModeTriangles:
		return "Triangles"
	case ModeTriangleStrip:
		return "TriangleStrip"
	case ModeTriangleFan:
		return "TriangleFan"
	default:
		return fmt.Sprintf("PrimitiveMode(%d)", int(m))
	}
}

// AnimationPath is the node property an animation channel writes.
type AnimationPath int

const (
	PathTranslation AnimationPath = iota
	PathRotation
	PathScale
	PathWeights
)

// Arity returns the number of value components per keyframe, or 0 for weights.
func (p AnimationPath) Arity() int {
	switch p {
	case PathTranslation, PathScale:
		return 3
	case PathRotation:
		return 4
	default:
		return 0
	}
}

func (p AnimationPath) String() string {
	switch p {
	case PathTranslation:
		return "translation"
	case PathRotation:
		return "rotation"
	case PathScale:
		return "scale"
	case PathWeights:
		return "weights"
	default:
		return fmt.Sprintf("AnimationPath(%d)", int(p))
	}
}

// Interpolation is the keyframe interpolation algorithm.
type Interpolation int

const (
	InterpolationLinear Interpolation = iota
	InterpolationStep
	InterpolationCubicSpline
)

func (i Interpolation) String() string {
	switch i {
	case InterpolationLinear:
		return "LINEAR"
	case InterpolationStep:
		return "STEP"
	case InterpolationCubicSpline:
		return "CUBICSPLINE"
	default:
		return fmt.Sprintf("Interpolation(%d)", int(i))
	}
}

// Sampler filter and wrap constants.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#reference-sampler
const (
	FilterNearest              = 9728
	FilterLinear               = 9729
	FilterNearestMipmapNearest = 9984
	FilterLinearMipmapNearest  = 9985
	FilterNearestMipmapLinear  = 9986
	FilterLinearMipmapLinear   = 9987

	WrapClampToEdge    = 33071
	WrapMirroredRepeat = 33648
	WrapRepeat         = 10497
)
