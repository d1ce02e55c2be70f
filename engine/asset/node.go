package asset

import (
	"github.com/go-gl/mathgl/mgl32"
)

// SceneNode is one node of the hierarchy: a local transform, child links and optional mesh and
// skin references. The local transform is T * R * S * Matrix, with Matrix nil meaning identity.
type SceneNode struct {
	Index int
	Name  string

	Translation mgl32.Vec3
	Rotation    mgl32.Quat
	Scale       mgl32.Vec3

	// Matrix is the explicit local matrix, or nil.
	Matrix *mgl32.Mat4

	// Children are node indices in declared order.
	Children []int

	// Parent is the parent node index, or -1 for a root.
	Parent int

	// Mesh is the mesh index, or -1.
	Mesh int

	// Skin is the skin index, or -1.
	Skin int
}

// LocalTransform composes the node's local matrix.
func (n *SceneNode) LocalTransform() mgl32.Mat4 {
	local := mgl32.Translate3D(n.Translation[0], n.Translation[1], n.Translation[2]).
		Mul4(n.Rotation.Mat4()).
		Mul4(mgl32.Scale3D(n.Scale[0], n.Scale[1], n.Scale[2]))
	if n.Matrix != nil {
		local = local.Mul4(*n.Matrix)
	}
	return local
}

// Decomposed returns a copy of the node whose explicit matrix has been folded into
// translation, rotation and scale. Nodes without a matrix are returned unchanged.
// Shear cannot be represented and is lost.
func (n SceneNode) Decomposed() SceneNode {
	if n.Matrix == nil {
		return n
	}
	m := n.LocalTransform()
	n.Translation, n.Rotation, n.Scale = DecomposeMatrix(m)
	n.Matrix = nil
	return n
}

// DecomposeMatrix splits an affine matrix into translation, rotation and scale.
//
// Parameters:
//   - m: the column-major matrix
//
// Returns:
//   - mgl32.Vec3: the translation (column 3)
//   - mgl32.Quat: the rotation of the normalized basis
//   - mgl32.Vec3: the scale (basis column lengths)
func DecomposeMatrix(m mgl32.Mat4) (mgl32.Vec3, mgl32.Quat, mgl32.Vec3) {
	translation := mgl32.Vec3{m[12], m[13], m[14]}

	scale := mgl32.Vec3{
		m.Col(0).Vec3().Len(),
		m.Col(1).Vec3().Len(),
		m.Col(2).Vec3().Len(),
	}

	// Avoid division by zero
	div := scale
	for i := range div {
		if div[i] < 0.0001 {
			div[i] = 1
		}
	}

	r := mgl32.Ident4()
	for c := 0; c < 3; c++ {
		for row := 0; row < 3; row++ {
			r[c*4+row] = m[c*4+row] / div[c]
		}
	}

	return translation, mgl32.Mat4ToQuat(r).Normalize(), scale
}
