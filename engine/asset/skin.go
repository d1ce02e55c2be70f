package asset

import "github.com/go-gl/mathgl/mgl32"

// Skin is a joint list with its skeleton root and inverse bind matrices.
type Skin struct {
	Index int
	Name  string

	// Joints are node indices in joint order.
	Joints []int

	// Skeleton is the skeleton root node, or -1 when the document leaves it implicit.
	Skeleton int

	// InverseBindMatrices has one matrix per joint; identity when the document has none.
	InverseBindMatrices []mgl32.Mat4
}

// Root returns the node the skeleton hangs from: the declared skeleton root, or the first
// joint when none is declared.
func (s *Skin) Root() int {
	if s.Skeleton >= 0 || len(s.Joints) == 0 {
		return s.Skeleton
	}
	return s.Joints[0]
}

// JointSlot returns the position of node in the joint list.
func (s *Skin) JointSlot(node int) (int, bool) {
	for i, j := range s.Joints {
		if j == node {
			return i, true
		}
	}
	return 0, false
}
