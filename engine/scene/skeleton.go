package scene

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-scene/engine/asset"
	"github.com/Carmen-Shannon/oxy-scene/engine/document"

	"github.com/go-gl/mathgl/mgl32"
)

// JointMatrices returns the world transform of every joint of a skin, in joint order.
//
// Parameters:
//   - g: the resolved graph
//   - skinIndex: the skin index
//   - pose: the pose to read node transforms from
//
// Returns:
//   - []mgl32.Mat4: one world matrix per joint
//   - error: ErrResourceResolution for an unknown skin, ErrMalformedHierarchy for a cyclic parent chain
func JointMatrices(g *asset.AssetGraph, skinIndex int, pose *Pose) ([]mgl32.Mat4, error) {
	skin, ok := g.Skin(skinIndex)
	if !ok {
		return nil, fmt.Errorf("%w: skin %d of %d", asset.ErrResourceResolution, skinIndex, len(g.Skins))
	}
	out := make([]mgl32.Mat4, len(skin.Joints))
	for i, joint := range skin.Joints {
		world, err := pose.World(joint)
		if err != nil {
			return nil, fmt.Errorf("skin %d joint %d: %w", skinIndex, i, err)
		}
		out[i] = world
	}
	return out, nil
}

// SkinningMatrices returns world * inverseBind for every joint of a skin, in joint order.
// These are the matrices a vertex shader blends by joint weight.
//
// Parameters:
//   - g: the resolved graph
//   - skinIndex: the skin index
//   - pose: the pose to read node transforms from
//
// Returns:
//   - []mgl32.Mat4: one skinning matrix per joint
//   - error: as JointMatrices
func SkinningMatrices(g *asset.AssetGraph, skinIndex int, pose *Pose) ([]mgl32.Mat4, error) {
	joints, err := JointMatrices(g, skinIndex, pose)
	if err != nil {
		return nil, err
	}
	skin := &g.Skins[skinIndex]
	for i := range joints {
		joints[i] = joints[i].Mul4(skin.InverseBindMatrices[i])
	}
	return joints, nil
}

// SkeletonPrimitive builds debug line geometry for a skin: for each joint, a line from its
// parent's origin to its own origin. Positions are relative to the parent frame of the
// skeleton root, so the primitive is drawn with the world transform of the skinned node.
// Joints not reachable from the skeleton root keep zero-length lines at the origin.
//
// Parameters:
//   - g: the resolved graph
//   - skinIndex: the skin index
//   - pose: the pose to read node transforms from
//
// Returns:
//   - *asset.GeometryPrimitive: a Lines primitive with 2 positions per joint
//   - error: ErrResourceResolution for an unknown skin, ErrMalformedHierarchy for a cycle
func SkeletonPrimitive(g *asset.AssetGraph, skinIndex int, pose *Pose) (*asset.GeometryPrimitive, error) {
	skin, ok := g.Skin(skinIndex)
	if !ok {
		return nil, fmt.Errorf("%w: skin %d of %d", asset.ErrResourceResolution, skinIndex, len(g.Skins))
	}

	positions := make([]mgl32.Vec3, 2*len(skin.Joints))
	var walk func(node int, parent mgl32.Mat4, depth int) error
	walk = func(node int, parent mgl32.Mat4, depth int) error {
		if depth > len(pose.Nodes) {
			return fmt.Errorf("%w: skeleton of skin %d revisits node %d", asset.ErrMalformedHierarchy, skinIndex, node)
		}
		model := parent.Mul4(pose.Local(node))
		if slot, ok := skin.JointSlot(node); ok {
			positions[2*slot] = parent.Col(3).Vec3()
			positions[2*slot+1] = model.Col(3).Vec3()
		}
		for _, child := range pose.Nodes[node].Children {
			if err := walk(child, model, depth+1); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(skin.Root(), mgl32.Ident4(), 0); err != nil {
		return nil, err
	}

	name := fmt.Sprintf("skeleton %d", skinIndex)
	if skin.Name != "" {
		name = fmt.Sprintf("skeleton %d (%s)", skinIndex, skin.Name)
	}
	return asset.NewPositionPrimitive(name, document.ModeLines, positions), nil
}
