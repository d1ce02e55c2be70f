package scene

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-scene/engine/asset"
	"github.com/Carmen-Shannon/oxy-scene/engine/document"

	"github.com/go-gl/mathgl/mgl32"
)

// Pose is a copy of a graph's node transforms with one animation applied at one time.
// Building a pose never mutates the graph, so poses for different times can coexist.
type Pose struct {
	// Nodes holds one entry per graph node, indexed like AssetGraph.Nodes.
	Nodes []asset.SceneNode
}

// RestPose copies the node transforms of g without any animation.
//
// Parameters:
//   - g: the resolved graph
//
// Returns:
//   - *Pose: the rest pose
func RestPose(g *asset.AssetGraph) *Pose {
	return &Pose{Nodes: append([]asset.SceneNode(nil), g.Nodes...)}
}

// NewPose samples animation at time over the rest pose of g. A negative animation index
// yields the rest pose. Nodes whose rest transform is an explicit matrix are decomposed into
// translation, rotation and scale before a channel overrides one of those properties.
// Channels whose sampler has no keyframes leave their node untouched.
//
// Parameters:
//   - g: the resolved graph
//   - animation: the animation index, or negative for none
//   - time: the sample time in seconds
//
// Returns:
//   - *Pose: the animated pose
//   - error: ErrResourceResolution if the animation index is out of range
func NewPose(g *asset.AssetGraph, animation int, time float32) (*Pose, error) {
	pose := RestPose(g)
	if animation < 0 {
		return pose, nil
	}
	clip, ok := g.Animation(animation)
	if !ok {
		return nil, fmt.Errorf("%w: animation %d of %d", asset.ErrResourceResolution, animation, len(g.Animations))
	}

	var value [4]float32
	for i := range clip.Channels {
		ch := &clip.Channels[i]
		ok, err := ch.Sampler.Sample(time, value[:])
		if err != nil {
			return nil, fmt.Errorf("animation %q channel %d: %w", clip.Name, i, err)
		}
		if !ok {
			continue
		}

		node := &pose.Nodes[ch.TargetNode]
		if node.Matrix != nil {
			*node = node.Decomposed()
		}
		switch ch.Property {
		case document.PathTranslation:
			node.Translation = mgl32.Vec3{value[0], value[1], value[2]}
		case document.PathRotation:
			node.Rotation = mgl32.Quat{W: value[3], V: mgl32.Vec3{value[0], value[1], value[2]}}
		case document.PathScale:
			node.Scale = mgl32.Vec3{value[0], value[1], value[2]}
		}
	}
	return pose, nil
}

// Local returns the local transform of node i.
func (p *Pose) Local(i int) mgl32.Mat4 {
	return p.Nodes[i].LocalTransform()
}

// World composes the world transform of node i by walking its parent links.
//
// Parameters:
//   - i: the node index
//
// Returns:
//   - mgl32.Mat4: the world transform
//   - error: ErrResourceResolution for an unknown node, ErrMalformedHierarchy if the parent
//     chain is longer than the node count
func (p *Pose) World(i int) (mgl32.Mat4, error) {
	if i < 0 || i >= len(p.Nodes) {
		return mgl32.Mat4{}, fmt.Errorf("%w: node %d of %d", asset.ErrResourceResolution, i, len(p.Nodes))
	}
	world := p.Local(i)
	steps := 0
	for parent := p.Nodes[i].Parent; parent >= 0; parent = p.Nodes[parent].Parent {
		steps++
		if steps > len(p.Nodes) {
			return mgl32.Mat4{}, fmt.Errorf("%w: parent chain of node %d does not end", asset.ErrMalformedHierarchy, i)
		}
		world = p.Local(parent).Mul4(world)
	}
	return world, nil
}
