package scene

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-scene/engine/asset"
	"github.com/Carmen-Shannon/oxy-scene/engine/document"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// skinnedArm builds two stacked joints one unit apart and a skinned triangle.
func skinnedArm(b *document.Builder) (shoulder, elbow, body int) {
	j0 := document.NewNode("shoulder")
	j0.Translation = [3]float32{0, 1, 0}
	shoulder = b.AddNode(j0)

	j1 := document.NewNode("elbow")
	j1.Translation = [3]float32{0, 1, 0}
	elbow = b.AddNode(j1)
	b.AddChild(shoulder, elbow)

	skin := b.AddSkin(document.Skin{
		Name:                "arm",
		Joints:              []int{shoulder, elbow},
		Skeleton:            document.Absent,
		InverseBindMatrices: document.Absent,
	})
	n := document.NewNode("body")
	n.Mesh = addTriangle(b, "triangle", document.Absent)
	n.Skin = skin
	body = b.AddNode(n)

	b.AddScene("main", shoulder, body)
	return shoulder, elbow, body
}

func TestJointMatrices(t *testing.T) {
	b := document.NewBuilder()
	skinnedArm(b)
	g := resolve(t, b)
	pose := RestPose(g)

	joints, err := JointMatrices(g, 0, pose)
	require.NoError(t, err)
	require.Len(t, joints, 2)
	assert.Equal(t, mgl32.Translate3D(0, 1, 0), joints[0])
	assert.Equal(t, mgl32.Translate3D(0, 2, 0), joints[1])

	skinning, err := SkinningMatrices(g, 0, pose)
	require.NoError(t, err)
	assert.Equal(t, joints, skinning)

	_, err = JointMatrices(g, 1, pose)
	assert.ErrorIs(t, err, asset.ErrResourceResolution)
}

func TestSkeletonPrimitive(t *testing.T) {
	b := document.NewBuilder()
	skinnedArm(b)
	g := resolve(t, b)

	lines, err := SkeletonPrimitive(g, 0, RestPose(g))
	require.NoError(t, err)
	assert.Equal(t, document.ModeLines, lines.Mode)
	assert.Nil(t, lines.Indices)

	pos, ok := lines.Position()
	require.True(t, ok)
	points, err := pos.Vec3s()
	require.NoError(t, err)
	assert.Equal(t, []mgl32.Vec3{
		{0, 0, 0}, {0, 1, 0},
		{0, 1, 0}, {0, 2, 0},
	}, points)

	count, err := DrawCount(lines)
	require.NoError(t, err)
	assert.Equal(t, 4, count)
}

func TestSkeletonFollowsAnimation(t *testing.T) {
	b := document.NewBuilder()
	_, elbow, _ := skinnedArm(b)
	anim := b.AddAnimation(document.Animation{Name: "stretch"})
	b.AddChannel(anim, elbow, document.PathTranslation, []float32{0, 2}, []float32{0, 1, 0, 0, 3, 0})
	g := resolve(t, b)

	pose, err := NewPose(g, anim, 1)
	require.NoError(t, err)

	lines, err := SkeletonPrimitive(g, 0, pose)
	require.NoError(t, err)
	pos, _ := lines.Position()
	points, err := pos.Vec3s()
	require.NoError(t, err)
	assert.InDelta(t, 3, points[3][1], 1e-5)
}

func TestEvaluateWithSkeletons(t *testing.T) {
	b := document.NewBuilder()
	_, _, body := skinnedArm(b)
	g := resolve(t, b)

	records, err := NewEvaluator(WithSkeletons(true)).Evaluate(g, 0, -1, 0)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, body, records[0].NodeIndex)
	assert.Equal(t, 0, records[0].MeshIndex)

	skeleton := records[1]
	assert.Equal(t, body, skeleton.NodeIndex)
	assert.Equal(t, -1, skeleton.MeshIndex)
	assert.Equal(t, -1, skeleton.PrimitiveIndex)
	assert.Equal(t, document.ModeLines, skeleton.Primitive.Mode)
	assert.Same(t, g.DefaultMaterial, skeleton.Material)

	without, err := NewEvaluator().Evaluate(g, 0, -1, 0)
	require.NoError(t, err)
	assert.Len(t, without, 1)
}

func TestSkeletonPrimitiveUploads(t *testing.T) {
	b := document.NewBuilder()
	skinnedArm(b)
	g := resolve(t, b)

	lines, err := SkeletonPrimitive(g, 0, RestPose(g))
	require.NoError(t, err)

	m := asset.NewManager()
	mat := m.Materializer()
	require.NoError(t, mat.UploadPrimitive(lines, asset.AttributeBindingMap{"POSITION": 0}, false))
	assert.True(t, lines.IsLoaded())
	pos, _ := lines.Position()
	assert.True(t, pos.Region.IsLoaded())

	require.NoError(t, mat.ReleasePrimitive(lines))
	assert.False(t, lines.IsLoaded())
	assert.False(t, pos.Region.IsLoaded())
}
