package scene

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-scene/engine/document"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrustumIntersectsBox(t *testing.T) {
	clip := NewFrustum(mgl32.Ident4())

	assert.True(t, clip.IntersectsBox(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0.5, 0.5, 0.5}))
	assert.True(t, clip.IntersectsBox(mgl32.Vec3{0.5, 0.5, 0.5}, mgl32.Vec3{1.5, 1.5, 1.5}))
	assert.False(t, clip.IntersectsBox(mgl32.Vec3{2, 2, 2}, mgl32.Vec3{3, 3, 3}))
	assert.False(t, clip.IntersectsBox(mgl32.Vec3{-3, 0, 0}, mgl32.Vec3{-2, 0.5, 0.5}))
}

// twoTriangles places one triangle at the origin and one far along +X.
func twoTriangles(t *testing.T) []DrawRecord {
	b := document.NewBuilder()
	mesh := addTriangle(b, "triangle", document.Absent)

	near := document.NewNode("near")
	near.Mesh = mesh
	far := document.NewNode("far")
	far.Mesh = mesh
	far.Translation = [3]float32{1000, 0, 0}
	b.AddScene("main", b.AddNode(near), b.AddNode(far))

	records, err := NewEvaluator().Evaluate(resolve(t, b), 0, -1, 0)
	require.NoError(t, err)
	require.Len(t, records, 2)
	return records
}

func TestRecordBounds(t *testing.T) {
	records := twoTriangles(t)

	lo, hi, ok := RecordBounds(records[0])
	require.True(t, ok)
	assert.Equal(t, mgl32.Vec3{0, 0, 0}, lo)
	assert.Equal(t, mgl32.Vec3{1, 1, 0}, hi)

	lo, hi, ok = RecordBounds(records[1])
	require.True(t, ok)
	assert.InDelta(t, 1000, lo[0], 1e-3)
	assert.InDelta(t, 1001, hi[0], 1e-3)

	lo, hi, ok = Bounds(records)
	require.True(t, ok)
	assert.InDelta(t, 0, lo[0], 1e-3)
	assert.InDelta(t, 1001, hi[0], 1e-3)
	assert.InDelta(t, 1, hi[1], 1e-6)

	_, _, ok = Bounds(nil)
	assert.False(t, ok)
}

func TestCullWithCamera(t *testing.T) {
	records := twoTriangles(t)

	view := mgl32.LookAtV(mgl32.Vec3{0.5, 0.5, 3}, mgl32.Vec3{0.5, 0.5, 0}, mgl32.Vec3{0, 1, 0})
	proj := mgl32.Perspective(mgl32.DegToRad(45), 16.0/9.0, 0.1, 10)

	visible := Cull(records, NewFrustum(proj.Mul4(view)))
	require.Len(t, visible, 1)
	assert.Equal(t, records[0].NodeIndex, visible[0].NodeIndex)
}
