package asset

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-scene/engine/document"
	"github.com/Carmen-Shannon/oxy-scene/engine/gpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testBindings = AttributeBindingMap{"POSITION": 0, "NORMAL": 1}

func resolvedTriangle(t *testing.T) *AssetGraph {
	t.Helper()
	g, err := Resolve(triangleBuilder().Document())
	require.NoError(t, err)
	return g
}

func TestUploadPrimitive(t *testing.T) {
	dev := gpu.NewMemoryDevice()
	m := NewMaterializer(dev)
	g := resolvedTriangle(t)
	prim := &g.Meshes[0].Primitives[0]

	require.NoError(t, m.UploadPrimitive(prim, testBindings, false))
	assert.True(t, prim.IsLoaded())
	assert.True(t, g.Regions[0].IsLoaded())
	assert.True(t, g.Regions[1].IsLoaded())
	assert.True(t, g.Regions[2].IsLoaded())

	res, ok := dev.Resource(prim.Handle())
	require.True(t, ok)
	assert.Equal(t, gpu.KindVertexLayout, res.Kind)
	require.Len(t, res.Layout.Attributes, 2)
	assert.Equal(t, uint32(1), res.Layout.Attributes[0].Slot)
	assert.Equal(t, g.Regions[1].Handle(), res.Layout.Attributes[0].Buffer)
	assert.Equal(t, uint32(0), res.Layout.Attributes[1].Slot)
	assert.Equal(t, g.Regions[2].Handle(), res.Layout.IndexBuffer)
	assert.Equal(t, document.ComponentUint16, res.Layout.IndexType)

	idx, ok := dev.Resource(g.Regions[2].Handle())
	require.True(t, ok)
	assert.Equal(t, gpu.UsageIndex, idx.Usage)
}

func TestUploadPrimitiveIsIdempotent(t *testing.T) {
	dev := gpu.NewMemoryDevice()
	m := NewMaterializer(dev)
	g := resolvedTriangle(t)
	prim := &g.Meshes[0].Primitives[0]

	require.NoError(t, m.UploadPrimitive(prim, testBindings, false))
	first := prim.Handle()
	positions := g.Regions[0].Handle()
	indices := g.Regions[2].Handle()
	live := len(dev.Live())

	require.NoError(t, m.UploadPrimitive(prim, testBindings, false))
	assert.Equal(t, first, prim.Handle())
	assert.Len(t, dev.Live(), live)

	require.NoError(t, m.UploadPrimitive(prim, testBindings, true))
	assert.NotEqual(t, first, prim.Handle())
	assert.True(t, prim.IsLoaded())
	assert.Len(t, dev.Live(), live)
	_, ok := dev.Resource(first)
	assert.False(t, ok)

	// Vertex regions may be shared and stay; the index region is recreated.
	assert.Equal(t, positions, g.Regions[0].Handle())
	assert.NotEqual(t, indices, g.Regions[2].Handle())
	_, ok = dev.Resource(indices)
	assert.False(t, ok)
	res, ok := dev.Resource(prim.Handle())
	require.True(t, ok)
	assert.Equal(t, g.Regions[2].Handle(), res.Layout.IndexBuffer)
}

func TestUploadPrimitiveSkipsUnboundAttributes(t *testing.T) {
	dev := gpu.NewMemoryDevice()
	m := NewMaterializer(dev)
	g := resolvedTriangle(t)
	prim := &g.Meshes[0].Primitives[0]

	require.NoError(t, m.UploadPrimitive(prim, AttributeBindingMap{"POSITION": 3, "TEXCOORD_0": 2}, false))
	assert.True(t, g.Regions[0].IsLoaded())
	assert.False(t, g.Regions[1].IsLoaded())

	res, ok := dev.Resource(prim.Handle())
	require.True(t, ok)
	require.Len(t, res.Layout.Attributes, 1)
	assert.Equal(t, uint32(3), res.Layout.Attributes[0].Slot)
}

func TestUploadFailureIsGpuResourceError(t *testing.T) {
	boom := errors.New("device lost")
	dev := gpu.NewMemoryDevice()
	m := NewMaterializer(dev)
	g := resolvedTriangle(t)
	prim := &g.Meshes[0].Primitives[0]

	dev.FailNext(gpu.KindVertexLayout, boom)
	err := m.UploadPrimitive(prim, testBindings, false)
	assert.True(t, errors.Is(err, ErrGpuResource))
	assert.True(t, errors.Is(err, boom))
	assert.False(t, prim.IsLoaded())

	dev.FailNext(gpu.KindTexture, boom)
	err = m.UploadMaterial(&g.Materials[0], false)
	assert.True(t, errors.Is(err, ErrGpuResource))
	assert.False(t, g.Materials[0].IsLoaded())

	// Nothing is retried automatically, but the next call succeeds.
	require.NoError(t, m.UploadPrimitive(prim, testBindings, false))
	assert.True(t, prim.IsLoaded())
}

func TestUploadOutOfMemory(t *testing.T) {
	dev := gpu.NewMemoryDevice(gpu.WithBudget(16))
	m := NewMaterializer(dev)
	g := resolvedTriangle(t)

	err := m.UploadRegion(&g.Regions[0], gpu.UsageVertex, false)
	assert.True(t, errors.Is(err, ErrGpuResource))
	assert.True(t, errors.Is(err, gpu.ErrOutOfMemory))
	assert.False(t, g.Regions[0].IsLoaded())
}

func TestUploadRegionUsageConflict(t *testing.T) {
	m := NewMaterializer(gpu.NewMemoryDevice())
	g := resolvedTriangle(t)

	require.NoError(t, m.UploadRegion(&g.Regions[2], gpu.UsageIndex, false))
	err := m.UploadRegion(&g.Regions[2], gpu.UsageVertex, false)
	assert.True(t, errors.Is(err, ErrGpuResource))
}

func TestUploadMaterial(t *testing.T) {
	dev := gpu.NewMemoryDevice()
	m := NewMaterializer(dev)
	g := resolvedTriangle(t)
	mat := &g.Materials[0]

	assert.False(t, mat.IsLoaded())
	require.NoError(t, m.UploadMaterial(mat, false))
	assert.True(t, mat.IsLoaded())
	assert.True(t, g.WhiteTexture.IsLoaded())
	assert.True(t, g.FlatNormalTexture.IsLoaded())

	white := g.WhiteTexture.Handle()
	require.NoError(t, m.UploadTexture(g.WhiteTexture, false))
	assert.Equal(t, white, g.WhiteTexture.Handle())

	require.NoError(t, m.UploadMaterial(mat, true))
	assert.NotEqual(t, white, g.WhiteTexture.Handle())
	assert.Len(t, dev.Live(), 2)
}

func TestUploadAndReleaseGraph(t *testing.T) {
	dev := gpu.NewMemoryDevice()
	m := NewMaterializer(dev)
	g := resolvedTriangle(t)

	require.NoError(t, m.UploadGraph(g, testBindings, false))
	prim := &g.Meshes[0].Primitives[0]
	assert.True(t, prim.IsLoaded())
	assert.True(t, g.Materials[0].IsLoaded())
	// 3 buffers, 1 layout, 2 fallback textures.
	assert.Len(t, dev.Live(), 6)

	first := prim.Handle()
	require.NoError(t, m.UploadGraph(g, testBindings, true))
	assert.NotEqual(t, first, prim.Handle())
	assert.Len(t, dev.Live(), 6)

	require.NoError(t, m.ReleaseGraph(g))
	assert.Empty(t, dev.Live())
	assert.False(t, prim.IsLoaded())
	assert.False(t, g.Regions[0].IsLoaded())
	assert.False(t, g.Materials[0].IsLoaded())
	assert.Equal(t, 0, dev.Used())
}

func TestUploadGraphUsesDefaultMaterial(t *testing.T) {
	b := document.NewBuilder()
	pos := b.AddFloats(document.TypeVec3, 0, 0, 0, 1, 0, 0, 0, 1, 0)
	b.AddMesh("bare", document.NewPrimitive(map[string]int{"POSITION": pos}))
	g, err := Resolve(b.Document())
	require.NoError(t, err)

	m := NewMaterializer(gpu.NewMemoryDevice())
	require.NoError(t, m.UploadGraph(g, testBindings, false))
	assert.True(t, g.DefaultMaterial.IsLoaded())
}
