package asset

import (
	"errors"
	"fmt"
	"testing"

	"github.com/Carmen-Shannon/oxy-scene/engine/document"
	"github.com/Carmen-Shannon/oxy-scene/engine/gpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubDecoder serves in-memory documents by path and counts decode calls.
type stubDecoder struct {
	docs   map[string]func() *document.Document
	calls  int
	images []bool
}

func (d *stubDecoder) Decode(path string, images bool) (*document.Document, error) {
	d.calls++
	d.images = append(d.images, images)
	build, ok := d.docs[path]
	if !ok {
		return nil, fmt.Errorf("%w: open %s: no such file", ErrIO, path)
	}
	return build(), nil
}

func newStubDecoder() *stubDecoder {
	return &stubDecoder{docs: map[string]func() *document.Document{
		"triangle.gltf": func() *document.Document { return triangleBuilder().Document() },
		"broken.gltf": func() *document.Document {
			doc := triangleBuilder().Document()
			doc.Accessors[0].Sparse = true
			return doc
		},
	}}
}

func TestManagerLoadAndLookup(t *testing.T) {
	dec := newStubDecoder()
	m := NewManager(WithDecoder(dec))

	id, err := m.LoadAsset("triangle.gltf")
	require.NoError(t, err)
	assert.Equal(t, AssetID(1), id)

	got, ok := m.Lookup("triangle.gltf")
	assert.True(t, ok)
	assert.Equal(t, id, got)

	path, ok := m.Path(id)
	assert.True(t, ok)
	assert.Equal(t, "triangle.gltf", path)

	_, ok = m.Document(id)
	assert.True(t, ok)

	mesh, ok := m.Mesh(id, 0)
	require.True(t, ok)
	assert.Equal(t, "triangle", mesh.Name)

	byPath, ok := m.MeshByPath("triangle.gltf", 0)
	require.True(t, ok)
	assert.Same(t, mesh, byPath)

	mat, ok := m.MaterialByPath("triangle.gltf", 0)
	require.True(t, ok)
	assert.Equal(t, "red", mat.Name)

	acc, ok := m.AccessorByPath("triangle.gltf", 2)
	require.True(t, ok)
	assert.Equal(t, 3, acc.Count)

	// Loading again without reload does not decode again.
	again, err := m.LoadAsset("triangle.gltf")
	require.NoError(t, err)
	assert.Equal(t, id, again)
	assert.Equal(t, 1, dec.calls)
	assert.Equal(t, []bool{true}, dec.images)
}

func TestManagerAbsentValues(t *testing.T) {
	m := NewManager(WithDecoder(newStubDecoder()))
	id, err := m.LoadAsset("triangle.gltf")
	require.NoError(t, err)

	_, ok := m.Mesh(id+1, 0)
	assert.False(t, ok)
	_, ok = m.Mesh(id, 4)
	assert.False(t, ok)
	_, ok = m.Material(id, -1)
	assert.False(t, ok)
	_, ok = m.Accessor(99, 0)
	assert.False(t, ok)
	_, ok = m.MeshByPath("missing.gltf", 0)
	assert.False(t, ok)
	_, ok = m.MaterialByPath("missing.gltf", 0)
	assert.False(t, ok)
	_, ok = m.AccessorByPath("missing.gltf", 0)
	assert.False(t, ok)
	_, ok = m.Graph(0)
	assert.False(t, ok)
}

func TestManagerIdsIncrease(t *testing.T) {
	m := NewManager()
	a, err := m.LoadDocument("a", triangleBuilder().Document())
	require.NoError(t, err)
	b, err := m.LoadDocument("b", triangleBuilder().Document())
	require.NoError(t, err)
	assert.Greater(t, b, a)

	require.NoError(t, m.Release(a))
	c, err := m.LoadDocument("a", triangleBuilder().Document())
	require.NoError(t, err)
	assert.Greater(t, c, b)
	assert.Equal(t, []AssetID{b, c}, m.Assets())
}

func TestManagerFailedLoadRegistersNothing(t *testing.T) {
	m := NewManager(WithDecoder(newStubDecoder()))

	_, err := m.LoadAsset("broken.gltf")
	assert.True(t, errors.Is(err, ErrUnsupportedFeature))
	_, ok := m.Lookup("broken.gltf")
	assert.False(t, ok)

	_, err = m.LoadAsset("missing.gltf")
	assert.True(t, errors.Is(err, ErrIO))
	assert.Empty(t, m.Assets())

	id, err := m.LoadAsset("triangle.gltf")
	require.NoError(t, err)
	assert.Equal(t, AssetID(1), id)
}

func TestManagerWithoutDecoder(t *testing.T) {
	m := NewManager()
	_, err := m.LoadAsset("triangle.gltf")
	assert.True(t, errors.Is(err, ErrIO))
}

func TestManagerReload(t *testing.T) {
	dev := gpu.NewMemoryDevice()
	dec := newStubDecoder()
	m := NewManager(WithDecoder(dec), WithDevice(dev))

	id, err := m.LoadAsset("triangle.gltf")
	require.NoError(t, err)
	require.NoError(t, m.GpuUploadAll(id, testBindings))
	before, _ := m.Graph(id)
	live := len(dev.Live())
	require.NotZero(t, live)

	reloaded, err := m.LoadAsset("triangle.gltf", WithReload(true))
	require.NoError(t, err)
	assert.Equal(t, id, reloaded)
	assert.Equal(t, 2, dec.calls)

	after, _ := m.Graph(id)
	assert.NotSame(t, before, after)
	assert.Empty(t, dev.Live())
	assert.False(t, before.Meshes[0].Primitives[0].IsLoaded())
	assert.Equal(t, []AssetID{id}, m.Assets())

	require.NoError(t, m.GpuUploadAll(id, testBindings))
	assert.Len(t, dev.Live(), live)
}

func TestManagerFailedReloadKeepsPrevious(t *testing.T) {
	m := NewManager()
	id, err := m.LoadDocument("scene", triangleBuilder().Document())
	require.NoError(t, err)
	before, _ := m.Graph(id)

	bad := triangleBuilder().Document()
	bad.Meshes[0].Primitives[0].Targets = 1
	_, err = m.LoadDocument("scene", bad, WithReload(true))
	assert.True(t, errors.Is(err, ErrUnsupportedFeature))

	after, ok := m.Graph(id)
	require.True(t, ok)
	assert.Same(t, before, after)
}

func TestManagerLoadAllFalse(t *testing.T) {
	b := triangleBuilder()
	tex := b.AddTexture("checker", make([]byte, 4), 1, 1, document.Sampler{})
	mat := document.NewMaterial("textured")
	mat.BaseColorTexture = tex
	b.AddMaterial(mat)

	dec := &stubDecoder{docs: map[string]func() *document.Document{"t.gltf": b.Document}}
	m := NewManager(WithDecoder(dec))
	id, err := m.LoadAsset("t.gltf", WithLoadAll(false))
	require.NoError(t, err)
	assert.Equal(t, []bool{false}, dec.images)

	g, _ := m.Graph(id)
	assert.Empty(t, g.Textures)
	assert.Same(t, g.WhiteTexture, g.Materials[1].BaseColorTexture)
}

func TestManagerUploadAndRelease(t *testing.T) {
	dev := gpu.NewMemoryDevice()
	m := NewManager(WithDevice(dev))
	id, err := m.LoadDocument("scene", triangleBuilder().Document())
	require.NoError(t, err)

	err = m.GpuUploadAll(id+7, testBindings)
	assert.True(t, errors.Is(err, ErrUnknownAsset))

	require.NoError(t, m.GpuUploadAll(id, testBindings))
	assert.NotEmpty(t, dev.Live())
	assert.Same(t, dev, m.Materializer().Device())

	require.NoError(t, m.Release(id))
	assert.Empty(t, dev.Live())
	_, ok := m.Lookup("scene")
	assert.False(t, ok)

	err = m.Release(id)
	assert.True(t, errors.Is(err, ErrUnknownAsset))
}

func TestManagerUploadFailure(t *testing.T) {
	dev := gpu.NewMemoryDevice()
	m := NewManager(WithDevice(dev))
	id, err := m.LoadDocument("scene", triangleBuilder().Document())
	require.NoError(t, err)

	dev.FailNext(gpu.KindBuffer, gpu.ErrOutOfMemory)
	err = m.GpuUploadAll(id, testBindings)
	assert.True(t, errors.Is(err, ErrGpuResource))

	// The graph stays valid for a retry.
	require.NoError(t, m.GpuUploadAll(id, testBindings))
}

func TestManagerClose(t *testing.T) {
	dev := gpu.NewMemoryDevice()
	m := NewManager(WithDevice(dev))
	for _, p := range []string{"a", "b"} {
		id, err := m.LoadDocument(p, triangleBuilder().Document())
		require.NoError(t, err)
		require.NoError(t, m.GpuUploadAll(id, testBindings))
	}
	require.NoError(t, m.Close())
	assert.Empty(t, m.Assets())
	assert.Empty(t, dev.Live())
}
