package loader

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/Carmen-Shannon/oxy-scene/engine/asset"
	"github.com/Carmen-Shannon/oxy-scene/engine/document"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var checkerPixels = []byte{
	255, 0, 0, 255, 0, 255, 0, 255,
	0, 0, 255, 255, 255, 255, 255, 255,
}

// texturedTriangle builds a single textured triangle animated along X.
func texturedTriangle() *document.Document {
	b := document.NewBuilder()
	pos := b.AddFloats(document.TypeVec3, 0, 0, 0, 1, 0, 0, 0, 1, 0)
	uv := b.AddFloats(document.TypeVec2, 0, 0, 1, 0, 0, 1)
	idx := b.AddIndices(0, 1, 2)

	tex := b.AddTexture("checker", checkerPixels, 2, 2, document.Sampler{
		MagFilter: document.FilterNearest,
		MinFilter: document.FilterLinearMipmapLinear,
		WrapS:     document.WrapClampToEdge,
		WrapT:     document.WrapMirroredRepeat,
	})
	mat := document.NewMaterial("checkered")
	mat.BaseColorFactor = [4]float32{1, 0.5, 0.25, 1}
	mat.BaseColorTexture = tex

	prim := document.NewPrimitive(map[string]int{"POSITION": pos, "TEXCOORD_0": uv})
	prim.Indices = idx
	prim.Material = b.AddMaterial(mat)

	node := document.NewNode("triangle")
	node.Mesh = b.AddMesh("triangle", prim)
	node.Translation = [3]float32{1, 2, 3}
	root := b.AddNode(node)
	b.AddScene("main", root)

	anim := b.AddAnimation(document.Animation{Name: "slide"})
	b.AddChannel(anim, root, document.PathTranslation, []float32{0, 1}, []float32{0, 0, 0, 10, 0, 0})
	return b.Document()
}

func saveFixture(t *testing.T, doc *document.Document) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixture.glb")
	require.NoError(t, SaveBinary(doc, path))
	return path
}

func TestDecodeRoundTrip(t *testing.T) {
	path := saveFixture(t, texturedTriangle())

	doc, err := NewLoader(BackendTypeGLTF, WithWorkers(2)).Decode(path, true)
	require.NoError(t, err)

	require.Len(t, doc.Meshes, 1)
	prim := doc.Meshes[0].Primitives[0]
	assert.Contains(t, prim.Attributes, "POSITION")
	assert.Contains(t, prim.Attributes, "TEXCOORD_0")
	assert.NotEqual(t, document.Absent, prim.Indices)
	assert.Equal(t, document.ModeTriangles, prim.Mode)

	require.Len(t, doc.Materials, 1)
	assert.Equal(t, [4]float32{1, 0.5, 0.25, 1}, doc.Materials[0].BaseColorFactor)
	assert.Equal(t, 0, doc.Materials[0].BaseColorTexture)
	assert.Equal(t, document.Absent, doc.Materials[0].NormalTexture)

	require.Len(t, doc.Images, 1)
	assert.Equal(t, 2, doc.Images[0].Width)
	assert.Equal(t, 2, doc.Images[0].Height)
	assert.Equal(t, checkerPixels, doc.Images[0].Pixels)

	require.Len(t, doc.Samplers, 1)
	assert.Equal(t, document.FilterNearest, doc.Samplers[0].MagFilter)
	assert.Equal(t, document.FilterLinearMipmapLinear, doc.Samplers[0].MinFilter)
	assert.Equal(t, document.WrapClampToEdge, doc.Samplers[0].WrapS)
	assert.Equal(t, document.WrapMirroredRepeat, doc.Samplers[0].WrapT)

	require.Len(t, doc.Nodes, 1)
	assert.Nil(t, doc.Nodes[0].Matrix)
	assert.Equal(t, [3]float32{1, 2, 3}, doc.Nodes[0].Translation)
	assert.Equal(t, [4]float32{0, 0, 0, 1}, doc.Nodes[0].Rotation)
	assert.Equal(t, [3]float32{1, 1, 1}, doc.Nodes[0].Scale)
	assert.Equal(t, 0, doc.Scene)

	require.Len(t, doc.Animations, 1)
	assert.Equal(t, "slide", doc.Animations[0].Name)
	assert.Equal(t, document.PathTranslation, doc.Animations[0].Channels[0].Path)
	assert.Equal(t, 0, doc.Animations[0].Channels[0].Node)
}

func TestDecodedDocumentResolves(t *testing.T) {
	path := saveFixture(t, texturedTriangle())

	doc, err := NewLoader(BackendTypeGLTF).Decode(path, true)
	require.NoError(t, err)

	g, err := asset.Resolve(doc)
	require.NoError(t, err)

	prim := &g.Meshes[0].Primitives[0]
	pos, ok := prim.Position()
	require.True(t, ok)
	verts, err := pos.Vec3s()
	require.NoError(t, err)
	assert.Equal(t, []mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}, verts)

	indices, err := prim.Indices.Indices()
	require.NoError(t, err)
	assert.Equal(t, []uint32{0, 1, 2}, indices)

	require.Len(t, g.Textures, 1)
	assert.Same(t, &g.Textures[0], prim.Material.BaseColorTexture)
	assert.Equal(t, checkerPixels, g.Textures[0].Pixels)

	clip, ok := g.Animation(0)
	require.True(t, ok)
	assert.InDelta(t, 1.0, clip.Duration, 1e-6)
}

func TestDecodeWithoutImages(t *testing.T) {
	path := saveFixture(t, texturedTriangle())

	doc, err := NewLoader(BackendTypeGLTF).Decode(path, false)
	require.NoError(t, err)
	require.Len(t, doc.Images, 1)
	assert.False(t, doc.Images[0].Decoded())
	assert.NotEqual(t, document.Absent, doc.Images[0].BufferView)
}

func TestDecodeMatrixNode(t *testing.T) {
	b := document.NewBuilder()
	node := document.NewNode("matrix")
	m := [16]float32{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 4, 5, 6, 1}
	node.Matrix = &m
	b.AddScene("main", b.AddNode(node))

	doc, err := NewLoader(BackendTypeGLTF).Decode(saveFixture(t, b.Document()), true)
	require.NoError(t, err)
	require.NotNil(t, doc.Nodes[0].Matrix)
	assert.Equal(t, m, *doc.Nodes[0].Matrix)
}

func TestDecodeMissingFile(t *testing.T) {
	_, err := NewLoader(BackendTypeGLTF).Decode(filepath.Join(t.TempDir(), "missing.glb"), true)
	assert.ErrorIs(t, err, asset.ErrIO)
}

func TestDecodeMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "junk.gltf")
	require.NoError(t, os.WriteFile(path, []byte("{ this is not json"), 0o644))

	_, err := NewLoader(BackendTypeGLTF).Decode(path, true)
	assert.ErrorIs(t, err, asset.ErrParse)
}

func TestDecodeUnsupportedExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mesh.obj")
	require.NoError(t, os.WriteFile(path, []byte("v 0 0 0"), 0o644))

	_, err := NewLoader(BackendTypeGLTF).Decode(path, true)
	assert.ErrorIs(t, err, asset.ErrParse)
}

func TestDecodeReaderExternalImage(t *testing.T) {
	dir := t.TempDir()

	img := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	img.Set(0, 0, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pixel.png"), buf.Bytes(), 0o644))

	gltfJSON := `{
		"asset": {"version": "2.0"},
		"images": [{"uri": "pixel.png"}],
		"textures": [{"source": 0}]
	}`
	doc, err := NewLoader(BackendTypeGLTF).DecodeReader(bytes.NewReader([]byte(gltfJSON)), dir, true)
	require.NoError(t, err)
	require.Len(t, doc.Images, 1)
	assert.Equal(t, "pixel.png", doc.Images[0].URI)
	assert.Equal(t, []byte{10, 20, 30, 255}, doc.Images[0].Pixels)
	assert.Equal(t, document.Absent, doc.Textures[0].Sampler)
}

func TestDecodeReaderMissingImage(t *testing.T) {
	gltfJSON := `{
		"asset": {"version": "2.0"},
		"images": [{"uri": "nowhere.png"}]
	}`
	loader := NewLoader(BackendTypeGLTF)

	_, err := loader.DecodeReader(bytes.NewReader([]byte(gltfJSON)), t.TempDir(), true)
	assert.ErrorIs(t, err, asset.ErrParse)

	doc, err := loader.DecodeReader(bytes.NewReader([]byte(gltfJSON)), t.TempDir(), false)
	require.NoError(t, err)
	assert.False(t, doc.Images[0].Decoded())
}

func TestDecodeRequiredExtensionsSurvive(t *testing.T) {
	gltfJSON := `{
		"asset": {"version": "2.0"},
		"extensionsUsed": ["KHR_draco_mesh_compression"],
		"extensionsRequired": ["KHR_draco_mesh_compression"]
	}`
	doc, err := NewLoader(BackendTypeGLTF).DecodeReader(bytes.NewReader([]byte(gltfJSON)), "", true)
	require.NoError(t, err)
	assert.Equal(t, []string{"KHR_draco_mesh_compression"}, doc.ExtensionsRequired)

	_, err = asset.Resolve(doc)
	assert.ErrorIs(t, err, asset.ErrUnsupportedFeature)
}

func TestDecodeNodeTransforms(t *testing.T) {
	gltfJSON := `{
		"asset": {"version": "2.0"},
		"nodes": [
			{"name": "plain"},
			{"name": "hidden", "scale": [0, 0, 0]},
			{"name": "turned", "rotation": [0, 1, 0, 0]}
		]
	}`
	doc, err := NewLoader(BackendTypeGLTF).DecodeReader(bytes.NewReader([]byte(gltfJSON)), "", true)
	require.NoError(t, err)
	require.Len(t, doc.Nodes, 3)

	assert.Equal(t, [3]float32{1, 1, 1}, doc.Nodes[0].Scale)
	assert.Equal(t, [4]float32{0, 0, 0, 1}, doc.Nodes[0].Rotation)
	assert.Equal(t, [3]float32{}, doc.Nodes[1].Scale)
	assert.Equal(t, [4]float32{0, 1, 0, 0}, doc.Nodes[2].Rotation)
	assert.Equal(t, [3]float32{1, 1, 1}, doc.Nodes[2].Scale)
}

func TestDecodeAccessorExtensions(t *testing.T) {
	gltfJSON := `{
		"asset": {"version": "2.0"},
		"buffers": [{"byteLength": 12, "uri": "data:application/octet-stream;base64,AAAAAAAAAAAAAAAA"}],
		"bufferViews": [{"buffer": 0, "byteLength": 12}],
		"accessors": [{
			"bufferView": 0, "componentType": 5126, "count": 1, "type": "VEC3",
			"extensions": {"EXT_meshopt_compression": {"mode": 0}, "EXT_custom": {"x": 1}}
		}]
	}`
	doc, err := NewLoader(BackendTypeGLTF).DecodeReader(bytes.NewReader([]byte(gltfJSON)), "", true)
	require.NoError(t, err)
	require.Len(t, doc.Accessors, 1)
	assert.Equal(t, []string{"EXT_custom", "EXT_meshopt_compression"}, doc.Accessors[0].Extensions)

	_, err = asset.Resolve(doc)
	assert.ErrorIs(t, err, asset.ErrUnsupportedFeature)
}
