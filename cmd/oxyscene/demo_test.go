package main

import (
	"path/filepath"
	"testing"

	"github.com/Carmen-Shannon/oxy-scene/engine/asset"
	"github.com/Carmen-Shannon/oxy-scene/engine/loader"
	"github.com/Carmen-Shannon/oxy-scene/engine/scene"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDemoDocumentResolves(t *testing.T) {
	g, err := asset.Resolve(demoDocument())
	require.NoError(t, err)

	require.Len(t, g.Animations, 2)
	assert.Equal(t, "spin", g.Animations[0].Name)
	assert.InDelta(t, 4, g.Animations[0].Duration, 1e-6)
	assert.Equal(t, "wave", g.Animations[1].Name)
	assert.InDelta(t, 2, g.Animations[1].Duration, 1e-6)
	require.Len(t, g.Skins, 1)
	assert.Equal(t, 0, g.DefaultScene)

	count, err := scene.DrawCount(&g.Meshes[0].Primitives[0])
	require.NoError(t, err)
	assert.Equal(t, 36, count)

	lo, hi, ok := scene.RecordBounds(scene.DrawRecord{
		Primitive: &g.Meshes[0].Primitives[0],
		World:     g.Nodes[0].LocalTransform(),
	})
	require.True(t, ok)
	assert.InDelta(t, -2, lo[0], 1e-5)
	assert.InDelta(t, -1, hi[0], 1e-5)
	assert.InDelta(t, 0.5, hi[1], 1e-5)
}

func TestDemoDocumentEvaluates(t *testing.T) {
	g, err := asset.Resolve(demoDocument())
	require.NoError(t, err)

	records, err := scene.NewEvaluator(scene.WithSkeletons(true)).Evaluate(g, -1, 0, 2)
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, "spinner", g.Nodes[records[0].NodeIndex].Name)
	assert.InDelta(t, 0.5, records[0].World[13], 1e-5)
	assert.Equal(t, "arm", g.Nodes[records[1].NodeIndex].Name)
	assert.Equal(t, -1, records[2].MeshIndex)
}

func TestDemoDocumentRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "demo.glb")
	require.NoError(t, loader.SaveBinary(demoDocument(), path))

	doc, err := loader.NewLoader(loader.BackendTypeGLTF).Decode(path, true)
	require.NoError(t, err)
	assert.Len(t, doc.Nodes, 4)
	assert.Len(t, doc.Animations, 2)
	require.Len(t, doc.Images, 1)
	assert.Equal(t, checkerPixels(4), doc.Images[0].Pixels)
}

func TestCheckerPixels(t *testing.T) {
	px := checkerPixels(2)
	require.Len(t, px, 16)
	assert.Equal(t, []byte{220, 220, 220, 255}, px[0:4])
	assert.Equal(t, []byte{40, 40, 40, 255}, px[4:8])
}
