package asset

import (
	"github.com/Carmen-Shannon/oxy-scene/engine/document"

	"github.com/go-gl/mathgl/mgl32"
)

// Scene is a named list of root nodes.
type Scene struct {
	Index int
	Name  string
	Nodes []int
}

// AssetGraph owns every resolved entity of one document.
// Each slice is allocated at its final length before any cross reference is taken and is never
// appended to, so the pointers entities hold into each other stay valid for the graph's
// lifetime. Entities are structurally immutable after Resolve; only device handles change,
// and only through a Materializer.
type AssetGraph struct {
	Buffers    []TypedBuffer
	Regions    []BufferRegion
	Accessors  []TypedAccessor
	Textures   []Texture
	Materials  []Material
	Meshes     []Mesh
	Nodes      []SceneNode
	Scenes     []Scene
	Skins      []Skin
	Animations []AnimationClip

	// DefaultScene is the scene used when a caller asks for -1, or -1 if the document has none.
	DefaultScene int

	// WhiteTexture is the 1x1 opaque white fallback base color texture.
	WhiteTexture *Texture

	// FlatNormalTexture is the 1x1 flat fallback normal map.
	FlatNormalTexture *Texture

	// DefaultMaterial is used by primitives that declare no material.
	DefaultMaterial *Material

	fallbackTextures [2]Texture
	defaultMaterial  Material
}

// Mesh returns the mesh at index i.
func (g *AssetGraph) Mesh(i int) (*Mesh, bool) {
	if i < 0 || i >= len(g.Meshes) {
		return nil, false
	}
	return &g.Meshes[i], true
}

// Material returns the material at index i.
func (g *AssetGraph) Material(i int) (*Material, bool) {
	if i < 0 || i >= len(g.Materials) {
		return nil, false
	}
	return &g.Materials[i], true
}

// Accessor returns the accessor at index i.
func (g *AssetGraph) Accessor(i int) (*TypedAccessor, bool) {
	if i < 0 || i >= len(g.Accessors) {
		return nil, false
	}
	return &g.Accessors[i], true
}

// Skin returns the skin at index i.
func (g *AssetGraph) Skin(i int) (*Skin, bool) {
	if i < 0 || i >= len(g.Skins) {
		return nil, false
	}
	return &g.Skins[i], true
}

// Scene returns the scene at index i, with -1 selecting the default scene.
func (g *AssetGraph) Scene(i int) (*Scene, bool) {
	if i == -1 {
		i = g.DefaultScene
	}
	if i < 0 || i >= len(g.Scenes) {
		return nil, false
	}
	return &g.Scenes[i], true
}

// Animation returns the animation at index i.
func (g *AssetGraph) Animation(i int) (*AnimationClip, bool) {
	if i < 0 || i >= len(g.Animations) {
		return nil, false
	}
	return &g.Animations[i], true
}

// AnimationIndex returns the index of the first animation with the given name.
func (g *AssetGraph) AnimationIndex(name string) (int, bool) {
	for i := range g.Animations {
		if g.Animations[i].Name == name {
			return i, true
		}
	}
	return -1, false
}

// Primitives calls fn for every primitive of every mesh in document order.
func (g *AssetGraph) Primitives(fn func(mesh, primitive int, p *GeometryPrimitive) error) error {
	for m := range g.Meshes {
		for p := range g.Meshes[m].Primitives {
			if err := fn(m, p, &g.Meshes[m].Primitives[p]); err != nil {
				return err
			}
		}
	}
	return nil
}

// MaterialOf returns the primitive's material, or the graph's default material.
func (g *AssetGraph) MaterialOf(p *GeometryPrimitive) *Material {
	if p.Material != nil {
		return p.Material
	}
	return g.DefaultMaterial
}

func newAssetGraph() *AssetGraph {
	g := &AssetGraph{DefaultScene: -1}
	g.fallbackTextures[0] = newFallbackTexture("white", whitePixel)
	g.fallbackTextures[1] = newFallbackTexture("flat normal", flatNormalPixel)
	g.WhiteTexture = &g.fallbackTextures[0]
	g.FlatNormalTexture = &g.fallbackTextures[1]
	g.defaultMaterial = Material{
		Index:            -1,
		Name:             "default",
		BaseColorFactor:  [4]float32{1, 1, 1, 1},
		BaseColorTexture: g.WhiteTexture,
		NormalMap:        g.FlatNormalTexture,
	}
	g.DefaultMaterial = &g.defaultMaterial
	return g
}

func quatFromXYZW(r [4]float32) mgl32.Quat {
	return mgl32.Quat{W: r[3], V: mgl32.Vec3{r[0], r[1], r[2]}}
}

func inRange(i, n int) bool {
	return i >= 0 && i < n
}

// optionalInRange accepts document.Absent as well as a valid index.
func optionalInRange(i, n int) bool {
	return i == document.Absent || inRange(i, n)
}
