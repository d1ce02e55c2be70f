package asset

import (
	"github.com/Carmen-Shannon/oxy-scene/engine/gpu"
)

var (
	// whitePixel is the fallback base color: opaque white.
	whitePixel = []byte{255, 255, 255, 255}

	// flatNormalPixel is the fallback normal map: +Z in tangent space.
	flatNormalPixel = []byte{128, 128, 255, 255}
)

// SamplerConfig holds glTF sampler enum values. Zero means the glTF default.
type SamplerConfig struct {
	MagFilter int
	MinFilter int
	WrapS     int
	WrapT     int
}

// Texture is an RGBA8 pixel buffer plus sampler parameters.
type Texture struct {
	// Index is the texture's position in the source document, or -1 for fallback textures.
	Index int

	Name    string
	Pixels  []byte
	Width   int
	Height  int
	Sampler SamplerConfig

	// handle is the device texture, owned by the Materializer.
	handle gpu.Handle
}

// Handle returns the device texture handle, or the zero handle.
func (t *Texture) Handle() gpu.Handle {
	return t.handle
}

// IsLoaded reports whether the texture currently has a device texture.
func (t *Texture) IsLoaded() bool {
	return t.handle.Valid()
}

// Material is a base color factor plus base color and normal textures.
// Texture references are never nil after resolution: unspecified textures point at the
// graph's fallback textures.
type Material struct {
	// Index is the material's position in the source document, or -1 for the default material.
	Index int

	Name             string
	BaseColorFactor  [4]float32
	BaseColorTexture *Texture
	NormalMap        *Texture
}

// Textures returns the material's textures in upload order.
func (m *Material) Textures() []*Texture {
	return []*Texture{m.BaseColorTexture, m.NormalMap}
}

// IsLoaded reports whether every texture of the material has a device texture.
func (m *Material) IsLoaded() bool {
	for _, t := range m.Textures() {
		if t == nil || !t.IsLoaded() {
			return false
		}
	}
	return true
}

func newFallbackTexture(name string, pixel []byte) Texture {
	return Texture{
		Index:  -1,
		Name:   name,
		Pixels: append([]byte(nil), pixel...),
		Width:  1,
		Height: 1,
	}
}
