package wgpu_device

import (
	"github.com/Carmen-Shannon/oxy-scene/engine/document"
	"github.com/Carmen-Shannon/oxy-scene/engine/gpu"

	"github.com/cogentcore/webgpu/wgpu"
)

// SamplerStagingData holds the configuration for a sampler pending GPU creation.
type SamplerStagingData struct {
	// AddressModeU, AddressModeV, AddressModeW specify the addressing mode outside [0, 1].
	AddressModeU, AddressModeV, AddressModeW wgpu.AddressMode
	// MagFilter and MinFilter specify the filtering mode for magnification and minification.
	MagFilter, MinFilter wgpu.FilterMode
	// MipmapFilter specifies the filtering mode for mipmap level selection.
	MipmapFilter wgpu.MipmapFilterMode
	// LodMinClamp and LodMaxClamp bound the level of detail.
	LodMinClamp, LodMaxClamp float32
	// MaxAnisotropy is the maximum anisotropy level.
	MaxAnisotropy uint16
}

// samplerStagingData converts glTF sampler enums into wgpu sampler settings.
// Unset fields fall back to the glTF defaults (linear filtering, repeat wrapping).
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#reference-sampler
//
// Parameters:
//   - s: the glTF sampler values
//
// Returns:
//   - SamplerStagingData: the converted sampler settings
func samplerStagingData(s gpu.SamplerDescriptor) SamplerStagingData {
	result := SamplerStagingData{
		AddressModeU:  addressMode(s.WrapS),
		AddressModeV:  addressMode(s.WrapT),
		AddressModeW:  wgpu.AddressModeRepeat,
		MagFilter:     wgpu.FilterModeLinear,
		MinFilter:     wgpu.FilterModeLinear,
		MipmapFilter:  wgpu.MipmapFilterModeLinear,
		LodMinClamp:   0,
		LodMaxClamp:   32,
		MaxAnisotropy: 1,
	}

	switch s.MagFilter {
	case document.FilterNearest:
		result.MagFilter = wgpu.FilterModeNearest
	case document.FilterLinear:
		result.MagFilter = wgpu.FilterModeLinear
	}

	switch s.MinFilter {
	case document.FilterNearest, document.FilterNearestMipmapNearest, document.FilterNearestMipmapLinear:
		result.MinFilter = wgpu.FilterModeNearest
	case document.FilterLinear, document.FilterLinearMipmapNearest, document.FilterLinearMipmapLinear:
		result.MinFilter = wgpu.FilterModeLinear
	}

	switch s.MinFilter {
	case document.FilterNearestMipmapNearest, document.FilterLinearMipmapNearest, document.FilterNearest, document.FilterLinear:
		result.MipmapFilter = wgpu.MipmapFilterModeNearest
	case document.FilterNearestMipmapLinear, document.FilterLinearMipmapLinear:
		result.MipmapFilter = wgpu.MipmapFilterModeLinear
	}

	return result
}

func addressMode(wrap int) wgpu.AddressMode {
	switch wrap {
	case document.WrapClampToEdge:
		return wgpu.AddressModeClampToEdge
	case document.WrapMirroredRepeat:
		return wgpu.AddressModeMirrorRepeat
	default:
		return wgpu.AddressModeRepeat
	}
}

// vertexFormat maps an accessor layout to a wgpu vertex format.
// wgpu has no three-component 8 or 16 bit formats, so those are rejected.
func vertexFormat(attr gpu.VertexAttribute) (wgpu.VertexFormat, bool) {
	type key struct {
		ct         document.ComponentType
		n          int
		normalized bool
	}
	formats := map[key]wgpu.VertexFormat{
		{document.ComponentFloat32, 1, false}: wgpu.VertexFormatFloat32,
		{document.ComponentFloat32, 2, false}: wgpu.VertexFormatFloat32x2,
		{document.ComponentFloat32, 3, false}: wgpu.VertexFormatFloat32x3,
		{document.ComponentFloat32, 4, false}: wgpu.VertexFormatFloat32x4,
		{document.ComponentUint32, 1, false}:  wgpu.VertexFormatUint32,
		{document.ComponentUint32, 2, false}:  wgpu.VertexFormatUint32x2,
		{document.ComponentUint32, 3, false}:  wgpu.VertexFormatUint32x3,
		{document.ComponentUint32, 4, false}:  wgpu.VertexFormatUint32x4,
		{document.ComponentUint8, 2, false}:   wgpu.VertexFormatUint8x2,
		{document.ComponentUint8, 4, false}:   wgpu.VertexFormatUint8x4,
		{document.ComponentUint8, 2, true}:    wgpu.VertexFormatUnorm8x2,
		{document.ComponentUint8, 4, true}:    wgpu.VertexFormatUnorm8x4,
		{document.ComponentInt8, 2, false}:    wgpu.VertexFormatSint8x2,
		{document.ComponentInt8, 4, false}:    wgpu.VertexFormatSint8x4,
		{document.ComponentInt8, 2, true}:     wgpu.VertexFormatSnorm8x2,
		{document.ComponentInt8, 4, true}:     wgpu.VertexFormatSnorm8x4,
		{document.ComponentUint16, 2, false}:  wgpu.VertexFormatUint16x2,
		{document.ComponentUint16, 4, false}:  wgpu.VertexFormatUint16x4,
		{document.ComponentUint16, 2, true}:   wgpu.VertexFormatUnorm16x2,
		{document.ComponentUint16, 4, true}:   wgpu.VertexFormatUnorm16x4,
		{document.ComponentInt16, 2, false}:   wgpu.VertexFormatSint16x2,
		{document.ComponentInt16, 4, false}:   wgpu.VertexFormatSint16x4,
		{document.ComponentInt16, 2, true}:    wgpu.VertexFormatSnorm16x2,
		{document.ComponentInt16, 4, true}:    wgpu.VertexFormatSnorm16x4,
	}
	f, ok := formats[key{attr.ComponentType, attr.Components, attr.Normalized && attr.ComponentType.IsInteger()}]
	return f, ok
}

// indexFormat maps an index component type to a wgpu index format.
// 8-bit indices have no wgpu equivalent.
func indexFormat(ct document.ComponentType) (wgpu.IndexFormat, bool) {
	switch ct {
	case document.ComponentUint16:
		return wgpu.IndexFormatUint16, true
	case document.ComponentUint32:
		return wgpu.IndexFormatUint32, true
	default:
		return wgpu.IndexFormatUndefined, false
	}
}
