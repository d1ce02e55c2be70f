package loader

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"github.com/Carmen-Shannon/oxy-scene/engine/asset"
	"github.com/Carmen-Shannon/oxy-scene/engine/document"

	"github.com/qmuntal/gltf"
)

// generator is written to the asset block of every saved file.
const generator = "oxy-scene"

// SaveBinary writes doc as a GLB file. Decoded images are re-encoded as PNG and embedded in
// the binary chunk; images without pixels keep their URI.
//
// Parameters:
//   - doc: the document to write
//   - path: the output file path
//
// Returns:
//   - error: ErrIO wrapped error if encoding or writing fails
func SaveBinary(doc *document.Document, path string) error {
	out, err := documentToGLTF(doc)
	if err != nil {
		return fmt.Errorf("%w: encode %s: %w", asset.ErrIO, path, err)
	}
	if err := gltf.SaveBinary(out, path); err != nil {
		return fmt.Errorf("%w: write %s: %w", asset.ErrIO, path, err)
	}
	return nil
}

// documentToGLTF is the inverse of gltfToDocument. All buffers are merged into one so the
// result can be written as a single binary chunk.
func documentToGLTF(doc *document.Document) (*gltf.Document, error) {
	out := &gltf.Document{
		Asset:              gltf.Asset{Version: "2.0", Generator: generator},
		ExtensionsRequired: append([]string(nil), doc.ExtensionsRequired...),
	}
	if doc.Scene != document.Absent {
		out.Scene = gltfPtr(doc.Scene)
	}

	// Buffer views are rebased onto one merged buffer.
	var data []byte
	bufferStart := make([]int, len(doc.Buffers))
	for i, b := range doc.Buffers {
		data = pad4(data)
		bufferStart[i] = len(data)
		data = append(data, b.Data...)
	}

	for _, v := range doc.BufferViews {
		if v.Buffer < 0 || v.Buffer >= len(doc.Buffers) {
			return nil, fmt.Errorf("buffer view references buffer %d of %d", v.Buffer, len(doc.Buffers))
		}
		out.BufferViews = append(out.BufferViews, &gltf.BufferView{
			Name:       v.Name,
			Buffer:     0,
			ByteOffset: bufferStart[v.Buffer] + v.ByteOffset,
			ByteLength: v.ByteLength,
			ByteStride: v.ByteStride,
		})
	}

	for _, a := range doc.Accessors {
		out.Accessors = append(out.Accessors, &gltf.Accessor{
			Name:          a.Name,
			BufferView:    gltfOptional(a.BufferView),
			ByteOffset:    a.ByteOffset,
			ComponentType: toGLTFComponentType(a.ComponentType),
			Normalized:    a.Normalized,
			Count:         a.Count,
			Type:          toGLTFAccessorType(a.Type),
			Min:           toFloat64s(a.Min),
			Max:           toFloat64s(a.Max),
		})
	}

	for _, m := range doc.Meshes {
		mesh := &gltf.Mesh{Name: m.Name, Weights: toFloat64s(m.Weights)}
		for _, p := range m.Primitives {
			attrs := make(gltf.Attributes, len(p.Attributes))
			for name, idx := range p.Attributes {
				attrs[name] = idx
			}
			mesh.Primitives = append(mesh.Primitives, &gltf.Primitive{
				Attributes: attrs,
				Indices:    gltfOptional(p.Indices),
				Material:   gltfOptional(p.Material),
				Mode:       toGLTFPrimitiveMode(p.Mode),
			})
		}
		out.Meshes = append(out.Meshes, mesh)
	}

	for _, m := range doc.Materials {
		factor := [4]float64{}
		for c, v := range m.BaseColorFactor {
			factor[c] = float64(v)
		}
		pbr := &gltf.PBRMetallicRoughness{BaseColorFactor: &factor}
		if m.BaseColorTexture != document.Absent {
			pbr.BaseColorTexture = &gltf.TextureInfo{Index: m.BaseColorTexture}
		}
		mat := &gltf.Material{Name: m.Name, PBRMetallicRoughness: pbr}
		if m.NormalTexture != document.Absent {
			mat.NormalTexture = &gltf.NormalTexture{Index: gltfPtr(m.NormalTexture)}
		}
		out.Materials = append(out.Materials, mat)
	}

	for _, s := range doc.Samplers {
		out.Samplers = append(out.Samplers, &gltf.Sampler{
			MagFilter: toGLTFMagFilter(s.MagFilter),
			MinFilter: toGLTFMinFilter(s.MinFilter),
			WrapS:     toGLTFWrap(s.WrapS),
			WrapT:     toGLTFWrap(s.WrapT),
		})
	}

	for _, t := range doc.Textures {
		out.Textures = append(out.Textures, &gltf.Texture{
			Name:    t.Name,
			Source:  gltfOptional(t.Source),
			Sampler: gltfOptional(t.Sampler),
		})
	}

	for i := range doc.Images {
		img := &doc.Images[i]
		outImg := &gltf.Image{Name: img.Name, MimeType: img.MimeType, URI: img.URI}
		switch {
		case img.Decoded():
			encoded, err := encodePNG(img)
			if err != nil {
				return nil, fmt.Errorf("image %d: %w", i, err)
			}
			data = pad4(data)
			out.BufferViews = append(out.BufferViews, &gltf.BufferView{
				Buffer:     0,
				ByteOffset: len(data),
				ByteLength: len(encoded),
			})
			data = append(data, encoded...)
			outImg.URI = ""
			outImg.MimeType = "image/png"
			outImg.BufferView = gltfPtr(len(out.BufferViews) - 1)
		case img.BufferView != document.Absent:
			outImg.BufferView = gltfPtr(img.BufferView)
		}
		out.Images = append(out.Images, outImg)
	}

	for _, n := range doc.Nodes {
		node := &gltf.Node{
			Name:     n.Name,
			Children: append([]int(nil), n.Children...),
			Mesh:     gltfOptional(n.Mesh),
			Skin:     gltfOptional(n.Skin),
			Matrix:   gltfIdentityMatrix,
		}
		if n.Matrix != nil {
			for c, v := range n.Matrix {
				node.Matrix[c] = float64(v)
			}
		}
		for c, v := range n.Translation {
			node.Translation[c] = float64(v)
		}
		for c, v := range n.Rotation {
			node.Rotation[c] = float64(v)
		}
		for c, v := range n.Scale {
			node.Scale[c] = float64(v)
		}
		out.Nodes = append(out.Nodes, node)
	}

	for _, s := range doc.Scenes {
		out.Scenes = append(out.Scenes, &gltf.Scene{Name: s.Name, Nodes: append([]int(nil), s.Nodes...)})
	}

	for _, s := range doc.Skins {
		out.Skins = append(out.Skins, &gltf.Skin{
			Name:                s.Name,
			Joints:              append([]int(nil), s.Joints...),
			Skeleton:            gltfOptional(s.Skeleton),
			InverseBindMatrices: gltfOptional(s.InverseBindMatrices),
		})
	}

	for _, a := range doc.Animations {
		anim := &gltf.Animation{Name: a.Name}
		for _, s := range a.Samplers {
			anim.Samplers = append(anim.Samplers, &gltf.AnimationSampler{
				Input:         s.Input,
				Output:        s.Output,
				Interpolation: toGLTFInterpolation(s.Interpolation),
			})
		}
		for _, c := range a.Channels {
			anim.Channels = append(anim.Channels, &gltf.Channel{
				Sampler: c.Sampler,
				Target: gltf.ChannelTarget{
					Node: gltfOptional(c.Node),
					Path: toGLTFPath(c.Path),
				},
			})
		}
		out.Animations = append(out.Animations, anim)
	}

	if len(data) > 0 {
		data = pad4(data)
		out.Buffers = []*gltf.Buffer{{ByteLength: len(data), Data: data}}
	}
	return out, nil
}

func encodePNG(img *document.Image) ([]byte, error) {
	rgba := &image.NRGBA{
		Pix:    img.Pixels,
		Stride: img.Width * 4,
		Rect:   image.Rect(0, 0, img.Width, img.Height),
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, rgba); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func pad4(data []byte) []byte {
	for len(data)%4 != 0 {
		data = append(data, 0)
	}
	return data
}

func gltfPtr(i int) *int {
	return &i
}

func gltfOptional(i int) *int {
	if i == document.Absent {
		return nil
	}
	return gltfPtr(i)
}

func toFloat64s(values []float32) []float64 {
	if len(values) == 0 {
		return nil
	}
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = float64(v)
	}
	return out
}

func toGLTFComponentType(ct document.ComponentType) gltf.ComponentType {
	switch ct {
	case document.ComponentInt8:
		return gltf.ComponentByte
	case document.ComponentUint8:
		return gltf.ComponentUbyte
	case document.ComponentInt16:
		return gltf.ComponentShort
	case document.ComponentUint16:
		return gltf.ComponentUshort
	case document.ComponentUint32:
		return gltf.ComponentUint
	default:
		return gltf.ComponentFloat
	}
}

func toGLTFAccessorType(t document.StructuralType) gltf.AccessorType {
	switch t {
	case document.TypeVec2:
		return gltf.AccessorVec2
	case document.TypeVec3:
		return gltf.AccessorVec3
	case document.TypeVec4:
		return gltf.AccessorVec4
	case document.TypeMat2:
		return gltf.AccessorMat2
	case document.TypeMat3:
		return gltf.AccessorMat3
	case document.TypeMat4:
		return gltf.AccessorMat4
	default:
		return gltf.AccessorScalar
	}
}

func toGLTFPrimitiveMode(m document.PrimitiveMode) gltf.PrimitiveMode {
	switch m {
	case document.ModePoints:
		return gltf.PrimitivePoints
	case document.ModeLines:
		return gltf.PrimitiveLines
	case document.ModeLineLoop:
		return gltf.PrimitiveLineLoop
	case document.ModeLineStrip:
		return gltf.PrimitiveLineStrip
	case document.ModeTriangleStrip:
		return gltf.PrimitiveTriangleStrip
	case document.ModeTriangleFan:
		return gltf.PrimitiveTriangleFan
	default:
		return gltf.PrimitiveTriangles
	}
}

func toGLTFMagFilter(f int) gltf.MagFilter {
	switch f {
	case document.FilterNearest:
		return gltf.MagNearest
	case document.FilterLinear:
		return gltf.MagLinear
	default:
		return gltf.MagUndefined
	}
}

func toGLTFMinFilter(f int) gltf.MinFilter {
	switch f {
	case document.FilterNearest:
		return gltf.MinNearest
	case document.FilterLinear:
		return gltf.MinLinear
	case document.FilterNearestMipmapNearest:
		return gltf.MinNearestMipMapNearest
	case document.FilterLinearMipmapNearest:
		return gltf.MinLinearMipMapNearest
	case document.FilterNearestMipmapLinear:
		return gltf.MinNearestMipMapLinear
	case document.FilterLinearMipmapLinear:
		return gltf.MinLinearMipMapLinear
	default:
		return gltf.MinUndefined
	}
}

func toGLTFWrap(w int) gltf.WrappingMode {
	switch w {
	case document.WrapClampToEdge:
		return gltf.WrapClampToEdge
	case document.WrapMirroredRepeat:
		return gltf.WrapMirroredRepeat
	default:
		return gltf.WrapRepeat
	}
}

func toGLTFInterpolation(i document.Interpolation) gltf.Interpolation {
	switch i {
	case document.InterpolationStep:
		return gltf.InterpolationStep
	case document.InterpolationCubicSpline:
		return gltf.InterpolationCubicSpline
	default:
		return gltf.InterpolationLinear
	}
}

func toGLTFPath(p document.AnimationPath) gltf.TRSProperty {
	switch p {
	case document.PathRotation:
		return gltf.TRSRotation
	case document.PathScale:
		return gltf.TRSScale
	case document.PathWeights:
		return gltf.TRSWeights
	default:
		return gltf.TRSTranslation
	}
}
