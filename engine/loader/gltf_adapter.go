// gltf_adapter.go converts between github.com/qmuntal/gltf documents and the engine's flat document.
// It is the only file that knows the library's types; everything downstream sees document.Document.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html
package loader

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/document"

	"github.com/qmuntal/gltf"
)

var (
	gltfIdentityMatrix = [16]float64{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1}
	gltfZeroMatrix     = [16]float64{}
)

// gltfToDocument converts a decoded glTF document. Image bytes are not decoded here; the
// returned sources line up with doc.Images and are decoded by the caller.
//
// Parameters:
//   - src: the decoded glTF document with buffer data loaded
//   - baseDir: the directory external image URIs are relative to
//
// Returns:
//   - *document.Document: the converted document
//   - []common.EncodedImage: one encoded source per image
//   - error: error if the document uses an enum value the engine does not know
func gltfToDocument(src *gltf.Document, baseDir string) (*document.Document, []common.EncodedImage, error) {
	doc := &document.Document{
		Scene:              gltfIndex(src.Scene),
		ExtensionsRequired: append([]string(nil), src.ExtensionsRequired...),
	}

	doc.Buffers = make([]document.Buffer, len(src.Buffers))
	for i, b := range src.Buffers {
		doc.Buffers[i] = document.Buffer{Name: b.Name, Data: b.Data}
	}

	doc.BufferViews = make([]document.BufferView, len(src.BufferViews))
	for i, v := range src.BufferViews {
		doc.BufferViews[i] = document.BufferView{
			Name:       v.Name,
			Buffer:     v.Buffer,
			ByteOffset: v.ByteOffset,
			ByteLength: v.ByteLength,
			ByteStride: v.ByteStride,
		}
	}

	doc.Accessors = make([]document.Accessor, len(src.Accessors))
	for i, a := range src.Accessors {
		ct, err := gltfComponentType(a.ComponentType)
		if err != nil {
			return nil, nil, fmt.Errorf("accessor %d: %w", i, err)
		}
		st, err := gltfStructuralType(a.Type)
		if err != nil {
			return nil, nil, fmt.Errorf("accessor %d: %w", i, err)
		}
		acc := document.Accessor{
			Name:          a.Name,
			BufferView:    gltfIndex(a.BufferView),
			ByteOffset:    a.ByteOffset,
			ComponentType: ct,
			Normalized:    a.Normalized,
			Count:         a.Count,
			Type:          st,
			Min:           toFloat32s(a.Min),
			Max:           toFloat32s(a.Max),
			Sparse:        a.Sparse != nil,
		}
		for name := range a.Extensions {
			acc.Extensions = append(acc.Extensions, name)
		}
		sort.Strings(acc.Extensions)
		doc.Accessors[i] = acc
	}

	doc.Meshes = make([]document.Mesh, len(src.Meshes))
	for i, m := range src.Meshes {
		mesh := document.Mesh{
			Name:       m.Name,
			Primitives: make([]document.Primitive, len(m.Primitives)),
			Weights:    toFloat32s(m.Weights),
		}
		for j, p := range m.Primitives {
			attrs := make(map[string]int, len(p.Attributes))
			for name, idx := range p.Attributes {
				attrs[name] = idx
			}
			mesh.Primitives[j] = document.Primitive{
				Attributes: attrs,
				Indices:    gltfIndex(p.Indices),
				Material:   gltfIndex(p.Material),
				Mode:       gltfPrimitiveMode(p.Mode),
				Targets:    len(p.Targets),
			}
		}
		doc.Meshes[i] = mesh
	}

	doc.Materials = make([]document.Material, len(src.Materials))
	for i, m := range src.Materials {
		mat := document.NewMaterial(m.Name)
		if pbr := m.PBRMetallicRoughness; pbr != nil {
			if pbr.BaseColorFactor != nil {
				for c, v := range pbr.BaseColorFactor {
					mat.BaseColorFactor[c] = float32(v)
				}
			}
			if pbr.BaseColorTexture != nil {
				mat.BaseColorTexture = pbr.BaseColorTexture.Index
			}
		}
		if m.NormalTexture != nil {
			mat.NormalTexture = gltfIndex(m.NormalTexture.Index)
		}
		for name := range m.Extensions {
			mat.Extensions = append(mat.Extensions, name)
		}
		sort.Strings(mat.Extensions)
		doc.Materials[i] = mat
	}

	doc.Samplers = make([]document.Sampler, len(src.Samplers))
	for i, s := range src.Samplers {
		doc.Samplers[i] = document.Sampler{
			MagFilter: gltfMagFilter(s.MagFilter),
			MinFilter: gltfMinFilter(s.MinFilter),
			WrapS:     gltfWrap(s.WrapS),
			WrapT:     gltfWrap(s.WrapT),
		}
	}

	doc.Textures = make([]document.Texture, len(src.Textures))
	for i, t := range src.Textures {
		doc.Textures[i] = document.Texture{
			Name:    t.Name,
			Source:  gltfIndex(t.Source),
			Sampler: gltfIndex(t.Sampler),
		}
	}

	doc.Images = make([]document.Image, len(src.Images))
	sources := make([]common.EncodedImage, len(src.Images))
	for i, img := range src.Images {
		doc.Images[i] = document.Image{
			Name:       img.Name,
			URI:        img.URI,
			MimeType:   img.MimeType,
			BufferView: gltfIndex(img.BufferView),
		}
		source, err := gltfImageSource(doc, img, baseDir)
		if err != nil {
			return nil, nil, fmt.Errorf("image %d: %w", i, err)
		}
		sources[i] = source
	}

	doc.Nodes = make([]document.Node, len(src.Nodes))
	for i, n := range src.Nodes {
		node := document.NewNode(n.Name)
		node.Children = append([]int(nil), n.Children...)
		node.Mesh = gltfIndex(n.Mesh)
		node.Skin = gltfIndex(n.Skin)
		if n.Matrix != gltfZeroMatrix && n.Matrix != gltfIdentityMatrix {
			var m [16]float32
			for c, v := range n.Matrix {
				m[c] = float32(v)
			}
			node.Matrix = &m
		}
		for c, v := range n.Translation {
			node.Translation[c] = float32(v)
		}
		for c, v := range n.Rotation {
			node.Rotation[c] = float32(v)
		}
		for c, v := range n.Scale {
			node.Scale[c] = float32(v)
		}
		doc.Nodes[i] = node
	}

	doc.Scenes = make([]document.Scene, len(src.Scenes))
	for i, s := range src.Scenes {
		doc.Scenes[i] = document.Scene{Name: s.Name, Nodes: append([]int(nil), s.Nodes...)}
	}

	doc.Skins = make([]document.Skin, len(src.Skins))
	for i, s := range src.Skins {
		doc.Skins[i] = document.Skin{
			Name:                s.Name,
			Joints:              append([]int(nil), s.Joints...),
			Skeleton:            gltfIndex(s.Skeleton),
			InverseBindMatrices: gltfIndex(s.InverseBindMatrices),
		}
	}

	doc.Animations = make([]document.Animation, len(src.Animations))
	for i, a := range src.Animations {
		anim := document.Animation{
			Name:     a.Name,
			Channels: make([]document.Channel, len(a.Channels)),
			Samplers: make([]document.AnimationSampler, len(a.Samplers)),
		}
		for j, s := range a.Samplers {
			anim.Samplers[j] = document.AnimationSampler{
				Input:         s.Input,
				Output:        s.Output,
				Interpolation: gltfInterpolation(s.Interpolation),
			}
		}
		for j, c := range a.Channels {
			anim.Channels[j] = document.Channel{
				Sampler: c.Sampler,
				Node:    gltfIndex(c.Target.Node),
				Path:    gltfPath(c.Target.Path),
			}
		}
		doc.Animations[i] = anim
	}

	return doc, sources, nil
}

// gltfImageSource locates the encoded bytes of an image: a buffer view, a data URI or a file
// relative to baseDir.
func gltfImageSource(doc *document.Document, img *gltf.Image, baseDir string) (common.EncodedImage, error) {
	source := common.EncodedImage{Name: img.Name, MimeType: img.MimeType}
	switch {
	case img.BufferView != nil:
		data, err := bufferViewBytes(doc, *img.BufferView)
		if err != nil {
			return source, err
		}
		source.Data = data
	case strings.HasPrefix(img.URI, "data:"):
		data, mimeType, err := gltfDecodeDataURI(img.URI)
		if err != nil {
			return source, err
		}
		source.Data = data
		source.MimeType = common.Coalesce(source.MimeType, mimeType)
	case img.URI != "":
		source.Path = filepath.Join(baseDir, filepath.FromSlash(img.URI))
	}
	return source, nil
}

// bufferViewBytes returns the bytes of a buffer view, bounds-checked.
func bufferViewBytes(doc *document.Document, index int) ([]byte, error) {
	if index < 0 || index >= len(doc.BufferViews) {
		return nil, fmt.Errorf("bufferView index %d out of range", index)
	}
	bv := &doc.BufferViews[index]
	if bv.Buffer < 0 || bv.Buffer >= len(doc.Buffers) {
		return nil, fmt.Errorf("buffer index %d out of range", bv.Buffer)
	}
	buf := &doc.Buffers[bv.Buffer]
	end := bv.ByteOffset + bv.ByteLength
	if bv.ByteOffset < 0 || end > len(buf.Data) {
		return nil, fmt.Errorf("bufferView exceeds buffer bounds: offset=%d length=%d bufSize=%d", bv.ByteOffset, bv.ByteLength, len(buf.Data))
	}
	return buf.Data[bv.ByteOffset:end], nil
}

func gltfIndex(i *int) int {
	if i == nil {
		return document.Absent
	}
	return *i
}

func toFloat32s(values []float64) []float32 {
	if len(values) == 0 {
		return nil
	}
	out := make([]float32, len(values))
	for i, v := range values {
		out[i] = float32(v)
	}
	return out
}

func gltfComponentType(ct gltf.ComponentType) (document.ComponentType, error) {
	switch ct {
	case gltf.ComponentByte:
		return document.ComponentInt8, nil
	case gltf.ComponentUbyte:
		return document.ComponentUint8, nil
	case gltf.ComponentShort:
		return document.ComponentInt16, nil
	case gltf.ComponentUshort:
		return document.ComponentUint16, nil
	case gltf.ComponentUint:
		return document.ComponentUint32, nil
	case gltf.ComponentFloat:
		return document.ComponentFloat32, nil
	default:
		return 0, fmt.Errorf("unknown component type %v", ct)
	}
}

func gltfStructuralType(t gltf.AccessorType) (document.StructuralType, error) {
	switch t {
	case gltf.AccessorScalar:
		return document.TypeScalar, nil
	case gltf.AccessorVec2:
		return document.TypeVec2, nil
	case gltf.AccessorVec3:
		return document.TypeVec3, nil
	case gltf.AccessorVec4:
		return document.TypeVec4, nil
	case gltf.AccessorMat2:
		return document.TypeMat2, nil
	case gltf.AccessorMat3:
		return document.TypeMat3, nil
	case gltf.AccessorMat4:
		return document.TypeMat4, nil
	default:
		return 0, fmt.Errorf("unknown accessor type %v", t)
	}
}

func gltfPrimitiveMode(m gltf.PrimitiveMode) document.PrimitiveMode {
	switch m {
	case gltf.PrimitivePoints:
		return document.ModePoints
	case gltf.PrimitiveLines:
		return document.ModeLines
	case gltf.PrimitiveLineLoop:
		return document.ModeLineLoop
	case gltf.PrimitiveLineStrip:
		return document.ModeLineStrip
	case gltf.PrimitiveTriangleStrip:
		return document.ModeTriangleStrip
	case gltf.PrimitiveTriangleFan:
		return document.ModeTriangleFan
	default:
		return document.ModeTriangles
	}
}

func gltfMagFilter(f gltf.MagFilter) int {
	switch f {
	case gltf.MagNearest:
		return document.FilterNearest
	case gltf.MagLinear:
		return document.FilterLinear
	default:
		return 0
	}
}

func gltfMinFilter(f gltf.MinFilter) int {
	switch f {
	case gltf.MinNearest:
		return document.FilterNearest
	case gltf.MinLinear:
		return document.FilterLinear
	case gltf.MinNearestMipMapNearest:
		return document.FilterNearestMipmapNearest
	case gltf.MinLinearMipMapNearest:
		return document.FilterLinearMipmapNearest
	case gltf.MinNearestMipMapLinear:
		return document.FilterNearestMipmapLinear
	case gltf.MinLinearMipMapLinear:
		return document.FilterLinearMipmapLinear
	default:
		return 0
	}
}

func gltfWrap(w gltf.WrappingMode) int {
	switch w {
	case gltf.WrapClampToEdge:
		return document.WrapClampToEdge
	case gltf.WrapMirroredRepeat:
		return document.WrapMirroredRepeat
	default:
		return document.WrapRepeat
	}
}

func gltfInterpolation(i gltf.Interpolation) document.Interpolation {
	switch i {
	case gltf.InterpolationStep:
		return document.InterpolationStep
	case gltf.InterpolationCubicSpline:
		return document.InterpolationCubicSpline
	default:
		return document.InterpolationLinear
	}
}

func gltfPath(p gltf.TRSProperty) document.AnimationPath {
	switch p {
	case gltf.TRSRotation:
		return document.PathRotation
	case gltf.TRSScale:
		return document.PathScale
	case gltf.TRSWeights:
		return document.PathWeights
	default:
		return document.PathTranslation
	}
}
