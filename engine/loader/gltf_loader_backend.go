package loader

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/asset"
	"github.com/Carmen-Shannon/oxy-scene/engine/document"

	"github.com/qmuntal/gltf"
)

// gltfLoaderBackendImpl is the implementation of gltfLoaderBackend.
type gltfLoaderBackendImpl struct{}

// gltfLoaderBackend is a loaderBackend implementation for glTF/GLB files.
// Parsing and buffer loading are delegated to github.com/qmuntal/gltf.
type gltfLoaderBackend interface {
	loaderBackend
}

var _ gltfLoaderBackend = &gltfLoaderBackendImpl{}

// newGLTFLoaderBackend creates a new glTF loader backend.
//
// Returns:
//   - gltfLoaderBackend: the loader backend for glTF/GLB files
func newGLTFLoaderBackend() gltfLoaderBackend {
	return &gltfLoaderBackendImpl{}
}

func (b *gltfLoaderBackendImpl) Load(path string) (*document.Document, []common.EncodedImage, error) {
	src, err := gltf.Open(path)
	if err != nil {
		return nil, nil, classifyOpenError(path, err)
	}
	return b.convert(src, filepath.Dir(path))
}

func (b *gltfLoaderBackendImpl) LoadReader(r io.Reader, baseDir string) (*document.Document, []common.EncodedImage, error) {
	var src gltf.Document
	if err := gltf.NewDecoder(r).Decode(&src); err != nil {
		return nil, nil, fmt.Errorf("%w: %w", asset.ErrParse, err)
	}
	return b.convert(&src, baseDir)
}

func (b *gltfLoaderBackendImpl) convert(src *gltf.Document, baseDir string) (*document.Document, []common.EncodedImage, error) {
	doc, sources, err := gltfToDocument(src, baseDir)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", asset.ErrParse, err)
	}
	return doc, sources, nil
}

// classifyOpenError maps a gltf.Open failure to ErrIO when a file could not be read and to
// ErrParse otherwise.
func classifyOpenError(path string, err error) error {
	var pathErr *fs.PathError
	if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) || errors.As(err, &pathErr) {
		return fmt.Errorf("%w: %s: %w", asset.ErrIO, path, err)
	}
	return fmt.Errorf("%w: %s: %w", asset.ErrParse, path, err)
}

// gltfDecodeDataURI decodes a base64 data URI into raw bytes and extracts the MIME type.
func gltfDecodeDataURI(uri string) ([]byte, string, error) {
	// Format: data:[<mediatype>][;base64],<data>
	if !strings.HasPrefix(uri, "data:") {
		return nil, "", fmt.Errorf("not a data URI")
	}

	commaIdx := strings.Index(uri, ",")
	if commaIdx < 0 {
		return nil, "", fmt.Errorf("malformed data URI: no comma found")
	}

	header := uri[5:commaIdx]
	encoded := uri[commaIdx+1:]

	mimeType, isBase64 := strings.CutSuffix(header, ";base64")
	if !isBase64 {
		return []byte(encoded), mimeType, nil
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode base64: %w", err)
	}
	return data, mimeType, nil
}
