package loader

import (
	"io"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/document"
)

// loaderBackend defines the generic interface for reading asset files into documents.
// Concrete implementations (e.g., gltfLoaderBackend) handle format-specific details.
// Backends do not decode images; they return the encoded sources alongside the document.
type loaderBackend interface {
	// Load reads the asset at path.
	//
	// Parameters:
	//   - path: the file path to load
	//
	// Returns:
	//   - *document.Document: the decoded document, images not yet decoded
	//   - []common.EncodedImage: one encoded source per document image
	//   - error: error if reading or parsing fails
	Load(path string) (*document.Document, []common.EncodedImage, error)

	// LoadReader reads an asset from a reader stream. External resources resolve against baseDir.
	//
	// Parameters:
	//   - r: the reader providing asset data
	//   - baseDir: the directory relative URIs resolve against
	//
	// Returns:
	//   - *document.Document: the decoded document, images not yet decoded
	//   - []common.EncodedImage: one encoded source per document image
	//   - error: error if reading or parsing fails
	LoadReader(r io.Reader, baseDir string) (*document.Document, []common.EncodedImage, error)
}
