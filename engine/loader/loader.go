package loader

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/asset"
	"github.com/Carmen-Shannon/oxy-scene/engine/document"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"go.uber.org/zap"
)

// LoaderBackendType identifies the asset file format backend to use.
type LoaderBackendType int

const (
	// BackendTypeGLTF selects the glTF/GLB loader backend.
	BackendTypeGLTF LoaderBackendType = iota
)

// loader is the implementation of the Loader interface.
type loader struct {
	backend loaderBackend

	log *zap.Logger

	// workers bounds the number of images decoded at once.
	workers int

	poolOnce sync.Once
	pool     worker.DynamicWorkerPool
}

// Loader reads asset files into documents. It satisfies asset.Decoder, so a Manager can load
// through it directly. Image decoding runs on a bounded worker pool shared by every call.
type Loader interface {
	asset.Decoder

	// DecodeReader decodes an asset from a reader stream.
	// Relative URIs for external buffers and images resolve against baseDir.
	//
	// Parameters:
	//   - r: the reader providing glTF JSON or GLB data
	//   - baseDir: the directory relative URIs resolve against
	//   - images: true to decode texture images into RGBA pixels
	//
	// Returns:
	//   - *document.Document: the decoded document
	//   - error: ErrParse if the stream is malformed, ErrIO if an external resource cannot be read
	DecodeReader(r io.Reader, baseDir string, images bool) (*document.Document, error)
}

var _ Loader = &loader{}

// NewLoader creates a new Loader instance with the specified backend type and options applied.
//
// Parameters:
//   - backendType: the type of loader backend to use (e.g., BackendTypeGLTF)
//   - options: a variadic list of LoaderBuilderOption functions to configure the Loader
//
// Returns:
//   - Loader: a new instance of Loader configured with the provided backend and options
func NewLoader(backendType LoaderBackendType, options ...LoaderBuilderOption) Loader {
	l := &loader{
		log:     zap.NewNop(),
		workers: 4,
	}

	switch backendType {
	case BackendTypeGLTF:
		l.backend = newGLTFLoaderBackend()
	}

	for _, option := range options {
		option(l)
	}
	return l
}

func (l *loader) Decode(path string, images bool) (*document.Document, error) {
	if err := checkExtension(path); err != nil {
		return nil, err
	}

	start := time.Now()
	doc, sources, err := l.backend.Load(path)
	if err != nil {
		return nil, err
	}
	if images {
		if err := l.decodeImages(doc, sources); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}

	l.log.Debug("decoded asset",
		zap.String("path", path),
		zap.Int("meshes", len(doc.Meshes)),
		zap.Int("images", len(doc.Images)),
		zap.Bool("decodeImages", images),
		zap.Duration("elapsed", time.Since(start)),
	)
	return doc, nil
}

func (l *loader) DecodeReader(r io.Reader, baseDir string, images bool) (*document.Document, error) {
	doc, sources, err := l.backend.LoadReader(r, baseDir)
	if err != nil {
		return nil, err
	}
	if images {
		if err := l.decodeImages(doc, sources); err != nil {
			return nil, err
		}
	}
	return doc, nil
}

// decodeImages decodes every image source in parallel and stores the pixels on doc.Images.
// The first failure is returned after all tasks finish.
func (l *loader) decodeImages(doc *document.Document, sources []common.EncodedImage) error {
	if len(sources) == 0 {
		return nil
	}
	l.poolOnce.Do(func() {
		l.pool = worker.NewDynamicWorkerPool(l.workers, 64, 1*time.Second)
	})

	errs := make([]error, len(sources))
	var wg sync.WaitGroup
	for i := range sources {
		wg.Add(1)
		idx := i
		l.pool.SubmitTask(worker.Task{
			ID: idx,
			Do: func() (any, error) {
				defer wg.Done()
				staged, err := sources[idx].Decode()
				if err != nil {
					errs[idx] = err
					return nil, err
				}
				img := &doc.Images[idx]
				img.Pixels = staged.Pixels
				img.Width = int(staged.Width)
				img.Height = int(staged.Height)
				return nil, nil
			},
		})
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			l.log.Warn("image decode failed", zap.Int("image", i), zap.Error(err))
			return fmt.Errorf("%w: image %d: %w", asset.ErrParse, i, err)
		}
	}
	return nil
}

// checkExtension rejects files that no backend reads.
func checkExtension(path string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gltf", ".glb":
		return nil
	default:
		return fmt.Errorf("%w: unsupported file extension %q", asset.ErrParse, filepath.Ext(path))
	}
}
