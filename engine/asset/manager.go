package asset

import (
	"fmt"
	"sort"
	"sync"

	"github.com/Carmen-Shannon/oxy-scene/engine/document"

	"go.uber.org/zap"
)

// AssetID identifies a loaded asset. Ids are allocated in increasing order and never reused.
type AssetID uint64

// Decoder turns an asset file into a document.
// It is the boundary to file formats; the Manager never parses anything itself.
type Decoder interface {
	// Decode reads and decodes the asset at path.
	//
	// Parameters:
	//   - path: the asset file path
	//   - images: true to decode texture images into RGBA pixels
	//
	// Returns:
	//   - *document.Document: the decoded document
	//   - error: ErrIO if the file cannot be read, ErrParse if it is malformed
	Decode(path string, images bool) (*document.Document, error)
}

// Manager is the registry of loaded assets.
// Getters return an absent value instead of failing when an id, path or index is unknown;
// only loading and device operations report errors.
type Manager interface {
	// LoadAsset decodes, resolves and registers the asset at path.
	// A path that is already registered returns its existing id unless WithReload is given,
	// in which case the asset is re-read and replaces the registered graph under the same id.
	// A failed load never registers an id and leaves any previous graph in place.
	//
	// Parameters:
	//   - path: the asset file path
	//   - opts: load options
	//
	// Returns:
	//   - AssetID: the asset id
	//   - error: the decode or resolution error
	LoadAsset(path string, opts ...LoadOption) (AssetID, error)

	// LoadDocument resolves and registers an already decoded document under path.
	//
	// Parameters:
	//   - path: the path to register the document under
	//   - doc: the decoded document
	//   - opts: load options
	//
	// Returns:
	//   - AssetID: the asset id
	//   - error: the resolution error
	LoadDocument(path string, doc *document.Document, opts ...LoadOption) (AssetID, error)

	// Lookup returns the id registered for path.
	Lookup(path string) (AssetID, bool)

	// Path returns the path an asset was loaded from.
	Path(id AssetID) (string, bool)

	// Graph returns the resolved graph of an asset.
	Graph(id AssetID) (*AssetGraph, bool)

	// Document returns the decoded document an asset was resolved from.
	Document(id AssetID) (*document.Document, bool)

	// Mesh returns mesh i of an asset.
	Mesh(id AssetID, i int) (*Mesh, bool)

	// Material returns material i of an asset.
	Material(id AssetID, i int) (*Material, bool)

	// Accessor returns accessor i of an asset.
	Accessor(id AssetID, i int) (*TypedAccessor, bool)

	// MeshByPath returns mesh i of the asset registered for path.
	MeshByPath(path string, i int) (*Mesh, bool)

	// MaterialByPath returns material i of the asset registered for path.
	MaterialByPath(path string, i int) (*Material, bool)

	// AccessorByPath returns accessor i of the asset registered for path.
	AccessorByPath(path string, i int) (*TypedAccessor, bool)

	// GpuUploadAll materializes every primitive and material of an asset.
	//
	// Parameters:
	//   - id: the asset id
	//   - bindings: the attribute to slot map
	//
	// Returns:
	//   - error: ErrUnknownAsset or ErrGpuResource
	GpuUploadAll(id AssetID, bindings AttributeBindingMap) error

	// Release unloads an asset: its device resources are released and its id and path are forgotten.
	//
	// Parameters:
	//   - id: the asset id
	//
	// Returns:
	//   - error: ErrUnknownAsset, or ErrGpuResource if a device release failed
	Release(id AssetID) error

	// Assets returns every registered id in increasing order.
	Assets() []AssetID

	// Materializer returns the materializer used for device uploads.
	Materializer() Materializer

	// Close releases every asset.
	Close() error
}

type entry struct {
	path  string
	doc   *document.Document
	graph *AssetGraph
}

type manager struct {
	mu sync.RWMutex

	decoder      Decoder
	materializer Materializer
	log          *zap.Logger

	// next is the last id handed out.
	next   AssetID
	assets map[AssetID]*entry
	paths  map[string]AssetID
}

var _ Manager = &manager{}

// NewManager creates a Manager with the given options applied.
// Without WithDecoder, LoadAsset fails; LoadDocument still works.
// Without WithMaterializer, uploads go to a headless MemoryDevice.
//
// Parameters:
//   - options: a variadic list of ManagerBuilderOption functions
//
// Returns:
//   - Manager: the new manager
func NewManager(options ...ManagerBuilderOption) Manager {
	m := &manager{
		log:    zap.NewNop(),
		assets: make(map[AssetID]*entry),
		paths:  make(map[string]AssetID),
	}
	for _, option := range options {
		option(m)
	}
	if m.materializer == nil {
		m.materializer = NewMaterializer(newDefaultDevice(), WithMaterializerLogger(m.log))
	}
	return m
}

func (m *manager) LoadAsset(path string, opts ...LoadOption) (AssetID, error) {
	o := defaultLoadOptions()
	for _, opt := range opts {
		opt(&o)
	}

	if id, ok := m.Lookup(path); ok && !o.reload {
		return id, nil
	}
	if m.decoder == nil {
		return 0, fmt.Errorf("%w: no decoder configured for %q", ErrIO, path)
	}

	doc, err := m.decoder.Decode(path, o.loadAll)
	if err != nil {
		m.log.Warn("asset decode failed", zap.String("path", path), zap.Error(err))
		return 0, err
	}
	return m.register(path, doc, o)
}

func (m *manager) LoadDocument(path string, doc *document.Document, opts ...LoadOption) (AssetID, error) {
	o := defaultLoadOptions()
	for _, opt := range opts {
		opt(&o)
	}

	if id, ok := m.Lookup(path); ok && !o.reload {
		return id, nil
	}
	return m.register(path, doc, o)
}

// register resolves doc and stores it under path, replacing the existing graph on reload.
func (m *manager) register(path string, doc *document.Document, o loadOptions) (AssetID, error) {
	graph, err := Resolve(doc, WithTextures(o.loadAll), WithResolveLogger(m.log))
	if err != nil {
		m.log.Warn("asset resolution failed", zap.String("path", path), zap.Error(err))
		return 0, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if id, ok := m.paths[path]; ok {
		if !o.reload {
			return id, nil
		}
		old := m.assets[id]
		if err := m.materializer.ReleaseGraph(old.graph); err != nil {
			m.log.Warn("releasing replaced asset", zap.Uint64("asset", uint64(id)), zap.Error(err))
		}
		m.assets[id] = &entry{path: path, doc: doc, graph: graph}
		m.log.Info("asset reloaded", zap.Uint64("asset", uint64(id)), zap.String("path", path))
		return id, nil
	}

	m.next++
	id := m.next
	m.assets[id] = &entry{path: path, doc: doc, graph: graph}
	m.paths[path] = id
	m.log.Info("asset loaded",
		zap.Uint64("asset", uint64(id)),
		zap.String("path", path),
		zap.Int("meshes", len(graph.Meshes)),
		zap.Int("animations", len(graph.Animations)),
	)
	return id, nil
}

func (m *manager) Lookup(path string) (AssetID, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.paths[path]
	return id, ok
}

func (m *manager) get(id AssetID) (*entry, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.assets[id]
	return e, ok
}

func (m *manager) Path(id AssetID) (string, bool) {
	e, ok := m.get(id)
	if !ok {
		return "", false
	}
	return e.path, true
}

func (m *manager) Graph(id AssetID) (*AssetGraph, bool) {
	e, ok := m.get(id)
	if !ok {
		return nil, false
	}
	return e.graph, true
}

func (m *manager) Document(id AssetID) (*document.Document, bool) {
	e, ok := m.get(id)
	if !ok {
		return nil, false
	}
	return e.doc, true
}

func (m *manager) Mesh(id AssetID, i int) (*Mesh, bool) {
	g, ok := m.Graph(id)
	if !ok {
		return nil, false
	}
	return g.Mesh(i)
}

func (m *manager) Material(id AssetID, i int) (*Material, bool) {
	g, ok := m.Graph(id)
	if !ok {
		return nil, false
	}
	return g.Material(i)
}

func (m *manager) Accessor(id AssetID, i int) (*TypedAccessor, bool) {
	g, ok := m.Graph(id)
	if !ok {
		return nil, false
	}
	return g.Accessor(i)
}

func (m *manager) MeshByPath(path string, i int) (*Mesh, bool) {
	id, ok := m.Lookup(path)
	if !ok {
		return nil, false
	}
	return m.Mesh(id, i)
}

func (m *manager) MaterialByPath(path string, i int) (*Material, bool) {
	id, ok := m.Lookup(path)
	if !ok {
		return nil, false
	}
	return m.Material(id, i)
}

func (m *manager) AccessorByPath(path string, i int) (*TypedAccessor, bool) {
	id, ok := m.Lookup(path)
	if !ok {
		return nil, false
	}
	return m.Accessor(id, i)
}

func (m *manager) GpuUploadAll(id AssetID, bindings AttributeBindingMap) error {
	g, ok := m.Graph(id)
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownAsset, id)
	}
	if err := m.materializer.UploadGraph(g, bindings, false); err != nil {
		m.log.Error("asset upload failed", zap.Uint64("asset", uint64(id)), zap.Error(err))
		return err
	}
	m.log.Debug("asset uploaded", zap.Uint64("asset", uint64(id)))
	return nil
}

func (m *manager) Release(id AssetID) error {
	m.mu.Lock()
	e, ok := m.assets[id]
	if ok {
		delete(m.assets, id)
		delete(m.paths, e.path)
	}
	m.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownAsset, id)
	}
	m.log.Info("asset released", zap.Uint64("asset", uint64(id)), zap.String("path", e.path))
	return m.materializer.ReleaseGraph(e.graph)
}

func (m *manager) Assets() []AssetID {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]AssetID, 0, len(m.assets))
	for id := range m.assets {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (m *manager) Materializer() Materializer {
	return m.materializer
}

func (m *manager) Close() error {
	var first error
	for _, id := range m.Assets() {
		if err := m.Release(id); err != nil && first == nil {
			first = err
		}
	}
	return first
}
