package main

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-scene/engine/asset"
	"github.com/Carmen-Shannon/oxy-scene/engine/config"
	"github.com/Carmen-Shannon/oxy-scene/engine/document"
	"github.com/Carmen-Shannon/oxy-scene/engine/gpu"
	"github.com/Carmen-Shannon/oxy-scene/engine/loader"
	"github.com/Carmen-Shannon/oxy-scene/engine/logger"

	"go.uber.org/zap"
)

func cmdInspect(args []string) {
	cfg, fs := setup("inspect", args)
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: oxyscene inspect [options] <file>...")
		os.Exit(1)
	}
	defer logger.Sync()

	paths := fs.Args()
	docs, errs := decodeAll(newDecoder(cfg), paths, cfg)

	device := gpu.NewMemoryDevice()
	defer device.Close()
	m := newManager(nil, device)
	defer m.Close()

	failed := false
	for i, path := range paths {
		if errs[i] != nil {
			fmt.Printf("%s: %v\n\n", path, errs[i])
			failed = true
			continue
		}
		id, err := m.LoadDocument(path, docs[i], asset.WithLoadAll(cfg.Loader.LoadAll))
		if err != nil {
			fmt.Printf("%s: %v\n\n", path, err)
			failed = true
			continue
		}
		g, _ := m.Graph(id)
		printSummary(path, docs[i], g)
	}
	if failed {
		os.Exit(1)
	}
}

// decodeAll decodes every path on a worker pool and returns the documents and errors by index.
func decodeAll(dec loader.Loader, paths []string, cfg *config.Config) ([]*document.Document, []error) {
	log := logger.Named("inspect")
	pool := worker.NewDynamicWorkerPool(cfg.Loader.Workers, len(paths), 1*time.Second)

	docs := make([]*document.Document, len(paths))
	errs := make([]error, len(paths))
	var wg sync.WaitGroup
	for i := range paths {
		wg.Add(1)
		idx := i
		pool.SubmitTask(worker.Task{
			ID: idx,
			Do: func() (any, error) {
				defer wg.Done()
				start := time.Now()
				doc, err := dec.Decode(paths[idx], cfg.Loader.LoadAll)
				docs[idx], errs[idx] = doc, err
				log.Debug("decoded", zap.String("path", paths[idx]), zap.Duration("took", time.Since(start)), zap.Error(err))
				return nil, err
			},
		})
	}
	wg.Wait()
	return docs, errs
}

func printSummary(path string, doc *document.Document, g *asset.AssetGraph) {
	primitives := 0
	for _, mesh := range g.Meshes {
		primitives += len(mesh.Primitives)
	}
	loadedImages := 0
	for _, img := range doc.Images {
		if img.Pixels != nil {
			loadedImages++
		}
	}

	fmt.Printf("Asset:      %s\n", path)
	fmt.Printf("Buffers:    %d (%d views, %d accessors)\n", len(g.Buffers), len(g.Regions), len(g.Accessors))
	fmt.Printf("Meshes:     %d (%d primitives)\n", len(g.Meshes), primitives)
	fmt.Printf("Materials:  %d\n", len(g.Materials))
	fmt.Printf("Textures:   %d (%d of %d images decoded)\n", len(g.Textures), loadedImages, len(doc.Images))
	fmt.Printf("Nodes:      %d\n", len(g.Nodes))
	fmt.Printf("Skins:      %d\n", len(g.Skins))
	fmt.Printf("Scenes:     %d (default %d)\n", len(g.Scenes), g.DefaultScene)
	for _, s := range g.Scenes {
		fmt.Printf("  [%d] %-20s %d roots\n", s.Index, s.Name, len(s.Nodes))
	}
	fmt.Printf("Animations: %d\n", len(g.Animations))
	for _, a := range g.Animations {
		fmt.Printf("  [%d] %-20s %d channels  %.3fs\n", a.Index, a.Name, len(a.Channels), a.Duration)
	}
	fmt.Println()
}
