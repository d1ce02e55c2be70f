package main

import (
	"fmt"
	"os"

	"github.com/Carmen-Shannon/oxy-scene/engine/asset"
	"github.com/Carmen-Shannon/oxy-scene/engine/config"
	"github.com/Carmen-Shannon/oxy-scene/engine/logger"
	"github.com/Carmen-Shannon/oxy-scene/engine/scene"
)

func cmdEval(args []string) {
	cfg, fs := setup("eval", args)
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: oxyscene eval [options] <file>")
		os.Exit(1)
	}
	defer logger.Sync()

	device, err := openDevice(cfg)
	if err != nil {
		fatal(err)
	}
	defer device.Close()

	m := newManager(newDecoder(cfg), device)
	defer m.Close()

	id, err := m.LoadAsset(fs.Arg(0), asset.WithLoadAll(cfg.Loader.LoadAll))
	if err != nil {
		fatal(err)
	}
	if err := m.GpuUploadAll(id, bindings(cfg)); err != nil {
		fatal(err)
	}

	records, err := evaluate(m, id, cfg)
	if err != nil {
		fatal(err)
	}
	g, _ := m.Graph(id)
	printRecords(g, records)
}

// evaluate runs the configured scene, clip and time against a loaded asset.
// Looping configs wrap the time into the clip's duration.
func evaluate(m asset.Manager, id asset.AssetID, cfg *config.Config) ([]scene.DrawRecord, error) {
	ev := scene.NewEvaluator(
		scene.WithSkeletons(cfg.Evaluation.Skeletons),
		scene.WithLogger(logger.Named("scene")),
	)

	t := cfg.Evaluation.Time
	if g, ok := m.Graph(id); ok && cfg.Evaluation.Loop {
		if clip, ok := g.Animation(cfg.Evaluation.Animation); ok {
			t = clip.WrapTime(t)
		}
	}
	return ev.EvaluateAsset(m, id, cfg.Evaluation.Scene, cfg.Evaluation.Animation, t)
}

func printRecords(g *asset.AssetGraph, records []scene.DrawRecord) {
	fmt.Printf("Records: %d\n", len(records))
	for i, r := range records {
		count, err := scene.DrawCount(r.Primitive)
		if err != nil {
			count = -1
		}
		node := g.Nodes[r.NodeIndex].Name
		pos := r.World.Col(3)
		fmt.Printf("  [%3d] node %-16q mesh %2d prim %2d  %-14s %6d verts  material %-12q at (%.3f, %.3f, %.3f)\n",
			i, node, r.MeshIndex, r.PrimitiveIndex, r.Primitive.Mode, count, r.Material.Name, pos[0], pos[1], pos[2])
	}

	if lo, hi, ok := scene.Bounds(records); ok {
		fmt.Printf("Bounds:  (%.3f, %.3f, %.3f) - (%.3f, %.3f, %.3f)\n", lo[0], lo[1], lo[2], hi[0], hi[1], hi[2])
	}
}
