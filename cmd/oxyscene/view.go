package main

import (
	"fmt"
	"os"

	"github.com/Carmen-Shannon/oxy-scene/engine"
	"github.com/Carmen-Shannon/oxy-scene/engine/asset"
	"github.com/Carmen-Shannon/oxy-scene/engine/gpu/wgpu_device"
	"github.com/Carmen-Shannon/oxy-scene/engine/logger"
	"github.com/Carmen-Shannon/oxy-scene/engine/profiler"
	"github.com/Carmen-Shannon/oxy-scene/engine/window"

	"go.uber.org/zap"
)

func cmdView(args []string) {
	cfg, fs := setup("view", args)
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: oxyscene view [options] <file>")
		os.Exit(1)
	}
	defer logger.Sync()
	log := logger.Named("view")

	win, err := window.NewWindow(
		window.WithTitle(cfg.Window.Title+" - "+fs.Arg(0)),
		window.WithSize(cfg.Window.Width, cfg.Window.Height),
	)
	if err != nil {
		fatal(err)
	}
	defer func() {
		if err := win.Close(); err != nil {
			log.Warn("close window", zap.Error(err))
		}
	}()

	device, err := wgpu_device.NewWGPUDevice(
		wgpu_device.WithSurface(win.SurfaceDescriptor()),
		wgpu_device.WithForceFallbackAdapter(cfg.GPU.ForceFallbackAdapter),
	)
	if err != nil {
		fatal(err)
	}
	defer device.Close()
	device.ConfigureSurface(win.Width(), win.Height())

	m := newManager(newDecoder(cfg), device)
	defer m.Close()

	id, err := m.LoadAsset(fs.Arg(0), asset.WithLoadAll(cfg.Loader.LoadAll))
	if err != nil {
		fatal(err)
	}
	if err := m.GpuUploadAll(id, bindings(cfg)); err != nil {
		fatal(err)
	}
	g, _ := m.Graph(id)

	p := newPlayer(g, m.Materializer(), cfg, logger.Named("player"))
	eng := engine.NewEngine(
		engine.WithWindow(win),
		engine.WithTickRate(60),
		engine.WithLogger(logger.Named("engine")),
		engine.WithProfiler(profiler.NewProfiler(profiler.WithLogger(logger.Named("profiler")))),
		engine.WithProfiling(cfg.Window.Profiling),
	)

	eng.SetTickCallback(p.advance)
	eng.SetRenderCallback(func(float32) int {
		records, err := p.frame()
		if err != nil {
			log.Warn("evaluate frame", zap.Error(err))
		}
		if err := device.ClearFrame(); err != nil {
			log.Debug("skip frame", zap.Error(err))
		} else {
			device.Present()
		}
		p.release(records)
		return len(records)
	})

	win.SetResizeCallback(func(width, height int) {
		device.ConfigureSurface(width, height)
		p.resize(width, height)
	})
	win.SetScrollCallback(p.scrub)
	win.SetKeyDownCallback(func(code uint32) {
		if p.key(code) {
			eng.Quit()
		}
	})

	log.Info("playing", zap.String("path", fs.Arg(0)), zap.Int("scenes", len(g.Scenes)),
		zap.Int("animations", len(g.Animations)))
	eng.Run()

	s, a, t := p.state()
	log.Info("stopped", zap.Int("scene", s), zap.Int("animation", a), zap.Float32("time", t))
}
