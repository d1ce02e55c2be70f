package main

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/asset"
	"github.com/Carmen-Shannon/oxy-scene/engine/camera"
	"github.com/Carmen-Shannon/oxy-scene/engine/config"
	"github.com/Carmen-Shannon/oxy-scene/engine/scene"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// scrubSpeed is the seconds of animation time moved per scroll step.
const scrubSpeed = 0.1

// player holds the interactive playback state of one resolved asset. Input callbacks, the tick
// loop and the render loop run on different goroutines, so every field is guarded by mu.
// The camera locks itself.
type player struct {
	mu sync.Mutex

	graph    *asset.AssetGraph
	mat      asset.Materializer
	bindings asset.AttributeBindingMap
	plain    scene.Evaluator
	skinned  scene.Evaluator
	log      *zap.Logger

	scene     int
	animation int
	time      float32
	paused    bool
	loop      bool
	skeletons bool

	// cam is framed on a scene's rest pose when the scene is first shown, so animated parts
	// can leave the view.
	cam    camera.Camera
	framed bool
}

func newPlayer(graph *asset.AssetGraph, mat asset.Materializer, cfg *config.Config, log *zap.Logger) *player {
	p := &player{
		graph:     graph,
		mat:       mat,
		bindings:  bindings(cfg),
		plain:     scene.NewEvaluator(scene.WithLogger(log)),
		skinned:   scene.NewEvaluator(scene.WithSkeletons(true), scene.WithLogger(log)),
		log:       log,
		scene:     cfg.Evaluation.Scene,
		animation: cfg.Evaluation.Animation,
		time:      cfg.Evaluation.Time,
		loop:      cfg.Evaluation.Loop,
		skeletons: cfg.Evaluation.Skeletons,
		cam:       camera.NewCamera(camera.WithAspect(float32(cfg.Window.Width) / float32(cfg.Window.Height))),
	}
	if p.scene < 0 {
		p.scene = graph.DefaultScene
	}
	return p
}

// advance moves playback forward by dt seconds unless paused.
func (p *player) advance(dt float32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.paused {
		return
	}
	p.setTime(p.time + dt)
}

// scrub moves the playback time by scroll steps.
func (p *player) scrub(delta float32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.setTime(max(p.time+delta*scrubSpeed, 0))
}

func (p *player) setTime(t float32) {
	if clip, ok := p.graph.Animation(p.animation); ok && p.loop {
		t = clip.WrapTime(t)
	}
	p.time = t
}

func (p *player) resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	p.cam.SetAspect(float32(width) / float32(height))
}

// key applies a key press and reports whether the key asks to quit.
func (p *player) key(code uint32) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch code {
	case common.KeyEsc:
		return true
	case common.KeySpace:
		p.paused = !p.paused
	case common.KeyK:
		p.skeletons = !p.skeletons
	case common.KeyR:
		p.time = 0
	case common.KeyN:
		p.animation = cycle(p.animation, 1, -1, len(p.graph.Animations))
		p.time = 0
	case common.KeyP:
		p.animation = cycle(p.animation, -1, -1, len(p.graph.Animations))
		p.time = 0
	case common.KeyRight:
		p.scene = cycle(p.scene, 1, 0, len(p.graph.Scenes))
		p.framed = false
	case common.KeyLeft:
		p.scene = cycle(p.scene, -1, 0, len(p.graph.Scenes))
		p.framed = false
	case common.KeyA:
		p.cam.OrbitLeft()
	case common.KeyD:
		p.cam.OrbitRight()
	case common.KeyW:
		p.cam.OrbitUp()
	case common.KeyS:
		p.cam.OrbitDown()
	case common.KeyEqual:
		p.cam.Zoom(1)
	case common.KeyMinus:
		p.cam.Zoom(-1)
	}
	p.log.Debug("key", zap.Uint32("code", code), zap.Int("scene", p.scene), zap.Int("animation", p.animation),
		zap.Bool("paused", p.paused), zap.Bool("skeletons", p.skeletons))
	return false
}

// cycle steps i by step through [lo, n), wrapping at both ends.
// With lo = -1 the sequence is -1, 0, ..., n-1.
func cycle(i, step, lo, n int) int {
	size := n - lo
	if size <= 0 {
		return i
	}
	return ((i-lo+step)%size+size)%size + lo
}

// frame evaluates the current state, culls against the camera's view and uploads any
// skeleton geometry. Callers pass the result to release once the frame is presented.
func (p *player) frame() ([]scene.DrawRecord, error) {
	p.mu.Lock()
	sceneIndex, animation, t := p.scene, p.animation, p.time
	ev := p.plain
	if p.skeletons {
		ev = p.skinned
	}
	if !p.framed {
		if err := p.frameScene(); err != nil {
			p.mu.Unlock()
			return nil, err
		}
	}
	p.mu.Unlock()
	frustum := p.cam.Frustum()

	records, err := ev.Evaluate(p.graph, sceneIndex, animation, t)
	if err != nil {
		return nil, err
	}
	visible := scene.Cull(records, frustum)

	for i, r := range visible {
		if r.MeshIndex >= 0 {
			continue
		}
		if err := p.mat.UploadPrimitive(r.Primitive, p.bindings, false); err != nil {
			p.release(visible[:i])
			return nil, err
		}
	}
	return visible, nil
}

// frameScene points the camera at the rest pose bounds of the current scene. Callers hold mu.
func (p *player) frameScene() error {
	records, err := p.plain.Evaluate(p.graph, p.scene, -1, 0)
	if err != nil {
		return err
	}
	lo, hi, ok := scene.Bounds(records)
	if !ok {
		lo, hi = mgl32.Vec3{-1, -1, -1}, mgl32.Vec3{1, 1, 1}
	}
	p.cam.Frame(lo, hi)
	p.framed = true
	return nil
}

// release frees the per-frame skeleton geometry uploaded by frame.
func (p *player) release(records []scene.DrawRecord) {
	for _, r := range records {
		if r.MeshIndex >= 0 {
			continue
		}
		if err := p.mat.ReleasePrimitive(r.Primitive); err != nil {
			p.log.Warn("release skeleton", zap.Int("node", r.NodeIndex), zap.Error(err))
		}
	}
}

// state returns the current scene, animation and time.
func (p *player) state() (int, int, float32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.scene, p.animation, p.time
}
