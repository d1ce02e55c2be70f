package engine

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-scene/engine/profiler"
	"github.com/Carmen-Shannon/oxy-scene/engine/window"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestRunStopsOnQuitFromRender(t *testing.T) {
	e := NewEngine()
	frames := 0
	e.SetRenderCallback(func(float32) int {
		frames++
		if frames == 3 {
			e.Quit()
		}
		return 0
	})

	e.Run()
	assert.Equal(t, 3, frames)
	assert.Nil(t, e.Window())

	// A second Quit is harmless.
	e.Quit()
}

func TestTickCallbackRuns(t *testing.T) {
	e := NewEngine(WithTickRate(200), WithRenderFrameLimit(500))
	var ticks atomic.Int32
	var elapsed atomic.Int64
	e.SetTickCallback(func(dt float32) {
		elapsed.Add(int64(dt * float32(time.Second)))
		if ticks.Add(1) >= 2 {
			e.Quit()
		}
	})

	e.Run()
	assert.GreaterOrEqual(t, ticks.Load(), int32(2))
	assert.Positive(t, elapsed.Load())
}

func TestProfilerReceivesRecordCounts(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	p := profiler.NewProfiler(profiler.WithInterval(time.Nanosecond), profiler.WithLogger(zap.New(core)))
	e := NewEngine(WithProfiler(p), WithProfiling(true))

	frames := 0
	e.SetRenderCallback(func(float32) int {
		time.Sleep(time.Millisecond)
		frames++
		if frames == 3 {
			e.Quit()
		}
		return 7
	})
	e.Run()

	entries := logs.FilterMessage("frame stats").All()
	if assert.NotEmpty(t, entries) {
		assert.InDelta(t, 7.0, entries[0].ContextMap()["recordsPerFrame"], 1e-9)
	}
}

func TestRenderPanicStopsEngine(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	e := NewEngine(WithLogger(zap.New(core)))
	e.SetRenderCallback(func(float32) int {
		panic("device lost")
	})

	e.Run()
	assert.Equal(t, 1, logs.FilterMessage("render loop recovered from panic").Len())
}

func TestDisabledProfilerStaysQuiet(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	p := profiler.NewProfiler(profiler.WithInterval(time.Nanosecond), profiler.WithLogger(zap.New(core)))
	e := NewEngine(WithProfiler(p))
	e.EnableProfiler()
	e.DisableProfiler()

	frames := 0
	e.SetRenderCallback(func(float32) int {
		time.Sleep(time.Millisecond)
		frames++
		if frames == 2 {
			e.Quit()
		}
		return 1
	})
	e.Run()
	assert.Zero(t, logs.Len())
}

// fakeWindow pumps its update callback until closed.
type fakeWindow struct {
	running  atomic.Bool
	closes   atomic.Int32
	onUpdate func()
}

var _ window.Window = &fakeWindow{}

func newFakeWindow() *fakeWindow {
	w := &fakeWindow{}
	w.running.Store(true)
	return w
}

func (w *fakeWindow) SetUpdateCallback(callback func()) { w.onUpdate = callback }
func (w *fakeWindow) SetResizeCallback(func(width, height int)) {}
func (w *fakeWindow) SetScrollCallback(func(delta float32)) {}
func (w *fakeWindow) SetKeyDownCallback(func(keyCode uint32)) {}
func (w *fakeWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor { return nil }
func (w *fakeWindow) IsRunning() bool { return w.running.Load() }
func (w *fakeWindow) Width() int { return 640 }
func (w *fakeWindow) Height() int { return 480 }

func (w *fakeWindow) Close() error {
	w.closes.Add(1)
	w.running.Store(false)
	return nil
}

func (w *fakeWindow) ProcessMessages() {
	for w.IsRunning() {
		if w.onUpdate != nil {
			w.onUpdate()
		}
		time.Sleep(time.Millisecond)
	}
}

func TestQuitClosesWindow(t *testing.T) {
	win := newFakeWindow()
	e := NewEngine(WithWindow(win))
	var frames atomic.Int32
	e.SetRenderCallback(func(float32) int {
		if frames.Add(1) == 2 {
			e.Quit()
		}
		return 0
	})

	e.Run()
	assert.Equal(t, int32(2), frames.Load())
	assert.Equal(t, int32(1), win.closes.Load())
	assert.Same(t, win, e.Window())
}

func TestWindowCloseStopsEngine(t *testing.T) {
	win := newFakeWindow()
	e := NewEngine(WithWindow(win), WithRenderFrameLimit(1000))
	e.SetRenderCallback(func(float32) int {
		win.running.Store(false)
		return 0
	})

	e.Run()
	assert.Zero(t, win.closes.Load())
}
