package engine

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/oxy-scene/engine/profiler"
	"github.com/Carmen-Shannon/oxy-scene/engine/window"

	"go.uber.org/zap"
)

type engine struct {
	tickRateChannel chan time.Duration // Channel for dynamic tick rate updates

	wg sync.WaitGroup

	quitChannel chan struct{}
	quitOnce    sync.Once // Ensures quitChannel is only closed once

	window window.Window

	profiler         *profiler.Profiler
	profilingEnabled atomic.Bool

	engineTickRate time.Duration
	tickCallback   func(deltaTime float32)
	renderCallback func(deltaTime float32) int

	renderFrameLimit time.Duration // minimum frame duration; 0 = uncapped

	log *zap.Logger
}

// Engine drives playback of an evaluated scene. It runs a fixed-rate tick loop for advancing
// animation time and a free-running render loop that evaluates and presents frames, while the
// calling goroutine pumps window messages.
type Engine interface {
	// Window returns the window the engine pumps, or nil for a headless engine.
	//
	// Returns:
	//   - window.Window: the engine window
	Window() window.Window

	// EnableProfiler turns on periodic frame statistics.
	EnableProfiler()

	// DisableProfiler turns off periodic frame statistics.
	DisableProfiler()

	// SetTickRate changes the tick loop frequency while running.
	//
	// Parameters:
	//   - fps: ticks per second, values <= 0 select 60
	SetTickRate(fps float64)

	// SetTickCallback sets the function called once per tick with the elapsed seconds.
	//
	// Parameters:
	//   - callback: the tick function
	SetTickCallback(callback func(deltaTime float32))

	// SetRenderCallback sets the function called once per frame with the elapsed seconds.
	// It returns the number of draw records the frame produced, which feeds the profiler.
	//
	// Parameters:
	//   - callback: the frame function
	SetRenderCallback(callback func(deltaTime float32) int)

	// SetRenderFrameLimit caps the render loop. Pass 0 to uncap it.
	//
	// Parameters:
	//   - fps: maximum frames per second
	SetRenderFrameLimit(fps float64)

	// Run starts the tick and render loops and blocks until the window closes or Quit is called.
	// It installs the window's update callback and closes the window on Quit.
	Run()

	// Quit stops both loops. It is safe to call more than once and from any goroutine.
	Quit()
}

var _ Engine = &engine{}

// NewEngine creates an Engine.
//
// Parameters:
//   - options: a variadic list of EngineBuilderOption functions
//
// Returns:
//   - Engine: the new engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		tickRateChannel: make(chan time.Duration, 1),
		quitChannel:     make(chan struct{}),
		engineTickRate:  time.Second / 60,
		log:             zap.NewNop(),
	}

	for _, opt := range options {
		opt(e)
	}

	if e.profiler == nil {
		e.profiler = profiler.NewProfiler(profiler.WithLogger(e.log.Named("profiler")))
	}
	return e
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Run() {
	e.wg.Add(2)
	go e.handleEngine()
	go e.handleRender()

	if e.window != nil {
		// Quit closes the window from its own loop so ProcessMessages returns. The loops finish
		// first so no frame is in flight against a destroyed surface.
		e.window.SetUpdateCallback(func() {
			select {
			case <-e.quitChannel:
				e.wg.Wait()
				if err := e.window.Close(); err != nil {
					e.log.Warn("close window", zap.Error(err))
				}
			default:
			}
		})
		e.window.ProcessMessages()
		e.signalQuit()
	} else {
		<-e.quitChannel
	}
	e.wg.Wait()
}

func (e *engine) Quit() {
	e.signalQuit()
}

func (e *engine) signalQuit() {
	e.quitOnce.Do(func() {
		close(e.quitChannel)
	})
}

// handleEngine runs the fixed-rate tick loop.
func (e *engine) handleEngine() {
	defer e.wg.Done()

	ticker := time.NewTicker(e.engineTickRate)
	defer ticker.Stop()

	lastTick := time.Now()

	for {
		select {
		case <-e.quitChannel:
			return
		case <-ticker.C:
			now := time.Now()
			dt := float32(now.Sub(lastTick).Seconds())
			lastTick = now

			if e.tickCallback != nil {
				e.tickCallback(dt)
			}
		case newRate := <-e.tickRateChannel:
			ticker.Reset(newRate)
			e.engineTickRate = newRate
		}
	}
}

// handleRender runs the render loop until quit. A panicking frame stops the engine.
func (e *engine) handleRender() {
	defer e.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			e.log.Error("render loop recovered from panic", zap.String("panic", fmt.Sprint(r)))
			e.signalQuit()
		}
	}()

	lastRender := time.Now()

	for {
		select {
		case <-e.quitChannel:
			return
		default:
			now := time.Now()
			dt := float32(now.Sub(lastRender).Seconds())
			lastRender = now

			records := 0
			if e.renderCallback != nil {
				records = e.renderCallback(dt)
			}

			if e.profilingEnabled.Load() {
				e.profiler.Tick(records)
			}

			if e.renderFrameLimit > 0 {
				elapsed := time.Since(lastRender)
				if remaining := e.renderFrameLimit - elapsed; remaining > 0 {
					time.Sleep(remaining)
				}
			}
		}
	}
}

func (e *engine) EnableProfiler() {
	e.profilingEnabled.Store(true)
}

func (e *engine) DisableProfiler() {
	e.profilingEnabled.Store(false)
}

func (e *engine) SetTickRate(fps float64) {
	if fps <= 0 {
		fps = 60
	}
	newRate := time.Duration(float64(time.Second) / fps)

	// Drop a pending update so the latest rate wins.
	select {
	case <-e.tickRateChannel:
	default:
	}
	e.tickRateChannel <- newRate
}

func (e *engine) SetTickCallback(callback func(deltaTime float32)) {
	e.tickCallback = callback
}

func (e *engine) SetRenderCallback(callback func(deltaTime float32) int) {
	e.renderCallback = callback
}

func (e *engine) SetRenderFrameLimit(fps float64) {
	if fps <= 0 {
		e.renderFrameLimit = 0
		return
	}
	e.renderFrameLimit = time.Duration(float64(time.Second) / fps)
}
