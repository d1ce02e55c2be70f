package profiler

import (
	"runtime"
	"time"

	"go.uber.org/zap"
)

// Profiler tracks frame rate, evaluated draw records and memory statistics.
// Outputs stats to the logger at a configurable interval.
type Profiler struct {
	frameCount     int
	recordCount    int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64

	log *zap.Logger

	// now is the clock; tests replace it.
	now func() time.Time
}

// NewProfiler creates a new Profiler. Update interval defaults to 1 second.
//
// Parameters:
//   - options: a variadic list of ProfilerBuilderOption functions
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(options ...ProfilerBuilderOption) *Profiler {
	p := &Profiler{
		updateInterval: time.Second,
		log:            zap.NewNop(),
		now:            time.Now,
	}
	for _, option := range options {
		option(p)
	}
	p.lastTime = p.now()
	return p
}

// Tick should be called once per frame with the number of draw records the frame evaluated.
// Logs performance statistics when the update interval has elapsed.
// Statistics include: FPS, records per frame, heap usage, allocation rate, GC count/pause times.
//
// Parameters:
//   - records: the draw records evaluated this frame
//
// Returns:
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick(records int) bool {
	p.frameCount++
	p.recordCount += records
	currentTime := p.now()
	elapsed := currentTime.Sub(p.lastTime)

	if elapsed < p.updateInterval {
		return false
	}

	fps := float64(p.frameCount) / elapsed.Seconds()
	perFrame := float64(p.recordCount) / float64(p.frameCount)

	runtime.ReadMemStats(&p.memStats)
	allocMB := float64(p.memStats.Alloc) / 1024 / 1024
	sysMB := float64(p.memStats.Sys) / 1024 / 1024

	// Allocation churn since the last report
	allocDelta := p.memStats.TotalAlloc - p.lastTotalAlloc
	allocRateMB := float64(allocDelta) / 1024 / 1024 / elapsed.Seconds()

	gcCount := p.memStats.NumGC
	var lastPauseUs, maxPauseUs uint64
	if gcCount > 0 {
		// PauseNs is a circular buffer of last 256 GC pauses
		lastPauseUs = p.memStats.PauseNs[(gcCount-1)%256] / 1000

		startIdx := p.lastGCCount
		if gcCount-startIdx > 256 {
			startIdx = gcCount - 256
		}
		for i := startIdx; i < gcCount; i++ {
			pause := p.memStats.PauseNs[i%256] / 1000
			if pause > maxPauseUs {
				maxPauseUs = pause
			}
		}
	}

	p.log.Info("frame stats",
		zap.Float64("fps", fps),
		zap.Float64("recordsPerFrame", perFrame),
		zap.Float64("heapMB", allocMB),
		zap.Float64("allocRateMBps", allocRateMB),
		zap.Uint32("gc", gcCount),
		zap.Uint64("lastPauseUs", lastPauseUs),
		zap.Uint64("maxPauseUs", maxPauseUs),
		zap.Float64("sysMB", sysMB),
	)

	p.frameCount = 0
	p.recordCount = 0
	p.lastTime = currentTime
	p.lastGCCount = gcCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}
