package profiler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestTickReportsAtInterval(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	clock := time.Unix(0, 0)
	p := NewProfiler(
		WithInterval(time.Second),
		WithLogger(zap.New(core)),
		withClock(func() time.Time { return clock }),
	)

	for i := 0; i < 3; i++ {
		clock = clock.Add(250 * time.Millisecond)
		assert.False(t, p.Tick(2))
	}
	clock = clock.Add(250 * time.Millisecond)
	assert.True(t, p.Tick(6))

	entries := logs.FilterMessage("frame stats").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.InDelta(t, 4.0, fields["fps"], 1e-9)
	assert.InDelta(t, 3.0, fields["recordsPerFrame"], 1e-9)

	// Counters restart after a report.
	clock = clock.Add(100 * time.Millisecond)
	assert.False(t, p.Tick(1))
}

func TestWithIntervalIgnoresNonPositive(t *testing.T) {
	p := NewProfiler(WithInterval(0))
	assert.Equal(t, time.Second, p.updateInterval)
}
