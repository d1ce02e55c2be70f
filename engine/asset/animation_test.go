package asset

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-scene/engine/document"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scalarClip resolves one animation whose translation X is keyed at times to xs.
func scalarClip(t *testing.T, interpolation document.Interpolation, times []float32, xs []float32) *AnimationClip {
	t.Helper()
	b := document.NewBuilder()
	n := b.AddNode(document.NewNode("mover"))
	anim := b.AddAnimation(document.Animation{Name: "move"})
	values := make([]float32, 0, len(xs)*3)
	for _, x := range xs {
		values = append(values, x, 0, 0)
	}
	b.AddChannel(anim, n, document.PathTranslation, times, values)
	doc := b.Document()
	doc.Animations[0].Samplers[0].Interpolation = interpolation

	g, err := Resolve(doc)
	require.NoError(t, err)
	return &g.Animations[0]
}

func TestSamplerLinearInterpolation(t *testing.T) {
	clip := scalarClip(t, document.InterpolationLinear, []float32{0, 1, 2}, []float32{0, 10, 20})
	s := clip.Channels[0].Sampler

	tests := []struct {
		time float32
		want float32
	}{
		{-1, 0},
		{0, 0},
		{0.5, 5},
		{1, 10},
		{1.5, 15},
		{2, 20},
		{100, 20},
	}
	for _, tt := range tests {
		dst := make([]float32, 3)
		ok, err := s.Sample(tt.time, dst)
		require.NoError(t, err)
		require.True(t, ok)
		assert.InDelta(t, tt.want, dst[0], 1e-5, "time %v", tt.time)
	}
}

func TestSamplerKeyframes(t *testing.T) {
	clip := scalarClip(t, document.InterpolationLinear, []float32{0, 1, 2}, []float32{0, 10, 20})
	s := clip.Channels[0].Sampler
	assert.Equal(t, 3, s.KeyframeCount())

	prev, next, tf := s.Keyframes(0.25)
	assert.Equal(t, 0, prev)
	assert.Equal(t, 1, next)
	assert.InDelta(t, 0.25, tf, 1e-6)

	prev, next, tf = s.Keyframes(-3)
	assert.Equal(t, 0, prev)
	assert.Equal(t, 0, next)
	assert.Equal(t, float32(0), tf)

	// Past the end, prev is the last keyframe and next clamps onto it.
	prev, next, tf = s.Keyframes(9)
	assert.Equal(t, 2, prev)
	assert.Equal(t, 2, next)
	assert.Equal(t, float32(0), tf)
}

func TestSamplerDuplicateTimes(t *testing.T) {
	clip := scalarClip(t, document.InterpolationLinear, []float32{0, 1, 1, 2}, []float32{0, 10, 50, 60})
	dst := make([]float32, 3)
	ok, err := clip.Channels[0].Sampler.Sample(1, dst)
	require.NoError(t, err)
	require.True(t, ok)
	assert.InDelta(t, 10, dst[0], 1e-5)
}

func TestSamplerStep(t *testing.T) {
	clip := scalarClip(t, document.InterpolationStep, []float32{0, 1, 2}, []float32{0, 10, 20})
	s := clip.Channels[0].Sampler

	tests := []struct {
		time float32
		want float32
	}{
		{0.5, 0},
		{0.99, 0},
		{1, 10},
		{1.5, 10},
		{2, 20},
		{5, 20},
	}
	for _, tt := range tests {
		dst := make([]float32, 3)
		_, err := s.Sample(tt.time, dst)
		require.NoError(t, err)
		assert.Equal(t, tt.want, dst[0], "time %v", tt.time)
	}
}

func TestSamplerEmpty(t *testing.T) {
	clip := scalarClip(t, document.InterpolationLinear, nil, nil)
	dst := []float32{7, 7, 7}
	ok, err := clip.Channels[0].Sampler.Sample(1, dst)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, []float32{7, 7, 7}, dst)
	assert.Equal(t, float32(0), clip.Duration)
	assert.Equal(t, float32(0), clip.WrapTime(3))
}

func TestSamplerShortDestination(t *testing.T) {
	clip := scalarClip(t, document.InterpolationLinear, []float32{0, 1}, []float32{0, 1})
	_, err := clip.Channels[0].Sampler.Sample(0.5, make([]float32, 2))
	assert.True(t, errors.Is(err, ErrOutOfRange))
}

func TestClipWrapTime(t *testing.T) {
	clip := scalarClip(t, document.InterpolationLinear, []float32{0, 2}, []float32{0, 1})
	assert.Equal(t, float32(2), clip.Duration)
	assert.InDelta(t, 0.5, clip.WrapTime(4.5), 1e-6)
	assert.InDelta(t, 1.5, clip.WrapTime(-0.5), 1e-6)
	assert.InDelta(t, 1, clip.WrapTime(1), 1e-6)
}

// TestRotationLerpIsComponentWise pins the documented approximation: rotations are
// interpolated component by component and the result is not renormalized.
func TestRotationLerpIsComponentWise(t *testing.T) {
	b := document.NewBuilder()
	n := b.AddNode(document.NewNode("spinner"))
	anim := b.AddAnimation(document.Animation{Name: "spin"})
	b.AddChannel(anim, n, document.PathRotation, []float32{0, 1}, []float32{
		0, 0, 0, 1,
		0, 0, 1, 0,
	})
	g, err := Resolve(b.Document())
	require.NoError(t, err)

	dst := make([]float32, 4)
	_, err = g.Animations[0].Channels[0].Sampler.Sample(0.5, dst)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float32{0, 0, 0.5, 0.5}, dst, 1e-6)
}
