package asset

import (
	"fmt"
	"math"
	"sort"

	"github.com/Carmen-Shannon/oxy-scene/engine/document"
)

// AnimationSampler pairs a keyframe time accessor with a value accessor of the same count.
// Times are non-decreasing; they are decoded once at resolution.
type AnimationSampler struct {
	Times         *TypedAccessor
	Values        *TypedAccessor
	Interpolation document.Interpolation

	times []float32
}

// KeyframeCount returns the number of keyframes.
func (s *AnimationSampler) KeyframeCount() int {
	return len(s.times)
}

// Keyframes locates the keyframe pair surrounding time.
// next is the first keyframe whose time is >= time, prev is the one before it (or 0), and next
// is clamped to the last keyframe. t is the position of time between the two, or 0 when they
// coincide, so times outside the keyed range clamp to the first or last value.
//
// Parameters:
//   - time: the sample time in seconds
//
// Returns:
//   - int: the previous keyframe index
//   - int: the next keyframe index
//   - float32: the interpolation factor
func (s *AnimationSampler) Keyframes(time float32) (prev, next int, t float32) {
	count := len(s.times)
	next = sort.Search(count, func(i int) bool { return s.times[i] >= time })
	prev = max(next-1, 0)
	next = min(next, count-1)

	if prev == next {
		return prev, next, 0
	}
	span := s.times[next] - s.times[prev]
	if span <= 0 {
		return prev, next, 0
	}
	return prev, next, (time - s.times[prev]) / span
}

// Sample writes the value at time into dst, which must hold the value arity.
// LINEAR interpolates component-wise, rotations included: quaternions are lerped without
// renormalization, which approximates slerp only for closely spaced keyframes.
// STEP holds the previous keyframe until the next one is reached.
//
// Parameters:
//   - time: the sample time in seconds
//   - dst: the destination slice
//
// Returns:
//   - bool: false if the sampler has no keyframes (dst untouched)
//   - error: ErrOutOfRange if dst is too short
func (s *AnimationSampler) Sample(time float32, dst []float32) (bool, error) {
	if len(s.times) == 0 {
		return false, nil
	}

	arity := s.Values.Type.Arity()
	if len(dst) < arity {
		return false, fmt.Errorf("%w: destination holds %d of %d components", ErrOutOfRange, len(dst), arity)
	}
	prev, next, t := s.Keyframes(time)

	if s.Interpolation == document.InterpolationStep {
		if t >= 1 {
			prev = next
		}
		return true, s.Values.Element(prev, dst)
	}

	var a, b [16]float32
	if err := s.Values.Element(prev, a[:]); err != nil {
		return false, err
	}
	if err := s.Values.Element(next, b[:]); err != nil {
		return false, err
	}
	for c := 0; c < arity; c++ {
		dst[c] = lerp(a[c], b[c], t)
	}
	return true, nil
}

// AnimationChannel targets one property of one node.
type AnimationChannel struct {
	TargetNode int
	Property   document.AnimationPath
	Sampler    *AnimationSampler
}

// AnimationClip is a named set of channels. Duration is the latest keyframe time.
type AnimationClip struct {
	Index    int
	Name     string
	Channels []AnimationChannel
	Samplers []AnimationSampler
	Duration float32
}

// WrapTime maps an unbounded time onto [0, Duration) for looping playback.
// Clips with no duration return 0.
func (c *AnimationClip) WrapTime(time float32) float32 {
	if c.Duration <= 0 {
		return 0
	}
	wrapped := float32(math.Mod(float64(time), float64(c.Duration)))
	if wrapped < 0 {
		wrapped += c.Duration
	}
	return wrapped
}

func lerp(a, b, t float32) float32 {
	return a + (b-a)*t
}
