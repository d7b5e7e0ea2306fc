// Package timeline turns an animation model and a point in time into the
// document mutations needed to present that instant, and owns the playback
// state machine that advances the clock.
package timeline

import (
	"math"

	"github.com/decker502/svgplay/internal/smil"
)

// Mutation is one attribute update the renderer must apply: set Attribute on
// the element TargetID to Value.
type Mutation struct {
	TargetID  string
	Attribute string
	Value     string
}

// Evaluate computes the mutations for a query time. It is a pure function of
// (model, time): any finite time, negative or far past the end, yields a
// value. Indefinite directives wrap into their own cycle by modulo;
// bounded ones hold their endpoint values outside [0, effective duration), so
// a stopped single-pass playback shows its final keyframe. A model with no
// directives yields nil.
func Evaluate(m *smil.Model, t float64) []Mutation {
	if m == nil || !m.HasAnimations() {
		return nil
	}

	muts := make([]Mutation, 0, len(m.Animations))
	for i := range m.Animations {
		a := &m.Animations[i]
		muts = append(muts, Mutation{
			TargetID:  a.TargetID,
			Attribute: a.AttributeName,
			Value:     ValueAt(a, t),
		})
	}
	return muts
}

// ValueAt returns the directive's value at a query time.
func ValueAt(a *smil.Animation, t float64) string {
	return a.Values[FrameIndexAt(a, t)]
}

// FrameIndexAt returns the 0-based keyframe index active at a query time.
//
// Indefinite directives wrap the time into one cycle (negative-safe). Bounded
// directives instead hold their endpoints: the first keyframe before 0 and
// the last keyframe at or past the effective duration, which is exactly where
// the controller parks the clock when a single pass ends. With explicit
// keyTimes the active interval is [keyTimes[i], keyTimes[i+1]); without, the
// values split the cycle into equal slices. Discrete mode holds the value
// until the next boundary; Linear falls back to the same step lookup.
func FrameIndexAt(a *smil.Animation, t float64) int {
	n := len(a.Values)
	if n == 0 || a.Duration <= 0 {
		return 0
	}

	if !a.Repeat.Indefinite {
		if t < 0 {
			return 0
		}
		if t >= a.EffectiveDuration() {
			return n - 1
		}
	}

	local := math.Mod(t, a.Duration)
	if local < 0 {
		local += a.Duration
	}
	progress := local / a.Duration

	if a.KeyTimes != nil {
		idx := 0
		for i, kt := range a.KeyTimes {
			if kt > progress {
				break
			}
			idx = i
		}
		return idx
	}

	idx := int(progress * float64(n))
	if idx >= n {
		idx = n - 1
	}
	return idx
}
