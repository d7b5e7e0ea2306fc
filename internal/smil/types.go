// Package smil provides data structures and a parser for SMIL animation
// directives embedded in SVG documents. It scans raw markup for <animate>
// elements, extracts their timing and value lists, and produces an immutable
// animation model the timeline evaluator can query at any instant.
package smil

// CalcMode is the interpolation mode of one animation directive.
type CalcMode int

const (
	// Discrete is a step function: the value holds until the next keyframe
	// boundary. This is the default and the only mode the frame-by-frame
	// content in this domain uses.
	Discrete CalcMode = iota

	// Linear is accepted from markup but evaluated as Discrete. True
	// interpolation needs value-type-aware handling that no observed
	// content exercises.
	Linear
)

// RepeatPolicy describes how many cycles a directive plays.
type RepeatPolicy struct {
	// Indefinite means the directive loops forever. Count is ignored.
	Indefinite bool

	// Count is the number of cycles when not indefinite. Defaults to 1.
	Count int
}

// Animation is one parsed <animate> directive. It is created during parse
// and never mutated afterwards.
type Animation struct {
	// TargetID is the id of the element whose attribute is mutated. It may
	// be a synthetic id injected by the preprocessor when the original
	// target had none.
	TargetID string

	// AttributeName is the attribute being animated, e.g. "fill",
	// "opacity" or "xlink:href".
	AttributeName string

	// Values is the ordered value list, one entry per keyframe. Always
	// non-empty for a parsed directive.
	Values []string

	// KeyTimes holds the keyframe offsets as fractions of Duration,
	// strictly increasing with first 0 and last 1. Nil when the markup
	// omitted keyTimes; the evaluator then spaces Values uniformly.
	KeyTimes []float64

	// Duration is the length of one cycle in seconds, always > 0.
	Duration float64

	// CalcMode is the interpolation mode.
	CalcMode CalcMode

	// Repeat is the directive's own repeat policy.
	Repeat RepeatPolicy
}

// EffectiveDuration returns the directive's contribution to the scene
// duration: one cycle times the repeat count. Indefinite directives count a
// single cycle; looping past it is the playback controller's concern.
func (a *Animation) EffectiveDuration() float64 {
	if a.Repeat.Indefinite || a.Repeat.Count <= 1 {
		return a.Duration
	}
	return a.Duration * float64(a.Repeat.Count)
}

// Model is the whole-document animation timeline. It is built once by Parse,
// shared read-only afterwards, and replaced wholesale on reload.
type Model struct {
	// Animations is the ordered list of parsed directives.
	Animations []Animation

	// Duration is the scene duration in seconds: the maximum effective
	// duration over all directives. Zero for a static document.
	Duration float64

	// FrameRate is a nominal, reporting-only frames-per-second value.
	// Evaluation is continuous-time and does not quantize to it.
	FrameRate float64

	// TotalFrames is the discrete step count of the longest directive,
	// at least 1.
	TotalFrames int

	// ProcessedMarkup is the document text after structural rewrites
	// (symbol inlining, synthetic target ids). Renderers must load this
	// text, not the original.
	ProcessedMarkup string

	indefinite bool
}

// HasAnimations reports whether the document contains any directive.
func (m *Model) HasAnimations() bool {
	return len(m.Animations) > 0
}

// Indefinite reports whether any directive repeats forever.
func (m *Model) Indefinite() bool {
	return m.indefinite
}
