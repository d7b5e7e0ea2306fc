package timeline

import (
	"fmt"
	"math"

	"github.com/decker502/svgplay/internal/smil"
)

// State is the playback state of the timeline.
type State int

const (
	// Stopped means the clock sits at 0 and does not advance.
	Stopped State = iota
	// Playing means the clock advances on every Advance call.
	Playing
	// Paused means the clock is frozen at its current position.
	Paused
)

func (s State) String() string {
	switch s {
	case Playing:
		return "Playing"
	case Paused:
		return "Paused"
	default:
		return "Stopped"
	}
}

// RepeatMode determines what happens when the clock reaches the end of the
// scene.
type RepeatMode int

const (
	// RepeatNone plays once and stops at the end.
	RepeatNone RepeatMode = iota
	// RepeatLoop wraps back to the start.
	RepeatLoop
	// RepeatReverse ping-pongs: direction flips at both ends.
	RepeatReverse
	// RepeatCount wraps a fixed number of times, then stops at the end.
	RepeatCount
)

func (m RepeatMode) String() string {
	switch m {
	case RepeatLoop:
		return "Loop"
	case RepeatReverse:
		return "Reverse"
	case RepeatCount:
		return "Count"
	default:
		return "None"
	}
}

// FrameChange records one directive whose active keyframe changed during the
// last Advance. Consumers use it to redraw only the affected regions.
type FrameChange struct {
	TargetID      string
	PreviousFrame int
	CurrentFrame  int
}

const (
	maxRate = 10.0
	minRate = 0.01
)

// Controller owns the playback position, direction and loop bookkeeping for
// one loaded model. It is not safe for concurrent use; the owning player
// serializes access.
type Controller struct {
	model       *smil.Model
	duration    float64
	frameRate   float64
	totalFrames int

	current float64
	forward bool
	loops   int
	state   State
	rate    float64

	mode        RepeatMode
	repeatCount int

	scrubbing        bool
	stateBeforeScrub State

	lastFrame    int
	prevFrames   []int
	frameChanges []FrameChange

	onStateChange func(State)
	onLoop        func(int)
	onEnd         func()
}

// NewController creates a controller for a loaded model. The default repeat
// mode is Loop, matching how animated content is usually viewed.
func NewController(m *smil.Model) *Controller {
	c := &Controller{
		model:       m,
		forward:     true,
		rate:        1.0,
		mode:        RepeatLoop,
		repeatCount: 1,
	}
	if m != nil {
		c.duration = m.Duration
		c.frameRate = m.FrameRate
		c.totalFrames = m.TotalFrames
		c.prevFrames = make([]int, len(m.Animations))
	}
	return c
}

// === Transport ===

// Play starts or resumes playback from the current position.
func (c *Controller) Play() {
	if c.state != Playing {
		c.state = Playing
		c.notify(Playing)
	}
}

// Pause freezes the clock at its current position.
func (c *Controller) Pause() {
	if c.state != Paused {
		c.state = Paused
		c.notify(Paused)
	}
}

// Stop halts playback and resets position, direction and loop count.
func (c *Controller) Stop() {
	c.state = Stopped
	c.current = 0
	c.loops = 0
	c.forward = true
	c.notify(Stopped)
}

// Toggle switches between playing and paused.
func (c *Controller) Toggle() {
	if c.state == Playing {
		c.Pause()
	} else {
		c.Play()
	}
}

// State returns the current playback state.
func (c *Controller) State() State { return c.state }

// IsPlaying reports whether the clock is advancing.
func (c *Controller) IsPlaying() bool { return c.state == Playing }

// === Repeat mode ===

// SetRepeatMode selects the end-of-scene behavior.
func (c *Controller) SetRepeatMode(mode RepeatMode) { c.mode = mode }

// RepeatMode returns the active repeat mode.
func (c *Controller) RepeatMode() RepeatMode { return c.mode }

// SetRepeatCount sets the bounded loop count and switches to Count mode.
func (c *Controller) SetRepeatCount(n int) {
	if n < 1 {
		n = 1
	}
	c.repeatCount = n
	c.mode = RepeatCount
}

// RepeatCount returns the configured bounded loop count.
func (c *Controller) RepeatCount() int { return c.repeatCount }

// CompletedLoops returns how many times the animation wrapped or bounced.
func (c *Controller) CompletedLoops() int { return c.loops }

// IsForward reports the playback direction; false during the reverse phase
// of a ping-pong cycle.
func (c *Controller) IsForward() bool { return c.forward }

// === Rate ===

// SetRate sets the playback rate multiplier, clamped to [-10, 10] with a
// minimum magnitude of 0.01. Negative rates play in reverse.
func (c *Controller) SetRate(rate float64) {
	if rate > maxRate {
		rate = maxRate
	}
	if rate < -maxRate {
		rate = -maxRate
	}
	if math.Abs(rate) < minRate {
		rate = minRate
	}
	c.rate = rate
}

// Rate returns the playback rate multiplier.
func (c *Controller) Rate() float64 { return c.rate }

// === Timeline ===

// Advance moves the clock by an elapsed wall-clock delta scaled by the rate
// multiplier and applies the repeat policy at the boundaries. It reports
// whether any directive's active keyframe changed, i.e. whether the frame
// needs re-rendering. A no-op unless Playing.
func (c *Controller) Advance(dt float64) bool {
	if c.state != Playing || c.duration <= 0 {
		return false
	}

	adjusted := dt * c.rate
	if c.mode == RepeatReverse && !c.forward {
		adjusted = -adjusted
	}
	c.current += adjusted

	c.applyRepeatPolicy()
	return c.trackFrameChanges()
}

// applyRepeatPolicy enforces the boundary behavior of the active repeat
// mode. Position is always left inside [0, duration].
func (c *Controller) applyRepeatPolicy() {
	switch c.mode {
	case RepeatNone:
		if c.current >= c.duration {
			c.current = c.duration
			c.loops++
			c.state = Stopped
			c.notify(Stopped)
			if c.onEnd != nil {
				c.onEnd()
			}
		} else if c.current < 0 {
			c.current = 0
			c.state = Stopped
			c.notify(Stopped)
		}

	case RepeatLoop:
		if c.current >= c.duration {
			for c.current >= c.duration {
				c.current -= c.duration
				c.loops++
			}
			if c.onLoop != nil {
				c.onLoop(c.loops)
			}
		} else if c.current < 0 {
			for c.current < 0 {
				c.current += c.duration
				c.loops++
			}
			if c.onLoop != nil {
				c.onLoop(c.loops)
			}
		}

	case RepeatReverse:
		if c.current >= c.duration {
			// The bounce is only half done here; the loop callback fires
			// once the return leg reaches 0.
			c.current = c.duration
			c.forward = false
		} else if c.current <= 0 && !c.forward {
			c.current = 0
			c.forward = true
			c.loops++
			if c.onLoop != nil {
				c.onLoop(c.loops)
			}
		} else if c.current < 0 {
			c.current = 0
		}

	case RepeatCount:
		if c.current >= c.duration {
			c.loops++
			if c.loops >= c.repeatCount {
				c.current = c.duration
				c.state = Stopped
				c.notify(Stopped)
				if c.onEnd != nil {
					c.onEnd()
				}
			} else {
				c.current = math.Mod(c.current, c.duration)
				if c.onLoop != nil {
					c.onLoop(c.loops)
				}
			}
		} else if c.current < 0 {
			c.current = 0
		}
	}
}

// trackFrameChanges records which directives changed their active keyframe
// since the previous call and returns whether anything changed.
func (c *Controller) trackFrameChanges() bool {
	c.frameChanges = c.frameChanges[:0]

	if c.model != nil {
		if len(c.prevFrames) != len(c.model.Animations) {
			c.prevFrames = make([]int, len(c.model.Animations))
		}
		for i := range c.model.Animations {
			a := &c.model.Animations[i]
			frame := FrameIndexAt(a, c.current)
			if frame != c.prevFrames[i] {
				c.frameChanges = append(c.frameChanges, FrameChange{
					TargetID:      a.TargetID,
					PreviousFrame: c.prevFrames[i],
					CurrentFrame:  frame,
				})
				c.prevFrames[i] = frame
			}
		}
	}

	frame := c.CurrentFrame()
	if frame != c.lastFrame {
		c.lastFrame = frame
		return true
	}
	return len(c.frameChanges) > 0
}

// FrameChanges returns the per-directive keyframe changes recorded by the
// last Advance. Used by dirty-region consumers to limit redraw work.
func (c *Controller) FrameChanges() []FrameChange { return c.frameChanges }

// CurrentTime returns the clock position in seconds.
func (c *Controller) CurrentTime() float64 { return c.current }

// Duration returns the scene duration in seconds.
func (c *Controller) Duration() float64 { return c.duration }

// Progress returns the position as a fraction of the duration.
func (c *Controller) Progress() float64 {
	if c.duration <= 0 {
		return 0
	}
	return c.current / c.duration
}

// CurrentFrame returns the 0-based frame index for the current position.
func (c *Controller) CurrentFrame() int { return c.FrameForTime(c.current) }

// TotalFrames returns the discrete frame count of the scene.
func (c *Controller) TotalFrames() int { return c.totalFrames }

// FrameRate returns the nominal frames-per-second value.
func (c *Controller) FrameRate() float64 { return c.frameRate }

// === Seeking ===

// SeekTo moves the clock to an absolute time, clamped into [0, duration].
// Seeking never changes the playback state or the loop count.
func (c *Controller) SeekTo(t float64) {
	c.current = clamp(t, 0, c.duration)
	c.lastFrame = c.CurrentFrame()
}

// SeekToFrame moves the clock to the start of a frame, clamped into range.
func (c *Controller) SeekToFrame(frame int) {
	if c.totalFrames <= 0 {
		return
	}
	if frame < 0 {
		frame = 0
	}
	if frame > c.totalFrames-1 {
		frame = c.totalFrames - 1
	}
	c.current = c.TimeForFrame(frame)
	c.lastFrame = frame
}

// SeekToProgress moves the clock to a fraction of the duration.
func (c *Controller) SeekToProgress(p float64) {
	c.SeekTo(clamp(p, 0, 1) * c.duration)
}

// SeekToStart moves the clock to 0.
func (c *Controller) SeekToStart() { c.SeekTo(0) }

// SeekToEnd moves the clock to the duration.
func (c *Controller) SeekToEnd() { c.SeekTo(c.duration) }

// SeekByTime moves the clock relative to the current position.
func (c *Controller) SeekByTime(dt float64) { c.SeekTo(c.current + dt) }

// SeekByProgress moves the clock by a fraction of the duration, e.g. 0.1
// seeks forward by 10%.
func (c *Controller) SeekByProgress(p float64) { c.SeekTo(c.current + p*c.duration) }

// === Frame stepping ===

// StepForward advances exactly one frame, pausing playback.
func (c *Controller) StepForward() { c.StepByFrames(1) }

// StepBackward rewinds exactly one frame, pausing playback.
func (c *Controller) StepBackward() { c.StepByFrames(-1) }

// StepByFrames moves by a signed number of frames. Stepping always pauses:
// examining frames one at a time while the clock runs makes no sense.
func (c *Controller) StepByFrames(n int) {
	if c.state == Playing {
		c.Pause()
	}
	c.SeekToFrame(c.CurrentFrame() + n)
}

// === Scrubbing ===

// BeginScrub enters scrubbing mode: playback pauses and the prior state is
// remembered for EndScrub.
func (c *Controller) BeginScrub() {
	if !c.scrubbing {
		c.scrubbing = true
		c.stateBeforeScrub = c.state
		c.Pause()
	}
}

// ScrubToProgress seeks while scrubbing; ignored otherwise.
func (c *Controller) ScrubToProgress(p float64) {
	if c.scrubbing {
		c.SeekToProgress(p)
	}
}

// EndScrub leaves scrubbing mode, optionally resuming playback if the
// animation was playing when the scrub began.
func (c *Controller) EndScrub(resume bool) {
	if !c.scrubbing {
		return
	}
	c.scrubbing = false
	if resume && c.stateBeforeScrub == Playing {
		c.Play()
	}
}

// IsScrubbing reports whether a scrub gesture is in progress.
func (c *Controller) IsScrubbing() bool { return c.scrubbing }

// === Callbacks ===

// OnStateChange registers a callback invoked on every state transition.
func (c *Controller) OnStateChange(fn func(State)) { c.onStateChange = fn }

// OnLoop registers a callback invoked whenever the animation wraps or
// bounces, receiving the completed loop count.
func (c *Controller) OnLoop(fn func(int)) { c.onLoop = fn }

// OnEnd registers a callback invoked when a non-looping animation reaches
// its end.
func (c *Controller) OnEnd(fn func()) { c.onEnd = fn }

func (c *Controller) notify(s State) {
	if c.onStateChange != nil {
		c.onStateChange(s)
	}
}

// === Utilities ===

// FrameForTime converts a time to a frame index, clamped into range.
func (c *Controller) FrameForTime(t float64) int {
	if c.totalFrames <= 0 || c.duration <= 0 {
		return 0
	}
	frameTime := c.duration / float64(c.totalFrames)
	frame := int(t / frameTime)
	if frame < 0 {
		return 0
	}
	if frame > c.totalFrames-1 {
		return c.totalFrames - 1
	}
	return frame
}

// TimeForFrame converts a frame index to the time of its first instant.
func (c *Controller) TimeForFrame(frame int) float64 {
	if c.totalFrames <= 0 || c.duration <= 0 {
		return 0
	}
	if frame < 0 {
		frame = 0
	}
	if frame > c.totalFrames-1 {
		frame = c.totalFrames - 1
	}
	return float64(frame) * c.duration / float64(c.totalFrames)
}

// FormatTime renders seconds as MM:SS.mmm for transport displays.
func FormatTime(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	mins := int(seconds) / 60
	secs := int(seconds) % 60
	ms := int((seconds - math.Floor(seconds)) * 1000)
	return fmt.Sprintf("%02d:%02d.%03d", mins, secs, ms)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
