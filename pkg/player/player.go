// Package player is the front-end facade of the animation core. Platform
// shells (desktop, mobile bindings) talk to a Player and nothing else: load
// a scene, drive the clock, read pixels back. Every method is safe to call
// with nothing loaded and reports failure through return values and
// LastError rather than panics, because the callers on the far side of a
// binding cannot recover from one.
package player

import (
	"fmt"
	"image"
	"log"
	"os"
	"sync"
	"time"

	"github.com/decker502/svgplay/internal/smil"
	"github.com/decker502/svgplay/pkg/render"
	"github.com/decker502/svgplay/pkg/timeline"
)

// Player owns one loaded scene and its playback state. All exported methods
// are safe for concurrent use; a single mutex serializes access. Parsing on
// load happens outside the lock so a background goroutine can prepare the
// next scene while the current one keeps playing.
type Player struct {
	mu      sync.Mutex
	backend render.Backend

	model   *smil.Model
	ctrl    *timeline.Controller
	doc     render.Document
	patched string

	lastErr string

	renderMeter *timeline.Meter
	updateMeter *timeline.Meter
	fpsMeter    *timeline.Meter
	peakMemory  uint64
}

// New creates a player rendering through the default oksvg backend.
func New() *Player {
	return NewWithBackend(render.NewOksvgBackend())
}

// NewWithBackend creates a player with an explicit rendering backend.
func NewWithBackend(b render.Backend) *Player {
	return &Player{
		backend:     b,
		renderMeter: timeline.NewMeter(timeline.MeterWindow),
		updateMeter: timeline.NewMeter(timeline.MeterWindow),
		fpsMeter:    timeline.NewMeter(timeline.MeterWindow),
	}
}

// === Loading ===

// LoadFromPath loads a scene from a file on disk.
func (p *Player) LoadFromPath(path string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		p.fail(fmt.Sprintf("read %s: %v", path, err))
		return false
	}
	return p.LoadFromBytes(data)
}

// LoadFromBytes loads a scene from serialized markup. Loading is
// all-or-nothing: on any failure the previously loaded scene stays intact
// and keeps playing.
func (p *Player) LoadFromBytes(data []byte) bool {
	model, err := smil.Parse(string(data))
	if err != nil {
		p.fail(fmt.Sprintf("parse scene: %v", err))
		return false
	}
	doc, err := p.backend.Load(model.ProcessedMarkup)
	if err != nil {
		p.fail(fmt.Sprintf("load scene: %v", err))
		return false
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.model = model
	p.ctrl = timeline.NewController(model)
	p.doc = doc
	p.patched = model.ProcessedMarkup
	p.lastErr = ""
	p.renderMeter.Reset()
	p.updateMeter.Reset()
	p.fpsMeter.Reset()

	log.Printf("[Player] Loaded scene: %d directives, %.2fs, %d frames @ %.1ffps",
		len(model.Animations), model.Duration, model.TotalFrames, model.FrameRate)
	return true
}

// Unload discards the current scene.
func (p *Player) Unload() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.model = nil
	p.ctrl = nil
	p.doc = nil
	p.patched = ""
}

// IsLoaded reports whether a scene is loaded.
func (p *Player) IsLoaded() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.model != nil
}

// LastError returns the most recent failure message, empty when the last
// operation succeeded. Kept as a plain string for binding layers.
func (p *Player) LastError() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastErr
}

// === Clock ===

// Tick advances the clock by an elapsed wall-clock delta, re-evaluates the
// scene and reloads the backend document when the visible frame changed. It
// reports whether the caller needs to re-render.
func (p *Player) Tick(dt float64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ctrl == nil {
		return false
	}

	if dt > 0 {
		p.fpsMeter.Add(1.0 / dt)
	}

	start := time.Now()
	changed := p.ctrl.Advance(dt)
	if changed {
		changed = p.refreshLocked()
	}
	p.updateMeter.Add(float64(time.Since(start).Microseconds()) / 1000.0)
	return changed
}

// refreshLocked re-evaluates the scene at the current clock position and
// reloads the backend document when the patched markup changed. Any
// structural mutation (a retargeted pointer included) flows through the same
// reload; the backend handle itself is never mutated.
func (p *Player) refreshLocked() bool {
	muts := timeline.Evaluate(p.model, p.ctrl.CurrentTime())
	patched := timeline.Apply(p.model.ProcessedMarkup, muts)
	if patched == p.patched {
		return false
	}

	doc, err := p.backend.Load(patched)
	if err != nil {
		p.lastErr = fmt.Sprintf("reload scene: %v", err)
		log.Printf("[Player] Warning: %s", p.lastErr)
		return false
	}
	p.doc = doc
	p.patched = patched
	return true
}

// === Rendering ===

// RenderInto rasterizes the current frame into a caller-owned RGBA buffer
// of at least 4*w*h bytes. Returns false when nothing is loaded or the
// buffer does not fit.
func (p *Player) RenderInto(buf []byte, w, h int, scale float64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.doc == nil {
		return false
	}
	if w <= 0 || h <= 0 || len(buf) < 4*w*h {
		p.lastErr = fmt.Sprintf("render: buffer %d too small for %dx%d", len(buf), w, h)
		return false
	}

	img := &image.RGBA{Pix: buf[:4*w*h], Stride: 4 * w, Rect: image.Rect(0, 0, w, h)}
	start := time.Now()
	if err := p.doc.Render(img, scale); err != nil {
		p.lastErr = fmt.Sprintf("render: %v", err)
		return false
	}
	p.renderMeter.Add(float64(time.Since(start).Microseconds()) / 1000.0)
	return true
}

// IntrinsicSize returns the scene's natural size, 0x0 when nothing is
// loaded.
func (p *Player) IntrinsicSize() (float64, float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.doc == nil {
		return 0, 0
	}
	return p.doc.IntrinsicSize()
}

// === Transport ===

// Play starts or resumes playback.
func (p *Player) Play() { p.transport(func(c *timeline.Controller) { c.Play() }) }

// Pause freezes the clock.
func (p *Player) Pause() { p.transport(func(c *timeline.Controller) { c.Pause() }) }

// Stop halts playback and rewinds to the start.
func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ctrl == nil {
		return
	}
	p.ctrl.Stop()
	p.refreshLocked()
}

// Toggle switches between playing and paused.
func (p *Player) Toggle() { p.transport(func(c *timeline.Controller) { c.Toggle() }) }

// SetRepeatMode selects the end-of-scene behavior.
func (p *Player) SetRepeatMode(m timeline.RepeatMode) {
	p.transport(func(c *timeline.Controller) { c.SetRepeatMode(m) })
}

// SetRepeatCount sets a bounded loop count.
func (p *Player) SetRepeatCount(n int) {
	p.transport(func(c *timeline.Controller) { c.SetRepeatCount(n) })
}

// SetRate sets the playback rate multiplier.
func (p *Player) SetRate(rate float64) {
	p.transport(func(c *timeline.Controller) { c.SetRate(rate) })
}

func (p *Player) transport(fn func(*timeline.Controller)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ctrl != nil {
		fn(p.ctrl)
	}
}

// State returns the playback state, Stopped when nothing is loaded.
func (p *Player) State() timeline.State {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ctrl == nil {
		return timeline.Stopped
	}
	return p.ctrl.State()
}

// IsPlaying reports whether the clock is advancing.
func (p *Player) IsPlaying() bool { return p.State() == timeline.Playing }

// RepeatMode returns the active repeat mode.
func (p *Player) RepeatMode() timeline.RepeatMode {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ctrl == nil {
		return timeline.RepeatNone
	}
	return p.ctrl.RepeatMode()
}

// Rate returns the playback rate multiplier.
func (p *Player) Rate() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ctrl == nil {
		return 1.0
	}
	return p.ctrl.Rate()
}

// CurrentTime returns the clock position in seconds.
func (p *Player) CurrentTime() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ctrl == nil {
		return 0
	}
	return p.ctrl.CurrentTime()
}

// Duration returns the scene duration in seconds.
func (p *Player) Duration() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ctrl == nil {
		return 0
	}
	return p.ctrl.Duration()
}

// Progress returns the clock position as a fraction of the duration.
func (p *Player) Progress() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ctrl == nil {
		return 0
	}
	return p.ctrl.Progress()
}

// CompletedLoops returns how many times the scene wrapped or bounced.
func (p *Player) CompletedLoops() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ctrl == nil {
		return 0
	}
	return p.ctrl.CompletedLoops()
}

// === Seeking ===

// SeekTo moves the clock to an absolute time, clamped into the scene.
func (p *Player) SeekTo(t float64) { p.seek(func(c *timeline.Controller) { c.SeekTo(t) }) }

// SeekToProgress moves the clock to a fraction of the duration.
func (p *Player) SeekToProgress(pr float64) {
	p.seek(func(c *timeline.Controller) { c.SeekToProgress(pr) })
}

// SeekToFrame moves the clock to the start of a frame.
func (p *Player) SeekToFrame(frame int) {
	p.seek(func(c *timeline.Controller) { c.SeekToFrame(frame) })
}

// StepForward advances one frame, pausing playback.
func (p *Player) StepForward() { p.seek(func(c *timeline.Controller) { c.StepForward() }) }

// StepBackward rewinds one frame, pausing playback.
func (p *Player) StepBackward() { p.seek(func(c *timeline.Controller) { c.StepBackward() }) }

// StepByFrames moves by a signed number of frames, pausing playback.
func (p *Player) StepByFrames(n int) {
	p.seek(func(c *timeline.Controller) { c.StepByFrames(n) })
}

// BeginScrub enters scrubbing mode.
func (p *Player) BeginScrub() { p.transport(func(c *timeline.Controller) { c.BeginScrub() }) }

// ScrubToProgress seeks while scrubbing.
func (p *Player) ScrubToProgress(pr float64) {
	p.seek(func(c *timeline.Controller) { c.ScrubToProgress(pr) })
}

// EndScrub leaves scrubbing mode, optionally resuming playback.
func (p *Player) EndScrub(resume bool) {
	p.transport(func(c *timeline.Controller) { c.EndScrub(resume) })
}

// seek runs a position change and refreshes the rendered document so a
// paused viewer sees the new frame immediately.
func (p *Player) seek(fn func(*timeline.Controller)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ctrl == nil {
		return
	}
	fn(p.ctrl)
	p.refreshLocked()
}

// === Stats ===

// CurrentFrame returns the 0-based frame index of the clock position.
func (p *Player) CurrentFrame() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ctrl == nil {
		return 0
	}
	return p.ctrl.CurrentFrame()
}

// TotalFrames returns the discrete frame count of the scene.
func (p *Player) TotalFrames() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ctrl == nil {
		return 0
	}
	return p.ctrl.TotalFrames()
}

func (p *Player) fail(msg string) {
	p.mu.Lock()
	p.lastErr = msg
	p.mu.Unlock()
	log.Printf("[Player] Error: %s", msg)
}
