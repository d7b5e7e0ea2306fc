package player

import (
	"os"

	"github.com/shirou/gopsutil/v3/process"
)

// Stats is a snapshot of playback performance counters for HUD overlays.
// Timing values are rolling means over the last MeterWindow samples.
type Stats struct {
	RenderTimeMs    float64
	UpdateTimeMs    float64
	CurrentFrame    int
	TotalFrames     int
	FPS             float64
	PeakMemoryBytes uint64
}

// Stats returns the current performance snapshot. Memory is sampled on each
// call and the peak retained; sampling failures degrade to the last known
// peak rather than erroring.
func (p *Player) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.sampleMemoryLocked()

	s := Stats{
		RenderTimeMs:    p.renderMeter.Mean(),
		UpdateTimeMs:    p.updateMeter.Mean(),
		FPS:             p.fpsMeter.Mean(),
		PeakMemoryBytes: p.peakMemory,
	}
	if p.ctrl != nil {
		s.CurrentFrame = p.ctrl.CurrentFrame()
		s.TotalFrames = p.ctrl.TotalFrames()
	}
	return s
}

func (p *Player) sampleMemoryLocked() {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return
	}
	info, err := proc.MemoryInfo()
	if err != nil || info == nil {
		return
	}
	if info.RSS > p.peakMemory {
		p.peakMemory = info.RSS
	}
}
