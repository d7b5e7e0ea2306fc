package timeline

// rollingAverage keeps a fixed-window mean over a stream of samples. The
// player feeds it per-frame render and update times so the HUD shows a
// stable number instead of frame-to-frame jitter.
type rollingAverage struct {
	samples []float64
	next    int
	filled  bool
	sum     float64
}

func newRollingAverage(window int) *rollingAverage {
	if window < 1 {
		window = 1
	}
	return &rollingAverage{samples: make([]float64, window)}
}

func (r *rollingAverage) Add(v float64) {
	r.sum -= r.samples[r.next]
	r.samples[r.next] = v
	r.sum += v
	r.next++
	if r.next == len(r.samples) {
		r.next = 0
		r.filled = true
	}
}

func (r *rollingAverage) Mean() float64 {
	n := r.next
	if r.filled {
		n = len(r.samples)
	}
	if n == 0 {
		return 0
	}
	return r.sum / float64(n)
}

func (r *rollingAverage) Reset() {
	for i := range r.samples {
		r.samples[i] = 0
	}
	r.next = 0
	r.filled = false
	r.sum = 0
}

// MeterWindow is the sample window used for the player's timing meters.
const MeterWindow = 60

// Meter is the exported face of the rolling average for timing consumers.
type Meter struct{ avg *rollingAverage }

// NewMeter creates a meter averaging over the given number of samples.
func NewMeter(window int) *Meter { return &Meter{avg: newRollingAverage(window)} }

// Add records one sample.
func (m *Meter) Add(v float64) { m.avg.Add(v) }

// Mean returns the windowed mean, 0 when no samples were recorded.
func (m *Meter) Mean() float64 { return m.avg.Mean() }

// Reset discards all samples.
func (m *Meter) Reset() { m.avg.Reset() }
