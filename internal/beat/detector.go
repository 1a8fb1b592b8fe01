// Package beat detects percussive peaks in a microphone signal and derives a
// tempo from the intervals between them.
package beat

import (
	"math/rand/v2"
	"time"

	"github.com/sweeney/labkit/internal/config"
	"github.com/sweeney/labkit/internal/filter"
	"github.com/sweeney/labkit/internal/pixel"
	"github.com/sweeney/labkit/internal/timer"
)

// Output is the result of one detector step.
type Output struct {
	Beat     bool
	Interval time.Duration // zero on the first beat
	BPM      float64       // mean tempo after this step, 0 if unknown
	Color    pixel.Color   // LED colour after fading

	// Report is set when a logging period ended with a known tempo;
	// ReportBPM is the tempo to record.
	Report    bool
	ReportBPM float64
}

// Detector is a threshold beat detector with a bounded interval history.
type Detector struct {
	cfg       config.BeatsConfig
	rng       *rand.Rand
	intervals *filter.Ring[time.Duration]
	logTimer  *timer.Interval

	lastBeat time.Time
	hasBeat  bool
	color    pixel.Color
	beats    int
}

// NewDetector creates a detector whose first logging period starts at start.
func NewDetector(cfg config.BeatsConfig, rng *rand.Rand, start time.Time) *Detector {
	d := &Detector{
		cfg:       cfg,
		rng:       rng,
		intervals: filter.NewRing[time.Duration](cfg.HistorySize),
		logTimer:  timer.New(cfg.LogInterval),
	}
	d.logTimer.Reset(start)
	return d
}

// IsBeat reports whether level stands out from the running average by more
// than threshold.
func IsBeat(level, average uint16, threshold int) bool {
	return int(level) > int(average)+threshold
}

// Step feeds one sample and the current average.
func (d *Detector) Step(now time.Time, level, average uint16) Output {
	var out Output

	if IsBeat(level, average, d.cfg.Threshold) {
		since := now.Sub(d.lastBeat)
		if !d.hasBeat || since > d.cfg.MinInterval {
			if d.hasBeat {
				d.intervals.Push(since)
				out.Interval = since
			}
			d.lastBeat = now
			d.hasBeat = true
			d.beats++
			d.color = pixel.Random(d.rng, d.cfg.ColorMin)
			out.Beat = true
		}
	}

	if d.logTimer.Due(now) {
		if bpm := d.BPM(); bpm > 0 {
			out.Report = true
			out.ReportBPM = bpm
		}
		d.intervals.Clear()
	}

	d.color = pixel.Fade(d.color, d.cfg.Fade)
	out.Color = d.color
	out.BPM = d.BPM()
	return out
}

// BPM returns 60000 / mean interval in milliseconds, or 0 with fewer than two
// recorded intervals.
func (d *Detector) BPM() float64 {
	if d.intervals.Len() < 2 {
		return 0
	}
	mean := filter.Mean(d.intervalsMs())
	if mean <= 0 {
		return 0
	}
	return 60000 / mean
}

// InstantBPM returns the tempo implied by the most recent interval alone, or 0
// when no interval has been recorded.
func (d *Detector) InstantBPM() float64 {
	last, ok := d.intervals.Last()
	if !ok {
		return 0
	}
	return toBPM(last)
}

// Intervals returns the recorded intervals, oldest first.
func (d *Detector) Intervals() []time.Duration {
	return d.intervals.Values()
}

// Beats returns the number of beats detected since start.
func (d *Detector) Beats() int {
	return d.beats
}

func (d *Detector) intervalsMs() []float64 {
	ms := make([]float64, 0, d.intervals.Len())
	for _, iv := range d.intervals.Values() {
		ms = append(ms, float64(iv)/float64(time.Millisecond))
	}
	return ms
}

func toBPM(interval time.Duration) float64 {
	if interval <= 0 {
		return 0
	}
	return 60000 / (float64(interval) / float64(time.Millisecond))
}
