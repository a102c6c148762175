// Package detector implements sliding-window spike detection over
// accepted mention timestamps.
package detector

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// SpikeDetector keeps a rolling window of mention timestamps covering the
// trailing long window and decides whether short-term volume is abnormal.
// The window lives in memory only; it is rebuilt from nothing after a
// restart, which is acceptable for a rate-based signal.
type SpikeDetector struct {
	shortWindow time.Duration
	longWindow  time.Duration
	multiplier  float64
	minMentions int

	mu         sync.Mutex
	timestamps []time.Time
}

// New creates a spike detector. longWindow must be at least shortWindow.
func New(shortWindow, longWindow time.Duration, multiplier float64, minMentions int) *SpikeDetector {
	return &SpikeDetector{
		shortWindow: shortWindow,
		longWindow:  longWindow,
		multiplier:  multiplier,
		minMentions: minMentions,
	}
}

// Record appends a mention timestamp and prunes everything older than the
// long window.
func (d *SpikeDetector) Record(now time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.timestamps = append(d.timestamps, now)

	cutoff := now.Add(-d.longWindow)
	kept := d.timestamps[:0]
	for _, ts := range d.timestamps {
		if !ts.Before(cutoff) {
			kept = append(kept, ts)
		}
	}
	d.timestamps = kept
}

// Evaluate reports whether mention volume in the trailing short window
// constitutes a spike relative to the long-window baseline.
//
// The baseline is the average count per short-window slice over the whole
// retained window. The current short window contributes to its own
// baseline, which biases the baseline upward as volume rises; that
// tradeoff is inherited from the detection rule, not corrected here.
func (d *SpikeDetector) Evaluate(now time.Time) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	total := len(d.timestamps)
	if total < d.minMentions {
		return false
	}

	shortCutoff := now.Add(-d.shortWindow)
	shortCount := 0
	for _, ts := range d.timestamps {
		if !ts.Before(shortCutoff) {
			shortCount++
		}
	}

	slices := float64(d.longWindow) / float64(d.shortWindow)
	baseline := float64(total) / slices

	if float64(shortCount) > baseline*d.multiplier {
		logrus.Infof("Spike detected: short count %d, baseline %.2f", shortCount, baseline)
		return true
	}

	return false
}

// WindowSize returns the number of retained timestamps.
func (d *SpikeDetector) WindowSize() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.timestamps)
}
