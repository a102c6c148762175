package detector

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestDetector() *SpikeDetector {
	return New(time.Minute, 5*time.Minute, 3, 5)
}

func TestSpikeDetector_RecordPrunesOldTimestamps(t *testing.T) {
	d := newTestDetector()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	d.Record(base)
	d.Record(base.Add(1 * time.Minute))
	d.Record(base.Add(2 * time.Minute))
	assert.Equal(t, 3, d.WindowSize())

	// 10 minutes later, everything before now-5m is gone.
	d.Record(base.Add(10 * time.Minute))
	assert.Equal(t, 1, d.WindowSize())
}

func TestSpikeDetector_RecordKeepsBoundaryTimestamp(t *testing.T) {
	d := newTestDetector()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	d.Record(base)
	// Exactly at the cutoff: now - LONG_WINDOW is retained.
	d.Record(base.Add(5 * time.Minute))
	assert.Equal(t, 2, d.WindowSize())
}

func TestSpikeDetector_EvaluateBelowFloorNeverSpikes(t *testing.T) {
	d := newTestDetector()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	// Four mentions in one second is a huge burst, but below the floor.
	for i := 0; i < 4; i++ {
		d.Record(now)
	}
	assert.False(t, d.Evaluate(now))
}

func TestSpikeDetector_EvaluateBurstSpikes(t *testing.T) {
	d := newTestDetector()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	// Five mentions within the last second: shortCount=5, total=5,
	// baseline=1, threshold 3 -> spike.
	for i := 0; i < 5; i++ {
		d.Record(now.Add(-time.Duration(i) * 100 * time.Millisecond))
	}
	assert.True(t, d.Evaluate(now))
}

func TestSpikeDetector_EvaluateSteadyRateDoesNotSpike(t *testing.T) {
	d := newTestDetector()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	// One mention per minute over five minutes: shortCount ~1, baseline 1.
	for i := 4; i >= 0; i-- {
		d.Record(base.Add(-time.Duration(i) * time.Minute))
	}
	assert.False(t, d.Evaluate(base))
}

func TestSpikeDetector_EvaluateDoesNotMutateWindow(t *testing.T) {
	d := newTestDetector()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		d.Record(now)
	}

	before := d.WindowSize()
	d.Evaluate(now)
	d.Evaluate(now)
	assert.Equal(t, before, d.WindowSize())
}
