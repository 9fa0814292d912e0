package bitcodec

import (
	"time"

	"github.com/paulbellamy/ratecounter"
)

// Meter tracks conversion throughput over a one-second sliding window.
type Meter struct {
	counter *ratecounter.RateCounter
}

func NewMeter() *Meter {
	return &Meter{counter: ratecounter.NewRateCounter(1 * time.Second)}
}

func (m *Meter) count(n int64) {
	m.counter.Incr(n)
}

// Rate returns bytes processed in the last second.
func (m *Meter) Rate() int64 {
	return m.counter.Rate()
}
