package main

import (
	"math/rand/v2"
	"time"
)

const (
	jitterMinThreshold = 0.49
	jitterMaxThreshold = 0.95
	jitterMinDelay     = 300 * time.Millisecond
	jitterMaxDelay     = 5300 * time.Millisecond

	jitterInitialThreshold = 0.9
	jitterInitialDelay     = time.Second
)

// Jitter moves the button decision threshold around at random intervals so
// a button cannot be jammed down to hold it pressed indefinitely.
type Jitter struct {
	threshold float64
	next      time.Time
	rng       *rand.Rand
}

// NewJitter starts at the initial threshold with the first change one
// second after now. A nil rng uses a randomly seeded source.
func NewJitter(now time.Time, rng *rand.Rand) *Jitter {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Jitter{
		threshold: jitterInitialThreshold,
		next:      now.Add(jitterInitialDelay),
		rng:       rng,
	}
}

// Threshold is the current decision threshold.
func (j *Jitter) Threshold() float64 {
	return j.threshold
}

// NextChange is when the threshold will next be redrawn.
func (j *Jitter) NextChange() time.Time {
	return j.next
}

// Update redraws the threshold and the delay to the next redraw if now is
// past the scheduled change. It reports whether a redraw happened.
func (j *Jitter) Update(now time.Time) bool {
	if !now.After(j.next) {
		return false
	}
	j.threshold = jitterMinThreshold + j.rng.Float64()*(jitterMaxThreshold-jitterMinThreshold)
	delay := jitterMinDelay + time.Duration(j.rng.Int64N(int64(jitterMaxDelay-jitterMinDelay)+1))
	j.next = now.Add(delay)
	dbg("button threshold now %.3f until %s", j.threshold, j.next.Format(time.StampMilli))
	return true
}
