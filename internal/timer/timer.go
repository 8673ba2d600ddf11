// Package timer tracks elapsed round time and drives the periodic display
// tick.
package timer

import (
	"fmt"
	"time"
)

// DefaultTickInterval is how often the elapsed time is redrawn while a round
// is running.
const DefaultTickInterval = 250 * time.Millisecond

// Timer records a single start timestamp and owns at most one display tick.
// It is not safe for concurrent use; the quiz controller serializes access.
type Timer struct {
	clock    Clock
	interval time.Duration

	startedAt time.Time
	started   bool
	tick      Ticker
}

func New(clock Clock, interval time.Duration) *Timer {
	if clock == nil {
		clock = System()
	}
	return &Timer{clock: clock, interval: interval}
}

// Start records now as the start time and schedules onTick every interval.
// A tick left over from a previous Start is cancelled first. A nil onTick or
// a non-positive interval schedules nothing.
func (t *Timer) Start(onTick func()) {
	t.cancelTick()
	t.startedAt = t.clock.Now()
	t.started = true
	if onTick != nil && t.interval > 0 {
		t.tick = t.clock.Every(t.interval, onTick)
	}
}

// Stop cancels the display tick. The start time is kept so Elapsed still
// answers after the round ends.
func (t *Timer) Stop() {
	t.cancelTick()
}

// ticking reports whether a display tick is scheduled.
func (t *Timer) ticking() bool { return t.tick != nil }

// Elapsed returns whole seconds since Start, rounded down. It is 0 before
// the first Start.
func (t *Timer) Elapsed() int {
	if !t.started {
		return 0
	}
	d := t.clock.Now().Sub(t.startedAt)
	if d < 0 {
		return 0
	}
	return int(d / time.Second)
}

// startedAtTime returns the recorded start time, if any.
func (t *Timer) startedAtTime() (time.Time, bool) {
	return t.startedAt, t.started
}

func (t *Timer) cancelTick() {
	if t.tick != nil {
		t.tick.Stop()
		t.tick = nil
	}
}

// Format renders seconds as MM:SS. Minutes are not capped, so rounds past
// 99 minutes print more than two minute digits.
func Format(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
