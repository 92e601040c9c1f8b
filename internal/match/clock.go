package match

import "time"

// Clock holds both sides' remaining time. Only the side to move accrues,
// measured from wall-clock deltas between Tick calls.
type Clock struct {
	initial   time.Duration
	remaining [SideCount]time.Duration
	lastTick  time.Time
	hasTick   bool
}

func NewClock(initial time.Duration) *Clock {
	c := &Clock{initial: initial}
	c.Reset()
	return c
}

func (c *Clock) Reset() {
	c.remaining[White] = c.initial
	c.remaining[Black] = c.initial
	c.lastTick = time.Time{}
	c.hasTick = false
}

func (c *Clock) Initial() time.Duration { return c.initial }

func (c *Clock) Remaining(side Side) time.Duration { return c.remaining[side] }

// Tick charges now-lastTick to side and reports whether side ran out.
// The first call only records now.
func (c *Clock) Tick(side Side, now time.Time) (expired bool) {
	if !c.hasTick {
		c.lastTick = now
		c.hasTick = true
		return false
	}
	elapsed := now.Sub(c.lastTick)
	c.lastTick = now
	if elapsed < 0 {
		elapsed = 0
	}
	c.remaining[side] -= elapsed
	if c.remaining[side] <= 0 {
		c.remaining[side] = 0
		return true
	}
	return false
}
