package simulate

import "time"

// simClock is a deterministic contracts.Clock driven entirely by Advance
// calls, so a simulation run never depends on wall-clock time and is
// reproducible run to run for a given topology.
type simClock struct {
	epoch time.Time
	secs  int64
}

func newSimClock() *simClock {
	return &simClock{epoch: time.Unix(0, 0).UTC()}
}

func (c *simClock) Advance(d time.Duration) {
	c.secs += int64(d / time.Second)
}

func (c *simClock) Now() time.Time {
	return c.epoch.Add(time.Duration(c.secs) * time.Second)
}

func (c *simClock) Seconds() int64 {
	return c.secs
}
