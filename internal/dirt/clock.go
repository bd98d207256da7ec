package dirt

import (
	"log"
	"sync"
	"time"
)

// Now returns the current wall-clock time in seconds since the Unix epoch.
func Now() float64 {
	return float64(time.Now().UnixNano()) / float64(time.Second)
}

// Clock maps the pattern engine's internal monotonic time base onto
// wall-clock time. The origin is the wall-clock time corresponding to
// internal time zero and is normally set once, at session start, before the
// dispatch path issues any conversions.
type Clock struct {
	logger *log.Logger

	mu     sync.Mutex
	origin float64
	set    bool
	warned bool
}

// NewClock returns a clock that reports through logger.
func NewClock(logger *log.Logger) *Clock {
	if logger == nil {
		logger = log.Default()
	}
	return &Clock{logger: logger}
}

// SetOrigin records the wall-clock time (seconds since the Unix epoch)
// corresponding to internal time zero. Later calls overwrite.
func (c *Clock) SetOrigin(wall float64) {
	c.mu.Lock()
	c.origin = wall
	c.set = true
	c.mu.Unlock()
}

// ToWall converts an internal time to wall-clock seconds. If the origin has
// not been set yet it is initialized from the current wall-clock time, which
// keeps output monotonic but shifts absolute alignment by an unknown amount;
// a warning is logged once per session when that happens.
func (c *Clock) ToWall(internal float64) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.set {
		c.origin = Now()
		c.set = true
		if !c.warned {
			c.warned = true
			c.logger.Printf("dirt: clock origin not set, falling back to current time; absolute alignment is best-effort")
		}
	}
	return c.origin + internal
}
