package skyengine

import "time"

type DriverState int

const (
	DriverIdle DriverState = iota
	DriverRunning
)

func (s DriverState) String() string {
	switch s {
	case DriverIdle:
		return "idle"
	case DriverRunning:
		return "running"
	default:
		return "unknown"
	}
}

// Driver caps the frame rate. It is consulted on every host callback and accepts a frame only
// when enough time has passed since the last accepted one; skipped callbacks cost nothing.
type Driver struct {
	state       DriverState
	minInterval time.Duration
	last        time.Time

	Accepted, Skipped uint64
}

func NewDriver(targetFPS float64) *Driver {
	d := &Driver{}
	if targetFPS > 0 {
		d.minInterval = time.Duration(float64(time.Second) / targetFPS)
	}
	return d
}

func (d *Driver) State() DriverState { return d.state }

func (d *Driver) MinInterval() time.Duration { return d.minInterval }

// Accept reports whether the callback at now should run a full frame.
func (d *Driver) Accept(now time.Time) bool {
	if d.state == DriverIdle {
		d.state = DriverRunning
		d.last = now
		d.Accepted++
		return true
	}
	if now.Sub(d.last) < d.minInterval {
		d.Skipped++
		return false
	}
	d.last = now
	d.Accepted++
	return true
}
