package skyengine

import (
	"testing"
	"time"
)

func TestDriverThrottle(t *testing.T) {
	d := NewDriver(45)
	if d.State() != DriverIdle {
		t.Fatalf("State() = %v, want idle", d.State())
	}

	start := time.Unix(1700000000, 0)
	var last time.Time
	for i := 0; i < 1200; i++ {
		now := start.Add(time.Duration(i) * time.Second / 120)
		if !d.Accept(now) {
			continue
		}
		if !last.IsZero() && now.Sub(last) < d.MinInterval() {
			t.Fatalf("frame accepted %v after the previous one, minimum %v", now.Sub(last), d.MinInterval())
		}
		last = now
	}

	if d.State() != DriverRunning {
		t.Errorf("State() = %v, want running", d.State())
	}
	if d.Accepted > 450 {
		t.Errorf("accepted %d frames in 10s at 45 fps", d.Accepted)
	}
	if d.Accepted < 300 {
		t.Errorf("accepted only %d frames in 10s", d.Accepted)
	}
	if d.Accepted+d.Skipped != 1200 {
		t.Errorf("accepted+skipped = %d, want 1200", d.Accepted+d.Skipped)
	}
}

func TestDriverFirstFrame(t *testing.T) {
	d := NewDriver(45)
	now := time.Unix(0, 0)
	if !d.Accept(now) {
		t.Fatal("first callback was skipped")
	}
	if d.Accept(now.Add(time.Millisecond)) {
		t.Error("callback 1ms later was accepted")
	}
	if !d.Accept(now.Add(23 * time.Millisecond)) {
		t.Error("callback 23ms later was skipped")
	}
}

func TestDriverUncapped(t *testing.T) {
	d := NewDriver(0)
	now := time.Unix(0, 0)
	for i := 0; i < 10; i++ {
		if !d.Accept(now) {
			t.Fatalf("uncapped driver skipped callback %d", i)
		}
	}
}

func TestDriverStateString(t *testing.T) {
	for state, want := range map[DriverState]string{DriverIdle: "idle", DriverRunning: "running", DriverState(9): "unknown"} {
		if got := state.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", int(state), got, want)
		}
	}
}
