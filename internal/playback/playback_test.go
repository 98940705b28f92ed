package playback

import (
	"math"
	"testing"
)

func TestClockSeekClamps(t *testing.T) {
	c := NewClock(60, 30)
	c.Seek(-3)
	if c.CurrentTime() != 0 {
		t.Errorf("seek below zero = %v", c.CurrentTime())
	}
	c.Seek(75)
	if c.CurrentTime() != 60 {
		t.Errorf("seek past end = %v", c.CurrentTime())
	}
}

func TestClockStep(t *testing.T) {
	c := NewClock(10, 25)
	var seen float64
	c.OnSeek(func(t float64) { seen = t })
	c.Seek(1)
	c.Step(5)
	if math.Abs(c.CurrentTime()-1.2) > 1e-9 {
		t.Fatalf("after 5 frames = %v, want 1.2", c.CurrentTime())
	}
	if seen != c.CurrentTime() {
		t.Fatalf("OnSeek saw %v", seen)
	}
	c.Step(-100)
	if c.CurrentTime() != 0 {
		t.Fatalf("step before start = %v", c.CurrentTime())
	}
}

func TestClockDefaultFPS(t *testing.T) {
	if NewClock(1, 0).FPS() != DefaultFPS {
		t.Fatal("expected default fps")
	}
}

func TestSetDurationClamps(t *testing.T) {
	c := NewClock(0, 30)
	c.Seek(12)
	c.SetDuration(10)
	if c.Duration() != 10 || c.CurrentTime() != 10 {
		t.Fatalf("duration=%v time=%v", c.Duration(), c.CurrentTime())
	}
	c.SetDuration(0)
	c.Seek(50)
	if c.CurrentTime() != 50 {
		t.Fatalf("unbounded seek = %v", c.CurrentTime())
	}
}
