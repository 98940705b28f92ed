// Package playback describes the media transport the editor reads time from.
package playback

import (
	"math"
	"sync"
)

// Controller is the playback transport. The editor only reads the current
// time and duration and seeks when a marker is activated.
type Controller interface {
	CurrentTime() float64
	Duration() float64
	Seek(t float64)
}

// DefaultFPS is the frame rate used for frame stepping when none is known.
const DefaultFPS = 30.0

// Clock is a manually driven Controller for still frames, tests and remote
// sessions. It is safe for concurrent use.
type Clock struct {
	mu       sync.Mutex
	t        float64
	duration float64
	fps      float64
	onSeek   func(float64)
}

// NewClock creates a clock over a video of the given length.
func NewClock(duration, fps float64) *Clock {
	if fps <= 0 {
		fps = DefaultFPS
	}
	return &Clock{duration: duration, fps: fps}
}

// OnSeek registers fn to run after every seek with the clamped time.
func (c *Clock) OnSeek(fn func(float64)) {
	c.mu.Lock()
	c.onSeek = fn
	c.mu.Unlock()
}

func (c *Clock) CurrentTime() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *Clock) Duration() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.duration
}

// SetDuration changes the media length. The current time is clamped to it.
func (c *Clock) SetDuration(d float64) {
	c.mu.Lock()
	c.duration = d
	if d > 0 && c.t > d {
		c.t = d
	}
	c.mu.Unlock()
}

// FPS returns the frame rate used by Step.
func (c *Clock) FPS() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fps
}

// Seek moves to t, clamped to [0, duration]. A non-positive duration only
// clamps at zero.
func (c *Clock) Seek(t float64) {
	c.mu.Lock()
	if math.IsNaN(t) || t < 0 {
		t = 0
	}
	if c.duration > 0 && t > c.duration {
		t = c.duration
	}
	c.t = t
	fn := c.onSeek
	c.mu.Unlock()
	if fn != nil {
		fn(t)
	}
}

// Step moves by n frames (negative steps back) and snaps to the frame grid.
func (c *Clock) Step(n int) {
	c.mu.Lock()
	frame := math.Round(c.t*c.fps) + float64(n)
	t := frame / c.fps
	c.mu.Unlock()
	c.Seek(t)
}
