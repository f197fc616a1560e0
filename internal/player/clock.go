package player

import (
	"fmt"
	"math"
	"time"
)

// DurationResolver looks up the duration in seconds of a loaded video.
type DurationResolver func(id string) (float64, error)

// Clock is a Player without a picture: position advances with wall time
// while playing and stops at the duration when one is known. It is not safe
// for concurrent use.
type Clock struct {
	now     func() time.Time
	resolve DurationResolver

	videoID  string
	state    State
	duration float64

	// position at anchor; while playing the current time is position plus
	// the wall time elapsed since anchor
	position float64
	anchor   time.Time
}

type ClockOption func(*Clock)

// WithNow replaces the wall clock, for tests.
func WithNow(now func() time.Time) ClockOption {
	return func(c *Clock) {
		c.now = now
	}
}

// WithResolver sets how LoadVideoByID finds the video duration.
func WithResolver(resolve DurationResolver) ClockOption {
	return func(c *Clock) {
		c.resolve = resolve
	}
}

func NewClock(opts ...ClockOption) *Clock {
	c := &Clock{
		now:   time.Now,
		state: StateUnstarted,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Clock) CurrentTime() float64 {
	c.advance()
	return c.position
}

func (c *Clock) Duration() float64 {
	return c.duration
}

func (c *Clock) VideoID() string {
	return c.videoID
}

func (c *Clock) SeekTo(t float64, allowSeekAhead bool) {
	if c.videoID == "" || math.IsNaN(t) {
		return
	}
	c.position = c.clamp(t)
	c.anchor = c.now()
	if c.state == StateEnded && (c.duration == 0 || c.position < c.duration) {
		c.state = StatePaused
	}
}

func (c *Clock) Play() {
	if c.videoID == "" {
		return
	}
	c.advance()
	if c.state == StatePlaying {
		return
	}
	if c.state == StateEnded {
		c.position = 0
	}
	c.state = StatePlaying
	c.anchor = c.now()
}

func (c *Clock) Pause() {
	c.advance()
	if c.state == StatePlaying || c.state == StateBuffering {
		c.state = StatePaused
	}
}

func (c *Clock) State() State {
	c.advance()
	return c.state
}

// LoadVideoByID cues a new video at position zero. A resolver error leaves
// the previous video loaded.
func (c *Clock) LoadVideoByID(id string) error {
	if id == "" {
		return fmt.Errorf("empty video id")
	}
	var duration float64
	if c.resolve != nil {
		d, err := c.resolve(id)
		if err != nil {
			return fmt.Errorf("failed to resolve duration for %s: %w", id, err)
		}
		duration = d
	}

	c.videoID = id
	c.duration = duration
	c.position = 0
	c.anchor = c.now()
	c.state = StateCued
	return nil
}

func (c *Clock) Destroy() {
	c.videoID = ""
	c.duration = 0
	c.position = 0
	c.state = StateUnstarted
}

func (c *Clock) advance() {
	if c.state != StatePlaying {
		return
	}
	now := c.now()
	c.position = c.clamp(c.position + now.Sub(c.anchor).Seconds())
	c.anchor = now
	if c.duration > 0 && c.position >= c.duration {
		c.state = StateEnded
	}
}

func (c *Clock) clamp(t float64) float64 {
	if t < 0 {
		return 0
	}
	if c.duration > 0 && t > c.duration {
		return c.duration
	}
	return t
}
