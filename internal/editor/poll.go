package editor

import (
	"context"
	"time"

	"github.com/mgpai22/cuemark/internal/timeline"
)

// Command runs on the controller's goroutine.
type Command func(*Controller)

// Run is the editor's only loop. Commands and poll ticks are handled by the
// same select, so the store is never touched concurrently. It returns when
// ctx is done or commands is closed.
func (c *Controller) Run(ctx context.Context, commands <-chan Command) error {
	interval := c.settings.PollInterval
	if interval <= 0 {
		interval = DefaultSettings().PollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case cmd, ok := <-commands:
			if !ok {
				return nil
			}
			// a command may have ended the session while this one was queued
			if ctx.Err() != nil {
				return nil
			}
			cmd(c)
		case <-ticker.C:
			c.Tick()
		}
	}
}

// Tick samples the playhead, updates the active interval and expires a
// released drag selection.
func (c *Controller) Tick() (timeline.Interval, bool) {
	c.store.ExpireSelection(c.now())
	if !c.Loaded() {
		return timeline.Interval{}, false
	}

	iv, ok := c.store.ActiveAt(c.player.CurrentTime())
	if ok != c.hasActive || iv.ID != c.active {
		c.active, c.hasActive = iv.ID, ok
		if ok {
			c.logger.Debugw("active subtitle", "id", iv.ID, "text", iv.Text)
		}
		if c.onActive != nil {
			c.onActive(iv, ok)
		}
	}
	return iv, ok
}

// Active is the interval under the playhead as of the last tick.
func (c *Controller) Active() (timeline.Interval, bool) {
	if !c.hasActive {
		return timeline.Interval{}, false
	}
	return c.store.Get(c.active)
}
