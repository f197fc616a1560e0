package editor

import (
	"math"

	"github.com/mgpai22/cuemark/internal/timeline"
)

// Drag is one pointer gesture moving an interval edge. It ends with
// Release, which always commits.
type Drag struct {
	c        *Controller
	id       timeline.ID
	handle   timeline.Handle
	bounds   timeline.Bounds
	released bool

	unregister []func()
}

// BeginDrag starts moving one edge of id and subscribes the gesture to the
// pointer bus until it is released.
func (c *Controller) BeginDrag(id timeline.ID, handle timeline.Handle) (*Drag, error) {
	bounds, err := c.DragBounds(id)
	if err != nil {
		c.advise(err)
		return nil, err
	}
	if err := c.store.Select(id); err != nil {
		c.advise(err)
		return nil, err
	}

	d := &Drag{c: c, id: id, handle: handle, bounds: bounds}
	d.unregister = append(d.unregister,
		c.bus.OnMove(func(ev PointerEvent) {
			_, _ = d.Move(ev.Time)
		}),
		c.bus.OnUp(func(PointerEvent) {
			d.Release()
		}),
	)
	c.logger.Debugw("drag started", "id", id, "handle", handle, "min", bounds.Min, "max", bounds.Max)
	return d, nil
}

// Move puts the dragged edge at t, clamped to the gesture's bounds.
func (d *Drag) Move(t float64) (timeline.Result, error) {
	res, err := d.c.store.EditDrag(d.id, d.handle, t, d.bounds)
	if err != nil {
		d.c.advise(err)
	}
	return res, err
}

// Release ends the gesture: listeners are removed and the store re-sorted.
func (d *Drag) Release() timeline.Result {
	if d.released {
		return d.c.unchanged()
	}
	d.released = true
	defer func() {
		for _, fn := range d.unregister {
			fn()
		}
		d.unregister = nil
	}()

	res := d.c.store.CommitDrag(d.c.now())
	d.c.logger.Debugw("drag committed", "id", d.id, "handle", d.handle)
	return res
}

// DragBounds is the window an edge of id may move in: the interval widened
// by the drag buffer, never crossing its neighbours or the video end.
func (c *Controller) DragBounds(id timeline.ID) (timeline.Bounds, error) {
	iv, ok := c.store.Get(id)
	if !ok {
		return timeline.Bounds{}, timeline.ErrNotFound
	}

	b := timeline.Unbounded()
	if buf := c.settings.DragBuffer; buf > 0 {
		b.Min = math.Max(0, iv.Start-buf)
		b.Max = iv.EndOr(iv.Start) + buf
	}

	prev, next := c.store.Neighbors(id)
	if prev != nil {
		b.Min = math.Max(b.Min, prev.EndOr(prev.Start))
	}
	if next != nil {
		b.Max = math.Min(b.Max, next.Start)
	}
	if d := c.store.Duration(); d > 0 {
		b.Max = math.Min(b.Max, d)
	}
	return b, nil
}
