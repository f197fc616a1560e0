package editor

import "slices"

// PointerEvent is a pointer position translated to timeline seconds.
type PointerEvent struct {
	Time float64
}

type listener struct {
	id int
	fn func(PointerEvent)
}

// PointerBus fans pointer moves and releases out to registered listeners.
// Listeners may unregister themselves while being dispatched.
type PointerBus struct {
	nextID int
	move   []listener
	up     []listener
}

func NewPointerBus() *PointerBus {
	return &PointerBus{}
}

// OnMove registers fn for pointer moves and returns its unregister func.
func (b *PointerBus) OnMove(fn func(PointerEvent)) func() {
	return b.register(&b.move, fn)
}

// OnUp registers fn for pointer releases and returns its unregister func.
func (b *PointerBus) OnUp(fn func(PointerEvent)) func() {
	return b.register(&b.up, fn)
}

func (b *PointerBus) Move(ev PointerEvent) {
	dispatch(b.move, ev)
}

func (b *PointerBus) Up(ev PointerEvent) {
	dispatch(b.up, ev)
}

// Listeners reports how many handlers are registered.
func (b *PointerBus) Listeners() int {
	return len(b.move) + len(b.up)
}

func (b *PointerBus) register(list *[]listener, fn func(PointerEvent)) func() {
	b.nextID++
	id := b.nextID
	*list = append(*list, listener{id: id, fn: fn})

	return func() {
		*list = slices.DeleteFunc(*list, func(l listener) bool {
			return l.id == id
		})
	}
}

func dispatch(list []listener, ev PointerEvent) {
	// handlers may unregister, so iterate a snapshot
	for _, l := range slices.Clone(list) {
		l.fn(ev)
	}
}
