package timeline

import "time"

// SelectionState is the timeline-edit state of the store.
type SelectionState int

const (
	SelectionIdle SelectionState = iota
	SelectionEditing
	SelectionReleasing
)

func (s SelectionState) String() string {
	switch s {
	case SelectionEditing:
		return "editing"
	case SelectionReleasing:
		return "releasing"
	default:
		return "idle"
	}
}

// Selection tracks which interval is being edited on the timeline.
//
// idle -> editing (Begin) -> releasing (Release) -> idle (Expire past the
// deadline). Begin while releasing cancels the pending release.
type Selection struct {
	state    SelectionState
	id       ID
	deadline time.Time
}

func (s *Selection) Begin(id ID) {
	s.state = SelectionEditing
	s.id = id
	s.deadline = time.Time{}
}

// Release schedules the selection to go idle at deadline. It is a no-op
// when nothing is selected.
func (s *Selection) Release(deadline time.Time) {
	if s.state == SelectionIdle {
		return
	}
	s.state = SelectionReleasing
	s.deadline = deadline
}

// Expire moves a releasing selection to idle once now reaches the deadline.
// It reports whether the transition happened.
func (s *Selection) Expire(now time.Time) bool {
	if s.state != SelectionReleasing || now.Before(s.deadline) {
		return false
	}
	s.Clear()
	return true
}

func (s *Selection) Clear() {
	*s = Selection{}
}

// Active returns the selected interval id, if any.
func (s Selection) Active() (ID, bool) {
	if s.state == SelectionIdle {
		return 0, false
	}
	return s.id, true
}

func (s Selection) State() SelectionState {
	return s.state
}

func (s Selection) Deadline() time.Time {
	return s.deadline
}
