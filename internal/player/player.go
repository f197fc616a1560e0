// Package player describes the playback capability the editor drives and
// provides an in-process clock implementation of it.
package player

import "fmt"

// State mirrors the embedded player's state codes.
type State int

const (
	StateUnstarted State = iota - 1
	StateEnded
	StatePlaying
	StatePaused
	StateBuffering
	StateCued State = 5
)

func (s State) String() string {
	switch s {
	case StateUnstarted:
		return "unstarted"
	case StateEnded:
		return "ended"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	case StateBuffering:
		return "buffering"
	case StateCued:
		return "cued"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Player is the playback surface the editor reads times from. Times are in
// seconds; Duration returns 0 while unknown.
type Player interface {
	CurrentTime() float64
	Duration() float64
	SeekTo(t float64, allowSeekAhead bool)
	Play()
	Pause()
	State() State
	LoadVideoByID(id string) error
	Destroy()
}
