package editor

import (
	"errors"

	"github.com/mgpai22/cuemark/internal/player"
	"github.com/mgpai22/cuemark/internal/timeline"
)

// Advisory is a user-facing message for a rejected action. The state it
// was raised against is unchanged.
type Advisory struct {
	Message string
	Err     error
}

func (a Advisory) String() string {
	return a.Message
}

func advisoryFor(err error) Advisory {
	var terr *timeline.Error
	switch {
	case errors.As(err, &terr):
		return Advisory{Message: terr.Message, Err: err}
	case errors.Is(err, player.ErrInvalidVideoURL):
		return Advisory{Message: "please enter a valid YouTube URL or local media file", Err: err}
	default:
		return Advisory{Message: err.Error(), Err: err}
	}
}
