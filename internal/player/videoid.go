package player

import (
	"errors"
	"regexp"
	"strings"
)

var ErrInvalidVideoURL = errors.New("invalid video URL")

var videoIDRegex = regexp.MustCompile(`^.*(youtu\.be/|v/|u/\w/|embed/|watch\?v=|&v=)([^#&?]*).*`)

// ExtractVideoID pulls the 11 character video id out of the common watch,
// short-link and embed URL shapes.
func ExtractVideoID(url string) (string, bool) {
	match := videoIDRegex.FindStringSubmatch(strings.TrimSpace(url))
	if match == nil || len(match[2]) != 11 {
		return "", false
	}
	return match[2], true
}
