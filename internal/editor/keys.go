package editor

import "strings"

// Key is a keyboard shortcut the editor reacts to.
type Key int

const (
	KeyUnknown Key = iota
	KeySpace
	KeyLeft
	KeyRight
	KeyTab
	KeyEnter
)

func (k Key) String() string {
	switch k {
	case KeySpace:
		return "space"
	case KeyLeft:
		return "left"
	case KeyRight:
		return "right"
	case KeyTab:
		return "tab"
	case KeyEnter:
		return "enter"
	default:
		return "unknown"
	}
}

// ParseKey maps a key name, as typed in the terminal session, to a Key.
func ParseKey(name string) (Key, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "space", "toggle", " ":
		return KeySpace, true
	case "left", "back":
		return KeyLeft, true
	case "right", "forward":
		return KeyRight, true
	case "tab", "mark":
		return KeyTab, true
	case "enter":
		return KeyEnter, true
	default:
		return KeyUnknown, false
	}
}

// Target is the element that had focus when a key was pressed.
type Target int

const (
	TargetNone Target = iota
	TargetTextInput
	TargetTextArea
	TargetURLField
)

// KeyEvent is a key press. Value carries the URL field contents for
// Enter on TargetURLField.
type KeyEvent struct {
	Key    Key
	Target Target
	Value  string
}

// text entry swallows shortcuts; the URL field only submits
func (ev KeyEvent) suppressed() bool {
	switch ev.Target {
	case TargetTextInput, TargetTextArea:
		return true
	case TargetURLField:
		return ev.Key != KeyEnter
	default:
		return false
	}
}
