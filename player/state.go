package player

import "fmt"

// State of a playback session. A session only ever moves forward through
// the states.
type State int

// List of valid State values.
const (
	Loading State = iota
	Ready
	Playing
	Fading
	Stopped
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Playing:
		return "playing"
	case Fading:
		return "fading"
	case Stopped:
		return "stopped"
	}
	return fmt.Sprintf("unknown state (%d)", int(s))
}
