// Package gesture converts raw press streams on selectable items into
// tap and hold actions, independent of the input modality the device offers.
package gesture

// Action is the classified outcome of one coherent press.
type Action int

const (
	// ActionTap is a short press released before the hold threshold.
	ActionTap Action = iota
	// ActionHold is a press kept still until the hold threshold elapses.
	ActionHold
)

// String returns the string representation of the action.
func (a Action) String() string {
	switch a {
	case ActionTap:
		return "tap"
	case ActionHold:
		return "hold"
	default:
		return "unknown"
	}
}

// Event is emitted once per coherent press that classifies as tap or hold.
// Presses that turn into drags emit nothing.
type Event struct {
	// Action is the classified gesture.
	Action Action

	// ItemID is the selectable item the press started on.
	ItemID string
}
