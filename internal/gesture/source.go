package gesture

// Modality is one of the raw input capability sets a platform can offer.
type Modality int

const (
	// ModalityPointer covers unified pointer events.
	ModalityPointer Modality = iota
	// ModalityTouch covers touch start/move/end/cancel events.
	ModalityTouch
	// ModalityMouse covers mouse down/move/up events.
	ModalityMouse
)

// String returns the string representation of the modality.
func (m Modality) String() string {
	switch m {
	case ModalityPointer:
		return "pointer"
	case ModalityTouch:
		return "touch"
	case ModalityMouse:
		return "mouse"
	default:
		return "unknown"
	}
}

// ParseModality maps a modality name back to its value.
func ParseModality(s string) (Modality, bool) {
	switch s {
	case "pointer":
		return ModalityPointer, true
	case "touch":
		return ModalityTouch, true
	case "mouse":
		return ModalityMouse, true
	}
	return 0, false
}

// Capabilities describes what the platform delivers.
type Capabilities struct {
	Pointer bool
	Touch   bool
	Mouse   bool

	// UnreliablePointerCancel marks platforms whose pointer streams lose
	// cancel events mid-press. Those fall back to touch+mouse even when
	// pointer events are available.
	UnreliablePointerCancel bool
}

// SelectModalities picks which capability sets to attach for an item.
// Pointer wins when it is trustworthy; otherwise whichever of touch and
// mouse exist are used together. The unselected sets are never attached.
func SelectModalities(caps Capabilities) []Modality {
	if caps.Pointer && !caps.UnreliablePointerCancel {
		return []Modality{ModalityPointer}
	}
	var out []Modality
	if caps.Touch {
		out = append(out, ModalityTouch)
	}
	if caps.Mouse {
		out = append(out, ModalityMouse)
	}
	return out
}

// PressSink receives normalized press events. Classifier implements it.
type PressSink interface {
	PressStart(itemID string, x, y float64)
	PressMove(itemID string, x, y float64)
	PressEnd(itemID string)
	PressCancel(itemID string)
}

// PressSource adapts one raw input modality onto a PressSink. The classifier
// depends only on PressSink; sources exist so the presentation layer wires
// exactly one capability set per item.
type PressSource interface {
	Modality() Modality
}

// Attach builds the sources for the selected modalities, all feeding sink.
func Attach(caps Capabilities, sink PressSink) []PressSource {
	var sources []PressSource
	for _, m := range SelectModalities(caps) {
		switch m {
		case ModalityPointer:
			sources = append(sources, &PointerSource{sink: sink})
		case ModalityTouch:
			sources = append(sources, &TouchSource{sink: sink})
		case ModalityMouse:
			sources = append(sources, &MouseSource{sink: sink})
		}
	}
	return sources
}

// PointerSource forwards unified pointer events.
type PointerSource struct {
	sink PressSink
}

// Modality implements PressSource.
func (s *PointerSource) Modality() Modality { return ModalityPointer }

// Down forwards a pointerdown.
func (s *PointerSource) Down(itemID string, x, y float64) { s.sink.PressStart(itemID, x, y) }

// Move forwards a pointermove.
func (s *PointerSource) Move(itemID string, x, y float64) { s.sink.PressMove(itemID, x, y) }

// Up forwards a pointerup.
func (s *PointerSource) Up(itemID string) { s.sink.PressEnd(itemID) }

// Cancel forwards a pointercancel.
func (s *PointerSource) Cancel(itemID string) { s.sink.PressCancel(itemID) }

// TouchSource forwards touch events.
type TouchSource struct {
	sink PressSink
}

// Modality implements PressSource.
func (s *TouchSource) Modality() Modality { return ModalityTouch }

// Start forwards a touchstart.
func (s *TouchSource) Start(itemID string, x, y float64) { s.sink.PressStart(itemID, x, y) }

// Move forwards a touchmove.
func (s *TouchSource) Move(itemID string, x, y float64) { s.sink.PressMove(itemID, x, y) }

// End forwards a touchend.
func (s *TouchSource) End(itemID string) { s.sink.PressEnd(itemID) }

// Cancel forwards a touchcancel.
func (s *TouchSource) Cancel(itemID string) { s.sink.PressCancel(itemID) }

// MouseSource forwards mouse events. Mouse streams have no cancel; a press
// that leaves the item is ended by the presentation layer via Up.
type MouseSource struct {
	sink PressSink
}

// Modality implements PressSource.
func (s *MouseSource) Modality() Modality { return ModalityMouse }

// Down forwards a mousedown.
func (s *MouseSource) Down(itemID string, x, y float64) { s.sink.PressStart(itemID, x, y) }

// Move forwards a mousemove while pressed.
func (s *MouseSource) Move(itemID string, x, y float64) { s.sink.PressMove(itemID, x, y) }

// Up forwards a mouseup.
func (s *MouseSource) Up(itemID string) { s.sink.PressEnd(itemID) }
