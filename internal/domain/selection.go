package domain

import (
	"sort"
	"strings"
)

// SelectionState is the tri-state of one option id within a SelectionSet.
type SelectionState int

// Selection states.
const (
	SelectionNeutral SelectionState = iota
	SelectionIncluded
	SelectionExcluded
)

// String returns the string representation of the selection state.
func (s SelectionState) String() string {
	switch s {
	case SelectionIncluded:
		return "included"
	case SelectionExcluded:
		return "excluded"
	default:
		return "neutral"
	}
}

// SelectionSet holds the include/exclude/neutral selection for a finite
// option universe (e.g. genre ids). The two active sets are always disjoint;
// an id present in neither is neutral.
type SelectionSet struct {
	included map[string]struct{}
	excluded map[string]struct{}
}

// NewSelectionSet creates an empty selection set.
func NewSelectionSet() *SelectionSet {
	return &SelectionSet{
		included: make(map[string]struct{}),
		excluded: make(map[string]struct{}),
	}
}

// State returns the current tri-state of an option id.
func (s *SelectionSet) State(id string) SelectionState {
	if _, ok := s.included[id]; ok {
		return SelectionIncluded
	}
	if _, ok := s.excluded[id]; ok {
		return SelectionExcluded
	}
	return SelectionNeutral
}

// Include adds the id to the included set, removing it from excluded if
// present. Idempotent.
func (s *SelectionSet) Include(id string) {
	delete(s.excluded, id)
	s.included[id] = struct{}{}
}

// Exclude adds the id to the excluded set, removing it from included if
// present. Idempotent.
func (s *SelectionSet) Exclude(id string) {
	delete(s.included, id)
	s.excluded[id] = struct{}{}
}

// Clear returns the id to neutral.
func (s *SelectionSet) Clear(id string) {
	delete(s.included, id)
	delete(s.excluded, id)
}

// ToggleInclude flips an id between included and neutral. Used by UIs where
// tap means "toggle include" and hold means "force exclude".
func (s *SelectionSet) ToggleInclude(id string) {
	if _, ok := s.included[id]; ok {
		delete(s.included, id)
		return
	}
	s.Include(id)
}

// Advance cycles the id neutral -> included -> excluded -> neutral. Used by
// pure tap-driven UIs with no hold gesture.
func (s *SelectionSet) Advance(id string) {
	switch s.State(id) {
	case SelectionNeutral:
		s.Include(id)
	case SelectionIncluded:
		s.Exclude(id)
	case SelectionExcluded:
		s.Clear(id)
	}
}

// Reset empties both sets. Called when the content type changes, since
// option universes differ per content type.
func (s *SelectionSet) Reset() {
	clear(s.included)
	clear(s.excluded)
}

// Included returns the included ids in sorted order.
func (s *SelectionSet) Included() []string {
	return sortedKeys(s.included)
}

// Excluded returns the excluded ids in sorted order.
func (s *SelectionSet) Excluded() []string {
	return sortedKeys(s.excluded)
}

// Encode projects the selection to its persisted form: included ids first,
// then excluded ids prefixed with "-", comma-joined. Empty selection is "".
func (s *SelectionSet) Encode() string {
	parts := s.Included()
	for _, id := range s.Excluded() {
		parts = append(parts, "-"+id)
	}
	return strings.Join(parts, ",")
}

// ParseSelection rebuilds a selection set from its persisted form.
func ParseSelection(raw string) *SelectionSet {
	s := NewSelectionSet()
	if raw == "" {
		return s
	}
	for _, p := range strings.Split(raw, ",") {
		p = strings.TrimSpace(p)
		switch {
		case p == "" || p == "-":
			continue
		case strings.HasPrefix(p, "-"):
			s.Exclude(p[1:])
		default:
			s.Include(p)
		}
	}
	return s
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for id := range m {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
