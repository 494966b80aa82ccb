package domain

import (
	"regexp"
	"strings"
)

// RefItem is one entry of the editable form of a reference-type filter
// value. Label starts out as a placeholder (the identifier itself) and is
// upgraded by resolution; only the ID is ever persisted.
type RefItem struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

var bareNumericID = regexp.MustCompile(`^[0-9]+$`)

// BareNumericID reports whether s is a plain decimal identifier, the only
// form allowed inside persisted reference filter values.
func BareNumericID(s string) bool {
	return bareNumericID.MatchString(s)
}

// Placeholder reports whether the item's label still signals "not yet
// resolved": missing, equal to its own id, or a bare numeric identifier.
func (r RefItem) Placeholder() bool {
	if r.Label == "" || r.Label == r.ID {
		return true
	}
	return bareNumericID.MatchString(r.Label)
}

// ParseRefList builds the editable sequence from a persisted filter value.
// Each identifier becomes an item whose label defaults to the identifier.
func ParseRefList(key FilterKey, raw string) []RefItem {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, key.Delimiter())
	items := make([]RefItem, 0, len(parts))
	for _, p := range parts {
		id := strings.TrimSpace(p)
		if id == "" {
			continue
		}
		items = append(items, RefItem{ID: id, Label: id})
	}
	return items
}

// JoinRefIDs projects the editable sequence back to the persisted form by
// joining the ids with the key's delimiter. Labels never survive this.
func JoinRefIDs(key FilterKey, items []RefItem) string {
	if len(items) == 0 {
		return ""
	}
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}
	return strings.Join(ids, key.Delimiter())
}

// RefSignature is the identity of a reference sequence for stale-result
// detection: two sequences with the same ids in the same order are the same
// resolution input regardless of label state.
func RefSignature(items []RefItem) string {
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}
	return strings.Join(ids, ",")
}

// AnyPlaceholder reports whether at least one item still needs resolution.
func AnyPlaceholder(items []RefItem) bool {
	for _, it := range items {
		if it.Placeholder() {
			return true
		}
	}
	return false
}
