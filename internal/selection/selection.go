// Package selection implements multi-selection over items that are grouped for display
// (pages inside documents, documents inside classes).
//
// Items are addressed by their position in the flattened sequence: groups in order, then
// the items of each group in order. Range selection is driven purely by that position, so
// a range may cross group boundaries transparently.
package selection

import (
	"fmt"
	"strings"
)

// Item is a selectable element that belongs to a group
type Item struct {
	ID      string `json:"id"`
	GroupID string `json:"group_id"`
}

// Group is an ordered container of items
type Group struct {
	ID    string `json:"id"`
	Items []Item `json:"items"`
}

// Flatten returns the items of all groups in group order, then intra-group order
func Flatten(groups []Group) []Item {
	total := 0
	for _, g := range groups {
		total += len(g.Items)
	}

	flat := make([]Item, 0, total)
	for _, g := range groups {
		for _, item := range g.Items {
			if item.GroupID == "" {
				item.GroupID = g.ID
			}
			flat = append(flat, item)
		}
	}
	return flat
}

// Mode controls how a non-range selection combines with the current one
type Mode int

const (
	// ModeNone replaces the current selection
	ModeNone Mode = iota
	// ModeSingle adds absent ids and removes present ones
	ModeSingle
	// ModeGroup deselects all ids when every one of them is already selected,
	// otherwise selects all of them
	ModeGroup
)

// String returns the wire name of the mode
func (m Mode) String() string {
	switch m {
	case ModeNone:
		return "none"
	case ModeSingle:
		return "single"
	case ModeGroup:
		return "group"
	default:
		return "unknown"
	}
}

// ParseMode converts a wire name into a Mode. An empty name means ModeNone.
func ParseMode(name string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "none", "replace":
		return ModeNone, nil
	case "single", "toggle":
		return ModeSingle, nil
	case "group":
		return ModeGroup, nil
	default:
		return ModeNone, fmt.Errorf("unknown selection mode: %s (must be one of: none, single, group)", name)
	}
}

// Toggle applies a non-range selection of ids to selected and returns the new set.
// The input set is not modified.
func Toggle(selected Set, ids []string, mode Mode) Set {
	switch mode {
	case ModeSingle:
		next := selected.Clone()
		for _, id := range ids {
			if next.Has(id) {
				next.Remove(id)
			} else {
				next.Add(id)
			}
		}
		return next

	case ModeGroup:
		next := selected.Clone()
		if len(ids) == 0 {
			return next
		}
		all := true
		for _, id := range ids {
			if !selected.Has(id) {
				all = false
				break
			}
		}
		if all {
			next.Remove(ids...)
		} else {
			next.Add(ids...)
		}
		return next

	default:
		return NewSet(ids...)
	}
}

// captureMode is the state of the single pass made by Range
type captureMode int

const (
	captureIdle captureMode = iota
	captureActive
	captureComplete
)

// Range returns the contiguous run of flat spanning every anchor present in flat and
// the target, inclusive, in flattened order. It does not matter whether the anchors
// come before or after the target.
//
// Range returns nil when the target is not in flat or when none of the anchors are.
func Range(flat []Item, anchors []string, target string) []string {
	boundaries := make(Set, len(anchors)+1)
	targetFound := false
	anchorFound := false
	for _, item := range flat {
		if item.ID == target {
			targetFound = true
		}
		for _, a := range anchors {
			if item.ID == a {
				anchorFound = true
				boundaries.Add(a)
			}
		}
	}
	if !targetFound || !anchorFound {
		return nil
	}
	boundaries.Add(target)

	remaining := len(boundaries)
	mode := captureIdle
	var out []string
	for _, item := range flat {
		if mode == captureComplete {
			break
		}
		isBoundary := boundaries.Has(item.ID)
		if mode == captureIdle && !isBoundary {
			continue
		}
		mode = captureActive
		out = append(out, item.ID)
		if isBoundary {
			remaining--
			if remaining == 0 {
				mode = captureComplete
			}
		}
	}
	return out
}
