package selection

// State tracks the selected ids of one view together with the range anchor.
//
// The anchor is the stable end of a range. An explicit anchor is fixed by the first range
// operation (or SetAnchor) and survives repeated range operations until a non-range
// selection resets it. Without an explicit anchor, the ids of the most recent non-range
// selection act as the implicit anchor.
type State struct {
	selected Set
	anchors  Set
	anchored bool
	last     []string
}

// NewState creates an empty selection state
func NewState() *State {
	return &State{
		selected: make(Set),
		anchors:  make(Set),
	}
}

// Selected returns a copy of the selected ids
func (s *State) Selected() Set {
	return s.selected.Clone()
}

// IsSelected reports whether id is selected
func (s *State) IsSelected(id string) bool {
	return s.selected.Has(id)
}

// Len returns the number of selected ids
func (s *State) Len() int {
	return len(s.selected)
}

// Anchors returns the explicit anchor ids in lexical order
func (s *State) Anchors() []string {
	return s.anchors.Sorted()
}

// HasAnchor reports whether a range operation would have an anchor to start from
// within flat.
func (s *State) HasAnchor(flat []Item) bool {
	return len(s.resolveAnchors(flat)) > 0
}

// Toggle applies a non-range selection and resets the anchor. The toggled ids become
// the implicit anchor for the next range operation.
func (s *State) Toggle(ids []string, mode Mode) {
	s.selected = Toggle(s.selected, ids, mode)
	s.anchors = make(Set)
	s.anchored = false
	s.last = append([]string(nil), ids...)
}

// SetAnchor fixes the explicit anchor without touching the selection
func (s *State) SetAnchor(ids ...string) {
	s.anchors = NewSet(ids...)
	s.anchored = len(ids) > 0
}

// SelectRange selects the contiguous run of flat between the anchor and target.
// The previous selection is replaced unless appendMode is set, in which case the run
// is added to it. It reports whether the selection state changed.
//
// An empty flat clears the selection. A missing anchor or target makes the call a
// no-op.
func (s *State) SelectRange(flat []Item, target string, appendMode bool) bool {
	if len(flat) == 0 {
		changed := len(s.selected) > 0
		s.Clear()
		return changed
	}

	anchors := s.resolveAnchors(flat)
	if len(anchors) == 0 {
		return false
	}

	run := Range(flat, anchors, target)
	if run == nil {
		return false
	}

	s.anchors = NewSet(anchors...)
	s.anchored = true

	var next Set
	if appendMode {
		next = s.selected.Clone()
		next.Add(run...)
	} else {
		next = NewSet(run...)
	}
	changed := !next.Equal(s.selected)
	s.selected = next
	return changed
}

// resolveAnchors returns the explicit anchors present in flat or, when no explicit
// anchor is set, the ids of the most recent non-range selection present in flat.
// An explicit anchor that left flat is not replaced by the implicit one.
func (s *State) resolveAnchors(flat []Item) []string {
	present := make(Set, len(flat))
	for _, item := range flat {
		present.Add(item.ID)
	}

	var candidates []string
	if s.anchored {
		candidates = s.anchors.Sorted()
	} else {
		candidates = s.last
	}

	var out []string
	for _, id := range candidates {
		if present.Has(id) {
			out = append(out, id)
		}
	}
	return out
}

// Prune drops selected ids and anchors that are no longer in flat
func (s *State) Prune(flat []Item) {
	present := make(Set, len(flat))
	for _, item := range flat {
		present.Add(item.ID)
	}
	for id := range s.selected {
		if !present.Has(id) {
			s.selected.Remove(id)
		}
	}
	for id := range s.anchors {
		if !present.Has(id) {
			s.anchors.Remove(id)
		}
	}
	last := s.last[:0]
	for _, id := range s.last {
		if present.Has(id) {
			last = append(last, id)
		}
	}
	s.last = last
}

// Clear empties the selection and forgets the anchor
func (s *State) Clear() {
	s.selected = make(Set)
	s.anchors = make(Set)
	s.anchored = false
	s.last = nil
}

// Clone returns an independent copy of the state
func (s *State) Clone() *State {
	return &State{
		selected: s.selected.Clone(),
		anchors:  s.anchors.Clone(),
		anchored: s.anchored,
		last:     append([]string(nil), s.last...),
	}
}
