// Package history keeps an undo/redo trail of workspace snapshots.
//
// Two modes are supported. In linear mode recording after an undo discards everything
// that could have been redone. In branching mode nothing is discarded: recording after
// an undo starts a new branch and redo follows the active branch of the current node.
//
// A History is not safe for concurrent use.
package history

import (
	"fmt"
	"strings"
)

// Mode selects how recording after an undo treats the redo trail
type Mode int

const (
	Linear Mode = iota
	Branching
)

// String returns the configuration name of the mode
func (m Mode) String() string {
	if m == Branching {
		return "branching"
	}
	return "linear"
}

// ParseMode converts a configuration name into a Mode
func ParseMode(name string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "linear":
		return Linear, nil
	case "branching", "tree":
		return Branching, nil
	default:
		return Linear, fmt.Errorf("unknown history mode: %s (must be linear or branching)", name)
	}
}

type node[T any] struct {
	label    string
	state    T
	parent   *node[T]
	children []*node[T]
	active   int
}

// Entry describes one recorded action along the active path
type Entry struct {
	Label   string `json:"label"`
	Current bool   `json:"current"`
	Undone  bool   `json:"undone"`
}

// Branch describes an alternative redo target of the current node
type Branch struct {
	Index  int    `json:"index"`
	Label  string `json:"label"`
	Active bool   `json:"active"`
}

// History holds snapshots of T. States handed in and out are copied with clone so the
// caller may keep mutating its own value.
type History[T any] struct {
	mode    Mode
	limit   int
	clone   func(T) T
	root    *node[T]
	current *node[T]
}

// New creates a history whose initial state is initial. A limit of zero or less keeps
// every entry.
func New[T any](mode Mode, limit int, initial T, clone func(T) T) *History[T] {
	root := &node[T]{label: "initial", state: clone(initial)}
	return &History[T]{
		mode:    mode,
		limit:   limit,
		clone:   clone,
		root:    root,
		current: root,
	}
}

// Mode returns the history mode
func (h *History[T]) Mode() Mode {
	return h.mode
}

// Record stores state as the result of the action named label
func (h *History[T]) Record(label string, state T) {
	n := &node[T]{label: label, state: h.clone(state), parent: h.current}

	if h.mode == Linear {
		h.current.children = []*node[T]{n}
		h.current.active = 0
	} else {
		h.current.children = append(h.current.children, n)
		h.current.active = len(h.current.children) - 1
	}
	h.current = n

	h.trim()
}

// trim re-roots the tree so at most limit undo steps remain
func (h *History[T]) trim() {
	if h.limit <= 0 {
		return
	}
	for h.depth() > h.limit {
		next := h.current
		for next.parent != h.root {
			next = next.parent
		}
		next.parent = nil
		h.root = next
	}
}

func (h *History[T]) depth() int {
	d := 0
	for n := h.current; n.parent != nil; n = n.parent {
		d++
	}
	return d
}

// CanUndo reports whether Undo would move
func (h *History[T]) CanUndo() bool {
	return h.current.parent != nil
}

// CanRedo reports whether Redo would move
func (h *History[T]) CanRedo() bool {
	return len(h.current.children) > 0
}

// Undo steps back one action and returns the state before it
func (h *History[T]) Undo() (T, bool) {
	if !h.CanUndo() {
		var zero T
		return zero, false
	}
	h.current = h.current.parent
	return h.clone(h.current.state), true
}

// Redo re-applies the action on the active branch and returns the resulting state
func (h *History[T]) Redo() (T, bool) {
	if !h.CanRedo() {
		var zero T
		return zero, false
	}
	h.current = h.current.children[h.current.active]
	return h.clone(h.current.state), true
}

// Current returns a copy of the present state
func (h *History[T]) Current() T {
	return h.clone(h.current.state)
}

// Branches lists the redo alternatives of the current node
func (h *History[T]) Branches() []Branch {
	out := make([]Branch, len(h.current.children))
	for i, child := range h.current.children {
		out[i] = Branch{Index: i, Label: child.label, Active: i == h.current.active}
	}
	return out
}

// SwitchBranch selects which child the next Redo follows
func (h *History[T]) SwitchBranch(index int) error {
	if index < 0 || index >= len(h.current.children) {
		return fmt.Errorf("branch %d out of range (have %d)", index, len(h.current.children))
	}
	h.current.active = index
	return nil
}

// Entries returns the recorded actions from the oldest retained one through the
// current one, followed by the actions Redo would re-apply along active branches.
func (h *History[T]) Entries() []Entry {
	var past []Entry
	for n := h.current; n.parent != nil; n = n.parent {
		past = append(past, Entry{Label: n.label, Current: n == h.current})
	}
	for i, j := 0, len(past)-1; i < j; i, j = i+1, j-1 {
		past[i], past[j] = past[j], past[i]
	}

	for n := h.current; len(n.children) > 0; {
		n = n.children[n.active]
		past = append(past, Entry{Label: n.label, Undone: true})
	}
	return past
}

// Reset drops all entries and starts over from state
func (h *History[T]) Reset(state T) {
	h.root = &node[T]{label: "initial", state: h.clone(state)}
	h.current = h.root
}
