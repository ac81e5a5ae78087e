// Package navigation implements keyboard driven focus movement over a batch. The focus
// walks nested contexts (classes, then the documents of a class, then the pages of a
// document) or the flat list of all pages, and selection keys act on the selection state
// of the matching view.
package navigation

import (
	"github.com/a3tai/mcp-idp-review/internal/selection"
	"github.com/a3tai/mcp-idp-review/internal/workspace"
)

// Context is the level the focus currently moves on
type Context int

const (
	ContextClasses Context = iota
	ContextDocuments
	ContextPages
	ContextAllPages

	contextCount
)

func (c Context) String() string {
	switch c {
	case ContextClasses:
		return "classes"
	case ContextDocuments:
		return "documents"
	case ContextPages:
		return "pages"
	case ContextAllPages:
		return "all-pages"
	default:
		return "unknown"
	}
}

// MarshalText encodes the context by name
func (c Context) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// Focus is the focused element on every level. Only the entry for the current context
// and the ones above it are meaningful.
type Focus struct {
	Context    Context `json:"context"`
	ClassID    string  `json:"class_id,omitempty"`
	DocumentID string  `json:"document_id,omitempty"`
	PageID     string  `json:"page_id,omitempty"`
}

// ID returns the focused id on the current context, or "" when the context is empty
func (f Focus) ID() string {
	switch f.Context {
	case ContextClasses:
		return f.ClassID
	case ContextDocuments:
		return f.DocumentID
	default:
		return f.PageID
	}
}

// Selections are the selection states the navigator acts on
type Selections struct {
	Documents *selection.State
	Pages     *selection.State
}

// Navigator holds the focus. It does not own the batch; callers pass the current one
// on every call so that undo and structural edits are picked up.
type Navigator struct {
	focus Focus
	index [contextCount]int
}

// New creates a navigator focused on the first class
func New(b *workspace.Batch) *Navigator {
	n := &Navigator{focus: Focus{Context: ContextClasses}}
	n.Sync(b)
	return n
}

// Focus returns the current focus
func (n *Navigator) Focus() Focus {
	return n.focus
}

func items(b *workspace.Batch, ctx Context, f Focus) []selection.Item {
	switch ctx {
	case ContextClasses:
		out := make([]selection.Item, len(b.Classes))
		for i, c := range b.Classes {
			out[i] = selection.Item{ID: c.ID}
		}
		return out
	case ContextDocuments:
		class, err := b.Class(f.ClassID)
		if err != nil {
			return nil
		}
		out := make([]selection.Item, len(class.Documents))
		for i, d := range class.Documents {
			out[i] = selection.Item{ID: d.ID, GroupID: class.ID}
		}
		return out
	case ContextPages:
		doc, err := b.Document(f.DocumentID)
		if err != nil {
			return nil
		}
		out := make([]selection.Item, len(doc.Pages))
		for i, p := range doc.Pages {
			out[i] = selection.Item{ID: p.ID, GroupID: doc.ID}
		}
		return out
	case ContextAllPages:
		return b.Flatten(workspace.ViewPages)
	}
	return nil
}

func indexOf(items []selection.Item, id string) int {
	for i, item := range items {
		if item.ID == id {
			return i
		}
	}
	return -1
}

// pick returns the id at index i, clamped into items
func pick(items []selection.Item, i int) string {
	if len(items) == 0 {
		return ""
	}
	return items[max(0, min(i, len(items)-1))].ID
}

// Sync re-resolves the focus against a changed batch. Elements that still exist keep the
// focus, following moves into other documents or classes. Removed elements hand the
// focus to the element now at their last known position.
func (n *Navigator) Sync(b *workspace.Batch) {
	f := n.focus

	pageOK := false
	if f.Context >= ContextPages && f.PageID != "" {
		if _, doc, err := b.Page(f.PageID); err == nil {
			f.DocumentID = doc.ID
			pageOK = true
		}
	}
	if !pageOK && f.Context == ContextAllPages {
		f.PageID = pick(items(b, ContextAllPages, f), n.index[ContextAllPages])
		if _, doc, err := b.Page(f.PageID); err == nil {
			f.DocumentID = doc.ID
			pageOK = true
		}
	}

	docOK := false
	if f.Context >= ContextDocuments && f.DocumentID != "" {
		if class, err := b.DocumentClass(f.DocumentID); err == nil {
			f.ClassID = class.ID
			docOK = true
		}
	}
	if b.ClassIndex(f.ClassID) < 0 {
		f.ClassID = pick(items(b, ContextClasses, f), n.index[ContextClasses])
	}
	if f.Context >= ContextDocuments && !docOK {
		f.DocumentID = pick(items(b, ContextDocuments, f), n.index[ContextDocuments])
	}
	if f.Context == ContextPages && !pageOK {
		f.PageID = pick(items(b, ContextPages, f), n.index[ContextPages])
	}

	if f.Context == ContextPages && f.DocumentID == "" {
		f.Context = ContextDocuments
	}

	n.focus = f
	n.remember(b)
}

func (n *Navigator) remember(b *workspace.Batch) {
	ids := [contextCount]string{n.focus.ClassID, n.focus.DocumentID, n.focus.PageID, n.focus.PageID}
	for ctx := ContextClasses; ctx < contextCount; ctx++ {
		if i := indexOf(items(b, ctx, n.focus), ids[ctx]); i >= 0 {
			n.index[ctx] = i
		}
	}
}

// setCurrent focuses id on the current context
func (n *Navigator) setCurrent(b *workspace.Batch, id string) {
	switch n.focus.Context {
	case ContextClasses:
		n.focus.ClassID = id
	case ContextDocuments:
		n.focus.DocumentID = id
	case ContextPages:
		n.focus.PageID = id
	case ContextAllPages:
		n.focus.PageID = id
		if _, doc, err := b.Page(id); err == nil {
			n.focus.DocumentID = doc.ID
			if class, err := b.DocumentClass(doc.ID); err == nil {
				n.focus.ClassID = class.ID
			}
		}
	}
	n.remember(b)
}

func (n *Navigator) moveTo(b *workspace.Batch, index func(current, last int) int) {
	list := items(b, n.focus.Context, n.focus)
	if len(list) == 0 {
		return
	}
	current := indexOf(list, n.focus.ID())
	n.setCurrent(b, pick(list, index(current, len(list)-1)))
}

// descend enters the focused element unless it is empty
func (n *Navigator) descend(b *workspace.Batch) {
	switch n.focus.Context {
	case ContextClasses:
		docs := items(b, ContextDocuments, n.focus)
		if len(docs) == 0 {
			return
		}
		if indexOf(docs, n.focus.DocumentID) < 0 {
			n.focus.DocumentID = docs[0].ID
		}
		n.focus.Context = ContextDocuments
	case ContextDocuments:
		pages := items(b, ContextPages, n.focus)
		if len(pages) == 0 {
			return
		}
		if indexOf(pages, n.focus.PageID) < 0 {
			n.focus.PageID = pages[0].ID
		}
		n.focus.Context = ContextPages
	}
	n.remember(b)
}

func (n *Navigator) ascend(b *workspace.Batch) {
	switch n.focus.Context {
	case ContextDocuments:
		n.focus.Context = ContextClasses
	case ContextPages, ContextAllPages:
		n.focus.Context = ContextDocuments
	}
	n.remember(b)
}

// switchView toggles between the nested contexts and the flat list of all pages,
// keeping the focused page where there is one
func (n *Navigator) switchView(b *workspace.Batch) {
	if n.focus.Context == ContextAllPages {
		n.focus.Context = ContextPages
		n.Sync(b)
		return
	}

	if n.focus.Context == ContextClasses {
		docs := items(b, ContextDocuments, n.focus)
		if indexOf(docs, n.focus.DocumentID) < 0 {
			n.focus.DocumentID = pick(docs, 0)
		}
	}
	pages := items(b, ContextPages, n.focus)
	if indexOf(pages, n.focus.PageID) < 0 {
		n.focus.PageID = pick(pages, 0)
	}
	n.focus.Context = ContextAllPages
	if n.focus.PageID == "" {
		n.focus.PageID = pick(items(b, ContextAllPages, n.focus), 0)
	}
	n.setCurrent(b, n.focus.PageID)
}

// state returns the selection state and flattened view the current context selects in
func (n *Navigator) state(b *workspace.Batch, sel Selections) (*selection.State, []selection.Item) {
	switch n.focus.Context {
	case ContextDocuments:
		return sel.Documents, b.Flatten(workspace.ViewDocuments)
	case ContextPages, ContextAllPages:
		return sel.Pages, b.Flatten(workspace.ViewPages)
	}
	return nil, nil
}

// extend moves the focus by delta and selects the range from the anchor to the new focus.
// Without a usable anchor the element focused before the move becomes the anchor.
func (n *Navigator) extend(b *workspace.Batch, sel Selections, delta int) bool {
	state, flat := n.state(b, sel)
	from := n.focus.ID()
	if state == nil || from == "" {
		return false
	}
	if !state.HasAnchor(flat) {
		state.SetAnchor(from)
	}
	n.moveTo(b, func(current, last int) int { return current + delta })
	return state.SelectRange(flat, n.focus.ID(), false)
}

// toggleAll group-toggles every element of the focused container
func (n *Navigator) toggleAll(b *workspace.Batch, sel Selections) {
	switch n.focus.Context {
	case ContextClasses:
		sel.Documents.Toggle(ids(b.Flatten(workspace.ViewDocuments)), selection.ModeGroup)
	case ContextDocuments:
		sel.Documents.Toggle(ids(items(b, ContextDocuments, n.focus)), selection.ModeGroup)
	case ContextPages:
		sel.Pages.Toggle(ids(items(b, ContextPages, n.focus)), selection.ModeGroup)
	case ContextAllPages:
		sel.Pages.Toggle(ids(items(b, ContextAllPages, n.focus)), selection.ModeGroup)
	}
}

func ids(list []selection.Item) []string {
	out := make([]string, len(list))
	for i, item := range list {
		out[i] = item.ID
	}
	return out
}

// Press applies a key and returns the new focus and whether a selection changed
func (n *Navigator) Press(b *workspace.Batch, sel Selections, key Key) (Focus, bool) {
	n.Sync(b)

	beforeDocs := sel.Documents.Selected()
	beforePages := sel.Pages.Selected()

	switch key {
	case KeyUp:
		n.moveTo(b, func(current, last int) int { return current - 1 })
	case KeyDown:
		n.moveTo(b, func(current, last int) int { return current + 1 })
	case KeyHome:
		n.moveTo(b, func(current, last int) int { return 0 })
	case KeyEnd:
		n.moveTo(b, func(current, last int) int { return last })
	case KeyRight:
		n.descend(b)
	case KeyLeft:
		n.ascend(b)
	case KeyTab:
		n.switchView(b)
	case KeyShiftUp:
		n.extend(b, sel, -1)
	case KeyShiftDown:
		n.extend(b, sel, 1)
	case KeySpace:
		if n.focus.Context == ContextClasses {
			sel.Documents.Toggle(ids(items(b, ContextDocuments, n.focus)), selection.ModeGroup)
			break
		}
		if state, _ := n.state(b, sel); state != nil && n.focus.ID() != "" {
			state.Toggle([]string{n.focus.ID()}, selection.ModeSingle)
		}
	case KeySelectAll:
		n.toggleAll(b, sel)
	}

	changed := !beforeDocs.Equal(sel.Documents.Selected()) || !beforePages.Equal(sel.Pages.Selected())
	return n.focus, changed
}
