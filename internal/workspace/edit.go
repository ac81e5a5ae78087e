package workspace

import (
	"fmt"

	reviewerrors "github.com/a3tai/mcp-idp-review/internal/errors"
	"github.com/a3tai/mcp-idp-review/internal/selection"
)

// orderedIDs validates ids against a view and returns them in display order
func (b *Batch) orderedIDs(view View, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return nil, reviewerrors.Newf(reviewerrors.ErrorTypeInvalidArgument, "no %s given", view)
	}
	flat := b.Flatten(view)
	present := selection.NewSet()
	for _, item := range flat {
		present.Add(item.ID)
	}
	for _, id := range ids {
		if !present.Has(id) {
			kind := "page"
			if view == ViewDocuments {
				kind = "document"
			}
			return nil, reviewerrors.Newf(reviewerrors.ErrorTypeNotFound, "%s not found: %s", kind, id)
		}
	}
	return selection.NewSet(ids...).Ordered(flat), nil
}

// seedFields returns the fields a document carries in a class with the given
// definitions, keeping the values of fields that already exist by name. Without
// definitions the fields are kept unchanged.
func seedFields(defs []FieldDef, existing []Field) []Field {
	if len(defs) == 0 {
		return existing
	}
	byName := make(map[string]Field, len(existing))
	for _, f := range existing {
		byName[f.Name] = f
	}
	fields := make([]Field, 0, len(defs))
	for _, def := range defs {
		if f, ok := byName[def.Name]; ok {
			fields = append(fields, f)
			continue
		}
		fields = append(fields, Field{Name: def.Name})
	}
	return fields
}

// removeDocuments takes the documents out of their classes and returns them in the
// order given
func (b *Batch) removeDocuments(ids []string) []Document {
	byID := make(map[string]Document, len(ids))
	wanted := selection.NewSet(ids...)
	for ci := range b.Classes {
		kept := b.Classes[ci].Documents[:0]
		for _, d := range b.Classes[ci].Documents {
			if wanted.Has(d.ID) {
				byID[d.ID] = d
				continue
			}
			kept = append(kept, d)
		}
		b.Classes[ci].Documents = kept
	}
	out := make([]Document, 0, len(ids))
	for _, id := range ids {
		if d, ok := byID[id]; ok {
			out = append(out, d)
		}
	}
	return out
}

// MoveDocuments reclassifies documents into a class. Their fields are re-seeded from
// the field definitions of the target class.
func (b *Batch) MoveDocuments(ids []string, classID string) error {
	target := b.ClassIndex(classID)
	if target < 0 {
		return reviewerrors.Newf(reviewerrors.ErrorTypeNotFound, "class not found: %s", classID)
	}
	ordered, err := b.orderedIDs(ViewDocuments, ids)
	if err != nil {
		return err
	}

	moved := b.removeDocuments(ordered)
	defs := b.Classes[target].Fields
	for i := range moved {
		moved[i].Fields = seedFields(defs, moved[i].Fields)
		moved[i].SuggestedClass = ""
	}
	b.Classes[target].Documents = append(b.Classes[target].Documents, moved...)
	return nil
}

// MovePages moves pages, in display order, to the end of a document. Documents left
// without pages are removed.
func (b *Batch) MovePages(ids []string, documentID string) error {
	if _, _, ok := b.locateDocument(documentID); !ok {
		return reviewerrors.Newf(reviewerrors.ErrorTypeNotFound, "document not found: %s", documentID)
	}
	ordered, err := b.orderedIDs(ViewPages, ids)
	if err != nil {
		return err
	}

	wanted := selection.NewSet(ordered...)
	byID := make(map[string]Page, len(ordered))
	for ci := range b.Classes {
		for di := range b.Classes[ci].Documents {
			doc := &b.Classes[ci].Documents[di]
			kept := doc.Pages[:0]
			for _, p := range doc.Pages {
				if wanted.Has(p.ID) {
					byID[p.ID] = p
					continue
				}
				kept = append(kept, p)
			}
			doc.Pages = kept
		}
	}

	ci, di, _ := b.locateDocument(documentID)
	doc := &b.Classes[ci].Documents[di]
	for _, id := range ordered {
		doc.Pages = append(doc.Pages, byID[id])
	}

	b.dropEmptyDocuments()
	return nil
}

func (b *Batch) dropEmptyDocuments() {
	for ci := range b.Classes {
		kept := b.Classes[ci].Documents[:0]
		for _, d := range b.Classes[ci].Documents {
			if len(d.Pages) > 0 {
				kept = append(kept, d)
			}
		}
		b.Classes[ci].Documents = kept
	}
}

// SplitDocument moves the given page and every page after it into a new document placed
// right after the original one. It returns the id of the new document.
func (b *Batch) SplitDocument(pageID string) (string, error) {
	ci, di, pi, ok := b.locatePage(pageID)
	if !ok {
		return "", reviewerrors.Newf(reviewerrors.ErrorTypeNotFound, "page not found: %s", pageID)
	}
	if pi == 0 {
		return "", reviewerrors.Newf(reviewerrors.ErrorTypeInvalidArgument,
			"cannot split at the first page of a document: %s", pageID)
	}

	class := &b.Classes[ci]
	orig := &class.Documents[di]

	tail := append([]Page(nil), orig.Pages[pi:]...)
	orig.Pages = orig.Pages[:pi:pi]

	split := Document{
		ID:     newID(),
		Name:   fmt.Sprintf("%s (from page %d)", orig.Name, pi+1),
		Pages:  tail,
		Fields: seedFields(class.Fields, nil),
	}

	docs := make([]Document, 0, len(class.Documents)+1)
	docs = append(docs, class.Documents[:di+1]...)
	docs = append(docs, split)
	docs = append(docs, class.Documents[di+1:]...)
	class.Documents = docs
	return split.ID, nil
}

// MergeDocuments appends the pages of all given documents to the first one in display
// order and removes the others. Empty field values of the merged document are filled
// from the documents merged into it.
func (b *Batch) MergeDocuments(ids []string) (string, error) {
	ordered, err := b.orderedIDs(ViewDocuments, ids)
	if err != nil {
		return "", err
	}
	if len(ordered) < 2 {
		return "", reviewerrors.New(reviewerrors.ErrorTypeInvalidArgument, "merging needs at least two documents")
	}

	others := b.removeDocuments(ordered[1:])
	target, err := b.Document(ordered[0])
	if err != nil {
		return "", err
	}
	for _, other := range others {
		target.Pages = append(target.Pages, other.Pages...)
		for i := range target.Fields {
			if target.Fields[i].Value != "" {
				continue
			}
			for _, f := range other.Fields {
				if f.Name == target.Fields[i].Name && f.Value != "" {
					target.Fields[i] = f
					break
				}
			}
		}
	}
	return target.ID, nil
}

// RotatePages rotates pages clockwise by degrees, which must be a multiple of 90
func (b *Batch) RotatePages(ids []string, degrees int) error {
	if degrees%90 != 0 {
		return reviewerrors.Newf(reviewerrors.ErrorTypeInvalidArgument,
			"rotation must be a multiple of 90 degrees, got %d", degrees)
	}
	ordered, err := b.orderedIDs(ViewPages, ids)
	if err != nil {
		return err
	}
	for _, id := range ordered {
		page, _, err := b.Page(id)
		if err != nil {
			return err
		}
		page.Rotation = ((page.Rotation+degrees)%360 + 360) % 360
	}
	return nil
}

// RejectDocuments marks documents as rejected or takes the mark away
func (b *Batch) RejectDocuments(ids []string, rejected bool) error {
	ordered, err := b.orderedIDs(ViewDocuments, ids)
	if err != nil {
		return err
	}
	for _, id := range ordered {
		doc, err := b.Document(id)
		if err != nil {
			return err
		}
		doc.Rejected = rejected
	}
	return nil
}

func (b *Batch) field(docID, name string) (*Field, error) {
	doc, err := b.Document(docID)
	if err != nil {
		return nil, err
	}
	for i := range doc.Fields {
		if doc.Fields[i].Name == name {
			return &doc.Fields[i], nil
		}
	}
	return nil, reviewerrors.New(reviewerrors.ErrorTypeNotFound, "field not found").
		WithDocument(docID).WithField(name)
}

// SetField stores a corrected value and marks the field verified
func (b *Batch) SetField(docID, name, value string) error {
	f, err := b.field(docID, name)
	if err != nil {
		return err
	}
	f.Value = value
	f.Confidence = 1
	f.Verified = true
	return nil
}

// VerifyField confirms the extracted value of a field as correct
func (b *Batch) VerifyField(docID, name string) error {
	f, err := b.field(docID, name)
	if err != nil {
		return err
	}
	f.Verified = true
	return nil
}
