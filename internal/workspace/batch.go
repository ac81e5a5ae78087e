package workspace

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	reviewerrors "github.com/a3tai/mcp-idp-review/internal/errors"
	"github.com/a3tai/mcp-idp-review/internal/ocr"
	"github.com/a3tai/mcp-idp-review/internal/selection"
)

// newID generates ids for documents created during review
var newID = uuid.NewString

// ParseView converts a wire name into a View
func ParseView(name string) (View, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "pages", "page":
		return ViewPages, nil
	case "documents", "document", "docs":
		return ViewDocuments, nil
	default:
		return ViewPages, reviewerrors.Newf(reviewerrors.ErrorTypeInvalidArgument,
			"unknown view: %s (must be pages or documents)", name)
	}
}

// NewBatch creates an empty batch holding only the unclassified class
func NewBatch(name string) *Batch {
	b := &Batch{ID: newID(), Name: name}
	b.EnsureUnclassified()
	return b
}

// EnsureUnclassified adds the unclassified class when it is missing
func (b *Batch) EnsureUnclassified() {
	if b.ClassIndex(UnclassifiedClassID) >= 0 {
		return
	}
	b.Classes = append([]Class{{ID: UnclassifiedClassID, Name: "Unclassified"}}, b.Classes...)
}

// ClassIndex returns the index of the class or -1
func (b *Batch) ClassIndex(classID string) int {
	for i := range b.Classes {
		if b.Classes[i].ID == classID {
			return i
		}
	}
	return -1
}

// Class returns the class with the given id
func (b *Batch) Class(classID string) (*Class, error) {
	i := b.ClassIndex(classID)
	if i < 0 {
		return nil, reviewerrors.Newf(reviewerrors.ErrorTypeNotFound, "class not found: %s", classID)
	}
	return &b.Classes[i], nil
}

func (b *Batch) locateDocument(docID string) (int, int, bool) {
	for ci := range b.Classes {
		for di := range b.Classes[ci].Documents {
			if b.Classes[ci].Documents[di].ID == docID {
				return ci, di, true
			}
		}
	}
	return -1, -1, false
}

func (b *Batch) locatePage(pageID string) (int, int, int, bool) {
	for ci := range b.Classes {
		for di := range b.Classes[ci].Documents {
			for pi := range b.Classes[ci].Documents[di].Pages {
				if b.Classes[ci].Documents[di].Pages[pi].ID == pageID {
					return ci, di, pi, true
				}
			}
		}
	}
	return -1, -1, -1, false
}

// Document returns the document with the given id
func (b *Batch) Document(docID string) (*Document, error) {
	ci, di, ok := b.locateDocument(docID)
	if !ok {
		return nil, reviewerrors.Newf(reviewerrors.ErrorTypeNotFound, "document not found: %s", docID)
	}
	return &b.Classes[ci].Documents[di], nil
}

// DocumentClass returns the class currently holding the document
func (b *Batch) DocumentClass(docID string) (*Class, error) {
	ci, _, ok := b.locateDocument(docID)
	if !ok {
		return nil, reviewerrors.Newf(reviewerrors.ErrorTypeNotFound, "document not found: %s", docID)
	}
	return &b.Classes[ci], nil
}

// Page returns the page with the given id and the document holding it
func (b *Batch) Page(pageID string) (*Page, *Document, error) {
	ci, di, pi, ok := b.locatePage(pageID)
	if !ok {
		return nil, nil, reviewerrors.Newf(reviewerrors.ErrorTypeNotFound, "page not found: %s", pageID)
	}
	doc := &b.Classes[ci].Documents[di]
	return &doc.Pages[pi], doc, nil
}

// Groups returns the grouping of the batch for a view: documents holding pages, or
// classes holding documents.
func (b *Batch) Groups(view View) []selection.Group {
	var groups []selection.Group
	for _, c := range b.Classes {
		if view == ViewDocuments {
			g := selection.Group{ID: c.ID}
			for _, d := range c.Documents {
				g.Items = append(g.Items, selection.Item{ID: d.ID, GroupID: c.ID})
			}
			groups = append(groups, g)
			continue
		}
		for _, d := range c.Documents {
			g := selection.Group{ID: d.ID}
			for _, p := range d.Pages {
				g.Items = append(g.Items, selection.Item{ID: p.ID, GroupID: d.ID})
			}
			groups = append(groups, g)
		}
	}
	return groups
}

// Flatten returns the items of a view in display order
func (b *Batch) Flatten(view View) []selection.Item {
	return selection.Flatten(b.Groups(view))
}

// DocumentWords returns the recognized words of all pages of a document in order. The
// page numbers of the returned words are the positions of their pages in the document.
func (b *Batch) DocumentWords(docID string) ([]ocr.Word, error) {
	doc, err := b.Document(docID)
	if err != nil {
		return nil, err
	}
	var words []ocr.Word
	for i, p := range doc.Pages {
		for _, w := range p.Words {
			w.Page = i + 1
			words = append(words, w)
		}
	}
	return words, nil
}

// Stats counts the contents of the batch
func (b *Batch) Stats() Stats {
	s := Stats{Classes: len(b.Classes)}
	for _, c := range b.Classes {
		for _, d := range c.Documents {
			s.Documents++
			s.Pages += len(d.Pages)
			if c.ID == UnclassifiedClassID {
				s.Unclassified++
			}
			if d.Rejected {
				s.Rejected++
			}
			for _, f := range d.Fields {
				s.Fields++
				if f.Verified {
					s.VerifiedFields++
				}
			}
		}
	}
	return s
}

// Clone returns a deep copy of the batch. Recognized words are shared because they are
// never modified after loading.
func (b *Batch) Clone() *Batch {
	c := &Batch{ID: b.ID, Name: b.Name, Classes: make([]Class, len(b.Classes))}
	for ci, class := range b.Classes {
		nc := class
		nc.Fields = append([]FieldDef(nil), class.Fields...)
		nc.Documents = make([]Document, len(class.Documents))
		for di, doc := range class.Documents {
			nd := doc
			nd.Pages = append([]Page(nil), doc.Pages...)
			nd.Fields = append([]Field(nil), doc.Fields...)
			nc.Documents[di] = nd
		}
		c.Classes[ci] = nc
	}
	return c
}

// CheckIntegrity checks the structural integrity of a loaded batch: unique ids and at least
// one page per document.
func (b *Batch) CheckIntegrity() error {
	seen := make(map[string]string)
	claim := func(kind, id string) error {
		if id == "" {
			return reviewerrors.Newf(reviewerrors.ErrorTypeInvalidState, "%s without id", kind)
		}
		if prev, ok := seen[id]; ok {
			return reviewerrors.Newf(reviewerrors.ErrorTypeInvalidState,
				"duplicate id %s used by %s and %s", id, prev, kind)
		}
		seen[id] = kind
		return nil
	}

	for _, c := range b.Classes {
		if err := claim("class", c.ID); err != nil {
			return err
		}
		for _, d := range c.Documents {
			if err := claim("document", d.ID); err != nil {
				return err
			}
			if len(d.Pages) == 0 {
				return reviewerrors.New(reviewerrors.ErrorTypeInvalidState, "document has no pages").
					WithDocument(d.ID)
			}
			for _, p := range d.Pages {
				if err := claim(fmt.Sprintf("page of %s", d.ID), p.ID); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
