// Package workspace models a batch of scanned documents under review: documents grouped
// into classes, pages with their recognized words, and the extracted field values that a
// reviewer verifies.
package workspace

import (
	"github.com/a3tai/mcp-idp-review/internal/ocr"
)

// UnclassifiedClassID is the class holding documents nobody has classified yet. It
// always exists in a batch.
const UnclassifiedClassID = "unclassified"

// FieldDef declares a field that documents of a class carry
type FieldDef struct {
	Name     string `json:"name" yaml:"name"`
	Required bool   `json:"required,omitempty" yaml:"required,omitempty"`
	Pattern  string `json:"pattern,omitempty" yaml:"pattern,omitempty"`
}

// Field is an extracted value and its verification status
type Field struct {
	Name       string  `json:"name" yaml:"name"`
	Value      string  `json:"value" yaml:"value"`
	Confidence float64 `json:"confidence" yaml:"confidence"`
	Verified   bool    `json:"verified" yaml:"verified"`
}

// PageSource points at the scanned page a Page was taken from
type PageSource struct {
	File string `json:"file,omitempty" yaml:"file,omitempty"`
	Page int    `json:"page,omitempty" yaml:"page,omitempty"`
}

// Page is one scanned page
type Page struct {
	ID       string     `json:"id" yaml:"id"`
	Source   PageSource `json:"source" yaml:"source"`
	Rotation int        `json:"rotation,omitempty" yaml:"rotation,omitempty"`
	Words    []ocr.Word `json:"-" yaml:"-"`
}

// Document is an ordered run of pages classified as one unit
type Document struct {
	ID             string  `json:"id" yaml:"id"`
	Name           string  `json:"name" yaml:"name"`
	Pages          []Page  `json:"pages" yaml:"pages"`
	Fields         []Field `json:"fields,omitempty" yaml:"fields,omitempty"`
	Rejected       bool    `json:"rejected,omitempty" yaml:"rejected,omitempty"`
	SuggestedClass string  `json:"suggested_class,omitempty" yaml:"suggested_class,omitempty"`
}

// Class is a document category and the documents currently assigned to it
type Class struct {
	ID        string     `json:"id" yaml:"id"`
	Name      string     `json:"name" yaml:"name"`
	Fields    []FieldDef `json:"fields,omitempty" yaml:"fields,omitempty"`
	Documents []Document `json:"documents" yaml:"documents"`
}

// Batch is the unit of work of one review task
type Batch struct {
	ID      string  `json:"id" yaml:"id"`
	Name    string  `json:"name" yaml:"name"`
	Classes []Class `json:"classes" yaml:"classes"`
}

// Stats summarizes a batch
type Stats struct {
	Classes        int `json:"classes" yaml:"classes"`
	Documents      int `json:"documents" yaml:"documents"`
	Pages          int `json:"pages" yaml:"pages"`
	Unclassified   int `json:"unclassified" yaml:"unclassified"`
	Rejected       int `json:"rejected" yaml:"rejected"`
	Fields         int `json:"fields" yaml:"fields"`
	VerifiedFields int `json:"verified_fields" yaml:"verified_fields"`
}

// View selects which level of the batch a selection works on
type View int

const (
	// ViewPages selects pages, grouped by document
	ViewPages View = iota
	// ViewDocuments selects documents, grouped by class
	ViewDocuments
)

// String returns the wire name of the view
func (v View) String() string {
	if v == ViewDocuments {
		return "documents"
	}
	return "pages"
}
