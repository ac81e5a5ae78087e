package loader

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	reviewerrors "github.com/a3tai/mcp-idp-review/internal/errors"
	"github.com/a3tai/mcp-idp-review/internal/workspace"
)

// ExportedBatch is the file written for a completed review
type ExportedBatch struct {
	ID          string             `yaml:"id"`
	Name        string             `yaml:"name"`
	CompletedAt time.Time          `yaml:"completed_at"`
	Stats       workspace.Stats    `yaml:"stats"`
	Documents   []ExportedDocument `yaml:"documents"`
}

// ExportedDocument is one reviewed document with its final class and field values
type ExportedDocument struct {
	ID       string            `yaml:"id"`
	Name     string            `yaml:"name"`
	Class    string            `yaml:"class"`
	Rejected bool              `yaml:"rejected,omitempty"`
	Pages    []ExportedPage    `yaml:"pages"`
	Fields   map[string]string `yaml:"fields,omitempty"`
}

// ExportedPage points at a scanned page and the rotation to apply to it
type ExportedPage struct {
	File     string `yaml:"file,omitempty"`
	Page     int    `yaml:"page,omitempty"`
	Rotation int    `yaml:"rotation,omitempty"`
}

var now = time.Now

// NewExport converts a batch into its exported form
func NewExport(b *workspace.Batch) *ExportedBatch {
	out := &ExportedBatch{
		ID:          b.ID,
		Name:        b.Name,
		CompletedAt: now().UTC(),
		Stats:       b.Stats(),
	}
	for _, c := range b.Classes {
		for _, d := range c.Documents {
			ed := ExportedDocument{ID: d.ID, Name: d.Name, Class: c.ID, Rejected: d.Rejected}
			for _, p := range d.Pages {
				ed.Pages = append(ed.Pages, ExportedPage{File: p.Source.File, Page: p.Source.Page, Rotation: p.Rotation})
			}
			if !d.Rejected && len(d.Fields) > 0 {
				ed.Fields = make(map[string]string, len(d.Fields))
				for _, f := range d.Fields {
					ed.Fields[f.Name] = f.Value
				}
			}
			out.Documents = append(out.Documents, ed)
		}
	}
	return out
}

// Export writes the batch to path as YAML. The file is written next to its final name
// first and renamed into place.
func Export(b *workspace.Batch, path string) error {
	data, err := yaml.Marshal(NewExport(b))
	if err != nil {
		return reviewerrors.Wrap(reviewerrors.ErrorTypeExport, "failed to encode result", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".result-*.yaml")
	if err != nil {
		return reviewerrors.Wrap(reviewerrors.ErrorTypeExport, "failed to create result file", err).WithContext(path)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return reviewerrors.Wrap(reviewerrors.ErrorTypeExport, "failed to write result file", err).WithContext(path)
	}
	if err := tmp.Close(); err != nil {
		return reviewerrors.Wrap(reviewerrors.ErrorTypeExport, "failed to write result file", err).WithContext(path)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return reviewerrors.Wrap(reviewerrors.ErrorTypeExport, "failed to move result file into place", err).WithContext(path)
	}
	return nil
}
