package loader

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/a3tai/mcp-idp-review/internal/classify"
	reviewerrors "github.com/a3tai/mcp-idp-review/internal/errors"
	"github.com/a3tai/mcp-idp-review/internal/workspace"
)

// Manifest describes a batch on disk
type Manifest struct {
	Name      string             `yaml:"name"`
	Classes   []ManifestClass    `yaml:"classes"`
	Documents []ManifestDocument `yaml:"documents"`
	// PDFs names a directory whose PDF files are added as unclassified documents
	PDFs string `yaml:"pdfs,omitempty"`
}

// ManifestClass declares a class, the fields its documents carry and the rules that
// recognize it
type ManifestClass struct {
	ID     string               `yaml:"id"`
	Name   string               `yaml:"name"`
	Fields []workspace.FieldDef `yaml:"fields"`
	Rules  []ManifestRule       `yaml:"rules"`
}

// ManifestRule is a classifier rule scoped to its class
type ManifestRule struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
	Patterns []string `yaml:"patterns"`
	Weight   float64  `yaml:"weight"`
}

// ManifestDocument is a document of the batch. It takes its pages either from every page
// of File or from the explicit Pages list.
type ManifestDocument struct {
	ID     string            `yaml:"id"`
	Name   string            `yaml:"name"`
	Class  string            `yaml:"class"`
	File   string            `yaml:"file"`
	Pages  []ManifestPage    `yaml:"pages"`
	Fields []workspace.Field `yaml:"fields"`
}

// ManifestPage is either a page of a PDF file or inline recognized text
type ManifestPage struct {
	ID   string `yaml:"id"`
	File string `yaml:"file"`
	Page int    `yaml:"page"`
	Text string `yaml:"text"`
}

// ParseManifest decodes a manifest and checks the references inside it
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, reviewerrors.Wrap(reviewerrors.ErrorTypeLoad, "invalid manifest", err)
	}

	classes := make(map[string]bool)
	for i, c := range m.Classes {
		if c.ID == "" {
			return nil, reviewerrors.Newf(reviewerrors.ErrorTypeLoad, "class %d has no id", i+1)
		}
		if classes[c.ID] {
			return nil, reviewerrors.Newf(reviewerrors.ErrorTypeLoad, "duplicate class id: %s", c.ID)
		}
		classes[c.ID] = true
	}
	classes[workspace.UnclassifiedClassID] = true

	for i, d := range m.Documents {
		name := d.Name
		if name == "" {
			name = fmt.Sprintf("#%d", i+1)
		}
		if d.Class != "" && !classes[d.Class] {
			return nil, reviewerrors.Newf(reviewerrors.ErrorTypeLoad,
				"document %s refers to unknown class %s", name, d.Class)
		}
		if d.File == "" && len(d.Pages) == 0 {
			return nil, reviewerrors.Newf(reviewerrors.ErrorTypeLoad, "document %s has no pages", name)
		}
		for j, p := range d.Pages {
			if p.File == "" && p.Text == "" {
				return nil, reviewerrors.Newf(reviewerrors.ErrorTypeLoad,
					"page %d of document %s needs a file or text", j+1, name)
			}
		}
	}
	return &m, nil
}

// Rules returns the classifier rules of all classes
func (m *Manifest) Rules() []classify.Rule {
	var rules []classify.Rule
	for _, c := range m.Classes {
		for i, r := range c.Rules {
			name := r.Name
			if name == "" {
				name = fmt.Sprintf("%s_%d", c.ID, i+1)
			}
			rules = append(rules, classify.Rule{
				Name:     name,
				ClassID:  c.ID,
				Keywords: r.Keywords,
				Patterns: r.Patterns,
				Weight:   r.Weight,
			})
		}
	}
	return rules
}
