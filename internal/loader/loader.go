// Package loader builds review batches from disk: a YAML manifest describing classes and
// documents, or a directory of scanned PDFs. It also writes the result of a completed
// review next to its source.
package loader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/a3tai/mcp-idp-review/internal/classify"
	reviewerrors "github.com/a3tai/mcp-idp-review/internal/errors"
	"github.com/a3tai/mcp-idp-review/internal/ocr"
	"github.com/a3tai/mcp-idp-review/internal/security"
	"github.com/a3tai/mcp-idp-review/internal/workspace"
)

// DefaultMaxFileSize limits the size of PDFs when no limit is configured
const DefaultMaxFileSize = 100 * 1024 * 1024

// Result is a loaded batch together with what was declared alongside it
type Result struct {
	Batch *workspace.Batch
	Rules []classify.Rule
	// Source is the manifest or directory the batch was loaded from
	Source string
	// ExportPath is where Export writes the review result
	ExportPath string
}

// Loader reads batches from inside a root directory
type Loader struct {
	validator   *security.PathValidator
	maxFileSize int64
	logger      *zap.Logger
}

// New creates a loader
func New(validator *security.PathValidator, maxFileSize int64, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxFileSize <= 0 {
		maxFileSize = DefaultMaxFileSize
	}
	return &Loader{validator: validator, maxFileSize: maxFileSize, logger: logger}
}

// Load reads the batch at path, which is a manifest (.yaml, .yml), a single PDF or a
// directory of PDFs. Relative paths are taken relative to the root directory.
func (l *Loader) Load(ctx context.Context, path string) (*Result, error) {
	abs, err := l.validator.Resolve(path)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, reviewerrors.Wrap(reviewerrors.ErrorTypeLoad, "cannot access batch", err).WithContext(path)
	}

	var result *Result
	switch ext := strings.ToLower(filepath.Ext(abs)); {
	case info.IsDir():
		result, err = l.loadDirectory(ctx, abs)
	case ext == ".yaml" || ext == ".yml":
		result, err = l.loadManifest(ctx, abs)
	case ext == ".pdf":
		result, err = l.loadFiles(ctx, documentName(abs), filepath.Dir(abs), []string{abs})
		if result != nil {
			result.Source = abs
			result.ExportPath = resultPath(abs)
		}
	default:
		return nil, reviewerrors.New(reviewerrors.ErrorTypeLoad,
			"unsupported batch source (expected a directory, .yaml manifest or .pdf)").WithContext(path)
	}
	if err != nil {
		return nil, err
	}

	if err := result.Batch.CheckIntegrity(); err != nil {
		return nil, reviewerrors.Wrap(reviewerrors.ErrorTypeLoad, "inconsistent batch", err).WithContext(path)
	}

	stats := result.Batch.Stats()
	l.logger.Info("batch loaded",
		zap.String("source", result.Source),
		zap.Int("documents", stats.Documents),
		zap.Int("pages", stats.Pages),
		zap.Int("rules", len(result.Rules)))
	return result, nil
}

func (l *Loader) loadDirectory(ctx context.Context, dir string) (*Result, error) {
	paths, err := listPDFs(dir)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, reviewerrors.New(reviewerrors.ErrorTypeLoad, "no PDF files found").WithContext(dir)
	}
	result, err := l.loadFiles(ctx, filepath.Base(dir), dir, paths)
	if err != nil {
		return nil, err
	}
	result.Source = dir
	result.ExportPath = filepath.Join(dir, filepath.Base(dir)+".result.yaml")
	return result, nil
}

// loadFiles builds an unclassified batch with one document per PDF
func (l *Loader) loadFiles(ctx context.Context, name, base string, paths []string) (*Result, error) {
	b := workspace.NewBatch(name)
	ids := newIDAllocator()
	docs, err := l.pdfDocuments(ctx, base, paths, ids)
	if err != nil {
		return nil, err
	}
	b.Classes[0].Documents = docs
	return &Result{Batch: b}, nil
}

func (l *Loader) pdfDocuments(ctx context.Context, base string, paths []string, ids *idAllocator) ([]workspace.Document, error) {
	var docs []workspace.Document
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := l.validator.ValidatePath(path); err != nil {
			return nil, err
		}
		file, err := l.readPDF(path)
		if err != nil {
			return nil, err
		}

		doc := workspace.Document{ID: ids.next("doc-"), Name: documentName(path), Fields: file.fields}
		rel := relativeTo(base, path)
		for i, text := range file.pages {
			doc.Pages = append(doc.Pages, workspace.Page{
				ID:     ids.next(doc.ID + "-p"),
				Source: workspace.PageSource{File: rel, Page: i + 1},
				Words:  ocr.ExtractWords(text, i+1),
			})
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func (l *Loader) loadManifest(ctx context.Context, path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, reviewerrors.Wrap(reviewerrors.ErrorTypeLoad, "cannot read manifest", err).WithContext(path)
	}
	m, err := ParseManifest(data)
	if err != nil {
		return nil, err
	}

	base := filepath.Dir(path)
	name := m.Name
	if name == "" {
		name = documentName(path)
	}

	b := workspace.NewBatch(name)
	for _, c := range m.Classes {
		if c.ID == workspace.UnclassifiedClassID {
			b.Classes[0].Fields = c.Fields
			if c.Name != "" {
				b.Classes[0].Name = c.Name
			}
			continue
		}
		className := c.Name
		if className == "" {
			className = c.ID
		}
		b.Classes = append(b.Classes, workspace.Class{ID: c.ID, Name: className, Fields: c.Fields})
	}

	ids := newIDAllocator()
	for _, d := range m.Documents {
		ids.claim(d.ID)
		for _, p := range d.Pages {
			ids.claim(p.ID)
		}
	}

	files := make(map[string]*pdfFile)
	open := func(file string) (*pdfFile, error) {
		abs := file
		if !filepath.IsAbs(abs) {
			abs = filepath.Join(base, file)
		}
		if f, ok := files[abs]; ok {
			return f, nil
		}
		if err := l.validator.ValidatePath(abs); err != nil {
			return nil, err
		}
		f, err := l.readPDF(abs)
		if err != nil {
			return nil, err
		}
		files[abs] = f
		return f, nil
	}

	for _, md := range m.Documents {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		doc, err := l.manifestDocument(md, ids, open)
		if err != nil {
			return nil, err
		}
		classID := md.Class
		if classID == "" {
			classID = workspace.UnclassifiedClassID
		}
		class, err := b.Class(classID)
		if err != nil {
			return nil, err
		}
		doc.Fields = mergeFields(class.Fields, doc.Fields)
		class.Documents = append(class.Documents, doc)
	}

	if m.PDFs != "" {
		dir := m.PDFs
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(base, dir)
		}
		if err := l.validator.ValidatePath(dir); err != nil {
			return nil, err
		}
		paths, err := listPDFs(dir)
		if err != nil {
			return nil, err
		}
		docs, err := l.pdfDocuments(ctx, base, paths, ids)
		if err != nil {
			return nil, err
		}
		b.Classes[0].Documents = append(b.Classes[0].Documents, docs...)
	}

	return &Result{
		Batch:      b,
		Rules:      m.Rules(),
		Source:     path,
		ExportPath: resultPath(path),
	}, nil
}

func (l *Loader) manifestDocument(md ManifestDocument, ids *idAllocator, open func(string) (*pdfFile, error)) (workspace.Document, error) {
	doc := workspace.Document{ID: md.ID, Name: md.Name}
	if doc.ID == "" {
		doc.ID = ids.next("doc-")
	}

	var formFields []workspace.Field
	if md.File != "" {
		f, err := open(md.File)
		if err != nil {
			return doc, err
		}
		formFields = f.fields
		for i, text := range f.pages {
			doc.Pages = append(doc.Pages, workspace.Page{
				ID:     ids.next(doc.ID + "-p"),
				Source: workspace.PageSource{File: md.File, Page: i + 1},
				Words:  ocr.ExtractWords(text, i+1),
			})
		}
		if doc.Name == "" {
			doc.Name = documentName(md.File)
		}
	}

	for _, mp := range md.Pages {
		page := workspace.Page{ID: mp.ID}
		if page.ID == "" {
			page.ID = ids.next(doc.ID + "-p")
		}
		pageNum := len(doc.Pages) + 1
		switch {
		case mp.Text != "":
			page.Source = workspace.PageSource{File: mp.File, Page: mp.Page}
			page.Words = ocr.ExtractWords(mp.Text, pageNum)
		default:
			f, err := open(mp.File)
			if err != nil {
				return doc, err
			}
			num := mp.Page
			if num == 0 {
				num = 1
			}
			if num < 1 || num > len(f.pages) {
				return doc, reviewerrors.Newf(reviewerrors.ErrorTypeLoad,
					"page %d out of range (1-%d)", mp.Page, len(f.pages)).WithContext(mp.File)
			}
			page.Source = workspace.PageSource{File: mp.File, Page: num}
			page.Words = ocr.ExtractWords(f.pages[num-1], pageNum)
		}
		doc.Pages = append(doc.Pages, page)
	}

	if doc.Name == "" {
		doc.Name = doc.ID
	}
	doc.Fields = mergeFieldValues(md.Fields, formFields)
	return doc, nil
}

// mergeFieldValues returns the declared fields followed by the form fields not declared
func mergeFieldValues(declared, form []workspace.Field) []workspace.Field {
	out := append([]workspace.Field(nil), declared...)
	seen := make(map[string]bool, len(declared))
	for _, f := range declared {
		seen[f.Name] = true
	}
	for _, f := range form {
		if !seen[f.Name] {
			out = append(out, f)
			seen[f.Name] = true
		}
	}
	return out
}

// mergeFields orders the values of a document by the field definitions of its class and
// adds empty fields for definitions without a value. Without definitions the values are
// kept as they are.
func mergeFields(defs []workspace.FieldDef, values []workspace.Field) []workspace.Field {
	if len(defs) == 0 {
		return values
	}
	byName := make(map[string]workspace.Field, len(values))
	for _, v := range values {
		byName[v.Name] = v
	}
	out := make([]workspace.Field, 0, len(defs))
	for _, def := range defs {
		if v, ok := byName[def.Name]; ok {
			out = append(out, v)
			continue
		}
		out = append(out, workspace.Field{Name: def.Name})
	}
	return out
}

func relativeTo(base, path string) string {
	if rel, err := filepath.Rel(base, path); err == nil {
		return filepath.ToSlash(rel)
	}
	return path
}

// resultPath is the export location for a manifest or PDF: the source name with a
// .result.yaml extension, in the same directory
func resultPath(source string) string {
	return filepath.Join(filepath.Dir(source), documentName(source)+".result.yaml")
}

// idAllocator hands out readable ids that do not collide with ids taken by the manifest
type idAllocator struct {
	taken   map[string]bool
	counter map[string]int
}

func newIDAllocator() *idAllocator {
	return &idAllocator{taken: make(map[string]bool), counter: make(map[string]int)}
}

func (a *idAllocator) claim(ids ...string) {
	for _, id := range ids {
		if id != "" {
			a.taken[id] = true
		}
	}
}

func (a *idAllocator) next(prefix string) string {
	for {
		a.counter[prefix]++
		id := fmt.Sprintf("%s%d", prefix, a.counter[prefix])
		if !a.taken[id] {
			a.taken[id] = true
			return id
		}
	}
}
