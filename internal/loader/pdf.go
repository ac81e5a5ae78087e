package loader

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/maruel/natural"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"go.uber.org/zap"

	reviewerrors "github.com/a3tai/mcp-idp-review/internal/errors"
	"github.com/a3tai/mcp-idp-review/internal/workspace"
)

// pdfFile is what the loader takes from one PDF: the text layer of every page and the
// values of filled-in form fields
type pdfFile struct {
	path   string
	pages  []string
	fields []workspace.Field
}

// checkPDF validates a PDF path before it is opened
func (l *Loader) checkPDF(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return reviewerrors.New(reviewerrors.ErrorTypeLoad, "file does not exist").WithContext(path)
	}
	if err != nil {
		return reviewerrors.Wrap(reviewerrors.ErrorTypeLoad, "cannot access file", err).WithContext(path)
	}
	if info.IsDir() {
		return reviewerrors.New(reviewerrors.ErrorTypeLoad, "path is a directory, not a file").WithContext(path)
	}
	if !strings.EqualFold(filepath.Ext(path), ".pdf") {
		return reviewerrors.New(reviewerrors.ErrorTypeLoad, "file is not a PDF").WithContext(path)
	}
	if info.Size() == 0 {
		return reviewerrors.New(reviewerrors.ErrorTypeLoad, "file is empty").WithContext(path)
	}
	if info.Size() > l.maxFileSize {
		return reviewerrors.Newf(reviewerrors.ErrorTypeLoad, "file too large: %d bytes (max: %d bytes)",
			info.Size(), l.maxFileSize).WithContext(path)
	}
	return nil
}

// readPDF reads a PDF. The page count and form fields come from pdfcpu in relaxed
// validation mode; page text comes from the text layer. Pages without text are kept
// with empty text.
func (l *Loader) readPDF(path string) (*pdfFile, error) {
	if err := l.checkPDF(path); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, reviewerrors.Wrap(reviewerrors.ErrorTypeLoad, "failed to open PDF", err).WithContext(path)
	}
	defer f.Close()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	pctx, err := api.ReadContext(f, conf)
	if err != nil {
		return nil, reviewerrors.Wrap(reviewerrors.ErrorTypeLoad, "failed to read PDF", err).WithContext(path)
	}
	if err := pctx.EnsurePageCount(); err != nil {
		return nil, reviewerrors.Wrap(reviewerrors.ErrorTypeLoad, "failed to count pages", err).WithContext(path)
	}
	if pctx.PageCount == 0 {
		return nil, reviewerrors.New(reviewerrors.ErrorTypeLoad, "PDF has no pages").WithContext(path)
	}

	result := &pdfFile{
		path:   path,
		pages:  make([]string, pctx.PageCount),
		fields: extractFormFields(pctx, l.logger),
	}

	tf, reader, err := pdf.Open(path)
	if err != nil {
		l.logger.Warn("no text layer available", zap.String("path", path), zap.Error(err))
		return result, nil
	}
	defer tf.Close()

	for i := range result.pages {
		if i >= reader.NumPage() {
			break
		}
		result.pages[i] = l.pageText(reader, i+1)
	}
	return result, nil
}

// pageText extracts the plain text of one page. Broken content streams make the text
// extraction panic, so a failing page yields no text instead of failing the batch.
func (l *Loader) pageText(reader *pdf.Reader, pageNum int) (text string) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Warn("text extraction panicked", zap.Int("page", pageNum), zap.Any("panic", r))
			text = ""
		}
	}()

	page := reader.Page(pageNum)
	if page.V.IsNull() {
		return ""
	}
	content, err := page.GetPlainText(nil)
	if err != nil {
		l.logger.Debug("text extraction failed", zap.Int("page", pageNum), zap.Error(err))
		return ""
	}
	return content
}

// listPDFs returns the PDF files directly inside dir in natural order
func listPDFs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, reviewerrors.Wrap(reviewerrors.ErrorTypeLoad, "cannot read directory", err).WithContext(dir)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".pdf") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Sort(natural.StringSlice(names))

	paths := make([]string, len(names))
	for i, n := range names {
		paths[i] = filepath.Join(dir, n)
	}
	return paths, nil
}

func documentName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
