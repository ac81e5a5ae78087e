package loader

import (
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"go.uber.org/zap"

	"github.com/a3tai/mcp-idp-review/internal/workspace"
)

const (
	// formFieldConfidence is the confidence of values read from filled-in PDF forms.
	// They are typed rather than recognized but still need a reviewer to verify them.
	formFieldConfidence = 1.0

	maxFieldDepth = 32
)

// extractFormFields reads the values of the AcroForm fields of a PDF. Fields without a
// value are skipped. Nested fields get dotted names.
func extractFormFields(ctx *model.Context, logger *zap.Logger) []workspace.Field {
	root, err := ctx.Catalog()
	if err != nil {
		logger.Debug("no catalog", zap.Error(err))
		return nil
	}
	acroFormObj, found := root.Find("AcroForm")
	if !found {
		return nil
	}
	acroForm, err := ctx.DereferenceDict(acroFormObj)
	if err != nil || acroForm == nil {
		return nil
	}
	fieldsObj, found := acroForm.Find("Fields")
	if !found {
		return nil
	}
	fields, err := ctx.DereferenceArray(fieldsObj)
	if err != nil {
		logger.Debug("unreadable form fields", zap.Error(err))
		return nil
	}

	var out []workspace.Field
	for _, obj := range fields {
		walkFormField(ctx, obj, "", 0, func(name, value string) {
			out = append(out, workspace.Field{Name: name, Value: value, Confidence: formFieldConfidence})
		})
	}
	return out
}

func walkFormField(ctx *model.Context, obj types.Object, prefix string, depth int, fn func(name, value string)) {
	if depth > maxFieldDepth {
		return
	}
	dict, err := ctx.DereferenceDict(obj)
	if err != nil || dict == nil {
		return
	}

	name := prefix
	if nameObj, found := dict.Find("T"); found {
		if partial, err := ctx.DereferenceStringOrHexLiteral(nameObj, model.V10, nil); err == nil && partial != "" {
			if name != "" {
				name += "."
			}
			name += partial
		}
	}

	// kids carrying a partial name are child fields, the others are widgets
	childFields := false
	if kidsObj, found := dict.Find("Kids"); found {
		if kids, err := ctx.DereferenceArray(kidsObj); err == nil {
			for _, kid := range kids {
				kidDict, err := ctx.DereferenceDict(kid)
				if err != nil || kidDict == nil {
					continue
				}
				if _, hasName := kidDict.Find("T"); hasName {
					childFields = true
					walkFormField(ctx, kid, name, depth+1, fn)
				}
			}
		}
	}
	if childFields || name == "" {
		return
	}

	valueObj, found := dict.Find("V")
	if !found {
		return
	}
	if value := formValue(ctx, valueObj); value != "" {
		fn(name, value)
	}
}

// formValue renders a field value as text: strings as they are, names (checkboxes and
// radio buttons) by their export value, and option lists joined with commas
func formValue(ctx *model.Context, obj types.Object) string {
	if s, err := ctx.DereferenceStringOrHexLiteral(obj, model.V10, nil); err == nil {
		return strings.TrimSpace(s)
	}
	if n, err := ctx.DereferenceName(obj, model.V10, nil); err == nil {
		if n == "Off" {
			return ""
		}
		return string(n)
	}
	if arr, err := ctx.DereferenceArray(obj); err == nil {
		var values []string
		for _, item := range arr {
			if s, err := ctx.DereferenceStringOrHexLiteral(item, model.V10, nil); err == nil && s != "" {
				values = append(values, s)
			}
		}
		return strings.Join(values, ", ")
	}
	return ""
}
