package workspace

import (
	"regexp"

	"go.uber.org/multierr"

	reviewerrors "github.com/a3tai/mcp-idp-review/internal/errors"
)

// Validate checks whether the batch may be completed. Every problem is reported; the
// returned error combines them and multierr.Errors splits it up again.
//
// A batch is complete when no document is left unclassified unless rejected, and every
// document that is not rejected has all required fields filled, all filled fields
// verified, and values matching the field patterns.
func (b *Batch) Validate() error {
	var errs error
	patterns := make(map[string]*regexp.Regexp)

	for _, c := range b.Classes {
		for _, def := range c.Fields {
			if def.Pattern == "" {
				continue
			}
			re, err := regexp.Compile(def.Pattern)
			if err != nil {
				errs = multierr.Append(errs, reviewerrors.Wrap(reviewerrors.ErrorTypeValidation,
					"invalid field pattern", err).WithContext(c.ID).WithField(def.Name))
				continue
			}
			patterns[c.ID+"\x00"+def.Name] = re
		}

		for _, d := range c.Documents {
			if d.Rejected {
				continue
			}
			if c.ID == UnclassifiedClassID {
				errs = multierr.Append(errs, reviewerrors.New(reviewerrors.ErrorTypeValidation,
					"document is not classified").WithDocument(d.ID))
				continue
			}
			errs = multierr.Append(errs, validateFields(c, d, patterns))
		}
	}
	return errs
}

func validateFields(c Class, d Document, patterns map[string]*regexp.Regexp) error {
	var errs error
	values := make(map[string]Field, len(d.Fields))
	for _, f := range d.Fields {
		values[f.Name] = f
	}

	for _, def := range c.Fields {
		f, ok := values[def.Name]
		if !ok || f.Value == "" {
			if def.Required {
				errs = multierr.Append(errs, reviewerrors.New(reviewerrors.ErrorTypeValidation,
					"required field is empty").WithDocument(d.ID).WithField(def.Name))
			}
			continue
		}
		if !f.Verified {
			errs = multierr.Append(errs, reviewerrors.New(reviewerrors.ErrorTypeValidation,
				"field is not verified").WithDocument(d.ID).WithField(def.Name))
		}
		if re, ok := patterns[c.ID+"\x00"+def.Name]; ok && !re.MatchString(f.Value) {
			errs = multierr.Append(errs, reviewerrors.New(reviewerrors.ErrorTypeValidation,
				"value does not match pattern").WithDocument(d.ID).WithField(def.Name).
				WithContext(def.Pattern))
		}
	}
	return errs
}
