// Package ocr holds recognized page text and the matching used to suggest field values
// from it.
package ocr

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Box is the position of a word on its page, in page units
type Box struct {
	X      float64 `json:"x" yaml:"x"`
	Y      float64 `json:"y" yaml:"y"`
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// Word is one recognized word. Words are kept in reading order.
type Word struct {
	Text       string  `json:"text" yaml:"text"`
	Page       int     `json:"page" yaml:"page"`
	Line       int     `json:"line" yaml:"line"`
	Confidence float64 `json:"confidence" yaml:"confidence"`
	Box        *Box    `json:"box,omitempty" yaml:"box,omitempty"`
}

// TextLayerConfidence is assigned to words taken from a PDF text layer
const TextLayerConfidence = 1.0

// ExtractWords splits page text into words, one line per text line
func ExtractWords(text string, page int) []Word {
	var words []Word
	for lineNum, line := range strings.Split(text, "\n") {
		for _, field := range strings.Fields(line) {
			words = append(words, Word{
				Text:       field,
				Page:       page,
				Line:       lineNum,
				Confidence: TextLayerConfidence,
			})
		}
	}
	return words
}

// Text joins words back into plain text, breaking lines where the words do
func Text(words []Word) string {
	var b strings.Builder
	for i, w := range words {
		if i > 0 {
			if w.Page != words[i-1].Page || w.Line != words[i-1].Line {
				b.WriteByte('\n')
			} else {
				b.WriteByte(' ')
			}
		}
		b.WriteString(w.Text)
	}
	return b.String()
}

// Normalize folds case, strips diacritics and collapses whitespace so that recognized
// text and typed text compare equal.
func Normalize(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, s)
	if err != nil {
		stripped = s
	}
	return strings.Join(strings.Fields(cases.Fold().String(stripped)), " ")
}
