package ocr

import (
	"sort"
	"strings"
)

// phraseSlack is how many words a candidate phrase may extend past the query
const phraseSlack = 4

// Match is a phrase of consecutive words whose text starts with the query
type Match struct {
	Text       string  `json:"text"`
	Page       int     `json:"page"`
	Start      int     `json:"start"`
	Words      int     `json:"words"`
	Confidence float64 `json:"confidence"`
	Exact      bool    `json:"exact"`
}

// walkPhrases grows a phrase one word at a time from words[start], staying on the line
// of the first word, and calls fn with the original and normalized phrase text. The
// walk stops when fn returns false or after maxWords words.
func walkPhrases(words []Word, normalized []string, start, maxWords int,
	fn func(end int, text, phrase string, confidence float64) bool,
) {
	var text, phrase strings.Builder
	confidence := 0.0
	for j := start; j < len(words) && j-start < maxWords; j++ {
		if words[j].Page != words[start].Page || words[j].Line != words[start].Line {
			return
		}
		if normalized[j] == "" {
			continue
		}
		if phrase.Len() > 0 {
			text.WriteByte(' ')
			phrase.WriteByte(' ')
		}
		text.WriteString(words[j].Text)
		phrase.WriteString(normalized[j])
		confidence += words[j].Confidence

		if !fn(j, text.String(), phrase.String(), confidence/float64(j-start+1)) {
			return
		}
	}
}

func normalizeWords(words []Word) []string {
	out := make([]string, len(words))
	for i, w := range words {
		out[i] = Normalize(w.Text)
	}
	return out
}

// FindOcrMatches returns the phrases of words whose normalized text starts with the
// normalized query. Phrases never cross a line or page. Phrases with the same text are
// reported once. Results are ordered exact matches first, then by fewer words, higher
// mean confidence and earlier position. A limit of zero or less returns every match.
func FindOcrMatches(words []Word, query string, limit int) []Match {
	nq := Normalize(query)
	if nq == "" {
		return nil
	}
	maxWords := len(strings.Fields(nq)) + phraseSlack
	normalized := normalizeWords(words)

	best := make(map[string]Match)
	for i := range words {
		if normalized[i] == "" {
			continue
		}
		walkPhrases(words, normalized, i, maxWords, func(end int, text, phrase string, confidence float64) bool {
			if !strings.HasPrefix(phrase, nq) {
				// keep growing only while the phrase is still a prefix of the query
				return strings.HasPrefix(nq, phrase)
			}
			m := Match{
				Text:       text,
				Page:       words[i].Page,
				Start:      i,
				Words:      end - i + 1,
				Confidence: confidence,
				Exact:      phrase == nq,
			}
			if prev, ok := best[phrase]; !ok || m.Confidence > prev.Confidence {
				best[phrase] = m
			}
			return true
		})
	}

	matches := make([]Match, 0, len(best))
	for _, m := range best {
		matches = append(matches, m)
	}
	sort.Slice(matches, func(a, b int) bool {
		ma, mb := matches[a], matches[b]
		if ma.Exact != mb.Exact {
			return ma.Exact
		}
		if ma.Words != mb.Words {
			return ma.Words < mb.Words
		}
		if ma.Confidence != mb.Confidence {
			return ma.Confidence > mb.Confidence
		}
		return ma.Start < mb.Start
	})

	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}

// FindSingleTypeaheadMatch completes query from the recognized text. For every place
// the query occurs, the completion is the shortest phrase that extends past the query
// and ends on a word boundary. A suggestion is made only when every occurrence yields
// the same completion. An occurrence that cannot be extended counts as the query itself,
// which makes the suggestion ambiguous.
func FindSingleTypeaheadMatch(words []Word, query string) (string, bool) {
	nq := Normalize(query)
	if nq == "" {
		return "", false
	}
	maxWords := len(strings.Fields(nq)) + phraseSlack
	normalized := normalizeWords(words)

	completions := make(map[string]string)
	for i := range words {
		if normalized[i] == "" {
			continue
		}
		found := false
		var completion, completionText string
		walkPhrases(words, normalized, i, maxWords, func(_ int, text, phrase string, _ float64) bool {
			if !strings.HasPrefix(phrase, nq) {
				return strings.HasPrefix(nq, phrase)
			}
			found = true
			completion, completionText = phrase, text
			return phrase == nq
		})
		if !found {
			continue
		}
		if _, ok := completions[completion]; !ok {
			completions[completion] = completionText
		}
	}

	if len(completions) != 1 {
		return "", false
	}
	for completion, text := range completions {
		if completion != nq {
			return text, true
		}
	}
	return "", false
}
