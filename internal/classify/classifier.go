// Package classify suggests a class for documents that have not been classified yet,
// using keyword and pattern rules declared per class.
package classify

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/a3tai/mcp-idp-review/internal/ocr"
)

const (
	// DefaultMinConfidence is the score a class needs before it is suggested
	DefaultMinConfidence = 0.3

	keywordConfidence = 0.1
	patternConfidence = 0.15
)

// Rule describes how to recognize documents of one class
type Rule struct {
	Name     string   `json:"name" yaml:"name"`
	ClassID  string   `json:"class" yaml:"class"`
	Keywords []string `json:"keywords,omitempty" yaml:"keywords,omitempty"`
	Patterns []string `json:"patterns,omitempty" yaml:"patterns,omitempty"`
	Weight   float64  `json:"weight,omitempty" yaml:"weight,omitempty"`
}

// Reason explains a contribution to a suggestion
type Reason struct {
	Rule       string  `json:"rule"`
	Category   string  `json:"category"`
	Evidence   string  `json:"evidence"`
	Confidence float64 `json:"confidence"`
}

// Suggestion is the proposed class for a document
type Suggestion struct {
	ClassID      string             `json:"class"`
	Confidence   float64            `json:"confidence"`
	Reasons      []Reason           `json:"reasons"`
	Alternatives map[string]float64 `json:"alternatives,omitempty"`
}

type compiledRule struct {
	Rule
	keywords []string
	patterns []*regexp.Regexp
}

// Classifier scores document text against a fixed rule set
type Classifier struct {
	rules         []compiledRule
	minConfidence float64
	logger        *zap.Logger
}

// NewClassifier compiles rules. Invalid patterns are an error so that a broken manifest
// is reported when the batch is loaded.
func NewClassifier(rules []Rule, minConfidence float64, logger *zap.Logger) (*Classifier, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if minConfidence <= 0 {
		minConfidence = DefaultMinConfidence
	}

	c := &Classifier{minConfidence: minConfidence, logger: logger}
	for _, r := range rules {
		if r.ClassID == "" {
			return nil, fmt.Errorf("rule %q has no class", r.Name)
		}
		if r.Weight <= 0 {
			r.Weight = 1
		}
		if r.Name == "" {
			r.Name = r.ClassID
		}
		cr := compiledRule{Rule: r}
		for _, kw := range r.Keywords {
			if n := ocr.Normalize(kw); n != "" {
				cr.keywords = append(cr.keywords, n)
			}
		}
		for _, p := range r.Patterns {
			re, err := regexp.Compile("(?i)" + p)
			if err != nil {
				return nil, fmt.Errorf("rule %q: invalid pattern %q: %w", r.Name, p, err)
			}
			cr.patterns = append(cr.patterns, re)
		}
		c.rules = append(c.rules, cr)
	}
	return c, nil
}

// RuleCount returns the number of rules
func (c *Classifier) RuleCount() int {
	return len(c.rules)
}

// Classify scores text against every rule. It returns nil when no class reaches the
// minimum confidence.
func (c *Classifier) Classify(ctx context.Context, text string) (*Suggestion, error) {
	normalized := ocr.Normalize(text)

	scores := make(map[string]float64)
	reasons := make(map[string][]Reason)
	for _, rule := range c.rules {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		confidence, ruleReasons := c.evaluateRule(rule, text, normalized)
		if confidence == 0 {
			continue
		}
		scores[rule.ClassID] += confidence * rule.Weight
		reasons[rule.ClassID] = append(reasons[rule.ClassID], ruleReasons...)
	}

	classID, confidence := c.best(scores)
	if classID == "" {
		c.logger.Debug("no class suggestion", zap.Float64("best_score", confidence))
		return nil, nil
	}

	alternatives := make(map[string]float64)
	for id, score := range scores {
		if id != classID {
			alternatives[id] = min(score, 1.0)
		}
	}

	return &Suggestion{
		ClassID:      classID,
		Confidence:   confidence,
		Reasons:      reasons[classID],
		Alternatives: alternatives,
	}, nil
}

func (c *Classifier) evaluateRule(rule compiledRule, text, normalized string) (float64, []Reason) {
	var confidence float64
	var reasons []Reason

	for _, kw := range rule.keywords {
		count := strings.Count(normalized, kw)
		if count == 0 {
			continue
		}
		confidence += keywordConfidence * float64(count)
		reasons = append(reasons, Reason{
			Rule:       rule.Name,
			Category:   "keyword",
			Evidence:   fmt.Sprintf("Found keyword '%s' %d times", kw, count),
			Confidence: keywordConfidence * float64(count),
		})
	}

	for _, re := range rule.patterns {
		matches := re.FindAllString(text, -1)
		if len(matches) == 0 {
			continue
		}
		confidence += patternConfidence * float64(len(matches))
		reasons = append(reasons, Reason{
			Rule:       rule.Name,
			Category:   "pattern",
			Evidence:   fmt.Sprintf("Pattern '%s' matched %d times", re.String(), len(matches)),
			Confidence: patternConfidence * float64(len(matches)),
		})
	}

	return confidence, reasons
}

// best returns the highest scoring class, capped to 1.0, or "" when it stays below the
// minimum confidence. Ties go to the lexically smaller class id.
func (c *Classifier) best(scores map[string]float64) (string, float64) {
	ids := make([]string, 0, len(scores))
	for id := range scores {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var bestID string
	var bestScore float64
	for _, id := range ids {
		if scores[id] > bestScore {
			bestID, bestScore = id, scores[id]
		}
	}
	bestScore = min(bestScore, 1.0)

	if bestScore < c.minConfidence {
		return "", bestScore
	}
	return bestID, bestScore
}
