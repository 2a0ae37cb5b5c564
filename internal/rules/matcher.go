package rules

import (
	"context"
	"fmt"
	"strings"

	"github.com/Veraticus/dossier/internal/model"
)

// Matcher picks the best category rule for a document.
type Matcher struct {
	set *RuleSet
}

// NewMatcher creates a matcher over a compiled rule set.
func NewMatcher(set *RuleSet) *Matcher {
	return &Matcher{set: set}
}

// RuleSet returns the rule table the matcher scores against.
func (m *Matcher) RuleSet() *RuleSet {
	return m.set
}

// Classify scores filename and content against every rule and returns the
// strongest weighted match, or the extension fallback when nothing clears
// MinConfidence.
func (m *Matcher) Classify(filename, content string) model.ClassificationResult {
	name := strings.ToLower(filename)
	body := strings.ToLower(content)

	var (
		best      *compiledRule
		bestScore float64
	)

	for i := range m.set.rules {
		rule := &m.set.rules[i]
		weighted := rawScore(rule, name, body) / float64(rule.priority)
		// Strictly greater: the first rule seen keeps a tie.
		if weighted > bestScore {
			best = rule
			bestScore = weighted
		}
	}

	if best != nil {
		confidence := min(bestScore/10, 1)
		if confidence >= MinConfidence {
			return model.ClassificationResult{
				Category:   best.name,
				Score:      bestScore,
				Confidence: confidence,
			}
		}
	}

	return model.ClassificationResult{
		Category:   m.set.fallback.Lookup(name),
		Score:      bestScore,
		Confidence: FallbackConfidence,
		Fallback:   true,
	}
}

func rawScore(rule *compiledRule, filename, content string) float64 {
	var score float64

	for _, re := range rule.filePatterns {
		if re.MatchString(filename) {
			score += filePatternPoints
		}
	}

	for _, re := range rule.keywords {
		if re.MatchString(filename) {
			score += keywordFilenamePoints
		}
		if content != "" && re.MatchString(content) {
			score += keywordContentPoints
		}
	}

	for _, re := range rule.datePatterns {
		if re.MatchString(filename) {
			score += datePatternPoints
		}
	}

	return score
}

// Input is one document to classify in a batch.
type Input struct {
	ID       string
	Filename string
	Content  string
}

// ClassifyBatch classifies multiple documents, stopping early if the context
// is canceled.
func (m *Matcher) ClassifyBatch(ctx context.Context, inputs []Input) (map[string]model.ClassificationResult, error) {
	results := make(map[string]model.ClassificationResult, len(inputs))

	for _, in := range inputs {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("classify batch interrupted at %s: %w", in.ID, ctx.Err())
		default:
			results[in.ID] = m.Classify(in.Filename, in.Content)
		}
	}

	return results, nil
}
