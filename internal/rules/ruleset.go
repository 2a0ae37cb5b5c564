// Package rules classifies documents by scoring their filename and extracted
// text against a fixed table of category rules.
package rules

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/Veraticus/dossier/internal/model"
)

// ErrInvalidRule is returned when a rule table cannot be compiled.
var ErrInvalidRule = errors.New("invalid category rule")

// Scoring weights.
const (
	filePatternPoints     = 10
	keywordFilenamePoints = 8
	keywordContentPoints  = 5
	datePatternPoints     = 3

	// MinConfidence is the lowest rule confidence accepted before falling
	// back to the extension table.
	MinConfidence = 0.3
	// FallbackConfidence is reported for extension-table results.
	FallbackConfidence = 0.1
)

// FallbackTable maps file extensions (lower case, no dot) to a generic
// category. Default is used for empty or unknown extensions.
type FallbackTable struct {
	Extensions map[string]string `yaml:"extensions"`
	Default    string            `yaml:"default"`
}

// Lookup returns the fallback category for a filename.
func (f FallbackTable) Lookup(filename string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	if ext == "" {
		return f.Default
	}
	if category, ok := f.Extensions[ext]; ok {
		return category
	}
	return f.Default
}

func (f FallbackTable) clone() FallbackTable {
	exts := make(map[string]string, len(f.Extensions))
	for ext, category := range f.Extensions {
		exts[strings.TrimPrefix(strings.ToLower(ext), ".")] = category
	}
	return FallbackTable{Extensions: exts, Default: f.Default}
}

type compiledRule struct {
	name         string
	filePatterns []*regexp.Regexp
	keywords     []*regexp.Regexp
	datePatterns []*regexp.Regexp
	priority     int
}

// RuleSet is an immutable, compiled rule table. It is safe for concurrent use.
type RuleSet struct {
	fallback FallbackTable
	source   []model.CategoryRule
	rules    []compiledRule
}

// NewRuleSet compiles the rules in the given order. Iteration order matters:
// on equal weighted scores the earlier rule wins.
func NewRuleSet(rules []model.CategoryRule, fallback FallbackTable) (*RuleSet, error) {
	if strings.TrimSpace(fallback.Default) == "" {
		return nil, fmt.Errorf("%w: fallback table needs a default category", ErrInvalidRule)
	}

	compiled := make([]compiledRule, 0, len(rules))
	seen := make(map[string]struct{}, len(rules))

	for _, r := range rules {
		if strings.TrimSpace(r.Name) == "" {
			return nil, fmt.Errorf("%w: rule without a name", ErrInvalidRule)
		}
		if _, dup := seen[r.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate rule %q", ErrInvalidRule, r.Name)
		}
		seen[r.Name] = struct{}{}

		if r.Priority <= 0 {
			return nil, fmt.Errorf("%w: rule %q has priority %d, must be positive", ErrInvalidRule, r.Name, r.Priority)
		}

		cr := compiledRule{name: r.Name, priority: r.Priority}

		var err error
		if cr.filePatterns, err = compilePatterns(r.Name, r.FilePatterns); err != nil {
			return nil, err
		}
		if cr.datePatterns, err = compilePatterns(r.Name, r.DatePatterns); err != nil {
			return nil, err
		}

		for _, kw := range r.Keywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw == "" {
				continue
			}
			cr.keywords = append(cr.keywords, regexp.MustCompile(`\b`+regexp.QuoteMeta(kw)+`\b`))
		}

		compiled = append(compiled, cr)
	}

	return &RuleSet{
		rules:    compiled,
		fallback: fallback.clone(),
		source:   cloneRules(rules),
	}, nil
}

func compilePatterns(ruleName string, patterns []string) ([]*regexp.Regexp, error) {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		if !strings.HasPrefix(p, "(?i)") {
			p = "(?i)" + p
		}
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to compile pattern for %s: %w", ErrInvalidRule, ruleName, err)
		}
		out = append(out, re)
	}
	return out, nil
}

// Rules returns a copy of the rule definitions in iteration order.
func (s *RuleSet) Rules() []model.CategoryRule {
	return cloneRules(s.source)
}

// Fallback returns a copy of the extension fallback table.
func (s *RuleSet) Fallback() FallbackTable {
	return s.fallback.clone()
}

// Len returns the number of compiled rules.
func (s *RuleSet) Len() int {
	return len(s.rules)
}

func cloneRules(rules []model.CategoryRule) []model.CategoryRule {
	out := make([]model.CategoryRule, len(rules))
	for i, r := range rules {
		out[i] = model.CategoryRule{
			Name:         r.Name,
			Keywords:     append([]string(nil), r.Keywords...),
			FilePatterns: append([]string(nil), r.FilePatterns...),
			DatePatterns: append([]string(nil), r.DatePatterns...),
			Priority:     r.Priority,
		}
	}
	return out
}
