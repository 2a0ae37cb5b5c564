// Package ocr turns raw, noisy OCR output into a structured item: an event or
// activity verdict, a human-readable title, a short description and the event
// details that could be recovered.
//
// Every function is total. Empty or garbled text always produces a defined
// fallback value rather than an error.
package ocr

import (
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/Veraticus/dossier/internal/model"
)

// ErrInvalidVocabulary is returned when analyzer configuration is unusable.
var ErrInvalidVocabulary = errors.New("invalid analyzer vocabulary")

// LowConfidence is the OCR confidence (0-100) below which results are logged
// as suspect.
const LowConfidence = 40.0

// Result is the raw output of the external text-recognition step.
type Result struct {
	Text       string
	Confidence float64
}

type term struct {
	text   string
	weight int
}

type template struct {
	sentence string
	triggers []string
}

// Analyzer extracts structured items from OCR text. It is immutable after
// construction and safe for concurrent use.
type Analyzer struct {
	eventTerms        []term
	activityTerms     []term
	titlePatterns     []*regexp.Regexp
	eventTemplates    []template
	activityTemplates []template
	topics            []string
	completion        []string
	vocab             Vocabulary
}

// NewAnalyzer compiles a vocabulary into an analyzer.
func NewAnalyzer(v Vocabulary) (*Analyzer, error) {
	a := &Analyzer{vocab: v}

	var err error
	if a.eventTerms, err = compileTerms("event", v.EventTerms); err != nil {
		return nil, err
	}
	if a.activityTerms, err = compileTerms("activity", v.ActivityTerms); err != nil {
		return nil, err
	}

	for i, p := range v.TitlePatterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("%w: title pattern %d: %w", ErrInvalidVocabulary, i, err)
		}
		if re.NumSubexp() < 1 {
			return nil, fmt.Errorf("%w: title pattern %d has no capturing group", ErrInvalidVocabulary, i)
		}
		a.titlePatterns = append(a.titlePatterns, re)
	}

	a.eventTemplates = compileTemplates(v.EventTemplates)
	a.activityTemplates = compileTemplates(v.ActivityTemplates)
	a.topics = lowerAll(v.Topics)
	a.completion = lowerAll(v.CompletionMarkers)

	for name, s := range map[string]string{
		"generic_event":    v.GenericEvent,
		"generic_activity": v.GenericActivity,
		"empty_event":      v.EmptyEvent,
		"empty_activity":   v.EmptyActivity,
	} {
		if strings.TrimSpace(s) == "" {
			return nil, fmt.Errorf("%w: %s sentence is required", ErrInvalidVocabulary, name)
		}
	}

	return a, nil
}

// NewDefaultAnalyzer builds an analyzer over DefaultVocabulary.
func NewDefaultAnalyzer() (*Analyzer, error) {
	return NewAnalyzer(DefaultVocabulary())
}

func compileTerms(kind string, in []WeightedTerm) ([]term, error) {
	out := make([]term, 0, len(in))
	for _, t := range in {
		text := strings.ToLower(strings.TrimSpace(t.Term))
		if text == "" {
			continue
		}
		if t.Weight <= 0 {
			return nil, fmt.Errorf("%w: %s term %q needs a positive weight", ErrInvalidVocabulary, kind, t.Term)
		}
		out = append(out, term{text: text, weight: t.Weight})
	}
	return out, nil
}

func compileTemplates(in []Template) []template {
	out := make([]template, 0, len(in))
	for _, t := range in {
		out = append(out, template{sentence: t.Sentence, triggers: lowerAll(t.Triggers)})
	}
	return out
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Vocabulary returns the configuration the analyzer was built from.
func (a *Analyzer) Vocabulary() Vocabulary {
	return a.vocab
}

// AnalyzeContent decides whether text describes an event or an activity.
// Terms match as plain substrings; a tie, including no hits at all, is an
// activity.
func (a *Analyzer) AnalyzeContent(text string) model.ContentCategory {
	lower := strings.ToLower(text)
	if sumWeights(lower, a.eventTerms) > sumWeights(lower, a.activityTerms) {
		return model.CategoryEvent
	}
	return model.CategoryActivity
}

func sumWeights(lower string, terms []term) int {
	total := 0
	for _, t := range terms {
		if strings.Contains(lower, t.text) {
			total += t.weight
		}
	}
	return total
}

// Analyze runs the full extraction over one OCR result.
func (a *Analyzer) Analyze(res Result, filename string) model.ExtractedItem {
	text := Normalize(res.Text)

	if text != "" && res.Confidence > 0 && res.Confidence < LowConfidence {
		slog.Debug("Low OCR confidence", "filename", filename, "confidence", res.Confidence)
	}

	category := a.AnalyzeContent(text)

	return model.ExtractedItem{
		Title:         a.ExtractTitle(text, filename),
		Description:   a.GenerateDescription(text, category),
		Category:      category,
		EventDetails:  ExtractEventDetails(text),
		OCRConfidence: res.Confidence,
	}
}

// Normalize applies NFKC folding and line-ending cleanup to OCR output.
// Full-width characters and ligatures become their plain forms.
func Normalize(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.TrimSpace(norm.NFKC.String(text))
}
