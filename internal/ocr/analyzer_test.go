package ocr

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/dossier/internal/model"
)

func newTestAnalyzer(t *testing.T) *Analyzer {
	t.Helper()
	a, err := NewDefaultAnalyzer()
	require.NoError(t, err)
	return a
}

func TestAnalyzer_AnalyzeContent(t *testing.T) {
	a := newTestAnalyzer(t)

	tests := []struct {
		name string
		text string
		want model.ContentCategory
	}{
		{name: "empty text defaults to activity", text: "", want: model.CategoryActivity},
		{name: "event terms dominate", text: "Annual Conference and Seminar Summit", want: model.CategoryEvent},
		{name: "activity terms dominate", text: "Tree planting activity and community service", want: model.CategoryActivity},
		{name: "equal weights resolve to activity", text: "workshop project", want: model.CategoryActivity},
		{name: "matching ignores case", text: "GENERAL ASSEMBLY", want: model.CategoryEvent},
		{name: "substrings count", text: "prevention drive", want: model.CategoryEvent},
		{name: "no known terms", text: "lorem ipsum dolor", want: model.CategoryActivity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, a.AnalyzeContent(tt.text))
		})
	}
}

func TestAnalyzer_Analyze(t *testing.T) {
	a := newTestAnalyzer(t)

	text := "ＡＮＮＵＡＬ Research Conference\r\nOrganized by the College of Engineering\r\nVenue: Main Auditorium\r\nMarch 15, 2024\r\nThe conference concluded with awards for innovation."
	item := a.Analyze(Result{Text: text, Confidence: 87.5}, "scan_0001.jpg")

	assert.Equal(t, "Annual Research Conference", item.Title)
	assert.Equal(t, model.CategoryEvent, item.Category)
	assert.Equal(t, "College of Engineering", item.EventDetails.Organizer)
	assert.Equal(t, "Main Auditorium", item.EventDetails.Place)
	assert.Equal(t, "March 15, 2024", item.EventDetails.Date)
	assert.InDelta(t, 87.5, item.OCRConfidence, 1e-9)
	assert.True(t, strings.HasPrefix(item.Description, "An academic gathering"))
	assert.Contains(t, item.Description, "Organized by College of Engineering.")
	assert.LessOrEqual(t, len([]rune(item.Description)), MaxDescriptionLength)
}

func TestAnalyzer_AnalyzeEmptyText(t *testing.T) {
	a := newTestAnalyzer(t)

	item := a.Analyze(Result{}, "campus_clean-up_drive.png")

	assert.Equal(t, "Campus Clean Up Drive", item.Title)
	assert.Equal(t, model.CategoryActivity, item.Category)
	assert.Equal(t, EmptyActivityDescription, item.Description)
	assert.Equal(t, model.UnspecifiedDetails(), item.EventDetails)
}

func TestNewAnalyzer_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Vocabulary)
		errMsg string
	}{
		{
			name:   "bad title regex",
			mutate: func(v *Vocabulary) { v.TitlePatterns = append(v.TitlePatterns, `([unclosed`) },
			errMsg: "title pattern",
		},
		{
			name:   "title pattern without group",
			mutate: func(v *Vocabulary) { v.TitlePatterns = []string{`^title$`} },
			errMsg: "no capturing group",
		},
		{
			name:   "non-positive weight",
			mutate: func(v *Vocabulary) { v.EventTerms = append(v.EventTerms, WeightedTerm{Term: "gala", Weight: 0}) },
			errMsg: "positive weight",
		},
		{
			name:   "missing generic sentence",
			mutate: func(v *Vocabulary) { v.GenericEvent = "" },
			errMsg: "generic_event",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := DefaultVocabulary()
			tt.mutate(&v)
			a, err := NewAnalyzer(v)
			require.ErrorIs(t, err, ErrInvalidVocabulary)
			assert.Contains(t, err.Error(), tt.errMsg)
			assert.Nil(t, a)
		})
	}
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "Annual Report\nfi", Normalize("  Ａｎｎｕａｌ Report\r\nﬁ  "))
	assert.Equal(t, "", Normalize("\r\n \t"))
}
