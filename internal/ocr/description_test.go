package ocr

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Veraticus/dossier/internal/model"
)

func TestAnalyzer_GenerateDescription(t *testing.T) {
	a := newTestAnalyzer(t)
	v := DefaultVocabulary()

	tests := []struct {
		name     string
		text     string
		category model.ContentCategory
		want     string
	}{
		{
			name:     "empty event text",
			category: model.CategoryEvent,
			want:     EmptyEventDescription,
		},
		{
			name:     "blank activity text",
			text:     "  \n ",
			category: model.CategoryActivity,
			want:     EmptyActivityDescription,
		},
		{
			name:     "meeting template outranks ceremony",
			text:     "Opening ceremony of the general assembly",
			category: model.CategoryEvent,
			want:     v.EventTemplates[1].Sentence,
		},
		{
			name:     "no trigger uses generic event sentence",
			text:     "Sportsfest opening parade",
			category: model.CategoryEvent,
			want:     v.GenericEvent,
		},
		{
			name:     "exactly two topics are joined with and",
			text:     "An activity on leadership and innovation",
			category: model.CategoryActivity,
			want:     v.GenericActivity + " Topics covered include leadership and innovation.",
		},
		{
			name:     "three topics are comma separated",
			text:     "research on health, education and technology",
			category: model.CategoryActivity,
			want:     v.ActivityTemplates[0].Sentence + " Topics covered include research, education, technology.",
		},
		{
			name:     "events keep at most two topics",
			text:     "Workshop on leadership, innovation and research",
			category: model.CategoryEvent,
			want:     v.EventTemplates[3].Sentence + " Topics covered include leadership and innovation.",
		},
		{
			name:     "organizer and completion note",
			text:     "Coastal clean-up project organized by the Rotary Club of Iloilo. The project was completed on time",
			category: model.CategoryActivity,
			want:     v.ActivityTemplates[3].Sentence + " Organized by Rotary Club of Iloilo. " + v.ActivityCompletionNote,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, a.GenerateDescription(tt.text, tt.category))
		})
	}
}

func TestAnalyzer_GenerateDescriptionTruncates(t *testing.T) {
	a := newTestAnalyzer(t)

	text := "International Conference on Leadership and Sustainability organized by the Office of the Vice President for Research and Extension, " +
		"covering community engagement and regional development. The event was successfully completed with all delegates present."
	assert.Greater(t, len(text), 240)

	got := a.GenerateDescription(text, model.CategoryEvent)

	assert.LessOrEqual(t, len([]rune(got)), MaxDescriptionLength)
	assert.True(t, strings.HasSuffix(got, "..."))
	assert.Len(t, []rune(got), MaxDescriptionLength)
}

func TestJoinTopics(t *testing.T) {
	assert.Equal(t, "a", joinTopics([]string{"a"}))
	assert.Equal(t, "a and b", joinTopics([]string{"a", "b"}))
	assert.Equal(t, "a, b, c", joinTopics([]string{"a", "b", "c"}))
}
