package ocr

import (
	"strings"

	"github.com/Veraticus/dossier/internal/model"
)

const (
	// MaxDescriptionLength is the rune limit for generated descriptions.
	MaxDescriptionLength = 200

	eventTopicLimit    = 2
	activityTopicLimit = 3
)

// GenerateDescription writes a short description for the given text. The
// base sentence comes from the first template whose trigger appears in the
// text; organizer, topics and a completion note are appended when present.
func (a *Analyzer) GenerateDescription(text string, category model.ContentCategory) string {
	if strings.TrimSpace(text) == "" {
		if category == model.CategoryEvent {
			return a.vocab.EmptyEvent
		}
		return a.vocab.EmptyActivity
	}

	lower := strings.ToLower(text)

	templates, generic, topicLimit, completionNote := a.activityTemplates, a.vocab.GenericActivity, activityTopicLimit, a.vocab.ActivityCompletionNote
	if category == model.CategoryEvent {
		templates, generic, topicLimit, completionNote = a.eventTemplates, a.vocab.GenericEvent, eventTopicLimit, a.vocab.EventCompletionNote
	}

	var b strings.Builder
	b.WriteString(selectTemplate(lower, templates, generic))

	if org := extractOrganizer(text); org != "" && org != model.Unspecified {
		b.WriteString(" Organized by ")
		b.WriteString(org)
		b.WriteString(".")
	}

	if topics := a.matchTopics(lower, topicLimit); len(topics) > 0 {
		b.WriteString(" Topics covered include ")
		b.WriteString(joinTopics(topics))
		b.WriteString(".")
	}

	if completionNote != "" && containsAny(lower, a.completion) {
		b.WriteString(" ")
		b.WriteString(completionNote)
	}

	return truncate(b.String(), MaxDescriptionLength)
}

func selectTemplate(lower string, templates []template, generic string) string {
	for _, t := range templates {
		if containsAny(lower, t.triggers) {
			return t.sentence
		}
	}
	return generic
}

func (a *Analyzer) matchTopics(lower string, limit int) []string {
	var found []string
	for _, topic := range a.topics {
		if len(found) == limit {
			break
		}
		if strings.Contains(lower, topic) {
			found = append(found, topic)
		}
	}
	return found
}

func joinTopics(topics []string) string {
	if len(topics) == 2 {
		return topics[0] + " and " + topics[1]
	}
	return strings.Join(topics, ", ")
}

func containsAny(lower string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(lower, n) {
			return true
		}
	}
	return false
}
