package cli

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Veraticus/dossier/internal/model"
	"github.com/Veraticus/dossier/internal/service"
)

func TestRenderClassification(t *testing.T) {
	out := RenderClassification("mou_agreement.pdf", model.ClassificationResult{
		Category:   "MOUs & MOAs",
		Score:      20,
		Confidence: 1,
	})
	assert.Contains(t, out, "mou_agreement.pdf")
	assert.Contains(t, out, "MOUs & MOAs")
	assert.Contains(t, out, "1.00 (rule match)")

	out = RenderClassification("randomfile.xyz", model.ClassificationResult{
		Category:   "Others",
		Confidence: 0.1,
		Fallback:   true,
	})
	assert.Contains(t, out, "0.10 (extension fallback)")
}

func TestRenderExtracted(t *testing.T) {
	event := RenderExtracted(model.ExtractedItem{
		Title:       "ASEAN Youth Summit",
		Description: "An academic gathering.",
		Category:    model.CategoryEvent,
		EventDetails: model.EventDetails{
			Organizer: "Alumni Association",
			Place:     model.Unspecified,
			Date:      "2024-03-15",
		},
		OCRConfidence: 91,
	})
	assert.Contains(t, event, "ASEAN Youth Summit")
	assert.Contains(t, event, "Alumni Association")
	assert.Contains(t, event, "Not specified")
	assert.Contains(t, event, "OCR confidence: 91%")

	activity := RenderExtracted(model.ExtractedItem{
		Title:        "Tree Planting",
		Description:  "A community outreach activity.",
		Category:     model.CategoryActivity,
		EventDetails: model.UnspecifiedDetails(),
	})
	assert.Contains(t, activity, "activity")
	assert.NotContains(t, activity, "Organizer")
	assert.NotContains(t, activity, "OCR confidence")
}

func TestRenderReadiness(t *testing.T) {
	awards := []model.Award{
		{Key: "leadership", Name: "Leadership Award", Criteria: []string{"strategic plan", "faculty exchange"}},
		{Key: "regional", Name: "Regional Award", Criteria: []string{"asean"}},
	}
	records := []model.AwardReadiness{
		{
			AwardKey:            "regional",
			TotalEvents:         5,
			TotalItems:          5,
			SatisfiedCriteria:   []string{"asean"},
			UnsatisfiedCriteria: []string{},
			Threshold:           5,
			ReadinessPercentage: 100,
			IsReady:             true,
		},
		{
			AwardKey:            "leadership",
			TotalDocuments:      2,
			TotalItems:          2,
			SatisfiedCriteria:   []string{"strategic plan"},
			UnsatisfiedCriteria: []string{"faculty exchange"},
			Threshold:           5,
			ReadinessPercentage: 40,
		},
		{AwardKey: "legacy", Threshold: 5},
	}

	out := RenderReadiness(records, awards)

	leadership := strings.Index(out, "Leadership Award")
	regional := strings.Index(out, "Regional Award")
	legacy := strings.Index(out, "legacy")
	assert.Positive(t, leadership)
	assert.Greater(t, regional, leadership, "awards follow criteria order")
	assert.Greater(t, legacy, regional, "unknown keys come last")

	assert.Contains(t, out, "40%")
	assert.Contains(t, out, "100%")
	assert.Contains(t, out, "1/2")
	assert.Contains(t, out, "Missing evidence")
	assert.Contains(t, out, "Leadership Award: faculty exchange")
	assert.NotContains(t, out, "Regional Award: ")

	assert.Contains(t, RenderReadiness(nil, awards), "dossier readiness init")
}

func TestBar(t *testing.T) {
	tests := []struct {
		name       string
		percentage float64
		filled     int
	}{
		{"empty", 0, 0},
		{"half", 50, 10},
		{"full", 100, 20},
		{"clamped high", 250, 20},
		{"clamped low", -5, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bar := Bar(tt.percentage)
			assert.Equal(t, tt.filled, strings.Count(bar, "█"))
			assert.Equal(t, barWidth, strings.Count(bar, "█")+strings.Count(bar, "░"))
		})
	}
}

func TestRenderIngestStats(t *testing.T) {
	out := RenderIngestStats(service.IngestStats{Documents: 3, Events: 2, Fallbacks: 1, Duration: 1500 * time.Millisecond})
	assert.Contains(t, out, "Documents: 3")
	assert.Contains(t, out, "Events:    2")
	assert.Contains(t, out, "1.5s")
	assert.NotContains(t, out, "Failed")

	out = RenderIngestStats(service.IngestStats{Failed: 2})
	assert.Contains(t, out, "Failed: 2")
}

func TestRenderCriteria(t *testing.T) {
	awards := []model.Award{
		{Key: "regional", Name: "Regional Award", Criteria: []string{"asean", "regional office"}},
	}
	out := RenderCriteria(awards, func(string) int { return 3 })
	assert.Contains(t, out, "Regional Award")
	assert.Contains(t, out, "threshold 3")
	assert.Contains(t, out, "• regional office")
	assert.Contains(t, out, "1 awards, 2 criteria")
}
