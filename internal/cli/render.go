package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/dossier/internal/model"
	"github.com/Veraticus/dossier/internal/service"
)

const barWidth = 20

// RenderClassification shows the category chosen for one file.
func RenderClassification(filename string, r model.ClassificationResult) string {
	source := "rule match"
	if r.Fallback {
		source = "extension fallback"
	}

	lines := []string{
		BoldStyle.Render(filename),
		fmt.Sprintf("  Category:   %s", InfoStyle.Render(r.Category)),
		fmt.Sprintf("  Confidence: %.2f (%s)", r.Confidence, source),
		SubtleStyle.Render(fmt.Sprintf("  Score:      %.1f", r.Score)),
	}
	return strings.Join(lines, "\n")
}

// RenderExtracted shows analyzer output for one OCR result.
func RenderExtracted(item model.ExtractedItem) string {
	icon := DocIcon
	if item.Category == model.CategoryEvent {
		icon = EventIcon
	}

	lines := []string{
		fmt.Sprintf("Category:    %s %s", icon, item.Category),
		fmt.Sprintf("Description: %s", item.Description),
	}
	if item.Category == model.CategoryEvent {
		lines = append(lines,
			fmt.Sprintf("Organizer:   %s", item.EventDetails.Organizer),
			fmt.Sprintf("Place:       %s", item.EventDetails.Place),
			fmt.Sprintf("Date:        %s", item.EventDetails.Date),
		)
	}
	if item.OCRConfidence > 0 {
		lines = append(lines, SubtleStyle.Render(fmt.Sprintf("OCR confidence: %.0f%%", item.OCRConfidence)))
	}

	return RenderBox(item.Title, strings.Join(lines, "\n"))
}

// RenderReadiness renders one row per award followed by the criteria each
// award still lacks. awards supplies display names and order; records for
// unknown keys are listed after them.
func RenderReadiness(records []model.AwardReadiness, awards []model.Award) string {
	if len(records) == 0 {
		return FormatWarning("No readiness data. Run: dossier readiness init")
	}

	names := make(map[string]string, len(awards))
	order := make([]string, 0, len(awards))
	for _, a := range awards {
		names[a.Key] = a.Name
		order = append(order, a.Key)
	}

	byKey := make(map[string]model.AwardReadiness, len(records))
	for _, r := range records {
		byKey[r.AwardKey] = r
		if _, known := names[r.AwardKey]; !known {
			names[r.AwardKey] = r.AwardKey
			order = append(order, r.AwardKey)
		}
	}

	nameWidth := len("Award")
	for _, key := range order {
		if _, ok := byKey[key]; ok {
			nameWidth = max(nameWidth, lipgloss.Width(names[key]))
		}
	}

	var b strings.Builder
	b.WriteString(FormatTitle("Award Readiness"))
	b.WriteString("\n")
	b.WriteString(TableHeaderStyle.Render(fmt.Sprintf("%-*s  %5s  %4s  %6s  %-*s  %9s", nameWidth, "Award", "Docs", "Evts", "Need", barWidth+6, "Readiness", "Criteria")))
	b.WriteString("\n")

	var gaps []string
	for _, key := range order {
		r, ok := byKey[key]
		if !ok {
			continue
		}

		criteria := len(r.SatisfiedCriteria) + len(r.UnsatisfiedCriteria)
		row := fmt.Sprintf("%-*s  %5d  %4d  %6d  %s %4.0f%%  %4d/%-4d",
			nameWidth, names[key],
			r.TotalDocuments, r.TotalEvents, r.Threshold,
			Bar(r.ReadinessPercentage), r.ReadinessPercentage,
			len(r.SatisfiedCriteria), criteria)

		if r.IsReady {
			row = ReadyStyle.Render(row + " " + SuccessIcon)
		}
		b.WriteString(TableCellStyle.Render(row))
		b.WriteString("\n")

		if len(r.UnsatisfiedCriteria) > 0 {
			gaps = append(gaps, fmt.Sprintf("  %s: %s", names[key], strings.Join(r.UnsatisfiedCriteria, ", ")))
		}
	}

	if len(gaps) > 0 {
		b.WriteString("\n")
		b.WriteString(SubtitleStyle.Render("Missing evidence"))
		b.WriteString("\n")
		b.WriteString(SubtleStyle.Render(strings.Join(gaps, "\n")))
		b.WriteString("\n")
	}

	return b.String()
}

// Bar draws a fixed-width percentage bar.
func Bar(percentage float64) string {
	filled := int(percentage / 100 * barWidth)
	filled = min(max(filled, 0), barWidth)
	return strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
}

// RenderIngestStats summarizes a batch ingest.
func RenderIngestStats(stats service.IngestStats) string {
	lines := []string{
		fmt.Sprintf("%s Documents: %d", DocIcon, stats.Documents),
		fmt.Sprintf("%s Events:    %d", EventIcon, stats.Events),
		fmt.Sprintf("Extension fallbacks: %d", stats.Fallbacks),
	}
	if stats.Failed > 0 {
		lines = append(lines, FormatError(fmt.Sprintf("Failed: %d", stats.Failed)))
	}
	lines = append(lines, SubtleStyle.Render(fmt.Sprintf("Took %s", stats.Duration.Round(time.Millisecond))))

	return RenderBox("Ingest Summary", strings.Join(lines, "\n"))
}

// RenderCriteria lists every award with its criterion phrases.
func RenderCriteria(awards []model.Award, threshold func(key string) int) string {
	var b strings.Builder
	total := 0
	for _, a := range awards {
		total += len(a.Criteria)
		fmt.Fprintf(&b, "%s %s %s\n", AwardIcon, BoldStyle.Render(a.Name),
			SubtleStyle.Render(fmt.Sprintf("(%s, threshold %d)", a.Key, threshold(a.Key))))
		for _, c := range a.Criteria {
			fmt.Fprintf(&b, "    • %s\n", c)
		}
	}
	fmt.Fprintf(&b, "\n%s\n", SubtleStyle.Render(fmt.Sprintf("%d awards, %d criteria", len(awards), total)))
	return b.String()
}
