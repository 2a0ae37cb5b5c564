package ocr

import (
	"regexp"
	"strings"

	"github.com/Veraticus/dossier/internal/model"
)

const maxDetailLength = 80

var (
	organizerPattern = regexp.MustCompile(`(?i)\b(?:organi[sz]ed|hosted|sponsored|presented|conducted|spearheaded)\s+by\s*:?\s*(?:the\s+)?([^\n.,;:!?]+)`)

	placePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(?:venue|location|place)\s*:\s*([^\n.;]+)`),
		regexp.MustCompile(`(?i)\bheld\s+(?:at|in)\s+(?:the\s+)?([^\n.,;]+)`),
	}

	month        = `(?:jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|june?|july?|aug(?:ust)?|sep(?:t(?:ember)?)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?)`
	datePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(` + month + `\.?\s+\d{1,2}(?:\s*[-–]\s*\d{1,2})?,?\s+\d{4})\b`),
		regexp.MustCompile(`(?i)\b(\d{1,2}\s+` + month + `\.?,?\s+\d{4})\b`),
		regexp.MustCompile(`\b(\d{4}-\d{2}-\d{2})\b`),
		regexp.MustCompile(`\b(\d{1,2}/\d{1,2}/\d{2,4})\b`),
	}
)

// ExtractEventDetails recovers organizer, place and date from OCR text. Any
// field that cannot be found holds model.Unspecified.
func ExtractEventDetails(text string) model.EventDetails {
	details := model.UnspecifiedDetails()
	if strings.TrimSpace(text) == "" {
		return details
	}

	if org := extractOrganizer(text); org != "" {
		details.Organizer = org
	}
	if place := firstCapture(text, placePatterns); place != "" {
		details.Place = place
	}
	if date := firstCapture(text, datePatterns); date != "" {
		details.Date = date
	}

	return details
}

func extractOrganizer(text string) string {
	m := organizerPattern.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return cleanDetail(m[1])
}

func firstCapture(text string, patterns []*regexp.Regexp) string {
	for _, re := range patterns {
		if m := re.FindStringSubmatch(text); m != nil {
			if v := cleanDetail(m[1]); v != "" {
				return v
			}
		}
	}
	return ""
}

func cleanDetail(s string) string {
	s = strings.TrimSpace(whitespaceRun.ReplaceAllString(s, " "))
	return strings.TrimSpace(truncate(s, maxDetailLength))
}
