package model

import (
	"fmt"
	"strings"
	"time"
)

// ItemType distinguishes the two kinds of evidence tracked by the portal.
type ItemType string

// Item type constants.
const (
	ItemDocument ItemType = "document"
	ItemEvent    ItemType = "event"
)

// ParseItemType converts user input into an ItemType.
func ParseItemType(s string) (ItemType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "document", "documents", "doc":
		return ItemDocument, nil
	case "event", "events":
		return ItemEvent, nil
	default:
		return "", fmt.Errorf("unknown item type %q", s)
	}
}

// ContentCategory is the OCR analyzer's verdict on extracted text.
type ContentCategory string

// Content category constants.
const (
	CategoryEvent    ContentCategory = "event"
	CategoryActivity ContentCategory = "activity"
)

// ParseContentCategory accepts singular or plural forms. Anything that is not
// an event is an activity.
func ParseContentCategory(s string) ContentCategory {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "event", "events":
		return CategoryEvent
	default:
		return CategoryActivity
	}
}

// Unspecified is the sentinel stored for event details that could not be
// extracted.
const Unspecified = "Not specified"

// EventDetails holds the who/where/when extracted from an event flyer or report.
type EventDetails struct {
	Organizer string `json:"organizer"`
	Place     string `json:"place"`
	Date      string `json:"date"`
}

// UnspecifiedDetails returns event details with every field set to the sentinel.
func UnspecifiedDetails() EventDetails {
	return EventDetails{
		Organizer: Unspecified,
		Place:     Unspecified,
		Date:      Unspecified,
	}
}

// ExtractedItem is the structured result of analyzing OCR output.
type ExtractedItem struct {
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	Category      ContentCategory `json:"category"`
	EventDetails  EventDetails    `json:"event_details"`
	OCRConfidence float64         `json:"ocr_confidence"`
}

// Item is a stored piece of evidence as seen by the readiness aggregator.
type Item struct {
	CreatedAt     time.Time
	ID            string
	Type          ItemType
	Name          string
	Filename      string
	Category      string
	Title         string
	Description   string
	ExtractedText string
	Details       EventDetails
	Confidence    float64
	OCRConfidence float64
}

// SearchText returns the lower-cased concatenation of every populated text
// field. Empty fields contribute nothing.
func (i Item) SearchText() string {
	parts := make([]string, 0, 6)
	for _, field := range []string{i.Name, i.Filename, i.Category, i.Title, i.Description, i.ExtractedText} {
		if field == "" {
			continue
		}
		parts = append(parts, field)
	}
	return strings.ToLower(strings.Join(parts, " "))
}
