package testutil

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/Veraticus/dossier/internal/model"
)

// ItemBuilder assembles model.Item values for tests with sensible defaults.
type ItemBuilder struct {
	item model.Item
}

// NewItem starts a document item named "Untitled" in the Documents category.
func NewItem() *ItemBuilder {
	return &ItemBuilder{item: model.Item{
		Type:     model.ItemDocument,
		Name:     "Untitled",
		Filename: "untitled.pdf",
		Category: "Documents",
	}}
}

// Document marks the item as a document.
func (b *ItemBuilder) Document() *ItemBuilder {
	b.item.Type = model.ItemDocument
	return b
}

// Event marks the item as an event.
func (b *ItemBuilder) Event() *ItemBuilder {
	b.item.Type = model.ItemEvent
	return b
}

// Named sets the name and derives a filename from it.
func (b *ItemBuilder) Named(name string) *ItemBuilder {
	b.item.Name = name
	ext := filepath.Ext(b.item.Filename)
	b.item.Filename = strings.ReplaceAll(strings.ToLower(name), " ", "_") + ext
	return b
}

// InCategory sets the rule-matcher category.
func (b *ItemBuilder) InCategory(category string) *ItemBuilder {
	b.item.Category = category
	return b
}

// WithText sets the extracted text.
func (b *ItemBuilder) WithText(text string) *ItemBuilder {
	b.item.ExtractedText = text
	return b
}

// CreatedAt fixes the creation time.
func (b *ItemBuilder) CreatedAt(t time.Time) *ItemBuilder {
	b.item.CreatedAt = t
	return b
}

// Build returns the item.
func (b *ItemBuilder) Build() model.Item {
	return b.item
}

// EvidenceSet is a small mixed set of documents and events touching several
// default award criteria.
func EvidenceSet() []model.Item {
	return []model.Item{
		NewItem().Named("MOU Kyoto University").InCategory("MOUs & MOAs").
			WithText("Memorandum of Understanding covering faculty exchange").Build(),
		NewItem().Named("Study Abroad Report").InCategory("Reports").
			WithText("Outcomes of the study abroad program and student exchange").Build(),
		NewItem().Event().Named("ASEAN Cultural Night").InCategory("Events & Activities").
			WithText("An intercultural celebration with ASEAN delegates").Build(),
		NewItem().Named("Canteen Menu").WithText("Lunch specials for the week").Build(),
	}
}
