package ocr

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Veraticus/dossier/internal/model"
)

func TestExtractEventDetails(t *testing.T) {
	tests := []struct {
		name string
		text string
		want model.EventDetails
	}{
		{
			name: "empty text",
			want: model.UnspecifiedDetails(),
		},
		{
			name: "labeled fields",
			text: "Leadership Summit\nOrganized by: Office of Student Affairs\nVenue: University Gymnasium\nMarch 15, 2024",
			want: model.EventDetails{
				Organizer: "Office of Student Affairs",
				Place:     "University Gymnasium",
				Date:      "March 15, 2024",
			},
		},
		{
			name: "held at phrasing and ISO date",
			text: "The forum, hosted by the Alumni Association, was held at the City Convention Center, Iloilo on 2024-03-15.",
			want: model.EventDetails{
				Organizer: "Alumni Association",
				Place:     "City Convention Center",
				Date:      "2024-03-15",
			},
		},
		{
			name: "day first date only",
			text: "Turnover ceremony, 5 June 2023",
			want: model.EventDetails{
				Organizer: model.Unspecified,
				Place:     model.Unspecified,
				Date:      "5 June 2023",
			},
		},
		{
			name: "slash date",
			text: "Memo dated 03/15/2024",
			want: model.EventDetails{
				Organizer: model.Unspecified,
				Place:     model.Unspecified,
				Date:      "03/15/2024",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractEventDetails(tt.text))
		})
	}
}
