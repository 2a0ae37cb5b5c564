package testutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/dossier/internal/model"
	"github.com/Veraticus/dossier/internal/service"
)

func TestSetupTestDBWithOptions(t *testing.T) {
	db := SetupTestDBWithOptions(t, TestDBOptions{Items: EvidenceSet()})

	counts, err := db.Storage.CountItems(context.Background())
	require.NoError(t, err)
	assert.Equal(t, service.ItemCounts{Documents: 3, Events: 1}, counts)
}

func TestItemBuilder(t *testing.T) {
	item := NewItem().Event().Named("Leadership Summit").InCategory("Events & Activities").WithText("summit").Build()

	assert.Equal(t, model.ItemEvent, item.Type)
	assert.Equal(t, "leadership_summit.pdf", item.Filename)
	assert.Equal(t, "Events & Activities", item.Category)
	assert.Equal(t, "summit", item.ExtractedText)
}
