package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/dossier/internal/model"
)

func zeroRecord(key string, criteria ...string) model.AwardReadiness {
	return model.AwardReadiness{
		AwardKey:            key,
		SatisfiedCriteria:   []string{},
		UnsatisfiedCriteria: criteria,
		Threshold:           5,
		LastCalculated:      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestSQLiteStorage_UpsertReadinessIsIdempotent(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	records := []model.AwardReadiness{
		zeroRecord("leadership", "strategic plan"),
		zeroRecord("regional", "asean"),
	}

	n, err := store.UpsertReadiness(ctx, records)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = store.UpsertReadiness(ctx, records)
	require.NoError(t, err)
	assert.Zero(t, n)

	// Existing rows are not overwritten by an upsert.
	computed := records[0]
	computed.TotalDocuments, computed.TotalItems = 1, 1
	require.NoError(t, store.SaveReadiness(ctx, []model.AwardReadiness{computed, records[1]}))
	_, err = store.UpsertReadiness(ctx, records)
	require.NoError(t, err)

	got, err := store.GetReadiness(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 1, got[0].TotalItems)
}

func TestSQLiteStorage_SaveReadinessRoundTrip(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	calculated := time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)
	record := model.AwardReadiness{
		AwardKey:            "education",
		SatisfiedCriteria:   []string{"student exchange", "study abroad"},
		UnsatisfiedCriteria: []string{"joint degree"},
		TotalDocuments:      4,
		TotalEvents:         2,
		TotalItems:          6,
		Threshold:           5,
		ReadinessPercentage: 100,
		IsReady:             true,
		LastCalculated:      calculated,
	}
	require.NoError(t, store.SaveReadiness(ctx, []model.AwardReadiness{record, zeroRecord("citizenship", "intercultural")}))

	got, err := store.GetReadiness(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)

	// Ordered by award key.
	assert.Equal(t, "citizenship", got[0].AwardKey)
	assert.Equal(t, []string{}, got[0].SatisfiedCriteria)

	edu := got[1]
	assert.True(t, calculated.Equal(edu.LastCalculated))
	edu.LastCalculated = calculated
	assert.Equal(t, record, edu)
}

func TestSQLiteStorage_SaveReadinessPrunesStaleAwards(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, store.SaveReadiness(ctx, []model.AwardReadiness{
		zeroRecord("leadership", "a"),
		zeroRecord("retired", "b"),
	}))
	require.NoError(t, store.SaveReadiness(ctx, []model.AwardReadiness{zeroRecord("leadership", "a")}))

	got, err := store.GetReadiness(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "leadership", got[0].AwardKey)
}

func TestSQLiteStorage_ResetReadiness(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	ready := zeroRecord("regional", "asean")
	ready.SatisfiedCriteria = []string{"asean"}
	ready.UnsatisfiedCriteria = []string{}
	ready.TotalEvents, ready.TotalItems = 5, 5
	ready.ReadinessPercentage, ready.IsReady = 100, true
	require.NoError(t, store.SaveReadiness(ctx, []model.AwardReadiness{ready}))

	require.NoError(t, store.ResetReadiness(ctx, []model.AwardReadiness{zeroRecord("regional", "asean")}))

	got, err := store.GetReadiness(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Zero(t, got[0].TotalItems)
	assert.False(t, got[0].IsReady)
	assert.Equal(t, []string{"asean"}, got[0].UnsatisfiedCriteria)
}

func TestSQLiteStorage_ReadinessValidation(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	inconsistent := zeroRecord("leadership", "a")
	inconsistent.TotalDocuments = 2

	tests := []struct {
		name    string
		records []model.AwardReadiness
		want    error
	}{
		{name: "empty", want: ErrEmptySlice},
		{name: "missing key", records: []model.AwardReadiness{zeroRecord("", "a")}, want: ErrInvalidReadiness},
		{name: "duplicate key", records: []model.AwardReadiness{zeroRecord("x", "a"), zeroRecord("x", "a")}, want: ErrInvalidReadiness},
		{name: "totals disagree", records: []model.AwardReadiness{inconsistent}, want: ErrInvalidReadiness},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, store.SaveReadiness(ctx, tt.records), tt.want)
			_, err := store.UpsertReadiness(ctx, tt.records)
			assert.ErrorIs(t, err, tt.want)
			assert.ErrorIs(t, store.ResetReadiness(ctx, tt.records), tt.want)
		})
	}

	got, err := store.GetReadiness(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
}
