package readiness

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/dossier/internal/model"
)

var fixedTime = time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)

func newTestAggregator(t *testing.T, thresholds Thresholds) *Aggregator {
	t.Helper()
	a, err := NewAggregator(DefaultCriteria(), thresholds, WithClock(func() time.Time { return fixedTime }))
	require.NoError(t, err)
	return a
}

func sampleItems() []model.Item {
	return []model.Item{
		{
			Type:          model.ItemDocument,
			Name:          "MOU with Kyoto University",
			ExtractedText: "Memorandum of Understanding on faculty exchange and student exchange",
		},
		{
			Type:        model.ItemEvent,
			Title:       "ASEAN Intercultural Night",
			Description: "Celebrating global citizenship",
		},
		{
			Type:     model.ItemDocument,
			Filename: "random.pdf",
		},
		{
			Type:          model.ItemEvent,
			ExtractedText: "Capacity building workshop with a new partnership in the region; international partnership signed",
		},
	}
}

func TestAggregator_Recompute(t *testing.T) {
	a := newTestAggregator(t, nil)

	got := a.Recompute(sampleItems())

	want := map[string]model.AwardReadiness{
		AwardLeadership: {
			AwardKey:            AwardLeadership,
			SatisfiedCriteria:   []string{"international partnership", "memorandum of understanding", "faculty exchange"},
			UnsatisfiedCriteria: []string{"strategic plan", "international accreditation"},
			TotalDocuments:      1,
			TotalEvents:         1,
			TotalItems:          2,
			Threshold:           5,
			ReadinessPercentage: 40,
			LastCalculated:      fixedTime,
		},
		AwardEducation: {
			AwardKey:            AwardEducation,
			SatisfiedCriteria:   []string{"student exchange"},
			UnsatisfiedCriteria: []string{"international curriculum", "study abroad", "joint degree", "international students"},
			TotalDocuments:      1,
			TotalItems:          1,
			Threshold:           5,
			ReadinessPercentage: 20,
			LastCalculated:      fixedTime,
		},
		AwardEmerging: {
			AwardKey:            AwardEmerging,
			SatisfiedCriteria:   []string{"new partnership", "capacity building"},
			UnsatisfiedCriteria: []string{"pilot program", "international linkage"},
			TotalEvents:         1,
			TotalItems:          1,
			Threshold:           5,
			ReadinessPercentage: 20,
			LastCalculated:      fixedTime,
		},
		AwardRegional: {
			AwardKey:            AwardRegional,
			SatisfiedCriteria:   []string{"asean"},
			UnsatisfiedCriteria: []string{"regional cooperation", "regional office"},
			TotalEvents:         1,
			TotalItems:          1,
			Threshold:           5,
			ReadinessPercentage: 20,
			LastCalculated:      fixedTime,
		},
		AwardCitizenship: {
			AwardKey:            AwardCitizenship,
			SatisfiedCriteria:   []string{"global citizenship", "intercultural"},
			UnsatisfiedCriteria: []string{"sustainable development goals"},
			TotalEvents:         1,
			TotalItems:          1,
			Threshold:           5,
			ReadinessPercentage: 20,
			LastCalculated:      fixedTime,
		},
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Recompute() mismatch (-want +got):\n%s", diff)
	}
}

func TestAggregator_RecomputeIsIdempotent(t *testing.T) {
	a := newTestAggregator(t, nil)
	items := sampleItems()

	first := a.Recompute(items)
	second := a.Recompute(items)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("second Recompute() drifted (-first +second):\n%s", diff)
	}
	assert.Equal(t, 2, second[AwardLeadership].TotalItems)
}

func TestAggregator_CriteriaPartition(t *testing.T) {
	a := newTestAggregator(t, nil)

	itemSets := map[string][]model.Item{
		"no items":    nil,
		"sample":      sampleItems(),
		"everything":  {{Type: model.ItemDocument, ExtractedText: allDefaultPhrases()}},
		"blank items": {{Type: model.ItemEvent}, {Type: model.ItemDocument}},
	}

	for name, items := range itemSets {
		t.Run(name, func(t *testing.T) {
			result := a.Recompute(items)
			for _, award := range a.Criteria().Awards() {
				r, ok := result[award.Key]
				require.True(t, ok)

				seen := make(map[string]int)
				for _, c := range r.SatisfiedCriteria {
					seen[c]++
				}
				for _, c := range r.UnsatisfiedCriteria {
					seen[c]++
				}
				assert.Len(t, seen, len(award.Criteria), award.Key)
				for _, c := range award.Criteria {
					assert.Equal(t, 1, seen[c], "%s: %s", award.Key, c)
				}
			}
		})
	}
}

func allDefaultPhrases() string {
	var text string
	for _, award := range DefaultAwards() {
		for _, c := range award.Criteria {
			text += c + ". "
		}
	}
	return text
}

func TestAggregator_ThresholdCrossing(t *testing.T) {
	a := newTestAggregator(t, Thresholds{AwardLeadership: 3})

	for n := 0; n <= 5; n++ {
		t.Run(fmt.Sprintf("%d items", n), func(t *testing.T) {
			items := make([]model.Item, n)
			for i := range items {
				items[i] = model.Item{Type: model.ItemDocument, Name: fmt.Sprintf("Strategic Plan %d", i)}
			}

			r := a.Recompute(items)[AwardLeadership]

			assert.Equal(t, n, r.TotalItems)
			assert.Equal(t, n >= 3, r.IsReady)
			assert.InDelta(t, min(100, float64(n)/3*100), r.ReadinessPercentage, 1e-9)
			assert.Equal(t, 3, r.Threshold)
		})
	}
}

func TestAggregator_CaseInsensitiveMatch(t *testing.T) {
	cs, err := NewCriteriaSet([]model.Award{{Key: "asean", Criteria: []string{"ASEAN Summit", "Host City"}}})
	require.NoError(t, err)
	a, err := NewAggregator(cs, nil, WithDefaultThreshold(1))
	require.NoError(t, err)

	r := a.Recompute([]model.Item{{Type: model.ItemEvent, ExtractedText: "asean summit 2024 opening"}})["asean"]

	assert.Equal(t, []string{"ASEAN Summit"}, r.SatisfiedCriteria)
	assert.Equal(t, []string{"Host City"}, r.UnsatisfiedCriteria)
	assert.True(t, r.IsReady)
	assert.InDelta(t, 100.0, r.ReadinessPercentage, 1e-9)
}

func TestAggregator_MultipleItemsSameCriterion(t *testing.T) {
	a := newTestAggregator(t, nil)
	items := []model.Item{
		{Type: model.ItemDocument, Name: "Study abroad guide"},
		{Type: model.ItemEvent, Title: "Study Abroad Fair"},
		{Type: model.ItemEvent, Description: "study abroad orientation"},
	}

	r := a.Recompute(items)[AwardEducation]

	assert.Equal(t, []string{"study abroad"}, r.SatisfiedCriteria)
	assert.Equal(t, 1, r.TotalDocuments)
	assert.Equal(t, 2, r.TotalEvents)
	assert.Equal(t, 3, r.TotalItems)
}

func TestAggregator_Snapshot(t *testing.T) {
	a := newTestAggregator(t, nil)
	assert.Nil(t, a.Snapshot())

	result := a.Recompute(sampleItems())
	snap := a.Snapshot()
	if diff := cmp.Diff(result, snap); diff != "" {
		t.Errorf("Snapshot() mismatch (-recompute +snapshot):\n%s", diff)
	}

	// Mutating the returned map must not leak into the stored snapshot.
	r := snap[AwardLeadership]
	r.SatisfiedCriteria[0] = "mutated"
	snap[AwardLeadership] = r
	assert.Equal(t, "international partnership", a.Snapshot()[AwardLeadership].SatisfiedCriteria[0])
}

func TestAggregator_Reset(t *testing.T) {
	a := newTestAggregator(t, nil)
	a.Recompute(sampleItems())
	require.NotZero(t, a.Snapshot()[AwardLeadership].TotalItems)

	zeroed := a.Reset()
	if diff := cmp.Diff(a.Initial(), zeroed); diff != "" {
		t.Errorf("Reset() mismatch (-initial +reset):\n%s", diff)
	}
	if diff := cmp.Diff(zeroed, a.Snapshot()); diff != "" {
		t.Errorf("Snapshot() after Reset mismatch (-reset +snapshot):\n%s", diff)
	}
}

func TestAggregator_ConcurrentReadsSeeCompleteSnapshots(t *testing.T) {
	a := newTestAggregator(t, nil)
	items := sampleItems()
	want := a.Recompute(items)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				a.Recompute(items)
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				if diff := cmp.Diff(want, a.Snapshot()); diff != "" {
					t.Errorf("torn snapshot:\n%s", diff)
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestAggregator_Initial(t *testing.T) {
	a := newTestAggregator(t, Thresholds{AwardRegional: 2})

	initial := a.Initial()
	require.Len(t, initial, 5)

	for _, award := range a.Criteria().Awards() {
		r := initial[award.Key]
		assert.Empty(t, r.SatisfiedCriteria)
		assert.Equal(t, award.Criteria, r.UnsatisfiedCriteria)
		assert.Zero(t, r.TotalItems)
		assert.False(t, r.IsReady)
		assert.Equal(t, fixedTime, r.LastCalculated)
	}
	assert.Equal(t, 2, initial[AwardRegional].Threshold)
	assert.Equal(t, DefaultThreshold, initial[AwardLeadership].Threshold)
}

func TestAggregator_Report(t *testing.T) {
	a := newTestAggregator(t, nil)
	records := a.Initial()
	delete(records, AwardEmerging)

	report := a.Report(records)

	keys := make([]string, len(report))
	for i, r := range report {
		keys[i] = r.AwardKey
	}
	assert.Equal(t, []string{AwardLeadership, AwardEducation, AwardRegional, AwardCitizenship}, keys)
}

func TestNewAggregator_Validation(t *testing.T) {
	tests := []struct {
		criteria   *CriteriaSet
		thresholds Thresholds
		name       string
		opts       []Option
	}{
		{name: "nil criteria"},
		{
			name:       "unknown award",
			criteria:   DefaultCriteria(),
			thresholds: Thresholds{"nobel": 3},
		},
		{
			name:       "zero threshold",
			criteria:   DefaultCriteria(),
			thresholds: Thresholds{AwardLeadership: 0},
		},
		{
			name:     "negative default",
			criteria: DefaultCriteria(),
			opts:     []Option{WithDefaultThreshold(-1)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewAggregator(tt.criteria, tt.thresholds, tt.opts...)
			assert.ErrorIs(t, err, ErrInvalidCriteria)
		})
	}
}

func TestPercentage(t *testing.T) {
	assert.InDelta(t, 0.0, Percentage(0, 5), 1e-9)
	assert.InDelta(t, 60.0, Percentage(3, 5), 1e-9)
	assert.InDelta(t, 100.0, Percentage(9, 5), 1e-9)
	assert.InDelta(t, 0.0, Percentage(3, 0), 1e-9)
}
