package readiness

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/Veraticus/dossier/internal/model"
)

// DefaultThreshold is the number of matching items an award needs to be ready.
const DefaultThreshold = 5

// Thresholds overrides the item threshold per award key.
type Thresholds map[string]int

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithClock sets the time source used to stamp LastCalculated.
func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) {
		a.now = now
	}
}

// WithDefaultThreshold changes the threshold for awards without an override.
func WithDefaultThreshold(n int) Option {
	return func(a *Aggregator) {
		a.defaultThreshold = n
	}
}

// Aggregator recomputes award readiness from the full item set. Recompute
// calls are serialized; Snapshot may be read at any time and always returns
// a complete result from one recompute.
type Aggregator struct {
	criteria         *CriteriaSet
	thresholds       Thresholds
	now              func() time.Time
	snapshot         map[string]model.AwardReadiness
	defaultThreshold int
	recomputeMu      sync.Mutex
	snapshotMu       sync.RWMutex
}

// NewAggregator validates thresholds against the criteria set and returns an
// aggregator. Unknown award keys and non-positive thresholds are rejected.
func NewAggregator(criteria *CriteriaSet, thresholds Thresholds, opts ...Option) (*Aggregator, error) {
	if criteria == nil {
		return nil, fmt.Errorf("%w: criteria set is required", ErrInvalidCriteria)
	}

	a := &Aggregator{
		criteria:         criteria,
		thresholds:       make(Thresholds, len(thresholds)),
		now:              time.Now,
		defaultThreshold: DefaultThreshold,
	}
	for _, opt := range opts {
		opt(a)
	}

	if a.defaultThreshold <= 0 {
		return nil, fmt.Errorf("%w: default threshold must be positive, got %d", ErrInvalidCriteria, a.defaultThreshold)
	}
	for key, n := range thresholds {
		if !criteria.Has(key) {
			return nil, fmt.Errorf("%w: threshold for unknown award %q", ErrInvalidCriteria, key)
		}
		if n <= 0 {
			return nil, fmt.Errorf("%w: threshold for %q must be positive, got %d", ErrInvalidCriteria, key, n)
		}
		a.thresholds[key] = n
	}

	return a, nil
}

// Criteria returns the criteria set the aggregator scores against.
func (a *Aggregator) Criteria() *CriteriaSet { return a.criteria }

// Threshold returns the effective threshold for an award.
func (a *Aggregator) Threshold(key string) int {
	if n, ok := a.thresholds[key]; ok {
		return n
	}
	return a.defaultThreshold
}

type tally struct {
	satisfied []bool
	documents int
	events    int
}

// Recompute zeroes every award and rescans all items. The result replaces
// the aggregator's snapshot and is also returned to the caller.
func (a *Aggregator) Recompute(items []model.Item) map[string]model.AwardReadiness {
	a.recomputeMu.Lock()
	defer a.recomputeMu.Unlock()

	tallies := make([]tally, a.criteria.Len())
	for i := range tallies {
		tallies[i].satisfied = make([]bool, len(a.criteria.phrases[i]))
	}

	for _, item := range items {
		text := item.SearchText()
		if text == "" {
			continue
		}
		for i, phrases := range a.criteria.phrases {
			matched := false
			for j, phrase := range phrases {
				if strings.Contains(text, phrase) {
					tallies[i].satisfied[j] = true
					matched = true
				}
			}
			if !matched {
				continue
			}
			if item.Type == model.ItemEvent {
				tallies[i].events++
			} else {
				tallies[i].documents++
			}
		}
	}

	stamp := a.now()
	result := make(map[string]model.AwardReadiness, len(tallies))
	for i, award := range a.criteria.awards {
		result[award.Key] = a.build(award, tallies[i], stamp)
	}

	a.snapshotMu.Lock()
	a.snapshot = result
	a.snapshotMu.Unlock()

	return cloneSnapshot(result)
}

func (a *Aggregator) build(award model.Award, t tally, stamp time.Time) model.AwardReadiness {
	satisfied := make([]string, 0, len(award.Criteria))
	unsatisfied := make([]string, 0, len(award.Criteria))
	for j, phrase := range award.Criteria {
		if t.satisfied != nil && t.satisfied[j] {
			satisfied = append(satisfied, phrase)
		} else {
			unsatisfied = append(unsatisfied, phrase)
		}
	}

	threshold := a.Threshold(award.Key)
	total := t.documents + t.events

	return model.AwardReadiness{
		AwardKey:            award.Key,
		SatisfiedCriteria:   satisfied,
		UnsatisfiedCriteria: unsatisfied,
		TotalDocuments:      t.documents,
		TotalEvents:         t.events,
		TotalItems:          total,
		Threshold:           threshold,
		ReadinessPercentage: Percentage(total, threshold),
		IsReady:             total >= threshold,
		LastCalculated:      stamp,
	}
}

// Percentage returns min(100, items/threshold*100).
func Percentage(items, threshold int) float64 {
	if threshold <= 0 {
		return 0
	}
	return min(100, float64(items)/float64(threshold)*100)
}

// Initial returns a zeroed record for every award, with every criterion
// unsatisfied.
func (a *Aggregator) Initial() map[string]model.AwardReadiness {
	stamp := a.now()
	out := make(map[string]model.AwardReadiness, a.criteria.Len())
	for _, award := range a.criteria.awards {
		out[award.Key] = a.build(award, tally{}, stamp)
	}
	return out
}

// Snapshot returns the result of the last completed Recompute or Reset, or
// nil when neither has run.
func (a *Aggregator) Snapshot() map[string]model.AwardReadiness {
	a.snapshotMu.RLock()
	defer a.snapshotMu.RUnlock()
	if a.snapshot == nil {
		return nil
	}
	return cloneSnapshot(a.snapshot)
}

// Reset replaces the snapshot with zeroed records and returns them. It waits
// for any running Recompute.
func (a *Aggregator) Reset() map[string]model.AwardReadiness {
	a.recomputeMu.Lock()
	defer a.recomputeMu.Unlock()

	initial := a.Initial()
	a.snapshotMu.Lock()
	a.snapshot = initial
	a.snapshotMu.Unlock()

	return cloneSnapshot(initial)
}

// Report orders records by the criteria set's award order. Keys absent from
// records are skipped.
func (a *Aggregator) Report(records map[string]model.AwardReadiness) []model.AwardReadiness {
	out := make([]model.AwardReadiness, 0, len(records))
	for _, key := range a.criteria.Keys() {
		if r, ok := records[key]; ok {
			out = append(out, r)
		}
	}
	return out
}

func cloneSnapshot(in map[string]model.AwardReadiness) map[string]model.AwardReadiness {
	out := maps.Clone(in)
	for k, r := range out {
		r.SatisfiedCriteria = slices.Clone(r.SatisfiedCriteria)
		r.UnsatisfiedCriteria = slices.Clone(r.UnsatisfiedCriteria)
		out[k] = r
	}
	return out
}
