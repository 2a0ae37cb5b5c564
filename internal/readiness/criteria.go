// Package readiness aggregates ingested evidence into per-award readiness
// records.
package readiness

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Veraticus/dossier/internal/model"
)

// ErrInvalidCriteria is returned when an award criteria set fails validation.
var ErrInvalidCriteria = errors.New("invalid award criteria")

// Default award keys.
const (
	AwardLeadership  = "leadership"
	AwardEducation   = "education"
	AwardEmerging    = "emerging"
	AwardRegional    = "regional"
	AwardCitizenship = "citizenship"
)

// CriteriaSet is a validated, immutable mapping of award key to ordered
// criterion phrases. Award order is preserved for reporting.
type CriteriaSet struct {
	index  map[string]int
	awards []model.Award
	// phrases holds the lower-cased criteria, parallel to awards.
	phrases [][]string
}

// NewCriteriaSet validates awards and builds a CriteriaSet. Keys must be
// unique and non-empty, every award needs at least one phrase, and phrases
// may not be blank or repeated within an award.
func NewCriteriaSet(awards []model.Award) (*CriteriaSet, error) {
	if len(awards) == 0 {
		return nil, fmt.Errorf("%w: no awards defined", ErrInvalidCriteria)
	}

	cs := &CriteriaSet{
		index:   make(map[string]int, len(awards)),
		awards:  make([]model.Award, 0, len(awards)),
		phrases: make([][]string, 0, len(awards)),
	}

	for i, award := range awards {
		key := strings.TrimSpace(award.Key)
		if key == "" {
			return nil, fmt.Errorf("%w: award %d has an empty key", ErrInvalidCriteria, i)
		}
		if _, dup := cs.index[key]; dup {
			return nil, fmt.Errorf("%w: duplicate award key %q", ErrInvalidCriteria, key)
		}
		if len(award.Criteria) == 0 {
			return nil, fmt.Errorf("%w: award %q has no criteria", ErrInvalidCriteria, key)
		}

		seen := make(map[string]struct{}, len(award.Criteria))
		criteria := make([]string, 0, len(award.Criteria))
		lowered := make([]string, 0, len(award.Criteria))
		for _, phrase := range award.Criteria {
			phrase = strings.TrimSpace(phrase)
			if phrase == "" {
				return nil, fmt.Errorf("%w: award %q has a blank criterion", ErrInvalidCriteria, key)
			}
			lower := strings.ToLower(phrase)
			if _, dup := seen[lower]; dup {
				return nil, fmt.Errorf("%w: award %q repeats criterion %q", ErrInvalidCriteria, key, phrase)
			}
			seen[lower] = struct{}{}
			criteria = append(criteria, phrase)
			lowered = append(lowered, lower)
		}

		name := strings.TrimSpace(award.Name)
		if name == "" {
			name = key
		}

		cs.index[key] = len(cs.awards)
		cs.awards = append(cs.awards, model.Award{Key: key, Name: name, Criteria: criteria})
		cs.phrases = append(cs.phrases, lowered)
	}

	return cs, nil
}

// Awards returns a copy of the awards in configured order.
func (cs *CriteriaSet) Awards() []model.Award {
	out := make([]model.Award, len(cs.awards))
	for i, a := range cs.awards {
		out[i] = model.Award{Key: a.Key, Name: a.Name, Criteria: slices.Clone(a.Criteria)}
	}
	return out
}

// Keys returns the award keys in configured order.
func (cs *CriteriaSet) Keys() []string {
	keys := make([]string, len(cs.awards))
	for i, a := range cs.awards {
		keys[i] = a.Key
	}
	return keys
}

// Award looks up a single award by key.
func (cs *CriteriaSet) Award(key string) (model.Award, bool) {
	i, ok := cs.index[key]
	if !ok {
		return model.Award{}, false
	}
	a := cs.awards[i]
	return model.Award{Key: a.Key, Name: a.Name, Criteria: slices.Clone(a.Criteria)}, true
}

// Has reports whether key is a configured award.
func (cs *CriteriaSet) Has(key string) bool {
	_, ok := cs.index[key]
	return ok
}

// Len returns the number of awards.
func (cs *CriteriaSet) Len() int { return len(cs.awards) }

// TotalCriteria returns the number of criteria across all awards.
func (cs *CriteriaSet) TotalCriteria() int {
	n := 0
	for _, a := range cs.awards {
		n += len(a.Criteria)
	}
	return n
}

// DefaultAwards returns the built-in twenty-criterion award structure.
func DefaultAwards() []model.Award {
	return []model.Award{
		{
			Key:  AwardLeadership,
			Name: "Internationalization Leadership Award",
			Criteria: []string{
				"international partnership",
				"strategic plan",
				"memorandum of understanding",
				"faculty exchange",
				"international accreditation",
			},
		},
		{
			Key:  AwardEducation,
			Name: "Outstanding International Education Program Award",
			Criteria: []string{
				"student exchange",
				"international curriculum",
				"study abroad",
				"joint degree",
				"international students",
			},
		},
		{
			Key:  AwardEmerging,
			Name: "Emerging Leadership Award",
			Criteria: []string{
				"new partnership",
				"capacity building",
				"pilot program",
				"international linkage",
			},
		},
		{
			Key:  AwardRegional,
			Name: "Best Regional Office for Internationalization",
			Criteria: []string{
				"regional cooperation",
				"regional office",
				"asean",
			},
		},
		{
			Key:  AwardCitizenship,
			Name: "Global Citizenship Award",
			Criteria: []string{
				"global citizenship",
				"intercultural",
				"sustainable development goals",
			},
		},
	}
}

// DefaultCriteria returns the built-in criteria set.
func DefaultCriteria() *CriteriaSet {
	cs, err := NewCriteriaSet(DefaultAwards())
	if err != nil {
		panic(fmt.Sprintf("default award criteria are invalid: %v", err))
	}
	return cs
}

type criteriaFile struct {
	Awards []model.Award `yaml:"awards"`
}

// LoadCriteriaFile reads a YAML criteria file. An empty path yields the
// default criteria. The file replaces the defaults entirely.
func LoadCriteriaFile(path string) (*CriteriaSet, error) {
	if path == "" {
		return DefaultCriteria(), nil
	}

	data, err := os.ReadFile(path) //nolint:gosec // path comes from user configuration
	if err != nil {
		return nil, fmt.Errorf("failed to read criteria file %s: %w", path, err)
	}

	var f criteriaFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse criteria file %s: %w", path, err)
	}

	cs, err := NewCriteriaSet(f.Awards)
	if err != nil {
		return nil, fmt.Errorf("criteria file %s: %w", path, err)
	}

	slog.Debug("loaded award criteria", "path", path, "awards", cs.Len(), "criteria", cs.TotalCriteria())
	return cs, nil
}
