package rules

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Veraticus/dossier/internal/model"
)

// File is the on-disk shape of a rule override file.
type File struct {
	Fallback *FallbackTable       `yaml:"fallback,omitempty"`
	Rules    []model.CategoryRule `yaml:"rules"`
}

// Load returns the default rule set, merged with the overrides in path when
// path is non-empty. Rules in the file replace defaults with the same name;
// new names are appended after the defaults.
func Load(path string) (*RuleSet, error) {
	clean := strings.TrimSpace(path)
	if clean == "" {
		return Default()
	}

	data, err := os.ReadFile(filepath.Clean(clean))
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}

	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse rules file %s: %w", clean, err)
	}

	merged := MergeRules(DefaultRules(), file.Rules)
	fallback := DefaultFallback()
	if file.Fallback != nil {
		if file.Fallback.Default != "" {
			fallback.Default = file.Fallback.Default
		}
		for ext, category := range file.Fallback.Extensions {
			fallback.Extensions[strings.TrimPrefix(strings.ToLower(ext), ".")] = category
		}
	}

	set, err := NewRuleSet(merged, fallback)
	if err != nil {
		return nil, fmt.Errorf("rules file %s: %w", clean, err)
	}

	slog.Debug("Loaded category rules", "path", clean, "overrides", len(file.Rules), "rules", set.Len())
	return set, nil
}

// MergeRules overlays overrides onto base, keeping base order for replaced
// rules.
func MergeRules(base, overrides []model.CategoryRule) []model.CategoryRule {
	merged := cloneRules(base)
	index := make(map[string]int, len(merged))
	for i, r := range merged {
		index[r.Name] = i
	}

	for _, o := range cloneRules(overrides) {
		if i, ok := index[o.Name]; ok {
			merged[i] = o
			continue
		}
		index[o.Name] = len(merged)
		merged = append(merged, o)
	}
	return merged
}
