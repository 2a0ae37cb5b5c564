package rules

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/dossier/internal/model"
)

func TestLoad_EmptyPathUsesDefaults(t *testing.T) {
	set, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, len(DefaultRules()), set.Len())
}

func TestLoad_MergesOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	content := `
rules:
  - name: "Reports"
    keywords: ["report", "terminal report"]
    file_patterns: ["report", "tr_"]
    priority: 1
  - name: "Budgets"
    keywords: ["budget"]
    file_patterns: ["budget"]
    priority: 2
fallback:
  default: "Misc"
  extensions:
    .XYZ: "Mystery"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	set, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, len(DefaultRules())+1, set.Len())

	rules := set.Rules()
	for _, r := range rules {
		if r.Name == CategoryReports {
			assert.Equal(t, 1, r.Priority)
		}
	}
	assert.Equal(t, "Budgets", rules[len(rules)-1].Name)

	m := NewMatcher(set)
	assert.Equal(t, "Mystery", m.Classify("randomfile.xyz", "").Category)
	assert.Equal(t, "Misc", m.Classify("noext", "").Category)
	assert.Equal(t, "Budgets", m.Classify("budget.xlsx", "").Category)
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("rules: [ {name: X, priority: 0} ]"), 0o600))
	_, err = Load(bad)
	require.ErrorIs(t, err, ErrInvalidRule)

	garbage := filepath.Join(dir, "garbage.yaml")
	require.NoError(t, os.WriteFile(garbage, []byte("rules: [unclosed"), 0o600))
	_, err = Load(garbage)
	require.Error(t, err)
}

func TestMergeRules(t *testing.T) {
	base := []model.CategoryRule{{Name: "A", Priority: 1}, {Name: "B", Priority: 2}}
	merged := MergeRules(base, []model.CategoryRule{{Name: "B", Priority: 5}, {Name: "C", Priority: 3}})

	require.Len(t, merged, 3)
	assert.Equal(t, "A", merged[0].Name)
	assert.Equal(t, 5, merged[1].Priority)
	assert.Equal(t, "C", merged[2].Name)
	assert.Equal(t, 2, base[1].Priority)
}
