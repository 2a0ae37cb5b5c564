// Package model defines the core data structures for the dossier application.
package model

// CategoryRule describes how a document category is recognized from a filename
// and its extracted body text. Rules are static configuration; lower Priority
// values dominate higher ones.
type CategoryRule struct {
	Name         string   `yaml:"name" json:"name"`
	Keywords     []string `yaml:"keywords" json:"keywords"`
	FilePatterns []string `yaml:"file_patterns" json:"file_patterns"`
	DatePatterns []string `yaml:"date_patterns,omitempty" json:"date_patterns,omitempty"`
	Priority     int      `yaml:"priority" json:"priority"`
}
