package model

import "time"

// Award is one award key with its ordered list of criterion phrases.
type Award struct {
	Key      string   `yaml:"key" json:"key"`
	Name     string   `yaml:"name" json:"name"`
	Criteria []string `yaml:"criteria" json:"criteria"`
}

// AwardReadiness is the persisted readiness summary for a single award.
type AwardReadiness struct {
	LastCalculated      time.Time `json:"last_calculated"`
	AwardKey            string    `json:"award_key"`
	SatisfiedCriteria   []string  `json:"satisfied_criteria"`
	UnsatisfiedCriteria []string  `json:"unsatisfied_criteria"`
	TotalDocuments      int       `json:"total_documents"`
	TotalEvents         int       `json:"total_events"`
	TotalItems          int       `json:"total_items"`
	Threshold           int       `json:"threshold"`
	ReadinessPercentage float64   `json:"readiness_percentage"`
	IsReady             bool      `json:"is_ready"`
}
