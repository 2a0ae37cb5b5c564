package model

// ClassificationResult is the best category for a document along with the
// score that produced it.
type ClassificationResult struct {
	Category   string  `json:"category"`
	Score      float64 `json:"score"`
	Confidence float64 `json:"confidence"`
	// Fallback is set when the category came from the extension table rather
	// than a rule match.
	Fallback bool `json:"fallback"`
}
