package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/dossier/internal/model"
)

func TestRecorder_WriteTextfile(t *testing.T) {
	r := New()

	r.ObserveClassification(model.ClassificationResult{Category: "Reports"})
	r.ObserveClassification(model.ClassificationResult{Category: "Others", Fallback: true})
	r.ObserveIngest(model.ItemEvent)
	r.ObserveIngest(model.ItemEvent)
	r.ObserveIngest(model.ItemDocument)
	r.ObserveRecompute(20*time.Millisecond, map[string]model.AwardReadiness{
		"leadership": {AwardKey: "leadership", ReadinessPercentage: 40},
		"regional":   {AwardKey: "regional", ReadinessPercentage: 100, IsReady: true},
	})

	path := filepath.Join(t.TempDir(), "dossier.prom")
	require.NoError(t, r.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)

	for _, want := range []string{
		`dossier_classifications_total{category="Reports",fallback="false"} 1`,
		`dossier_classifications_total{category="Others",fallback="true"} 1`,
		`dossier_ingested_items_total{type="event"} 2`,
		`dossier_ingested_items_total{type="document"} 1`,
		`dossier_readiness_recompute_seconds_count 1`,
		`dossier_readiness_percentage{award="leadership"} 40`,
		`dossier_award_ready{award="regional"} 1`,
		`dossier_award_ready{award="leadership"} 0`,
	} {
		assert.Contains(t, out, want)
	}
}

func TestRecorder_NilIsNoop(t *testing.T) {
	var r *Recorder

	assert.NotPanics(t, func() {
		r.ObserveClassification(model.ClassificationResult{Category: "Reports"})
		r.ObserveIngest(model.ItemDocument)
		r.ObserveRecompute(time.Second, nil)
	})
	assert.Nil(t, r.Registry())
	assert.NoError(t, r.WriteTextfile(filepath.Join(t.TempDir(), "x.prom")))
}

func TestRecorder_EmptyPath(t *testing.T) {
	assert.NoError(t, New().WriteTextfile(""))
}
