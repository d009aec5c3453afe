package html

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/minute-cli/internal/core/domain"
)

func testAnalysis() *domain.MergedAnalysis {
	return &domain.MergedAnalysis{
		Meta: map[string]any{
			"meetingType": "Réunion de chantier",
		},
		Sections: map[string][]domain.Item{
			"objectifs": {domain.TextItem("Valider le planning gros œuvre")},
			"actionsUrgentes": {domain.StructuredItem(map[string]string{
				"action":      "Commander les aciers",
				"responsable": "M. Dupont",
				"echeance":    "2026-09-01",
			})},
			"suiviQualite": {domain.TextItem("Contrôle béton conforme")},
		},
		Chronology: []string{"[00:30] Ouverture", "[10:00] Point planning"},
		Metrics: domain.MergedMetrics{
			TotalSegments:    40,
			SegmentsAnalyzed: 38,
			Quality:          domain.QualityGood,
			ChunksProcessed:  2,
			Methodology:      "analyse_par_morceaux",
		},
	}
}

func testInfo() domain.MeetingInfo {
	return domain.MeetingInfo{
		ProjectName:  "Tour Horizon",
		Title:        "Réunion hebdomadaire",
		Date:         "2026-08-24",
		Duration:     3900,
		Participants: []string{"SPEAKER_00", "SPEAKER_01"},
	}
}

func TestRender_WritesReport(t *testing.T) {
	outDir := filepath.Join(t.TempDir(), "reports")
	segments := []domain.Segment{
		{Speaker: "SPEAKER_00", StartTime: 0, EndTime: 4, Text: "Bonjour à tous"},
		{Speaker: "SPEAKER_01", StartTime: 65, EndTime: 70, Text: "On commence"},
	}

	path, err := NewRenderer().Render(context.Background(), testAnalysis(), segments, testInfo(), outDir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(outDir, "rapport.html"), path)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	report := string(raw)

	assert.Contains(t, report, "Réunion hebdomadaire")
	assert.Contains(t, report, "Tour Horizon")
	assert.Contains(t, report, "1h05")

	// known section titles, in fixed order
	assert.Contains(t, report, "Objectifs de la réunion")
	assert.Contains(t, report, "Actions urgentes")
	urgent := strings.Index(report, "Actions urgentes")
	objectifs := strings.Index(report, "Objectifs de la réunion")
	assert.Less(t, objectifs, urgent)

	// unknown section key is prettified
	assert.Contains(t, report, "Suivi qualite")

	// structured item fields with labels
	assert.Contains(t, report, "Commander les aciers")
	assert.Contains(t, report, "Responsable")
	assert.Contains(t, report, "M. Dupont")

	// chronology, metrics, transcript annex
	assert.Contains(t, report, "[00:30] Ouverture")
	assert.Contains(t, report, "38 / 40")
	assert.Contains(t, report, "[01:05]")
	assert.Contains(t, report, "SPEAKER_01")
}

func TestRender_EscapesHTML(t *testing.T) {
	analysis := testAnalysis()
	analysis.Sections["objectifs"] = []domain.Item{
		domain.TextItem(`<script>alert("x")</script>`),
	}

	path, err := NewRenderer().Render(context.Background(), analysis, nil, testInfo(), t.TempDir())
	require.NoError(t, err)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "<script>")
}

func TestRender_NilAnalysis(t *testing.T) {
	_, err := NewRenderer().Render(context.Background(), nil, nil, testInfo(), t.TempDir())
	require.Error(t, err)
}

func TestRender_CreatesOutDir(t *testing.T) {
	outDir := filepath.Join(t.TempDir(), "nested", "reports")
	_, err := NewRenderer().Render(context.Background(), testAnalysis(), nil, testInfo(), outDir)
	require.NoError(t, err)

	info, err := os.Stat(outDir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "42 min", formatDuration(42*60))
	assert.Equal(t, "1h05", formatDuration(3900))
	assert.Equal(t, "0 min", formatDuration(30))
}

func TestSectionTitle_Prettify(t *testing.T) {
	assert.Equal(t, "État des lieux", sectionTitle("etatLieux"))
	assert.Equal(t, "Suivi qualite", sectionTitle("suiviQualite"))
}
