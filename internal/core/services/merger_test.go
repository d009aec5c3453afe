package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/minute-cli/internal/core/domain"
)

func fragmentAt(index int, start, end float64, sections map[string][]domain.Item) domain.Fragment {
	return domain.Fragment{
		Meta: map[string]any{
			"chunkIndex": index,
			"chunkStart": start,
			"chunkEnd":   end,
		},
		Sections:   sections,
		Chronology: []string{},
		Metrics:    domain.DefaultMetrics(),
	}
}

func testInfo() domain.MeetingInfo {
	return domain.MeetingInfo{
		ProjectName:      "Tour Horizon",
		Title:            "Réunion de chantier 12",
		Date:             "2026-03-10",
		Duration:         1800,
		ExpectedSpeakers: 3,
		Participants:     []string{"SPEAKER_00", "SPEAKER_01"},
		Instructions:     "réunion de chantier hebdomadaire",
	}
}

func TestMergeFragments_SingleFragmentFastPath(t *testing.T) {
	frag := fragmentAt(1, 0, 900, map[string][]domain.Item{
		"objectifs": {domain.TextItem("Couler la dalle du R+2")},
	})
	frag.Metrics = domain.Metrics{TotalSegments: 40, SegmentsAnalyzed: 38, Quality: domain.QualityExcellent}
	frag.Chronology = []string{"[01:00] Tour de table"}

	analysis := MergeFragments([]domain.Fragment{frag}, testInfo(), nil)

	require.Len(t, analysis.Sections["objectifs"], 1)
	assert.Equal(t, "[00:00-15:00] Couler la dalle du R+2", analysis.Sections["objectifs"][0].Text)
	assert.Equal(t, []string{"[01:00] Tour de table"}, analysis.Chronology)
	assert.Equal(t, 1, analysis.Metrics.ChunksProcessed)
	assert.Equal(t, 40, analysis.Metrics.TotalSegments)
	assert.Equal(t, domain.QualityExcellent, analysis.Metrics.Quality)
	assert.Zero(t, analysis.Metrics.ItemsMerged)
	assert.Zero(t, analysis.Metrics.DuplicatesDropped)
}

func TestMergeFragments_PlainTextDuplicatesDropped(t *testing.T) {
	// The same observation surfaced in two windows deduplicates because the
	// time prefix is stripped before key computation.
	first := fragmentAt(1, 0, 900, map[string][]domain.Item{
		"problemesIdentifies": {domain.TextItem("Fuite dans le local technique")},
	})
	second := fragmentAt(2, 900, 1800, map[string][]domain.Item{
		"problemesIdentifies": {domain.TextItem("Fuite dans le local technique")},
	})

	analysis := MergeFragments([]domain.Fragment{first, second}, testInfo(), nil)

	require.Len(t, analysis.Sections["problemesIdentifies"], 1)
	// First occurrence wins, carrying its own window prefix.
	assert.Equal(t, "[00:00-15:00] Fuite dans le local technique", analysis.Sections["problemesIdentifies"][0].Text)
	assert.Equal(t, 1, analysis.Metrics.DuplicatesDropped)
	assert.Zero(t, analysis.Metrics.ItemsMerged)
}

func TestMergeFragments_StructuredDuplicatesMerged(t *testing.T) {
	first := fragmentAt(1, 0, 900, map[string][]domain.Item{
		"actionsUrgentes": {domain.StructuredItem(map[string]string{
			"action":      "Commander les aciers",
			"responsable": "Martin",
			"echeance":    "",
		})},
	})
	second := fragmentAt(2, 900, 1800, map[string][]domain.Item{
		"actionsUrgentes": {domain.StructuredItem(map[string]string{
			"action":      "Commander les aciers",
			"responsable": "Martin",
			"echeance":    "vendredi",
		})},
	})

	analysis := MergeFragments([]domain.Fragment{first, second}, testInfo(), nil)

	require.Len(t, analysis.Sections["actionsUrgentes"], 1)
	item := analysis.Sections["actionsUrgentes"][0]
	// Empty field filled from the later occurrence.
	assert.Equal(t, "vendredi", item.Field("echeance"))
	assert.Equal(t, 1, analysis.Metrics.ItemsMerged)
	assert.Zero(t, analysis.Metrics.DuplicatesDropped)
}

func TestMergeFragments_StructuredConflictConcatenated(t *testing.T) {
	first := fragmentAt(1, 0, 900, map[string][]domain.Item{
		"decisionsStrategiques": {domain.StructuredItem(map[string]string{
			"titre":  "Report du lot 3",
			"detail": "attente fournisseur",
		})},
	})
	second := fragmentAt(2, 900, 1800, map[string][]domain.Item{
		"decisionsStrategiques": {domain.StructuredItem(map[string]string{
			"titre":  "Report du lot 3",
			"detail": "nouveau délai confirmé",
		})},
	})

	analysis := MergeFragments([]domain.Fragment{first, second}, testInfo(), nil)

	require.Len(t, analysis.Sections["decisionsStrategiques"], 1)
	assert.Equal(t, "attente fournisseur | nouveau délai confirmé",
		analysis.Sections["decisionsStrategiques"][0].Field("detail"))
}

func TestMergeFragments_DistinctActionsByResponsible(t *testing.T) {
	// Same action text, different assignees: distinct dedup keys.
	first := fragmentAt(1, 0, 900, map[string][]domain.Item{
		"actionsReguliers": {domain.StructuredItem(map[string]string{
			"action": "Vérifier les plans", "responsable": "Sophie",
		})},
	})
	second := fragmentAt(2, 900, 1800, map[string][]domain.Item{
		"actionsReguliers": {domain.StructuredItem(map[string]string{
			"action": "Vérifier les plans", "responsable": "Karim",
		})},
	})

	analysis := MergeFragments([]domain.Fragment{first, second}, testInfo(), nil)

	assert.Len(t, analysis.Sections["actionsReguliers"], 2)
}

func TestMergeFragments_WindowContextOnStructuredItems(t *testing.T) {
	withContext := fragmentAt(1, 0, 900, map[string][]domain.Item{
		"problemesIdentifies": {domain.StructuredItem(map[string]string{
			"titre": "Accès grue bloqué", "contexte": "zone nord",
		})},
	})
	withoutContext := fragmentAt(2, 900, 1800, map[string][]domain.Item{
		"problemesIdentifies": {domain.StructuredItem(map[string]string{
			"titre": "Livraison retardée",
		})},
	})

	analysis := MergeFragments([]domain.Fragment{withContext, withoutContext}, testInfo(), nil)

	items := analysis.Sections["problemesIdentifies"]
	require.Len(t, items, 2)
	assert.Equal(t, "zone nord [00:00-15:00]", items[0].Field("contexte"))
	assert.Equal(t, "[15:00-30:00]", items[1].Field("time_context"))
}

func TestMergeFragments_GenericItemsDedupAcrossWindows(t *testing.T) {
	// Items with no titled field fall back to an all-fields key. That
	// key must ignore the window stamp, or the same point extracted
	// from two chunks is never recognized as a duplicate.
	first := fragmentAt(1, 0, 900, map[string][]domain.Item{
		"pointsDivers": {domain.StructuredItem(map[string]string{
			"sujet":  "Sécurité chantier",
			"detail": "Casques obligatoires en zone B",
		})},
	})
	second := fragmentAt(2, 900, 1800, map[string][]domain.Item{
		"pointsDivers": {domain.StructuredItem(map[string]string{
			"sujet":  "Sécurité chantier",
			"detail": "Casques obligatoires en zone B",
		})},
	})

	analysis := MergeFragments([]domain.Fragment{first, second}, testInfo(), nil)

	require.Len(t, analysis.Sections["pointsDivers"], 1)
	item := analysis.Sections["pointsDivers"][0]
	assert.Equal(t, "[00:00-15:00] | [15:00-30:00]", item.Field("time_context"))
	assert.Equal(t, 1, analysis.Metrics.ItemsMerged)
}

func TestMergeFragments_ChronologyStableSort(t *testing.T) {
	first := fragmentAt(1, 0, 900, map[string][]domain.Item{})
	first.Chronology = []string{
		"[00:30] Ouverture",
		"[10:00] Premier point",
	}
	second := fragmentAt(2, 900, 1800, map[string][]domain.Item{})
	second.Chronology = []string{
		"[10:00] Suite du premier point",
		"[20:00] Clôture",
		"Sans horodatage",
	}

	analysis := MergeFragments([]domain.Fragment{first, second}, testInfo(), nil)

	assert.Equal(t, []string{
		// Entries without a timestamp sort as 0; equally-timed entries
		// keep their arrival order.
		"Sans horodatage",
		"[00:30] Ouverture",
		"[10:00] Premier point",
		"[10:00] Suite du premier point",
		"[20:00] Clôture",
	}, analysis.Chronology)
}

func TestMergeFragments_MetricsAdditiveAndAveraged(t *testing.T) {
	first := fragmentAt(1, 0, 900, map[string][]domain.Item{})
	first.Metrics = domain.Metrics{TotalSegments: 40, SegmentsAnalyzed: 40, Quality: domain.QualityExcellent}
	second := fragmentAt(2, 900, 1800, map[string][]domain.Item{})
	second.Metrics = domain.Metrics{TotalSegments: 35, SegmentsAnalyzed: 20, Quality: domain.QualityAverage}

	analysis := MergeFragments([]domain.Fragment{first, second}, testInfo(), nil)

	assert.Equal(t, 75, analysis.Metrics.TotalSegments)
	assert.Equal(t, 60, analysis.Metrics.SegmentsAnalyzed)
	assert.Equal(t, 2, analysis.Metrics.ChunksProcessed)
	// Excellent (4) and Moyen (2) average to Bon (3).
	assert.Equal(t, domain.QualityGood, analysis.Metrics.Quality)
	assert.NotEmpty(t, analysis.Metrics.Methodology)
}

func TestMergeFragments_MetaCoverage(t *testing.T) {
	fragments := []domain.Fragment{
		fragmentAt(1, 0, 900, map[string][]domain.Item{}),
		fragmentAt(2, 900, 1800, map[string][]domain.Item{}),
	}
	degradations := []domain.Degradation{
		{Stage: domain.StageDiarizing, Reason: "service unreachable"},
	}

	analysis := MergeFragments(fragments, testInfo(), degradations)

	assert.Equal(t, "Tour Horizon", analysis.Meta["projectName"])
	assert.Equal(t, "Réunion de chantier", analysis.Meta["meetingType"])
	assert.Equal(t, 2, analysis.Meta["fragmentCount"])
	assert.Equal(t, 1.0, analysis.Meta["coverage"])
	assert.Equal(t, degradations, analysis.Meta["degradations"])
}

func TestMergeFragments_SectionUnionOrderStable(t *testing.T) {
	first := fragmentAt(1, 0, 900, map[string][]domain.Item{
		"objectifs": {domain.TextItem("a")},
		"divers":    {domain.TextItem("b")},
	})
	second := fragmentAt(2, 900, 1800, map[string][]domain.Item{
		"planningEtDelais": {domain.TextItem("c")},
	})

	analysis := MergeFragments([]domain.Fragment{first, second}, testInfo(), nil)

	assert.Len(t, analysis.Sections, 3)
	assert.Contains(t, analysis.Sections, "objectifs")
	assert.Contains(t, analysis.Sections, "divers")
	assert.Contains(t, analysis.Sections, "planningEtDelais")
}

func TestMergeFragments_Idempotent(t *testing.T) {
	// Merging the same fragment list twice yields identical sections and
	// counters.
	fragments := []domain.Fragment{
		fragmentAt(1, 0, 900, map[string][]domain.Item{
			"objectifs": {domain.TextItem("Avancer le second œuvre"), domain.TextItem("Avancer le second œuvre")},
		}),
		fragmentAt(2, 900, 1800, map[string][]domain.Item{
			"objectifs": {domain.TextItem("Avancer le second œuvre")},
		}),
	}

	a := MergeFragments(fragments, testInfo(), nil)
	b := MergeFragments(fragments, testInfo(), nil)

	assert.Equal(t, a.Sections, b.Sections)
	assert.Equal(t, a.Metrics, b.Metrics)
	assert.Len(t, a.Sections["objectifs"], 1)
	assert.Equal(t, 2, a.Metrics.DuplicatesDropped)
}

func TestInferMeetingType(t *testing.T) {
	tests := []struct {
		instructions string
		want         string
	}{
		{"", "Autre"},
		{"réunion de chantier hebdomadaire", "Réunion de chantier"},
		{"point d'avancement mensuel", "Point d'avancement"},
		{"coordination des lots techniques", "Réunion de coordination"},
		{"revue sécurité du site", "Réunion sécurité"},
		{"préparation de la livraison", "Réunion de livraison"},
		{"focus sur les coûts", "Réunion personnalisée"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, InferMeetingType(tt.instructions), "instructions: %q", tt.instructions)
	}
}

func TestFallbackAnalysis(t *testing.T) {
	segments := []domain.Segment{
		{Speaker: "SPEAKER_01", StartTime: 0, EndTime: 10, Text: "trois mots ici"},
		{Speaker: "SPEAKER_00", StartTime: 10, EndTime: 20, Text: PlaceholderNoText},
		{Speaker: "SPEAKER_00", StartTime: 20, EndTime: 30, Text: "deux mots"},
	}
	degradations := []domain.Degradation{
		{Stage: domain.StageAnalyzing, Reason: "extraction unavailable"},
	}

	analysis := FallbackAnalysis(segments, testInfo(), degradations)

	assert.Equal(t, true, analysis.Meta["degraded"])
	assert.Equal(t, []string{"SPEAKER_00", "SPEAKER_01"}, analysis.Meta["participantsDetected"])
	require.Len(t, analysis.Sections["divers"], 2)
	// Placeholder segments are excluded from the word count.
	assert.Equal(t, "Transcription disponible (5 mots)", analysis.Sections["divers"][0].Text)
	assert.Equal(t, domain.QualityInsufficient, analysis.Metrics.Quality)
	assert.Zero(t, analysis.Metrics.ChunksProcessed)
	assert.Equal(t, 3, analysis.Metrics.TotalSegments)
	assert.Equal(t, degradations, analysis.Meta["degradations"])
}
