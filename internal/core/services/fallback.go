package services

import (
	"fmt"
	"sort"
	"strings"

	"github.com/custodia-labs/minute-cli/internal/core/domain"
)

// FallbackAnalysis builds the minimal deterministic analysis used when zero
// chunk fragments survive extraction. It is derived purely from segment
// statistics and is flagged as degraded quality; merging is skipped entirely.
func FallbackAnalysis(segments []domain.Segment, info domain.MeetingInfo, degradations []domain.Degradation) *domain.MergedAnalysis {
	speakers := map[string]bool{}
	wordCount := 0
	for _, seg := range segments {
		speakers[seg.Speaker] = true
		if seg.Text != PlaceholderNoText {
			wordCount += len(strings.Fields(seg.Text))
		}
	}

	names := make([]string, 0, len(speakers))
	for speaker := range speakers {
		names = append(names, speaker)
	}
	sort.Strings(names)

	meta := map[string]any{
		"projectName":          info.ProjectName,
		"meetingTitle":         info.Title,
		"meetingDate":          info.Date,
		"duration":             info.Duration,
		"participantsExpected": info.ExpectedSpeakers,
		"participantsDetected": names,
		"fragmentCount":        0,
		"coverage":             0.0,
		"coverageNote":         "Analyse IA indisponible: rapport de substitution généré à partir des statistiques de transcription",
		"degraded":             true,
	}
	if len(degradations) > 0 {
		meta["degradations"] = degradations
	}

	return &domain.MergedAnalysis{
		Meta: meta,
		Sections: map[string][]domain.Item{
			"divers": {
				domain.TextItem(fmt.Sprintf("Transcription disponible (%d mots)", wordCount)),
				domain.TextItem(fmt.Sprintf("Participants détectés: %s", strings.Join(names, ", "))),
			},
		},
		Chronology: []string{},
		Metrics: domain.MergedMetrics{
			TotalSegments:    len(segments),
			SegmentsAnalyzed: 0,
			Quality:          domain.QualityInsufficient,
			ChunksProcessed:  0,
			Methodology:      "Analyse de substitution: statistiques de segments uniquement",
		},
	}
}
