package services

import (
	"sort"
	"strings"

	"github.com/custodia-labs/minute-cli/internal/core/domain"
)

// PlaceholderNoText is the sentinel text for a speaker turn that no
// transcription segment overlaps.
const PlaceholderNoText = "[no text detected]"

// AlignSegments fuses diarization turns with transcription segments into
// speaker-attributed segments. For each turn it collects every transcription
// segment overlapping the turn's open interval, in original order, and joins
// their text with single spaces. Turns without any overlapping text get the
// placeholder sentinel.
//
// Output order follows the diarization turns, which are stable-sorted by
// start time first when they arrive out of order. Malformed inputs (empty
// lists) yield an empty or placeholder-only result, never an error.
//
// Complexity is O(turns × transcript segments), fine at meeting scale.
func AlignSegments(turns []domain.Turn, transcript []domain.TranscriptSegment) []domain.Segment {
	if len(turns) == 0 {
		return []domain.Segment{}
	}

	if !turnsSorted(turns) {
		sorted := make([]domain.Turn, len(turns))
		copy(sorted, turns)
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].Start < sorted[j].Start
		})
		turns = sorted
	}

	segments := make([]domain.Segment, 0, len(turns))
	for _, turn := range turns {
		var texts []string
		for _, ts := range transcript {
			// Open-interval overlap: touching boundaries do not count.
			if ts.Start < turn.End && ts.End > turn.Start {
				texts = append(texts, ts.Text)
			}
		}

		text := strings.TrimSpace(strings.Join(texts, " "))
		if text == "" {
			text = PlaceholderNoText
		}

		segments = append(segments, domain.Segment{
			Speaker:   turn.Speaker,
			StartTime: turn.Start,
			EndTime:   turn.End,
			Text:      text,
		})
	}

	return segments
}

func turnsSorted(turns []domain.Turn) bool {
	for i := 1; i < len(turns); i++ {
		if turns[i].Start < turns[i-1].Start {
			return false
		}
	}
	return true
}
