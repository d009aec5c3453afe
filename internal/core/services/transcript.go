package services

import (
	"fmt"
	"math"
	"strings"

	"github.com/custodia-labs/minute-cli/internal/core/domain"
)

// FormatChunkTranscript renders a chunk's segments as the "[MM:SS] SPEAKER:
// text" lines handed to the extraction engine. Empty segments are omitted.
func FormatChunkTranscript(segments []domain.Segment) string {
	var lines []string
	for _, seg := range segments {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		lines = append(lines, fmt.Sprintf("[%s] %s: %s", formatClock(seg.StartTime), seg.Speaker, text))
	}
	return strings.Join(lines, "\n")
}

// CleanTranscriptText normalizes whitespace and spacing around French
// punctuation in engine output.
func CleanTranscriptText(text string) string {
	if text == "" {
		return ""
	}
	text = strings.Join(strings.Fields(text), " ")

	replacements := [][2]string{
		{" , ", ", "},
		{" . ", ". "},
		{" ? ", "? "},
		{" ! ", "! "},
		{" : ", ": "},
		{" ; ", "; "},
	}
	for _, r := range replacements {
		text = strings.ReplaceAll(text, r[0], r[1])
	}
	return strings.TrimSpace(text)
}

// SpeakerStatistics aggregates talk time per speaker over aligned segments.
func SpeakerStatistics(segments []domain.Segment) map[string]domain.SpeakerStats {
	stats := map[string]domain.SpeakerStats{}
	total := 0.0

	for _, seg := range segments {
		s := stats[seg.Speaker]
		s.TotalDuration += seg.Duration()
		s.SegmentCount++
		stats[seg.Speaker] = s
		total += seg.Duration()
	}

	for speaker, s := range stats {
		s.TotalDuration = round2(s.TotalDuration)
		if total > 0 {
			s.Percentage = math.Round(s.TotalDuration/total*1000) / 10
		}
		if s.SegmentCount > 0 {
			s.AverageSegmentDuration = round2(s.TotalDuration / float64(s.SegmentCount))
		}
		stats[speaker] = s
	}
	return stats
}

// SyntheticTurns produces evenly-spaced alternating speaker turns when the
// diarization engine is unavailable. At least four turns are generated so a
// short recording still yields a usable structure.
func SyntheticTurns(duration float64, expectedSpeakers int) []domain.Turn {
	if duration <= 0 {
		duration = 60
	}
	if expectedSpeakers <= 0 {
		expectedSpeakers = 2
	}

	turnCount := expectedSpeakers * 2
	if turnCount < 4 {
		turnCount = 4
	}
	turnLength := duration / float64(turnCount)

	var turns []domain.Turn
	current := 0.0
	speaker := 0
	for current < duration {
		end := math.Min(current+turnLength, duration)
		turns = append(turns, domain.Turn{
			Speaker: fmt.Sprintf("SPEAKER_%02d", speaker),
			Start:   round2(current),
			End:     round2(end),
		})
		current = end
		speaker = (speaker + 1) % expectedSpeakers
	}
	return turns
}

// SyntheticTranscription produces a placeholder transcript when the
// transcription engine is unavailable: one segment per ten seconds so
// alignment and chunking still operate on a realistic shape.
func SyntheticTranscription(duration float64) *domain.Transcription {
	if duration <= 0 {
		duration = 60
	}

	count := int(duration / 10)
	if count < 1 {
		count = 1
	}
	segLength := duration / float64(count)

	segments := make([]domain.TranscriptSegment, 0, count)
	for i := 0; i < count; i++ {
		start := float64(i) * segLength
		segments = append(segments, domain.TranscriptSegment{
			Start: round2(start),
			End:   round2(math.Min(start+segLength, duration)),
			Text:  fmt.Sprintf("[Segment %d - transcription indisponible]", i+1),
		})
	}

	return &domain.Transcription{
		Text:     "[Transcription automatique indisponible]",
		Language: "fr",
		Segments: segments,
		Service:  "fallback",
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
