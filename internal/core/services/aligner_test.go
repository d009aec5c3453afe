package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/minute-cli/internal/core/domain"
)

func TestAlignSegments_OverlappingText(t *testing.T) {
	turns := []domain.Turn{
		{Speaker: "SPEAKER_00", Start: 0, End: 10},
		{Speaker: "SPEAKER_01", Start: 10, End: 20},
	}
	transcript := []domain.TranscriptSegment{
		{Start: 0, End: 4, Text: "Bonjour à tous"},
		{Start: 4, End: 9, Text: "on commence la réunion"},
		{Start: 11, End: 18, Text: "Merci, premier point"},
	}

	segments := AlignSegments(turns, transcript)

	require.Len(t, segments, 2)
	assert.Equal(t, "SPEAKER_00", segments[0].Speaker)
	assert.Equal(t, "Bonjour à tous on commence la réunion", segments[0].Text)
	assert.Equal(t, "Merci, premier point", segments[1].Text)
}

func TestAlignSegments_TouchingBoundariesDoNotOverlap(t *testing.T) {
	turns := []domain.Turn{
		{Speaker: "SPEAKER_00", Start: 0, End: 10},
	}
	// Segment starts exactly where the turn ends: open-interval test
	// excludes it.
	transcript := []domain.TranscriptSegment{
		{Start: 10, End: 15, Text: "hors du tour"},
	}

	segments := AlignSegments(turns, transcript)

	require.Len(t, segments, 1)
	assert.Equal(t, PlaceholderNoText, segments[0].Text)
}

func TestAlignSegments_SegmentSpanningTwoTurns(t *testing.T) {
	turns := []domain.Turn{
		{Speaker: "SPEAKER_00", Start: 0, End: 10},
		{Speaker: "SPEAKER_01", Start: 10, End: 20},
	}
	// Overlaps both turns, so its text is attributed to both.
	transcript := []domain.TranscriptSegment{
		{Start: 8, End: 12, Text: "phrase à cheval"},
	}

	segments := AlignSegments(turns, transcript)

	require.Len(t, segments, 2)
	assert.Equal(t, "phrase à cheval", segments[0].Text)
	assert.Equal(t, "phrase à cheval", segments[1].Text)
}

func TestAlignSegments_UnsortedTurns(t *testing.T) {
	turns := []domain.Turn{
		{Speaker: "SPEAKER_01", Start: 10, End: 20},
		{Speaker: "SPEAKER_00", Start: 0, End: 10},
	}
	transcript := []domain.TranscriptSegment{
		{Start: 1, End: 5, Text: "premier"},
		{Start: 11, End: 15, Text: "second"},
	}

	segments := AlignSegments(turns, transcript)

	require.Len(t, segments, 2)
	assert.Equal(t, "SPEAKER_00", segments[0].Speaker)
	assert.Equal(t, "premier", segments[0].Text)
	assert.Equal(t, "SPEAKER_01", segments[1].Speaker)
	assert.Equal(t, "second", segments[1].Text)
}

func TestAlignSegments_EmptyTranscript(t *testing.T) {
	turns := []domain.Turn{
		{Speaker: "SPEAKER_00", Start: 0, End: 10},
		{Speaker: "SPEAKER_01", Start: 10, End: 20},
	}

	segments := AlignSegments(turns, nil)

	require.Len(t, segments, 2)
	for _, seg := range segments {
		assert.Equal(t, PlaceholderNoText, seg.Text)
	}
}

func TestAlignSegments_EmptyTurns(t *testing.T) {
	transcript := []domain.TranscriptSegment{
		{Start: 0, End: 5, Text: "perdu"},
	}

	segments := AlignSegments(nil, transcript)

	assert.Empty(t, segments)
	assert.NotNil(t, segments)
}

func TestAlignSegments_PreservesTurnTiming(t *testing.T) {
	turns := []domain.Turn{
		{Speaker: "SPEAKER_00", Start: 2.5, End: 7.25},
	}

	segments := AlignSegments(turns, nil)

	require.Len(t, segments, 1)
	assert.Equal(t, 2.5, segments[0].StartTime)
	assert.Equal(t, 7.25, segments[0].EndTime)
}
