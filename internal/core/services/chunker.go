package services

import (
	"time"

	"github.com/custodia-labs/minute-cli/internal/core/domain"
)

// DefaultChunkWindow is the extraction window length used when the caller
// does not override it. Each window is analysed in one extraction call, so
// the bound keeps every call within a workable context size while the
// partition keeps full coverage.
const DefaultChunkWindow = 15 * time.Minute

// defaultSegmentDuration closes a degenerate final chunk whose last segment
// has no usable end time.
const defaultSegmentDuration = 10.0

// PlanChunks partitions ordered segments into bounded time windows. A new
// chunk opens when a segment starts at or past the current window's end and
// the current chunk is non-empty; its start becomes the new chunk's start.
// Chunks are 1-indexed, contiguous, non-overlapping, and their segment lists
// partition the input exactly: no segment is dropped or duplicated.
//
// Segments spanning less than one window produce exactly one chunk.
func PlanChunks(segments []domain.Segment, window time.Duration) []domain.Chunk {
	if len(segments) == 0 {
		return []domain.Chunk{}
	}
	if window <= 0 {
		window = DefaultChunkWindow
	}
	windowSec := window.Seconds()

	var chunks []domain.Chunk
	current := domain.Chunk{
		Index:     1,
		StartTime: segments[0].StartTime,
	}

	for _, seg := range segments {
		if seg.StartTime >= current.StartTime+windowSec && len(current.Segments) > 0 {
			current.EndTime = seg.StartTime
			chunks = append(chunks, current)
			current = domain.Chunk{
				Index:     current.Index + 1,
				StartTime: seg.StartTime,
			}
		}
		current.Segments = append(current.Segments, seg)
	}

	last := segments[len(segments)-1]
	current.EndTime = last.EndTime
	if current.EndTime <= current.StartTime {
		current.EndTime = last.StartTime + defaultSegmentDuration
	}
	chunks = append(chunks, current)

	return chunks
}
