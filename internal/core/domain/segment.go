package domain

// Turn is one speaker turn produced by the diarization engine.
type Turn struct {
	Speaker string  `json:"speaker"`
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
}

// Duration returns the turn length in seconds.
func (t Turn) Duration() float64 {
	return t.End - t.Start
}

// TranscriptSegment is one timed text segment from the transcription engine.
type TranscriptSegment struct {
	Start      float64 `json:"start"`
	End        float64 `json:"end"`
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence,omitempty"`
}

// Transcription is the full output of the transcription engine.
type Transcription struct {
	// Text is the full transcript text.
	Text string `json:"text"`

	// Language is the detected or requested language code.
	Language string `json:"language"`

	// Segments are the timed transcript segments.
	Segments []TranscriptSegment `json:"segments"`

	// Service names the engine that produced the result
	// ("whisper", "google", "fallback").
	Service string `json:"service"`
}

// Segment is a speaker-attributed slice of transcript produced by the
// aligner. Segments for one meeting are sorted ascending by StartTime
// and are immutable once created.
type Segment struct {
	Speaker   string  `json:"speaker"`
	StartTime float64 `json:"start_time"`
	EndTime   float64 `json:"end_time"`
	Text      string  `json:"text"`
}

// Duration returns the segment length in seconds.
func (s Segment) Duration() float64 {
	return s.EndTime - s.StartTime
}

// Chunk is a contiguous time window of segments processed as one
// independent extraction unit. Chunks for one meeting are contiguous,
// non-overlapping, 1-indexed and partition the full segment list exactly.
type Chunk struct {
	Index     int       `json:"index"`
	StartTime float64   `json:"start_time"`
	EndTime   float64   `json:"end_time"`
	Segments  []Segment `json:"segments"`
}

// Duration returns the chunk window length in seconds.
func (c Chunk) Duration() float64 {
	return c.EndTime - c.StartTime
}

// Window returns the chunk's time window without its segment payload.
func (c Chunk) Window() ChunkWindow {
	return ChunkWindow{Index: c.Index, Start: c.StartTime, End: c.EndTime}
}

// ChunkWindow identifies a chunk's position and time bounds. It is stamped
// onto fragments so the merger can attribute items to their source window.
type ChunkWindow struct {
	Index int     `json:"index"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// SpeakerStats aggregates talk time for one speaker.
type SpeakerStats struct {
	TotalDuration          float64 `json:"total_duration"`
	SegmentCount           int     `json:"segment_count"`
	Percentage             float64 `json:"percentage"`
	AverageSegmentDuration float64 `json:"average_segment_duration"`
}

// TranscriptDocument is the persisted transcript artifact consumed by the
// report renderer: aligned segments plus speaker statistics.
type TranscriptDocument struct {
	FullText string                  `json:"full_text"`
	Language string                  `json:"language"`
	Service  string                  `json:"service"`
	Segments []Segment               `json:"segments"`
	Speakers map[string]SpeakerStats `json:"speakers"`
}
