package domain

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Item is one entry in an analysis section. It is a tagged variant:
// either plain text or a structured record of named string fields
// (e.g. action, responsible, context). The JSON form is a bare string
// for plain items and an object for structured ones.
type Item struct {
	// Text is the content of a plain-text item. Unused when Fields is set.
	Text string

	// Fields holds the named fields of a structured item.
	// Nil for plain-text items.
	Fields map[string]string
}

// TextItem returns a plain-text item.
func TextItem(text string) Item {
	return Item{Text: text}
}

// StructuredItem returns a structured item over the given fields.
func StructuredItem(fields map[string]string) Item {
	return Item{Fields: fields}
}

// IsStructured returns true for structured items.
func (it Item) IsStructured() bool {
	return it.Fields != nil
}

// Field returns the named field of a structured item, or "" if absent.
func (it Item) Field(name string) string {
	return it.Fields[name]
}

// FieldNames returns the item's field names in sorted order.
func (it Item) FieldNames() []string {
	names := make([]string, 0, len(it.Fields))
	for name := range it.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clone returns a deep copy. The merger mutates items while fragments
// must stay read-only, so enrichment always works on copies.
func (it Item) Clone() Item {
	if !it.IsStructured() {
		return Item{Text: it.Text}
	}
	fields := make(map[string]string, len(it.Fields))
	for k, v := range it.Fields {
		fields[k] = v
	}
	return Item{Fields: fields}
}

// MarshalJSON encodes plain items as strings and structured items as objects.
func (it Item) MarshalJSON() ([]byte, error) {
	if it.IsStructured() {
		return json.Marshal(it.Fields)
	}
	return json.Marshal(it.Text)
}

// UnmarshalJSON accepts a bare string or an object. Scalar object values
// are stringified; nested values are kept as compact JSON text.
func (it *Item) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		it.Text = text
		it.Fields = nil
		return nil
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("item must be a string or an object: %w", err)
	}

	fields := make(map[string]string, len(raw))
	for key, value := range raw {
		switch v := value.(type) {
		case string:
			fields[key] = v
		case nil:
			fields[key] = ""
		case float64, bool:
			fields[key] = fmt.Sprintf("%v", v)
		default:
			encoded, err := json.Marshal(v)
			if err != nil {
				return fmt.Errorf("encode nested field %q: %w", key, err)
			}
			fields[key] = string(encoded)
		}
	}
	it.Text = ""
	it.Fields = fields
	return nil
}

// Metrics are the per-fragment extraction quality indicators.
type Metrics struct {
	TotalSegments    int    `json:"totalSegments"`
	SegmentsAnalyzed int    `json:"segmentsAnalyzed"`
	DetailLevel      string `json:"detailLevel"`
	Coverage         string `json:"coverage"`
	Quality          string `json:"quality"`
}

// DefaultMetrics returns the neutral metrics used when a fragment
// carries none.
func DefaultMetrics() Metrics {
	return Metrics{
		TotalSegments:    0,
		SegmentsAnalyzed: 0,
		DetailLevel:      "Moyen",
		Coverage:         "Partielle",
		Quality:          "Bon",
	}
}

// Quality labels, best to worst, with their ordinal values.
const (
	QualityExcellent    = "Excellent"
	QualityGood         = "Bon"
	QualityAverage      = "Moyen"
	QualityInsufficient = "Insuffisant"
)

// QualityOrdinal maps a quality label to its ordinal (Excellent=4 down to
// Insuffisant=1). Unknown labels map to 0.
func QualityOrdinal(label string) int {
	switch label {
	case QualityExcellent:
		return 4
	case QualityGood:
		return 3
	case QualityAverage:
		return 2
	case QualityInsufficient:
		return 1
	default:
		return 0
	}
}

// QualityLabel maps an ordinal back to its label. Out-of-range values
// clamp to the nearest label.
func QualityLabel(ordinal int) string {
	switch {
	case ordinal >= 4:
		return QualityExcellent
	case ordinal == 3:
		return QualityGood
	case ordinal == 2:
		return QualityAverage
	default:
		return QualityInsufficient
	}
}

// Fragment is the validated, canonical structured-extraction output for one
// chunk. Fragments are produced once per chunk and are read-only inputs to
// merging.
type Fragment struct {
	Meta       map[string]any    `json:"meta"`
	Sections   map[string][]Item `json:"sections"`
	Chronology []string          `json:"chronology"`
	Metrics    Metrics           `json:"metrics"`
}

// MergedMetrics aggregates extraction metrics across all surviving fragments.
type MergedMetrics struct {
	TotalSegments     int    `json:"totalSegments"`
	SegmentsAnalyzed  int    `json:"segmentsAnalyzed"`
	Quality           string `json:"quality"`
	ChunksProcessed   int    `json:"chunksProcessed"`
	ItemsMerged       int    `json:"itemsMerged"`
	DuplicatesDropped int    `json:"duplicatesDropped"`
	Methodology       string `json:"methodology"`
}

// MergedAnalysis is the final, single report for a meeting. It is written
// once per processing run and replaced wholesale on reprocessing.
type MergedAnalysis struct {
	Meta       map[string]any    `json:"meta"`
	Sections   map[string][]Item `json:"sections"`
	Chronology []string          `json:"chronology"`
	Metrics    MergedMetrics     `json:"metrics"`
}

// MeetingInfo is the top-level metadata handed to the merger and renderer.
type MeetingInfo struct {
	ProjectName      string   `json:"project_name"`
	Title            string   `json:"title"`
	Date             string   `json:"date"`
	Duration         float64  `json:"duration"`
	ExpectedSpeakers int      `json:"expected_speakers"`
	Participants     []string `json:"participants"`
	Instructions     string   `json:"instructions"`
}
