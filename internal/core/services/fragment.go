package services

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/custodia-labs/minute-cli/internal/core/domain"
)

// commentMarker prefixes the scaffolding entries extraction models copy out
// of the prompt's JSON template. Keys and items carrying it are noise.
const commentMarker = "/*"

// Meta keys stamped onto each fragment for merge-time attribution.
const (
	metaChunkIndex = "chunkIndex"
	metaChunkStart = "chunkStart"
	metaChunkEnd   = "chunkEnd"
)

// rawExtraction mirrors the shapes the extraction engine may return: the
// dynamic-section shape, the same shape under canonical names, or the legacy
// flat shape with fixed section keys.
type rawExtraction struct {
	Meta map[string]any `json:"meta"`

	DynamicSections map[string]json.RawMessage `json:"sectionsDynamiques"`
	Sections        map[string]json.RawMessage `json:"sections"`

	ChronologyFR []string `json:"vueChronologique"`
	Chronology   []string `json:"chronology"`

	MetricsFR map[string]any `json:"analysisMetrics"`
	Metrics   map[string]any `json:"metrics"`

	// Legacy flat shape.
	Objectives []domain.Item `json:"objectifs"`
	Problems   []domain.Item `json:"problemes"`
	Decisions  []domain.Item `json:"decisions"`
	Actions    []domain.Item `json:"actions"`
	Risks      []domain.Item `json:"risques"`
	Technical  []domain.Item `json:"pointsTechniquesBTP"`
	Planning   []domain.Item `json:"planning"`
	Budget     []domain.Item `json:"budget_chiffrage"`
	Misc       []domain.Item `json:"divers"`
}

// ValidateFragment normalizes one chunk's raw extraction payload into a
// canonical fragment: comment-marker keys and items are dropped, empty
// sections removed, chronology and metrics defaulted, and the chunk window
// stamped onto the fragment meta. A nil error means the fragment is usable
// by the merger; a parse failure means the chunk is skipped.
func ValidateFragment(raw json.RawMessage, window domain.ChunkWindow) (*domain.Fragment, error) {
	var payload rawExtraction
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("decode extraction payload: %w", err)
	}

	frag := &domain.Fragment{
		Meta:       payload.Meta,
		Sections:   map[string][]domain.Item{},
		Chronology: payload.ChronologyFR,
		Metrics:    parseMetrics(payload.MetricsFR, payload.Metrics),
	}
	if frag.Meta == nil {
		frag.Meta = map[string]any{}
	}
	if frag.Chronology == nil {
		frag.Chronology = payload.Chronology
	}
	if frag.Chronology == nil {
		frag.Chronology = []string{}
	}

	sections := payload.DynamicSections
	if sections == nil {
		sections = payload.Sections
	}
	if sections != nil {
		for name, content := range sections {
			if strings.HasPrefix(name, commentMarker) {
				continue
			}
			items, err := decodeSectionItems(content)
			if err != nil {
				// One malformed section does not invalidate the fragment.
				continue
			}
			if items = dropCommentItems(items); len(items) > 0 {
				frag.Sections[name] = items
			}
		}
	} else {
		convertLegacySections(&payload, frag)
	}

	frag.Meta[metaChunkIndex] = window.Index
	frag.Meta[metaChunkStart] = window.Start
	frag.Meta[metaChunkEnd] = window.End

	return frag, nil
}

// decodeSectionItems accepts a list of items or a single structured item.
func decodeSectionItems(content json.RawMessage) ([]domain.Item, error) {
	var items []domain.Item
	if err := json.Unmarshal(content, &items); err == nil {
		return items, nil
	}

	var single domain.Item
	if err := json.Unmarshal(content, &single); err != nil {
		return nil, err
	}
	return []domain.Item{single}, nil
}

func dropCommentItems(items []domain.Item) []domain.Item {
	kept := items[:0]
	for _, item := range items {
		if !item.IsStructured() && strings.HasPrefix(strings.TrimSpace(item.Text), commentMarker) {
			continue
		}
		kept = append(kept, item)
	}
	return kept
}

// parseMetrics reads metrics from the payload, accepting both the canonical
// key names and the names the extraction prompt historically used.
func parseMetrics(primary, fallback map[string]any) domain.Metrics {
	source := primary
	if source == nil {
		source = fallback
	}
	metrics := domain.DefaultMetrics()
	if source == nil {
		return metrics
	}

	if v, ok := intValue(source, "totalSegments"); ok {
		metrics.TotalSegments = v
	}
	if v, ok := intValue(source, "segmentsAnalyzed", "segmentsAnalyses"); ok {
		metrics.SegmentsAnalyzed = v
	}
	if v, ok := stringValue(source, "detailLevel", "niveauDetaille"); ok {
		metrics.DetailLevel = v
	}
	if v, ok := stringValue(source, "coverage", "couvertureSujets"); ok {
		metrics.Coverage = v
	}
	if v, ok := stringValue(source, "quality", "qualiteExtraction"); ok {
		metrics.Quality = v
	}
	return metrics
}

func intValue(m map[string]any, keys ...string) (int, bool) {
	for _, key := range keys {
		switch v := m[key].(type) {
		case float64:
			return int(v), true
		case int:
			return v, true
		}
	}
	return 0, false
}

func stringValue(m map[string]any, keys ...string) (string, bool) {
	for _, key := range keys {
		if v, ok := m[key].(string); ok && v != "" {
			return v, true
		}
	}
	return "", false
}

// convertLegacySections maps the legacy flat extraction shape onto dynamic
// section names so older engine prompts keep working.
func convertLegacySections(payload *rawExtraction, frag *domain.Fragment) {
	put := func(name string, items []domain.Item) {
		if items = dropCommentItems(items); len(items) > 0 {
			frag.Sections[name] = items
		}
	}

	put("objectifs", payload.Objectives)
	put("problemesIdentifies", payload.Problems)
	put("decisionsStrategiques", payload.Decisions)
	put("aspectsTechniques", payload.Technical)
	put("planningEtDelais", payload.Planning)
	put("aspectsFinanciers", payload.Budget)
	put("pointsDivers", payload.Misc)

	if len(payload.Actions) > 0 {
		var urgent, regular []domain.Item
		for _, action := range payload.Actions {
			if !action.IsStructured() {
				regular = append(regular, domain.StructuredItem(map[string]string{
					"action":      action.Text,
					"responsable": "Non assigné",
				}))
				continue
			}
			switch strings.ToLower(action.Field("priorite")) {
			case "haute", "urgent", "urgente":
				urgent = append(urgent, action)
			default:
				regular = append(regular, action)
			}
		}
		put("actionsUrgentes", urgent)
		put("actionsReguliers", regular)
	}

	if len(payload.Risks) > 0 {
		var risks []domain.Item
		for _, risk := range payload.Risks {
			if risk.IsStructured() && strings.TrimSpace(risk.Field("risque")) != "" {
				risks = append(risks, risk)
			}
		}
		put("risquesEtMitigations", risks)
	}
}
