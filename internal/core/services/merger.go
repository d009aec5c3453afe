package services

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/custodia-labs/minute-cli/internal/core/domain"
)

// fieldSeparator joins differing field values when structured duplicates
// are merged.
const fieldSeparator = " | "

// dedupKeyMaxLen bounds the text part of a deduplication key.
const dedupKeyMaxLen = 100

// mergeMethodology is recorded on every merged analysis.
const mergeMethodology = "Analyse par fenêtres temporelles avec fusion dédupliquée des extractions"

// chronoTimestampRe extracts the leading [MM:SS timestamp of a chronology
// entry. Entries without one sort as 0.
var chronoTimestampRe = regexp.MustCompile(`^\s*\[(\d{1,3}):(\d{2})`)

// timePrefixRe strips a leading bracketed time window from plain-text items
// before key computation, so the same observation seen in two windows
// deduplicates.
var timePrefixRe = regexp.MustCompile(`^\s*\[[^\]]*\]\s*`)

// MergeFragments combines all surviving fragments, in chunk order, into one
// coherent, de-duplicated, chronologically-ordered analysis. It never fails:
// the worst case is a report carrying only degraded-quality metrics.
func MergeFragments(fragments []domain.Fragment, info domain.MeetingInfo, degradations []domain.Degradation) *domain.MergedAnalysis {
	analysis := &domain.MergedAnalysis{
		Meta:       mergeMeta(fragments, info, degradations),
		Sections:   map[string][]domain.Item{},
		Chronology: []string{},
	}

	if len(fragments) == 1 {
		// Single surviving fragment: no multi-source logic needed, the
		// fragment already is the report.
		frag := fragments[0]
		window := fragmentWindow(frag)
		for name, items := range frag.Sections {
			enriched := make([]domain.Item, 0, len(items))
			for _, item := range items {
				enriched = append(enriched, enrichWithWindow(item, window))
			}
			analysis.Sections[name] = enriched
		}
		analysis.Chronology = mergeChronology(fragments)
		analysis.Metrics = domain.MergedMetrics{
			TotalSegments:    frag.Metrics.TotalSegments,
			SegmentsAnalyzed: frag.Metrics.SegmentsAnalyzed,
			Quality:          frag.Metrics.Quality,
			ChunksProcessed:  1,
			Methodology:      mergeMethodology,
		}
		return analysis
	}

	merged, dropped := mergeSections(fragments, analysis.Sections)
	analysis.Chronology = mergeChronology(fragments)
	analysis.Metrics = mergeMetrics(fragments)
	analysis.Metrics.ItemsMerged = merged
	analysis.Metrics.DuplicatesDropped = dropped

	return analysis
}

// mergeMeta combines meeting metadata with fragment count and coverage.
func mergeMeta(fragments []domain.Fragment, info domain.MeetingInfo, degradations []domain.Degradation) map[string]any {
	var covered float64
	for _, frag := range fragments {
		window := fragmentWindow(frag)
		covered += window.End - window.Start
	}

	coverage := 0.0
	if info.Duration > 0 {
		coverage = covered / info.Duration
	}

	meta := map[string]any{
		"projectName":          info.ProjectName,
		"meetingTitle":         info.Title,
		"meetingType":          InferMeetingType(info.Instructions),
		"meetingDate":          info.Date,
		"duration":             info.Duration,
		"participantsExpected": info.ExpectedSpeakers,
		"participantsDetected": info.Participants,
		"userInstructions":     info.Instructions,
		"fragmentCount":        len(fragments),
		"coverage":             coverage,
		"coverageNote": fmt.Sprintf("%d fenêtre(s) d'analyse couvrant %.0f%% de la réunion",
			len(fragments), coverage*100),
	}
	if len(degradations) > 0 {
		meta["degradations"] = degradations
	}
	return meta
}

// mergeSections computes the union of section names across fragments and
// merges each section's items in chunk order. Returns the number of
// structured items merged into an existing entry and the number of
// plain-text duplicates dropped.
func mergeSections(fragments []domain.Fragment, out map[string][]domain.Item) (merged, dropped int) {
	// Union of section names in first-seen order, so output is stable.
	var names []string
	seen := map[string]bool{}
	for _, frag := range fragments {
		for name := range frag.Sections {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	// Map iteration order is random; fix it per fragment.
	sortSectionNames(fragments, names)

	for _, name := range names {
		items, m, d := mergeOneSection(fragments, name)
		merged += m
		dropped += d
		if len(items) > 0 {
			out[name] = items
		}
	}
	return merged, dropped
}

// sortSectionNames orders the union deterministically: by the chunk index
// where the section first appears, then alphabetically.
func sortSectionNames(fragments []domain.Fragment, names []string) {
	firstChunk := map[string]int{}
	for i := len(fragments) - 1; i >= 0; i-- {
		for name := range fragments[i].Sections {
			firstChunk[name] = i
		}
	}
	for i := 1; i < len(names); i++ {
		for j := i; j > 0; j-- {
			a, b := names[j-1], names[j]
			if firstChunk[a] > firstChunk[b] || (firstChunk[a] == firstChunk[b] && a > b) {
				names[j-1], names[j] = b, a
			} else {
				break
			}
		}
	}
}

func mergeOneSection(fragments []domain.Fragment, name string) (items []domain.Item, merged, dropped int) {
	index := map[string]int{}

	for _, frag := range fragments {
		window := fragmentWindow(frag)
		for _, item := range frag.Sections[name] {
			// Key on the item as extracted: enrichment stamps the chunk
			// window onto context fields, which would make the same point
			// seen in two windows never match.
			key := dedupKey(name, item)
			enriched := enrichWithWindow(item, window)

			pos, exists := index[key]
			if !exists {
				// First occurrence fixes the position; fragments arrive in
				// chunk order so first-seen order is chronological.
				index[key] = len(items)
				items = append(items, enriched)
				continue
			}

			if !enriched.IsStructured() {
				// Repeated plain-text observations carry no new information.
				dropped++
				continue
			}
			items[pos] = mergeStructured(items[pos], enriched)
			merged++
		}
	}
	return items, merged, dropped
}

// enrichWithWindow clones the item and attaches the chunk's time window:
// appended to an existing context-like field or added as a separate
// time_context field for structured items, prepended as a bracketed prefix
// for plain strings.
func enrichWithWindow(item domain.Item, window domain.ChunkWindow) domain.Item {
	span := formatWindow(window)
	enriched := item.Clone()

	if !enriched.IsStructured() {
		enriched.Text = span + " " + enriched.Text
		return enriched
	}

	for _, field := range []string{"contexte", "context"} {
		if v := enriched.Fields[field]; v != "" {
			enriched.Fields[field] = v + " " + span
			return enriched
		}
	}
	enriched.Fields["time_context"] = span
	return enriched
}

// dedupKey derives the string identifying "the same underlying point"
// across fragments.
func dedupKey(section string, item domain.Item) string {
	if !item.IsStructured() {
		text := timePrefixRe.ReplaceAllString(item.Text, "")
		return "text:" + truncate(strings.TrimSpace(text), dedupKeyMaxLen)
	}

	if action := coalesce(item, "action"); action != "" {
		return "action:" + truncate(action, dedupKeyMaxLen) + ":" + coalesce(item, "responsable", "responsible")
	}
	if risk := coalesce(item, "risque", "risk"); risk != "" {
		return "risk:" + truncate(risk, dedupKeyMaxLen) + ":" + coalesce(item, "categorie", "category")
	}

	// Generic structured item: first matching field from a fixed priority
	// list.
	for _, field := range []string{"titre", "title", "description", "point", "decision"} {
		if v := item.Field(field); v != "" {
			return section + ":" + truncate(v, dedupKeyMaxLen)
		}
	}

	// Last resort: all fields in stable order.
	var parts []string
	for _, name := range item.FieldNames() {
		parts = append(parts, item.Field(name))
	}
	return section + ":" + truncate(strings.Join(parts, ":"), dedupKeyMaxLen)
}

// mergeStructured merges a duplicate occurrence into the existing item:
// previously-empty fields are filled, differing values concatenated.
func mergeStructured(existing, incoming domain.Item) domain.Item {
	for _, name := range incoming.FieldNames() {
		value := incoming.Field(name)
		if value == "" {
			continue
		}
		current := existing.Fields[name]
		switch {
		case current == "":
			existing.Fields[name] = value
		case current != value && !strings.Contains(current, value):
			existing.Fields[name] = current + fieldSeparator + value
		}
	}
	return existing
}

// mergeChronology concatenates all fragments' chronology entries and stable
// sorts them by their extracted leading timestamp, so entries with equal or
// missing timestamps keep their chunk-processing order.
func mergeChronology(fragments []domain.Fragment) []string {
	type entry struct {
		text string
		at   int
	}

	var entries []entry
	for _, frag := range fragments {
		for _, line := range frag.Chronology {
			entries = append(entries, entry{text: line, at: chronoTimestamp(line)})
		}
	}

	// Insertion sort keeps the sort stable without pulling in sort.SliceStable
	// on a two-field struct; entry counts are small.
	for i := 1; i < len(entries); i++ {
		for j := i; j > 0 && entries[j].at < entries[j-1].at; j-- {
			entries[j], entries[j-1] = entries[j-1], entries[j]
		}
	}

	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.text
	}
	return out
}

// chronoTimestamp extracts the leading [MM:SS timestamp in seconds,
// defaulting to 0 when absent.
func chronoTimestamp(line string) int {
	m := chronoTimestampRe.FindStringSubmatch(line)
	if m == nil {
		return 0
	}
	minutes, _ := strconv.Atoi(m[1])
	seconds, _ := strconv.Atoi(m[2])
	return minutes*60 + seconds
}

// mergeMetrics sums the additive counters and averages the qualitative
// quality labels over their ordinal scale.
func mergeMetrics(fragments []domain.Fragment) domain.MergedMetrics {
	metrics := domain.MergedMetrics{
		ChunksProcessed: len(fragments),
		Methodology:     mergeMethodology,
	}

	ordinalSum, ordinalCount := 0, 0
	for _, frag := range fragments {
		metrics.TotalSegments += frag.Metrics.TotalSegments
		metrics.SegmentsAnalyzed += frag.Metrics.SegmentsAnalyzed
		if ord := domain.QualityOrdinal(frag.Metrics.Quality); ord > 0 {
			ordinalSum += ord
			ordinalCount++
		}
	}

	if ordinalCount > 0 {
		avg := float64(ordinalSum) / float64(ordinalCount)
		metrics.Quality = domain.QualityLabel(int(math.Round(avg)))
	} else {
		metrics.Quality = domain.QualityGood
	}
	return metrics
}

// fragmentWindow reads the chunk window the validator stamped on the
// fragment meta.
func fragmentWindow(frag domain.Fragment) domain.ChunkWindow {
	window := domain.ChunkWindow{}
	if v, ok := intValue(frag.Meta, metaChunkIndex); ok {
		window.Index = v
	}
	if v, ok := floatValue(frag.Meta, metaChunkStart); ok {
		window.Start = v
	}
	if v, ok := floatValue(frag.Meta, metaChunkEnd); ok {
		window.End = v
	}
	return window
}

func floatValue(m map[string]any, keys ...string) (float64, bool) {
	for _, key := range keys {
		switch v := m[key].(type) {
		case float64:
			return v, true
		case int:
			return float64(v), true
		}
	}
	return 0, false
}

// formatWindow renders a chunk window as "[MM:SS-MM:SS]".
func formatWindow(window domain.ChunkWindow) string {
	return "[" + formatClock(window.Start) + "-" + formatClock(window.End) + "]"
}

// formatClock renders seconds as MM:SS.
func formatClock(seconds float64) string {
	total := int(seconds)
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen]
}

func coalesce(item domain.Item, fields ...string) string {
	for _, field := range fields {
		if v := item.Field(field); v != "" {
			return v
		}
	}
	return ""
}

// InferMeetingType deduces the meeting type from the user's instructions,
// falling back to a generic label.
func InferMeetingType(instructions string) string {
	if strings.TrimSpace(instructions) == "" {
		return "Autre"
	}
	lower := strings.ToLower(instructions)
	switch {
	case strings.Contains(lower, "chantier"):
		return "Réunion de chantier"
	case strings.Contains(lower, "avancement"), strings.Contains(lower, "suivi"):
		return "Point d'avancement"
	case strings.Contains(lower, "coordination"):
		return "Réunion de coordination"
	case strings.Contains(lower, "sécurité"):
		return "Réunion sécurité"
	case strings.Contains(lower, "livraison"):
		return "Réunion de livraison"
	default:
		return "Réunion personnalisée"
	}
}
