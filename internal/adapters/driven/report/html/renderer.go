// Package html renders the merged analysis into a standalone HTML report.
package html

import (
	"context"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/custodia-labs/minute-cli/internal/core/domain"
	"github.com/custodia-labs/minute-cli/internal/core/ports/driven"
)

// Ensure Renderer implements the interface.
var _ driven.ReportRenderer = (*Renderer)(nil)

// sectionTitles maps canonical section keys to their display titles.
// Unknown keys fall back to a prettified form of the key itself.
var sectionTitles = map[string]string{
	"etatLieux":             "État des lieux",
	"avancementTravaux":     "Avancement des travaux",
	"problemesIdentifies":   "Problèmes identifiés",
	"decisionsStrategiques": "Décisions stratégiques",
	"objectifs":             "Objectifs de la réunion",
	"actionsUrgentes":       "Actions urgentes",
	"actionsReguliers":      "Actions de suivi",
	"aspectsTechniques":     "Aspects techniques",
	"planningEtDelais":      "Planning et délais",
	"aspectsFinanciers":     "Aspects financiers",
	"relationsFournisseurs": "Relations fournisseurs",
	"aspectsReglementaires": "Aspects réglementaires",
	"communicationClient":   "Communication client",
	"risquesEtMitigations":  "Risques et mitigations",
	"pointsDivers":          "Points divers",
	"syntheseDesAccords":    "Synthèse des accords",
	"pointsEnSuspens":       "Points en suspens",
}

// sectionOrder fixes the display order of known sections. Unknown sections
// render after these, sorted by key.
var sectionOrder = []string{
	"etatLieux",
	"avancementTravaux",
	"problemesIdentifies",
	"decisionsStrategiques",
	"objectifs",
	"actionsUrgentes",
	"actionsReguliers",
	"aspectsTechniques",
	"planningEtDelais",
	"aspectsFinanciers",
	"relationsFournisseurs",
	"aspectsReglementaires",
	"communicationClient",
	"risquesEtMitigations",
	"pointsDivers",
	"syntheseDesAccords",
	"pointsEnSuspens",
}

// Renderer writes the report as a single self-contained HTML file.
type Renderer struct {
	tmpl *template.Template
}

// NewRenderer creates an HTML report renderer.
func NewRenderer() *Renderer {
	return &Renderer{
		tmpl: template.Must(template.New("report").Parse(reportTemplate)),
	}
}

// reportSection is one rendered section of the report.
type reportSection struct {
	Title string
	Items []reportItem
}

// reportItem is one rendered entry: plain text or labelled fields.
type reportItem struct {
	Text   string
	Fields []reportField
}

type reportField struct {
	Label string
	Value string
}

// reportData is the template context.
type reportData struct {
	Info       domain.MeetingInfo
	Meta       map[string]any
	Sections   []reportSection
	Chronology []string
	Metrics    domain.MergedMetrics
	Segments   []segmentLine
	Duration   string
}

type segmentLine struct {
	Timestamp string
	Speaker   string
	Text      string
}

// Render writes the report HTML into outDir and returns its path.
func (r *Renderer) Render(ctx context.Context, analysis *domain.MergedAnalysis, segments []domain.Segment, info domain.MeetingInfo, outDir string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if analysis == nil {
		return "", fmt.Errorf("render report: nil analysis")
	}

	if err := os.MkdirAll(outDir, 0o700); err != nil {
		return "", fmt.Errorf("create report dir: %w", err)
	}

	data := reportData{
		Info:       info,
		Meta:       analysis.Meta,
		Sections:   orderedSections(analysis.Sections),
		Chronology: analysis.Chronology,
		Metrics:    analysis.Metrics,
		Segments:   segmentLines(segments),
		Duration:   formatDuration(info.Duration),
	}

	path := filepath.Join(outDir, "rapport.html")
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return "", fmt.Errorf("create report file: %w", err)
	}
	defer file.Close()

	if err := r.tmpl.Execute(file, data); err != nil {
		return "", fmt.Errorf("render report: %w", err)
	}

	return path, nil
}

// orderedSections converts the section map into display order: known keys
// first in their fixed order, then unknown keys alphabetically.
func orderedSections(sections map[string][]domain.Item) []reportSection {
	out := make([]reportSection, 0, len(sections))
	seen := make(map[string]bool, len(sections))

	appendSection := func(key string) {
		items := sections[key]
		if len(items) == 0 {
			return
		}
		out = append(out, reportSection{
			Title: sectionTitle(key),
			Items: reportItems(items),
		})
		seen[key] = true
	}

	for _, key := range sectionOrder {
		if _, ok := sections[key]; ok {
			appendSection(key)
		}
	}

	var rest []string
	for key := range sections {
		if !seen[key] {
			rest = append(rest, key)
		}
	}
	sort.Strings(rest)
	for _, key := range rest {
		appendSection(key)
	}

	return out
}

func reportItems(items []domain.Item) []reportItem {
	out := make([]reportItem, 0, len(items))
	for _, item := range items {
		if !item.IsStructured() {
			out = append(out, reportItem{Text: item.Text})
			continue
		}

		keys := make([]string, 0, len(item.Fields))
		for key := range item.Fields {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		fields := make([]reportField, 0, len(keys))
		for _, key := range keys {
			if item.Fields[key] == "" {
				continue
			}
			fields = append(fields, reportField{
				Label: fieldLabel(key),
				Value: item.Fields[key],
			})
		}
		out = append(out, reportItem{Fields: fields})
	}
	return out
}

func segmentLines(segments []domain.Segment) []segmentLine {
	out := make([]segmentLine, 0, len(segments))
	for _, s := range segments {
		out = append(out, segmentLine{
			Timestamp: clock(s.StartTime),
			Speaker:   s.Speaker,
			Text:      s.Text,
		})
	}
	return out
}

// sectionTitle returns the display title for a section key.
func sectionTitle(key string) string {
	if title, ok := sectionTitles[key]; ok {
		return title
	}
	// prettify unknown camelCase keys: "suiviQualite" -> "Suivi qualite"
	var b strings.Builder
	for i, r := range key {
		switch {
		case i == 0:
			b.WriteRune(r &^ 0x20)
		case r >= 'A' && r <= 'Z':
			b.WriteByte(' ')
			b.WriteRune(r | 0x20)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// fieldLabel maps structured item field names to display labels.
func fieldLabel(key string) string {
	switch key {
	case "action":
		return "Action"
	case "responsable":
		return "Responsable"
	case "echeance":
		return "Échéance"
	case "priorite":
		return "Priorité"
	case "risque":
		return "Risque"
	case "impact":
		return "Impact"
	case "mitigation":
		return "Mitigation"
	case "contexte":
		return "Contexte"
	case "detail":
		return "Détail"
	case "time_context":
		return "Période"
	default:
		return sectionTitle(key)
	}
}

// clock formats seconds as MM:SS.
func clock(seconds float64) string {
	total := int(seconds)
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

// formatDuration renders a duration in seconds as "1h05" or "42 min".
func formatDuration(seconds float64) string {
	minutes := int(seconds) / 60
	if minutes >= 60 {
		return fmt.Sprintf("%dh%02d", minutes/60, minutes%60)
	}
	return fmt.Sprintf("%d min", minutes)
}

const reportTemplate = `<!DOCTYPE html>
<html lang="fr">
<head>
<meta charset="utf-8">
<title>Rapport de réunion — {{.Info.Title}}</title>
<style>
body { font-family: Arial, sans-serif; color: #1a1a2e; max-width: 900px; margin: 2em auto; padding: 0 1em; }
h1 { color: #16213e; border-bottom: 3px solid #0f3460; padding-bottom: 0.3em; }
h2 { color: #0f3460; margin-top: 1.6em; }
.meta { color: #555; margin-bottom: 2em; }
.meta span { margin-right: 1.5em; }
ul { padding-left: 1.4em; }
li { margin-bottom: 0.4em; }
.fields dt { font-weight: bold; display: inline; }
.fields dd { display: inline; margin: 0 0.8em 0 0.3em; }
.chrono li { list-style: none; }
.metrics td { padding: 0.2em 1em 0.2em 0; }
.transcript { font-size: 0.9em; color: #333; }
.transcript .speaker { font-weight: bold; color: #0f3460; }
.transcript .ts { color: #888; margin-right: 0.5em; }
</style>
</head>
<body>
<h1>{{.Info.Title}}</h1>
<div class="meta">
<span>Projet : {{.Info.ProjectName}}</span>
<span>Date : {{.Info.Date}}</span>
<span>Durée : {{.Duration}}</span>
{{if .Info.Participants}}<span>Participants : {{range $i, $p := .Info.Participants}}{{if $i}}, {{end}}{{$p}}{{end}}</span>{{end}}
</div>

{{range .Sections}}
<h2>{{.Title}}</h2>
<ul>
{{range .Items}}{{if .Text}}<li>{{.Text}}</li>
{{else}}<li><dl class="fields">{{range .Fields}}<dt>{{.Label}} :</dt><dd>{{.Value}}</dd>{{end}}</dl></li>
{{end}}{{end}}</ul>
{{end}}

{{if .Chronology}}
<h2>Vue chronologique de la réunion</h2>
<ul class="chrono">
{{range .Chronology}}<li>{{.}}</li>
{{end}}</ul>
{{end}}

<h2>Métriques d'analyse</h2>
<table class="metrics">
<tr><td>Segments analysés</td><td>{{.Metrics.SegmentsAnalyzed}} / {{.Metrics.TotalSegments}}</td></tr>
<tr><td>Qualité</td><td>{{.Metrics.Quality}}</td></tr>
<tr><td>Fenêtres traitées</td><td>{{.Metrics.ChunksProcessed}}</td></tr>
<tr><td>Méthodologie</td><td>{{.Metrics.Methodology}}</td></tr>
</table>

{{if .Segments}}
<h2>Annexe — Transcription complète</h2>
<div class="transcript">
{{range .Segments}}<p><span class="ts">[{{.Timestamp}}]</span><span class="speaker">{{.Speaker}} :</span> {{.Text}}</p>
{{end}}</div>
{{end}}
</body>
</html>
`
