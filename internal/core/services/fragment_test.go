package services

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/minute-cli/internal/core/domain"
)

var testWindow = domain.ChunkWindow{Index: 1, Start: 0, End: 900}

func TestValidateFragment_DynamicSections(t *testing.T) {
	raw := json.RawMessage(`{
		"meta": {"resume": "réunion de chantier"},
		"sectionsDynamiques": {
			"decisionsStrategiques": ["Valider le planning", {"decision": "Reporter le lot 3", "contexte": "retard fournisseur"}],
			"actionsUrgentes": [{"action": "Commander les matériaux", "responsable": "Martin"}]
		},
		"vueChronologique": ["[02:15] Ouverture de la réunion"],
		"analysisMetrics": {"totalSegments": 40, "segmentsAnalyses": 36, "qualiteExtraction": "Excellent"}
	}`)

	frag, err := ValidateFragment(raw, testWindow)

	require.NoError(t, err)
	require.Len(t, frag.Sections, 2)
	require.Len(t, frag.Sections["decisionsStrategiques"], 2)
	assert.Equal(t, "Valider le planning", frag.Sections["decisionsStrategiques"][0].Text)
	assert.Equal(t, "Reporter le lot 3", frag.Sections["decisionsStrategiques"][1].Field("decision"))
	assert.Equal(t, []string{"[02:15] Ouverture de la réunion"}, frag.Chronology)
	assert.Equal(t, 40, frag.Metrics.TotalSegments)
	assert.Equal(t, 36, frag.Metrics.SegmentsAnalyzed)
	assert.Equal(t, domain.QualityExcellent, frag.Metrics.Quality)
}

func TestValidateFragment_DropsCommentEntries(t *testing.T) {
	raw := json.RawMessage(`{
		"sectionsDynamiques": {
			"/* nom de section libre */": ["jamais gardé"],
			"objectifs": ["/* exemple d'objectif */", "Achever le gros œuvre"]
		}
	}`)

	frag, err := ValidateFragment(raw, testWindow)

	require.NoError(t, err)
	require.Len(t, frag.Sections, 1)
	require.Len(t, frag.Sections["objectifs"], 1)
	assert.Equal(t, "Achever le gros œuvre", frag.Sections["objectifs"][0].Text)
}

func TestValidateFragment_EmptySectionsRemoved(t *testing.T) {
	raw := json.RawMessage(`{
		"sectionsDynamiques": {
			"vide": [],
			"commentairesSeuls": ["/* modèle */"],
			"pleine": ["un point"]
		}
	}`)

	frag, err := ValidateFragment(raw, testWindow)

	require.NoError(t, err)
	assert.Len(t, frag.Sections, 1)
	assert.Contains(t, frag.Sections, "pleine")
}

func TestValidateFragment_SingleObjectSection(t *testing.T) {
	raw := json.RawMessage(`{
		"sections": {
			"risquesEtMitigations": {"risque": "Gel prolongé", "categorie": "météo"}
		}
	}`)

	frag, err := ValidateFragment(raw, testWindow)

	require.NoError(t, err)
	require.Len(t, frag.Sections["risquesEtMitigations"], 1)
	assert.Equal(t, "Gel prolongé", frag.Sections["risquesEtMitigations"][0].Field("risque"))
}

func TestValidateFragment_StampsChunkWindow(t *testing.T) {
	window := domain.ChunkWindow{Index: 3, Start: 1800, End: 2700}

	frag, err := ValidateFragment(json.RawMessage(`{}`), window)

	require.NoError(t, err)
	assert.Equal(t, 3, frag.Meta["chunkIndex"])
	assert.Equal(t, 1800.0, frag.Meta["chunkStart"])
	assert.Equal(t, 2700.0, frag.Meta["chunkEnd"])
}

func TestValidateFragment_DefaultsMetricsAndChronology(t *testing.T) {
	frag, err := ValidateFragment(json.RawMessage(`{"sections": {"divers": ["un point"]}}`), testWindow)

	require.NoError(t, err)
	assert.NotNil(t, frag.Chronology)
	assert.Empty(t, frag.Chronology)
	assert.Equal(t, domain.DefaultMetrics(), frag.Metrics)
}

func TestValidateFragment_MalformedPayload(t *testing.T) {
	_, err := ValidateFragment(json.RawMessage(`pas du JSON`), testWindow)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode extraction payload")
}

func TestValidateFragment_MalformedSectionSkipped(t *testing.T) {
	raw := json.RawMessage(`{
		"sections": {
			"cassée": 42,
			"valide": ["un point"]
		}
	}`)

	frag, err := ValidateFragment(raw, testWindow)

	require.NoError(t, err)
	assert.Len(t, frag.Sections, 1)
	assert.Contains(t, frag.Sections, "valide")
}

func TestValidateFragment_LegacyFlatShape(t *testing.T) {
	raw := json.RawMessage(`{
		"objectifs": ["Terminer la dalle"],
		"actions": [
			{"action": "Relancer le bureau d'études", "responsable": "Sophie", "priorite": "haute"},
			{"action": "Mettre à jour le planning", "responsable": "Karim", "priorite": "normale"},
			"Vérifier les livraisons"
		],
		"risques": [
			{"risque": "Retard de livraison", "categorie": "planning"},
			{"risque": "", "categorie": "vide"}
		]
	}`)

	frag, err := ValidateFragment(raw, testWindow)

	require.NoError(t, err)
	assert.Equal(t, "Terminer la dalle", frag.Sections["objectifs"][0].Text)

	require.Len(t, frag.Sections["actionsUrgentes"], 1)
	assert.Equal(t, "Relancer le bureau d'études", frag.Sections["actionsUrgentes"][0].Field("action"))

	require.Len(t, frag.Sections["actionsReguliers"], 2)
	assert.Equal(t, "Mettre à jour le planning", frag.Sections["actionsReguliers"][0].Field("action"))
	// Plain-string legacy actions become structured with a default assignee.
	assert.Equal(t, "Vérifier les livraisons", frag.Sections["actionsReguliers"][1].Field("action"))
	assert.Equal(t, "Non assigné", frag.Sections["actionsReguliers"][1].Field("responsable"))

	// Risks without a risk statement are dropped.
	require.Len(t, frag.Sections["risquesEtMitigations"], 1)
	assert.Equal(t, "Retard de livraison", frag.Sections["risquesEtMitigations"][0].Field("risque"))
}

func TestValidateFragment_CanonicalMetricKeys(t *testing.T) {
	raw := json.RawMessage(`{
		"metrics": {"totalSegments": 10, "segmentsAnalyzed": 8, "detailLevel": "Élevé", "coverage": "Complète", "quality": "Bon"}
	}`)

	frag, err := ValidateFragment(raw, testWindow)

	require.NoError(t, err)
	assert.Equal(t, 10, frag.Metrics.TotalSegments)
	assert.Equal(t, 8, frag.Metrics.SegmentsAnalyzed)
	assert.Equal(t, "Élevé", frag.Metrics.DetailLevel)
	assert.Equal(t, "Complète", frag.Metrics.Coverage)
	assert.Equal(t, domain.QualityGood, frag.Metrics.Quality)
}

func TestItemJSONRoundTrip(t *testing.T) {
	items := []domain.Item{
		domain.TextItem("point simple"),
		domain.StructuredItem(map[string]string{"action": "faire", "responsable": "Ana"}),
	}

	data, err := json.Marshal(items)
	require.NoError(t, err)

	var decoded []domain.Item
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, items, decoded)
}

func TestItemUnmarshal_ScalarsStringified(t *testing.T) {
	var item domain.Item
	require.NoError(t, json.Unmarshal([]byte(`{"montant": 1500.5, "valide": true, "note": null}`), &item))

	assert.True(t, item.IsStructured())
	assert.Equal(t, "1500.5", item.Field("montant"))
	assert.Equal(t, "true", item.Field("valide"))
	assert.Equal(t, "", item.Field("note"))
}
