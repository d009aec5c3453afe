// Package prompt builds the structured-extraction prompts shared by all
// extraction engine adapters. The prompt pins the JSON contract the fragment
// validator expects; provider adapters only differ in transport.
package prompt

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/minute-cli/internal/core/domain"
)

// System is the system prompt framing the extraction task.
const System = `Tu es un expert en analyse de réunions BTP. Tu extrais de façon exhaustive les points abordés dans une transcription de réunion.

EXIGENCES TECHNIQUES:
- Format JSON strict respecté
- Réponse UNIQUEMENT en JSON valide
- Pas de commentaires en dehors du JSON
- Supprimer les sections vides, créer celles que le contenu exige`

// template is the user prompt. The /* */ entries are scaffolding the model
// may copy back verbatim; the fragment validator drops them.
const template = `Analyse EXHAUSTIVEMENT cet extrait de transcription et produis un JSON structuré qui capture TOUS les points abordés.

FENÊTRE ANALYSÉE: %s (partie %d de la réunion)
%s
TRANSCRIPTION À ANALYSER:
━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━
%s
━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━

STRUCTURE JSON ATTENDUE - SECTIONS ADAPTATIVES:
{
  "meta": {
    "resume": "Synthèse de cet extrait en deux phrases"
  },
  "sectionsDynamiques": {
    "/* CRÉER AUTANT DE SECTIONS QUE NÉCESSAIRE SELON LE CONTENU RÉEL */": "Exemples ci-dessous",
    "etatLieux": [
      "/* SI la réunion fait un état des lieux */",
      "Point d'état avec détails et mesures concrètes"
    ],
    "problemesIdentifies": [
      "/* TOUS les problèmes, même mineurs */",
      "Problème détaillé: cause, impact, solutions proposées"
    ],
    "decisionsStrategiques": [
      "/* Décisions importantes avec contexte */",
      "Décision: motivations, alternatives étudiées, mise en œuvre"
    ],
    "actionsUrgentes": [
      {
        "action": "Description complète de l'action urgente",
        "responsable": "Nom exact ou fonction précise",
        "echeance": "Date/délai précis",
        "contexte": "Pourquoi cette urgence, enjeux"
      }
    ],
    "actionsReguliers": [
      {
        "action": "Description de l'action de suivi régulier",
        "responsable": "Qui doit s'en occuper",
        "echeance": "Périodicité ou date limite",
        "contexte": "Objectif, méthode, critères de succès"
      }
    ],
    "risquesEtMitigations": [
      {
        "risque": "Description précise du risque identifié",
        "categorie": "Technique/Planning/Budget/Externe/Humain",
        "impact": "Conséquences sur projet/planning/budget",
        "mitigations": "Actions concrètes pour réduire le risque"
      }
    ],
    "aspectsTechniques": ["/* points techniques abordés */"],
    "planningEtDelais": ["/* échéances, jalons, réajustements */"],
    "aspectsFinanciers": ["/* budget, coûts, avenants */"],
    "pointsDivers": ["/* tout autre point important */"]
  },
  "vueChronologique": [
    "/* Séquence des discussions dans l'ordre, horodatée */",
    "[MM:SS] Sujet abordé: teneur de la discussion"
  ],
  "analysisMetrics": {
    "totalSegments": nombre_total_segments_transcript,
    "segmentsAnalyses": nombre_segments_avec_contenu_pertinent,
    "niveauDetaille": "Très élevé/Élevé/Moyen/Basique",
    "couvertureSujets": "Exhaustive/Large/Partielle/Limitée",
    "qualiteExtraction": "Excellent/Bon/Moyen/Insuffisant"
  }
}

🚨 RÈGLES ABSOLUES:
1. N'OMETTRE AUCUN POINT mentionné dans la transcription, même brièvement
2. CRÉER LES SECTIONS qui correspondent au contenu réel, supprimer celles vides
3. DÉTAILLER chaque point avec son contexte, ses acteurs, ses enjeux
4. Les horodatages de la vue chronologique utilisent le temps réel de la réunion

Génère maintenant le JSON le plus exhaustif possible:`

// Build renders the extraction prompt for one chunk.
func Build(transcript, instructions string, window domain.ChunkWindow) string {
	instructionsBlock := ""
	if strings.TrimSpace(instructions) != "" {
		instructionsBlock = fmt.Sprintf("📋 Instructions utilisateur (PRIORITAIRES): %s\n", instructions)
	}

	span := fmt.Sprintf("%s - %s", clock(window.Start), clock(window.End))
	return fmt.Sprintf(template, span, window.Index, instructionsBlock, transcript)
}

func clock(seconds float64) string {
	total := int(seconds)
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}
