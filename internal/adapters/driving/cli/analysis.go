package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/minute-cli/internal/core/domain"
)

var analysisCmd = &cobra.Command{
	Use:   "analysis",
	Short: "Access the merged analysis of a processed meeting",
}

var analysisShowCmd = &cobra.Command{
	Use:   "show <meeting-id>",
	Short: "Print the analysis summary",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnalysisShow,
}

var analysisExportCmd = &cobra.Command{
	Use:   "export <meeting-id>",
	Short: "Export the analysis as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnalysisExport,
}

func init() {
	analysisExportCmd.Flags().StringP("out", "o", "", "output file (default: stdout)")
	analysisCmd.AddCommand(analysisShowCmd)
	analysisCmd.AddCommand(analysisExportCmd)
	rootCmd.AddCommand(analysisCmd)
}

func runAnalysisShow(cmd *cobra.Command, args []string) error {
	if meetingService == nil {
		return errors.New("meeting service not configured")
	}

	analysis, err := meetingService.Analysis(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("get analysis: %w", err)
	}

	if meetingType, ok := analysis.Meta["meetingType"].(string); ok && meetingType != "" {
		cmd.Printf("Type de réunion : %s\n", meetingType)
	}
	if degraded, ok := analysis.Meta["degraded"].(bool); ok && degraded {
		cmd.Println("Attention : analyse dégradée (extraction indisponible).")
	}
	cmd.Println()

	keys := make([]string, 0, len(analysis.Sections))
	for key := range analysis.Sections {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		cmd.Printf("## %s\n", key)
		for _, item := range analysis.Sections[key] {
			cmd.Printf("  - %s\n", itemLine(item))
		}
		cmd.Println()
	}

	if len(analysis.Chronology) > 0 {
		cmd.Println("## Chronologie")
		for _, entry := range analysis.Chronology {
			cmd.Printf("  %s\n", entry)
		}
		cmd.Println()
	}

	cmd.Printf("Qualité : %s, %d/%d segments analysés sur %d fenêtre(s)\n",
		analysis.Metrics.Quality,
		analysis.Metrics.SegmentsAnalyzed,
		analysis.Metrics.TotalSegments,
		analysis.Metrics.ChunksProcessed)

	return nil
}

func runAnalysisExport(cmd *cobra.Command, args []string) error {
	if meetingService == nil {
		return errors.New("meeting service not configured")
	}

	analysis, err := meetingService.Analysis(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("get analysis: %w", err)
	}

	encoded, err := json.MarshalIndent(analysis, "", "  ")
	if err != nil {
		return fmt.Errorf("encode analysis: %w", err)
	}

	out, _ := cmd.Flags().GetString("out") //nolint:errcheck // flag is declared above
	if out == "" {
		cmd.Println(string(encoded))
		return nil
	}

	if err := os.WriteFile(out, encoded, 0o600); err != nil {
		return fmt.Errorf("write analysis: %w", err)
	}
	cmd.Printf("Analysis exported to %s\n", out)

	return nil
}

// itemLine renders one analysis item as a single text line.
func itemLine(item domain.Item) string {
	if !item.IsStructured() {
		return item.Text
	}

	// Put the main field first when present.
	ordered := make([]string, 0, len(item.Fields))
	for _, key := range []string{"action", "risque", "decision"} {
		if v := item.Field(key); v != "" {
			ordered = append(ordered, v)
		}
	}
	for _, key := range item.FieldNames() {
		switch key {
		case "action", "risque", "decision":
			continue
		}
		if v := item.Field(key); v != "" {
			ordered = append(ordered, fmt.Sprintf("%s: %s", key, v))
		}
	}

	line := ""
	for i, part := range ordered {
		if i > 0 {
			line += " | "
		}
		line += part
	}
	return line
}
