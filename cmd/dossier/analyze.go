package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Veraticus/dossier/internal/cli"
	"github.com/Veraticus/dossier/internal/engine"
	"github.com/Veraticus/dossier/internal/ocr"
)

func analyzeCmd() *cobra.Command {
	var (
		text       string
		confidence float64
	)

	cmd := &cobra.Command{
		Use:   "analyze <file>",
		Short: "Extract title, description and event details from OCR text",
		Long: `Run the content analyzer over a file's OCR text. The text comes from
--text, a plain-text file, or the "<file>.txt" sidecar written by the OCR step.
Nothing is stored.`,
		Example: `  dossier analyze flyer.jpg
  dossier analyze flyer.jpg --text "Annual Leadership Summit held at the Main Hall"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]

			result := ocr.Result{Text: text, Confidence: confidence}
			if text == "" {
				extracted, err := engine.SidecarExtractor{}.Extract(cmd.Context(), path)
				if err != nil {
					return err
				}
				result = ocr.Result{Text: extracted.Text, Confidence: extracted.Confidence}
			}

			analyzer, err := ocr.NewDefaultAnalyzer()
			if err != nil {
				return err
			}

			item := analyzer.Analyze(result, filepath.Base(path))
			fmt.Println(cli.RenderExtracted(item)) //nolint:forbidigo // User-facing output
			return nil
		},
	}

	cmd.Flags().StringVar(&text, "text", "", "OCR text to analyze instead of reading the sidecar")
	cmd.Flags().Float64Var(&confidence, "confidence", 0, "OCR confidence (0-100) reported with --text")

	return cmd
}
