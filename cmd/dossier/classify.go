package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Veraticus/dossier/internal/cli"
	"github.com/Veraticus/dossier/internal/engine"
)

func classifyCmd() *cobra.Command {
	var content string

	cmd := &cobra.Command{
		Use:   "classify <file>...",
		Short: "Show which category the rules pick for files",
		Long: `Score each file name, and any OCR text found next to it, against the
category rules. Nothing is stored.`,
		Example: `  dossier classify mou_agreement.pdf
  dossier classify scan.pdf --content "Memorandum of Understanding"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			matcher, err := buildMatcher(cfg)
			if err != nil {
				return err
			}

			extractor := engine.SidecarExtractor{}
			for _, path := range args {
				text := content
				if text == "" {
					extracted, err := extractor.Extract(cmd.Context(), path)
					if err != nil {
						return err
					}
					text = extracted.Text
				}

				name := filepath.Base(path)
				fmt.Println(cli.RenderClassification(name, matcher.Classify(name, text))) //nolint:forbidigo // User-facing output
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&content, "content", "", "body text to score instead of the OCR sidecar")

	return cmd
}
