package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/dossier/internal/cli"
	"github.com/Veraticus/dossier/internal/common"
	"github.com/Veraticus/dossier/internal/readiness"
)

func criteriaCmd() *cobra.Command {
	var validate string

	cmd := &cobra.Command{
		Use:   "criteria",
		Short: "List award criteria and thresholds",
		Long: `Print every award with its criterion phrases and readiness threshold.
With --validate, check a criteria file without changing configuration.`,
		Example: `  dossier criteria
  dossier criteria --validate ./awards.yaml`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			if validate != "" {
				set, err := readiness.LoadCriteriaFile(validate)
				if err != nil {
					return common.NewUserError("Criteria file is invalid", err)
				}
				fmt.Println(cli.FormatSuccess(fmt.Sprintf("%s: %d awards, %d criteria", validate, set.Len(), set.TotalCriteria()))) //nolint:forbidigo // User-facing output
				return nil
			}

			agg, err := buildAggregator(cfg)
			if err != nil {
				return err
			}

			fmt.Print(cli.RenderCriteria(agg.Criteria().Awards(), agg.Threshold)) //nolint:forbidigo // User-facing output
			return nil
		},
	}

	cmd.Flags().StringVar(&validate, "validate", "", "criteria YAML file to check")

	return cmd
}
