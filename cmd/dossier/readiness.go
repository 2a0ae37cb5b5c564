package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Veraticus/dossier/internal/cli"
	"github.com/Veraticus/dossier/internal/common"
	"github.com/Veraticus/dossier/internal/storage"
)

func readinessCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "readiness",
		Short: "Track award readiness",
		Long: `Initialize, recompute, show and reset the per-award readiness counters.

Readiness is always recomputed from scratch over every stored document and
event, so running recompute twice gives the same result.`,
		Example: `  dossier readiness init
  dossier readiness recompute
  dossier readiness show --json
  dossier readiness reset --yes`,
	}

	cmd.AddCommand(readinessInitCmd())
	cmd.AddCommand(readinessRecomputeCmd())
	cmd.AddCommand(readinessShowCmd())
	cmd.AddCommand(readinessResetCmd())

	return cmd
}

func readinessInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create zeroed readiness rows for awards that have none",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			inserted, err := a.engine.InitializeReadiness(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Initialized %d award(s)", inserted))) //nolint:forbidigo // User-facing output
			return nil
		},
	}
}

func readinessRecomputeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "recompute",
		Short: "Rescan all items and rebuild readiness",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()
			defer a.flushMetrics()

			records, err := a.engine.RecomputeReadiness(cmd.Context())
			if err != nil {
				return err
			}

			agg := a.engine.Aggregator()
			fmt.Println(cli.RenderReadiness(agg.Report(records), agg.Criteria().Awards())) //nolint:forbidigo // User-facing output
			return nil
		},
	}
}

func readinessShowCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show stored readiness",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			records, err := a.engine.Readiness(cmd.Context())
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(records)
			}

			fmt.Println(cli.RenderReadiness(records, a.engine.Aggregator().Criteria().Awards())) //nolint:forbidigo // User-facing output
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print records as JSON")

	return cmd
}

func readinessResetCmd() *cobra.Command {
	var (
		yes          bool
		noCheckpoint bool
	)

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Zero every award's readiness counters",
		Long: `Replace all readiness rows with zeroed ones. A checkpoint of the database is
taken first unless --no-checkpoint is given; restore it with
"dossier checkpoint restore".`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return common.NewUserError("Refusing to reset readiness without --yes", nil)
			}

			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			if !noCheckpoint {
				manager, err := a.store.NewCheckpointManager()
				switch {
				case errors.Is(err, storage.ErrInMemoryDatabase):
					slog.Warn("Skipping checkpoint for in-memory database")
				case err != nil:
					return fmt.Errorf("failed to create checkpoint manager: %w", err)
				default:
					info, err := manager.AutoCheckpoint(cmd.Context(), "readiness-reset")
					if err != nil {
						return fmt.Errorf("failed to checkpoint before reset: %w", err)
					}
					fmt.Println(cli.FormatInfo("Saved checkpoint " + info.ID)) //nolint:forbidigo // User-facing output
				}
			}

			if err := a.engine.ResetReadiness(cmd.Context()); err != nil {
				return err
			}

			fmt.Println(cli.FormatSuccess("Readiness reset")) //nolint:forbidigo // User-facing output
			return nil
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "confirm the reset")
	cmd.Flags().BoolVar(&noCheckpoint, "no-checkpoint", false, "skip the automatic checkpoint")

	return cmd
}
