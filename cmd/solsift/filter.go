package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/solsift/solsift/internal/engine"
	"github.com/solsift/solsift/internal/model"
	"github.com/solsift/solsift/internal/wallets"
	"github.com/spf13/cobra"
)

func filterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "filter",
		Short: "Run the token filter pipeline",
		Long: `Run the full filter pipeline once: select filter parameters, fetch the
token list, screen market data and metadata through the LLM, check KOL
wallet exposure, generate final reasoning, and persist the survivors.`,
		RunE: runFilter,
	}

	cmd.Flags().Bool("continuous", false, "keep running, sleeping between runs")
	cmd.Flags().Duration("interval", 3*time.Minute, "sleep between runs in continuous mode")

	return cmd
}

func runFilter(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	continuous, _ := cmd.Flags().GetBool("continuous")
	interval, _ := cmd.Flags().GetDuration("interval")

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() { _ = store.Close() }()

	oracle, err := createOracle()
	if err != nil {
		return err
	}
	defer oracle.Close()

	market, err := createMarketClient()
	if err != nil {
		return err
	}

	ownership, err := wallets.NewChecker(store, market, slog.Default())
	if err != nil {
		return err
	}

	pipeline, err := engine.NewWithConfig(store, oracle, market, ownership, pipelineConfig())
	if err != nil {
		return fmt.Errorf("failed to create pipeline: %w", err)
	}

	for {
		summary, err := pipeline.Run(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return fmt.Errorf("pipeline run failed: %w", err)
		}

		printSummary(cmd, summary)

		if !continuous {
			return nil
		}

		slog.Info("Sleeping until next run", "interval", interval)
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(interval):
		}
	}
}

func printSummary(cmd *cobra.Command, summary *model.RunSummary) {
	cmd.Printf("\nRun %s finished in %s\n", summary.RunID, summary.Duration.Round(time.Millisecond))
	cmd.Printf("%-20s %6s %6s %8s\n", "STAGE", "IN", "OUT", "ERRORED")
	for _, stage := range summary.Stages {
		cmd.Printf("%-20s %6d %6d %8d\n", stage.Name, stage.In, stage.Out, stage.Errored)
	}
	cmd.Printf("\nSurvivors: %d  Persisted: %d  Persist failures: %d\n",
		summary.SurvivorCount, summary.Persisted, summary.PersistFailed)
	if len(summary.Errors) > 0 {
		cmd.Printf("Errors recorded: %d (see logs)\n", len(summary.Errors))
	}
}
