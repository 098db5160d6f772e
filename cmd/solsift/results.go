package main

import (
	"errors"
	"fmt"

	"github.com/solsift/solsift/internal/common"
	"github.com/solsift/solsift/internal/model"
	"github.com/spf13/cobra"
)

func resultsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "results [run-id]",
		Short: "Show persisted results for a run",
		Long: `Show the tokens that survived a filter run along with their stage scores
and final recommendation. With no argument, shows the most recent run.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runResults,
	}

	cmd.Flags().Bool("reasoning", false, "print the full reasoning for each token")

	return cmd
}

func runResults(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() { _ = store.Close() }()

	var runID string
	if len(args) > 0 {
		runID = args[0]
	} else {
		runID, err = store.GetLatestRunID(ctx)
		if errors.Is(err, common.ErrNotFound) {
			cmd.Println("No runs recorded yet.")
			return nil
		}
		if err != nil {
			return err
		}
	}

	candidates, err := store.GetResultsByRun(ctx, runID)
	if err != nil {
		return err
	}
	if len(candidates) == 0 {
		cmd.Printf("No results for run %s.\n", runID)
		return nil
	}

	showReasoning, _ := cmd.Flags().GetBool("reasoning")

	cmd.Printf("Run %s: %d tokens\n\n", runID, len(candidates))
	cmd.Printf("%-12s %-44s %7s %7s %5s\n", "SYMBOL", "ADDRESS", "MARKET", "META", "KOLS")
	for i := range candidates {
		c := &candidates[i]
		cmd.Printf("%-12s %-44s %7s %7s %5d\n",
			c.Symbol,
			c.Address,
			formatScore(c, model.StageMarket),
			formatScore(c, model.StageMetadata),
			len(c.OwnershipEvidence))

		if showReasoning && c.FinalReasoning != nil {
			cmd.Printf("\n  Market:     %s\n", c.FinalReasoning.MarketAnalysis)
			cmd.Printf("  Sentiment:  %s\n", c.FinalReasoning.SentimentAnalysis)
			cmd.Printf("  Social:     %s\n", c.FinalReasoning.SocialSignals)
			cmd.Printf("  Risk:       %s\n", c.FinalReasoning.RiskAssessment)
			cmd.Printf("  Conclusion: %s\n\n", c.FinalReasoning.FinalRecommendation)
		}
	}

	return nil
}

func formatScore(c *model.TokenCandidate, stage string) string {
	score, ok := c.StageScores[stage]
	if !ok {
		return "-"
	}
	return fmt.Sprintf("%.2f", score.Score)
}
