package engine

import (
	"context"
	"time"

	"github.com/solsift/solsift/internal/model"
)

// fetchTokens paginates the market-data API under the chosen parameters and
// returns a deduplicated candidate set with market snapshots populated.
// Malformed records are counted and dropped; a page failure stops the fetch
// early with whatever was accumulated.
func (p *Pipeline) fetchTokens(ctx context.Context, run *model.PipelineRun) []model.TokenCandidate {
	var candidates []model.TokenCandidate
	seen := make(map[string]bool)
	skipped := 0
	fetchedAt := time.Now()

	for offset := 0; offset < p.config.MaxOffset; offset += p.config.PageSize {
		records, err := p.market.ListTokens(ctx, run.Parameters, offset, p.config.PageSize)
		if err != nil {
			// Partial result, not a hard failure: the run proceeds with
			// fewer candidates.
			p.logger.Warn("Token list page failed, stopping fetch early",
				"offset", offset, "accumulated", len(candidates), "error", err)
			run.RecordError(model.StageNameFetch, err)
			break
		}

		for _, record := range records {
			candidate, convErr := record.Candidate()
			if convErr != nil {
				skipped++
				p.logger.Debug("Skipping malformed record", "error", convErr)
				continue
			}
			if seen[candidate.Address] {
				continue
			}
			seen[candidate.Address] = true
			candidate.FetchedAt = fetchedAt
			candidates = append(candidates, candidate)
		}

		if len(records) < p.config.PageSize {
			break
		}
	}

	// Raw snapshots are persisted at fetch time, keyed by address and
	// timestamp. A snapshot write failure never aborts the run.
	if len(candidates) > 0 {
		if err := p.storage.SaveSnapshots(ctx, candidates); err != nil {
			p.logger.Warn("Failed to save market snapshots", "error", err)
			run.RecordError(model.StageNameFetch, err)
		}
	}

	run.RecordStage(model.StageNameFetch, len(candidates)+skipped, len(candidates), skipped)
	p.logger.Info("Token list fetched",
		"candidates", len(candidates), "skipped", skipped)
	return candidates
}
