package engine

import (
	"context"

	"github.com/solsift/solsift/internal/model"
)

// marketPayloadToken is the per-token payload sent to the market oracle.
type marketPayloadToken struct {
	Address        string               `json:"address"`
	Symbol         string               `json:"symbol"`
	Name           string               `json:"name"`
	MarketSnapshot model.MarketSnapshot `json:"market_snapshot"`
}

// analyzeMarket scores each candidate on liquidity, volume, and momentum and
// discards those below the pass threshold. An unparsable batch response
// rejects the whole batch (fail-closed).
func (p *Pipeline) analyzeMarket(ctx context.Context, run *model.PipelineRun, candidates []model.TokenCandidate) []model.TokenCandidate {
	in := len(candidates)
	var out []model.TokenCandidate
	errored := 0

	for _, batch := range batches(candidates, p.config.BatchSize) {
		payload := make([]marketPayloadToken, len(batch))
		for i, candidate := range batch {
			payload[i] = marketPayloadToken{
				Address:        candidate.Address,
				Symbol:         candidate.Symbol,
				Name:           candidate.Name,
				MarketSnapshot: candidate.MarketSnapshot,
			}
		}

		scores, err := p.scoreBatch(ctx, marketPrompt, payload)
		if err != nil {
			p.logger.Warn("Market analysis batch failed, rejecting batch",
				"batch_size", len(batch), "error", err)
			run.RecordError(model.StageNameMarket, err)
			errored += len(batch)
			continue
		}

		passed, _ := p.applyScores(batch, scores, model.StageMarket, p.config.MarketThreshold)
		out = append(out, passed...)
	}

	run.RecordStage(model.StageNameMarket, in, len(out), errored)
	p.logger.Info("Market analysis complete",
		"in", in, "out", len(out), "errored", errored)
	return out
}
