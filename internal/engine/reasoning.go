package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/solsift/solsift/internal/common"
	"github.com/solsift/solsift/internal/llm"
	"github.com/solsift/solsift/internal/model"
)

// reasoningPayload assembles everything the oracle needs to produce a final
// thesis for one candidate.
type reasoningPayload struct {
	Address           string                      `json:"address"`
	Symbol            string                      `json:"symbol"`
	Name              string                      `json:"name"`
	MarketSnapshot    model.MarketSnapshot        `json:"market_snapshot"`
	MetadataSnapshot  *model.MetadataSnapshot     `json:"metadata_snapshot,omitempty"`
	StageScores       map[string]model.StageScore `json:"stage_scores"`
	OwnershipEvidence []model.OwnershipEvidence   `json:"ownership_evidence"`
}

// reason produces a structured investment thesis for each survivor, one
// oracle call per candidate since the per-candidate output is large. A parse
// failure drops only that candidate.
func (p *Pipeline) reason(ctx context.Context, run *model.PipelineRun, candidates []model.TokenCandidate) []model.TokenCandidate {
	in := len(candidates)
	results := make([]*model.TokenCandidate, len(candidates))

	var wg sync.WaitGroup
	var mu sync.Mutex
	sem := make(chan struct{}, p.config.WorkerCount)

	for i := range candidates {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				return
			}

			candidate := candidates[idx]
			reasoning, err := p.reasonOne(ctx, &candidate)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				p.logger.Warn("Reasoning failed, dropping candidate",
					"address", candidate.Address, "error", err)
				run.RecordError(model.StageNameReasoning, err)
				return
			}
			candidate.FinalReasoning = reasoning
			results[idx] = &candidate
		}(i)
	}
	wg.Wait()

	out := make([]model.TokenCandidate, 0, len(candidates))
	for _, candidate := range results {
		if candidate != nil {
			out = append(out, *candidate)
		}
	}

	run.RecordStage(model.StageNameReasoning, in, len(out), in-len(out))
	p.logger.Info("Reasoning complete", "in", in, "out", len(out))
	return out
}

// reasonOne runs a single reasoning call and parses the four fixed sections
// plus the final recommendation.
func (p *Pipeline) reasonOne(ctx context.Context, candidate *model.TokenCandidate) (*model.Reasoning, error) {
	payload, err := json.Marshal(reasoningPayload{
		Address:           candidate.Address,
		Symbol:            candidate.Symbol,
		Name:              candidate.Name,
		MarketSnapshot:    candidate.MarketSnapshot,
		MetadataSnapshot:  candidate.MetadataSnapshot,
		StageScores:       candidate.StageScores,
		OwnershipEvidence: candidate.OwnershipEvidence,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal reasoning payload: %w", err)
	}

	response, err := p.oracle.Complete(ctx, reasoningPrompt, string(payload))
	if err != nil {
		return nil, err
	}

	raw, err := llm.ExtractJSON(response)
	if err != nil {
		return nil, fmt.Errorf("%w: reasoning response is not JSON: %v", common.ErrUnparsableResponse, err)
	}

	var reasoning model.Reasoning
	if err := json.Unmarshal([]byte(raw), &reasoning); err != nil {
		return nil, fmt.Errorf("%w: failed to parse reasoning response: %v", common.ErrUnparsableResponse, err)
	}

	switch {
	case reasoning.MarketAnalysis == "":
		return nil, fmt.Errorf("reasoning response missing market_analysis")
	case reasoning.SentimentAnalysis == "":
		return nil, fmt.Errorf("reasoning response missing sentiment_analysis")
	case reasoning.SocialSignals == "":
		return nil, fmt.Errorf("reasoning response missing social_signals")
	case reasoning.RiskAssessment == "":
		return nil, fmt.Errorf("reasoning response missing risk_assessment")
	case reasoning.FinalRecommendation == "":
		return nil, fmt.Errorf("reasoning response missing final_recommendation")
	}

	return &reasoning, nil
}
