package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/solsift/solsift/internal/common"
	"github.com/solsift/solsift/internal/llm"
	"github.com/solsift/solsift/internal/model"
)

// scoredToken is one entry of a batch scoring response.
type scoredToken struct {
	Address   string   `json:"address"`
	Strengths []string `json:"strengths"`
	Risks     []string `json:"risks"`
	Score     float64  `json:"score"`
}

// scoreResponse is the expected shape of a batch scoring response.
type scoreResponse struct {
	Tokens []scoredToken `json:"tokens"`
}

// scoreBatch sends one batch payload to the oracle and parses the per-token
// scores. Scores outside [0,1] are clamped and logged rather than rejected,
// since the sign of the score is still meaningful.
func (p *Pipeline) scoreBatch(ctx context.Context, prompt string, payload any) (map[string]model.StageScore, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal batch payload: %w", err)
	}

	response, err := p.oracle.Complete(ctx, prompt, string(data))
	if err != nil {
		return nil, err
	}

	raw, err := llm.ExtractJSON(response)
	if err != nil {
		return nil, fmt.Errorf("%w: batch response is not JSON: %v", common.ErrUnparsableResponse, err)
	}

	var parsed scoreResponse
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, fmt.Errorf("%w: failed to parse batch response: %v", common.ErrUnparsableResponse, err)
	}
	if len(parsed.Tokens) == 0 {
		return nil, fmt.Errorf("%w: batch response contains no tokens", common.ErrUnparsableResponse)
	}

	now := time.Now()
	scores := make(map[string]model.StageScore, len(parsed.Tokens))
	for _, token := range parsed.Tokens {
		score := token.Score
		if score < 0 || score > 1 {
			p.logger.Warn("Clamping out-of-range score",
				"address", token.Address, "score", score)
			if score < 0 {
				score = 0
			} else {
				score = 1
			}
		}
		scores[token.Address] = model.StageScore{
			Score:     score,
			Strengths: token.Strengths,
			Risks:     token.Risks,
			ScoredAt:  now,
		}
	}
	return scores, nil
}

// applyScores attaches scores to a batch and applies the pass threshold.
// A candidate present in the batch but absent from the oracle's output is
// rejected, never silently kept.
func (p *Pipeline) applyScores(batch []model.TokenCandidate, scores map[string]model.StageScore, stage string, threshold float64) (passed []model.TokenCandidate, rejected int) {
	for i := range batch {
		candidate := batch[i]
		score, ok := scores[candidate.Address]
		if !ok {
			// Fail closed.
			p.logger.Debug("Candidate missing from oracle output, rejecting",
				"stage", stage, "address", candidate.Address)
			candidate.Reject()
			rejected++
			continue
		}

		candidate.RecordScore(stage, score)
		if score.Score < threshold {
			candidate.Reject()
			rejected++
			continue
		}
		passed = append(passed, candidate)
	}
	return passed, rejected
}

// batches splits candidates into chunks of at most size.
func batches(candidates []model.TokenCandidate, size int) [][]model.TokenCandidate {
	var out [][]model.TokenCandidate
	for start := 0; start < len(candidates); start += size {
		end := start + size
		if end > len(candidates) {
			end = len(candidates)
		}
		out = append(out, candidates[start:end])
	}
	return out
}
