package engine

import (
	"context"
	"sync"

	"github.com/solsift/solsift/internal/model"
)

// analyzeOwnership cross-references each survivor against the tracked-wallet
// set and attaches ownership evidence. This stage never rejects a candidate;
// tracked-wallet ownership is a corroborating signal, not a gate, so
// count_out always equals count_in.
func (p *Pipeline) analyzeOwnership(ctx context.Context, run *model.PipelineRun, candidates []model.TokenCandidate) []model.TokenCandidate {
	in := len(candidates)
	var errored int

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

			evidence, err := p.ownership.Evidence(ctx, candidates[idx].Address)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				// Enrichment only: an ownership check failure leaves the
				// candidate unannotated but alive.
				p.logger.Warn("Ownership check failed",
					"address", candidates[idx].Address, "error", err)
				run.RecordError(model.StageNameOwnership, err)
				errored++
				return
			}
			candidates[idx].OwnershipEvidence = append(candidates[idx].OwnershipEvidence, evidence...)
		}(i)
	}
	wg.Wait()

	withEvidence := 0
	for i := range candidates {
		if len(candidates[i].OwnershipEvidence) > 0 {
			withEvidence++
		}
	}

	run.RecordStage(model.StageNameOwnership, in, in, errored)
	p.logger.Info("Ownership analysis complete",
		"candidates", in, "with_evidence", withEvidence, "errored", errored)
	return candidates
}
