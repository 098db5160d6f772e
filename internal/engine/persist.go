package engine

import (
	"context"
	"time"

	"github.com/solsift/solsift/internal/common"
	"github.com/solsift/solsift/internal/model"
	"github.com/solsift/solsift/internal/service"
)

// persist upserts the final survivor set into the document store, keyed by
// (address, run_id). Per-document failures are retried a bounded number of
// times and then skipped; a run that reaches this stage always completes,
// reporting written vs. failed counts.
func (p *Pipeline) persist(ctx context.Context, run *model.PipelineRun) (written, failed int) {
	retryOpts := service.RetryOptions{
		MaxAttempts:  p.config.PersistRetries,
		InitialDelay: 200 * time.Millisecond,
		MaxDelay:     5 * time.Second,
		Multiplier:   2.0,
	}

	for i := range run.Candidates {
		candidate := &run.Candidates[i]
		err := common.WithRetry(ctx, func() error {
			return p.storage.UpsertResult(ctx, run.RunID, candidate)
		}, retryOpts)
		if err != nil {
			p.logger.Error("Failed to persist candidate",
				"address", candidate.Address, "run_id", run.RunID, "error", err)
			run.RecordError(model.StageNamePersist, err)
			failed++
			continue
		}
		written++
	}

	run.RecordStage(model.StageNamePersist, len(run.Candidates), written, failed)
	run.FinishedAt = time.Now()
	if err := p.storage.SaveRun(ctx, run); err != nil {
		p.logger.Error("Failed to persist run record",
			"run_id", run.RunID, "error", err)
		run.RecordError(model.StageNamePersist, err)
	}
	p.logger.Info("Persistence complete",
		"written", written, "failed", failed, "run_id", run.RunID)
	return written, failed
}
