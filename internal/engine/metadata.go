package engine

import (
	"context"

	"github.com/solsift/solsift/internal/model"
)

// metadataChunkSize is the address count per metadata fetch call, bounded by
// the upstream multi-address endpoint.
const metadataChunkSize = 50

// metadataPayloadToken is the per-token payload sent to the metadata oracle.
type metadataPayloadToken struct {
	Address          string                      `json:"address"`
	Symbol           string                      `json:"symbol"`
	Name             string                      `json:"name"`
	MarketSnapshot   model.MarketSnapshot        `json:"market_snapshot"`
	MetadataSnapshot *model.MetadataSnapshot     `json:"metadata_snapshot"`
	StageScores      map[string]model.StageScore `json:"stage_scores"`
}

// analyzeMetadata enriches survivors with extended metadata and scores their
// social and development signals. Enrichment is strictly separated from
// scoring: a metadata fetch failure removes only the affected candidates,
// never the whole stage.
func (p *Pipeline) analyzeMetadata(ctx context.Context, run *model.PipelineRun, candidates []model.TokenCandidate) []model.TokenCandidate {
	in := len(candidates)
	errored := 0

	// Enrichment pass.
	enriched := make([]model.TokenCandidate, 0, len(candidates))
	for _, chunk := range batches(candidates, metadataChunkSize) {
		addresses := make([]string, len(chunk))
		for i, candidate := range chunk {
			addresses[i] = candidate.Address
		}

		metadata, err := p.market.TokenMetadata(ctx, addresses)
		if err != nil {
			p.logger.Warn("Metadata fetch failed, dropping chunk",
				"chunk_size", len(chunk), "error", err)
			run.RecordError(model.StageNameMetadata, err)
			errored += len(chunk)
			continue
		}

		for i := range chunk {
			candidate := chunk[i]
			meta, ok := metadata[candidate.Address]
			if !ok {
				// Non-survivable error for this item only.
				p.logger.Debug("No metadata for candidate, dropping",
					"address", candidate.Address)
				errored++
				continue
			}
			candidate.MetadataSnapshot = &model.MetadataSnapshot{
				Description: meta.Extensions.Description,
				Website:     meta.Extensions.Website,
				Twitter:     meta.Extensions.Twitter,
				Telegram:    meta.Extensions.Telegram,
			}
			enriched = append(enriched, candidate)
		}
	}

	// Scoring pass.
	var out []model.TokenCandidate
	for _, batch := range batches(enriched, p.config.BatchSize) {
		payload := make([]metadataPayloadToken, len(batch))
		for i, candidate := range batch {
			payload[i] = metadataPayloadToken{
				Address:          candidate.Address,
				Symbol:           candidate.Symbol,
				Name:             candidate.Name,
				MarketSnapshot:   candidate.MarketSnapshot,
				MetadataSnapshot: candidate.MetadataSnapshot,
				StageScores:      candidate.StageScores,
			}
		}

		scores, err := p.scoreBatch(ctx, metadataPrompt, payload)
		if err != nil {
			p.logger.Warn("Metadata analysis batch failed, rejecting batch",
				"batch_size", len(batch), "error", err)
			run.RecordError(model.StageNameMetadata, err)
			errored += len(batch)
			continue
		}

		passed, _ := p.applyScores(batch, scores, model.StageMetadata, p.config.MetadataThreshold)
		out = append(out, passed...)
	}

	run.RecordStage(model.StageNameMetadata, in, len(out), errored)
	p.logger.Info("Metadata analysis complete",
		"in", in, "out", len(out), "errored", errored)
	return out
}
