package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/solsift/solsift/internal/common"
	"github.com/solsift/solsift/internal/llm"
	"github.com/solsift/solsift/internal/model"
)

// selectParameters asks the oracle to choose the narrowing parameters for
// this run. The oracle proposes; the mandatory floors override. If bounded
// retries exhaust, the hardcoded default set is used rather than failing
// the run.
func (p *Pipeline) selectParameters(ctx context.Context, run *model.PipelineRun) model.FilterParameterSet {
	payload := fmt.Sprintf(
		"Allowed parameters: %s.\nChoose up to %d narrowing parameters targeting early-stage-but-liquid tokens.",
		strings.Join(model.AllowedFilterKeys(), ", "),
		model.MaxFilterParams,
	)

	attempts := p.config.SelectorRetries + 1
	for attempt := 1; attempt <= attempts; attempt++ {
		response, err := p.oracle.Complete(ctx, selectorPrompt, payload)
		if err != nil {
			p.logger.Warn("Parameter selection call failed",
				"attempt", attempt, "error", err)
			run.RecordError(model.StageNameSelect, err)
			continue
		}

		params, err := parseParameterProposal(response)
		if err != nil {
			p.logger.Warn("Parameter proposal rejected",
				"attempt", attempt, "error", err)
			run.RecordError(model.StageNameSelect, err)
			continue
		}

		params.ApplyFloors(p.config.Floors)
		run.RecordStage(model.StageNameSelect, 1, 1, 0)
		p.logger.Info("Filter parameters selected",
			"filters", params.Filters, "attempt", attempt)
		return params
	}

	// Fall back to the mandatory floors plus the fixed sort key.
	fallback := model.DefaultParameters(p.config.Floors)
	run.RecordStage(model.StageNameSelect, 1, 1, 1)
	p.logger.Warn("Parameter selection exhausted retries, using defaults",
		"filters", fallback.Filters)
	return fallback
}

// parseParameterProposal parses the oracle's response as a flat key→number
// mapping and validates it against the catalog and the parameter budget.
// Unknown keys are dropped; an oversized proposal is rejected outright.
func parseParameterProposal(response string) (model.FilterParameterSet, error) {
	raw, err := llm.ExtractJSON(response)
	if err != nil {
		return model.FilterParameterSet{}, fmt.Errorf("%w: proposal is not JSON: %v", common.ErrUnparsableResponse, err)
	}

	var proposal map[string]float64
	if err := json.Unmarshal([]byte(raw), &proposal); err != nil {
		return model.FilterParameterSet{}, fmt.Errorf("%w: proposal is not a flat key-number map: %v", common.ErrUnparsableResponse, err)
	}

	params := model.NewFilterParameterSet()
	for key, value := range proposal {
		if !model.IsAllowedFilterKey(key) {
			continue
		}
		params.Filters[key] = value
	}

	if len(params.Filters) > model.MaxFilterParams {
		return model.FilterParameterSet{}, fmt.Errorf("proposal has %d parameters, maximum is %d",
			len(params.Filters), model.MaxFilterParams)
	}
	if err := params.Validate(); err != nil {
		return model.FilterParameterSet{}, err
	}

	return params, nil
}
