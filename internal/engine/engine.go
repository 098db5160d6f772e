// Package engine implements the token filter pipeline: a fixed sequence of
// narrowing stages with oracle calls as the decision function inside
// selected stages.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/solsift/solsift/internal/common"
	"github.com/solsift/solsift/internal/model"
	"github.com/solsift/solsift/internal/service"
)

// State identifies the orchestrator's position in the pipeline.
type State string

// Pipeline states, in execution order. Each transition requires the prior
// stage's completion; no state is skipped and Done is terminal.
const (
	StateSelectingParameters State = "SelectingParameters"
	StateFetchingList        State = "FetchingList"
	StateAnalyzingMarket     State = "AnalyzingMarket"
	StateAnalyzingMetadata   State = "AnalyzingMetadata"
	StateAnalyzingOwnership  State = "AnalyzingOwnership"
	StateReasoning           State = "Reasoning"
	StatePersisting          State = "Persisting"
	StateDone                State = "Done"
)

// Config holds configuration options for the pipeline.
type Config struct {
	Floors            model.Floors
	PageSize          int
	MaxOffset         int
	BatchSize         int
	WorkerCount       int
	SelectorRetries   int
	PersistRetries    int
	MarketThreshold   float64
	MetadataThreshold float64
}

// DefaultConfig returns the default pipeline configuration.
func DefaultConfig() Config {
	return Config{
		Floors:            model.DefaultFloors(),
		PageSize:          model.DefaultPageSize,
		MaxOffset:         1000,
		BatchSize:         20,
		WorkerCount:       4,
		SelectorRetries:   2,
		PersistRetries:    3,
		MarketThreshold:   0.5,
		MetadataThreshold: 0.5,
	}
}

func (c *Config) validate() error {
	if err := c.Floors.Validate(); err != nil {
		return fmt.Errorf("%w: %v", common.ErrInvalidConfig, err)
	}
	if c.PageSize <= 0 {
		c.PageSize = model.DefaultPageSize
	}
	if c.MaxOffset <= 0 {
		c.MaxOffset = 1000
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 20
	}
	if c.WorkerCount <= 0 {
		c.WorkerCount = 4
	}
	if c.PersistRetries <= 0 {
		c.PersistRetries = 3
	}
	if c.MarketThreshold <= 0 || c.MarketThreshold > 1 {
		c.MarketThreshold = 0.5
	}
	if c.MetadataThreshold <= 0 || c.MetadataThreshold > 1 {
		c.MetadataThreshold = 0.5
	}
	return nil
}

// Pipeline orchestrates one end-to-end filter run. It holds no cross-run
// state; each Run builds a fresh PipelineRun and hands the survivor set from
// stage to stage.
type Pipeline struct {
	storage   service.Storage
	oracle    Oracle
	market    MarketData
	ownership OwnershipChecker
	logger    *slog.Logger
	config    Config
}

// New creates a pipeline with the default configuration.
func New(storage service.Storage, oracle Oracle, market MarketData, ownership OwnershipChecker) (*Pipeline, error) {
	return NewWithConfig(storage, oracle, market, ownership, DefaultConfig())
}

// NewWithConfig creates a pipeline with custom configuration. Configuration
// problems are fatal here, before any stage runs.
func NewWithConfig(storage service.Storage, oracle Oracle, market MarketData, ownership OwnershipChecker, config Config) (*Pipeline, error) {
	if storage == nil {
		return nil, fmt.Errorf("%w: storage is required", common.ErrMissingConfig)
	}
	if oracle == nil {
		return nil, fmt.Errorf("%w: oracle is required", common.ErrMissingConfig)
	}
	if market == nil {
		return nil, fmt.Errorf("%w: market data client is required", common.ErrMissingConfig)
	}
	if ownership == nil {
		return nil, fmt.Errorf("%w: ownership checker is required", common.ErrMissingConfig)
	}
	if err := config.validate(); err != nil {
		return nil, err
	}
	return &Pipeline{
		storage:   storage,
		oracle:    oracle,
		market:    market,
		ownership: ownership,
		config:    config,
		logger:    slog.Default(),
	}, nil
}

// Run executes the pipeline once and returns the run summary. Errors below
// the configuration tier are recovered locally; a completed run always
// yields a summary with per-stage counts and an error list. A cancelled run
// reports whatever statistics were collected and persists nothing.
func (p *Pipeline) Run(ctx context.Context) (*model.RunSummary, error) {
	run := model.NewPipelineRun(time.Now())
	p.logger.Info("Starting pipeline run", "run_id", run.RunID)

	state := StateSelectingParameters
	var candidates []model.TokenCandidate
	var persisted, failed int

	for state != StateDone {
		if err := ctx.Err(); err != nil {
			// Cooperative checkpoint between stages.
			p.logger.Warn("Pipeline run cancelled", "run_id", run.RunID, "state", string(state))
			run.FinishedAt = time.Now()
			run.Candidates = survivors(candidates)
			return run.Summary(0, 0), err
		}

		p.logger.Info("Pipeline stage starting", "run_id", run.RunID, "state", string(state))

		switch state {
		case StateSelectingParameters:
			run.Parameters = p.selectParameters(ctx, run)
			state = StateFetchingList

		case StateFetchingList:
			candidates = p.fetchTokens(ctx, run)
			state = StateAnalyzingMarket

		case StateAnalyzingMarket:
			candidates = p.analyzeMarket(ctx, run, candidates)
			state = StateAnalyzingMetadata

		case StateAnalyzingMetadata:
			candidates = p.analyzeMetadata(ctx, run, candidates)
			state = StateAnalyzingOwnership

		case StateAnalyzingOwnership:
			candidates = p.analyzeOwnership(ctx, run, candidates)
			state = StateReasoning

		case StateReasoning:
			candidates = p.reason(ctx, run, candidates)
			state = StatePersisting

		case StatePersisting:
			run.Candidates = candidates
			persisted, failed = p.persist(ctx, run)
			state = StateDone

		case StateDone:
			// Terminal; loop condition exits before this.
		}
	}

	run.FinishedAt = time.Now()
	summary := run.Summary(persisted, failed)
	p.logger.Info("Pipeline run complete",
		"run_id", run.RunID,
		"survivors", summary.SurvivorCount,
		"persisted", summary.Persisted,
		"persist_failed", summary.PersistFailed,
		"duration", summary.Duration,
		"errors", len(summary.Errors))
	return summary, nil
}

// survivors filters a candidate set down to those still alive.
func survivors(candidates []model.TokenCandidate) []model.TokenCandidate {
	out := make([]model.TokenCandidate, 0, len(candidates))
	for _, c := range candidates {
		if c.Survived {
			out = append(out, c)
		}
	}
	return out
}
