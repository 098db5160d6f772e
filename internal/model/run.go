package model

import (
	"time"
)

// Pipeline stage names, in execution order.
const (
	StageNameSelect    = "select_parameters"
	StageNameFetch     = "fetch_list"
	StageNameMarket    = "analyze_market"
	StageNameMetadata  = "analyze_metadata"
	StageNameOwnership = "analyze_ownership"
	StageNameReasoning = "reasoning"
	StageNamePersist   = "persist"
)

// StageStats records the in/out/error counts for one pipeline stage.
type StageStats struct {
	Name    string `json:"name"`
	In      int    `json:"count_in"`
	Out     int    `json:"count_out"`
	Errored int    `json:"count_errored"`
}

// PipelineRun is one end-to-end execution of the filter pipeline. It is
// created at run start, appended to as stages complete, and persisted at run
// end. It holds no cross-run state.
type PipelineRun struct {
	StartedAt  time.Time          `json:"started_at"`
	FinishedAt time.Time          `json:"finished_at"`
	RunID      string             `json:"run_id"`
	Parameters FilterParameterSet `json:"parameters"`
	Stages     []StageStats       `json:"stages"`
	Candidates []TokenCandidate   `json:"candidates"`
	Errors     []string           `json:"errors,omitempty"`
}

// NewRunID derives a run identifier from the run's start time.
func NewRunID(t time.Time) string {
	return "run-" + t.UTC().Format("20060102T150405Z")
}

// NewPipelineRun creates a run record with a timestamp-derived ID.
func NewPipelineRun(start time.Time) *PipelineRun {
	return &PipelineRun{
		RunID:     NewRunID(start),
		StartedAt: start,
	}
}

// RecordStage appends one stage's statistics to the run.
func (r *PipelineRun) RecordStage(name string, in, out, errored int) {
	r.Stages = append(r.Stages, StageStats{Name: name, In: in, Out: out, Errored: errored})
}

// RecordError appends a non-fatal error to the run's error list.
func (r *PipelineRun) RecordError(context string, err error) {
	r.Errors = append(r.Errors, context+": "+err.Error())
}

// RunSummary is the externally observable result of a pipeline run.
type RunSummary struct {
	RunID         string       `json:"run_id"`
	Stages        []StageStats `json:"stages"`
	Errors        []string     `json:"errors"`
	Duration      time.Duration `json:"duration"`
	SurvivorCount int          `json:"survivor_count"`
	Persisted     int          `json:"persisted"`
	PersistFailed int          `json:"persist_failed"`
}

// Summary condenses the run into its externally observable form.
func (r *PipelineRun) Summary(persisted, failed int) *RunSummary {
	return &RunSummary{
		RunID:         r.RunID,
		Stages:        r.Stages,
		Errors:        r.Errors,
		Duration:      r.FinishedAt.Sub(r.StartedAt),
		SurvivorCount: len(r.Candidates),
		Persisted:     persisted,
		PersistFailed: failed,
	}
}
