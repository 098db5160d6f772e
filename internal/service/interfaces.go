// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/solsift/solsift/internal/model"
)

// Storage defines the contract for the document store.
type Storage interface {
	// Raw snapshot operations
	SaveSnapshots(ctx context.Context, candidates []model.TokenCandidate) error

	// Pipeline result operations
	UpsertResult(ctx context.Context, runID string, candidate *model.TokenCandidate) error
	GetResultsByRun(ctx context.Context, runID string) ([]model.TokenCandidate, error)
	SaveRun(ctx context.Context, run *model.PipelineRun) error
	GetLatestRunID(ctx context.Context) (string, error)

	// KOL wallet operations
	SaveKOLWallet(ctx context.Context, wallet *model.KOLWallet) error
	GetActiveKOLWallets(ctx context.Context) ([]model.KOLWallet, error)
	GetAllKOLWallets(ctx context.Context) ([]model.KOLWallet, error)

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
