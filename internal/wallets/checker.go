// Package wallets resolves KOL ownership evidence for token candidates by
// checking tracked wallet balances against the market data provider.
package wallets

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/solsift/solsift/internal/model"
	"github.com/solsift/solsift/internal/service"
)

// BalanceFetcher returns the balance a wallet holds of a token, in UI units.
// A wallet with no position returns zero without error.
type BalanceFetcher interface {
	WalletTokenBalance(ctx context.Context, wallet, tokenAddress string) (float64, error)
}

// Checker gathers ownership evidence from the active KOL wallet roster.
type Checker struct {
	storage  service.Storage
	balances BalanceFetcher
	logger   *slog.Logger

	mu       sync.Mutex
	roster   []model.KOLWallet
	rosterAt time.Time
	cacheTTL time.Duration
}

// NewChecker creates a Checker. The wallet roster is cached between calls
// because a single pipeline run checks the same roster against every
// surviving candidate.
func NewChecker(storage service.Storage, balances BalanceFetcher, logger *slog.Logger) (*Checker, error) {
	if storage == nil {
		return nil, fmt.Errorf("storage is required")
	}
	if balances == nil {
		return nil, fmt.Errorf("balance fetcher is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Checker{
		storage:  storage,
		balances: balances,
		logger:   logger,
		cacheTTL: time.Minute,
	}, nil
}

// Evidence returns one entry per KOL wallet found holding the token. A wallet
// whose balance cannot be fetched is skipped rather than failing the whole
// candidate; the caller decides how to account for a partial roster.
func (c *Checker) Evidence(ctx context.Context, tokenAddress string) ([]model.OwnershipEvidence, error) {
	if tokenAddress == "" {
		return nil, fmt.Errorf("token address is required")
	}

	roster, err := c.activeRoster(ctx)
	if err != nil {
		return nil, err
	}

	var evidence []model.OwnershipEvidence
	var failed int
	for _, wallet := range roster {
		for _, address := range wallet.WalletAddresses {
			balance, err := c.balances.WalletTokenBalance(ctx, address, tokenAddress)
			if err != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				failed++
				c.logger.Warn("Wallet balance check failed",
					"kol", wallet.ID,
					"wallet", address,
					"token", tokenAddress,
					"error", err)
				continue
			}
			if balance <= 0 {
				continue
			}
			evidence = append(evidence, model.OwnershipEvidence{
				// Balance endpoints report current holdings only, so the
				// observation time stands in for the entry time.
				EntryTime:     time.Now().UTC(),
				KOLID:         wallet.ID,
				Name:          wallet.Name,
				WalletAddress: address,
				PositionSize:  balance,
				Confidence:    wallet.InfluenceScore,
			})
		}
	}

	if failed > 0 && len(evidence) == 0 && failed == walletAddressCount(roster) {
		return nil, fmt.Errorf("all %d wallet balance checks failed for %s", failed, tokenAddress)
	}

	return evidence, nil
}

func (c *Checker) activeRoster(ctx context.Context) ([]model.KOLWallet, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.roster != nil && time.Since(c.rosterAt) < c.cacheTTL {
		return c.roster, nil
	}

	roster, err := c.storage.GetActiveKOLWallets(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load KOL wallets: %w", err)
	}

	c.roster = roster
	c.rosterAt = time.Now()
	return roster, nil
}

func walletAddressCount(roster []model.KOLWallet) int {
	var n int
	for _, wallet := range roster {
		n += len(wallet.WalletAddresses)
	}
	return n
}
