package engine

import (
	"context"

	"github.com/solsift/solsift/internal/birdeye"
	"github.com/solsift/solsift/internal/model"
)

// Oracle is the decision function used inside selected stages. It returns
// natural-language text with no structural guarantee; callers parse and
// validate every response at the boundary.
type Oracle interface {
	Complete(ctx context.Context, prompt, payload string) (string, error)
}

// MarketData is the market-data collaborator consumed by the fetch and
// metadata stages.
type MarketData interface {
	ListTokens(ctx context.Context, params model.FilterParameterSet, offset, limit int) ([]birdeye.TokenRecord, error)
	TokenMetadata(ctx context.Context, addresses []string) (map[string]birdeye.TokenMetadata, error)
}

// OwnershipChecker gathers tracked-wallet evidence for one token address.
type OwnershipChecker interface {
	Evidence(ctx context.Context, tokenAddress string) ([]model.OwnershipEvidence, error)
}
