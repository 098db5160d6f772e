package engine

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/solsift/solsift/internal/birdeye"
	"github.com/solsift/solsift/internal/model"
	"github.com/solsift/solsift/internal/service"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

// testRecord builds a well-formed token list record.
func testRecord(address, symbol string) birdeye.TokenRecord {
	return birdeye.TokenRecord{
		Address:       ptr(address),
		Symbol:        ptr(symbol),
		Name:          symbol + " Token",
		Decimals:      ptr(9),
		Price:         ptr(0.5),
		Liquidity:     ptr(50000.0),
		MarketCap:     ptr(250000.0),
		Volume24hUSD:  ptr(80000.0),
		Trade24hCount: ptr[int64](1200),
		HolderCount:   ptr[int64](900),
	}
}

// testCandidate builds a live candidate with a market snapshot.
func testCandidate(address, symbol string) model.TokenCandidate {
	return model.TokenCandidate{
		Address:  address,
		Symbol:   symbol,
		Name:     symbol + " Token",
		Decimals: 9,
		MarketSnapshot: model.MarketSnapshot{
			Price:         0.5,
			Liquidity:     50000,
			MarketCap:     250000,
			Volume24hUSD:  80000,
			Trade24hCount: 1200,
			HolderCount:   900,
		},
		Survived: true,
	}
}

// scoreJSON builds a batch scoring response for the given address→score map.
func scoreJSON(scores map[string]float64) string {
	type entry struct {
		Address string  `json:"address"`
		Score   float64 `json:"score"`
	}
	var tokens []entry
	for address, score := range scores {
		tokens = append(tokens, entry{Address: address, Score: score})
	}
	data, err := json.Marshal(map[string]any{"tokens": tokens})
	if err != nil {
		panic(fmt.Sprintf("scoreJSON: %v", err))
	}
	return string(data)
}

func newTestPipeline(t *testing.T, store service.Storage, oracle Oracle, market MarketData, ownership OwnershipChecker, config Config) *Pipeline {
	t.Helper()
	p, err := NewWithConfig(store, oracle, market, ownership, config)
	require.NoError(t, err)
	return p
}

// stageStats finds the recorded stats for a stage name.
func stageStats(t *testing.T, run *model.PipelineRun, name string) model.StageStats {
	t.Helper()
	for _, stage := range run.Stages {
		if stage.Name == name {
			return stage
		}
	}
	t.Fatalf("stage %s not recorded", name)
	return model.StageStats{}
}
