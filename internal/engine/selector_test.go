package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/solsift/solsift/internal/common"
	"github.com/solsift/solsift/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectParameters(t *testing.T) {
	market := &MockMarketData{}
	ownership := &MockOwnershipChecker{}

	t.Run("floors override a weak proposal", func(t *testing.T) {
		oracle := NewMockOracle()
		oracle.Queue(`{"min_liquidity": 500}`)
		p := newTestPipeline(t, NewMockStorage(), oracle, market, ownership, DefaultConfig())
		run := model.NewPipelineRun(time.Now())

		params := p.selectParameters(context.Background(), run)

		assert.Equal(t, 10000.0, params.Filters["min_liquidity"])
		require.Len(t, params.Filters, 5)
		stats := stageStats(t, run, model.StageNameSelect)
		assert.Equal(t, 0, stats.Errored)
	})

	t.Run("stronger proposal survives", func(t *testing.T) {
		oracle := NewMockOracle()
		oracle.Queue(`{"min_liquidity": 40000}`)
		p := newTestPipeline(t, NewMockStorage(), oracle, market, ownership, DefaultConfig())
		run := model.NewPipelineRun(time.Now())

		params := p.selectParameters(context.Background(), run)

		assert.Equal(t, 40000.0, params.Filters["min_liquidity"])
	})

	t.Run("garbage then valid proposal retries", func(t *testing.T) {
		oracle := NewMockOracle()
		oracle.Queue("I would suggest filtering on liquidity.", `{"min_holder": 2000}`)
		p := newTestPipeline(t, NewMockStorage(), oracle, market, ownership, DefaultConfig())
		run := model.NewPipelineRun(time.Now())

		params := p.selectParameters(context.Background(), run)

		assert.Equal(t, 2000.0, params.Filters["min_holder"])
		assert.Len(t, oracle.Calls(), 2)
		require.Len(t, run.Errors, 1)
	})

	t.Run("exhausted retries fall back to defaults", func(t *testing.T) {
		oracle := NewMockOracle()
		oracle.Fail(errors.New("provider unavailable"))
		p := newTestPipeline(t, NewMockStorage(), oracle, market, ownership, DefaultConfig())
		run := model.NewPipelineRun(time.Now())

		params := p.selectParameters(context.Background(), run)

		assert.Equal(t, model.DefaultParameters(p.config.Floors).Filters, params.Filters)
		assert.Len(t, oracle.Calls(), p.config.SelectorRetries+1)
		stats := stageStats(t, run, model.StageNameSelect)
		assert.Equal(t, 1, stats.Errored)
	})
}

func TestParseParameterProposal(t *testing.T) {
	t.Run("unknown keys are dropped", func(t *testing.T) {
		params, err := parseParameterProposal(`{"min_liquidity": 20000, "vibes": 11}`)

		require.NoError(t, err)
		assert.Len(t, params.Filters, 1)
		assert.Equal(t, 20000.0, params.Filters["min_liquidity"])
	})

	t.Run("fenced response parses", func(t *testing.T) {
		params, err := parseParameterProposal("```json\n{\"min_market_cap\": 100000}\n```")

		require.NoError(t, err)
		assert.Equal(t, 100000.0, params.Filters["min_market_cap"])
	})

	t.Run("oversized proposal rejected", func(t *testing.T) {
		_, err := parseParameterProposal(`{
			"min_liquidity": 1, "max_liquidity": 2, "min_market_cap": 3,
			"max_market_cap": 4, "min_holder": 5, "max_holder": 6
		}`)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "maximum is 5")
	})

	t.Run("non-numeric values rejected", func(t *testing.T) {
		_, err := parseParameterProposal(`{"min_liquidity": "lots"}`)

		require.Error(t, err)
		assert.ErrorIs(t, err, common.ErrUnparsableResponse)
	})

	t.Run("prose proposal is unparsable", func(t *testing.T) {
		_, err := parseParameterProposal("I would pick liquidity and market cap.")

		require.Error(t, err)
		assert.ErrorIs(t, err, common.ErrUnparsableResponse)
	})

	t.Run("sort directives are fixed", func(t *testing.T) {
		params, err := parseParameterProposal(`{"min_liquidity": 20000}`)

		require.NoError(t, err)
		assert.Equal(t, model.DefaultSortBy, params.SortBy)
		assert.Equal(t, model.DefaultSortType, params.SortType)
		assert.Equal(t, model.DefaultPageSize, params.Limit)
	})
}
