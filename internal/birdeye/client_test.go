package birdeye

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/solsift/solsift/internal/model"
	"github.com/solsift/solsift/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(Config{
		APIKey:            "test-key",
		BaseURL:           server.URL,
		RequestsPerSecond: 1000,
		Timeout:           5 * time.Second,
		Retry: service.RetryOptions{
			MaxAttempts:  3,
			InitialDelay: time.Millisecond,
			MaxDelay:     5 * time.Millisecond,
			Multiplier:   2.0,
		},
	})
	require.NoError(t, err)
	return client
}

func TestNewClient(t *testing.T) {
	t.Run("API key is required", func(t *testing.T) {
		_, err := NewClient(Config{})
		assert.Error(t, err)
	})

	t.Run("defaults are applied", func(t *testing.T) {
		client, err := NewClient(Config{APIKey: "k"})
		require.NoError(t, err)
		assert.Equal(t, defaultBaseURL, client.baseURL)
	})
}

func TestListTokens(t *testing.T) {
	params := model.DefaultParameters(model.DefaultFloors())

	t.Run("sends filters, sort, and auth", func(t *testing.T) {
		var gotQuery map[string][]string
		var gotKey string
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			gotQuery = r.URL.Query()
			gotKey = r.Header.Get("X-API-KEY")
			assert.Equal(t, "/defi/v3/token/list", r.URL.Path)
			fmt.Fprint(w, `{"success": true, "data": {"items": [
				{"address": "addr1", "symbol": "AAA", "name": "Token A", "decimals": 9,
				 "price": 0.5, "liquidity": 60000, "market_cap": 300000,
				 "volume_24h_usd": 90000, "trade_24h_count": 800, "holder": 1200}
			]}}`)
		})

		records, err := client.ListTokens(context.Background(), params, 100, 100)

		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "addr1", *records[0].Address)
		assert.Equal(t, "test-key", gotKey)
		assert.Equal(t, []string{"volume_24h_usd"}, gotQuery["sort_by"])
		assert.Equal(t, []string{"desc"}, gotQuery["sort_type"])
		assert.Equal(t, []string{"100"}, gotQuery["offset"])
		assert.Equal(t, []string{"10000"}, gotQuery["min_liquidity"])
		assert.Equal(t, []string{"500"}, gotQuery["min_trade_24h_count"])
	})

	t.Run("retries rate limits", func(t *testing.T) {
		var calls atomic.Int32
		client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			if calls.Add(1) == 1 {
				w.WriteHeader(http.StatusTooManyRequests)
				return
			}
			fmt.Fprint(w, `{"success": true, "data": {"items": []}}`)
		})

		_, err := client.ListTokens(context.Background(), params, 0, 100)

		require.NoError(t, err)
		assert.Equal(t, int32(2), calls.Load())
	})

	t.Run("retries server errors", func(t *testing.T) {
		var calls atomic.Int32
		client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			if calls.Add(1) < 3 {
				w.WriteHeader(http.StatusBadGateway)
				return
			}
			fmt.Fprint(w, `{"success": true, "data": {"items": []}}`)
		})

		_, err := client.ListTokens(context.Background(), params, 0, 100)

		require.NoError(t, err)
		assert.Equal(t, int32(3), calls.Load())
	})

	t.Run("client errors are not retried", func(t *testing.T) {
		var calls atomic.Int32
		client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusBadRequest)
		})

		_, err := client.ListTokens(context.Background(), params, 0, 100)

		require.Error(t, err)
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("rejected envelope is not retried", func(t *testing.T) {
		var calls atomic.Int32
		client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			calls.Add(1)
			fmt.Fprint(w, `{"success": false, "message": "invalid parameter"}`)
		})

		_, err := client.ListTokens(context.Background(), params, 0, 100)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid parameter")
		assert.Equal(t, int32(1), calls.Load())
	})
}

func TestTokenMetadata(t *testing.T) {
	t.Run("joins addresses and decodes the map", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/defi/v3/token/meta-data/multiple", r.URL.Path)
			assert.Equal(t, "addr1,addr2", r.URL.Query().Get("list_address"))
			fmt.Fprint(w, `{"success": true, "data": {
				"addr1": {"address": "addr1", "symbol": "AAA",
					"extensions": {"description": "a project", "twitter": "@a"}},
				"addr2": {"address": "addr2", "symbol": "BBB", "extensions": {}}
			}}`)
		})

		metadata, err := client.TokenMetadata(context.Background(), []string{"addr1", "addr2"})

		require.NoError(t, err)
		require.Len(t, metadata, 2)
		assert.Equal(t, "a project", metadata["addr1"].Extensions.Description)
		assert.Equal(t, "@a", metadata["addr1"].Extensions.Twitter)
	})

	t.Run("empty address list skips the call", func(t *testing.T) {
		client := newTestClient(t, func(_ http.ResponseWriter, _ *http.Request) {
			t.Fatal("no request expected")
		})

		metadata, err := client.TokenMetadata(context.Background(), nil)

		require.NoError(t, err)
		assert.Empty(t, metadata)
	})
}

func TestWalletTokenBalance(t *testing.T) {
	t.Run("returns the UI amount", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v1/wallet/token_balance", r.URL.Path)
			assert.Equal(t, "w1", r.URL.Query().Get("wallet"))
			assert.Equal(t, "addr1", r.URL.Query().Get("token_address"))
			fmt.Fprint(w, `{"success": true, "data": {"address": "addr1", "balance": 1500000000, "uiAmount": 1.5}}`)
		})

		balance, err := client.WalletTokenBalance(context.Background(), "w1", "addr1")

		require.NoError(t, err)
		assert.Equal(t, 1.5, balance)
	})

	t.Run("null data means no position", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprint(w, `{"success": true, "data": null}`)
		})

		balance, err := client.WalletTokenBalance(context.Background(), "w1", "addr1")

		require.NoError(t, err)
		assert.Equal(t, 0.0, balance)
	})
}
