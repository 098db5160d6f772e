package wallets

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/solsift/solsift/internal/engine"
	"github.com/solsift/solsift/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubBalances struct {
	balances map[string]float64 // wallet address -> balance
	errFor   map[string]error
	calls    int
}

func (s *stubBalances) WalletTokenBalance(_ context.Context, wallet, _ string) (float64, error) {
	s.calls++
	if err, ok := s.errFor[wallet]; ok {
		return 0, err
	}
	return s.balances[wallet], nil
}

type countingStorage struct {
	*engine.MockStorage
	rosterReads int
}

func (c *countingStorage) GetActiveKOLWallets(ctx context.Context) ([]model.KOLWallet, error) {
	c.rosterReads++
	return c.MockStorage.GetActiveKOLWallets(ctx)
}

func seedWallets(t *testing.T, store *engine.MockStorage) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, store.SaveKOLWallet(ctx, &model.KOLWallet{
		ID:              "kol-1",
		Name:            "Trader One",
		WalletAddresses: []string{"w1", "w2"},
		InfluenceScore:  0.8,
		Active:          true,
	}))
	require.NoError(t, store.SaveKOLWallet(ctx, &model.KOLWallet{
		ID:              "kol-2",
		Name:            "Retired Trader",
		WalletAddresses: []string{"w3"},
		InfluenceScore:  0.9,
		Active:          false,
	}))
}

func TestCheckerEvidence(t *testing.T) {
	t.Run("reports holdings from active wallets only", func(t *testing.T) {
		store := engine.NewMockStorage()
		seedWallets(t, store)
		balances := &stubBalances{balances: map[string]float64{"w1": 1500, "w3": 9999}}

		checker, err := NewChecker(store, balances, nil)
		require.NoError(t, err)

		evidence, err := checker.Evidence(context.Background(), "addr1")

		require.NoError(t, err)
		require.Len(t, evidence, 1)
		assert.Equal(t, "kol-1", evidence[0].KOLID)
		assert.Equal(t, "Trader One", evidence[0].Name)
		assert.Equal(t, "w1", evidence[0].WalletAddress)
		assert.Equal(t, 1500.0, evidence[0].PositionSize)
		assert.Equal(t, 0.8, evidence[0].Confidence)
		assert.WithinDuration(t, time.Now(), evidence[0].EntryTime, time.Minute)

		// Only the two active addresses are checked.
		assert.Equal(t, 2, balances.calls)
	})

	t.Run("zero balances produce no evidence", func(t *testing.T) {
		store := engine.NewMockStorage()
		seedWallets(t, store)
		balances := &stubBalances{}

		checker, err := NewChecker(store, balances, nil)
		require.NoError(t, err)

		evidence, err := checker.Evidence(context.Background(), "addr1")

		require.NoError(t, err)
		assert.Empty(t, evidence)
	})

	t.Run("one failed check is tolerated", func(t *testing.T) {
		store := engine.NewMockStorage()
		seedWallets(t, store)
		balances := &stubBalances{
			balances: map[string]float64{"w2": 400},
			errFor:   map[string]error{"w1": errors.New("upstream 500")},
		}

		checker, err := NewChecker(store, balances, nil)
		require.NoError(t, err)

		evidence, err := checker.Evidence(context.Background(), "addr1")

		require.NoError(t, err)
		require.Len(t, evidence, 1)
		assert.Equal(t, "w2", evidence[0].WalletAddress)
	})

	t.Run("all checks failing is an error", func(t *testing.T) {
		store := engine.NewMockStorage()
		seedWallets(t, store)
		balances := &stubBalances{errFor: map[string]error{
			"w1": errors.New("down"),
			"w2": errors.New("down"),
		}}

		checker, err := NewChecker(store, balances, nil)
		require.NoError(t, err)

		_, err = checker.Evidence(context.Background(), "addr1")

		assert.Error(t, err)
	})

	t.Run("roster is cached between candidates", func(t *testing.T) {
		inner := engine.NewMockStorage()
		seedWallets(t, inner)
		store := &countingStorage{MockStorage: inner}

		checker, err := NewChecker(store, &stubBalances{}, nil)
		require.NoError(t, err)

		_, err = checker.Evidence(context.Background(), "addr1")
		require.NoError(t, err)
		_, err = checker.Evidence(context.Background(), "addr2")
		require.NoError(t, err)

		assert.Equal(t, 1, store.rosterReads)
	})

	t.Run("empty token address is rejected", func(t *testing.T) {
		checker, err := NewChecker(engine.NewMockStorage(), &stubBalances{}, nil)
		require.NoError(t, err)

		_, err = checker.Evidence(context.Background(), "")

		assert.Error(t, err)
	})

	t.Run("constructor requires dependencies", func(t *testing.T) {
		_, err := NewChecker(nil, &stubBalances{}, nil)
		assert.Error(t, err)

		_, err = NewChecker(engine.NewMockStorage(), nil, nil)
		assert.Error(t, err)
	})
}
