package birdeye

import (
	"encoding/json"
	"fmt"

	"github.com/solsift/solsift/internal/common"
	"github.com/solsift/solsift/internal/model"
)

// envelope is the standard BirdEye response wrapper.
type envelope struct {
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message,omitempty"`
	Success bool            `json:"success"`
}

// TokenRecord is one raw token entry from the v3 token-list endpoint.
// Fields that downstream stages depend on are pointers so that missing
// values can be detected and the record skipped.
type TokenRecord struct {
	Address            *string  `json:"address"`
	Symbol             *string  `json:"symbol"`
	Name               string   `json:"name"`
	LogoURI            string   `json:"logo_uri"`
	Decimals           *int     `json:"decimals"`
	Price              *float64 `json:"price"`
	Liquidity          *float64 `json:"liquidity"`
	MarketCap          *float64 `json:"market_cap"`
	Volume24hUSD       *float64 `json:"volume_24h_usd"`
	VolumeChange24hPct float64  `json:"volume_24h_change_percent"`
	PriceChange24hPct  float64  `json:"price_change_24h_percent"`
	Trade24hCount      *int64   `json:"trade_24h_count"`
	HolderCount        *int64   `json:"holder"`
}

// tokenListData is the payload of the v3 token-list endpoint.
type tokenListData struct {
	Items []TokenRecord `json:"items"`
}

// TokenMetadata is one entry from the multi-address metadata endpoint.
type TokenMetadata struct {
	Address    string `json:"address"`
	Name       string `json:"name"`
	Symbol     string `json:"symbol"`
	LogoURI    string `json:"logo_uri"`
	Extensions struct {
		Description string `json:"description"`
		Website     string `json:"website"`
		Twitter     string `json:"twitter"`
		Telegram    string `json:"telegram"`
	} `json:"extensions"`
}

// walletBalanceData is the payload of the wallet token-balance endpoint.
type walletBalanceData struct {
	Address  string  `json:"address"`
	Balance  int64   `json:"balance"`
	UIAmount float64 `json:"uiAmount"`
}

// Candidate validates the record and converts it into a TokenCandidate with
// a populated market snapshot. Records missing any required field are
// rejected with ErrMalformedRecord.
func (r TokenRecord) Candidate() (model.TokenCandidate, error) {
	missing := ""
	switch {
	case r.Address == nil || *r.Address == "":
		missing = "address"
	case r.Symbol == nil || *r.Symbol == "":
		missing = "symbol"
	case r.Decimals == nil:
		missing = "decimals"
	case r.Price == nil:
		missing = "price"
	case r.Liquidity == nil:
		missing = "liquidity"
	case r.MarketCap == nil:
		missing = "market_cap"
	case r.Volume24hUSD == nil:
		missing = "volume_24h_usd"
	case r.Trade24hCount == nil:
		missing = "trade_24h_count"
	case r.HolderCount == nil:
		missing = "holder"
	}
	if missing != "" {
		return model.TokenCandidate{}, fmt.Errorf("%w: missing %s", common.ErrMalformedRecord, missing)
	}

	return model.TokenCandidate{
		Address:  *r.Address,
		Symbol:   *r.Symbol,
		Name:     r.Name,
		LogoURI:  r.LogoURI,
		Decimals: *r.Decimals,
		MarketSnapshot: model.MarketSnapshot{
			Price:              *r.Price,
			Liquidity:          *r.Liquidity,
			MarketCap:          *r.MarketCap,
			Volume24hUSD:       *r.Volume24hUSD,
			VolumeChange24hPct: r.VolumeChange24hPct,
			PriceChange24hPct:  r.PriceChange24hPct,
			Trade24hCount:      *r.Trade24hCount,
			HolderCount:        *r.HolderCount,
		},
		Survived: true,
	}, nil
}
