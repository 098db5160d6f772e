package model

import "time"

// KOLWallet is a tracked wallet whose holdings are treated as corroborating
// evidence for the final reasoning stage, never as a filter.
type KOLWallet struct {
	LastUpdated     time.Time `json:"last_updated"`
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Description     string    `json:"description,omitempty"`
	Category        string    `json:"category,omitempty"`
	TwitterHandle   string    `json:"twitter_handle,omitempty"`
	WalletAddresses []string  `json:"wallet_addresses"`
	InfluenceScore  float64   `json:"influence_score"`
	Active          bool      `json:"active"`
}
